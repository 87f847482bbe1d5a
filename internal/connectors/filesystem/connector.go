// Package filesystem reads documents from a local directory tree and
// watches it for changes.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/recall/internal/core/domain"
	"github.com/custodia-labs/recall/internal/logger"
)

// DefaultMaxFileSize is the largest file read by Scan and Watch.
const DefaultMaxFileSize = 10 << 20

// ErrClosed is returned by Watch after Close.
var ErrClosed = errors.New("connector closed")

// Connector reads files below a root directory.
type Connector struct {
	rootPath    string
	maxFileSize int64

	mu      sync.Mutex
	closed  bool
	watcher *fsnotify.Watcher
}

// New creates a connector rooted at rootPath.
func New(rootPath string) *Connector {
	return &Connector{
		rootPath:    rootPath,
		maxFileSize: DefaultMaxFileSize,
	}
}

// RootPath returns the directory the connector reads from.
func (c *Connector) RootPath() string {
	return c.rootPath
}

// Validate checks that the root path exists and is a directory.
func (c *Connector) Validate(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	info, err := os.Stat(c.rootPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("root path does not exist: %s", c.rootPath)
		}
		return fmt.Errorf("cannot access root path: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("root path is not a directory: %s", c.rootPath)
	}
	return nil
}

// Scan walks the tree and emits every visible regular file.
// Both channels are closed when the walk ends. Unreadable files are
// reported on the error channel and the walk continues.
func (c *Connector) Scan(ctx context.Context) (<-chan domain.RawFile, <-chan error) {
	files := make(chan domain.RawFile)
	errs := make(chan error, 1)

	go func() {
		defer close(files)
		defer close(errs)

		if err := c.Validate(ctx); err != nil {
			errs <- err
			return
		}

		walkErr := filepath.WalkDir(c.rootPath, func(path string, d fs.DirEntry, err error) error {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			if err != nil {
				logger.Warn("Skipping %s: %v", path, err)
				return nil
			}
			if path != c.rootPath && isHidden(c.relative(path)) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if !d.Type().IsRegular() {
				return nil
			}

			raw, err := c.ReadFile(path)
			if err != nil {
				logger.Warn("Skipping %s: %v", path, err)
				return nil
			}

			select {
			case files <- raw:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
		if walkErr != nil {
			errs <- walkErr
		}
	}()

	return files, errs
}

// ReadFile reads a single file into a RawFile.
func (c *Connector) ReadFile(path string) (domain.RawFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return domain.RawFile{}, err
	}
	if info.IsDir() {
		return domain.RawFile{}, fmt.Errorf("%s is a directory", path)
	}
	if info.Size() > c.maxFileSize {
		return domain.RawFile{}, fmt.Errorf("%s exceeds %d bytes", path, c.maxFileSize)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return domain.RawFile{}, err
	}

	name := filepath.Base(path)
	return domain.RawFile{
		URI:      path,
		MIMEType: detectMIMEType(name),
		Content:  content,
		Metadata: map[string]any{
			"filename":  name,
			"extension": strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), "."),
			"modified":  info.ModTime().UTC().Format(time.RFC3339),
		},
	}, nil
}

// Watch emits a FileChange for every file created, written, removed or
// renamed below the root. New directories are watched as they appear.
// The channel is closed when ctx is cancelled or the connector is closed.
func (c *Connector) Watch(ctx context.Context) (<-chan domain.FileChange, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, ErrClosed
	}
	if c.watcher != nil {
		return nil, errors.New("connector already watching")
	}
	if err := c.Validate(ctx); err != nil {
		return nil, fmt.Errorf("root path error: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := c.addTree(watcher, c.rootPath); err != nil {
		_ = watcher.Close()
		return nil, err
	}
	c.watcher = watcher

	changes := make(chan domain.FileChange)
	go func() {
		defer close(changes)
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Has(fsnotify.Create) {
					if info, err := os.Stat(event.Name); err == nil && info.IsDir() && !isHidden(c.relative(event.Name)) {
						if err := c.addTree(watcher, event.Name); err != nil {
							logger.Warn("Cannot watch %s: %v", event.Name, err)
						}
					}
				}
				change := c.handleFsEvent(event)
				if change == nil {
					continue
				}
				select {
				case changes <- *change:
				case <-ctx.Done():
					return
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("Watcher error: %v", err)
			}
		}
	}()

	return changes, nil
}

// addTree registers dir and every visible subdirectory with the watcher.
func (c *Connector) addTree(watcher *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != c.rootPath && isHidden(c.relative(path)) {
			return filepath.SkipDir
		}
		logger.Debug("Watching %s", path)
		return watcher.Add(path)
	})
}

// handleFsEvent converts an fsnotify event into a FileChange.
// Directories, hidden paths and permission-only changes yield nil.
func (c *Connector) handleFsEvent(event fsnotify.Event) *domain.FileChange {
	if isHidden(c.relative(event.Name)) {
		return nil
	}

	switch {
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		return &domain.FileChange{Type: domain.ChangeDeleted, Path: event.Name}
	case event.Has(fsnotify.Create), event.Has(fsnotify.Write):
		info, err := os.Stat(event.Name)
		if err != nil || info.IsDir() {
			return nil
		}
		changeType := domain.ChangeUpdated
		if event.Has(fsnotify.Create) {
			changeType = domain.ChangeCreated
		}
		return &domain.FileChange{Type: changeType, Path: event.Name}
	default:
		return nil
	}
}

// Close stops any active watcher. It is safe to call more than once.
func (c *Connector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true

	if c.watcher != nil {
		err := c.watcher.Close()
		c.watcher = nil
		return err
	}
	return nil
}

// relative returns path relative to the root, or path itself when it is
// not below the root.
func (c *Connector) relative(path string) string {
	rel, err := filepath.Rel(c.rootPath, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return rel
}

// mimeTypes covers extensions the platform MIME table may lack or map
// inconsistently.
var mimeTypes = map[string]string{
	".md":       "text/markdown",
	".markdown": "text/markdown",
	".txt":      "text/plain",
	".text":     "text/plain",
	".log":      "text/plain",
	".go":       "text/x-go",
	".py":       "text/x-python",
	".rs":       "text/x-rust",
	".java":     "text/x-java",
	".c":        "text/x-c",
	".h":        "text/x-c",
	".rb":       "text/x-ruby",
	".ts":       "text/typescript",
	".js":       "text/javascript",
	".yaml":     "text/yaml",
	".yml":      "text/yaml",
	".toml":     "text/toml",
	".sh":       "text/x-shellscript",
	".bash":     "text/x-shellscript",
	".sql":      "text/x-sql",
	".csv":      "text/csv",
	".json":     "application/json",
	".xml":      "application/xml",
}

// detectMIMEType maps a file name to a MIME type without parameters.
// Files without an extension are treated as plain text.
func detectMIMEType(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		return "text/plain"
	}
	if mimeType, ok := mimeTypes[ext]; ok {
		return mimeType
	}
	if mimeType := mime.TypeByExtension(ext); mimeType != "" {
		if i := strings.Index(mimeType, ";"); i >= 0 {
			mimeType = mimeType[:i]
		}
		return strings.TrimSpace(mimeType)
	}
	return "application/octet-stream"
}

// isHidden reports whether any element of path starts with a dot.
// "." and ".." are not hidden.
func isHidden(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part == "" || part == "." || part == ".." {
			continue
		}
		if strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}
