package filesystem

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/custodia-labs/recall/internal/core/domain"
	"github.com/custodia-labs/recall/internal/core/ports/driven"
	"github.com/custodia-labs/recall/internal/core/ports/driving"
	"github.com/custodia-labs/recall/internal/logger"
)

// DefaultDebounce is how long Watch waits for writes to a file to settle
// before ingesting it.
const DefaultDebounce = 300 * time.Millisecond

// FileStatus is the outcome of importing one file.
type FileStatus int

const (
	// FileAdded means the file was chunked and stored.
	FileAdded FileStatus = iota

	// FileSkipped means no normaliser handles the file type.
	FileSkipped

	// FileDeferred means admission control reported overload.
	FileDeferred

	// FileFailed means reading, normalising or storing failed.
	FileFailed
)

// String returns the status name for display.
func (s FileStatus) String() string {
	switch s {
	case FileAdded:
		return "added"
	case FileSkipped:
		return "skipped"
	case FileDeferred:
		return "deferred"
	case FileFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// FileResult reports what happened to one file.
type FileResult struct {
	Path   string
	DocID  string
	Status FileStatus
	Err    error
}

// Report summarises an import run.
type Report struct {
	Files []FileResult
}

// Count returns the number of files with the given status.
func (r Report) Count(status FileStatus) int {
	n := 0
	for _, f := range r.Files {
		if f.Status == status {
			n++
		}
	}
	return n
}

// Importer feeds files from a Connector through the normalisers into
// the ingest service.
type Importer struct {
	connector   *Connector
	normalisers driven.NormaliserRegistry
	ingest      driving.IngestService
	collection  string
	debounce    time.Duration
}

// ImporterOption configures an Importer.
type ImporterOption func(*Importer)

// WithCollection sets the target collection. Empty means the default.
func WithCollection(name string) ImporterOption {
	return func(i *Importer) {
		i.collection = name
	}
}

// WithDebounce sets the settle delay used by Watch.
func WithDebounce(d time.Duration) ImporterOption {
	return func(i *Importer) {
		if d > 0 {
			i.debounce = d
		}
	}
}

// NewImporter creates an importer.
func NewImporter(
	connector *Connector,
	normalisers driven.NormaliserRegistry,
	ingest driving.IngestService,
	opts ...ImporterOption,
) *Importer {
	i := &Importer{
		connector:   connector,
		normalisers: normalisers,
		ingest:      ingest,
		debounce:    DefaultDebounce,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Import ingests every supported file below the connector's root.
// The returned error is a walk failure; per-file failures are in the report.
func (i *Importer) Import(ctx context.Context) (Report, error) {
	logger.Section("Import")
	logger.Debug("Root: %s, collection: %q", i.connector.RootPath(), i.collection)

	var report Report
	files, errs := i.connector.Scan(ctx)
	for raw := range files {
		report.Files = append(report.Files, i.importFile(ctx, &raw))
	}

	var walkErr error
	for err := range errs {
		walkErr = err
	}

	logger.Info("Imported %d, skipped %d, deferred %d, failed %d",
		report.Count(FileAdded), report.Count(FileSkipped),
		report.Count(FileDeferred), report.Count(FileFailed))
	return report, walkErr
}

// Watch ingests files as they are created or written until ctx is
// cancelled. Removals are logged and ignored; stored chunks are immutable.
// onResult, if non-nil, is called after each file is processed.
func (i *Importer) Watch(ctx context.Context, onResult func(FileResult)) error {
	changes, err := i.connector.Watch(ctx)
	if err != nil {
		return err
	}
	defer i.connector.Close()

	d := newDebouncer(i.debounce)
	defer d.stop()

	for change := range changes {
		if change.Type == domain.ChangeDeleted {
			logger.Info("Ignoring removal of %s", change.Path)
			continue
		}

		path := change.Path
		d.schedule(path, func() {
			result := i.ImportPath(ctx, path)
			if onResult != nil {
				onResult(result)
			}
		})
	}

	return ctx.Err()
}

// debouncer runs one callback per key after writes to it settle.
type debouncer struct {
	mu      sync.Mutex
	delay   time.Duration
	pending map[string]*time.Timer
	wg      sync.WaitGroup
}

func newDebouncer(delay time.Duration) *debouncer {
	return &debouncer{delay: delay, pending: make(map[string]*time.Timer)}
}

// schedule replaces any pending callback for key with fn.
func (d *debouncer) schedule(key string, fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.scheduleLocked(key, fn)
}

func (d *debouncer) scheduleLocked(key string, fn func()) {
	if prev, ok := d.pending[key]; ok && prev.Stop() {
		d.wg.Done()
	}

	d.wg.Add(1)
	var timer *time.Timer
	timer = time.AfterFunc(d.delay, func() {
		defer d.wg.Done()
		d.mu.Lock()
		// Only remove our own entry; a newer timer may have replaced it.
		if d.pending[key] == timer {
			delete(d.pending, key)
		}
		d.mu.Unlock()
		fn()
	})
	d.pending[key] = timer
}

// stop cancels pending callbacks and waits for running ones.
func (d *debouncer) stop() {
	d.mu.Lock()
	for key, timer := range d.pending {
		if timer.Stop() {
			d.wg.Done()
		}
		delete(d.pending, key)
	}
	d.mu.Unlock()
	d.wg.Wait()
}

// ImportPath reads and ingests a single file.
func (i *Importer) ImportPath(ctx context.Context, path string) FileResult {
	raw, err := i.connector.ReadFile(path)
	if err != nil {
		return FileResult{Path: path, Status: FileFailed, Err: err}
	}
	return i.importFile(ctx, &raw)
}

func (i *Importer) importFile(ctx context.Context, raw *domain.RawFile) FileResult {
	result := FileResult{Path: raw.URI}

	doc, err := i.normalisers.Normalise(ctx, raw)
	if err != nil {
		if errors.Is(err, domain.ErrUnsupportedType) {
			logger.Debug("Skipping %s (%s)", raw.URI, raw.MIMEType)
			result.Status = FileSkipped
			return result
		}
		result.Status = FileFailed
		result.Err = err
		return result
	}

	result.DocID = domain.DocumentID(doc)

	added, err := i.ingest.AddDocument(ctx, doc, i.collection)
	switch {
	case err != nil:
		result.Status = FileFailed
		result.Err = err
	case !added:
		result.Status = FileDeferred
	default:
		result.Status = FileAdded
	}
	logger.Debug("%s: %s", raw.URI, result.Status)
	return result
}
