package filesystem

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/recall/internal/core/domain"
)

// scanAll drains a scan, returning every file and the last error.
func scanAll(t *testing.T, ctx context.Context, c *Connector) ([]domain.RawFile, error) {
	t.Helper()
	files, errs := c.Scan(ctx)
	var out []domain.RawFile
	for f := range files {
		out = append(out, f)
	}
	var err error
	for e := range errs {
		err = e
	}
	return out, err
}

func TestNew(t *testing.T) {
	connector := New("/tmp/test")

	require.NotNil(t, connector)
	assert.Equal(t, "/tmp/test", connector.RootPath())
	assert.Equal(t, int64(DefaultMaxFileSize), connector.maxFileSize)
}

func TestConnector_Scan(t *testing.T) {
	t.Run("reads files from directory", func(t *testing.T) {
		tempDir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(tempDir, "file1.txt"), []byte("content 1"), 0644))
		require.NoError(t, os.WriteFile(filepath.Join(tempDir, "file2.md"), []byte("# Markdown"), 0644))

		files, err := scanAll(t, context.Background(), New(tempDir))

		require.NoError(t, err)
		assert.Len(t, files, 2)
	})

	t.Run("recurses and skips hidden entries", func(t *testing.T) {
		tempDir := t.TempDir()
		require.NoError(t, os.MkdirAll(filepath.Join(tempDir, "sub", "deeper"), 0755))
		require.NoError(t, os.MkdirAll(filepath.Join(tempDir, ".git"), 0755))
		require.NoError(t, os.WriteFile(filepath.Join(tempDir, "visible.txt"), []byte("visible"), 0644))
		require.NoError(t, os.WriteFile(filepath.Join(tempDir, ".hidden.txt"), []byte("hidden"), 0644))
		require.NoError(t, os.WriteFile(filepath.Join(tempDir, "sub", "deeper", "nested.md"), []byte("nested"), 0644))
		require.NoError(t, os.WriteFile(filepath.Join(tempDir, ".git", "config"), []byte("git"), 0644))

		files, err := scanAll(t, context.Background(), New(tempDir))
		require.NoError(t, err)

		names := make([]string, 0, len(files))
		for _, f := range files {
			names = append(names, filepath.Base(f.URI))
		}
		assert.ElementsMatch(t, []string{"visible.txt", "nested.md"}, names)
	})

	t.Run("works from a hidden root", func(t *testing.T) {
		root := filepath.Join(t.TempDir(), ".notes")
		require.NoError(t, os.Mkdir(root, 0755))
		require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("a"), 0644))

		files, err := scanAll(t, context.Background(), New(root))

		require.NoError(t, err)
		assert.Len(t, files, 1)
	})

	t.Run("non-existent directory", func(t *testing.T) {
		files, err := scanAll(t, context.Background(), New("/non/existent/path"))

		assert.Empty(t, files)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "does not exist")
	})

	t.Run("cancelled context closes channels", func(t *testing.T) {
		tempDir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(tempDir, "a.txt"), []byte("a"), 0644))

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := scanAll(t, ctx, New(tempDir))

		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("includes file metadata", func(t *testing.T) {
		tempDir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(tempDir, "test.txt"), []byte("hello"), 0644))

		files, err := scanAll(t, context.Background(), New(tempDir))
		require.NoError(t, err)
		require.Len(t, files, 1)

		f := files[0]
		assert.Equal(t, filepath.Join(tempDir, "test.txt"), f.URI)
		assert.Equal(t, "text/plain", f.MIMEType)
		assert.Equal(t, []byte("hello"), f.Content)
		assert.Equal(t, "test.txt", f.Metadata["filename"])
		assert.Equal(t, "txt", f.Metadata["extension"])
		assert.NotEmpty(t, f.Metadata["modified"])
	})

	t.Run("skips oversized files", func(t *testing.T) {
		tempDir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(tempDir, "big.txt"), make([]byte, 64), 0644))
		require.NoError(t, os.WriteFile(filepath.Join(tempDir, "small.txt"), []byte("ok"), 0644))

		connector := New(tempDir)
		connector.maxFileSize = 16

		files, err := scanAll(t, context.Background(), connector)

		require.NoError(t, err)
		require.Len(t, files, 1)
		assert.Contains(t, files[0].URI, "small.txt")
	})
}

func TestConnector_Validate(t *testing.T) {
	tempDir := t.TempDir()
	filePath := filepath.Join(tempDir, "file.txt")
	require.NoError(t, os.WriteFile(filePath, []byte("content"), 0644))

	tests := []struct {
		name          string
		path          string
		errorContains string
	}{
		{"valid directory", tempDir, ""},
		{"non-existent path", "/non/existent/path/12345", "does not exist"},
		{"file instead of directory", filePath, "not a directory"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.path).Validate(context.Background())

			if tt.errorContains == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorContains)
		})
	}

	t.Run("context cancellation", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		assert.Equal(t, context.Canceled, New(tempDir).Validate(ctx))
	})
}

func TestConnector_Watch(t *testing.T) {
	t.Run("reports created files", func(t *testing.T) {
		tempDir := t.TempDir()
		connector := New(tempDir)
		defer connector.Close()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		changes, err := connector.Watch(ctx)
		require.NoError(t, err)

		testFile := filepath.Join(tempDir, "new-file.txt")
		require.NoError(t, os.WriteFile(testFile, []byte("content"), 0644))

		select {
		case change := <-changes:
			assert.Equal(t, domain.ChangeCreated, change.Type)
			assert.Equal(t, testFile, change.Path)
		case <-time.After(2 * time.Second):
			t.Fatal("timeout waiting for file change event")
		}
	})

	t.Run("reports files in new subdirectories", func(t *testing.T) {
		tempDir := t.TempDir()
		connector := New(tempDir)
		defer connector.Close()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		changes, err := connector.Watch(ctx)
		require.NoError(t, err)

		sub := filepath.Join(tempDir, "sub")
		require.NoError(t, os.Mkdir(sub, 0755))
		// Give the watch loop time to register the new directory.
		time.Sleep(100 * time.Millisecond)
		nested := filepath.Join(sub, "nested.txt")
		require.NoError(t, os.WriteFile(nested, []byte("nested"), 0644))

		deadline := time.After(2 * time.Second)
		for {
			select {
			case change := <-changes:
				if change.Path == nested {
					return
				}
			case <-deadline:
				t.Fatal("timeout waiting for nested file event")
			}
		}
	})

	t.Run("non-existent directory", func(t *testing.T) {
		changes, err := New("/non/existent/path").Watch(context.Background())

		require.Error(t, err)
		assert.Nil(t, changes)
		assert.Contains(t, err.Error(), "root path error")
	})

	t.Run("closes channel when context is cancelled", func(t *testing.T) {
		connector := New(t.TempDir())
		defer connector.Close()

		ctx, cancel := context.WithCancel(context.Background())
		changes, err := connector.Watch(ctx)
		require.NoError(t, err)

		cancel()

		select {
		case _, ok := <-changes:
			if ok {
				for range changes {
				}
			}
		case <-time.After(time.Second):
			t.Fatal("channel did not close after context cancellation")
		}
	})

	t.Run("fails after close", func(t *testing.T) {
		connector := New(t.TempDir())
		require.NoError(t, connector.Close())

		changes, err := connector.Watch(context.Background())

		assert.ErrorIs(t, err, ErrClosed)
		assert.Nil(t, changes)
	})

	t.Run("rejects a second watch", func(t *testing.T) {
		connector := New(t.TempDir())
		defer connector.Close()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		_, err := connector.Watch(ctx)
		require.NoError(t, err)

		_, err = connector.Watch(ctx)
		assert.Error(t, err)
	})
}

func TestConnector_Close(t *testing.T) {
	connector := New("/tmp/test")

	assert.NoError(t, connector.Close())
	assert.NoError(t, connector.Close())
}

func TestDetectMIMEType(t *testing.T) {
	tests := []struct {
		filename     string
		expectedMIME string
	}{
		{"file", "text/plain"},
		{"doc.md", "text/markdown"},
		{"doc.markdown", "text/markdown"},
		{"code.go", "text/x-go"},
		{"script.py", "text/x-python"},
		{"lib.rs", "text/x-rust"},
		{"app.ts", "text/typescript"},
		{"config.yaml", "text/yaml"},
		{"config.yml", "text/yaml"},
		{"config.toml", "text/toml"},
		{"script.sh", "text/x-shellscript"},
		{"query.sql", "text/x-sql"},
		{"data.json", "application/json"},
		{"data.xml", "application/xml"},
		{"script.js", "text/javascript"},
		{"image.png", "image/png"},
		{"file.zzzzunknown", "application/octet-stream"},
		{"FILE.MD", "text/markdown"},
		{"File.Yaml", "text/yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			assert.Equal(t, tt.expectedMIME, detectMIMEType(tt.filename))
		})
	}

	t.Run("strips parameters", func(t *testing.T) {
		for _, file := range []string{"file.html", "file.css"} {
			assert.NotContains(t, detectMIMEType(file), ";")
		}
	})
}

func TestIsHidden(t *testing.T) {
	tests := []struct {
		path     string
		expected bool
	}{
		{".hidden", true},
		{"path/to/.hidden", true},
		{"/path/.hidden/file.txt", true},
		{"dir/.git/config", true},
		{"file.txt", false},
		{"path/to/file.txt", false},
		{".", false},
		{"..", false},
		{"path/./file", false},
		{"path/../file", false},
		{"", false},
		{"/", false},
		{"file.hidden", false},
		{"directory.name/file", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.expected, isHidden(tt.path))
		})
	}
}

func TestHandleFsEvent(t *testing.T) {
	tests := []struct {
		name           string
		setupFile      bool
		setupDir       bool
		setupHidden    bool
		operation      fsnotify.Op
		expectedChange bool
		expectedType   domain.ChangeType
	}{
		{name: "create file", setupFile: true, operation: fsnotify.Create, expectedChange: true, expectedType: domain.ChangeCreated},
		{name: "write file", setupFile: true, operation: fsnotify.Write, expectedChange: true, expectedType: domain.ChangeUpdated},
		{name: "remove file", operation: fsnotify.Remove, expectedChange: true, expectedType: domain.ChangeDeleted},
		{name: "rename file", operation: fsnotify.Rename, expectedChange: true, expectedType: domain.ChangeDeleted},
		{name: "chmod ignored", setupFile: true, operation: fsnotify.Chmod},
		{name: "create directory ignored", setupDir: true, operation: fsnotify.Create},
		{name: "hidden create ignored", setupHidden: true, operation: fsnotify.Create},
		{name: "hidden remove ignored", setupHidden: true, operation: fsnotify.Remove},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tempDir := t.TempDir()

			var eventPath string
			switch {
			case tt.setupDir:
				eventPath = filepath.Join(tempDir, "testdir")
				require.NoError(t, os.Mkdir(eventPath, 0755))
			case tt.setupHidden:
				eventPath = filepath.Join(tempDir, ".hidden.txt")
				require.NoError(t, os.WriteFile(eventPath, []byte("hidden"), 0644))
			case tt.setupFile:
				eventPath = filepath.Join(tempDir, "test.txt")
				require.NoError(t, os.WriteFile(eventPath, []byte("content"), 0644))
			default:
				eventPath = filepath.Join(tempDir, "removed.txt")
			}

			change := New(tempDir).handleFsEvent(fsnotify.Event{Name: eventPath, Op: tt.operation})

			if !tt.expectedChange {
				assert.Nil(t, change)
				return
			}
			require.NotNil(t, change)
			assert.Equal(t, tt.expectedType, change.Type)
			assert.Equal(t, eventPath, change.Path)
		})
	}

	t.Run("write combined with chmod", func(t *testing.T) {
		tempDir := t.TempDir()
		testFile := filepath.Join(tempDir, "test.txt")
		require.NoError(t, os.WriteFile(testFile, []byte("content"), 0644))

		change := New(tempDir).handleFsEvent(fsnotify.Event{Name: testFile, Op: fsnotify.Write | fsnotify.Chmod})

		require.NotNil(t, change)
		assert.Equal(t, domain.ChangeUpdated, change.Type)
	})
}
