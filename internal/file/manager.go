package file

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// Manager handles the files of FILE shares: metadata rows in the store,
// bytes in the storage backend
type Manager struct {
	store   *SQLiteStore
	backend Backend
}

// NewManager creates a new file manager
func NewManager(store *SQLiteStore, backend Backend) *Manager {
	return &Manager{store: store, backend: backend}
}

// Mkdir prepares the storage location for a new share
func (m *Manager) Mkdir(ctx context.Context, shareID string) error {
	return m.backend.Mkdir(ctx, shareID)
}

// Save stores an uploaded file under a fresh id and records its metadata
func (m *Manager) Save(ctx context.Context, shareID, name string, data io.Reader) (*File, error) {
	if name == "" {
		return nil, fmt.Errorf("file name is required")
	}
	// Client-supplied names go into archives and downloads; keep only the
	// base name so they cannot carry path segments
	name = filepath.Base(name)

	f := &File{
		ID:        uuid.NewString(),
		ShareID:   shareID,
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}

	counter := &countingReader{r: data}
	if err := m.backend.Put(ctx, shareID, f.ID, counter); err != nil {
		return nil, err
	}
	f.Size = counter.n

	if err := m.store.Create(ctx, f); err != nil {
		// Keep storage and metadata consistent when the record fails
		if cleanupErr := m.backend.Delete(ctx, shareID, f.ID); cleanupErr != nil {
			return nil, fmt.Errorf("%w (orphaned file %s)", err, f.ID)
		}
		return nil, err
	}

	return f, nil
}

// Get retrieves a file's metadata
func (m *Manager) Get(ctx context.Context, shareID, fileID string) (*File, error) {
	return m.store.Get(ctx, shareID, fileID)
}

// List lists a share's files
func (m *Manager) List(ctx context.Context, shareID string) ([]*File, error) {
	return m.store.List(ctx, shareID)
}

// Count returns the number of files attached to a share
func (m *Manager) Count(ctx context.Context, shareID string) (int, error) {
	return m.store.Count(ctx, shareID)
}

// TotalSize returns the combined size of a share's files
func (m *Manager) TotalSize(ctx context.Context, shareID string) (int64, error) {
	return m.store.TotalSize(ctx, shareID)
}

// ReadStream opens a file's content for reading. The metadata record must
// exist; a bare storage object without one is not served.
func (m *Manager) ReadStream(ctx context.Context, shareID, fileID string) (io.ReadCloser, error) {
	if _, err := m.store.Get(ctx, shareID, fileID); err != nil {
		return nil, err
	}
	return m.backend.Get(ctx, shareID, fileID)
}

// Delete removes one file, bytes first
func (m *Manager) Delete(ctx context.Context, shareID, fileID string) error {
	if err := m.backend.Delete(ctx, shareID, fileID); err != nil {
		return err
	}
	return m.store.Delete(ctx, shareID, fileID)
}

// DeleteAll removes all of a share's files, bytes first
func (m *Manager) DeleteAll(ctx context.Context, shareID string) error {
	if err := m.backend.DeleteAll(ctx, shareID); err != nil {
		return err
	}
	return m.store.DeleteAll(ctx, shareID)
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
