package clamav

import (
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shareforge/shareforge/internal/file"
)

type memFiles struct {
	mu      sync.Mutex
	content map[string]string // fileID -> content
	deleted bool
}

func (m *memFiles) List(ctx context.Context, shareID string) ([]*file.File, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var files []*file.File
	for id := range m.content {
		files = append(files, &file.File{ID: id, ShareID: shareID, Name: id + ".bin"})
	}
	return files, nil
}

func (m *memFiles) ReadStream(ctx context.Context, shareID, fileID string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return io.NopCloser(strings.NewReader(m.content[fileID])), nil
}

func (m *memFiles) DeleteAll(ctx context.Context, shareID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = true
	return nil
}

func (m *memFiles) wasDeleted() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.deleted
}

type memMarker struct {
	mu      sync.Mutex
	reasons map[string]string
}

func (m *memMarker) SetRemovedReason(ctx context.Context, shareID, reason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.reasons == nil {
		m.reasons = map[string]string{}
	}
	m.reasons[shareID] = reason
	return nil
}

func (m *memMarker) reason(shareID string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reasons[shareID]
}

func TestScanAndRemoveClean(t *testing.T) {
	addr := fakeClamd(t, "EVIL")
	files := &memFiles{content: map[string]string{"f1": "clean", "f2": "also clean"}}
	marker := &memMarker{}

	scanner := NewScanner(NewClient(addr), files, marker)
	scanner.ScanAndRemove("share1")

	// The scan runs detached; give it a moment and confirm nothing happened
	time.Sleep(200 * time.Millisecond)
	assert.Empty(t, marker.reason("share1"))
	assert.False(t, files.wasDeleted())
}

func TestScanAndRemoveInfected(t *testing.T) {
	addr := fakeClamd(t, "EVIL")
	files := &memFiles{content: map[string]string{"f1": "clean", "f2": "EVIL payload"}}
	marker := &memMarker{}

	scanner := NewScanner(NewClient(addr), files, marker)
	scanner.ScanAndRemove("share1")

	require.Eventually(t, func() bool {
		return files.wasDeleted()
	}, 5*time.Second, 10*time.Millisecond)
	assert.Equal(t, "Malicious file detected", marker.reason("share1"))
}
