package file

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// FilesystemBackend stores share files below a local root directory, one
// directory per share
type FilesystemBackend struct {
	root string
}

// NewFilesystemBackend creates a filesystem backend rooted at root
func NewFilesystemBackend(root string) (*FilesystemBackend, error) {
	if root == "" {
		return nil, fmt.Errorf("filesystem backend requires a root directory")
	}
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage root: %w", err)
	}
	return &FilesystemBackend{root: root}, nil
}

// Root returns the backend's root directory
func (b *FilesystemBackend) Root() string {
	return b.root
}

// Mkdir prepares the storage location of a share
func (b *FilesystemBackend) Mkdir(ctx context.Context, shareID string) error {
	dir, err := b.sharePath(shareID)
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// Put writes a file, replacing any previous content
func (b *FilesystemBackend) Put(ctx context.Context, shareID, fileID string, data io.Reader) error {
	path, err := b.filePath(shareID, fileID)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	if _, err := io.Copy(out, data); err != nil {
		out.Close()
		os.Remove(path)
		return fmt.Errorf("failed to write file: %w", err)
	}
	return out.Close()
}

// Get opens a file for reading
func (b *FilesystemBackend) Get(ctx context.Context, shareID, fileID string) (io.ReadCloser, error) {
	path, err := b.filePath(shareID, fileID)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file %s/%s not found", shareID, fileID)
		}
		return nil, err
	}
	return f, nil
}

// Delete removes a single file
func (b *FilesystemBackend) Delete(ctx context.Context, shareID, fileID string) error {
	path, err := b.filePath(shareID, fileID)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// DeleteAll removes a share's whole directory, archive included
func (b *FilesystemBackend) DeleteAll(ctx context.Context, shareID string) error {
	dir, err := b.sharePath(shareID)
	if err != nil {
		return err
	}
	return os.RemoveAll(dir)
}

func (b *FilesystemBackend) sharePath(shareID string) (string, error) {
	if err := checkPathComponent(shareID); err != nil {
		return "", err
	}
	return filepath.Join(b.root, shareID), nil
}

func (b *FilesystemBackend) filePath(shareID, fileID string) (string, error) {
	dir, err := b.sharePath(shareID)
	if err != nil {
		return "", err
	}
	if err := checkPathComponent(fileID); err != nil {
		return "", err
	}
	return filepath.Join(dir, fileID), nil
}

// checkPathComponent rejects identifiers that could escape the storage root
func checkPathComponent(id string) error {
	if id == "" || id == "." || id == ".." ||
		strings.ContainsAny(id, `/\`) {
		return fmt.Errorf("invalid path component %q", id)
	}
	return nil
}
