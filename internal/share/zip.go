package share

import (
	"archive/zip"
	"compress/flate"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

// FileEntry identifies one constituent file of a FILE share
type FileEntry struct {
	ID   string
	Name string
}

// ArchiveSource provides the files of a share to the packager
type ArchiveSource interface {
	List(ctx context.Context, shareID string) ([]FileEntry, error)
	ReadStream(ctx context.Context, shareID, fileID string) (io.ReadCloser, error)
}

// Packager bundles all files of a completed multi-file share into a single
// zip archive next to the share's files. It only applies when files live on
// the local filesystem; with an object storage backend there is no packager.
type Packager struct {
	root   string
	source ArchiveSource
	store  Store
	level  int
}

// NewPackager creates an archive packager writing below root
func NewPackager(root string, source ArchiveSource, store Store, compressionLevel int) *Packager {
	if compressionLevel < flate.HuffmanOnly || compressionLevel > flate.BestCompression {
		compressionLevel = flate.DefaultCompression
	}
	return &Packager{
		root:   root,
		source: source,
		store:  store,
		level:  compressionLevel,
	}
}

// ArchivePath returns the location of a share's archive
func (p *Packager) ArchivePath(shareID string) string {
	return filepath.Join(p.root, shareID, "archive.zip")
}

// BuildAsync builds the archive in a detached goroutine and flips the
// readiness flag on success. A failed build only logs: the flag stays false
// and a fresh complete/revert cycle is required to re-trigger the build.
func (p *Packager) BuildAsync(shareID string) {
	go func() {
		ctx := context.Background()
		if err := p.Build(ctx, shareID); err != nil {
			logrus.WithError(err).WithField("share_id", shareID).Error("Archive build failed")
			return
		}
		if err := p.store.SetZipReady(ctx, shareID, true); err != nil {
			logrus.WithError(err).WithField("share_id", shareID).Error("Failed to mark archive ready")
		}
	}()
}

// Build streams every file of the share into a single zip archive at a
// deterministic location keyed by the share id
func (p *Packager) Build(ctx context.Context, shareID string) error {
	files, err := p.source.List(ctx, shareID)
	if err != nil {
		return fmt.Errorf("failed to list share files: %w", err)
	}

	dir := filepath.Join(p.root, shareID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create share directory: %w", err)
	}

	out, err := os.Create(p.ArchivePath(shareID))
	if err != nil {
		return fmt.Errorf("failed to create archive: %w", err)
	}
	defer out.Close()

	zw := zip.NewWriter(out)
	zw.RegisterCompressor(zip.Deflate, func(w io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(w, p.level)
	})

	for _, file := range files {
		if err := p.appendFile(ctx, zw, shareID, file); err != nil {
			zw.Close()
			return err
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to finalize archive: %w", err)
	}
	return out.Sync()
}

func (p *Packager) appendFile(ctx context.Context, zw *zip.Writer, shareID string, file FileEntry) error {
	src, err := p.source.ReadStream(ctx, shareID, file.ID)
	if err != nil {
		return fmt.Errorf("failed to open file %s: %w", file.ID, err)
	}
	defer src.Close()

	dst, err := zw.Create(file.Name)
	if err != nil {
		return fmt.Errorf("failed to add %s to archive: %w", file.Name, err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("failed to write %s to archive: %w", file.Name, err)
	}
	return nil
}
