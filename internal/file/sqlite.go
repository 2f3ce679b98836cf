package file

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// SQLiteStore persists file metadata in SQLite
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite file metadata store
func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	store := &SQLiteStore{db: db}
	if err := store.initialize(); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *SQLiteStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS files (
		id TEXT PRIMARY KEY,
		share_id TEXT NOT NULL,
		name TEXT NOT NULL,
		size INTEGER NOT NULL,
		created_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_files_share ON files(share_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Create inserts a file record
func (s *SQLiteStore) Create(ctx context.Context, f *File) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO files (id, share_id, name, size, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, f.ID, f.ShareID, f.Name, f.Size, f.CreatedAt.Unix())
	if err != nil {
		return fmt.Errorf("failed to create file record: %w", err)
	}
	return nil
}

// Get retrieves a file record scoped to its share
func (s *SQLiteStore) Get(ctx context.Context, shareID, fileID string) (*File, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, share_id, name, size, created_at
		FROM files WHERE id = ? AND share_id = ?
	`, fileID, shareID)
	return scanFile(row)
}

// List lists the files of a share, ordered by name
func (s *SQLiteStore) List(ctx context.Context, shareID string) ([]*File, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, share_id, name, size, created_at
		FROM files WHERE share_id = ?
		ORDER BY name ASC
	`, shareID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var files []*File
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, rows.Err()
}

// Count returns the number of files attached to a share
func (s *SQLiteStore) Count(ctx context.Context, shareID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM files WHERE share_id = ?`, shareID).Scan(&count)
	return count, err
}

// TotalSize returns the combined size of a share's files in bytes
func (s *SQLiteStore) TotalSize(ctx context.Context, shareID string) (int64, error) {
	var total sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		`SELECT SUM(size) FROM files WHERE share_id = ?`, shareID).Scan(&total)
	return total.Int64, err
}

// Delete removes one file record
func (s *SQLiteStore) Delete(ctx context.Context, shareID, fileID string) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM files WHERE id = ? AND share_id = ?`, fileID, shareID)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteAll removes all file records of a share
func (s *SQLiteStore) DeleteAll(ctx context.Context, shareID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM files WHERE share_id = ?`, shareID)
	return err
}

func scanFile(scanner interface {
	Scan(dest ...interface{}) error
}) (*File, error) {
	var f File
	var createdAt int64

	err := scanner.Scan(&f.ID, &f.ShareID, &f.Name, &f.Size, &createdAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan file: %w", err)
	}

	f.CreatedAt = time.Unix(createdAt, 0).UTC()
	return &f, nil
}
