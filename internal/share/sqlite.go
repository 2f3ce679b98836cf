package share

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// SQLiteStore implements Store using SQLite
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite share store
func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	store := &SQLiteStore{db: db}
	if err := store.initialize(); err != nil {
		return nil, err
	}
	return store, nil
}

// initialize creates the shares and share_recipients tables
func (s *SQLiteStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS shares (
		id TEXT PRIMARY KEY,
		share_type TEXT NOT NULL,
		name TEXT,
		description TEXT,
		expires_at INTEGER,
		created_at INTEGER NOT NULL,
		upload_locked INTEGER NOT NULL DEFAULT 0,
		zip_ready INTEGER NOT NULL DEFAULT 0,
		views INTEGER NOT NULL DEFAULT 0,
		password_hash TEXT,
		max_views INTEGER,
		link_url TEXT,
		paste_content TEXT,
		paste_syntax TEXT,
		creator_id TEXT,
		removed_reason TEXT,
		reverse_share_token TEXT
	);

	CREATE TABLE IF NOT EXISTS share_recipients (
		share_id TEXT NOT NULL REFERENCES shares(id) ON DELETE CASCADE,
		email TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_shares_creator ON shares(creator_id);
	CREATE INDEX IF NOT EXISTS idx_shares_expires_at ON shares(expires_at);
	CREATE INDEX IF NOT EXISTS idx_share_recipients_share ON share_recipients(share_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

const shareColumns = `id, share_type, name, description, expires_at, created_at,
	upload_locked, zip_ready, views, password_hash, max_views,
	link_url, paste_content, paste_syntax, creator_id, removed_reason, reverse_share_token`

// Create inserts a new share. The primary key constraint on the id is the
// authoritative uniqueness guarantee; a violation surfaces as ErrIDTaken.
func (s *SQLiteStore) Create(ctx context.Context, share *Share) error {
	var expiresAt interface{}
	if share.ExpiresAt != nil {
		expiresAt = share.ExpiresAt.Unix()
	}

	var passwordHash, maxViews interface{}
	if share.Security != nil {
		if share.Security.PasswordHash != "" {
			passwordHash = share.Security.PasswordHash
		}
		if share.Security.MaxViews > 0 {
			maxViews = share.Security.MaxViews
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO shares (id, share_type, name, description, expires_at, created_at,
			upload_locked, zip_ready, views, password_hash, max_views,
			link_url, paste_content, paste_syntax, creator_id, removed_reason, reverse_share_token)
		VALUES (?, ?, ?, ?, ?, ?, ?, 0, 0, ?, ?, ?, ?, ?, ?, NULL, ?)
	`,
		share.ID,
		string(share.Type),
		nullString(share.Name),
		nullString(share.Description),
		expiresAt,
		share.CreatedAt.Unix(),
		share.UploadLocked,
		passwordHash,
		maxViews,
		nullString(share.LinkURL),
		nullString(share.PasteContent),
		nullString(share.PasteSyntax),
		nullString(share.CreatorID),
		nullString(share.ReverseShareToken),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrIDTaken
		}
		return fmt.Errorf("failed to create share: %w", err)
	}

	for _, email := range share.Recipients {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO share_recipients (share_id, email) VALUES (?, ?)`,
			share.ID, email,
		); err != nil {
			return fmt.Errorf("failed to store recipient: %w", err)
		}
	}

	return tx.Commit()
}

// Get retrieves a share by id
func (s *SQLiteStore) Get(ctx context.Context, shareID string) (*Share, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+shareColumns+` FROM shares WHERE id = ?`, shareID)

	share, err := scanShare(row)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT email FROM share_recipients WHERE share_id = ?`, shareID)
	if err != nil {
		return nil, fmt.Errorf("failed to load recipients: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, err
		}
		share.Recipients = append(share.Recipients, email)
	}

	return share, rows.Err()
}

// Exists reports whether a share with the given id exists. Advisory only;
// Create enforces uniqueness.
func (s *SQLiteStore) Exists(ctx context.Context, shareID string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM shares WHERE id = ?`, shareID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ListAll lists every share, newest expiration first
func (s *SQLiteStore) ListAll(ctx context.Context) ([]*Share, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+shareColumns+` FROM shares ORDER BY expires_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectShares(rows)
}

// ListByCreator lists the completed, unexpired shares of a creator
func (s *SQLiteStore) ListByCreator(ctx context.Context, creatorID string) ([]*Share, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+shareColumns+` FROM shares
		WHERE creator_id = ? AND upload_locked = 1
		AND (expires_at IS NULL OR expires_at > ?)
		ORDER BY expires_at DESC
	`, creatorID, time.Now().UTC().Unix())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectShares(rows)
}

// ListExpired lists shares whose expiration lies before now
func (s *SQLiteStore) ListExpired(ctx context.Context, now time.Time) ([]*Share, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+shareColumns+` FROM shares
		WHERE expires_at IS NOT NULL AND expires_at < ?
	`, now.UTC().Unix())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectShares(rows)
}

// SetUploadLocked updates the completion flag of a share
func (s *SQLiteStore) SetUploadLocked(ctx context.Context, shareID string, locked bool) error {
	return s.updateFlag(ctx, shareID, `UPDATE shares SET upload_locked = ? WHERE id = ?`, locked)
}

// SetZipReady updates the archive readiness flag of a share
func (s *SQLiteStore) SetZipReady(ctx context.Context, shareID string, ready bool) error {
	return s.updateFlag(ctx, shareID, `UPDATE shares SET zip_ready = ? WHERE id = ?`, ready)
}

// ResetCompletion reopens a share for uploads, clearing both the completion
// and the archive readiness flag in one statement
func (s *SQLiteStore) ResetCompletion(ctx context.Context, shareID string) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE shares SET upload_locked = 0, zip_ready = 0 WHERE id = ?`, shareID)
	if err != nil {
		return err
	}
	return requireRow(result)
}

// SetRemovedReason marks a share as administratively taken down
func (s *SQLiteStore) SetRemovedReason(ctx context.Context, shareID, reason string) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE shares SET removed_reason = ? WHERE id = ?`, reason, shareID)
	if err != nil {
		return err
	}
	return requireRow(result)
}

// TryIncrementViews performs the check-and-increment of the view counter as a
// single conditional update, so two concurrent authorizations cannot both
// claim the last remaining view slot.
func (s *SQLiteStore) TryIncrementViews(ctx context.Context, shareID string, maxViews int64) (bool, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE shares SET views = views + 1
		WHERE id = ? AND (? = 0 OR views < ?)
	`, shareID, maxViews, maxViews)
	if err != nil {
		return false, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows == 1, nil
}

// Delete removes a share and, via cascade, its recipients
func (s *SQLiteStore) Delete(ctx context.Context, shareID string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM shares WHERE id = ?`, shareID)
	if err != nil {
		return err
	}
	return requireRow(result)
}

func (s *SQLiteStore) updateFlag(ctx context.Context, shareID, query string, value bool) error {
	result, err := s.db.ExecContext(ctx, query, value, shareID)
	if err != nil {
		return err
	}
	return requireRow(result)
}

func requireRow(result sql.Result) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func nullString(v string) interface{} {
	if v == "" {
		return nil
	}
	return v
}

func collectShares(rows *sql.Rows) ([]*Share, error) {
	var shares []*Share
	for rows.Next() {
		share, err := scanShare(rows)
		if err != nil {
			return nil, err
		}
		shares = append(shares, share)
	}
	return shares, rows.Err()
}

// scanShare scans a share from a database row
func scanShare(scanner interface {
	Scan(dest ...interface{}) error
}) (*Share, error) {
	var share Share
	var shareType string
	var name, description, passwordHash sql.NullString
	var linkURL, pasteContent, pasteSyntax sql.NullString
	var creatorID, removedReason, reverseToken sql.NullString
	var expiresAt, maxViews sql.NullInt64
	var createdAt int64

	err := scanner.Scan(
		&share.ID,
		&shareType,
		&name,
		&description,
		&expiresAt,
		&createdAt,
		&share.UploadLocked,
		&share.ZipReady,
		&share.Views,
		&passwordHash,
		&maxViews,
		&linkURL,
		&pasteContent,
		&pasteSyntax,
		&creatorID,
		&removedReason,
		&reverseToken,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan share: %w", err)
	}

	share.Type = ShareType(shareType)
	share.Name = name.String
	share.Description = description.String
	share.CreatedAt = time.Unix(createdAt, 0).UTC()
	share.LinkURL = linkURL.String
	share.PasteContent = pasteContent.String
	share.PasteSyntax = pasteSyntax.String
	share.CreatorID = creatorID.String
	share.RemovedReason = removedReason.String
	share.ReverseShareToken = reverseToken.String

	if expiresAt.Valid {
		expiry := time.Unix(expiresAt.Int64, 0).UTC()
		share.ExpiresAt = &expiry
	}

	if passwordHash.Valid || maxViews.Valid {
		share.Security = &Security{
			PasswordHash: passwordHash.String,
			MaxViews:     maxViews.Int64,
		}
	}

	return &share, nil
}
