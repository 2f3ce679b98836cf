package reverseshare

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// SQLiteStore persists reverse share invitations in SQLite
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite reverse share store
func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	store := &SQLiteStore{db: db}
	if err := store.initialize(); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *SQLiteStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS reverse_shares (
		token TEXT PRIMARY KEY,
		share_expiration INTEGER,
		max_share_size INTEGER NOT NULL DEFAULT 0,
		remaining_uses INTEGER NOT NULL,
		send_email_notification INTEGER NOT NULL DEFAULT 0,
		creator_id TEXT NOT NULL,
		creator_email TEXT,
		created_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS reverse_share_shares (
		token TEXT NOT NULL REFERENCES reverse_shares(token) ON DELETE CASCADE,
		share_id TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_reverse_shares_creator ON reverse_shares(creator_id);
	CREATE INDEX IF NOT EXISTS idx_reverse_share_shares_token ON reverse_share_shares(token);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Create inserts a new invitation
func (s *SQLiteStore) Create(ctx context.Context, rs *ReverseShare) error {
	var expiration interface{}
	if rs.ShareExpiration != nil {
		expiration = rs.ShareExpiration.Unix()
	}

	var email interface{}
	if rs.CreatorEmail != "" {
		email = rs.CreatorEmail
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO reverse_shares (token, share_expiration, max_share_size,
			remaining_uses, send_email_notification, creator_id, creator_email, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		rs.Token,
		expiration,
		rs.MaxShareSize,
		rs.RemainingUses,
		rs.SendEmailNotification,
		rs.CreatorID,
		email,
		rs.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to create reverse share: %w", err)
	}
	return nil
}

// Get retrieves an invitation by token
func (s *SQLiteStore) Get(ctx context.Context, token string) (*ReverseShare, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT token, share_expiration, max_share_size, remaining_uses,
			send_email_notification, creator_id, creator_email, created_at
		FROM reverse_shares WHERE token = ?
	`, token)

	rs, err := scanReverseShare(row)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT share_id FROM reverse_share_shares WHERE token = ?`, token)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var shareID string
		if err := rows.Scan(&shareID); err != nil {
			return nil, err
		}
		rs.ShareIDs = append(rs.ShareIDs, shareID)
	}

	return rs, rows.Err()
}

// ListByCreator lists the invitations issued by a user
func (s *SQLiteStore) ListByCreator(ctx context.Context, creatorID string) ([]*ReverseShare, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT token, share_expiration, max_share_size, remaining_uses,
			send_email_notification, creator_id, creator_email, created_at
		FROM reverse_shares WHERE creator_id = ?
		ORDER BY created_at DESC
	`, creatorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var shares []*ReverseShare
	for rows.Next() {
		rs, err := scanReverseShare(rows)
		if err != nil {
			return nil, err
		}
		shares = append(shares, rs)
	}
	return shares, rows.Err()
}

// BindShare records a share created through the invitation
func (s *SQLiteStore) BindShare(ctx context.Context, token, shareID string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO reverse_share_shares (token, share_id) VALUES (?, ?)`,
		token, shareID)
	return err
}

// DecrementRemainingUses consumes one use of the invitation. The decrement is
// conditional so the counter never goes negative under concurrent completions.
func (s *SQLiteStore) DecrementRemainingUses(ctx context.Context, token string) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE reverse_shares SET remaining_uses = remaining_uses - 1
		WHERE token = ? AND remaining_uses > 0
	`, token)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrExhausted
	}
	return nil
}

// Delete removes an invitation
func (s *SQLiteStore) Delete(ctx context.Context, token string) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM reverse_shares WHERE token = ?`, token)
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

func scanReverseShare(scanner interface {
	Scan(dest ...interface{}) error
}) (*ReverseShare, error) {
	var rs ReverseShare
	var expiration sql.NullInt64
	var email sql.NullString
	var createdAt int64

	err := scanner.Scan(
		&rs.Token,
		&expiration,
		&rs.MaxShareSize,
		&rs.RemainingUses,
		&rs.SendEmailNotification,
		&rs.CreatorID,
		&email,
		&createdAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan reverse share: %w", err)
	}

	if expiration.Valid {
		t := time.Unix(expiration.Int64, 0).UTC()
		rs.ShareExpiration = &t
	}
	rs.CreatorEmail = email.String
	rs.CreatedAt = time.Unix(createdAt, 0).UTC()

	return &rs, nil
}
