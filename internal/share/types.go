package share

import (
	"errors"
	"fmt"
	"time"
)

// ShareType discriminates the three share variants
type ShareType string

const (
	TypeFile  ShareType = "FILE"
	TypeLink  ShareType = "LINK"
	TypePaste ShareType = "PASTE"
)

// Limits enforced at creation time
const (
	MinIDLength       = 3
	MaxIDLength       = 50
	MaxPasteLength    = 1000000
	MaxSyntaxLength   = 50
	MaxViewsLimit     = 999999
	MaxNameLength     = 30
	MaxDescriptionLen = 512
)

// Share represents a published unit of content addressed by a user-chosen id.
// Exactly one variant's fields are populated, keyed by Type; the store
// preserves that exclusivity on every read and write path.
type Share struct {
	ID          string     `json:"id"`
	Type        ShareType  `json:"shareType"`
	Name        string     `json:"name,omitempty"`
	Description string     `json:"description,omitempty"`
	ExpiresAt   *time.Time `json:"expiresAt,omitempty"` // nil = never expires
	CreatedAt   time.Time  `json:"createdAt"`

	UploadLocked bool  `json:"uploadLocked"`
	ZipReady     bool  `json:"isZipReady"`
	Views        int64 `json:"views"`

	Security *Security `json:"security,omitempty"`

	// LINK variant
	LinkURL string `json:"linkUrl,omitempty"`

	// PASTE variant
	PasteContent string `json:"pasteContent,omitempty"`
	PasteSyntax  string `json:"pasteSyntax,omitempty"`

	CreatorID     string   `json:"creatorId,omitempty"` // empty = anonymous
	Recipients    []string `json:"recipients,omitempty"`
	RemovedReason string   `json:"-"`

	// Token of the reverse share invitation this share was created under
	ReverseShareToken string `json:"-"`
}

// Security holds the optional access restrictions of a share. A nil Security
// means unrestricted access.
type Security struct {
	PasswordHash string `json:"-"`
	MaxViews     int64  `json:"maxViews,omitempty"` // 0 = unlimited
}

// CreateRequest carries the caller-supplied fields for a new share
type CreateRequest struct {
	ID          string    `json:"id"`
	Type        ShareType `json:"shareType"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Expiration  string    `json:"expiration"` // "<n>-<unit>" or "never"
	Recipients  []string  `json:"recipients"`

	Password string `json:"password"`
	MaxViews int64  `json:"maxViews"`

	LinkURL      string `json:"linkUrl"`
	PasteContent string `json:"pasteContent"`
	PasteSyntax  string `json:"pasteSyntax"`
}

// ReverseShareInfo describes a reverse share invitation as seen by the
// lifecycle manager. Supplied by the reverse share collaborator.
type ReverseShareInfo struct {
	Token              string
	ShareExpiration    *time.Time // nil = never
	RemainingUses      int64
	NotifyOnCompletion bool
	CreatorEmail       string
}

// Common errors
var (
	ErrIDTaken             = errors.New("share id already in use")
	ErrInvalidID           = errors.New("share id must be 3-50 characters of letters, numbers, underscores and hyphens")
	ErrMissingVariantField = errors.New("required field for this share type is missing")
	ErrExpirationTooLong   = errors.New("expiration date exceeds maximum expiration date")
	ErrNotFound            = errors.New("share not found")
	ErrForbidden           = errors.New("anonymous shares can't be deleted")
	ErrAlreadyCompleted    = errors.New("share already completed")
	ErrEmptyShare          = errors.New("share needs at least one file to be completed")
	ErrPasswordRequired    = errors.New("this share is password protected")
	ErrInvalidPassword     = errors.New("wrong password")
	ErrViewQuotaExceeded   = errors.New("maximum views exceeded")
)

// RemovedError reports a share that was administratively taken down. It
// carries the removal reason so callers can surface it.
type RemovedError struct {
	Reason string
}

func (e *RemovedError) Error() string {
	return fmt.Sprintf("share removed: %s", e.Reason)
}

// IsExpired reports whether the share's expiration lies in the past. A share
// without an expiration never expires.
func (s *Share) IsExpired() bool {
	if s.ExpiresAt == nil {
		return false
	}
	return time.Now().UTC().After(*s.ExpiresAt)
}

// HasPassword reports whether access requires a password
func (s *Share) HasPassword() bool {
	return s.Security != nil && s.Security.PasswordHash != ""
}

// Restricted reports whether any security gate applies to this share
func (s *Share) Restricted() bool {
	return s.Security != nil && (s.Security.PasswordHash != "" || s.Security.MaxViews > 0)
}
