package share

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"time"

	"github.com/sirupsen/logrus"
)

// FileCollaborator is the file storage contract consumed by the manager
type FileCollaborator interface {
	Mkdir(ctx context.Context, shareID string) error
	Count(ctx context.Context, shareID string) (int, error)
	DeleteAll(ctx context.Context, shareID string) error
}

// Notifier delivers share notifications to recipients and inviters
type Notifier interface {
	Enabled() bool
	NotifyRecipient(email, shareID, creatorID, description string, expiresAt *time.Time) error
	NotifyReverseShareCreator(email, shareID string) error
}

// Scanner checks a completed share for malicious content. Implementations
// run detached and may later mark the share removed.
type Scanner interface {
	ScanAndRemove(shareID string)
}

// ReverseShareBinder is the reverse share invitation contract. GetByToken
// returns (nil, nil) when the token is empty or unknown.
type ReverseShareBinder interface {
	GetByToken(ctx context.Context, token string) (*ReverseShareInfo, error)
	BindShare(ctx context.Context, token, shareID string) error
	DecrementRemainingUses(ctx context.Context, token string) error
}

var idPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// Manager orchestrates the share lifecycle: identifier reservation, variant
// validation, expiration resolution, two-phase FILE completion, gated access
// token issuance and removal.
type Manager struct {
	store         Store
	files         FileCollaborator
	notifier      Notifier
	scanner       Scanner
	reverseShares ReverseShareBinder
	packager      *Packager
	issuer        *TokenIssuer
	maxExpiration MaxExpiration
}

// ManagerConfig bundles the collaborators of a Manager. Packager may be nil
// when object storage is delegated to an external blob store; Scanner,
// Notifier and ReverseShares may be nil when the deployment lacks them.
type ManagerConfig struct {
	Store         Store
	Files         FileCollaborator
	Notifier      Notifier
	Scanner       Scanner
	ReverseShares ReverseShareBinder
	Packager      *Packager
	TokenSecret   string
	MaxExpiration MaxExpiration
}

// NewManager creates a new share lifecycle manager
func NewManager(cfg ManagerConfig) *Manager {
	return &Manager{
		store:         cfg.Store,
		files:         cfg.Files,
		notifier:      cfg.Notifier,
		scanner:       cfg.Scanner,
		reverseShares: cfg.ReverseShares,
		packager:      cfg.Packager,
		issuer:        NewTokenIssuer(cfg.TokenSecret),
		maxExpiration: cfg.MaxExpiration,
	}
}

// Create reserves the identifier and persists a new share. FILE shares start
// as drafts awaiting Complete; LINK and PASTE shares are complete immediately
// and recipient notifications go out right away. A reverse share token
// overrides the resolved expiration and skips the maximum-lifetime cap.
func (m *Manager) Create(ctx context.Context, req *CreateRequest, creatorID, reverseToken string) (*Share, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	// Advisory pre-check for a friendlier error; the store's primary key
	// constraint is what actually guarantees uniqueness under concurrency.
	taken, err := m.store.Exists(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrIDTaken
	}

	security, err := buildSecurity(req)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	var reverse *ReverseShareInfo
	if reverseToken != "" && m.reverseShares != nil {
		if reverse, err = m.reverseShares.GetByToken(ctx, reverseToken); err != nil {
			return nil, err
		}
	}

	var expiresAt *time.Time
	if reverse != nil {
		// The invitation's expiration is authoritative and not re-validated
		// against the cap; the cap only bounds self-service creation.
		expiresAt = reverse.ShareExpiration
	} else {
		expiresAt, err = ParseRelativeDate(req.Expiration, now)
		if err != nil {
			return nil, err
		}
		if err := EnforceMaxExpiration(expiresAt, m.maxExpiration, now); err != nil {
			return nil, err
		}
	}

	share := &Share{
		ID:           req.ID,
		Type:         req.Type,
		Name:         req.Name,
		Description:  req.Description,
		ExpiresAt:    expiresAt,
		CreatedAt:    now,
		UploadLocked: req.Type != TypeFile,
		Security:     security,
		Recipients:   req.Recipients,
		CreatorID:    creatorID,
	}
	switch req.Type {
	case TypeLink:
		share.LinkURL = req.LinkURL
	case TypePaste:
		share.PasteContent = req.PasteContent
		share.PasteSyntax = req.PasteSyntax
	}
	if reverse != nil {
		share.ReverseShareToken = reverse.Token
	}

	if req.Type == TypeFile {
		if err := m.files.Mkdir(ctx, share.ID); err != nil {
			return nil, fmt.Errorf("failed to prepare share storage: %w", err)
		}
	}

	if err := m.store.Create(ctx, share); err != nil {
		return nil, err
	}

	if reverse != nil {
		if err := m.reverseShares.BindShare(ctx, reverse.Token, share.ID); err != nil {
			return nil, err
		}
	}

	// LINK and PASTE shares have no upload phase, so recipients hear about
	// them now; FILE share notifications wait for Complete.
	if req.Type != TypeFile {
		m.notifyRecipients(share)
	}

	return share, nil
}

// Complete finishes the upload phase of a FILE share: it triggers the
// detached archive build for multi-file shares, fires notifications and the
// malware scan, settles the reverse share invitation and locks the share.
func (m *Manager) Complete(ctx context.Context, shareID, reverseToken string) (*Share, error) {
	share, err := m.store.Get(ctx, shareID)
	if err != nil {
		return nil, err
	}
	if share.UploadLocked {
		return nil, ErrAlreadyCompleted
	}

	count, err := m.files.Count(ctx, shareID)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, ErrEmptyShare
	}

	// Result observed later through the readiness flag; a second Complete is
	// rejected above, so the build triggers at most once per completion.
	if count > 1 && m.packager != nil {
		m.packager.BuildAsync(shareID)
	}

	m.notifyRecipients(share)

	token := reverseToken
	if token == "" {
		token = share.ReverseShareToken
	}
	if token != "" && m.reverseShares != nil {
		m.settleReverseShare(ctx, token, share.ID)
	}

	if m.scanner != nil {
		m.scanner.ScanAndRemove(shareID)
	}

	if err := m.store.SetUploadLocked(ctx, shareID, true); err != nil {
		return nil, err
	}

	share.UploadLocked = true
	return share, nil
}

// RevertComplete reopens a share for further uploads, clearing the completion
// and archive readiness flags unconditionally
func (m *Manager) RevertComplete(ctx context.Context, shareID string) error {
	return m.store.ResetCompletion(ctx, shareID)
}

// Remove deletes a share and its file storage. Anonymous shares may only be
// removed by administrators. Storage cleanup runs before record deletion;
// a cleanup failure is logged and the record is deleted anyway, which can
// leave orphaned files behind.
func (m *Manager) Remove(ctx context.Context, shareID string, isDeleterAdmin bool) error {
	share, err := m.store.Get(ctx, shareID)
	if err != nil {
		return err
	}

	if share.CreatorID == "" && !isDeleterAdmin {
		return ErrForbidden
	}

	if share.Type == TypeFile && m.files != nil {
		if err := m.files.DeleteAll(ctx, shareID); err != nil {
			logrus.WithError(err).WithField("share_id", shareID).Warn("Failed to delete share storage")
		}
	}

	return m.store.Delete(ctx, shareID)
}

// Get returns a share for the public retrieval path. Removed shares surface
// their removal reason; drafts and expired shares are indistinguishable from
// nonexistent ones.
func (m *Manager) Get(ctx context.Context, shareID string) (*Share, error) {
	return m.getVisible(ctx, shareID)
}

// GetMetaData returns a share record under the same visibility rules as Get
func (m *Manager) GetMetaData(ctx context.Context, shareID string) (*Share, error) {
	return m.getVisible(ctx, shareID)
}

func (m *Manager) getVisible(ctx context.Context, shareID string) (*Share, error) {
	share, err := m.store.Get(ctx, shareID)
	if err != nil {
		return nil, err
	}
	if share.RemovedReason != "" {
		return nil, &RemovedError{Reason: share.RemovedReason}
	}
	if !share.UploadLocked || share.IsExpired() {
		return nil, ErrNotFound
	}
	return share, nil
}

// IsIDAvailable reports whether an identifier can still be claimed. Best
// effort only: the authoritative answer is Create's unique constraint.
func (m *Manager) IsIDAvailable(ctx context.Context, shareID string) (bool, error) {
	taken, err := m.store.Exists(ctx, shareID)
	if err != nil {
		return false, err
	}
	return !taken, nil
}

// IsCompleted reports whether the share finished its upload phase
func (m *Manager) IsCompleted(ctx context.Context, shareID string) (bool, error) {
	share, err := m.store.Get(ctx, shareID)
	if err != nil {
		return false, err
	}
	return share.UploadLocked, nil
}

// ListAll returns every share, for administrators
func (m *Manager) ListAll(ctx context.Context) ([]*Share, error) {
	return m.store.ListAll(ctx)
}

// ListByCreator returns the completed, unexpired shares of a user
func (m *Manager) ListByCreator(ctx context.Context, creatorID string) ([]*Share, error) {
	return m.store.ListByCreator(ctx, creatorID)
}

// AuthorizeAccess runs the security gate for a share and, on success, issues
// a signed access token. The view counter is incremented exactly once per
// successful authorization via an atomic conditional update, so the Nth
// allowed view is the last one that succeeds.
func (m *Manager) AuthorizeAccess(ctx context.Context, shareID, password string) (string, error) {
	share, err := m.store.Get(ctx, shareID)
	if err != nil {
		return "", err
	}

	if share.HasPassword() {
		if password == "" {
			return "", ErrPasswordRequired
		}
		if !VerifyPassword(password, share.Security.PasswordHash) {
			return "", ErrInvalidPassword
		}
	}

	var maxViews int64
	if share.Security != nil {
		maxViews = share.Security.MaxViews
	}
	ok, err := m.store.TryIncrementViews(ctx, shareID, maxViews)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", ErrViewQuotaExceeded
	}

	return m.issuer.Issue(share, time.Now().UTC())
}

// VerifyAccessToken checks a presented access token against the current
// share record. It fails closed: any lookup, signature or claim failure
// yields false.
func (m *Manager) VerifyAccessToken(ctx context.Context, shareID, token string) bool {
	share, err := m.store.Get(ctx, shareID)
	if err != nil {
		return false
	}
	return m.issuer.Verify(share, token)
}

func (m *Manager) notifyRecipients(share *Share) {
	if m.notifier == nil || !m.notifier.Enabled() {
		return
	}
	for _, email := range share.Recipients {
		if err := m.notifier.NotifyRecipient(email, share.ID, share.CreatorID, share.Description, share.ExpiresAt); err != nil {
			logrus.WithError(err).WithFields(logrus.Fields{
				"share_id":  share.ID,
				"recipient": email,
			}).Warn("Failed to notify share recipient")
		}
	}
}

func (m *Manager) settleReverseShare(ctx context.Context, token, shareID string) {
	reverse, err := m.reverseShares.GetByToken(ctx, token)
	if err != nil || reverse == nil {
		return
	}

	if reverse.NotifyOnCompletion && m.notifier != nil && m.notifier.Enabled() {
		if err := m.notifier.NotifyReverseShareCreator(reverse.CreatorEmail, shareID); err != nil {
			logrus.WithError(err).WithField("share_id", shareID).Warn("Failed to notify reverse share creator")
		}
	}

	if err := m.reverseShares.DecrementRemainingUses(ctx, token); err != nil {
		logrus.WithError(err).WithField("share_id", shareID).Warn("Failed to decrement reverse share uses")
	}
}

func validateRequest(req *CreateRequest) error {
	if req.Type == "" {
		req.Type = TypeFile
	}

	if len(req.ID) < MinIDLength || len(req.ID) > MaxIDLength || !idPattern.MatchString(req.ID) {
		return ErrInvalidID
	}
	if len(req.Name) > MaxNameLength {
		return fmt.Errorf("name must be at most %d characters", MaxNameLength)
	}
	if len(req.Description) > MaxDescriptionLen {
		return fmt.Errorf("description must be at most %d characters", MaxDescriptionLen)
	}

	switch req.Type {
	case TypeFile:
		// No variant field; content arrives through the upload phase
	case TypeLink:
		if req.LinkURL == "" {
			return fmt.Errorf("%w: linkUrl is required for LINK shares", ErrMissingVariantField)
		}
		if u, err := url.ParseRequestURI(req.LinkURL); err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("linkUrl must be a valid URL")
		}
	case TypePaste:
		if req.PasteContent == "" {
			return fmt.Errorf("%w: pasteContent is required for PASTE shares", ErrMissingVariantField)
		}
		if len(req.PasteContent) > MaxPasteLength {
			return fmt.Errorf("pasteContent must be at most %d characters", MaxPasteLength)
		}
		if len(req.PasteSyntax) > MaxSyntaxLength {
			return fmt.Errorf("pasteSyntax must be at most %d characters", MaxSyntaxLength)
		}
	default:
		return fmt.Errorf("unknown share type %q", req.Type)
	}

	return nil
}

func buildSecurity(req *CreateRequest) (*Security, error) {
	// An empty security block means unrestricted access
	if req.Password == "" && req.MaxViews == 0 {
		return nil, nil
	}

	if req.MaxViews < 0 || req.MaxViews > MaxViewsLimit {
		return nil, fmt.Errorf("maxViews must be between 1 and %d", MaxViewsLimit)
	}

	security := &Security{MaxViews: req.MaxViews}
	if req.Password != "" {
		hash, err := HashPassword(req.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash share password: %w", err)
		}
		security.PasswordHash = hash
	}
	return security, nil
}
