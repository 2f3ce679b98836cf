package reverseshare

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/shareforge/shareforge/internal/share"
)

// Manager handles reverse share invitations
type Manager struct {
	store *SQLiteStore
}

// NewManager creates a new reverse share manager
func NewManager(store *SQLiteStore) *Manager {
	return &Manager{store: store}
}

// Create issues a new invitation token under the inviter's policy
func (m *Manager) Create(ctx context.Context, req *CreateRequest, creatorID, creatorEmail string) (*ReverseShare, error) {
	if creatorID == "" {
		return nil, fmt.Errorf("reverse shares require an authenticated creator")
	}
	if req.MaxUseCount < 1 {
		return nil, fmt.Errorf("maxUseCount must be at least 1")
	}

	now := time.Now().UTC()
	expiration, err := share.ParseRelativeDate(req.ShareExpiration, now)
	if err != nil {
		return nil, err
	}

	rs := &ReverseShare{
		Token:                 uuid.NewString(),
		ShareExpiration:       expiration,
		MaxShareSize:          req.MaxShareSize,
		RemainingUses:         req.MaxUseCount,
		SendEmailNotification: req.SendEmailNotification,
		CreatorID:             creatorID,
		CreatorEmail:          creatorEmail,
		CreatedAt:             now,
	}

	if err := m.store.Create(ctx, rs); err != nil {
		return nil, err
	}
	return rs, nil
}

// Get retrieves an invitation by token
func (m *Manager) Get(ctx context.Context, token string) (*ReverseShare, error) {
	return m.store.Get(ctx, token)
}

// GetUsable retrieves an invitation that still has remaining uses
func (m *Manager) GetUsable(ctx context.Context, token string) (*ReverseShare, error) {
	rs, err := m.store.Get(ctx, token)
	if err != nil {
		return nil, err
	}
	if rs.RemainingUses <= 0 {
		return nil, ErrExhausted
	}
	return rs, nil
}

// ListByCreator lists a user's invitations
func (m *Manager) ListByCreator(ctx context.Context, creatorID string) ([]*ReverseShare, error) {
	return m.store.ListByCreator(ctx, creatorID)
}

// BindShare records a share against the invitation it was created under
func (m *Manager) BindShare(ctx context.Context, token, shareID string) error {
	return m.store.BindShare(ctx, token, shareID)
}

// DecrementRemainingUses consumes one use of the invitation
func (m *Manager) DecrementRemainingUses(ctx context.Context, token string) error {
	return m.store.DecrementRemainingUses(ctx, token)
}

// Delete removes an invitation
func (m *Manager) Delete(ctx context.Context, token string) error {
	return m.store.Delete(ctx, token)
}
