package share

import (
	"context"
	"time"
)

// Store defines the interface for share persistence. The store's uniqueness
// constraint on the share id is the authoritative guard against concurrent
// creation of the same id; Exists is advisory only.
type Store interface {
	Create(ctx context.Context, share *Share) error
	Get(ctx context.Context, shareID string) (*Share, error)
	Exists(ctx context.Context, shareID string) (bool, error)
	ListAll(ctx context.Context) ([]*Share, error)
	ListByCreator(ctx context.Context, creatorID string) ([]*Share, error)
	ListExpired(ctx context.Context, now time.Time) ([]*Share, error)

	SetUploadLocked(ctx context.Context, shareID string, locked bool) error
	SetZipReady(ctx context.Context, shareID string, ready bool) error
	ResetCompletion(ctx context.Context, shareID string) error
	SetRemovedReason(ctx context.Context, shareID, reason string) error

	// TryIncrementViews atomically increments the view counter unless the
	// counter already reached maxViews. maxViews 0 means unlimited. Returns
	// whether the increment happened.
	TryIncrementViews(ctx context.Context, shareID string, maxViews int64) (bool, error)

	Delete(ctx context.Context, shareID string) error
}
