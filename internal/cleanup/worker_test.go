package cleanup

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/shareforge/shareforge/internal/share"
)

func setupWorker(t *testing.T) (*Worker, share.Store, *int) {
	t.Helper()

	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "shares.db")+"?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	store, err := share.NewSQLiteStore(db)
	require.NoError(t, err)

	manager := share.NewManager(share.ManagerConfig{
		Store:       store,
		TokenSecret: "test-secret",
	})

	var cleaned int
	worker := NewWorker(store, manager, func(count int) { cleaned += count })
	return worker, store, &cleaned
}

func seedShare(t *testing.T, store share.Store, id string, expiresAt *time.Time) {
	t.Helper()
	require.NoError(t, store.Create(context.Background(), &share.Share{
		ID:           id,
		Type:         share.TypePaste,
		ExpiresAt:    expiresAt,
		CreatedAt:    time.Now().UTC(),
		UploadLocked: true,
		CreatorID:    "user1",
		PasteContent: "content",
	}))
}

func TestSweepDeletesExpiredOnly(t *testing.T) {
	worker, store, cleaned := setupWorker(t)
	ctx := context.Background()

	past := time.Now().Add(-time.Hour)
	future := time.Now().Add(time.Hour)
	seedShare(t, store, "expired1", &past)
	seedShare(t, store, "expired2", &past)
	seedShare(t, store, "active", &future)
	seedShare(t, store, "forever", nil)

	worker.Sweep(ctx)

	_, err := store.Get(ctx, "expired1")
	assert.ErrorIs(t, err, share.ErrNotFound)
	_, err = store.Get(ctx, "expired2")
	assert.ErrorIs(t, err, share.ErrNotFound)

	_, err = store.Get(ctx, "active")
	assert.NoError(t, err)
	_, err = store.Get(ctx, "forever")
	assert.NoError(t, err)

	assert.Equal(t, 2, *cleaned)
}

func TestSweepNothingExpired(t *testing.T) {
	worker, store, cleaned := setupWorker(t)

	future := time.Now().Add(time.Hour)
	seedShare(t, store, "active", &future)

	worker.Sweep(context.Background())

	_, err := store.Get(context.Background(), "active")
	assert.NoError(t, err)
	assert.Zero(t, *cleaned)
}

func TestStartAndStop(t *testing.T) {
	worker, store, _ := setupWorker(t)

	past := time.Now().Add(-time.Hour)
	seedShare(t, store, "expired", &past)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	worker.Start(ctx, time.Hour)
	defer worker.Stop()

	assert.Eventually(t, func() bool {
		_, err := store.Get(context.Background(), "expired")
		return err == share.ErrNotFound
	}, 5*time.Second, 10*time.Millisecond)
}
