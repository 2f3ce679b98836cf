package share

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func setupTestStore(t *testing.T) *SQLiteStore {
	dbPath := filepath.Join(t.TempDir(), "shareforge.db")
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	store, err := NewSQLiteStore(db)
	require.NoError(t, err)
	return store
}

type fakeFiles struct {
	mu       sync.Mutex
	files    map[string][]FileEntry
	content  map[string][]byte
	deleted  []string
	mkdirErr error
}

func newFakeFiles() *fakeFiles {
	return &fakeFiles{
		files:   make(map[string][]FileEntry),
		content: make(map[string][]byte),
	}
}

func (f *fakeFiles) add(shareID, fileID, name string, data []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.files[shareID] = append(f.files[shareID], FileEntry{ID: fileID, Name: name})
	f.content[shareID+"/"+fileID] = data
}

func (f *fakeFiles) Mkdir(ctx context.Context, shareID string) error {
	return f.mkdirErr
}

func (f *fakeFiles) Count(ctx context.Context, shareID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.files[shareID]), nil
}

func (f *fakeFiles) DeleteAll(ctx context.Context, shareID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, shareID)
	delete(f.files, shareID)
	return nil
}

func (f *fakeFiles) List(ctx context.Context, shareID string) ([]FileEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]FileEntry(nil), f.files[shareID]...), nil
}

func (f *fakeFiles) ReadStream(ctx context.Context, shareID, fileID string) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.content[shareID+"/"+fileID]
	if !ok {
		return nil, fmt.Errorf("file %s not found", fileID)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

type fakeNotifier struct {
	mu              sync.Mutex
	enabled         bool
	recipients      []string
	reverseCreators []string
}

func (n *fakeNotifier) Enabled() bool { return n.enabled }

func (n *fakeNotifier) NotifyRecipient(email, shareID, creatorID, description string, expiresAt *time.Time) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.recipients = append(n.recipients, email)
	return nil
}

func (n *fakeNotifier) NotifyReverseShareCreator(email, shareID string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.reverseCreators = append(n.reverseCreators, email)
	return nil
}

type fakeScanner struct {
	mu      sync.Mutex
	scanned []string
}

func (s *fakeScanner) ScanAndRemove(shareID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scanned = append(s.scanned, shareID)
}

type fakeBinder struct {
	mu          sync.Mutex
	infos       map[string]*ReverseShareInfo
	bound       map[string]string
	decremented []string
}

func newFakeBinder() *fakeBinder {
	return &fakeBinder{
		infos: make(map[string]*ReverseShareInfo),
		bound: make(map[string]string),
	}
}

func (b *fakeBinder) GetByToken(ctx context.Context, token string) (*ReverseShareInfo, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.infos[token], nil
}

func (b *fakeBinder) BindShare(ctx context.Context, token, shareID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.bound[token] = shareID
	return nil
}

func (b *fakeBinder) DecrementRemainingUses(ctx context.Context, token string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.decremented = append(b.decremented, token)
	return nil
}

type testEnv struct {
	manager  *Manager
	store    *SQLiteStore
	files    *fakeFiles
	notifier *fakeNotifier
	scanner  *fakeScanner
	binder   *fakeBinder
}

func setupManager(t *testing.T, mutate func(*ManagerConfig)) *testEnv {
	store := setupTestStore(t)
	files := newFakeFiles()
	notifier := &fakeNotifier{enabled: true}
	scanner := &fakeScanner{}
	binder := newFakeBinder()

	cfg := ManagerConfig{
		Store:         store,
		Files:         files,
		Notifier:      notifier,
		Scanner:       scanner,
		ReverseShares: binder,
		TokenSecret:   "test-secret",
	}
	if mutate != nil {
		mutate(&cfg)
	}

	return &testEnv{
		manager:  NewManager(cfg),
		store:    store,
		files:    files,
		notifier: notifier,
		scanner:  scanner,
		binder:   binder,
	}
}

func TestCreate_PasteEndToEnd(t *testing.T) {
	env := setupManager(t, nil)
	ctx := context.Background()

	created, err := env.manager.Create(ctx, &CreateRequest{
		ID:           "abc",
		Type:         TypePaste,
		PasteContent: "hello",
		Expiration:   "never",
	}, "", "")
	require.NoError(t, err)
	assert.True(t, created.UploadLocked)
	assert.Equal(t, TypePaste, created.Type)
	assert.Nil(t, created.ExpiresAt)

	got, err := env.manager.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, "hello", got.PasteContent)
	assert.Equal(t, TypePaste, got.Type)
}

func TestCreate_MissingVariantField(t *testing.T) {
	env := setupManager(t, nil)
	ctx := context.Background()

	_, err := env.manager.Create(ctx, &CreateRequest{
		ID:         "my-link",
		Type:       TypeLink,
		Expiration: "1-days",
	}, "", "")
	assert.ErrorIs(t, err, ErrMissingVariantField)

	_, err = env.manager.Create(ctx, &CreateRequest{
		ID:         "my-paste",
		Type:       TypePaste,
		Expiration: "1-days",
	}, "", "")
	assert.ErrorIs(t, err, ErrMissingVariantField)

	// Nothing was persisted
	available, err := env.manager.IsIDAvailable(ctx, "my-link")
	require.NoError(t, err)
	assert.True(t, available)
}

func TestCreate_InvalidLinkURL(t *testing.T) {
	env := setupManager(t, nil)

	_, err := env.manager.Create(context.Background(), &CreateRequest{
		ID:         "bad-link",
		Type:       TypeLink,
		LinkURL:    "not a url",
		Expiration: "1-days",
	}, "", "")
	assert.Error(t, err)
}

func TestCreate_InvalidID(t *testing.T) {
	env := setupManager(t, nil)
	ctx := context.Background()

	for _, id := range []string{"ab", "has spaces", "bad/slash", "bad.dot", ""} {
		_, err := env.manager.Create(ctx, &CreateRequest{
			ID:           id,
			Type:         TypePaste,
			PasteContent: "x",
			Expiration:   "never",
		}, "", "")
		assert.ErrorIs(t, err, ErrInvalidID, "id %q should be rejected", id)
	}
}

func TestCreate_DuplicateID(t *testing.T) {
	env := setupManager(t, nil)
	ctx := context.Background()

	req := &CreateRequest{ID: "taken", Type: TypePaste, PasteContent: "x", Expiration: "never"}
	_, err := env.manager.Create(ctx, req, "", "")
	require.NoError(t, err)

	_, err = env.manager.Create(ctx, req, "", "")
	assert.ErrorIs(t, err, ErrIDTaken)
}

func TestCreate_FileShareIsDraft(t *testing.T) {
	env := setupManager(t, nil)
	ctx := context.Background()

	created, err := env.manager.Create(ctx, &CreateRequest{
		ID:         "xyz",
		Type:       TypeFile,
		Expiration: "7-days",
	}, "", "")
	require.NoError(t, err)
	assert.False(t, created.UploadLocked)
	require.NotNil(t, created.ExpiresAt)

	// Drafts are invisible to the public retrieval path
	_, err = env.manager.Get(ctx, "xyz")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = env.manager.GetMetaData(ctx, "xyz")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreate_MaxExpirationCap(t *testing.T) {
	env := setupManager(t, func(cfg *ManagerConfig) {
		cfg.MaxExpiration = MaxExpiration{Value: 7, Unit: "days"}
	})
	ctx := context.Background()

	_, err := env.manager.Create(ctx, &CreateRequest{
		ID: "too-long", Type: TypePaste, PasteContent: "x", Expiration: "30-days",
	}, "", "")
	assert.ErrorIs(t, err, ErrExpirationTooLong)

	_, err = env.manager.Create(ctx, &CreateRequest{
		ID: "eternal", Type: TypePaste, PasteContent: "x", Expiration: "never",
	}, "", "")
	assert.ErrorIs(t, err, ErrExpirationTooLong)

	_, err = env.manager.Create(ctx, &CreateRequest{
		ID: "short", Type: TypePaste, PasteContent: "x", Expiration: "1-days",
	}, "", "")
	assert.NoError(t, err)
}

func TestCreate_ReverseShareOverridesExpiration(t *testing.T) {
	env := setupManager(t, func(cfg *ManagerConfig) {
		cfg.MaxExpiration = MaxExpiration{Value: 1, Unit: "days"}
	})
	ctx := context.Background()

	invited := time.Now().UTC().AddDate(0, 0, 30).Truncate(time.Second)
	env.binder.infos["invite-1"] = &ReverseShareInfo{
		Token:           "invite-1",
		ShareExpiration: &invited,
		RemainingUses:   2,
	}

	// The invitation expiration wins and the cap is not applied
	created, err := env.manager.Create(ctx, &CreateRequest{
		ID: "invited", Type: TypePaste, PasteContent: "x", Expiration: "never",
	}, "", "invite-1")
	require.NoError(t, err)
	require.NotNil(t, created.ExpiresAt)
	assert.True(t, created.ExpiresAt.Equal(invited))
	assert.Equal(t, "invited", env.binder.bound["invite-1"])
}

func TestCreate_PasteNotifiesRecipientsImmediately(t *testing.T) {
	env := setupManager(t, nil)

	_, err := env.manager.Create(context.Background(), &CreateRequest{
		ID:           "notify-me",
		Type:         TypePaste,
		PasteContent: "x",
		Expiration:   "never",
		Recipients:   []string{"a@example.com", "b@example.com"},
	}, "", "")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a@example.com", "b@example.com"}, env.notifier.recipients)
}

func TestCreate_FileShareDefersNotifications(t *testing.T) {
	env := setupManager(t, nil)
	ctx := context.Background()

	_, err := env.manager.Create(ctx, &CreateRequest{
		ID:         "deferred",
		Type:       TypeFile,
		Expiration: "7-days",
		Recipients: []string{"later@example.com"},
	}, "", "")
	require.NoError(t, err)
	assert.Empty(t, env.notifier.recipients)

	env.files.add("deferred", "f1", "doc.txt", []byte("data"))
	_, err = env.manager.Complete(ctx, "deferred", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"later@example.com"}, env.notifier.recipients)
}

func TestComplete_EmptyShare(t *testing.T) {
	env := setupManager(t, nil)
	ctx := context.Background()

	_, err := env.manager.Create(ctx, &CreateRequest{
		ID: "empty", Type: TypeFile, Expiration: "7-days",
	}, "", "")
	require.NoError(t, err)

	_, err = env.manager.Complete(ctx, "empty", "")
	assert.ErrorIs(t, err, ErrEmptyShare)
}

func TestComplete_AlreadyCompleted(t *testing.T) {
	env := setupManager(t, nil)
	ctx := context.Background()

	_, err := env.manager.Create(ctx, &CreateRequest{
		ID: "done", Type: TypeFile, Expiration: "7-days",
	}, "", "")
	require.NoError(t, err)
	env.files.add("done", "f1", "a.txt", []byte("a"))

	_, err = env.manager.Complete(ctx, "done", "")
	require.NoError(t, err)

	_, err = env.manager.Complete(ctx, "done", "")
	assert.ErrorIs(t, err, ErrAlreadyCompleted)
}

func TestComplete_TriggersScanAndLocks(t *testing.T) {
	env := setupManager(t, nil)
	ctx := context.Background()

	_, err := env.manager.Create(ctx, &CreateRequest{
		ID: "scanned", Type: TypeFile, Expiration: "7-days",
	}, "", "")
	require.NoError(t, err)
	env.files.add("scanned", "f1", "a.txt", []byte("a"))

	completed, err := env.manager.Complete(ctx, "scanned", "")
	require.NoError(t, err)
	assert.True(t, completed.UploadLocked)
	assert.Equal(t, []string{"scanned"}, env.scanner.scanned)

	got, err := env.manager.Get(ctx, "scanned")
	require.NoError(t, err)
	assert.True(t, got.UploadLocked)
}

func TestComplete_MultiFileBuildsArchive(t *testing.T) {
	root := t.TempDir()
	store := setupTestStore(t)
	files := newFakeFiles()
	manager := NewManager(ManagerConfig{
		Store:       store,
		Files:       files,
		Packager:    NewPackager(root, files, store, 6),
		TokenSecret: "test-secret",
	})
	ctx := context.Background()

	_, err := manager.Create(ctx, &CreateRequest{
		ID: "multi", Type: TypeFile, Expiration: "7-days",
	}, "", "")
	require.NoError(t, err)
	files.add("multi", "f1", "a.txt", []byte("alpha"))
	files.add("multi", "f2", "b.txt", []byte("beta"))

	completed, err := manager.Complete(ctx, "multi", "")
	require.NoError(t, err)
	assert.True(t, completed.UploadLocked)
	assert.False(t, completed.ZipReady)

	// The build is detached; readiness is observed by polling
	assert.Eventually(t, func() bool {
		s, err := store.Get(ctx, "multi")
		return err == nil && s.ZipReady
	}, 5*time.Second, 20*time.Millisecond)
}

func TestComplete_SettlesReverseShare(t *testing.T) {
	env := setupManager(t, nil)
	ctx := context.Background()

	expiry := time.Now().UTC().AddDate(0, 0, 7)
	env.binder.infos["invite-2"] = &ReverseShareInfo{
		Token:              "invite-2",
		ShareExpiration:    &expiry,
		RemainingUses:      1,
		NotifyOnCompletion: true,
		CreatorEmail:       "inviter@example.com",
	}

	_, err := env.manager.Create(ctx, &CreateRequest{
		ID: "from-invite", Type: TypeFile, Expiration: "never",
	}, "", "invite-2")
	require.NoError(t, err)
	env.files.add("from-invite", "f1", "a.txt", []byte("a"))

	_, err = env.manager.Complete(ctx, "from-invite", "invite-2")
	require.NoError(t, err)

	assert.Equal(t, []string{"inviter@example.com"}, env.notifier.reverseCreators)
	assert.Equal(t, []string{"invite-2"}, env.binder.decremented)
}

func TestRevertComplete(t *testing.T) {
	env := setupManager(t, nil)
	ctx := context.Background()

	_, err := env.manager.Create(ctx, &CreateRequest{
		ID: "reopen", Type: TypeFile, Expiration: "7-days",
	}, "", "")
	require.NoError(t, err)
	env.files.add("reopen", "f1", "a.txt", []byte("a"))

	_, err = env.manager.Complete(ctx, "reopen", "")
	require.NoError(t, err)

	require.NoError(t, env.manager.RevertComplete(ctx, "reopen"))

	s, err := env.store.Get(ctx, "reopen")
	require.NoError(t, err)
	assert.False(t, s.UploadLocked)
	assert.False(t, s.ZipReady)

	// Reopened shares can be completed again
	_, err = env.manager.Complete(ctx, "reopen", "")
	assert.NoError(t, err)
}

func TestRemove(t *testing.T) {
	env := setupManager(t, nil)
	ctx := context.Background()

	_, err := env.manager.Create(ctx, &CreateRequest{
		ID: "mine", Type: TypePaste, PasteContent: "x", Expiration: "never",
	}, "user-1", "")
	require.NoError(t, err)

	require.NoError(t, env.manager.Remove(ctx, "mine", false))
	_, err = env.store.Get(ctx, "mine")
	assert.ErrorIs(t, err, ErrNotFound)

	// Storage purge ran before the record deletion
	assert.Equal(t, []string{"mine"}, env.files.deleted)
}

func TestRemove_AnonymousRequiresAdmin(t *testing.T) {
	env := setupManager(t, nil)
	ctx := context.Background()

	_, err := env.manager.Create(ctx, &CreateRequest{
		ID: "anon", Type: TypePaste, PasteContent: "x", Expiration: "never",
	}, "", "")
	require.NoError(t, err)

	assert.ErrorIs(t, env.manager.Remove(ctx, "anon", false), ErrForbidden)
	assert.NoError(t, env.manager.Remove(ctx, "anon", true))
}

func TestRemove_NotFound(t *testing.T) {
	env := setupManager(t, nil)
	assert.ErrorIs(t, env.manager.Remove(context.Background(), "ghost", true), ErrNotFound)
}

func TestGet_Removed(t *testing.T) {
	env := setupManager(t, nil)
	ctx := context.Background()

	_, err := env.manager.Create(ctx, &CreateRequest{
		ID: "taken-down", Type: TypePaste, PasteContent: "x", Expiration: "never",
	}, "", "")
	require.NoError(t, err)

	require.NoError(t, env.store.SetRemovedReason(ctx, "taken-down", "malicious content"))

	_, err = env.manager.Get(ctx, "taken-down")
	var removed *RemovedError
	require.ErrorAs(t, err, &removed)
	assert.Equal(t, "malicious content", removed.Reason)
}

func TestGet_Expired(t *testing.T) {
	env := setupManager(t, nil)
	ctx := context.Background()

	past := time.Now().UTC().Add(-time.Hour)
	require.NoError(t, env.store.Create(ctx, &Share{
		ID:           "stale",
		Type:         TypePaste,
		PasteContent: "x",
		ExpiresAt:    &past,
		CreatedAt:    past.Add(-time.Hour),
		UploadLocked: true,
	}))

	_, err := env.manager.Get(ctx, "stale")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAuthorizeAccess_PasswordGate(t *testing.T) {
	env := setupManager(t, nil)
	ctx := context.Background()

	_, err := env.manager.Create(ctx, &CreateRequest{
		ID: "locked", Type: TypePaste, PasteContent: "x", Expiration: "never",
		Password: "hunter2",
	}, "", "")
	require.NoError(t, err)

	_, err = env.manager.AuthorizeAccess(ctx, "locked", "")
	assert.ErrorIs(t, err, ErrPasswordRequired)

	_, err = env.manager.AuthorizeAccess(ctx, "locked", "wrong")
	assert.ErrorIs(t, err, ErrInvalidPassword)

	token, err := env.manager.AuthorizeAccess(ctx, "locked", "hunter2")
	require.NoError(t, err)
	assert.True(t, env.manager.VerifyAccessToken(ctx, "locked", token))
}

func TestAuthorizeAccess_ViewQuota(t *testing.T) {
	env := setupManager(t, nil)
	ctx := context.Background()

	_, err := env.manager.Create(ctx, &CreateRequest{
		ID: "limited", Type: TypePaste, PasteContent: "x", Expiration: "never",
		MaxViews: 3,
	}, "", "")
	require.NoError(t, err)

	// Views 1-3 succeed; the 4th is rejected and the counter stays at 3
	for i := 0; i < 3; i++ {
		_, err := env.manager.AuthorizeAccess(ctx, "limited", "")
		require.NoError(t, err, "view %d should succeed", i+1)
	}

	_, err = env.manager.AuthorizeAccess(ctx, "limited", "")
	assert.ErrorIs(t, err, ErrViewQuotaExceeded)

	s, err := env.store.Get(ctx, "limited")
	require.NoError(t, err)
	assert.Equal(t, int64(3), s.Views)
}

func TestAuthorizeAccess_ConcurrentQuota(t *testing.T) {
	env := setupManager(t, nil)
	ctx := context.Background()

	_, err := env.manager.Create(ctx, &CreateRequest{
		ID: "racy", Type: TypePaste, PasteContent: "x", Expiration: "never",
		MaxViews: 5,
	}, "", "")
	require.NoError(t, err)

	var wg sync.WaitGroup
	var mu sync.Mutex
	granted := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := env.manager.AuthorizeAccess(ctx, "racy", ""); err == nil {
				mu.Lock()
				granted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 5, granted)
	s, err := env.store.Get(ctx, "racy")
	require.NoError(t, err)
	assert.Equal(t, int64(5), s.Views)
}

func TestAuthorizeAccess_CountsUnrestrictedViews(t *testing.T) {
	env := setupManager(t, nil)
	ctx := context.Background()

	_, err := env.manager.Create(ctx, &CreateRequest{
		ID: "open", Type: TypePaste, PasteContent: "x", Expiration: "never",
	}, "", "")
	require.NoError(t, err)

	for i := 0; i < 4; i++ {
		_, err := env.manager.AuthorizeAccess(ctx, "open", "")
		require.NoError(t, err)
	}

	s, err := env.store.Get(ctx, "open")
	require.NoError(t, err)
	assert.Equal(t, int64(4), s.Views)
}

func TestVerifyAccessToken_IdentifierReuse(t *testing.T) {
	env := setupManager(t, nil)
	ctx := context.Background()

	created := time.Now().UTC().Add(-time.Hour).Truncate(time.Second)
	require.NoError(t, env.store.Create(ctx, &Share{
		ID:           "reused",
		Type:         TypePaste,
		PasteContent: "first",
		CreatedAt:    created,
		UploadLocked: true,
	}))

	token, err := env.manager.AuthorizeAccess(ctx, "reused", "")
	require.NoError(t, err)
	require.True(t, env.manager.VerifyAccessToken(ctx, "reused", token))

	// Delete and recreate the same identifier at a later instant: old
	// tokens must not authorize access to the new occupant
	require.NoError(t, env.manager.Remove(ctx, "reused", true))
	require.NoError(t, env.store.Create(ctx, &Share{
		ID:           "reused",
		Type:         TypePaste,
		PasteContent: "second",
		CreatedAt:    created.Add(30 * time.Minute),
		UploadLocked: true,
	}))

	assert.False(t, env.manager.VerifyAccessToken(ctx, "reused", token))
}

func TestListByCreator(t *testing.T) {
	env := setupManager(t, nil)
	ctx := context.Background()

	_, err := env.manager.Create(ctx, &CreateRequest{
		ID: "mine-1", Type: TypePaste, PasteContent: "x", Expiration: "never",
	}, "user-1", "")
	require.NoError(t, err)
	_, err = env.manager.Create(ctx, &CreateRequest{
		ID: "mine-2", Type: TypePaste, PasteContent: "x", Expiration: "7-days",
	}, "user-1", "")
	require.NoError(t, err)
	_, err = env.manager.Create(ctx, &CreateRequest{
		ID: "theirs", Type: TypePaste, PasteContent: "x", Expiration: "never",
	}, "user-2", "")
	require.NoError(t, err)
	// Draft FILE share: excluded from the listing
	_, err = env.manager.Create(ctx, &CreateRequest{
		ID: "draft", Type: TypeFile, Expiration: "7-days",
	}, "user-1", "")
	require.NoError(t, err)

	shares, err := env.manager.ListByCreator(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, shares, 2)
	for _, s := range shares {
		assert.Equal(t, "user-1", s.CreatorID)
	}
}

func TestIsIDAvailable(t *testing.T) {
	env := setupManager(t, nil)
	ctx := context.Background()

	available, err := env.manager.IsIDAvailable(ctx, "fresh")
	require.NoError(t, err)
	assert.True(t, available)

	_, err = env.manager.Create(ctx, &CreateRequest{
		ID: "fresh", Type: TypePaste, PasteContent: "x", Expiration: "never",
	}, "", "")
	require.NoError(t, err)

	available, err = env.manager.IsIDAvailable(ctx, "fresh")
	require.NoError(t, err)
	assert.False(t, available)
}
