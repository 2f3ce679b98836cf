package share

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testShare(id string, createdAt time.Time, expiresAt *time.Time) *Share {
	return &Share{
		ID:        id,
		Type:      TypeFile,
		CreatedAt: createdAt,
		ExpiresAt: expiresAt,
	}
}

func TestTokenIssueAndVerify(t *testing.T) {
	issuer := NewTokenIssuer("test-secret")
	now := time.Now().UTC()
	expiry := now.Add(time.Hour)
	s := testShare("my-share", now, &expiry)

	token, err := issuer.Issue(s, now)
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	assert.True(t, issuer.Verify(s, token))
}

func TestTokenVerify_WrongShare(t *testing.T) {
	issuer := NewTokenIssuer("test-secret")
	now := time.Now().UTC()
	expiry := now.Add(time.Hour)

	token, err := issuer.Issue(testShare("share-a", now, &expiry), now)
	require.NoError(t, err)

	other := testShare("share-b", now, &expiry)
	assert.False(t, issuer.Verify(other, token))
}

func TestTokenVerify_RecreatedShare(t *testing.T) {
	issuer := NewTokenIssuer("test-secret")
	created := time.Now().UTC()
	expiry := created.Add(time.Hour)

	token, err := issuer.Issue(testShare("reused-id", created, &expiry), created)
	require.NoError(t, err)

	// Same identifier, different creation instant: the token must not be
	// replayable against the new occupant of the id
	recreated := testShare("reused-id", created.Add(time.Minute), &expiry)
	assert.False(t, issuer.Verify(recreated, token))
}

func TestTokenVerify_Expired(t *testing.T) {
	issuer := NewTokenIssuer("test-secret")
	created := time.Now().UTC().Add(-2 * time.Hour)
	expiry := created.Add(time.Hour)
	s := testShare("expired-share", created, &expiry)

	token, err := issuer.Issue(s, created)
	require.NoError(t, err)

	assert.False(t, issuer.Verify(s, token))
}

func TestTokenVerify_NeverExpiringShare(t *testing.T) {
	issuer := NewTokenIssuer("test-secret")
	created := time.Now().UTC().Add(-24 * 365 * time.Hour)
	s := testShare("eternal", created, nil)

	// Issued long ago but the share never expires, so neither does the token
	token, err := issuer.Issue(s, created)
	require.NoError(t, err)

	assert.True(t, issuer.Verify(s, token))
}

func TestTokenVerify_WrongSecret(t *testing.T) {
	now := time.Now().UTC()
	expiry := now.Add(time.Hour)
	s := testShare("my-share", now, &expiry)

	token, err := NewTokenIssuer("secret-a").Issue(s, now)
	require.NoError(t, err)

	assert.False(t, NewTokenIssuer("secret-b").Verify(s, token))
}

func TestTokenVerify_Garbage(t *testing.T) {
	issuer := NewTokenIssuer("test-secret")
	s := testShare("my-share", time.Now().UTC(), nil)

	assert.False(t, issuer.Verify(s, ""))
	assert.False(t, issuer.Verify(s, "not.a.jwt"))
}
