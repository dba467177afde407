package account

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/myaiplug/saasify/internal/store"
)

var _ Store = (*store.DB)(nil)

func newManager(t *testing.T) *Manager {
	t.Helper()
	dir := t.TempDir()
	db, err := store.Open(dir + "/saasify.db")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewManager(db, dir, nil)
}

func TestSignUpAndSignInRoundTrip(t *testing.T) {
	m := newManager(t)
	ctx := context.Background()

	acct, err := m.SignUp(ctx, "Ada@Example.com", "Ada", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", acct.Email)
	assert.Equal(t, acct.ID, m.CurrentOwnerID())

	require.NoError(t, m.SignOut())
	assert.Empty(t, m.CurrentOwnerID())

	back, err := m.SignIn(ctx, "ada@example.com", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, acct.ID, back.ID)
	assert.Equal(t, acct.ID, m.CurrentOwnerID())

	cur, err := m.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, acct.Email, cur.Email)
}

func TestSignInRejectsBadCredentials(t *testing.T) {
	m := newManager(t)
	ctx := context.Background()

	_, err := m.SignUp(ctx, "ada@example.com", "Ada", "correct horse")
	require.NoError(t, err)
	require.NoError(t, m.SignOut())

	_, err = m.SignIn(ctx, "ada@example.com", "wrong password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = m.SignIn(ctx, "nobody@example.com", "correct horse")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	assert.Empty(t, m.CurrentOwnerID(), "failed sign-in never establishes a session")
}

func TestSignUpValidation(t *testing.T) {
	m := newManager(t)
	ctx := context.Background()

	_, err := m.SignUp(ctx, "not-an-email", "X", "long enough")
	assert.ErrorIs(t, err, ErrInvalidEmail)

	_, err = m.SignUp(ctx, "x@example.com", "X", "short")
	assert.ErrorIs(t, err, ErrWeakPassword)

	_, err = m.SignUp(ctx, "dup@example.com", "X", "long enough")
	require.NoError(t, err)
	_, err = m.SignUp(ctx, "dup@example.com", "Y", "long enough")
	assert.ErrorIs(t, err, store.ErrEmailTaken)
}

func TestCurrentWithoutSession(t *testing.T) {
	m := newManager(t)

	assert.Empty(t, m.CurrentOwnerID())
	_, err := m.Current(context.Background())
	assert.ErrorIs(t, err, ErrNotSignedIn)
}
