package inmem

import (
	"testing"

	"github.com/jvarghese/gigwish/internal/repos"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionLifecycle(t *testing.T) {
	repo := New()

	sess, err := repo.Create()
	require.NoError(t, err)
	require.NotNil(t, sess)
	assert.Len(t, sess.ID, 64)
	assert.True(t, sess.ExpiresAt.After(sess.CreatedAt))

	loaded, err := repo.GetByID(sess.ID, false)
	require.NoError(t, err)
	assert.Equal(t, sess.ID, loaded.ID)

	require.NoError(t, repo.Delete(sess.ID))
	_, err = repo.GetByID(sess.ID, false)
	assert.Equal(t, repos.ErrEntityNotExisting, err)
}

func TestGetByIDUnknownSession(t *testing.T) {
	repo := New()
	_, err := repo.GetByID("does-not-exist", false)
	assert.Equal(t, repos.ErrEntityNotExisting, err)
}

func TestGetByIDExtendsExpiry(t *testing.T) {
	repo := New()
	sess, err := repo.Create()
	require.NoError(t, err)

	extended, err := repo.GetByID(sess.ID, true)
	require.NoError(t, err)
	assert.False(t, extended.ExpiresAt.Before(sess.ExpiresAt))
}

func TestSessionIDsAreUnique(t *testing.T) {
	repo := New()
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		sess, err := repo.Create()
		require.NoError(t, err)
		assert.False(t, seen[sess.ID])
		seen[sess.ID] = true
	}
}
