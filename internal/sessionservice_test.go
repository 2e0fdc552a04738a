package internal

import (
	"testing"

	"github.com/jvarghese/gigwish/internal/models"
	inmem "github.com/jvarghese/gigwish/internal/repos/session/inmem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSessionServiceFixture(t *testing.T) SessionService {
	t.Helper()
	admin := &models.Admin{}
	require.NoError(t, admin.SetPIN("1234"))
	return NewSessionService(inmem.New(), admin, testLogger())
}

func TestLoginWithCorrectPIN(t *testing.T) {
	svc := newSessionServiceFixture(t)

	si, err := svc.Login(deviceContext(""), "1234")
	require.NoError(t, err)
	assert.NotEmpty(t, si.SessionID)

	// The created session is retrievable
	sess, err := svc.GetContents(deviceContext(""), si.SessionID, false)
	require.NoError(t, err)
	require.NotNil(t, sess)
	assert.Equal(t, si.SessionID, sess.ID)
}

func TestLoginWithWrongPIN(t *testing.T) {
	svc := newSessionServiceFixture(t)
	_, err := svc.Login(deviceContext(""), "0000")
	assertErrorCode(t, err, ErrCodeLoginFailed)
}

func TestLogoutInvalidatesSession(t *testing.T) {
	svc := newSessionServiceFixture(t)
	si, err := svc.Login(deviceContext(""), "1234")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(deviceContext(""), si.SessionID))
	sess, err := svc.GetContents(deviceContext(""), si.SessionID, false)
	require.NoError(t, err)
	assert.Nil(t, sess)
}

func TestGetContentsUnknownSession(t *testing.T) {
	svc := newSessionServiceFixture(t)
	sess, err := svc.GetContents(deviceContext(""), "no-such-token", false)
	require.NoError(t, err)
	assert.Nil(t, sess)
}
