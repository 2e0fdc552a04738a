package internal

import (
	"net/http"
	"strings"

	"github.com/jvarghese/gigwish/internal/models"
	"github.com/jvarghese/gigwish/internal/repos"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

// SessionService provides functions for interacting with the admin session
type SessionService interface {
	// Login checks the given PIN and returns the info about the created session if it matches
	Login(ctx context.Context, pin string) (*SessionInfo, error)
	// Logout logs out a currently active session
	Logout(ctx context.Context, sessionID string) error
	// WhoAmI returns information about the current session
	WhoAmI(ctx context.Context, sessionID string) (*SessionInfo, error)
	// GetContents returns the session data associated with the given session ID
	// This service function will be used internally and does not have an endpoint
	GetContents(ctx context.Context, sessionID string, extendExpiry bool) (*models.Session, error)
}

// -- Session service implementation -----------------------------------------------------------------------------------

// SessionInfo is a session information object that is returned upon login
type SessionInfo struct {
	SessionID string `json:"sessionId"`
}

type sessionService struct {
	logger   *logrus.Entry
	sessions repos.SessionRepo
	admin    *models.Admin
}

// NewSessionService creates a new session service instance with the provided session repository and admin credential
func NewSessionService(sr repos.SessionRepo, admin *models.Admin, logger *logrus.Entry) SessionService {
	return &sessionService{
		logger:   logger,
		sessions: sr,
		admin:    admin,
	}
}

// Login checks the given PIN and returns the info about the created session if it matches
func (s *sessionService) Login(ctx context.Context, pin string) (*SessionInfo, error) {
	pin = strings.TrimSpace(pin)
	if err := s.admin.CheckPIN(pin); err != nil {
		// Login failed
		return nil, MakeError(
			http.StatusForbidden,
			ErrCodeLoginFailed,
			"Login failed",
		)
	}
	sess, err := s.sessions.Create()
	if err != nil {
		s.logger.WithError(err).Error("Failed to create session")
		return nil, MakeError(
			http.StatusInternalServerError,
			ErrCodeRepoError,
			"Failed to create session",
		)
	}
	return &SessionInfo{SessionID: sess.ID}, nil
}

// Logout logs out a currently active session
func (s *sessionService) Logout(ctx context.Context, sessionID string) error {
	err := s.sessions.Delete(sessionID)
	if err != nil {
		s.logger.WithError(err).Error("Failed to delete session")
		return MakeError(
			http.StatusInternalServerError,
			ErrCodeRepoError,
			"Failed to logout. Error in the data store",
		)
	}
	return nil
}

// WhoAmI returns information about the current session
func (s *sessionService) WhoAmI(ctx context.Context, sessionID string) (*SessionInfo, error) {
	sess, err := s.GetContents(ctx, sessionID, false)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, nil
	}
	return &SessionInfo{SessionID: sess.ID}, nil
}

// GetContents returns the session data associated with the given session ID
// This service function will be used internally and does not have an endpoint
func (s *sessionService) GetContents(ctx context.Context, sessionID string, extendExpiry bool) (*models.Session, error) {
	sess, err := s.sessions.GetByID(sessionID, extendExpiry)
	if err != nil {
		if err == repos.ErrEntityNotExisting {
			return nil, nil
		}
		s.logger.WithError(err).Error("Failed to retrieve session from repo")
		return nil, MakeError(
			http.StatusInternalServerError,
			ErrCodeRepoError,
			"Failed to retrieve session information from storage",
		)
	}
	return sess, nil
}
