package internal

import (
	"net/http"
	"strings"

	"github.com/jvarghese/gigwish/internal/ctxhelper"
	"github.com/jvarghese/gigwish/internal/log"
	"github.com/jvarghese/gigwish/internal/models"
	"github.com/jvarghese/gigwish/internal/repos"
	"github.com/jvarghese/gigwish/internal/state"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

// PollService provides the functionality around audience polls
type PollService interface {
	// Create opens a new poll - a previously active poll is closed automatically
	Create(ctx context.Context, question string, options []string) (*models.Poll, error)
	// Vote casts a vote on the given poll for the calling device
	Vote(ctx context.Context, pollID string, option string) (*models.Poll, error)
	// Close stops the given poll from accepting further votes
	Close(ctx context.Context, pollID string) (*models.Poll, error)
	// List returns all polls of the evening, including closed ones
	List(ctx context.Context) ([]models.Poll, error)
	// Active returns the poll currently accepting votes, or nil
	Active(ctx context.Context) (*models.Poll, error)
}

// -- PollService implementation ---------------------------------------------------------------------------------------

type pollService struct {
	logger *logrus.Entry
	store  *state.Store
}

// NewPollService creates a new pollService instance to use for creating endpoints
func NewPollService(store *state.Store, logger *logrus.Entry) PollService {
	return &pollService{logger, store}
}

// Create opens a new poll - a previously active poll is closed automatically
func (s *pollService) Create(ctx context.Context, question string, options []string) (*models.Poll, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, MakeError(
			http.StatusBadRequest,
			ErrCodeRequiredFieldMissing,
			"A poll needs a question",
		)
	}
	// Blank and duplicate options are dropped - what remains must be a real choice
	seen := map[string]bool{}
	var cleaned []string
	for _, opt := range options {
		opt = strings.TrimSpace(opt)
		if opt == "" || seen[opt] {
			continue
		}
		seen[opt] = true
		cleaned = append(cleaned, opt)
	}
	if len(cleaned) < 2 {
		return nil, MakeError(
			http.StatusBadRequest,
			ErrCodeNotEnoughOptions,
			"A poll needs at least two distinct answer options",
		)
	}
	poll := s.store.CreatePoll(question, cleaned)
	s.logger.WithField(log.FldPoll, poll.ID).Info("New poll opened")
	return poll, nil
}

// Vote casts a vote on the given poll for the calling device
func (s *pollService) Vote(ctx context.Context, pollID string, option string) (*models.Poll, error) {
	fpID := ctxhelper.Fingerprint(ctx)
	if fpID == "" {
		return nil, MakeError(
			http.StatusBadRequest,
			ErrCodeRequiredFieldMissing,
			"No device fingerprint could be derived from the request",
		)
	}
	poll, err := s.store.Vote(pollID, option, fpID)
	if err != nil {
		switch err {
		case repos.ErrEntityNotExisting:
			return nil, MakeError(http.StatusNotFound, ErrCodePollNotFound, "The poll does not exist")
		case repos.ErrPollClosed:
			return nil, MakeError(http.StatusConflict, ErrCodePollClosed, "The poll is no longer accepting votes")
		case repos.ErrUnknownOption:
			return nil, MakeError(http.StatusBadRequest, ErrCodeInvalidPollOption, "The poll does not have this option")
		case repos.ErrAlreadyVoted:
			return nil, MakeError(http.StatusConflict, ErrCodeAlreadyVoted, "This device has already voted on the poll")
		}
		return nil, MakeError(http.StatusInternalServerError, ErrCodeUnknown, "Failed to cast the vote")
	}
	return poll, nil
}

// Close stops the given poll from accepting further votes
func (s *pollService) Close(ctx context.Context, pollID string) (*models.Poll, error) {
	poll, err := s.store.ClosePoll(pollID)
	if err != nil {
		if err == repos.ErrEntityNotExisting {
			return nil, MakeError(http.StatusNotFound, ErrCodePollNotFound, "The poll does not exist")
		}
		return nil, MakeError(http.StatusInternalServerError, ErrCodeUnknown, "Failed to close the poll")
	}
	s.logger.WithField(log.FldPoll, pollID).Info("Poll closed")
	return poll, nil
}

// List returns all polls of the evening, including closed ones
func (s *pollService) List(ctx context.Context) ([]models.Poll, error) {
	return s.store.Polls(), nil
}

// Active returns the poll currently accepting votes, or nil
func (s *pollService) Active(ctx context.Context) (*models.Poll, error) {
	return s.store.ActivePoll(), nil
}
