package internal

import (
	"net/http"

	"github.com/jvarghese/gigwish/internal/ctxhelper"
	"github.com/jvarghese/gigwish/internal/log"
	"github.com/jvarghese/gigwish/internal/models"
	"github.com/jvarghese/gigwish/internal/repos"
	"github.com/jvarghese/gigwish/internal/state"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

// RequestService provides the functionality around the song request queue
type RequestService interface {
	// Submit creates a new song request for the calling device
	Submit(ctx context.Context, songID string, requesterName string, dedication string) (*models.SongRequest, error)
	// List returns the request queue in display order
	List(ctx context.Context) ([]models.SongRequest, error)
	// NowPlaying returns the request currently performed on stage, or nil
	NowPlaying(ctx context.Context) (*models.SongRequest, error)
	// SetStatus updates the lifecycle status of a request
	SetStatus(ctx context.Context, id string, status string) (*models.SongRequest, error)
	// Remove deletes a request from the queue
	Remove(ctx context.Context, id string) error
	// Reorder replaces the queue order with the given ID sequence
	Reorder(ctx context.Context, ids []string) ([]models.SongRequest, error)
	// Clap adds one clap - optionally tied to a specific request - and returns the new global clap count
	Clap(ctx context.Context, requestID string) (uint, error)
	// Quota returns whether the calling device may still submit requests
	Quota(ctx context.Context) (*QuotaInfo, error)
}

// QuotaInfo describes the request quota situation of a single device
type QuotaInfo struct {
	RequestCount uint `json:"requestCount"`
	CanRequest   bool `json:"canRequest"`
}

// -- RequestService implementation ------------------------------------------------------------------------------------

type requestService struct {
	logger *logrus.Entry
	store  *state.Store
	songs  repos.SongRepo
	config ConfigService
}

// NewRequestService creates a new requestService instance to use for creating endpoints
func NewRequestService(store *state.Store, songs repos.SongRepo, config ConfigService, logger *logrus.Entry) RequestService {
	return &requestService{
		logger: logger,
		store:  store,
		songs:  songs,
		config: config,
	}
}

// Submit creates a new song request for the calling device. The device is identified by
// its fingerprint; a device that has used up its quota is rejected unless it has been
// whitelisted by the performer.
func (s *requestService) Submit(ctx context.Context, songID string, requesterName string, dedication string) (*models.SongRequest, error) {
	fpID := ctxhelper.Fingerprint(ctx)
	if fpID == "" {
		return nil, MakeError(
			http.StatusBadRequest,
			ErrCodeRequiredFieldMissing,
			"No device fingerprint could be derived from the request",
		)
	}
	song, err := s.songs.GetByID(songID)
	if err != nil {
		if err == repos.ErrEntityNotExisting {
			return nil, MakeError(http.StatusNotFound, ErrCodeSongNotFound, "The requested song does not exist")
		}
		s.logger.WithError(err).Error("Song query failed")
		return nil, MakeError(
			http.StatusInternalServerError,
			ErrCodeRepoError,
			"Failed to load song information from storage",
		)
	}
	whitelisted := s.config.IsWhitelisted(fpID)
	conf := s.config.GetConfig(ctx)
	if !conf.Restrictions.AllowDuplicateRequests && !whitelisted && s.store.PendingCountBySong(songID) > 0 {
		return nil, MakeError(
			http.StatusForbidden,
			ErrCodeDuplicateRequestsNotAllowed,
			"This song is already in the request queue",
		)
	}
	req, err := s.store.SubmitRequest(fpID, *song, requesterName, dedication, whitelisted)
	if err != nil {
		if err == repos.ErrQuotaExceeded {
			return nil, MakeError(
				http.StatusForbidden,
				ErrCodeQuotaExceeded,
				"The request limit for this device has been reached",
			)
		}
		s.logger.WithError(err).Error("Request submission failed")
		return nil, MakeError(http.StatusInternalServerError, ErrCodeUnknown, "Failed to submit the request")
	}
	// The global per-song counter is statistics only - a failure does not fail the request
	if err := s.songs.BumpNumRequested(songID); err != nil {
		s.logger.WithError(err).WithField(log.FldSong, songID).Warn("Failed to bump the song's request counter")
	}
	s.logger.WithFields(logrus.Fields{
		log.FldRequest:     req.ID,
		log.FldSong:        songID,
		log.FldFingerprint: fpID,
	}).Info("New song request submitted")
	return req, nil
}

// List returns the request queue in display order
func (s *requestService) List(ctx context.Context) ([]models.SongRequest, error) {
	return s.store.Requests(), nil
}

// NowPlaying returns the request currently performed on stage, or nil
func (s *requestService) NowPlaying(ctx context.Context) (*models.SongRequest, error) {
	return s.store.NowPlaying(), nil
}

// SetStatus updates the lifecycle status of a request
func (s *requestService) SetStatus(ctx context.Context, id string, status string) (*models.SongRequest, error) {
	if !models.ValidRequestStatus(status) || status == models.RequestStatusRemoved {
		return nil, MakeError(http.StatusBadRequest, ErrCodeIllegalValue, "Illegal request status")
	}
	req, err := s.store.SetRequestStatus(id, status)
	if err != nil {
		if err == repos.ErrEntityNotExisting {
			return nil, MakeError(http.StatusNotFound, ErrCodeRequestNotFound, "The request does not exist")
		}
		return nil, MakeError(http.StatusInternalServerError, ErrCodeUnknown, "Failed to update the request")
	}
	s.logger.WithFields(logrus.Fields{
		log.FldRequest: id,
		log.FldStatus:  status,
	}).Info("Request status changed")
	return req, nil
}

// Remove deletes a request from the queue
func (s *requestService) Remove(ctx context.Context, id string) error {
	if err := s.store.RemoveRequest(id); err != nil {
		if err == repos.ErrEntityNotExisting {
			return MakeError(http.StatusNotFound, ErrCodeRequestNotFound, "The request does not exist")
		}
		return MakeError(http.StatusInternalServerError, ErrCodeUnknown, "Failed to remove the request")
	}
	s.logger.WithField(log.FldRequest, id).Info("Request removed from the queue")
	return nil
}

// Reorder replaces the queue order with the given ID sequence
func (s *requestService) Reorder(ctx context.Context, ids []string) ([]models.SongRequest, error) {
	if err := s.store.ReorderRequests(ids); err != nil {
		if err == repos.ErrReorderMismatch {
			return nil, MakeError(
				http.StatusBadRequest,
				ErrCodeReorderMismatch,
				"The new order does not match the current request queue",
			)
		}
		return nil, MakeError(http.StatusInternalServerError, ErrCodeUnknown, "Failed to reorder the queue")
	}
	return s.store.Requests(), nil
}

// Clap adds one clap - optionally tied to a specific request - and returns the new global
// clap count. A clap for a request that has meanwhile left the queue still counts globally.
func (s *requestService) Clap(ctx context.Context, requestID string) (uint, error) {
	return s.store.AddClap(requestID, ctxhelper.Fingerprint(ctx)), nil
}

// Quota returns whether the calling device may still submit requests
func (s *requestService) Quota(ctx context.Context) (*QuotaInfo, error) {
	fpID := ctxhelper.Fingerprint(ctx)
	if fpID == "" {
		return nil, MakeError(
			http.StatusBadRequest,
			ErrCodeRequiredFieldMissing,
			"No device fingerprint could be derived from the request",
		)
	}
	fp := s.store.Fingerprint(fpID)
	return &QuotaInfo{
		RequestCount: fp.RequestCount,
		CanRequest:   s.config.IsWhitelisted(fpID) || s.store.CanSubmitRequest(fpID),
	}, nil
}
