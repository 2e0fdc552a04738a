package internal

import (
	"github.com/jvarghese/gigwish/internal/models"
	"github.com/jvarghese/gigwish/internal/state"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

// AnalyticsService provides the derived summaries over the live state for the admin dashboard
type AnalyticsService interface {
	// Summary returns the current analytics record
	Summary(ctx context.Context) (*models.Analytics, error)
}

// -- AnalyticsService implementation ----------------------------------------------------------------------------------

type analyticsService struct {
	logger *logrus.Entry
	store  *state.Store
}

// NewAnalyticsService creates a new analyticsService instance to use for creating endpoints
func NewAnalyticsService(store *state.Store, logger *logrus.Entry) AnalyticsService {
	return &analyticsService{logger, store}
}

// Summary returns the current analytics record
func (s *analyticsService) Summary(ctx context.Context) (*models.Analytics, error) {
	analytics := s.store.Analytics()
	return &analytics, nil
}
