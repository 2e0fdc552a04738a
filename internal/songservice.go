package internal

import (
	"net/http"

	"github.com/jvarghese/gigwish/internal/models"
	"github.com/jvarghese/gigwish/internal/repos"
	"github.com/jvarghese/gigwish/internal/state"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

// SongService provides functionality for browsing and managing the song catalog
type SongService interface {
	// List searches for catalog songs matching the provided search and returns a list of paged results
	List(ctx context.Context, search *Search) ([]models.Song, uint, error)
	// Get returns the catalog song with the given ID
	Get(ctx context.Context, id string) (*models.Song, error)
	// Update updates the given catalog song in the database with the data provided
	Update(ctx context.Context, song *models.Song) error
	// Delete removes the catalog song with the given ID from the database
	Delete(ctx context.Context, id string) error
	// SetFilter sets the search query and category filter of the shared browse view
	SetFilter(ctx context.Context, query string, category string) ([]models.Song, error)
	// Browse returns the songs matching the current browse filter together with the filter itself
	Browse(ctx context.Context) (*BrowseResult, error)
}

// BrowseResult is the filtered catalog view together with the filter that produced it
type BrowseResult struct {
	Query    string        `json:"query"`
	Category string        `json:"category"`
	Songs    []models.Song `json:"songs"`
}

// -- SongService implementation ---------------------------------------------------------------------------------------

type songService struct {
	logger *logrus.Entry
	repo   repos.SongRepo
	store  *state.Store
}

// NewSongService creates a new songService instance to use for creating endpoints
func NewSongService(sRepo repos.SongRepo, store *state.Store, logger *logrus.Entry) SongService {
	return &songService{logger, sRepo, store}
}

// List searches for catalog songs matching the provided search and returns a list of paged results
func (s *songService) List(ctx context.Context, search *Search) ([]models.Song, uint, error) {
	songs, numRows, err := s.repo.Find(search.Search, search.Offset, search.Limit)
	if err != nil {
		s.logger.WithError(err).Error("Song list query failed")
		return nil, 0, MakeError(
			http.StatusInternalServerError,
			ErrCodeRepoError,
			"Failed to load song information from storage",
		)
	}
	return songs, numRows, nil
}

// Get returns the catalog song with the given ID
func (s *songService) Get(ctx context.Context, id string) (*models.Song, error) {
	song, err := s.repo.GetByID(id)
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
	return song, nil
}

// Update updates the given catalog song in the database with the data provided
func (s *songService) Update(ctx context.Context, song *models.Song) error {
	if song.Category != "" && !models.ValidCategory(song.Category) {
		return MakeError(http.StatusBadRequest, ErrCodeIllegalValue, "Unknown setlist category")
	}
	existing, err := s.Get(ctx, song.ID)
	if err != nil {
		return err
	}
	// Update only the fields that are currently supported
	existing.Title = song.Title
	existing.Artist = song.Artist
	existing.Year = song.Year
	if song.Category != "" {
		existing.Category = song.Category
	}
	existing.Subcategory = song.Subcategory
	err = s.repo.Update(existing)
	if err != nil {
		if err == repos.ErrEntityNotExisting {
			return MakeError(http.StatusNotFound, ErrCodeSongNotFound, "The requested song does not exist")
		}
		s.logger.WithError(err).Error("Song update failed")
		return MakeError(
			http.StatusInternalServerError,
			ErrCodeRepoError,
			"Failed to write song information to storage",
		)
	}
	s.refreshCatalog()
	return nil
}

// Delete removes the catalog song with the given ID from the database
func (s *songService) Delete(ctx context.Context, id string) error {
	err := s.repo.Delete(id)
	if err != nil {
		if err == repos.ErrEntityNotExisting {
			return MakeError(http.StatusNotFound, ErrCodeSongNotFound, "The requested song does not exist")
		}
		s.logger.WithError(err).Error("Song deletion failed")
		return MakeError(
			http.StatusInternalServerError,
			ErrCodeRepoError,
			"Failed to delete song from storage",
		)
	}
	s.refreshCatalog()
	return nil
}

// SetFilter sets the search query and category filter of the shared browse view
func (s *songService) SetFilter(ctx context.Context, query string, category string) ([]models.Song, error) {
	if category == "" {
		category = state.CategoryAll
	}
	if category != state.CategoryAll && !models.ValidCategory(category) {
		return nil, MakeError(http.StatusBadRequest, ErrCodeIllegalValue, "Unknown setlist category")
	}
	s.store.SetFilter(query, category)
	return s.store.FilteredSongs(), nil
}

// Browse returns the songs matching the current browse filter together with the filter itself
func (s *songService) Browse(ctx context.Context) (*BrowseResult, error) {
	query, category := s.store.Filter()
	return &BrowseResult{
		Query:    query,
		Category: category,
		Songs:    s.store.FilteredSongs(),
	}, nil
}

// refreshCatalog reloads the catalog from storage into the live browse view
func (s *songService) refreshCatalog() {
	songs, err := s.repo.All()
	if err != nil {
		s.logger.WithError(err).Error("Failed to reload the song catalog")
		return
	}
	s.store.SetCatalog(songs)
}
