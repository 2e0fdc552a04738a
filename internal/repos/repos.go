// Package repos contains the repository interfaces needed in Gigwish
// It exists to prevent circular dependencies between gigwish and the repo implementations
package repos

import (
	"fmt"

	"github.com/jvarghese/gigwish/internal/models"
)

var (
	// ErrEntityNotExisting is fired by a repository when an entity that is updated or deleted does not exist
	ErrEntityNotExisting = fmt.Errorf("cannot update: Entity does not exist")
	// ErrQuotaExceeded is fired by the state store when a device has used up its request quota
	ErrQuotaExceeded = fmt.Errorf("request quota for this device is exhausted")
	// ErrUnknownOption is fired by the state store when a vote names an option the poll does not have
	ErrUnknownOption = fmt.Errorf("vote: option is not part of the poll")
	// ErrPollClosed is fired by the state store when a vote is cast on a poll that is no longer active
	ErrPollClosed = fmt.Errorf("vote: poll is already closed")
	// ErrAlreadyVoted is fired by the state store when a device votes a second time on the same poll
	ErrAlreadyVoted = fmt.Errorf("vote: device has already voted on this poll")
	// ErrReorderMismatch is fired by the state store when a reorder request is not a permutation of the queue
	ErrReorderMismatch = fmt.Errorf("reorder: new order is not a permutation of the request queue")
)

// SongRepo defines a repository that handles storing and querying the song catalog
type SongRepo interface {
	// Create creates a new catalog entry
	Create(s *models.Song) error
	// Upsert creates the catalog entry or updates it in place when the ID already exists
	// The request counter of an existing entry is preserved
	Upsert(s *models.Song) error
	// Update updates an existing catalog entry
	Update(s *models.Song) error
	// Delete removes an existing catalog entry from the storage
	Delete(id string) error
	// GetByID returns the catalog entry having the given ID
	GetByID(id string) (*models.Song, error)
	// Find searches for songs matching the given search string - supports pagination
	Find(search string, offset uint, limit uint) ([]models.Song, uint, error)
	// All returns the full catalog in setlist order
	All() ([]models.Song, error)
	// BumpNumRequested increases the "numRequested" counter on the given song
	BumpNumRequested(id string) error
}

// SessionRepo stores information about active admin API sessions
type SessionRepo interface {
	// Create creates a new admin session
	Create() (*models.Session, error)
	// GetByID returns the session associated with the given session ID and extends it's expiry if requested
	GetByID(sessionID string, extend bool) (*models.Session, error)
	// Delete removes a session from the session storage
	Delete(sessionID string) error
}

// SnapshotRepo persists the state store's snapshot between runs
type SnapshotRepo interface {
	// Load reads the most recently saved snapshot
	Load() (*models.StateSnapshot, error)
	// Save writes the given snapshot, replacing the previous one
	Save(snap *models.StateSnapshot) error
}
