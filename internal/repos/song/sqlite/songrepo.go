// Package sqlite provides a song repository that uses SQLite for storing the catalog
package sqlite

import (
	"fmt"

	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/jvarghese/gigwish/internal/log"
	"github.com/jvarghese/gigwish/internal/models"
	"github.com/jvarghese/gigwish/internal/repos"
	"github.com/sirupsen/logrus"
)

const (
	// The field names in the song table
	fieldNames = `id, title, artist, year, category, subcategory, position, numRequested, createdAt, updatedAt`
)

// SongRepo implements gigwish.SongRepo and provides access to the song catalog stored
// inside a SQLite database
type SongRepo struct {
	logger *logrus.Entry
	db     *sqlx.DB
}

// New creates a new SongRepo
func New(db *sqlx.DB, logger *logrus.Entry) repos.SongRepo {
	return &SongRepo{logger, db}
}

// Create creates a new catalog entry
func (r *SongRepo) Create(s *models.Song) error {
	r.logger.WithFields(logrus.Fields{
		log.FldSong: s.ID,
		"title":     s.Title,
	}).Debug("Creating song")
	query := fmt.Sprintf(`INSERT INTO Songs(%s) VALUES(
	    ?, ?, ?, ?, ?, ?, ?, 0, datetime('now'), datetime('now')
	)`, fieldNames)
	_, err := r.db.Exec(
		query,
		s.ID, s.Title, s.Artist, s.Year, s.Category, s.Subcategory, s.Position,
	)
	return err
}

// Upsert creates the catalog entry or updates it in place when the ID already exists
// An existing entry keeps its request counter, so re-importing the setlist does not
// reset the statistics of the evening
func (r *SongRepo) Upsert(s *models.Song) error {
	query := fmt.Sprintf(`INSERT INTO Songs(%s) VALUES(
	    ?, ?, ?, ?, ?, ?, ?, 0, datetime('now'), datetime('now')
	) ON CONFLICT(id) DO UPDATE SET
	    title = excluded.title, artist = excluded.artist, year = excluded.year,
	    category = excluded.category, subcategory = excluded.subcategory,
	    position = excluded.position, updatedAt = datetime('now')`, fieldNames)
	_, err := r.db.Exec(
		query,
		s.ID, s.Title, s.Artist, s.Year, s.Category, s.Subcategory, s.Position,
	)
	return err
}

// Update updates an existing catalog entry
func (r *SongRepo) Update(s *models.Song) error {
	r.logger.WithFields(logrus.Fields{
		log.FldSong: s.ID,
		"title":     s.Title,
	}).Debug("Updating song")
	query := `UPDATE Songs SET
        title = ?, artist = ?, year = ?, category = ?, subcategory = ?,
        updatedAt = datetime('now')
    WHERE id = ?`
	res, err := r.db.Exec(query, s.Title, s.Artist, s.Year, s.Category, s.Subcategory, s.ID)
	if err != nil {
		return err
	}
	if num, err := res.RowsAffected(); err != nil || num == 0 {
		if err != nil {
			return fmt.Errorf("Update: Failed to get number of updated rows: %v", err)
		}
		return repos.ErrEntityNotExisting
	}
	return nil
}

// BumpNumRequested increases the "numRequested" counter on the given song
func (r *SongRepo) BumpNumRequested(id string) error {
	query := `UPDATE Songs SET numRequested = numRequested+1 WHERE id = ?`
	res, err := r.db.Exec(query, id)
	if err != nil {
		return fmt.Errorf("BumpNumRequested: Failed to update song entry: %v", err)
	}
	if num, _ := res.RowsAffected(); num == 0 {
		return repos.ErrEntityNotExisting
	}
	return nil
}

// Delete removes an existing catalog entry from the storage
func (r *SongRepo) Delete(id string) error {
	r.logger.WithField(log.FldSong, id).Debug("Deleting song")
	query := "DELETE FROM Songs WHERE id = ?"
	res, err := r.db.Exec(query, id)
	if err != nil {
		return err
	}
	if num, err := res.RowsAffected(); err != nil || num == 0 {
		if err != nil {
			return err
		}
		return repos.ErrEntityNotExisting
	}
	return nil
}

// GetByID returns the catalog entry having the given ID
func (r *SongRepo) GetByID(id string) (*models.Song, error) {
	r.logger.WithField(log.FldSong, id).Debug("Loading song")
	query := fmt.Sprintf("SELECT %s FROM Songs WHERE id = ?", fieldNames)
	var song models.Song
	err := r.db.Get(&song, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			// Nothing found
			return nil, repos.ErrEntityNotExisting
		}
		return nil, err
	}
	return &song, nil
}

// Find searches for songs matching the given search string - supports pagination
// Returned is the requested page of the songs and the number of songs in the full result set
func (r *SongRepo) Find(search string, offset uint, limit uint) ([]models.Song, uint, error) {
	if limit == 0 {
		limit = 50
	}
	r.logger.WithFields(logrus.Fields{
		log.FldSearch: search,
		log.FldOffset: offset,
		log.FldLimit:  limit,
	}).Debug("Searching for songs")
	// For now, we're using a simple LIKE search
	search = "%" + search + "%"
	query := fmt.Sprintf(`SELECT %s FROM Songs WHERE
        title LIKE $1 OR
        artist LIKE $1 OR
        category LIKE $1 OR
        subcategory LIKE $1
        ORDER BY position
        LIMIT $2 OFFSET $3
    `, fieldNames)
	var ret []models.Song
	err := r.db.Select(&ret, query, search, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	// Query the full count
	query = `SELECT COUNT(*) FROM Songs WHERE
        title LIKE $1 OR
        artist LIKE $1 OR
        category LIKE $1 OR
        subcategory LIKE $1`
	var numRows uint
	if err = r.db.Get(&numRows, query, search); err != nil {
		return nil, 0, err
	}
	return ret, numRows, nil
}

// All returns the full catalog in setlist order
func (r *SongRepo) All() ([]models.Song, error) {
	query := fmt.Sprintf("SELECT %s FROM Songs ORDER BY position", fieldNames)
	var ret []models.Song
	if err := r.db.Select(&ret, query); err != nil {
		return nil, err
	}
	return ret, nil
}
