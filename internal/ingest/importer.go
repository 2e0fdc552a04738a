package ingest

import (
	"os"

	"github.com/jvarghese/gigwish/internal/log"
	"github.com/jvarghese/gigwish/internal/repos"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Importer loads a setlist document into the song repository
type Importer struct {
	repo   repos.SongRepo
	logger *logrus.Entry
}

// NewImporter creates a new setlist importer writing to the given song repository
func NewImporter(repo repos.SongRepo, logger *logrus.Entry) *Importer {
	return &Importer{
		repo:   repo,
		logger: logger,
	}
}

// ImportFile parses the setlist file at the given path and upserts all songs found in it
// into the repository. Re-importing an updated setlist keeps the request counters of the
// songs that already exist. Returns the number of songs imported.
func (imp *Importer) ImportFile(path string) (int, error) {
	logger := imp.logger.WithField(log.FldFile, path)
	logger.Info("Importing setlist")
	f, err := os.Open(path)
	if err != nil {
		return 0, errors.Wrapf(err, "ImportFile: Cannot open setlist file '%s'", path)
	}
	defer f.Close()
	songs, err := ParseSetlist(f)
	if err != nil {
		return 0, errors.Wrap(err, "ImportFile: Failed to parse setlist")
	}
	for i := range songs {
		if err := imp.repo.Upsert(&songs[i]); err != nil {
			return i, errors.Wrapf(err, "ImportFile: Failed to store song '%s'", songs[i].ID)
		}
	}
	logger.WithField(log.FldCount, len(songs)).Info("Setlist import finished")
	return len(songs), nil
}
