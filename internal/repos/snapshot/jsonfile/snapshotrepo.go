// Package jsonfile provides a snapshot repository that persists the application state
// as a single JSON file. Writes are best-effort - the in-memory state store remains the
// source of truth for the running session even when a write fails.
package jsonfile

import (
	"encoding/json"
	"os"

	"github.com/jvarghese/gigwish/internal/models"
	"github.com/jvarghese/gigwish/internal/repos"
	"github.com/pkg/errors"
)

// SnapshotRepo stores the state snapshot in a JSON file on disk
type SnapshotRepo struct {
	filename string
}

// New creates a new snapshot repository writing to the given file
func New(filename string) repos.SnapshotRepo {
	return &SnapshotRepo{filename: filename}
}

// Load reads the most recently saved snapshot
// A missing file is reported as repos.ErrEntityNotExisting so the caller can start fresh
func (r *SnapshotRepo) Load() (*models.StateSnapshot, error) {
	f, err := os.Open(r.filename)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, repos.ErrEntityNotExisting
		}
		return nil, errors.Wrap(err, "Load: cannot open snapshot file")
	}
	defer f.Close()
	var snap models.StateSnapshot
	if err = json.NewDecoder(f).Decode(&snap); err != nil {
		return nil, errors.Wrap(err, "Load: Failed to decode snapshot file")
	}
	return &snap, nil
}

// Save writes the given snapshot, replacing the previous one
func (r *SnapshotRepo) Save(snap *models.StateSnapshot) error {
	f, err := os.Create(r.filename)
	if err != nil {
		return errors.Wrapf(err, "Save: Cannot open snapshot file '%s' to write to", r.filename)
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "    ")
	if err := enc.Encode(snap); err != nil {
		return errors.Wrap(err, "Save: Failed to serialize snapshot data")
	}
	return nil
}
