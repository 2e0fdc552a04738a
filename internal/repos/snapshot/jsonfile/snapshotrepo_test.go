package jsonfile

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/jvarghese/gigwish/internal/models"
	"github.com/jvarghese/gigwish/internal/repos"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFile(t *testing.T) {
	repo := New(filepath.Join(t.TempDir(), "state.json"))
	_, err := repo.Load()
	assert.Equal(t, repos.ErrEntityNotExisting, err)
}

func TestSaveAndLoad(t *testing.T) {
	repo := New(filepath.Join(t.TempDir(), "state.json"))

	snap := &models.StateSnapshot{
		Requests: []*models.SongRequest{
			{
				ID:        "req-1",
				SongID:    "song-1",
				Song:      models.Song{ID: "song-1", Title: "Imagine", Artist: "John Lennon"},
				CreatedAt: time.Now().Round(time.Second),
				Status:    models.RequestStatusPending,
				Claps:     2,
			},
		},
		NowPlayingID: "req-1",
		Polls: []*models.Poll{
			{
				ID:         "poll-1",
				Question:   "Next?",
				Options:    []string{"a", "b"},
				Votes:      map[string]uint{"a": 1, "b": 0},
				IsActive:   true,
				TotalVotes: 1,
			},
		},
		ActivePollID: "poll-1",
		TotalClaps:   5,
		Fingerprints: map[string]*models.UserFingerprint{
			"dev-a": {ID: "dev-a", RequestCount: 1, VotedPolls: map[string]bool{"poll-1": true}},
		},
	}
	require.NoError(t, repo.Save(snap))

	loaded, err := repo.Load()
	require.NoError(t, err)
	require.Len(t, loaded.Requests, 1)
	assert.Equal(t, "req-1", loaded.Requests[0].ID)
	assert.Equal(t, "Imagine", loaded.Requests[0].Song.Title)
	assert.Equal(t, "req-1", loaded.NowPlayingID)
	require.Len(t, loaded.Polls, 1)
	assert.Equal(t, uint(1), loaded.Polls[0].Votes["a"])
	assert.Equal(t, "poll-1", loaded.ActivePollID)
	assert.Equal(t, uint(5), loaded.TotalClaps)
	require.Contains(t, loaded.Fingerprints, "dev-a")
	assert.True(t, loaded.Fingerprints["dev-a"].HasVoted("poll-1"))
}

func TestSaveOverwritesPrevious(t *testing.T) {
	repo := New(filepath.Join(t.TempDir(), "state.json"))

	require.NoError(t, repo.Save(&models.StateSnapshot{TotalClaps: 1}))
	require.NoError(t, repo.Save(&models.StateSnapshot{TotalClaps: 2}))

	loaded, err := repo.Load()
	require.NoError(t, err)
	assert.Equal(t, uint(2), loaded.TotalClaps)
}
