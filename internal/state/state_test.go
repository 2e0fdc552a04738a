package state

import (
	"testing"

	"github.com/jvarghese/gigwish/internal/models"
	"github.com/jvarghese/gigwish/internal/repos"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Entry {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return logrus.NewEntry(l)
}

func testSong(id, title, artist, category string) models.Song {
	return models.Song{
		ID:       id,
		Title:    title,
		Artist:   artist,
		Category: category,
	}
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return New(nil, 3, testLogger())
}

func TestSubmitRequestQuota(t *testing.T) {
	s := newTestStore(t)
	song := testSong("song-1", "Imagine", "John Lennon", models.CategoryWestern)

	for i := 0; i < 3; i++ {
		_, err := s.SubmitRequest("dev-a", song, "", "", false)
		require.NoError(t, err)
	}
	// The fourth request must fail and leave everything untouched
	_, err := s.SubmitRequest("dev-a", song, "", "", false)
	assert.Equal(t, repos.ErrQuotaExceeded, err)
	assert.Len(t, s.Requests(), 3)
	assert.Equal(t, uint(3), s.Fingerprint("dev-a").RequestCount)

	// A different device is unaffected
	_, err = s.SubmitRequest("dev-b", song, "", "", false)
	assert.NoError(t, err)
}

func TestSubmitRequestBypassesQuotaWhenWhitelisted(t *testing.T) {
	s := newTestStore(t)
	song := testSong("song-1", "Imagine", "John Lennon", models.CategoryWestern)

	for i := 0; i < 5; i++ {
		_, err := s.SubmitRequest("dev-a", song, "", "", true)
		require.NoError(t, err)
	}
	assert.Len(t, s.Requests(), 5)
}

func TestSubmitRequestInitialValues(t *testing.T) {
	s := newTestStore(t)
	song := testSong("song-1", "Imagine", "John Lennon", models.CategoryWestern)

	req, err := s.SubmitRequest("dev-a", song, "  Maya  ", "happy birthday", false)
	require.NoError(t, err)
	assert.NotEmpty(t, req.ID)
	assert.Equal(t, models.RequestStatusPending, req.Status)
	assert.Equal(t, uint(0), req.Claps)
	assert.Equal(t, "Maya", req.RequesterName)
	assert.Equal(t, "happy birthday", req.Dedication)
	assert.Equal(t, "song-1", req.SongID)
	assert.Equal(t, "Imagine", req.Song.Title)
	assert.False(t, req.CreatedAt.IsZero())
}

func TestSetRequestStatusDemotesPreviousPlaying(t *testing.T) {
	s := newTestStore(t)
	song := testSong("song-1", "Imagine", "John Lennon", models.CategoryWestern)
	first, err := s.SubmitRequest("dev-a", song, "", "", false)
	require.NoError(t, err)
	second, err := s.SubmitRequest("dev-b", song, "", "", true)
	require.NoError(t, err)

	_, err = s.SetRequestStatus(first.ID, models.RequestStatusPlaying)
	require.NoError(t, err)
	np := s.NowPlaying()
	require.NotNil(t, np)
	assert.Equal(t, first.ID, np.ID)

	// Starting the second request moves the first one to "played"
	_, err = s.SetRequestStatus(second.ID, models.RequestStatusPlaying)
	require.NoError(t, err)
	np = s.NowPlaying()
	require.NotNil(t, np)
	assert.Equal(t, second.ID, np.ID)

	var playing int
	for _, req := range s.Requests() {
		if req.Status == models.RequestStatusPlaying {
			playing++
		}
		if req.ID == first.ID {
			assert.Equal(t, models.RequestStatusPlayed, req.Status)
		}
	}
	assert.Equal(t, 1, playing)
}

func TestSetRequestStatusUnknownRequest(t *testing.T) {
	s := newTestStore(t)
	_, err := s.SetRequestStatus("req-nope", models.RequestStatusPlaying)
	assert.Equal(t, repos.ErrEntityNotExisting, err)
}

func TestRemoveRequestKeepsOrderAndClearsNowPlaying(t *testing.T) {
	s := newTestStore(t)
	song := testSong("song-1", "Imagine", "John Lennon", models.CategoryWestern)
	var ids []string
	for i := 0; i < 4; i++ {
		req, err := s.SubmitRequest("dev-a", song, "", "", true)
		require.NoError(t, err)
		ids = append(ids, req.ID)
	}
	_, err := s.SetRequestStatus(ids[1], models.RequestStatusPlaying)
	require.NoError(t, err)

	require.NoError(t, s.RemoveRequest(ids[1]))
	assert.Nil(t, s.NowPlaying())

	remaining := s.Requests()
	require.Len(t, remaining, 3)
	assert.Equal(t, ids[0], remaining[0].ID)
	assert.Equal(t, ids[2], remaining[1].ID)
	assert.Equal(t, ids[3], remaining[2].ID)

	assert.Equal(t, repos.ErrEntityNotExisting, s.RemoveRequest(ids[1]))
}

func TestReorderRequests(t *testing.T) {
	s := newTestStore(t)
	song := testSong("song-1", "Imagine", "John Lennon", models.CategoryWestern)
	var ids []string
	for i := 0; i < 3; i++ {
		req, err := s.SubmitRequest("dev-a", song, "", "", true)
		require.NoError(t, err)
		ids = append(ids, req.ID)
	}

	require.NoError(t, s.ReorderRequests([]string{ids[2], ids[0], ids[1]}))
	reordered := s.Requests()
	assert.Equal(t, ids[2], reordered[0].ID)
	assert.Equal(t, ids[0], reordered[1].ID)
	assert.Equal(t, ids[1], reordered[2].ID)
}

func TestReorderRequestsRejectsNonPermutations(t *testing.T) {
	s := newTestStore(t)
	song := testSong("song-1", "Imagine", "John Lennon", models.CategoryWestern)
	var ids []string
	for i := 0; i < 3; i++ {
		req, err := s.SubmitRequest("dev-a", song, "", "", true)
		require.NoError(t, err)
		ids = append(ids, req.ID)
	}

	// Too short
	assert.Equal(t, repos.ErrReorderMismatch, s.ReorderRequests(ids[:2]))
	// Unknown ID
	assert.Equal(t, repos.ErrReorderMismatch, s.ReorderRequests([]string{ids[0], ids[1], "req-nope"}))
	// Duplicated ID
	assert.Equal(t, repos.ErrReorderMismatch, s.ReorderRequests([]string{ids[0], ids[1], ids[1]}))

	// The queue order is unchanged after the failed attempts
	current := s.Requests()
	for i, id := range ids {
		assert.Equal(t, id, current[i].ID)
	}
}

func TestAddClap(t *testing.T) {
	s := newTestStore(t)
	song := testSong("song-1", "Imagine", "John Lennon", models.CategoryWestern)
	req, err := s.SubmitRequest("dev-a", song, "", "", false)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		s.AddClap(req.ID, "dev-b")
	}
	// A clap without request still counts globally
	total := s.AddClap("", "dev-b")
	assert.Equal(t, uint(6), total)
	assert.Equal(t, uint(6), s.TotalClaps())

	stored, err := s.Request(req.ID)
	require.NoError(t, err)
	assert.Equal(t, uint(5), stored.Claps)
	assert.Equal(t, uint(6), s.Fingerprint("dev-b").ClapsGiven)
}

func TestAddClapStaleRequestCountsGlobally(t *testing.T) {
	s := newTestStore(t)
	total := s.AddClap("req-gone", "dev-a")
	assert.Equal(t, uint(1), total)
}

func TestPollLifecycle(t *testing.T) {
	s := newTestStore(t)
	poll := s.CreatePoll("Next set?", []string{"Acoustic", "Electric"})
	require.NotNil(t, poll)
	assert.True(t, poll.IsActive)
	assert.Equal(t, uint(0), poll.Votes["Acoustic"])
	assert.Equal(t, uint(0), poll.Votes["Electric"])

	_, err := s.Vote(poll.ID, "Acoustic", "dev-a")
	require.NoError(t, err)
	_, err = s.Vote(poll.ID, "Acoustic", "dev-b")
	require.NoError(t, err)
	voted, err := s.Vote(poll.ID, "Electric", "dev-c")
	require.NoError(t, err)

	assert.Equal(t, uint(2), voted.Votes["Acoustic"])
	assert.Equal(t, uint(1), voted.Votes["Electric"])
	assert.Equal(t, uint(3), voted.TotalVotes)

	closed, err := s.ClosePoll(poll.ID)
	require.NoError(t, err)
	assert.False(t, closed.IsActive)
	assert.Nil(t, s.ActivePoll())

	// A closed poll keeps its tallies and rejects further votes
	_, err = s.Vote(poll.ID, "Acoustic", "dev-d")
	assert.Equal(t, repos.ErrPollClosed, err)
	polls := s.Polls()
	require.Len(t, polls, 1)
	assert.Equal(t, uint(2), polls[0].Votes["Acoustic"])
}

func TestVoteValidations(t *testing.T) {
	s := newTestStore(t)
	poll := s.CreatePoll("Next set?", []string{"Acoustic", "Electric"})

	_, err := s.Vote("poll-nope", "Acoustic", "dev-a")
	assert.Equal(t, repos.ErrEntityNotExisting, err)

	_, err = s.Vote(poll.ID, "Disco", "dev-a")
	assert.Equal(t, repos.ErrUnknownOption, err)

	_, err = s.Vote(poll.ID, "Acoustic", "dev-a")
	require.NoError(t, err)
	_, err = s.Vote(poll.ID, "Electric", "dev-a")
	assert.Equal(t, repos.ErrAlreadyVoted, err)

	// The failed attempts did not change the tallies
	active := s.ActivePoll()
	require.NotNil(t, active)
	assert.Equal(t, uint(1), active.TotalVotes)
}

func TestCreatePollClosesPreviousActive(t *testing.T) {
	s := newTestStore(t)
	first := s.CreatePoll("First?", []string{"a", "b"})
	second := s.CreatePoll("Second?", []string{"c", "d"})

	active := s.ActivePoll()
	require.NotNil(t, active)
	assert.Equal(t, second.ID, active.ID)

	for _, poll := range s.Polls() {
		if poll.ID == first.ID {
			assert.False(t, poll.IsActive)
		}
	}
}

func TestFilterComposition(t *testing.T) {
	s := newTestStore(t)
	s.SetCatalog([]models.Song{
		testSong("song-1", "Kabhi Kabhi Aditi", "A.R. Rahman", models.CategoryBollywood),
		testSong("song-2", "Imagine", "John Lennon", models.CategoryWestern),
		testSong("song-3", "Kabhi Alvida Naa Kehna", "KK", models.CategoryBollywood),
		testSong("song-4", "Jingle Bells", "Traditional", models.CategoryChristmas),
	})

	// Catalog starts unfiltered
	assert.Len(t, s.FilteredSongs(), 4)

	s.SetFilter("kabhi", CategoryAll)
	filtered := s.FilteredSongs()
	require.Len(t, filtered, 2)

	// Both filters apply at once
	s.SetFilter("kabhi", models.CategoryBollywood)
	assert.Len(t, s.FilteredSongs(), 2)
	s.SetFilter("kabhi", models.CategoryWestern)
	assert.Empty(t, s.FilteredSongs())

	// Artist matches too
	s.SetFilter("lennon", CategoryAll)
	filtered = s.FilteredSongs()
	require.Len(t, filtered, 1)
	assert.Equal(t, "song-2", filtered[0].ID)

	// Clearing the query leaves the category filter in place
	s.SetFilter("", models.CategoryBollywood)
	assert.Len(t, s.FilteredSongs(), 2)
}

func TestAnalytics(t *testing.T) {
	s := newTestStore(t)
	imagine := testSong("song-1", "Imagine", "John Lennon", models.CategoryWestern)
	zara := testSong("song-2", "Zara Zara", "Bombay Jayashri", models.CategoryBollywood)

	_, err := s.SubmitRequest("dev-a", imagine, "", "", false)
	require.NoError(t, err)
	_, err = s.SubmitRequest("dev-b", imagine, "", "", false)
	require.NoError(t, err)
	_, err = s.SubmitRequest("dev-a", zara, "", "", false)
	require.NoError(t, err)

	poll := s.CreatePoll("Next?", []string{"a", "b"})
	_, err = s.Vote(poll.ID, "a", "dev-c")
	require.NoError(t, err)
	s.AddClap("", "dev-a")
	s.AddClap("", "dev-a")

	stats := s.Analytics()
	assert.Equal(t, uint(2), stats.MostRequested["Imagine - John Lennon"])
	assert.Equal(t, uint(1), stats.MostRequested["Zara Zara - Bombay Jayashri"])
	assert.Equal(t, uint(2), stats.CategoryStats[models.CategoryWestern])
	assert.Equal(t, uint(1), stats.CategoryStats[models.CategoryBollywood])
	assert.Equal(t, uint(1), stats.EngagementStats.TotalVotes)
	assert.Equal(t, uint(2), stats.EngagementStats.TotalClaps)
	// dev-a, dev-b and dev-c have all interacted
	assert.Equal(t, uint(3), stats.EngagementStats.ActiveUsers)
}

func TestFingerprintLazyCreation(t *testing.T) {
	s := newTestStore(t)
	fp := s.Fingerprint("dev-new")
	assert.Equal(t, "dev-new", fp.ID)
	assert.Equal(t, uint(0), fp.RequestCount)
	assert.True(t, s.CanSubmitRequest("dev-new"))
	assert.True(t, s.CanSubmitRequest("dev-never-seen"))
}

func TestSnapshotRoundTrip(t *testing.T) {
	s := newTestStore(t)
	song := testSong("song-1", "Imagine", "John Lennon", models.CategoryWestern)
	req, err := s.SubmitRequest("dev-a", song, "Maya", "", false)
	require.NoError(t, err)
	_, err = s.SetRequestStatus(req.ID, models.RequestStatusPlaying)
	require.NoError(t, err)
	poll := s.CreatePoll("Next?", []string{"a", "b"})
	_, err = s.Vote(poll.ID, "a", "dev-b")
	require.NoError(t, err)
	s.AddClap(req.ID, "dev-c")

	snap := s.Snapshot()
	restored := New(&stubSnapshots{snap: snap}, 3, testLogger())

	np := restored.NowPlaying()
	require.NotNil(t, np)
	assert.Equal(t, req.ID, np.ID)
	active := restored.ActivePoll()
	require.NotNil(t, active)
	assert.Equal(t, poll.ID, active.ID)
	assert.Equal(t, uint(1), restored.TotalClaps())
	assert.Equal(t, uint(1), restored.Fingerprint("dev-a").RequestCount)
	assert.True(t, restored.Fingerprint("dev-b").HasVoted(poll.ID))
	// Analytics are recomputed from the restored state
	assert.Equal(t, uint(3), restored.Analytics().EngagementStats.ActiveUsers)
}

func TestSnapshotFingerprintsAreIndependent(t *testing.T) {
	s := newTestStore(t)
	first := s.CreatePoll("First?", []string{"a", "b"})
	_, err := s.Vote(first.ID, "a", "dev-a")
	require.NoError(t, err)

	snap := s.Snapshot()
	fpCopy := s.Fingerprint("dev-a")

	second := s.CreatePoll("Second?", []string{"c", "d"})
	_, err = s.Vote(second.ID, "c", "dev-a")
	require.NoError(t, err)

	// Copies taken before the second vote must not gain it
	assert.True(t, snap.Fingerprints["dev-a"].HasVoted(first.ID))
	assert.False(t, snap.Fingerprints["dev-a"].HasVoted(second.ID))
	assert.False(t, fpCopy.HasVoted(second.ID))
}

type stubSnapshots struct {
	snap  *models.StateSnapshot
	saved *models.StateSnapshot
}

func (s *stubSnapshots) Load() (*models.StateSnapshot, error) {
	if s.snap == nil {
		return nil, repos.ErrEntityNotExisting
	}
	return s.snap, nil
}

func (s *stubSnapshots) Save(snap *models.StateSnapshot) error {
	s.saved = snap
	return nil
}
