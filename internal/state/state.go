// Package state holds the live application state of a performance evening: the request
// queue, the audience polls, the clap counters and the per-device fingerprints. All of it
// lives in memory behind a single mutex; every mutation is followed by a full analytics
// recompute and a best-effort write to the snapshot repository.
package state

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jvarghese/gigwish/internal/models"
	"github.com/jvarghese/gigwish/internal/repos"
	"github.com/sirupsen/logrus"
)

// CategoryAll is the category filter value that matches every song
const CategoryAll = "All"

// Store is the central in-memory state of the application
type Store struct {
	mu     sync.RWMutex
	logger *logrus.Entry

	// snapshots persists the live state between runs - may be nil in tests
	snapshots repos.SnapshotRepo

	// maxRequests is the per-device request quota
	maxRequests uint

	// The song catalog and the currently filtered view of it
	songs            []models.Song
	filteredSongs    []models.Song
	searchQuery      string
	selectedCategory string

	// The request queue in display order
	requests     []*models.SongRequest
	nowPlayingID string

	// All polls of the evening, newest last
	polls        []*models.Poll
	activePollID string

	totalClaps   uint
	fingerprints map[string]*models.UserFingerprint
	analytics    models.Analytics
}

// New creates a new state store. When a snapshot repository is given, the previously
// saved state is loaded back; a missing snapshot simply yields an empty store.
func New(snapshots repos.SnapshotRepo, maxRequests uint, logger *logrus.Entry) *Store {
	s := &Store{
		logger:           logger,
		snapshots:        snapshots,
		maxRequests:      maxRequests,
		selectedCategory: CategoryAll,
		requests:         []*models.SongRequest{},
		polls:            []*models.Poll{},
		fingerprints:     map[string]*models.UserFingerprint{},
		analytics:        models.EmptyAnalytics(),
	}
	if snapshots != nil {
		snap, err := snapshots.Load()
		if err != nil {
			if err != repos.ErrEntityNotExisting {
				logger.WithError(err).Warn("Failed to load the state snapshot - starting with an empty state")
			}
		} else {
			s.restore(snap)
		}
	}
	return s
}

// restore applies a loaded snapshot. Only called during construction, so no locking here.
func (s *Store) restore(snap *models.StateSnapshot) {
	if snap.Requests != nil {
		s.requests = snap.Requests
	}
	if snap.Polls != nil {
		s.polls = snap.Polls
	}
	if snap.Fingerprints != nil {
		s.fingerprints = snap.Fingerprints
	}
	s.nowPlayingID = snap.NowPlayingID
	s.activePollID = snap.ActivePollID
	s.totalClaps = snap.TotalClaps
	s.recomputeAnalyticsLocked()
	s.logger.WithFields(logrus.Fields{
		"requests": len(s.requests),
		"polls":    len(s.polls),
		"devices":  len(s.fingerprints),
	}).Info("Restored state from snapshot")
}

// -- Catalog and filtering --------------------------------------------------------------

// SetCatalog replaces the song catalog and re-applies the current filter
func (s *Store) SetCatalog(songs []models.Song) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.songs = songs
	s.recomputeFilterLocked()
}

// SetFilter updates the search query and category filter and recomputes the filtered view
func (s *Store) SetFilter(query string, category string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.searchQuery = query
	s.selectedCategory = category
	s.recomputeFilterLocked()
}

// Filter returns the currently set search query and category
func (s *Store) Filter() (query string, category string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.searchQuery, s.selectedCategory
}

// Catalog returns the full song catalog in setlist order
func (s *Store) Catalog() []models.Song {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Song, len(s.songs))
	copy(out, s.songs)
	return out
}

// FilteredSongs returns the catalog entries matching the current filter
func (s *Store) FilteredSongs() []models.Song {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Song, len(s.filteredSongs))
	copy(out, s.filteredSongs)
	return out
}

// recomputeFilterLocked rebuilds the filtered song list from the catalog, the search
// query and the selected category. Both filters must match for a song to pass.
func (s *Store) recomputeFilterLocked() {
	query := strings.ToLower(strings.TrimSpace(s.searchQuery))
	filtered := make([]models.Song, 0, len(s.songs))
	for _, song := range s.songs {
		if s.selectedCategory != "" && s.selectedCategory != CategoryAll && song.Category != s.selectedCategory {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(song.Title), query) &&
			!strings.Contains(strings.ToLower(song.Artist), query) {
			continue
		}
		filtered = append(filtered, song)
	}
	s.filteredSongs = filtered
}

// -- Requests ---------------------------------------------------------------------------

// SubmitRequest creates a new song request for the given device. The request enters the
// queue as "pending" with zero claps. Unless bypassQuota is set, a device that has already
// used up its quota is rejected with repos.ErrQuotaExceeded and no state changes at all.
func (s *Store) SubmitRequest(fpID string, song models.Song, requesterName string, dedication string, bypassQuota bool) (*models.SongRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fp := s.fingerprintLocked(fpID)
	if !bypassQuota && fp.RequestCount >= s.maxRequests {
		return nil, repos.ErrQuotaExceeded
	}
	req := &models.SongRequest{
		ID:            fmt.Sprintf("req-%s", uuid.New().String()),
		SongID:        song.ID,
		Song:          song,
		RequesterName: strings.TrimSpace(requesterName),
		Dedication:    strings.TrimSpace(dedication),
		CreatedAt:     time.Now(),
		Status:        models.RequestStatusPending,
		Claps:         0,
	}
	s.requests = append(s.requests, req)
	fp.RequestCount++
	fp.LastRequest = req.CreatedAt
	s.recomputeAnalyticsLocked()
	s.persistLocked()
	out := *req
	return &out, nil
}

// Requests returns the request queue in display order
func (s *Store) Requests() []models.SongRequest {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.SongRequest, 0, len(s.requests))
	for _, req := range s.requests {
		out = append(out, *req)
	}
	return out
}

// Request returns the request with the given ID
func (s *Store) Request(id string) (*models.SongRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, req := range s.requests {
		if req.ID == id {
			out := *req
			return &out, nil
		}
	}
	return nil, repos.ErrEntityNotExisting
}

// PendingCountBySong returns how many open (pending or playing) requests exist for the
// given catalog song - used to optionally reject duplicate requests
func (s *Store) PendingCountBySong(songID string) uint {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var count uint
	for _, req := range s.requests {
		if req.SongID == songID &&
			(req.Status == models.RequestStatusPending || req.Status == models.RequestStatusPlaying) {
			count++
		}
	}
	return count
}

// SetRequestStatus updates the lifecycle status of a request. Moving a request to
// "playing" demotes the previously playing request to "played" first, so at most one
// request plays at a time.
func (s *Store) SetRequestStatus(id string, status string) (*models.SongRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var target *models.SongRequest
	for _, req := range s.requests {
		if req.ID == id {
			target = req
			break
		}
	}
	if target == nil {
		return nil, repos.ErrEntityNotExisting
	}
	if status == models.RequestStatusPlaying {
		for _, req := range s.requests {
			if req.ID != id && req.Status == models.RequestStatusPlaying {
				req.Status = models.RequestStatusPlayed
			}
		}
		s.nowPlayingID = id
	} else if s.nowPlayingID == id {
		s.nowPlayingID = ""
	}
	target.Status = status
	s.recomputeAnalyticsLocked()
	s.persistLocked()
	out := *target
	return &out, nil
}

// RemoveRequest deletes a request from the queue. Removing the currently playing request
// also clears the now-playing marker. The order of the remaining requests is unchanged.
func (s *Store) RemoveRequest(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := -1
	for i, req := range s.requests {
		if req.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return repos.ErrEntityNotExisting
	}
	if s.nowPlayingID == id {
		s.nowPlayingID = ""
	}
	s.requests = append(s.requests[:idx], s.requests[idx+1:]...)
	s.recomputeAnalyticsLocked()
	s.persistLocked()
	return nil
}

// ReorderRequests replaces the queue order with the given ID sequence. The sequence must
// be an exact permutation of the current queue - otherwise nothing changes and
// repos.ErrReorderMismatch is returned.
func (s *Store) ReorderRequests(ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(ids) != len(s.requests) {
		return repos.ErrReorderMismatch
	}
	byID := make(map[string]*models.SongRequest, len(s.requests))
	for _, req := range s.requests {
		byID[req.ID] = req
	}
	reordered := make([]*models.SongRequest, 0, len(ids))
	for _, id := range ids {
		req, ok := byID[id]
		if !ok {
			return repos.ErrReorderMismatch
		}
		delete(byID, id)
		reordered = append(reordered, req)
	}
	s.requests = reordered
	s.persistLocked()
	return nil
}

// NowPlaying returns the currently playing request, or nil when nothing plays
func (s *Store) NowPlaying() *models.SongRequest {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.nowPlayingID == "" {
		return nil
	}
	for _, req := range s.requests {
		if req.ID == s.nowPlayingID {
			out := *req
			return &out
		}
	}
	return nil
}

// -- Claps ------------------------------------------------------------------------------

// AddClap increments the global clap counter and, when requestID names a live request,
// that request's clap counter as well. A stale or empty requestID still counts globally -
// the applause happened either way.
func (s *Store) AddClap(requestID string, fpID string) uint {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.totalClaps++
	if requestID != "" {
		for _, req := range s.requests {
			if req.ID == requestID {
				req.Claps++
				break
			}
		}
	}
	if fpID != "" {
		s.fingerprintLocked(fpID).ClapsGiven++
	}
	s.recomputeAnalyticsLocked()
	s.persistLocked()
	return s.totalClaps
}

// TotalClaps returns the global clap counter
func (s *Store) TotalClaps() uint {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.totalClaps
}

// -- Polls ------------------------------------------------------------------------------

// CreatePoll opens a new poll with the given question and options. All vote counters
// start at zero. A previously active poll is closed - only one poll accepts votes at a
// time.
func (s *Store) CreatePoll(question string, options []string) *models.Poll {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, poll := range s.polls {
		if poll.IsActive {
			poll.IsActive = false
		}
	}
	votes := make(map[string]uint, len(options))
	for _, opt := range options {
		votes[opt] = 0
	}
	poll := &models.Poll{
		ID:        fmt.Sprintf("poll-%s", uuid.New().String()),
		Question:  question,
		Options:   options,
		Votes:     votes,
		IsActive:  true,
		CreatedAt: time.Now(),
	}
	s.polls = append(s.polls, poll)
	s.activePollID = poll.ID
	s.recomputeAnalyticsLocked()
	s.persistLocked()
	out := clonePoll(poll)
	return &out
}

// Vote casts a vote for the given option on the given poll. Each device may vote at most
// once per poll; closed polls and unknown options are rejected without changing anything.
func (s *Store) Vote(pollID string, option string, fpID string) (*models.Poll, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var poll *models.Poll
	for _, p := range s.polls {
		if p.ID == pollID {
			poll = p
			break
		}
	}
	if poll == nil {
		return nil, repos.ErrEntityNotExisting
	}
	if !poll.IsActive {
		return nil, repos.ErrPollClosed
	}
	if !poll.HasOption(option) {
		return nil, repos.ErrUnknownOption
	}
	fp := s.fingerprintLocked(fpID)
	if fp.HasVoted(pollID) {
		return nil, repos.ErrAlreadyVoted
	}
	poll.Votes[option]++
	poll.TotalVotes++
	fp.MarkVoted(pollID)
	s.recomputeAnalyticsLocked()
	s.persistLocked()
	out := clonePoll(poll)
	return &out, nil
}

// ClosePoll stops the given poll from accepting further votes. Its results stay available.
func (s *Store) ClosePoll(pollID string) (*models.Poll, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, poll := range s.polls {
		if poll.ID == pollID {
			poll.IsActive = false
			if s.activePollID == pollID {
				s.activePollID = ""
			}
			s.persistLocked()
			out := clonePoll(poll)
			return &out, nil
		}
	}
	return nil, repos.ErrEntityNotExisting
}

// Polls returns all polls of the evening, including closed ones
func (s *Store) Polls() []models.Poll {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Poll, 0, len(s.polls))
	for _, poll := range s.polls {
		out = append(out, clonePoll(poll))
	}
	return out
}

// ActivePoll returns the poll currently accepting votes, or nil when there is none
func (s *Store) ActivePoll() *models.Poll {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.activePollID == "" {
		return nil
	}
	for _, poll := range s.polls {
		if poll.ID == s.activePollID && poll.IsActive {
			out := clonePoll(poll)
			return &out
		}
	}
	return nil
}

// clonePoll returns a deep value copy of the given poll so callers cannot reach the
// store-internal vote map
func clonePoll(p *models.Poll) models.Poll {
	out := *p
	out.Options = append([]string(nil), p.Options...)
	out.Votes = make(map[string]uint, len(p.Votes))
	for k, v := range p.Votes {
		out.Votes[k] = v
	}
	return out
}

// -- Fingerprints -----------------------------------------------------------------------

// fingerprintLocked returns the fingerprint record for the given device, creating a fresh
// zeroed record the first time a device shows up
func (s *Store) fingerprintLocked(id string) *models.UserFingerprint {
	fp, ok := s.fingerprints[id]
	if !ok {
		fp = &models.UserFingerprint{ID: id}
		s.fingerprints[id] = fp
	}
	return fp
}

// cloneFingerprint returns an independent copy of the given fingerprint record
func cloneFingerprint(fp *models.UserFingerprint) models.UserFingerprint {
	out := *fp
	if fp.VotedPolls != nil {
		out.VotedPolls = make(map[string]bool, len(fp.VotedPolls))
		for k, v := range fp.VotedPolls {
			out.VotedPolls[k] = v
		}
	}
	return out
}

// Fingerprint returns a copy of the fingerprint record for the given device, creating it
// if the device is new
func (s *Store) Fingerprint(id string) models.UserFingerprint {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneFingerprint(s.fingerprintLocked(id))
}

// CanSubmitRequest checks whether the given device still has quota for another request
func (s *Store) CanSubmitRequest(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fp, ok := s.fingerprints[id]
	if !ok {
		return true
	}
	return fp.RequestCount < s.maxRequests
}

// -- Analytics and persistence ----------------------------------------------------------

// Analytics returns the current derived summaries
func (s *Store) Analytics() models.Analytics {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := models.EmptyAnalytics()
	for k, v := range s.analytics.MostRequested {
		out.MostRequested[k] = v
	}
	for k, v := range s.analytics.CategoryStats {
		out.CategoryStats[k] = v
	}
	out.EngagementStats = s.analytics.EngagementStats
	return out
}

// recomputeAnalyticsLocked rebuilds the derived summaries from scratch
func (s *Store) recomputeAnalyticsLocked() {
	analytics := models.EmptyAnalytics()
	for _, req := range s.requests {
		key := fmt.Sprintf("%s - %s", req.Song.Title, req.Song.Artist)
		analytics.MostRequested[key]++
		analytics.CategoryStats[req.Song.Category]++
	}
	for _, poll := range s.polls {
		analytics.EngagementStats.TotalVotes += poll.TotalVotes
	}
	analytics.EngagementStats.TotalClaps = s.totalClaps
	analytics.EngagementStats.ActiveUsers = uint(len(s.fingerprints))
	s.analytics = analytics
}

// Snapshot returns the persistable part of the current state
func (s *Store) Snapshot() *models.StateSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() *models.StateSnapshot {
	snap := &models.StateSnapshot{
		Requests:     make([]*models.SongRequest, 0, len(s.requests)),
		NowPlayingID: s.nowPlayingID,
		Polls:        make([]*models.Poll, 0, len(s.polls)),
		ActivePollID: s.activePollID,
		TotalClaps:   s.totalClaps,
		Analytics:    s.analytics,
		Fingerprints: make(map[string]*models.UserFingerprint, len(s.fingerprints)),
	}
	for _, req := range s.requests {
		out := *req
		snap.Requests = append(snap.Requests, &out)
	}
	for _, poll := range s.polls {
		out := clonePoll(poll)
		snap.Polls = append(snap.Polls, &out)
	}
	for id, fp := range s.fingerprints {
		out := cloneFingerprint(fp)
		snap.Fingerprints[id] = &out
	}
	return snap
}

// persistLocked writes the current state to the snapshot repository. Persistence failures
// are logged and swallowed - the in-memory state stays authoritative for the running show.
func (s *Store) persistLocked() {
	if s.snapshots == nil {
		return
	}
	if err := s.snapshots.Save(s.snapshotLocked()); err != nil {
		s.logger.WithError(err).Warn("Failed to persist the state snapshot")
	}
}
