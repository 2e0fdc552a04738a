package models

import (
	"strconv"
	"strings"
	"time"
)

// UserFingerprint is the per-device pseudo-identity used to track request and vote
// counts without a login system. It is derived from request signals the device cannot
// easily vary by accident - but trivially by intent. This is a best-effort soft limit
// for a friendly audience, not a security control.
type UserFingerprint struct {
	// The fingerprint hash identifying the device
	ID string `json:"id"`
	// The number of song requests successfully created by this device
	RequestCount uint `json:"requestCount"`
	// Timestamp of the most recent successful request
	LastRequest time.Time `json:"lastRequest"`
	// The number of claps given by this device
	ClapsGiven uint `json:"clapsGiven"`
	// The number of poll votes cast by this device
	VotesGiven uint `json:"votesGiven"`
	// The IDs of the polls this device has already voted on
	VotedPolls map[string]bool `json:"votedPolls,omitempty"`
}

// HasVoted checks if this device has already cast a vote on the given poll
func (f UserFingerprint) HasVoted(pollID string) bool {
	return f.VotedPolls[pollID]
}

// MarkVoted records that this device has cast a vote on the given poll
func (f *UserFingerprint) MarkVoted(pollID string) {
	if f.VotedPolls == nil {
		f.VotedPolls = map[string]bool{}
	}
	f.VotedPolls[pollID] = true
	f.VotesGiven++
}

// DeriveFingerprint hashes the given device signals (user agent, language, remote
// address, ...) into a short base-36 identifier. Identical signals always yield the
// same ID, so a device keeps its identity across calls without storing anything.
func DeriveFingerprint(signals ...string) string {
	joined := strings.Join(signals, "|")
	var hash int32
	for _, c := range joined {
		hash = (hash << 5) - hash + c
	}
	v := int64(hash)
	if v < 0 {
		v = -v
	}
	return strconv.FormatInt(v, 36)
}
