package models

// StateSnapshot is the JSON-persisted portion of the application state. It is written
// best-effort after every mutation and read back once on startup.
// The song catalog and the filtered view are deliberately absent - they are reloaded
// from the catalog storage on every start.
type StateSnapshot struct {
	// The live request queue in display order
	Requests []*SongRequest `json:"requests"`
	// The ID of the request currently playing, if any
	NowPlayingID string `json:"nowPlayingId,omitempty"`
	// All polls of the evening, including closed ones
	Polls []*Poll `json:"polls"`
	// The ID of the poll currently accepting votes, if any
	ActivePollID string `json:"activePollId,omitempty"`
	// The global clap counter
	TotalClaps uint `json:"totalClaps"`
	// The derived analytics record
	Analytics Analytics `json:"analytics"`
	// All device fingerprints seen so far, keyed by fingerprint ID
	Fingerprints map[string]*UserFingerprint `json:"fingerprints"`
}
