package models

import "time"

const (
	// RequestStatusPending is the status of a request waiting in the queue
	RequestStatusPending = "pending"
	// RequestStatusPlaying is the status of the request currently performed on stage
	// At most one request may carry this status at a time
	RequestStatusPlaying = "playing"
	// RequestStatusPlayed is the terminal status of a request that has been performed
	RequestStatusPlayed = "played"
	// RequestStatusRemoved is the label for a request deleted from the queue
	// Removal drops the record from the live collection, so this value never shows up in listings
	RequestStatusRemoved = "removed"
)

// A SongRequest describes one song wished for by an audience member
type SongRequest struct {
	// Internal ID of the request
	ID string `json:"id"`
	// The ID of the requested catalog song
	SongID string `json:"songId"`
	// A copy of the catalog song at request time - later catalog edits do not touch existing requests
	Song Song `json:"song"`
	// Who requested the song? - Guests can enter this name freely, or leave it empty
	RequesterName string `json:"requesterName,omitempty"`
	// An optional dedication message to read out before playing
	Dedication string `json:"dedication,omitempty"`
	// Creation timestamp of the request == Timestamp of submission
	CreatedAt time.Time `json:"createdAt"`
	// The current lifecycle status - see the RequestStatus* constants
	Status string `json:"status"`
	// The number of claps this request has collected
	Claps uint `json:"claps"`
}

// ValidRequestStatus checks if the given value is a valid request status
func ValidRequestStatus(status string) bool {
	switch status {
	case RequestStatusPending, RequestStatusPlaying, RequestStatusPlayed, RequestStatusRemoved:
		return true
	}
	return false
}
