package models

import "time"

// A Poll is a question put to the audience with a fixed set of answer options
// Once closed, a poll becomes immutable history
type Poll struct {
	// Internal ID of the poll
	ID string `json:"id"`
	// The question shown to the audience
	Question string `json:"question"`
	// The answer options in display order
	Options []string `json:"options"`
	// Vote counts per option - the keys are fixed to the entries of Options
	Votes map[string]uint `json:"votes"`
	// Is this poll still accepting votes?
	IsActive bool `json:"isActive"`
	// Creation timestamp of the poll
	CreatedAt time.Time `json:"createdAt"`
	// The total number of votes across all options
	TotalVotes uint `json:"totalVotes"`
}

// HasOption checks if the given option is one of the poll's seeded answer options
func (p *Poll) HasOption(option string) bool {
	_, ok := p.Votes[option]
	return ok
}
