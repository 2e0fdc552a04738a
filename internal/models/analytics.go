package models

// EngagementStats summarizes the audience activity of the evening
type EngagementStats struct {
	// Total poll votes cast across all polls
	TotalVotes uint `json:"totalVotes"`
	// Total claps given, including claps not tied to a specific request
	TotalClaps uint `json:"totalClaps"`
	// Number of distinct devices that have interacted with the system
	ActiveUsers uint `json:"activeUsers"`
}

// Analytics holds the derived summaries over the live state. It is recomputed
// wholesale after every mutation and never patched incrementally.
type Analytics struct {
	// Request counts keyed by "<title> - <artist>"
	MostRequested map[string]uint `json:"mostRequested"`
	// Request counts keyed by setlist category
	CategoryStats map[string]uint `json:"categoryStats"`
	// Audience engagement totals
	EngagementStats EngagementStats `json:"engagementStats"`
}

// EmptyAnalytics returns an analytics record with all maps initialized and all counters zero
func EmptyAnalytics() Analytics {
	return Analytics{
		MostRequested: map[string]uint{},
		CategoryStats: map[string]uint{},
	}
}
