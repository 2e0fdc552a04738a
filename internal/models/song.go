package models

import "time"

const (
	// CategoryWestern contains the western setlist including the instrumental and singing sub-setlists
	CategoryWestern = "Western"
	// CategoryBollywood contains the Hindi film songs
	CategoryBollywood = "Bollywood"
	// CategoryRegional contains the regional-language setlists (Kannada, Malayalam, Tamil)
	CategoryRegional = "Regional"
	// CategoryKids contains the children's setlist
	CategoryKids = "Kids"
	// CategoryChristmas contains the Christmas setlist
	CategoryChristmas = "Christmas"
)

// Song holds one entry of the performer's fixed catalog
// The catalog is filled by the setlist importer and is read-only for the live request system
type Song struct {
	// Internal identifier for the song - assigned by the importer
	ID string `db:"id" json:"id"`
	// Title of the song
	Title string `db:"title" json:"title"`
	// Artist performing the song (or composer, for the older material)
	Artist string `db:"artist" json:"artist"`
	// Release year, if known - zero means unknown
	Year int `db:"year" json:"year,omitempty"`
	// The setlist category - see the Category* constants for possible values
	Category string `db:"category" json:"category"`
	// Optional sub-setlist, e.g. "Instrumental" or a regional language name
	Subcategory string `db:"subcategory" json:"subcategory,omitempty"`
	// The position of the song inside the printed setlist - used as the catalog display order
	Position uint `db:"position" json:"-"`
	// The number of times this song has been requested globally
	NumRequested uint `db:"numRequested" json:"numRequested"`
	// Timestamp of the creation of this catalog record
	CreatedAt time.Time `db:"createdAt" json:"createdAt"`
	// Timestamp of the last change of this catalog record
	UpdatedAt time.Time `db:"updatedAt" json:"updatedAt"`
}

// ValidCategory checks if the given value is one of the known setlist categories
func ValidCategory(category string) bool {
	switch category {
	case CategoryWestern, CategoryBollywood, CategoryRegional, CategoryKids, CategoryChristmas:
		return true
	}
	return false
}
