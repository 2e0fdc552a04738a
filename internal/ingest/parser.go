// Package ingest fills the song catalog from the performer's setlist document.
// The setlist is a plain-text export of the printed programme: category headlines,
// alphabetical section letters and song lines of the form "Title - Artist (Year)",
// interspersed with decorative text that has to be skipped.
package ingest

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/jvarghese/gigwish/internal/models"
	"golang.org/x/text/unicode/norm"
)

// The languages of the regional setlists - each becomes a subcategory of "Regional"
var regionalLanguages = map[string]bool{
	"Kannada":   true,
	"Malayalam": true,
	"Tamil":     true,
}

// Sub-setlist headlines inside a category
var subcategoryHeaders = map[string]bool{
	"Instrumental":    true,
	"singing":         true,
	"Guitar Solos":    true,
	"Harmonica Solos": true,
}

var (
	yearSuffix  = regexp.MustCompile(`\((\d{4})\)$`)
	parenSuffix = regexp.MustCompile(`\s*\([^)]*\)$`)
)

// ParseSetlist reads the setlist text and returns the catalog entries found in it.
// Songs receive sequential IDs ("song-1", "song-2", ...) and their position in the
// document, so the catalog keeps the printed setlist order.
func ParseSetlist(r io.Reader) ([]models.Song, error) {
	var songs []models.Song
	var category, subcategory string
	nextID := 1

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(norm.NFC.String(scanner.Text()))
		if line == "" {
			continue
		}
		if cat, sub, ok := matchHeader(line); ok {
			category = cat
			subcategory = sub
			continue
		}
		if subcategoryHeaders[line] {
			subcategory = line
			continue
		}
		if line == "Setlist" {
			continue
		}
		// Single letters mark the alphabetical sections of the document
		if len(line) == 1 {
			continue
		}
		if category == "" || !strings.Contains(line, " - ") {
			// Decorative text, a continuation of a wrapped line or a song without
			// artist information - none of these make a catalog entry
			continue
		}
		song, ok := parseSongLine(line, category, subcategory, nextID)
		if !ok {
			continue
		}
		songs = append(songs, song)
		nextID++
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return songs, nil
}

// matchHeader checks whether the line starts a new setlist category.
// A trailing "Setlist" is part of some headlines ("Tamil Setlist", "Kids Setlist")
// and ignored for the match. The regional-language setlists all fold into the
// "Regional" category with the language as subcategory.
func matchHeader(line string) (category string, subcategory string, ok bool) {
	name := strings.TrimSpace(strings.TrimSuffix(line, "Setlist"))
	if regionalLanguages[name] {
		return models.CategoryRegional, name, true
	}
	if models.ValidCategory(name) {
		return name, "", true
	}
	// "Western singing" combines the category and the sub-setlist in one headline
	if parts := strings.Fields(name); len(parts) == 2 &&
		models.ValidCategory(parts[0]) && subcategoryHeaders[parts[1]] {
		return parts[0], parts[1], true
	}
	return "", "", false
}

// parseSongLine parses one "Title - Artist (Year)" line into a catalog entry
func parseSongLine(line string, category string, subcategory string, id int) (models.Song, bool) {
	// Strip leading bullet characters
	line = strings.TrimLeft(line, "•• \t")

	var year int
	if m := yearSuffix.FindStringSubmatch(line); m != nil {
		year, _ = strconv.Atoi(m[1])
		line = parenSuffix.ReplaceAllString(line, "")
	}

	parts := strings.SplitN(line, " - ", 2)
	if len(parts) < 2 {
		return models.Song{}, false
	}
	title := strings.TrimSpace(parts[0])
	artist := strings.TrimSpace(parts[1])
	if title == "" || artist == "" {
		return models.Song{}, false
	}

	return models.Song{
		ID:          fmt.Sprintf("song-%d", id),
		Title:       title,
		Artist:      artist,
		Year:        year,
		Category:    category,
		Subcategory: subcategory,
		Position:    uint(id),
	}, true
}
