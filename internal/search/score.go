package search

import (
	"strings"
	"time"

	"github.com/ahlgren/medley/internal/models"
)

// Relevance weights, applied additively. Exact title equality also
// satisfies the containment check, so an exact match earns both bonuses.
const (
	weightTitleExact     = 100
	weightTitleContains  = 50
	weightArtistContains = 40
	weightTermInTitle    = 20
	weightTermInArtist   = 15
	weightTitlePrefix    = 10
	weightArtistPrefix   = 8
	weightSemanticHit    = 25
	weightCreatedInWeek  = 5
	weightCreatedInMonth = 3
)

// score computes the relevance of item for the query text. It is a pure
// function of the item, the query, and now; there is no upper bound.
func score(item models.MediaItem, queryText string, now time.Time) int {
	query := strings.ToLower(queryText)
	title := strings.ToLower(item.Title)
	artist := strings.ToLower(item.Artist)

	s := 0
	if title == query {
		s += weightTitleExact
	}
	if strings.Contains(title, query) {
		s += weightTitleContains
	}
	if strings.Contains(artist, query) {
		s += weightArtistContains
	}

	// Per-term bonuses; the four checks are independent and can all fire
	// for the same term.
	for _, term := range strings.Fields(query) {
		if strings.Contains(title, term) {
			s += weightTermInTitle
		}
		if strings.Contains(artist, term) {
			s += weightTermInArtist
		}
		if strings.HasPrefix(title, term) {
			s += weightTitlePrefix
		}
		if strings.HasPrefix(artist, term) {
			s += weightArtistPrefix
		}
	}

	// Semantic bonus, additive across every qualifying category.
	for _, cat := range Taxonomy {
		if !strings.Contains(query, cat.Name) && !cat.anyKeywordIn(query) {
			continue
		}
		if cat.anyKeywordIn(title) || cat.anyKeywordIn(artist) {
			s += weightSemanticHit
		}
	}

	switch d := daysSince(item.CreatedAt, now); {
	case d <= 7:
		s += weightCreatedInWeek
	case d <= 30:
		s += weightCreatedInMonth
	}

	return s
}
