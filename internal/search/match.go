package search

import (
	"strings"

	"github.com/ahlgren/medley/internal/models"
)

// itemText is the lowercased searchable text of an item: title and
// artist, space-joined.
func itemText(item models.MediaItem) string {
	return strings.ToLower(item.Title + " " + item.Artist)
}

// matches reports whether item matches the query text. Any query term
// appearing as a substring of the item text is a direct match. Semantic
// keyword expansion runs only when enabled and only after the direct
// match fails. There is no fuzzy matching, edit distance, or stemming.
func matches(item models.MediaItem, queryText string, semantic bool) bool {
	text := itemText(item)
	terms := strings.Fields(strings.ToLower(queryText))

	for _, term := range terms {
		if strings.Contains(text, term) {
			return true
		}
	}
	if !semantic {
		return false
	}
	for _, term := range terms {
		if semanticTermMatch(term, text) {
			return true
		}
	}
	return false
}

// semanticTermMatch expands term through the taxonomy. A term triggers a
// category when it exactly equals one of the category's keywords or is a
// substring of the category name. The first triggered category decides
// the outcome: the term matches only if one of that category's keywords
// appears in text, and later categories are not consulted. This mirrors
// the reference scan-order semantics, quirks included (a short term like
// "class" triggers "classical").
func semanticTermMatch(term, text string) bool {
	for _, cat := range Taxonomy {
		if cat.hasKeyword(term) || strings.Contains(cat.Name, term) {
			return cat.anyKeywordIn(text)
		}
	}
	return false
}
