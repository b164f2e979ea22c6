package search

import (
	"strings"
	"time"

	"github.com/ahlgren/medley/internal/models"
)

// stopWords are excluded from content tags.
var stopWords = map[string]bool{
	"the": true, "and": true, "for": true, "with": true, "from": true,
}

// smartTags derives descriptive tags for a matched item: up to three
// significant words from the item text, taxonomy category names whose
// keywords appear in the item text or the query, the media kind,
// and a recency tag. The result is deduplicated preserving first
// occurrence and capped at six entries.
func smartTags(item models.MediaItem, queryText string, now time.Time) []string {
	query := strings.ToLower(queryText)
	text := itemText(item)

	var tags []string

	// Content tags: first three words longer than three characters that
	// are not stop words.
	content := 0
	for _, word := range strings.Fields(text) {
		if len(word) <= 3 || stopWords[word] {
			continue
		}
		tags = append(tags, word)
		content++
		if content == 3 {
			break
		}
	}

	// Category tags: any keyword present in the item text or the query.
	for _, cat := range Taxonomy {
		if cat.anyKeywordIn(text) || cat.anyKeywordIn(query) {
			tags = append(tags, cat.Name)
		}
	}

	tags = append(tags, string(item.Kind))

	switch d := daysSince(item.CreatedAt, now); {
	case d <= 1:
		tags = append(tags, "new")
	case d <= 7:
		tags = append(tags, "recent")
	case d <= 30:
		tags = append(tags, "this month")
	}

	return dedupe(tags, maxTags)
}

// dedupe removes duplicates preserving first occurrence and caps the
// result length.
func dedupe(tags []string, limit int) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, limit)
	for _, tag := range tags {
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
		if len(out) == limit {
			break
		}
	}
	return out
}
