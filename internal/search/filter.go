package search

import (
	"time"

	"github.com/ahlgren/medley/internal/models"
)

// filterCorpus applies the structural filters (media kind, recency
// window) and preserves input order. Absent filters pass everything
// through.
func filterCorpus(corpus []models.MediaItem, q Query, now time.Time) []models.MediaItem {
	kind := q.MediaKind
	if kind == MediaAll {
		kind = ""
	}

	// Day-based windows use fixed offsets; month and year subtraction is
	// calendar-aware, matching the reference behavior.
	var cutoff time.Time
	switch q.DateRange {
	case DateRangeToday:
		cutoff = now.AddDate(0, 0, -1)
	case DateRangeWeek:
		cutoff = now.AddDate(0, 0, -7)
	case DateRangeMonth:
		cutoff = now.AddDate(0, -1, 0)
	case DateRangeYear:
		cutoff = now.AddDate(-1, 0, 0)
	}

	out := make([]models.MediaItem, 0, len(corpus))
	for _, item := range corpus {
		if kind != "" && string(item.Kind) != kind {
			continue
		}
		if !cutoff.IsZero() && item.CreatedAt.Before(cutoff) {
			continue
		}
		out = append(out, item)
	}
	return out
}
