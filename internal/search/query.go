package search

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Mode selects the matching strategy.
type Mode string

// Search modes. Hybrid and semantic both enable keyword expansion;
// keyword restricts matching to direct substrings.
const (
	ModeKeyword  Mode = "keyword"
	ModeSemantic Mode = "semantic"
	ModeHybrid   Mode = "hybrid"
)

// DateRange restricts candidates to a recency window.
type DateRange string

// Date ranges.
const (
	DateRangeToday DateRange = "today"
	DateRangeWeek  DateRange = "week"
	DateRangeMonth DateRange = "month"
	DateRangeYear  DateRange = "year"
)

// Media kind filter values. Empty and MediaAll are pass-through.
const (
	MediaAll   = "all"
	MediaAudio = "audio"
	MediaVideo = "video"
)

// Query is one search request. Immutable once constructed.
type Query struct {
	Text      string
	Mode      Mode      // empty defaults to hybrid
	MediaKind string    // "audio", "video", "all" or empty
	DateRange DateRange // empty means no recency filter
}

// Validate rejects unknown mode and filter values with a descriptive
// error so malformed client requests fail fast instead of being silently
// coerced. Empty values are accepted: an unset mode deliberately defaults
// to hybrid, matching the reference behavior.
func (q Query) Validate() error {
	return validation.ValidateStruct(&q,
		validation.Field(&q.Mode, validation.In(Mode(""), ModeKeyword, ModeSemantic, ModeHybrid)),
		validation.Field(&q.MediaKind, validation.In("", MediaAll, MediaAudio, MediaVideo)),
		validation.Field(&q.DateRange, validation.In(DateRange(""), DateRangeToday, DateRangeWeek, DateRangeMonth, DateRangeYear)),
	)
}

// normalized returns a copy with the unset mode defaulted to hybrid.
func (q Query) normalized() Query {
	if q.Mode == "" {
		q.Mode = ModeHybrid
	}
	return q
}
