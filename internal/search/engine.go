// Package search implements the media relevance search engine: a pure
// ranking pipeline (filter, match, score, tag) over an in-memory corpus
// snapshot. The engine performs no I/O and holds no mutable state, so a
// single instance serves concurrent requests without locking.
package search

import (
	"sort"
	"strings"
	"time"

	"github.com/ahlgren/medley/internal/models"
)

const (
	maxResults = 50
	maxTags    = 6
)

// Result is one scored search hit. Results live only for the duration of
// the request that produced them.
type Result struct {
	Item      models.MediaItem
	Relevance int
	Tags      []string
}

// Engine ranks media items against free-text queries.
type Engine struct {
	now func() time.Time
}

// New creates an engine using the wall clock for recency bonuses.
func New() *Engine {
	return &Engine{now: time.Now}
}

// NewWithClock creates an engine with an injected clock. Recency scoring
// and tagging depend on the current time, so tests pin it.
func NewWithClock(now func() time.Time) *Engine {
	return &Engine{now: now}
}

// Search runs the full pipeline over a corpus snapshot: filter by kind
// and date range, match by query text, score and tag each hit, then sort
// by descending relevance (stable, so corpus order breaks ties) and cap
// the result count.
//
// A query whose text is empty or all whitespace returns no results. This
// is a defined short-circuit, not a match-everything default.
func (e *Engine) Search(corpus []models.MediaItem, q Query) []Result {
	if strings.TrimSpace(q.Text) == "" {
		return nil
	}

	q = q.normalized()
	now := e.now()
	semantic := q.Mode == ModeSemantic || q.Mode == ModeHybrid

	var results []Result
	for _, item := range filterCorpus(corpus, q, now) {
		if !matches(item, q.Text, semantic) {
			continue
		}
		results = append(results, Result{
			Item:      item,
			Relevance: score(item, q.Text, now),
			Tags:      smartTags(item, q.Text, now),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Relevance > results[j].Relevance
	})
	if len(results) > maxResults {
		results = results[:maxResults]
	}
	return results
}

// daysSince is the whole number of elapsed days between t and now,
// computed by integer division of elapsed time rather than calendar days.
func daysSince(t, now time.Time) int {
	return int(now.Sub(t) / (24 * time.Hour))
}
