package search

import "strings"

// Category pairs a semantic category name with its associated keywords.
type Category struct {
	Name     string
	Keywords []string
}

// hasKeyword reports whether term exactly equals one of the category keywords.
func (c Category) hasKeyword(term string) bool {
	for _, kw := range c.Keywords {
		if kw == term {
			return true
		}
	}
	return false
}

// anyKeywordIn reports whether any category keyword is a substring of text.
func (c Category) anyKeywordIn(text string) bool {
	for _, kw := range c.Keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// Taxonomy is the hand-authored keyword-expansion table used for semantic
// matching, scoring, and tagging. It is initialized once and never mutated,
// so concurrent reads need no synchronization. Declaration order matters:
// per-term semantic matching stops at the first category a term triggers.
var Taxonomy = []Category{
	// Mood
	{"relaxing", []string{"calm", "peaceful", "ambient", "chill", "meditation", "zen", "soothing"}},
	{"energetic", []string{"upbeat", "energetic", "pump", "workout", "dance", "high energy", "motivational"}},
	{"sad", []string{"melancholy", "emotional", "heartbreak", "somber", "dramatic"}},
	{"happy", []string{"joyful", "cheerful", "uplifting", "positive", "celebration", "party"}},

	// Genre
	{"electronic", []string{"edm", "techno", "house", "dubstep", "trance", "synth"}},
	{"rock", []string{"guitar", "drums", "metal", "alternative", "indie"}},
	{"classical", []string{"orchestra", "piano", "violin", "symphony", "chamber"}},
	{"jazz", []string{"saxophone", "blues", "improvisation", "swing"}},

	// Activity
	{"study", []string{"focus", "concentration", "background", "instrumental", "ambient"}},
	{"workout", []string{"fitness", "gym", "training", "cardio", "high energy", "motivational"}},
	{"sleep", []string{"lullaby", "nature sounds", "white noise", "peaceful"}},
	{"party", []string{"dance", "celebration", "upbeat", "crowd pleaser"}},

	// Time of day
	{"morning", []string{"wake up", "energizing", "sunrise", "fresh start"}},
	{"evening", []string{"sunset", "relaxing", "wind down", "peaceful"}},
	{"night", []string{"nighttime", "late night", "chill", "ambient"}},

	// Content type
	{"instrumental", []string{"no vocals", "background music", "karaoke", "soundtrack"}},
	{"vocal", []string{"singing", "lyrics", "voice", "chorus"}},

	// Quality and duration
	{"short", []string{"brief", "quick", "intro", "snippet"}},
	{"long", []string{"extended", "full length", "complete", "marathon"}},
	{"high quality", []string{"hd", "4k", "premium", "studio", "professional"}},
}
