package prodigyfix

import (
	"strings"
	"time"
)

// Time-range buckets accepted by Filters.TimeRange. Any other value (or
// empty) matches everything.
const (
	TimeRangeWeek  = "week"
	TimeRangeMonth = "month"
	TimeRangeYear  = "year"
)

// Filters are the structured predicates of a search. Zero-value fields are
// inactive; all active predicates are ANDed together.
type Filters struct {
	Category   string
	Difficulty Difficulty
	Tags       []string
	TimeRange  string
}

// Search composes free-text and structured filters over the in-memory
// tutorial collection. Pure: no side effects, input order preserved for
// surviving entries. An empty query with zero-value filters is the identity.
func Search(tutorials []Tutorial, query string, f Filters) []Tutorial {
	return searchAt(time.Now(), tutorials, query, f)
}

func searchAt(now time.Time, tutorials []Tutorial, query string, f Filters) []Tutorial {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]Tutorial, 0, len(tutorials))
	for _, t := range tutorials {
		if q != "" && !matchesText(t, q) {
			continue
		}
		if f.Category != "" && t.Category != f.Category {
			continue
		}
		if f.Difficulty != "" && t.Difficulty != f.Difficulty {
			continue
		}
		if len(f.Tags) > 0 && !matchesAnyTag(t.Tags, f.Tags) {
			continue
		}
		if !matchesTimeRange(now, t.CreatedAt, f.TimeRange) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// matchesText is a case-insensitive substring match against title,
// description, author, and every tag and keyword.
func matchesText(t Tutorial, q string) bool {
	if strings.Contains(strings.ToLower(t.Title), q) ||
		strings.Contains(strings.ToLower(t.Description), q) ||
		strings.Contains(strings.ToLower(t.Author), q) {
		return true
	}
	for _, tag := range t.Tags {
		if strings.Contains(strings.ToLower(tag), q) {
			return true
		}
	}
	for _, kw := range t.Keywords {
		if strings.Contains(strings.ToLower(kw), q) {
			return true
		}
	}
	return false
}

// matchesAnyTag matches when any requested tag is a case-insensitive
// substring of any tutorial tag. Deliberately not exact set containment.
func matchesAnyTag(have, want []string) bool {
	for _, w := range want {
		lw := strings.ToLower(w)
		for _, h := range have {
			if strings.Contains(strings.ToLower(h), lw) {
				return true
			}
		}
	}
	return false
}

func matchesTimeRange(now, createdAt time.Time, bucket string) bool {
	var maxDays float64
	switch bucket {
	case TimeRangeWeek:
		maxDays = 7
	case TimeRangeMonth:
		maxDays = 30
	case TimeRangeYear:
		maxDays = 365
	default:
		return true
	}
	return now.Sub(createdAt).Hours()/24 <= maxDays
}
