package prodigyfix

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func searchFixture(now time.Time) []Tutorial {
	return []Tutorial{
		{
			ID:         "t1",
			Title:      "Fix a boot loop on Ubuntu",
			Author:     "Ana",
			Category:   "cat-linux",
			Difficulty: DifficultyAdvanced,
			Tags:       []string{"grub", "boot-repair"},
			Keywords:   []string{"initramfs"},
			CreatedAt:  now.Add(-2 * 24 * time.Hour),
		},
		{
			ID:         "t2",
			Title:      "Partition a disk",
			Author:     "Bruno",
			Category:   "cat-linux",
			Difficulty: DifficultyBeginner,
			Tags:       []string{"gparted"},
			CreatedAt:  now.Add(-20 * 24 * time.Hour),
		},
		{
			ID:          "t3",
			Title:       "Reset BIOS settings",
			Description: "Clear CMOS and restore defaults",
			Author:      "Ana",
			Category:    "cat-hw",
			Difficulty:  DifficultyBeginner,
			Tags:        []string{"bios", "cmos"},
			CreatedAt:   now.Add(-200 * 24 * time.Hour),
		},
	}
}

func idsOf(ts []Tutorial) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = t.ID
	}
	return out
}

func TestSearchIdentityOnEmptyInput(t *testing.T) {
	now := time.Now()
	in := searchFixture(now)

	out := searchAt(now, in, "", Filters{})
	require.Equal(t, idsOf(in), idsOf(out), "empty query with zero filters returns everything, order preserved")

	require.Empty(t, searchAt(now, nil, "anything", Filters{}))
}

func TestSearchFreeText(t *testing.T) {
	now := time.Now()
	in := searchFixture(now)

	require.Equal(t, []string{"t1"}, idsOf(searchAt(now, in, "BOOT LOOP", Filters{})), "case-insensitive title match")
	require.Equal(t, []string{"t1", "t3"}, idsOf(searchAt(now, in, "ana", Filters{})), "author match")
	require.Equal(t, []string{"t3"}, idsOf(searchAt(now, in, "cmos", Filters{})), "description and tag match")
	require.Equal(t, []string{"t1"}, idsOf(searchAt(now, in, "initramfs", Filters{})), "keyword match")
	require.Empty(t, searchAt(now, in, "kubernetes", Filters{}))
}

func TestSearchStructuredFilters(t *testing.T) {
	now := time.Now()
	in := searchFixture(now)

	require.Equal(t, []string{"t1", "t2"}, idsOf(searchAt(now, in, "", Filters{Category: "cat-linux"})))
	require.Equal(t, []string{"t2", "t3"}, idsOf(searchAt(now, in, "", Filters{Difficulty: DifficultyBeginner})))
	require.Equal(t, []string{"t1"}, idsOf(searchAt(now, in, "", Filters{Tags: []string{"grub"}})))

	// Tag matching is substring, not exact.
	require.Equal(t, []string{"t1"}, idsOf(searchAt(now, in, "", Filters{Tags: []string{"boot-rep"}})))
}

func TestSearchTimeRange(t *testing.T) {
	now := time.Now()
	in := searchFixture(now)

	require.Equal(t, []string{"t1"}, idsOf(searchAt(now, in, "", Filters{TimeRange: TimeRangeWeek})))
	require.Equal(t, []string{"t1", "t2"}, idsOf(searchAt(now, in, "", Filters{TimeRange: TimeRangeMonth})))
	require.Equal(t, []string{"t1", "t2", "t3"}, idsOf(searchAt(now, in, "", Filters{TimeRange: TimeRangeYear})))

	// Unrecognized bucket matches everything rather than nothing.
	require.Equal(t, []string{"t1", "t2", "t3"}, idsOf(searchAt(now, in, "", Filters{TimeRange: "fortnight"})))
}

func TestSearchFiltersCompose(t *testing.T) {
	now := time.Now()
	in := searchFixture(now)

	out := searchAt(now, in, "ana", Filters{Category: "cat-linux", Difficulty: DifficultyAdvanced})
	require.Equal(t, []string{"t1"}, idsOf(out))

	// Query matches but the difficulty filter disagrees.
	require.Empty(t, searchAt(now, in, "ana", Filters{Category: "cat-linux", Difficulty: DifficultyBeginner}))
}
