package prodigyfix

// deriveCategoryCounts returns a copy of cats with TutorialCount replaced by
// the live count of tutorials referencing each category. It is a pure
// derivation re-run from scratch whenever either input changes; counts are
// never patched incrementally, so they cannot drift.
func deriveCategoryCounts(cats []Category, tutorials []Tutorial) []Category {
	counts := make(map[string]int, len(cats))
	for _, t := range tutorials {
		if t.Category != "" {
			counts[t.Category]++
		}
	}
	out := make([]Category, len(cats))
	for i, c := range cats {
		c.TutorialCount = counts[c.ID]
		out[i] = c
	}
	return out
}
