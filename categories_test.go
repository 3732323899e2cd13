package prodigyfix

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDeriveCategoryCounts(t *testing.T) {
	cats := []Category{
		{ID: "a", Name: "Alpha", TutorialCount: 99}, // stale stored count
		{ID: "b", Name: "Beta"},
		{ID: "c", Name: "Gamma"},
	}
	tutorials := []Tutorial{
		{ID: "t1", Category: "a"},
		{ID: "t2", Category: "a"},
		{ID: "t3", Category: "b"},
		{ID: "t4", Category: "unknown"},
		{ID: "t5"}, // uncategorized
	}

	out := deriveCategoryCounts(cats, tutorials)
	require.Equal(t, 2, out[0].TutorialCount, "stored count is ignored, live count wins")
	require.Equal(t, 1, out[1].TutorialCount)
	require.Zero(t, out[2].TutorialCount)

	// Input slices are never mutated.
	require.Equal(t, 99, cats[0].TutorialCount)
}

func TestDeriveCategoryCountsSumsToCategorized(t *testing.T) {
	// The total across categories always equals the number of tutorials
	// whose category exists, whatever the shapes of the inputs.
	for n := 0; n < 20; n++ {
		cats := make([]Category, 5)
		for i := range cats {
			cats[i] = Category{ID: fmt.Sprintf("c%d", i)}
		}
		tutorials := make([]Tutorial, n)
		categorized := 0
		for i := range tutorials {
			if i%3 == 0 {
				tutorials[i] = Tutorial{ID: fmt.Sprintf("t%d", i), Category: "missing"}
				continue
			}
			tutorials[i] = Tutorial{ID: fmt.Sprintf("t%d", i), Category: fmt.Sprintf("c%d", i%5)}
			categorized++
		}

		total := 0
		for _, c := range deriveCategoryCounts(cats, tutorials) {
			total += c.TutorialCount
		}
		require.Equal(t, categorized, total)
	}
}

func TestNormalizeDifficulty(t *testing.T) {
	cases := map[string]Difficulty{
		"beginner":      DifficultyBeginner,
		"Iniciante":     DifficultyBeginner,
		"BÁSICO":        DifficultyBeginner,
		"easy":          DifficultyBeginner,
		"intermediate":  DifficultyIntermediate,
		"Intermediário": DifficultyIntermediate,
		"médio":         DifficultyIntermediate,
		"medium":        DifficultyIntermediate,
		"advanced":      DifficultyAdvanced,
		"Avançado":      DifficultyAdvanced,
		"difícil":       DifficultyAdvanced,
		"expert":        DifficultyAdvanced,
		"  beginner  ":  DifficultyBeginner,
		"":              DifficultyBeginner,
		"ninja":         DifficultyBeginner,
	}
	for label, want := range cases {
		require.Equal(t, want, NormalizeDifficulty(label), "label %q", label)
	}
}
