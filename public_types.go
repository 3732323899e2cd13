package prodigyfix

import "github.com/felipe-ssantos/prodigyfix/internal/types"

// Public type aliases so SDK consumers can import only this package.
type (
	// Domain entities
	Tutorial   = types.Tutorial
	Category   = types.Category
	Difficulty = types.Difficulty

	// Requests
	CreateTutorialRequest = types.CreateTutorialRequest
	UpdateTutorialRequest = types.UpdateTutorialRequest
)

// Canonical difficulty values.
const (
	DifficultyBeginner     = types.DifficultyBeginner
	DifficultyIntermediate = types.DifficultyIntermediate
	DifficultyAdvanced     = types.DifficultyAdvanced
)

// NormalizeDifficulty maps a free-text difficulty label to one of the three
// canonical values. Total: unrecognized input falls back to
// DifficultyBeginner.
func NormalizeDifficulty(label string) Difficulty {
	return types.NormalizeDifficulty(label)
}
