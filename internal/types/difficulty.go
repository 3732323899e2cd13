package types

import "strings"

// difficultySynonyms maps lowercased free-text labels to canonical values.
// Covers English and Portuguese spellings, with and without accents, since
// remote records were authored in both.
var difficultySynonyms = map[string]Difficulty{
	"beginner":      DifficultyBeginner,
	"iniciante":     DifficultyBeginner,
	"basico":        DifficultyBeginner,
	"básico":        DifficultyBeginner,
	"facil":         DifficultyBeginner,
	"fácil":         DifficultyBeginner,
	"easy":          DifficultyBeginner,
	"intermediate":  DifficultyIntermediate,
	"intermediario": DifficultyIntermediate,
	"intermediário": DifficultyIntermediate,
	"medio":         DifficultyIntermediate,
	"médio":         DifficultyIntermediate,
	"medium":        DifficultyIntermediate,
	"advanced":      DifficultyAdvanced,
	"avancado":      DifficultyAdvanced,
	"avançado":      DifficultyAdvanced,
	"dificil":       DifficultyAdvanced,
	"difícil":       DifficultyAdvanced,
	"hard":          DifficultyAdvanced,
	"expert":        DifficultyAdvanced,
}

// NormalizeDifficulty maps a free-text difficulty label to one of the three
// canonical values. It is total: unrecognized input (including empty) falls
// back to DifficultyBeginner. It sits on the hot path of every record
// normalization and must never fail.
func NormalizeDifficulty(label string) Difficulty {
	key := strings.ToLower(strings.TrimSpace(label))
	if d, ok := difficultySynonyms[key]; ok {
		return d
	}
	return DifficultyBeginner
}
