package types

import "time"

// ------------------------------
// Core Domain Entities
// ------------------------------

// Difficulty is the closed three-value skill level enumeration.
// Raw records carry free-text labels; NormalizeDifficulty maps them here.
type Difficulty string

const (
	DifficultyBeginner     Difficulty = "Beginner"
	DifficultyIntermediate Difficulty = "Intermediate"
	DifficultyAdvanced     Difficulty = "Advanced"
)

// Tutorial represents a single content article with metadata.
// Instances are always produced by normalizing a raw remote record:
// array fields are never nil, timestamps are always set, and
// Difficulty is always one of the three canonical values.
type Tutorial struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	Description     string     `json:"description,omitempty"`
	Content         string     `json:"content,omitempty"`
	Category        string     `json:"category,omitempty"`
	Keywords        []string   `json:"keywords"`
	ImageID         string     `json:"imageId,omitempty"`
	VideoURL        string     `json:"videoUrl,omitempty"`
	Author          string     `json:"author,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
	Views           int64      `json:"views"`
	Difficulty      Difficulty `json:"difficulty"`
	EstimatedMins   int        `json:"estimatedMins"`
	Tags            []string   `json:"tags"`
	Version         string     `json:"version,omitempty"`
	OSCompatibility []string   `json:"osCompatibility"`
}

// Category represents a named grouping of tutorials.
// TutorialCount is derived locally from the current tutorial mirror and
// overrides whatever stale value the remote record carries.
type Category struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description,omitempty"`
	Icon          string `json:"icon,omitempty"`
	TutorialCount int    `json:"tutorialCount"`
	IsFeatured    bool   `json:"isFeatured,omitempty"`
}
