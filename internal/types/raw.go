package types

import (
	"encoding/json"
	"time"
)

// ------------------------------
// Raw Remote Records
// ------------------------------

// RawTutorial mirrors a tutorial document as stored remotely. Every field is
// optional: old records predate several schema additions and the remote
// store does not enforce shape.
type RawTutorial struct {
	Title           string     `json:"title,omitempty"`
	Description     string     `json:"description,omitempty"`
	Content         string     `json:"content,omitempty"`
	Category        string     `json:"category,omitempty"`
	Keywords        []string   `json:"keywords,omitempty"`
	ImageID         string     `json:"imageId,omitempty"`
	VideoURL        string     `json:"videoUrl,omitempty"`
	Author          string     `json:"author,omitempty"`
	CreatedAt       *time.Time `json:"createdAt,omitempty"`
	UpdatedAt       *time.Time `json:"updatedAt,omitempty"`
	Views           *int64     `json:"views,omitempty"`
	Difficulty      string     `json:"difficulty,omitempty"`
	EstimatedMins   int        `json:"estimatedMins,omitempty"`
	Tags            []string   `json:"tags,omitempty"`
	Version         string     `json:"version,omitempty"`
	OSCompatibility []string   `json:"osCompatibility,omitempty"`
}

// RawCategory mirrors a category document as stored remotely. TutorialCount
// is the possibly-stale remote value; the store replaces it with the live
// count on every derivation.
type RawCategory struct {
	Name          string `json:"name,omitempty"`
	Description   string `json:"description,omitempty"`
	Icon          string `json:"icon,omitempty"`
	TutorialCount int    `json:"tutorialCount,omitempty"`
	IsFeatured    bool   `json:"isFeatured,omitempty"`
}

// NormalizeTutorial converts a raw remote record into a Tutorial, filling
// defaults so downstream code never sees nil slices, zero timestamps, or an
// unrecognized difficulty. now supplies the fallback instant for missing
// timestamps.
func NormalizeTutorial(id string, raw RawTutorial, now time.Time) Tutorial {
	t := Tutorial{
		ID:              id,
		Title:           raw.Title,
		Description:     raw.Description,
		Content:         raw.Content,
		Category:        raw.Category,
		Keywords:        raw.Keywords,
		ImageID:         raw.ImageID,
		VideoURL:        raw.VideoURL,
		Author:          raw.Author,
		Difficulty:      NormalizeDifficulty(raw.Difficulty),
		EstimatedMins:   raw.EstimatedMins,
		Tags:            raw.Tags,
		Version:         raw.Version,
		OSCompatibility: raw.OSCompatibility,
	}
	if t.Title == "" {
		t.Title = "Untitled"
	}
	if t.Keywords == nil {
		t.Keywords = []string{}
	}
	if t.Tags == nil {
		t.Tags = []string{}
	}
	if t.OSCompatibility == nil {
		t.OSCompatibility = []string{}
	}
	if t.EstimatedMins < 0 {
		t.EstimatedMins = 0
	}
	if raw.CreatedAt != nil {
		t.CreatedAt = *raw.CreatedAt
	} else {
		t.CreatedAt = now
	}
	if raw.UpdatedAt != nil {
		t.UpdatedAt = *raw.UpdatedAt
	} else {
		t.UpdatedAt = now
	}
	if raw.Views != nil && *raw.Views > 0 {
		t.Views = *raw.Views
	}
	return t
}

// DecodeTutorial unmarshals a raw tutorial document and normalizes it.
// A malformed payload yields a fully defaulted Tutorial rather than an
// error; one broken record must not poison a snapshot rebuild.
func DecodeTutorial(id string, data json.RawMessage, now time.Time) Tutorial {
	var raw RawTutorial
	_ = json.Unmarshal(data, &raw)
	return NormalizeTutorial(id, raw, now)
}

// DecodeCategory unmarshals a raw category document.
func DecodeCategory(id string, data json.RawMessage) Category {
	var raw RawCategory
	_ = json.Unmarshal(data, &raw)
	return Category{
		ID:            id,
		Name:          raw.Name,
		Description:   raw.Description,
		Icon:          raw.Icon,
		TutorialCount: raw.TutorialCount,
		IsFeatured:    raw.IsFeatured,
	}
}
