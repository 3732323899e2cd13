package types

// ------------------------------
// Request Types
// ------------------------------

// CreateTutorialRequest holds caller-supplied fields for a new tutorial.
// The store assigns id, timestamps, and the initial view count.
type CreateTutorialRequest struct {
	Title           string   `json:"title,omitempty"`
	Description     string   `json:"description,omitempty"`
	Content         string   `json:"content,omitempty"`
	Category        string   `json:"category,omitempty"`
	Keywords        []string `json:"keywords,omitempty"`
	ImageID         string   `json:"imageId,omitempty"`
	VideoURL        string   `json:"videoUrl,omitempty"`
	Author          string   `json:"author,omitempty"`
	Difficulty      string   `json:"difficulty,omitempty"`
	EstimatedMins   int      `json:"estimatedMins,omitempty"`
	Tags            []string `json:"tags,omitempty"`
	Version         string   `json:"version,omitempty"`
	OSCompatibility []string `json:"osCompatibility,omitempty"`
}

// UpdateTutorialRequest is a partial update; nil fields are left untouched.
// The store stamps updatedAt and normalizes Difficulty when present.
type UpdateTutorialRequest struct {
	Title           *string   `json:"title,omitempty"`
	Description     *string   `json:"description,omitempty"`
	Content         *string   `json:"content,omitempty"`
	Category        *string   `json:"category,omitempty"`
	Keywords        *[]string `json:"keywords,omitempty"`
	ImageID         *string   `json:"imageId,omitempty"`
	VideoURL        *string   `json:"videoUrl,omitempty"`
	Author          *string   `json:"author,omitempty"`
	Difficulty      *string   `json:"difficulty,omitempty"`
	EstimatedMins   *int      `json:"estimatedMins,omitempty"`
	Tags            *[]string `json:"tags,omitempty"`
	Version         *string   `json:"version,omitempty"`
	OSCompatibility *[]string `json:"osCompatibility,omitempty"`
}
