package types

import "fmt"

// ValidateIDPresent ensures an identifier argument is non-empty.
func ValidateIDPresent(id, field string) error {
	if id == "" {
		return fmt.Errorf("%s is required", field)
	}
	return nil
}

// ValidateCreateTutorial checks caller-supplied field constraints.
func ValidateCreateTutorial(req CreateTutorialRequest) error {
	if req.EstimatedMins < 0 {
		return fmt.Errorf("estimatedMins must be >= 0, got %d", req.EstimatedMins)
	}
	return nil
}

// ValidateUpdateTutorial checks the fields present in a partial update.
func ValidateUpdateTutorial(req UpdateTutorialRequest) error {
	if req.EstimatedMins != nil && *req.EstimatedMins < 0 {
		return fmt.Errorf("estimatedMins must be >= 0, got %d", *req.EstimatedMins)
	}
	return nil
}
