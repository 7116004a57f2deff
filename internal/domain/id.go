package domain

import "github.com/google/uuid"

// generateID creates a new time-ordered unique identifier.
func generateID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}
