package utils

import "github.com/google/uuid"

// NewID returns a random UUID string used for connections and stored records.
func NewID() string {
	return uuid.NewString()
}
