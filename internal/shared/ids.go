package shared

import "github.com/google/uuid"

// NewID returns prefix followed by a random UUID, for example
// "tr_3f2b8c1e-5a7d-4e0b-9c61-1f2a3b4c5d6e".
func NewID(prefix string) string {
	return prefix + uuid.NewString()
}
