package types

import (
	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
)

// MemeID is a UUID-based identifier for a cataloged image. It never
// changes after the record is created.
type MemeID string

// NewMemeID generates a new UUID v4 MemeID
func NewMemeID() MemeID {
	return MemeID(uuid.New().String())
}

// String returns the string representation of the meme ID
func (x MemeID) String() string {
	return string(x)
}

// Validate checks if the meme ID is non-empty
func (x MemeID) Validate() error {
	if x == "" {
		return goerr.New("meme ID is empty")
	}
	return nil
}
