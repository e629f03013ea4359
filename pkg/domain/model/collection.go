package model

import (
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/memvault/memvault/pkg/domain/types"
)

// Collection groups memes under a user-chosen name
type Collection struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	MemeIDs    []types.MemeID `json:"memeIds"`
	CreatedAt  time.Time      `json:"createdAt"`
	ModifiedAt time.Time      `json:"modifiedAt"`
}

// NewCollection creates an empty collection with a fresh ID
func NewCollection(name string) *Collection {
	now := time.Now().UTC()
	return &Collection{
		ID:         uuid.New().String(),
		Name:       name,
		MemeIDs:    []types.MemeID{},
		CreatedAt:  now,
		ModifiedAt: now,
	}
}

// Validate checks if the collection is valid
func (c *Collection) Validate() error {
	if c.ID == "" {
		return goerr.New("collection ID is required")
	}
	if c.Name == "" {
		return goerr.New("collection name is required", goerr.V("id", c.ID))
	}
	return nil
}

// Add appends a meme to the collection if not already present and
// returns true when the collection changed.
func (c *Collection) Add(id types.MemeID) bool {
	if slices.Contains(c.MemeIDs, id) {
		return false
	}
	c.MemeIDs = append(c.MemeIDs, id)
	c.ModifiedAt = time.Now().UTC()
	return true
}

// Remove drops a meme from the collection and returns true when the
// collection changed.
func (c *Collection) Remove(id types.MemeID) bool {
	idx := slices.Index(c.MemeIDs, id)
	if idx < 0 {
		return false
	}
	c.MemeIDs = slices.Delete(c.MemeIDs, idx, idx+1)
	c.ModifiedAt = time.Now().UTC()
	return true
}

// Clone returns a deep copy of the collection
func (c *Collection) Clone() *Collection {
	copied := *c
	copied.MemeIDs = make([]types.MemeID, len(c.MemeIDs))
	copy(copied.MemeIDs, c.MemeIDs)
	return &copied
}
