package model

import (
	"slices"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/memvault/memvault/pkg/domain/types"
)

// DefaultMaxTags is the bound on the number of tags a meme may carry
// unless overridden by configuration.
const DefaultMaxTags = 6

// Meme represents one cataloged image with its metadata and tags.
type Meme struct {
	ID         types.MemeID     `json:"id"`
	Location   string           `json:"location"` // opaque local storage locator
	Title      string           `json:"title,omitempty"`
	Tags       []string         `json:"tags"`
	CreatedAt  time.Time        `json:"createdAt"`
	ModifiedAt time.Time        `json:"modifiedAt"`
	Size       int64            `json:"size"`
	Width      int              `json:"width"`  // 0 until computed
	Height     int              `json:"height"` // 0 until computed
	Favorite   bool             `json:"favorite"`
	// ContentHash is derived from the decoded pixel content, so it is
	// stable for the same image regardless of compression pass. Computed
	// lazily; empty until first needed.
	ContentHash string           `json:"contentHash,omitempty"`
	RemoteURI   string           `json:"remoteUri,omitempty"`
	SyncStatus  types.SyncStatus `json:"syncStatus,omitempty"`
}

// NewMeme creates a meme record with a fresh ID and timestamps
func NewMeme(location string, size int64) *Meme {
	now := time.Now().UTC()
	return &Meme{
		ID:         types.NewMemeID(),
		Location:   location,
		Tags:       []string{},
		CreatedAt:  now,
		ModifiedAt: now,
		Size:       size,
	}
}

// Validate checks the invariants of the meme record
func (m *Meme) Validate() error {
	if err := m.ID.Validate(); err != nil {
		return goerr.Wrap(err, "invalid meme ID")
	}
	if m.Location == "" {
		return goerr.New("meme location is required", goerr.V("id", m.ID))
	}
	if !m.SyncStatus.IsValid() {
		return goerr.New("invalid sync status", goerr.V("id", m.ID), goerr.V("status", m.SyncStatus))
	}
	return nil
}

// Touch bumps the modification timestamp
func (m *Meme) Touch() {
	m.ModifiedAt = time.Now().UTC()
}

// SetTags replaces the tag set, deduplicating while keeping the first
// occurrence of each tag, and bumps ModifiedAt.
func (m *Meme) SetTags(tags []string) {
	deduped := make([]string, 0, len(tags))
	for _, tag := range tags {
		if tag == "" || slices.Contains(deduped, tag) {
			continue
		}
		deduped = append(deduped, tag)
	}
	m.Tags = deduped
	m.Touch()
}

// HasTag reports whether the meme carries the given tag
func (m *Meme) HasTag(tag string) bool {
	return slices.Contains(m.Tags, tag)
}

// Clone returns a deep copy of the meme
func (m *Meme) Clone() *Meme {
	copied := *m
	copied.Tags = make([]string, len(m.Tags))
	copy(copied.Tags, m.Tags)
	return &copied
}
