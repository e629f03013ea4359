package model

import (
	"slices"
	"unicode/utf8"

	"github.com/m-mizutani/goerr/v2"
	"github.com/memvault/memvault/pkg/domain/types"
)

// DefaultMaxTagRunes bounds the rendered length of a generated tag.
// Multi-byte characters count as one unit each.
const DefaultMaxTagRunes = 5

// TagMapping maps a set of alias strings to one canonical display form.
// A given alias belongs to the first mapping that registered it; mapping
// order is stable (load order), so fuzzy-match ties resolve to the
// first-registered mapping.
type TagMapping struct {
	Standard  string   `json:"standard" toml:"standard"`
	Aliases   []string `json:"aliases" toml:"aliases"`
	Category  string   `json:"category,omitempty" toml:"category"`
	Frequency int64    `json:"frequency,omitempty" toml:"-"`
}

// Validate checks if the tag mapping is valid
func (m *TagMapping) Validate() error {
	if m.Standard == "" {
		return goerr.New("standard tag is required")
	}
	return nil
}

// HasAlias reports whether the mapping already contains the alias
func (m *TagMapping) HasAlias(alias string) bool {
	return slices.Contains(m.Aliases, alias)
}

// AddAlias registers a new alias. Adding an existing alias is a no-op;
// it returns true only when the mapping changed.
func (m *TagMapping) AddAlias(alias string) bool {
	if alias == "" || alias == m.Standard || m.HasAlias(alias) {
		return false
	}
	m.Aliases = append(m.Aliases, alias)
	return true
}

// Clone returns a deep copy of the mapping
func (m *TagMapping) Clone() *TagMapping {
	copied := *m
	copied.Aliases = make([]string, len(m.Aliases))
	copy(copied.Aliases, m.Aliases)
	return &copied
}

// TagSuggestion is an unvalidated candidate tag produced by the vision
// backend. Suggestions are never persisted directly; they always pass
// through normalization and validation first.
type TagSuggestion struct {
	Tag        string               `json:"tag"`
	Confidence float64              `json:"confidence"`
	Type       types.SuggestionType `json:"type"`
}

// Validate checks the shape of a suggestion as returned by the backend.
// maxRunes bounds the rendered tag length, counting multi-byte
// characters as one unit each.
func (s *TagSuggestion) Validate(maxRunes int) error {
	if s.Tag == "" {
		return goerr.New("suggestion tag is empty")
	}
	if utf8.RuneCountInString(s.Tag) > maxRunes {
		return goerr.New("suggestion tag too long",
			goerr.V("tag", s.Tag), goerr.V("max", maxRunes))
	}
	if s.Confidence < 0 || s.Confidence > 1 {
		return goerr.New("suggestion confidence out of range",
			goerr.V("tag", s.Tag), goerr.V("confidence", s.Confidence))
	}
	if !s.Type.IsValid() {
		return goerr.New("invalid suggestion type",
			goerr.V("tag", s.Tag), goerr.V("type", s.Type))
	}
	return nil
}
