package types

import "fmt"

// SuggestionType classifies a tag suggestion produced by the vision
// backend: extracted text, emotion, main subject, or meaning of the image.
type SuggestionType string

const (
	SuggestionTypeText    SuggestionType = "text"
	SuggestionTypeEmotion SuggestionType = "emotion"
	SuggestionTypeSubject SuggestionType = "subject"
	SuggestionTypeMeaning SuggestionType = "meaning"
)

// AllSuggestionTypes returns all valid suggestion types
func AllSuggestionTypes() []SuggestionType {
	return []SuggestionType{
		SuggestionTypeText,
		SuggestionTypeEmotion,
		SuggestionTypeSubject,
		SuggestionTypeMeaning,
	}
}

// IsValid checks if the suggestion type is valid
func (s SuggestionType) IsValid() bool {
	switch s {
	case SuggestionTypeText, SuggestionTypeEmotion, SuggestionTypeSubject, SuggestionTypeMeaning:
		return true
	default:
		return false
	}
}

// String returns the string representation of the suggestion type
func (s SuggestionType) String() string {
	return string(s)
}

// ParseSuggestionType parses a string into a SuggestionType
func ParseSuggestionType(s string) (SuggestionType, error) {
	st := SuggestionType(s)
	if !st.IsValid() {
		return "", fmt.Errorf("invalid suggestion type: %s", s)
	}
	return st, nil
}
