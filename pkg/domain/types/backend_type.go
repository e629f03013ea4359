package types

import "fmt"

// BackendType selects which cloud image-host implementation and
// credential shape is used
type BackendType string

const (
	BackendTypeImgur  BackendType = "imgur"
	BackendTypeSmms   BackendType = "sm.ms"
	BackendTypeGitHub BackendType = "github"
	BackendTypeCustom BackendType = "custom"
)

// AllBackendTypes returns all valid backend types
func AllBackendTypes() []BackendType {
	return []BackendType{
		BackendTypeImgur,
		BackendTypeSmms,
		BackendTypeGitHub,
		BackendTypeCustom,
	}
}

// IsValid checks if the backend type is valid
func (b BackendType) IsValid() bool {
	switch b {
	case BackendTypeImgur, BackendTypeSmms, BackendTypeGitHub, BackendTypeCustom:
		return true
	default:
		return false
	}
}

// String returns the string representation of the backend type
func (b BackendType) String() string {
	return string(b)
}

// ParseBackendType parses a string into a BackendType
func ParseBackendType(s string) (BackendType, error) {
	bt := BackendType(s)
	if !bt.IsValid() {
		return "", fmt.Errorf("invalid cloud backend type: %s", s)
	}
	return bt, nil
}
