package interfaces

import "context"

// ObjectStore abstracts local image blob storage behind opaque
// locators. The catalog only records locators; all byte-level access
// goes through this interface.
type ObjectStore interface {
	// Read returns the bytes of the object at the given locator
	Read(ctx context.Context, location string) ([]byte, error)

	// Write stores the bytes under a name and returns the locator
	Write(ctx context.Context, name string, data []byte) (string, error)

	// Remove deletes the object at the given locator
	Remove(ctx context.Context, location string) error
}
