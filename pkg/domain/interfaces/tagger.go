package interfaces

import (
	"context"

	"github.com/memvault/memvault/pkg/domain/model"
)

// TagGenerator produces tag suggestions for one image. Implementations
// own the retry and timeout policy for a single generation call; the
// tag queue owns the retry policy across tasks.
type TagGenerator interface {
	// Generate returns suggestions for the image at the given local
	// location. It returns ErrTaggingDisabled / ErrNoCredential
	// sentinels when auto-tagging is switched off (a no-op signal, not
	// an error condition), and propagates the last error after
	// exhausting its internal retries.
	Generate(ctx context.Context, location string) ([]*model.TagSuggestion, error)
}
