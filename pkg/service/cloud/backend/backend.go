package backend

import (
	"context"

	"github.com/m-mizutani/goerr/v2"

	"github.com/memvault/memvault/pkg/domain/model"
	"github.com/memvault/memvault/pkg/domain/types"
)

// Backend uploads image bytes to a remote image host and returns the
// public URI.
type Backend interface {
	Upload(ctx context.Context, name string, data []byte) (string, error)
}

// Lister enumerates remote entries. Only backends that expose their
// stored objects (GitHub) implement it; restore requires it.
type Lister interface {
	List(ctx context.Context) ([]*model.CloudEntry, error)
}

// Deleter removes a remote object. Hosts without a delete API simply
// don't implement it and eviction becomes index-only.
type Deleter interface {
	Delete(ctx context.Context, entry *model.CloudEntry) error
}

// MetadataWriter persists tag metadata next to the uploaded images so
// a restore can bring tags back.
type MetadataWriter interface {
	WriteTags(ctx context.Context, name string, tags []string) error
}

var ErrUnsupportedBackend = goerr.New("unsupported storage backend")

// FromConfig builds the backend selected by the config.
func FromConfig(cfg *model.CloudConfig) (Backend, error) {
	switch cfg.Type {
	case types.BackendTypeImgur:
		return NewImgur(cfg.APIKey), nil
	case types.BackendTypeSmms:
		return NewSMMS(cfg.APIKey), nil
	case types.BackendTypeGitHub:
		return NewGitHub(cfg.GitHubToken, cfg.GitHubRepo)
	case types.BackendTypeCustom:
		return NewCustom(cfg.APIEndpoint, cfg.APIKey)
	default:
		return nil, goerr.Wrap(ErrUnsupportedBackend, "unknown backend type",
			goerr.V("type", cfg.Type))
	}
}
