package interfaces

import (
	"context"

	"github.com/memvault/memvault/pkg/domain/model"
	"github.com/memvault/memvault/pkg/domain/types"
)

// Repository defines the interface for data persistence. Each
// sub-repository persists one concern as an independent namespaced
// value; there is no cross-key transactionality.
type Repository interface {
	Meme() MemeRepository
	TagMapping() TagMappingRepository
	Cloud() CloudRepository
	Collection() CollectionRepository
	Usage() UsageRepository

	Close() error
}

// MemeRepository persists the image catalog. The catalog has
// whole-collection read/replace semantics: callers read everything,
// mutate in memory, and write everything back. Single-writer access is
// assumed; concurrent writers may lose updates.
type MemeRepository interface {
	// GetAll retrieves every meme record
	GetAll(ctx context.Context) ([]*model.Meme, error)

	// ReplaceAll replaces the entire catalog
	ReplaceAll(ctx context.Context, memes []*model.Meme) error

	// Get retrieves one meme by ID. Returns ErrMemeNotFound when absent.
	Get(ctx context.Context, id types.MemeID) (*model.Meme, error)

	// Put inserts or updates one meme record
	Put(ctx context.Context, meme *model.Meme) error

	// Delete removes one meme record
	Delete(ctx context.Context, id types.MemeID) error
}

// TagMappingRepository persists the canonical tag mapping table.
// Mapping order is significant: fuzzy-match ties resolve to the
// first-registered mapping, so implementations must preserve it.
type TagMappingRepository interface {
	GetAll(ctx context.Context) ([]*model.TagMapping, error)
	ReplaceAll(ctx context.Context, mappings []*model.TagMapping) error
}

// CloudRepository persists the cloud synchronization state: the service
// configuration, the cloud index, the sync queue, and sync statistics.
type CloudRepository interface {
	// GetConfig returns the stored configuration, or nil when nothing
	// has been saved yet.
	GetConfig(ctx context.Context) (*model.CloudConfig, error)
	SaveConfig(ctx context.Context, cfg *model.CloudConfig) error

	// GetIndex returns every cloud index entry
	GetIndex(ctx context.Context) ([]*model.CloudEntry, error)
	ReplaceIndex(ctx context.Context, entries []*model.CloudEntry) error

	// GetSyncQueue returns the ordered list of meme IDs awaiting upload
	GetSyncQueue(ctx context.Context) ([]types.MemeID, error)
	ReplaceSyncQueue(ctx context.Context, ids []types.MemeID) error

	// GetStats returns the sync statistics, zero-valued when unset
	GetStats(ctx context.Context) (*model.SyncStats, error)
	SaveStats(ctx context.Context, stats *model.SyncStats) error
}

// CollectionRepository persists user-defined meme collections
type CollectionRepository interface {
	GetAll(ctx context.Context) ([]*model.Collection, error)
	Get(ctx context.Context, id string) (*model.Collection, error)
	Put(ctx context.Context, collection *model.Collection) error
	Delete(ctx context.Context, id string) error
}

// UsageRepository persists per-meme share counters
type UsageRepository interface {
	// IncrementShare bumps the share counter and returns the new value
	IncrementShare(ctx context.Context, id types.MemeID) (int64, error)

	// GetShareCounts returns every share counter
	GetShareCounts(ctx context.Context) (map[types.MemeID]int64, error)
}
