package memory

import (
	"context"
	"slices"

	"github.com/memvault/memvault/pkg/domain/model"
	"github.com/memvault/memvault/pkg/domain/types"
)

type cloudRepository struct {
	client *Client
}

func (r *cloudRepository) GetConfig(ctx context.Context) (*model.CloudConfig, error) {
	r.client.mu.RLock()
	defer r.client.mu.RUnlock()

	if r.client.cloudConfig == nil {
		return nil, nil
	}
	return r.client.cloudConfig.Clone(), nil
}

func (r *cloudRepository) SaveConfig(ctx context.Context, cfg *model.CloudConfig) error {
	r.client.mu.Lock()
	defer r.client.mu.Unlock()

	r.client.cloudConfig = cfg.Clone()
	return nil
}

func (r *cloudRepository) GetIndex(ctx context.Context) ([]*model.CloudEntry, error) {
	r.client.mu.RLock()
	defer r.client.mu.RUnlock()

	result := make([]*model.CloudEntry, 0, len(r.client.cloudIndex))
	for _, e := range r.client.cloudIndex {
		result = append(result, e.Clone())
	}
	return result, nil
}

func (r *cloudRepository) ReplaceIndex(ctx context.Context, entries []*model.CloudEntry) error {
	r.client.mu.Lock()
	defer r.client.mu.Unlock()

	copied := make([]*model.CloudEntry, 0, len(entries))
	for _, e := range entries {
		copied = append(copied, e.Clone())
	}
	r.client.cloudIndex = copied
	return nil
}

func (r *cloudRepository) GetSyncQueue(ctx context.Context) ([]types.MemeID, error) {
	r.client.mu.RLock()
	defer r.client.mu.RUnlock()

	return slices.Clone(r.client.syncQueue), nil
}

func (r *cloudRepository) ReplaceSyncQueue(ctx context.Context, ids []types.MemeID) error {
	r.client.mu.Lock()
	defer r.client.mu.Unlock()

	r.client.syncQueue = slices.Clone(ids)
	return nil
}

func (r *cloudRepository) GetStats(ctx context.Context) (*model.SyncStats, error) {
	r.client.mu.RLock()
	defer r.client.mu.RUnlock()

	if r.client.syncStats == nil {
		return &model.SyncStats{}, nil
	}
	stats := *r.client.syncStats
	return &stats, nil
}

func (r *cloudRepository) SaveStats(ctx context.Context, stats *model.SyncStats) error {
	r.client.mu.Lock()
	defer r.client.mu.Unlock()

	copied := *stats
	r.client.syncStats = &copied
	return nil
}
