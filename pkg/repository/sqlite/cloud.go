package sqlite

import (
	"context"

	"github.com/memvault/memvault/pkg/domain/model"
	"github.com/memvault/memvault/pkg/domain/types"
)

type cloudRepository struct {
	client *Client
}

func (r *cloudRepository) GetConfig(ctx context.Context) (*model.CloudConfig, error) {
	var cfg model.CloudConfig
	found, err := r.client.getBlob(ctx, keyCloudConfig, &cfg)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return &cfg, nil
}

func (r *cloudRepository) SaveConfig(ctx context.Context, cfg *model.CloudConfig) error {
	return r.client.putBlob(ctx, keyCloudConfig, cfg)
}

func (r *cloudRepository) GetIndex(ctx context.Context) ([]*model.CloudEntry, error) {
	var entries []*model.CloudEntry
	if _, err := r.client.getBlob(ctx, keyCloudIndex, &entries); err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []*model.CloudEntry{}
	}
	return entries, nil
}

func (r *cloudRepository) ReplaceIndex(ctx context.Context, entries []*model.CloudEntry) error {
	return r.client.putBlob(ctx, keyCloudIndex, entries)
}

func (r *cloudRepository) GetSyncQueue(ctx context.Context) ([]types.MemeID, error) {
	var ids []types.MemeID
	if _, err := r.client.getBlob(ctx, keySyncQueue, &ids); err != nil {
		return nil, err
	}
	if ids == nil {
		ids = []types.MemeID{}
	}
	return ids, nil
}

func (r *cloudRepository) ReplaceSyncQueue(ctx context.Context, ids []types.MemeID) error {
	return r.client.putBlob(ctx, keySyncQueue, ids)
}

func (r *cloudRepository) GetStats(ctx context.Context) (*model.SyncStats, error) {
	var stats model.SyncStats
	if _, err := r.client.getBlob(ctx, keySyncStats, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (r *cloudRepository) SaveStats(ctx context.Context, stats *model.SyncStats) error {
	return r.client.putBlob(ctx, keySyncStats, stats)
}
