package memory

import (
	"context"

	"github.com/memvault/memvault/pkg/domain/types"
)

type usageRepository struct {
	client *Client
}

func (r *usageRepository) IncrementShare(ctx context.Context, id types.MemeID) (int64, error) {
	r.client.mu.Lock()
	defer r.client.mu.Unlock()

	r.client.shareCounts[id]++
	return r.client.shareCounts[id], nil
}

func (r *usageRepository) GetShareCounts(ctx context.Context) (map[types.MemeID]int64, error) {
	r.client.mu.RLock()
	defer r.client.mu.RUnlock()

	result := make(map[types.MemeID]int64, len(r.client.shareCounts))
	for id, count := range r.client.shareCounts {
		result[id] = count
	}
	return result, nil
}
