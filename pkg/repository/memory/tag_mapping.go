package memory

import (
	"context"

	"github.com/memvault/memvault/pkg/domain/model"
)

type tagMappingRepository struct {
	client *Client
}

func (r *tagMappingRepository) GetAll(ctx context.Context) ([]*model.TagMapping, error) {
	r.client.mu.RLock()
	defer r.client.mu.RUnlock()

	result := make([]*model.TagMapping, 0, len(r.client.mappings))
	for _, m := range r.client.mappings {
		result = append(result, m.Clone())
	}
	return result, nil
}

func (r *tagMappingRepository) ReplaceAll(ctx context.Context, mappings []*model.TagMapping) error {
	r.client.mu.Lock()
	defer r.client.mu.Unlock()

	copied := make([]*model.TagMapping, 0, len(mappings))
	for _, m := range mappings {
		copied = append(copied, m.Clone())
	}
	r.client.mappings = copied
	return nil
}
