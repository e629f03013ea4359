package sqlite

import (
	"context"

	"github.com/memvault/memvault/pkg/domain/model"
)

type tagMappingRepository struct {
	client *Client
}

func (r *tagMappingRepository) GetAll(ctx context.Context) ([]*model.TagMapping, error) {
	var mappings []*model.TagMapping
	if _, err := r.client.getBlob(ctx, keyTagMappings, &mappings); err != nil {
		return nil, err
	}
	if mappings == nil {
		mappings = []*model.TagMapping{}
	}
	return mappings, nil
}

func (r *tagMappingRepository) ReplaceAll(ctx context.Context, mappings []*model.TagMapping) error {
	return r.client.putBlob(ctx, keyTagMappings, mappings)
}
