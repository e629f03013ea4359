package memory

import (
	"context"
	"sort"

	"github.com/m-mizutani/goerr/v2"
	"github.com/memvault/memvault/pkg/domain/model"
	"github.com/memvault/memvault/pkg/repository"
)

type collectionRepository struct {
	client *Client
}

func (r *collectionRepository) GetAll(ctx context.Context) ([]*model.Collection, error) {
	r.client.mu.RLock()
	defer r.client.mu.RUnlock()

	result := make([]*model.Collection, 0, len(r.client.collections))
	for _, c := range r.client.collections {
		result = append(result, c.Clone())
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (r *collectionRepository) Get(ctx context.Context, id string) (*model.Collection, error) {
	r.client.mu.RLock()
	defer r.client.mu.RUnlock()

	c, exists := r.client.collections[id]
	if !exists {
		return nil, goerr.Wrap(repository.ErrCollectionNotFound, "collection not found", goerr.V("id", id))
	}
	return c.Clone(), nil
}

func (r *collectionRepository) Put(ctx context.Context, collection *model.Collection) error {
	r.client.mu.Lock()
	defer r.client.mu.Unlock()

	r.client.collections[collection.ID] = collection.Clone()
	return nil
}

func (r *collectionRepository) Delete(ctx context.Context, id string) error {
	r.client.mu.Lock()
	defer r.client.mu.Unlock()

	if _, exists := r.client.collections[id]; !exists {
		return goerr.Wrap(repository.ErrCollectionNotFound, "collection not found", goerr.V("id", id))
	}
	delete(r.client.collections, id)
	return nil
}
