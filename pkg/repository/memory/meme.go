package memory

import (
	"context"
	"slices"

	"github.com/m-mizutani/goerr/v2"
	"github.com/memvault/memvault/pkg/domain/model"
	"github.com/memvault/memvault/pkg/domain/types"
	"github.com/memvault/memvault/pkg/repository"
)

type memeRepository struct {
	client *Client
}

func (r *memeRepository) GetAll(ctx context.Context) ([]*model.Meme, error) {
	r.client.mu.RLock()
	defer r.client.mu.RUnlock()

	result := make([]*model.Meme, 0, len(r.client.memeOrder))
	for _, id := range r.client.memeOrder {
		result = append(result, r.client.memes[id].Clone())
	}
	return result, nil
}

func (r *memeRepository) ReplaceAll(ctx context.Context, memes []*model.Meme) error {
	r.client.mu.Lock()
	defer r.client.mu.Unlock()

	r.client.memes = make(map[types.MemeID]*model.Meme, len(memes))
	r.client.memeOrder = make([]types.MemeID, 0, len(memes))
	for _, m := range memes {
		r.client.memes[m.ID] = m.Clone()
		r.client.memeOrder = append(r.client.memeOrder, m.ID)
	}
	return nil
}

func (r *memeRepository) Get(ctx context.Context, id types.MemeID) (*model.Meme, error) {
	r.client.mu.RLock()
	defer r.client.mu.RUnlock()

	m, exists := r.client.memes[id]
	if !exists {
		return nil, goerr.Wrap(repository.ErrMemeNotFound, "meme not found", goerr.V("id", id))
	}
	return m.Clone(), nil
}

func (r *memeRepository) Put(ctx context.Context, meme *model.Meme) error {
	r.client.mu.Lock()
	defer r.client.mu.Unlock()

	if _, exists := r.client.memes[meme.ID]; !exists {
		r.client.memeOrder = append(r.client.memeOrder, meme.ID)
	}
	r.client.memes[meme.ID] = meme.Clone()
	return nil
}

func (r *memeRepository) Delete(ctx context.Context, id types.MemeID) error {
	r.client.mu.Lock()
	defer r.client.mu.Unlock()

	if _, exists := r.client.memes[id]; !exists {
		return goerr.Wrap(repository.ErrMemeNotFound, "meme not found", goerr.V("id", id))
	}
	delete(r.client.memes, id)
	if idx := slices.Index(r.client.memeOrder, id); idx >= 0 {
		r.client.memeOrder = slices.Delete(r.client.memeOrder, idx, idx+1)
	}
	return nil
}
