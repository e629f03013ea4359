package usecase

import (
	"context"

	"github.com/memvault/memvault/pkg/domain/model"
	"github.com/memvault/memvault/pkg/domain/types"
)

// CreateCollection makes a new named collection.
func (uc *UseCases) CreateCollection(ctx context.Context, name string) (*model.Collection, error) {
	col := model.NewCollection(name)
	if err := col.Validate(); err != nil {
		return nil, err
	}
	if err := uc.repo.Collection().Put(ctx, col); err != nil {
		return nil, err
	}
	return col, nil
}

// ListCollections returns every collection.
func (uc *UseCases) ListCollections(ctx context.Context) ([]*model.Collection, error) {
	return uc.repo.Collection().GetAll(ctx)
}

// RenameCollection changes a collection's name.
func (uc *UseCases) RenameCollection(ctx context.Context, id, name string) (*model.Collection, error) {
	col, err := uc.repo.Collection().Get(ctx, id)
	if err != nil {
		return nil, err
	}
	col.Name = name
	if err := col.Validate(); err != nil {
		return nil, err
	}
	if err := uc.repo.Collection().Put(ctx, col); err != nil {
		return nil, err
	}
	return col, nil
}

// DeleteCollection removes a collection. The memes it referenced are
// untouched.
func (uc *UseCases) DeleteCollection(ctx context.Context, id string) error {
	return uc.repo.Collection().Delete(ctx, id)
}

// AddToCollection puts a meme into a collection.
func (uc *UseCases) AddToCollection(ctx context.Context, collectionID string, memeID types.MemeID) error {
	if _, err := uc.repo.Meme().Get(ctx, memeID); err != nil {
		return err
	}
	col, err := uc.repo.Collection().Get(ctx, collectionID)
	if err != nil {
		return err
	}
	if !col.Add(memeID) {
		return nil
	}
	return uc.repo.Collection().Put(ctx, col)
}

// RemoveFromCollection drops a meme from a collection.
func (uc *UseCases) RemoveFromCollection(ctx context.Context, collectionID string, memeID types.MemeID) error {
	col, err := uc.repo.Collection().Get(ctx, collectionID)
	if err != nil {
		return err
	}
	if !col.Remove(memeID) {
		return nil
	}
	return uc.repo.Collection().Put(ctx, col)
}

// CollectionMemes resolves a collection to its meme records, skipping
// IDs whose records no longer exist.
func (uc *UseCases) CollectionMemes(ctx context.Context, id string) ([]*model.Meme, error) {
	col, err := uc.repo.Collection().Get(ctx, id)
	if err != nil {
		return nil, err
	}

	memes := make([]*model.Meme, 0, len(col.MemeIDs))
	for _, memeID := range col.MemeIDs {
		meme, err := uc.repo.Meme().Get(ctx, memeID)
		if err != nil {
			continue
		}
		memes = append(memes, meme)
	}
	return memes, nil
}
