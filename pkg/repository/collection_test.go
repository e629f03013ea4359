package repository_test

import (
	"context"
	"errors"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/memvault/memvault/pkg/domain/interfaces"
	"github.com/memvault/memvault/pkg/domain/model"
	"github.com/memvault/memvault/pkg/domain/types"
	"github.com/memvault/memvault/pkg/repository"
)

func runCollectionRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("Put, Get, Delete lifecycle", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		col := model.NewCollection("favorites")
		col.Add(types.NewMemeID())
		gt.NoError(t, repo.Collection().Put(ctx, col)).Required()

		got, err := repo.Collection().Get(ctx, col.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.Name).Equal("favorites")
		gt.Array(t, got.MemeIDs).Length(1)

		gt.NoError(t, repo.Collection().Delete(ctx, col.ID)).Required()
		_, err = repo.Collection().Get(ctx, col.ID)
		gt.B(t, errors.Is(err, repository.ErrCollectionNotFound)).True()
	})

	t.Run("GetAll returns collections in creation order", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		first := model.NewCollection("first")
		second := model.NewCollection("second")
		second.CreatedAt = first.CreatedAt.Add(1)
		gt.NoError(t, repo.Collection().Put(ctx, first)).Required()
		gt.NoError(t, repo.Collection().Put(ctx, second)).Required()

		all, err := repo.Collection().GetAll(ctx)
		gt.NoError(t, err).Required()
		gt.Array(t, all).Length(2)
		gt.Value(t, all[0].Name).Equal("first")
		gt.Value(t, all[1].Name).Equal("second")
	})
}

func runUsageRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("IncrementShare counts up per meme", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		a := types.NewMemeID()
		b := types.NewMemeID()

		count, err := repo.Usage().IncrementShare(ctx, a)
		gt.NoError(t, err).Required()
		gt.Value(t, count).Equal(int64(1))

		count, err = repo.Usage().IncrementShare(ctx, a)
		gt.NoError(t, err).Required()
		gt.Value(t, count).Equal(int64(2))

		count, err = repo.Usage().IncrementShare(ctx, b)
		gt.NoError(t, err).Required()
		gt.Value(t, count).Equal(int64(1))

		counts, err := repo.Usage().GetShareCounts(ctx)
		gt.NoError(t, err).Required()
		gt.Value(t, counts[a]).Equal(int64(2))
		gt.Value(t, counts[b]).Equal(int64(1))
	})
}
