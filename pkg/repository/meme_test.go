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

func runMemeRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("Put and Get round-trips a record", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		meme := model.NewMeme("memes/a.jpg", 2048)
		meme.Title = "office cat"
		meme.SetTags([]string{"猫咪", "日常"})

		gt.NoError(t, repo.Meme().Put(ctx, meme)).Required()

		got, err := repo.Meme().Get(ctx, meme.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.ID).Equal(meme.ID)
		gt.Value(t, got.Title).Equal("office cat")
		gt.Array(t, got.Tags).Equal([]string{"猫咪", "日常"})
		gt.Value(t, got.Size).Equal(int64(2048))
	})

	t.Run("Get unknown ID returns ErrMemeNotFound", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		_, err := repo.Meme().Get(ctx, types.NewMemeID())
		gt.Error(t, err)
		gt.B(t, errors.Is(err, repository.ErrMemeNotFound)).True()
	})

	t.Run("GetAll preserves insertion order", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		first := model.NewMeme("memes/1.jpg", 1)
		second := model.NewMeme("memes/2.jpg", 2)
		third := model.NewMeme("memes/3.jpg", 3)
		for _, m := range []*model.Meme{first, second, third} {
			gt.NoError(t, repo.Meme().Put(ctx, m)).Required()
		}

		all, err := repo.Meme().GetAll(ctx)
		gt.NoError(t, err).Required()
		gt.Array(t, all).Length(3)
		gt.Value(t, all[0].ID).Equal(first.ID)
		gt.Value(t, all[1].ID).Equal(second.ID)
		gt.Value(t, all[2].ID).Equal(third.ID)
	})

	t.Run("ReplaceAll swaps the whole catalog", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		old := model.NewMeme("memes/old.jpg", 1)
		gt.NoError(t, repo.Meme().Put(ctx, old)).Required()

		replacementA := model.NewMeme("memes/a.jpg", 10)
		replacementB := model.NewMeme("memes/b.jpg", 20)
		gt.NoError(t, repo.Meme().ReplaceAll(ctx, []*model.Meme{replacementA, replacementB})).Required()

		all, err := repo.Meme().GetAll(ctx)
		gt.NoError(t, err).Required()
		gt.Array(t, all).Length(2)

		_, err = repo.Meme().Get(ctx, old.ID)
		gt.B(t, errors.Is(err, repository.ErrMemeNotFound)).True()
	})

	t.Run("Put updates an existing record in place", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		meme := model.NewMeme("memes/x.jpg", 1)
		gt.NoError(t, repo.Meme().Put(ctx, meme)).Required()

		meme.Favorite = true
		meme.RemoteURI = "https://img.example.com/x.jpg"
		meme.SyncStatus = types.SyncStatusSynced
		gt.NoError(t, repo.Meme().Put(ctx, meme)).Required()

		got, err := repo.Meme().Get(ctx, meme.ID)
		gt.NoError(t, err).Required()
		gt.B(t, got.Favorite).True()
		gt.Value(t, got.RemoteURI).Equal("https://img.example.com/x.jpg")
		gt.Value(t, got.SyncStatus).Equal(types.SyncStatusSynced)

		all, err := repo.Meme().GetAll(ctx)
		gt.NoError(t, err).Required()
		gt.Array(t, all).Length(1)
	})

	t.Run("Delete removes the record", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		meme := model.NewMeme("memes/gone.jpg", 1)
		gt.NoError(t, repo.Meme().Put(ctx, meme)).Required()
		gt.NoError(t, repo.Meme().Delete(ctx, meme.ID)).Required()

		_, err := repo.Meme().Get(ctx, meme.ID)
		gt.B(t, errors.Is(err, repository.ErrMemeNotFound)).True()

		gt.B(t, errors.Is(repo.Meme().Delete(ctx, meme.ID), repository.ErrMemeNotFound)).True()
	})

	t.Run("returned records do not alias stored state", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		meme := model.NewMeme("memes/alias.jpg", 1)
		meme.SetTags([]string{"幽默"})
		gt.NoError(t, repo.Meme().Put(ctx, meme)).Required()

		got, err := repo.Meme().Get(ctx, meme.ID)
		gt.NoError(t, err).Required()
		got.Tags[0] = "mutated"

		again, err := repo.Meme().Get(ctx, meme.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, again.Tags[0]).Equal("幽默")
	})
}
