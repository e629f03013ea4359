package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/memvault/memvault/pkg/domain/interfaces"
	"github.com/memvault/memvault/pkg/domain/model"
	"github.com/memvault/memvault/pkg/domain/types"
)

func runCloudRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("GetConfig returns nil before anything is saved", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		cfg, err := repo.Cloud().GetConfig(ctx)
		gt.NoError(t, err).Required()
		gt.Value(t, cfg).Nil()
	})

	t.Run("SaveConfig round-trips including credentials", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		cfg := model.DefaultCloudConfig()
		cfg.Enabled = true
		cfg.Type = types.BackendTypeGitHub
		cfg.GitHubRepo = "alice/meme-mirror"
		cfg.GitHubToken = "ghp_secret"
		gt.NoError(t, repo.Cloud().SaveConfig(ctx, cfg)).Required()

		got, err := repo.Cloud().GetConfig(ctx)
		gt.NoError(t, err).Required()
		gt.B(t, got.Enabled).True()
		gt.Value(t, got.Type).Equal(types.BackendTypeGitHub)
		gt.Value(t, got.GitHubRepo).Equal("alice/meme-mirror")
		gt.Value(t, got.GitHubToken).Equal("ghp_secret")
		gt.Value(t, got.SyncInterval).Equal(120)
	})

	t.Run("index replace and read back", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		now := time.Now().UTC().Format(time.RFC3339)
		entries := []*model.CloudEntry{
			{ID: types.NewMemeID(), RemoteURI: "https://img.example.com/1", ContentHash: "h1", Tags: []string{"猫咪"}, CreatedAt: now, ModifiedAt: now, Size: 100},
			{ID: types.NewMemeID(), RemoteURI: "https://img.example.com/2", ContentHash: "h2", Tags: []string{}, CreatedAt: now, ModifiedAt: now, Size: 200},
		}
		gt.NoError(t, repo.Cloud().ReplaceIndex(ctx, entries)).Required()

		got, err := repo.Cloud().GetIndex(ctx)
		gt.NoError(t, err).Required()
		gt.Array(t, got).Length(2)
		gt.Value(t, got[0].ContentHash).Equal("h1")
		gt.Array(t, got[0].Tags).Equal([]string{"猫咪"})

		gt.NoError(t, repo.Cloud().ReplaceIndex(ctx, nil)).Required()
		got, err = repo.Cloud().GetIndex(ctx)
		gt.NoError(t, err).Required()
		gt.Array(t, got).Length(0)
	})

	t.Run("sync queue survives replace round-trips in order", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		ids := []types.MemeID{types.NewMemeID(), types.NewMemeID(), types.NewMemeID()}
		gt.NoError(t, repo.Cloud().ReplaceSyncQueue(ctx, ids)).Required()

		got, err := repo.Cloud().GetSyncQueue(ctx)
		gt.NoError(t, err).Required()
		gt.Array(t, got).Equal(ids)
	})

	t.Run("stats default to zero and round-trip", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		stats, err := repo.Cloud().GetStats(ctx)
		gt.NoError(t, err).Required()
		gt.Value(t, stats.TotalSize).Equal(int64(0))
		gt.Value(t, stats.SyncedCount).Equal(int64(0))

		stats.TotalSize = 4096
		stats.SyncedCount = 3
		stats.FailedCount = 1
		gt.NoError(t, repo.Cloud().SaveStats(ctx, stats)).Required()

		got, err := repo.Cloud().GetStats(ctx)
		gt.NoError(t, err).Required()
		gt.Value(t, got.TotalSize).Equal(int64(4096))
		gt.Value(t, got.SyncedCount).Equal(int64(3))
		gt.Value(t, got.FailedCount).Equal(int64(1))
	})
}
