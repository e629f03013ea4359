package repository_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/memvault/memvault/pkg/domain/interfaces"
	"github.com/memvault/memvault/pkg/domain/model"
)

func runTagMappingRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("empty table before first write", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		mappings, err := repo.TagMapping().GetAll(ctx)
		gt.NoError(t, err).Required()
		gt.Array(t, mappings).Length(0)
	})

	t.Run("ReplaceAll preserves mapping order", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		mappings := []*model.TagMapping{
			{Standard: "幽默", Aliases: []string{"搞笑", "有趣"}, Category: "情绪", Frequency: 2},
			{Standard: "猫咪", Aliases: []string{"喵星人"}, Category: "角色"},
			{Standard: "日常", Aliases: []string{"生活"}, Category: "场景"},
		}
		gt.NoError(t, repo.TagMapping().ReplaceAll(ctx, mappings)).Required()

		got, err := repo.TagMapping().GetAll(ctx)
		gt.NoError(t, err).Required()
		gt.Array(t, got).Length(3)
		gt.Value(t, got[0].Standard).Equal("幽默")
		gt.Value(t, got[0].Frequency).Equal(int64(2))
		gt.Value(t, got[1].Standard).Equal("猫咪")
		gt.Value(t, got[2].Standard).Equal("日常")
		gt.Array(t, got[0].Aliases).Equal([]string{"搞笑", "有趣"})
	})

	t.Run("returned mappings do not alias stored state", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		gt.NoError(t, repo.TagMapping().ReplaceAll(ctx, []*model.TagMapping{
			{Standard: "思考", Aliases: []string{"沉思"}},
		})).Required()

		got, err := repo.TagMapping().GetAll(ctx)
		gt.NoError(t, err).Required()
		got[0].Aliases[0] = "mutated"

		again, err := repo.TagMapping().GetAll(ctx)
		gt.NoError(t, err).Required()
		gt.Value(t, again[0].Aliases[0]).Equal("沉思")
	})
}
