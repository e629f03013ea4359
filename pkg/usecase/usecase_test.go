package usecase_test

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/memvault/memvault/pkg/domain/model"
	"github.com/memvault/memvault/pkg/domain/types"
	"github.com/memvault/memvault/pkg/repository/memory"
	"github.com/memvault/memvault/pkg/service/normalizer"
	"github.com/memvault/memvault/pkg/service/tagqueue"
	"github.com/memvault/memvault/pkg/usecase"
)

type memStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newMemStore() *memStore {
	return &memStore{objects: map[string][]byte{}}
}

func (x *memStore) Read(ctx context.Context, location string) ([]byte, error) {
	x.mu.Lock()
	defer x.mu.Unlock()
	data, ok := x.objects[location]
	if !ok {
		return nil, errors.New("object not found")
	}
	return data, nil
}

func (x *memStore) Write(ctx context.Context, name string, data []byte) (string, error) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.objects[name] = data
	return name, nil
}

func (x *memStore) Remove(ctx context.Context, location string) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	delete(x.objects, location)
	return nil
}

func (x *memStore) has(location string) bool {
	x.mu.Lock()
	defer x.mu.Unlock()
	_, ok := x.objects[location]
	return ok
}

type testEnv struct {
	repo  *memory.Client
	store *memStore
	norm  *normalizer.Service
	uc    *usecase.UseCases
}

func newTestEnv(t *testing.T, opts ...usecase.Option) *testEnv {
	t.Helper()
	repo := memory.New()
	norm, err := normalizer.New(context.Background(), repo.TagMapping())
	gt.NoError(t, err).Required()

	env := &testEnv{
		repo:  repo,
		store: newMemStore(),
		norm:  norm,
	}
	env.uc = usecase.New(repo, env.store, norm, opts...)
	return env
}

func pngBytes(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), A: 255})
		}
	}
	var buf bytes.Buffer
	gt.NoError(t, png.Encode(&buf, img)).Required()
	return buf.Bytes()
}

func TestSaveMeme(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	data := pngBytes(t, 32, 16)

	meme, err := env.uc.SaveMeme(ctx, data, "周一的我")
	gt.NoError(t, err).Required()
	gt.S(t, meme.Title).Equal("周一的我")
	gt.Number(t, meme.Width).Equal(32)
	gt.Number(t, meme.Height).Equal(16)
	gt.Number(t, meme.Size).Equal(int64(len(data)))
	gt.B(t, env.store.has(meme.Location)).True()

	stored, err := env.repo.Meme().Get(ctx, meme.ID)
	gt.NoError(t, err).Required()
	gt.Value(t, stored.ID).Equal(meme.ID)
}

func TestSaveMemeEmptyData(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.uc.SaveMeme(context.Background(), nil, "")
	gt.Error(t, err)
}

func TestSaveMemeEnqueuesTagging(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	norm, err := normalizer.New(ctx, repo.TagMapping())
	gt.NoError(t, err).Required()
	store := newMemStore()

	gen := &fixedGenerator{tags: []*model.TagSuggestion{
		{Tag: "搞笑", Confidence: 0.95, Type: types.SuggestionTypeEmotion},
		{Tag: "熊猫人", Confidence: 0.9, Type: types.SuggestionTypeSubject},
	}}
	queue := tagqueue.New(repo, gen, tagqueue.WithPause(time.Millisecond))

	uc := usecase.New(repo, store, norm, usecase.WithTagQueue(queue))
	gt.NoError(t, queue.Start(ctx))
	defer queue.Stop()

	meme, err := uc.SaveMeme(ctx, pngBytes(t, 8, 8), "")
	gt.NoError(t, err).Required()

	// Suggestions arrive asynchronously, already normalized.
	waitFor(t, func() bool {
		stored, err := repo.Meme().Get(ctx, meme.ID)
		return err == nil && len(stored.Tags) == 2
	})
	stored, err := repo.Meme().Get(ctx, meme.ID)
	gt.NoError(t, err).Required()
	gt.A(t, stored.Tags).Equal([]string{"幽默", "熊猫头"})
}

type fixedGenerator struct {
	tags []*model.TagSuggestion
}

func (x *fixedGenerator) Generate(ctx context.Context, location string) ([]*model.TagSuggestion, error) {
	return x.tags, nil
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestUpdateTagsNormalizesAliases(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	meme, err := env.uc.SaveMeme(ctx, pngBytes(t, 8, 8), "")
	gt.NoError(t, err).Required()

	updated, err := env.uc.UpdateTags(ctx, meme.ID, []string{"搞笑", "speechless", "自创标签"})
	gt.NoError(t, err).Required()
	gt.A(t, updated.Tags).Equal([]string{"幽默", "无语", "自创标签"})
}

func TestSetFavorite(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	meme, err := env.uc.SaveMeme(ctx, pngBytes(t, 8, 8), "")
	gt.NoError(t, err).Required()

	updated, err := env.uc.SetFavorite(ctx, meme.ID, true)
	gt.NoError(t, err).Required()
	gt.B(t, updated.Favorite).True()
	gt.B(t, updated.ModifiedAt.After(meme.ModifiedAt) || updated.ModifiedAt.Equal(meme.ModifiedAt)).True()
}

func TestDeleteMeme(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	meme, err := env.uc.SaveMeme(ctx, pngBytes(t, 8, 8), "")
	gt.NoError(t, err).Required()

	col, err := env.uc.CreateCollection(ctx, "收藏")
	gt.NoError(t, err).Required()
	gt.NoError(t, env.uc.AddToCollection(ctx, col.ID, meme.ID)).Required()

	gt.NoError(t, env.uc.DeleteMeme(ctx, meme.ID)).Required()

	_, err = env.uc.GetMeme(ctx, meme.ID)
	gt.Error(t, err)
	gt.B(t, env.store.has(meme.Location)).False()

	// Collection membership is cleaned up too.
	remaining, err := env.repo.Collection().Get(ctx, col.ID)
	gt.NoError(t, err).Required()
	gt.A(t, remaining.MemeIDs).Length(0)
}

func TestSearchByTags(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	a, err := env.uc.SaveMeme(ctx, pngBytes(t, 8, 8), "a")
	gt.NoError(t, err).Required()
	_, err = env.uc.UpdateTags(ctx, a.ID, []string{"幽默", "熊猫头"})
	gt.NoError(t, err).Required()

	b, err := env.uc.SaveMeme(ctx, pngBytes(t, 9, 9), "b")
	gt.NoError(t, err).Required()
	_, err = env.uc.UpdateTags(ctx, b.ID, []string{"幽默"})
	gt.NoError(t, err).Required()

	// AND semantics: both tags must be present.
	found, err := env.uc.SearchByTags(ctx, []string{"幽默", "熊猫头"})
	gt.NoError(t, err).Required()
	gt.A(t, found).Length(1)
	gt.Value(t, found[0].ID).Equal(a.ID)

	// Searching by an alias matches the canonical tag.
	found, err = env.uc.SearchByTags(ctx, []string{"搞笑"})
	gt.NoError(t, err).Required()
	gt.A(t, found).Length(2)

	// Empty query returns the whole catalog.
	found, err = env.uc.SearchByTags(ctx, nil)
	gt.NoError(t, err).Required()
	gt.A(t, found).Length(2)
}

func TestAllTags(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	a, err := env.uc.SaveMeme(ctx, pngBytes(t, 8, 8), "")
	gt.NoError(t, err).Required()
	_, err = env.uc.UpdateTags(ctx, a.ID, []string{"熊猫头", "幽默"})
	gt.NoError(t, err).Required()

	b, err := env.uc.SaveMeme(ctx, pngBytes(t, 9, 9), "")
	gt.NoError(t, err).Required()
	_, err = env.uc.UpdateTags(ctx, b.ID, []string{"幽默"})
	gt.NoError(t, err).Required()

	tags, err := env.uc.AllTags(ctx)
	gt.NoError(t, err).Required()
	gt.A(t, tags).Equal([]string{"幽默", "熊猫头"})
}

func TestRecordShare(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	meme, err := env.uc.SaveMeme(ctx, pngBytes(t, 8, 8), "")
	gt.NoError(t, err).Required()

	count, err := env.uc.RecordShare(ctx, meme.ID)
	gt.NoError(t, err).Required()
	gt.Number(t, count).Equal(1)

	count, err = env.uc.RecordShare(ctx, meme.ID)
	gt.NoError(t, err).Required()
	gt.Number(t, count).Equal(2)

	_, err = env.uc.RecordShare(ctx, types.NewMemeID())
	gt.Error(t, err)
}

func TestCollections(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	col, err := env.uc.CreateCollection(ctx, "周报素材")
	gt.NoError(t, err).Required()

	meme, err := env.uc.SaveMeme(ctx, pngBytes(t, 8, 8), "")
	gt.NoError(t, err).Required()
	gt.NoError(t, env.uc.AddToCollection(ctx, col.ID, meme.ID)).Required()
	// Adding twice is a no-op.
	gt.NoError(t, env.uc.AddToCollection(ctx, col.ID, meme.ID)).Required()

	memes, err := env.uc.CollectionMemes(ctx, col.ID)
	gt.NoError(t, err).Required()
	gt.A(t, memes).Length(1)

	renamed, err := env.uc.RenameCollection(ctx, col.ID, "存档")
	gt.NoError(t, err).Required()
	gt.S(t, renamed.Name).Equal("存档")

	gt.NoError(t, env.uc.RemoveFromCollection(ctx, col.ID, meme.ID)).Required()
	memes, err = env.uc.CollectionMemes(ctx, col.ID)
	gt.NoError(t, err).Required()
	gt.A(t, memes).Length(0)

	gt.NoError(t, env.uc.DeleteCollection(ctx, col.ID)).Required()
	cols, err := env.uc.ListCollections(ctx)
	gt.NoError(t, err).Required()
	gt.A(t, cols).Length(0)

	_, err = env.uc.CreateCollection(ctx, "")
	gt.Error(t, err)
}

func TestUsage(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	a, err := env.uc.SaveMeme(ctx, pngBytes(t, 8, 8), "")
	gt.NoError(t, err).Required()
	_, err = env.uc.UpdateTags(ctx, a.ID, []string{"幽默", "熊猫头"})
	gt.NoError(t, err).Required()
	_, err = env.uc.SetFavorite(ctx, a.ID, true)
	gt.NoError(t, err).Required()

	b, err := env.uc.SaveMeme(ctx, pngBytes(t, 9, 9), "")
	gt.NoError(t, err).Required()
	_, err = env.uc.UpdateTags(ctx, b.ID, []string{"幽默"})
	gt.NoError(t, err).Required()

	_, err = env.uc.RecordShare(ctx, b.ID)
	gt.NoError(t, err).Required()

	stats, err := env.uc.Usage(ctx)
	gt.NoError(t, err).Required()
	gt.Number(t, stats.MemeCount).Equal(2)
	gt.Number(t, stats.TagCount).Equal(2)
	gt.Number(t, stats.FavoriteCount).Equal(1)
	gt.Number(t, stats.CategoryCounts["情绪"]).Equal(2)
	gt.Number(t, stats.CategoryCounts["角色"]).Equal(1)

	gt.B(t, len(stats.TopTags) > 0).True()
	gt.S(t, stats.TopTags[0].Tag).Equal("幽默")

	gt.A(t, stats.TopMemes).Length(1)
	gt.Value(t, stats.TopMemes[0].Meme.ID).Equal(b.ID)
	gt.Number(t, stats.TopMemes[0].Shares).Equal(int64(1))
}
