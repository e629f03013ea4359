package usecase

import (
	"bytes"
	"context"
	"image"
	"slices"
	"sort"
	"unicode/utf8"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"

	"github.com/m-mizutani/goerr/v2"

	"github.com/memvault/memvault/pkg/domain/model"
	"github.com/memvault/memvault/pkg/domain/types"
	"github.com/memvault/memvault/pkg/service/tagqueue"
	"github.com/memvault/memvault/pkg/utils/logging"
)

const (
	defaultMaxTags     = model.DefaultMaxTags
	defaultMaxTagRunes = model.DefaultMaxTagRunes
)

// SaveMeme stores image bytes and creates the catalog record. When a
// tag queue is wired the new meme is enqueued for background tagging;
// when cloud auto-sync is on it is enqueued for upload.
func (uc *UseCases) SaveMeme(ctx context.Context, data []byte, title string) (*model.Meme, error) {
	if len(data) == 0 {
		return nil, goerr.New("image data is empty")
	}

	meme := model.NewMeme("", int64(len(data)))
	meme.Title = title
	if cfg, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
		meme.Width = cfg.Width
		meme.Height = cfg.Height
	}

	location, err := uc.store.Write(ctx, "memes/"+meme.ID.String(), data)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to store image")
	}
	meme.Location = location

	if err := meme.Validate(); err != nil {
		return nil, err
	}
	if err := uc.repo.Meme().Put(ctx, meme); err != nil {
		return nil, err
	}

	if uc.tagQueue != nil {
		uc.tagQueue.Enqueue(ctx, meme.ID)
	}

	if uc.cloud != nil {
		cfg, err := uc.cloud.Config(ctx)
		if err != nil {
			logging.From(ctx).Warn("failed to load cloud config", "error", err)
		} else if cfg.Enabled && cfg.AutoSync {
			if err := uc.cloud.AddToSyncQueue(ctx, meme.ID); err != nil {
				logging.From(ctx).Warn("failed to enqueue for sync",
					"meme_id", meme.ID, "error", err)
			}
		}
	}

	return meme, nil
}

// applyGeneratedTags normalizes generated suggestions and persists
// them on the record.
func (uc *UseCases) applyGeneratedTags(ctx context.Context, ev tagqueue.TagsReady) error {
	raw := make([]string, 0, len(ev.Tags))
	for _, s := range ev.Tags {
		raw = append(raw, s.Tag)
	}

	tags, err := uc.normalizer.NormalizeTags(ctx, raw)
	if err != nil {
		return err
	}

	bounded := make([]string, 0, uc.maxTags)
	for _, tag := range tags {
		if utf8.RuneCountInString(tag) > uc.maxTagRunes {
			continue
		}
		bounded = append(bounded, tag)
		if len(bounded) == uc.maxTags {
			break
		}
	}

	meme, err := uc.repo.Meme().Get(ctx, ev.MemeID)
	if err != nil {
		return goerr.Wrap(err, "meme vanished before tags arrived", goerr.V("id", ev.MemeID))
	}
	meme.SetTags(bounded)
	return uc.repo.Meme().Put(ctx, meme)
}

// GetMeme returns one record by ID.
func (uc *UseCases) GetMeme(ctx context.Context, id types.MemeID) (*model.Meme, error) {
	return uc.repo.Meme().Get(ctx, id)
}

// ListMemes returns the whole catalog in insertion order.
func (uc *UseCases) ListMemes(ctx context.Context) ([]*model.Meme, error) {
	return uc.repo.Meme().GetAll(ctx)
}

// UpdateTags replaces a meme's tags after normalization.
func (uc *UseCases) UpdateTags(ctx context.Context, id types.MemeID, tags []string) (*model.Meme, error) {
	normalized, err := uc.normalizer.NormalizeTags(ctx, tags)
	if err != nil {
		return nil, err
	}

	meme, err := uc.repo.Meme().Get(ctx, id)
	if err != nil {
		return nil, err
	}
	meme.SetTags(normalized)
	if err := uc.repo.Meme().Put(ctx, meme); err != nil {
		return nil, err
	}
	return meme, nil
}

// SetFavorite toggles the favorite flag.
func (uc *UseCases) SetFavorite(ctx context.Context, id types.MemeID, favorite bool) (*model.Meme, error) {
	meme, err := uc.repo.Meme().Get(ctx, id)
	if err != nil {
		return nil, err
	}
	meme.Favorite = favorite
	meme.Touch()
	if err := uc.repo.Meme().Put(ctx, meme); err != nil {
		return nil, err
	}
	return meme, nil
}

// DeleteMeme removes the record, its stored bytes, and its collection
// memberships.
func (uc *UseCases) DeleteMeme(ctx context.Context, id types.MemeID) error {
	meme, err := uc.repo.Meme().Get(ctx, id)
	if err != nil {
		return err
	}

	if err := uc.repo.Meme().Delete(ctx, id); err != nil {
		return err
	}
	if err := uc.store.Remove(ctx, meme.Location); err != nil {
		logging.From(ctx).Warn("failed to remove stored image",
			"location", meme.Location, "error", err)
	}

	collections, err := uc.repo.Collection().GetAll(ctx)
	if err != nil {
		return err
	}
	for _, col := range collections {
		if !slices.Contains(col.MemeIDs, id) {
			continue
		}
		col.Remove(id)
		if err := uc.repo.Collection().Put(ctx, col); err != nil {
			return err
		}
	}
	return nil
}

// SearchByTags returns memes carrying every requested tag. Tags are
// normalized first so searching by an alias finds canonical tags. An
// empty query returns the whole catalog.
func (uc *UseCases) SearchByTags(ctx context.Context, tags []string) ([]*model.Meme, error) {
	memes, err := uc.repo.Meme().GetAll(ctx)
	if err != nil {
		return nil, err
	}
	if len(tags) == 0 {
		return memes, nil
	}

	normalized, err := uc.normalizer.NormalizeTags(ctx, tags)
	if err != nil {
		return nil, err
	}

	var matched []*model.Meme
	for _, meme := range memes {
		ok := true
		for _, tag := range normalized {
			if !meme.HasTag(tag) {
				ok = false
				break
			}
		}
		if ok {
			matched = append(matched, meme)
		}
	}
	return matched, nil
}

// AllTags returns every tag in use, sorted.
func (uc *UseCases) AllTags(ctx context.Context) ([]string, error) {
	memes, err := uc.repo.Meme().GetAll(ctx)
	if err != nil {
		return nil, err
	}

	seen := map[string]bool{}
	var tags []string
	for _, meme := range memes {
		for _, tag := range meme.Tags {
			if seen[tag] {
				continue
			}
			seen[tag] = true
			tags = append(tags, tag)
		}
	}
	sort.Strings(tags)
	return tags, nil
}

// RecordShare bumps the share counter for a meme and returns the new
// count.
func (uc *UseCases) RecordShare(ctx context.Context, id types.MemeID) (int64, error) {
	if _, err := uc.repo.Meme().Get(ctx, id); err != nil {
		return 0, err
	}
	return uc.repo.Usage().IncrementShare(ctx, id)
}
