package usecase

import (
	"context"
	"sort"

	"github.com/memvault/memvault/pkg/domain/model"
	"github.com/memvault/memvault/pkg/domain/types"
)

const topListSize = 10

// TagFrequency pairs a canonical tag with its normalization hit count.
type TagFrequency struct {
	Tag       string
	Frequency int64
}

// MemeShares pairs a meme with its share counter.
type MemeShares struct {
	Meme   *model.Meme
	Shares int64
}

// UsageStats is an aggregate snapshot of the catalog.
type UsageStats struct {
	MemeCount      int
	TagCount       int
	FavoriteCount  int
	CategoryCounts map[string]int
	TopTags        []TagFrequency
	TopMemes       []MemeShares
}

// Usage computes catalog statistics: counts, per-category tag usage,
// the most-hit canonical tags, and the most-shared memes.
func (uc *UseCases) Usage(ctx context.Context) (*UsageStats, error) {
	memes, err := uc.repo.Meme().GetAll(ctx)
	if err != nil {
		return nil, err
	}

	stats := &UsageStats{
		MemeCount:      len(memes),
		CategoryCounts: map[string]int{},
	}

	tagCategory := map[string]string{}
	for _, mapping := range uc.normalizer.Mappings() {
		tagCategory[mapping.Standard] = mapping.Category
	}

	seen := map[string]bool{}
	for _, meme := range memes {
		if meme.Favorite {
			stats.FavoriteCount++
		}
		for _, tag := range meme.Tags {
			if !seen[tag] {
				seen[tag] = true
				stats.TagCount++
			}
			if category, ok := tagCategory[tag]; ok && category != "" {
				stats.CategoryCounts[category]++
			}
		}
	}

	for _, mapping := range uc.normalizer.Mappings() {
		if mapping.Frequency == 0 {
			continue
		}
		stats.TopTags = append(stats.TopTags, TagFrequency{
			Tag:       mapping.Standard,
			Frequency: mapping.Frequency,
		})
	}
	sort.SliceStable(stats.TopTags, func(i, j int) bool {
		return stats.TopTags[i].Frequency > stats.TopTags[j].Frequency
	})
	if len(stats.TopTags) > topListSize {
		stats.TopTags = stats.TopTags[:topListSize]
	}

	shares, err := uc.repo.Usage().GetShareCounts(ctx)
	if err != nil {
		return nil, err
	}
	byID := map[types.MemeID]*model.Meme{}
	for _, meme := range memes {
		byID[meme.ID] = meme
	}
	for id, count := range shares {
		meme, ok := byID[id]
		if !ok {
			continue
		}
		stats.TopMemes = append(stats.TopMemes, MemeShares{Meme: meme, Shares: count})
	}
	sort.SliceStable(stats.TopMemes, func(i, j int) bool {
		return stats.TopMemes[i].Shares > stats.TopMemes[j].Shares
	})
	if len(stats.TopMemes) > topListSize {
		stats.TopMemes = stats.TopMemes[:topListSize]
	}

	return stats, nil
}
