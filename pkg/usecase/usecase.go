package usecase

import (
	"context"

	"github.com/memvault/memvault/pkg/domain/interfaces"
	"github.com/memvault/memvault/pkg/service/cloud"
	"github.com/memvault/memvault/pkg/service/normalizer"
	"github.com/memvault/memvault/pkg/service/tagqueue"
	"github.com/memvault/memvault/pkg/utils/errutil"
)

// UseCases wires the catalog operations with their collaborators. All
// dependencies are injected at startup.
type UseCases struct {
	repo       interfaces.Repository
	store      interfaces.ObjectStore
	normalizer *normalizer.Service
	tagQueue   *tagqueue.Queue
	cloud      *cloud.Service

	maxTags     int
	maxTagRunes int
}

type Option func(*UseCases)

// WithTagQueue enables automatic tag generation for saved memes.
func WithTagQueue(q *tagqueue.Queue) Option {
	return func(uc *UseCases) {
		uc.tagQueue = q
	}
}

func WithCloud(c *cloud.Service) Option {
	return func(uc *UseCases) {
		uc.cloud = c
	}
}

func WithTagBounds(maxTags, maxTagRunes int) Option {
	return func(uc *UseCases) {
		uc.maxTags = maxTags
		uc.maxTagRunes = maxTagRunes
	}
}

func New(repo interfaces.Repository, store interfaces.ObjectStore, norm *normalizer.Service, opts ...Option) *UseCases {
	uc := &UseCases{
		repo:        repo,
		store:       store,
		normalizer:  norm,
		maxTags:     defaultMaxTags,
		maxTagRunes: defaultMaxTagRunes,
	}

	for _, opt := range opts {
		opt(uc)
	}

	if uc.tagQueue != nil {
		uc.tagQueue.Subscribe(func(ctx context.Context, ev tagqueue.TagsReady) {
			if err := uc.applyGeneratedTags(ctx, ev); err != nil {
				_ = errutil.Handle(ctx, err, "failed to apply generated tags")
			}
		})
	}

	return uc
}
