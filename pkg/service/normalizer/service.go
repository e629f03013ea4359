// Package normalizer merges free-text tags into a canonical vocabulary
// by fuzzy-matching them against a persisted mapping table.
package normalizer

import (
	"context"
	"slices"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/memvault/memvault/pkg/domain/interfaces"
	"github.com/memvault/memvault/pkg/domain/model"
	"github.com/memvault/memvault/pkg/utils/logging"
)

const (
	// acceptThreshold is the minimum similarity for a fuzzy match to be
	// accepted as the normalized tag.
	acceptThreshold = 0.75

	// learnThreshold is the minimum similarity for the raw input to be
	// persisted as a new alias of the matched standard.
	learnThreshold = 0.85
)

// Service normalizes tags against the mapping table. Mutations (alias
// learning, frequency counts) are persisted before control returns to
// the caller. The service assumes single-threaded cooperative use, the
// same as the queues that feed it.
type Service struct {
	repo     interfaces.TagMappingRepository
	seed     []*model.TagMapping
	mappings []*model.TagMapping
}

// Option is a functional option for Service configuration
type Option func(*Service)

// WithSeed overrides the built-in seed mapping table
func WithSeed(seed []*model.TagMapping) Option {
	return func(s *Service) {
		s.seed = seed
	}
}

// New loads the mapping table from the repository. An empty repository
// is seeded with the default table (persisted immediately), so a fresh
// install starts with a usable vocabulary.
func New(ctx context.Context, repo interfaces.TagMappingRepository, opts ...Option) (*Service, error) {
	s := &Service{
		repo: repo,
		seed: DefaultMappings(),
	}
	for _, opt := range opts {
		opt(s)
	}

	mappings, err := repo.GetAll(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load tag mappings")
	}

	if len(mappings) == 0 {
		mappings = cloneMappings(s.seed)
		if err := repo.ReplaceAll(ctx, mappings); err != nil {
			return nil, goerr.Wrap(err, "failed to seed tag mappings")
		}
		logging.From(ctx).Info("Seeded tag mapping table", "mappings", len(mappings))
	}

	s.mappings = mappings
	return s, nil
}

// NormalizeTag maps a raw tag to its canonical form. Exact matches
// against a standard or alias win immediately; otherwise the best
// fuzzy match above the accept threshold is used, and near-exact
// matches additionally register the raw input as a new alias. Input
// that matches nothing is returned unchanged.
func (s *Service) NormalizeTag(ctx context.Context, raw string) (string, error) {
	tag := strings.TrimSpace(raw)
	if tag == "" {
		return "", nil
	}

	// Exact match path
	for _, mapping := range s.mappings {
		if equalFold(mapping.Standard, tag) {
			if err := s.bumpFrequency(ctx, mapping); err != nil {
				return "", err
			}
			return mapping.Standard, nil
		}
		for _, alias := range mapping.Aliases {
			if equalFold(alias, tag) {
				if err := s.bumpFrequency(ctx, mapping); err != nil {
					return "", err
				}
				return mapping.Standard, nil
			}
		}
	}

	// Fuzzy match: score against every standard and alias; ties go to
	// the first-registered mapping because iteration order is stable.
	var best *model.TagMapping
	bestScore := 0.0
	for _, mapping := range s.mappings {
		score := similarity(tag, mapping.Standard)
		for _, alias := range mapping.Aliases {
			if aliasScore := similarity(tag, alias); aliasScore > score {
				score = aliasScore
			}
		}
		if score > acceptThreshold && score > bestScore {
			best = mapping
			bestScore = score
		}
	}

	if best == nil {
		// Low-confidence orphans stay as-is; they are not registered as
		// new standards.
		return tag, nil
	}

	if bestScore > learnThreshold && best.AddAlias(tag) {
		logging.From(ctx).Debug("Learned tag alias",
			"alias", tag, "standard", best.Standard, "similarity", bestScore)
	}
	best.Frequency++

	if err := s.persist(ctx); err != nil {
		return "", err
	}
	return best.Standard, nil
}

// NormalizeTags normalizes each tag and collapses the result to a
// unique set, keeping first-occurrence order.
func (s *Service) NormalizeTags(ctx context.Context, raws []string) ([]string, error) {
	result := make([]string, 0, len(raws))
	for _, raw := range raws {
		tag, err := s.NormalizeTag(ctx, raw)
		if err != nil {
			return nil, err
		}
		if tag == "" || slices.Contains(result, tag) {
			continue
		}
		result = append(result, tag)
	}
	return result, nil
}

// AddMapping registers a new mapping, or merges aliases into an
// existing mapping with the same standard.
func (s *Service) AddMapping(ctx context.Context, mapping *model.TagMapping) error {
	if err := mapping.Validate(); err != nil {
		return goerr.Wrap(err, "invalid tag mapping")
	}

	for _, existing := range s.mappings {
		if existing.Standard == mapping.Standard {
			for _, alias := range mapping.Aliases {
				existing.AddAlias(alias)
			}
			if mapping.Category != "" {
				existing.Category = mapping.Category
			}
			return s.persist(ctx)
		}
	}

	s.mappings = append(s.mappings, mapping.Clone())
	return s.persist(ctx)
}

// Mappings returns a copy of the current mapping table
func (s *Service) Mappings() []*model.TagMapping {
	return cloneMappings(s.mappings)
}

// Categories returns the distinct mapping categories in table order
func (s *Service) Categories() []string {
	var categories []string
	for _, mapping := range s.mappings {
		if mapping.Category != "" && !slices.Contains(categories, mapping.Category) {
			categories = append(categories, mapping.Category)
		}
	}
	return categories
}

// TagsByCategory returns the standard tags registered under a category
func (s *Service) TagsByCategory(category string) []string {
	var tags []string
	for _, mapping := range s.mappings {
		if mapping.Category == category {
			tags = append(tags, mapping.Standard)
		}
	}
	return tags
}

// Reset discards all learned aliases and frequencies, restoring the
// seed table.
func (s *Service) Reset(ctx context.Context) error {
	s.mappings = cloneMappings(s.seed)
	return s.persist(ctx)
}

func (s *Service) bumpFrequency(ctx context.Context, mapping *model.TagMapping) error {
	mapping.Frequency++
	return s.persist(ctx)
}

func (s *Service) persist(ctx context.Context) error {
	if err := s.repo.ReplaceAll(ctx, s.mappings); err != nil {
		return goerr.Wrap(err, "failed to persist tag mappings")
	}
	return nil
}

func equalFold(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

func cloneMappings(mappings []*model.TagMapping) []*model.TagMapping {
	copied := make([]*model.TagMapping, 0, len(mappings))
	for _, m := range mappings {
		copied = append(copied, m.Clone())
	}
	return copied
}
