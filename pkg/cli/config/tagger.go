package config

import (
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/memvault/memvault/pkg/domain/interfaces"
	"github.com/memvault/memvault/pkg/service/tagger"
)

// Tagger holds CLI flags for the vision tag generator
type Tagger struct {
	enabled bool
	apiKey  string
	baseURL string
	model   string
	maxTags int
}

// Flags returns CLI flags for tagger configuration
func (x *Tagger) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:        "tagger-enabled",
			Usage:       "Enable automatic tag generation",
			Sources:     cli.EnvVars("MEMVAULT_TAGGER_ENABLED"),
			Destination: &x.enabled,
		},
		&cli.StringFlag{
			Name:        "tagger-api-key",
			Usage:       "API key for the vision endpoint",
			Sources:     cli.EnvVars("MEMVAULT_TAGGER_API_KEY", "OPENAI_API_KEY"),
			Destination: &x.apiKey,
		},
		&cli.StringFlag{
			Name:        "tagger-base-url",
			Usage:       "Base URL of the OpenAI compatible vision endpoint",
			Sources:     cli.EnvVars("MEMVAULT_TAGGER_BASE_URL"),
			Destination: &x.baseURL,
		},
		&cli.StringFlag{
			Name:        "tagger-model",
			Usage:       "Vision model name",
			Sources:     cli.EnvVars("MEMVAULT_TAGGER_MODEL"),
			Destination: &x.model,
		},
		&cli.IntFlag{
			Name:        "tagger-max-tags",
			Usage:       "Maximum number of tags to generate per image",
			Sources:     cli.EnvVars("MEMVAULT_TAGGER_MAX_TAGS"),
			Destination: &x.maxTags,
		},
	}
}

// LogAttrs returns log attributes for the tagger configuration
func (x *Tagger) LogAttrs() []slog.Attr {
	return []slog.Attr{
		slog.Bool("enabled", x.enabled),
		slog.Bool("has_api_key", x.apiKey != ""),
		slog.String("base_url", x.baseURL),
		slog.String("model", x.model),
		slog.Int("max_tags", x.maxTags),
	}
}

// Configure creates the tag generator client from the configured flags.
func (x *Tagger) Configure(store interfaces.ObjectStore) *tagger.Client {
	return tagger.New(store, tagger.Config{
		Enabled: x.enabled,
		APIKey:  x.apiKey,
		BaseURL: x.baseURL,
		Model:   x.model,
		MaxTags: x.maxTags,
	})
}
