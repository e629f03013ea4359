package config

import (
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/memvault/memvault/pkg/domain/model"
	"github.com/memvault/memvault/pkg/domain/types"
)

// Cloud holds CLI flags for updating the stored cloud configuration.
// Only flags the user actually set become part of the patch.
type Cloud struct {
	enabled     bool
	backendType string
	apiKey      string
	apiEndpoint string
	githubRepo  string
	githubToken string
	autoSync    bool
	syncOnWiFi  bool
	maxStorage  int
	quality     float64
	dedup       bool
}

// Flags returns CLI flags for cloud configuration
func (x *Cloud) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:        "cloud-enabled",
			Usage:       "Enable cloud backup",
			Sources:     cli.EnvVars("MEMVAULT_CLOUD_ENABLED"),
			Destination: &x.enabled,
		},
		&cli.StringFlag{
			Name:        "cloud-backend",
			Usage:       "Cloud backend type (imgur, sm.ms, github or custom)",
			Sources:     cli.EnvVars("MEMVAULT_CLOUD_BACKEND"),
			Destination: &x.backendType,
		},
		&cli.StringFlag{
			Name:        "cloud-api-key",
			Usage:       "API key for the image host",
			Sources:     cli.EnvVars("MEMVAULT_CLOUD_API_KEY"),
			Destination: &x.apiKey,
		},
		&cli.StringFlag{
			Name:        "cloud-api-endpoint",
			Usage:       "Upload endpoint for the custom backend",
			Sources:     cli.EnvVars("MEMVAULT_CLOUD_API_ENDPOINT"),
			Destination: &x.apiEndpoint,
		},
		&cli.StringFlag{
			Name:        "cloud-github-repo",
			Usage:       "GitHub repository (owner/repo) for the github backend",
			Sources:     cli.EnvVars("MEMVAULT_CLOUD_GITHUB_REPO"),
			Destination: &x.githubRepo,
		},
		&cli.StringFlag{
			Name:        "cloud-github-token",
			Usage:       "GitHub token for the github backend",
			Sources:     cli.EnvVars("MEMVAULT_CLOUD_GITHUB_TOKEN"),
			Destination: &x.githubToken,
		},
		&cli.BoolFlag{
			Name:        "cloud-auto-sync",
			Usage:       "Enqueue newly saved memes for upload automatically",
			Sources:     cli.EnvVars("MEMVAULT_CLOUD_AUTO_SYNC"),
			Destination: &x.autoSync,
		},
		&cli.BoolFlag{
			Name:        "cloud-sync-on-wifi",
			Usage:       "Only sync on WiFi",
			Sources:     cli.EnvVars("MEMVAULT_CLOUD_SYNC_ON_WIFI"),
			Destination: &x.syncOnWiFi,
		},
		&cli.IntFlag{
			Name:        "cloud-max-storage",
			Usage:       "Remote storage quota in MB",
			Sources:     cli.EnvVars("MEMVAULT_CLOUD_MAX_STORAGE"),
			Destination: &x.maxStorage,
		},
		&cli.FloatFlag{
			Name:        "cloud-compression-quality",
			Usage:       "JPEG quality for uploads (0-1)",
			Sources:     cli.EnvVars("MEMVAULT_CLOUD_COMPRESSION_QUALITY"),
			Destination: &x.quality,
		},
		&cli.BoolFlag{
			Name:        "cloud-deduplication",
			Usage:       "Skip uploading images whose pixels are already remote",
			Sources:     cli.EnvVars("MEMVAULT_CLOUD_DEDUPLICATION"),
			Destination: &x.dedup,
		},
	}
}

// LogAttrs returns log attributes for the cloud configuration
func (x *Cloud) LogAttrs() []slog.Attr {
	return []slog.Attr{
		slog.Bool("enabled", x.enabled),
		slog.String("backend", x.backendType),
		slog.Bool("has_api_key", x.apiKey != ""),
		slog.Bool("auto_sync", x.autoSync),
	}
}

// Patch builds a partial configuration update from the flags the user
// actually set on the command.
func (x *Cloud) Patch(cmd *cli.Command) *model.CloudConfigPatch {
	patch := &model.CloudConfigPatch{}
	if cmd.IsSet("cloud-enabled") {
		patch.Enabled = &x.enabled
	}
	if cmd.IsSet("cloud-backend") {
		t := types.BackendType(x.backendType)
		patch.Type = &t
	}
	if cmd.IsSet("cloud-api-key") {
		patch.APIKey = &x.apiKey
	}
	if cmd.IsSet("cloud-api-endpoint") {
		patch.APIEndpoint = &x.apiEndpoint
	}
	if cmd.IsSet("cloud-github-repo") {
		patch.GitHubRepo = &x.githubRepo
	}
	if cmd.IsSet("cloud-github-token") {
		patch.GitHubToken = &x.githubToken
	}
	if cmd.IsSet("cloud-auto-sync") {
		patch.AutoSync = &x.autoSync
	}
	if cmd.IsSet("cloud-sync-on-wifi") {
		patch.SyncOnWiFi = &x.syncOnWiFi
	}
	if cmd.IsSet("cloud-max-storage") {
		mb := int64(x.maxStorage)
		patch.MaxStorageSizeMB = &mb
	}
	if cmd.IsSet("cloud-compression-quality") {
		patch.CompressionQuality = &x.quality
	}
	if cmd.IsSet("cloud-deduplication") {
		patch.Deduplication = &x.dedup
	}
	return patch
}
