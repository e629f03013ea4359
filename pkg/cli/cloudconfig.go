package cli

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/memvault/memvault/pkg/cli/config"
	"github.com/memvault/memvault/pkg/domain/model"
)

func cmdConfig() *cli.Command {
	var base baseConfig
	var cloudCfg config.Cloud

	flags := base.flags()
	flags = append(flags, cloudCfg.Flags()...)

	return &cli.Command{
		Name:  "config",
		Usage: "Show or update the cloud backup configuration",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			rt, closer, err := base.configure(ctx, nil)
			if err != nil {
				return err
			}
			defer closer()

			patch := cloudCfg.Patch(c)

			var cfg *model.CloudConfig
			if *patch == (model.CloudConfigPatch{}) {
				cfg, err = rt.cloud.Config(ctx)
				if err != nil {
					return err
				}
			} else {
				cfg, err = rt.cloud.UpdateConfig(ctx, patch)
				if err != nil {
					return goerr.Wrap(err, "failed to update cloud configuration")
				}
			}

			printCloudConfig(cfg)
			return nil
		},
	}
}

func printCloudConfig(cfg *model.CloudConfig) {
	fmt.Printf("enabled:             %v\n", cfg.Enabled)
	fmt.Printf("backend:             %s\n", cfg.Type)
	fmt.Printf("api key:             %s\n", maskSecret(cfg.APIKey))
	if cfg.APIEndpoint != "" {
		fmt.Printf("api endpoint:        %s\n", cfg.APIEndpoint)
	}
	if cfg.GitHubRepo != "" {
		fmt.Printf("github repo:         %s\n", cfg.GitHubRepo)
	}
	fmt.Printf("github token:        %s\n", maskSecret(cfg.GitHubToken))
	fmt.Printf("auto sync:           %v\n", cfg.AutoSync)
	fmt.Printf("sync on wifi:        %v\n", cfg.SyncOnWiFi)
	fmt.Printf("max storage:         %d MB\n", cfg.MaxStorageSizeMB)
	fmt.Printf("compression quality: %.2f\n", cfg.CompressionQuality)
	fmt.Printf("deduplication:       %v\n", cfg.Deduplication)
}

func maskSecret(s string) string {
	if s == "" {
		return "(not set)"
	}
	return "(set)"
}
