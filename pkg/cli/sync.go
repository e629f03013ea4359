package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func cmdSync() *cli.Command {
	var all bool
	var base baseConfig

	flags := []cli.Flag{
		&cli.BoolFlag{
			Name:        "all",
			Usage:       "Enqueue every meme without a remote mirror before processing",
			Destination: &all,
		},
	}
	flags = append(flags, base.flags()...)

	return &cli.Command{
		Name:  "sync",
		Usage: "Process the cloud sync queue",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			rt, closer, err := base.configure(ctx, nil)
			if err != nil {
				return err
			}
			defer closer()

			cfg, err := rt.cloud.Config(ctx)
			if err != nil {
				return err
			}
			if !cfg.Enabled {
				fmt.Println("cloud backup is disabled, nothing to sync")
				return nil
			}

			if all {
				if err := rt.cloud.SyncAll(ctx); err != nil {
					return goerr.Wrap(err, "failed to enqueue memes")
				}
			}

			if err := rt.cloud.ProcessSyncQueue(ctx); err != nil {
				return goerr.Wrap(err, "failed to process sync queue")
			}

			// Enqueueing kicks background passes; wait until the
			// queue is fully drained before reporting.
			if err := waitForQueueDrain(ctx, rt); err != nil {
				return err
			}

			stats, err := rt.cloud.Stats(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("synced: %d, failed: %d, total size: %d bytes\n",
				stats.SyncedCount, stats.FailedCount, stats.TotalSize)
			return nil
		},
	}
}

func waitForQueueDrain(ctx context.Context, rt *runtime) error {
	for {
		queue, err := rt.repo.Cloud().GetSyncQueue(ctx)
		if err != nil {
			return err
		}
		if len(queue) == 0 {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(200 * time.Millisecond):
		}
	}
}
