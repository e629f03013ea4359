package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"
)

func cmdStats() *cli.Command {
	var base baseConfig

	return &cli.Command{
		Name:  "stats",
		Usage: "Show library usage and cloud sync statistics",
		Flags: base.flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			rt, closer, err := base.configure(ctx, nil)
			if err != nil {
				return err
			}
			defer closer()

			usage, err := rt.uc.Usage(ctx)
			if err != nil {
				return err
			}

			fmt.Printf("memes:     %d\n", usage.MemeCount)
			fmt.Printf("tags:      %d\n", usage.TagCount)
			fmt.Printf("favorites: %d\n", usage.FavoriteCount)
			for category, count := range usage.CategoryCounts {
				fmt.Printf("  %s: %d\n", category, count)
			}
			if len(usage.TopTags) > 0 {
				fmt.Println("top tags:")
				for _, tag := range usage.TopTags {
					fmt.Printf("  %s (%d)\n", tag.Tag, tag.Frequency)
				}
			}
			if len(usage.TopMemes) > 0 {
				fmt.Println("most shared:")
				for _, m := range usage.TopMemes {
					fmt.Printf("  %s (%d shares)\n", m.Meme.Title, m.Shares)
				}
			}

			stats, err := rt.cloud.Stats(ctx)
			if err != nil {
				return err
			}
			fmt.Println("cloud:")
			fmt.Printf("  synced: %d\n", stats.SyncedCount)
			fmt.Printf("  failed: %d\n", stats.FailedCount)
			fmt.Printf("  size:   %d bytes\n", stats.TotalSize)
			if stats.LastSyncTime > 0 {
				fmt.Printf("  last sync: %s\n",
					time.UnixMilli(stats.LastSyncTime).Format(time.RFC3339))
			}
			return nil
		},
	}
}
