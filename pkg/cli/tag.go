package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/memvault/memvault/pkg/cli/config"
)

func cmdTag() *cli.Command {
	var base baseConfig
	var taggerCfg config.Tagger

	flags := base.flags()
	flags = append(flags, taggerCfg.Flags()...)

	return &cli.Command{
		Name:  "tag",
		Usage: "Generate tags for memes that have none",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			rt, closer, err := base.configure(ctx, &taggerCfg)
			if err != nil {
				return err
			}
			defer closer()

			memes, err := rt.uc.ListMemes(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to list memes")
			}

			enqueued := 0
			for _, meme := range memes {
				if len(meme.Tags) > 0 {
					continue
				}
				rt.queue.Enqueue(ctx, meme.ID)
				enqueued++
			}
			if enqueued == 0 {
				fmt.Println("every meme already has tags")
				return nil
			}

			if err := rt.queue.Start(ctx); err != nil {
				return err
			}
			defer rt.queue.Stop()

			for rt.queue.Len() > 0 {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(200 * time.Millisecond):
				}
			}

			fmt.Printf("processed %d memes\n", enqueued)
			return nil
		},
	}
}
