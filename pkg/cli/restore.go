package cli

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func cmdRestore() *cli.Command {
	var base baseConfig

	return &cli.Command{
		Name:  "restore",
		Usage: "Rebuild the local library from the cloud backend listing",
		Flags: base.flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			rt, closer, err := base.configure(ctx, nil)
			if err != nil {
				return err
			}
			defer closer()

			restored, err := rt.cloud.RestoreFromCloud(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to restore from cloud")
			}

			fmt.Printf("restored %d memes\n", restored)
			return nil
		},
	}
}
