package config

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/memvault/memvault/pkg/domain/interfaces"
	"github.com/memvault/memvault/pkg/service/cloud"
)

// Storage holds CLI flags for the local image blob store
type Storage struct {
	dataDir string
}

// Flags returns CLI flags for storage configuration
func (x *Storage) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "data-dir",
			Usage:       "Directory holding stored images",
			Value:       "data",
			Sources:     cli.EnvVars("MEMVAULT_DATA_DIR"),
			Destination: &x.dataDir,
		},
	}
}

// Configure creates the filesystem object store
func (x *Storage) Configure() (interfaces.ObjectStore, error) {
	store, err := cloud.NewFileStore(x.dataDir)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to initialize object store")
	}
	return store, nil
}
