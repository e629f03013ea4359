package config

import (
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"

	"github.com/memvault/memvault/pkg/domain/model"
)

// Mappings holds CLI flags for the tag mapping seed file
type Mappings struct {
	path string
}

// mappingsFile is the TOML layout of a seed file:
//
//	[[mapping]]
//	standard = "幽默"
//	aliases = ["搞笑", "有趣"]
//	category = "情绪"
type mappingsFile struct {
	Mapping []*model.TagMapping `toml:"mapping"`
}

// Flags returns CLI flags for mappings configuration
func (x *Mappings) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "mappings",
			Usage:       "TOML file seeding the tag mapping table (uses built-in defaults when omitted)",
			Sources:     cli.EnvVars("MEMVAULT_MAPPINGS"),
			Destination: &x.path,
		},
	}
}

// Load reads and validates the seed file. Returns nil when no file is
// configured so the caller falls back to the built-in defaults.
func (x *Mappings) Load() ([]*model.TagMapping, error) {
	if x.path == "" {
		return nil, nil
	}

	raw, err := os.ReadFile(x.path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read mappings file", goerr.V("path", x.path))
	}

	var file mappingsFile
	if err := toml.Unmarshal(raw, &file); err != nil {
		return nil, goerr.Wrap(ErrInvalidMappingsFile, err.Error(), goerr.V("path", x.path))
	}

	seen := map[string]bool{}
	for i, mapping := range file.Mapping {
		if err := mapping.Validate(); err != nil {
			return nil, goerr.Wrap(err, "invalid mapping", goerr.V("index", i))
		}
		if seen[mapping.Standard] {
			return nil, goerr.Wrap(ErrInvalidMappingsFile, "duplicate standard tag",
				goerr.V("standard", mapping.Standard))
		}
		seen[mapping.Standard] = true
	}
	return file.Mapping, nil
}
