package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/memvault/memvault/pkg/cli/config"
	"github.com/memvault/memvault/pkg/domain/interfaces"
	"github.com/memvault/memvault/pkg/service/cloud"
	"github.com/memvault/memvault/pkg/service/normalizer"
	"github.com/memvault/memvault/pkg/service/tagqueue"
	"github.com/memvault/memvault/pkg/usecase"
	"github.com/memvault/memvault/pkg/utils/logging"
)

// baseConfig bundles the flags every command needs: where records
// live, where image blobs live, and how tags are normalized.
type baseConfig struct {
	repoCfg     config.Repository
	storageCfg  config.Storage
	mappingsCfg config.Mappings
}

func (x *baseConfig) flags() []cli.Flag {
	flags := x.repoCfg.Flags()
	flags = append(flags, x.storageCfg.Flags()...)
	flags = append(flags, x.mappingsCfg.Flags()...)
	return flags
}

// runtime holds the wired service stack for one command invocation
type runtime struct {
	repo       interfaces.Repository
	store      interfaces.ObjectStore
	normalizer *normalizer.Service
	cloud      *cloud.Service
	queue      *tagqueue.Queue
	uc         *usecase.UseCases
}

// configure builds the service stack from the parsed flags. When a
// tagger configuration is given, the tag generation queue is wired in
// as well. The returned closer releases the repository.
func (x *baseConfig) configure(ctx context.Context, taggerCfg *config.Tagger) (*runtime, func(), error) {
	repo, err := x.repoCfg.Configure(ctx)
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to initialize repository")
	}
	closer := func() {
		if err := repo.Close(); err != nil {
			logging.Default().Error("failed to close repository", "error", err.Error())
		}
	}

	store, err := x.storageCfg.Configure()
	if err != nil {
		closer()
		return nil, nil, err
	}

	seed, err := x.mappingsCfg.Load()
	if err != nil {
		closer()
		return nil, nil, err
	}
	var normOpts []normalizer.Option
	if seed != nil {
		normOpts = append(normOpts, normalizer.WithSeed(seed))
	}
	norm, err := normalizer.New(ctx, repo.TagMapping(), normOpts...)
	if err != nil {
		closer()
		return nil, nil, goerr.Wrap(err, "failed to initialize tag normalizer")
	}

	cloudSvc := cloud.New(repo, store)
	ucOpts := []usecase.Option{usecase.WithCloud(cloudSvc)}

	rt := &runtime{
		repo:       repo,
		store:      store,
		normalizer: norm,
		cloud:      cloudSvc,
	}
	if taggerCfg != nil {
		rt.queue = tagqueue.New(repo, taggerCfg.Configure(store))
		ucOpts = append(ucOpts, usecase.WithTagQueue(rt.queue))
	}
	rt.uc = usecase.New(repo, store, norm, ucOpts...)
	return rt, closer, nil
}
