package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
	"github.com/voxlab-io/speakerid/pkg/cli/config"
	"github.com/voxlab-io/speakerid/pkg/domain/types"
	"github.com/voxlab-io/speakerid/pkg/usecase"
	"github.com/voxlab-io/speakerid/pkg/utils/logging"
	"github.com/voxlab-io/speakerid/pkg/utils/safe"
)

func cmdReconcile() *cli.Command {
	var ownerID string
	var repoCfg config.Repository
	var vecCfg config.VectorIndex
	var engineCfg config.Engine

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "owner",
			Usage:       "Owner ID to reconcile (required)",
			Required:    true,
			Sources:     cli.EnvVars("SPEAKERID_OWNER_ID"),
			Destination: &ownerID,
		},
	}
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, vecCfg.Flags()...)
	flags = append(flags, engineCfg.Flags()...)

	return &cli.Command{
		Name:  "reconcile",
		Usage: "Remove vector index entries for recordings that no longer exist",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.Default()

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer safe.Close(ctx, repo)

			index, err := vecCfg.Configure(ctx, &repoCfg)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize vector index")
			}
			defer safe.Close(ctx, index)

			engine, err := engineCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to load engine config")
			}

			uc := usecase.New(repo, index, usecase.WithEngineConfig(engine))

			deleted, err := uc.Reconcile.Reconcile(ctx, types.OwnerID(ownerID))
			if err != nil {
				return goerr.Wrap(err, "reconciliation failed", goerr.V("owner_id", ownerID))
			}

			logger.Info("Reconciliation completed",
				"owner_id", ownerID,
				"deleted", deleted)
			return nil
		},
	}
}
