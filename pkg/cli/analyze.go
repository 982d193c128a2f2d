package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
	"github.com/voxlab-io/speakerid/pkg/cli/config"
	"github.com/voxlab-io/speakerid/pkg/domain/types"
	"github.com/voxlab-io/speakerid/pkg/service/namehint"
	"github.com/voxlab-io/speakerid/pkg/usecase"
	"github.com/voxlab-io/speakerid/pkg/utils/logging"
	"github.com/voxlab-io/speakerid/pkg/utils/safe"
)

func cmdAnalyze() *cli.Command {
	var ownerID string
	var instanceID string
	var repoCfg config.Repository
	var vecCfg config.VectorIndex
	var engineCfg config.Engine
	var geminiCfg config.Gemini

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "owner",
			Usage:       "Owner ID (required)",
			Required:    true,
			Sources:     cli.EnvVars("SPEAKERID_OWNER_ID"),
			Destination: &ownerID,
		},
		&cli.StringFlag{
			Name:        "instance-id",
			Usage:       "Speaker instance ID to analyze (required)",
			Required:    true,
			Destination: &instanceID,
		},
	}
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, vecCfg.Flags()...)
	flags = append(flags, engineCfg.Flags()...)
	flags = append(flags, geminiCfg.Flags()...)

	return &cli.Command{
		Name:  "analyze",
		Usage: "Run transcript content analysis for a single speaker instance",
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

			llmClient, err := geminiCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize Gemini client")
			}
			if llmClient == nil {
				return goerr.New("Gemini project ID is required for content analysis")
			}

			hintSvc, err := namehint.New(llmClient)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize content analysis service")
			}

			uc := usecase.New(repo, index,
				usecase.WithEngineConfig(engine),
				usecase.WithNameHint(hintSvc))

			instance, err := uc.Hint.AnalyzeInstance(ctx, types.OwnerID(ownerID), types.InstanceID(instanceID))
			if err != nil {
				return goerr.Wrap(err, "content analysis failed", goerr.V("instance_id", instanceID))
			}

			logger.Info("Content analysis completed",
				"instance_id", instance.ID,
				"suggested_name", instance.SuggestedName,
				"provenance", instance.Provenance)
			return nil
		},
	}
}
