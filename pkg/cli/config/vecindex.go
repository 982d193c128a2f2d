package config

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
	"github.com/voxlab-io/speakerid/pkg/domain/interfaces"
	"github.com/voxlab-io/speakerid/pkg/utils/logging"
	vecfs "github.com/voxlab-io/speakerid/pkg/vecindex/firestore"
	vecmem "github.com/voxlab-io/speakerid/pkg/vecindex/memory"
)

// VectorIndex holds CLI flags for the embedding index. It defaults to the
// same Firestore project as the metadata store.
type VectorIndex struct {
	backend string
}

// Flags returns CLI flags for vector index configuration
func (v *VectorIndex) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "vecindex-backend",
			Usage:       "Vector index backend (firestore or memory)",
			Value:       "firestore",
			Sources:     cli.EnvVars("SPEAKERID_VECINDEX_BACKEND"),
			Destination: &v.backend,
		},
	}
}

// Configure initializes the vector index, reusing the repository's Firestore
// settings for the firestore backend. The caller owns Close().
func (v *VectorIndex) Configure(ctx context.Context, repoCfg *Repository) (interfaces.VectorIndex, error) {
	switch v.backend {
	case "firestore":
		if repoCfg.ProjectID() == "" {
			return nil, goerr.New("firestore-project-id is required when using firestore vector index")
		}
		var opts []vecfs.Option
		if repoCfg.CollectionPrefix() != "" {
			opts = append(opts, vecfs.WithCollectionPrefix(repoCfg.CollectionPrefix()))
		}
		index, err := vecfs.New(ctx, repoCfg.ProjectID(), repoCfg.DatabaseID(), opts...)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to initialize firestore vector index")
		}
		logging.Default().Info("Using Firestore vector index",
			"project_id", repoCfg.ProjectID(),
			"database_id", repoCfg.DatabaseID(),
		)
		return index, nil

	case "memory":
		logging.Default().Info("Using in-memory vector index (development mode)")
		return vecmem.New(), nil

	default:
		return nil, goerr.New("invalid vector index backend", goerr.V("backend", v.backend))
	}
}
