package usecase

import (
	"context"
	"sync/atomic"

	"github.com/m-mizutani/goerr/v2"
	"github.com/voxlab-io/speakerid/pkg/domain/interfaces"
	"github.com/voxlab-io/speakerid/pkg/domain/types"
	"github.com/voxlab-io/speakerid/pkg/utils/logging"
	"golang.org/x/sync/errgroup"
)

// reconcileConcurrency bounds parallel vector deletions per run
const reconcileConcurrency = 4

// ReconcileUseCase repairs drift between the relational store and the
// vector index. The vector index is derived data; anything it references
// that the relational store no longer knows is an orphan.
type ReconcileUseCase struct {
	repo  interfaces.Repository
	index interfaces.VectorIndex
}

// Reconcile deletes instance vector documents whose recording no longer
// exists in the relational store. Returns the number of deleted documents.
// Invoked on demand, never scheduled.
func (uc *ReconcileUseCase) Reconcile(ctx context.Context, ownerID types.OwnerID) (int, error) {
	recordingIDs, err := uc.repo.Instance().ListRecordingIDs(ctx, ownerID)
	if err != nil {
		return 0, err
	}
	live := make(map[types.RecordingID]struct{}, len(recordingIDs))
	for _, id := range recordingIDs {
		live[id] = struct{}{}
	}

	indexed, err := uc.index.ListInstanceRecordings(ctx, ownerID)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to list indexed recordings",
			goerr.V(types.OwnerIDKey, ownerID), goerr.T(types.TagUpstream))
	}

	var deleted atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(reconcileConcurrency)

	for recordingID, instanceIDs := range indexed {
		if _, ok := live[recordingID]; ok {
			continue
		}
		recordingID, instanceIDs := recordingID, instanceIDs
		g.Go(func() error {
			for _, instanceID := range instanceIDs {
				if err := uc.index.DeleteInstance(gctx, ownerID, instanceID); err != nil {
					return goerr.Wrap(err, "failed to delete orphaned vector document",
						goerr.V(types.InstanceIDKey, instanceID),
						goerr.V(types.RecordingIDKey, recordingID),
						goerr.T(types.TagUpstream))
				}
				deleted.Add(1)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return int(deleted.Load()), err
	}

	count := int(deleted.Load())
	logging.From(ctx).Info("reconciliation finished",
		"owner_id", ownerID, "deleted", count)
	return count, nil
}
