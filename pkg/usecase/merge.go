package usecase

import (
	"context"
	"errors"

	"github.com/m-mizutani/goerr/v2"
	"github.com/voxlab-io/speakerid/pkg/domain/interfaces"
	"github.com/voxlab-io/speakerid/pkg/domain/model"
	"github.com/voxlab-io/speakerid/pkg/domain/types"
	"github.com/voxlab-io/speakerid/pkg/service/profile"
	"github.com/voxlab-io/speakerid/pkg/utils/async"
	"github.com/voxlab-io/speakerid/pkg/utils/lock"
	"github.com/voxlab-io/speakerid/pkg/utils/logging"
)

// MergeUseCase collapses two speaker instances of the same owner into one.
// The target keeps its own name and verification state.
type MergeUseCase struct {
	repo     interfaces.Repository
	index    interfaces.VectorIndex
	profiles *profile.Service
	locks    *lock.Keyed
	hook     InvalidationHook
}

// Merge moves every transcript segment from source to target, folds the
// embeddings together, deletes the source instance and its vector document,
// and recomputes any profile either instance contributed to. Returns the
// updated target.
func (uc *MergeUseCase) Merge(ctx context.Context, ownerID types.OwnerID, sourceID, targetID types.InstanceID) (*model.SpeakerInstance, error) {
	if sourceID == targetID {
		return nil, goerr.Wrap(types.ErrValidation, "cannot merge an instance into itself",
			goerr.V(types.InstanceIDKey, sourceID), goerr.T(types.TagValidation))
	}

	unlock := uc.locks.LockPair(string(sourceID), string(targetID))
	defer unlock()

	// both lookups are owner-scoped, which doubles as the same-owner guard
	source, err := uc.repo.Instance().Get(ctx, ownerID, sourceID)
	if err != nil {
		return nil, err
	}
	target, err := uc.repo.Instance().Get(ctx, ownerID, targetID)
	if err != nil {
		return nil, err
	}

	moved, err := uc.repo.Segment().ReassignInstance(ctx, ownerID, sourceID, targetID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to reassign segments",
			goerr.V(types.InstanceIDKey, sourceID), goerr.V("target_id", targetID))
	}

	if err := uc.mergeEmbeddings(ctx, ownerID, source, target); err != nil {
		return nil, err
	}

	if err := uc.index.DeleteInstance(ctx, ownerID, sourceID); err != nil {
		return nil, goerr.Wrap(err, "failed to delete source vector document",
			goerr.V(types.InstanceIDKey, sourceID), goerr.T(types.TagUpstream))
	}
	if err := uc.repo.Instance().Delete(ctx, ownerID, sourceID); err != nil {
		return nil, err
	}

	for _, profileID := range affectedProfiles(source, target) {
		if err := uc.profiles.Recompute(ctx, ownerID, profileID); err != nil {
			return nil, goerr.Wrap(err, "failed to recompute profile embedding after merge",
				goerr.V(types.ProfileIDKey, profileID))
		}
	}

	updated, err := uc.repo.Instance().Update(ctx, target)
	if err != nil {
		return nil, err
	}

	logging.From(ctx).Info("instances merged",
		"source_id", sourceID, "target_id", targetID, "segments_moved", moved)

	if uc.hook != nil {
		async.Dispatch(ctx, func(ctx context.Context) error {
			return uc.hook(ctx, ownerID, sourceID, targetID)
		})
	}

	return updated, nil
}

// mergeEmbeddings writes the elementwise mean to the target when both sides
// carry a vector. A missing vector on either side leaves the target's
// vector untouched.
func (uc *MergeUseCase) mergeEmbeddings(ctx context.Context, ownerID types.OwnerID, source, target *model.SpeakerInstance) error {
	srcVec, err := uc.index.GetInstance(ctx, ownerID, source.ID)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return nil
		}
		return goerr.Wrap(err, "failed to fetch source embedding",
			goerr.V(types.InstanceIDKey, source.ID), goerr.T(types.TagUpstream))
	}

	tgtVec, err := uc.index.GetInstance(ctx, ownerID, target.ID)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return nil
		}
		return goerr.Wrap(err, "failed to fetch target embedding",
			goerr.V(types.InstanceIDKey, target.ID), goerr.T(types.TagUpstream))
	}

	mean := model.MeanEmbedding(srcVec.Embedding, tgtVec.Embedding)
	if mean == nil {
		return goerr.Wrap(types.ErrDataInconsistency, "embedding dimensions disagree between merge candidates",
			goerr.V(types.InstanceIDKey, source.ID), goerr.V("target_id", target.ID),
			goerr.T(types.TagInconsistency))
	}

	if err := uc.index.UpsertInstance(ctx, &model.InstanceVector{
		InstanceID:  target.ID,
		OwnerID:     ownerID,
		RecordingID: target.RecordingID,
		Embedding:   mean,
	}); err != nil {
		return goerr.Wrap(err, "failed to write merged embedding",
			goerr.V(types.InstanceIDKey, target.ID), goerr.T(types.TagUpstream))
	}
	return nil
}

// affectedProfiles returns the distinct non-empty profile IDs referenced by
// the two instances
func affectedProfiles(source, target *model.SpeakerInstance) []types.ProfileID {
	var ids []types.ProfileID
	if source.ProfileID != "" {
		ids = append(ids, source.ProfileID)
	}
	if target.ProfileID != "" && target.ProfileID != source.ProfileID {
		ids = append(ids, target.ProfileID)
	}
	return ids
}
