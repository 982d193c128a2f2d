// Package profile maintains each profile's consolidated embedding as
// membership changes. Addition uses a cheap incremental running average;
// removal recomputes from scratch to avoid accumulated drift, falling back
// to a decrement approximation above a membership cap.
package profile

import (
	"context"
	"errors"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/voxlab-io/speakerid/pkg/domain/interfaces"
	"github.com/voxlab-io/speakerid/pkg/domain/model"
	"github.com/voxlab-io/speakerid/pkg/domain/model/config"
	"github.com/voxlab-io/speakerid/pkg/domain/types"
	"github.com/voxlab-io/speakerid/pkg/utils/lock"
	"github.com/voxlab-io/speakerid/pkg/utils/logging"
)

// Service maintains consolidated profile embeddings. All mutations against
// the same profile are serialized to avoid lost updates on the running
// average.
type Service struct {
	repo  interfaces.Repository
	index interfaces.VectorIndex
	cfg   *config.Engine
	locks *lock.Keyed
}

// New creates a profile embedding service. cfg may be nil, in which case
// the defaults apply.
func New(repo interfaces.Repository, index interfaces.VectorIndex, cfg *config.Engine) *Service {
	if cfg == nil {
		cfg = config.DefaultEngine()
	}
	return &Service{
		repo:  repo,
		index: index,
		cfg:   cfg,
		locks: lock.NewKeyed(),
	}
}

// AddInstance assigns an instance to a profile and folds its embedding into
// the consolidated average. Idempotent: an instance that is already a
// member (per the relational store) is a no-op.
func (s *Service) AddInstance(ctx context.Context, ownerID types.OwnerID, instanceID types.InstanceID, profileID types.ProfileID) error {
	unlock := s.locks.Lock(string(profileID))
	defer unlock()

	instance, err := s.repo.Instance().Get(ctx, ownerID, instanceID)
	if err != nil {
		return err
	}
	if instance.ProfileID == profileID {
		return nil
	}

	prof, err := s.repo.Profile().Get(ctx, ownerID, profileID)
	if err != nil {
		return err
	}

	vec, err := s.index.GetInstance(ctx, ownerID, instanceID)
	if err != nil && !errors.Is(err, types.ErrNotFound) {
		return goerr.Wrap(err, "failed to fetch instance embedding",
			goerr.V(types.InstanceIDKey, instanceID), goerr.T(types.TagUpstream))
	}

	instance.ProfileID = profileID
	if _, err := s.repo.Instance().Update(ctx, instance); err != nil {
		return err
	}

	if vec == nil {
		// membership without voice evidence; the consolidated embedding is
		// untouched and the instance does not count as contributing
		logging.From(ctx).Warn("instance has no embedding, profile embedding unchanged",
			"instance_id", instanceID, "profile_id", profileID)
		return nil
	}

	oldCount := prof.InstanceCount
	var embedding []float32
	if oldCount > 0 {
		current, err := s.index.GetProfile(ctx, ownerID, profileID)
		if err != nil && !errors.Is(err, types.ErrNotFound) {
			return goerr.Wrap(err, "failed to fetch profile embedding",
				goerr.V(types.ProfileIDKey, profileID), goerr.T(types.TagUpstream))
		}
		if current != nil {
			embedding = incrementalAverage(current.Embedding, oldCount, vec.Embedding)
		}
	}
	if embedding == nil {
		embedding = vec.Embedding
		oldCount = 0
	}

	return s.writeProfileVector(ctx, prof, embedding, oldCount+1)
}

// RemoveInstance unassigns an instance from a profile and rebuilds the
// consolidated embedding from the remaining members. Idempotent: removing
// a non-member is a no-op.
func (s *Service) RemoveInstance(ctx context.Context, ownerID types.OwnerID, instanceID types.InstanceID, profileID types.ProfileID) error {
	unlock := s.locks.Lock(string(profileID))
	defer unlock()

	instance, err := s.repo.Instance().Get(ctx, ownerID, instanceID)
	if err != nil {
		return err
	}
	if instance.ProfileID != profileID {
		return nil
	}

	prof, err := s.repo.Profile().Get(ctx, ownerID, profileID)
	if err != nil {
		return err
	}

	instance.ProfileID = ""
	if _, err := s.repo.Instance().Update(ctx, instance); err != nil {
		return err
	}

	if prof.InstanceCount > s.cfg.RecomputeCap {
		// bounded-cost approximation for very large memberships; exact
		// recomputation happens on the next merge or explicit recompute
		return s.removeByDecrement(ctx, prof, instanceID)
	}
	return s.recomputeLocked(ctx, prof)
}

// Recompute rebuilds a profile's consolidated embedding from scratch over
// all currently assigned instances. Used after merges and bulk corrections.
func (s *Service) Recompute(ctx context.Context, ownerID types.OwnerID, profileID types.ProfileID) error {
	unlock := s.locks.Lock(string(profileID))
	defer unlock()

	prof, err := s.repo.Profile().Get(ctx, ownerID, profileID)
	if err != nil {
		return err
	}
	return s.recomputeLocked(ctx, prof)
}

// DeleteProfileVector removes the profile's vector document when the
// profile itself is deleted.
func (s *Service) DeleteProfileVector(ctx context.Context, ownerID types.OwnerID, profileID types.ProfileID) error {
	unlock := s.locks.Lock(string(profileID))
	defer unlock()

	return s.index.DeleteProfile(ctx, ownerID, profileID)
}

func (s *Service) recomputeLocked(ctx context.Context, prof *model.SpeakerProfile) error {
	members, err := s.repo.Instance().ListByProfile(ctx, prof.OwnerID, prof.ID)
	if err != nil {
		return err
	}

	vectors := make([][]float32, 0, len(members))
	for _, member := range members {
		vec, err := s.index.GetInstance(ctx, prof.OwnerID, member.ID)
		if err != nil {
			if errors.Is(err, types.ErrNotFound) {
				continue
			}
			return goerr.Wrap(err, "failed to fetch member embedding",
				goerr.V(types.InstanceIDKey, member.ID), goerr.T(types.TagUpstream))
		}
		vectors = append(vectors, vec.Embedding)
	}

	embedding := model.AverageEmbeddings(vectors)
	if embedding == nil {
		if err := s.index.DeleteProfile(ctx, prof.OwnerID, prof.ID); err != nil {
			return err
		}
		return s.updateProfileCount(ctx, prof, 0)
	}
	return s.writeProfileVector(ctx, prof, embedding, len(vectors))
}

func (s *Service) removeByDecrement(ctx context.Context, prof *model.SpeakerProfile, instanceID types.InstanceID) error {
	current, err := s.index.GetProfile(ctx, prof.OwnerID, prof.ID)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return s.updateProfileCount(ctx, prof, 0)
		}
		return goerr.Wrap(err, "failed to fetch profile embedding",
			goerr.V(types.ProfileIDKey, prof.ID), goerr.T(types.TagUpstream))
	}

	vec, err := s.index.GetInstance(ctx, prof.OwnerID, instanceID)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			// nothing to subtract; the instance never contributed
			return nil
		}
		return goerr.Wrap(err, "failed to fetch instance embedding",
			goerr.V(types.InstanceIDKey, instanceID), goerr.T(types.TagUpstream))
	}

	count := prof.InstanceCount
	if count <= 1 {
		if err := s.index.DeleteProfile(ctx, prof.OwnerID, prof.ID); err != nil {
			return err
		}
		return s.updateProfileCount(ctx, prof, 0)
	}

	embedding := decrementAverage(current.Embedding, count, vec.Embedding)
	return s.writeProfileVector(ctx, prof, embedding, count-1)
}

func (s *Service) writeProfileVector(ctx context.Context, prof *model.SpeakerProfile, embedding []float32, count int) error {
	if err := s.index.UpsertProfile(ctx, &model.ProfileVector{
		ProfileID:     prof.ID,
		OwnerID:       prof.OwnerID,
		InstanceCount: count,
		Embedding:     embedding,
	}); err != nil {
		return goerr.Wrap(err, "failed to write profile embedding",
			goerr.V(types.ProfileIDKey, prof.ID), goerr.T(types.TagUpstream))
	}
	return s.updateProfileCount(ctx, prof, count)
}

func (s *Service) updateProfileCount(ctx context.Context, prof *model.SpeakerProfile, count int) error {
	prof.InstanceCount = count
	prof.LastEmbeddingUpdate = time.Now().UTC()
	_, err := s.repo.Profile().Update(ctx, prof)
	return err
}

// incrementalAverage folds one new vector into a running average of count
// elements: (avg*count + v) / (count+1)
func incrementalAverage(avg []float32, count int, v []float32) []float32 {
	if len(avg) != len(v) {
		return v
	}
	result := make([]float32, len(avg))
	n := float64(count)
	for i := range avg {
		result[i] = float32((float64(avg[i])*n + float64(v[i])) / (n + 1))
	}
	return result
}

// decrementAverage removes one vector from a running average of count
// elements: (avg*count - v) / (count-1)
func decrementAverage(avg []float32, count int, v []float32) []float32 {
	if len(avg) != len(v) || count <= 1 {
		return avg
	}
	result := make([]float32, len(avg))
	n := float64(count)
	for i := range avg {
		result[i] = float32((float64(avg[i])*n - float64(v[i])) / (n - 1))
	}
	return result
}
