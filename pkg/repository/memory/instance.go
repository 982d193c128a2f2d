package memory

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/voxlab-io/speakerid/pkg/domain/model"
	"github.com/voxlab-io/speakerid/pkg/domain/types"
)

type instanceRepository struct {
	mu        sync.RWMutex
	instances map[types.InstanceID]*model.SpeakerInstance
}

func newInstanceRepository() *instanceRepository {
	return &instanceRepository{
		instances: make(map[types.InstanceID]*model.SpeakerInstance),
	}
}

// copyInstance creates a deep copy of a speaker instance
func copyInstance(s *model.SpeakerInstance) *model.SpeakerInstance {
	copied := *s
	if s.SuggestedConfidence != nil {
		conf := *s.SuggestedConfidence
		copied.SuggestedConfidence = &conf
	}
	return &copied
}

func (r *instanceRepository) Create(ctx context.Context, instance *model.SpeakerInstance) (*model.SpeakerInstance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	created := copyInstance(instance)
	if created.ID == "" {
		created.ID = types.NewInstanceID()
	}
	if created.Provenance == "" {
		created.Provenance = types.HintProvenanceNone
	}
	created.CreatedAt = now
	created.UpdatedAt = now

	r.instances[created.ID] = created
	return copyInstance(created), nil
}

func (r *instanceRepository) Get(ctx context.Context, ownerID types.OwnerID, id types.InstanceID) (*model.SpeakerInstance, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	instance, exists := r.instances[id]
	if !exists {
		return nil, goerr.Wrap(types.ErrNotFound, "instance not found",
			goerr.V(types.InstanceIDKey, id), goerr.T(types.TagNotFound))
	}
	if instance.OwnerID != ownerID {
		return nil, goerr.Wrap(types.ErrPermissionDenied, "instance belongs to another owner",
			goerr.V(types.InstanceIDKey, id), goerr.T(types.TagPermissionDenied))
	}

	return copyInstance(instance), nil
}

func (r *instanceRepository) Update(ctx context.Context, instance *model.SpeakerInstance) (*model.SpeakerInstance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.instances[instance.ID]
	if !exists {
		return nil, goerr.Wrap(types.ErrNotFound, "instance not found",
			goerr.V(types.InstanceIDKey, instance.ID), goerr.T(types.TagNotFound))
	}
	if existing.OwnerID != instance.OwnerID {
		return nil, goerr.Wrap(types.ErrPermissionDenied, "instance belongs to another owner",
			goerr.V(types.InstanceIDKey, instance.ID), goerr.T(types.TagPermissionDenied))
	}

	updated := copyInstance(instance)
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now().UTC()

	r.instances[updated.ID] = updated
	return copyInstance(updated), nil
}

func (r *instanceRepository) Delete(ctx context.Context, ownerID types.OwnerID, id types.InstanceID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	instance, exists := r.instances[id]
	if !exists {
		return goerr.Wrap(types.ErrNotFound, "instance not found",
			goerr.V(types.InstanceIDKey, id), goerr.T(types.TagNotFound))
	}
	if instance.OwnerID != ownerID {
		return goerr.Wrap(types.ErrPermissionDenied, "instance belongs to another owner",
			goerr.V(types.InstanceIDKey, id), goerr.T(types.TagPermissionDenied))
	}

	delete(r.instances, id)
	return nil
}

func (r *instanceRepository) ListByProfile(ctx context.Context, ownerID types.OwnerID, profileID types.ProfileID) ([]*model.SpeakerInstance, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*model.SpeakerInstance, 0)
	for _, instance := range r.instances {
		if instance.OwnerID == ownerID && instance.ProfileID == profileID {
			result = append(result, copyInstance(instance))
		}
	}
	return result, nil
}

func (r *instanceRepository) ListByRecording(ctx context.Context, ownerID types.OwnerID, recordingID types.RecordingID) ([]*model.SpeakerInstance, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*model.SpeakerInstance, 0)
	for _, instance := range r.instances {
		if instance.OwnerID == ownerID && instance.RecordingID == recordingID {
			result = append(result, copyInstance(instance))
		}
	}
	return result, nil
}

func (r *instanceRepository) ListRecordingIDs(ctx context.Context, ownerID types.OwnerID) ([]types.RecordingID, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[types.RecordingID]bool)
	result := make([]types.RecordingID, 0)
	for _, instance := range r.instances {
		if instance.OwnerID == ownerID && !seen[instance.RecordingID] {
			seen[instance.RecordingID] = true
			result = append(result, instance.RecordingID)
		}
	}
	return result, nil
}
