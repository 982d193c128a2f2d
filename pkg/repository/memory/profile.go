package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/voxlab-io/speakerid/pkg/domain/model"
	"github.com/voxlab-io/speakerid/pkg/domain/types"
)

type profileRepository struct {
	mu       sync.RWMutex
	profiles map[types.ProfileID]*model.SpeakerProfile
}

func newProfileRepository() *profileRepository {
	return &profileRepository{
		profiles: make(map[types.ProfileID]*model.SpeakerProfile),
	}
}

func copyProfile(p *model.SpeakerProfile) *model.SpeakerProfile {
	copied := *p
	return &copied
}

func (r *profileRepository) Create(ctx context.Context, profile *model.SpeakerProfile) (*model.SpeakerProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range r.profiles {
		if p.OwnerID == profile.OwnerID && strings.EqualFold(p.Name, profile.Name) {
			return nil, goerr.Wrap(types.ErrValidation, "profile name already exists",
				goerr.V("name", profile.Name), goerr.T(types.TagValidation))
		}
	}

	now := time.Now().UTC()
	created := copyProfile(profile)
	if created.ID == "" {
		created.ID = types.NewProfileID()
	}
	created.CreatedAt = now
	created.UpdatedAt = now

	r.profiles[created.ID] = created
	return copyProfile(created), nil
}

func (r *profileRepository) Get(ctx context.Context, ownerID types.OwnerID, id types.ProfileID) (*model.SpeakerProfile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	profile, exists := r.profiles[id]
	if !exists {
		return nil, goerr.Wrap(types.ErrNotFound, "profile not found",
			goerr.V(types.ProfileIDKey, id), goerr.T(types.TagNotFound))
	}
	if profile.OwnerID != ownerID {
		return nil, goerr.Wrap(types.ErrPermissionDenied, "profile belongs to another owner",
			goerr.V(types.ProfileIDKey, id), goerr.T(types.TagPermissionDenied))
	}

	return copyProfile(profile), nil
}

func (r *profileRepository) GetByName(ctx context.Context, ownerID types.OwnerID, name string) (*model.SpeakerProfile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, profile := range r.profiles {
		if profile.OwnerID == ownerID && strings.EqualFold(profile.Name, name) {
			return copyProfile(profile), nil
		}
	}
	return nil, goerr.Wrap(types.ErrNotFound, "profile not found",
		goerr.V("name", name), goerr.T(types.TagNotFound))
}

func (r *profileRepository) Update(ctx context.Context, profile *model.SpeakerProfile) (*model.SpeakerProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.profiles[profile.ID]
	if !exists {
		return nil, goerr.Wrap(types.ErrNotFound, "profile not found",
			goerr.V(types.ProfileIDKey, profile.ID), goerr.T(types.TagNotFound))
	}
	if existing.OwnerID != profile.OwnerID {
		return nil, goerr.Wrap(types.ErrPermissionDenied, "profile belongs to another owner",
			goerr.V(types.ProfileIDKey, profile.ID), goerr.T(types.TagPermissionDenied))
	}

	updated := copyProfile(profile)
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now().UTC()

	r.profiles[updated.ID] = updated
	return copyProfile(updated), nil
}

func (r *profileRepository) Delete(ctx context.Context, ownerID types.OwnerID, id types.ProfileID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	profile, exists := r.profiles[id]
	if !exists {
		return goerr.Wrap(types.ErrNotFound, "profile not found",
			goerr.V(types.ProfileIDKey, id), goerr.T(types.TagNotFound))
	}
	if profile.OwnerID != ownerID {
		return goerr.Wrap(types.ErrPermissionDenied, "profile belongs to another owner",
			goerr.V(types.ProfileIDKey, id), goerr.T(types.TagPermissionDenied))
	}

	delete(r.profiles, id)
	return nil
}

func (r *profileRepository) List(ctx context.Context, ownerID types.OwnerID) ([]*model.SpeakerProfile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*model.SpeakerProfile, 0)
	for _, profile := range r.profiles {
		if profile.OwnerID == ownerID {
			result = append(result, copyProfile(profile))
		}
	}
	return result, nil
}
