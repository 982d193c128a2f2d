package usecase

import (
	"context"
	"errors"

	"github.com/m-mizutani/goerr/v2"
	"github.com/voxlab-io/speakerid/pkg/domain/interfaces"
	"github.com/voxlab-io/speakerid/pkg/domain/model"
	"github.com/voxlab-io/speakerid/pkg/domain/types"
	"github.com/voxlab-io/speakerid/pkg/service/profile"
	"github.com/voxlab-io/speakerid/pkg/utils/logging"
)

// ProfileUseCase manages profile lifecycle. Deleting a profile unassigns
// its member instances rather than deleting them.
type ProfileUseCase struct {
	repo     interfaces.Repository
	profiles *profile.Service
}

// CreateProfile creates a profile with an owner-unique name
func (uc *ProfileUseCase) CreateProfile(ctx context.Context, ownerID types.OwnerID, name, description string) (*model.SpeakerProfile, error) {
	if name == "" {
		return nil, goerr.Wrap(types.ErrValidation, "profile name is required", goerr.T(types.TagValidation))
	}

	existing, err := uc.repo.Profile().GetByName(ctx, ownerID, name)
	if err == nil && existing != nil {
		return nil, goerr.Wrap(types.ErrValidation, "profile name already exists",
			goerr.V("name", name), goerr.T(types.TagValidation))
	}
	if err != nil && !errors.Is(err, types.ErrNotFound) {
		return nil, err
	}

	return uc.repo.Profile().Create(ctx, &model.SpeakerProfile{
		OwnerID:     ownerID,
		Name:        name,
		Description: description,
	})
}

// GetProfile retrieves one profile
func (uc *ProfileUseCase) GetProfile(ctx context.Context, ownerID types.OwnerID, id types.ProfileID) (*model.SpeakerProfile, error) {
	return uc.repo.Profile().Get(ctx, ownerID, id)
}

// ListProfiles retrieves all profiles of one owner
func (uc *ProfileUseCase) ListProfiles(ctx context.Context, ownerID types.OwnerID) ([]*model.SpeakerProfile, error) {
	return uc.repo.Profile().List(ctx, ownerID)
}

// DeleteProfile unassigns every member instance, removes the profile's
// vector document, and deletes the relational row.
func (uc *ProfileUseCase) DeleteProfile(ctx context.Context, ownerID types.OwnerID, id types.ProfileID) error {
	if _, err := uc.repo.Profile().Get(ctx, ownerID, id); err != nil {
		return err
	}

	members, err := uc.repo.Instance().ListByProfile(ctx, ownerID, id)
	if err != nil {
		return err
	}
	for _, member := range members {
		member.ProfileID = ""
		if _, err := uc.repo.Instance().Update(ctx, member); err != nil {
			return goerr.Wrap(err, "failed to unassign member instance",
				goerr.V(types.InstanceIDKey, member.ID), goerr.V(types.ProfileIDKey, id))
		}
	}

	if err := uc.profiles.DeleteProfileVector(ctx, ownerID, id); err != nil {
		return err
	}
	if err := uc.repo.Profile().Delete(ctx, ownerID, id); err != nil {
		return err
	}

	logging.From(ctx).Info("profile deleted",
		"profile_id", id, "unassigned_members", len(members))
	return nil
}
