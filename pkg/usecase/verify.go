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

// VerifyUseCase applies user decisions on speaker identity. Re-verifying
// with the same decision is a no-op, not an error.
type VerifyUseCase struct {
	repo     interfaces.Repository
	profiles *profile.Service
}

// VerifyInput is one user decision on a speaker instance
type VerifyInput struct {
	InstanceID types.InstanceID
	Action     types.VerifyAction

	// ProfileID is required for accept
	ProfileID types.ProfileID

	// ProfileName is required for create_profile; unique per owner
	ProfileName string
}

// Verify applies the decision and returns the updated instance. The
// relational and vector mutations are one logical operation; a vector
// write failure propagates even after the relational write succeeded.
func (uc *VerifyUseCase) Verify(ctx context.Context, ownerID types.OwnerID, input VerifyInput) (*model.SpeakerInstance, error) {
	if !input.Action.IsValid() {
		return nil, goerr.Wrap(types.ErrValidation, "unknown verify action",
			goerr.V("action", input.Action), goerr.T(types.TagValidation))
	}

	instance, err := uc.repo.Instance().Get(ctx, ownerID, input.InstanceID)
	if err != nil {
		return nil, err
	}

	switch input.Action {
	case types.VerifyActionAccept:
		return uc.accept(ctx, ownerID, instance, input.ProfileID)
	case types.VerifyActionReject:
		return uc.reject(ctx, ownerID, instance)
	case types.VerifyActionCreateProfile:
		return uc.createProfile(ctx, ownerID, instance, input.ProfileName)
	default:
		return nil, goerr.Wrap(types.ErrValidation, "unknown verify action",
			goerr.V("action", input.Action), goerr.T(types.TagValidation))
	}
}

func (uc *VerifyUseCase) accept(ctx context.Context, ownerID types.OwnerID, instance *model.SpeakerInstance, profileID types.ProfileID) (*model.SpeakerInstance, error) {
	if profileID == "" {
		return nil, goerr.Wrap(types.ErrValidation, "accept requires a profile ID",
			goerr.V(types.InstanceIDKey, instance.ID), goerr.T(types.TagValidation))
	}

	prof, err := uc.repo.Profile().Get(ctx, ownerID, profileID)
	if err != nil {
		return nil, err
	}

	// moving between profiles drops the old membership first
	if instance.ProfileID != "" && instance.ProfileID != profileID {
		if err := uc.profiles.RemoveInstance(ctx, ownerID, instance.ID, instance.ProfileID); err != nil {
			return nil, err
		}
	}

	if err := uc.profiles.AddInstance(ctx, ownerID, instance.ID, profileID); err != nil {
		return nil, err
	}

	instance.ProfileID = profileID
	instance.DisplayName = prof.Name
	instance.Verified = true

	updated, err := uc.repo.Instance().Update(ctx, instance)
	if err != nil {
		return nil, err
	}

	logging.From(ctx).Info("instance verified",
		"instance_id", instance.ID, "profile_id", profileID, "action", types.VerifyActionAccept)
	return updated, nil
}

func (uc *VerifyUseCase) reject(ctx context.Context, ownerID types.OwnerID, instance *model.SpeakerInstance) (*model.SpeakerInstance, error) {
	if instance.ProfileID != "" {
		if err := uc.profiles.RemoveInstance(ctx, ownerID, instance.ID, instance.ProfileID); err != nil {
			return nil, err
		}
	}

	instance.ProfileID = ""
	instance.Verified = true
	instance.SuggestedName = ""
	instance.SuggestedConfidence = nil
	instance.Provenance = types.HintProvenanceNone

	updated, err := uc.repo.Instance().Update(ctx, instance)
	if err != nil {
		return nil, err
	}

	logging.From(ctx).Info("instance verified",
		"instance_id", instance.ID, "action", types.VerifyActionReject)
	return updated, nil
}

func (uc *VerifyUseCase) createProfile(ctx context.Context, ownerID types.OwnerID, instance *model.SpeakerInstance, name string) (*model.SpeakerInstance, error) {
	if name == "" {
		return nil, goerr.Wrap(types.ErrValidation, "create_profile requires a profile name",
			goerr.V(types.InstanceIDKey, instance.ID), goerr.T(types.TagValidation))
	}

	existing, err := uc.repo.Profile().GetByName(ctx, ownerID, name)
	if err == nil && existing != nil {
		return nil, goerr.Wrap(types.ErrValidation, "profile name already exists",
			goerr.V("name", name), goerr.T(types.TagValidation))
	}
	if err != nil && !errors.Is(err, types.ErrNotFound) {
		return nil, err
	}

	prof, err := uc.repo.Profile().Create(ctx, &model.SpeakerProfile{
		OwnerID: ownerID,
		Name:    name,
	})
	if err != nil {
		return nil, err
	}

	if err := uc.profiles.AddInstance(ctx, ownerID, instance.ID, prof.ID); err != nil {
		return nil, err
	}

	instance.ProfileID = prof.ID
	instance.DisplayName = prof.Name
	instance.Verified = true

	updated, err := uc.repo.Instance().Update(ctx, instance)
	if err != nil {
		return nil, err
	}

	logging.From(ctx).Info("instance verified with new profile",
		"instance_id", instance.ID, "profile_id", prof.ID, "name", name)
	return updated, nil
}
