package interfaces

import (
	"context"

	"github.com/voxlab-io/speakerid/pkg/domain/model"
	"github.com/voxlab-io/speakerid/pkg/domain/types"
)

// ProfileRepository defines the interface for SpeakerProfile persistence
type ProfileRepository interface {
	// Create creates a new speaker profile
	Create(ctx context.Context, profile *model.SpeakerProfile) (*model.SpeakerProfile, error)

	// Get retrieves a profile by ID
	Get(ctx context.Context, ownerID types.OwnerID, id types.ProfileID) (*model.SpeakerProfile, error)

	// GetByName retrieves a profile by its owner-unique name
	GetByName(ctx context.Context, ownerID types.OwnerID, name string) (*model.SpeakerProfile, error)

	// Update overwrites an existing profile
	Update(ctx context.Context, profile *model.SpeakerProfile) (*model.SpeakerProfile, error)

	// Delete deletes a profile by ID. Member instances are unassigned by the
	// use case layer, not deleted.
	Delete(ctx context.Context, ownerID types.OwnerID, id types.ProfileID) error

	// List retrieves all profiles of one owner
	List(ctx context.Context, ownerID types.OwnerID) ([]*model.SpeakerProfile, error)
}
