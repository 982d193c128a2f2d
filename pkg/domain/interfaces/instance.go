package interfaces

import (
	"context"

	"github.com/voxlab-io/speakerid/pkg/domain/model"
	"github.com/voxlab-io/speakerid/pkg/domain/types"
)

// InstanceRepository defines the interface for SpeakerInstance persistence.
// All operations are owner-scoped; accessing another owner's instance fails
// with types.ErrPermissionDenied.
type InstanceRepository interface {
	// Create creates a new speaker instance
	Create(ctx context.Context, instance *model.SpeakerInstance) (*model.SpeakerInstance, error)

	// Get retrieves an instance by ID
	Get(ctx context.Context, ownerID types.OwnerID, id types.InstanceID) (*model.SpeakerInstance, error)

	// Update overwrites an existing instance
	Update(ctx context.Context, instance *model.SpeakerInstance) (*model.SpeakerInstance, error)

	// Delete deletes an instance by ID
	Delete(ctx context.Context, ownerID types.OwnerID, id types.InstanceID) error

	// ListByProfile retrieves all instances assigned to a profile
	ListByProfile(ctx context.Context, ownerID types.OwnerID, profileID types.ProfileID) ([]*model.SpeakerInstance, error)

	// ListByRecording retrieves all instances of one recording
	ListByRecording(ctx context.Context, ownerID types.OwnerID, recordingID types.RecordingID) ([]*model.SpeakerInstance, error)

	// ListRecordingIDs returns the set of recording IDs referenced by the
	// owner's instances. Used by reconciliation as the live set.
	ListRecordingIDs(ctx context.Context, ownerID types.OwnerID) ([]types.RecordingID, error)
}
