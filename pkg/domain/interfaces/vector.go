package interfaces

import (
	"context"

	"github.com/voxlab-io/speakerid/pkg/domain/model"
	"github.com/voxlab-io/speakerid/pkg/domain/types"
)

// VectorIndex defines the interface for the shared embedding index. Two
// document shapes live in one index: instance vectors keyed by instance ID
// and profile vectors keyed by a prefixed ID namespace. Search results
// carry normalized similarity scores in [0, 1].
type VectorIndex interface {
	// UpsertInstance writes an instance vector document
	UpsertInstance(ctx context.Context, vec *model.InstanceVector) error

	// GetInstance retrieves an instance vector document
	GetInstance(ctx context.Context, ownerID types.OwnerID, id types.InstanceID) (*model.InstanceVector, error)

	// DeleteInstance removes an instance vector document. Deleting a missing
	// document is not an error.
	DeleteInstance(ctx context.Context, ownerID types.OwnerID, id types.InstanceID) error

	// UpsertProfile writes a profile vector document
	UpsertProfile(ctx context.Context, vec *model.ProfileVector) error

	// GetProfile retrieves a profile vector document
	GetProfile(ctx context.Context, ownerID types.OwnerID, id types.ProfileID) (*model.ProfileVector, error)

	// DeleteProfile removes a profile vector document. Deleting a missing
	// document is not an error.
	DeleteProfile(ctx context.Context, ownerID types.OwnerID, id types.ProfileID) error

	// SearchInstances runs kNN over the owner's instance vectors
	SearchInstances(ctx context.Context, ownerID types.OwnerID, query []float32, limit int) ([]*model.VectorMatch, error)

	// SearchProfiles runs kNN over the owner's profile vectors
	SearchProfiles(ctx context.Context, ownerID types.OwnerID, query []float32, limit int) ([]*model.VectorMatch, error)

	// HasInstances reports whether any instance vector exists for the owner.
	// kNN over an empty filtered set is undefined in some backends, so
	// callers check before searching.
	HasInstances(ctx context.Context, ownerID types.OwnerID) (bool, error)

	// HasProfiles reports whether any profile vector exists for the owner
	HasProfiles(ctx context.Context, ownerID types.OwnerID) (bool, error)

	// ListInstanceRecordings returns the owner's instance document IDs
	// grouped by the recording they reference. Used by reconciliation.
	ListInstanceRecordings(ctx context.Context, ownerID types.OwnerID) (map[types.RecordingID][]types.InstanceID, error)

	Close() error
}
