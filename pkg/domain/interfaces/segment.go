package interfaces

import (
	"context"

	"github.com/voxlab-io/speakerid/pkg/domain/model"
	"github.com/voxlab-io/speakerid/pkg/domain/types"
)

// SegmentRepository defines the interface for transcript segment
// attribution. Only enough surface for merge to reassign references.
type SegmentRepository interface {
	// CreateBatch stores a batch of segments
	CreateBatch(ctx context.Context, segments []*model.TranscriptSegment) error

	// ListByInstance retrieves all segments attributed to an instance
	ListByInstance(ctx context.Context, ownerID types.OwnerID, instanceID types.InstanceID) ([]*model.TranscriptSegment, error)

	// CountByInstance counts segments attributed to an instance
	CountByInstance(ctx context.Context, ownerID types.OwnerID, instanceID types.InstanceID) (int, error)

	// ReassignInstance moves every segment reference from one instance to
	// another and returns the number of segments moved
	ReassignInstance(ctx context.Context, ownerID types.OwnerID, from, to types.InstanceID) (int, error)
}
