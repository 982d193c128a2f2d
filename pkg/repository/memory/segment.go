package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/voxlab-io/speakerid/pkg/domain/model"
	"github.com/voxlab-io/speakerid/pkg/domain/types"
)

type segmentRepository struct {
	mu       sync.RWMutex
	segments map[types.SegmentID]*model.TranscriptSegment
}

func newSegmentRepository() *segmentRepository {
	return &segmentRepository{
		segments: make(map[types.SegmentID]*model.TranscriptSegment),
	}
}

func copySegment(s *model.TranscriptSegment) *model.TranscriptSegment {
	copied := *s
	return &copied
}

func (r *segmentRepository) CreateBatch(ctx context.Context, segments []*model.TranscriptSegment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	for _, seg := range segments {
		created := copySegment(seg)
		if created.ID == "" {
			created.ID = types.NewSegmentID()
		}
		created.CreatedAt = now
		r.segments[created.ID] = created
	}
	return nil
}

func (r *segmentRepository) ListByInstance(ctx context.Context, ownerID types.OwnerID, instanceID types.InstanceID) ([]*model.TranscriptSegment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*model.TranscriptSegment, 0)
	for _, seg := range r.segments {
		if seg.OwnerID == ownerID && seg.InstanceID == instanceID {
			result = append(result, copySegment(seg))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].StartMS < result[j].StartMS })
	return result, nil
}

func (r *segmentRepository) CountByInstance(ctx context.Context, ownerID types.OwnerID, instanceID types.InstanceID) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, seg := range r.segments {
		if seg.OwnerID == ownerID && seg.InstanceID == instanceID {
			count++
		}
	}
	return count, nil
}

func (r *segmentRepository) ReassignInstance(ctx context.Context, ownerID types.OwnerID, from, to types.InstanceID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	moved := 0
	for _, seg := range r.segments {
		if seg.OwnerID == ownerID && seg.InstanceID == from {
			seg.InstanceID = to
			moved++
		}
	}
	return moved, nil
}
