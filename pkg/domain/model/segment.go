package model

import (
	"time"

	"github.com/voxlab-io/speakerid/pkg/domain/types"
)

// TranscriptSegment is a span of transcript attributed to one speaker
// instance. Only the attribution is managed here; full transcript storage
// belongs to the surrounding CRUD layer.
type TranscriptSegment struct {
	ID          types.SegmentID
	OwnerID     types.OwnerID
	RecordingID types.RecordingID
	InstanceID  types.InstanceID
	StartMS     int64
	EndMS       int64
	Text        string
	CreatedAt   time.Time
}
