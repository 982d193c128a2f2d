package model

import (
	"time"

	"github.com/voxlab-io/speakerid/pkg/domain/types"
)

// SpeakerProfile is a durable cross-recording speaker identity. Its
// consolidated embedding lives in the vector index; the relational row is
// authoritative for membership.
type SpeakerProfile struct {
	ID          types.ProfileID
	OwnerID     types.OwnerID
	Name        string
	Description string

	// InstanceCount is the number of instances contributing to the
	// consolidated embedding
	InstanceCount       int
	LastEmbeddingUpdate time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}
