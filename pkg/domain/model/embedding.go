package model

import (
	"github.com/voxlab-io/speakerid/pkg/domain/types"
)

// profileVectorPrefix separates profile vector documents from instance
// vector documents in the shared index key space. Instance docs use the
// raw instance ID.
const profileVectorPrefix = "profile:"

// ProfileVectorDocID returns the vector-store document ID for a profile.
func ProfileVectorDocID(id types.ProfileID) string {
	return profileVectorPrefix + string(id)
}

// InstanceVector is the vector-store record for one speaker instance.
type InstanceVector struct {
	InstanceID  types.InstanceID
	OwnerID     types.OwnerID
	RecordingID types.RecordingID
	Embedding   []float32
}

// ProfileVector is the vector-store record holding a profile's consolidated
// embedding together with the count of contributing instances.
type ProfileVector struct {
	ProfileID     types.ProfileID
	OwnerID       types.OwnerID
	InstanceCount int
	Embedding     []float32
}

// VectorMatch is a single kNN result. Score is normalized cosine
// similarity in [0, 1]. RecordingID is populated for instance-document
// matches so callers can enforce same-recording exclusion.
type VectorMatch struct {
	ID          string
	Score       float64
	RecordingID types.RecordingID
}

// MeanEmbedding computes the elementwise mean of two embeddings. Both must
// have the same dimension; returns nil otherwise.
func MeanEmbedding(a, b []float32) []float32 {
	if len(a) != len(b) || len(a) == 0 {
		return nil
	}
	mean := make([]float32, len(a))
	for i := range a {
		mean[i] = (a[i] + b[i]) / 2
	}
	return mean
}

// AverageEmbeddings computes the elementwise mean over a set of embeddings,
// skipping entries whose dimension does not match the first. Returns nil
// when no usable embedding is present.
func AverageEmbeddings(vectors [][]float32) []float32 {
	var sum []float64
	var dim, n int
	for _, v := range vectors {
		if len(v) == 0 {
			continue
		}
		if sum == nil {
			dim = len(v)
			sum = make([]float64, dim)
		}
		if len(v) != dim {
			continue
		}
		for i, x := range v {
			sum[i] += float64(x)
		}
		n++
	}
	if n == 0 {
		return nil
	}
	avg := make([]float32, dim)
	for i := range sum {
		avg[i] = float32(sum[i] / float64(n))
	}
	return avg
}
