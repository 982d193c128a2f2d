package memory

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/voxlab-io/speakerid/pkg/domain/interfaces"
	"github.com/voxlab-io/speakerid/pkg/domain/model"
	"github.com/voxlab-io/speakerid/pkg/domain/types"
)

// Memory is an in-memory VectorIndex using brute-force cosine similarity.
// Intended for tests and local development; it mirrors the production
// backend's owner scoping and document discrimination.
type Memory struct {
	mu        sync.RWMutex
	instances map[string]*model.InstanceVector
	profiles  map[string]*model.ProfileVector
}

var _ interfaces.VectorIndex = &Memory{}

func New() *Memory {
	return &Memory{
		instances: make(map[string]*model.InstanceVector),
		profiles:  make(map[string]*model.ProfileVector),
	}
}

func copyVec(v []float32) []float32 {
	cp := make([]float32, len(v))
	copy(cp, v)
	return cp
}

func (m *Memory) UpsertInstance(ctx context.Context, vec *model.InstanceVector) error {
	if len(vec.Embedding) == 0 {
		return goerr.New("instance vector must carry an embedding", goerr.V(types.InstanceIDKey, vec.InstanceID))
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	stored := *vec
	stored.Embedding = copyVec(vec.Embedding)
	m.instances[string(vec.InstanceID)] = &stored
	return nil
}

func (m *Memory) GetInstance(ctx context.Context, ownerID types.OwnerID, id types.InstanceID) (*model.InstanceVector, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	vec, exists := m.instances[string(id)]
	if !exists || vec.OwnerID != ownerID {
		return nil, goerr.Wrap(types.ErrNotFound, "instance vector not found",
			goerr.V(types.InstanceIDKey, id), goerr.T(types.TagNotFound))
	}

	found := *vec
	found.Embedding = copyVec(vec.Embedding)
	return &found, nil
}

func (m *Memory) DeleteInstance(ctx context.Context, ownerID types.OwnerID, id types.InstanceID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if vec, exists := m.instances[string(id)]; exists && vec.OwnerID == ownerID {
		delete(m.instances, string(id))
	}
	return nil
}

func (m *Memory) UpsertProfile(ctx context.Context, vec *model.ProfileVector) error {
	if len(vec.Embedding) == 0 {
		return goerr.New("profile vector must carry an embedding", goerr.V(types.ProfileIDKey, vec.ProfileID))
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	stored := *vec
	stored.Embedding = copyVec(vec.Embedding)
	m.profiles[model.ProfileVectorDocID(vec.ProfileID)] = &stored
	return nil
}

func (m *Memory) GetProfile(ctx context.Context, ownerID types.OwnerID, id types.ProfileID) (*model.ProfileVector, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	vec, exists := m.profiles[model.ProfileVectorDocID(id)]
	if !exists || vec.OwnerID != ownerID {
		return nil, goerr.Wrap(types.ErrNotFound, "profile vector not found",
			goerr.V(types.ProfileIDKey, id), goerr.T(types.TagNotFound))
	}

	found := *vec
	found.Embedding = copyVec(vec.Embedding)
	return &found, nil
}

func (m *Memory) DeleteProfile(ctx context.Context, ownerID types.OwnerID, id types.ProfileID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := model.ProfileVectorDocID(id)
	if vec, exists := m.profiles[key]; exists && vec.OwnerID == ownerID {
		delete(m.profiles, key)
	}
	return nil
}

func (m *Memory) SearchInstances(ctx context.Context, ownerID types.OwnerID, query []float32, limit int) ([]*model.VectorMatch, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	matches := make([]*model.VectorMatch, 0)
	for id, vec := range m.instances {
		if vec.OwnerID != ownerID {
			continue
		}
		matches = append(matches, &model.VectorMatch{
			ID:          id,
			Score:       CosineSimilarity(query, vec.Embedding),
			RecordingID: vec.RecordingID,
		})
	}
	return topK(matches, limit), nil
}

func (m *Memory) SearchProfiles(ctx context.Context, ownerID types.OwnerID, query []float32, limit int) ([]*model.VectorMatch, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	matches := make([]*model.VectorMatch, 0)
	for id, vec := range m.profiles {
		if vec.OwnerID != ownerID {
			continue
		}
		matches = append(matches, &model.VectorMatch{
			ID:    id,
			Score: CosineSimilarity(query, vec.Embedding),
		})
	}
	return topK(matches, limit), nil
}

func (m *Memory) HasInstances(ctx context.Context, ownerID types.OwnerID) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, vec := range m.instances {
		if vec.OwnerID == ownerID {
			return true, nil
		}
	}
	return false, nil
}

func (m *Memory) HasProfiles(ctx context.Context, ownerID types.OwnerID) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, vec := range m.profiles {
		if vec.OwnerID == ownerID {
			return true, nil
		}
	}
	return false, nil
}

func (m *Memory) ListInstanceRecordings(ctx context.Context, ownerID types.OwnerID) (map[types.RecordingID][]types.InstanceID, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make(map[types.RecordingID][]types.InstanceID)
	for _, vec := range m.instances {
		if vec.OwnerID == ownerID {
			result[vec.RecordingID] = append(result[vec.RecordingID], vec.InstanceID)
		}
	}
	return result, nil
}

func (m *Memory) Close() error {
	return nil
}

func topK(matches []*model.VectorMatch, limit int) []*model.VectorMatch {
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}

// CosineSimilarity returns normalized cosine similarity in [0, 1], where 1
// means identical direction. Mismatched dimensions or zero-norm vectors
// score 0.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		ai, bi := float64(a[i]), float64(b[i])
		dot += ai * bi
		normA += ai * ai
		normB += bi * bi
	}
	if normA == 0 || normB == 0 {
		return 0
	}

	cos := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	// map [-1, 1] onto [0, 1] to match the production backend's
	// distance-derived score
	return (cos + 1) / 2
}
