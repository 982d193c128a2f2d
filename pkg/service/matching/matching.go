// Package matching runs k-nearest-neighbor queries against the vector
// index for profile and voice matching. Index failures degrade to empty
// results; suggestions are best-effort and must never fail a request.
package matching

import (
	"context"
	"sort"
	"strings"

	"github.com/voxlab-io/speakerid/pkg/domain/interfaces"
	"github.com/voxlab-io/speakerid/pkg/domain/model"
	"github.com/voxlab-io/speakerid/pkg/domain/model/config"
	"github.com/voxlab-io/speakerid/pkg/domain/types"
	"github.com/voxlab-io/speakerid/pkg/utils/errutil"
)

// ProfileMatch is a scored match against a profile's consolidated embedding
type ProfileMatch struct {
	ProfileID types.ProfileID
	Score     float64
}

// VoiceMatch is a scored match against another speaker instance
type VoiceMatch struct {
	InstanceID  types.InstanceID
	RecordingID types.RecordingID
	Score       float64
}

// Engine is the matching engine over the vector index
type Engine struct {
	index interfaces.VectorIndex
	cfg   *config.Engine
}

// New creates a matching engine. cfg may be nil, in which case the
// defaults apply.
func New(index interfaces.VectorIndex, cfg *config.Engine) *Engine {
	if cfg == nil {
		cfg = config.DefaultEngine()
	}
	return &Engine{index: index, cfg: cfg}
}

// FindProfileMatches returns owner-scoped profile candidates with
// similarity at or above threshold, sorted descending and capped at limit.
// The existence pre-check avoids issuing kNN over an empty filtered set,
// which the underlying index does not define.
func (e *Engine) FindProfileMatches(ctx context.Context, embedding []float32, ownerID types.OwnerID, threshold float64, limit int) []ProfileMatch {
	if limit <= 0 {
		limit = e.cfg.ProfileMatchLimit
	}

	ctx, cancel := context.WithTimeout(ctx, e.cfg.QueryTimeout)
	defer cancel()

	has, err := e.index.HasProfiles(ctx, ownerID)
	if err != nil {
		errutil.Handle(ctx, err, "profile existence check failed, degrading to empty matches")
		return nil
	}
	if !has {
		return nil
	}

	raw, err := e.index.SearchProfiles(ctx, ownerID, embedding, limit)
	if err != nil {
		errutil.Handle(ctx, err, "profile search failed, degrading to empty matches")
		return nil
	}

	matches := make([]ProfileMatch, 0, len(raw))
	for _, m := range raw {
		if m.Score < threshold {
			continue
		}
		profileID, ok := profileIDFromDocID(m.ID)
		if !ok {
			continue
		}
		matches = append(matches, ProfileMatch{ProfileID: profileID, Score: m.Score})
	}

	sort.Slice(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}

// FindVoiceMatches returns owner-scoped instance candidates with similarity
// at or above threshold, excluding the source instance and anything from
// the same recording. The result is intentionally oversized; the caller
// filters by label and groups by display name.
func (e *Engine) FindVoiceMatches(ctx context.Context, sourceID types.InstanceID, embedding []float32, ownerID types.OwnerID, excludeRecording types.RecordingID, threshold float64, limit int) []VoiceMatch {
	if limit <= 0 {
		limit = e.cfg.VoiceMatchLimit
	}

	ctx, cancel := context.WithTimeout(ctx, e.cfg.QueryTimeout)
	defer cancel()

	has, err := e.index.HasInstances(ctx, ownerID)
	if err != nil {
		errutil.Handle(ctx, err, "instance existence check failed, degrading to empty matches")
		return nil
	}
	if !has {
		return nil
	}

	// over-fetch to survive self and same-recording exclusion
	raw, err := e.index.SearchInstances(ctx, ownerID, embedding, limit+2)
	if err != nil {
		errutil.Handle(ctx, err, "voice search failed, degrading to empty matches")
		return nil
	}

	matches := make([]VoiceMatch, 0, len(raw))
	for _, m := range raw {
		if m.ID == string(sourceID) {
			continue
		}
		if excludeRecording != "" && m.RecordingID == excludeRecording {
			continue
		}
		if m.Score < threshold {
			continue
		}
		matches = append(matches, VoiceMatch{
			InstanceID:  types.InstanceID(m.ID),
			RecordingID: m.RecordingID,
			Score:       m.Score,
		})
	}

	sort.Slice(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}

// profileIDFromDocID strips the profile key-space prefix from a vector
// document ID. Instance documents never carry the prefix.
func profileIDFromDocID(docID string) (types.ProfileID, bool) {
	stripped := strings.TrimPrefix(docID, model.ProfileVectorDocID(""))
	if stripped == docID {
		return "", false
	}
	return types.ProfileID(stripped), true
}
