package matching_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/voxlab-io/speakerid/pkg/domain/model"
	"github.com/voxlab-io/speakerid/pkg/domain/model/config"
	"github.com/voxlab-io/speakerid/pkg/domain/types"
	"github.com/voxlab-io/speakerid/pkg/service/matching"
	"github.com/voxlab-io/speakerid/pkg/vecindex/memory"
)

const testOwner = types.OwnerID("owner-a")

func TestFindProfileMatches(t *testing.T) {
	ctx := context.Background()

	t.Run("empty index short-circuits", func(t *testing.T) {
		engine := matching.New(memory.New(), nil)
		matches := engine.FindProfileMatches(ctx, []float32{1, 0}, testOwner, 0.5, 10)
		gt.Number(t, len(matches)).Equal(0)
	})

	t.Run("threshold and ordering", func(t *testing.T) {
		idx := memory.New()
		gt.NoError(t, idx.UpsertProfile(ctx, &model.ProfileVector{
			ProfileID: "p-close", OwnerID: testOwner, InstanceCount: 3, Embedding: []float32{1, 0},
		}))
		gt.NoError(t, idx.UpsertProfile(ctx, &model.ProfileVector{
			ProfileID: "p-far", OwnerID: testOwner, InstanceCount: 1, Embedding: []float32{-1, 0},
		}))

		engine := matching.New(idx, nil)
		matches := engine.FindProfileMatches(ctx, []float32{1, 0}, testOwner, 0.5, 10)
		gt.Number(t, len(matches)).Equal(1)
		gt.Value(t, matches[0].ProfileID).Equal(types.ProfileID("p-close"))
		gt.Number(t, matches[0].Score).Equal(1.0)
	})

	t.Run("owner isolation", func(t *testing.T) {
		idx := memory.New()
		gt.NoError(t, idx.UpsertProfile(ctx, &model.ProfileVector{
			ProfileID: "p-other", OwnerID: "owner-b", InstanceCount: 1, Embedding: []float32{1, 0},
		}))

		engine := matching.New(idx, nil)
		matches := engine.FindProfileMatches(ctx, []float32{1, 0}, testOwner, 0.0, 10)
		gt.Number(t, len(matches)).Equal(0)
	})

	t.Run("monotonic in threshold", func(t *testing.T) {
		idx := memory.New()
		vectors := [][]float32{{1, 0}, {0.8, 0.2}, {0.5, 0.5}, {0, 1}}
		for i, v := range vectors {
			gt.NoError(t, idx.UpsertProfile(ctx, &model.ProfileVector{
				ProfileID: types.ProfileID(string(rune('a' + i))), OwnerID: testOwner,
				InstanceCount: 1, Embedding: v,
			}))
		}

		engine := matching.New(idx, nil)
		loose := engine.FindProfileMatches(ctx, []float32{1, 0}, testOwner, 0.5, 10)
		strict := engine.FindProfileMatches(ctx, []float32{1, 0}, testOwner, 0.9, 10)

		gt.Bool(t, len(strict) <= len(loose)).True()
		looseIDs := make(map[types.ProfileID]bool)
		for _, m := range loose {
			looseIDs[m.ProfileID] = true
		}
		for _, m := range strict {
			gt.Bool(t, looseIDs[m.ProfileID]).True()
		}
	})
}

func TestFindVoiceMatches(t *testing.T) {
	ctx := context.Background()
	cfg := config.DefaultEngine()

	seed := func(idx *memory.Memory) {
		vecs := []*model.InstanceVector{
			{InstanceID: "src", OwnerID: testOwner, RecordingID: "rec-1", Embedding: []float32{1, 0}},
			{InstanceID: "same-rec", OwnerID: testOwner, RecordingID: "rec-1", Embedding: []float32{1, 0}},
			{InstanceID: "other-rec", OwnerID: testOwner, RecordingID: "rec-2", Embedding: []float32{0.95, 0.05}},
			{InstanceID: "dissimilar", OwnerID: testOwner, RecordingID: "rec-3", Embedding: []float32{-1, 0}},
		}
		for _, v := range vecs {
			gt.NoError(t, idx.UpsertInstance(ctx, v))
		}
	}

	t.Run("excludes self and same recording", func(t *testing.T) {
		idx := memory.New()
		seed(idx)

		engine := matching.New(idx, cfg)
		matches := engine.FindVoiceMatches(ctx, "src", []float32{1, 0}, testOwner, "rec-1", 0.5, 50)
		gt.Number(t, len(matches)).Equal(1)
		gt.Value(t, matches[0].InstanceID).Equal(types.InstanceID("other-rec"))
		gt.Value(t, matches[0].RecordingID).Equal(types.RecordingID("rec-2"))
	})

	t.Run("empty index short-circuits", func(t *testing.T) {
		engine := matching.New(memory.New(), cfg)
		matches := engine.FindVoiceMatches(ctx, "src", []float32{1, 0}, testOwner, "rec-1", 0.5, 50)
		gt.Number(t, len(matches)).Equal(0)
	})
}
