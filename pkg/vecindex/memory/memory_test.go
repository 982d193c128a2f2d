package memory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/voxlab-io/speakerid/pkg/domain/model"
	"github.com/voxlab-io/speakerid/pkg/domain/types"
	"github.com/voxlab-io/speakerid/pkg/vecindex/memory"
)

func TestMemoryIndexInstances(t *testing.T) {
	ctx := context.Background()
	idx := memory.New()

	t.Run("upsert and get", func(t *testing.T) {
		err := idx.UpsertInstance(ctx, &model.InstanceVector{
			InstanceID:  "i1",
			OwnerID:     "owner-a",
			RecordingID: "rec-1",
			Embedding:   []float32{1, 0, 0},
		})
		gt.NoError(t, err)

		vec, err := idx.GetInstance(ctx, "owner-a", "i1")
		gt.NoError(t, err).Required()
		gt.Value(t, vec.RecordingID).Equal(types.RecordingID("rec-1"))
		gt.Array(t, vec.Embedding).Equal([]float32{1, 0, 0})
	})

	t.Run("cross-owner get fails", func(t *testing.T) {
		_, err := idx.GetInstance(ctx, "owner-b", "i1")
		gt.Bool(t, errors.Is(err, types.ErrNotFound)).True()
	})

	t.Run("empty embedding rejected", func(t *testing.T) {
		err := idx.UpsertInstance(ctx, &model.InstanceVector{InstanceID: "i2", OwnerID: "owner-a"})
		gt.Value(t, err).NotNil()
	})

	t.Run("delete missing is not an error", func(t *testing.T) {
		gt.NoError(t, idx.DeleteInstance(ctx, "owner-a", "no-such"))
	})
}

func TestMemoryIndexSearch(t *testing.T) {
	ctx := context.Background()
	idx := memory.New()

	seed := []struct {
		id    types.InstanceID
		owner types.OwnerID
		vec   []float32
	}{
		{"a1", "owner-a", []float32{1, 0}},
		{"a2", "owner-a", []float32{0.9, 0.1}},
		{"a3", "owner-a", []float32{0, 1}},
		{"b1", "owner-b", []float32{1, 0}},
	}
	for _, s := range seed {
		gt.NoError(t, idx.UpsertInstance(ctx, &model.InstanceVector{
			InstanceID: s.id, OwnerID: s.owner, RecordingID: "rec", Embedding: s.vec,
		}))
	}

	t.Run("owner isolation", func(t *testing.T) {
		matches, err := idx.SearchInstances(ctx, "owner-a", []float32{1, 0}, 10)
		gt.NoError(t, err).Required()
		gt.Number(t, len(matches)).Equal(3)
		for _, m := range matches {
			gt.Value(t, m.ID).NotEqual("b1")
		}
	})

	t.Run("descending score order", func(t *testing.T) {
		matches, err := idx.SearchInstances(ctx, "owner-a", []float32{1, 0}, 10)
		gt.NoError(t, err).Required()
		gt.Value(t, matches[0].ID).Equal("a1")
		for i := 1; i < len(matches); i++ {
			gt.Bool(t, matches[i-1].Score >= matches[i].Score).True()
		}
	})

	t.Run("limit", func(t *testing.T) {
		matches, err := idx.SearchInstances(ctx, "owner-a", []float32{1, 0}, 2)
		gt.NoError(t, err).Required()
		gt.Number(t, len(matches)).Equal(2)
	})

	t.Run("identical vector scores 1.0", func(t *testing.T) {
		matches, err := idx.SearchInstances(ctx, "owner-a", []float32{1, 0}, 1)
		gt.NoError(t, err).Required()
		gt.Number(t, matches[0].Score).Equal(1.0)
	})
}

func TestMemoryIndexProfiles(t *testing.T) {
	ctx := context.Background()
	idx := memory.New()

	t.Run("existence pre-checks", func(t *testing.T) {
		has, err := idx.HasProfiles(ctx, "owner-a")
		gt.NoError(t, err)
		gt.Bool(t, has).False()

		gt.NoError(t, idx.UpsertProfile(ctx, &model.ProfileVector{
			ProfileID: "p1", OwnerID: "owner-a", InstanceCount: 1, Embedding: []float32{1, 1},
		}))

		has, err = idx.HasProfiles(ctx, "owner-a")
		gt.NoError(t, err)
		gt.Bool(t, has).True()

		has, err = idx.HasProfiles(ctx, "owner-b")
		gt.NoError(t, err)
		gt.Bool(t, has).False()
	})

	t.Run("profile and instance key spaces never collide", func(t *testing.T) {
		gt.NoError(t, idx.UpsertInstance(ctx, &model.InstanceVector{
			InstanceID: "p1", OwnerID: "owner-a", RecordingID: "rec", Embedding: []float32{0, 1},
		}))

		prof, err := idx.GetProfile(ctx, "owner-a", "p1")
		gt.NoError(t, err).Required()
		gt.Array(t, prof.Embedding).Equal([]float32{1, 1})

		inst, err := idx.GetInstance(ctx, "owner-a", "p1")
		gt.NoError(t, err).Required()
		gt.Array(t, inst.Embedding).Equal([]float32{0, 1})
	})
}

func TestMemoryIndexListInstanceRecordings(t *testing.T) {
	ctx := context.Background()
	idx := memory.New()

	gt.NoError(t, idx.UpsertInstance(ctx, &model.InstanceVector{
		InstanceID: "i1", OwnerID: "owner-a", RecordingID: "rec-1", Embedding: []float32{1},
	}))
	gt.NoError(t, idx.UpsertInstance(ctx, &model.InstanceVector{
		InstanceID: "i2", OwnerID: "owner-a", RecordingID: "rec-1", Embedding: []float32{1},
	}))
	gt.NoError(t, idx.UpsertInstance(ctx, &model.InstanceVector{
		InstanceID: "i3", OwnerID: "owner-b", RecordingID: "rec-2", Embedding: []float32{1},
	}))

	recs, err := idx.ListInstanceRecordings(ctx, "owner-a")
	gt.NoError(t, err).Required()
	gt.Number(t, len(recs)).Equal(1)
	gt.Number(t, len(recs["rec-1"])).Equal(2)
}
