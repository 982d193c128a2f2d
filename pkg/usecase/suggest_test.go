package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/voxlab-io/speakerid/pkg/domain/types"
)

func TestGetSuggestions(t *testing.T) {
	ctx := context.Background()

	t.Run("profile match wins name collision with voice match", func(t *testing.T) {
		f := newFixture(t)
		f.createInstance(t, instanceSpec{id: "i1", recording: "rec-1", embedding: unit2(1)})

		// profile vector at cosine 0.6 scores 0.8
		f.createProfile(t, "p1", "Alice", unit2(0.6), 3)
		// a labeled instance at cosine 0.2 scores 0.6
		f.createInstance(t, instanceSpec{id: "i2", recording: "rec-2", displayName: "alice", embedding: unit2(0.2)})

		suggestions, err := f.uc.Suggest.GetSuggestions(ctx, testOwner, "i1")
		gt.NoError(t, err).Required()
		gt.Array(t, suggestions).Length(1).Required()

		s := suggestions[0]
		gt.Value(t, s.Name).Equal("Alice")
		gt.Value(t, s.Source).Equal(types.SuggestionSourceProfile)
		gt.Value(t, s.ProfileID).Equal(types.ProfileID("p1"))
		confidenceNear(t, s.Confidence, 0.8)
	})

	t.Run("content-analysis hint surfaces without embedding", func(t *testing.T) {
		f := newFixture(t)
		f.createInstance(t, instanceSpec{id: "i1", recording: "rec-1"})
		f.setHint(t, "i1", "Bob", 0.9, types.HintProvenanceContentAnalysis)

		suggestions, err := f.uc.Suggest.GetSuggestions(ctx, testOwner, "i1")
		gt.NoError(t, err).Required()
		gt.Array(t, suggestions).Length(1).Required()

		s := suggestions[0]
		gt.Value(t, s.Name).Equal("Bob")
		gt.Value(t, s.Source).Equal(types.SuggestionSourceContentAnalysis)
		gt.Bool(t, s.AutoAccept).True()
	})

	t.Run("voice-auto hint is not independent evidence", func(t *testing.T) {
		f := newFixture(t)
		f.createInstance(t, instanceSpec{id: "i1", recording: "rec-1"})
		f.setHint(t, "i1", "Bob", 0.9, types.HintProvenanceVoiceAuto)

		suggestions, err := f.uc.Suggest.GetSuggestions(ctx, testOwner, "i1")
		gt.NoError(t, err)
		gt.Array(t, suggestions).Length(0)
	})

	t.Run("legacy hint without provenance is trusted", func(t *testing.T) {
		f := newFixture(t)
		f.createInstance(t, instanceSpec{id: "i1", recording: "rec-1"})
		f.setHint(t, "i1", "Bob", 0.7, types.HintProvenanceNone)

		suggestions, err := f.uc.Suggest.GetSuggestions(ctx, testOwner, "i1")
		gt.NoError(t, err).Required()
		gt.Array(t, suggestions).Length(1).Required()
		gt.Value(t, suggestions[0].Source).Equal(types.SuggestionSourceContentAnalysis)
		gt.Bool(t, suggestions[0].AutoAccept).False()
	})

	t.Run("unlabeled candidates never represent a voice group", func(t *testing.T) {
		f := newFixture(t)
		f.createInstance(t, instanceSpec{id: "i1", recording: "rec-1", embedding: unit2(1)})
		f.createInstance(t, instanceSpec{id: "i2", recording: "rec-2", embedding: unit2(0.99)})
		f.createInstance(t, instanceSpec{id: "i3", recording: "rec-3", displayName: "Speaker 2", embedding: unit2(0.99)})

		suggestions, err := f.uc.Suggest.GetSuggestions(ctx, testOwner, "i1")
		gt.NoError(t, err)
		gt.Array(t, suggestions).Length(0)
	})

	t.Run("same-recording candidates are excluded", func(t *testing.T) {
		f := newFixture(t)
		f.createInstance(t, instanceSpec{id: "i1", recording: "rec-1", embedding: unit2(1)})
		f.createInstance(t, instanceSpec{id: "i2", recording: "rec-1", displayName: "Carol", embedding: unit2(0.99)})

		suggestions, err := f.uc.Suggest.GetSuggestions(ctx, testOwner, "i1")
		gt.NoError(t, err)
		gt.Array(t, suggestions).Length(0)
	})

	t.Run("voice group keeps best occurrence and all evidence", func(t *testing.T) {
		f := newFixture(t)
		f.createInstance(t, instanceSpec{id: "i1", recording: "rec-1", embedding: unit2(1)})
		f.createInstance(t, instanceSpec{id: "i2", recording: "rec-2", displayName: "Carol", embedding: unit2(0.9)})
		f.createInstance(t, instanceSpec{id: "i3", recording: "rec-3", displayName: "carol", embedding: unit2(0.6)})

		suggestions, err := f.uc.Suggest.GetSuggestions(ctx, testOwner, "i1")
		gt.NoError(t, err).Required()
		gt.Array(t, suggestions).Length(1).Required()

		s := suggestions[0]
		gt.Value(t, s.Name).Equal("Carol")
		gt.Value(t, s.Source).Equal(types.SuggestionSourceVoice)
		confidenceNear(t, s.Confidence, 0.95)
		gt.Array(t, s.Evidence).Length(2)
	})

	t.Run("owner isolation", func(t *testing.T) {
		f := newFixture(t)
		f.createInstance(t, instanceSpec{id: "i1", recording: "rec-1", embedding: unit2(1)})
		f.createInstance(t, instanceSpec{id: "i2", owner: "owner-b", recording: "rec-2", displayName: "Mallory", embedding: unit2(1)})

		suggestions, err := f.uc.Suggest.GetSuggestions(ctx, testOwner, "i1")
		gt.NoError(t, err)
		gt.Array(t, suggestions).Length(0)
	})

	t.Run("placeholder-named hint is dropped", func(t *testing.T) {
		f := newFixture(t)
		f.createInstance(t, instanceSpec{id: "i1", recording: "rec-1"})
		f.setHint(t, "i1", "Speaker 3", 0.9, types.HintProvenanceContentAnalysis)

		suggestions, err := f.uc.Suggest.GetSuggestions(ctx, testOwner, "i1")
		gt.NoError(t, err)
		gt.Array(t, suggestions).Length(0)
	})

	t.Run("missing instance fails", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.uc.Suggest.GetSuggestions(ctx, testOwner, "missing")
		gt.Bool(t, errors.Is(err, types.ErrNotFound)).True()
	})

	t.Run("sorted by source priority then confidence", func(t *testing.T) {
		f := newFixture(t)
		f.createInstance(t, instanceSpec{id: "i1", recording: "rec-1", embedding: unit2(1)})
		f.createProfile(t, "p1", "Alice", unit2(0.2), 2)
		f.createInstance(t, instanceSpec{id: "i2", recording: "rec-2", displayName: "Dave", embedding: unit2(0.9)})
		f.setHint(t, "i1", "Eve", 0.99, types.HintProvenanceContentAnalysis)

		suggestions, err := f.uc.Suggest.GetSuggestions(ctx, testOwner, "i1")
		gt.NoError(t, err).Required()
		gt.Array(t, suggestions).Length(3).Required()

		gt.Value(t, suggestions[0].Source).Equal(types.SuggestionSourceProfile)
		gt.Value(t, suggestions[1].Source).Equal(types.SuggestionSourceContentAnalysis)
		gt.Value(t, suggestions[2].Source).Equal(types.SuggestionSourceVoice)
	})
}
