package usecase_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/voxlab-io/speakerid/pkg/domain/types"
	"github.com/voxlab-io/speakerid/pkg/service/namehint"
	"github.com/voxlab-io/speakerid/pkg/usecase"
)

// mockHintService is a canned content-analysis producer
type mockHintService struct {
	analyzeFn func(ctx context.Context, input namehint.Input) (*namehint.Result, error)
}

func (m *mockHintService) Analyze(ctx context.Context, input namehint.Input) (*namehint.Result, error) {
	if m.analyzeFn != nil {
		return m.analyzeFn(ctx, input)
	}
	return nil, nil
}

func TestAnalyzeInstance(t *testing.T) {
	ctx := context.Background()

	t.Run("stores hint with content-analysis provenance", func(t *testing.T) {
		svc := &mockHintService{
			analyzeFn: func(ctx context.Context, input namehint.Input) (*namehint.Result, error) {
				return &namehint.Result{Name: "Alice Chen", Confidence: 0.82}, nil
			},
		}
		f := newFixture(t, usecase.WithNameHint(svc))
		f.createInstance(t, instanceSpec{id: "i1", recording: "rec-1"})
		f.createSegments(t, "i1", "rec-1", 3)

		updated, err := f.uc.Hint.AnalyzeInstance(ctx, testOwner, "i1")
		gt.NoError(t, err).Required()
		gt.Value(t, updated.SuggestedName).Equal("Alice Chen")
		gt.Value(t, updated.SuggestedConfidence).NotNil()
		gt.Number(t, *updated.SuggestedConfidence).Equal(0.82)
		gt.Value(t, updated.Provenance).Equal(types.HintProvenanceContentAnalysis)

		stored, err := f.repo.Instance().Get(ctx, testOwner, "i1")
		gt.NoError(t, err).Required()
		gt.Value(t, stored.SuggestedName).Equal("Alice Chen")
	})

	t.Run("no inference leaves instance unchanged", func(t *testing.T) {
		f := newFixture(t, usecase.WithNameHint(&mockHintService{}))
		f.createInstance(t, instanceSpec{id: "i1", recording: "rec-1"})

		updated, err := f.uc.Hint.AnalyzeInstance(ctx, testOwner, "i1")
		gt.NoError(t, err).Required()
		gt.Value(t, updated.SuggestedName).Equal("")
		gt.Value(t, updated.SuggestedConfidence).Nil()
	})

	t.Run("existing profile names are offered as context", func(t *testing.T) {
		var captured []string
		svc := &mockHintService{
			analyzeFn: func(ctx context.Context, input namehint.Input) (*namehint.Result, error) {
				captured = input.ContextNames
				return nil, nil
			},
		}
		f := newFixture(t, usecase.WithNameHint(svc))
		f.createProfile(t, "p1", "Carol Danvers", nil, 0)
		f.createInstance(t, instanceSpec{id: "i1", recording: "rec-1"})

		_, err := f.uc.Hint.AnalyzeInstance(ctx, testOwner, "i1")
		gt.NoError(t, err).Required()
		gt.Array(t, captured).Length(1)
		gt.Value(t, captured[0]).Equal("Carol Danvers")
	})

	t.Run("hint use case absent without a producer", func(t *testing.T) {
		f := newFixture(t)
		gt.Value(t, f.uc.Hint).Nil()
	})
}
