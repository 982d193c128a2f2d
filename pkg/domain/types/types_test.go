package types_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/voxlab-io/speakerid/pkg/domain/types"
)

func TestSuggestionSource(t *testing.T) {
	t.Run("valid sources", func(t *testing.T) {
		for _, src := range types.AllSuggestionSources() {
			gt.Bool(t, src.IsValid()).True()
		}
	})

	t.Run("invalid source", func(t *testing.T) {
		gt.Bool(t, types.SuggestionSource("llm").IsValid()).False()
		_, err := types.ParseSuggestionSource("llm")
		gt.Value(t, err).NotNil()
	})

	t.Run("priority ordering", func(t *testing.T) {
		gt.Bool(t, types.SuggestionSourceProfile.Priority() < types.SuggestionSourceContentAnalysis.Priority()).True()
		gt.Bool(t, types.SuggestionSourceContentAnalysis.Priority() < types.SuggestionSourceVoice.Priority()).True()
	})
}

func TestVerifyAction(t *testing.T) {
	t.Run("parse valid actions", func(t *testing.T) {
		for _, action := range types.AllVerifyActions() {
			parsed, err := types.ParseVerifyAction(action.String())
			gt.NoError(t, err)
			gt.Value(t, parsed).Equal(action)
		}
	})

	t.Run("parse invalid action", func(t *testing.T) {
		_, err := types.ParseVerifyAction("approve")
		gt.Value(t, err).NotNil()
	})
}

func TestHintProvenance(t *testing.T) {
	gt.Bool(t, types.HintProvenanceContentAnalysis.IsValid()).True()
	gt.Bool(t, types.HintProvenanceVoiceAuto.IsValid()).True()
	gt.Bool(t, types.HintProvenance("").IsValid()).False()
}

func TestNewIDs(t *testing.T) {
	gt.Value(t, types.NewInstanceID()).NotEqual(types.NewInstanceID())
	gt.Value(t, types.NewProfileID()).NotEqual(types.NewProfileID())
}
