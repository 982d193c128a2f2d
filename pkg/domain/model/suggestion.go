package model

import (
	"github.com/voxlab-io/speakerid/pkg/domain/types"
)

// ConsolidatedSuggestion is one ranked identity suggestion for a speaker
// instance, computed per request and never persisted.
type ConsolidatedSuggestion struct {
	Name       string
	Confidence float64 // in [0, 1]
	Source     types.SuggestionSource
	ProfileID  types.ProfileID // set for profile-sourced suggestions

	// AutoAccept is true when confidence falls in a band strong enough to
	// apply without user review
	AutoAccept bool
	Reason     string

	// Evidence lists the supporting occurrences for voice-sourced
	// suggestions
	Evidence []VoiceEvidence
}

// VoiceEvidence is one instance occurrence supporting a voice-sourced
// suggestion.
type VoiceEvidence struct {
	InstanceID  types.InstanceID
	RecordingID types.RecordingID
	Score       float64
}
