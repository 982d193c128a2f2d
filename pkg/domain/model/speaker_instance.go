package model

import (
	"regexp"
	"strings"
	"time"

	"github.com/voxlab-io/speakerid/pkg/domain/types"
)

// placeholderPattern matches diarization placeholder labels such as
// "SPEAKER_00", "speaker_3" or "Speaker 2". Instances whose effective name
// still matches this pattern are considered unlabeled.
var placeholderPattern = regexp.MustCompile(`(?i)^speaker[_ ]?\d+$`)

// IsPlaceholderName reports whether a name is a diarization placeholder
// rather than a user- or system-assigned real name.
func IsPlaceholderName(name string) bool {
	return placeholderPattern.MatchString(strings.TrimSpace(name))
}

// SpeakerInstance is one diarized speaker occurrence within one recording.
// Instances are created by the diarization pipeline and mutated here by
// verification and merge.
type SpeakerInstance struct {
	ID          types.InstanceID
	OwnerID     types.OwnerID
	RecordingID types.RecordingID

	// RawLabel is the placeholder assigned by diarization, e.g. "SPEAKER_01"
	RawLabel    string
	DisplayName string // user-assigned, empty until labeled

	// SuggestedName and SuggestedConfidence are written by an external
	// content-analysis step. Provenance records which producer wrote them.
	SuggestedName       string
	SuggestedConfidence *float64
	Provenance          types.HintProvenance

	Verified  bool
	ProfileID types.ProfileID // empty when unassigned

	CreatedAt time.Time
	UpdatedAt time.Time
}

// EffectiveName returns the display name when set, otherwise the raw label.
func (s *SpeakerInstance) EffectiveName() string {
	if s.DisplayName != "" {
		return s.DisplayName
	}
	return s.RawLabel
}

// IsUnlabeled reports whether the instance carries no real name. Unlabeled
// instances may receive suggestions but never act as the representative of
// a voice-match group.
func (s *SpeakerInstance) IsUnlabeled() bool {
	name := s.EffectiveName()
	return name == "" || IsPlaceholderName(name)
}

// HasHint reports whether a usable content-analysis hint is present.
// A hint tagged as voice-auto is an echo of our own matching and is not
// treated as independent evidence.
func (s *SpeakerInstance) HasHint() bool {
	if s.SuggestedName == "" || s.SuggestedConfidence == nil {
		return false
	}
	return s.Provenance != types.HintProvenanceVoiceAuto
}
