package types

// HintProvenance records which producer wrote the suggested-name fields on
// an instance. The fields themselves cannot be told apart after the fact,
// so the producer tags them at write time.
type HintProvenance string

const (
	// HintProvenanceNone means no hint has been written, or the writer predates tagging
	HintProvenanceNone HintProvenance = "none"
	// HintProvenanceContentAnalysis means the hint came from transcript content analysis
	HintProvenanceContentAnalysis HintProvenance = "content-analysis"
	// HintProvenanceVoiceAuto means the hint was auto-filled from a voice match
	HintProvenanceVoiceAuto HintProvenance = "voice-auto"
)

// IsValid checks if the hint provenance is valid
func (p HintProvenance) IsValid() bool {
	switch p {
	case HintProvenanceNone, HintProvenanceContentAnalysis, HintProvenanceVoiceAuto:
		return true
	default:
		return false
	}
}

// String returns the string representation of the hint provenance
func (p HintProvenance) String() string {
	return string(p)
}
