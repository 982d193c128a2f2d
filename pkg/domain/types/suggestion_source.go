package types

import "fmt"

// SuggestionSource represents the evidence source of a consolidated suggestion
type SuggestionSource string

const (
	// SuggestionSourceProfile is a match against a profile's consolidated embedding
	SuggestionSourceProfile SuggestionSource = "profile"
	// SuggestionSourceContentAnalysis is an externally supplied content-analysis hint
	SuggestionSourceContentAnalysis SuggestionSource = "content-analysis"
	// SuggestionSourceVoice is a match against another instance's embedding
	SuggestionSourceVoice SuggestionSource = "voice"
)

// AllSuggestionSources returns all valid suggestion sources
func AllSuggestionSources() []SuggestionSource {
	return []SuggestionSource{
		SuggestionSourceProfile,
		SuggestionSourceContentAnalysis,
		SuggestionSourceVoice,
	}
}

// IsValid checks if the suggestion source is valid
func (s SuggestionSource) IsValid() bool {
	switch s {
	case SuggestionSourceProfile, SuggestionSourceContentAnalysis, SuggestionSourceVoice:
		return true
	default:
		return false
	}
}

// Priority returns the ranking priority of the source. Lower is stronger:
// profile matches outrank content-analysis hints, which outrank voice matches.
func (s SuggestionSource) Priority() int {
	switch s {
	case SuggestionSourceProfile:
		return 0
	case SuggestionSourceContentAnalysis:
		return 1
	case SuggestionSourceVoice:
		return 2
	default:
		return 3
	}
}

// String returns the string representation of the suggestion source
func (s SuggestionSource) String() string {
	return string(s)
}

// ParseSuggestionSource parses a string into a SuggestionSource
func ParseSuggestionSource(s string) (SuggestionSource, error) {
	src := SuggestionSource(s)
	if !src.IsValid() {
		return "", fmt.Errorf("invalid suggestion source: %s", s)
	}
	return src, nil
}
