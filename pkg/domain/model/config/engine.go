package config

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
)

// Engine holds the tuning parameters of the identity resolution engine.
// Values are loaded from a TOML file or left at defaults.
type Engine struct {
	// EmbeddingDimension is fixed per deployment across all vector documents
	EmbeddingDimension int `toml:"embedding_dimension"`

	// MatchThreshold is the minimum similarity for a candidate to be considered
	MatchThreshold float64 `toml:"match_threshold"`

	// MaxSuggestions caps the consolidated suggestion list
	MaxSuggestions int `toml:"max_suggestions"`

	// ProfileMatchLimit caps the kNN result set for profile matching
	ProfileMatchLimit int `toml:"profile_match_limit"`

	// VoiceMatchLimit caps the raw kNN result set for voice matching. It is
	// deliberately larger than MaxSuggestions since candidates are filtered
	// by label and grouped by name afterwards.
	VoiceMatchLimit int `toml:"voice_match_limit"`

	// RecomputeCap bounds full recomputation of a profile embedding on
	// member removal. Above the cap a decrement approximation is used.
	RecomputeCap int `toml:"recompute_cap"`

	// QueryTimeout bounds each call to the vector index
	QueryTimeout time.Duration `toml:"query_timeout"`
}

// DefaultEngine returns the engine configuration defaults.
func DefaultEngine() *Engine {
	return &Engine{
		EmbeddingDimension: 256,
		MatchThreshold:     0.5,
		MaxSuggestions:     10,
		ProfileMatchLimit:  10,
		VoiceMatchLimit:    50,
		RecomputeCap:       100,
		QueryTimeout:       3 * time.Second,
	}
}

// Validate checks the engine configuration
func (e *Engine) Validate() error {
	if e.EmbeddingDimension <= 0 {
		return goerr.New("embedding_dimension must be positive", goerr.V("value", e.EmbeddingDimension))
	}
	if e.MatchThreshold < 0 || e.MatchThreshold > 1 {
		return goerr.New("match_threshold must be in [0, 1]", goerr.V("value", e.MatchThreshold))
	}
	if e.MaxSuggestions <= 0 {
		return goerr.New("max_suggestions must be positive", goerr.V("value", e.MaxSuggestions))
	}
	if e.ProfileMatchLimit <= 0 {
		return goerr.New("profile_match_limit must be positive", goerr.V("value", e.ProfileMatchLimit))
	}
	if e.VoiceMatchLimit <= 0 {
		return goerr.New("voice_match_limit must be positive", goerr.V("value", e.VoiceMatchLimit))
	}
	if e.RecomputeCap <= 0 {
		return goerr.New("recompute_cap must be positive", goerr.V("value", e.RecomputeCap))
	}
	if e.QueryTimeout <= 0 {
		return goerr.New("query_timeout must be positive", goerr.V("value", e.QueryTimeout))
	}
	return nil
}
