package namehint

import (
	"context"

	"github.com/voxlab-io/speakerid/pkg/domain/model"
)

// Service defines the interface for proposing speaker names from transcript
// content. It is the content-analysis producer of the suggested-name hint
// fields; the suggestion consolidator consumes them but never requires a
// producer to exist in-process.
type Service interface {
	// Analyze inspects a speaker's transcript excerpt and proposes a name
	// with a confidence. Returns nil when no name can be inferred.
	Analyze(ctx context.Context, input Input) (*Result, error)
}

// Input represents the material for content analysis
type Input struct {
	Instance *model.SpeakerInstance

	// Segments are the instance's transcript segments, in recording order
	Segments []*model.TranscriptSegment

	// ContextNames are names already known in the owner's workspace, such
	// as existing profile names. They anchor spelling but must not force
	// a match.
	ContextNames []string
}

// Result is a proposed name with confidence in [0, 1]
type Result struct {
	Name       string
	Confidence float64
	Reason     string
}

// llmResponse is the structured output from the LLM
type llmResponse struct {
	Name       string  `json:"name"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason"`
}
