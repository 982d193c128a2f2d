package namehint

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
)

// maxExcerptSegments caps how many transcript segments are sent to the LLM
const maxExcerptSegments = 40

// client implements Service interface
type client struct {
	llmClient gollem.LLMClient
}

// Option is a functional option for client configuration
type Option func(*client)

// New creates a new content-analysis service with the provided LLM client
func New(llmClient gollem.LLMClient, opts ...Option) (Service, error) {
	if llmClient == nil {
		return nil, goerr.New("LLM client is required")
	}

	c := &client{
		llmClient: llmClient,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Analyze inspects the instance's transcript excerpt and proposes a speaker
// name. Returns nil when the content gives no usable signal.
func (c *client) Analyze(ctx context.Context, input Input) (*Result, error) {
	if len(input.Segments) == 0 {
		return nil, nil
	}

	session, err := c.llmClient.NewSession(ctx,
		gollem.WithSessionContentType(gollem.ContentTypeJSON),
		gollem.WithSessionResponseSchema(buildResponseSchema()),
		gollem.WithSessionSystemPrompt(buildSystemPrompt()),
	)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create LLM session")
	}

	resp, err := session.GenerateContent(ctx, gollem.Text(buildUserPrompt(input)))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to generate content from LLM")
	}
	if len(resp.Texts) == 0 {
		return nil, goerr.New("empty LLM response")
	}

	var llmResp llmResponse
	if err := json.Unmarshal([]byte(resp.Texts[0]), &llmResp); err != nil {
		return nil, goerr.Wrap(err, "failed to parse LLM response", goerr.V("response", resp.Texts[0]))
	}

	name := strings.TrimSpace(llmResp.Name)
	if name == "" || llmResp.Confidence <= 0 {
		return nil, nil
	}
	if llmResp.Confidence > 1 {
		llmResp.Confidence = 1
	}

	return &Result{
		Name:       name,
		Confidence: llmResp.Confidence,
		Reason:     llmResp.Reason,
	}, nil
}

// buildSystemPrompt creates the fixed system prompt for speaker name inference
func buildSystemPrompt() string {
	var sb strings.Builder

	sb.WriteString("You are a transcript analysis assistant. Your task is to infer the real name of a single speaker from what they say and how other participants address them.\n\n")
	sb.WriteString("## Instructions:\n\n")
	sb.WriteString("1. Look for self-introductions, direct address by other speakers, and role mentions.\n")
	sb.WriteString("2. Report the most likely personal name with a confidence between 0 and 1.\n")
	sb.WriteString("3. If known names are listed, prefer their spelling when the transcript plausibly refers to the same person, but never force a match.\n")
	sb.WriteString("4. If no name can be inferred, return an empty name with confidence 0.\n")
	sb.WriteString("5. Never return generic labels such as \"Speaker 1\" or role words alone.\n")

	return sb.String()
}

// buildUserPrompt creates the user prompt with context names and the excerpt
func buildUserPrompt(input Input) string {
	var sb strings.Builder

	if len(input.ContextNames) > 0 {
		sb.WriteString("## Known names in this workspace:\n\n")
		for _, name := range input.ContextNames {
			fmt.Fprintf(&sb, "- %s\n", name)
		}
		sb.WriteString("\n")
	}

	sb.WriteString("## Transcript excerpt (all lines spoken by the target speaker):\n\n")
	segments := input.Segments
	if len(segments) > maxExcerptSegments {
		segments = segments[:maxExcerptSegments]
	}
	for _, seg := range segments {
		fmt.Fprintf(&sb, "[%.1fs] %s\n", float64(seg.StartMS)/1000, seg.Text)
	}

	return sb.String()
}

// buildResponseSchema creates the JSON schema for structured output
func buildResponseSchema() *gollem.Parameter {
	return &gollem.Parameter{
		Title:       "SpeakerNameResponse",
		Description: "The inferred name of the target speaker",
		Type:        gollem.TypeObject,
		Properties: map[string]*gollem.Parameter{
			"name": {
				Type:        gollem.TypeString,
				Description: "The inferred personal name, or empty when nothing can be inferred",
				Required:    true,
			},
			"confidence": {
				Type:        gollem.TypeNumber,
				Description: "Confidence in the inferred name, between 0 and 1",
				Required:    true,
			},
			"reason": {
				Type:        gollem.TypeString,
				Description: "A one-sentence reason citing the transcript evidence",
				Required:    true,
			},
		},
	}
}
