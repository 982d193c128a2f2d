package namehint_test

import (
	"context"
	"strings"
	"testing"

	"github.com/m-mizutani/gollem"
	"github.com/m-mizutani/gt"
	"github.com/voxlab-io/speakerid/pkg/domain/model"
	"github.com/voxlab-io/speakerid/pkg/domain/types"
	"github.com/voxlab-io/speakerid/pkg/service/namehint"
)

// mockLLMSession is a mock gollem Session for testing
type mockLLMSession struct {
	generateContentFn func(ctx context.Context, input ...gollem.Input) (*gollem.Response, error)
}

func (s *mockLLMSession) Generate(ctx context.Context, input []gollem.Input, opts ...gollem.GenerateOption) (*gollem.Response, error) {
	return s.GenerateContent(ctx, input...)
}

func (s *mockLLMSession) Stream(ctx context.Context, input []gollem.Input, opts ...gollem.GenerateOption) (<-chan *gollem.Response, error) {
	return s.GenerateStream(ctx, input...)
}

func (s *mockLLMSession) GenerateContent(ctx context.Context, input ...gollem.Input) (*gollem.Response, error) {
	if s.generateContentFn != nil {
		return s.generateContentFn(ctx, input...)
	}
	return &gollem.Response{Texts: []string{`{"name":"","confidence":0,"reason":""}`}}, nil
}

func (s *mockLLMSession) GenerateStream(ctx context.Context, input ...gollem.Input) (<-chan *gollem.Response, error) {
	return nil, nil
}

func (s *mockLLMSession) History() (*gollem.History, error) {
	return nil, nil
}

func (s *mockLLMSession) AppendHistory(*gollem.History) error {
	return nil
}

func (s *mockLLMSession) CountToken(ctx context.Context, input ...gollem.Input) (int, error) {
	return 0, nil
}

// mockLLMClient is a mock gollem LLMClient for testing
type mockLLMClient struct {
	newSessionFn func(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error)
}

func (c *mockLLMClient) NewSession(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error) {
	if c.newSessionFn != nil {
		return c.newSessionFn(ctx, options...)
	}
	return &mockLLMSession{}, nil
}

func (c *mockLLMClient) GenerateEmbedding(ctx context.Context, dimension int, input []string) ([][]float64, error) {
	return nil, nil
}

func testSegments(texts ...string) []*model.TranscriptSegment {
	segments := make([]*model.TranscriptSegment, 0, len(texts))
	for i, text := range texts {
		segments = append(segments, &model.TranscriptSegment{
			ID:      types.NewSegmentID(),
			StartMS: int64(i) * 5000,
			EndMS:   int64(i)*5000 + 4000,
			Text:    text,
		})
	}
	return segments
}

func TestAnalyze(t *testing.T) {
	t.Run("returns proposed name from structured response", func(t *testing.T) {
		llm := &mockLLMClient{
			newSessionFn: func(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error) {
				return &mockLLMSession{
					generateContentFn: func(ctx context.Context, input ...gollem.Input) (*gollem.Response, error) {
						return &gollem.Response{
							Texts: []string{`{"name":"Alice Chen","confidence":0.85,"reason":"introduced themselves at the start"}`},
						}, nil
					},
				}, nil
			},
		}
		svc, err := namehint.New(llm)
		gt.NoError(t, err)

		result, err := svc.Analyze(context.Background(), namehint.Input{
			Segments: testSegments("Hi everyone, Alice Chen here from the platform team."),
		})
		gt.NoError(t, err)
		gt.Value(t, result).NotNil()
		gt.Value(t, result.Name).Equal("Alice Chen")
		gt.Number(t, result.Confidence).Equal(0.85)
	})

	t.Run("returns nil for empty name", func(t *testing.T) {
		svc, err := namehint.New(&mockLLMClient{})
		gt.NoError(t, err)

		result, err := svc.Analyze(context.Background(), namehint.Input{
			Segments: testSegments("Let's move on to the next item."),
		})
		gt.NoError(t, err)
		gt.Value(t, result).Nil()
	})

	t.Run("returns nil without calling LLM when no segments", func(t *testing.T) {
		called := false
		llm := &mockLLMClient{
			newSessionFn: func(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error) {
				called = true
				return &mockLLMSession{}, nil
			},
		}
		svc, err := namehint.New(llm)
		gt.NoError(t, err)

		result, err := svc.Analyze(context.Background(), namehint.Input{})
		gt.NoError(t, err)
		gt.Value(t, result).Nil()
		gt.Value(t, called).Equal(false)
	})

	t.Run("clamps confidence above 1", func(t *testing.T) {
		llm := &mockLLMClient{
			newSessionFn: func(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error) {
				return &mockLLMSession{
					generateContentFn: func(ctx context.Context, input ...gollem.Input) (*gollem.Response, error) {
						return &gollem.Response{
							Texts: []string{`{"name":"Bob","confidence":1.5,"reason":"addressed directly"}`},
						}, nil
					},
				}, nil
			},
		}
		svc, err := namehint.New(llm)
		gt.NoError(t, err)

		result, err := svc.Analyze(context.Background(), namehint.Input{
			Segments: testSegments("Thanks Bob, over to you."),
		})
		gt.NoError(t, err)
		gt.Value(t, result).NotNil()
		gt.Number(t, result.Confidence).Equal(1.0)
	})

	t.Run("includes context names in the prompt", func(t *testing.T) {
		var captured string
		llm := &mockLLMClient{
			newSessionFn: func(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error) {
				return &mockLLMSession{
					generateContentFn: func(ctx context.Context, input ...gollem.Input) (*gollem.Response, error) {
						for _, in := range input {
							if text, ok := in.(gollem.Text); ok {
								captured = string(text)
							}
						}
						return &gollem.Response{
							Texts: []string{`{"name":"Carol","confidence":0.7,"reason":"known name match"}`},
						}, nil
					},
				}, nil
			},
		}
		svc, err := namehint.New(llm)
		gt.NoError(t, err)

		_, err = svc.Analyze(context.Background(), namehint.Input{
			Segments:     testSegments("I think Carol mentioned this last week."),
			ContextNames: []string{"Carol Danvers", "Dmitri Ivanov"},
		})
		gt.NoError(t, err)
		gt.Bool(t, strings.Contains(captured, "Carol Danvers")).True()
		gt.Bool(t, strings.Contains(captured, "Dmitri Ivanov")).True()
	})

	t.Run("requires LLM client", func(t *testing.T) {
		_, err := namehint.New(nil)
		gt.Error(t, err)
	})
}
