package gemini

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/phrazzld/scry-review/internal/config"
	"google.golang.org/genai"
)

type generateCall struct {
	model    string
	contents []*genai.Content
	config   *genai.GenerateContentConfig
}

// fakeModels returns queued results in order; the last one repeats.
type fakeModels struct {
	mu sync.Mutex

	generateResults []func() (*genai.GenerateContentResponse, error)
	embedResults    []func() (*genai.EmbedContentResponse, error)

	generateCalls []generateCall
	embedModels   []string
	embedTexts    []string
}

func (f *fakeModels) GenerateContent(
	_ context.Context,
	model string,
	contents []*genai.Content,
	cfg *genai.GenerateContentConfig,
) (*genai.GenerateContentResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.generateCalls = append(f.generateCalls, generateCall{model: model, contents: contents, config: cfg})
	i := len(f.generateCalls) - 1
	if i >= len(f.generateResults) {
		i = len(f.generateResults) - 1
	}
	return f.generateResults[i]()
}

func (f *fakeModels) EmbedContent(
	_ context.Context,
	model string,
	contents []*genai.Content,
	_ *genai.EmbedContentConfig,
) (*genai.EmbedContentResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.embedModels = append(f.embedModels, model)
	for _, c := range contents {
		for _, p := range c.Parts {
			f.embedTexts = append(f.embedTexts, p.Text)
		}
	}
	i := len(f.embedModels) - 1
	if i >= len(f.embedResults) {
		i = len(f.embedResults) - 1
	}
	return f.embedResults[i]()
}

func textResponse(text string) func() (*genai.GenerateContentResponse, error) {
	return func() (*genai.GenerateContentResponse, error) {
		return &genai.GenerateContentResponse{
			Candidates: []*genai.Candidate{{
				Content: &genai.Content{Parts: []*genai.Part{{Text: text}}},
			}},
		}, nil
	}
}

func generateError(err error) func() (*genai.GenerateContentResponse, error) {
	return func() (*genai.GenerateContentResponse, error) { return nil, err }
}

func embedding(values ...float32) func() (*genai.EmbedContentResponse, error) {
	return func() (*genai.EmbedContentResponse, error) {
		return &genai.EmbedContentResponse{
			Embeddings: []*genai.ContentEmbedding{{Values: values}},
		}, nil
	}
}

func embedError(err error) func() (*genai.EmbedContentResponse, error) {
	return func() (*genai.EmbedContentResponse, error) { return nil, err }
}

func testConfig() config.LLMConfig {
	return config.LLMConfig{
		GeminiAPIKey:      "test-key",
		JudgeModel:        "judge-model",
		EmbeddingModel:    "embed-model",
		MaxRetries:        2,
		RetryDelaySeconds: 1,
	}
}

// newTestClient returns a client whose sleeps are recorded instead of waited.
func newTestClient(models modelsAPI, cfg config.LLMConfig) (*Client, *[]time.Duration) {
	c := newClient(models, cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	var delays []time.Duration
	c.sleep = func(ctx context.Context, d time.Duration) error {
		delays = append(delays, d)
		return ctx.Err()
	}
	return c, &delays
}
