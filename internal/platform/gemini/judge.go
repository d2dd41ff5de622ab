package gemini

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/phrazzld/scry-review/internal/validation"
	"google.golang.org/genai"
)

const judgeSystemPrompt = `You are an expert language tutor evaluating student answers. Compare the student's answer with the expected answer in the context of the question. Rate the answer from 0.0 to 1.0 based on semantic correctness and completeness. Consider:
- Meaning and intent (more important than exact wording)
- Grammatical correctness
- Completeness of the response

Respond with ONLY a number between 0.0 and 1.0, nothing else.`

const judgeMaxOutputTokens = 10

// Judge scores answers with a Gemini text model.
type Judge struct {
	client *Client
}

var _ validation.Judge = (*Judge)(nil)

// NewJudge returns a Judge using client's judge model.
func NewJudge(client *Client) *Judge {
	if client == nil {
		panic("client cannot be nil")
	}
	return &Judge{client: client}
}

func judgePrompt(expected, actual, question string) string {
	return fmt.Sprintf("Question: %s\n\nExpected Answer: %s\n\nStudent Answer: %s\n\nScore:",
		question, expected, actual)
}

// Judge asks the model to rate actual against expected. The reply is parsed
// with ParseScore, so an unparseable reply scores 0.
func (j *Judge) Judge(ctx context.Context, expected, actual, question string) (float64, error) {
	cfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr[float32](0),
		MaxOutputTokens: judgeMaxOutputTokens,
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: judgeSystemPrompt}},
		},
	}
	contents := genai.Text(judgePrompt(expected, actual, question))

	reply, err := withRetry(ctx, j.client, "judge", func(ctx context.Context) (string, error) {
		resp, err := j.client.models.GenerateContent(ctx, j.client.config.JudgeModel, contents, cfg)
		if err != nil {
			return "", err
		}
		return responseText(resp)
	})
	if err != nil {
		return 0, err
	}

	score, ok := ParseScore(reply)
	if !ok {
		j.client.logger.WarnContext(ctx, "unparseable judge reply, scoring 0",
			slog.String("reply", reply))
	}
	return score, nil
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", fmt.Errorf("%w: nil response", ErrInvalidResponse)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		return "", fmt.Errorf("%w: no content generated", ErrInvalidResponse)
	}
	candidate := resp.Candidates[0]
	if candidate.FinishReason == genai.FinishReasonSafety {
		return "", ErrContentBlocked
	}
	if candidate.Content == nil {
		return "", fmt.Errorf("%w: empty content in response", ErrInvalidResponse)
	}

	var b strings.Builder
	for _, part := range candidate.Content.Parts {
		if part != nil {
			b.WriteString(part.Text)
		}
	}
	return b.String(), nil
}

// ParseScore reads a numeric score from a model reply and clamps it to
// [0, 1]. It reports false, with a score of 0, when no number is found.
func ParseScore(reply string) (float64, bool) {
	field := strings.TrimSpace(reply)
	if fields := strings.Fields(field); len(fields) > 0 {
		field = strings.TrimRight(fields[0], ".,;:")
	}

	score, err := strconv.ParseFloat(field, 64)
	if err != nil {
		return 0, false
	}
	switch {
	case math.IsNaN(score):
		return 0, false
	case score < 0:
		return 0, true
	case score > 1:
		return 1, true
	}
	return score, true
}
