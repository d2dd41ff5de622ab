package gemini

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestEmbedder_Embed(t *testing.T) {
	models := &fakeModels{embedResults: []func() (*genai.EmbedContentResponse, error){
		embedding(0.1, 0.2, 0.3),
	}}
	c, _ := newTestClient(models, testConfig())

	got, err := NewEmbedder(c).Embed(context.Background(), "Paris")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, got)
	assert.Equal(t, []string{"embed-model"}, models.embedModels)
	assert.Equal(t, []string{"Paris"}, models.embedTexts)
}

func TestEmbedder_RetriesTransientErrors(t *testing.T) {
	models := &fakeModels{embedResults: []func() (*genai.EmbedContentResponse, error){
		embedError(errors.New("429 resource exhausted")),
		embedding(1, 0),
	}}
	c, delays := newTestClient(models, testConfig())

	got, err := NewEmbedder(c).Embed(context.Background(), "text")
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 0}, got)
	assert.Len(t, models.embedModels, 2)
	assert.Len(t, *delays, 1)
}

func TestEmbedder_Errors(t *testing.T) {
	testCases := []struct {
		name    string
		text    string
		result  func() (*genai.EmbedContentResponse, error)
		wantErr error
		calls   int
	}{
		{
			name:    "blank text",
			text:    "   ",
			result:  embedding(1),
			wantErr: ErrEmptyInput,
			calls:   0,
		},
		{
			name: "no embeddings",
			text: "x",
			result: func() (*genai.EmbedContentResponse, error) {
				return &genai.EmbedContentResponse{}, nil
			},
			wantErr: ErrInvalidResponse,
			calls:   1,
		},
		{
			name:    "empty vector",
			text:    "x",
			result:  embedding(),
			wantErr: ErrInvalidResponse,
			calls:   1,
		},
		{
			name:    "persistent api failure",
			text:    "x",
			result:  embedError(errors.New("500 internal")),
			wantErr: ErrTransientFailure,
			calls:   3,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			models := &fakeModels{embedResults: []func() (*genai.EmbedContentResponse, error){tc.result}}
			c, _ := newTestClient(models, testConfig())

			_, err := NewEmbedder(c).Embed(context.Background(), tc.text)
			assert.ErrorIs(t, err, tc.wantErr)
			assert.Len(t, models.embedModels, tc.calls)
		})
	}
}
