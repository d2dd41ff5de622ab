package validation_test

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type mockEmbedder struct {
	mock.Mock
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	args := m.Called(ctx, text)
	if v := args.Get(0); v != nil {
		return v.([]float32), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockJudge struct {
	mock.Mock
}

func (m *mockJudge) Judge(ctx context.Context, expected, actual, question string) (float64, error) {
	args := m.Called(ctx, expected, actual, question)
	return args.Get(0).(float64), args.Error(1)
}
