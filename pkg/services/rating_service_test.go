package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ekaya-inc/proposal-relay/pkg/apperrors"
	"github.com/ekaya-inc/proposal-relay/pkg/llm"
)

func TestRatingService_Prompt(t *testing.T) {
	mock := llm.NewMockLLMClientWithContent(`{"rating": 8, "explanation": "Popular request"}`)
	svc := NewRatingService(mock, zap.NewNop())

	_, err := svc.Rate(context.Background(), "Add dark mode")
	require.NoError(t, err)

	assert.Equal(t, "You are a helpful it-assistant designed to output JSON.", mock.LastSystemMessage)
	assert.Equal(t,
		"Do you think this idea suggested by a coworker is a good one: 'Add dark mode'? "+
			"Rate it on a 10 point scale and explain your decision.",
		mock.LastPrompt)
	assert.True(t, mock.LastJSONMode)
	assert.Zero(t, mock.LastTemperature, "temperature stays unset so the provider default applies")
	assert.Equal(t, 1, mock.Calls())
}

func TestRatingService_Parse(t *testing.T) {
	tests := []struct {
		name        string
		content     string
		rating      *float64
		explanation *string
	}{
		{"numbers", `{"rating": 8, "explanation": "Popular request"}`, floatPtr(8), strPtr("Popular request")},
		{"numeric string", `{"rating": "7", "explanation": "ok"}`, floatPtr(7), strPtr("ok")},
		{"fenced", "```json\n{\"rating\": 6.5, \"explanation\": \"meh\"}\n```", floatPtr(6.5), strPtr("meh")},
		{"missing rating", `{"explanation": "no score"}`, nil, strPtr("no score")},
		{"null explanation", `{"rating": 3, "explanation": null}`, floatPtr(3), nil},
		{"empty object", `{}`, nil, nil},
		{"numeric explanation", `{"rating": 9, "explanation": 42}`, floatPtr(9), strPtr("42")},
		{"NaN rating", `{"rating": "NaN", "explanation": "unsure"}`, nil, strPtr("unsure")},
		{"infinite rating", `{"rating": "Infinity", "explanation": "perfect"}`, nil, strPtr("perfect")},
		{"negative infinite rating", `{"rating": "-Inf", "explanation": "awful"}`, nil, strPtr("awful")},
		{"fractional text rating", `{"rating": "8/10", "explanation": "solid"}`, nil, strPtr("solid")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewRatingService(llm.NewMockLLMClientWithContent(tt.content), zap.NewNop())

			result, err := svc.Rate(context.Background(), "idea")
			require.NoError(t, err)
			assert.Equal(t, tt.rating, result.Rating)
			assert.Equal(t, tt.explanation, result.Explanation)
		})
	}
}

func TestRatingService_NotJSON(t *testing.T) {
	svc := NewRatingService(llm.NewMockLLMClientWithContent("I think it is a great idea."), zap.NewNop())

	_, err := svc.Rate(context.Background(), "idea")
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindRatingService))
}

func TestRatingService_RequestFailure(t *testing.T) {
	mock := llm.NewMockLLMClient()
	mock.GenerateResponseFunc = func(context.Context, string, string, float64, bool) (*llm.GenerateResponseResult, error) {
		return nil, llm.NewError(llm.ErrorTypeEndpoint, "connection failed", errors.New("dial tcp: connection refused"))
	}
	svc := NewRatingService(mock, zap.NewNop())

	_, err := svc.Rate(context.Background(), "idea")
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindRatingService))
	assert.Contains(t, err.Error(), "connection refused")
	assert.Equal(t, 1, mock.Calls(), "rating must be attempted exactly once")
}

func floatPtr(f float64) *float64 { return &f }
func strPtr(s string) *string     { return &s }
