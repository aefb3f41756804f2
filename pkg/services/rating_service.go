package services

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/ekaya-inc/proposal-relay/pkg/apperrors"
	"github.com/ekaya-inc/proposal-relay/pkg/jsonutil"
	"github.com/ekaya-inc/proposal-relay/pkg/llm"
	"github.com/ekaya-inc/proposal-relay/pkg/models"
)

const ratingSystemMessage = "You are a helpful it-assistant designed to output JSON."

// providerDefaultTemperature leaves temperature unset in the request, so the
// provider applies its own default. Both clients omit a zero value.
const providerDefaultTemperature = 0

func ratingPrompt(cardText string) string {
	return fmt.Sprintf("Do you think this idea suggested by a coworker is a good one: '%s'? "+
		"Rate it on a 10 point scale and explain your decision.", cardText)
}

// RatingService asks the language model to rate a proposal.
type RatingService interface {
	// Rate returns the model's rating and explanation for cardText.
	// Either field is nil when the model left it out.
	Rate(ctx context.Context, cardText string) (*models.RatingResult, error)
}

type ratingService struct {
	client llm.LLMClient
	logger *zap.Logger
}

// NewRatingService creates a rating service on top of client.
func NewRatingService(client llm.LLMClient, logger *zap.Logger) RatingService {
	return &ratingService{
		client: client,
		logger: logger.Named("rating"),
	}
}

// ratingReply keeps raw fields so numbers sent as strings still parse.
type ratingReply struct {
	Rating      json.RawMessage `json:"rating"`
	Explanation json.RawMessage `json:"explanation"`
}

func (s *ratingService) Rate(ctx context.Context, cardText string) (*models.RatingResult, error) {
	resp, err := s.client.GenerateResponse(ctx, ratingPrompt(cardText), ratingSystemMessage, providerDefaultTemperature, true)
	if err != nil {
		return nil, classify(apperrors.KindRatingService, err)
	}

	result, err := parseRating(resp.Content)
	if err != nil {
		s.logger.Error("Unparseable rating reply",
			zap.String("model", s.client.GetModel()),
			zap.Error(err))
		return nil, classify(apperrors.KindRatingService, err)
	}

	s.logger.Debug("Card rated",
		zap.Int("total_tokens", resp.TotalTokens),
		zap.Bool("has_rating", result.Rating != nil),
		zap.Bool("has_explanation", result.Explanation != nil))

	return result, nil
}

func parseRating(content string) (*models.RatingResult, error) {
	reply, err := llm.ParseJSONResponse[ratingReply](content)
	if err != nil {
		return nil, fmt.Errorf("rating reply is not JSON: %w", err)
	}

	return &models.RatingResult{
		Rating:      jsonutil.FlexibleFloatPtr(reply.Rating),
		Explanation: jsonutil.FlexibleStringPtr(reply.Explanation),
	}, nil
}
