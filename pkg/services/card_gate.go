package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/ekaya-inc/proposal-relay/pkg/apperrors"
	"github.com/ekaya-inc/proposal-relay/pkg/trello"
)

// Cover colors that mark a card as already decided.
var decidedCoverColors = map[string]bool{
	"red":   true,
	"green": true,
}

// CardFetcher retrieves a card from Trello.
type CardFetcher interface {
	GetCard(ctx context.Context, cardID, apiKey, apiToken string) (*trello.Card, error)
}

// CardGate decides whether a card still needs a rating.
type CardGate interface {
	// Evaluate returns false when the card cover is red or green.
	// Lookup failures are apperrors.KindExternalLookup.
	Evaluate(ctx context.Context, cardID, apiKey, apiToken string) (bool, error)
}

type cardGate struct {
	fetcher CardFetcher
	logger  *zap.Logger
}

// NewCardGate creates a card gate backed by fetcher.
func NewCardGate(fetcher CardFetcher, logger *zap.Logger) CardGate {
	return &cardGate{
		fetcher: fetcher,
		logger:  logger.Named("card-gate"),
	}
}

func (g *cardGate) Evaluate(ctx context.Context, cardID, apiKey, apiToken string) (bool, error) {
	card, err := g.fetcher.GetCard(ctx, cardID, apiKey, apiToken)
	if err != nil {
		return false, classify(apperrors.KindExternalLookup, err)
	}

	color := card.CoverColor()
	if decidedCoverColors[color] {
		g.logger.Debug("Card already decided, skipping",
			zap.String("card_id", cardID),
			zap.String("cover_color", color))
		return false, nil
	}

	return true, nil
}
