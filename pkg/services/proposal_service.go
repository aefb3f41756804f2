package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/ekaya-inc/proposal-relay/pkg/apperrors"
	"github.com/ekaya-inc/proposal-relay/pkg/crypto"
	"github.com/ekaya-inc/proposal-relay/pkg/logging"
	"github.com/ekaya-inc/proposal-relay/pkg/middleware"
	"github.com/ekaya-inc/proposal-relay/pkg/models"
	"github.com/ekaya-inc/proposal-relay/pkg/notify"
	"github.com/ekaya-inc/proposal-relay/pkg/repositories"
)

// ProposalService runs one Trello webhook delivery through the rating pipeline.
type ProposalService interface {
	// Handle processes a raw webhook body. The first failing step ends
	// processing; its message becomes err_description.
	Handle(ctx context.Context, body []byte) models.ProposalResponse
}

type proposalService struct {
	installations repositories.InstallationRepository
	codec         *crypto.TokenCodec
	gate          CardGate
	rater         RatingService
	ledger        FeedbackLedger
	notifier      notify.Notifier
	logger        *zap.Logger
}

// NewProposalService wires the pipeline. A nil notifier disables notifications.
func NewProposalService(
	installations repositories.InstallationRepository,
	codec *crypto.TokenCodec,
	gate CardGate,
	rater RatingService,
	ledger FeedbackLedger,
	notifier notify.Notifier,
	logger *zap.Logger,
) ProposalService {
	if notifier == nil {
		notifier = notify.NopNotifier{}
	}
	return &proposalService{
		installations: installations,
		codec:         codec,
		gate:          gate,
		rater:         rater,
		ledger:        ledger,
		notifier:      notifier,
		logger:        logger.Named("proposal"),
	}
}

func (s *proposalService) Handle(ctx context.Context, body []byte) models.ProposalResponse {
	logger := s.logger
	if id := middleware.RequestID(ctx); id != "" {
		logger = logger.With(zap.String("request_id", id))
	}

	start := time.Now()
	if err := s.process(ctx, logger, body); err != nil {
		level := zap.ErrorLevel
		// Events for webhooks this relay never provisioned are the sender's problem.
		if apperrors.IsKind(err, apperrors.KindConfigNotFound) {
			level = zap.WarnLevel
		}
		logger.Log(level, "Proposal processing failed",
			zap.String("kind", string(apperrors.KindOf(err))),
			zap.String("error", logging.SanitizeError(err)),
			zap.Duration("elapsed", time.Since(start)))
		return models.ErrorResponse(describe(err))
	}

	return models.SuccessResponse()
}

func (s *proposalService) process(ctx context.Context, logger *zap.Logger, body []byte) error {
	var payload models.WebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return classify(apperrors.KindInvalidPayload, err)
	}

	installationID := payload.Webhook.ID
	if installationID == "" {
		return apperrors.New(apperrors.KindMissingIdentifier, MsgWebhookIDNotFound)
	}
	logger = logger.With(zap.String("installation_id", installationID))

	token, err := s.installations.GetToken(ctx, installationID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return &apperrors.Error{Kind: apperrors.KindConfigNotFound, Message: MsgTokenNotFound, Cause: err}
	}
	if err != nil {
		return classify(apperrors.KindStore, err)
	}

	installation, err := s.codec.DecodeInstallation(token)
	if err != nil {
		return err
	}

	card := payload.Action.Data.Card
	proceed, err := s.gate.Evaluate(ctx, card.ID, installation.TrelloAPIKey, installation.TrelloAPIToken)
	if err != nil {
		return err
	}
	if !proceed {
		logger.Debug("Card already decided", zap.String("card_id", card.ID))
		return nil
	}

	if card.Desc == "" {
		logger.Debug("Invalid card description!", zap.String("card_id", card.ID))
		return nil
	}

	result, err := s.rater.Rate(ctx, card.Desc)
	if err != nil {
		return err
	}

	fb := models.NewFeedback(card.ID, card.Desc, result, installation)
	if err := s.ledger.Append(ctx, installationID, fb); err != nil {
		return err
	}

	if err := s.notifier.Notify(ctx, installation, fb); err != nil {
		return classify(apperrors.KindNotification, err)
	}

	fields := []zap.Field{zap.String("card_id", card.ID)}
	if result.Rating != nil {
		fields = append(fields, zap.Float64("rating", *result.Rating))
	}
	logger.Info("Proposal rated", fields...)
	return nil
}
