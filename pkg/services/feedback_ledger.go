package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/ekaya-inc/proposal-relay/pkg/apperrors"
	"github.com/ekaya-inc/proposal-relay/pkg/config"
	"github.com/ekaya-inc/proposal-relay/pkg/crypto"
	"github.com/ekaya-inc/proposal-relay/pkg/models"
	"github.com/ekaya-inc/proposal-relay/pkg/repositories"
	"github.com/ekaya-inc/proposal-relay/pkg/retry"
)

// FeedbackLedger appends signed feedback entries to an installation's ledger.
type FeedbackLedger interface {
	// Append signs fb and adds it to the end of the ledger, creating the
	// ledger when absent. Entries are never deduplicated.
	Append(ctx context.Context, installationID string, fb models.Feedback) error

	// List decodes every entry in the ledger, oldest first. A missing ledger
	// is empty.
	List(ctx context.Context, installationID string) ([]models.Feedback, error)
}

type feedbackLedger struct {
	repo     repositories.FeedbackRepository
	codec    *crypto.TokenCodec
	strategy string
	retryCfg *retry.Config
	logger   *zap.Logger
}

// NewFeedbackLedger creates a ledger using the configured append strategy.
//
// With "overwrite" two concurrent appends to the same installation can both
// read the same array and the later write drops the earlier entry. With
// "optimistic" the write is conditional on the array read and is repeated
// on conflict, up to cfg.MaxAttempts times.
func NewFeedbackLedger(
	repo repositories.FeedbackRepository,
	codec *crypto.TokenCodec,
	cfg config.LedgerConfig,
	logger *zap.Logger,
) FeedbackLedger {
	strategy := cfg.Strategy
	if strategy == "" {
		strategy = config.LedgerOverwrite
	}
	return &feedbackLedger{
		repo:     repo,
		codec:    codec,
		strategy: strategy,
		retryCfg: retry.ConflictConfig(cfg.MaxAttempts),
		logger:   logger.Named("ledger"),
	}
}

func (l *feedbackLedger) Append(ctx context.Context, installationID string, fb models.Feedback) error {
	token, err := l.codec.EncodeFeedback(fb)
	if err != nil {
		return classify(apperrors.KindSerialization, err)
	}

	if l.strategy != config.LedgerOptimistic {
		return l.appendOverwrite(ctx, installationID, token)
	}

	attempts := 0
	err = retry.DoIfRetryable(ctx, l.retryCfg, func() error {
		attempts++
		return l.appendConditional(ctx, installationID, token)
	})
	if errors.Is(err, apperrors.ErrConflict) {
		l.logger.Warn("Ledger append kept conflicting",
			zap.String("installation_id", installationID),
			zap.Int("attempts", attempts))
		return classify(apperrors.KindStore,
			fmt.Errorf("feedback ledger update conflicted %d times: %w", attempts, err))
	}
	if err != nil {
		return classify(apperrors.KindStore, err)
	}

	if attempts > 1 {
		l.logger.Info("Ledger append succeeded after conflicts",
			zap.String("installation_id", installationID),
			zap.Int("attempts", attempts))
	}
	return nil
}

func (l *feedbackLedger) appendOverwrite(ctx context.Context, installationID, token string) error {
	_, tokens, err := l.load(ctx, installationID)
	if err != nil {
		return err
	}

	raw, err := encodeTokens(append(tokens, token))
	if err != nil {
		return err
	}

	if err := l.repo.PutTokens(ctx, installationID, raw); err != nil {
		return classify(apperrors.KindStore, err)
	}
	return nil
}

// appendConditional returns apperrors.ErrConflict unwrapped so the retry
// loop recognizes it.
func (l *feedbackLedger) appendConditional(ctx context.Context, installationID, token string) error {
	current, tokens, err := l.load(ctx, installationID)
	if err != nil {
		return err
	}

	raw, err := encodeTokens(append(tokens, token))
	if err != nil {
		return err
	}

	err = l.repo.CompareAndSwapTokens(ctx, installationID, current, raw)
	if err != nil && !errors.Is(err, apperrors.ErrConflict) {
		return classify(apperrors.KindStore, err)
	}
	return err
}

// load returns the stored raw array ("" when absent) and its tokens.
func (l *feedbackLedger) load(ctx context.Context, installationID string) (string, []string, error) {
	raw, err := l.repo.LoadTokens(ctx, installationID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return "", nil, nil
	}
	if err != nil {
		return "", nil, classify(apperrors.KindStore, err)
	}

	var tokens []string
	if err := json.Unmarshal([]byte(raw), &tokens); err != nil {
		return "", nil, classify(apperrors.KindSerialization,
			fmt.Errorf("stored feedback ledger is malformed: %w", err))
	}
	return raw, tokens, nil
}

func encodeTokens(tokens []string) (string, error) {
	b, err := json.Marshal(tokens)
	if err != nil {
		return "", classify(apperrors.KindSerialization, err)
	}
	return string(b), nil
}

func (l *feedbackLedger) List(ctx context.Context, installationID string) ([]models.Feedback, error) {
	_, tokens, err := l.load(ctx, installationID)
	if err != nil {
		return nil, err
	}

	entries := make([]models.Feedback, 0, len(tokens))
	for i, token := range tokens {
		fb, err := l.codec.DecodeFeedback(token)
		if err != nil {
			return nil, fmt.Errorf("ledger entry %d: %w", i, err)
		}
		entries = append(entries, fb)
	}
	return entries, nil
}
