package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/ekaya-inc/proposal-relay/pkg/apperrors"
	"github.com/ekaya-inc/proposal-relay/pkg/database"
)

type postgresInstallationRepository struct {
	db *database.DB
}

// NewPostgresInstallationRepository creates an installation repository backed by PostgreSQL.
func NewPostgresInstallationRepository(db *database.DB) InstallationRepository {
	return &postgresInstallationRepository{db: db}
}

func (r *postgresInstallationRepository) GetToken(ctx context.Context, webhookID string) (string, error) {
	var token string
	err := r.db.QueryRow(ctx,
		`SELECT token FROM installations WHERE webhook_id = $1`, webhookID).Scan(&token)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", apperrors.ErrNotFound
		}
		return "", fmt.Errorf("failed to get installation: %w", err)
	}
	return token, nil
}

func (r *postgresInstallationRepository) PutToken(ctx context.Context, webhookID, token string) error {
	query := `
		INSERT INTO installations (webhook_id, token)
		VALUES ($1, $2)
		ON CONFLICT (webhook_id) DO UPDATE SET token = EXCLUDED.token`

	if _, err := r.db.Exec(ctx, query, webhookID, token); err != nil {
		return fmt.Errorf("failed to put installation: %w", err)
	}
	return nil
}

type postgresFeedbackRepository struct {
	db *database.DB
}

// NewPostgresFeedbackRepository creates a feedback repository backed by PostgreSQL.
func NewPostgresFeedbackRepository(db *database.DB) FeedbackRepository {
	return &postgresFeedbackRepository{db: db}
}

func (r *postgresFeedbackRepository) LoadTokens(ctx context.Context, webhookID string) (string, error) {
	var raw string
	err := r.db.QueryRow(ctx,
		`SELECT tokens FROM feedbacks WHERE webhook_id = $1`, webhookID).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", apperrors.ErrNotFound
		}
		return "", fmt.Errorf("failed to load feedbacks: %w", err)
	}
	return raw, nil
}

func (r *postgresFeedbackRepository) PutTokens(ctx context.Context, webhookID, raw string) error {
	query := `
		INSERT INTO feedbacks (webhook_id, tokens)
		VALUES ($1, $2)
		ON CONFLICT (webhook_id) DO UPDATE SET tokens = EXCLUDED.tokens, updated_at = NOW()`

	if _, err := r.db.Exec(ctx, query, webhookID, raw); err != nil {
		return fmt.Errorf("failed to put feedbacks: %w", err)
	}
	return nil
}

func (r *postgresFeedbackRepository) CompareAndSwapTokens(ctx context.Context, webhookID, expected, raw string) error {
	var query string
	var args []any
	if expected == "" {
		query = `
			INSERT INTO feedbacks (webhook_id, tokens)
			VALUES ($1, $2)
			ON CONFLICT (webhook_id) DO NOTHING`
		args = []any{webhookID, raw}
	} else {
		query = `
			UPDATE feedbacks
			SET tokens = $3, updated_at = NOW()
			WHERE webhook_id = $1 AND tokens = $2`
		args = []any{webhookID, expected, raw}
	}

	result, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to swap feedbacks: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrConflict
	}
	return nil
}
