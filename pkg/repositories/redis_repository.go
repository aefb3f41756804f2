package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/ekaya-inc/proposal-relay/pkg/apperrors"
)

type redisInstallationRepository struct {
	client *redis.Client
	prefix string
}

// NewRedisInstallationRepository creates an installation repository backed by Redis.
// Keys are "<prefix>:installation:<webhook id>".
func NewRedisInstallationRepository(client *redis.Client, prefix string) InstallationRepository {
	return &redisInstallationRepository{client: client, prefix: prefix}
}

func (r *redisInstallationRepository) key(webhookID string) string {
	return fmt.Sprintf("%s:installation:%s", r.prefix, webhookID)
}

func (r *redisInstallationRepository) GetToken(ctx context.Context, webhookID string) (string, error) {
	token, err := r.client.Get(ctx, r.key(webhookID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", apperrors.ErrNotFound
		}
		return "", fmt.Errorf("failed to get installation: %w", err)
	}
	return token, nil
}

func (r *redisInstallationRepository) PutToken(ctx context.Context, webhookID, token string) error {
	if err := r.client.Set(ctx, r.key(webhookID), token, 0).Err(); err != nil {
		return fmt.Errorf("failed to put installation: %w", err)
	}
	return nil
}

type redisFeedbackRepository struct {
	client *redis.Client
	prefix string
}

// NewRedisFeedbackRepository creates a feedback repository backed by Redis.
// Keys are "<prefix>:feedbacks:<webhook id>".
func NewRedisFeedbackRepository(client *redis.Client, prefix string) FeedbackRepository {
	return &redisFeedbackRepository{client: client, prefix: prefix}
}

func (r *redisFeedbackRepository) key(webhookID string) string {
	return fmt.Sprintf("%s:feedbacks:%s", r.prefix, webhookID)
}

func (r *redisFeedbackRepository) LoadTokens(ctx context.Context, webhookID string) (string, error) {
	raw, err := r.client.Get(ctx, r.key(webhookID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", apperrors.ErrNotFound
		}
		return "", fmt.Errorf("failed to load feedbacks: %w", err)
	}
	return raw, nil
}

func (r *redisFeedbackRepository) PutTokens(ctx context.Context, webhookID, raw string) error {
	if err := r.client.Set(ctx, r.key(webhookID), raw, 0).Err(); err != nil {
		return fmt.Errorf("failed to put feedbacks: %w", err)
	}
	return nil
}

// CompareAndSwapTokens uses WATCH/MULTI so the write aborts when the key
// changed between the read and the EXEC.
func (r *redisFeedbackRepository) CompareAndSwapTokens(ctx context.Context, webhookID, expected, raw string) error {
	key := r.key(webhookID)

	err := r.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, key).Result()
		switch {
		case errors.Is(err, redis.Nil):
			if expected != "" {
				return apperrors.ErrConflict
			}
		case err != nil:
			return err
		case current != expected:
			return apperrors.ErrConflict
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, raw, 0)
			return nil
		})
		return err
	}, key)

	switch {
	case err == nil:
		return nil
	case errors.Is(err, redis.TxFailedErr), errors.Is(err, apperrors.ErrConflict):
		return apperrors.ErrConflict
	default:
		return fmt.Errorf("failed to swap feedbacks: %w", err)
	}
}
