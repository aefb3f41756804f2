// Package repositories stores installation tokens and feedback ledgers keyed
// by Trello webhook id.
package repositories

import "context"

// InstallationRepository defines data access for installation tokens.
type InstallationRepository interface {
	// GetToken returns the signed installation token for a webhook.
	// Returns apperrors.ErrNotFound when no installation exists.
	GetToken(ctx context.Context, webhookID string) (string, error)

	// PutToken stores or replaces the installation token for a webhook.
	PutToken(ctx context.Context, webhookID, token string) error
}

// FeedbackRepository defines data access for the per-webhook feedback ledger.
// The ledger is stored as one JSON array of signed feedback tokens.
type FeedbackRepository interface {
	// LoadTokens returns the raw JSON array stored for a webhook.
	// Returns apperrors.ErrNotFound when no ledger exists.
	LoadTokens(ctx context.Context, webhookID string) (string, error)

	// PutTokens unconditionally replaces the stored ledger.
	PutTokens(ctx context.Context, webhookID, raw string) error

	// CompareAndSwapTokens replaces the ledger only if it still equals
	// expected. An empty expected means the ledger must not exist yet.
	// Returns apperrors.ErrConflict when another writer got there first.
	CompareAndSwapTokens(ctx context.Context, webhookID, expected, raw string) error
}
