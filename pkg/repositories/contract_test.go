package repositories

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekaya-inc/proposal-relay/pkg/apperrors"
)

// testRepositoryContract exercises the behavior every backend must share.
func testRepositoryContract(t *testing.T, installations InstallationRepository, feedbacks FeedbackRepository) {
	t.Helper()
	ctx := context.Background()

	t.Run("installation not found", func(t *testing.T) {
		_, err := installations.GetToken(ctx, "missing-"+uuid.NewString())
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})

	t.Run("installation put and replace", func(t *testing.T) {
		id := "wh-" + uuid.NewString()
		require.NoError(t, installations.PutToken(ctx, id, "token-1"))

		got, err := installations.GetToken(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "token-1", got)

		require.NoError(t, installations.PutToken(ctx, id, "token-2"))
		got, err = installations.GetToken(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "token-2", got)
	})

	t.Run("ledger not found", func(t *testing.T) {
		_, err := feedbacks.LoadTokens(ctx, "missing-"+uuid.NewString())
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})

	t.Run("ledger put overwrites", func(t *testing.T) {
		id := "wh-" + uuid.NewString()
		require.NoError(t, feedbacks.PutTokens(ctx, id, `["a"]`))
		require.NoError(t, feedbacks.PutTokens(ctx, id, `["a","b"]`))

		got, err := feedbacks.LoadTokens(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, `["a","b"]`, got)
	})

	t.Run("compare and swap create", func(t *testing.T) {
		id := "wh-" + uuid.NewString()
		require.NoError(t, feedbacks.CompareAndSwapTokens(ctx, id, "", `["a"]`))

		err := feedbacks.CompareAndSwapTokens(ctx, id, "", `["b"]`)
		assert.ErrorIs(t, err, apperrors.ErrConflict)

		got, err := feedbacks.LoadTokens(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, `["a"]`, got)
	})

	t.Run("compare and swap update", func(t *testing.T) {
		id := "wh-" + uuid.NewString()
		require.NoError(t, feedbacks.PutTokens(ctx, id, `["a"]`))

		require.NoError(t, feedbacks.CompareAndSwapTokens(ctx, id, `["a"]`, `["a","b"]`))

		err := feedbacks.CompareAndSwapTokens(ctx, id, `["a"]`, `["a","c"]`)
		assert.ErrorIs(t, err, apperrors.ErrConflict)

		got, err := feedbacks.LoadTokens(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, `["a","b"]`, got)
	})

	t.Run("compare and swap on missing ledger", func(t *testing.T) {
		err := feedbacks.CompareAndSwapTokens(ctx, "missing-"+uuid.NewString(), `["a"]`, `["a","b"]`)
		assert.ErrorIs(t, err, apperrors.ErrConflict)
	})
}
