package repositories

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ekaya-inc/proposal-relay/pkg/config"
)

func TestOpen_Memory(t *testing.T) {
	cfg := &config.Config{Store: config.StoreConfig{Backend: config.StoreMemory}}

	stores, err := Open(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	defer stores.Close()

	assert.NotNil(t, stores.Installations)
	assert.NotNil(t, stores.Feedbacks)
	assert.NoError(t, stores.Ping(context.Background()))
}

func TestOpen_UnknownBackend(t *testing.T) {
	cfg := &config.Config{Store: config.StoreConfig{Backend: "cassandra"}}

	_, err := Open(context.Background(), cfg, zap.NewNop())
	assert.Error(t, err)
}
