package repositories

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"go.uber.org/zap"

	"github.com/ekaya-inc/proposal-relay/pkg/config"
	"github.com/ekaya-inc/proposal-relay/pkg/database"
)

// Stores bundles the repositories of the configured backend.
type Stores struct {
	Installations InstallationRepository
	Feedbacks     FeedbackRepository
	close         func()
	ping          func(ctx context.Context) error
}

// Ping checks that the backend is reachable. The memory backend always is.
func (s *Stores) Ping(ctx context.Context) error {
	if s.ping == nil {
		return nil
	}
	return s.ping(ctx)
}

// Close releases backend connections.
func (s *Stores) Close() {
	if s.close != nil {
		s.close()
	}
}

// Open connects to the store backend named in cfg.Store.Backend.
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Stores, error) {
	switch cfg.Store.Backend {
	case config.StoreDynamoDB:
		client, err := database.NewDynamoClient(ctx, &cfg.DynamoDB)
		if err != nil {
			return nil, err
		}
		logger.Info("Using DynamoDB store",
			zap.String("region", cfg.DynamoDB.Region),
			zap.String("installations_table", cfg.DynamoDB.InstallationsTable),
			zap.String("feedbacks_table", cfg.DynamoDB.FeedbacksTable))
		return &Stores{
			Installations: NewDynamoInstallationRepository(client, cfg.DynamoDB.InstallationsTable),
			Feedbacks:     NewDynamoFeedbackRepository(client, cfg.DynamoDB.FeedbacksTable),
			ping: func(ctx context.Context) error {
				_, err := client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
					TableName: aws.String(cfg.DynamoDB.InstallationsTable),
				})
				return err
			},
		}, nil

	case config.StorePostgres:
		db, err := database.NewConnection(ctx, database.ConfigFrom(&cfg.Database))
		if err != nil {
			return nil, err
		}
		logger.Info("Using PostgreSQL store",
			zap.String("host", cfg.Database.Host),
			zap.String("database", cfg.Database.Database))
		return &Stores{
			Installations: NewPostgresInstallationRepository(db),
			Feedbacks:     NewPostgresFeedbackRepository(db),
			close:         db.Close,
			ping:          db.Ping,
		}, nil

	case config.StoreRedis:
		client, err := database.NewRedisClient(ctx, &cfg.Redis)
		if err != nil {
			return nil, err
		}
		if client == nil {
			return nil, fmt.Errorf("redis store selected but REDIS_HOST is empty")
		}
		logger.Info("Using Redis store", zap.String("addr", cfg.Redis.Addr()))
		return &Stores{
			Installations: NewRedisInstallationRepository(client, cfg.Redis.KeyPrefix),
			Feedbacks:     NewRedisFeedbackRepository(client, cfg.Redis.KeyPrefix),
			close:         func() { _ = client.Close() },
			ping:          func(ctx context.Context) error { return client.Ping(ctx).Err() },
		}, nil

	case config.StoreMemory:
		logger.Warn("Using in-memory store; installations and feedback are lost on restart")
		mem := NewMemoryStore()
		return &Stores{
			Installations: mem.Installations(),
			Feedbacks:     mem.Feedbacks(),
		}, nil

	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}
