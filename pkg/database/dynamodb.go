package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"github.com/ekaya-inc/proposal-relay/pkg/config"
)

// DynamoKeyAttribute is the partition key of both relay tables.
const DynamoKeyAttribute = "webhook_id"

// NewDynamoClient creates a DynamoDB client for the configured region.
// Static credentials are used when both halves are set; otherwise the
// default AWS credential chain applies.
func NewDynamoClient(ctx context.Context, cfg *config.DynamoDBConfig) (*dynamodb.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(config.ResolveEndpointForDocker(cfg.Endpoint))
		}
	}), nil
}

// EnsureDynamoTables creates the installation and feedback tables when they
// do not exist yet. Intended for DynamoDB Local and first-time setup.
func EnsureDynamoTables(ctx context.Context, client *dynamodb.Client, cfg *config.DynamoDBConfig, logger *zap.Logger) error {
	for _, table := range []string{cfg.InstallationsTable, cfg.FeedbacksTable} {
		_, err := client.CreateTable(ctx, &dynamodb.CreateTableInput{
			TableName: aws.String(table),
			AttributeDefinitions: []types.AttributeDefinition{
				{AttributeName: aws.String(DynamoKeyAttribute), AttributeType: types.ScalarAttributeTypeS},
			},
			KeySchema: []types.KeySchemaElement{
				{AttributeName: aws.String(DynamoKeyAttribute), KeyType: types.KeyTypeHash},
			},
			BillingMode: types.BillingModePayPerRequest,
		})

		var inUse *types.ResourceInUseException
		switch {
		case errors.As(err, &inUse):
			logger.Info("DynamoDB table already exists", zap.String("table", table))
		case err != nil:
			return fmt.Errorf("failed to create table %s: %w", table, err)
		default:
			logger.Info("Created DynamoDB table", zap.String("table", table))
		}
	}
	return nil
}
