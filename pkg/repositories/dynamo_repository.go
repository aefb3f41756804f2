package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/ekaya-inc/proposal-relay/pkg/apperrors"
	"github.com/ekaya-inc/proposal-relay/pkg/database"
)

const (
	tokenAttribute  = "token"
	tokensAttribute = "tokens"
)

// DynamoAPI is the subset of the DynamoDB client the repositories use.
type DynamoAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

var _ DynamoAPI = (*dynamodb.Client)(nil)

type dynamoInstallationRepository struct {
	client DynamoAPI
	table  string
}

// NewDynamoInstallationRepository creates an installation repository backed by a DynamoDB table.
// Items are {webhook_id: S, token: S}.
func NewDynamoInstallationRepository(client DynamoAPI, table string) InstallationRepository {
	return &dynamoInstallationRepository{client: client, table: table}
}

func (r *dynamoInstallationRepository) GetToken(ctx context.Context, webhookID string) (string, error) {
	return getStringAttribute(ctx, r.client, r.table, webhookID, tokenAttribute, false)
}

func (r *dynamoInstallationRepository) PutToken(ctx context.Context, webhookID, token string) error {
	_, err := r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.table),
		Item:      item(webhookID, tokenAttribute, token),
	})
	if err != nil {
		return fmt.Errorf("failed to put installation: %w", err)
	}
	return nil
}

type dynamoFeedbackRepository struct {
	client DynamoAPI
	table  string
}

// NewDynamoFeedbackRepository creates a feedback repository backed by a DynamoDB table.
// Items are {webhook_id: S, tokens: S} where tokens is a JSON array.
func NewDynamoFeedbackRepository(client DynamoAPI, table string) FeedbackRepository {
	return &dynamoFeedbackRepository{client: client, table: table}
}

func (r *dynamoFeedbackRepository) LoadTokens(ctx context.Context, webhookID string) (string, error) {
	return getStringAttribute(ctx, r.client, r.table, webhookID, tokensAttribute, true)
}

func (r *dynamoFeedbackRepository) PutTokens(ctx context.Context, webhookID, raw string) error {
	_, err := r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.table),
		Item:      item(webhookID, tokensAttribute, raw),
	})
	if err != nil {
		return fmt.Errorf("failed to put feedbacks: %w", err)
	}
	return nil
}

func (r *dynamoFeedbackRepository) CompareAndSwapTokens(ctx context.Context, webhookID, expected, raw string) error {
	input := &dynamodb.PutItemInput{
		TableName: aws.String(r.table),
		Item:      item(webhookID, tokensAttribute, raw),
	}
	if expected == "" {
		// A key-only item counts as an absent ledger, matching LoadTokens.
		input.ConditionExpression = aws.String("attribute_not_exists(#tokens)")
		input.ExpressionAttributeNames = map[string]string{"#tokens": tokensAttribute}
	} else {
		input.ConditionExpression = aws.String("#tokens = :expected")
		input.ExpressionAttributeNames = map[string]string{"#tokens": tokensAttribute}
		input.ExpressionAttributeValues = map[string]types.AttributeValue{
			":expected": &types.AttributeValueMemberS{Value: expected},
		}
	}

	_, err := r.client.PutItem(ctx, input)
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return apperrors.ErrConflict
		}
		return fmt.Errorf("failed to swap feedbacks: %w", err)
	}
	return nil
}

func item(webhookID, attribute, value string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		database.DynamoKeyAttribute: &types.AttributeValueMemberS{Value: webhookID},
		attribute:                   &types.AttributeValueMemberS{Value: value},
	}
}

func getStringAttribute(ctx context.Context, client DynamoAPI, table, webhookID, attribute string, consistent bool) (string, error) {
	out, err := client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(table),
		Key: map[string]types.AttributeValue{
			database.DynamoKeyAttribute: &types.AttributeValueMemberS{Value: webhookID},
		},
		ConsistentRead: aws.Bool(consistent),
	})
	if err != nil {
		return "", fmt.Errorf("failed to get item from %s: %w", table, err)
	}
	if len(out.Item) == 0 {
		return "", apperrors.ErrNotFound
	}

	attr, present := out.Item[attribute]
	if !present {
		return "", apperrors.ErrNotFound
	}
	value, ok := attr.(*types.AttributeValueMemberS)
	if !ok {
		return "", fmt.Errorf("item %s in %s has no string attribute %q", webhookID, table, attribute)
	}
	return value.Value, nil
}
