package store

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DynamoDB key constants for the single-table design. Each snapshot key is
// its own partition with a fixed sort key.
const (
	pkPrefix = "STUDIO#"
	skState  = "STATE"
)

// DynamoAPI is the subset of *dynamodb.Client used by DynamoStore.
type DynamoAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// snapshotItem is the stored attribute set apart from PK, SK and expiresAt.
type snapshotItem struct {
	Value     string `dynamodbav:"value"`
	UpdatedAt string `dynamodbav:"updatedAt"`
}

// DynamoStore keeps values in a DynamoDB table with a TTL attribute
// (expiresAt) so abandoned snapshots age out.
type DynamoStore struct {
	client    DynamoAPI
	tableName string
	now       func() time.Time
}

var _ Store = (*DynamoStore)(nil)

// NewDynamoStore creates a DynamoStore for the given table.
func NewDynamoStore(client DynamoAPI, tableName string) *DynamoStore {
	return &DynamoStore{client: client, tableName: tableName, now: time.Now}
}

func keyAttrs(key string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: pkPrefix + key},
		"SK": &types.AttributeValueMemberS{Value: skState},
	}
}

func (s *DynamoStore) Get(ctx context.Context, key string) (string, bool, error) {
	result, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: &s.tableName,
		Key:       keyAttrs(key),
	})
	if err != nil {
		return "", false, fmt.Errorf("GetItem PK=%s%s: %w", pkPrefix, key, err)
	}
	if result.Item == nil {
		return "", false, nil
	}
	var item snapshotItem
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return "", false, fmt.Errorf("unmarshal PK=%s%s: %w", pkPrefix, key, err)
	}
	return item.Value, true, nil
}

func (s *DynamoStore) Put(ctx context.Context, key, value string) error {
	now := s.now()
	item, err := attributevalue.MarshalMap(snapshotItem{
		Value:     value,
		UpdatedAt: now.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	for k, v := range keyAttrs(key) {
		item[k] = v
	}
	item["expiresAt"] = &types.AttributeValueMemberN{Value: strconv.FormatInt(now.Add(SnapshotTTL).Unix(), 10)}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: &s.tableName,
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("PutItem PK=%s%s: %w", pkPrefix, key, err)
	}
	return nil
}

// Close is a no-op; the DynamoDB client holds no per-store resources.
func (s *DynamoStore) Close() error { return nil }
