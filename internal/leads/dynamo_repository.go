package leads

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/inkwell-tutoring/inkwell-platform/pkg/logging"
)

// indexItemID is the partition key of the single item holding the ordered ID
// index. Lead IDs are UUIDs, so the key cannot collide with a record.
const indexItemID = "leads#index"

type dynamoAPI interface {
	TransactWriteItems(context.Context, *dynamodb.TransactWriteItemsInput, ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error)
	GetItem(context.Context, *dynamodb.GetItemInput, ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
}

type dynamoLead struct {
	ID        string `dynamodbav:"id"`
	Name      string `dynamodbav:"name"`
	Email     string `dynamodbav:"email"`
	Message   string `dynamodbav:"message"`
	CreatedAt int64  `dynamodbav:"createdAt"`
}

type dynamoIndex struct {
	IDs []string `dynamodbav:"ids"`
}

// DynamoRepository stores leads in a DynamoDB table: one item per lead keyed
// by id, plus a single index item whose ids list records insertion order.
type DynamoRepository struct {
	client    dynamoAPI
	tableName string
	logger    *logging.Logger
}

// NewDynamoRepository builds a repo backed by the provided DynamoDB client.
func NewDynamoRepository(client dynamoAPI, tableName string, logger *logging.Logger) *DynamoRepository {
	if client == nil {
		panic("leads: dynamodb client cannot be nil")
	}
	if tableName == "" {
		panic("leads: table name cannot be empty")
	}
	if logger == nil {
		logger = logging.Default()
	}

	return &DynamoRepository{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

// Create writes the record and appends its ID to the index item in a single
// transaction, so the two cannot diverge even under concurrent submissions.
func (r *DynamoRepository) Create(ctx context.Context, lead *Lead) error {
	item, err := attributevalue.MarshalMap(dynamoLead{
		ID:        lead.ID,
		Name:      lead.Name,
		Email:     lead.Email,
		Message:   lead.Message,
		CreatedAt: lead.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("leads: failed to marshal lead: %w", err)
	}

	_, err = r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{
				Put: &types.Put{
					TableName:           aws.String(r.tableName),
					Item:                item,
					ConditionExpression: aws.String("attribute_not_exists(id)"),
				},
			},
			{
				Update: &types.Update{
					TableName: aws.String(r.tableName),
					Key: map[string]types.AttributeValue{
						"id": &types.AttributeValueMemberS{Value: indexItemID},
					},
					UpdateExpression: aws.String("SET ids = list_append(if_not_exists(ids, :empty), :id)"),
					ExpressionAttributeValues: map[string]types.AttributeValue{
						":empty": &types.AttributeValueMemberL{Value: []types.AttributeValue{}},
						":id": &types.AttributeValueMemberL{Value: []types.AttributeValue{
							&types.AttributeValueMemberS{Value: lead.ID},
						}},
					},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("leads: failed to persist lead: %w", err)
	}
	return nil
}

// GetByID fetches a lead by ID.
func (r *DynamoRepository) GetByID(ctx context.Context, id string) (*Lead, error) {
	if id == indexItemID {
		return nil, ErrLeadNotFound
	}
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("leads: failed to fetch lead: %w", err)
	}
	if out.Item == nil {
		return nil, ErrLeadNotFound
	}

	var rec dynamoLead
	if err := attributevalue.UnmarshalMap(out.Item, &rec); err != nil {
		return nil, fmt.Errorf("leads: failed to decode lead: %w", err)
	}
	return &Lead{
		ID:        rec.ID,
		Name:      rec.Name,
		Email:     rec.Email,
		Message:   rec.Message,
		CreatedAt: rec.CreatedAt,
	}, nil
}

// ListIDs reads the index item.
func (r *DynamoRepository) ListIDs(ctx context.Context) ([]string, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: indexItemID},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("leads: failed to fetch index: %w", err)
	}
	if out.Item == nil {
		return nil, nil
	}

	var idx dynamoIndex
	if err := attributevalue.UnmarshalMap(out.Item, &idx); err != nil {
		return nil, fmt.Errorf("leads: failed to decode index: %w", err)
	}
	return idx.IDs, nil
}
