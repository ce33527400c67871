package leads

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/inkwell-tutoring/inkwell-platform/pkg/logging"
)

// fakeDynamo records transact calls and serves canned items.
type fakeDynamo struct {
	transacts []*dynamodb.TransactWriteItemsInput
	items     map[string]map[string]types.AttributeValue
	err       error
}

func (f *fakeDynamo) TransactWriteItems(_ context.Context, in *dynamodb.TransactWriteItemsInput, _ ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.transacts = append(f.transacts, in)
	return &dynamodb.TransactWriteItemsOutput{}, nil
}

func (f *fakeDynamo) GetItem(_ context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	key := in.Key["id"].(*types.AttributeValueMemberS).Value
	return &dynamodb.GetItemOutput{Item: f.items[key]}, nil
}

func TestDynamoRepository_CreateTransaction(t *testing.T) {
	fake := &fakeDynamo{}
	repo := NewDynamoRepository(fake, "leads-table", logging.New("error"))

	lead := NewLead("Ann Lee", "ann@example.com", "hello there")
	if err := repo.Create(context.Background(), lead); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if len(fake.transacts) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(fake.transacts))
	}
	items := fake.transacts[0].TransactItems
	if len(items) != 2 {
		t.Fatalf("expected record put plus index update, got %d items", len(items))
	}

	put := items[0].Put
	if put == nil {
		t.Fatal("expected first transact item to be a Put")
	}
	if aws.ToString(put.TableName) != "leads-table" {
		t.Errorf("unexpected table %q", aws.ToString(put.TableName))
	}
	if aws.ToString(put.ConditionExpression) != "attribute_not_exists(id)" {
		t.Errorf("expected no-overwrite guard, got %q", aws.ToString(put.ConditionExpression))
	}
	var stored dynamoLead
	if err := attributevalue.UnmarshalMap(put.Item, &stored); err != nil {
		t.Fatalf("decode put item: %v", err)
	}
	if stored.ID != lead.ID || stored.CreatedAt != lead.CreatedAt {
		t.Errorf("unexpected stored item: %+v", stored)
	}

	update := items[1].Update
	if update == nil {
		t.Fatal("expected second transact item to be an Update")
	}
	if got := update.Key["id"].(*types.AttributeValueMemberS).Value; got != indexItemID {
		t.Errorf("expected index item key, got %q", got)
	}
	if got := aws.ToString(update.UpdateExpression); got != "SET ids = list_append(if_not_exists(ids, :empty), :id)" {
		t.Errorf("expected atomic list append, got %q", got)
	}
}

func TestDynamoRepository_CreateError(t *testing.T) {
	fake := &fakeDynamo{err: errors.New("throttled")}
	repo := NewDynamoRepository(fake, "leads-table", logging.New("error"))

	if err := repo.Create(context.Background(), NewLead("A", "a@b.co", "hi")); err == nil {
		t.Fatal("expected error")
	}
}

func TestDynamoRepository_GetByID(t *testing.T) {
	item, err := attributevalue.MarshalMap(dynamoLead{
		ID: "lead-1", Name: "Ann", Email: "ann@example.com", Message: "hello there", CreatedAt: 1700000000000,
	})
	if err != nil {
		t.Fatalf("marshal fixture: %v", err)
	}
	fake := &fakeDynamo{items: map[string]map[string]types.AttributeValue{"lead-1": item}}
	repo := NewDynamoRepository(fake, "leads-table", logging.New("error"))

	lead, err := repo.GetByID(context.Background(), "lead-1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if lead.Email != "ann@example.com" || lead.CreatedAt != 1700000000000 {
		t.Errorf("unexpected lead: %+v", lead)
	}
}

func TestDynamoRepository_GetByID_NotFound(t *testing.T) {
	fake := &fakeDynamo{}
	repo := NewDynamoRepository(fake, "leads-table", logging.New("error"))

	if _, err := repo.GetByID(context.Background(), "missing"); !errors.Is(err, ErrLeadNotFound) {
		t.Errorf("expected ErrLeadNotFound, got %v", err)
	}
	// The index item is never a lead.
	if _, err := repo.GetByID(context.Background(), indexItemID); !errors.Is(err, ErrLeadNotFound) {
		t.Errorf("expected ErrLeadNotFound for index key, got %v", err)
	}
}

func TestDynamoRepository_ListIDs(t *testing.T) {
	idx, err := attributevalue.MarshalMap(dynamoIndex{IDs: []string{"lead-1", "lead-2"}})
	if err != nil {
		t.Fatalf("marshal fixture: %v", err)
	}
	fake := &fakeDynamo{items: map[string]map[string]types.AttributeValue{indexItemID: idx}}
	repo := NewDynamoRepository(fake, "leads-table", logging.New("error"))

	ids, err := repo.ListIDs(context.Background())
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(ids) != 2 || ids[0] != "lead-1" {
		t.Errorf("unexpected ids: %v", ids)
	}
}

func TestDynamoRepository_ListIDs_Empty(t *testing.T) {
	fake := &fakeDynamo{}
	repo := NewDynamoRepository(fake, "leads-table", logging.New("error"))

	ids, err := repo.ListIDs(context.Background())
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("expected empty index, got %v", ids)
	}
}
