package lists_test

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"philcali.me/sharedlists/internal/data"
	listData "philcali.me/sharedlists/internal/dynamodb/lists"
	"philcali.me/sharedlists/internal/exceptions"
)

// stubDynamoDB answers the service's calls with canned documents and
// errors wrapped the way the SDK wraps them in production.
type stubDynamoDB struct {
	item      map[string]types.AttributeValue
	putErrs   []error
	puts      []map[string]types.AttributeValue
	deleteErr error
}

func (s *stubDynamoDB) GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	return &dynamodb.GetItemOutput{Item: s.item}, nil
}

func (s *stubDynamoDB) PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	s.puts = append(s.puts, params.Item)
	if len(s.putErrs) > 0 {
		err := s.putErrs[0]
		s.putErrs = s.putErrs[1:]
		return nil, err
	}
	return &dynamodb.PutItemOutput{}, nil
}

func (s *stubDynamoDB) DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	if s.deleteErr != nil {
		return nil, s.deleteErr
	}
	return &dynamodb.DeleteItemOutput{}, nil
}

func (s *stubDynamoDB) Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	return &dynamodb.QueryOutput{}, nil
}

// The SDK surfaces modeled exceptions inside an operation error, never
// as the outermost value.
func conditionFailure(operation string) error {
	return &smithy.OperationError{
		ServiceID:     "DynamoDB",
		OperationName: operation,
		Err:           &types.ConditionalCheckFailedException{},
	}
}

func newService(stub *stubDynamoDB) *listData.ShoppingListDynamoDBService {
	return &listData.ShoppingListDynamoDBService{
		DynamoDB:  stub,
		TableName: "ListData",
	}
}

func storedList(t *testing.T, doc data.ShoppingListDTO) map[string]types.AttributeValue {
	item, err := attributevalue.MarshalMap(doc)
	if err != nil {
		t.Fatalf("Failed to marshal the stored document: %s", err)
	}
	return item
}

func TestGetTranslatesMissingDocument(t *testing.T) {
	service := newService(&stubDynamoDB{})
	_, err := service.Get("missing")
	if _, ok := err.(*exceptions.NotFoundError); !ok {
		t.Fatalf("Expected a NotFoundError, got: %v", err)
	}
}

func TestDeleteTranslatesConditionFailure(t *testing.T) {
	service := newService(&stubDynamoDB{
		deleteErr: conditionFailure("DeleteItem"),
	})
	err := service.Delete("missing")
	nfe, ok := err.(*exceptions.NotFoundError)
	if !ok {
		t.Fatalf("Expected a NotFoundError from a failed condition, got: %v", err)
	}
	if nfe.ToServiceError().StatusCode != 404 {
		t.Fatalf("Expected a 404 mapping, got %d", nfe.ToServiceError().StatusCode)
	}
}

func TestCreateTranslatesConditionFailure(t *testing.T) {
	service := newService(&stubDynamoDB{
		putErrs: []error{conditionFailure("PutItem")},
	})
	_, err := service.Create(data.ShoppingListInputDTO{})
	if _, ok := err.(*exceptions.ConflictError); !ok {
		t.Fatalf("Expected a ConflictError from a failed condition, got: %v", err)
	}
}

func TestAppendRetriesOnWriteContention(t *testing.T) {
	doc := data.ShoppingListDTO{
		PK:        "ShoppingList",
		SK:        "abc",
		Name:      "Weekly",
		Items:     []data.ItemDTO{{Id: "item-1", Title: "bread", Quantity: 1, Price: 100}},
		UpdatedAt: 5,
	}
	stub := &stubDynamoDB{
		item:    storedList(t, doc),
		putErrs: []error{conditionFailure("PutItem")},
	}
	service := newService(stub)
	updated, err := service.AppendItem("abc", data.ItemDTO{Id: "item-2", Title: "milk", Quantity: 1, Price: 50})
	if err != nil {
		t.Fatalf("Expected the contended write to retry and land, got: %s", err)
	}
	if len(stub.puts) != 2 {
		t.Fatalf("Expected a second write attempt after contention, got %d", len(stub.puts))
	}
	if len(updated.Items) != 2 {
		t.Fatalf("Expected both items on the document, got %v", updated.Items)
	}
	if updated.UpdatedAt <= doc.UpdatedAt {
		t.Fatalf("Expected updatedAt to move past %f, got %f", doc.UpdatedAt, updated.UpdatedAt)
	}
	var written data.ShoppingListDTO
	if err := attributevalue.UnmarshalMap(stub.puts[1], &written); err != nil {
		t.Fatalf("Failed to unmarshal the written document: %s", err)
	}
	if written.UpdatedAt != updated.UpdatedAt || len(written.Items) != 2 {
		t.Fatalf("Expected the write to couple items and timestamp, got %v", written)
	}
}

func TestAppendGivesUpAfterRepeatedContention(t *testing.T) {
	doc := data.ShoppingListDTO{PK: "ShoppingList", SK: "abc", Name: "Weekly", UpdatedAt: 5}
	stub := &stubDynamoDB{
		item: storedList(t, doc),
		putErrs: []error{
			conditionFailure("PutItem"),
			conditionFailure("PutItem"),
			conditionFailure("PutItem"),
		},
	}
	service := newService(stub)
	_, err := service.AppendItem("abc", data.ItemDTO{Id: "item-1", Title: "bread", Quantity: 1})
	if _, ok := err.(*exceptions.ConflictError); !ok {
		t.Fatalf("Expected a ConflictError once retries are exhausted, got: %v", err)
	}
	if len(stub.puts) != 3 {
		t.Fatalf("Expected every attempt to reach the store, got %d", len(stub.puts))
	}
}

func TestUpdateMissingItemSkipsWrite(t *testing.T) {
	doc := data.ShoppingListDTO{PK: "ShoppingList", SK: "abc", Name: "Weekly", UpdatedAt: 5}
	stub := &stubDynamoDB{item: storedList(t, doc)}
	service := newService(stub)
	_, err := service.UpdateItem("abc", "ghost", data.ItemUpdateDTO{Title: "ghost", Quantity: 1})
	if _, ok := err.(*exceptions.NotFoundError); !ok {
		t.Fatalf("Expected a NotFoundError for a missing item, got: %v", err)
	}
	if len(stub.puts) != 0 {
		t.Fatalf("Expected no write for a missing item, got %d", len(stub.puts))
	}
}

func TestRemoveAbsentItemSkipsWrite(t *testing.T) {
	doc := data.ShoppingListDTO{PK: "ShoppingList", SK: "abc", Name: "Weekly", UpdatedAt: 5}
	stub := &stubDynamoDB{item: storedList(t, doc)}
	service := newService(stub)
	unchanged, err := service.RemoveItem("abc", "ghost")
	if err != nil {
		t.Fatalf("Expected an idempotent remove, got: %s", err)
	}
	if len(stub.puts) != 0 {
		t.Fatalf("Expected no write for an absent item, got %d", len(stub.puts))
	}
	if unchanged.UpdatedAt != doc.UpdatedAt {
		t.Fatalf("Expected updatedAt untouched by a no-op remove: %f -> %f", doc.UpdatedAt, unchanged.UpdatedAt)
	}
}
