package lists

import (
	"context"
	"errors"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
	"philcali.me/sharedlists/internal/data"
	"philcali.me/sharedlists/internal/exceptions"
)

const _partition = "ShoppingList"

// Mutations re-read and retry on write contention before giving up.
const _maxAttempts = 3

// ShoppingListAPI is the slice of the DynamoDB client the service
// calls; satisfied by *dynamodb.Client.
type ShoppingListAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

type ShoppingListDynamoDBService struct {
	DynamoDB  ShoppingListAPI
	TableName string
}

func NewShoppingListService(tableName string, client dynamodb.Client) data.ShoppingListDataService {
	return &ShoppingListDynamoDBService{
		DynamoDB:  &client,
		TableName: tableName,
	}
}

// The SDK returns modeled exceptions wrapped in operation errors, so a
// direct type assertion never matches.
func _conditionFailed(err error) bool {
	var ccf *types.ConditionalCheckFailedException
	return errors.As(err, &ccf)
}

func _getKey(pks string, sks string) (map[string]types.AttributeValue, error) {
	pk, err := attributevalue.Marshal(pks)
	if err != nil {
		return nil, err
	}
	sk, err := attributevalue.Marshal(sks)
	if err != nil {
		return nil, err
	}
	return map[string]types.AttributeValue{"PK": pk, "SK": sk}, nil
}

// _clock returns epoch seconds with sub-second precision, forced
// strictly past the prior value so updatedAt never stalls on a coarse
// or stepped clock.
func _clock(after float64) float64 {
	now := float64(time.Now().UnixMicro()) / 1e6
	if now <= after {
		now = after + 1e-6
	}
	return now
}

func (sl *ShoppingListDynamoDBService) Create(input data.ShoppingListInputDTO) (data.ShoppingListDTO, error) {
	name := data.DefaultListName
	if input.Name != nil {
		name = *input.Name
	}
	gid, err := uuid.NewUUID()
	if err != nil {
		return data.ShoppingListDTO{}, err
	}
	shim := data.ShoppingListDTO{
		PK:        _partition,
		SK:        gid.String(),
		Name:      name,
		Items:     make([]data.ItemDTO, 0),
		UpdatedAt: _clock(0),
	}
	item, err := attributevalue.MarshalMap(shim)
	if err != nil {
		return shim, err
	}
	expr, err := expression.NewBuilder().
		WithCondition(expression.Name("PK").AttributeNotExists().And(expression.Name("SK").AttributeNotExists())).
		Build()
	if err != nil {
		return shim, err
	}
	_, err = sl.DynamoDB.PutItem(context.TODO(), &dynamodb.PutItemInput{
		Item:                     item,
		TableName:                aws.String(sl.TableName),
		ConditionExpression:      expr.Condition(),
		ExpressionAttributeNames: expr.Names(),
	})
	if err != nil {
		if _conditionFailed(err) {
			return shim, exceptions.Conflict("list", shim.SK)
		}
		return shim, err
	}
	return shim, nil
}

func (sl *ShoppingListDynamoDBService) Get(listId string) (data.ShoppingListDTO, error) {
	shim := data.ShoppingListDTO{PK: _partition, SK: listId}
	key, err := _getKey(_partition, listId)
	if err != nil {
		return shim, err
	}
	response, err := sl.DynamoDB.GetItem(context.TODO(), &dynamodb.GetItemInput{
		TableName: aws.String(sl.TableName),
		Key:       key,
	})
	if err != nil {
		return shim, err
	}
	if response.Item == nil {
		return shim, exceptions.NotFound("list", listId)
	}
	err = attributevalue.UnmarshalMap(response.Item, &shim)
	return shim, err
}

func (sl *ShoppingListDynamoDBService) List() ([]data.ShoppingListDTO, error) {
	keyEx := expression.Key("PK").Equal(expression.Value(_partition))
	expr, err := expression.NewBuilder().WithKeyCondition(keyEx).Build()
	if err != nil {
		return nil, err
	}
	items := make([]data.ShoppingListDTO, 0)
	var startKey map[string]types.AttributeValue
	for {
		output, err := sl.DynamoDB.Query(context.TODO(), &dynamodb.QueryInput{
			TableName:                 aws.String(sl.TableName),
			KeyConditionExpression:    expr.KeyCondition(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
			ExclusiveStartKey:         startKey,
		})
		if err != nil {
			return nil, err
		}
		var page []data.ShoppingListDTO
		if err := attributevalue.UnmarshalListOfMaps(output.Items, &page); err != nil {
			return nil, err
		}
		items = append(items, page...)
		if output.LastEvaluatedKey == nil {
			return items, nil
		}
		startKey = output.LastEvaluatedKey
	}
}

func (sl *ShoppingListDynamoDBService) Delete(listId string) error {
	key, err := _getKey(_partition, listId)
	if err != nil {
		return err
	}
	expr, err := expression.NewBuilder().
		WithCondition(expression.Name("PK").AttributeExists().And(expression.Name("SK").AttributeExists())).
		Build()
	if err != nil {
		return err
	}
	_, err = sl.DynamoDB.DeleteItem(context.TODO(), &dynamodb.DeleteItemInput{
		Key:                      key,
		TableName:                aws.String(sl.TableName),
		ConditionExpression:      expr.Condition(),
		ExpressionAttributeNames: expr.Names(),
	})
	if err != nil {
		if _conditionFailed(err) {
			return exceptions.NotFound("list", listId)
		}
	}
	return err
}

// _mutate applies an in-place change to the list document and writes it
// back guarded on the updatedAt value that was read, so the data change
// and the timestamp bump land atomically or not at all. An apply that
// reports no change is returned as-is without touching updatedAt.
func (sl *ShoppingListDynamoDBService) _mutate(listId string, apply func(*data.ShoppingListDTO) (bool, error)) (data.ShoppingListDTO, error) {
	for attempt := 0; attempt < _maxAttempts; attempt++ {
		doc, err := sl.Get(listId)
		if err != nil {
			return doc, err
		}
		seen := doc.UpdatedAt
		changed, err := apply(&doc)
		if err != nil {
			return doc, err
		}
		if !changed {
			return doc, nil
		}
		doc.UpdatedAt = _clock(seen)
		item, err := attributevalue.MarshalMap(doc)
		if err != nil {
			return doc, err
		}
		expr, err := expression.NewBuilder().
			WithCondition(expression.Name("PK").AttributeExists().And(expression.Name("updatedAt").Equal(expression.Value(seen)))).
			Build()
		if err != nil {
			return doc, err
		}
		_, err = sl.DynamoDB.PutItem(context.TODO(), &dynamodb.PutItemInput{
			Item:                      item,
			TableName:                 aws.String(sl.TableName),
			ConditionExpression:       expr.Condition(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
		})
		if err != nil {
			if _conditionFailed(err) {
				continue
			}
			return doc, err
		}
		return doc, nil
	}
	return data.ShoppingListDTO{}, exceptions.Conflict("list", listId)
}

func (sl *ShoppingListDynamoDBService) AppendItem(listId string, item data.ItemDTO) (data.ShoppingListDTO, error) {
	return sl.AppendItems(listId, item)
}

func (sl *ShoppingListDynamoDBService) AppendItems(listId string, items ...data.ItemDTO) (data.ShoppingListDTO, error) {
	return sl._mutate(listId, func(doc *data.ShoppingListDTO) (bool, error) {
		doc.Items = append(doc.Items, items...)
		return len(items) > 0, nil
	})
}

func (sl *ShoppingListDynamoDBService) UpdateItem(listId string, itemId string, update data.ItemUpdateDTO) (data.ShoppingListDTO, error) {
	return sl._mutate(listId, func(doc *data.ShoppingListDTO) (bool, error) {
		for i := range doc.Items {
			if doc.Items[i].Id == itemId {
				doc.Items[i].Title = update.Title
				doc.Items[i].Quantity = update.Quantity
				doc.Items[i].IsBought = update.IsBought
				return true, nil
			}
		}
		return false, exceptions.NotFound("item", itemId)
	})
}

func (sl *ShoppingListDynamoDBService) RemoveItem(listId string, itemId string) (data.ShoppingListDTO, error) {
	return sl._mutate(listId, func(doc *data.ShoppingListDTO) (bool, error) {
		for i := range doc.Items {
			if doc.Items[i].Id == itemId {
				doc.Items = append(doc.Items[:i], doc.Items[i+1:]...)
				return true, nil
			}
		}
		// Removing an absent item is a no-op, not an error, and must
		// not bump updatedAt or pollers would wake for nothing.
		return false, nil
	})
}
