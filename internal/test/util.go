package test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"
	"philcali.me/sharedlists/internal/data"
	"philcali.me/sharedlists/internal/exceptions"
	"philcali.me/sharedlists/internal/routes"
)

// MemoryListService implements the same contract as the DynamoDB
// service against a mutex-guarded map, so workflow and poll tests can
// observe mutations committing at millisecond resolution.
type MemoryListService struct {
	mutex sync.Mutex
	lists map[string]*data.ShoppingListDTO
	order []string
}

func NewMemoryListService() *MemoryListService {
	return &MemoryListService{
		lists: make(map[string]*data.ShoppingListDTO),
	}
}

func _clock(after float64) float64 {
	now := float64(time.Now().UnixMicro()) / 1e6
	if now <= after {
		now = after + 1e-6
	}
	return now
}

func _copy(doc *data.ShoppingListDTO) data.ShoppingListDTO {
	snapshot := *doc
	snapshot.Items = make([]data.ItemDTO, len(doc.Items))
	copy(snapshot.Items, doc.Items)
	return snapshot
}

func (ms *MemoryListService) Create(input data.ShoppingListInputDTO) (data.ShoppingListDTO, error) {
	ms.mutex.Lock()
	defer ms.mutex.Unlock()
	name := data.DefaultListName
	if input.Name != nil {
		name = *input.Name
	}
	gid, err := uuid.NewUUID()
	if err != nil {
		return data.ShoppingListDTO{}, err
	}
	doc := &data.ShoppingListDTO{
		PK:        "ShoppingList",
		SK:        gid.String(),
		Name:      name,
		Items:     make([]data.ItemDTO, 0),
		UpdatedAt: _clock(0),
	}
	ms.lists[doc.SK] = doc
	ms.order = append(ms.order, doc.SK)
	return _copy(doc), nil
}

func (ms *MemoryListService) Get(listId string) (data.ShoppingListDTO, error) {
	ms.mutex.Lock()
	defer ms.mutex.Unlock()
	doc, ok := ms.lists[listId]
	if !ok {
		return data.ShoppingListDTO{}, exceptions.NotFound("list", listId)
	}
	return _copy(doc), nil
}

func (ms *MemoryListService) List() ([]data.ShoppingListDTO, error) {
	ms.mutex.Lock()
	defer ms.mutex.Unlock()
	items := make([]data.ShoppingListDTO, 0, len(ms.order))
	for _, listId := range ms.order {
		if doc, ok := ms.lists[listId]; ok {
			items = append(items, _copy(doc))
		}
	}
	return items, nil
}

func (ms *MemoryListService) Delete(listId string) error {
	ms.mutex.Lock()
	defer ms.mutex.Unlock()
	if _, ok := ms.lists[listId]; !ok {
		return exceptions.NotFound("list", listId)
	}
	delete(ms.lists, listId)
	return nil
}

func (ms *MemoryListService) _mutate(listId string, apply func(*data.ShoppingListDTO) (bool, error)) (data.ShoppingListDTO, error) {
	ms.mutex.Lock()
	defer ms.mutex.Unlock()
	doc, ok := ms.lists[listId]
	if !ok {
		return data.ShoppingListDTO{}, exceptions.NotFound("list", listId)
	}
	changed, err := apply(doc)
	if err != nil {
		return _copy(doc), err
	}
	if changed {
		doc.UpdatedAt = _clock(doc.UpdatedAt)
	}
	return _copy(doc), nil
}

func (ms *MemoryListService) AppendItem(listId string, item data.ItemDTO) (data.ShoppingListDTO, error) {
	return ms.AppendItems(listId, item)
}

func (ms *MemoryListService) AppendItems(listId string, items ...data.ItemDTO) (data.ShoppingListDTO, error) {
	return ms._mutate(listId, func(doc *data.ShoppingListDTO) (bool, error) {
		doc.Items = append(doc.Items, items...)
		return len(items) > 0, nil
	})
}

func (ms *MemoryListService) UpdateItem(listId string, itemId string, update data.ItemUpdateDTO) (data.ShoppingListDTO, error) {
	return ms._mutate(listId, func(doc *data.ShoppingListDTO) (bool, error) {
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

func (ms *MemoryListService) RemoveItem(listId string, itemId string) (data.ShoppingListDTO, error) {
	return ms._mutate(listId, func(doc *data.ShoppingListDTO) (bool, error) {
		for i := range doc.Items {
			if doc.Items[i].Id == itemId {
				doc.Items = append(doc.Items[:i], doc.Items[i+1:]...)
				return true, nil
			}
		}
		return false, nil
	})
}

// LocalServer drives the router the way API Gateway would, without the
// network in between.
type LocalServer struct {
	Router *routes.Router
}

func NewLocalServer(router *routes.Router) *LocalServer {
	return &LocalServer{Router: router}
}

func (ls *LocalServer) Request(t *testing.T, ctx context.Context, method string, path string, body []byte, out any, params map[string]string) events.APIGatewayV2HTTPResponse {
	request := events.APIGatewayV2HTTPRequest{
		RawPath:               path,
		Body:                  string(body),
		QueryStringParameters: params,
	}
	request.RequestContext.HTTP.Method = method
	request.RequestContext.HTTP.Path = path
	response := ls.Router.Invoke(request, ctx)
	if out != nil && response.Body != "" {
		if err := json.Unmarshal([]byte(response.Body), &out); err != nil {
			t.Fatalf("Failed to deserialize payload for %s %s: %s", method, path, response.Body)
		}
	}
	return response
}

func (ls *LocalServer) Options(t *testing.T, path string) events.APIGatewayV2HTTPResponse {
	return ls.Request(t, context.TODO(), "OPTIONS", path, nil, nil, nil)
}

func (ls *LocalServer) Get(t *testing.T, out any, path string) events.APIGatewayV2HTTPResponse {
	return ls.Request(t, context.TODO(), "GET", path, nil, &out, nil)
}

func (ls *LocalServer) GetQuery(t *testing.T, out any, path string, params map[string]string) events.APIGatewayV2HTTPResponse {
	return ls.Request(t, context.TODO(), "GET", path, nil, &out, params)
}

func (ls *LocalServer) Post(t *testing.T, out any, path string, body any) events.APIGatewayV2HTTPResponse {
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("Failed to serialize input: %s", err)
	}
	return ls.Request(t, context.TODO(), "POST", path, payload, &out, nil)
}

func (ls *LocalServer) Put(t *testing.T, out any, path string, body any) events.APIGatewayV2HTTPResponse {
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("Failed to serialize input: %s", err)
	}
	return ls.Request(t, context.TODO(), "PUT", path, payload, &out, nil)
}

func (ls *LocalServer) Delete(t *testing.T, path string) events.APIGatewayV2HTTPResponse {
	return ls.Request(t, context.TODO(), "DELETE", path, nil, nil, nil)
}
