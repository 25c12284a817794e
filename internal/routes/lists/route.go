package lists

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"
	"philcali.me/sharedlists/internal/data"
	"philcali.me/sharedlists/internal/exceptions"
	"philcali.me/sharedlists/internal/parse"
	"philcali.me/sharedlists/internal/poll"
	"philcali.me/sharedlists/internal/provider"
	"philcali.me/sharedlists/internal/routes"
	"philcali.me/sharedlists/internal/routes/util"
)

type ShoppingListService struct {
	data      data.ShoppingListDataService
	generator provider.ItemSource
	poller    *poll.Engine
}

func NewRoute(data data.ShoppingListDataService, generator provider.ItemSource, poller *poll.Engine) routes.Service {
	return &ShoppingListService{
		data:      data,
		generator: generator,
		poller:    poller,
	}
}

func (sl *ShoppingListService) GetRoutes() map[string]routes.Route {
	return map[string]routes.Route{
		"POST:/lists":                         sl.CreateShoppingList,
		"GET:/lists":                          sl.ListShoppingLists,
		"GET:/lists/:listId":                  sl.GetShoppingList,
		"DELETE:/lists/:listId":               sl.DeleteShoppingList,
		"POST:/lists/:listId/items":           sl.CreateItem,
		"PUT:/lists/:listId/items/:itemId":    sl.UpdateItem,
		"DELETE:/lists/:listId/items/:itemId": sl.DeleteItem,
		"GET:/lists/:listId/poll":             sl.PollShoppingList,
		"POST:/lists/:listId/generate_items":  sl.GenerateItems,
	}
}

func (sl *ShoppingListService) CreateShoppingList(event events.APIGatewayV2HTTPRequest, ctx context.Context) (events.APIGatewayV2HTTPResponse, error) {
	input := ShoppingListInput{}
	if strings.TrimSpace(event.Body) != "" {
		if err := json.Unmarshal([]byte(event.Body), &input); err != nil {
			return events.APIGatewayV2HTTPResponse{}, exceptions.InvalidInput(err.Error())
		}
	}
	created, err := sl.data.Create(input.ToData())
	return util.SerializeResponseCreated(func(list data.ShoppingListDTO) CreatedResource {
		return CreatedResource{Id: list.SK}
	}, created, err)
}

func (sl *ShoppingListService) ListShoppingLists(event events.APIGatewayV2HTTPRequest, ctx context.Context) (events.APIGatewayV2HTTPResponse, error) {
	items, err := sl.data.List()
	return util.SerializeResponseOK(NewShoppingLists, items, err)
}

func (sl *ShoppingListService) GetShoppingList(event events.APIGatewayV2HTTPRequest, ctx context.Context) (events.APIGatewayV2HTTPResponse, error) {
	item, err := sl.data.Get(util.RequestParam(ctx, "listId"))
	return util.SerializeResponseOK(NewShoppingList, item, err)
}

func (sl *ShoppingListService) DeleteShoppingList(event events.APIGatewayV2HTTPRequest, ctx context.Context) (events.APIGatewayV2HTTPResponse, error) {
	err := sl.data.Delete(util.RequestParam(ctx, "listId"))
	return util.SerializeResponseNoContent(err)
}

func _validateItemInput(input ItemInput) error {
	if strings.TrimSpace(input.Title) == "" {
		return exceptions.InvalidInput("Item title must not be empty")
	}
	if input.Quantity < 1 {
		return exceptions.InvalidInput("Item quantity must be a positive integer")
	}
	return nil
}

func (sl *ShoppingListService) CreateItem(event events.APIGatewayV2HTTPRequest, ctx context.Context) (events.APIGatewayV2HTTPResponse, error) {
	input := ItemInput{}
	if err := json.Unmarshal([]byte(event.Body), &input); err != nil {
		return events.APIGatewayV2HTTPResponse{}, exceptions.InvalidInput(err.Error())
	}
	if err := _validateItemInput(input); err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}
	listId := util.RequestParam(ctx, "listId")
	if _, err := sl.data.Get(listId); err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}
	gid, err := uuid.NewUUID()
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}
	item := data.ItemDTO{
		Id:       gid.String(),
		Title:    input.Title,
		Quantity: input.Quantity,
		Price:    sl.generator.EstimatePrice(ctx, input.Title),
		IsBought: false,
	}
	updated, err := sl.data.AppendItem(listId, item)
	return util.SerializeResponseCreated(func(list data.ShoppingListDTO) CreatedResource {
		return CreatedResource{Id: item.Id}
	}, updated, err)
}

func (sl *ShoppingListService) UpdateItem(event events.APIGatewayV2HTTPRequest, ctx context.Context) (events.APIGatewayV2HTTPResponse, error) {
	input := ItemInput{}
	if err := json.Unmarshal([]byte(event.Body), &input); err != nil {
		return events.APIGatewayV2HTTPResponse{}, exceptions.InvalidInput(err.Error())
	}
	if err := _validateItemInput(input); err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}
	updated, err := sl.data.UpdateItem(
		util.RequestParam(ctx, "listId"),
		util.RequestParam(ctx, "itemId"),
		data.ItemUpdateDTO{
			Title:    input.Title,
			Quantity: input.Quantity,
			IsBought: input.IsBought,
		},
	)
	return util.SerializeResponseOK(NewShoppingList, updated, err)
}

func (sl *ShoppingListService) DeleteItem(event events.APIGatewayV2HTTPRequest, ctx context.Context) (events.APIGatewayV2HTTPResponse, error) {
	_, err := sl.data.RemoveItem(util.RequestParam(ctx, "listId"), util.RequestParam(ctx, "itemId"))
	return util.SerializeResponseNoContent(err)
}

func (sl *ShoppingListService) PollShoppingList(event events.APIGatewayV2HTTPRequest, ctx context.Context) (events.APIGatewayV2HTTPResponse, error) {
	lastSeen := float64(0)
	if raw, ok := event.QueryStringParameters["last_updated"]; ok && raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return events.APIGatewayV2HTTPResponse{}, exceptions.InvalidInput("last_updated must be a number")
		}
		lastSeen = parsed
	}
	list, outcome, err := sl.poller.Wait(ctx, util.RequestParam(ctx, "listId"), lastSeen)
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}
	if outcome == poll.TimedOut {
		// Not an error: nothing changed within the budget.
		return util.SerializeResponseNoContent(nil)
	}
	return util.SerializeResponseOK(NewShoppingList, list, nil)
}

func (sl *ShoppingListService) GenerateItems(event events.APIGatewayV2HTTPRequest, ctx context.Context) (events.APIGatewayV2HTTPResponse, error) {
	input := GenerateItemsInput{}
	if err := json.Unmarshal([]byte(event.Body), &input); err != nil {
		return events.APIGatewayV2HTTPResponse{}, exceptions.InvalidInput(err.Error())
	}
	if strings.TrimSpace(input.Prompt) == "" {
		return events.APIGatewayV2HTTPResponse{}, exceptions.InvalidInput("Prompt must not be empty")
	}
	listId := util.RequestParam(ctx, "listId")
	if _, err := sl.data.Get(listId); err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}
	raw, err := sl.generator.GenerateItems(ctx, input.Prompt)
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}
	items, err := parse.Items(raw)
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}
	updated, err := sl.data.AppendItems(listId, items...)
	return util.SerializeResponseOK(NewShoppingList, updated, err)
}
