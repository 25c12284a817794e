package lists

import (
	"philcali.me/sharedlists/internal/data"
	"philcali.me/sharedlists/internal/routes/util"
)

type Item struct {
	Id       string  `json:"id"`
	Title    string  `json:"title"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
	IsBought bool    `json:"is_bought"`
}

type ShoppingList struct {
	Id        string  `json:"id"`
	Name      string  `json:"name"`
	Items     []Item  `json:"items"`
	UpdatedAt float64 `json:"updated_at"`
}

type ShoppingListInput struct {
	Name *string `json:"name,omitempty"`
}

func (li *ShoppingListInput) ToData() data.ShoppingListInputDTO {
	return data.ShoppingListInputDTO{
		Name: li.Name,
	}
}

// ItemInput covers create and update. Price is intentionally absent:
// it is derived server-side at creation and immutable afterwards.
type ItemInput struct {
	Title    string `json:"title"`
	Quantity int    `json:"quantity"`
	IsBought bool   `json:"is_bought"`
}

type GenerateItemsInput struct {
	Prompt string `json:"prompt"`
}

type CreatedResource struct {
	Id string `json:"id"`
}

func NewItem(item data.ItemDTO) Item {
	return Item{
		Id:       item.Id,
		Title:    item.Title,
		Quantity: item.Quantity,
		Price:    item.Price,
		IsBought: item.IsBought,
	}
}

func NewShoppingList(list data.ShoppingListDTO) ShoppingList {
	return ShoppingList{
		Id:        list.SK,
		Name:      list.Name,
		UpdatedAt: list.UpdatedAt,
		Items:     *util.MapOnList(&list.Items, NewItem),
	}
}

func NewShoppingLists(items []data.ShoppingListDTO) []ShoppingList {
	return *util.MapOnList(&items, NewShoppingList)
}
