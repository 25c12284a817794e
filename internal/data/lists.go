package data

// DefaultListName is used when a create request omits the name field.
const DefaultListName = "New List"

type ItemDTO struct {
	Id       string  `dynamodbav:"id"`
	Title    string  `dynamodbav:"title"`
	Quantity int     `dynamodbav:"quantity"`
	Price    float64 `dynamodbav:"price"`
	IsBought bool    `dynamodbav:"isBought"`
}

type ShoppingListDTO struct {
	PK        string    `dynamodbav:"PK"`
	SK        string    `dynamodbav:"SK"`
	Name      string    `dynamodbav:"name"`
	Items     []ItemDTO `dynamodbav:"items"`
	UpdatedAt float64   `dynamodbav:"updatedAt"`
}

type ShoppingListInputDTO struct {
	Name *string `dynamodbav:"name"`
}

// ItemUpdateDTO carries the client-mutable item fields. Price is set
// once at creation and never updated through this path.
type ItemUpdateDTO struct {
	Title    string
	Quantity int
	IsBought bool
}

// ShoppingListDataService exposes atomic operations over one document
// per list. Every mutation couples its data change with the updatedAt
// bump: an observer never sees one without the other.
type ShoppingListDataService interface {
	Create(input ShoppingListInputDTO) (ShoppingListDTO, error)
	Get(listId string) (ShoppingListDTO, error)
	List() ([]ShoppingListDTO, error)
	Delete(listId string) error
	AppendItem(listId string, item ItemDTO) (ShoppingListDTO, error)
	AppendItems(listId string, items ...ItemDTO) (ShoppingListDTO, error)
	UpdateItem(listId string, itemId string, update ItemUpdateDTO) (ShoppingListDTO, error)
	RemoveItem(listId string, itemId string) (ShoppingListDTO, error)
}
