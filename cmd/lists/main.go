package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	listData "philcali.me/sharedlists/internal/dynamodb/lists"
	"philcali.me/sharedlists/internal/gemini"
	"philcali.me/sharedlists/internal/poll"
	"philcali.me/sharedlists/internal/routes"
	"philcali.me/sharedlists/internal/routes/lists"
)

type App struct {
	Router routes.Router
}

func NewApp() App {
	tableName := os.Getenv("TABLE_NAME")
	cfg, err := config.LoadDefaultConfig(context.TODO())
	if err != nil {
		panic("Failed to load AWS config.")
	}
	client := dynamodb.NewFromConfig(cfg)
	generator, err := gemini.NewClient(context.TODO(), os.Getenv("GEMINI_API_KEY"), os.Getenv("GEMINI_MODEL"))
	if err != nil {
		panic(fmt.Sprintf("Failed to create the generation client: %s", err))
	}
	store := listData.NewShoppingListService(tableName, *client)
	router := routes.NewRouter(
		lists.NewRoute(store, generator, poll.NewEngine(store)),
	)
	return App{
		Router: *router,
	}
}

func (app *App) HandleRequest(ctx context.Context, request events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	return app.Router.Invoke(request, ctx), nil
}

func main() {
	app := NewApp()
	lambda.Start(app.HandleRequest)
}
