package gemini

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"google.golang.org/genai"
	"philcali.me/sharedlists/internal/exceptions"
	"philcali.me/sharedlists/internal/provider"
)

const DefaultModel = "gemini-2.0-flash"

// FallbackPrice is returned when no number can be extracted from the
// price estimation response. Estimation must never block item creation.
const FallbackPrice = 777.0

const formatSuffix = "\n\nWrite the answer in the format\n" +
	"NAME_OF_PRODUCT:QUANTITY:PRICE;NAME2:QUANTITY2:PRICE2;...\n\n" +
	"Where QUANTITY is an integer and PRICE is a number (integer or with a decimal part) without currency symbols. " +
	"Write nothing besides this format.\n" +
	"Example: Buckwheat 1kg:1:500;Sunflower oil 1l:2:1000;Rice 1kg:3:1500\n\n"

var numberPattern = regexp.MustCompile(`[0-9]+(?:[.,][0-9]+)?`)

type GeminiAPI struct {
	Model    string
	complete func(ctx context.Context, prompt string) (string, error)
}

func NewClient(ctx context.Context, apiKey string, model string) (provider.ItemSource, error) {
	if model == "" {
		model = DefaultModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, err
	}
	api := &GeminiAPI{Model: model}
	api.complete = func(ctx context.Context, prompt string) (string, error) {
		resp, err := client.Models.GenerateContent(ctx, api.Model, genai.Text(prompt), nil)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(resp.Text()), nil
	}
	return api, nil
}

func (g *GeminiAPI) GenerateItems(ctx context.Context, prompt string) (string, error) {
	raw, err := g.complete(ctx, prompt+formatSuffix)
	if err != nil {
		return "", exceptions.GenerationFailure(err)
	}
	return raw, nil
}

func (g *GeminiAPI) EstimatePrice(ctx context.Context, productName string) float64 {
	prompt := fmt.Sprintf(
		"Please give an approximate price for the product: %s, "+
			"only the number without currency symbols. "+
			"Answer in the format: PRODUCT_PRICE", productName)
	text, err := g.complete(ctx, prompt)
	if err != nil {
		return FallbackPrice
	}
	return ExtractPrice(text)
}

// ExtractPrice pulls the first integer-or-decimal substring out of a
// response, treating "," as an alternate decimal separator. Spaces are
// stripped first so grouped digits like "1 200,50" survive.
func ExtractPrice(text string) float64 {
	found := numberPattern.FindString(strings.ReplaceAll(text, " ", ""))
	if found == "" {
		return FallbackPrice
	}
	price, err := strconv.ParseFloat(strings.ReplaceAll(found, ",", "."), 64)
	if err != nil {
		return FallbackPrice
	}
	return price
}
