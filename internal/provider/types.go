package provider

import "context"

// ItemSource wraps the external text-completion service behind the two
// operations the API needs. Each is a single round trip with no retry;
// the caller decides whether to try again.
type ItemSource interface {
	// GenerateItems returns the raw completion text for an item list
	// prompt. It fails only when the upstream call fails, never on
	// malformed output.
	GenerateItems(ctx context.Context, prompt string) (string, error)
	// EstimatePrice is best-effort and never fails; it falls back to a
	// fixed price when nothing can be extracted.
	EstimatePrice(ctx context.Context, productName string) float64
}
