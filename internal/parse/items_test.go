package parse_test

import (
	"testing"

	"philcali.me/sharedlists/internal/exceptions"
	"philcali.me/sharedlists/internal/parse"
)

func TestParseValidGrammar(t *testing.T) {
	items, err := parse.Items("A:2:100;B:1:50.5")
	if err != nil {
		t.Fatalf("Expected a valid parse, got: %s", err)
	}
	if len(items) != 2 {
		t.Fatalf("Expected 2 items, got %d: %v", len(items), items)
	}
	first, second := items[0], items[1]
	if first.Title != "A" || first.Quantity != 2 || first.Price != 100 {
		t.Fatalf("First item does not match input: %v", first)
	}
	if second.Title != "B" || second.Quantity != 1 || second.Price != 50.5 {
		t.Fatalf("Second item does not match input: %v", second)
	}
	if first.Id == "" || second.Id == "" || first.Id == second.Id {
		t.Fatalf("Expected freshly minted distinct ids, got %s and %s", first.Id, second.Id)
	}
	if first.IsBought || second.IsBought {
		t.Fatalf("Expected items to default to not bought: %v", items)
	}
}

func TestParseToleratesWhitespace(t *testing.T) {
	items, err := parse.Items("  Bread 1kg : 2 : 99.5 ; Milk 1l:1:50  ")
	if err != nil {
		t.Fatalf("Expected a valid parse, got: %s", err)
	}
	if len(items) != 2 {
		t.Fatalf("Expected 2 items, got %d", len(items))
	}
	if items[0].Title != "Bread 1kg" {
		t.Fatalf("Expected trimmed title, got %q", items[0].Title)
	}
	if items[1].Title != "Milk 1l" || items[1].Price != 50 {
		t.Fatalf("Second item does not match input: %v", items[1])
	}
}

func TestParseSingleEntry(t *testing.T) {
	items, err := parse.Items("Rice 1kg:3:1500")
	if err != nil {
		t.Fatalf("Expected a valid parse, got: %s", err)
	}
	if len(items) != 1 || items[0].Quantity != 3 || items[0].Price != 1500 {
		t.Fatalf("Single entry does not match input: %v", items)
	}
}

func TestParseRejectsMalformedInput(t *testing.T) {
	malformed := []string{
		"",
		"   ",
		"A:2:100;B:x:50",
		"A:2:100;",
		";A:2:100",
		"just some prose from the model",
		"A:2",
		"A:2:100:extra",
		"A:-1:100",
		"A:2:-5",
		":2:100",
		"  :2:100",
		"A:2.5:100",
	}
	for _, raw := range malformed {
		items, err := parse.Items(raw)
		if err == nil {
			t.Fatalf("Expected a format failure for %q, got %d items", raw, len(items))
		}
		fe, ok := err.(*exceptions.FormatError)
		if !ok {
			t.Fatalf("Expected a FormatError for %q, got: %s", raw, err)
		}
		if fe.Raw != raw {
			t.Fatalf("Expected the raw text to ride along, got %q for input %q", fe.Raw, raw)
		}
		if len(items) != 0 {
			t.Fatalf("Expected zero items on failure, got %d for %q", len(items), raw)
		}
		if fe.ToServiceError().StatusCode != 502 {
			t.Fatalf("Expected format failures to map to 502, got %d", fe.ToServiceError().StatusCode)
		}
	}
}

func TestParseAllowsZeroQuantity(t *testing.T) {
	items, err := parse.Items("A:0:100")
	if err != nil {
		t.Fatalf("Expected zero quantity to parse, got: %s", err)
	}
	if items[0].Quantity != 0 {
		t.Fatalf("Expected quantity 0, got %d", items[0].Quantity)
	}
}
