package parse

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"philcali.me/sharedlists/internal/data"
	"philcali.me/sharedlists/internal/exceptions"
)

// Grammar per entry: name ":" quantity ":" price, entries joined by ";".
// Quantity is a bare integer literal, price allows a fractional part.
var entryPattern = regexp.MustCompile(`^\s*([^:]+)\s*:\s*([0-9]+)\s*:\s*([0-9]+(?:\.[0-9]+)?)\s*$`)

// Items converts raw generated text into validated items with freshly
// minted ids. The policy is all-or-nothing: a single malformed entry
// fails the whole response with a FormatError carrying the raw text,
// because partial structured data is worse than an explicit error.
func Items(raw string) ([]data.ItemDTO, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, exceptions.BadFormat(raw)
	}
	entries := strings.Split(raw, ";")
	items := make([]data.ItemDTO, 0, len(entries))
	for _, entry := range entries {
		matched := entryPattern.FindStringSubmatch(entry)
		if matched == nil {
			return nil, exceptions.BadFormat(raw)
		}
		title := strings.TrimSpace(matched[1])
		if title == "" {
			return nil, exceptions.BadFormat(raw)
		}
		quantity, err := strconv.Atoi(matched[2])
		if err != nil {
			return nil, exceptions.BadFormat(raw)
		}
		price, err := strconv.ParseFloat(matched[3], 64)
		if err != nil {
			return nil, exceptions.BadFormat(raw)
		}
		gid, err := uuid.NewUUID()
		if err != nil {
			return nil, err
		}
		items = append(items, data.ItemDTO{
			Id:       gid.String(),
			Title:    title,
			Quantity: quantity,
			Price:    price,
			IsBought: false,
		})
	}
	return items, nil
}
