package poll

import (
	"context"
	"time"

	"philcali.me/sharedlists/internal/data"
)

const (
	DefaultInterval = time.Second
	DefaultBudget   = 20 * time.Second
)

// Outcome is the terminal state of a poll: either the list changed and
// a snapshot is available, or the budget elapsed with nothing to report.
type Outcome int

const (
	Changed Outcome = iota
	TimedOut
)

// ListSource is the narrow store surface the engine rechecks against.
// All cross-request coordination runs through the store's atomically
// bumped updatedAt; the engine itself holds no shared state.
type ListSource interface {
	Get(listId string) (data.ShoppingListDTO, error)
}

type Engine struct {
	Source   ListSource
	Interval time.Duration
	Budget   time.Duration
}

func NewEngine(source ListSource) *Engine {
	return &Engine{
		Source:   source,
		Interval: DefaultInterval,
		Budget:   DefaultBudget,
	}
}

// Wait blocks until the list's updatedAt exceeds lastSeen, the budget
// elapses, or ctx is cancelled. The first check happens before any
// sleep, so changes committed before the poll started are never missed
// and lastSeen of zero returns the current snapshot immediately. A
// missing list propagates NotFound from the source at whichever check
// observes it. Intermediate states between rechecks are not delivered;
// only the snapshot as of the terminating check is.
func (e *Engine) Wait(ctx context.Context, listId string, lastSeen float64) (data.ShoppingListDTO, Outcome, error) {
	deadline := time.NewTimer(e.Budget)
	defer deadline.Stop()
	ticker := time.NewTicker(e.Interval)
	defer ticker.Stop()
	for {
		list, err := e.Source.Get(listId)
		if err != nil {
			return data.ShoppingListDTO{}, TimedOut, err
		}
		if list.UpdatedAt > lastSeen {
			return list, Changed, nil
		}
		select {
		case <-ticker.C:
		case <-deadline.C:
			return data.ShoppingListDTO{}, TimedOut, nil
		case <-ctx.Done():
			return data.ShoppingListDTO{}, TimedOut, ctx.Err()
		}
	}
}
