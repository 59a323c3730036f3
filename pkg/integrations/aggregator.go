package integrations

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/hiddenday/planner/pkg/domain"
)

// ItemSource is the capability every provider adapter implements. A source
// that has nothing to contribute returns an empty slice; errors are for
// genuine upstream failures and never abort the overall plan.
type ItemSource interface {
	FetchItems(ctx context.Context, center domain.Coordinate, q domain.ItemQuery) ([]domain.PlanItem, error)
	Name() string
}

// PlanAggregator fans a query out to every registered source concurrently,
// waits for all of them to settle, and concatenates the successful results
// in registration order. Registration order is the provider priority order,
// so aggregation output is deterministic even though completion timing is
// not. A failed source contributes zero items.
type PlanAggregator struct {
	sources []ItemSource
	timeout time.Duration
}

func NewPlanAggregator(timeout time.Duration) *PlanAggregator {
	if timeout == 0 {
		timeout = 20 * time.Second
	}
	return &PlanAggregator{timeout: timeout}
}

func (a *PlanAggregator) Register(source ItemSource) {
	a.sources = append(a.sources, source)
}

// Sources returns the registered source names in priority order.
func (a *PlanAggregator) Sources() []string {
	names := make([]string, 0, len(a.sources))
	for _, s := range a.sources {
		names = append(names, s.Name())
	}
	return names
}

// FetchAll runs every source and returns the concatenation of the
// successful results. It never fails fast: a slow source is waited for and
// a failed one is logged and skipped.
func (a *PlanAggregator) FetchAll(ctx context.Context, center domain.Coordinate, q domain.ItemQuery) []domain.PlanItem {
	if len(a.sources) == 0 {
		return []domain.PlanItem{}
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	results := make([][]domain.PlanItem, len(a.sources))
	var wg sync.WaitGroup

	for i, source := range a.sources {
		wg.Add(1)
		go func(slot int, src ItemSource) {
			defer wg.Done()

			items, err := src.FetchItems(ctx, center, q)
			if err != nil {
				log.Printf("source %s failed: %v", src.Name(), err)
				return
			}
			results[slot] = items
		}(i, source)
	}

	wg.Wait()

	merged := []domain.PlanItem{}
	for _, items := range results {
		merged = append(merged, items...)
	}
	return merged
}
