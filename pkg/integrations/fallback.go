package integrations

import (
	"math/rand"
	"sync"

	"github.com/hiddenday/planner/pkg/domain"
)

// FallbackOffsetMax is the per-axis scatter around the center, in degrees
// (roughly a kilometer).
const FallbackOffsetMax = 0.01

var fallbackTitles = []string{
	"Coffee spot",
	"City park walk",
	"Local gallery",
	"Riverside stroll",
	"Neighborhood bakery",
	"Bookstore browse",
}

// FallbackGenerator synthesizes generic nearby items so a plan with a
// resolved center never comes back empty, even when every provider failed
// or returned nothing.
type FallbackGenerator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewFallbackGenerator(rng *rand.Rand) *FallbackGenerator {
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}
	return &FallbackGenerator{rng: rng}
}

// Generate returns n fallback items scattered within FallbackOffsetMax
// degrees of the center.
func (g *FallbackGenerator) Generate(center domain.Coordinate, n int) []domain.PlanItem {
	if n <= 0 {
		n = 4
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	items := make([]domain.PlanItem, 0, n)
	for i := 0; i < n; i++ {
		items = append(items, domain.PlanItem{
			Title:  fallbackTitles[i%len(fallbackTitles)],
			Lat:    center.Lat + g.offset(),
			Lon:    center.Lon + g.offset(),
			Source: domain.SourceFallback,
		})
	}
	return items
}

func (g *FallbackGenerator) offset() float64 {
	return (g.rng.Float64()*2 - 1) * FallbackOffsetMax
}
