package integrations

import (
	"math/rand"
	"sort"
	"sync"

	"github.com/hiddenday/planner/pkg/domain"
)

// RankJitterMax bounds the random tie-break added to each score. It is
// small relative to the gaps between source weights, so jitter only
// reorders items of the same source.
const RankJitterMax = 0.01

// Time-bound events outrank static places, which outrank synthetic
// fallback items.
var sourceWeights = map[string]float64{
	domain.SourceEvent:      4,
	domain.SourceEventbrite: 4,
	domain.SourceGoogle:     3,
	domain.SourceYelp:       2,
	domain.SourceFallback:   1,
}

// Ranker scores and truncates merged item lists. The jitter source is
// injected so tests can seed it; same seed, same order.
type Ranker struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewRanker(rng *rand.Rand) *Ranker {
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}
	return &Ranker{rng: rng}
}

// Rank sorts items by source weight plus jitter, descending, and truncates
// to limit. The sort is stable, so equal scores keep input order.
func (r *Ranker) Rank(items []domain.PlanItem, limit int) []domain.PlanItem {
	if limit <= 0 {
		limit = 12
	}

	scored := make([]struct {
		item  domain.PlanItem
		score float64
	}, len(items))

	r.mu.Lock()
	for i, item := range items {
		weight, ok := sourceWeights[item.Source]
		if !ok {
			weight = 1
		}
		scored[i].item = item
		scored[i].score = weight + r.rng.Float64()*RankJitterMax
	}
	r.mu.Unlock()

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})

	if len(scored) > limit {
		scored = scored[:limit]
	}

	out := make([]domain.PlanItem, len(scored))
	for i, s := range scored {
		out[i] = s.item
	}
	return out
}
