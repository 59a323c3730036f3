package integrations

import (
	"github.com/hiddenday/planner/pkg/domain"
)

// Dedupe drops near-duplicate items, keeping the first occurrence of each
// dedupe key in input order. The key is approximate identity (normalized
// title plus coordinates rounded to ~11m), so the same venue titled
// differently across providers survives twice.
func Dedupe(items []domain.PlanItem) []domain.PlanItem {
	seen := make(map[string]bool, len(items))
	out := make([]domain.PlanItem, 0, len(items))

	for _, item := range items {
		key := item.DedupeKey()
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, item)
	}

	return out
}
