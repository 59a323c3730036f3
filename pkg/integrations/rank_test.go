package integrations

import (
	"math/rand"
	"reflect"
	"testing"

	"github.com/hiddenday/planner/pkg/domain"
)

func TestRanker(t *testing.T) {
	t.Run("size bound", func(t *testing.T) {
		ranker := NewRanker(rand.New(rand.NewSource(1)))

		items := make([]domain.PlanItem, 20)
		for i := range items {
			items[i] = domain.PlanItem{Title: "x", Source: domain.SourceYelp}
		}

		if got := ranker.Rank(items, 12); len(got) != 12 {
			t.Errorf("expected 12 items, got %d", len(got))
		}
		if got := ranker.Rank(items[:5], 12); len(got) != 5 {
			t.Errorf("expected 5 items, got %d", len(got))
		}
	})

	t.Run("events outrank places outrank fallback", func(t *testing.T) {
		ranker := NewRanker(rand.New(rand.NewSource(42)))

		items := []domain.PlanItem{
			{Title: "filler", Source: domain.SourceFallback},
			{Title: "bar", Source: domain.SourceYelp},
			{Title: "museum", Source: domain.SourceGoogle},
			{Title: "gig", Source: domain.SourceEvent},
		}

		got := ranker.Rank(items, 12)
		order := []string{got[0].Source, got[1].Source, got[2].Source, got[3].Source}
		want := []string{domain.SourceEvent, domain.SourceGoogle, domain.SourceYelp, domain.SourceFallback}
		if !reflect.DeepEqual(order, want) {
			t.Errorf("expected source order %v, got %v", want, order)
		}
	})

	t.Run("same seed, same order", func(t *testing.T) {
		items := []domain.PlanItem{
			{Title: "a", Source: domain.SourceYelp},
			{Title: "b", Source: domain.SourceYelp},
			{Title: "c", Source: domain.SourceYelp},
			{Title: "d", Source: domain.SourceYelp},
		}

		first := NewRanker(rand.New(rand.NewSource(7))).Rank(items, 12)
		second := NewRanker(rand.New(rand.NewSource(7))).Rank(items, 12)
		if !reflect.DeepEqual(first, second) {
			t.Errorf("seeded ranking should be reproducible: %v vs %v", first, second)
		}
	})

	t.Run("unknown source gets lowest weight", func(t *testing.T) {
		ranker := NewRanker(rand.New(rand.NewSource(3)))

		items := []domain.PlanItem{
			{Title: "mystery", Source: "something-new"},
			{Title: "bar", Source: domain.SourceYelp},
		}

		got := ranker.Rank(items, 12)
		if got[0].Source != domain.SourceYelp {
			t.Errorf("expected known source first, got %s", got[0].Source)
		}
	})

	t.Run("empty input", func(t *testing.T) {
		ranker := NewRanker(nil)
		if got := ranker.Rank(nil, 12); len(got) != 0 {
			t.Errorf("expected empty output, got %v", got)
		}
	})
}
