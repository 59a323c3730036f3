package interfaces

import (
	"context"
	"log"

	"github.com/hiddenday/planner/pkg/domain"
	"github.com/hiddenday/planner/pkg/integrations"
)

// Geocoder resolves free text to a center. A nil coordinate with a nil
// error is a miss, which is an expected outcome.
type Geocoder interface {
	Geocode(ctx context.Context, query string) (*domain.Coordinate, error)
}

// ItemFetcher is the aggregator capability the service depends on.
type ItemFetcher interface {
	FetchAll(ctx context.Context, center domain.Coordinate, q domain.ItemQuery) []domain.PlanItem
	Sources() []string
}

// ResponseCache holds finished plan responses under canonical keys.
type ResponseCache interface {
	Get(key string) (*domain.PlanResponse, bool)
	Set(key string, response *domain.PlanResponse)
}

const (
	planItemLimit     = 12
	fallbackItemCount = 4
)

// PlanService orchestrates a plan request: cache lookup, geocode, provider
// fan-out, dedupe, rank, fallback, cache store.
type PlanService struct {
	geocoder Geocoder
	fetcher  ItemFetcher
	cache    ResponseCache
	ranker   *integrations.Ranker
	fallback *integrations.FallbackGenerator
}

func NewPlanService(geocoder Geocoder, fetcher ItemFetcher, cache ResponseCache, ranker *integrations.Ranker, fallback *integrations.FallbackGenerator) *PlanService {
	return &PlanService{
		geocoder: geocoder,
		fetcher:  fetcher,
		cache:    cache,
		ranker:   ranker,
		fallback: fallback,
	}
}

// CreatePlan builds (or serves from cache) the response for a normalized,
// validated request. When the location cannot be geocoded the response
// still succeeds, with no center and no items; a resolved center is
// guaranteed at least one item via the fallback generator.
func (s *PlanService) CreatePlan(ctx context.Context, req *domain.PlanRequest) (*domain.PlanResponse, error) {
	req.Normalize()
	if errs := req.Validate(); len(errs) > 0 {
		return nil, domain.ErrInvalidRequest
	}

	key := integrations.CacheKey(req, s.fetcher.Sources())
	if cached, ok := s.cache.Get(key); ok {
		return cached, nil
	}

	resp := &domain.PlanResponse{
		Date:      req.Date,
		Budget:    req.Budget,
		Interests: req.Interests,
		Location:  req.Location,
		Items:     []domain.PlanItem{},
	}

	center, err := s.geocoder.Geocode(ctx, req.Location)
	if err != nil {
		// Availability over strictness: a geocoder outage degrades to the
		// same empty response as an unresolvable location.
		log.Printf("geocode failed for %q: %v", req.Location, err)
	}
	if center == nil {
		return resp, nil
	}
	resp.Center = center

	start, end, err := domain.BuildWindow(req.Date, req.Timeframe, req.RangeStart, req.RangeEnd)
	if err != nil {
		return nil, domain.ErrInvalidRequest
	}

	items := s.fetcher.FetchAll(ctx, *center, domain.ItemQuery{
		Interests:  req.Interests,
		Budget:     req.Budget,
		Start:      start,
		End:        end,
		UseOpenNow: req.UseOpenNow,
	})

	items = integrations.Dedupe(items)
	items = s.ranker.Rank(items, planItemLimit)
	if len(items) == 0 {
		items = s.fallback.Generate(*center, fallbackItemCount)
	}
	resp.Items = items

	s.cache.Set(key, resp)
	return resp, nil
}
