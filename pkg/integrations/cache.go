package integrations

import (
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/hiddenday/planner/pkg/domain"
)

// PlanCache is a short-TTL in-memory cache of full plan responses. Expiry
// is lazy: entries are checked and dropped on read, there is no background
// sweep, and the entry count is unbounded for the process lifetime.
type PlanCache struct {
	mu      sync.Mutex
	entries map[string]planCacheEntry
	ttl     time.Duration
	now     func() time.Time
}

type planCacheEntry struct {
	expiresAt time.Time
	response  *domain.PlanResponse
}

// NewPlanCache builds a cache with the given TTL. The clock is injectable
// for tests; pass nil for time.Now.
func NewPlanCache(ttl time.Duration, now func() time.Time) *PlanCache {
	if ttl == 0 {
		ttl = 10 * time.Minute
	}
	if now == nil {
		now = time.Now
	}
	return &PlanCache{
		entries: make(map[string]planCacheEntry),
		ttl:     ttl,
		now:     now,
	}
}

func (c *PlanCache) Get(key string) (*domain.PlanResponse, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.now().After(entry.expiresAt) {
		delete(c.entries, key)
		return nil, false
	}
	return entry.response, true
}

// Set stores the response under key, overwriting any live entry.
func (c *PlanCache) Set(key string, response *domain.PlanResponse) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = planCacheEntry{
		expiresAt: c.now().Add(c.ttl),
		response:  response,
	}
}

func (c *PlanCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// cacheKeyFields is the subset of request fields that affect provider
// queries, plus the enabled source set (a config change must not serve
// stale results).
type cacheKeyFields struct {
	Date       string   `json:"date"`
	Budget     string   `json:"budget"`
	Interests  string   `json:"interests"`
	Location   string   `json:"location"`
	Timeframe  string   `json:"timeframe"`
	RangeStart string   `json:"rangeStart"`
	RangeEnd   string   `json:"rangeEnd"`
	UseOpenNow bool     `json:"useOpenNow"`
	Sources    []string `json:"sources"`
}

// CacheKey builds the canonical key for a normalized request. Field order
// is fixed by the struct, so the serialization is deterministic.
func CacheKey(req *domain.PlanRequest, sources []string) string {
	key, _ := json.Marshal(cacheKeyFields{
		Date:       req.Date,
		Budget:     req.Budget,
		Interests:  strings.ToLower(req.Interests),
		Location:   strings.ToLower(req.Location),
		Timeframe:  req.Timeframe,
		RangeStart: req.RangeStart,
		RangeEnd:   req.RangeEnd,
		UseOpenNow: req.UseOpenNow,
		Sources:    sources,
	})
	return string(key)
}
