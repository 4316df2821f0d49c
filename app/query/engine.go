package query

import (
	"time"

	"github.com/veilletech/rss-engine/app/store"
	"github.com/veilletech/rss-engine/app/update"
)

// defaultLatestLimit applies when Latest receives a non-positive limit. List
// treats a non-positive limit as "no limit"; both policies are global
// invariants, never errors.
const defaultLatestLimit = 10

// Filter narrows a List call. Empty fields do not filter; all present fields
// must match (conjunctive). Unrecognized values yield an empty result.
type Filter struct {
	Category    string
	Provider    string
	ServiceType string
	Limit       int
}

type ListResult struct {
	Total       int             `json:"total"`
	Updates     []update.Update `json:"updates"`
	LastUpdated time.Time       `json:"last_updated"`
}

type LatestResult struct {
	Updates   []update.Update `json:"updates"`
	Count     int             `json:"count"`
	Timestamp time.Time       `json:"timestamp"`
}

type StatsResult struct {
	Total         int            `json:"total"`
	ByCategory    map[string]int `json:"by_category"`
	ByProvider    map[string]int `json:"by_provider,omitempty"`
	ByServiceType map[string]int `json:"by_service_type,omitempty"`
	Recent7Days   int            `json:"recent_7_days"`
	Recent30Days  int            `json:"recent_30_days"`
}

type CategoriesResult struct {
	Categories   []string `json:"categories"`
	Providers    []string `json:"providers,omitempty"`
	ServiceTypes []string `json:"service_types,omitempty"`
}

// Engine serves filtered, paginated, sorted views over one domain's persisted
// collection. It only ever reads store snapshots, so queries keep working on
// the last committed state regardless of upstream feed health.
type Engine struct {
	store    *store.Store
	taxonomy update.Taxonomy
	isCloud  bool
}

func NewEngine(s *store.Store) *Engine {
	return &Engine{
		store:    s,
		taxonomy: update.TaxonomyFor(s.Domain()),
		isCloud:  s.Domain() == update.DomainCloud,
	}
}

func (e *Engine) List(filter Filter) ListResult {
	snapshot := e.store.Snapshot()

	filtered := make([]update.Update, 0, len(snapshot))
	for _, u := range snapshot {
		if filter.Category != "" && u.Category != filter.Category {
			continue
		}
		if filter.Provider != "" && u.CloudProvider != filter.Provider {
			continue
		}
		if filter.ServiceType != "" && u.ServiceType != filter.ServiceType {
			continue
		}
		filtered = append(filtered, u)
	}

	total := len(filtered)
	if filter.Limit > 0 && len(filtered) > filter.Limit {
		filtered = filtered[:filter.Limit]
	}

	return ListResult{
		Total:       total,
		Updates:     filtered,
		LastUpdated: e.store.LastUpdated(),
	}
}

func (e *Engine) Latest(limit int) LatestResult {
	if limit <= 0 {
		limit = defaultLatestLimit
	}

	snapshot := e.store.Snapshot()
	if len(snapshot) > limit {
		snapshot = snapshot[:limit]
	}

	return LatestResult{
		Updates:   snapshot,
		Count:     len(snapshot),
		Timestamp: time.Now().UTC(),
	}
}

func (e *Engine) Stats() StatsResult {
	snapshot := e.store.Snapshot()

	stats := StatsResult{
		Total:      len(snapshot),
		ByCategory: make(map[string]int),
	}
	if e.isCloud {
		stats.ByProvider = make(map[string]int)
		stats.ByServiceType = make(map[string]int)
	}

	now := time.Now().UTC()
	for _, u := range snapshot {
		stats.ByCategory[u.Category]++
		if e.isCloud {
			stats.ByProvider[u.CloudProvider]++
			stats.ByServiceType[u.ServiceType]++
		}

		age := now.Sub(u.PublishedDate)
		if age <= 7*24*time.Hour {
			stats.Recent7Days++
		}
		if age <= 30*24*time.Hour {
			stats.Recent30Days++
		}
	}

	return stats
}

func (e *Engine) Categories() CategoriesResult {
	return CategoriesResult{
		Categories:   e.taxonomy.Categories,
		Providers:    e.taxonomy.Providers,
		ServiceTypes: e.taxonomy.ServiceTypes,
	}
}
