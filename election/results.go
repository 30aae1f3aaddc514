// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/danielhkuo/samaj-vote/metrics"
	"github.com/danielhkuo/samaj-vote/models"
)

type cacheEntry struct {
	results models.ElectionResults
	expires time.Time
}

// Composer builds per-election summaries and caches them for a bounded
// TTL. A TTL of zero disables caching.
type Composer struct {
	db      *sql.DB
	agg     *Aggregator
	ttl     time.Duration
	metrics *metrics.Recorder
	now     func() time.Time

	mu    sync.Mutex
	cache map[models.ElectionType]cacheEntry
	// gen is bumped on invalidation so a compose that started earlier
	// cannot store its stale result afterwards
	gen map[models.ElectionType]uint64
}

func NewComposer(db *sql.DB, agg *Aggregator, ttl time.Duration, rec *metrics.Recorder) *Composer {
	return &Composer{
		db:      db,
		agg:     agg,
		ttl:     ttl,
		metrics: rec,
		now:     time.Now,
		cache:   make(map[models.ElectionType]cacheEntry),
		gen:     make(map[models.ElectionType]uint64),
	}
}

// Compose returns the results for one election, from cache when fresh.
// Errors are returned whole and never cached.
func (c *Composer) Compose(ctx context.Context, e models.ElectionType) (models.ElectionResults, error) {
	if !e.Valid() {
		return models.ElectionResults{}, fmt.Errorf("%w: %q", ErrInvalidElection, e)
	}

	c.mu.Lock()
	entry, ok := c.cache[e]
	gen := c.gen[e]
	c.mu.Unlock()
	if ok && c.now().Before(entry.expires) {
		c.metrics.ResultsCacheLookup(string(e), true)
		return cloneResults(entry.results), nil
	}
	c.metrics.ResultsCacheLookup(string(e), false)

	start := time.Now()
	results, err := c.compose(ctx, e)
	c.metrics.ObserveCompose(string(e), time.Since(start))
	if err != nil {
		return models.ElectionResults{}, err
	}

	if c.ttl > 0 {
		c.mu.Lock()
		if c.gen[e] == gen {
			c.cache[e] = cacheEntry{results: cloneResults(results), expires: c.now().Add(c.ttl)}
		}
		c.mu.Unlock()
	}
	return results, nil
}

// ComposeAll returns results for every election
func (c *Composer) ComposeAll(ctx context.Context) (models.AllResults, error) {
	all := models.AllResults{
		Elections: make([]models.ElectionSummary, 0, len(models.AllElections)),
	}
	for _, e := range models.AllElections {
		r, err := c.Compose(ctx, e)
		if err != nil {
			return models.AllResults{}, err
		}
		all.Elections = append(all.Elections, r.Election)
	}

	total, err := countActiveVoters(ctx, c.db)
	if err != nil {
		return models.AllResults{}, err
	}
	all.TotalVotersInSystem = total
	all.GeneratedAt = c.now()
	return all, nil
}

// Invalidate drops the cached results for an election
func (c *Composer) Invalidate(e models.ElectionType) {
	c.mu.Lock()
	delete(c.cache, e)
	c.gen[e]++
	c.mu.Unlock()
}

func (c *Composer) compose(ctx context.Context, e models.ElectionType) (models.ElectionResults, error) {
	zones, err := ListZones(ctx, c.db, e)
	if err != nil {
		return models.ElectionResults{}, err
	}

	regions := make([]models.RegionTurnout, 0, len(zones))
	for _, z := range zones {
		t, err := c.agg.turnoutFor(ctx, z)
		if err != nil {
			return models.ElectionResults{}, fmt.Errorf("failed to compute turnout for zone %s: %w", z.Code, err)
		}
		regions = append(regions, t)
	}

	total, err := countActiveVoters(ctx, c.db)
	if err != nil {
		return models.ElectionResults{}, err
	}

	return models.ElectionResults{
		Election:            Summarize(e, regions),
		TotalVotersInSystem: total,
		GeneratedAt:         c.now(),
	}, nil
}

// Summarize orders regions by name then zone ID and totals them
func Summarize(e models.ElectionType, regions []models.RegionTurnout) models.ElectionSummary {
	sort.SliceStable(regions, func(i, j int) bool {
		if regions[i].Name != regions[j].Name {
			return regions[i].Name < regions[j].Name
		}
		return regions[i].ZoneID < regions[j].ZoneID
	})

	s := models.ElectionSummary{
		ElectionType: e,
		Name:         e.DisplayName(),
		Regions:      regions,
		TotalRegions: len(regions),
	}
	for _, r := range regions {
		s.TotalVoters += r.TotalVoters
		s.TotalVotes += r.TotalVotes
		s.TotalVoted += r.UniqueVotersVoted
	}
	s.TurnoutPercentage = TurnoutPercentage(s.TotalVoted, s.TotalVoters)
	return s
}

// cloneResults copies the regions so callers never share a slice with the
// cache
func cloneResults(r models.ElectionResults) models.ElectionResults {
	r.Election.Regions = slices.Clone(r.Election.Regions)
	return r
}
