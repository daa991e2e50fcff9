// Package runner executes catalog queries against the backend with result
// caching and request coalescing. It is the only shared mutable state in
// the system besides the catalog itself.
package runner

import (
	"context"
	"time"

	"github.com/mtc-analytics/patlens/pkg/catalog"
	"github.com/mtc-analytics/patlens/pkg/params"
	"github.com/mtc-analytics/patlens/pkg/template"
	"github.com/mtc-analytics/patlens/pkg/types"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

// RunResult is the outcome of one Run call.
type RunResult struct {
	QueryId      string                `json:"query_id"`
	Table        *types.ResultTable    `json:"table"`
	EffectiveSQL string                `json:"effective_sql"`
	Binds        []types.BindParameter `json:"bind_parameters"`
	Fingerprint  string                `json:"fingerprint"`
	CacheHit     bool                  `json:"cache_hit"`

	// Empty marks a zero-row result: a recognized outcome needing its own
	// UI treatment, not a failure.
	Empty bool `json:"empty"`

	// Duration is how long the backend took to produce the table (for a
	// cache hit, the duration recorded when the entry was computed).
	Duration time.Duration `json:"duration"`
	CachedAt time.Time     `json:"cached_at"`
}

// Runner dispatches validated runs to the backend, short-circuiting on
// cached fingerprints and coalescing concurrent identical requests so at
// most one backend call is in flight per fingerprint.
type Runner struct {
	catalog  *catalog.Catalog
	cache    ResultCache
	executor Executor
	group    singleflight.Group
}

// New creates a runner.
func New(cat *catalog.Catalog, cache ResultCache, executor Executor) *Runner {
	return &Runner{catalog: cat, cache: cache, executor: executor}
}

// Run validates the raw parameter values, renders the template, and returns
// the result table, from cache when the fingerprint is known and from the
// backend otherwise. Stages are strictly ordered; no stage begins before
// the prior one succeeds.
func (r *Runner) Run(ctx context.Context, queryId string, raw map[string]any) (*RunResult, error) {
	def, err := r.catalog.Get(queryId)
	if err != nil {
		return nil, err
	}

	vals, err := params.BuildValueSet(def, raw)
	if err != nil {
		return nil, err
	}

	rendered, err := template.Render(def, vals)
	if err != nil {
		var unresolved *types.ErrUnresolvedPlaceholder
		if unresolved.From(err) {
			// Validation passed but tokens survived rendering: a bug in
			// the renderer or the definition, not a user input problem.
			log.Error().Err(err).Str("query_id", queryId).Msg("internal invariant violation while rendering")
		}
		return nil, err
	}

	fingerprint := Fingerprint(def, vals)

	if entry, ok, err := r.cache.Get(ctx, fingerprint); err != nil {
		log.Warn().Err(err).Str("fingerprint", fingerprint).Msg("result cache read failed, executing")
	} else if ok {
		return resultFrom(def.Id, rendered, fingerprint, entry, true), nil
	}

	// Concurrent requests for the same fingerprint wait on the first
	// caller's backend call instead of issuing duplicates.
	v, err, shared := r.group.Do(fingerprint, func() (any, error) {
		start := time.Now()
		table, err := r.executor.Execute(ctx, rendered.Query, rendered.Binds)
		if err != nil {
			return nil, &types.ErrQueryExecution{QueryId: def.Id, Message: err.Error()}
		}

		entry := &types.CachedResult{
			Table:    table,
			CachedAt: time.Now(),
			Duration: time.Since(start),
		}
		if err := r.cache.Set(ctx, fingerprint, entry); err != nil {
			log.Warn().Err(err).Str("fingerprint", fingerprint).Msg("result cache write failed")
		}

		log.Info().
			Str("query_id", def.Id).
			Str("fingerprint", fingerprint).
			Dur("duration", entry.Duration).
			Int("rows", table.NumRows()).
			Msg("query executed")
		return entry, nil
	})
	if err != nil {
		return nil, err
	}

	return resultFrom(def.Id, rendered, fingerprint, v.(*types.CachedResult), shared), nil
}

func resultFrom(queryId string, rendered *template.Rendered, fingerprint string, entry *types.CachedResult, hit bool) *RunResult {
	return &RunResult{
		QueryId:      queryId,
		Table:        entry.Table,
		EffectiveSQL: rendered.EffectiveSQL,
		Binds:        rendered.Binds,
		Fingerprint:  fingerprint,
		CacheHit:     hit,
		Empty:        entry.Table.Empty(),
		Duration:     entry.Duration,
		CachedAt:     entry.CachedAt,
	}
}
