// Package spell assembles the individual correction stages (edit-distance,
// keyboard-layout, phonetic, query-log, and an optional model-backed
// corrector) into a single priority-ordered pipeline with a shared,
// bounded, TTL-backed result cache.
package spell

import (
	"context"
	"sort"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"

	"github.com/newsgraph/querycore/internal/normalize"
	"github.com/newsgraph/querycore/pkg/querycore/spell/stage"
)

// Defaults for the composite pipeline, per spec.
const (
	DefaultMaxCacheSize = 1000
	DefaultCacheTTL     = time.Hour

	// stepConfidenceFactor is multiplied into the running confidence once
	// per stage that actually changes the query.
	stepConfidenceFactor = 0.8
)

// Composite is the priority-ordered correction pipeline. The zero value is
// not usable; construct with New.
type Composite struct {
	logger *zap.SugaredLogger

	mu         sync.Mutex
	correctors []stage.Corrector

	cache *lru.LRU[string, stage.DetailedResult]
}

// Option configures a Composite at construction time.
type Option func(*Composite)

// WithLogger overrides the composite's logger (default: a no-op logger).
func WithLogger(l *zap.SugaredLogger) Option {
	return func(c *Composite) { c.logger = l }
}

// WithCacheLimits overrides the default cache capacity and TTL.
func WithCacheLimits(maxSize int, ttl time.Duration) Option {
	return func(c *Composite) {
		if maxSize <= 0 {
			maxSize = DefaultMaxCacheSize
		}
		if ttl <= 0 {
			ttl = DefaultCacheTTL
		}
		c.cache = lru.NewLRU[string, stage.DetailedResult](maxSize, nil, ttl)
	}
}

// New builds a composite pipeline from an initial set of correctors, sorted
// ascending by Priority. Additional correctors can be registered later with
// AddChecker.
func New(correctors []stage.Corrector, opts ...Option) *Composite {
	c := &Composite{
		logger:     zap.NewNop().Sugar(),
		correctors: append([]stage.Corrector(nil), correctors...),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.cache == nil {
		c.cache = lru.NewLRU[string, stage.DetailedResult](DefaultMaxCacheSize, nil, DefaultCacheTTL)
	}
	c.sortCorrectors()
	return c
}

func (c *Composite) sortCorrectors() {
	sort.SliceStable(c.correctors, func(i, j int) bool {
		return c.correctors[i].Priority() < c.correctors[j].Priority()
	})
}

// AddChecker registers an additional corrector and re-sorts the pipeline by
// priority. Safe for concurrent use alongside TryCorrect.
func (c *Composite) AddChecker(corr stage.Corrector) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.correctors = append(c.correctors, corr)
	c.sortCorrectors()
}

// TryCorrect runs the full pipeline for query: a cache check, then each
// registered corrector in ascending priority order, absorbing per-stage
// faults and observing ctx cancellation between stages.
func (c *Composite) TryCorrect(ctx context.Context, query string) stage.DetailedResult {
	start := nowFunc()

	if normalize.Normalize(query) == "" {
		return stage.DetailedResult{Original: query, Corrected: query, Confidence: 1.0}
	}

	key := normalize.Normalize(query)
	if cached, ok := c.cache.Get(key); ok {
		return stage.DetailedResult{
			Original:  query,
			Corrected: cached.Corrected,
			Steps: []stage.Step{{
				Method:     "Cache",
				Before:     query,
				After:      cached.Corrected,
				Confidence: 1.0,
			}},
			Confidence: 1.0,
			Elapsed:    int64(nowFunc().Sub(start)),
		}
	}

	c.mu.Lock()
	correctors := append([]stage.Corrector(nil), c.correctors...)
	c.mu.Unlock()

	current := query
	conf := 1.0
	var steps []stage.Step

	for _, corr := range correctors {
		select {
		case <-ctx.Done():
			result := stage.DetailedResult{
				Original:   query,
				Corrected:  current,
				Steps:      steps,
				Confidence: conf,
				Elapsed:    int64(nowFunc().Sub(start)),
			}
			return result
		default:
		}

		res, err := c.runStage(ctx, corr, current)
		if err != nil {
			c.logger.Warnw("corrector stage failed, continuing", "stage", corr.Name(), "error", err)
			continue
		}
		if !res.Success {
			continue
		}
		if res.Corrected == current || res.Corrected == "" {
			continue
		}

		steps = append(steps, stage.Step{
			Method:     corr.Name(),
			Before:     current,
			After:      res.Corrected,
			Confidence: stepConfidenceFactor,
			Reason:     res.Message,
		})
		current = res.Corrected
		conf *= stepConfidenceFactor
	}

	result := stage.DetailedResult{
		Original:   query,
		Corrected:  current,
		Steps:      steps,
		Confidence: conf,
		Elapsed:    int64(nowFunc().Sub(start)),
	}
	c.cache.Add(key, result)
	return result
}

// runStage isolates a single corrector call: panics are recovered and
// turned into errors so one misbehaving stage can never abort the pipeline.
func (c *Composite) runStage(ctx context.Context, corr stage.Corrector, query string) (res stage.StageResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &stagePanicError{stage: corr.Name(), value: r}
		}
	}()
	return corr.TryCorrect(ctx, query)
}

type stagePanicError struct {
	stage string
	value any
}

func (e *stagePanicError) Error() string {
	return "stage panicked: " + e.stage
}

// nowFunc is overridden in tests to make elapsed-time assertions deterministic.
var nowFunc = time.Now
