// Package querylog implements the analytics-driven corrector: it learns
// corrections from historical queries that previously yielded more results
// than the current one.
package querylog

import (
	"context"
	"strings"

	"github.com/newsgraph/querycore/internal/normalize"
	"github.com/newsgraph/querycore/pkg/querycore/spell/stage"
)

// Priority is this corrector's position in the composite pipeline
// (analytics tier).
const Priority = 8

// DefaultMinOverlap is the minimum Jaccard overlap between normalized
// token sets for a historical query to be considered "close" to the
// current one.
const DefaultMinOverlap = 0.5

// DefaultLookback bounds how many of the most recent historical entries are
// scanned per call, so a single TryCorrect call never blocks on an
// unbounded history.
const DefaultLookback = 500

// LoggedQuery is one historical observation fed in from the index client:
// a raw query string and how many results the index returned for it.
type LoggedQuery struct {
	RawQuery    string
	ResultCount int
}

// Corrector scans a bounded window of historical queries for one that is
// token-close to the current query and yielded strictly more results.
type Corrector struct {
	history   []LoggedQuery
	minOverlap float64
	lookback   int
}

// New builds a query-log corrector. history is consumed as a snapshot — the
// Corrector does not mutate or grow it; callers wanting fresh data
// construct a new Corrector (e.g. periodically, from the index client).
func New(history []LoggedQuery, minOverlap float64, lookback int) *Corrector {
	if minOverlap <= 0 {
		minOverlap = DefaultMinOverlap
	}
	if lookback <= 0 {
		lookback = DefaultLookback
	}
	return &Corrector{history: history, minOverlap: minOverlap, lookback: lookback}
}

func (c *Corrector) Priority() int { return Priority }
func (c *Corrector) Name() string  { return "QueryLog" }

// TryCorrect scans the history window (most recent first, bounded by
// lookback) for queries whose normalized token set overlaps the current
// query by at least minOverlap, and returns the one with the highest
// ResultCount, provided that count is strictly greater than the highest
// count logged for the current query itself in the same window. A tie with
// the current query's count, or no match, results in a no-op correction.
func (c *Corrector) TryCorrect(ctx context.Context, query string) (stage.StageResult, error) {
	queryTokens := tokenSet(query)
	if len(queryTokens) == 0 {
		return stage.StageResult{Original: query, Corrected: query, Success: true, Source: c.Name()}, nil
	}

	window := c.history
	if len(window) > c.lookback {
		window = window[len(window)-c.lookback:]
	}

	best := ""
	bestCount := -1
	ownCount := -1
	for i := len(window) - 1; i >= 0; i-- {
		select {
		case <-ctx.Done():
			return stage.StageResult{Original: query, Corrected: query, Success: false, Source: c.Name(), Message: ctx.Err().Error()}, ctx.Err()
		default:
		}
		entry := window[i]
		candidateNorm := normalize.Normalize(entry.RawQuery)
		if candidateNorm == normalize.Normalize(query) {
			if entry.ResultCount > ownCount {
				ownCount = entry.ResultCount
			}
			continue
		}
		overlap := jaccard(queryTokens, tokenSet(entry.RawQuery))
		if overlap < c.minOverlap {
			continue
		}
		if entry.ResultCount > bestCount {
			best, bestCount = candidateNorm, entry.ResultCount
		}
	}

	if best == "" || bestCount <= ownCount {
		return stage.StageResult{Original: query, Corrected: query, Success: true, Source: c.Name()}, nil
	}
	return stage.StageResult{
		Original:      query,
		Corrected:     best,
		HasCorrection: best != normalize.Normalize(query),
		Success:       true,
		Source:        c.Name(),
	}, nil
}

func tokenSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, f := range strings.Fields(s) {
		if n := normalize.Normalize(f); n != "" {
			set[n] = struct{}{}
		}
	}
	return set
}

func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1.0
	}
	inter := 0
	for tok := range a {
		if _, ok := b[tok]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}
