// Package editdist implements the bounded Levenshtein-distance spell
// corrector: dictionary membership, then a known-misspelling table, then a
// bounded nearest-neighbor search over the valid-word set.
package editdist

import (
	"context"
	"strings"

	"github.com/antzucaro/matchr"

	"github.com/newsgraph/querycore/internal/normalize"
	"github.com/newsgraph/querycore/pkg/querycore/spell/stage"
)

// Priority is this corrector's position in the composite pipeline
// (rule-based, runs first).
const Priority = 1

// DefaultMaxDistance is the bound on the Levenshtein search when no exact
// or known-misspelling match is found.
const DefaultMaxDistance = 2

// Corrector holds the valid-word set and known-misspelling table. Both are
// immutable after construction; TryCorrect never mutates them.
type Corrector struct {
	valid        map[string]struct{}
	misspellings map[string]string // misspelling -> canonical
	maxDistance  int
}

// New builds a Corrector from a valid-word set and a misspelling table.
// maxDistance <= 0 falls back to DefaultMaxDistance.
func New(validWords []string, misspellings map[string]string, maxDistance int) *Corrector {
	if maxDistance <= 0 {
		maxDistance = DefaultMaxDistance
	}
	valid := make(map[string]struct{}, len(validWords))
	for _, w := range validWords {
		if n := normalize.Normalize(w); n != "" {
			valid[n] = struct{}{}
		}
	}
	misspell := make(map[string]string, len(misspellings))
	for k, v := range misspellings {
		misspell[normalize.Normalize(k)] = normalize.Normalize(v)
	}
	return &Corrector{valid: valid, misspellings: misspell, maxDistance: maxDistance}
}

func (c *Corrector) Priority() int { return Priority }
func (c *Corrector) Name() string  { return "EditDistance" }

// HasWord reports whether word (already normalized or not) belongs to the
// valid-word set; it is exposed so other correctors (e.g. the
// keyboard-layout one) can test a transliteration against this dictionary.
func (c *Corrector) HasWord(word string) bool {
	_, ok := c.valid[normalize.Normalize(word)]
	return ok
}

// TryCorrect corrects each whitespace-separated token of query in turn and
// rejoins the result. It never blocks and ignores ctx cancellation since it
// does no I/O.
func (c *Corrector) TryCorrect(_ context.Context, query string) (stage.StageResult, error) {
	fields := strings.Fields(query)
	if len(fields) == 0 {
		return stage.StageResult{Original: query, Corrected: query, Success: true, Source: c.Name()}, nil
	}

	changed := false
	out := make([]string, len(fields))
	for i, f := range fields {
		corrected := c.correctToken(f)
		if corrected != normalize.Normalize(f) {
			changed = true
		}
		out[i] = corrected
	}

	result := strings.Join(out, " ")
	return stage.StageResult{
		Original:      query,
		Corrected:     result,
		HasCorrection: changed,
		Success:       true,
		Source:        c.Name(),
	}, nil
}

// correctToken applies the three-stage lookup described in spec §4.C to a
// single token.
func (c *Corrector) correctToken(token string) string {
	norm := normalize.Normalize(token)
	if norm == "" {
		return norm
	}

	if _, ok := c.valid[norm]; ok {
		return norm
	}
	if canonical, ok := c.misspellings[norm]; ok {
		return canonical
	}

	best, bestDist, found := "", c.maxDistance+1, false
	for candidate := range c.valid {
		d := matchr.Levenshtein(norm, candidate)
		if d > c.maxDistance {
			continue
		}
		switch {
		case !found:
			best, bestDist, found = candidate, d, true
		case d < bestDist:
			best, bestDist = candidate, d
		case d == bestDist && len(candidate) > len(best):
			best = candidate
		}
	}
	if found {
		return best
	}
	return norm
}
