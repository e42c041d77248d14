// Package indexclient defines the contract for the external search index
// that consumes synonym rules and supplies historical query-result
// observations, plus an in-memory fake for tests and offline tooling.
package indexclient

import (
	"context"
	"sync"

	"github.com/newsgraph/querycore/pkg/querycore/spell/querylog"
)

// Client is the external collaborator boundary: an index service that
// accepts synonym rules for query-time expansion and can report how past
// queries performed.
type Client interface {
	// EmitRules ships a batch of index-rule strings (as produced by
	// synonym.Provider.BuildIndexRules) to the index for query-time use.
	EmitRules(ctx context.Context, rules []string) error

	// QueryLog returns historical (raw_query, result_count) observations
	// for the query-log spell corrector to learn from.
	QueryLog(ctx context.Context) ([]querylog.LoggedQuery, error)
}

// Memory is an in-process Client backed by plain slices, useful for tests,
// offline tooling, and as a fallback when no real index is configured.
type Memory struct {
	mu      sync.RWMutex
	rules   []string
	history []querylog.LoggedQuery
}

// NewMemory returns an empty in-memory Client.
func NewMemory() *Memory {
	return &Memory{}
}

// EmitRules replaces the stored rule set.
func (m *Memory) EmitRules(_ context.Context, rules []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rules = append([]string(nil), rules...)
	return nil
}

// Rules returns the most recently emitted rule set.
func (m *Memory) Rules() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.rules...)
}

// QueryLog returns the recorded history.
func (m *Memory) QueryLog(_ context.Context) ([]querylog.LoggedQuery, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]querylog.LoggedQuery(nil), m.history...), nil
}

// Record appends an observation, as a test or offline tool standing in for
// the real index reporting back query performance.
func (m *Memory) Record(rawQuery string, resultCount int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.history = append(m.history, querylog.LoggedQuery{RawQuery: rawQuery, ResultCount: resultCount})
}
