// Package stage defines the corrector contract shared by every spell
// correction stage and the composite pipeline that orchestrates them. It is
// a separate leaf package (rather than living in spell itself) so that
// individual correctors (editdist, keyboard, phonetic, querylog,
// llmcorrect) can implement the contract without importing the spell
// package that assembles them.
package stage

import "context"

// Corrector is the contract every correction stage implements, including
// third-party ones (e.g. an LLM-backed corrector plugged in at priority 10).
// Smaller Priority values run first.
type Corrector interface {
	Priority() int
	Name() string
	TryCorrect(ctx context.Context, query string) (StageResult, error)
}

// StageResult is what a single corrector stage returns for one query.
type StageResult struct {
	Original      string
	Corrected     string
	HasCorrection bool
	Success       bool
	Source        string
	Message       string
}

// Step is one entry in a DetailedResult's trace. Step k's Before always
// equals step k-1's After.
type Step struct {
	Method     string
	Before     string
	After      string
	Confidence float64
	Reason     string
}

// DetailedResult is the composite corrector's return value: the corrected
// query, the full trace of stages that changed it, an aggregate confidence,
// and how long the pipeline took.
type DetailedResult struct {
	Original  string
	Corrected string
	Steps     []Step
	Confidence float64
	Elapsed    int64 // nanoseconds
}

// HasCorrection reports whether the corrected query differs from the
// original.
func (r DetailedResult) HasCorrection() bool {
	return r.Corrected != r.Original
}
