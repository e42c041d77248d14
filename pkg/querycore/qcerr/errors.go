// Package qcerr defines sentinel error kinds for querycore's failure
// categories. No querycore package returns or wraps these sentinels: the
// packages report failures with their own wrapped errors (or, in the
// composite corrector, absorb them), so errors.Is against these values
// does not match errors produced inside querycore.
package qcerr

import "errors"

// Sentinel errors naming the failure categories of the spell, synonym, and
// mining subsystems.
var (
	// ErrInvalidInput names rejection of an empty or blank argument. The
	// composite corrector returns a no-change result for such input
	// (see spell.Composite).
	ErrInvalidInput = errors.New("querycore: invalid input")

	// ErrPersistence names read/write failures on the synonym dictionary
	// file or its optional SQLite backing store.
	ErrPersistence = errors.New("querycore: persistence failure")

	// ErrModelUnavailable names a failed reachability probe of the optional
	// LLM corrector. Such a failure never prevents construction of the
	// composite corrector itself.
	ErrModelUnavailable = errors.New("querycore: model unavailable")

	// ErrCancelled names a caller's context being cancelled mid pipeline or
	// mid mining-run.
	ErrCancelled = errors.New("querycore: cancelled")

	// ErrTimeout names an individual corrector stage exceeding its
	// deadline. The composite pipeline absorbs stage errors and continues.
	ErrTimeout = errors.New("querycore: stage timeout")
)
