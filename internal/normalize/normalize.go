// Package normalize implements the text-preprocessing step shared by every
// querycore subsystem: Unicode case folding, whitespace collapsing, and
// punctuation stripping.
//
// Normalize is pure, total, and idempotent: Normalize(Normalize(s)) ==
// Normalize(s) for any input s.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// maxInputBytes bounds pathological input; oversized input is truncated
// before folding rather than rejected, so Normalize stays total.
const maxInputBytes = 1 << 20 // 1 MiB

var foldCase = cases.Fold()

// Normalize lowercases s, strips characters that are not Unicode letters or
// digits, and collapses internal whitespace to single spaces. It returns ""
// for inputs that become empty after stripping.
//
// Dashes inside tokens are not preserved; a trailing or leading dash is
// simply removed along with other punctuation.
func Normalize(s string) string {
	if len(s) > maxInputBytes {
		s = s[:maxInputBytes]
	}
	if s == "" {
		return ""
	}

	// NFC composition + locale-agnostic case folding, so that
	// combining-mark variants of the same letter normalize identically.
	folded := foldCase.String(norm.NFC.String(s))

	var b strings.Builder
	b.Grow(len(folded))

	lastWasSpace := true // avoid leading space
	for _, r := range folded {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastWasSpace = false
		case unicode.IsSpace(r):
			if !lastWasSpace {
				b.WriteRune(' ')
				lastWasSpace = true
			}
		default:
			// punctuation and symbols are dropped entirely, not replaced
			// with a space, so "путин!!" folds to "путин" not "путин ".
		}
	}

	return strings.TrimSpace(b.String())
}

// NormalizeToken is Normalize applied to a single already-whitespace-free
// word; it is a thin wrapper with no behavior of its own. The correctors in
// this module call Normalize directly.
func NormalizeToken(s string) string {
	return Normalize(s)
}

// CaserForLocale returns a language-tagged title caser for re-presenting a
// canonical term rather than feeding it back through the pipeline. Nothing
// in this module calls it.
func CaserForLocale(tag language.Tag) cases.Caser {
	return cases.Title(tag)
}
