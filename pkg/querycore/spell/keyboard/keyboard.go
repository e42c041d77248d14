// Package keyboard implements the keyboard-layout spell corrector: it
// detects queries typed with the wrong keyboard layout selected (Latin
// characters typed while intending Cyrillic, or vice versa) and
// transliterates them back using the physical key-position mapping between
// a QWERTY and a ЙЦУКЕН layout.
package keyboard

import (
	"context"
	"strings"

	"github.com/newsgraph/querycore/internal/normalize"
	"github.com/newsgraph/querycore/pkg/querycore/spell/stage"
)

// Priority is this corrector's position in the composite pipeline.
const Priority = 2

// Validator reports whether a transliterated candidate is a known word.
// editdist.Corrector satisfies this through its HasWord method; tests use a
// trivial map-backed fake.
type Validator interface {
	HasWord(word string) bool
}

// qwertyToYcuken maps each Latin QWERTY key to the Cyrillic character in
// the same physical position on a standard Russian ЙЦУКЕН layout.
var qwertyToYcuken = map[rune]rune{
	'q': 'й', 'w': 'ц', 'e': 'у', 'r': 'к', 't': 'е', 'y': 'н', 'u': 'г',
	'i': 'ш', 'o': 'щ', 'p': 'з', '[': 'х', ']': 'ъ',
	'a': 'ф', 's': 'ы', 'd': 'в', 'f': 'а', 'g': 'п', 'h': 'р', 'j': 'о',
	'k': 'л', 'l': 'д', ';': 'ж', '\'': 'э',
	'z': 'я', 'x': 'ч', 'c': 'с', 'v': 'м', 'b': 'и', 'n': 'т', 'm': 'ь',
	',': 'б', '.': 'ю',
}

// ycukenToQwerty is the reverse mapping, built once at init.
var ycukenToQwerty = reverseRuneMap(qwertyToYcuken)

func reverseRuneMap(m map[rune]rune) map[rune]rune {
	out := make(map[rune]rune, len(m))
	for k, v := range m {
		out[v] = k
	}
	return out
}

// Corrector holds the bidirectional layout mapping plus an optional
// Validator used to confirm a transliteration is a real word before
// accepting it.
type Corrector struct {
	validator Validator
}

// New creates a keyboard-layout corrector. validator may be nil, in which
// case any fully-transliterable token is accepted (useful for tests).
func New(validator Validator) *Corrector {
	return &Corrector{validator: validator}
}

func (c *Corrector) Priority() int { return Priority }
func (c *Corrector) Name() string  { return "KeyboardLayout" }

// TryCorrect transliterates each whitespace-separated token when it is
// written entirely in the "wrong" layout and the transliteration is a known
// word (or no validator is configured). Tokens that are not fully
// transliterable, or whose transliteration is not recognized, pass through
// unchanged.
func (c *Corrector) TryCorrect(_ context.Context, query string) (stage.StageResult, error) {
	fields := strings.Fields(query)
	if len(fields) == 0 {
		return stage.StageResult{Original: query, Corrected: query, Success: true, Source: c.Name()}, nil
	}

	changed := false
	out := make([]string, len(fields))
	for i, f := range fields {
		norm := normalize.Normalize(f)
		if translit, ok := c.transliterate(norm); ok {
			out[i] = translit
			changed = true
		} else {
			out[i] = norm
		}
	}

	return stage.StageResult{
		Original:      query,
		Corrected:     strings.Join(out, " "),
		HasCorrection: changed,
		Success:       true,
		Source:        c.Name(),
	}, nil
}

// transliterate tries both directions and returns the first transliteration
// that is both complete (every rune mapped) and, when a validator is set,
// recognized as a real word.
func (c *Corrector) transliterate(token string) (string, bool) {
	if token == "" {
		return "", false
	}
	for _, m := range []map[rune]rune{qwertyToYcuken, ycukenToQwerty} {
		if candidate, ok := mapToken(token, m); ok {
			if c.validator == nil || c.validator.HasWord(candidate) {
				return candidate, true
			}
		}
	}
	return "", false
}

// mapToken transliterates token rune-by-rune using m; ok is false if any
// rune in token is absent from m (the token isn't entirely in that layout).
func mapToken(token string, m map[rune]rune) (string, bool) {
	var b strings.Builder
	for _, r := range token {
		mapped, ok := m[r]
		if !ok {
			return "", false
		}
		b.WriteRune(mapped)
	}
	return b.String(), true
}
