// Package phonetic implements a Russian-adapted Soundex-like corrector: a
// fixed-width phonetic hash groups similar-sounding words, and each hash
// bucket is preloaded with an ordered list of correction candidates.
package phonetic

import (
	"context"
	"strings"

	"github.com/newsgraph/querycore/internal/normalize"
	"github.com/newsgraph/querycore/pkg/querycore/spell/stage"
)

// Priority is this corrector's position in the composite pipeline.
const Priority = 3

// codeWidth is the fixed suffix width of a phonetic code (digits after the
// retained first character).
const codeWidth = 4

// consonantClass groups Russian consonants that sound alike for Soundex-like
// bucketing. Vowels and soft/hard signs are not classed — vowels are
// dropped entirely (after the first character) and signs are elided.
var consonantClass = map[rune]byte{
	'б': '1', 'п': '1',
	'в': '2', 'ф': '2',
	'г': '3', 'к': '3', 'х': '3',
	'д': '4', 'т': '4',
	'ж': '5', 'ш': '5', 'щ': '5', 'з': '5', 'с': '5', 'ц': '5', 'ч': '5',
	'л': '6',
	'м': '7', 'н': '7',
	'р': '8',
	'й': '9',
}

var vowels = map[rune]struct{}{
	'а': {}, 'о': {}, 'у': {}, 'ы': {}, 'э': {}, 'и': {}, 'я': {}, 'ю': {}, 'е': {}, 'ё': {},
}

// Code computes the Russian Soundex-like code for word: the first character
// is kept verbatim, subsequent consonants collapse to a digit class (with
// adjacent equal classes collapsed once), vowels and soft/hard signs are
// dropped, and the digit suffix is padded or truncated to codeWidth.
func Code(word string) string {
	runes := []rune(normalize.Normalize(word))
	if len(runes) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteRune(runes[0])

	var lastClass byte
	digits := 0
	for _, r := range runes[1:] {
		if r == 'ь' || r == 'ъ' {
			continue
		}
		if _, isVowel := vowels[r]; isVowel {
			lastClass = 0
			continue
		}
		class, ok := consonantClass[r]
		if !ok {
			continue
		}
		if class == lastClass {
			continue
		}
		b.WriteByte(class)
		lastClass = class
		digits++
		if digits >= codeWidth {
			break
		}
	}

	code := b.String()
	// Pad the digit suffix with zeros up to codeWidth.
	for len([]rune(code))-1 < codeWidth {
		code += "0"
	}
	return code
}

// Corrector holds a preloaded mapping from phonetic code to an ordered list
// of candidate words. The table is immutable after construction.
type Corrector struct {
	buckets map[string][]string
}

// New builds a phonetic corrector from a candidate vocabulary; candidates
// sharing a phonetic code are grouped in the order given.
func New(vocabulary []string) *Corrector {
	buckets := make(map[string][]string)
	seen := make(map[string]struct{}, len(vocabulary))
	for _, w := range vocabulary {
		n := normalize.Normalize(w)
		if n == "" {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		code := Code(n)
		buckets[code] = append(buckets[code], n)
	}
	return &Corrector{buckets: buckets}
}

func (c *Corrector) Priority() int { return Priority }
func (c *Corrector) Name() string  { return "Phonetic" }

// TryCorrect replaces each token with the first candidate in its phonetic
// bucket that differs from the token itself; tokens whose bucket has no
// other candidate pass through unchanged.
func (c *Corrector) TryCorrect(_ context.Context, query string) (stage.StageResult, error) {
	fields := strings.Fields(query)
	if len(fields) == 0 {
		return stage.StageResult{Original: query, Corrected: query, Success: true, Source: c.Name()}, nil
	}

	changed := false
	out := make([]string, len(fields))
	for i, f := range fields {
		norm := normalize.Normalize(f)
		out[i] = norm
		for _, candidate := range c.buckets[Code(norm)] {
			if candidate != norm {
				out[i] = candidate
				changed = true
				break
			}
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
