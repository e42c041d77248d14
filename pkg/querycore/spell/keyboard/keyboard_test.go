package keyboard

import (
	"context"
	"testing"
)

type fakeValidator struct{ words map[string]struct{} }

func (f fakeValidator) HasWord(w string) bool {
	_, ok := f.words[w]
	return ok
}

func TestTryCorrect_LatinToCyrillic(t *testing.T) {
	// Pressing the keys for "путин" while the Latin QWERTY layout is
	// selected yields "genby" (same key positions, wrong layout).
	v := fakeValidator{words: map[string]struct{}{"путин": {}}}
	c := New(v)
	res, err := c.TryCorrect(context.Background(), "genby")
	if err != nil {
		t.Fatal(err)
	}
	if res.Corrected != "путин" || !res.HasCorrection {
		t.Errorf("got %+v", res)
	}
}

func TestTryCorrect_UnknownTransliterationPassesThrough(t *testing.T) {
	v := fakeValidator{words: map[string]struct{}{}}
	c := New(v)
	res, err := c.TryCorrect(context.Background(), "genby")
	if err != nil {
		t.Fatal(err)
	}
	if res.HasCorrection {
		t.Errorf("expected no correction without validator hit, got %+v", res)
	}
}

func TestTryCorrect_MixedLayoutPassesThrough(t *testing.T) {
	c := New(nil)
	res, err := c.TryCorrect(context.Background(), "путinX")
	if err != nil {
		t.Fatal(err)
	}
	if res.HasCorrection {
		t.Errorf("mixed-layout token should not be corrected, got %+v", res)
	}
}
