package editdist

import (
	"context"
	"testing"
)

func defaultCorrector() *Corrector {
	return New([]string{"путин", "москва", "президент"}, map[string]string{"путен": "путин"}, 0)
}

func TestTryCorrect_ExactMatch(t *testing.T) {
	c := defaultCorrector()
	res, err := c.TryCorrect(context.Background(), "путин")
	if err != nil {
		t.Fatal(err)
	}
	if res.Corrected != "путин" || res.HasCorrection {
		t.Errorf("got %+v", res)
	}
}

func TestTryCorrect_KnownMisspelling(t *testing.T) {
	c := defaultCorrector()
	res, err := c.TryCorrect(context.Background(), "путен")
	if err != nil {
		t.Fatal(err)
	}
	if res.Corrected != "путин" || !res.HasCorrection {
		t.Errorf("got %+v", res)
	}
}

func TestTryCorrect_LevenshteinFallback(t *testing.T) {
	c := defaultCorrector()
	res, err := c.TryCorrect(context.Background(), "масква")
	if err != nil {
		t.Fatal(err)
	}
	if res.Corrected != "москва" || !res.HasCorrection {
		t.Errorf("got %+v", res)
	}
}

func TestTryCorrect_NoMatchBeyondBound(t *testing.T) {
	c := defaultCorrector()
	res, err := c.TryCorrect(context.Background(), "совершенносторонноенезнакомоеслово")
	if err != nil {
		t.Fatal(err)
	}
	if res.HasCorrection {
		t.Errorf("expected no correction, got %+v", res)
	}
}

func TestTryCorrect_NeverMutatesDictionary(t *testing.T) {
	c := defaultCorrector()
	before := len(c.valid)
	_, _ = c.TryCorrect(context.Background(), "масква совершеннонеизвестное")
	if len(c.valid) != before {
		t.Errorf("dictionary was mutated: before=%d after=%d", before, len(c.valid))
	}
}
