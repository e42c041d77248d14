package synonym

import (
	"path/filepath"
	"testing"
)

func TestGetSynonyms_NeverContainsWordItself(t *testing.T) {
	p := New(nil)
	p.AddGroup("путин", "президент")
	syns := p.GetSynonyms("путин", -1)
	if _, ok := syns["путин"]; ok {
		t.Errorf("expected GetSynonyms to exclude the word itself, got %+v", syns)
	}
	if _, ok := syns["президент"]; !ok {
		t.Errorf("expected президент in synonyms, got %+v", syns)
	}
}

func TestGetSynonyms_UnknownWordIsEmpty(t *testing.T) {
	p := New(nil)
	syns := p.GetSynonyms("неизвестно", -1)
	if len(syns) != 0 {
		t.Errorf("expected empty set, got %+v", syns)
	}
}

func TestConfidenceGate_IsMonotone(t *testing.T) {
	p := New(nil)
	p.LoadFromData(
		map[string][]string{"путин": {"президент"}},
		map[string]float64{"путин": 0.5, "президент": 0.5},
	)

	low := p.GetSynonyms("путин", 0.3)
	high := p.GetSynonyms("путин", 0.9)

	if len(high) > 0 {
		t.Errorf("expected no synonyms above threshold, got %+v", high)
	}
	if len(low) != 1 {
		t.Errorf("expected synonym to pass lower threshold, got %+v", low)
	}
}

func TestGetSynonyms_AbsentConfidenceTreatedAsPassing(t *testing.T) {
	p := New(nil)
	p.LoadFromData(map[string][]string{"путин": {"президент"}}, nil)

	syns := p.GetSynonyms("путин", 0.99)
	if len(syns) != 1 {
		t.Errorf("expected absent confidence to pass strict threshold, got %+v", syns)
	}
}

func TestAddGroup_RequiresAtLeastTwoDistinctSurvivors(t *testing.T) {
	p := New(nil)
	p.AddGroup("путин", "путин", "")
	if p.HasSynonyms("путин", -1) {
		t.Error("expected no group to be added with fewer than 2 distinct survivors")
	}
}

func TestAddGroup_AddsAllPairwiseEdges(t *testing.T) {
	p := New(nil)
	p.AddGroup("а", "б", "в")
	for _, tok := range []string{"а", "б", "в"} {
		syns := p.GetSynonyms(tok, -1)
		if len(syns) != 2 {
			t.Errorf("expected %s to have 2 synonyms, got %+v", tok, syns)
		}
	}
}

func TestExpandQuery_UnionsOriginalAndSynonyms(t *testing.T) {
	p := New(nil)
	p.AddGroup("путин", "президент")

	expanded := p.ExpandQuery("путин москва", -1)
	for _, want := range []string{"путин", "москва", "президент"} {
		if !contains(expanded, want) {
			t.Errorf("expected %q to contain %q", expanded, want)
		}
	}
}

func TestExpandQuery_NoSynonymsReturnsNormalizedOriginal(t *testing.T) {
	p := New(nil)
	expanded := p.ExpandQuery("Москва", -1)
	if expanded != "москва" {
		t.Errorf("got %q", expanded)
	}
}

func TestExpandQuery_OrderIsStableAcrossRepeatedCalls(t *testing.T) {
	p := New(nil)
	p.AddGroup("путин", "президент", "глава", "лидер")

	first := p.ExpandQuery("путин", -1)
	for i := 0; i < 20; i++ {
		if got := p.ExpandQuery("путин", -1); got != first {
			t.Fatalf("expected stable order across calls, got %q then %q", first, got)
		}
	}
}

func TestGroups_ConnectedComponentsRespectGate(t *testing.T) {
	p := New(nil)
	p.LoadFromData(
		map[string][]string{"а": {"б"}, "в": {"г"}},
		map[string]float64{"в": 0.1, "г": 0.1},
	)
	p.SetMinConfidence(0)

	groups := p.Groups(0.5)
	if len(groups) != 1 {
		t.Fatalf("expected 1 group passing gate, got %d: %+v", len(groups), groups)
	}
}

func TestBuildIndexRules_SortedDedupedSignatures(t *testing.T) {
	p := New(nil)
	p.AddGroup("б", "а")

	rules := p.BuildIndexRules(-1)
	if len(rules) != 1 || rules[0] != "а, б" {
		t.Errorf("got %+v", rules)
	}
}

func TestSetMinConfidence_Clamps(t *testing.T) {
	p := New(nil)
	p.SetMinConfidence(5)
	if p.minConfidence != 1 {
		t.Errorf("expected clamp to 1, got %v", p.minConfidence)
	}
	p.SetMinConfidence(-5)
	if p.minConfidence != 0 {
		t.Errorf("expected clamp to 0, got %v", p.minConfidence)
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "synonyms.json")
	p := New(nil)
	p.AddGroup("путин", "президент")
	if err := p.Save(path); err != nil {
		t.Fatal(err)
	}

	reloaded := New(nil)
	if err := reloaded.Load(path); err != nil {
		t.Fatal(err)
	}
	if !reloaded.HasSynonyms("путин", -1) {
		t.Error("expected reloaded provider to retain synonyms")
	}
}

func contains(haystack, needle string) bool {
	for _, f := range splitFields(haystack) {
		if f == needle {
			return true
		}
	}
	return false
}

func splitFields(s string) []string {
	var fields []string
	cur := ""
	for _, r := range s {
		if r == ' ' {
			if cur != "" {
				fields = append(fields, cur)
				cur = ""
			}
			continue
		}
		cur += string(r)
	}
	if cur != "" {
		fields = append(fields, cur)
	}
	return fields
}
