package miner

import (
	"context"
	"testing"
)

func newsCorpus() []Article {
	return []Article{
		{Title: "Путин встретился с президентом", Content: "Владимир Путин провел переговоры в Москве сегодня"},
		{Title: "Встреча президента состоялась", Content: "Владимир Путин обсудил вопросы в Москве сегодня"},
		{Title: "Экономика растет", Content: "Владимир Путин говорил об экономике и бюджете страны"},
		{Title: "Спорт новости", Content: "Футбольная команда выиграла матч в минувшие выходные"},
	}
}

func TestMine_EmptyCorpusYieldsEmptyResult(t *testing.T) {
	result, err := Mine(context.Background(), nil, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Groups) != 0 {
		t.Errorf("expected no groups, got %+v", result.Groups)
	}
	if result.Statistics.ArticlesAnalyzed != 0 {
		t.Errorf("expected 0 articles analyzed, got %+v", result.Statistics)
	}
}

func TestMine_FindsCoOccurringGroups(t *testing.T) {
	opts := DefaultOptions()
	opts.MinSimilarity = 0.1
	opts.MinCoOccurrence = 1
	opts.MinWordFrequency = 1

	result, err := Mine(context.Background(), newsCorpus(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if result.Statistics.ArticlesAnalyzed != 4 {
		t.Errorf("expected 4 articles analyzed, got %+v", result.Statistics)
	}

	// "Путин" is capitalized in all 4 of its occurrences, so the default
	// proper-noun filter drops it; москве and сегодня share articles 0 and 1.
	found := false
	for _, group := range result.Groups {
		if _, ok := group["москве"]; ok {
			if _, ok := group["сегодня"]; ok {
				found = true
			}
		}
	}
	if !found {
		t.Errorf("expected москве/сегодня to co-occur in a group, got %+v", result.Groups)
	}
}

func TestMine_GroupsHaveAtLeastTwoMembers(t *testing.T) {
	opts := DefaultOptions()
	opts.MinSimilarity = 0.1
	opts.MinCoOccurrence = 1
	opts.MinWordFrequency = 1

	result, err := Mine(context.Background(), newsCorpus(), opts)
	if err != nil {
		t.Fatal(err)
	}
	for _, group := range result.Groups {
		if len(group) < 2 {
			t.Errorf("expected every group to have >= 2 members, got %+v", group)
		}
	}
}

func TestMorphologicalSimilarity_IdenticalIsOne(t *testing.T) {
	if got := morphologicalSimilarity("москва", "москва"); got != 1.0 {
		t.Errorf("got %v", got)
	}
}

func TestUnionFind_MergesTransitively(t *testing.T) {
	uf := newUnionFind()
	uf.union("a", "b")
	uf.union("b", "c")
	if uf.find("a") != uf.find("c") {
		t.Errorf("expected a and c to share a root")
	}
}

func TestIntersectSize(t *testing.T) {
	a := map[int]struct{}{1: {}, 2: {}, 3: {}}
	b := map[int]struct{}{2: {}, 3: {}, 4: {}}
	if got := intersectSize(a, b); got != 2 {
		t.Errorf("got %d, want 2", got)
	}
}

func TestCollapseMorphologicalDuplicates_StillUnionsIntoSameGroup(t *testing.T) {
	opts := DefaultOptions()
	opts.MorphologicalSimilarityThreshold = 0.78

	pairs := []similarityPair{
		{w1: "москва", w2: "москве", jaccard: 0.9, cosine: 0.9, coOccurrence: 5},
		{w1: "москве", w2: "путин", jaccard: 0.3, cosine: 0.3, coOccurrence: 2},
	}

	surviving, duplicates := collapseMorphologicalDuplicates(pairs, opts)

	for _, p := range surviving {
		if (p.w1 == "москва" && p.w2 == "москве") || (p.w1 == "москве" && p.w2 == "москва") {
			t.Errorf("expected москва/москве to be dropped as a morphological duplicate, got %+v", surviving)
		}
	}
	if len(duplicates) != 1 || duplicates[0] != [2]string{"москва", "москве"} {
		t.Fatalf("expected москва/москве recorded as a duplicate edge, got %+v", duplicates)
	}

	groups := groupPairs(surviving, duplicates)
	found := false
	for _, group := range groups {
		_, hasA := group["москва"]
		_, hasB := group["москве"]
		if hasA && hasB {
			found = true
		}
	}
	if !found {
		t.Errorf("expected москва and москве to land in the same group despite no direct similarity edge, got %+v", groups)
	}
}

func TestMine_ConcurrentMatchesSequential(t *testing.T) {
	opts := DefaultOptions()
	opts.MinSimilarity = 0.1
	opts.MinCoOccurrence = 1
	opts.MinWordFrequency = 1
	opts.Concurrency = 1
	sequential, err := Mine(context.Background(), newsCorpus(), opts)
	if err != nil {
		t.Fatal(err)
	}

	opts.Concurrency = 4
	parallel, err := Mine(context.Background(), newsCorpus(), opts)
	if err != nil {
		t.Fatal(err)
	}

	if len(sequential.Groups) != len(parallel.Groups) {
		t.Errorf("expected same group count sequential=%d parallel=%d", len(sequential.Groups), len(parallel.Groups))
	}
}
