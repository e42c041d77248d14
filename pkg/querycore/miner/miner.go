// Package miner discovers candidate synonym pairs from a corpus of
// articles by co-occurrence statistics: frequency filtering, proper-noun
// and compound-term suppression, pairwise Jaccard/cosine similarity over an
// inverted index, a morphological near-duplicate collapse, per-word
// capping, and union-find grouping into symmetric synonym components.
package miner

import (
	"context"
	"math"
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/antzucaro/matchr"
	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/newsgraph/querycore/internal/normalize"
	"github.com/newsgraph/querycore/internal/tokenize"
)

// Article is one input document: a headline and its body text.
type Article struct {
	Title   string
	Content string
}

// Options configures a mining run. Zero or negative numeric values are
// replaced by defaults in resolve; boolean fields are used as given.
type Options struct {
	MinSimilarity   float64
	MinCoOccurrence int

	MinWordLength int
	MaxWordLength int

	UseTitles   bool
	UseContent  bool
	TitleWeight float64

	MaxSynonymsPerWord int

	MinWordFrequency int
	MaxWordFrequency int // 0 means unbounded

	ExcludedWords  map[string]struct{}
	ForbiddenWords map[string]struct{}

	ExcludeProperNouns                bool
	MinProperNounOccurrences          int
	ProperNounCapitalizationThreshold float64

	ExcludeCompoundTerms     bool
	MinCompoundOccurrences   int

	MorphologicalSimilarityThreshold float64

	// Logger receives periodic progress updates during the pairwise stage.
	Logger *zap.SugaredLogger

	// Concurrency bounds how many workers partition the pairwise stage.
	// Defaults to 1 (sequential) when <= 0.
	Concurrency int
}

// DefaultOptions returns the recommended default tuning values.
func DefaultOptions() Options {
	return Options{
		MinSimilarity:                     0.25,
		MinCoOccurrence:                   2,
		MinWordLength:                     3,
		MaxWordLength:                     30,
		UseTitles:                         true,
		UseContent:                        true,
		TitleWeight:                       2.0,
		MaxSynonymsPerWord:                15,
		MinWordFrequency:                  2,
		MaxWordFrequency:                  0,
		ExcludeProperNouns:                true,
		MinProperNounOccurrences:          3,
		ProperNounCapitalizationThreshold: 0.7,
		ExcludeCompoundTerms:              true,
		MinCompoundOccurrences:            3,
		MorphologicalSimilarityThreshold:  0.78,
		Concurrency:                       1,
	}
}

func (o Options) resolve() Options {
	d := DefaultOptions()
	if o.MinSimilarity <= 0 {
		o.MinSimilarity = d.MinSimilarity
	}
	if o.MinCoOccurrence <= 0 {
		o.MinCoOccurrence = d.MinCoOccurrence
	}
	if o.MinWordLength <= 0 {
		o.MinWordLength = d.MinWordLength
	}
	if o.MaxWordLength <= 0 {
		o.MaxWordLength = d.MaxWordLength
	}
	if o.TitleWeight <= 0 {
		o.TitleWeight = d.TitleWeight
	}
	if o.MaxSynonymsPerWord <= 0 {
		o.MaxSynonymsPerWord = d.MaxSynonymsPerWord
	}
	if o.MinWordFrequency <= 0 {
		o.MinWordFrequency = d.MinWordFrequency
	}
	if o.MinProperNounOccurrences <= 0 {
		o.MinProperNounOccurrences = d.MinProperNounOccurrences
	}
	if o.ProperNounCapitalizationThreshold <= 0 {
		o.ProperNounCapitalizationThreshold = d.ProperNounCapitalizationThreshold
	}
	if o.MinCompoundOccurrences <= 0 {
		o.MinCompoundOccurrences = d.MinCompoundOccurrences
	}
	if o.MorphologicalSimilarityThreshold <= 0 {
		o.MorphologicalSimilarityThreshold = d.MorphologicalSimilarityThreshold
	}
	if o.Concurrency <= 0 {
		o.Concurrency = 1
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop().Sugar()
	}
	// UseTitles/UseContent/ExcludeProperNouns/ExcludeCompoundTerms default
	// true; since Go's zero value for bool is false, callers that want the
	// spec default must start from DefaultOptions rather than a literal.
	return o
}

// Result is the outcome of a mining run: symmetric synonym components plus
// run statistics. synonym.Provider.Save does not write these statistics to
// the saved dictionary.
type Result struct {
	Groups     []map[string]struct{}
	Statistics Statistics
}

// Statistics summarizes one mining run.
type Statistics struct {
	TotalWords       int
	TotalPairs       int
	MinSimilarity    float64
	AvgSimilarity    float64
	MaxSimilarity    float64
	ArticlesAnalyzed int
}

type similarityPair struct {
	w1, w2        string
	jaccard       float64
	cosine        float64
	coOccurrence  int
}

// Mine runs the full pipeline over articles and returns the discovered
// synonym groups and run statistics. An empty corpus yields an empty
// result with no error.
func Mine(ctx context.Context, articles []Article, opts Options) (Result, error) {
	opts = opts.resolve()

	if len(articles) == 0 {
		return Result{Statistics: Statistics{ArticlesAnalyzed: 0}}, nil
	}

	freq := frequencyPass(articles, opts)
	freq = properNounFilter(articles, freq, opts)
	compoundFlagged := compoundTermFilter(articles, freq, opts)

	index := buildInvertedIndex(articles, freq, opts)

	pairs, err := pairwiseSimilarity(ctx, index, compoundFlagged, opts)
	if err != nil {
		return Result{}, err
	}

	pairs, duplicates := collapseMorphologicalDuplicates(pairs, opts)
	pairs = capPerWord(pairs, opts)

	groups := groupPairs(pairs, duplicates)

	stats := computeStatistics(pairs, len(freq), len(articles))
	return Result{Groups: groups, Statistics: stats}, nil
}

func frequencyPass(articles []Article, opts Options) map[string]int {
	freq := make(map[string]int)
	for _, a := range articles {
		var text string
		if opts.UseTitles {
			text += " " + a.Title
		}
		if opts.UseContent {
			text += " " + a.Content
		}
		for _, tok := range tokenize.Tokenize(text) {
			freq[tok]++
		}
	}

	filtered := make(map[string]int, len(freq))
	for tok, count := range freq {
		n := len([]rune(tok))
		if n < opts.MinWordLength || n > opts.MaxWordLength {
			continue
		}
		if count < opts.MinWordFrequency {
			continue
		}
		if opts.MaxWordFrequency > 0 && count > opts.MaxWordFrequency {
			continue
		}
		if _, excluded := opts.ExcludedWords[tok]; excluded {
			continue
		}
		if _, forbidden := opts.ForbiddenWords[tok]; forbidden {
			continue
		}
		filtered[tok] = count
	}
	return filtered
}

// properNounFilter drops tokens that, in their raw-cased occurrences, start
// with an uppercase letter often enough to look like a proper noun.
func properNounFilter(articles []Article, freq map[string]int, opts Options) map[string]int {
	if !opts.ExcludeProperNouns {
		return freq
	}

	total := make(map[string]int)
	capitalized := make(map[string]int)
	for _, a := range articles {
		var text string
		if opts.UseTitles {
			text += " " + a.Title
		}
		if opts.UseContent {
			text += " " + a.Content
		}
		for _, raw := range strings.Fields(text) {
			norm := normalize.Normalize(raw)
			if _, ok := freq[norm]; !ok {
				continue
			}
			total[norm]++
			if isCapitalized(raw) {
				capitalized[norm]++
			}
		}
	}

	out := make(map[string]int, len(freq))
	for tok, count := range freq {
		t := total[tok]
		if t == 0 {
			out[tok] = count
			continue
		}
		ratio := float64(capitalized[tok]) / float64(t)
		if ratio > opts.ProperNounCapitalizationThreshold && capitalized[tok] > opts.MinProperNounOccurrences {
			continue
		}
		out[tok] = count
	}
	return out
}

func isCapitalized(word string) bool {
	for _, r := range word {
		return unicode.IsUpper(r)
	}
	return false
}

// compoundTermFilter counts adjacent bigrams and returns the set of tokens
// that participate in a sufficiently frequent bigram. Those tokens still
// survive individually; they are only excluded from pairing with their
// bigram partner during the pairwise stage.
func compoundTermFilter(articles []Article, freq map[string]int, opts Options) map[string]map[string]struct{} {
	flagged := make(map[string]map[string]struct{})
	if !opts.ExcludeCompoundTerms {
		return flagged
	}

	bigramCounts := make(map[[2]string]int)
	for _, a := range articles {
		var text string
		if opts.UseTitles {
			text += " " + a.Title
		}
		if opts.UseContent {
			text += " " + a.Content
		}
		tokens := tokenize.Tokenize(text)
		for i := 0; i+1 < len(tokens); i++ {
			a, b := tokens[i], tokens[i+1]
			if _, ok := freq[a]; !ok {
				continue
			}
			if _, ok := freq[b]; !ok {
				continue
			}
			bigramCounts[[2]string{a, b}]++
		}
	}

	for pair, count := range bigramCounts {
		if count < opts.MinCompoundOccurrences {
			continue
		}
		a, b := pair[0], pair[1]
		if flagged[a] == nil {
			flagged[a] = make(map[string]struct{})
		}
		if flagged[b] == nil {
			flagged[b] = make(map[string]struct{})
		}
		flagged[a][b] = struct{}{}
		flagged[b][a] = struct{}{}
	}
	return flagged
}

// buildInvertedIndex maps each surviving token to the set of article
// indices it appears in.
func buildInvertedIndex(articles []Article, freq map[string]int, opts Options) map[string]map[int]struct{} {
	index := make(map[string]map[int]struct{})
	for i, a := range articles {
		var text string
		if opts.UseTitles {
			text += " " + a.Title
		}
		if opts.UseContent {
			text += " " + a.Content
		}
		for _, tok := range tokenize.Tokenize(text) {
			if _, ok := freq[tok]; !ok {
				continue
			}
			if index[tok] == nil {
				index[tok] = make(map[int]struct{})
			}
			index[tok][i] = struct{}{}
		}
	}
	return index
}

// pairwiseSimilarity computes Jaccard/cosine similarity for every unordered
// token pair whose postings both meet min_co_occurrence, partitioning the
// outer loop across opts.Concurrency workers when it's greater than 1.
func pairwiseSimilarity(ctx context.Context, index map[string]map[int]struct{}, compoundFlagged map[string]map[string]struct{}, opts Options) ([]similarityPair, error) {
	words := make([]string, 0, len(index))
	for w := range index {
		words = append(words, w)
	}
	sort.Strings(words)

	var mu sync.Mutex
	var results []similarityPair

	total := len(words)
	reported := make(map[int]struct{})

	processWord := func(i int) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		w1 := words[i]
		p1 := index[w1]
		if len(p1) < opts.MinCoOccurrence {
			return nil
		}

		var local []similarityPair
		for j := i + 1; j < total; j++ {
			w2 := words[j]
			if _, compound := compoundFlagged[w1][w2]; compound {
				continue
			}
			p2 := index[w2]
			if len(p2) < opts.MinCoOccurrence {
				continue
			}

			inter := intersectSize(p1, p2)
			if inter < opts.MinCoOccurrence {
				continue
			}
			union := len(p1) + len(p2) - inter
			jaccard := float64(inter) / float64(union)
			if jaccard < opts.MinSimilarity {
				continue
			}
			cosine := float64(inter) / math.Sqrt(float64(len(p1))*float64(len(p2)))

			local = append(local, similarityPair{w1: w1, w2: w2, jaccard: jaccard, cosine: cosine, coOccurrence: inter})
		}

		if len(local) > 0 {
			mu.Lock()
			results = append(results, local...)
			mu.Unlock()
		}

		progressTick := total / 20
		if progressTick > 0 && i%progressTick == 0 {
			mu.Lock()
			if _, done := reported[i]; !done {
				reported[i] = struct{}{}
				opts.Logger.Infow("mining pairwise progress",
					"processed", humanize.Comma(int64(i)),
					"total", humanize.Comma(int64(total)))
			}
			mu.Unlock()
		}
		return nil
	}

	if opts.Concurrency <= 1 {
		for i := range words {
			if err := processWord(i); err != nil {
				return nil, err
			}
		}
		return results, nil
	}

	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(opts.Concurrency)
	for i := range words {
		i := i
		group.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			return processWord(i)
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func intersectSize(a, b map[int]struct{}) int {
	if len(a) > len(b) {
		a, b = b, a
	}
	count := 0
	for k := range a {
		if _, ok := b[k]; ok {
			count++
		}
	}
	return count
}

// collapseMorphologicalDuplicates splits pairs into ones that survive as a
// reported similarity edge and ones whose edit-distance-based similarity
// exceeds the configured threshold — those are near-duplicate spellings
// that must still land in the same synonym group, so their endpoints are
// returned separately for union-find merging rather than being kept as a
// distinct similarity pair.
func collapseMorphologicalDuplicates(pairs []similarityPair, opts Options) ([]similarityPair, [][2]string) {
	out := make([]similarityPair, 0, len(pairs))
	var duplicates [][2]string
	for _, p := range pairs {
		if morphologicalSimilarity(p.w1, p.w2) > opts.MorphologicalSimilarityThreshold {
			duplicates = append(duplicates, [2]string{p.w1, p.w2})
			continue
		}
		out = append(out, p)
	}
	return out, duplicates
}

// morphologicalSimilarity is a normalized edit-distance similarity in
// [0,1]: 1 - distance / max(len(a), len(b)).
func morphologicalSimilarity(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	maxLen := len(ra)
	if len(rb) > maxLen {
		maxLen = len(rb)
	}
	if maxLen == 0 {
		return 1.0
	}
	dist := matchr.Levenshtein(a, b)
	return 1.0 - float64(dist)/float64(maxLen)
}

// capPerWord retains, for each word, only its top MaxSynonymsPerWord
// partners ranked by Jaccard descending.
func capPerWord(pairs []similarityPair, opts Options) []similarityPair {
	byWord := make(map[string][]similarityPair)
	for _, p := range pairs {
		byWord[p.w1] = append(byWord[p.w1], p)
		byWord[p.w2] = append(byWord[p.w2], similarityPair{w1: p.w2, w2: p.w1, jaccard: p.jaccard, cosine: p.cosine, coOccurrence: p.coOccurrence})
	}

	kept := make(map[[2]string]similarityPair)
	for _, partners := range byWord {
		sort.Slice(partners, func(i, j int) bool { return partners[i].jaccard > partners[j].jaccard })
		if len(partners) > opts.MaxSynonymsPerWord {
			partners = partners[:opts.MaxSynonymsPerWord]
		}
		for _, p := range partners {
			key := pairKey(p.w1, p.w2)
			if existing, ok := kept[key]; !ok || p.jaccard > existing.jaccard {
				kept[key] = p
			}
		}
	}

	out := make([]similarityPair, 0, len(kept))
	for _, p := range kept {
		out = append(out, p)
	}
	return out
}

func pairKey(a, b string) [2]string {
	if a > b {
		a, b = b, a
	}
	return [2]string{a, b}
}

// groupPairs runs union-find across the surviving pairs plus any
// morphological-duplicate edges and returns each component as a symmetric
// adjacency set. Duplicate edges merge their endpoints into the same group
// without becoming a reported similarity pair.
func groupPairs(pairs []similarityPair, duplicates [][2]string) []map[string]struct{} {
	uf := newUnionFind()
	for _, p := range pairs {
		uf.union(p.w1, p.w2)
	}
	for _, d := range duplicates {
		uf.union(d[0], d[1])
	}

	byRoot := make(map[string]map[string]struct{})
	for member := range uf.parent {
		root := uf.find(member)
		if byRoot[root] == nil {
			byRoot[root] = make(map[string]struct{})
		}
		byRoot[root][member] = struct{}{}
	}

	groups := make([]map[string]struct{}, 0, len(byRoot))
	for _, members := range byRoot {
		if len(members) >= 2 {
			groups = append(groups, members)
		}
	}
	return groups
}

func computeStatistics(pairs []similarityPair, totalWords, articlesAnalyzed int) Statistics {
	stats := Statistics{TotalWords: totalWords, TotalPairs: len(pairs), ArticlesAnalyzed: articlesAnalyzed}
	if len(pairs) == 0 {
		return stats
	}

	stats.MinSimilarity = pairs[0].jaccard
	stats.MaxSimilarity = pairs[0].jaccard
	sum := 0.0
	for _, p := range pairs {
		if p.jaccard < stats.MinSimilarity {
			stats.MinSimilarity = p.jaccard
		}
		if p.jaccard > stats.MaxSimilarity {
			stats.MaxSimilarity = p.jaccard
		}
		sum += p.jaccard
	}
	stats.AvgSimilarity = sum / float64(len(pairs))
	return stats
}

// unionFind is a standard disjoint-set structure over string keys, used to
// collapse pairwise similarity edges into synonym groups.
type unionFind struct {
	parent map[string]string
}

func newUnionFind() *unionFind {
	return &unionFind{parent: make(map[string]string)}
}

func (u *unionFind) find(x string) string {
	if _, ok := u.parent[x]; !ok {
		u.parent[x] = x
		return x
	}
	if u.parent[x] != x {
		u.parent[x] = u.find(u.parent[x])
	}
	return u.parent[x]
}

func (u *unionFind) union(a, b string) {
	ra, rb := u.find(a), u.find(b)
	if ra == rb {
		return
	}
	// Deterministic tie-break keeps grouping reproducible across runs.
	if ra < rb {
		u.parent[rb] = ra
	} else {
		u.parent[ra] = rb
	}
}
