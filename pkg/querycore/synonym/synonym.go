// Package synonym implements the confidence-gated, normalized bidirectional
// synonym graph: loading and saving the persisted dictionary, per-token
// confidence gating, query expansion, user-supplied groups, connected-
// component extraction, and index-rule emission.
package synonym

import (
	"os"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/newsgraph/querycore/internal/normalize"
	"github.com/newsgraph/querycore/pkg/querycore/persist"
)

// DefaultMinConfidence is the provider's default confidence gate.
const DefaultMinConfidence = 0.0

// Provider holds the in-memory synonym graph G_syn: an adjacency map over
// normalized tokens, plus a per-token confidence map. It is safe for
// concurrent use.
type Provider struct {
	logger *zap.SugaredLogger

	mu            sync.RWMutex
	adjacency     map[string]map[string]struct{}
	confidence    map[string]float64
	minConfidence float64
}

// New returns an empty Provider.
func New(logger *zap.SugaredLogger) *Provider {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Provider{
		logger:        logger,
		adjacency:     make(map[string]map[string]struct{}),
		confidence:    make(map[string]float64),
		minConfidence: DefaultMinConfidence,
	}
}

// Load reads a persisted dictionary from path. A missing file initializes
// an empty provider and logs a warning rather than failing.
func (p *Provider) Load(path string) error {
	if _, statErr := os.Stat(path); os.IsNotExist(statErr) {
		p.logger.Warnw("synonym dictionary not found, starting empty", "path", path)
	}
	doc, err := persist.Load(path)
	if err != nil {
		p.logger.Warnw("failed to load synonym dictionary, starting empty", "path", path, "error", err)
		return nil
	}
	p.LoadFromData(doc.Synonyms, doc.ConfidenceScores)
	return nil
}

// LoadFromData replaces the provider's graph and confidence map with data
// read from a raw token→[]token adjacency map and an optional confidence
// map. Keys and values are normalized, self-synonyms are dropped, and
// confidences are clamped to [0,1].
func (p *Provider) LoadFromData(synonyms map[string][]string, confidence map[string]float64) {
	adjacency := make(map[string]map[string]struct{})
	addEdge := func(a, b string) {
		if a == "" || b == "" || a == b {
			return
		}
		if adjacency[a] == nil {
			adjacency[a] = make(map[string]struct{})
		}
		adjacency[a][b] = struct{}{}
	}

	for rawKey, rawValues := range synonyms {
		key := normalize.Normalize(rawKey)
		if key == "" {
			continue
		}
		if _, ok := adjacency[key]; !ok {
			adjacency[key] = make(map[string]struct{})
		}
		for _, rawValue := range rawValues {
			value := normalize.Normalize(rawValue)
			addEdge(key, value)
			addEdge(value, key)
		}
	}

	clamped := make(map[string]float64, len(confidence))
	for rawToken, score := range confidence {
		token := normalize.Normalize(rawToken)
		if token == "" {
			continue
		}
		clamped[token] = clamp01(score)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.adjacency = adjacency
	p.confidence = clamped
}

// Save serializes the current graph and confidence map to path.
func (p *Provider) Save(path string) error {
	p.mu.RLock()
	doc := &persist.Document{
		Synonyms:         p.snapshotSynonyms(),
		TotalGroups:      len(p.groupsLocked(0)),
		ConfidenceScores: cloneFloatMap(p.confidence),
	}
	p.mu.RUnlock()

	return persist.Save(doc, path)
}

func (p *Provider) snapshotSynonyms() map[string][]string {
	out := make(map[string][]string, len(p.adjacency))
	for token, neighbors := range p.adjacency {
		list := make([]string, 0, len(neighbors))
		for n := range neighbors {
			list = append(list, n)
		}
		sort.Strings(list)
		out[token] = list
	}
	return out
}

// confidenceOf returns the token's confidence, treating an absent entry as
// passing (1.0), per spec.
func (p *Provider) confidenceOf(token string) float64 {
	if v, ok := p.confidence[token]; ok {
		return v
	}
	return 1.0
}

func (p *Provider) passesGate(token string, minConf float64) bool {
	return p.confidenceOf(token) >= minConf
}

// resolveMinConf applies the "optional threshold" convention used across
// the provider's public operations: a negative value means "use the
// provider's configured default."
func (p *Provider) resolveMinConf(minConf float64) float64 {
	if minConf < 0 {
		return p.minConfidence
	}
	return clamp01(minConf)
}

// GetSynonyms returns the normalized synonyms of word whose confidence, and
// whose own confidence, both meet minConf (pass -1 to use the provider's
// configured default). An unknown word yields an empty set. The result
// never contains word itself.
func (p *Provider) GetSynonyms(word string, minConf float64) map[string]struct{} {
	p.mu.RLock()
	defer p.mu.RUnlock()

	threshold := p.resolveMinConf(minConf)
	token := normalize.Normalize(word)
	out := make(map[string]struct{})

	if !p.passesGate(token, threshold) {
		return out
	}
	for neighbor := range p.adjacency[token] {
		if neighbor == token {
			continue
		}
		if p.passesGate(neighbor, threshold) {
			out[neighbor] = struct{}{}
		}
	}
	return out
}

// HasSynonyms reports whether word has at least one synonym passing the
// confidence gate.
func (p *Provider) HasSynonyms(word string, minConf float64) bool {
	return len(p.GetSynonyms(word, minConf)) > 0
}

// sortedSynonyms returns word's gated synonyms ordered by descending
// confidence, then lexicographically — the same set GetSynonyms returns,
// but in a deterministic order so callers that need reproducible output
// (ExpandQuery) don't depend on map iteration order.
func (p *Provider) sortedSynonyms(word string, minConf float64) []string {
	set := p.GetSynonyms(word, minConf)
	out := make([]string, 0, len(set))
	for syn := range set {
		out = append(out, syn)
	}

	p.mu.RLock()
	confidence := p.confidence
	p.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		ci, cj := confidenceOrDefault(confidence, out[i]), confidenceOrDefault(confidence, out[j])
		if ci != cj {
			return ci > cj
		}
		return out[i] < out[j]
	})
	return out
}

func confidenceOrDefault(confidence map[string]float64, token string) float64 {
	if v, ok := confidence[token]; ok {
		return v
	}
	return 1.0
}

// ExpandQuery tokenizes query on ASCII whitespace/tab, normalizes each
// token, and returns the union of the original tokens and their
// threshold-gated synonyms, joined by single spaces. Iteration order is
// insertion order: original tokens first (in query order), then each
// token's synonyms ordered by descending confidence, then lexicographically,
// so repeated calls on the same input always produce the same output.
func (p *Provider) ExpandQuery(query string, minConf float64) string {
	fields := strings.FieldsFunc(query, func(r rune) bool {
		return r == ' ' || r == '\t'
	})

	seen := make(map[string]struct{})
	var ordered []string
	add := func(tok string) {
		if tok == "" {
			return
		}
		if _, ok := seen[tok]; ok {
			return
		}
		seen[tok] = struct{}{}
		ordered = append(ordered, tok)
	}

	for _, f := range fields {
		add(normalize.Normalize(f))
	}
	// Snapshot before expanding so synonyms of synonyms added mid-loop
	// don't get expanded again within the same call.
	base := append([]string(nil), ordered...)
	for _, tok := range base {
		for _, syn := range p.sortedSynonyms(tok, minConf) {
			add(syn)
		}
	}

	return strings.Join(ordered, " ")
}

// AddGroup normalizes words, requires at least two distinct survivors, and
// adds all pairwise edges between them. Because a user-supplied group has
// no mining-derived confidence, affected tokens' confidence is reset to
// "unscored" (treated as passing, per the absent-confidence convention).
func (p *Provider) AddGroup(words ...string) {
	seen := make(map[string]struct{})
	var survivors []string
	for _, w := range words {
		n := normalize.Normalize(w)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		survivors = append(survivors, n)
	}
	if len(survivors) < 2 {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	for _, a := range survivors {
		if p.adjacency[a] == nil {
			p.adjacency[a] = make(map[string]struct{})
		}
		delete(p.confidence, a)
		for _, b := range survivors {
			if a == b {
				continue
			}
			p.adjacency[a][b] = struct{}{}
		}
	}
}

// Groups returns the connected components of G_syn restricted to nodes
// passing the confidence gate, computed by breadth-first traversal. Pass -1
// to use the provider's configured default threshold.
func (p *Provider) Groups(minConf float64) []map[string]struct{} {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.groupsLocked(p.resolveMinConf(minConf))
}

func (p *Provider) groupsLocked(threshold float64) []map[string]struct{} {
	visited := make(map[string]struct{})
	var components []map[string]struct{}

	nodes := make([]string, 0, len(p.adjacency))
	for token := range p.adjacency {
		nodes = append(nodes, token)
	}
	sort.Strings(nodes)

	for _, start := range nodes {
		if _, done := visited[start]; done {
			continue
		}
		if !p.passesGate(start, threshold) {
			continue
		}

		component := make(map[string]struct{})
		queue := []string{start}
		visited[start] = struct{}{}
		for len(queue) > 0 {
			node := queue[0]
			queue = queue[1:]
			component[node] = struct{}{}
			for neighbor := range p.adjacency[node] {
				if _, done := visited[neighbor]; done {
					continue
				}
				if !p.passesGate(neighbor, threshold) {
					continue
				}
				visited[neighbor] = struct{}{}
				queue = append(queue, neighbor)
			}
		}
		if len(component) > 0 {
			components = append(components, component)
		}
	}
	return components
}

// BuildIndexRules emits one "a, b, c, ..." rule per component of size ≥ 2,
// tokens deduplicated case-insensitively and sorted lexicographically.
// Components with identical signatures are emitted once.
func (p *Provider) BuildIndexRules(minConf float64) []string {
	components := p.Groups(minConf)

	seenSignature := make(map[string]struct{})
	var rules []string
	for _, component := range components {
		if len(component) < 2 {
			continue
		}
		members := make([]string, 0, len(component))
		for m := range component {
			members = append(members, m)
		}
		sort.Strings(members)
		signature := strings.Join(members, "\x00")
		if _, ok := seenSignature[signature]; ok {
			continue
		}
		seenSignature[signature] = struct{}{}
		rules = append(rules, strings.Join(members, ", "))
	}
	sort.Strings(rules)
	return rules
}

// SetMinConfidence clamps v to [0,1] and sets it as the provider's default
// confidence threshold.
func (p *Provider) SetMinConfidence(v float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.minConfidence = clamp01(v)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func cloneFloatMap(m map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
