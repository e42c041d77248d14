package config

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/newsgraph/querycore/pkg/querycore/indexclient"
	"github.com/newsgraph/querycore/pkg/querycore/persist"
	"github.com/newsgraph/querycore/pkg/querycore/spell"
	"github.com/newsgraph/querycore/pkg/querycore/spell/editdist"
	"github.com/newsgraph/querycore/pkg/querycore/spell/keyboard"
	"github.com/newsgraph/querycore/pkg/querycore/spell/llmcorrect"
	"github.com/newsgraph/querycore/pkg/querycore/spell/phonetic"
	"github.com/newsgraph/querycore/pkg/querycore/spell/querylog"
	"github.com/newsgraph/querycore/pkg/querycore/spell/stage"
	"github.com/newsgraph/querycore/pkg/querycore/synonym"
)

// Loader assembles a Components bundle from a set of configuration file
// paths. Any path left empty is skipped and the corresponding component
// falls back to an empty default, so partial configuration is always
// usable. IndexClient, if set, seeds the query-log corrector's history
// window when no local history database is configured; callers that don't
// have a real index yet can leave it nil or pass indexclient.NewMemory().
type Loader struct {
	Paths       Paths
	Spell       Spell
	Synonyms    Synonyms
	Logger      *zap.SugaredLogger
	IndexClient indexclient.Client
}

// Components holds the fully assembled runtime objects a Loader produces.
// History is non-nil only when Paths.HistoryDBPath is configured; callers
// that receive a non-nil History are responsible for closing it.
type Components struct {
	Composite   *spell.Composite
	Synonyms    *synonym.Provider
	History     *persist.HistoryStore
	IndexClient indexclient.Client
}

// Load reads the configured dictionary, phonetic, synonym data and synonym
// seed files and the history database, probes for the optional model-backed
// corrector, and wires the composite corrector and synonym provider
// together. Paths.StoplistPath is not read by Load.
func (l *Loader) Load(ctx context.Context) (*Components, error) {
	logger := l.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	edCorrector, err := l.buildEditDistance()
	if err != nil {
		return nil, fmt.Errorf("config: build edit-distance corrector: %w", err)
	}

	kbCorrector := keyboard.New(edCorrector)

	phCorrector, err := l.buildPhonetic()
	if err != nil {
		return nil, fmt.Errorf("config: build phonetic corrector: %w", err)
	}

	correctors := []stage.Corrector{edCorrector, kbCorrector, phCorrector}

	history, qlCorrector, err := l.buildQueryLog(ctx, logger)
	if err != nil {
		return nil, fmt.Errorf("config: build query-log corrector: %w", err)
	}
	if qlCorrector != nil {
		correctors = append(correctors, qlCorrector)
	}

	if l.Spell.LLMEnabled {
		llmCfg := llmcorrect.Config{BaseURL: l.Spell.LLMBaseURL, Model: l.Spell.LLMModel, Logger: logger}
		llmCorrector, err := llmcorrect.New(ctx, llmCfg)
		if err != nil {
			logger.Warnw("llm corrector unavailable, continuing without it", "error", err)
		}
		// llmCorrector is never nil: a failed probe only disables it, and a
		// disabled corrector's TryCorrect is already a safe no-op.
		correctors = append(correctors, llmCorrector)
	}

	ttl := spell.DefaultCacheTTL
	if l.Spell.CacheTTL != "" {
		parsed, err := time.ParseDuration(l.Spell.CacheTTL)
		if err != nil {
			return nil, fmt.Errorf("config: parse cache_ttl: %w", err)
		}
		ttl = parsed
	}
	composite := spell.New(correctors,
		spell.WithLogger(logger),
		spell.WithCacheLimits(l.Spell.MaxCacheSize, ttl))

	provider := synonym.New(logger)
	if err := l.buildSynonyms(provider); err != nil {
		return nil, fmt.Errorf("config: build synonym provider: %w", err)
	}
	if l.Synonyms.MinConfidence > 0 {
		provider.SetMinConfidence(l.Synonyms.MinConfidence)
	}

	return &Components{
		Composite:   composite,
		Synonyms:    provider,
		History:     history,
		IndexClient: l.IndexClient,
	}, nil
}

// buildQueryLog opens the history store (preferring Paths.HistoryDBPath,
// then falling back to l.IndexClient) and, when history is available,
// returns a querylog.Corrector seeded from it. Both return values are nil
// when no history source is configured at all.
func (l *Loader) buildQueryLog(ctx context.Context, logger *zap.SugaredLogger) (*persist.HistoryStore, *querylog.Corrector, error) {
	var (
		history *persist.HistoryStore
		entries []querylog.LoggedQuery
		err     error
	)

	switch {
	case l.Paths.HistoryDBPath != "":
		history, err = persist.OpenHistory(ctx, l.Paths.HistoryDBPath)
		if err != nil {
			return nil, nil, err
		}
		entries, err = history.Recent(ctx, querylog.DefaultLookback)
		if err != nil {
			history.Close()
			return nil, nil, err
		}
	case l.IndexClient != nil:
		entries, err = l.IndexClient.QueryLog(ctx)
		if err != nil {
			logger.Warnw("failed to fetch query log from index client, starting empty", "error", err)
			entries = nil
		}
	default:
		return nil, nil, nil
	}

	return history, querylog.New(entries, l.Spell.MinOverlap, l.Spell.Lookback), nil
}

func (l *Loader) buildEditDistance() (*editdist.Corrector, error) {
	if l.Paths.DictionaryPath == "" {
		return editdist.New(nil, nil, l.Spell.MaxDistance), nil
	}
	dict, err := LoadDictionary(l.Paths.DictionaryPath)
	if err != nil {
		return nil, err
	}
	return editdist.New(dict.ValidWords, dict.Misspellings, l.Spell.MaxDistance), nil
}

func (l *Loader) buildPhonetic() (*phonetic.Corrector, error) {
	if l.Paths.PhoneticPath == "" {
		return phonetic.New(nil), nil
	}
	ph, err := LoadPhonetic(l.Paths.PhoneticPath)
	if err != nil {
		return nil, err
	}
	return phonetic.New(ph.Vocabulary), nil
}

func (l *Loader) buildSynonyms(provider *synonym.Provider) error {
	if l.Paths.SynonymDataPath != "" {
		if err := provider.Load(l.Paths.SynonymDataPath); err != nil {
			return err
		}
	}
	if l.Paths.SynonymSeedPath != "" {
		seed, err := LoadSynonymSeed(l.Paths.SynonymSeedPath)
		if err != nil {
			return err
		}
		for _, group := range seed.Groups {
			provider.AddGroup(group...)
		}
	}
	return nil
}
