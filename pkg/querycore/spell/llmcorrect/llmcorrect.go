// Package llmcorrect implements the optional model-backed spell corrector:
// an Ollama-compatible HTTP client that asks a small local model to correct
// a query, plugged into the composite pipeline at the highest priority
// tier. Construction never fails outright — when the model is unreachable
// the corrector reports itself disabled, and a disabled corrector's
// TryCorrect returns an unsuccessful no-change result that the composite
// pipeline skips.
package llmcorrect

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/newsgraph/querycore/internal/normalize"
	"github.com/newsgraph/querycore/pkg/querycore/spell/stage"
)

// Priority is this corrector's position in the composite pipeline
// (model-based tier, per spec.md §6 suggested range 10+).
const Priority = 10

const (
	defaultBaseURL = "http://localhost:11434"
	defaultModel   = "llama3.2"
	probeTimeout   = 5 * time.Second
	requestTimeout = 15 * time.Second
)

// Config configures the Ollama-compatible corrector. BaseURL and Model fall
// back to the OLLAMA_BASE_URL / OLLAMA_MODEL environment variables, then to
// package defaults.
type Config struct {
	BaseURL string
	Model   string
	Logger  *zap.SugaredLogger
}

func (c Config) resolve() Config {
	if c.BaseURL == "" {
		c.BaseURL = os.Getenv("OLLAMA_BASE_URL")
	}
	if c.BaseURL == "" {
		c.BaseURL = defaultBaseURL
	}
	if c.Model == "" {
		c.Model = os.Getenv("OLLAMA_MODEL")
	}
	if c.Model == "" {
		c.Model = defaultModel
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop().Sugar()
	}
	return c
}

// Corrector calls an Ollama-compatible /api/generate endpoint to correct a
// query. It is safe for concurrent use.
type Corrector struct {
	cfg     Config
	http    *http.Client
	enabled bool

	mu    sync.Mutex
	cache map[string]string
}

// New constructs a Corrector and probes reachability with a lightweight GET
// against {BaseURL}/api/tags. If the probe fails, the returned Corrector's
// Enabled method reports false and err is non-nil (wrapping
// qcerr.ErrModelUnavailable at the caller's discretion) — construction
// itself always succeeds so callers can unconditionally hold a *Corrector.
func New(ctx context.Context, cfg Config) (*Corrector, error) {
	cfg = cfg.resolve()
	c := &Corrector{
		cfg:   cfg,
		http:  &http.Client{Timeout: requestTimeout},
		cache: make(map[string]string),
	}

	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(probeCtx, http.MethodGet, cfg.BaseURL+"/api/tags", nil)
	if err != nil {
		return c, fmt.Errorf("llmcorrect: build probe request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		cfg.Logger.Warnw("llm corrector unreachable, disabling", "base_url", cfg.BaseURL, "error", err)
		return c, fmt.Errorf("llmcorrect: probe %s: %w", cfg.BaseURL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		cfg.Logger.Warnw("llm corrector probe returned non-2xx, disabling", "status", resp.StatusCode)
		return c, fmt.Errorf("llmcorrect: probe %s returned status %d", cfg.BaseURL, resp.StatusCode)
	}

	c.enabled = true
	return c, nil
}

// Enabled reports whether the reachability probe succeeded at construction
// time.
func (c *Corrector) Enabled() bool { return c.enabled }

func (c *Corrector) Priority() int { return Priority }
func (c *Corrector) Name() string  { return "LLM" }

type generateOptions struct {
	Temperature   float64 `json:"temperature"`
	TopP          float64 `json:"top_p"`
	MaxTokens     int     `json:"max_tokens"`
	RepeatPenalty float64 `json:"repeat_penalty"`
}

type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	Stream  bool            `json:"stream"`
	Options generateOptions `json:"options"`
}

type generateResponse struct {
	Response string `json:"response"`
}

const promptTemplate = "Correct any spelling mistakes in the following Russian search query. " +
	"Respond with only the corrected query and nothing else.\n\nQuery: %s"

// TryCorrect sends query to the model and returns its (trimmed,
// quote-stripped, first-line) response. An empty model response falls back
// to the original query. Results are cached by lowercased-trimmed query.
func (c *Corrector) TryCorrect(ctx context.Context, query string) (stage.StageResult, error) {
	if !c.enabled {
		return stage.StageResult{Original: query, Corrected: query, Success: false, Source: c.Name(), Message: "model unavailable"}, nil
	}

	key := strings.ToLower(strings.TrimSpace(query))
	if key == "" {
		return stage.StageResult{Original: query, Corrected: query, Success: true, Source: c.Name()}, nil
	}

	c.mu.Lock()
	if cached, ok := c.cache[key]; ok {
		c.mu.Unlock()
		return stage.StageResult{
			Original:      query,
			Corrected:     cached,
			HasCorrection: cached != normalize.Normalize(query),
			Success:       true,
			Source:        c.Name(),
		}, nil
	}
	c.mu.Unlock()

	requestID := uuid.NewString()
	logger := c.cfg.Logger.With("request_id", requestID)

	reqBody := generateRequest{
		Model:  c.cfg.Model,
		Prompt: fmt.Sprintf(promptTemplate, query),
		Stream: false,
		Options: generateOptions{
			Temperature:   0.1,
			TopP:          0.9,
			MaxTokens:     64,
			RepeatPenalty: 1.05,
		},
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return stage.StageResult{}, fmt.Errorf("llmcorrect: encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/api/generate", bytes.NewReader(payload))
	if err != nil {
		return stage.StageResult{}, fmt.Errorf("llmcorrect: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		logger.Warnw("llm corrector request failed", "error", err)
		return stage.StageResult{Original: query, Corrected: query, Success: false, Source: c.Name(), Message: err.Error()}, err
	}
	defer resp.Body.Close()

	var decoded generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		logger.Warnw("llm corrector response decode failed", "error", err)
		return stage.StageResult{Original: query, Corrected: query, Success: false, Source: c.Name(), Message: err.Error()}, err
	}

	corrected := cleanResponse(decoded.Response)
	if corrected == "" {
		corrected = query
	}

	c.mu.Lock()
	c.cache[key] = corrected
	c.mu.Unlock()

	return stage.StageResult{
		Original:      query,
		Corrected:     corrected,
		HasCorrection: corrected != normalize.Normalize(query),
		Success:       true,
		Source:        c.Name(),
	}, nil
}

// cleanResponse trims whitespace, takes the first line, and strips
// surrounding quotes from a model response.
func cleanResponse(s string) string {
	s = strings.TrimSpace(s)
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		s = s[:idx]
	}
	s = strings.TrimSpace(s)
	s = strings.Trim(s, `"'`)
	return strings.TrimSpace(s)
}
