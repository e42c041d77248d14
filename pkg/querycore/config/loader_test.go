package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/newsgraph/querycore/pkg/querycore/indexclient"
	"github.com/newsgraph/querycore/pkg/querycore/persist"
)

func TestLoader_BuildsComponentsFromPartialConfig(t *testing.T) {
	dir := t.TempDir()
	dictPath := filepath.Join(dir, "dict.yaml")
	if err := os.WriteFile(dictPath, []byte("valid_words:\n  - москва\nmisspellings:\n  масква: москва\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	loader := &Loader{Paths: Paths{DictionaryPath: dictPath}}
	comps, err := loader.Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if comps.Composite == nil || comps.Synonyms == nil {
		t.Fatal("expected both components to be built")
	}

	result := comps.Composite.TryCorrect(context.Background(), "масква")
	if result.Corrected != "москва" {
		t.Errorf("got %+v", result)
	}
}

func TestLoader_EmptyPathsStillBuildsUsableComponents(t *testing.T) {
	loader := &Loader{}
	comps, err := loader.Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	result := comps.Composite.TryCorrect(context.Background(), "путин")
	if result.Corrected != "путин" {
		t.Errorf("got %+v", result)
	}
	if comps.History != nil {
		t.Error("expected no history store when history_db_path is unset")
	}
}

func TestLoader_WiresQueryLogFromHistoryDB(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "history.db")

	seed, err := persist.OpenHistory(context.Background(), dbPath)
	if err != nil {
		t.Fatal(err)
	}
	if err := seed.Record(context.Background(), "путин москва сегодня", 50); err != nil {
		t.Fatal(err)
	}
	if err := seed.Close(); err != nil {
		t.Fatal(err)
	}

	loader := &Loader{Paths: Paths{HistoryDBPath: dbPath}, Spell: Spell{MinOverlap: 0.5}}
	comps, err := loader.Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if comps.History == nil {
		t.Fatal("expected Loader.Load to open the configured history store")
	}
	defer comps.History.Close()

	result := comps.Composite.TryCorrect(context.Background(), "путин москва")
	if result.Corrected != "путин москва сегодня" {
		t.Errorf("expected query-log corrector wired from the history db to fire, got %+v", result)
	}
}

func TestLoader_LLMEnabledButUnreachableDoesNotFailLoad(t *testing.T) {
	loader := &Loader{Spell: Spell{LLMEnabled: true, LLMBaseURL: "http://127.0.0.1:1"}}
	comps, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("expected an unreachable LLM corrector to degrade gracefully, got error: %v", err)
	}

	result := comps.Composite.TryCorrect(context.Background(), "путин")
	if result.Corrected != "путин" {
		t.Errorf("expected pass-through when the LLM corrector is disabled, got %+v", result)
	}
}

func TestLoader_WiresQueryLogFromIndexClient(t *testing.T) {
	client := indexclient.NewMemory()
	client.Record("путин москва сегодня", 50)

	loader := &Loader{IndexClient: client, Spell: Spell{MinOverlap: 0.5}}
	comps, err := loader.Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if comps.History != nil {
		t.Error("expected no history store when only an index client is configured")
	}

	result := comps.Composite.TryCorrect(context.Background(), "путин москва")
	if result.Corrected != "путин москва сегодня" {
		t.Errorf("expected query-log corrector wired from the index client to fire, got %+v", result)
	}
}
