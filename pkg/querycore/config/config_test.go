package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDictionary(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "dict.yaml", `
valid_words:
  - москва
  - путин
misspellings:
  путен: путин
`)

	dict, err := LoadDictionary(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(dict.ValidWords) != 2 {
		t.Errorf("got %+v", dict.ValidWords)
	}
	if dict.Misspellings["путен"] != "путин" {
		t.Errorf("got %+v", dict.Misspellings)
	}
}

func TestLoadStoplist(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "stop.yaml", "terms:\n  - и\n  - в\n")

	sl, err := LoadStoplist(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(sl.Terms) != 2 {
		t.Errorf("got %+v", sl.Terms)
	}
}

func TestLoadSynonymSeed(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "seed.yaml", "groups:\n  - [путин, президент]\n")

	seed, err := LoadSynonymSeed(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(seed.Groups) != 1 || len(seed.Groups[0]) != 2 {
		t.Errorf("got %+v", seed.Groups)
	}
}

func TestLoad_MissingFileReturnsError(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}
