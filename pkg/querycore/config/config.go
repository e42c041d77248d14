// Package config reads the YAML configuration files that assemble a
// composite spell corrector and a synonym provider: stopwords, a valid-word
// dictionary plus known misspellings, a phonetic vocabulary, and a synonym
// seed file. The keyboard-layout mapping is built into the keyboard package
// and is not configurable here.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// StoplistFile is the YAML shape of a stopword list.
type StoplistFile struct {
	Terms []string `yaml:"terms"`
}

// LoadStoplist reads a stopword list from path.
func LoadStoplist(path string) (*StoplistFile, error) {
	var sl StoplistFile
	if err := readYAML(path, &sl); err != nil {
		return nil, err
	}
	return &sl, nil
}

// DictionaryFile is the YAML shape of the edit-distance corrector's
// vocabulary and known misspellings.
type DictionaryFile struct {
	ValidWords   []string          `yaml:"valid_words"`
	Misspellings map[string]string `yaml:"misspellings"`
}

// LoadDictionary reads a dictionary file from path.
func LoadDictionary(path string) (*DictionaryFile, error) {
	var d DictionaryFile
	if err := readYAML(path, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// PhoneticFile is the YAML shape of the phonetic corrector's candidate
// vocabulary.
type PhoneticFile struct {
	Vocabulary []string `yaml:"vocabulary"`
}

// LoadPhonetic reads a phonetic vocabulary file from path.
func LoadPhonetic(path string) (*PhoneticFile, error) {
	var p PhoneticFile
	if err := readYAML(path, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// SynonymSeedFile is the YAML shape of a hand-curated synonym seed list,
// loaded in addition to (or instead of) a mined dictionary.
type SynonymSeedFile struct {
	Groups [][]string `yaml:"groups"`
}

// LoadSynonymSeed reads a synonym seed file from path.
func LoadSynonymSeed(path string) (*SynonymSeedFile, error) {
	var s SynonymSeedFile
	if err := readYAML(path, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Spell groups the composite corrector's knobs.
type Spell struct {
	MaxCacheSize int     `yaml:"max_cache_size"`
	CacheTTL     string  `yaml:"cache_ttl"`
	MaxDistance  int     `yaml:"max_distance"`
	MinOverlap   float64 `yaml:"min_overlap"`
	Lookback     int     `yaml:"lookback"`

	// LLMEnabled opts into probing for and wiring in the model-backed
	// corrector. A failed reachability probe only disables that stage; it
	// never fails Loader.Load.
	LLMEnabled bool   `yaml:"llm_enabled"`
	LLMBaseURL string `yaml:"llm_base_url"`
	LLMModel   string `yaml:"llm_model"`
}

// Synonyms groups the synonym provider's knobs.
type Synonyms struct {
	MinConfidence float64 `yaml:"min_confidence"`
}

// Paths collects every configuration and data file the application loads.
type Paths struct {
	StoplistPath    string `yaml:"stoplist_path"`
	DictionaryPath  string `yaml:"dictionary_path"`
	PhoneticPath    string `yaml:"phonetic_path"`
	SynonymSeedPath string `yaml:"synonym_seed_path"`
	SynonymDataPath string `yaml:"synonym_data_path"`

	// HistoryDBPath, when set, backs the query-log corrector with a
	// persistent SQLite history store instead of an empty in-memory one.
	HistoryDBPath string `yaml:"history_db_path"`
}

// File is the top-level application configuration document.
type File struct {
	Paths    Paths    `yaml:"paths"`
	Spell    Spell    `yaml:"spell"`
	Synonyms Synonyms `yaml:"synonyms"`
}

// Load reads the top-level application configuration from path.
func Load(path string) (*File, error) {
	var f File
	if err := readYAML(path, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

func readYAML(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("config: decode %s: %w", path, err)
	}
	return nil
}
