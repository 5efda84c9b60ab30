// Package config provides configuration loading and structs for predvec.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug   bool          `yaml:"debug"`
	Index   IndexConfig   `yaml:"index"`
	Model   ModelConfig   `yaml:"model"`
	Output  OutputConfig  `yaml:"output"`
	Storage StorageConfig `yaml:"storage"`
	Watch   WatchConfig   `yaml:"watch"`
}

// IndexConfig holds the triple index location and term filter resources.
type IndexConfig struct {
	// Path to the bleve triple index. Required for build; created on
	// first ingest when absent.
	Path          string `yaml:"path"`
	StopwordsPath string `yaml:"stopwords_path"`
}

// ModelConfig holds vector model and vocabulary filter settings.
type ModelConfig struct {
	Dimensions int    `yaml:"dimensions"`
	VectorType string `yaml:"vector_type"`
	// MinFrequency and MaxFrequency bound concept-term document
	// frequency. Zero disables the bound. Predicates are never
	// frequency-filtered.
	MinFrequency int `yaml:"min_frequency"`
	MaxFrequency int `yaml:"max_frequency"`
	// MaxNonAlphaChars caps non-alphabetic characters per term.
	// nil disables the check; 0 means letters only.
	MaxNonAlphaChars *int `yaml:"max_non_alpha_chars"`
	MinTermLength    int  `yaml:"min_term_length"`
	// Seed makes elemental vector assignment reproducible across runs.
	// Zero means a fresh random state per run.
	Seed uint64 `yaml:"seed"`
}

// OutputConfig holds the vector store output locations.
type OutputConfig struct {
	Directory     string `yaml:"directory"`
	ElementalFile string `yaml:"elemental_file"`
	SemanticFile  string `yaml:"semantic_file"`
	PredicateFile string `yaml:"predicate_file"`
}

// ElementalPath returns the full path of the elemental concept vector store.
func (o *OutputConfig) ElementalPath() string { return filepath.Join(o.Directory, o.ElementalFile) }

// SemanticPath returns the full path of the semantic concept vector store.
func (o *OutputConfig) SemanticPath() string { return filepath.Join(o.Directory, o.SemanticFile) }

// PredicatePath returns the full path of the predicate vector store.
func (o *OutputConfig) PredicatePath() string { return filepath.Join(o.Directory, o.PredicateFile) }

// StorageConfig holds the predication database location.
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// WatchConfig holds triples directory watch settings.
type WatchConfig struct {
	Directories []string `yaml:"directories"`
	Extensions  []string `yaml:"extensions"`
	Recursive   *bool    `yaml:"recursive"`
}

// RecursiveOrDefault returns whether to watch recursively; defaults to true when unset.
func (w *WatchConfig) RecursiveOrDefault() bool {
	if w.Recursive != nil {
		return *w.Recursive
	}
	return true
}

// Load reads and parses the config file at path, expands paths, and applies defaults.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.Index.Path = expandPath(cfg.Index.Path, configDir)
	cfg.Index.StopwordsPath = expandPath(cfg.Index.StopwordsPath, configDir)
	cfg.Output.Directory = expandPath(cfg.Output.Directory, configDir)
	cfg.Storage.DatabasePath = expandPath(cfg.Storage.DatabasePath, configDir)
	for i := range cfg.Watch.Directories {
		cfg.Watch.Directories[i] = expandPath(cfg.Watch.Directories[i], configDir)
	}

	return &cfg, nil
}

// Save writes the config to path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// expandPath converts a path to absolute. Empty paths stay empty. Paths starting
// with "./" are relative to configDir; other relative paths are relative to the
// home directory.
func expandPath(path string, configDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
