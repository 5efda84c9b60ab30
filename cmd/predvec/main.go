// Package main is the predvec CLI entry point.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vsalab/predvec/internal/config"
	"github.com/vsalab/predvec/internal/encoder"
	"github.com/vsalab/predvec/internal/index"
	"github.com/vsalab/predvec/internal/ingest"
	"github.com/vsalab/predvec/internal/storage"
	"github.com/vsalab/predvec/internal/vsa"
	"github.com/vsalab/predvec/internal/watcher"
	"github.com/vsalab/predvec/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/predvec/config.yaml"

// loadConfig loads config from path. When path is the default, it first
// looks for config.yaml in the current directory (for development); if that
// exists it is used. Returns the config and the path actually loaded.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "build":
		runBuild()
	case "ingest":
		runIngest()
	case "watch":
		runWatch()
	case "status":
		runStatus()
	case "version", "--version", "-v":
		fmt.Printf("predvec version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

// buildFilter assembles the vocabulary filter from model config and the
// optional stopword list.
func buildFilter(cfg *config.Config) (index.FilterParams, error) {
	maxNonAlpha := -1
	if cfg.Model.MaxNonAlphaChars != nil {
		maxNonAlpha = *cfg.Model.MaxNonAlphaChars
	}
	filter := index.FilterParams{
		MinFrequency:     cfg.Model.MinFrequency,
		MaxFrequency:     cfg.Model.MaxFrequency,
		MaxNonAlphaChars: maxNonAlpha,
		MinTermLength:    cfg.Model.MinTermLength,
	}
	if cfg.Index.StopwordsPath != "" {
		words, err := index.LoadStopwords(cfg.Index.StopwordsPath)
		if err != nil {
			return filter, err
		}
		filter.Stopwords = words
	}
	return filter, nil
}

func runBuild() {
	fs := flag.NewFlagSet("build", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	indexPath := fs.String("index", "", "triple index path (overrides config)")
	outDir := fs.String("out", "", "output directory for vector stores (overrides config)")
	dims := fs.Int("dim", 0, "vector dimensionality (overrides config)")
	vectorType := fs.String("type", "", "vector representation type (overrides config)")
	minFreq := fs.Int("min-freq", 0, "minimum concept document frequency (overrides config)")
	maxFreq := fs.Int("max-freq", 0, "maximum concept document frequency (overrides config)")
	maxNonAlpha := fs.Int("max-non-alpha", 0, "maximum non-letter characters per term (overrides config)")
	minTermLength := fs.Int("min-term-length", 0, "minimum term length (overrides config)")
	seed := fs.Uint64("seed", 0, "random seed for reproducible vectors (overrides config)")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	// Flags set on the command line win over the config file. Visit only
	// reports flags explicitly set, so config values survive unset flags.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "index":
			cfg.Index.Path = *indexPath
		case "out":
			cfg.Output.Directory = *outDir
		case "dim":
			cfg.Model.Dimensions = *dims
		case "type":
			cfg.Model.VectorType = *vectorType
		case "min-freq":
			cfg.Model.MinFrequency = *minFreq
		case "max-freq":
			cfg.Model.MaxFrequency = *maxFreq
		case "max-non-alpha":
			cfg.Model.MaxNonAlphaChars = maxNonAlpha
		case "min-term-length":
			cfg.Model.MinTermLength = *minTermLength
		case "seed":
			cfg.Model.Seed = *seed
		}
	})
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if cfg.Index.Path == "" {
		logger.Fatal("no triple index path configured; set index.path or pass -index")
	}
	kind, err := vsa.ParseKind(cfg.Model.VectorType)
	if err != nil {
		logger.Fatal("invalid vector type", zap.Error(err))
	}
	filter, err := buildFilter(cfg)
	if err != nil {
		logger.Fatal("failed to load stopwords", zap.Error(err))
	}

	idx, err := index.OpenBleveIndex(cfg.Index.Path)
	if err != nil {
		logger.Fatal("failed to open triple index", zap.Error(err))
	}
	defer idx.Close()

	runID := uuid.NewString()
	logger.Info("starting build",
		zap.String("run_id", runID),
		zap.String("config_path", resolvedConfigPath),
		zap.String("index_path", cfg.Index.Path),
		zap.Int("dimensions", cfg.Model.Dimensions),
		zap.String("vector_type", cfg.Model.VectorType))

	opts := []encoder.Option{
		encoder.WithLogger(logger),
		encoder.WithProgress(10000, func(done int) {
			logger.Info("predications processed", zap.Int("count", done))
		}),
	}
	if cfg.Model.Seed != 0 {
		opts = append(opts, encoder.WithSeed(cfg.Model.Seed))
	}
	enc := encoder.New(idx, filter, kind, cfg.Model.Dimensions, opts...)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	if err := enc.Build(ctx); err != nil {
		logger.Fatal("build failed", zap.Error(err))
	}
	if err := enc.WriteStores(cfg.Output.ElementalPath(), cfg.Output.SemanticPath(), cfg.Output.PredicatePath()); err != nil {
		logger.Fatal("failed to write vector stores", zap.Error(err))
	}

	stats := enc.Stats()
	fmt.Printf("Built %d concept and %d predicate vectors (%d predications, %d skipped)\n",
		stats.Concepts, stats.Predicates, stats.Processed, stats.Skipped)
	fmt.Printf("Stores written to %s\n", cfg.Output.Directory)
}

// openIngestComponents opens the ledger and the triple index for writing.
func openIngestComponents(cfg *config.Config, logger *zap.Logger) (*storage.SQLiteStorage, *index.BleveIndex, *ingest.Ingester, error) {
	if cfg.Index.Path == "" {
		return nil, nil, nil, fmt.Errorf("no triple index path configured; set index.path or pass -index")
	}
	store, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	idx, err := index.CreateBleveIndex(cfg.Index.Path)
	if err != nil {
		_ = store.Close()
		return nil, nil, nil, fmt.Errorf("failed to open triple index: %w", err)
	}
	ing := ingest.NewIngester(store, idx, ingest.WithLogger(logger))
	return store, idx, ing, nil
}

func runIngest() {
	fs := flag.NewFlagSet("ingest", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	indexPath := fs.String("index", "", "triple index path (overrides config)")
	remove := fs.Bool("remove", false, "remove a previously ingested file instead of ingesting")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: predvec ingest [flags] <file-or-directory>")
		os.Exit(1)
	}
	path := fs.Arg(0)

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "index" {
			cfg.Index.Path = *indexPath
		}
	})
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	store, idx, ing, err := openIngestComponents(cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize", zap.Error(err))
	}
	defer store.Close()
	defer idx.Close()

	ctx := context.Background()
	if *remove {
		if err := ing.RemoveSource(ctx, path); err != nil {
			fmt.Printf("Removal failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Removed: %s\n", path)
		return
	}

	info, err := os.Stat(path)
	if err != nil {
		fmt.Printf("Failed to stat path: %v\n", err)
		os.Exit(1)
	}
	if info.IsDir() {
		n, err := ing.IngestDirectory(ctx, path, cfg.Watch.Extensions)
		if err != nil {
			fmt.Printf("Ingesting directory failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Ingested %d triple(s) from %s\n", n, path)
		return
	}
	// Single file: no extension filter.
	n, err := ing.IngestFile(ctx, path, nil)
	if err != nil {
		fmt.Printf("Ingesting failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Ingested %d triple(s) from %s\n", n, path)
}

func runWatch() {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if len(cfg.Watch.Directories) == 0 {
		logger.Fatal("no watch directories configured; set watch.directories")
	}
	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Strings("directories", cfg.Watch.Directories))

	store, idx, ing, err := openIngestComponents(cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize", zap.Error(err))
	}
	defer store.Close()
	defer idx.Close()

	exts := cfg.Watch.Extensions
	watchOpts := []watcher.Option{}
	if debugMode {
		watchOpts = append(watchOpts, watcher.WithLogger(logger))
	}
	w := watcher.New(
		cfg.Watch.Directories,
		exts,
		cfg.Watch.RecursiveOrDefault(),
		func(path string) {
			if _, err := ing.IngestFile(context.Background(), path, exts); err != nil {
				logger.Warn("watch ingest failed", zap.String("path", path), zap.Error(err))
			}
		},
		func(path string) {
			if err := ing.RemoveSource(context.Background(), path); err != nil {
				logger.Warn("watch remove failed", zap.String("path", path), zap.Error(err))
			}
		},
		watchOpts...,
	)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		logger.Fatal("failed to start watcher", zap.Error(err))
	}
	defer w.Stop()
	w.SyncExistingFiles()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan
	logger.Info("shutting down")
}

// statusResponse is the shape of the status output.
type statusResponse struct {
	Predications int64  `json:"predications"`
	Sources      int64  `json:"sources"`
	IndexDocs    uint64 `json:"index_docs"`
	DatabasePath string `json:"database_path,omitempty"`
	IndexPath    string `json:"index_path,omitempty"`
	OutputDir    string `json:"output_dir,omitempty"`
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	store, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open storage: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	ctx := context.Background()
	predications, err := store.CountPredications(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Count predications failed: %v\n", err)
		os.Exit(1)
	}
	sources, err := store.CountSources(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Count sources failed: %v\n", err)
		os.Exit(1)
	}

	status := statusResponse{
		Predications: predications,
		Sources:      sources,
		DatabasePath: cfg.Storage.DatabasePath,
		IndexPath:    cfg.Index.Path,
		OutputDir:    cfg.Output.Directory,
	}
	if cfg.Index.Path != "" {
		if idx, idxErr := index.OpenBleveIndex(cfg.Index.Path); idxErr == nil {
			if n, countErr := idx.DocCount(); countErr == nil {
				status.IndexDocs = n
			}
			_ = idx.Close()
		}
	}

	switch *outputFormat {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(status); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
	case "text":
		fmt.Printf("predications:  %d   # stored triple occurrences\n", status.Predications)
		fmt.Printf("sources:       %d   # ingested triple files\n", status.Sources)
		fmt.Printf("index_docs:    %d   # documents in the triple index\n", status.IndexDocs)
		if status.DatabasePath != "" {
			fmt.Printf("database_path: %s\n", status.DatabasePath)
		}
		if status.IndexPath != "" {
			fmt.Printf("index_path:    %s\n", status.IndexPath)
		}
		if status.OutputDir != "" {
			fmt.Printf("output_dir:    %s\n", status.OutputDir)
		}
	default:
		fmt.Fprintf(os.Stderr, "Unknown output format %q; use text or json\n", *outputFormat)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`predvec - Predication-based semantic vector builder

Usage:
  predvec ingest [flags] <file-or-directory>   Ingest tab-separated triple files
  predvec build [flags]                        Build vector stores from the triple index
  predvec watch [flags]                        Watch directories and ingest triple files
  predvec status [flags]                       Show ledger and index status
  predvec version                              Show version
  predvec help                                 Show this help

Ingest Flags:
  --config string   Config file path (default: /usr/local/etc/predvec/config.yaml)
  --index string    Triple index path (overrides config)
  --remove          Remove a previously ingested file instead of ingesting

Build Flags:
  --config string          Config file path
  --index string           Triple index path (overrides config)
  --out string             Output directory for vector stores (overrides config)
  --dim int                Vector dimensionality (overrides config, default 200)
  --type string            Vector representation type (default "real")
  --min-freq int           Minimum concept document frequency (0 = no bound)
  --max-freq int           Maximum concept document frequency (0 = no bound)
  --max-non-alpha int      Maximum non-letter characters per term
  --min-term-length int    Minimum term length in characters
  --seed uint              Random seed for reproducible vectors (0 = random)
  --debug                  Enable debug logging

Watch Flags:
  --config string   Config file path
  --debug           Enable debug logging

Status Flags:
  --config string   Config file path
  --output string   Output format: text or json (default: text)

Examples:
  predvec ingest predications.tsv
  predvec ingest /data/triples
  predvec build --dim 500 --min-freq 2 --seed 42
  predvec watch
  predvec status --output json
  predvec ingest --remove old.tsv`)
}
