// Package ingest reads tab-separated triple files into the predication
// ledger and the triple index. Re-ingesting an unchanged file is a no-op;
// a changed file replaces all of its previous predications.
package ingest

import (
	"bufio"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/vsalab/predvec/internal/fileid"
	"github.com/vsalab/predvec/internal/index"
	"github.com/vsalab/predvec/internal/models"
)

// Ledger is the persistent record of ingested predications and source files.
type Ledger interface {
	BatchInsertPredications(ctx context.Context, rows []*models.PredicationRow) error
	DeletePredicationsBySource(ctx context.Context, source string) ([]string, error)
	GetSource(ctx context.Context, path string) (*models.SourceFile, error)
	UpsertSource(ctx context.Context, src *models.SourceFile) error
	DeleteSource(ctx context.Context, path string) error
}

// Ingester feeds triple files into the ledger and the triple index.
type Ingester struct {
	ledger Ledger
	idx    index.Writer
	logger *zap.Logger
}

// IngesterOption configures an Ingester.
type IngesterOption func(*Ingester)

// WithLogger sets a logger for debug output.
func WithLogger(l *zap.Logger) IngesterOption {
	return func(ing *Ingester) { ing.logger = l }
}

// NewIngester creates an ingester writing to the given ledger and index.
func NewIngester(ledger Ledger, idx index.Writer, opts ...IngesterOption) *Ingester {
	ing := &Ingester{
		ledger: ledger,
		idx:    idx,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(ing)
	}
	return ing
}

// IngestFile reads one tab-separated triple file and records every triple.
// The per-occurrence document ID is derived from the absolute path and line
// position, so re-ingesting the same content writes the same documents. If
// allowedExts is non-empty the file's extension must be in the list
// (case-insensitive). Returns the number of triples ingested; an unchanged
// file (same mtime and size as the ledger entry) is skipped and returns 0.
func (ing *Ingester) IngestFile(ctx context.Context, path string, allowedExts []string) (int, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return 0, fmt.Errorf("absolute path: %w", err)
	}
	ext := strings.ToLower(filepath.Ext(absPath))
	if len(allowedExts) > 0 && !extensionAllowed(ext, allowedExts) {
		return 0, fmt.Errorf("extension %q not in allowed list", ext)
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return 0, fmt.Errorf("stat file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return 0, fmt.Errorf("not a regular file: %s", absPath)
	}
	if ing.unchanged(ctx, absPath, info) {
		ing.logger.Debug("skipping unchanged file", zap.String("path", absPath))
		return 0, nil
	}

	triples, err := parseTriples(absPath)
	if err != nil {
		return 0, err
	}

	// Replace any previous ingest of this file before writing the new
	// rows, so a shrunk file leaves no stale documents behind.
	if err := ing.removeRows(ctx, absPath); err != nil {
		return 0, err
	}

	baseID := fileid.FileDocID(absPath)
	rows := make([]*models.PredicationRow, len(triples))
	for i, p := range triples {
		rows[i] = &models.PredicationRow{
			ID:          baseID + "_" + strconv.Itoa(i),
			Predication: p,
			Source:      absPath,
		}
	}
	if err := ing.ledger.BatchInsertPredications(ctx, rows); err != nil {
		return 0, fmt.Errorf("store predications: %w", err)
	}
	for _, row := range rows {
		if err := ing.idx.Index(row.ID, row.Predication); err != nil {
			return 0, fmt.Errorf("index predication %s: %w", row.Predication, err)
		}
	}
	src := &models.SourceFile{
		Path:    absPath,
		Mtime:   info.ModTime().UnixNano(),
		Size:    info.Size(),
		Triples: len(triples),
	}
	if err := ing.ledger.UpsertSource(ctx, src); err != nil {
		return 0, fmt.Errorf("record source: %w", err)
	}
	ing.logger.Debug("file ingested",
		zap.String("path", absPath),
		zap.Int("triples", len(triples)))
	return len(triples), nil
}

// IngestDirectory walks dir recursively and ingests each regular file whose
// extension is in allowedExts (all files when empty). Returns the total
// number of triples ingested and the first error encountered.
func (ing *Ingester) IngestDirectory(ctx context.Context, dir string, allowedExts []string) (int, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return 0, fmt.Errorf("absolute path: %w", err)
	}
	info, err := os.Stat(absDir)
	if err != nil {
		return 0, fmt.Errorf("stat directory: %w", err)
	}
	if !info.IsDir() {
		return 0, fmt.Errorf("not a directory: %s", absDir)
	}
	total := 0
	err = filepath.WalkDir(absDir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if len(allowedExts) > 0 && !extensionAllowed(ext, allowedExts) {
			return nil
		}
		n, err := ing.IngestFile(ctx, path, nil)
		if err != nil {
			return err
		}
		total += n
		return nil
	})
	return total, err
}

// RemoveSource drops every predication ingested from path, both from the
// ledger and from the triple index.
func (ing *Ingester) RemoveSource(ctx context.Context, path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("absolute path: %w", err)
	}
	if err := ing.removeRows(ctx, absPath); err != nil {
		return err
	}
	if err := ing.ledger.DeleteSource(ctx, absPath); err != nil {
		return fmt.Errorf("drop source entry: %w", err)
	}
	ing.logger.Debug("source removed", zap.String("path", absPath))
	return nil
}

func (ing *Ingester) removeRows(ctx context.Context, absPath string) error {
	ids, err := ing.ledger.DeletePredicationsBySource(ctx, absPath)
	if err != nil {
		return fmt.Errorf("drop previous rows: %w", err)
	}
	for _, id := range ids {
		if err := ing.idx.Delete(id); err != nil {
			return fmt.Errorf("drop index doc %s: %w", id, err)
		}
	}
	return nil
}

// unchanged reports whether the ledger already holds this file with the
// same mtime and size.
func (ing *Ingester) unchanged(ctx context.Context, absPath string, info os.FileInfo) bool {
	src, err := ing.ledger.GetSource(ctx, absPath)
	if err != nil {
		return false
	}
	return src.Mtime == info.ModTime().UnixNano() && src.Size == info.Size()
}

func extensionAllowed(ext string, allowed []string) bool {
	for _, a := range allowed {
		if strings.EqualFold(a, ext) {
			return true
		}
	}
	return false
}

// parseTriples reads a tab-separated triple file: one subject, predicate,
// object per line. Blank lines and lines starting with '#' are skipped, as
// are lines with fewer than three fields; extra fields are ignored.
func parseTriples(path string) ([]models.Predication, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open triples file: %w", err)
	}
	defer f.Close()

	var triples []models.Predication
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 3 {
			continue
		}
		p := models.Predication{
			Subject:   strings.TrimSpace(fields[0]),
			Predicate: strings.TrimSpace(fields[1]),
			Object:    strings.TrimSpace(fields[2]),
		}
		if p.Subject == "" || p.Predicate == "" || p.Object == "" {
			continue
		}
		triples = append(triples, p)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read triples file: %w", err)
	}
	return triples, nil
}
