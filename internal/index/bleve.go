package index

import (
	"fmt"
	"os"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"

	"github.com/vsalab/predvec/internal/models"
)

// BleveIndex implements TripleIndex and Writer over a bleve index whose
// documents are single predications. All four fields are indexed with the
// keyword analyzer (one term per field value, no tokenization) and stored,
// so field dictionaries enumerate whole subjects/predicates/objects and a
// document lookup recovers the original triple.
type BleveIndex struct {
	index bleve.Index
}

func tripleIndexMapping() *mapping.IndexMappingImpl {
	im := bleve.NewIndexMapping()
	docMapping := bleve.NewDocumentMapping()
	for _, field := range []string{FieldSubject, FieldPredicate, FieldObject, FieldPredication} {
		docMapping.AddFieldMappingsAt(field, bleve.NewKeywordFieldMapping())
	}
	im.AddDocumentMapping("predication", docMapping)
	im.DefaultType = "predication"
	im.DefaultMapping = docMapping
	return im
}

// OpenBleveIndex opens an existing triple index at path. The index must
// already exist; a build run never creates its own corpus.
func OpenBleveIndex(path string) (*BleveIndex, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("triple index not found at %q: %w", path, err)
	}
	index, err := bleve.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open triple index: %w", err)
	}
	return &BleveIndex{index: index}, nil
}

// CreateBleveIndex opens the triple index at path, creating it with the
// predication mapping when absent. Used by ingestion.
func CreateBleveIndex(path string) (*BleveIndex, error) {
	if _, err := os.Stat(path); err == nil {
		return OpenBleveIndex(path)
	}
	index, err := bleve.New(path, tripleIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create triple index: %w", err)
	}
	return &BleveIndex{index: index}, nil
}

// Index stores one predication occurrence under id.
func (b *BleveIndex) Index(id string, p models.Predication) error {
	doc := map[string]string{
		FieldSubject:     p.Subject,
		FieldPredicate:   p.Predicate,
		FieldObject:      p.Object,
		FieldPredication: p.Term(),
	}
	return b.index.Index(id, doc)
}

// Delete removes a predication document.
func (b *BleveIndex) Delete(id string) error {
	return b.index.Delete(id)
}

// EachTerm walks the field dictionary, yielding each distinct term with
// its document frequency. A field with no terms at all is a structural
// error: the index was not built for predication encoding.
func (b *BleveIndex) EachTerm(field string, fn func(models.TermStat) error) error {
	dict, err := b.index.FieldDict(field)
	if err != nil {
		return fmt.Errorf("field dictionary for %q: %w", field, err)
	}
	defer dict.Close()

	n := 0
	for {
		entry, err := dict.Next()
		if err != nil {
			return fmt.Errorf("iterate field dictionary for %q: %w", field, err)
		}
		if entry == nil {
			break
		}
		n++
		if err := fn(models.TermStat{Term: entry.Term, DocFreq: int(entry.Count)}); err != nil {
			return err
		}
	}
	if n == 0 {
		return fmt.Errorf("field %q: %w", field, ErrNoFieldTerms)
	}
	return nil
}

// DocForTerm fetches one document containing term in field and returns its
// stored triple.
func (b *BleveIndex) DocForTerm(field, term string) (*models.Predication, error) {
	q := bleve.NewTermQuery(term)
	q.SetField(field)
	req := bleve.NewSearchRequest(q)
	req.Size = 1
	req.Fields = []string{FieldSubject, FieldPredicate, FieldObject}
	results, err := b.index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("lookup document for term %q in %q: %w", term, field, err)
	}
	if len(results.Hits) == 0 {
		return nil, fmt.Errorf("no document for term %q in field %q", term, field)
	}
	hit := results.Hits[0]
	p := &models.Predication{
		Subject:   stringField(hit.Fields, FieldSubject),
		Predicate: stringField(hit.Fields, FieldPredicate),
		Object:    stringField(hit.Fields, FieldObject),
	}
	if p.Subject == "" || p.Predicate == "" || p.Object == "" {
		return nil, fmt.Errorf("document for term %q is missing stored triple fields", term)
	}
	return p, nil
}

func stringField(fields map[string]interface{}, name string) string {
	if s, ok := fields[name].(string); ok {
		return s
	}
	return ""
}

// DocCount returns the total number of predication documents.
func (b *BleveIndex) DocCount() (uint64, error) {
	return b.index.DocCount()
}

// Close closes the underlying bleve index.
func (b *BleveIndex) Close() error {
	return b.index.Close()
}
