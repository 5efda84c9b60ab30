package index

import (
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/vsalab/predvec/internal/models"
)

func newTestIndex(t *testing.T) *BleveIndex {
	t.Helper()
	idx, err := CreateBleveIndex(filepath.Join(t.TempDir(), "triples.bleve"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = idx.Close() })
	return idx
}

func indexTriples(t *testing.T, idx *BleveIndex, triples []models.Predication) {
	t.Helper()
	for i, p := range triples {
		if err := idx.Index(fmt.Sprintf("doc-%d", i), p); err != nil {
			t.Fatal(err)
		}
	}
}

func TestBleveIndex_EachTermWithFrequencies(t *testing.T) {
	idx := newTestIndex(t)
	indexTriples(t, idx, []models.Predication{
		{Subject: "aspirin", Predicate: "TREATS", Object: "headache"},
		{Subject: "aspirin", Predicate: "TREATS", Object: "headache"},
		{Subject: "ibuprofen", Predicate: "TREATS", Object: "fever"},
	})

	seen := map[string]int{}
	if err := idx.EachTerm(FieldSubject, func(ts models.TermStat) error {
		seen[ts.Term] = ts.DocFreq
		return nil
	}); err != nil {
		t.Fatal(err)
	}
	if len(seen) != 2 {
		t.Fatalf("subject terms = %v", seen)
	}
	if seen["aspirin"] != 2 {
		t.Errorf("aspirin doc frequency = %d, want 2", seen["aspirin"])
	}
	if seen["ibuprofen"] != 1 {
		t.Errorf("ibuprofen doc frequency = %d, want 1", seen["ibuprofen"])
	}
}

func TestBleveIndex_predicationTermCountsOccurrences(t *testing.T) {
	idx := newTestIndex(t)
	dup := models.Predication{Subject: "a", Predicate: "P", Object: "b"}
	indexTriples(t, idx, []models.Predication{dup, dup, {Subject: "a", Predicate: "P", Object: "c"}})

	freqs := map[string]int{}
	if err := idx.EachTerm(FieldPredication, func(ts models.TermStat) error {
		freqs[ts.Term] = ts.DocFreq
		return nil
	}); err != nil {
		t.Fatal(err)
	}
	if len(freqs) != 2 {
		t.Fatalf("expected 2 distinct predication terms, got %d", len(freqs))
	}
	if freqs[dup.Term()] != 2 {
		t.Errorf("duplicate triple occurrence count = %d, want 2", freqs[dup.Term()])
	}
}

func TestBleveIndex_EachTermEmptyFieldIsStructuralError(t *testing.T) {
	idx := newTestIndex(t)
	indexTriples(t, idx, []models.Predication{{Subject: "a", Predicate: "P", Object: "b"}})

	err := idx.EachTerm("nosuchfield", func(models.TermStat) error { return nil })
	if !errors.Is(err, ErrNoFieldTerms) {
		t.Errorf("expected ErrNoFieldTerms, got %v", err)
	}
}

func TestBleveIndex_DocForTerm(t *testing.T) {
	idx := newTestIndex(t)
	want := models.Predication{Subject: "insulin", Predicate: "AFFECTS", Object: "glucose"}
	indexTriples(t, idx, []models.Predication{want})

	got, err := idx.DocForTerm(FieldPredication, want.Term())
	if err != nil {
		t.Fatal(err)
	}
	if *got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}

	if _, err := idx.DocForTerm(FieldPredication, "missing\tterm\there"); err == nil {
		t.Error("expected error for unknown predication term")
	}
}

func TestBleveIndex_keywordAnalyzerKeepsWholeValues(t *testing.T) {
	idx := newTestIndex(t)
	// Multi-word values must stay single terms; the standard analyzer
	// would split them and break vocabulary construction.
	indexTriples(t, idx, []models.Predication{
		{Subject: "myocardial infarction", Predicate: "ISA", Object: "heart disease"},
	})
	var terms []string
	if err := idx.EachTerm(FieldSubject, func(ts models.TermStat) error {
		terms = append(terms, ts.Term)
		return nil
	}); err != nil {
		t.Fatal(err)
	}
	if len(terms) != 1 || terms[0] != "myocardial infarction" {
		t.Errorf("subject terms = %v", terms)
	}
}

func TestBleveIndex_DocCount(t *testing.T) {
	idx := newTestIndex(t)
	indexTriples(t, idx, []models.Predication{
		{Subject: "a", Predicate: "P", Object: "b"},
		{Subject: "c", Predicate: "Q", Object: "d"},
	})
	n, err := idx.DocCount()
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("DocCount = %d, want 2", n)
	}
}

func TestOpenBleveIndex_missingPathFails(t *testing.T) {
	if _, err := OpenBleveIndex(filepath.Join(t.TempDir(), "absent.bleve")); err == nil {
		t.Error("opening a missing index must fail")
	}
}

func TestCreateBleveIndex_reopensExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "triples.bleve")
	idx, err := CreateBleveIndex(path)
	if err != nil {
		t.Fatal(err)
	}
	indexTriples(t, idx, []models.Predication{{Subject: "a", Predicate: "P", Object: "b"}})
	if err := idx.Close(); err != nil {
		t.Fatal(err)
	}

	reopened, err := CreateBleveIndex(path)
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()
	n, err := reopened.DocCount()
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("DocCount after reopen = %d, want 1", n)
	}
}
