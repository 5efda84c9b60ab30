package index

import (
	"os"
	"path/filepath"
	"testing"
)

func baseFilter() FilterParams {
	return FilterParams{
		MinFrequency:     2,
		MaxFrequency:     100,
		MaxNonAlphaChars: 1,
		MinTermLength:    2,
		Stopwords:        map[string]struct{}{"the": {}, "of": {}},
	}
}

func TestEligible_acceptsPlainTerm(t *testing.T) {
	if !baseFilter().Eligible("aspirin", 10) {
		t.Error("plain frequent term should pass")
	}
}

func TestEligible_frequencyBounds(t *testing.T) {
	f := baseFilter()
	if f.Eligible("rare", 1) {
		t.Error("below min frequency should fail")
	}
	if f.Eligible("ubiquitous", 101) {
		t.Error("above max frequency should fail")
	}
	if !f.Eligible("edge", 2) || !f.Eligible("edge", 100) {
		t.Error("bounds are inclusive")
	}
}

func TestEligible_disabledBounds(t *testing.T) {
	f := FilterParams{MinTermLength: 1, MaxNonAlphaChars: -1}
	if !f.Eligible("anything", 1) {
		t.Error("zero bounds disable frequency filtering")
	}
	if !f.Eligible("x123-45", 1) {
		t.Error("negative MaxNonAlphaChars disables the character check")
	}
}

func TestEligible_stopwords(t *testing.T) {
	f := baseFilter()
	if f.Eligible("the", 50) {
		t.Error("stopword should fail")
	}
	if f.Eligible("The", 50) {
		t.Error("stopword match is case-insensitive")
	}
}

func TestEligible_nonAlphaChars(t *testing.T) {
	f := baseFilter()
	if f.Eligible("covid-19", 10) {
		t.Error("three non-letter runes exceed the cap of one")
	}
	if !f.Eligible("x-ray", 10) {
		t.Error("one non-letter rune is within the cap")
	}
}

func TestEligible_minTermLength(t *testing.T) {
	f := baseFilter()
	if f.Eligible("a", 10) {
		t.Error("single rune below MinTermLength 2 should fail")
	}
}

func TestForPredicates_disablesFrequencyOnly(t *testing.T) {
	f := baseFilter().ForPredicates()
	if !f.Eligible("TREATS", 1) {
		t.Error("predicates are exempt from frequency bounds")
	}
	if f.Eligible("the", 1) {
		t.Error("stopword filtering still applies to predicates")
	}
	if f.Eligible("a1-2*", 1) {
		t.Error("character-class filtering still applies to predicates")
	}
}

func TestLoadStopwords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stop.txt")
	content := "# common words\nThe\nof\n\nand\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	words, err := LoadStopwords(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, w := range []string{"the", "of", "and"} {
		if _, ok := words[w]; !ok {
			t.Errorf("missing stopword %q", w)
		}
	}
	if len(words) != 3 {
		t.Errorf("expected 3 stopwords, got %d", len(words))
	}
}

func TestLoadStopwords_missingFile(t *testing.T) {
	if _, err := LoadStopwords(filepath.Join(t.TempDir(), "nope.txt")); err == nil {
		t.Error("expected error for missing file")
	}
}
