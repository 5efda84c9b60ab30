package index

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"strings"
	"unicode"
	"unicode/utf8"
)

// FilterParams decides which terms enter the vocabulary. The filter is a
// pure predicate over a term and its document frequency; it holds no state
// beyond its configuration.
type FilterParams struct {
	// MinFrequency and MaxFrequency bound the term's document frequency.
	// Values <= 0 disable the respective bound.
	MinFrequency int
	MaxFrequency int
	// MaxNonAlphaChars caps the number of non-letter runes in a term.
	// Negative disables the check; 0 admits letters-only terms.
	MaxNonAlphaChars int
	// MinTermLength is the minimum term length in runes.
	MinTermLength int
	// Stopwords are rejected regardless of frequency. Matching is
	// case-insensitive against lowercased entries.
	Stopwords map[string]struct{}
}

// Eligible reports whether term belongs in the vocabulary.
func (p FilterParams) Eligible(term string, docFreq int) bool {
	if utf8.RuneCountInString(term) < p.MinTermLength {
		return false
	}
	if _, stopped := p.Stopwords[strings.ToLower(term)]; stopped {
		return false
	}
	if p.MaxNonAlphaChars >= 0 {
		nonAlpha := 0
		for _, r := range term {
			if !unicode.IsLetter(r) {
				nonAlpha++
			}
		}
		if nonAlpha > p.MaxNonAlphaChars {
			return false
		}
	}
	if p.MinFrequency > 0 && docFreq < p.MinFrequency {
		return false
	}
	if p.MaxFrequency > 0 && docFreq > p.MaxFrequency {
		return false
	}
	return true
}

// ForPredicates returns a copy of p with frequency bounds disabled.
// Predicates are exempt from frequency filtering but remain subject to the
// stopword and character-class checks.
func (p FilterParams) ForPredicates() FilterParams {
	out := p
	out.MinFrequency = 0
	out.MaxFrequency = math.MaxInt
	out.MinTermLength = 1
	return out
}

// LoadStopwords reads a stopword list, one term per line; blank lines and
// lines starting with '#' are skipped. Entries are lowercased.
func LoadStopwords(path string) (map[string]struct{}, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open stopword list: %w", err)
	}
	defer f.Close()

	words := make(map[string]struct{})
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		words[strings.ToLower(line)] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read stopword list: %w", err)
	}
	return words, nil
}
