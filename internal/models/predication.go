// Package models defines core data structures for predications, term statistics, and build results.
package models

import (
	"strings"
	"time"
)

// predicationSep separates the three roles inside a predication term.
// Tab is safe because triples are ingested from tab-separated files,
// so no field can itself contain a tab.
const predicationSep = "\t"

// Predication is one observed subject-predicate-object triple.
type Predication struct {
	Subject   string `json:"subject"`
	Predicate string `json:"predicate"`
	Object    string `json:"object"`
}

// Term returns the canonical predication term indexed for this triple.
// Identical triples share one term, so the term's document frequency in
// the index is the triple's occurrence count.
func (p Predication) Term() string {
	return p.Subject + predicationSep + p.Predicate + predicationSep + p.Object
}

// String renders the triple for log messages.
func (p Predication) String() string {
	return p.Subject + " " + p.Predicate + " " + p.Object
}

// ParsePredicationTerm splits a canonical predication term back into a triple.
// Returns false if the term does not have exactly three fields.
func ParsePredicationTerm(term string) (Predication, bool) {
	parts := strings.Split(term, predicationSep)
	if len(parts) != 3 {
		return Predication{}, false
	}
	return Predication{Subject: parts[0], Predicate: parts[1], Object: parts[2]}, true
}

// PredicationRow is a stored predication occurrence with provenance.
type PredicationRow struct {
	ID        string      `json:"id" db:"id"`
	Predication
	Source    string    `json:"source" db:"source"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// SourceFile records an ingested triples file for incremental re-ingest.
type SourceFile struct {
	Path       string    `json:"path" db:"path"`
	Mtime      int64     `json:"mtime" db:"mtime"`
	Size       int64     `json:"size" db:"size"`
	Triples    int       `json:"triples" db:"triples"`
	IngestedAt time.Time `json:"ingested_at" db:"ingested_at"`
}

// TermStat is one entry of a field's term dictionary: the term and the
// number of documents containing it in that field.
type TermStat struct {
	Term    string
	DocFreq int
}

// BuildStats summarizes one encoder run.
type BuildStats struct {
	Concepts   int `json:"concepts"`
	Predicates int `json:"predicates"` // predicate labels, not counting inverse entries
	Processed  int `json:"processed"`  // distinct predications accumulated
	Skipped    int `json:"skipped"`    // distinct predications dropped by validation
}
