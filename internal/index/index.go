// Package index provides the triple index consumed by the encoder: term
// enumeration per field with document frequencies, document lookup by
// predication term, term filtering, and corpus weighting.
package index

import (
	"errors"

	"github.com/vsalab/predvec/internal/models"
)

// Field names of a predication document. Subject and object are the item
// roles; the predication field carries one canonical term per distinct
// triple whose document frequency is the triple's occurrence count.
const (
	FieldSubject     = "subject"
	FieldPredicate   = "predicate"
	FieldObject      = "object"
	FieldPredication = "predication"
)

// ErrNoFieldTerms signals that a required field has no terms at all in the
// index: the index was not built for predication encoding and the build
// must abort.
var ErrNoFieldTerms = errors.New("no terms for field")

// TripleIndex is the read side of the text index the encoder builds from.
type TripleIndex interface {
	// EachTerm enumerates the distinct terms of field in dictionary
	// order, with each term's document frequency. Returns an error
	// wrapping ErrNoFieldTerms when the field has no terms.
	EachTerm(field string, fn func(models.TermStat) error) error

	// DocForTerm returns the triple stored in one document containing
	// term in field. Used with FieldPredication to recover a
	// predication's subject, predicate, and object.
	DocForTerm(field, term string) (*models.Predication, error)

	// DocCount returns the total number of predication documents.
	DocCount() (uint64, error)
}

// Writer is the write side of the triple index, used by ingestion.
type Writer interface {
	Index(id string, p models.Predication) error
	Delete(id string) error
}
