// Package encoder builds predication vector stores from a triple index:
// random elemental vectors for the vocabulary, and semantic vectors
// accumulated by binding each predication's arguments through its
// predicate vector.
package encoder

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/vsalab/predvec/internal/index"
	"github.com/vsalab/predvec/internal/models"
	"github.com/vsalab/predvec/internal/vsa"
)

// inverseMarker suffixes a predicate label to name the reverse direction
// of the relation. The inverse label gets its own independent elemental
// vector; it is a naming convention, not an algebraic inverse.
const inverseMarker = "-INV"

// Encoder runs one build over a populated triple index and owns the three
// vector stores it produces. An Encoder is single-use: create, Build,
// WriteStores.
type Encoder struct {
	idx    index.TripleIndex
	filter index.FilterParams
	kind   vsa.Kind
	dims   int

	elementals *vsa.ElementalStore
	predicates *vsa.ElementalStore
	semantics  *vsa.Store

	// Document frequencies cached during vocabulary construction so the
	// accumulation pass never goes back to the index for weights.
	subjectFreqs map[string]int
	objectFreqs  map[string]int
	docCount     uint64

	predicateLabels int
	processed       int
	skipped         int

	logger        *zap.Logger
	progressEvery int
	progressFn    func(done int)
}

// Option configures an Encoder.
type Option func(*Encoder)

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Encoder) { e.logger = logger }
}

// WithProgress calls fn with the running predication count after every
// `every` accumulated predications.
func WithProgress(every int, fn func(done int)) Option {
	return func(e *Encoder) {
		e.progressEvery = every
		e.progressFn = fn
	}
}

// WithSeed makes elemental vector assignment reproducible across runs
// over the same index. The concept and predicate stores draw from
// adjacent seeds so their sequences stay independent.
func WithSeed(seed uint64) Option {
	return func(e *Encoder) {
		e.elementals = vsa.NewElementalStore(e.kind, e.dims, vsa.WithSeed(seed))
		e.predicates = vsa.NewElementalStore(e.kind, e.dims, vsa.WithSeed(seed+1))
	}
}

// New creates an encoder over idx producing vectors of the given kind and
// dimensionality. The filter decides which subject and object terms enter
// the vocabulary.
func New(idx index.TripleIndex, filter index.FilterParams, kind vsa.Kind, dims int, opts ...Option) *Encoder {
	e := &Encoder{
		idx:          idx,
		filter:       filter,
		kind:         kind,
		dims:         dims,
		elementals:   vsa.NewElementalStore(kind, dims),
		predicates:   vsa.NewElementalStore(kind, dims),
		semantics:    vsa.NewStore(kind, dims),
		subjectFreqs: make(map[string]int),
		objectFreqs:  make(map[string]int),
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Build runs the full encoding: vocabulary construction, predicate vector
// assignment, weighted accumulation over every distinct predication, and
// final normalization. The context is checked between predications so a
// long accumulation pass can be cancelled.
func (e *Encoder) Build(ctx context.Context) error {
	n, err := e.idx.DocCount()
	if err != nil {
		return fmt.Errorf("count predication docs: %w", err)
	}
	e.docCount = n

	if err := e.buildVocabulary(); err != nil {
		return err
	}
	if err := e.buildPredicateVectors(); err != nil {
		return err
	}
	if err := e.accumulate(ctx); err != nil {
		return err
	}
	e.normalize()

	e.logger.Info("encoding complete",
		zap.Int("concepts", e.semantics.Len()),
		zap.Int("predicates", e.predicateLabels),
		zap.Int("processed", e.processed),
		zap.Int("skipped", e.skipped))
	return nil
}

// buildVocabulary enumerates the subject and object fields, records their
// document frequencies, and registers every eligible term exactly once:
// an elemental vector plus a zero semantic accumulator. A term appearing
// in both roles is registered on first sight and keeps separate per-role
// frequencies for weighting.
func (e *Encoder) buildVocabulary() error {
	fields := []struct {
		name  string
		freqs map[string]int
	}{
		{index.FieldSubject, e.subjectFreqs},
		{index.FieldObject, e.objectFreqs},
	}
	for _, f := range fields {
		err := e.idx.EachTerm(f.name, func(ts models.TermStat) error {
			f.freqs[ts.Term] = ts.DocFreq
			if !e.filter.Eligible(ts.Term, ts.DocFreq) {
				return nil
			}
			if e.semantics.Contains(ts.Term) {
				return nil
			}
			e.elementals.GetOrCreate(ts.Term)
			e.semantics.Put(ts.Term, vsa.Zero(e.kind, e.dims))
			return nil
		})
		if err != nil {
			return fmt.Errorf("enumerate %s terms: %w", f.name, err)
		}
	}
	e.logger.Debug("vocabulary built", zap.Int("concepts", e.semantics.Len()))
	return nil
}

// buildPredicateVectors assigns elemental vectors to every eligible
// predicate label and its inverse. Predicates are exempt from frequency
// bounds but still pass the character-class and stopword checks.
func (e *Encoder) buildPredicateVectors() error {
	predFilter := e.filter.ForPredicates()
	err := e.idx.EachTerm(index.FieldPredicate, func(ts models.TermStat) error {
		label := strings.TrimSpace(ts.Term)
		if !predFilter.Eligible(label, ts.DocFreq) {
			return nil
		}
		if e.predicates.Contains(label) {
			return nil
		}
		e.predicates.GetOrCreate(label)
		e.predicates.GetOrCreate(label + inverseMarker)
		e.predicateLabels++
		return nil
	})
	if err != nil {
		return fmt.Errorf("enumerate predicate terms: %w", err)
	}
	e.logger.Debug("predicate vectors assigned", zap.Int("labels", e.predicateLabels))
	return nil
}

// accumulate walks every distinct predication once and superposes the
// bound argument vectors into both semantic accumulators. Predications
// referencing terms outside the vocabulary are skipped, not fatal.
func (e *Encoder) accumulate(ctx context.Context) error {
	err := e.idx.EachTerm(index.FieldPredication, func(ts models.TermStat) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		p, err := e.idx.DocForTerm(index.FieldPredication, ts.Term)
		if err != nil {
			return fmt.Errorf("resolve predication %q: %w", ts.Term, err)
		}
		predicate := strings.TrimSpace(p.Predicate)
		if !e.semantics.Contains(p.Subject) || !e.semantics.Contains(p.Object) || !e.predicates.Contains(predicate) {
			e.skipped++
			e.logger.Debug("skipping predication outside vocabulary", zap.String("predication", p.String()))
			return nil
		}

		pWeight := index.LocalTermWeight(ts.DocFreq)
		sWeight := index.GlobalTermWeight(e.docCount, e.subjectFreqs[p.Subject])
		oWeight := index.GlobalTermWeight(e.docCount, e.objectFreqs[p.Object])

		subjSem, _ := e.semantics.Get(p.Subject)
		bound := e.elementals.GetOrCreate(p.Object).Copy()
		bound.Bind(e.predicates.GetOrCreate(predicate))
		subjSem.Superpose(bound, pWeight*oWeight)

		objSem, _ := e.semantics.Get(p.Object)
		bound = e.elementals.GetOrCreate(p.Subject).Copy()
		bound.Bind(e.predicates.GetOrCreate(predicate + inverseMarker))
		objSem.Superpose(bound, pWeight*sWeight)

		e.processed++
		if e.progressEvery > 0 && e.processed%e.progressEvery == 0 {
			e.progressFn(e.processed)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("accumulate predications: %w", err)
	}
	return nil
}

// normalize scales every semantic vector to unit norm. Vectors that never
// received a predication stay zero.
func (e *Encoder) normalize() {
	_ = e.semantics.Each(func(_ string, v vsa.Vector) error {
		v.Normalize()
		return nil
	})
}

// Stats reports the outcome of the last Build.
func (e *Encoder) Stats() models.BuildStats {
	return models.BuildStats{
		Concepts:   e.semantics.Len(),
		Predicates: e.predicateLabels,
		Processed:  e.processed,
		Skipped:    e.skipped,
	}
}

// WriteStores persists the three stores produced by Build.
func (e *Encoder) WriteStores(elementalPath, semanticPath, predicatePath string) error {
	if err := vsa.WriteStore(elementalPath, e.elementals.Store()); err != nil {
		return fmt.Errorf("write elemental store: %w", err)
	}
	if err := vsa.WriteStore(semanticPath, e.semantics); err != nil {
		return fmt.Errorf("write semantic store: %w", err)
	}
	if err := vsa.WriteStore(predicatePath, e.predicates.Store()); err != nil {
		return fmt.Errorf("write predicate store: %w", err)
	}
	return nil
}

// Elementals exposes the concept elemental store.
func (e *Encoder) Elementals() *vsa.ElementalStore { return e.elementals }

// Predicates exposes the predicate elemental store.
func (e *Encoder) Predicates() *vsa.ElementalStore { return e.predicates }

// Semantics exposes the semantic vector store.
func (e *Encoder) Semantics() *vsa.Store { return e.semantics }
