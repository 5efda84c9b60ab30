package vsa

import (
	"fmt"
	"math/rand/v2"
)

// Store is a keyed vector collection owned by one build run. Keys are kept
// in insertion order so exported stores are deterministic given the same
// input stream. Entries are never deleted.
//
// A Store is not safe for concurrent use; the reference build is a single
// sequential pass and each store has exactly one owner.
type Store struct {
	kind Kind
	dims int
	keys []string
	vecs map[string]Vector
}

// NewStore creates an empty store for vectors of the given kind and dims.
func NewStore(kind Kind, dims int) *Store {
	return &Store{
		kind: kind,
		dims: dims,
		vecs: make(map[string]Vector),
	}
}

// Kind returns the store's vector representation type.
func (s *Store) Kind() Kind { return s.kind }

// Dims returns the store's vector dimensionality.
func (s *Store) Dims() int { return s.dims }

// Put inserts v under key. Inserting an existing key replaces the vector
// without duplicating the key in iteration order.
func (s *Store) Put(key string, v Vector) {
	if v.Kind() != s.kind || v.Dims() != s.dims {
		panic(fmt.Sprintf("vsa: store expects %s/%d vectors, got %s/%d", s.kind, s.dims, v.Kind(), v.Dims()))
	}
	if _, exists := s.vecs[key]; !exists {
		s.keys = append(s.keys, key)
	}
	s.vecs[key] = v
}

// Get returns the vector stored under key. The returned vector is the
// stored instance, not a copy; callers that mutate must Copy first.
func (s *Store) Get(key string) (Vector, bool) {
	v, ok := s.vecs[key]
	return v, ok
}

// Contains reports whether key has a vector.
func (s *Store) Contains(key string) bool {
	_, ok := s.vecs[key]
	return ok
}

// Len returns the number of stored vectors.
func (s *Store) Len() int { return len(s.keys) }

// Keys returns the keys in insertion order.
func (s *Store) Keys() []string {
	return append([]string(nil), s.keys...)
}

// Each calls fn for every (key, vector) pair in insertion order, stopping
// at the first error.
func (s *Store) Each(fn func(key string, v Vector) error) error {
	for _, key := range s.keys {
		if err := fn(key, s.vecs[key]); err != nil {
			return err
		}
	}
	return nil
}

// ElementalStore assigns one random vector per vocabulary key, created on
// first access and cached for the rest of the run. Vectors are shared by
// reference: within one run the same key always yields the identical
// instance, and callers that bind must Copy first.
//
// Two independently created stores do not reproduce the same vector for
// the same key unless both are seeded; by default each run draws a fresh
// random state and only within-run identity holds.
type ElementalStore struct {
	store *Store
	rng   *rand.Rand
}

// ElementalOption configures an ElementalStore.
type ElementalOption func(*ElementalStore)

// WithSeed fixes the random state so vector assignment is reproducible
// across runs given the same key creation order.
func WithSeed(seed uint64) ElementalOption {
	return func(s *ElementalStore) {
		s.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	}
}

// NewElementalStore creates an elemental store for the given kind and dims.
func NewElementalStore(kind Kind, dims int, opts ...ElementalOption) *ElementalStore {
	s := &ElementalStore{
		store: NewStore(kind, dims),
		rng:   rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetOrCreate returns the elemental vector for key, creating and caching a
// new random vector on first sight. Creation-on-miss is the only way
// vectors enter the store.
func (s *ElementalStore) GetOrCreate(key string) Vector {
	if v, ok := s.store.Get(key); ok {
		return v
	}
	v := Random(s.store.kind, s.store.dims, s.rng)
	s.store.Put(key, v)
	return v
}

// Contains reports whether key already has an elemental vector.
func (s *ElementalStore) Contains(key string) bool {
	return s.store.Contains(key)
}

// Len returns the number of assigned vectors.
func (s *ElementalStore) Len() int { return s.store.Len() }

// Store exposes the underlying keyed collection for export.
func (s *ElementalStore) Store() *Store { return s.store }
