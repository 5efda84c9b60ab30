// Package vsa provides the vector-symbolic algebra used to encode
// predications: high-dimensional vectors with bind, superpose, and
// normalize operations, plus keyed vector stores and their on-disk codec.
//
// The encoding algorithm is agnostic to the numeric representation; any
// type satisfying Vector can be plugged in as long as Bind is
// deterministic and dimension-preserving and Superpose is a commutative,
// associative weighted accumulation.
package vsa

import (
	"fmt"
	"io"
	"math/rand/v2"
)

// Kind identifies a vector representation type. It is recorded once per
// store header so readers can reconstruct vectors without guessing.
type Kind string

// KindReal is the dense float32 representation with circular-convolution binding.
const KindReal Kind = "real"

// ParseKind validates a vector type name from config or flags.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindReal:
		return KindReal, nil
	default:
		return "", fmt.Errorf("unknown vector type %q", s)
	}
}

// Vector is one high-dimensional vector.
//
// Bind and Superpose mutate the receiver in place. All vectors in one
// build share the configured kind and dimensionality; mixing operands of
// different kind or dims is a programmer error and panics. Shared
// elemental vectors must never be mutated: Copy first, then Bind.
type Vector interface {
	// Kind returns the representation type.
	Kind() Kind
	// Dims returns the dimensionality.
	Dims() int
	// Copy returns an independent deep copy.
	Copy() Vector
	// Bind combines other into the receiver with the representation's
	// binding operator. Deterministic given its operands; the result has
	// the same kind and dims.
	Bind(other Vector)
	// Superpose accumulates weight*other into the receiver. Commutative
	// and associative across calls, so accumulation order never affects
	// the final vector.
	Superpose(other Vector, weight float64)
	// Normalize scales the receiver to unit norm under the
	// representation's canonical norm. The zero vector is left unchanged.
	Normalize()
	// IsZero reports whether the receiver is the zero vector.
	IsZero() bool
	// WriteValues writes the raw coordinate data (no header) to w.
	WriteValues(w io.Writer) error
}

// Zero returns the zero vector of the given kind and dimensionality.
func Zero(kind Kind, dims int) Vector {
	switch kind {
	case KindReal:
		return newRealVector(dims)
	default:
		panic(fmt.Sprintf("vsa: unknown vector kind %q", kind))
	}
}

// Random returns a fresh random elemental vector drawn from rng.
func Random(kind Kind, dims int, rng *rand.Rand) Vector {
	switch kind {
	case KindReal:
		return randomRealVector(dims, rng)
	default:
		panic(fmt.Sprintf("vsa: unknown vector kind %q", kind))
	}
}

// ReadValues reads the raw coordinate data of one vector, the inverse of
// Vector.WriteValues.
func ReadValues(kind Kind, dims int, r io.Reader) (Vector, error) {
	switch kind {
	case KindReal:
		return readRealVector(dims, r)
	default:
		return nil, fmt.Errorf("vsa: unknown vector kind %q", kind)
	}
}
