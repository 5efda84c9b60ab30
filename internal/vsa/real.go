package vsa

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"math/rand/v2"

	"github.com/vsalab/predvec/pkg/utils"
)

// RealVector is a dense float32 vector. Bind is circular convolution,
// Superpose is weighted element-wise addition, and the canonical norm is L2.
type RealVector struct {
	values []float32
}

func newRealVector(dims int) *RealVector {
	if dims <= 0 {
		panic("vsa: dims must be positive")
	}
	return &RealVector{values: make([]float32, dims)}
}

// randomRealVector draws each coordinate from a Gaussian scaled by
// 1/sqrt(dims), giving near-unit expected norm and near-zero expected
// similarity between independently drawn vectors.
func randomRealVector(dims int, rng *rand.Rand) *RealVector {
	v := newRealVector(dims)
	scale := 1.0 / math.Sqrt(float64(dims))
	for i := range v.values {
		v.values[i] = float32(rng.NormFloat64() * scale)
	}
	return v
}

func readRealVector(dims int, r io.Reader) (*RealVector, error) {
	v := newRealVector(dims)
	buf := make([]byte, 4*dims)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("read vector values: %w", err)
	}
	for i := range v.values {
		v.values[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4 : (i+1)*4]))
	}
	return v, nil
}

// Kind returns KindReal.
func (v *RealVector) Kind() Kind { return KindReal }

// Dims returns the dimensionality.
func (v *RealVector) Dims() int { return len(v.values) }

// Copy returns an independent deep copy.
func (v *RealVector) Copy() Vector {
	out := &RealVector{values: make([]float32, len(v.values))}
	copy(out.values, v.values)
	return out
}

// Bind replaces the receiver with the circular convolution of the receiver
// and other: out[k] = sum_i v[i]*other[(k-i) mod d]. Deterministic and
// dimension-preserving; distributes over superposition.
func (v *RealVector) Bind(other Vector) {
	o := v.mustSameShape(other, "Bind")
	d := len(v.values)
	out := make([]float32, d)
	for k := 0; k < d; k++ {
		var sum float32
		j := k
		for i := 0; i < d; i++ {
			sum += v.values[i] * o.values[j]
			j--
			if j < 0 {
				j = d - 1
			}
		}
		out[k] = sum
	}
	v.values = out
}

// Superpose accumulates weight*other into the receiver.
func (v *RealVector) Superpose(other Vector, weight float64) {
	o := v.mustSameShape(other, "Superpose")
	w := float32(weight)
	for i := range v.values {
		v.values[i] += w * o.values[i]
	}
}

// Normalize scales to unit L2 norm; the zero vector is left unchanged.
func (v *RealVector) Normalize() {
	utils.NormalizeL2(v.values)
}

// IsZero reports whether every coordinate is exactly zero.
func (v *RealVector) IsZero() bool {
	return utils.IsZero(v.values)
}

// Values returns the backing slice. Callers must not mutate it.
func (v *RealVector) Values() []float32 { return v.values }

// Dot returns the inner product with other.
func (v *RealVector) Dot(other Vector) float64 {
	o := v.mustSameShape(other, "Dot")
	var dot float64
	for i := range v.values {
		dot += float64(v.values[i]) * float64(o.values[i])
	}
	return dot
}

// WriteValues writes the coordinates as little-endian float32.
func (v *RealVector) WriteValues(w io.Writer) error {
	buf := make([]byte, 4*len(v.values))
	for i, f := range v.values {
		binary.LittleEndian.PutUint32(buf[i*4:(i+1)*4], math.Float32bits(f))
	}
	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("write vector values: %w", err)
	}
	return nil
}

func (v *RealVector) mustSameShape(other Vector, op string) *RealVector {
	o, ok := other.(*RealVector)
	if !ok {
		panic(fmt.Sprintf("vsa: %s operand kind mismatch: %s vs %s", op, KindReal, other.Kind()))
	}
	if len(o.values) != len(v.values) {
		panic(fmt.Sprintf("vsa: %s dimension mismatch: %d vs %d", op, len(v.values), len(o.values)))
	}
	return o
}
