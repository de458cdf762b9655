// Package column defines the typed buffers exchanged with the engine API.
//
// A [Column] is a borrowed, typed, one-dimensional array: element type,
// length and the backing slice. Topology buffers (edge endpoints, CSR
// offsets and indices) must be integral; weights and rank vectors must be
// floating point. Accessors fail with UNSUPPORTED_TYPE instead of silently
// converting between kinds.
//
// Constructors never copy. The caller keeps ownership of the slice and must
// not modify it while an engine call that borrowed it is running.
package column

import (
	"math"

	"github.com/matzehuels/parallax/pkg/errors"
)

// DType is the element type of a column.
type DType int

const (
	Invalid DType = iota
	Int32
	Int64
	Float32
	Float64
)

var dtypeNames = map[DType]string{
	Invalid: "invalid",
	Int32:   "int32",
	Int64:   "int64",
	Float32: "float32",
	Float64: "float64",
}

// String returns the lowercase type name.
func (t DType) String() string {
	if s, ok := dtypeNames[t]; ok {
		return s
	}
	return "invalid"
}

// IsIntegral reports whether t holds integers.
func (t DType) IsIntegral() bool { return t == Int32 || t == Int64 }

// IsFloating reports whether t holds floating-point values.
func (t DType) IsFloating() bool { return t == Float32 || t == Float64 }

// Column is a typed view over a caller-owned slice.
// The zero value is an empty column of type Invalid.
type Column struct {
	dtype DType
	i32   []int32
	i64   []int64
	f32   []float32
	f64   []float64
}

// FromInt32 wraps v without copying.
func FromInt32(v []int32) Column { return Column{dtype: Int32, i32: v} }

// FromInt64 wraps v without copying.
func FromInt64(v []int64) Column { return Column{dtype: Int64, i64: v} }

// FromFloat32 wraps v without copying.
func FromFloat32(v []float32) Column { return Column{dtype: Float32, f32: v} }

// FromFloat64 wraps v without copying.
func FromFloat64(v []float64) Column { return Column{dtype: Float64, f64: v} }

// Type returns the element type.
func (c Column) Type() DType { return c.dtype }

// Len returns the number of elements.
func (c Column) Len() int {
	switch c.dtype {
	case Int32:
		return len(c.i32)
	case Int64:
		return len(c.i64)
	case Float32:
		return len(c.f32)
	case Float64:
		return len(c.f64)
	}
	return 0
}

func (c Column) mismatch(want DType) error {
	return errors.New(errors.ErrCodeUnsupportedType, "column has element type %s, want %s", c.dtype, want)
}

// Int32s returns the backing slice of an Int32 column.
func (c Column) Int32s() ([]int32, error) {
	if c.dtype != Int32 {
		return nil, c.mismatch(Int32)
	}
	return c.i32, nil
}

// Int64s returns the backing slice of an Int64 column.
func (c Column) Int64s() ([]int64, error) {
	if c.dtype != Int64 {
		return nil, c.mismatch(Int64)
	}
	return c.i64, nil
}

// Float32s returns the backing slice of a Float32 column.
func (c Column) Float32s() ([]float32, error) {
	if c.dtype != Float32 {
		return nil, c.mismatch(Float32)
	}
	return c.f32, nil
}

// Float64s returns the backing slice of a Float64 column.
func (c Column) Float64s() ([]float64, error) {
	if c.dtype != Float64 {
		return nil, c.mismatch(Float64)
	}
	return c.f64, nil
}

// AsVertexIDs returns the column as int32 vertex ids. Int32 columns are
// returned as-is; Int64 columns are narrowed into a new slice and fail with
// INVALID_ARGUMENT if a value does not fit. Floating columns are rejected.
func AsVertexIDs(c Column) ([]int32, error) {
	switch c.dtype {
	case Int32:
		return c.i32, nil
	case Int64:
		out := make([]int32, len(c.i64))
		for i, v := range c.i64 {
			if v < math.MinInt32 || v > math.MaxInt32 {
				return nil, errors.New(errors.ErrCodeInvalidArgument, "vertex id %d at position %d does not fit in int32", v, i)
			}
			out[i] = int32(v)
		}
		return out, nil
	}
	return nil, errors.New(errors.ErrCodeUnsupportedType, "vertex ids must be integral, got %s", c.dtype)
}

// AsOffsets returns the column as int64 CSR offsets. Int32 columns are
// widened into a new slice.
func AsOffsets(c Column) ([]int64, error) {
	switch c.dtype {
	case Int64:
		return c.i64, nil
	case Int32:
		out := make([]int64, len(c.i32))
		for i, v := range c.i32 {
			out[i] = int64(v)
		}
		return out, nil
	}
	return nil, errors.New(errors.ErrCodeUnsupportedType, "offsets must be integral, got %s", c.dtype)
}

// AsWeights returns the column as float64 values. Float32 columns are
// widened into a new slice; integral columns are rejected.
func AsWeights(c Column) ([]float64, error) {
	switch c.dtype {
	case Float64:
		return c.f64, nil
	case Float32:
		out := make([]float64, len(c.f32))
		for i, v := range c.f32 {
			out[i] = float64(v)
		}
		return out, nil
	}
	return nil, errors.New(errors.ErrCodeUnsupportedType, "weights must be floating point, got %s", c.dtype)
}
