// Package structs provides generic, self-serializing container types
// (Vector, Matrix) used for literal-backed tensor/coefficient storage
// across the module's schemes and circuits packages, following the same
// buffer-based (de)serialization convention as ring.Poly.
package structs

import (
	"encoding/binary"
	"fmt"
	"math"

	"golang.org/x/exp/constraints"
)

// Numeric is any value representable as a fixed-width binary field, used by
// the fast path in bitsOf/fromBits below.
type Numeric interface {
	constraints.Float | constraints.Integer
}

func bitsOf(v any) (uint64, bool) {
	switch x := v.(type) {
	case float32:
		return math.Float64bits(float64(x)), true
	case float64:
		return math.Float64bits(x), true
	case int:
		return uint64(int64(x)), true
	case int8:
		return uint64(int64(x)), true
	case int16:
		return uint64(int64(x)), true
	case int32:
		return uint64(int64(x)), true
	case int64:
		return uint64(x), true
	case uint:
		return uint64(x), true
	case uint8:
		return uint64(x), true
	case uint16:
		return uint64(x), true
	case uint32:
		return uint64(x), true
	case uint64:
		return x, true
	}
	return 0, false
}

func fromBits[T any](bits uint64) T {
	var zero T
	switch any(zero).(type) {
	case float32:
		return any(float32(math.Float64frombits(bits))).(T)
	case float64:
		return any(math.Float64frombits(bits)).(T)
	case int:
		return any(int(int64(bits))).(T)
	case int8:
		return any(int8(int64(bits))).(T)
	case int16:
		return any(int16(int64(bits))).(T)
	case int32:
		return any(int32(int64(bits))).(T)
	case int64:
		return any(int64(bits)).(T)
	case uint:
		return any(uint(bits)).(T)
	case uint8:
		return any(uint8(bits)).(T)
	case uint16:
		return any(uint16(bits)).(T)
	case uint32:
		return any(uint32(bits)).(T)
	case uint64:
		return any(bits).(T)
	}
	return zero
}

// binaryCodec is implemented by element types (ring.Poly, ring/ringqp.Poly,
// ...) that know how to serialize themselves; Vector/Matrix defer to it
// whenever T isn't one of the fixed-width numeric kinds above.
type binaryCodec interface {
	MarshalBinary() ([]byte, error)
}

type binaryDecoder interface {
	UnmarshalBinary([]byte) error
}

// Vector is a flat, generically-typed value slice with binary
// marshal/unmarshal support. T may be a fixed-width numeric type (encoded
// inline) or any type implementing encoding.BinaryMarshaler/Unmarshaler
// (ring.Poly and ring/ringqp.Poly both qualify).
type Vector[T any] []T

// MarshalBinary encodes the vector as an 8-byte length prefix followed by
// each element: 8 bytes in place for a Numeric T, or a length-prefixed
// element encoding via T's own MarshalBinary otherwise.
func (v Vector[T]) MarshalBinary() ([]byte, error) {
	out := make([]byte, 8)
	binary.BigEndian.PutUint64(out[:8], uint64(len(v)))
	for i := range v {
		x := v[i]
		if bits, ok := bitsOf(any(x)); ok {
			var buf [8]byte
			binary.BigEndian.PutUint64(buf[:], bits)
			out = append(out, buf[:]...)
			continue
		}
		codec, ok := any(x).(binaryCodec)
		if !ok {
			codec, ok = any(&v[i]).(binaryCodec)
		}
		if !ok {
			return nil, fmt.Errorf("structs: vector element type %T is neither numeric nor a BinaryMarshaler", x)
		}
		elemBytes, err := codec.MarshalBinary()
		if err != nil {
			return nil, err
		}
		var lenBuf [8]byte
		binary.BigEndian.PutUint64(lenBuf[:], uint64(len(elemBytes)))
		out = append(out, lenBuf[:]...)
		out = append(out, elemBytes...)
	}
	return out, nil
}

// UnmarshalBinary decodes data produced by MarshalBinary into v.
func (v *Vector[T]) UnmarshalBinary(data []byte) error {
	if len(data) < 8 {
		return fmt.Errorf("structs: vector header truncated")
	}
	n := binary.BigEndian.Uint64(data[:8])
	rest := data[8:]
	out := make(Vector[T], n)

	var zero T
	_, numeric := bitsOf(any(zero))

	for i := range out {
		if numeric {
			if len(rest) < 8 {
				return fmt.Errorf("structs: vector element %d truncated", i)
			}
			out[i] = fromBits[T](binary.BigEndian.Uint64(rest[:8]))
			rest = rest[8:]
			continue
		}
		if len(rest) < 8 {
			return fmt.Errorf("structs: vector element %d header truncated", i)
		}
		elemLen := binary.BigEndian.Uint64(rest[:8])
		rest = rest[8:]
		if uint64(len(rest)) < elemLen {
			return fmt.Errorf("structs: vector element %d truncated", i)
		}
		dec, ok := any(&out[i]).(binaryDecoder)
		if !ok {
			return fmt.Errorf("structs: vector element type %T is neither numeric nor a BinaryUnmarshaler", out[i])
		}
		if err := dec.UnmarshalBinary(rest[:elemLen]); err != nil {
			return err
		}
		rest = rest[elemLen:]
	}
	*v = out
	return nil
}

// Matrix is a row-major, generically-typed 2D value slice with binary
// marshal/unmarshal support. Rows may have differing lengths (ragged).
type Matrix[T any] [][]T

// MarshalBinary encodes the matrix as a row-count prefix followed by each
// row encoded via Vector.MarshalBinary.
func (m Matrix[T]) MarshalBinary() ([]byte, error) {
	out := make([]byte, 8)
	binary.BigEndian.PutUint64(out, uint64(len(m)))
	for _, row := range m {
		rowBytes, err := Vector[T](row).MarshalBinary()
		if err != nil {
			return nil, err
		}
		var lenBuf [8]byte
		binary.BigEndian.PutUint64(lenBuf[:], uint64(len(rowBytes)))
		out = append(out, lenBuf[:]...)
		out = append(out, rowBytes...)
	}
	return out, nil
}

// UnmarshalBinary decodes data produced by MarshalBinary into m.
func (m *Matrix[T]) UnmarshalBinary(data []byte) error {
	if len(data) < 8 {
		return fmt.Errorf("structs: matrix header truncated")
	}
	nRows := binary.BigEndian.Uint64(data[:8])
	rest := data[8:]
	out := make(Matrix[T], nRows)
	for i := range out {
		if len(rest) < 8 {
			return fmt.Errorf("structs: matrix row %d header truncated", i)
		}
		rowLen := binary.BigEndian.Uint64(rest[:8])
		rest = rest[8:]
		if uint64(len(rest)) < rowLen {
			return fmt.Errorf("structs: matrix row %d truncated", i)
		}
		var row Vector[T]
		if err := row.UnmarshalBinary(rest[:rowLen]); err != nil {
			return err
		}
		out[i] = row
		rest = rest[rowLen:]
	}
	*m = out
	return nil
}
