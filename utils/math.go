package utils

import (
	"reflect"

	"golang.org/x/exp/constraints"
)

// Min returns the smaller of a and b.
func Min[T constraints.Ordered](a, b T) T {
	if a < b {
		return a
	}
	return b
}

// Max returns the larger of a and b.
func Max[T constraints.Ordered](a, b T) T {
	if a > b {
		return a
	}
	return b
}

// GCD returns the greatest common divisor of a and b.
func GCD(a, b uint64) uint64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// Pointy returns a pointer to a copy of v, for constructing optional
// parameter structs (e.g. rlwe.EvaluationKeyParameters) from literals
// inline.
func Pointy[T any](v T) *T { return &v }

// IsNil reports whether i is a nil interface value, or a non-nil interface
// wrapping a nil pointer (the usual Go footgun when an interface-typed
// struct field is populated from a possibly-nil concrete pointer).
func IsNil(i any) bool {
	if i == nil {
		return true
	}
	v := reflect.ValueOf(i)
	switch v.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func, reflect.Interface:
		return v.IsNil()
	default:
		return false
	}
}
