// Package simdops provides the SIMD kernel table used by the fixed-point
// engine and the tap analysis.
//
// Integer-valued operands are carried in float64. As long as every partial
// sum stays below 2^53 in magnitude the vector kernels are exact, whatever
// order they accumulate in, so fixed-point results are bit-exact with a
// scalar integer loop.
package simdops

import (
	"github.com/tphakala/simd/cpu"
	"github.com/tphakala/simd/f64"
)

// Ops provides SIMD-accelerated float64 operations.
type Ops struct {
	// DotProductUnsafe computes the dot product without bounds checking.
	// Use only when slices are guaranteed to have equal length.
	DotProductUnsafe func(a, b []float64) float64

	// Sum returns the sum of all elements.
	Sum func(a []float64) float64
}

var ops64 = Ops{
	DotProductUnsafe: f64.DotProductUnsafe,
	Sum:              f64.Sum,
}

// Float64Ops returns the float64 operations.
func Float64Ops() *Ops {
	return &ops64
}

// Info describes the instruction set the kernels dispatch to.
func Info() string {
	return cpu.Info()
}
