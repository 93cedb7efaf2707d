// Package network holds the compact decoder heads that turn encoded features
// into density and color, plus the read-only parameter blob they load from.
package network

import (
	"github.com/chewxy/math32"
)

// ReLU applies max(0, x) in place
func ReLU(values []float32) {
	for i, v := range values {
		if v < 0 {
			values[i] = 0
		}
	}
}

// Softplus computes log(1 + exp(x)) with the usual overflow guard.
// Large inputs return x directly; exp would overflow float32 well before
// the approximation error matters.
func Softplus(x float32) float32 {
	if x > 20 {
		return x
	}
	return math32.Log1p(math32.Exp(x))
}

// Sigmoid computes 1 / (1 + exp(-x))
func Sigmoid(x float32) float32 {
	return 1 / (1 + math32.Exp(-x))
}
