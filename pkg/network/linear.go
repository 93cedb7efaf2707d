package network

import (
	"fmt"
)

// Linear is one dense layer: out = W·in + b. Weights are a read-only view
// into the parameter blob; Forward never mutates them.
type Linear struct {
	weight [][]float32 // [outDim][inDim]
	bias   []float32   // [outDim]
}

// NewLinear wraps weight and bias arrays after validating their shapes
func NewLinear(weight [][]float32, bias []float32) (*Linear, error) {
	if len(weight) == 0 {
		return nil, fmt.Errorf("linear layer has no output rows")
	}
	if len(bias) != len(weight) {
		return nil, fmt.Errorf("bias length %d does not match %d output rows", len(bias), len(weight))
	}
	inDim := len(weight[0])
	for row, w := range weight {
		if len(w) != inDim {
			return nil, fmt.Errorf("weight row %d has %d columns, want %d", row, len(w), inDim)
		}
	}
	return &Linear{weight: weight, bias: bias}, nil
}

// InDim returns the layer's input width
func (l *Linear) InDim() int {
	return len(l.weight[0])
}

// OutDim returns the layer's output width
func (l *Linear) OutDim() int {
	return len(l.weight)
}

// Forward computes W·in + b into out. out must have length OutDim().
func (l *Linear) Forward(in, out []float32) {
	for row, w := range l.weight {
		sum := l.bias[row]
		for col, x := range in {
			sum += w[col] * x
		}
		out[row] = sum
	}
}
