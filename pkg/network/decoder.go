package network

import (
	"fmt"
)

// densityBiasShift biases the untrained network toward near-zero density,
// so unseen space renders as empty rather than fog.
const densityBiasShift = 1.0

// DensityHead maps encoded position features to a non-negative density plus
// a geometry feature vector consumed by the color head.
type DensityHead struct {
	layers  []*Linear
	geoDim  int
	scratch [][]float32 // per-layer output buffers, reused across calls
}

// NewDensityHead builds the density head from per-layer parameters.
// The last layer must emit 1 (raw density) + geoDim outputs.
func NewDensityHead(params []LayerParams, inDim, geoDim int) (*DensityHead, error) {
	layers, err := buildStack("density", params, inDim, 1+geoDim)
	if err != nil {
		return nil, err
	}

	head := &DensityHead{layers: layers, geoDim: geoDim}
	for _, layer := range layers {
		head.scratch = append(head.scratch, make([]float32, layer.OutDim()))
	}
	return head, nil
}

// GeoDim returns the geometry feature width
func (h *DensityHead) GeoDim() int {
	return h.geoDim
}

// Forward runs the stack and returns (density, geometry features).
// A shifted softplus keeps density non-negative and biased toward empty
// space. The returned slice aliases internal scratch; copy before reuse.
func (h *DensityHead) Forward(features []float32) (float32, []float32) {
	out := runStack(h.layers, h.scratch, features)
	density := Softplus(out[0] - densityBiasShift)
	return density, out[1:]
}

// ColorHead maps geometry features (optionally concatenated with direction
// features) to an RGB color in [0,1]³.
type ColorHead struct {
	layers  []*Linear
	scratch [][]float32
}

// NewColorHead builds the color head from per-layer parameters
func NewColorHead(params []LayerParams, inDim int) (*ColorHead, error) {
	layers, err := buildStack("color", params, inDim, 3)
	if err != nil {
		return nil, err
	}

	head := &ColorHead{layers: layers}
	for _, layer := range layers {
		head.scratch = append(head.scratch, make([]float32, layer.OutDim()))
	}
	return head, nil
}

// InDim returns the expected input width
func (h *ColorHead) InDim() int {
	return h.layers[0].InDim()
}

// Forward runs the stack and writes sigmoid-bounded RGB into rgb
func (h *ColorHead) Forward(features []float32, rgb *[3]float32) {
	out := runStack(h.layers, h.scratch, features)
	rgb[0] = Sigmoid(out[0])
	rgb[1] = Sigmoid(out[1])
	rgb[2] = Sigmoid(out[2])
}

// buildStack wraps layer parameters into Linear layers and validates that
// widths chain correctly from inDim to outDim. Shape mismatches are fatal
// at construction, never deferred to render time.
func buildStack(name string, params []LayerParams, inDim, outDim int) ([]*Linear, error) {
	if len(params) == 0 {
		return nil, fmt.Errorf("%s head has no layers", name)
	}

	layers := make([]*Linear, 0, len(params))
	width := inDim
	for i, p := range params {
		layer, err := NewLinear(p.Weight, p.Bias)
		if err != nil {
			return nil, fmt.Errorf("%s head layer %d: %w", name, i, err)
		}
		if layer.InDim() != width {
			return nil, fmt.Errorf("%s head layer %d expects input %d, got %d", name, i, layer.InDim(), width)
		}
		width = layer.OutDim()
		layers = append(layers, layer)
	}
	if width != outDim {
		return nil, fmt.Errorf("%s head outputs %d values, want %d", name, width, outDim)
	}
	return layers, nil
}

// runStack applies the layer chain with ReLU between layers (none after the
// last; the heads apply their own output activations).
func runStack(layers []*Linear, scratch [][]float32, in []float32) []float32 {
	x := in
	for i, layer := range layers {
		out := scratch[i]
		layer.Forward(x, out)
		if i < len(layers)-1 {
			ReLU(out)
		}
		x = out
	}
	return x
}
