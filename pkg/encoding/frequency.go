package encoding

import (
	"fmt"

	"github.com/chewxy/math32"

	"github.com/df07/go-nerf-renderer/pkg/core"
)

// Frequency is the classic sin/cos positional encoding, kept as the
// alternative position encoder for models trained without a hash grid.
// Each input component is expanded with sin and cos at num frequency
// octaves, optionally alongside the raw input.
type Frequency struct {
	levels       int
	includeInput bool
	freqs        []float32
}

// NewFrequency creates a frequency encoder with the given octave count
func NewFrequency(levels int, includeInput bool) (*Frequency, error) {
	if levels < 1 {
		return nil, fmt.Errorf("frequency levels must be >= 1, got %d", levels)
	}

	freqs := make([]float32, levels)
	for i := range freqs {
		freqs[i] = math32.Pow(2, float32(i))
	}
	return &Frequency{levels: levels, includeInput: includeInput, freqs: freqs}, nil
}

// FeatureWidth returns 2*3*levels, plus 3 when the raw input is included
func (f *Frequency) FeatureWidth() int {
	width := 2 * 3 * f.levels
	if f.includeInput {
		width += 3
	}
	return width
}

// Encode writes the frequency expansion of p into out
func (f *Frequency) Encode(p core.Vec3, out []float32) {
	i := 0
	if f.includeInput {
		out[0], out[1], out[2] = p.X, p.Y, p.Z
		i = 3
	}
	for _, freq := range f.freqs {
		out[i] = math32.Sin(p.X * freq)
		out[i+1] = math32.Sin(p.Y * freq)
		out[i+2] = math32.Sin(p.Z * freq)
		out[i+3] = math32.Cos(p.X * freq)
		out[i+4] = math32.Cos(p.Y * freq)
		out[i+5] = math32.Cos(p.Z * freq)
		i += 6
	}
}
