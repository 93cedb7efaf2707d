// Package field assembles encoders and decoder heads into a queryable
// radiance field.
package field

import (
	"fmt"

	"github.com/df07/go-nerf-renderer/pkg/encoding"
)

// Position encoding variants. Chosen once at construction; the two variants
// are independent Encoder implementations, not a hierarchy.
const (
	EncodingHash      = "hash"
	EncodingFrequency = "frequency"
)

// ModelConfig describes a field's architecture. Width and depth are
// configuration, not architecture: the heads stay small by design to meet
// the per-frame latency budget on constrained hardware.
type ModelConfig struct {
	Encoding        string                  // EncodingHash or EncodingFrequency
	HashGrid        encoding.HashGridConfig // used when Encoding == EncodingHash
	FrequencyLevels int                     // used when Encoding == EncodingFrequency
	GeoFeatureDim   int                     // geometry features handed to the color head
	NetworkWidth    int                     // hidden width of both heads
	SHDegree        int                     // direction encoding degree
	UseViewDirs     bool                    // view-dependent color, fixed per model
}

// DefaultModelConfig mirrors the reference Instant-NGP configuration
func DefaultModelConfig() ModelConfig {
	return ModelConfig{
		Encoding: EncodingHash,
		HashGrid: encoding.HashGridConfig{
			Levels:         16,
			BaseResolution: 16,
			MaxResolution:  2048,
			Log2TableSize:  19,
			FeatureDim:     2,
		},
		FrequencyLevels: 10,
		GeoFeatureDim:   15,
		NetworkWidth:    64,
		SHDegree:        4,
		UseViewDirs:     true,
	}
}

// Validate rejects unusable configurations at construction time
func (c ModelConfig) Validate() error {
	switch c.Encoding {
	case EncodingHash:
		if err := c.HashGrid.Validate(); err != nil {
			return err
		}
	case EncodingFrequency:
		if c.FrequencyLevels < 1 {
			return fmt.Errorf("frequency levels must be >= 1, got %d", c.FrequencyLevels)
		}
	default:
		return fmt.Errorf("unknown encoding %q", c.Encoding)
	}

	if c.GeoFeatureDim < 1 {
		return fmt.Errorf("geometry feature dim must be >= 1, got %d", c.GeoFeatureDim)
	}
	if c.NetworkWidth < 1 {
		return fmt.Errorf("network width must be >= 1, got %d", c.NetworkWidth)
	}
	if c.SHDegree < 0 || c.SHDegree > 4 {
		return fmt.Errorf("spherical harmonics degree must be in [0,4], got %d", c.SHDegree)
	}
	return nil
}

// positionWidth returns the position encoder's feature width
func (c ModelConfig) positionWidth() int {
	if c.Encoding == EncodingFrequency {
		return 3 + 2*3*c.FrequencyLevels
	}
	return c.HashGrid.Levels * c.HashGrid.FeatureDim
}

// directionWidth returns the direction encoder's feature width
func (c ModelConfig) directionWidth() int {
	return (c.SHDegree + 1) * (c.SHDegree + 1)
}

// colorInputWidth returns the color head's input width
func (c ModelConfig) colorInputWidth() int {
	if c.UseViewDirs {
		return c.GeoFeatureDim + c.directionWidth()
	}
	return c.GeoFeatureDim
}

// SigmaLayerDims returns the density head's layer widths, input to output.
// Used when initializing an untrained parameter blob.
func (c ModelConfig) SigmaLayerDims() []int {
	return []int{c.positionWidth(), c.NetworkWidth, 1 + c.GeoFeatureDim}
}

// ColorLayerDims returns the color head's layer widths, input to output
func (c ModelConfig) ColorLayerDims() []int {
	return []int{c.colorInputWidth(), c.NetworkWidth, c.NetworkWidth, 3}
}
