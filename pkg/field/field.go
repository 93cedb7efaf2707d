package field

import (
	"fmt"

	"github.com/df07/go-nerf-renderer/pkg/core"
	"github.com/df07/go-nerf-renderer/pkg/encoding"
	"github.com/df07/go-nerf-renderer/pkg/network"
)

// RadianceField maps world-space positions and view directions to density
// and color by encoding inputs and running the compact decoder heads.
//
// The field borrows its parameter blob read-only: queries never mutate it,
// and concurrent fields may share one blob. The field itself carries scratch
// buffers, so a single instance is not safe for concurrent queries; render
// workers each construct their own field over the shared blob.
type RadianceField struct {
	config    ModelConfig
	bounds    core.Bounds
	position  encoding.Encoder
	direction *encoding.SphericalHarmonics
	density   *network.DensityHead
	color     *network.ColorHead

	posFeatures []float32
	colorInput  []float32
}

// New builds a radiance field from a validated config, scene bounds, and a
// parameter blob. All shape mismatches between config and blob are caught
// here, never at render time.
func New(config ModelConfig, bounds core.Bounds, params *network.Parameters) (*RadianceField, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var position encoding.Encoder
	switch config.Encoding {
	case EncodingHash:
		grid, err := encoding.NewHashGrid(config.HashGrid, params.HashTable)
		if err != nil {
			return nil, fmt.Errorf("building hash grid: %w", err)
		}
		position = grid
	case EncodingFrequency:
		freq, err := encoding.NewFrequency(config.FrequencyLevels, true)
		if err != nil {
			return nil, err
		}
		position = freq
	}

	direction, err := encoding.NewSphericalHarmonics(config.SHDegree)
	if err != nil {
		return nil, err
	}

	density, err := network.NewDensityHead(params.SigmaNetwork, position.FeatureWidth(), config.GeoFeatureDim)
	if err != nil {
		return nil, err
	}
	color, err := network.NewColorHead(params.ColorNetwork, config.colorInputWidth())
	if err != nil {
		return nil, err
	}

	return &RadianceField{
		config:      config,
		bounds:      bounds,
		position:    position,
		direction:   direction,
		density:     density,
		color:       color,
		posFeatures: make([]float32, position.FeatureWidth()),
		colorInput:  make([]float32, config.colorInputWidth()),
	}, nil
}

// Config returns the field's model configuration
func (f *RadianceField) Config() ModelConfig {
	return f.config
}

// Bounds returns the world-space region the field covers
func (f *RadianceField) Bounds() core.Bounds {
	return f.bounds
}

// QueryDensity evaluates density and geometry features at a world-space
// position. The returned slice aliases internal scratch; copy it if it must
// survive the next query.
func (f *RadianceField) QueryDensity(p core.Vec3) (float32, []float32) {
	f.position.Encode(f.bounds.Normalize(p), f.posFeatures)
	return f.density.Forward(f.posFeatures)
}

// QueryColor decodes RGB from geometry features and, when the model is
// view-dependent, the spherical harmonics expansion of the view direction.
// The view-dependence choice is fixed at construction, not re-checked per
// sample beyond this branch.
func (f *RadianceField) QueryColor(geo []float32, dir core.Vec3, rgb *[3]float32) {
	copy(f.colorInput, geo)
	if f.config.UseViewDirs {
		f.direction.Encode(dir, f.colorInput[len(geo):])
	}
	f.color.Forward(f.colorInput, rgb)
}

// EncodePosition exposes the raw position encoding for offline inspection
// and visualization tooling. Allocates; not for the hot path.
func (f *RadianceField) EncodePosition(world core.Vec3) []float32 {
	out := make([]float32, f.position.FeatureWidth())
	f.position.Encode(f.bounds.Normalize(world), out)
	return out
}

// EncodeDirection exposes the raw direction encoding for tooling
func (f *RadianceField) EncodeDirection(dir core.Vec3) []float32 {
	out := make([]float32, f.direction.FeatureWidth())
	f.direction.Encode(dir, out)
	return out
}
