package encoding

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/df07/go-nerf-renderer/pkg/core"
)

func TestNewSphericalHarmonics_DegreeBounds(t *testing.T) {
	for degree := 0; degree <= 4; degree++ {
		sh, err := NewSphericalHarmonics(degree)
		require.NoError(t, err)
		assert.Equal(t, (degree+1)*(degree+1), sh.FeatureWidth())
	}

	_, err := NewSphericalHarmonics(-1)
	assert.Error(t, err)
	_, err = NewSphericalHarmonics(5)
	assert.Error(t, err)
}

func TestSphericalHarmonics_DegreeZeroConstant(t *testing.T) {
	sh, err := NewSphericalHarmonics(0)
	require.NoError(t, err)

	out := make([]float32, 1)
	for _, dir := range []core.Vec3{
		core.NewVec3(1, 0, 0),
		core.NewVec3(0, -1, 0),
		core.NewVec3(0.3, 0.5, -0.8),
	} {
		sh.Encode(dir, out)
		assert.InDelta(t, 0.28209479, out[0], 1e-6, "degree 0 is constant over all directions")
	}
}

func TestSphericalHarmonics_ScaleInvariant(t *testing.T) {
	sh, err := NewSphericalHarmonics(4)
	require.NoError(t, err)

	dir := core.NewVec3(0.2, -0.7, 0.4)
	unit := make([]float32, sh.FeatureWidth())
	scaled := make([]float32, sh.FeatureWidth())
	sh.Encode(dir, unit)
	sh.Encode(dir.Multiply(5), scaled)

	for i := range unit {
		assert.InDelta(t, unit[i], scaled[i], 1e-5, "component %d changed with input scale", i)
	}
}

func TestSphericalHarmonics_KnownValues(t *testing.T) {
	sh, err := NewSphericalHarmonics(2)
	require.NoError(t, err)

	// +z axis: degree-1 terms vanish except the z one, and the quadratic
	// zonal term hits its closed-form value.
	out := make([]float32, sh.FeatureWidth())
	sh.Encode(core.NewVec3(0, 0, 1), out)

	assert.InDelta(t, 0.28209479, out[0], 1e-6)
	assert.InDelta(t, 0, out[1], 1e-6)
	assert.InDelta(t, 0.48860251, out[2], 1e-6)
	assert.InDelta(t, 0, out[3], 1e-6)
	assert.InDelta(t, 0.31539157*2, out[6], 1e-6) // 3z²-1 = 2
	assert.InDelta(t, 0, out[8], 1e-6)            // x²-y² = 0
}

func TestSphericalHarmonics_DegenerateDirection(t *testing.T) {
	sh, err := NewSphericalHarmonics(4)
	require.NoError(t, err)

	// The zero direction is floored during normalization; outputs must stay finite
	out := make([]float32, sh.FeatureWidth())
	sh.Encode(core.NewVec3(0, 0, 0), out)

	for i, v := range out {
		assert.False(t, v != v, "component %d is NaN", i)
	}
}

func TestFrequency_FeatureWidth(t *testing.T) {
	f, err := NewFrequency(10, true)
	require.NoError(t, err)
	assert.Equal(t, 63, f.FeatureWidth())

	f, err = NewFrequency(4, false)
	require.NoError(t, err)
	assert.Equal(t, 24, f.FeatureWidth())

	_, err = NewFrequency(0, true)
	assert.Error(t, err)
}

func TestFrequency_Encode(t *testing.T) {
	f, err := NewFrequency(2, true)
	require.NoError(t, err)

	p := core.NewVec3(0.5, 0, -1)
	out := make([]float32, f.FeatureWidth())
	f.Encode(p, out)

	// Raw input leads the output
	assert.Equal(t, p.X, out[0])
	assert.Equal(t, p.Y, out[1])
	assert.Equal(t, p.Z, out[2])

	// First octave: sin(x), cos(x) at frequency 1
	assert.InDelta(t, 0.4794255, out[3], 1e-6) // sin(0.5)
	assert.InDelta(t, 0, out[4], 1e-6)         // sin(0)
	assert.InDelta(t, 0.8775826, out[6], 1e-6) // cos(0.5)
}
