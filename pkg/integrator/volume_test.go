package integrator

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/df07/go-nerf-renderer/pkg/core"
)

// uniformSlab builds a densely sampled constant-density medium over [0, depth]
func uniformSlab(density float32, depth float32, count int) (densities, distances []float32) {
	densities = make([]float32, count)
	distances = make([]float32, count)
	for i := range densities {
		densities[i] = density
		distances[i] = depth * float32(i) / float32(count)
	}
	return densities, distances
}

func TestComputeWeights_UniformSlabMatchesAnalytic(t *testing.T) {
	// A constant-density slab absorbs 1-exp(-rho*d) of the light. The discrete
	// weights must sum to that within tolerance when sampled densely. The last
	// sample's unbounded interval is excluded by capping the slab with a zero
	// density sample at the exit plane.
	density, depth := float32(2.0), float32(1.0)
	densities, distances := uniformSlab(density, depth, 512)
	densities = append(densities, 0)
	distances = append(distances, depth)

	weights := ComputeWeights(densities, distances, core.ModeTraining)

	var total float32
	for _, w := range weights {
		total += w
	}
	expected := 1 - math32.Exp(-density*depth)
	assert.InDelta(t, expected, total, 1e-3)
}

func TestComputeWeights_EmptySpaceIsWeightless(t *testing.T) {
	densities := []float32{0, 0, 0, 0}
	distances := []float32{0, 1, 2, 3}

	weights := ComputeWeights(densities, distances, core.ModeInference)

	for i, w := range weights {
		assert.Equal(t, float32(0), w, "zero density must produce zero weight at sample %d", i)
	}
}

func TestComputeWeights_TransmittanceMonotone(t *testing.T) {
	densities := []float32{0.5, 1.5, 0.2, 3.0, 0.7}
	distances := []float32{0, 0.5, 1.0, 1.5, 2.0}

	weights := ComputeWeights(densities, distances, core.ModeTraining)

	// Reconstruct per-sample transmittance T_i = w_i / alpha_i and check it
	// never increases along the ray.
	prev := float32(1)
	for i, w := range weights {
		delta := float32(deltaSentinel)
		if i+1 < len(distances) {
			delta = distances[i+1] - distances[i]
		}
		alpha := 1 - math32.Exp(-densities[i]*delta)
		transmittance := w / alpha
		assert.LessOrEqual(t, transmittance, prev+1e-6, "transmittance rose at sample %d", i)
		prev = transmittance
	}
}

func TestComputeWeights_InferenceEarlyTermination(t *testing.T) {
	// An opaque wall up front: later samples cannot matter. Inference mode
	// zeroes them; training mode still assigns them (tiny) weights.
	densities := []float32{100, 1, 1, 1}
	distances := []float32{0, 1, 2, 3}

	inference := ComputeWeights(densities, distances, core.ModeInference)
	for i := 1; i < len(inference); i++ {
		assert.Equal(t, float32(0), inference[i], "sample %d past an opaque wall should be skipped", i)
	}

	training := ComputeWeights(densities, distances, core.ModeTraining)
	assert.Greater(t, training[1], float32(0), "training mode must keep all samples")
}

func TestComputeWeights_EarlyTerminationWithinTolerance(t *testing.T) {
	// Cutting off at low transmittance may only perturb the composite below
	// the cutoff threshold itself.
	densities := []float32{3, 3, 3, 3, 3, 3, 3, 3}
	distances := []float32{0, 0.5, 1, 1.5, 2, 2.5, 3, 3.5}

	inference := ComputeWeights(densities, distances, core.ModeInference)
	training := ComputeWeights(densities, distances, core.ModeTraining)

	var diff float32
	for i := range training {
		diff += math32.Abs(training[i] - inference[i])
	}
	assert.Less(t, diff, float32(1e-3))
}

func TestIntegrate_EmptySceneShowsBackground(t *testing.T) {
	densities := []float32{0, 0, 0}
	distances := []float32{0, 1, 2}
	colors := []core.Vec3{
		core.NewVec3(1, 0, 0),
		core.NewVec3(0, 1, 0),
		core.NewVec3(0, 0, 1),
	}
	background := core.NewVec3(0.2, 0.4, 0.6)

	result := Integrate(colors, densities, distances, background, core.ModeInference)

	assert.Equal(t, float32(0), result.Alpha)
	assert.InDelta(t, 0.2, result.Color.X, 1e-6)
	assert.InDelta(t, 0.4, result.Color.Y, 1e-6)
	assert.InDelta(t, 0.6, result.Color.Z, 1e-6)
}

func TestIntegrate_OpaqueMediumIgnoresBackground(t *testing.T) {
	// Density high enough that the ray saturates: alpha ~ 1 and the white
	// background contributes nothing.
	densities := []float32{50, 50, 50}
	distances := []float32{0, 0.5, 1}
	red := core.NewVec3(1, 0, 0)
	colors := []core.Vec3{red, red, red}

	result := Integrate(colors, densities, distances, core.NewVec3(1, 1, 1), core.ModeTraining)

	assert.InDelta(t, 1.0, float64(result.Alpha), 1e-3)
	assert.InDelta(t, 1.0, float64(result.Color.X), 1e-3)
	assert.InDelta(t, 0.0, float64(result.Color.Y), 1e-3)
	assert.InDelta(t, 0.0, float64(result.Color.Z), 1e-3)
}

func TestIntegrate_ColorConservation(t *testing.T) {
	// With all sample colors white and a white background, the composite must
	// be exactly white for any density profile: weights plus the background
	// remainder always spend the full alpha budget.
	densities := []float32{0.3, 2.0, 0.05, 1.2}
	distances := []float32{0.5, 1.0, 1.5, 2.0}
	white := core.NewVec3(1, 1, 1)
	colors := []core.Vec3{white, white, white, white}

	result := Integrate(colors, densities, distances, white, core.ModeTraining)

	assert.InDelta(t, 1.0, float64(result.Color.X), 1e-5)
	assert.InDelta(t, 1.0, float64(result.Color.Y), 1e-5)
	assert.InDelta(t, 1.0, float64(result.Color.Z), 1e-5)
}

func TestIntegrate_BlackBackgroundIsNoOp(t *testing.T) {
	densities := []float32{1, 1}
	distances := []float32{0, 1}
	colors := []core.Vec3{core.NewVec3(0.5, 0.5, 0.5), core.NewVec3(0.5, 0.5, 0.5)}

	withBlack := Integrate(colors, densities, distances, core.NewVec3(0, 0, 0), core.ModeTraining)

	require.Greater(t, withBlack.Alpha, float32(0))
	// Composite equals the weighted sample colors alone
	var expected core.Vec3
	weights := ComputeWeights(densities, distances, core.ModeTraining)
	for i, w := range weights {
		expected = expected.Add(colors[i].Multiply(w))
	}
	assert.InDelta(t, float64(expected.X), float64(withBlack.Color.X), 1e-6)
}
