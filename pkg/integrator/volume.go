// Package integrator converts sorted per-ray (density, color, distance)
// samples into composited colors via transmittance-weighted accumulation.
package integrator

import (
	"github.com/chewxy/math32"

	"github.com/df07/go-nerf-renderer/pkg/core"
)

// deltaSentinel stands in for the unbounded last interval: the ray is
// modeled as extending to infinity past the final sample.
const deltaSentinel = 1e10

// transmittanceCutoff is the early-termination threshold. Once the light
// surviving to a sample drops below this, the remaining samples cannot
// change the result beyond tolerance and are skipped in inference mode.
const transmittanceCutoff = 1e-3

// ComputeWeights returns the per-sample compositing weights
// w_i = alpha_i * T_i for one ray, where alpha_i = 1 - exp(-density_i *
// delta_i) and T_i is the transmittance through all preceding samples.
//
// Distances must be ascending. This single routine serves both call sites:
// the sampler's importance distribution and the final color accumulation.
// In inference mode samples past the transmittance cutoff get zero weight;
// training mode keeps every sample so gradients can flow through all of them.
func ComputeWeights(densities, distances []float32, mode core.RenderMode) []float32 {
	weights := make([]float32, len(densities))
	transmittance := float32(1)

	for i, density := range densities {
		delta := float32(deltaSentinel)
		if i+1 < len(distances) {
			delta = distances[i+1] - distances[i]
		}

		alpha := 1 - math32.Exp(-density*delta)
		weights[i] = alpha * transmittance
		transmittance *= 1 - alpha

		if mode == core.ModeInference && transmittance < transmittanceCutoff {
			break // remaining weights stay zero
		}
	}
	return weights
}

// Integrate composites one ray's sorted samples into a final RGBA value.
// Accumulated alpha is the total weight; if the scene specifies a background
// color, the unabsorbed remainder of the alpha budget is filled with it.
func Integrate(colors []core.Vec3, densities, distances []float32, background core.Vec3, mode core.RenderMode) core.RenderResult {
	weights := ComputeWeights(densities, distances, mode)

	var rgb core.Vec3
	var alpha float32
	for i, w := range weights {
		if w == 0 {
			continue
		}
		rgb = rgb.Add(colors[i].Multiply(w))
		alpha += w
	}

	rgb = rgb.Add(background.Multiply(1 - alpha))
	return core.RenderResult{Color: rgb, Alpha: alpha}
}
