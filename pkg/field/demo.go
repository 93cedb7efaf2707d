package field

import (
	"github.com/chewxy/math32"

	"github.com/df07/go-nerf-renderer/pkg/encoding"
	"github.com/df07/go-nerf-renderer/pkg/network"
)

// demoFeatureGain scales each occupancy feature into the raw density channel.
// With the -4 output bias, one fully occupied level sits at the decision
// boundary: a single aliased cell reads as faint fog, never a solid speck.
const demoFeatureGain = 2.0

// demoMaxLoadFactor caps table occupancy for the levels the demo writes.
// Denser levels would alias most of their cells and speckle the empty space.
const demoMaxLoadFactor = 16

// DemoParameters builds a hand-crafted parameter blob that renders a solid
// sphere without any training, so the repo produces a visible image out of
// the box.
//
// Occupancy of a centered sphere is written into the hash tables, but only at
// levels whose lattice fills at most 1/16 of the table; the skipped fine
// levels contribute nothing. Colliding cells keep the larger occupancy, so
// collisions can only thicken the sphere, never punch holes in it. The
// density head is wired to pass the summed features through, and the color
// head decodes a constant color from its bias alone.
func DemoParameters(config ModelConfig) *network.Parameters {
	p := &network.Parameters{}

	grid := config.HashGrid
	tableSize := grid.TableSize()
	resolutions := encoding.LevelResolutions(grid.Levels, grid.BaseResolution, grid.MaxResolution)

	p.HashTable = make([][]float32, grid.Levels)
	for level, resolution := range resolutions {
		table := make([]float32, tableSize*grid.FeatureDim)
		p.HashTable[level] = table

		if resolution*resolution*resolution*demoMaxLoadFactor > tableSize {
			continue // too much aliasing, leave the level empty
		}

		for cz := 0; cz < resolution; cz++ {
			for cy := 0; cy < resolution; cy++ {
				for cx := 0; cx < resolution; cx++ {
					o := sphereOccupancy(
						float32(cx)/float32(resolution-1),
						float32(cy)/float32(resolution-1),
						float32(cz)/float32(resolution-1))

					base := encoding.HashIndex(cx, cy, cz, tableSize) * grid.FeatureDim
					for f := 0; f < grid.FeatureDim; f++ {
						if o > table[base+f] {
							table[base+f] = o
						}
					}
				}
			}
		}
	}

	p.SigmaNetwork = demoSigmaStack(config.SigmaLayerDims())
	p.ColorNetwork = demoColorStack(config.ColorLayerDims())
	return p
}

// sphereOccupancy is 1 inside a centered sphere, 0 outside, with a thin
// linear falloff so trilinear interpolation yields a smooth shell
func sphereOccupancy(x, y, z float32) float32 {
	const radius = 0.35
	const falloff = 0.03

	dx, dy, dz := x-0.5, y-0.5, z-0.5
	d := math32.Sqrt(dx*dx + dy*dy + dz*dz)

	switch {
	case d <= radius:
		return 1
	case d >= radius+falloff:
		return 0
	default:
		return (radius + falloff - d) / falloff
	}
}

// demoSigmaStack wires the density head so the raw density channel is the
// scaled sum of all input features: full occupancy maps well above the
// softplus shift, empty space well below it.
func demoSigmaStack(dims []int) []network.LayerParams {
	layers := zeroStack(dims)

	// First hidden unit accumulates every input feature
	first := layers[0]
	for col := range first.Weight[0] {
		first.Weight[0][col] = demoFeatureGain
	}

	// Remaining layers forward that accumulator into the density channel.
	// The final bias pushes empty space firmly below the softplus shift.
	for i := 1; i < len(layers); i++ {
		layers[i].Weight[0][0] = 1
	}
	layers[len(layers)-1].Bias[0] = -4

	return layers
}

// demoColorStack decodes a constant warm color from the output bias alone
func demoColorStack(dims []int) []network.LayerParams {
	layers := zeroStack(dims)
	last := layers[len(layers)-1]

	// sigmoid(bias) picks the channel value directly
	last.Bias[0] = 1.4  // ~0.80
	last.Bias[1] = 0.2  // ~0.55
	last.Bias[2] = -0.8 // ~0.31

	return layers
}

// zeroStack builds all-zero layers chaining dims[0] -> ... -> dims[n-1]
func zeroStack(dims []int) []network.LayerParams {
	var layers []network.LayerParams
	for i := 0; i+1 < len(dims); i++ {
		in, out := dims[i], dims[i+1]
		weight := make([][]float32, out)
		for row := range weight {
			weight[row] = make([]float32, in)
		}
		layers = append(layers, network.LayerParams{Weight: weight, Bias: make([]float32, out)})
	}
	return layers
}
