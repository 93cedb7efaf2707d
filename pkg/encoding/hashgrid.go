package encoding

import (
	"fmt"

	"github.com/chewxy/math32"

	"github.com/df07/go-nerf-renderer/pkg/core"
)

// Spatial hash primes. The first is 1 so that levels whose grid fits inside
// the table get identity-like addressing; the larger two deliberately alias
// once resolution³ exceeds the table size. Colliding cells share a learned
// feature, an accepted memory/quality tradeoff rather than an error.
const (
	hashPrimeX uint32 = 1
	hashPrimeY uint32 = 2654435761
	hashPrimeZ uint32 = 805459861
)

// HashGridConfig holds construction parameters for the multiresolution
// hash encoding.
type HashGridConfig struct {
	Levels         int // Number of resolution levels
	BaseResolution int // Grid resolution of the coarsest level
	MaxResolution  int // Resolution cap for the finest level
	Log2TableSize  int // Hash table size is 2^Log2TableSize per level
	FeatureDim     int // Feature width stored per table entry
}

// Validate rejects unusable configurations eagerly, at construction time
func (c HashGridConfig) Validate() error {
	if c.Levels < 1 {
		return fmt.Errorf("hash grid levels must be >= 1, got %d", c.Levels)
	}
	if c.BaseResolution < 2 {
		return fmt.Errorf("base resolution must be >= 2, got %d", c.BaseResolution)
	}
	if c.MaxResolution < c.BaseResolution {
		return fmt.Errorf("max resolution %d below base resolution %d", c.MaxResolution, c.BaseResolution)
	}
	if c.Log2TableSize < 1 || c.Log2TableSize > 30 {
		return fmt.Errorf("log2 table size must be in [1,30], got %d", c.Log2TableSize)
	}
	if c.FeatureDim < 1 {
		return fmt.Errorf("feature dim must be >= 1, got %d", c.FeatureDim)
	}
	return nil
}

// TableSize returns the per-level hash table entry count (always a power of two)
func (c HashGridConfig) TableSize() int {
	return 1 << c.Log2TableSize
}

// HashGrid is the multiresolution hash encoder. Each level scales the input
// onto a lattice, hashes the surrounding 8 corners into a per-level feature
// table, and trilinearly interpolates the corner features. Per-level outputs
// are concatenated. Lookups are pure reads: tables are owned by the external
// trainer and must not be mutated during a render call.
type HashGrid struct {
	config      HashGridConfig
	resolutions []int       // Per-level lattice resolution, non-decreasing
	tables      [][]float32 // Per-level feature table, each TableSize*FeatureDim long
}

// NewHashGrid creates a hash grid encoder over the given per-level tables.
// Tables are borrowed, not copied: the caller (parameter blob owner) keeps
// ownership and may swap contents between render calls.
func NewHashGrid(config HashGridConfig, tables [][]float32) (*HashGrid, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if len(tables) != config.Levels {
		return nil, fmt.Errorf("expected %d level tables, got %d", config.Levels, len(tables))
	}
	wantLen := config.TableSize() * config.FeatureDim
	for level, table := range tables {
		if len(table) != wantLen {
			return nil, fmt.Errorf("level %d table has %d entries, want %d", level, len(table), wantLen)
		}
	}

	return &HashGrid{
		config:      config,
		resolutions: LevelResolutions(config.Levels, config.BaseResolution, config.MaxResolution),
		tables:      tables,
	}, nil
}

// LevelResolutions computes the geometric resolution progression
// N_l = floor(base * b^l) clamped to max, where the growth factor b spreads
// the levels evenly between base and max resolution.
func LevelResolutions(levels, base, max int) []int {
	resolutions := make([]int, levels)
	growth := float32(1)
	if levels > 1 {
		growth = math32.Exp((math32.Log(float32(max)) - math32.Log(float32(base))) / float32(levels-1))
	}

	for level := 0; level < levels; level++ {
		resolution := int(float32(base) * math32.Pow(growth, float32(level)))
		if resolution > max {
			resolution = max
		}
		resolutions[level] = resolution
	}
	return resolutions
}

// FeatureWidth returns Levels * FeatureDim
func (h *HashGrid) FeatureWidth() int {
	return h.config.Levels * h.config.FeatureDim
}

// Config returns the encoder's construction parameters
func (h *HashGrid) Config() HashGridConfig {
	return h.config
}

// Resolutions returns the per-level lattice resolutions
func (h *HashGrid) Resolutions() []int {
	return h.resolutions
}

// Encode writes the concatenated per-level features for a normalized position.
// Out-of-range positions are clamped onto the lattice, never rejected.
func (h *HashGrid) Encode(p core.Vec3, out []float32) {
	featureDim := h.config.FeatureDim

	for level, resolution := range h.resolutions {
		scale := float32(resolution - 1)
		sx, sy, sz := p.X*scale, p.Y*scale, p.Z*scale

		x0, y0, z0 := int(math32.Floor(sx)), int(math32.Floor(sy)), int(math32.Floor(sz))
		wx, wy, wz := sx-float32(x0), sy-float32(y0), sz-float32(z0)

		table := h.tables[level]
		dst := out[level*featureDim : (level+1)*featureDim]
		for i := range dst {
			dst[i] = 0
		}

		// Trilinear blend of the 8 corner features
		for corner := 0; corner < 8; corner++ {
			cx, cy, cz := x0, y0, z0
			weight := float32(1)

			if corner&1 != 0 {
				cx++
				weight *= wx
			} else {
				weight *= 1 - wx
			}
			if corner&2 != 0 {
				cy++
				weight *= wy
			} else {
				weight *= 1 - wy
			}
			if corner&4 != 0 {
				cz++
				weight *= wz
			} else {
				weight *= 1 - wz
			}

			base := h.cornerIndex(cx, cy, cz, resolution) * featureDim
			for i := range dst {
				dst[i] += weight * table[base+i]
			}
		}
	}
}

// cornerIndex hashes a lattice corner into the level's table. Corners are
// clamped to [0, resolution-1] first; collisions are silent by contract.
func (h *HashGrid) cornerIndex(cx, cy, cz, resolution int) int {
	cx = clampInt(cx, 0, resolution-1)
	cy = clampInt(cy, 0, resolution-1)
	cz = clampInt(cz, 0, resolution-1)

	return HashIndex(cx, cy, cz, h.config.TableSize())
}

// HashIndex maps a lattice corner to its table slot. Exported so tools that
// write tables directly (demo blobs, inspectors) address cells exactly as
// Encode reads them. tableSize must be a power of two.
func HashIndex(cx, cy, cz, tableSize int) int {
	hash := uint32(cx)*hashPrimeX ^ uint32(cy)*hashPrimeY ^ uint32(cz)*hashPrimeZ
	return int(hash & uint32(tableSize-1))
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
