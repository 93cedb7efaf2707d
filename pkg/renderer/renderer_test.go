package renderer

import (
	"math/rand"
	"testing"

	"github.com/df07/go-nerf-renderer/pkg/core"
	"github.com/df07/go-nerf-renderer/pkg/field"
	"github.com/df07/go-nerf-renderer/pkg/network"
)

// newTestRenderer builds a renderer over a small untrained field
func newTestRenderer(t *testing.T, config Config) *Renderer {
	t.Helper()

	modelConfig := field.DefaultModelConfig()
	modelConfig.HashGrid.Levels = 4
	modelConfig.HashGrid.MaxResolution = 64
	modelConfig.HashGrid.Log2TableSize = 8
	modelConfig.NetworkWidth = 16
	modelConfig.GeoFeatureDim = 7

	params := network.NewRandomParameters(
		modelConfig.HashGrid.Levels, modelConfig.HashGrid.TableSize(), modelConfig.HashGrid.FeatureDim,
		modelConfig.SigmaLayerDims(), modelConfig.ColorLayerDims(), 42)

	f, err := field.New(modelConfig, core.UnitBounds(), params)
	if err != nil {
		t.Fatalf("Failed to create field: %v", err)
	}

	r, err := NewRenderer(f, core.NewVec3(1, 1, 1), config)
	if err != nil {
		t.Fatalf("Failed to create renderer: %v", err)
	}
	return r
}

func testRay() core.Ray {
	return core.NewRay(core.NewVec3(0, 0, 3), core.NewVec3(0, 0, -1))
}

func TestConfig_Validate(t *testing.T) {
	config := DefaultConfig()
	if err := config.Validate(); err != nil {
		t.Errorf("Default config should validate, got %v", err)
	}

	config.CoarseCount = 0
	if err := config.Validate(); err == nil {
		t.Error("Expected error for zero coarse samples")
	}

	config = DefaultConfig()
	config.Near, config.Far = 6.0, 0.2
	if err := config.Validate(); err == nil {
		t.Error("Expected error for near >= far")
	}
}

func TestRenderRay_InferenceDeterministic(t *testing.T) {
	r := newTestRenderer(t, DefaultConfig())

	rng := core.NewRandomSampler(rand.New(rand.NewSource(1)))
	a, samplesA := r.RenderRay(testRay(), rng)
	b, samplesB := r.RenderRay(testRay(), rng)

	if a != b {
		t.Errorf("Inference renders of the same ray should match: %v != %v", a, b)
	}
	if samplesA != samplesB {
		t.Errorf("Sample counts should match: %d != %d", samplesA, samplesB)
	}
}

func TestRenderRay_CoarseOnlyPassthrough(t *testing.T) {
	// With refinement disabled, per-ray work is exactly 2x the coarse count:
	// one density-only pass plus one full decode over the unchanged coarse set.
	config := DefaultConfig()
	config.CoarseCount = 32
	config.FineCount = 0
	r := newTestRenderer(t, config)

	rng := core.NewRandomSampler(rand.New(rand.NewSource(1)))
	_, samples := r.RenderRay(testRay(), rng)

	if samples != 64 {
		t.Errorf("Expected 32 coarse + 32 decode evaluations, got %d", samples)
	}
}

func TestRenderRay_SampleCountsWithRefinement(t *testing.T) {
	config := DefaultConfig()
	config.CoarseCount = 16
	config.FineCount = 8
	r := newTestRenderer(t, config)

	rng := core.NewRandomSampler(rand.New(rand.NewSource(1)))
	_, samples := r.RenderRay(testRay(), rng)

	// 16 coarse density queries + 24 merged full decodes
	if samples != 40 {
		t.Errorf("Expected 40 field evaluations, got %d", samples)
	}
}

func TestRenderRay_UntrainedFieldShowsBackground(t *testing.T) {
	// The near-zero initialization decodes to almost-empty space, so the
	// white background should dominate the composite.
	r := newTestRenderer(t, DefaultConfig())

	rng := core.NewRandomSampler(rand.New(rand.NewSource(1)))
	result, _ := r.RenderRay(testRay(), rng)

	if result.Color.X < 0.5 || result.Color.Y < 0.5 || result.Color.Z < 0.5 {
		t.Errorf("Untrained field should render mostly background, got %v", result.Color)
	}
	if result.Alpha < 0 || result.Alpha > 1 {
		t.Errorf("Alpha out of range: %v", result.Alpha)
	}
}

func TestRenderRays_Stats(t *testing.T) {
	r := newTestRenderer(t, DefaultConfig())
	rng := core.NewRandomSampler(rand.New(rand.NewSource(1)))

	rays := []core.Ray{testRay(), testRay(), testRay()}
	results, stats := r.RenderRays(rays, rng)

	if len(results) != 3 {
		t.Fatalf("Expected 3 results, got %d", len(results))
	}
	if stats.TotalRays != 3 {
		t.Errorf("Expected 3 rays in stats, got %d", stats.TotalRays)
	}
	if stats.TotalSamples <= 0 {
		t.Error("Expected positive sample count")
	}
	expectedAvg := float64(stats.TotalSamples) / 3
	if stats.AverageSamples != expectedAvg {
		t.Errorf("Expected average %v, got %v", expectedAvg, stats.AverageSamples)
	}
}

func TestSetSampleCounts(t *testing.T) {
	r := newTestRenderer(t, DefaultConfig())
	r.SetSampleCounts(8, 4)

	config := r.Config()
	if config.CoarseCount != 8 || config.FineCount != 4 {
		t.Errorf("Expected counts (8,4), got (%d,%d)", config.CoarseCount, config.FineCount)
	}
}

func TestSetSampleCounts_ClampsToValidFloor(t *testing.T) {
	r := newTestRenderer(t, DefaultConfig())
	r.SetSampleCounts(0, -5)

	config := r.Config()
	if config.CoarseCount != 1 {
		t.Errorf("Coarse count should clamp to 1, got %d", config.CoarseCount)
	}
	if config.FineCount != 0 {
		t.Errorf("Fine count should clamp to 0, got %d", config.FineCount)
	}

	// A clamped renderer must still produce a composite, not an empty pass
	rng := core.NewRandomSampler(rand.New(rand.NewSource(1)))
	_, samples := r.RenderRay(testRay(), rng)
	if samples < 2 {
		t.Errorf("Expected at least one coarse sample plus its decode, got %d", samples)
	}
}
