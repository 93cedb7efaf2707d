package renderer

import (
	"fmt"

	"github.com/df07/go-nerf-renderer/pkg/core"
	"github.com/df07/go-nerf-renderer/pkg/field"
	"github.com/df07/go-nerf-renderer/pkg/integrator"
	"github.com/df07/go-nerf-renderer/pkg/sampler"
)

// Config contains per-render-call parameters. Mode is fixed for the whole
// call; the two phases' sample counts bound the per-ray work.
type Config struct {
	Near        float32
	Far         float32
	CoarseCount int
	FineCount   int
	Mode        core.RenderMode
}

// DefaultConfig returns sensible default values
func DefaultConfig() Config {
	return Config{
		Near:        0.2,
		Far:         6.0,
		CoarseCount: 64,
		FineCount:   128,
		Mode:        core.ModeInference,
	}
}

// Validate rejects unusable configurations eagerly
func (c Config) Validate() error {
	return sampler.Config{CoarseCount: c.CoarseCount, FineCount: c.FineCount}.Validate(c.Near, c.Far)
}

// Renderer marches rays through a radiance field: stratified coarse samples,
// a density-only decode to drive importance refinement, then a full decode
// and volume integration of the merged sample set.
//
// A Renderer is not safe for concurrent use (the field carries scratch
// buffers); the worker pool gives each worker its own instance over the
// shared read-only parameter blob.
type Renderer struct {
	field      *field.RadianceField
	background core.Vec3
	config     Config
}

// NewRenderer creates a renderer over a field with a fixed background color
func NewRenderer(f *field.RadianceField, background core.Vec3, config Config) (*Renderer, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("renderer config: %w", err)
	}
	return &Renderer{field: f, background: background, config: config}, nil
}

// SetSampleCounts adjusts the per-ray sample budget between passes.
// Counts are clamped to the same floor Validate enforces, so a live renderer
// can never be steered into an empty coarse pass.
func (r *Renderer) SetSampleCounts(coarse, fine int) {
	r.config.CoarseCount = max(coarse, 1)
	r.config.FineCount = max(fine, 0)
}

// Config returns the current render configuration
func (r *Renderer) Config() Config {
	return r.config
}

// RenderRay composites a single ray into an RGBA result.
// rayStats reports the number of field evaluations for the stats counters.
func (r *Renderer) RenderRay(ray core.Ray, rng core.Sampler) (core.RenderResult, int) {
	dir := ray.Direction.Normalize()
	origin := ray.Origin
	mode := r.config.Mode

	// Coarse pass: stratified distances, density-only decode
	tCoarse := sampler.SampleStratified(r.config.Near, r.config.Far, r.config.CoarseCount, mode, rng)
	coarseDensities := make([]float32, len(tCoarse))
	for i, t := range tCoarse {
		coarseDensities[i], _ = r.field.QueryDensity(origin.Add(dir.Multiply(t)))
	}

	// Fine pass: importance-resample where the coarse weights concentrate.
	// With refinement disabled the coarse set passes through unchanged.
	ts := tCoarse
	if r.config.FineCount > 0 {
		weights := integrator.ComputeWeights(coarseDensities, tCoarse, mode)
		tFine := sampler.SampleImportance(tCoarse, weights, r.config.FineCount, mode, rng)
		ts = sampler.MergeSorted(tCoarse, tFine)
	}

	// Full decode over the merged, sorted set
	densities := make([]float32, len(ts))
	colors := make([]core.Vec3, len(ts))
	var rgb [3]float32
	for i, t := range ts {
		density, geo := r.field.QueryDensity(origin.Add(dir.Multiply(t)))
		densities[i] = density
		r.field.QueryColor(geo, dir, &rgb)
		colors[i] = core.NewVec3(rgb[0], rgb[1], rgb[2])
	}

	result := integrator.Integrate(colors, densities, ts, r.background, mode)
	return result, len(tCoarse) + len(ts)
}

// RenderRays composites a batch of rays. Rays are independent; this is the
// unit the worker pool parallelizes over.
func (r *Renderer) RenderRays(rays []core.Ray, rng core.Sampler) ([]core.RenderResult, RenderStats) {
	results := make([]core.RenderResult, len(rays))
	stats := RenderStats{TotalRays: len(rays)}

	for i, ray := range rays {
		result, samples := r.RenderRay(ray, rng)
		results[i] = result
		stats.TotalSamples += int64(samples)
	}
	stats.finalize()
	return results, stats
}
