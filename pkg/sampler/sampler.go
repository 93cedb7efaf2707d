// Package sampler produces candidate distances along each ray: stratified
// coarse bins first, then importance-guided refinement by inverse-CDF
// resampling of the coarse weights.
package sampler

import (
	"fmt"
	"slices"
	"sort"

	"github.com/df07/go-nerf-renderer/pkg/core"
)

// weightEpsilon floors every interval weight before building the importance
// distribution, so no bin becomes a zero-probability dead zone.
const weightEpsilon = 1e-5

// cdfDenomFloor guards the inverse-CDF interpolation against near-zero
// bucket spans.
const cdfDenomFloor = 1e-5

// Config holds per-ray sample counts for the two phases
type Config struct {
	CoarseCount int // stratified samples in [near, far]
	FineCount   int // importance samples; 0 disables refinement
}

// Validate rejects unusable counts eagerly. FineCount may be zero (no
// refinement pass) but never negative.
func (c Config) Validate(near, far float32) error {
	if c.CoarseCount < 1 {
		return fmt.Errorf("coarse sample count must be >= 1, got %d", c.CoarseCount)
	}
	if c.FineCount < 0 {
		return fmt.Errorf("fine sample count must be >= 0, got %d", c.FineCount)
	}
	if near >= far {
		return fmt.Errorf("near plane %g must be below far plane %g", near, far)
	}
	return nil
}

// SampleStratified partitions [near, far] into count equal bins and returns
// one distance per bin, ascending. Training mode jitters uniformly within
// each bin (fresh randomness per call); inference mode uses the bin
// midpoints so repeated calls are identical.
func SampleStratified(near, far float32, count int, mode core.RenderMode, rng core.Sampler) []float32 {
	width := (far - near) / float32(count)
	ts := make([]float32, count)

	for i := range ts {
		offset := float32(0.5)
		if mode == core.ModeTraining {
			offset = rng.Get1D()
		}
		ts[i] = near + (float32(i)+offset)*width
	}
	return ts
}

// SampleImportance draws count new distances from the piecewise-constant
// distribution induced by the coarse interval weights, via inverse-CDF
// sampling with linear interpolation inside the located bucket.
//
// Quantile policy: inference mode uses stratified quantiles (i+0.5)/count so
// refinement is repeatable; training mode draws uniform random quantiles.
// Returned distances are ascending in inference mode but not sorted in
// training mode; callers merge-then-sort before integrating either way.
func SampleImportance(ts, weights []float32, count int, mode core.RenderMode, rng core.Sampler) []float32 {
	// Epsilon-floored weights -> normalized CDF with a leading zero
	cdf := make([]float32, len(weights)+1)
	var total float32
	for i, w := range weights {
		total += w + weightEpsilon
		cdf[i+1] = total
	}
	for i := range cdf {
		cdf[i] /= total
	}

	fine := make([]float32, count)
	for i := range fine {
		var u float32
		if mode == core.ModeTraining {
			u = rng.Get1D()
		} else {
			u = (float32(i) + 0.5) / float32(count)
		}

		// Locate the bucket whose CDF span contains u
		idx := sort.Search(len(cdf), func(j int) bool { return cdf[j] > u })
		above := clamp(idx, 0, len(cdf)-1)
		below := clamp(idx-1, 0, len(cdf)-1)

		denom := cdf[above] - cdf[below]
		if denom < cdfDenomFloor {
			denom = 1
		}
		frac := (u - cdf[below]) / denom

		tLo := ts[clamp(below, 0, len(ts)-1)]
		tHi := ts[clamp(above, 0, len(ts)-1)]
		fine[i] = tLo + frac*(tHi-tLo)
	}
	return fine
}

// MergeSorted combines coarse and fine sample distances into one ascending
// sequence. Integration assumes ascending order, so any merge re-sorts.
func MergeSorted(coarse, fine []float32) []float32 {
	merged := make([]float32, 0, len(coarse)+len(fine))
	merged = append(merged, coarse...)
	merged = append(merged, fine...)
	slices.Sort(merged)
	return merged
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
