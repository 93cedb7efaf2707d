package sampler

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/df07/go-nerf-renderer/pkg/core"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name      string
		config    Config
		near, far float32
		wantErr   bool
	}{
		{"valid", Config{CoarseCount: 64, FineCount: 128}, 0.2, 6.0, false},
		{"fine disabled", Config{CoarseCount: 64, FineCount: 0}, 0.2, 6.0, false},
		{"zero coarse", Config{CoarseCount: 0, FineCount: 128}, 0.2, 6.0, true},
		{"negative fine", Config{CoarseCount: 64, FineCount: -1}, 0.2, 6.0, true},
		{"near past far", Config{CoarseCount: 64, FineCount: 128}, 6.0, 0.2, true},
		{"near equals far", Config{CoarseCount: 64, FineCount: 128}, 1.0, 1.0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate(tt.near, tt.far)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSampleStratified_InferenceMidpoints(t *testing.T) {
	ts := SampleStratified(0, 4, 4, core.ModeInference, nil)

	require.Len(t, ts, 4)
	expected := []float32{0.5, 1.5, 2.5, 3.5}
	for i := range expected {
		assert.InDelta(t, expected[i], ts[i], 1e-6)
	}
}

func TestSampleStratified_InferenceRepeatable(t *testing.T) {
	a := SampleStratified(0.2, 6.0, 64, core.ModeInference, nil)
	b := SampleStratified(0.2, 6.0, 64, core.ModeInference, nil)

	assert.Equal(t, a, b, "inference sampling must be identical across calls")
}

func TestSampleStratified_TrainingJitterStaysInBin(t *testing.T) {
	rng := core.NewRandomSampler(rand.New(rand.NewSource(1)))
	near, far := float32(1), float32(5)
	count := 16
	width := (far - near) / float32(count)

	ts := SampleStratified(near, far, count, core.ModeTraining, rng)

	require.Len(t, ts, count)
	for i, v := range ts {
		lo := near + float32(i)*width
		hi := near + float32(i+1)*width
		assert.GreaterOrEqual(t, v, lo, "sample %d left its bin", i)
		assert.LessOrEqual(t, v, hi, "sample %d left its bin", i)
	}
}

func TestSampleImportance_ConcentratesInHighWeightBins(t *testing.T) {
	// All weight in the interval [2, 3): most fine samples should land there
	ts := []float32{0, 1, 2, 3, 4}
	weights := []float32{0, 0, 100, 0, 0}

	fine := SampleImportance(ts, weights, 100, core.ModeInference, nil)

	inBin := 0
	for _, v := range fine {
		if v >= 2 && v <= 3 {
			inBin++
		}
	}
	assert.Greater(t, inBin, 90, "importance samples should concentrate where the weight is")
}

func TestSampleImportance_InferenceAscendingAndRepeatable(t *testing.T) {
	ts := []float32{0, 1, 2, 3}
	weights := []float32{1, 2, 3, 4}

	a := SampleImportance(ts, weights, 32, core.ModeInference, nil)
	b := SampleImportance(ts, weights, 32, core.ModeInference, nil)

	assert.Equal(t, a, b)
	for i := 1; i < len(a); i++ {
		assert.GreaterOrEqual(t, a[i], a[i-1], "stratified quantiles must produce ascending distances")
	}
}

func TestSampleImportance_ZeroWeightsUniform(t *testing.T) {
	// With all-zero weights the epsilon floor makes the distribution uniform;
	// samples must stay inside the coarse range and remain finite.
	ts := []float32{1, 2, 3, 4, 5}
	weights := []float32{0, 0, 0, 0, 0}

	fine := SampleImportance(ts, weights, 20, core.ModeInference, nil)

	require.Len(t, fine, 20)
	for i, v := range fine {
		assert.False(t, v != v, "sample %d is NaN", i)
		assert.GreaterOrEqual(t, v, float32(1))
		assert.LessOrEqual(t, v, float32(5))
	}
}

func TestSampleImportance_TrainingUsesRandomQuantiles(t *testing.T) {
	ts := []float32{0, 1, 2, 3}
	weights := []float32{1, 1, 1, 1}

	rng1 := core.NewRandomSampler(rand.New(rand.NewSource(7)))
	rng2 := core.NewRandomSampler(rand.New(rand.NewSource(7)))
	a := SampleImportance(ts, weights, 16, core.ModeTraining, rng1)
	b := SampleImportance(ts, weights, 16, core.ModeTraining, rng2)

	assert.Equal(t, a, b, "same seed must reproduce the same training samples")

	rng3 := core.NewRandomSampler(rand.New(rand.NewSource(8)))
	c := SampleImportance(ts, weights, 16, core.ModeTraining, rng3)
	assert.NotEqual(t, a, c, "different seeds should draw different samples")
}

func TestMergeSorted(t *testing.T) {
	coarse := []float32{1, 3, 5}
	fine := []float32{4, 2, 6}

	merged := MergeSorted(coarse, fine)

	require.Len(t, merged, 6)
	for i := 1; i < len(merged); i++ {
		assert.GreaterOrEqual(t, merged[i], merged[i-1], "merged distances must be ascending")
	}
	assert.Equal(t, []float32{1, 2, 3, 4, 5, 6}, merged)
}

func TestMergeSorted_EmptyFine(t *testing.T) {
	coarse := []float32{1, 2, 3}
	merged := MergeSorted(coarse, nil)
	assert.Equal(t, coarse, merged)
}
