package network

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
)

// LayerParams holds one dense layer's weight matrix and bias vector
type LayerParams struct {
	Weight [][]float32 `json:"weight"` // [outDim][inDim]
	Bias   []float32   `json:"bias"`   // [outDim]
}

// Parameters is the opaque blob of learned arrays the renderer reads from:
// per-level hash tables plus the decoder weight matrices. It is owned and
// mutated by an external trainer between render calls; the renderer treats
// it as read-only for the duration of any call. The on-disk layout belongs
// to the exporter; this is the named-array view it must produce.
type Parameters struct {
	HashTable    [][]float32   `json:"hash_table"`    // [levels][tableSize*featureDim]
	SigmaNetwork []LayerParams `json:"sigma_network"` // density head layers
	ColorNetwork []LayerParams `json:"color_network"` // color head layers
}

// NewRandomParameters creates an untrained blob with small uniform weights,
// matching the reference initialization: everything in (-1e-4, 1e-4) so the
// initial field decodes to near-zero density everywhere.
func NewRandomParameters(levels, tableSize, featureDim int, sigmaDims, colorDims []int, seed int64) *Parameters {
	random := rand.New(rand.NewSource(seed))
	uniform := func() float32 {
		return (random.Float32()*2 - 1) * 1e-4
	}

	p := &Parameters{}

	p.HashTable = make([][]float32, levels)
	for level := range p.HashTable {
		table := make([]float32, tableSize*featureDim)
		for i := range table {
			table[i] = uniform()
		}
		p.HashTable[level] = table
	}

	p.SigmaNetwork = randomStack(sigmaDims, uniform)
	p.ColorNetwork = randomStack(colorDims, uniform)
	return p
}

// randomStack builds layers chaining dims[0] -> dims[1] -> ... -> dims[n-1]
func randomStack(dims []int, uniform func() float32) []LayerParams {
	var layers []LayerParams
	for i := 0; i+1 < len(dims); i++ {
		in, out := dims[i], dims[i+1]
		weight := make([][]float32, out)
		for row := range weight {
			weight[row] = make([]float32, in)
			for col := range weight[row] {
				weight[row][col] = uniform()
			}
		}
		layers = append(layers, LayerParams{Weight: weight, Bias: make([]float32, out)})
	}
	return layers
}

// LoadSnapshot reads a parameter blob written by the external export tool
func LoadSnapshot(path string) (*Parameters, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}

	var p Parameters
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parsing snapshot %s: %w", path, err)
	}
	if len(p.HashTable) == 0 && len(p.SigmaNetwork) == 0 {
		return nil, fmt.Errorf("snapshot %s contains no parameter arrays", path)
	}
	return &p, nil
}

// SaveSnapshot writes the blob back out in the same format
func (p *Parameters) SaveSnapshot(path string) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}
