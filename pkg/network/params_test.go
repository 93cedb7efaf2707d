package network

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRandomParameters_Shapes(t *testing.T) {
	sigmaDims := []int{32, 64, 16}
	colorDims := []int{31, 64, 64, 3}
	p := NewRandomParameters(4, 128, 2, sigmaDims, colorDims, 42)

	require.Len(t, p.HashTable, 4)
	for level, table := range p.HashTable {
		assert.Len(t, table, 128*2, "level %d table size", level)
	}

	require.Len(t, p.SigmaNetwork, 2)
	assert.Len(t, p.SigmaNetwork[0].Weight, 64)
	assert.Len(t, p.SigmaNetwork[0].Weight[0], 32)
	assert.Len(t, p.SigmaNetwork[1].Weight, 16)

	require.Len(t, p.ColorNetwork, 3)
	assert.Len(t, p.ColorNetwork[2].Weight, 3)
	assert.Len(t, p.ColorNetwork[2].Bias, 3)
}

func TestNewRandomParameters_SmallInit(t *testing.T) {
	p := NewRandomParameters(2, 64, 2, []int{8, 4}, []int{4, 3}, 1)

	for _, table := range p.HashTable {
		for _, v := range table {
			assert.Less(t, v, float32(1e-4))
			assert.Greater(t, v, float32(-1e-4))
		}
	}
	for _, layer := range p.SigmaNetwork {
		for _, b := range layer.Bias {
			assert.Equal(t, float32(0), b, "biases start at zero")
		}
	}
}

func TestNewRandomParameters_SeedDeterministic(t *testing.T) {
	a := NewRandomParameters(2, 64, 2, []int{8, 4}, []int{4, 3}, 7)
	b := NewRandomParameters(2, 64, 2, []int{8, 4}, []int{4, 3}, 7)

	assert.Equal(t, a.HashTable, b.HashTable)
	assert.Equal(t, a.SigmaNetwork, b.SigmaNetwork)
}

func TestSnapshotRoundTrip(t *testing.T) {
	p := NewRandomParameters(2, 32, 2, []int{8, 4}, []int{4, 3}, 99)
	path := filepath.Join(t.TempDir(), "model.json")

	require.NoError(t, p.SaveSnapshot(path))

	loaded, err := LoadSnapshot(path)
	require.NoError(t, err)

	assert.Equal(t, p.HashTable, loaded.HashTable)
	assert.Equal(t, p.SigmaNetwork, loaded.SigmaNetwork)
	assert.Equal(t, p.ColorNetwork, loaded.ColorNetwork)
}

func TestLoadSnapshot_Errors(t *testing.T) {
	_, err := LoadSnapshot(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	badPath := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(badPath, []byte("not json"), 0644))
	_, err = LoadSnapshot(badPath)
	assert.Error(t, err)

	emptyPath := filepath.Join(t.TempDir(), "empty.json")
	require.NoError(t, os.WriteFile(emptyPath, []byte("{}"), 0644))
	_, err = LoadSnapshot(emptyPath)
	assert.Error(t, err, "a snapshot with no parameter arrays is rejected")
}
