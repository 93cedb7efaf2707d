// Package encoding maps sampled positions and view directions into the
// compact feature vectors consumed by the decoder networks.
package encoding

import (
	"github.com/df07/go-nerf-renderer/pkg/core"
)

// Encoder maps a normalized position in [0,1]³ to a fixed-width feature
// vector. Implementations are selected once at model construction; the hash
// grid and the frequency encoder are interchangeable behind this interface.
type Encoder interface {
	// Encode writes the feature vector for p into out, which must have
	// length FeatureWidth(). Pure function of (p, current parameters).
	Encode(p core.Vec3, out []float32)

	// FeatureWidth returns the length of the encoded feature vector.
	FeatureWidth() int
}
