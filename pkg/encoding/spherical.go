package encoding

import (
	"fmt"

	"github.com/df07/go-nerf-renderer/pkg/core"
)

// SphericalHarmonics encodes a view direction with the real spherical
// harmonics basis up to a maximum degree. Stateless and deterministic, with
// no learned parameters: the closed-form basis evaluated at the unit
// direction. Output width is (degree+1)².
type SphericalHarmonics struct {
	degree int
}

// NewSphericalHarmonics creates a direction encoder for degrees 0..degree.
// Degrees above 4 are rejected; the closed forms stop there.
func NewSphericalHarmonics(degree int) (*SphericalHarmonics, error) {
	if degree < 0 || degree > 4 {
		return nil, fmt.Errorf("spherical harmonics degree must be in [0,4], got %d", degree)
	}
	return &SphericalHarmonics{degree: degree}, nil
}

// FeatureWidth returns (degree+1)²
func (sh *SphericalHarmonics) FeatureWidth() int {
	return (sh.degree + 1) * (sh.degree + 1)
}

// Degree returns the maximum harmonic degree
func (sh *SphericalHarmonics) Degree() int {
	return sh.degree
}

// Encode evaluates the basis at the direction. The input is re-normalized
// first (with a floored norm), so the result is invariant to input scale.
func (sh *SphericalHarmonics) Encode(dir core.Vec3, out []float32) {
	d := dir.Normalize()
	x, y, z := d.X, d.Y, d.Z

	out[0] = 0.28209479177387814 // 1/2 * sqrt(1/pi)
	if sh.degree < 1 {
		return
	}

	out[1] = -0.48860251190291987 * y
	out[2] = 0.48860251190291987 * z
	out[3] = -0.48860251190291987 * x
	if sh.degree < 2 {
		return
	}

	xx, yy, zz := x*x, y*y, z*z
	out[4] = 1.0925484305920792 * x * y
	out[5] = -1.0925484305920792 * y * z
	out[6] = 0.31539156525252005 * (3*zz - 1)
	out[7] = -1.0925484305920792 * x * z
	out[8] = 0.5462742152960396 * (xx - yy)
	if sh.degree < 3 {
		return
	}

	out[9] = -0.5900435899266435 * y * (3*xx - yy)
	out[10] = 2.890611442640554 * x * y * z
	out[11] = -0.4570457994644658 * y * (5*zz - 1)
	out[12] = 0.3731763325901154 * z * (5*zz - 3)
	out[13] = -0.4570457994644658 * x * (5*zz - 1)
	out[14] = 1.445305721320277 * z * (xx - yy)
	out[15] = -0.5900435899266435 * x * (xx - 3*yy)
	if sh.degree < 4 {
		return
	}

	out[16] = 2.5033429417967046 * x * y * (xx - yy)
	out[17] = -1.7701307697799304 * y * z * (3*xx - yy)
	out[18] = 0.9461746957575601 * x * y * (7*zz - 1)
	out[19] = -0.6690465435572892 * y * z * (7*zz - 3)
	out[20] = 0.10578554691520431 * (35*zz*zz - 30*zz + 3)
	out[21] = -0.6690465435572892 * x * z * (7*zz - 3)
	out[22] = 0.47308734787878004 * (xx - yy) * (7*zz - 1)
	out[23] = -1.7701307697799304 * x * z * (xx - 3*yy)
	out[24] = 0.6258357354491761 * (xx*xx - 6*xx*yy + yy*yy)
}
