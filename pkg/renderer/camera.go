package renderer

import (
	"github.com/chewxy/math32"

	"github.com/df07/go-nerf-renderer/pkg/core"
)

// Camera generates world-space rays for rendering
type Camera struct {
	origin          core.Vec3
	lowerLeftCorner core.Vec3
	horizontal      core.Vec3
	vertical        core.Vec3
}

// NewCamera creates a pinhole camera looking from lookFrom toward lookAt
// with the given vertical field of view in degrees and aspect ratio.
func NewCamera(lookFrom, lookAt, up core.Vec3, vfovDegrees, aspect float32) *Camera {
	theta := vfovDegrees * math32.Pi / 180
	halfHeight := math32.Tan(theta / 2)
	viewportHeight := 2 * halfHeight
	viewportWidth := aspect * viewportHeight

	w := lookFrom.Subtract(lookAt).Normalize()
	u := up.Cross(w).Normalize()
	v := w.Cross(u)

	horizontal := u.Multiply(viewportWidth)
	vertical := v.Multiply(viewportHeight)
	lowerLeftCorner := lookFrom.
		Subtract(horizontal.Multiply(0.5)).
		Subtract(vertical.Multiply(0.5)).
		Subtract(w)

	return &Camera{
		origin:          lookFrom,
		lowerLeftCorner: lowerLeftCorner,
		horizontal:      horizontal,
		vertical:        vertical,
	}
}

// GetRay generates a ray for screen coordinates (s, t) where 0 <= s,t <= 1
func (c *Camera) GetRay(s, t float32) core.Ray {
	direction := c.lowerLeftCorner.
		Add(c.horizontal.Multiply(s)).
		Add(c.vertical.Multiply(t)).
		Subtract(c.origin)

	return core.NewRay(c.origin, direction)
}
