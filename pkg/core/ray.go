package core

// Ray represents a ray with origin and direction. Directions are not required
// to be pre-normalized; the renderer normalizes once per ray.
type Ray struct {
	Origin    Vec3
	Direction Vec3
}

// NewRay creates a new ray
func NewRay(origin, direction Vec3) Ray {
	return Ray{Origin: origin, Direction: direction}
}

// At returns the point along the ray at parameter t
func (r Ray) At(t float32) Vec3 {
	return r.Origin.Add(r.Direction.Multiply(t))
}

// RenderResult is the composited output for a single ray: linear RGB in [0,1]
// plus the accumulated alpha of the volume along the ray.
type RenderResult struct {
	Color Vec3
	Alpha float32
}
