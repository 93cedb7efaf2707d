package core

import (
	"github.com/chewxy/math32"
)

// Vec3 represents a 3D vector. The renderer operates in float32 end to end
// since field parameters are float32 and the target is real-time playback.
type Vec3 struct {
	X, Y, Z float32
}

// NewVec3 creates a new Vec3
func NewVec3(x, y, z float32) Vec3 {
	return Vec3{X: x, Y: y, Z: z}
}

// Add returns the sum of two vectors
func (v Vec3) Add(other Vec3) Vec3 {
	return Vec3{v.X + other.X, v.Y + other.Y, v.Z + other.Z}
}

// Subtract returns the difference of two vectors
func (v Vec3) Subtract(other Vec3) Vec3 {
	return Vec3{v.X - other.X, v.Y - other.Y, v.Z - other.Z}
}

// Multiply returns the vector scaled by a scalar
func (v Vec3) Multiply(scalar float32) Vec3 {
	return Vec3{v.X * scalar, v.Y * scalar, v.Z * scalar}
}

// MultiplyVec returns the component-wise product of two vectors
func (v Vec3) MultiplyVec(other Vec3) Vec3 {
	return Vec3{v.X * other.X, v.Y * other.Y, v.Z * other.Z}
}

// Length returns the magnitude of the vector
func (v Vec3) Length() float32 {
	return math32.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// LengthSquared returns the squared magnitude of the vector
func (v Vec3) LengthSquared() float32 {
	return v.X*v.X + v.Y*v.Y + v.Z*v.Z
}

// Dot returns the dot product of two vectors
func (v Vec3) Dot(other Vec3) float32 {
	return v.X*other.X + v.Y*other.Y + v.Z*other.Z
}

// Cross returns the cross product of two vectors
func (v Vec3) Cross(other Vec3) Vec3 {
	return Vec3{
		X: v.Y*other.Z - v.Z*other.Y,
		Y: v.Z*other.X - v.X*other.Z,
		Z: v.X*other.Y - v.Y*other.X,
	}
}

// Clamp returns a vector with components clamped to [minVal, maxVal]
func (v Vec3) Clamp(minVal, maxVal float32) Vec3 {
	return Vec3{
		X: math32.Max(minVal, math32.Min(maxVal, v.X)),
		Y: math32.Max(minVal, math32.Min(maxVal, v.Y)),
		Z: math32.Max(minVal, math32.Min(maxVal, v.Z)),
	}
}

// Lerp linearly interpolates between v and other by t
func (v Vec3) Lerp(other Vec3, t float32) Vec3 {
	return v.Multiply(1 - t).Add(other.Multiply(t))
}

// GammaCorrect applies gamma correction to color values
func (v Vec3) GammaCorrect(gamma float32) Vec3 {
	invGamma := 1.0 / gamma
	return Vec3{
		X: math32.Pow(v.X, invGamma),
		Y: math32.Pow(v.Y, invGamma),
		Z: math32.Pow(v.Z, invGamma),
	}
}

// minDirectionNorm floors near-zero directions before normalization so
// degenerate inputs degrade gracefully instead of producing NaNs.
const minDirectionNorm = 1e-8

// Normalize returns a unit vector in the same direction
func (v Vec3) Normalize() Vec3 {
	length := math32.Max(v.Length(), minDirectionNorm)
	return Vec3{v.X / length, v.Y / length, v.Z / length}
}

// Vec2 represents a 2D vector
type Vec2 struct {
	X, Y float32
}

// NewVec2 creates a new Vec2
func NewVec2(x, y float32) Vec2 {
	return Vec2{X: x, Y: y}
}
