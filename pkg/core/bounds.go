package core

// Bounds is an axis-aligned box defining the world-space region the field
// covers. It owns the affine map from world space into the encoder's
// [0,1]³ input domain.
type Bounds struct {
	Min Vec3 // Minimum corner
	Max Vec3 // Maximum corner
}

// NewBounds creates bounds from min and max corners
func NewBounds(min, max Vec3) Bounds {
	return Bounds{Min: min, Max: max}
}

// UnitBounds returns the canonical [-1,1]³ scene box
func UnitBounds() Bounds {
	return Bounds{Min: NewVec3(-1, -1, -1), Max: NewVec3(1, 1, 1)}
}

// Center returns the centroid of the box
func (b Bounds) Center() Vec3 {
	return b.Min.Add(b.Max).Multiply(0.5)
}

// Size returns the extent of the box along each axis
func (b Bounds) Size() Vec3 {
	return b.Max.Subtract(b.Min)
}

// Normalize maps a world-space point into [0,1]³. Points outside the box are
// clamped, never rejected: rays legitimately exit the scene bounds.
func (b Bounds) Normalize(p Vec3) Vec3 {
	size := b.Size()
	return Vec3{
		X: (p.X - b.Min.X) / size.X,
		Y: (p.Y - b.Min.Y) / size.Y,
		Z: (p.Z - b.Min.Z) / size.Z,
	}.Clamp(0, 1)
}
