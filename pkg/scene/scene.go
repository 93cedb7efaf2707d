// Package scene describes the world a field is rendered in: bounds,
// background, camera, and clipping planes. Scene content itself lives in
// the trained parameter blob, not here.
package scene

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/df07/go-nerf-renderer/pkg/core"
)

// CameraConfig positions the viewpoint for rendering
type CameraConfig struct {
	LookFrom [3]float32 `toml:"look_from"`
	LookAt   [3]float32 `toml:"look_at"`
	Up       [3]float32 `toml:"up"`
	VFov     float32    `toml:"vfov"` // Vertical field of view in degrees
}

// Scene holds the render-time description around a trained field
type Scene struct {
	Name       string       `toml:"name"`
	BoundsMin  [3]float32   `toml:"bounds_min"`
	BoundsMax  [3]float32   `toml:"bounds_max"`
	Background [3]float32   `toml:"background"`
	Near       float32      `toml:"near"`
	Far        float32      `toml:"far"`
	Camera     CameraConfig `toml:"camera"`
}

// NewDefaultScene returns the canonical synthetic-object setup: unit bounds,
// white background, camera orbiting slightly above the equator.
func NewDefaultScene() *Scene {
	return &Scene{
		Name:       "default",
		BoundsMin:  [3]float32{-1, -1, -1},
		BoundsMax:  [3]float32{1, 1, 1},
		Background: [3]float32{1, 1, 1},
		Near:       0.2,
		Far:        6.0,
		Camera: CameraConfig{
			LookFrom: [3]float32{0, 0.5, 3},
			LookAt:   [3]float32{0, 0, 0},
			Up:       [3]float32{0, 1, 0},
			VFov:     40,
		},
	}
}

// Load reads a scene description from a TOML file
func Load(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scene: %w", err)
	}

	s := NewDefaultScene() // file fields override defaults
	if err := toml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("parsing scene %s: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("scene %s: %w", path, err)
	}
	return s, nil
}

// Validate rejects degenerate scenes eagerly
func (s *Scene) Validate() error {
	if s.Near >= s.Far {
		return fmt.Errorf("near plane %g must be below far plane %g", s.Near, s.Far)
	}
	for axis := 0; axis < 3; axis++ {
		if s.BoundsMin[axis] >= s.BoundsMax[axis] {
			return fmt.Errorf("bounds are empty along axis %d", axis)
		}
	}
	if s.Camera.VFov <= 0 || s.Camera.VFov >= 180 {
		return fmt.Errorf("camera vfov %g out of range", s.Camera.VFov)
	}
	return nil
}

// Bounds returns the scene's axis-aligned box
func (s *Scene) Bounds() core.Bounds {
	return core.NewBounds(vec3(s.BoundsMin), vec3(s.BoundsMax))
}

// BackgroundColor returns the fixed background color
func (s *Scene) BackgroundColor() core.Vec3 {
	return vec3(s.Background)
}

// CameraVectors returns the camera placement as vectors
func (c CameraConfig) CameraVectors() (lookFrom, lookAt, up core.Vec3) {
	return vec3(c.LookFrom), vec3(c.LookAt), vec3(c.Up)
}

func vec3(v [3]float32) core.Vec3 {
	return core.NewVec3(v[0], v[1], v[2])
}
