package renderer

import (
	"image/color"

	"github.com/df07/go-nerf-renderer/pkg/core"
)

// resultToColor converts a composited ray result to an 8-bit display color
// with gamma correction and clamping. The background is already composited
// into the color, so the output pixel is opaque.
func resultToColor(result core.RenderResult) color.RGBA {
	c := result.Color.GammaCorrect(2.0).Clamp(0, 1)

	return color.RGBA{
		R: uint8(255 * c.X),
		G: uint8(255 * c.Y),
		B: uint8(255 * c.Z),
		A: 255,
	}
}
