package viewer

import "math"

const (
	zoomMin = 2.0  // pixels per world unit
	zoomMax = 40.0 // pixels per world unit
)

// Camera maps the world x/z plane to viewport pixels, +z up the screen.
type Camera struct {
	X, Z float64 // world point at the viewport centre
	Zoom float64 // pixels per world unit
	W, H int     // viewport size in pixels
}

// ToScreen projects a world position into viewport pixels.
func (c Camera) ToScreen(x, z float64) (sx, sy float32) {
	sx = float32((x-c.X)*c.Zoom + float64(c.W)/2)
	sy = float32(-(z-c.Z)*c.Zoom + float64(c.H)/2)
	return sx, sy
}

// ToWorld is the inverse of ToScreen.
func (c Camera) ToWorld(sx, sy int) (x, z float64) {
	x = (float64(sx)-float64(c.W)/2)/c.Zoom + c.X
	z = -(float64(sy)-float64(c.H)/2)/c.Zoom + c.Z
	return x, z
}

// Pan moves the centre by screen-space pixels.
func (c *Camera) Pan(dx, dy float64) {
	c.X += dx / c.Zoom
	c.Z -= dy / c.Zoom
}

// ZoomBy scales the zoom within limits.
func (c *Camera) ZoomBy(f float64) {
	c.Zoom = math.Max(zoomMin, math.Min(zoomMax, c.Zoom*f))
}
