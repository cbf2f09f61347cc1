// Package camera provides a top-down camera over the arena's horizontal plane.
package camera

// Camera maps the arena's (x, z) plane onto the screen. World x grows to the
// right and world z grows downwards. The arena is a square centered on the
// origin; the camera center is kept inside it.
type Camera struct {
	// Position is the camera center in world coordinates
	X, Z float32

	// Zoom level (1.0 = whole arena fits the viewport)
	Zoom float32

	// Viewport dimensions (screen size)
	ViewportW, ViewportH float32

	// HalfExtent is half the arena width
	HalfExtent float32

	// Zoom constraints
	MinZoom, MaxZoom float32
}

// New creates a camera centered on the arena with the whole arena visible.
func New(viewportW, viewportH, halfExtent float32) *Camera {
	return &Camera{
		Zoom:       1.0,
		ViewportW:  viewportW,
		ViewportH:  viewportH,
		HalfExtent: halfExtent,
		MinZoom:    0.5,
		MaxZoom:    8.0,
	}
}

// Scale returns screen pixels per world unit at the current zoom.
func (c *Camera) Scale() float32 {
	return c.baseScale() * c.Zoom
}

// baseScale fits the arena plus a margin into the shorter viewport side.
func (c *Camera) baseScale() float32 {
	side := c.ViewportW
	if c.ViewportH < side {
		side = c.ViewportH
	}
	return side / (2 * c.HalfExtent * 1.1)
}

// WorldToScreen converts arena coordinates to screen coordinates.
func (c *Camera) WorldToScreen(wx, wz float32) (sx, sy float32) {
	s := c.Scale()
	sx = c.ViewportW/2 + (wx-c.X)*s
	sy = c.ViewportH/2 + (wz-c.Z)*s
	return sx, sy
}

// ScreenToWorld converts screen coordinates to arena coordinates.
func (c *Camera) ScreenToWorld(sx, sy float32) (wx, wz float32) {
	s := c.Scale()
	wx = c.X + (sx-c.ViewportW/2)/s
	wz = c.Z + (sy-c.ViewportH/2)/s
	return wx, wz
}

// IsVisible returns true if a circle at (wx, wz) with given radius
// could be visible on screen (conservative check for culling).
func (c *Camera) IsVisible(wx, wz, radius float32) bool {
	s := c.Scale()
	halfW := c.ViewportW/(2*s) + radius
	halfH := c.ViewportH/(2*s) + radius
	return absf(wx-c.X) <= halfW && absf(wz-c.Z) <= halfH
}

// Resize updates viewport dimensions.
func (c *Camera) Resize(viewportW, viewportH float32) {
	c.ViewportW = viewportW
	c.ViewportH = viewportH
}

// Pan moves the camera by the given delta in screen pixels.
// The camera center stays inside the arena.
func (c *Camera) Pan(dx, dy float32) {
	s := c.Scale()
	c.X = clamp(c.X+dx/s, -c.HalfExtent, c.HalfExtent)
	c.Z = clamp(c.Z+dy/s, -c.HalfExtent, c.HalfExtent)
}

// SetZoom sets the zoom level, clamped to min/max.
func (c *Camera) SetZoom(zoom float32) {
	c.Zoom = clamp(zoom, c.MinZoom, c.MaxZoom)
}

// ZoomBy multiplies the current zoom by the given factor.
func (c *Camera) ZoomBy(factor float32) {
	c.SetZoom(c.Zoom * factor)
}

// ZoomAt zooms by factor while keeping the world point under (sx, sy) fixed.
func (c *Camera) ZoomAt(sx, sy, factor float32) {
	wx, wz := c.ScreenToWorld(sx, sy)
	c.ZoomBy(factor)
	nx, nz := c.ScreenToWorld(sx, sy)
	c.X = clamp(c.X+wx-nx, -c.HalfExtent, c.HalfExtent)
	c.Z = clamp(c.Z+wz-nz, -c.HalfExtent, c.HalfExtent)
}

// Reset returns the camera to the default position and zoom.
func (c *Camera) Reset() {
	c.X = 0
	c.Z = 0
	c.Zoom = 1.0
}

// VisibleWorldBounds returns the world-coordinate bounds of the visible area
// as (minX, minZ, maxX, maxZ).
func (c *Camera) VisibleWorldBounds() (minX, minZ, maxX, maxZ float32) {
	s := c.Scale()
	halfW := c.ViewportW / (2 * s)
	halfH := c.ViewportH / (2 * s)

	minX = c.X - halfW
	maxX = c.X + halfW
	minZ = c.Z - halfH
	maxZ = c.Z + halfH
	return
}

func absf(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}

func clamp(x, lo, hi float32) float32 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
