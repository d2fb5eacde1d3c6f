// Package clock paces a fixed-step simulation against rendered frames.
package clock

// speeds are the selectable simulation multipliers; 0 is paused.
var speeds = []float64{0, 0.5, 1, 2, 4}

// Clock converts rendered frames into simulation ticks at a speed multiplier.
type Clock struct {
	speed float64
	accum float64 // fractional tick accumulator for sub-1x speeds
}

// New starts at 1x.
func New() *Clock { return &Clock{speed: 1} }

// Speed returns the current multiplier.
func (c *Clock) Speed() float64 { return c.speed }

// Paused reports whether the multiplier is zero.
func (c *Clock) Paused() bool { return c.speed <= 0 }

// TogglePause switches between paused and 1x.
func (c *Clock) TogglePause() {
	if c.speed > 0 {
		c.speed = 0
	} else {
		c.speed = 1
	}
}

// Slower steps down one speed.
func (c *Clock) Slower() {
	for i, s := range speeds {
		if s >= c.speed && i > 0 {
			c.speed = speeds[i-1]
			return
		}
	}
}

// Faster steps up one speed.
func (c *Clock) Faster() {
	for _, s := range speeds {
		if s > c.speed {
			c.speed = s
			return
		}
	}
}

// Frame returns how many ticks to run for one rendered frame.
func (c *Clock) Frame() int {
	if c.speed <= 0 {
		return 0
	}
	c.accum += c.speed
	n := 0
	for c.accum >= 1 {
		c.accum--
		n++
	}
	return n
}

// Label renders the speed for the HUD.
func (c *Clock) Label() string {
	switch c.speed {
	case 0:
		return "PAUSED"
	case 0.5:
		return "0.5x"
	case 1:
		return "1x"
	case 2:
		return "2x"
	case 4:
		return "4x"
	}
	return "?"
}
