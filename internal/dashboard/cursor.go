// Package dashboard holds the interactive view state of a telemetry dashboard.
package dashboard

// Cursor tracks the selected stroke of the current piece.
// The current stroke always lies in [1, max(total, 1)].
type Cursor struct {
	current int
	total   int
}

// NewCursor returns a cursor at stroke 1 of a single-stroke range.
func NewCursor() Cursor {
	return Cursor{current: 1, total: 1}
}

// Current returns the 1-based stroke index.
func (c *Cursor) Current() int {
	return c.current
}

// Total returns the number of strokes in range.
func (c *Cursor) Total() int {
	return c.total
}

// HasStrokes reports whether the range contains any stroke.
func (c *Cursor) HasStrokes() bool {
	return c.total > 0
}

// SetTotalStrokes replaces the stroke count and re-clamps the cursor.
// A zero count leaves the cursor parked at 1 with nothing to show.
func (c *Cursor) SetTotalStrokes(n int) {
	if n < 0 {
		n = 0
	}
	c.total = n
	c.current = c.clamp(c.current)
}

// SetCurrentStroke moves the cursor, clamping silently to the valid range.
func (c *Cursor) SetCurrentStroke(k int) {
	c.current = c.clamp(k)
}

// StepForward advances one stroke; no-op on the last stroke.
func (c *Cursor) StepForward() {
	c.SetCurrentStroke(c.current + 1)
}

// StepBackward goes back one stroke; no-op on the first stroke.
func (c *Cursor) StepBackward() {
	c.SetCurrentStroke(c.current - 1)
}

// Jump moves the cursor by delta strokes.
func (c *Cursor) Jump(delta int) {
	c.SetCurrentStroke(c.current + delta)
}

// First moves to stroke 1.
func (c *Cursor) First() {
	c.SetCurrentStroke(1)
}

// Last moves to the final stroke.
func (c *Cursor) Last() {
	c.SetCurrentStroke(c.total)
}

func (c *Cursor) clamp(k int) int {
	upper := c.total
	if upper < 1 {
		upper = 1
	}
	if k < 1 {
		return 1
	}
	if k > upper {
		return upper
	}
	return k
}
