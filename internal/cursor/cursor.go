// Package cursor tracks the currently displayed cycle within an ordered
// series. The index is clamped on every mutation, so it can never point
// outside the series.
package cursor

import "codeberg.org/mutker/battdiag/internal/cycle"

// Inactive is the index reported while the series is empty.
const Inactive = -1

// Cursor owns a single index into a series of a known length. It never
// holds or copies the records themselves.
type Cursor struct {
	index  int
	length int
}

// New returns a cursor anchored on the most recent cycle.
func New(length int) *Cursor {
	c := &Cursor{}
	c.OnSeriesChanged(length)
	return c
}

// Index returns the current position, or Inactive for an empty series.
func (c *Cursor) Index() int {
	if c.length == 0 {
		return Inactive
	}
	return c.index
}

// Len returns the length of the series the cursor is bound to.
func (c *Cursor) Len() int {
	return c.length
}

// Active reports whether there is anything to point at.
func (c *Cursor) Active() bool {
	return c.length > 0
}

// HasPrev reports whether stepping back would move.
func (c *Cursor) HasPrev() bool {
	return c.Active() && c.index > 0
}

// HasNext reports whether stepping forward would move.
func (c *Cursor) HasNext() bool {
	return c.Active() && c.index < c.length-1
}

// SetIndex moves to i, clamped into the series bounds.
func (c *Cursor) SetIndex(i int) {
	if c.length == 0 {
		return
	}
	c.index = clamp(i, 0, c.length-1)
}

// Step moves by delta without wrapping. It reports whether the index changed;
// a step past either end is a no-op.
func (c *Cursor) Step(delta int) bool {
	if c.length == 0 {
		return false
	}
	prev := c.index
	c.SetIndex(c.index + delta)
	return c.index != prev
}

// OnSeriesChanged rebinds the cursor to a series of newLength records and
// re-anchors it on the latest one, dropping the previous position.
func (c *Cursor) OnSeriesChanged(newLength int) {
	if newLength < 0 {
		newLength = 0
	}
	c.length = newLength
	c.index = max(0, newLength-1)
}

// Seek positions the cursor on the record carrying cycleNumber. It reports
// false and leaves the cursor alone when no such record exists.
func (c *Cursor) Seek(series []cycle.Record, cycleNumber int) bool {
	i := cycle.IndexOf(series, cycleNumber)
	if i < 0 || i >= c.length {
		return false
	}
	c.index = i
	return true
}

// Current returns the record under the cursor, or an empty record when there
// is none, so callers never deal with nil.
func (c *Cursor) Current(series []cycle.Record) cycle.Record {
	i := c.Index()
	if i < 0 || i >= len(series) || series[i] == nil {
		return cycle.Record{}
	}
	return series[i]
}

func clamp(value, minValue, maxValue int) int {
	if value < minValue {
		return minValue
	}
	if value > maxValue {
		return maxValue
	}

	return value
}
