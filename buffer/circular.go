package buffer

import "github.com/pkg/errors"

// CircularFloat is a circular buffer of float64 values with summary
// statistics over the first and second halves of the retained window, in the
// order the values were appended. The fit driver uses it to track rolling
// ensemble acceptance fractions, and chain diagnostics compare half-window
// means to flag drift.
type CircularFloat struct {
	buffer    []float64 // actual storage
	pos       int       // Current position in buffer
	BufSize   int       // BufSize is the fixed number of values maintained in memory
	Count     int       // Count is the number of values in memory. Will always be <= BufSize
	TotalSeen int64     // TotalSeen is the total number of times Add has been called
}

// NewCircularFloat creates a new circular buffer of totalSize. If totalSize
// is not a multiple of 2, it will be adjusted.
func NewCircularFloat(totalSize int) *CircularFloat {
	// Fix odd number situations
	half := totalSize / 2
	total := half + half

	return &CircularFloat{
		buffer:  make([]float64, total),
		pos:     0,
		BufSize: total,
		Count:   0,
	}
}

// Internal: return the next array position
func (c *CircularFloat) nextPos() int {
	return (c.pos + 1) % c.BufSize
}

// Add appends the given value to the buffer, overwriting the oldest entry
func (c *CircularFloat) Add(f float64) error {
	c.TotalSeen++

	c.buffer[c.pos] = f

	c.pos = c.nextPos()

	c.Count++
	if c.Count > c.BufSize {
		c.Count = c.BufSize // max out
	}

	return nil
}

// Full is true once Add has been called at least BufSize times, which is
// when the half-window statistics become available.
func (c *CircularFloat) Full() bool {
	return c.Count >= c.BufSize
}

// Mean returns the mean over the currently retained values.
func (c *CircularFloat) Mean() (float64, error) {
	if c.Count < 1 {
		return 0.0, errors.Errorf("Can not take the mean of an empty buffer")
	}

	sum := 0.0
	for i := 0; i < c.Count; i++ {
		sum += c.buffer[i]
	}

	return sum / float64(c.Count), nil
}

// FirstHalfMean returns the mean over the oldest half of the window. Only
// valid once the buffer is Full.
func (c *CircularFloat) FirstHalfMean() (float64, error) {
	if !c.Full() {
		return 0.0, errors.Errorf("Buffer has seen %d of %d values", c.Count, c.BufSize)
	}

	return c.rangeMean(c.pos, c.BufSize/2), nil
}

// SecondHalfMean returns the mean over the most recent half of the window.
// Only valid once the buffer is Full.
func (c *CircularFloat) SecondHalfMean() (float64, error) {
	if !c.Full() {
		return 0.0, errors.Errorf("Buffer has seen %d of %d values", c.Count, c.BufSize)
	}

	half := c.BufSize / 2
	return c.rangeMean((c.pos+half)%c.BufSize, half), nil
}

// Internal: mean over n values starting at start, wrapping around.
func (c *CircularFloat) rangeMean(start int, n int) float64 {
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += c.buffer[(start+i)%c.BufSize]
	}
	return sum / float64(n)
}
