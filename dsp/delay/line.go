// Package delay provides a circular delay line with fractional reads.
package delay

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-binaural/dsp/interp"
)

// guard is the number of extra slots kept beyond the maximum delay so that
// interpolation taps past the maximum never alias onto fresh samples.
const guard = 3

// Option configures a Line.
type Option func(*Line)

// WithMode selects the fractional interpolation algorithm.
func WithMode(m interp.Mode) Option {
	return func(d *Line) {
		d.mode = m
	}
}

// Line is a circular delay line.
type Line struct {
	buffer   []float64
	writePos int
	maxDelay int
	mode     interp.Mode
}

// New returns a delay line able to delay up to maxDelay samples.
// The default interpolation is linear.
func New(maxDelay int, opts ...Option) (*Line, error) {
	if maxDelay < 0 {
		return nil, fmt.Errorf("delay max delay must be >= 0: %d", maxDelay)
	}

	d := &Line{
		buffer:   make([]float64, maxDelay+guard),
		maxDelay: maxDelay,
		mode:     interp.Linear,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}

	return d, nil
}

// MaxDelay returns the largest supported delay in samples.
func (d *Line) MaxDelay() int {
	return d.maxDelay
}

// Write writes one sample.
func (d *Line) Write(sample float64) {
	d.buffer[d.writePos] = sample
	d.writePos++
	if d.writePos >= len(d.buffer) {
		d.writePos = 0
	}
}

// Read returns the sample written delay samples ago; 0 is the latest write.
func (d *Line) Read(delay int) float64 {
	size := len(d.buffer)
	if delay < 0 {
		delay = 0
	}
	if delay >= size {
		delay = size - 1
	}
	readPos := d.writePos - 1 - delay
	if readPos < 0 {
		readPos += size
	}
	return d.buffer[readPos]
}

// ReadFractional reads a fractional delay clamped to [0, MaxDelay()].
// NaN delays read as zero delay.
func (d *Line) ReadFractional(delay float64) float64 {
	if !(delay > 0) {
		return d.Read(0)
	}
	if maxDelay := float64(d.maxDelay); delay > maxDelay {
		delay = maxDelay
	}

	p := int(math.Floor(delay))
	t := delay - float64(p)

	if d.mode == interp.Hermite {
		return interp.Hermite4(t, d.Read(max(0, p-1)), d.Read(p), d.Read(p+1), d.Read(p+2))
	}

	return interp.Linear2(t, d.Read(p), d.Read(p+1))
}

// Tick writes sample and returns the signal delayed by delay samples.
// A delay of 0 returns sample unchanged.
func (d *Line) Tick(sample, delay float64) float64 {
	d.Write(sample)
	return d.ReadFractional(delay)
}
