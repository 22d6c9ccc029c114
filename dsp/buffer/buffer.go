package buffer

import "github.com/cwbudde/algo-binaural/dsp/core"

// Block is a resizable float64 scratch slice. Render code borrows blocks
// from a Pool and works on Samples directly.
type Block struct {
	samples []float64
}

// NewBlock returns a silent Block of n samples. Negative n yields an empty block.
func NewBlock(n int) *Block {
	return &Block{samples: make([]float64, max(n, 0))}
}

// Samples returns the backing slice.
func (b *Block) Samples() []float64 { return b.samples }

// Len returns the number of samples.
func (b *Block) Len() int { return len(b.samples) }

// Resize sets the length to n. Existing samples are kept and samples past
// the previous length are zero.
func (b *Block) Resize(n int) {
	n = max(n, 0)
	prev := len(b.samples)

	if n > cap(b.samples) {
		grown := make([]float64, n)
		copy(grown, b.samples)
		b.samples = grown

		return
	}

	b.samples = b.samples[:n]
	if n > prev {
		core.Zero(b.samples[prev:])
	}
}
