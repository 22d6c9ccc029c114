package graph

import (
	"github.com/cwbudde/algo-binaural/dsp/buffer"
	"github.com/cwbudde/algo-binaural/dsp/core"
)

// Context provides environmental information that node runtimes need.
type Context struct {
	SampleRate float64
	Sources    map[string]*buffer.Audio
}

// Bus is the signal of one port for one block: one slice per channel.
type Bus [][]float64

// ParamSpec declares an AudioParam and its default base value.
type ParamSpec struct {
	Name    string
	Default float64
}

// Param holds the per-sample values of an AudioParam for one block.
type Param struct {
	Values []float64
	// Constant is set when nothing modulates the param; every entry of
	// Values then equals Values[0].
	Constant bool
}

// At returns the value for sample n.
func (p *Param) At(n int) float64 {
	if p.Constant {
		return p.Values[0]
	}
	return p.Values[n]
}

// Block carries one render quantum into a runtime.
type Block struct {
	// Start is the absolute frame index of the first sample.
	Start int
	// Frames is the number of samples in this block.
	Frames int
	// In holds one Bus per input port. Unconnected ports carry mono silence.
	// Runtimes must not modify input buses.
	In []Bus
	// Params holds the values of every declared AudioParam.
	Params map[string]*Param
}

// Runtime is the per-node processing contract.
type Runtime interface {
	Inputs() int
	Outputs() int
	Params() []ParamSpec
	// Process renders one block and returns one Bus per output port.
	// The returned buses stay owned by the runtime and are valid until the
	// next call.
	Process(blk *Block) []Bus
}

// ensureBus resizes bus to channels x frames, reusing storage.
// Contents are unspecified and must be overwritten.
func ensureBus(bus Bus, channels, frames int) Bus {
	if cap(bus) < channels {
		grown := make(Bus, channels)
		copy(grown, bus[:cap(bus)])
		bus = grown
	}

	bus = bus[:channels]
	for c := range bus {
		bus[c] = core.EnsureLen(bus[c], frames)
	}

	return bus
}
