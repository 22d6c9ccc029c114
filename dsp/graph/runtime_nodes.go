package graph

import (
	"math"

	"github.com/cwbudde/algo-binaural/dsp/buffer"
	"github.com/cwbudde/algo-binaural/dsp/core"
	"github.com/cwbudde/algo-binaural/dsp/delay"
	"github.com/cwbudde/algo-binaural/dsp/interp"
	vecmath "github.com/cwbudde/algo-vecmath"
)

// sourceRuntime plays back a decoded buffer, emitting silence past its end.
type sourceRuntime struct {
	src *buffer.Audio
	out Bus
}

func (r *sourceRuntime) Inputs() int         { return 0 }
func (r *sourceRuntime) Outputs() int        { return 1 }
func (r *sourceRuntime) Params() []ParamSpec { return nil }

func (r *sourceRuntime) Process(blk *Block) []Bus {
	channels := 1
	if r.src != nil && r.src.ChannelCount() > 0 {
		channels = r.src.ChannelCount()
	}

	r.out = ensureBus(r.out, channels, blk.Frames)

	for c, dst := range r.out {
		var samples []float32
		if r.src != nil {
			samples = r.src.Channel(c)
		}

		n := 0
		if blk.Start < len(samples) {
			n = core.Widen(dst, samples[blk.Start:])
		}

		core.Zero(dst[n:])
	}

	return []Bus{r.out}
}

// splitRuntime exposes channel i of its input on output port i.
type splitRuntime struct {
	outputs int
	silent  []float64
	out     []Bus
}

func (r *splitRuntime) Inputs() int         { return 1 }
func (r *splitRuntime) Outputs() int        { return r.outputs }
func (r *splitRuntime) Params() []ParamSpec { return nil }

func (r *splitRuntime) Process(blk *Block) []Bus {
	if r.out == nil {
		r.out = make([]Bus, r.outputs)
		for i := range r.out {
			r.out[i] = make(Bus, 1)
		}
	}

	in := blk.In[0]

	for i := range r.out {
		if i < len(in) {
			r.out[i][0] = in[i]
			continue
		}

		r.silent = core.EnsureLen(r.silent, blk.Frames)
		core.Zero(r.silent)
		r.out[i][0] = r.silent
	}

	return r.out
}

// mergeRuntime interleaves its mono inputs into one multi-channel output.
// Multi-channel inputs are downmixed by averaging.
type mergeRuntime struct {
	inputs int
	out    Bus
}

func (r *mergeRuntime) Inputs() int         { return r.inputs }
func (r *mergeRuntime) Outputs() int        { return 1 }
func (r *mergeRuntime) Params() []ParamSpec { return nil }

func (r *mergeRuntime) Process(blk *Block) []Bus {
	r.out = ensureBus(r.out, r.inputs, blk.Frames)

	for i, dst := range r.out {
		in := blk.In[i]
		if len(in) == 0 {
			core.Zero(dst)
			continue
		}

		copy(dst, in[0])

		if len(in) == 1 {
			continue
		}

		for _, ch := range in[1:] {
			vecmath.AddBlockInPlace(dst, ch[:blk.Frames])
		}

		vecmath.ScaleBlockInPlace(dst, 1/float64(len(in)))
	}

	return []Bus{r.out}
}

// gainRuntime multiplies every channel by its gain param.
type gainRuntime struct {
	out Bus
}

func (r *gainRuntime) Inputs() int  { return 1 }
func (r *gainRuntime) Outputs() int { return 1 }

func (r *gainRuntime) Params() []ParamSpec {
	return []ParamSpec{{Name: ParamGain, Default: 1}}
}

func (r *gainRuntime) Process(blk *Block) []Bus {
	in := blk.In[0]
	gain := blk.Params[ParamGain]
	r.out = ensureBus(r.out, len(in), blk.Frames)

	for c, dst := range r.out {
		src := in[c][:blk.Frames]
		if gain.Constant {
			vecmath.ScaleBlock(dst, src, gain.Values[0])
		} else {
			vecmath.MulBlock(dst, src, gain.Values[:blk.Frames])
		}
	}

	return []Bus{r.out}
}

// delayRuntime delays each channel by delayTime seconds, clamped to
// [0, maxDelayTime].
type delayRuntime struct {
	sampleRate float64
	maxSeconds float64
	maxSamples int
	mode       interp.Mode

	lines []*delay.Line
	out   Bus
}

func (r *delayRuntime) Inputs() int  { return 1 }
func (r *delayRuntime) Outputs() int { return 1 }

func (r *delayRuntime) Params() []ParamSpec {
	return []ParamSpec{{Name: ParamDelayTime, Default: 0}}
}

func (r *delayRuntime) Process(blk *Block) []Bus {
	in := blk.In[0]
	delayTime := blk.Params[ParamDelayTime]

	for len(r.lines) < len(in) {
		line, err := delay.New(r.maxSamples, delay.WithMode(r.mode))
		if err != nil {
			// maxSamples is validated by the factory.
			panic("graph: delay line: " + err.Error())
		}

		r.lines = append(r.lines, line)
	}

	r.out = ensureBus(r.out, len(in), blk.Frames)

	for c, dst := range r.out {
		line := r.lines[c]
		src := in[c]

		for n := range dst {
			seconds := core.Clamp(delayTime.At(n), 0, r.maxSeconds)
			dst[n] = line.Tick(src[n], seconds*r.sampleRate)
		}
	}

	return []Bus{r.out}
}

// oscillatorRuntime is a sine generator driven by its frequency param.
type oscillatorRuntime struct {
	sampleRate float64
	phase      float64
	out        Bus
}

func (r *oscillatorRuntime) Inputs() int  { return 0 }
func (r *oscillatorRuntime) Outputs() int { return 1 }

func (r *oscillatorRuntime) Params() []ParamSpec {
	return []ParamSpec{{Name: ParamFrequency, Default: defaultOscillatorHz}}
}

func (r *oscillatorRuntime) Process(blk *Block) []Bus {
	freq := blk.Params[ParamFrequency]
	r.out = ensureBus(r.out, 1, blk.Frames)
	dst := r.out[0]

	for n := range dst {
		dst[n] = math.Sin(r.phase)

		f := freq.At(n)
		if !core.IsFinite(f) {
			f = 0
		}

		r.phase += 2 * math.Pi * f / r.sampleRate
		if r.phase >= 2*math.Pi || r.phase < 0 {
			r.phase = math.Mod(r.phase, 2*math.Pi)
			if r.phase < 0 {
				r.phase += 2 * math.Pi
			}
		}
	}

	return []Bus{r.out}
}

// destinationRuntime conforms its input to a fixed channel count.
// Mono input is broadcast; surplus channels are dropped.
type destinationRuntime struct {
	channels int
	out      Bus
}

func (r *destinationRuntime) Inputs() int         { return 1 }
func (r *destinationRuntime) Outputs() int        { return 1 }
func (r *destinationRuntime) Params() []ParamSpec { return nil }

func (r *destinationRuntime) Process(blk *Block) []Bus {
	in := blk.In[0]
	r.out = ensureBus(r.out, r.channels, blk.Frames)

	for c, dst := range r.out {
		switch {
		case len(in) == 1:
			copy(dst, in[0])
		case c < len(in):
			copy(dst, in[c])
		default:
			core.Zero(dst)
		}
	}

	return []Bus{r.out}
}
