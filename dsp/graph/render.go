package graph

import (
	"context"
	"fmt"

	"github.com/cwbudde/algo-binaural/dsp/buffer"
	"github.com/cwbudde/algo-binaural/dsp/core"
	vecmath "github.com/cwbudde/algo-vecmath"
)

// Request describes one offline render.
type Request struct {
	SampleRate int
	Frames     int
	// Sources maps source node IDs to the buffers they play.
	Sources map[string]*buffer.Audio
}

// Engine renders a graph to a buffer.
type Engine interface {
	Render(ctx context.Context, g *Graph, req Request) (*buffer.Audio, error)
}

// OfflineRenderer renders graphs faster than real time in fixed-size blocks.
// It is safe for concurrent use; each Render call owns its node state.
type OfflineRenderer struct {
	reg       *Registry
	blockSize int
	pool      *buffer.Pool
}

var _ Engine = (*OfflineRenderer)(nil)

// NewOfflineRenderer creates a renderer using reg. A nil registry means
// DefaultRegistry. Only the block size of the processor options is used;
// the sample rate comes from each Request.
func NewOfflineRenderer(reg *Registry, opts ...core.ProcessorOption) *OfflineRenderer {
	if reg == nil {
		reg = DefaultRegistry()
	}

	cfg := core.ApplyProcessorOptions(opts...)

	return &OfflineRenderer{
		reg:       reg,
		blockSize: cfg.BlockSize,
		pool:      buffer.NewPool(),
	}
}

// BlockSize returns the render quantum in frames.
func (r *OfflineRenderer) BlockSize() int {
	return r.blockSize
}

// Render processes g for req.Frames frames and returns the destination signal.
// Identical inputs always produce identical output.
func (r *OfflineRenderer) Render(ctx context.Context, g *Graph, req Request) (*buffer.Audio, error) {
	err := validateRequest(g, req)
	if err != nil {
		return nil, err
	}

	prog, err := compile(g, r.reg, Context{
		SampleRate: float64(req.SampleRate),
		Sources:    req.Sources,
	})
	if err != nil {
		return nil, err
	}

	dest := prog.destination.runtime.(*destinationRuntime)
	out := buffer.New(req.SampleRate, dest.channels, req.Frames)

	s := &renderState{pool: r.pool}
	defer s.release()

	for start := 0; start < req.Frames; start += r.blockSize {
		err := ctx.Err()
		if err != nil {
			return nil, err
		}

		frames := min(r.blockSize, req.Frames-start)

		for _, cn := range prog.order {
			blk := s.block(prog, cn, start, frames)
			cn.outputs = cn.runtime.Process(blk)
		}

		for c, ch := range prog.destination.outputs[0] {
			core.Narrow(out.Channels[c][start:start+frames], ch[:frames])
		}

		s.release()
	}

	return out, nil
}

func validateRequest(g *Graph, req Request) error {
	if g == nil {
		return fmt.Errorf("%w: nil graph", ErrInvalidRequest)
	}

	if req.SampleRate <= 0 {
		return fmt.Errorf("%w: sample rate must be > 0: %d", ErrInvalidRequest, req.SampleRate)
	}

	if req.Frames < 0 {
		return fmt.Errorf("%w: frames must be >= 0: %d", ErrInvalidRequest, req.Frames)
	}

	for _, n := range g.Nodes {
		if n.Type != TypeSource {
			continue
		}

		src, ok := req.Sources[n.ID]
		if !ok {
			return fmt.Errorf("%w: no buffer for source %q", ErrInvalidRequest, n.ID)
		}

		err := src.Validate()
		if err != nil {
			return fmt.Errorf("%w: source %q: %w", ErrInvalidRequest, n.ID, err)
		}

		if src.SampleRate != req.SampleRate {
			return fmt.Errorf("%w: source %q sample rate %d differs from render rate %d",
				ErrInvalidRequest, n.ID, src.SampleRate, req.SampleRate)
		}
	}

	return nil
}

// renderState hands out pooled scratch storage for one block.
type renderState struct {
	pool *buffer.Pool
	held []*buffer.Block
}

func (s *renderState) scratch(frames int) []float64 {
	b := s.pool.Get(frames)
	s.held = append(s.held, b)

	return b.Samples()
}

func (s *renderState) release() {
	for _, b := range s.held {
		s.pool.Put(b)
	}

	s.held = s.held[:0]
}

// block gathers the inputs and param values of cn for one block.
func (s *renderState) block(prog *program, cn *compiledNode, start, frames int) *Block {
	blk := &Block{
		Start:  start,
		Frames: frames,
		In:     make([]Bus, len(cn.inputs)),
		Params: make(map[string]*Param, len(cn.specs)),
	}

	for port, conns := range cn.inputs {
		blk.In[port] = s.mix(prog, conns, frames)
	}

	for _, spec := range cn.specs {
		blk.Params[spec.Name] = s.param(prog, cn, spec, frames)
	}

	return blk
}

// mix returns the summed signal of conns. A single connection is passed
// through by reference; no connection yields mono silence.
func (s *renderState) mix(prog *program, conns []Connection, frames int) Bus {
	switch len(conns) {
	case 0:
		return Bus{s.scratch(frames)}
	case 1:
		return prog.output(conns[0])
	}

	channels := 0
	for _, c := range conns {
		channels = max(channels, len(prog.output(c)))
	}

	sum := make(Bus, channels)
	for ch := range sum {
		sum[ch] = s.scratch(frames)
	}

	for _, c := range conns {
		src := prog.output(c)
		for ch, dst := range sum {
			// Mono sources are broadcast to every channel.
			switch {
			case len(src) == 1:
				vecmath.AddBlockInPlace(dst, src[0][:frames])
			case ch < len(src):
				vecmath.AddBlockInPlace(dst, src[ch][:frames])
			}
		}
	}

	return sum
}

// param computes base value plus the mono downmix of every modulating signal.
func (s *renderState) param(prog *program, cn *compiledNode, spec ParamSpec, frames int) *Param {
	base := cn.node.GetNum(spec.Name, spec.Default)
	conns := cn.params[spec.Name]

	if len(conns) == 0 {
		values := s.scratch(1)
		values[0] = base

		return &Param{Values: values, Constant: true}
	}

	values := s.scratch(frames)
	for i := range values {
		values[i] = base
	}

	for _, c := range conns {
		src := prog.output(c)
		if len(src) == 1 {
			vecmath.AddBlockInPlace(values, src[0][:frames])
			continue
		}

		down := s.scratch(frames)
		for _, ch := range src {
			vecmath.AddBlockInPlace(down, ch[:frames])
		}

		vecmath.ScaleBlockInPlace(down, 1/float64(len(src)))
		vecmath.AddBlockInPlace(values, down)
	}

	return &Param{Values: values}
}

func (p *program) output(c Connection) Bus {
	return p.byID[c.From].outputs[c.FromPort]
}
