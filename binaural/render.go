package binaural

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cwbudde/algo-binaural/dsp/buffer"
	"github.com/cwbudde/algo-binaural/dsp/graph"
)

// RendererOption configures a Renderer.
type RendererOption func(*Renderer)

// WithEngine sets the graph engine. The default is a graph.OfflineRenderer.
func WithEngine(e graph.Engine) RendererOption {
	return func(r *Renderer) {
		if e != nil {
			r.engine = e
		}
	}
}

// WithStageOptions sets the modulation stage options used for every render.
func WithStageOptions(opts ...StageOption) RendererOption {
	return func(r *Renderer) {
		r.stageOpts = append([]StageOption(nil), opts...)
	}
}

// WithLogger sets the logger. The default discards all output.
func WithLogger(l *zap.Logger) RendererOption {
	return func(r *Renderer) {
		if l != nil {
			r.logger = l
		}
	}
}

// Renderer produces the binaural variant of a buffer. It holds no per-render
// state and is safe for concurrent use.
type Renderer struct {
	engine    graph.Engine
	stageOpts []StageOption
	logger    *zap.Logger
}

// NewRenderer creates a Renderer.
func NewRenderer(opts ...RendererOption) *Renderer {
	r := &Renderer{
		engine: graph.NewOfflineRenderer(nil),
		logger: zap.NewNop(),
	}

	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}

	return r
}

// Graph returns the validated routing graph Render would execute for band.
func (r *Renderer) Graph(band string) (*graph.Graph, error) {
	p, err := Derive(band)
	if err != nil {
		return nil, &StageError{Stage: StageBand, Err: err}
	}

	g, err := BuildGraph(p, r.stageOpts...)
	if err == nil {
		err = graph.Validate(g, nil)
	}

	if err != nil {
		return nil, &StageError{Stage: StageRender, Err: err}
	}

	return g, nil
}

// Render returns a two-channel buffer with the frame count and sample rate
// of in. Mono input is duplicated before branching; channels past the
// second are ignored. The input is not modified.
func (r *Renderer) Render(ctx context.Context, in *buffer.Audio, band string) (*buffer.Audio, error) {
	p, err := Derive(band)
	if err != nil {
		return nil, &StageError{Stage: StageBand, Err: err}
	}

	err = in.Validate()
	if err != nil {
		return nil, &StageError{Stage: StageRender, Err: err}
	}

	g, err := BuildGraph(p, r.stageOpts...)
	if err != nil {
		return nil, &StageError{Stage: StageRender, Err: err}
	}

	log := r.logger.With(zap.String("render_id", uuid.NewString()), zap.String("band", p.Band.Name))
	log.Debug("render started",
		zap.Float64("center_hz", p.CenterHz),
		zap.Float64("rate_hz", p.ModulationRate),
		zap.Float64("shift_factor", p.ShiftFactor()),
		zap.Int("channels", in.ChannelCount()),
		zap.Int("frames", in.FrameCount()),
		zap.Int("sample_rate", in.SampleRate),
	)

	return r.run(ctx, log, g, in)
}

// RenderGraph renders in through a caller-supplied routing graph, such as
// an edited copy of Graph's output. The graph reads the input from the
// node with ID NodeSource and its destination sets the channel count.
func (r *Renderer) RenderGraph(ctx context.Context, in *buffer.Audio, g *graph.Graph) (*buffer.Audio, error) {
	err := in.Validate()
	if err == nil {
		err = graph.Validate(g, nil)
	}

	if err != nil {
		return nil, &StageError{Stage: StageRender, Err: err}
	}

	log := r.logger.With(zap.String("render_id", uuid.NewString()), zap.Int("nodes", len(g.Nodes)))
	log.Debug("custom graph render started",
		zap.Int("channels", in.ChannelCount()),
		zap.Int("frames", in.FrameCount()),
		zap.Int("sample_rate", in.SampleRate),
	)

	return r.run(ctx, log, g, in)
}

func (r *Renderer) run(ctx context.Context, log *zap.Logger, g *graph.Graph, in *buffer.Audio) (*buffer.Audio, error) {
	start := time.Now()

	out, err := r.engine.Render(ctx, g, graph.Request{
		SampleRate: in.SampleRate,
		Frames:     in.FrameCount(),
		Sources:    map[string]*buffer.Audio{NodeSource: stereoView(in)},
	})
	if err != nil {
		log.Warn("render failed", zap.Error(err))
		return nil, &StageError{Stage: StageRender, Err: err}
	}

	log.Info("render finished",
		zap.Int("frames", out.FrameCount()),
		zap.Duration("audio", out.Duration()),
		zap.Duration("elapsed", time.Since(start)),
	)

	return out, nil
}

// stereoView returns a two-channel view of in sharing its sample storage.
func stereoView(in *buffer.Audio) *buffer.Audio {
	switch in.ChannelCount() {
	case 1:
		return buffer.FromChannels(in.SampleRate, in.Channels[0], in.Channels[0])
	case 2:
		return in
	default:
		return buffer.FromChannels(in.SampleRate, in.Channels[0], in.Channels[1])
	}
}
