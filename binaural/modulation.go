package binaural

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-binaural/dsp/core"
	"github.com/cwbudde/algo-binaural/dsp/graph"
	"github.com/cwbudde/algo-binaural/dsp/interp"
)

const (
	// DefaultDepthSeconds is the oscillator amplitude applied to the delay time.
	DefaultDepthSeconds = 0.0002
	// DefaultMixGain attenuates both the dry and the delayed path.
	DefaultMixGain = 0.5
	// DefaultMaxDelaySeconds bounds the delay line.
	DefaultMaxDelaySeconds = 1.0

	maxStageDelaySeconds = 10.0
)

// Modulation stage node IDs.
const (
	NodeLFO   = "mod.lfo"
	NodeDepth = "mod.depth"
	NodeDelay = "mod.delay"
	NodeMix   = "mod.mix"
)

// StageOption mutates modulation stage construction parameters.
type StageOption func(*stageConfig) error

type stageConfig struct {
	depthSeconds    float64
	mixGain         float64
	maxDelaySeconds float64
	interpolation   interp.Mode
}

func defaultStageConfig() stageConfig {
	return stageConfig{
		depthSeconds:    DefaultDepthSeconds,
		mixGain:         DefaultMixGain,
		maxDelaySeconds: DefaultMaxDelaySeconds,
		interpolation:   interp.Linear,
	}
}

// WithDepthSeconds sets the delay-time wobble amplitude. Zero disables
// modulation and makes the stage an exact passthrough.
func WithDepthSeconds(depth float64) StageOption {
	return func(cfg *stageConfig) error {
		if depth < 0 || !core.IsFinite(depth) {
			return fmt.Errorf("modulation depth must be >= 0 and finite: %f", depth)
		}

		cfg.depthSeconds = depth

		return nil
	}
}

// WithMixGain sets the gain applied to the summed dry and delayed signals.
func WithMixGain(gain float64) StageOption {
	return func(cfg *stageConfig) error {
		if gain < 0 || gain > 1 || math.IsNaN(gain) {
			return fmt.Errorf("modulation mix gain must be in [0, 1]: %f", gain)
		}

		cfg.mixGain = gain

		return nil
	}
}

// WithMaxDelaySeconds sets the delay line capacity.
func WithMaxDelaySeconds(seconds float64) StageOption {
	return func(cfg *stageConfig) error {
		if !(seconds > 0) || seconds > maxStageDelaySeconds {
			return fmt.Errorf("modulation max delay must be in (0, %g] seconds: %f",
				maxStageDelaySeconds, seconds)
		}

		cfg.maxDelaySeconds = seconds

		return nil
	}
}

// WithInterpolation selects how fractional delay times are read.
// The default is linear.
func WithInterpolation(m interp.Mode) StageOption {
	return func(cfg *stageConfig) error {
		if m != interp.Linear && m != interp.Hermite {
			return fmt.Errorf("modulation interpolation must be linear or hermite: %d", int(m))
		}

		cfg.interpolation = m

		return nil
	}
}

// ModulationStage approximates a pitch wobble by modulating a zero-based
// delay line with a sine oscillator and mixing it with the dry signal.
type ModulationStage struct {
	rateHz float64
	cfg    stageConfig
}

// NewModulationStage validates opts and returns a stage for the given rate.
// Rates that are not positive and finite yield a stationary oscillator.
func NewModulationStage(rateHz float64, opts ...StageOption) (*ModulationStage, error) {
	cfg := defaultStageConfig()

	for _, opt := range opts {
		if opt == nil {
			continue
		}

		err := opt(&cfg)
		if err != nil {
			return nil, fmt.Errorf("binaural: %w", err)
		}
	}

	if !(rateHz > 0) || math.IsInf(rateHz, 0) {
		rateHz = 0
	}

	return &ModulationStage{rateHz: rateHz, cfg: cfg}, nil
}

// RateHz returns the oscillator frequency.
func (s *ModulationStage) RateHz() float64 { return s.rateHz }

// DepthSeconds returns the oscillator amplitude on the delay time.
func (s *ModulationStage) DepthSeconds() float64 { return s.cfg.depthSeconds }

// MixGain returns the output gain.
func (s *ModulationStage) MixGain() float64 { return s.cfg.mixGain }

// Interpolation returns the delay read mode.
func (s *ModulationStage) Interpolation() interp.Mode { return s.cfg.interpolation }

// Attach adds the stage to g, fed from output port fromPort of node from,
// and returns the ID of the stage's output node.
func (s *ModulationStage) Attach(g *graph.Graph, from string, fromPort int) string {
	g.AddNode(NodeLFO, graph.TypeOscillator, map[string]float64{
		graph.ParamFrequency: s.rateHz,
	})
	g.AddNode(NodeDepth, graph.TypeGain, map[string]float64{
		graph.ParamGain: s.cfg.depthSeconds,
	})
	g.AddNode(NodeDelay, graph.TypeDelay, map[string]float64{
		graph.ParamDelayTime:       0,
		graph.SettingMaxDelayTime:  s.cfg.maxDelaySeconds,
		graph.SettingInterpolation: float64(s.cfg.interpolation),
	})
	g.AddNode(NodeMix, graph.TypeGain, map[string]float64{
		graph.ParamGain: s.cfg.mixGain,
	})

	g.Connect(NodeLFO, 0, NodeDepth, 0)
	g.ConnectParam(NodeDepth, 0, NodeDelay, graph.ParamDelayTime)
	g.Connect(from, fromPort, NodeDelay, 0)
	g.Connect(from, fromPort, NodeMix, 0)
	g.Connect(NodeDelay, 0, NodeMix, 0)

	return NodeMix
}
