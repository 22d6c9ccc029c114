package graph

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-binaural/dsp/interp"
)

const (
	defaultOscillatorHz    = 440
	defaultMaxDelaySeconds = 1.0
	// maxDelayLimitSeconds mirrors the upper bound common audio engines
	// accept for a delay node's buffer.
	maxDelayLimitSeconds = 180.0
	maxPorts             = 32
)

// DefaultRegistry returns a Registry pre-populated with the primitive node types.
func DefaultRegistry() *Registry {
	r := NewRegistry()

	r.MustRegister(TypeSource, func(ctx Context, n Node) (Runtime, error) {
		return &sourceRuntime{src: ctx.Sources[n.ID]}, nil
	})
	r.MustRegister(TypeSplit, func(_ Context, n Node) (Runtime, error) {
		outputs, err := portCount(n, SettingOutputs)
		if err != nil {
			return nil, err
		}

		return &splitRuntime{outputs: outputs}, nil
	})
	r.MustRegister(TypeMerge, func(_ Context, n Node) (Runtime, error) {
		inputs, err := portCount(n, SettingInputs)
		if err != nil {
			return nil, err
		}

		return &mergeRuntime{inputs: inputs}, nil
	})
	r.MustRegister(TypeGain, func(_ Context, _ Node) (Runtime, error) {
		return &gainRuntime{}, nil
	})
	r.MustRegister(TypeDelay, func(ctx Context, n Node) (Runtime, error) {
		maxDelay := n.GetNum(SettingMaxDelayTime, defaultMaxDelaySeconds)
		if maxDelay <= 0 || maxDelay >= maxDelayLimitSeconds {
			return nil, fmt.Errorf("%w: node %q max delay must be in (0, %g) seconds: %g",
				ErrInvalidGraph, n.ID, maxDelayLimitSeconds, maxDelay)
		}

		mode, err := interpolationMode(n)
		if err != nil {
			return nil, err
		}

		return &delayRuntime{
			sampleRate: ctx.SampleRate,
			maxSeconds: maxDelay,
			maxSamples: int(math.Ceil(maxDelay * ctx.SampleRate)),
			mode:       mode,
		}, nil
	})
	r.MustRegister(TypeOscillator, func(ctx Context, _ Node) (Runtime, error) {
		return &oscillatorRuntime{sampleRate: ctx.SampleRate}, nil
	})
	r.MustRegister(TypeDestination, func(_ Context, n Node) (Runtime, error) {
		channels, err := portCount(n, SettingChannels)
		if err != nil {
			return nil, err
		}

		return &destinationRuntime{channels: channels}, nil
	})

	return r
}

// portCount reads a port or channel count setting, defaulting to stereo.
func portCount(n Node, key string) (int, error) {
	v := n.GetNum(key, 2)
	if v < 1 || v > maxPorts || v != math.Trunc(v) {
		return 0, fmt.Errorf("%w: node %q %s must be an integer in [1, %d]: %g",
			ErrInvalidGraph, n.ID, key, maxPorts, v)
	}

	return int(v), nil
}

func interpolationMode(n Node) (interp.Mode, error) {
	v := n.GetNum(SettingInterpolation, float64(interp.Linear))

	for _, m := range []interp.Mode{interp.Linear, interp.Hermite} {
		if v == float64(m) {
			return m, nil
		}
	}

	return 0, fmt.Errorf("%w: node %q %s must be 0 (linear) or 1 (hermite): %g",
		ErrInvalidGraph, n.ID, SettingInterpolation, v)
}
