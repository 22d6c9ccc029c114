// Package stereo summarizes a rendered buffer: level, dominant frequency per
// channel and how far the first two channels diverge.
package stereo

import (
	"fmt"
	"math"
	"math/bits"

	algofft "github.com/MeKo-Christian/algo-fft"
	vecmath "github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-binaural/dsp/buffer"
	"github.com/cwbudde/algo-binaural/dsp/core"
	"github.com/cwbudde/algo-binaural/dsp/window"
)

const (
	defaultFFTSize = 8192
	minFFTSize     = 16
	maxFFTSize     = 1 << 20
)

// ChannelStats describes one channel.
type ChannelStats struct {
	RMS        float64
	Peak       float64
	DominantHz float64
}

// Report is the result of Analyze.
type Report struct {
	SampleRate int
	Frames     int
	Channels   []ChannelStats
	// Correlation is the normalized cross-correlation at lag zero of the
	// first two channels, in [-1, 1]. It is 0 when either channel is silent
	// or the buffer is mono.
	Correlation float64
	// MaxDiff is the largest absolute sample difference between the first
	// two channels.
	MaxDiff float64
}

// Option configures Analyze.
type Option func(*config) error

type config struct {
	fftSize int
	window  window.Type
}

// WithFFTSize sets the largest FFT used for the dominant frequency.
// n must be a power of two in [16, 2^20].
func WithFFTSize(n int) Option {
	return func(cfg *config) error {
		if n < minFFTSize || n > maxFFTSize || n&(n-1) != 0 {
			return fmt.Errorf("stereo: fft size must be a power of two in [%d, %d]: %d", minFFTSize, maxFFTSize, n)
		}

		cfg.fftSize = n

		return nil
	}
}

// WithWindow selects the analysis window. The default is Hann.
func WithWindow(t window.Type) Option {
	return func(cfg *config) error {
		cfg.window = t
		return nil
	}
}

// Analyze measures a.
func Analyze(a *buffer.Audio, opts ...Option) (Report, error) {
	cfg := config{fftSize: defaultFFTSize, window: window.TypeHann}

	for _, opt := range opts {
		if opt == nil {
			continue
		}

		err := opt(&cfg)
		if err != nil {
			return Report{}, err
		}
	}

	err := a.Validate()
	if err != nil {
		return Report{}, fmt.Errorf("stereo: %w", err)
	}

	frames := a.FrameCount()
	rep := Report{
		SampleRate: a.SampleRate,
		Frames:     frames,
		Channels:   make([]ChannelStats, a.ChannelCount()),
	}

	widened := make([][]float64, min(2, a.ChannelCount()))

	for c, ch := range a.Channels {
		x := make([]float64, frames)
		core.Widen(x, ch)

		if c < len(widened) {
			widened[c] = x
		}

		st := ChannelStats{Peak: vecmath.MaxAbs(x)}
		if frames > 0 {
			st.RMS = math.Sqrt(vecmath.DotProduct(x, x) / float64(frames))
		}

		st.DominantHz, err = dominantHz(x, float64(a.SampleRate), cfg)
		if err != nil {
			return Report{}, err
		}

		rep.Channels[c] = st
	}

	if len(widened) == 2 && frames > 0 {
		rep.Correlation = correlation(widened[0], widened[1])
		rep.MaxDiff = maxDiff(widened[0], widened[1])
	}

	return rep, nil
}

func correlation(a, b []float64) float64 {
	ea := vecmath.DotProduct(a, a)
	eb := vecmath.DotProduct(b, b)

	if ea == 0 || eb == 0 {
		return 0
	}

	return core.Clamp(vecmath.DotProduct(a, b)/math.Sqrt(ea*eb), -1, 1)
}

func maxDiff(a, b []float64) float64 {
	diff := make([]float64, len(a))
	vecmath.ScaleBlock(diff, b, -1)
	vecmath.AddBlockInPlace(diff, a)

	return vecmath.MaxAbs(diff)
}

// dominantHz returns the frequency of the strongest non-DC bin of the
// windowed leading segment of x, refined by parabolic interpolation.
func dominantHz(x []float64, sampleRate float64, cfg config) (float64, error) {
	if len(x) < 2 {
		return 0, nil
	}

	n := min(cfg.fftSize, nextPow2(len(x)))
	seg := min(n, len(x))

	frame := make([]float64, seg)
	copy(frame, x[:seg])
	window.Apply(cfg.window, frame, window.WithPeriodic())

	in := make([]complex128, n)
	for i, v := range frame {
		in[i] = complex(v, 0)
	}

	plan, err := algofft.NewPlan64(n)
	if err != nil {
		return 0, fmt.Errorf("stereo: fft plan: %w", err)
	}

	out := make([]complex128, n)

	err = plan.Forward(out, in)
	if err != nil {
		return 0, fmt.Errorf("stereo: fft: %w", err)
	}

	half := n/2 + 1
	re := make([]float64, half)
	im := make([]float64, half)

	for k := range half {
		re[k] = real(out[k])
		im[k] = imag(out[k])
	}

	mag := make([]float64, half)
	vecmath.Magnitude(mag, re, im)

	best := 1
	for k := 2; k < half; k++ {
		if mag[k] > mag[best] {
			best = k
		}
	}

	if mag[best] == 0 {
		return 0, nil
	}

	offset := 0.0
	if best > 0 && best < half-1 {
		l, c, r := mag[best-1], mag[best], mag[best+1]
		if den := l - 2*c + r; den != 0 {
			offset = 0.5 * (l - r) / den
		}
	}

	return (float64(best) + offset) * sampleRate / float64(n), nil
}

func nextPow2(n int) int {
	if n <= minFFTSize {
		return minFFTSize
	}

	return 1 << bits.Len(uint(n-1))
}
