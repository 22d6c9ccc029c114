package stereo

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-binaural/binaural"
	"github.com/cwbudde/algo-binaural/dsp/buffer"
	"github.com/cwbudde/algo-binaural/dsp/window"
)

func sine(sampleRate, frames int, freq, amp float64) []float32 {
	out := make([]float32, frames)
	for n := range out {
		out[n] = float32(amp * math.Sin(2*math.Pi*freq*float64(n)/float64(sampleRate)))
	}

	return out
}

func TestAnalyzeSine(t *testing.T) {
	t.Parallel()

	const sr = 48000

	a := buffer.FromChannels(sr, sine(sr, sr, 1000, 0.5), sine(sr, sr, 2500, 0.25))

	rep, err := Analyze(a)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if rep.SampleRate != sr || rep.Frames != sr || len(rep.Channels) != 2 {
		t.Fatalf("report shape = %+v", rep)
	}

	checks := []struct {
		name      string
		got, want float64
		tol       float64
	}{
		{"rms0", rep.Channels[0].RMS, 0.5 / math.Sqrt2, 1e-4},
		{"peak0", rep.Channels[0].Peak, 0.5, 1e-3},
		{"hz0", rep.Channels[0].DominantHz, 1000, 3},
		{"rms1", rep.Channels[1].RMS, 0.25 / math.Sqrt2, 1e-4},
		{"hz1", rep.Channels[1].DominantHz, 2500, 3},
	}

	for _, c := range checks {
		if math.Abs(c.got-c.want) > c.tol {
			t.Errorf("%s = %v, want %v ± %v", c.name, c.got, c.want, c.tol)
		}
	}

	if math.Abs(rep.Correlation) > 0.05 {
		t.Errorf("correlation of unrelated tones = %v, want ~0", rep.Correlation)
	}
}

func TestAnalyzeCorrelation(t *testing.T) {
	t.Parallel()

	const sr = 8000

	x := sine(sr, 4000, 300, 0.7)
	neg := make([]float32, len(x))

	for i, v := range x {
		neg[i] = -v
	}

	rep, err := Analyze(buffer.FromChannels(sr, x, x))
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if math.Abs(rep.Correlation-1) > 1e-12 || rep.MaxDiff != 0 {
		t.Fatalf("identical channels: corr %v diff %v", rep.Correlation, rep.MaxDiff)
	}

	rep, err = Analyze(buffer.FromChannels(sr, x, neg))
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if math.Abs(rep.Correlation+1) > 1e-12 {
		t.Fatalf("inverted channels: corr %v, want -1", rep.Correlation)
	}

	if want := 2 * rep.Channels[0].Peak; math.Abs(rep.MaxDiff-want) > 1e-6 {
		t.Fatalf("inverted channels: diff %v, want %v", rep.MaxDiff, want)
	}
}

func TestAnalyzeSilenceAndEdges(t *testing.T) {
	t.Parallel()

	rep, err := Analyze(buffer.New(44100, 2, 1000))
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	for c, st := range rep.Channels {
		if st != (ChannelStats{}) {
			t.Fatalf("channel %d of silence = %+v, want zero", c, st)
		}
	}

	if rep.Correlation != 0 || rep.MaxDiff != 0 {
		t.Fatalf("silence: corr %v diff %v", rep.Correlation, rep.MaxDiff)
	}

	rep, err = Analyze(buffer.New(44100, 1, 0))
	if err != nil {
		t.Fatalf("Analyze empty: %v", err)
	}

	if rep.Frames != 0 || len(rep.Channels) != 1 {
		t.Fatalf("empty report = %+v", rep)
	}
}

func TestAnalyzeOptions(t *testing.T) {
	t.Parallel()

	const sr = 16000

	a := buffer.FromChannels(sr, sine(sr, sr, 440, 0.9))

	rep, err := Analyze(a, WithFFTSize(1024), WithWindow(window.TypeBlackman))
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if math.Abs(rep.Channels[0].DominantHz-440) > 8 {
		t.Fatalf("dominant = %v, want ~440", rep.Channels[0].DominantHz)
	}

	for _, n := range []int{0, 8, 1000, 1 << 21} {
		if _, err := Analyze(a, WithFFTSize(n)); err == nil {
			t.Errorf("WithFFTSize(%d) accepted", n)
		}
	}

	_, err = Analyze(buffer.FromChannels(sr, make([]float32, 2), make([]float32, 3)))
	if !errors.Is(err, buffer.ErrChannelLength) {
		t.Fatalf("Analyze invalid = %v, want ErrChannelLength", err)
	}
}

func TestAnalyzeBinauralRender(t *testing.T) {
	t.Parallel()

	const sr = 44100

	tone := sine(sr, 2*sr, 523.25, 0.6)
	in := buffer.FromChannels(sr, tone, tone)

	out, err := binaural.NewRenderer().Render(context.Background(), in, "beta")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	rep, err := Analyze(out)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if rep.MaxDiff == 0 {
		t.Fatal("modulated channel is identical to the dry channel")
	}

	if rep.Correlation < 0.5 {
		t.Fatalf("correlation = %v, want the channels to stay similar", rep.Correlation)
	}

	for c, st := range rep.Channels {
		if math.Abs(st.DominantHz-523.25) > 4 {
			t.Errorf("channel %d dominant = %v, want ~523", c, st.DominantHz)
		}
	}
}
