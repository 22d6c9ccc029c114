package buffer

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInvalidSampleRate is returned for non-positive sample rates.
	ErrInvalidSampleRate = errors.New("buffer: sample rate must be > 0")
	// ErrNoChannels is returned for buffers without any channel.
	ErrNoChannels = errors.New("buffer: at least one channel required")
	// ErrChannelLength is returned when channels differ in length.
	ErrChannelLength = errors.New("buffer: channel lengths differ")
)

// Audio is a deinterleaved multi-channel sample buffer.
// Every channel holds FrameCount() float32 samples, nominally in [-1, 1].
type Audio struct {
	SampleRate int
	Channels   [][]float32
}

// New allocates a silent buffer with the given shape.
func New(sampleRate, channels, frames int) *Audio {
	if channels < 0 {
		channels = 0
	}
	if frames < 0 {
		frames = 0
	}

	a := &Audio{SampleRate: sampleRate, Channels: make([][]float32, channels)}
	for i := range a.Channels {
		a.Channels[i] = make([]float32, frames)
	}

	return a
}

// FromChannels wraps existing channel slices without copying.
func FromChannels(sampleRate int, channels ...[]float32) *Audio {
	return &Audio{SampleRate: sampleRate, Channels: channels}
}

// ChannelCount returns the number of channels.
func (a *Audio) ChannelCount() int {
	return len(a.Channels)
}

// FrameCount returns the number of samples per channel.
// For an invalid buffer it reports the length of the first channel.
func (a *Audio) FrameCount() int {
	if len(a.Channels) == 0 {
		return 0
	}
	return len(a.Channels[0])
}

// Channel returns channel i, or nil when out of range.
func (a *Audio) Channel(i int) []float32 {
	if i < 0 || i >= len(a.Channels) {
		return nil
	}
	return a.Channels[i]
}

// Duration returns the playback length.
func (a *Audio) Duration() time.Duration {
	if a.SampleRate <= 0 {
		return 0
	}
	return time.Duration(a.FrameCount()) * time.Second / time.Duration(a.SampleRate)
}

// Validate checks the buffer invariants.
func (a *Audio) Validate() error {
	if a == nil {
		return ErrNoChannels
	}

	if a.SampleRate <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidSampleRate, a.SampleRate)
	}

	if len(a.Channels) == 0 {
		return ErrNoChannels
	}

	frames := len(a.Channels[0])
	for i, ch := range a.Channels[1:] {
		if len(ch) != frames {
			return fmt.Errorf("%w: channel %d has %d frames, channel 0 has %d",
				ErrChannelLength, i+1, len(ch), frames)
		}
	}

	return nil
}
