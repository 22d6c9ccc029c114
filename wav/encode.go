package wav

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"

	vecmath "github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-binaural/dsp/buffer"
	"github.com/cwbudde/algo-binaural/dsp/core"
)

const (
	maxChannels = math.MaxUint16 / bytesPerFrame
	chunkFrames = 4096
	// ditherGain is one 16-bit LSB.
	ditherGain = 1.0 / 32768
)

// ErrTooLarge is returned when the data would not fit the 32-bit size fields.
var ErrTooLarge = errors.New("wav: data exceeds 4 GiB")

// EncodeError reports a buffer that violates its invariants.
type EncodeError struct {
	Err error
}

func (e *EncodeError) Error() string {
	return "wav: encode: " + e.Err.Error()
}

func (e *EncodeError) Unwrap() error {
	return e.Err
}

// EncoderOption configures an Encoder.
type EncoderOption func(*Encoder)

// WithDither adds 1 LSB TPDF dither before quantization. Output stays
// reproducible for a given seed.
func WithDither(seed int64) EncoderOption {
	return func(e *Encoder) {
		e.dither = true
		e.seed = seed
	}
}

// Encoder writes 16-bit PCM WAV files. The zero value is ready to use and
// writes undithered output.
type Encoder struct {
	dither bool
	seed   int64
}

// NewEncoder creates an Encoder.
func NewEncoder(opts ...EncoderOption) *Encoder {
	e := &Encoder{}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}

	return e
}

// Encode serializes a with the default encoder.
func Encode(a *buffer.Audio) ([]byte, error) {
	return (&Encoder{}).Encode(a)
}

// EncodeTo writes a to w with the default encoder.
func EncodeTo(w io.Writer, a *buffer.Audio) (int64, error) {
	return (&Encoder{}).EncodeTo(w, a)
}

// HeaderFor returns the header describing a.
func HeaderFor(a *buffer.Audio) (Header, error) {
	err := a.Validate()
	if err != nil {
		return Header{}, &EncodeError{Err: err}
	}

	channels := a.ChannelCount()
	if channels > maxChannels {
		return Header{}, &EncodeError{Err: fmt.Errorf("%d channels exceed the format limit", channels)}
	}

	if uint64(a.SampleRate)*uint64(channels)*bytesPerFrame > math.MaxUint32 {
		return Header{}, &EncodeError{Err: fmt.Errorf("sample rate %d too high", a.SampleRate)}
	}

	size := uint64(a.FrameCount()) * uint64(channels) * bytesPerFrame
	if size > math.MaxUint32-(HeaderSize-8) {
		return Header{}, &EncodeError{Err: ErrTooLarge}
	}

	return Header{
		SampleRate:    uint32(a.SampleRate),
		NumChannels:   uint16(channels),
		BitsPerSample: bitsPerSample,
		DataSize:      uint32(size),
	}, nil
}

// Encode returns the complete file for a.
func (e *Encoder) Encode(a *buffer.Audio) ([]byte, error) {
	h, err := HeaderFor(a)
	if err != nil {
		return nil, err
	}

	var out bytes.Buffer
	out.Grow(HeaderSize + int(h.DataSize))

	_, err = e.write(&out, a, h)
	if err != nil {
		return nil, err
	}

	return out.Bytes(), nil
}

// EncodeTo writes the complete file for a to w and returns the byte count.
func (e *Encoder) EncodeTo(w io.Writer, a *buffer.Audio) (int64, error) {
	h, err := HeaderFor(a)
	if err != nil {
		return 0, err
	}

	return e.write(w, a, h)
}

func (e *Encoder) write(w io.Writer, a *buffer.Audio, h Header) (int64, error) {
	head, _ := h.MarshalBinary()

	written, err := w.Write(head)
	total := int64(written)

	if err != nil {
		return total, err
	}

	var dither *vecmath.DitherState
	if e.dither {
		dither = vecmath.NewDitherState(e.seed)
	}

	channels := a.ChannelCount()
	frames := a.FrameCount()
	chunk := make([]byte, 0, chunkFrames*channels*bytesPerFrame)
	work := make([][]float64, channels)

	for c := range work {
		work[c] = make([]float64, min(chunkFrames, frames))
	}

	for start := 0; start < frames; start += chunkFrames {
		n := min(chunkFrames, frames-start)

		for c := range work {
			core.Widen(work[c][:n], a.Channels[c][start:start+n])

			if dither != nil {
				vecmath.AddDitherTPDF(work[c][:n], ditherGain, dither)
			}
		}

		chunk = chunk[:0]
		for i := range n {
			for c := range work {
				s := uint16(Quantize(work[c][i]))
				chunk = append(chunk, byte(s), byte(s>>8))
			}
		}

		written, err = w.Write(chunk)
		total += int64(written)

		if err != nil {
			return total, err
		}
	}

	return total, nil
}

// Quantize converts a sample to 16-bit PCM. Values are clamped to [-1, 1],
// negative values scale by 32768 and the rest by 32767; the result is
// truncated toward zero. NaN maps to 0.
func Quantize(v float64) int16 {
	if math.IsNaN(v) {
		return 0
	}

	v = core.Clamp(v, -1, 1)
	if v < 0 {
		return int16(v * 32768)
	}

	return int16(v * 32767)
}
