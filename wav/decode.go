package wav

import (
	"errors"
	"fmt"
	"io"

	gowav "github.com/mjibson/go-dsp/wav"

	"github.com/cwbudde/algo-binaural/dsp/buffer"
)

// ErrDecode wraps every decoder failure.
var ErrDecode = errors.New("wav: decode failed")

// Decoder reads WAV files into sample buffers. The zero value is ready to use.
type Decoder struct{}

// Decode reads a WAV stream with the zero Decoder.
func Decode(r io.Reader) (*buffer.Audio, error) {
	return Decoder{}.Decode(r)
}

// Decode reads 8-bit or 16-bit PCM or 32-bit float WAV data from r and
// returns deinterleaved samples in [-1, 1]. A trailing partial frame is
// dropped.
func (Decoder) Decode(r io.Reader) (a *buffer.Audio, err error) {
	// go-dsp divides by header fields without checking them for zero.
	defer func() {
		if p := recover(); p != nil {
			a, err = nil, fmt.Errorf("%w: malformed header: %v", ErrDecode, p)
		}
	}()

	w, err := gowav.New(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}

	channels := int(w.NumChannels)
	if channels == 0 || w.SampleRate == 0 {
		return nil, fmt.Errorf("%w: %d channels at %d Hz", ErrDecode, channels, w.SampleRate)
	}

	interleaved, err := readInterleaved(w, channels)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}

	frames := len(interleaved) / channels
	out := buffer.New(int(w.SampleRate), channels, frames)

	for i, v := range interleaved[:frames*channels] {
		out.Channels[i%channels][i/channels] = v
	}

	return out, nil
}

// readInterleaved reads the whole data chunk. go-dsp rounds its sample count
// down to a multiple of eight bytes' worth, so the remainder is read frame
// by frame until the chunk is exhausted.
func readInterleaved(w *gowav.Wav, channels int) ([]float32, error) {
	out := make([]float32, 0, w.Samples+8)

	if bulk := w.Samples / channels * channels; bulk > 0 {
		raw, err := w.ReadSamples(bulk)
		if err != nil {
			return nil, err
		}

		out, err = appendSamples(out, raw)
		if err != nil {
			return nil, err
		}
	}

	for {
		raw, err := w.ReadSamples(channels)
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return out, nil
		}

		if err != nil {
			return nil, err
		}

		out, err = appendSamples(out, raw)
		if err != nil {
			return nil, err
		}
	}
}

func appendSamples(dst []float32, raw any) ([]float32, error) {
	switch samples := raw.(type) {
	case []uint8:
		for _, v := range samples {
			dst = append(dst, (float32(v)-128)/128)
		}
	case []int16:
		for _, v := range samples {
			dst = append(dst, float32(v)/32768)
		}
	case []float32:
		dst = append(dst, samples...)
	default:
		return nil, fmt.Errorf("unsupported sample type %T", raw)
	}

	return dst, nil
}
