package wav

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// HeaderSize is the length of the canonical PCM header.
const HeaderSize = 44

const (
	formatPCM     = 1
	fmtChunkSize  = 16
	bitsPerSample = 16
	bytesPerFrame = bitsPerSample / 8
)

// ErrHeader is returned by ParseHeader for non-canonical headers.
var ErrHeader = errors.New("wav: invalid header")

// Header holds the variable fields of a canonical 16-bit PCM header.
type Header struct {
	SampleRate    uint32
	NumChannels   uint16
	BitsPerSample uint16
	DataSize      uint32
}

// ChunkSize returns the RIFF chunk size, 36 + DataSize.
func (h Header) ChunkSize() uint32 {
	return HeaderSize - 8 + h.DataSize
}

// BlockAlign returns the number of bytes per frame.
func (h Header) BlockAlign() uint16 {
	return h.NumChannels * h.BitsPerSample / 8
}

// ByteRate returns the number of bytes per second.
func (h Header) ByteRate() uint32 {
	return h.SampleRate * uint32(h.BlockAlign())
}

// Frames returns the number of frames described by DataSize.
func (h Header) Frames() int {
	if h.BlockAlign() == 0 {
		return 0
	}

	return int(h.DataSize / uint32(h.BlockAlign()))
}

// AppendBinary appends the 44-byte encoding of h to b.
func (h Header) AppendBinary(b []byte) ([]byte, error) {
	le := binary.LittleEndian

	b = append(b, "RIFF"...)
	b = le.AppendUint32(b, h.ChunkSize())
	b = append(b, "WAVE"...)
	b = append(b, "fmt "...)
	b = le.AppendUint32(b, fmtChunkSize)
	b = le.AppendUint16(b, formatPCM)
	b = le.AppendUint16(b, h.NumChannels)
	b = le.AppendUint32(b, h.SampleRate)
	b = le.AppendUint32(b, h.ByteRate())
	b = le.AppendUint16(b, h.BlockAlign())
	b = le.AppendUint16(b, h.BitsPerSample)
	b = append(b, "data"...)
	b = le.AppendUint32(b, h.DataSize)

	return b, nil
}

// MarshalBinary returns the 44-byte encoding of h.
func (h Header) MarshalBinary() ([]byte, error) {
	return h.AppendBinary(make([]byte, 0, HeaderSize))
}

// ParseHeader decodes a canonical PCM header from the first 44 bytes of b.
func ParseHeader(b []byte) (Header, error) {
	if len(b) < HeaderSize {
		return Header{}, fmt.Errorf("%w: %d bytes, need %d", ErrHeader, len(b), HeaderSize)
	}

	le := binary.LittleEndian

	switch {
	case string(b[0:4]) != "RIFF":
		return Header{}, fmt.Errorf("%w: missing RIFF", ErrHeader)
	case string(b[8:12]) != "WAVE":
		return Header{}, fmt.Errorf("%w: missing WAVE", ErrHeader)
	case string(b[12:16]) != "fmt ":
		return Header{}, fmt.Errorf("%w: missing fmt chunk", ErrHeader)
	case le.Uint32(b[16:20]) != fmtChunkSize:
		return Header{}, fmt.Errorf("%w: fmt chunk size %d", ErrHeader, le.Uint32(b[16:20]))
	case le.Uint16(b[20:22]) != formatPCM:
		return Header{}, fmt.Errorf("%w: audio format %d", ErrHeader, le.Uint16(b[20:22]))
	case string(b[36:40]) != "data":
		return Header{}, fmt.Errorf("%w: missing data chunk", ErrHeader)
	}

	h := Header{
		NumChannels:   le.Uint16(b[22:24]),
		SampleRate:    le.Uint32(b[24:28]),
		BitsPerSample: le.Uint16(b[34:36]),
		DataSize:      le.Uint32(b[40:44]),
	}

	if le.Uint32(b[4:8]) != h.ChunkSize() {
		return Header{}, fmt.Errorf("%w: chunk size %d, want %d", ErrHeader, le.Uint32(b[4:8]), h.ChunkSize())
	}

	if le.Uint32(b[28:32]) != h.ByteRate() || le.Uint16(b[32:34]) != h.BlockAlign() {
		return Header{}, fmt.Errorf("%w: inconsistent byte rate or block align", ErrHeader)
	}

	return h, nil
}
