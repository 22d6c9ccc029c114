// Package wav reads and writes RIFF/WAVE files.
//
// The encoder always writes the canonical 44-byte header followed by
// interleaved little-endian 16-bit PCM. Samples are clamped to [-1, 1] and
// scaled by 32768 when negative and 32767 otherwise, truncating toward zero.
// The decoder accepts 8-bit and 16-bit PCM and 32-bit float input.
package wav
