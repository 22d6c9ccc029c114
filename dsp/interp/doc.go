// Package interp provides interpolation primitives used by delay-based DSP blocks.
//
//   - [Linear2]:  2-point linear interpolation (delay-node default)
//   - [Hermite4]: 4-point cubic Hermite
//
// The [Mode] enum lets [delay.Line] select the algorithm at construction time.
package interp
