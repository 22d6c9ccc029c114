// Package binaural turns a decoded recording into a binaural variant tuned to
// a brain-wave band.
//
// A band name selects a modulation rate (Derive). BuildGraph wires the stereo
// routing graph: channel 0 passes through unchanged while channel 1 runs
// through a modulation stage, a zero-based delay line whose delay time is
// wobbled by a slow sine oscillator and mixed back with the dry signal.
// Renderer executes that graph on a graph.Engine; Pipeline chains a decoder,
// the renderer and an encoder and reports which stage failed.
package binaural
