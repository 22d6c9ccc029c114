// Package graph describes audio routing graphs and renders them offline.
//
// A [Graph] is a JSON-serializable list of nodes and connections built from a
// small set of primitives:
//
//   - source:      emits a caller-supplied [buffer.Audio]
//   - split:       fans a multi-channel input out to mono output ports
//   - merge:       combines mono input ports into one multi-channel output
//   - gain:        multiplies by the "gain" AudioParam
//   - delay:       variable delay driven by the "delayTime" AudioParam
//   - oscillator:  sine oscillator driven by the "frequency" AudioParam
//   - destination: the final mix returned by the renderer
//
// Connections either feed an input port or, when Param is set, are summed into
// an AudioParam of the target node on top of its base value.
//
// [OfflineRenderer] is the deterministic reference [Engine]: it compiles the
// graph (topological order, port validation), then processes it block by block
// over the whole requested length. Identical inputs render bit-identical output.
package graph
