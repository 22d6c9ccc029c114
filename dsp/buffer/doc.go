// Package buffer holds the sample containers used across the module.
//
// [Audio] is the multi-channel float32 buffer exchanged with decoders, the
// renderer and encoders. [Block] is a reusable float64 scratch slice used in
// render hot paths; [Pool] recycles blocks between renders.
package buffer
