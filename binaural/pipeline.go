package binaural

import (
	"context"
	"io"

	"github.com/cwbudde/algo-binaural/dsp/buffer"
	"github.com/cwbudde/algo-binaural/dsp/graph"
)

// Decoder turns container bytes into samples.
type Decoder interface {
	Decode(r io.Reader) (*buffer.Audio, error)
}

// Encoder serializes samples into container bytes.
type Encoder interface {
	Encode(a *buffer.Audio) ([]byte, error)
}

// Pipeline validates the band, decodes, renders and encodes. Any failure is
// returned as a *StageError naming the failed step. Nothing is retried.
type Pipeline struct {
	decoder  Decoder
	renderer *Renderer
	encoder  Encoder
}

// NewPipeline wires the three collaborators. A nil renderer means NewRenderer().
func NewPipeline(dec Decoder, r *Renderer, enc Encoder) *Pipeline {
	if r == nil {
		r = NewRenderer()
	}

	return &Pipeline{decoder: dec, renderer: r, encoder: enc}
}

// Process reads an encoded recording from src and returns the encoded
// binaural rendering for band.
func (p *Pipeline) Process(ctx context.Context, src io.Reader, band string) ([]byte, error) {
	_, err := LookupBand(band)
	if err != nil {
		return nil, &StageError{Stage: StageBand, Err: err}
	}

	return p.process(src, func(in *buffer.Audio) (*buffer.Audio, error) {
		return p.renderer.Render(ctx, in, band)
	})
}

// ProcessGraph is Process with a caller-supplied routing graph in place of
// a band. See Renderer.RenderGraph.
func (p *Pipeline) ProcessGraph(ctx context.Context, src io.Reader, g *graph.Graph) ([]byte, error) {
	return p.process(src, func(in *buffer.Audio) (*buffer.Audio, error) {
		return p.renderer.RenderGraph(ctx, in, g)
	})
}

func (p *Pipeline) process(src io.Reader, render func(*buffer.Audio) (*buffer.Audio, error)) ([]byte, error) {
	in, err := p.decoder.Decode(src)
	if err != nil {
		return nil, &StageError{Stage: StageDecode, Err: &DecodeError{Err: err}}
	}

	out, err := render(in)
	if err != nil {
		return nil, err
	}

	data, err := p.encoder.Encode(out)
	if err != nil {
		return nil, &StageError{Stage: StageEncode, Err: err}
	}

	return data, nil
}
