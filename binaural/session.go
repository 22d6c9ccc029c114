package binaural

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/cwbudde/algo-binaural/dsp/buffer"
)

// Session runs at most one render at a time. Starting a render cancels the
// one in flight and waits for it to return.
type Session struct {
	renderer *Renderer

	mu     sync.Mutex
	cancel context.CancelCauseFunc
	done   chan struct{}
}

// NewSession returns a Session backed by r.
func NewSession(r *Renderer) *Session {
	return &Session{renderer: r}
}

// Render supersedes any in-flight render and renders in for band.
// A superseded render returns an error matching both ErrSuperseded and
// context.Canceled.
func (s *Session) Render(ctx context.Context, in *buffer.Audio, band string) (*buffer.Audio, error) {
	rctx, cancel := context.WithCancelCause(ctx)
	done := make(chan struct{})

	s.mu.Lock()
	if s.cancel != nil {
		s.cancel(ErrSuperseded)
		<-s.done
	}

	s.cancel, s.done = cancel, done
	s.mu.Unlock()

	out, err := s.renderer.Render(rctx, in, band)

	close(done)
	s.mu.Lock()
	if s.done == done {
		s.cancel, s.done = nil, nil
	}
	s.mu.Unlock()

	superseded := errors.Is(context.Cause(rctx), ErrSuperseded)
	cancel(nil)

	if err != nil && superseded && errors.Is(err, context.Canceled) {
		return nil, fmt.Errorf("%w: %w", ErrSuperseded, err)
	}

	return out, err
}

// Cancel aborts the in-flight render, if any, and waits for it to return.
func (s *Session) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel(context.Canceled)
		<-s.done
	}
}
