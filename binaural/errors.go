package binaural

import (
	"errors"
	"fmt"
)

// ErrSuperseded marks a render that was cancelled because a newer render
// started on the same Session.
var ErrSuperseded = errors.New("binaural: render superseded")

// InvalidBandError reports an unknown band name.
type InvalidBandError struct {
	Name string
}

func (e *InvalidBandError) Error() string {
	return fmt.Sprintf("binaural: invalid band %q (want one of %s)", e.Name, bandList())
}

// DecodeError carries a decoder failure unchanged.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return "binaural: decode: " + e.Err.Error()
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Stage names a pipeline step.
type Stage string

// Pipeline stages, in execution order.
const (
	StageBand   Stage = "band"
	StageDecode Stage = "decode"
	StageRender Stage = "render"
	StageEncode Stage = "encode"
)

// StageError reports which pipeline stage failed.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("binaural: %s stage: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// FailedStage returns the stage recorded in err, if any.
func FailedStage(err error) (Stage, bool) {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage, true
	}

	return "", false
}
