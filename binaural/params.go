package binaural

import "math"

// Parameters are the per-render values derived from a band.
type Parameters struct {
	Band Band
	// CenterHz is the midpoint of the band.
	CenterHz float64
	// ModulationRate drives the oscillator frequency, in Hz.
	ModulationRate float64
}

// Derive computes the modulation parameters for the named band.
func Derive(name string) (Parameters, error) {
	band, err := LookupBand(name)
	if err != nil {
		return Parameters{}, err
	}

	center := band.CenterHz()

	return Parameters{
		Band:           band,
		CenterHz:       center,
		ModulationRate: center / 100,
	}, nil
}

// ShiftFactor returns 2^(rate/12), the rate read as a semitone count.
// It is reported only and never applied to the signal.
func (p Parameters) ShiftFactor() float64 {
	return math.Pow(2, p.ModulationRate/12)
}
