package binaural

import "strings"

// Band is a named brain-wave frequency range.
type Band struct {
	Name  string
	MinHz float64
	MaxHz float64
}

// CenterHz returns the midpoint of the band.
func (b Band) CenterHz() float64 {
	return (b.MinHz + b.MaxHz) / 2
}

var bandTable = [...]Band{
	{Name: "delta", MinHz: 1, MaxHz: 4},
	{Name: "theta", MinHz: 4, MaxHz: 8},
	{Name: "alpha", MinHz: 8, MaxHz: 12},
	{Name: "beta", MinHz: 13, MaxHz: 30},
}

// Bands returns the supported bands, lowest first.
func Bands() []Band {
	out := make([]Band, len(bandTable))
	copy(out, bandTable[:])

	return out
}

// BandNames returns the supported band names, lowest first.
func BandNames() []string {
	names := make([]string, len(bandTable))
	for i, b := range bandTable {
		names[i] = b.Name
	}

	return names
}

// LookupBand returns the band called name. Names are case-sensitive.
func LookupBand(name string) (Band, error) {
	for _, b := range bandTable {
		if b.Name == name {
			return b, nil
		}
	}

	return Band{}, &InvalidBandError{Name: name}
}

func bandList() string {
	return strings.Join(BandNames(), ", ")
}
