package control

import (
	_ "embed"
	"encoding/json"
	"fmt"
)

// Coefficients parameterise the sigmoid steering feed-forward:
//
//	ff = B * x/(1+|x|) * (vEgo + C),  x = A * desiredAngle
//
// The triples are fit offline by minimising the error of f(angle, speed) = steer
// over logged drives.
type Coefficients struct {
	A float64 `json:"a"` // angle scale (1/deg)
	B float64 `json:"b"` // output gain
	C float64 `json:"c"` // speed offset (m/s), a floor for low speeds
}

// Family groups vehicles sharing one feed-forward fit.
type Family int

const (
	FamilyDefault Family = iota
	FamilyVolt
	FamilyAcadia
)

func (f Family) String() string {
	switch f {
	case FamilyVolt:
		return "volt"
	case FamilyAcadia:
		return "acadia"
	default:
		return "default"
	}
}

//go:embed coefficients.json
var coefficientsJSON []byte

var familyCoefficients = mustParseCoefficients(coefficientsJSON)

// ParseCoefficients reads a table of fits keyed by family name.
func ParseCoefficients(data []byte) (map[Family]Coefficients, error) {
	var raw map[string]Coefficients
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse feed-forward coefficients: %w", err)
	}
	out := make(map[Family]Coefficients, len(raw))
	for name, c := range raw {
		f, ok := familyByName(name)
		if !ok || f == FamilyDefault {
			return nil, fmt.Errorf("feed-forward coefficients: unknown family %q", name)
		}
		out[f] = c
	}
	return out, nil
}

func mustParseCoefficients(data []byte) map[Family]Coefficients {
	m, err := ParseCoefficients(data)
	if err != nil {
		panic(err)
	}
	return m
}

func familyByName(name string) (Family, bool) {
	for _, f := range []Family{FamilyDefault, FamilyVolt, FamilyAcadia} {
		if f.String() == name {
			return f, true
		}
	}
	return FamilyDefault, false
}

// CoefficientsFor returns the fitted triple for f. ok is false for families
// that use the default model.
func CoefficientsFor(f Family) (Coefficients, bool) {
	c, ok := familyCoefficients[f]
	return c, ok
}
