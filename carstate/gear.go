package carstate

import "strings"

// GearShifter is the normalized gear position.
type GearShifter int

const (
	GearUnknown GearShifter = iota
	GearPark
	GearDrive
	GearNeutral
	GearReverse
	GearSport
	GearLow
	GearBrake
	GearEco
	GearManumatic
)

var gearNames = []string{"unknown", "park", "drive", "neutral", "reverse", "sport", "low", "brake", "eco", "manumatic"}

func (g GearShifter) String() string {
	if g < 0 || int(g) >= len(gearNames) {
		return "unknown"
	}
	return gearNames[g]
}

// ParseGear maps a gear name (case-insensitive, or a single PRNDL letter) to a
// GearShifter. Unrecognised names give GearUnknown.
func ParseGear(s string) GearShifter {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "p":
		return GearPark
	case "r":
		return GearReverse
	case "n":
		return GearNeutral
	case "d":
		return GearDrive
	case "s":
		return GearSport
	case "l":
		return GearLow
	}
	for i, name := range gearNames {
		if name == s {
			return GearShifter(i)
		}
	}
	return GearUnknown
}

// prndl is the raw PRNDL signal encoding used in the CAN signal map.
var prndl = map[int]GearShifter{
	1: GearPark,
	2: GearReverse,
	3: GearNeutral,
	4: GearDrive,
	5: GearSport,
	6: GearLow,
	7: GearEco,
	8: GearManumatic,
}

// GearFromPRNDL decodes the raw shifter value.
func GearFromPRNDL(raw int) GearShifter {
	if g, ok := prndl[raw]; ok {
		return g
	}
	return GearUnknown
}

// PRNDL encodes g back to the raw shifter value; 0 for gears with no code.
func (g GearShifter) PRNDL() int {
	for raw, gear := range prndl {
		if gear == g {
			return raw
		}
	}
	return 0
}
