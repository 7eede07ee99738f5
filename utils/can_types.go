package utils

import "sort"

// Frame directions, seen from the car-state host: rx frames are decoded into
// samples, tx frames are published by it.
const (
	DirectionRX = "rx"
	DirectionTX = "tx"
)

type SignalDef struct {
	Name       string
	StartBit   int
	BitLength  int
	Signed     bool
	Factor     float64
	Offset     float64
	Min        float64
	Max        float64
	Default    float64
	Unit       string
	Comment    string
	Endianness string // only "little" supported
}

type FrameDef struct {
	ID        uint32
	Name      string
	DLC       int
	Direction string
	CycleMS   int
	Signals   []SignalDef
}

type CANMap struct {
	ByID   map[uint32]*FrameDef
	ByName map[string]*FrameDef

	// signal name -> frame id; signal names are unique across the map
	bySignal map[string]uint32
}

func (m *CANMap) FrameNames() []string {
	out := make([]string, 0, len(m.ByName))
	for k := range m.ByName {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Frames returns the frames with the given direction ordered by ID.
func (m *CANMap) Frames(direction string) []*FrameDef {
	var out []*FrameDef
	for _, fd := range m.ByID {
		if fd.Direction == direction {
			out = append(out, fd)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// SignalFrame returns the frame carrying the named signal.
func (m *CANMap) SignalFrame(signal string) (*FrameDef, bool) {
	id, ok := m.bySignal[signal]
	if !ok {
		return nil, false
	}
	return m.ByID[id], true
}
