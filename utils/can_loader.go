package utils

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
)

// LoadCANMap reads a signal table CSV from disk.
func LoadCANMap(csvPath string) (*CANMap, error) {
	f, err := os.Open(csvPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, err := LoadCANMapFrom(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", csvPath, err)
	}
	return m, nil
}

// LoadCANMapFrom parses a signal table with one row per signal. Rows of the
// same frame_id must agree on dlc. Blank lines and rows starting with # are
// skipped.
func LoadCANMapFrom(in io.Reader) (*CANMap, error) {
	r := csv.NewReader(in)
	r.TrimLeadingSpace = true
	r.Comment = '#'
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, err
	}

	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.TrimSpace(h)] = i
	}

	req := []string{
		"direction", "frame_id", "frame_name", "cycle_ms", "dlc",
		"signal_name", "start_bit", "bit_length", "endianness",
		"signed", "factor", "offset", "min", "max", "default", "unit", "comment",
	}
	for _, k := range req {
		if _, ok := idx[k]; !ok {
			return nil, fmt.Errorf("signal map missing required column: %q", k)
		}
	}

	m := &CANMap{
		ByID:   map[uint32]*FrameDef{},
		ByName: map[string]*FrameDef{},

		bySignal: map[string]uint32{},
	}

	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(rec) < len(header) {
			return nil, fmt.Errorf("row %v: expected %d columns, got %d", rec, len(header), len(rec))
		}

		frameID, err := parseHexOrDecUint32(rec[idx["frame_id"]])
		if err != nil {
			return nil, fmt.Errorf("invalid frame_id %q: %w", rec[idx["frame_id"]], err)
		}

		frameName := strings.TrimSpace(rec[idx["frame_name"]])
		direction := strings.ToLower(strings.TrimSpace(rec[idx["direction"]]))
		if direction != DirectionRX && direction != DirectionTX {
			return nil, fmt.Errorf("frame %s: direction must be %q or %q, got %q", frameName, DirectionRX, DirectionTX, direction)
		}

		fp := fieldParser{rec: rec, idx: idx}
		cycleMS := fp.int("cycle_ms")
		dlc := fp.int("dlc")

		if _, dup := m.bySignal[strings.TrimSpace(rec[idx["signal_name"]])]; dup {
			return nil, fmt.Errorf("frame %s: duplicate signal %q", frameName, strings.TrimSpace(rec[idx["signal_name"]]))
		}

		sig := SignalDef{
			Name:       strings.TrimSpace(rec[idx["signal_name"]]),
			StartBit:   fp.int("start_bit"),
			BitLength:  fp.int("bit_length"),
			Endianness: strings.TrimSpace(rec[idx["endianness"]]),
			Signed:     fp.bool("signed"),
			Factor:     fp.float("factor"),
			Offset:     fp.float("offset"),
			Min:        fp.float("min"),
			Max:        fp.float("max"),
			Default:    fp.float("default"),
			Unit:       strings.TrimSpace(rec[idx["unit"]]),
			Comment:    strings.TrimSpace(rec[idx["comment"]]),
		}
		if fp.err != nil {
			return nil, fmt.Errorf("frame %s signal %s: %w", frameName, sig.Name, fp.err)
		}

		if sig.Endianness != "" && sig.Endianness != "little" {
			return nil, fmt.Errorf("frame %s signal %s: unsupported endianness %q (only little supported)",
				frameName, sig.Name, sig.Endianness)
		}
		if sig.BitLength <= 0 || sig.BitLength > 64 {
			return nil, fmt.Errorf("frame %s signal %s: invalid bit_length %d", frameName, sig.Name, sig.BitLength)
		}
		if dlc <= 0 || dlc > 8 {
			return nil, fmt.Errorf("frame %s (0x%X): invalid dlc %d", frameName, frameID, dlc)
		}

		fd, ok := m.ByID[frameID]
		if !ok {
			fd = &FrameDef{
				ID:        frameID,
				Name:      frameName,
				DLC:       dlc,
				Direction: direction,
				CycleMS:   cycleMS,
				Signals:   []SignalDef{},
			}
			m.ByID[frameID] = fd
			m.ByName[frameName] = fd
		}

		if fd.Name != frameName {
			return nil, fmt.Errorf("frame 0x%X named both %q and %q", frameID, fd.Name, frameName)
		}
		if fd.DLC != dlc {
			return nil, fmt.Errorf("frame %s (0x%X) has inconsistent DLC (%d vs %d)", frameName, frameID, fd.DLC, dlc)
		}

		fd.Signals = append(fd.Signals, sig)
		m.bySignal[sig.Name] = frameID
	}

	if len(m.ByID) == 0 {
		return nil, errors.New("signal map has no rows")
	}
	for _, fd := range m.ByID {
		sort.Slice(fd.Signals, func(i, j int) bool { return fd.Signals[i].StartBit < fd.Signals[j].StartBit })
	}

	return m, nil
}

func (m *CANMap) FrameByName(name string) (*FrameDef, error) {
	fd, ok := m.ByName[name]
	if !ok {
		return nil, fmt.Errorf("unknown frame %q (available: %v)", name, m.FrameNames())
	}
	return fd, nil
}

func (m *CANMap) FrameByID(id uint32) (*FrameDef, error) {
	fd, ok := m.ByID[id]
	if !ok {
		return nil, fmt.Errorf("unknown frame id 0x%X", id)
	}
	return fd, nil
}

func parseHexOrDecUint32(s string) (uint32, error) {
	ss := strings.TrimSpace(s)
	base := 10
	if strings.HasPrefix(ss, "0x") || strings.HasPrefix(ss, "0X") {
		base = 16
		ss = ss[2:]
	}
	u, err := strconv.ParseUint(ss, base, 32)
	if err != nil {
		return 0, err
	}
	return uint32(u), nil
}

// fieldParser reads typed columns from one row and keeps the first error.
type fieldParser struct {
	rec []string
	idx map[string]int
	err error
}

func (p *fieldParser) cell(col string) string {
	return strings.TrimSpace(p.rec[p.idx[col]])
}

func (p *fieldParser) fail(col string, err error) {
	if p.err == nil {
		p.err = fmt.Errorf("column %s: %w", col, err)
	}
}

func (p *fieldParser) int(col string) int {
	v, err := strconv.Atoi(p.cell(col))
	if err != nil {
		p.fail(col, err)
	}
	return v
}

// float treats an empty cell as 0.
func (p *fieldParser) float(col string) float64 {
	c := p.cell(col)
	if c == "" {
		return 0
	}
	v, err := strconv.ParseFloat(c, 64)
	if err != nil {
		p.fail(col, err)
	}
	return v
}

func (p *fieldParser) bool(col string) bool {
	switch strings.ToLower(p.cell(col)) {
	case "true", "1", "yes":
		return true
	case "false", "0", "no", "":
		return false
	default:
		p.fail(col, fmt.Errorf("invalid bool %q", p.cell(col)))
		return false
	}
}
