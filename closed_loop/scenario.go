package main

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"gm-carstate/carstate"
)

// Scenario is a scripted drive: defaults overridden by time segments.
type Scenario struct {
	Meta     ScenarioMeta      `json:"meta"`
	Timing   ScenarioTiming    `json:"timing"`
	Defaults SampleValues      `json:"defaults"`
	Segments []ScenarioSegment `json:"segments"`
}

type ScenarioMeta struct {
	Name        string `json:"name"`
	Version     int    `json:"version"`
	Description string `json:"description"`
	// Car is used when no fingerprint is configured.
	Car string `json:"car,omitempty"`
}

type ScenarioTiming struct {
	DtS          float64 `json:"dt_s"`
	DurationS    float64 `json:"duration_s"`
	RealTimeMode bool    `json:"real_time_mode"`
}

// SampleValues is one raw sample as written in scenario files. Standstill is
// optional; without it the host derives it from speed.
type SampleValues struct {
	CruiseButtons    int     `json:"cruise_buttons"`
	VEgo             float64 `json:"v_ego_mps"`
	Gear             string  `json:"gear"`
	CruiseEnabled    bool    `json:"cruise_enabled"`
	CruiseStandstill bool    `json:"cruise_standstill"`
	Standstill       *bool   `json:"standstill,omitempty"`
	SteeringAngleDeg float64 `json:"steering_angle_deg"`
}

// ScenarioSegment overrides only the fields it sets. When VEgoTo is set the
// speed ramps linearly from VEgo (or the default) to VEgoTo over the segment.
type ScenarioSegment struct {
	T0               float64  `json:"t0"`
	T1               float64  `json:"t1"`
	CruiseButtons    *int     `json:"cruise_buttons,omitempty"`
	VEgo             *float64 `json:"v_ego_mps,omitempty"`
	VEgoTo           *float64 `json:"v_ego_to_mps,omitempty"`
	Gear             *string  `json:"gear,omitempty"`
	CruiseEnabled    *bool    `json:"cruise_enabled,omitempty"`
	CruiseStandstill *bool    `json:"cruise_standstill,omitempty"`
	Standstill       *bool    `json:"standstill,omitempty"`
	SteeringAngleDeg *float64 `json:"steering_angle_deg,omitempty"`
	Comment          string   `json:"comment,omitempty"`
}

func LoadScenario(path string) (Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Scenario{}, fmt.Errorf("read file: %w", err)
	}
	return ParseScenario(data)
}

func ParseScenario(data []byte) (Scenario, error) {
	var scen Scenario
	if err := json.Unmarshal(data, &scen); err != nil {
		return Scenario{}, fmt.Errorf("unmarshal: %w", err)
	}

	if scen.Timing.DurationS <= 0 {
		return Scenario{}, fmt.Errorf("invalid duration_s: %f", scen.Timing.DurationS)
	}
	if scen.Timing.DtS <= 0 {
		return Scenario{}, fmt.Errorf("invalid dt_s: %f", scen.Timing.DtS)
	}
	for i, seg := range scen.Segments {
		if seg.T1 >= 0 && seg.T1 <= seg.T0 {
			return Scenario{}, fmt.Errorf("segment %d: t1 %.3f not after t0 %.3f", i, seg.T1, seg.T0)
		}
		if seg.Gear != nil && carstate.ParseGear(*seg.Gear) == carstate.GearUnknown {
			return Scenario{}, fmt.Errorf("segment %d: unknown gear %q", i, *seg.Gear)
		}
	}
	return scen, nil
}

// Steps is the number of cycles the scenario covers.
func (s *Scenario) Steps() int {
	return int(math.Floor(s.Timing.DurationS/s.Timing.DtS + 1e-9))
}

// EvalSample returns the sample values at time t. The first segment covering
// t wins; a negative t1 runs to the end of the scenario.
func EvalSample(scen *Scenario, t float64) SampleValues {
	v := scen.Defaults

	for _, seg := range scen.Segments {
		t1 := seg.T1
		if t1 < 0 {
			t1 = scen.Timing.DurationS
		}
		if t < seg.T0 || t >= t1 {
			continue
		}

		if seg.CruiseButtons != nil {
			v.CruiseButtons = *seg.CruiseButtons
		}
		if seg.VEgo != nil {
			v.VEgo = *seg.VEgo
		}
		if seg.VEgoTo != nil {
			frac := (t - seg.T0) / (t1 - seg.T0)
			v.VEgo += (*seg.VEgoTo - v.VEgo) * frac
		}
		if seg.Gear != nil {
			v.Gear = *seg.Gear
		}
		if seg.CruiseEnabled != nil {
			v.CruiseEnabled = *seg.CruiseEnabled
		}
		if seg.CruiseStandstill != nil {
			v.CruiseStandstill = *seg.CruiseStandstill
		}
		if seg.Standstill != nil {
			v.Standstill = seg.Standstill
		}
		if seg.SteeringAngleDeg != nil {
			v.SteeringAngleDeg = *seg.SteeringAngleDeg
		}
		break
	}

	return v
}
