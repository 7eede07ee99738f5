package main

import (
	"math"

	"gm-carstate/carstate"
	"gm-carstate/utils"
)

// Signal names the host expects in the CAN signal map.
const (
	SigCruiseButtons    = "cruise_buttons"
	SigVehicleSpeed     = "vehicle_speed_mps"
	SigPRNDL            = "prndl"
	SigCruiseEnabled    = "cruise_enabled"
	SigCruiseStandstill = "cruise_standstill"
	SigStandstill       = "standstill"
	SigSteeringAngle    = "steering_angle_deg"
)

// standstillSpeed is the speed below which the car counts as stopped when
// the source has no standstill signal.
const standstillSpeed = 0.01

func derivedStandstill(vEgo float64) bool {
	return vEgo < standstillSpeed
}

// Raw converts scenario values into a core sample.
func (v SampleValues) Raw() carstate.RawSample {
	standstill := derivedStandstill(v.VEgo)
	if v.Standstill != nil {
		standstill = *v.Standstill
	}
	return carstate.RawSample{
		CruiseButtons:    carstate.ButtonCode(v.CruiseButtons),
		VEgo:             v.VEgo,
		Gear:             carstate.ParseGear(v.Gear),
		CruiseEnabled:    v.CruiseEnabled,
		CruiseStandstill: v.CruiseStandstill,
		Standstill:       standstill,
		SteeringAngleDeg: v.SteeringAngleDeg,
	}
}

// Signals renders a sample as signal values for encoding onto the bus.
func Signals(s carstate.RawSample) map[string]float64 {
	return map[string]float64{
		SigCruiseButtons:    float64(s.CruiseButtons),
		SigVehicleSpeed:     s.VEgo,
		SigPRNDL:            float64(s.Gear.PRNDL()),
		SigCruiseEnabled:    utils.BoolToFloat(s.CruiseEnabled),
		SigCruiseStandstill: utils.BoolToFloat(s.CruiseStandstill),
		SigStandstill:       utils.BoolToFloat(s.Standstill),
		SigSteeringAngle:    s.SteeringAngleDeg,
	}
}

// SampleFromSignals builds a sample from the latest decoded signal values.
// Missing signals keep their zero value, except standstill, which falls back
// to a speed check. A missing button signal reads as INIT so no button
// events fire until the frame is seen.
func SampleFromSignals(sig map[string]float64) carstate.RawSample {
	var s carstate.RawSample

	if v, ok := sig[SigCruiseButtons]; ok {
		s.CruiseButtons = carstate.ButtonCode(int(math.Round(v)))
	}
	if v, ok := sig[SigVehicleSpeed]; ok {
		s.VEgo = v
	}
	if v, ok := sig[SigPRNDL]; ok {
		s.Gear = carstate.GearFromPRNDL(int(math.Round(v)))
	}
	s.CruiseEnabled = utils.FloatToBool(sig[SigCruiseEnabled])
	s.CruiseStandstill = utils.FloatToBool(sig[SigCruiseStandstill])
	if v, ok := sig[SigStandstill]; ok {
		s.Standstill = utils.FloatToBool(v)
	} else {
		s.Standstill = derivedStandstill(s.VEgo)
	}
	s.SteeringAngleDeg = sig[SigSteeringAngle]

	return s
}
