package carparams

import (
	"errors"
	"fmt"
)

// ErrUnknownCar is returned by Get for fingerprints that are not GM platforms.
var ErrUnknownCar = errors.New("unknown car fingerprint")

// maxLatAccel is used to normalise the torque controller gains (m/s^2).
const (
	maxLatAccelTruck    = 2.5
	maxLatAccelSuburban = 2.0
)

// stdParams returns the values every car starts from before the GM baseline.
func stdParams(candidate string) *VehicleParameters {
	return &VehicleParameters{
		CarFingerprint:               candidate,
		MinSteerSpeed:                0.,
		PcmCruise:                    true,
		MinEnableSpeed:               -1.,
		SteerRatioRear:               0.,
		OpenpilotLongitudinalControl: false,
		StopAccel:                    -2.0,
		StoppingDecelRate:            0.8,
		VEgoStopping:                 0.5,
		VEgoStarting:                 0.5,
		StoppingControl:              true,
		SteerLimitTimer:              1.0,
		LongitudinalTuning: LongitudinalTuning{
			DeadzoneBP: []float64{0.},
			DeadzoneV:  []float64{0.},
			Kf:         1.,
			KpBP:       []float64{0.},
			KpV:        []float64{1.},
			KiBP:       []float64{0.},
			KiV:        []float64{1.},
		},
	}
}

// Get resolves the parameter set for candidate. fp is the fingerprint seen on
// the bus; a nil fingerprint is treated as empty.
func Get(candidate string, fp Fingerprint) (*VehicleParameters, error) {
	if !IsSupported(candidate) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCar, candidate)
	}

	ret := stdParams(candidate)
	ret.CarName = "gm"
	ret.SafetyModel = "gm"
	ret.AlternativeExperience = 1 // disengage on gas disabled
	ret.PcmCruise = false         // stock cruise control is kept off
	ret.OpenpilotLongitudinalControl = true
	ret.RadarOffCan = false

	ret.DashcamOnly = dashcamOnly[candidate]

	// LKAS only: no radar, no longitudinal
	if !HasASCM(candidate) {
		ret.OpenpilotLongitudinalControl = false
		ret.RadarOffCan = true
	}

	tireStiffnessFactor := 0.444

	// Baseline tuning for all GM vehicles, overridden per model below.
	ret.MinSteerSpeed = 7 * MPHToMS
	ret.LateralTuning = LateralTuning{
		Kind: LateralPID,
		PID: PIDTuning{
			KiBP: []float64{0.}, KpBP: []float64{0.},
			KpV: []float64{0.2}, KiV: []float64{0.00},
			Kf: 0.00004,
		},
	}
	ret.SteerActuatorDelay = 0.1
	ret.EnableGasInterceptor = fp.Has(0, GasInterceptorID)

	ret.LongitudinalTuning.KpBP = []float64{5., 35.}
	ret.LongitudinalTuning.KpV = []float64{2.4, 1.5}
	ret.LongitudinalTuning.KiBP = []float64{0.}
	ret.LongitudinalTuning.KiV = []float64{0.36}

	ret.SteerLimitTimer = 0.4
	ret.RadarTimeStep = 0.0667 // GM radar runs at 15Hz instead of 20Hz

	if ret.EnableGasInterceptor {
		ret.OpenpilotLongitudinalControl = true
	}

	// supports stop and go, but initial engage must be above 18mph
	ret.MinEnableSpeed = 18 * MPHToMS

	switch candidate {
	case CarVolt, CarVoltNR:
		ret.MassKg = 1607. + StdCargoKG
		ret.WheelbaseM = 2.69
		ret.SteerRatio = 17.7
		tireStiffnessFactor = 0.469
		ret.CenterToFrontM = ret.WheelbaseM * 0.45

		ret.LateralTuning.PID = PIDTuning{
			KpBP: []float64{0., 40.}, KpV: []float64{0., 0.17},
			KiBP: []float64{0.}, KiV: []float64{0.},
			Kf: 1., // sigmoid feed-forward, see control.FamilyVolt
		}
		ret.SteerActuatorDelay = 0.2

		if ret.EnableGasInterceptor {
			applyInterceptorLongitudinal(ret)
		}

	case CarMalibu, CarMalibuNR:
		ret.MassKg = 1496. + StdCargoKG
		ret.WheelbaseM = 2.83
		ret.SteerRatio = 15.8
		ret.CenterToFrontM = ret.WheelbaseM * 0.4

	case CarHoldenAstra:
		ret.MassKg = 1363. + StdCargoKG
		ret.WheelbaseM = 2.662
		ret.CenterToFrontM = ret.WheelbaseM * 0.4
		ret.SteerRatio = 15.7

	case CarAcadia, CarAcadiaNR:
		ret.MinEnableSpeed = -1. // engage speed is decided by pcm
		ret.MassKg = 4353.*LBToKG + StdCargoKG
		ret.WheelbaseM = 2.86
		ret.SteerRatio = 14.4
		ret.CenterToFrontM = ret.WheelbaseM * 0.4
		ret.LateralTuning.PID.Kf = 1. // sigmoid feed-forward, see control.FamilyAcadia

	case CarBuickRegal:
		ret.MassKg = 3779.*LBToKG + StdCargoKG
		ret.WheelbaseM = 2.83
		ret.SteerRatio = 14.4
		ret.CenterToFrontM = ret.WheelbaseM * 0.4

	case CarCadillacATS:
		ret.MassKg = 1601. + StdCargoKG
		ret.WheelbaseM = 2.78
		ret.SteerRatio = 15.3
		ret.CenterToFrontM = ret.WheelbaseM * 0.49

	case CarEscaladeESV:
		ret.MinEnableSpeed = -1.
		ret.MassKg = 2739. + StdCargoKG
		ret.WheelbaseM = 3.302
		ret.SteerRatio = 17.3
		ret.CenterToFrontM = ret.WheelbaseM * 0.49
		ret.LateralTuning.PID = PIDTuning{
			KiBP: []float64{10., 41.0}, KpBP: []float64{10., 41.0},
			KpV: []float64{0.13, 0.24}, KiV: []float64{0.01, 0.02},
			Kf: 0.000045,
		}
		tireStiffnessFactor = 1.0

	case CarBoltNR, CarBoltEUV:
		ret.MinEnableSpeed = -1
		ret.MinSteerSpeed = 5 * MPHToMS
		ret.MassKg = 1616. + StdCargoKG
		ret.WheelbaseM = 2.60096
		ret.SteerRatio = 16.8
		ret.SteerRatioRear = 0.
		ret.CenterToFrontM = 2.0828
		tireStiffnessFactor = 1.0
		ret.SteerActuatorDelay = 0.
		ret.LateralTuning.PID = PIDTuning{
			KpBP: []float64{10., 41.0}, KiBP: []float64{10., 41.0},
			KpV: []float64{0.18, 0.275}, KiV: []float64{0.01, 0.021},
			Kf: 0.0002,
		}
		if candidate == CarBoltEUV {
			// stock ACC, no radar
			ret.PcmCruise = true
			ret.OpenpilotLongitudinalControl = false
			ret.RadarOffCan = true
		} else if ret.EnableGasInterceptor {
			applyInterceptorLongitudinal(ret)
		}

	case CarEquinoxNR:
		ret.MinEnableSpeed = 18 * MPHToMS
		ret.MassKg = 3500.*LBToKG + StdCargoKG
		ret.WheelbaseM = 2.72
		ret.SteerRatio = 14.4
		ret.SteerRatioRear = 0.
		ret.CenterToFrontM = ret.WheelbaseM * 0.4

	case CarTahoeNR:
		ret.MinEnableSpeed = -1.
		ret.MinSteerSpeed = -1 * MPHToMS
		ret.MassKg = 5602.*LBToKG + StdCargoKG
		ret.WheelbaseM = 2.95
		ret.SteerRatio = 16.3
		ret.SteerRatioRear = 0.
		ret.CenterToFrontM = 2.59
		ret.SteerActuatorDelay = 0.2
		ret.PcmCruise = true
		ret.OpenpilotLongitudinalControl = false
		ret.RadarOffCan = true
		ret.LateralTuning = torqueTuning(maxLatAccelTruck, 0.1)

	case CarSilveradoNR:
		ret.MinEnableSpeed = -1.
		ret.MinSteerSpeed = -1 * MPHToMS
		ret.MassKg = 2400. + StdCargoKG
		ret.WheelbaseM = 3.745
		ret.SteerRatio = 16.3
		ret.PcmCruise = true
		ret.CenterToFrontM = ret.WheelbaseM * .49
		ret.SteerActuatorDelay = 0.11
		ret.LateralTuning = torqueTuning(maxLatAccelTruck, 0.1)

	case CarSuburban:
		ret.MinEnableSpeed = -1.
		ret.MinSteerSpeed = -1 * MPHToMS
		ret.MassKg = 2731. + StdCargoKG
		ret.WheelbaseM = 3.302
		ret.SteerRatio = 17.3
		ret.CenterToFrontM = ret.WheelbaseM * 0.49
		ret.SteerActuatorDelay = 0.075
		ret.PcmCruise = true
		ret.OpenpilotLongitudinalControl = false
		ret.RadarOffCan = true
		ret.LateralTuning = torqueTuning(maxLatAccelSuburban, 0.12)
	}

	ret.RotationalInertia = ScaleRotInertia(ret.MassKg, ret.WheelbaseM)
	ret.TireStiffnessFront, ret.TireStiffnessRear = ScaleTireStiffness(
		ret.MassKg, ret.WheelbaseM, ret.CenterToFrontM, tireStiffnessFactor)

	return ret, nil
}

// torqueTuning builds the angle-based torque controller block. Lower
// maxLatAccel if the car understeers.
func torqueTuning(maxLatAccel, friction float64) LateralTuning {
	return LateralTuning{
		Kind: LateralTorque,
		Torque: TorqueTuning{
			UseSteeringAngle: true,
			Kp:               2.0 / maxLatAccel,
			Kf:               1.0 / maxLatAccel,
			Ki:               0.50 / maxLatAccel,
			Friction:         friction,
		},
	}
}

// applyInterceptorLongitudinal sets the pedal-interceptor longitudinal tune.
// Low speed stop and go is untested.
func applyInterceptorLongitudinal(ret *VehicleParameters) {
	ret.LongitudinalTuning.KpBP = []float64{0., 35.0}
	ret.LongitudinalTuning.KpV = []float64{0.4, 0.06}
	ret.LongitudinalTuning.KiBP = []float64{0., 35.0}
	ret.LongitudinalTuning.KiV = []float64{0.0, 0.04}
	ret.LongitudinalTuning.Kf = 0.25
	ret.StoppingDecelRate = 0.8
	ret.StopAccel = 0.
	// VEgoStarting must be >= VEgoStopping to avoid state oscillation
	ret.VEgoStopping = 0.5
	ret.VEgoStarting = 0.5
	ret.StoppingControl = true
}

// PIDAccelLimits returns the longitudinal acceleration bounds (m/s^2) the PID
// planner may request. GM limits do not depend on speed.
func PIDAccelLimits(cp *VehicleParameters, currentSpeed, cruiseSpeed float64) (float64, float64) {
	return AccelMin, AccelMax
}
