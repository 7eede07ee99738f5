package carparams

import "slices"

// LateralTuningKind selects which lateral tuning block is active.
type LateralTuningKind int

const (
	LateralPID LateralTuningKind = iota
	LateralTorque
)

func (k LateralTuningKind) String() string {
	switch k {
	case LateralPID:
		return "pid"
	case LateralTorque:
		return "torque"
	default:
		return "unknown"
	}
}

// PIDTuning holds breakpoint/value gain curves for the PID lateral controller.
type PIDTuning struct {
	KpBP []float64 `json:"kp_bp"`
	KpV  []float64 `json:"kp_v"`
	KiBP []float64 `json:"ki_bp"`
	KiV  []float64 `json:"ki_v"`
	Kf   float64   `json:"kf"`
}

// TorqueTuning holds the lateral-acceleration based torque controller gains.
type TorqueTuning struct {
	UseSteeringAngle bool    `json:"use_steering_angle"`
	Kp               float64 `json:"kp"`
	Ki               float64 `json:"ki"`
	Kf               float64 `json:"kf"`
	Friction         float64 `json:"friction"`
}

// LateralTuning is a tagged union: only the block named by Kind is meaningful.
type LateralTuning struct {
	Kind   LateralTuningKind `json:"kind"`
	PID    PIDTuning         `json:"pid"`
	Torque TorqueTuning      `json:"torque"`
}

// LongitudinalTuning holds the longitudinal PID gain curves.
type LongitudinalTuning struct {
	KpBP       []float64 `json:"kp_bp"`
	KpV        []float64 `json:"kp_v"`
	KiBP       []float64 `json:"ki_bp"`
	KiV        []float64 `json:"ki_v"`
	Kf         float64   `json:"kf"`
	DeadzoneBP []float64 `json:"deadzone_bp"`
	DeadzoneV  []float64 `json:"deadzone_v"`
}

// VehicleParameters describes one vehicle's physical and control
// characteristics. It is built once by Get and never mutated afterwards. A
// carstate session keeps its own Clone.
type VehicleParameters struct {
	CarName        string `json:"car_name"`
	CarFingerprint string `json:"car_fingerprint"`
	SafetyModel    string `json:"safety_model"`

	AlternativeExperience        int  `json:"alternative_experience"`
	PcmCruise                    bool `json:"pcm_cruise"`
	OpenpilotLongitudinalControl bool `json:"openpilot_longitudinal_control"`
	RadarOffCan                  bool `json:"radar_off_can"`
	DashcamOnly                  bool `json:"dashcam_only"`
	EnableGasInterceptor         bool `json:"enable_gas_interceptor"`

	// Physical constants
	MassKg             float64 `json:"mass_kg"`
	WheelbaseM         float64 `json:"wheelbase_m"`
	SteerRatio         float64 `json:"steer_ratio"`
	SteerRatioRear     float64 `json:"steer_ratio_rear"`
	CenterToFrontM     float64 `json:"center_to_front_m"`
	RotationalInertia  float64 `json:"rotational_inertia"`
	TireStiffnessFront float64 `json:"tire_stiffness_front"`
	TireStiffnessRear  float64 `json:"tire_stiffness_rear"`

	// Control thresholds (m/s). Negative means "never below".
	MinEnableSpeed float64 `json:"min_enable_speed"`
	MinSteerSpeed  float64 `json:"min_steer_speed"`

	SteerActuatorDelay float64 `json:"steer_actuator_delay"`
	SteerLimitTimer    float64 `json:"steer_limit_timer"`
	RadarTimeStep      float64 `json:"radar_time_step"`

	LateralTuning      LateralTuning      `json:"lateral_tuning"`
	LongitudinalTuning LongitudinalTuning `json:"longitudinal_tuning"`

	StoppingControl   bool    `json:"stopping_control"`
	StoppingDecelRate float64 `json:"stopping_decel_rate"`
	StopAccel         float64 `json:"stop_accel"`
	VEgoStopping      float64 `json:"v_ego_stopping"`
	VEgoStarting      float64 `json:"v_ego_starting"`
}

// Clone returns a deep copy of p.
func (p *VehicleParameters) Clone() *VehicleParameters {
	c := *p
	pid := &c.LateralTuning.PID
	pid.KpBP, pid.KpV = slices.Clone(pid.KpBP), slices.Clone(pid.KpV)
	pid.KiBP, pid.KiV = slices.Clone(pid.KiBP), slices.Clone(pid.KiV)
	long := &c.LongitudinalTuning
	long.KpBP, long.KpV = slices.Clone(long.KpBP), slices.Clone(long.KpV)
	long.KiBP, long.KiV = slices.Clone(long.KiBP), slices.Clone(long.KiV)
	long.DeadzoneBP, long.DeadzoneV = slices.Clone(long.DeadzoneBP), slices.Clone(long.DeadzoneV)
	return &c
}

// Fingerprint maps bus number to the frame IDs (and their DLC) observed on it.
type Fingerprint map[int]map[uint32]int

// EmptyFingerprint returns a fingerprint with empty tables for the usual buses.
func EmptyFingerprint() Fingerprint {
	fp := Fingerprint{}
	for bus := 0; bus < 8; bus++ {
		fp[bus] = map[uint32]int{}
	}
	return fp
}

// Has reports whether id was seen on bus.
func (fp Fingerprint) Has(bus int, id uint32) bool {
	ids, ok := fp[bus]
	if !ok {
		return false
	}
	_, ok = ids[id]
	return ok
}

// Add records id with its DLC on bus.
func (fp Fingerprint) Add(bus int, id uint32, dlc int) {
	if fp[bus] == nil {
		fp[bus] = map[uint32]int{}
	}
	fp[bus][id] = dlc
}
