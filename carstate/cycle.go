package carstate

import (
	"gm-carstate/carparams"
	control "gm-carstate/lateral_control"
)

// RawSample holds one cycle of decoded bus values. The core trusts them as
// given; range checks belong to the decoder.
type RawSample struct {
	CruiseButtons    ButtonCode
	VEgo             float64 // m/s
	Gear             GearShifter
	CruiseEnabled    bool
	CruiseStandstill bool
	Standstill       bool
	SteeringAngleDeg float64
}

// CycleState is what one cycle leaves behind for the next.
type CycleState struct {
	Initialized       bool
	PrevButtons       ButtonCode
	PrevGear          GearShifter
	PrevCruiseEnabled bool
	PrevStandstill    bool
}

// PrevWasInit reports whether there is no real previous button sample yet.
func (st CycleState) PrevWasInit() bool {
	return !st.Initialized || st.PrevButtons == ButtonInit
}

// Transitions are edges against the previous cycle. All false on the first
// cycle of a session.
type Transitions struct {
	GearChanged      bool
	CruiseEngaged    bool
	CruiseDisengaged bool
	LeftStandstill   bool
}

// CarState is the normalized output of one cycle.
type CarState struct {
	VEgo             float64
	Gear             GearShifter
	CruiseEnabled    bool
	CruiseStandstill bool
	Standstill       bool
	SteeringAngleDeg float64

	ButtonEvents []ButtonEvent
	// Events lists button events first, then threshold events.
	Events       []Event
	EnableEvents []Event
	Transitions  Transitions
}

// Step runs one cycle. It is pure: the returned CycleState replaces st for
// the next call.
func Step(st CycleState, s RawSample, cp *carparams.VehicleParameters) (CarState, CycleState) {
	out := CarState{
		VEgo:             s.VEgo,
		Gear:             s.Gear,
		CruiseEnabled:    s.CruiseEnabled,
		CruiseStandstill: s.CruiseStandstill,
		Standstill:       s.Standstill,
		SteeringAngleDeg: s.SteeringAngleDeg,
	}

	if be, ok := ClassifyButton(st.PrevButtons, s.CruiseButtons, st.PrevWasInit()); ok {
		be = SuppressResumeAtStandstill(be, s.CruiseEnabled, s.Standstill)
		out.ButtonEvents = []ButtonEvent{be}
	}

	events := make([]Event, 0, len(out.ButtonEvents)+3)
	for _, be := range out.ButtonEvents {
		events = append(events, NewButtonEvent(be))
	}
	out.Events = append(events, EvaluateThresholds(s, cp)...)
	out.EnableEvents = ButtonEnableEvents(out.ButtonEvents, cp.PcmCruise)

	if st.Initialized {
		out.Transitions = Transitions{
			GearChanged:      s.Gear != st.PrevGear,
			CruiseEngaged:    s.CruiseEnabled && !st.PrevCruiseEnabled,
			CruiseDisengaged: !s.CruiseEnabled && st.PrevCruiseEnabled,
			LeftStandstill:   !s.Standstill && st.PrevStandstill,
		}
	}

	next := CycleState{
		Initialized:       true,
		PrevButtons:       s.CruiseButtons,
		PrevGear:          s.Gear,
		PrevCruiseEnabled: s.CruiseEnabled,
		PrevStandstill:    s.Standstill,
	}
	return out, next
}

// Interface owns the cycle state of one vehicle session. Update must be
// called from a single goroutine, one cycle at a time.
type Interface struct {
	cp *carparams.VehicleParameters

	state   CycleState
	steerFF control.SteerFeedforward
}

// NewInterface starts an uninitialized session for a private copy of cp.
func NewInterface(cp *carparams.VehicleParameters) *Interface {
	return &Interface{
		cp:      cp.Clone(),
		steerFF: control.ForFingerprint(cp.CarFingerprint),
	}
}

// Update runs one cycle and commits the state for the next.
func (ci *Interface) Update(s RawSample) CarState {
	out, next := Step(ci.state, s, ci.cp)
	ci.state = next
	return out
}

// Params returns a copy of the session's vehicle parameters.
func (ci *Interface) Params() *carparams.VehicleParameters {
	return ci.cp.Clone()
}

// State returns the state the next Update starts from.
func (ci *Interface) State() CycleState {
	return ci.state
}

// Running reports whether at least one sample has been processed.
func (ci *Interface) Running() bool {
	return ci.state.Initialized
}

// Reset drops the session state; the next Update behaves like the first.
func (ci *Interface) Reset() {
	ci.state = CycleState{}
}

// SteerFeedforward returns the feed-forward model selected for this car.
func (ci *Interface) SteerFeedforward() control.SteerFeedforward {
	return ci.steerFF
}
