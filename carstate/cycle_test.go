package carstate

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gm-carstate/carparams"
	control "gm-carstate/lateral_control"
)

func testParams(minEnable, minSteer float64) *carparams.VehicleParameters {
	return &carparams.VehicleParameters{
		CarFingerprint: carparams.CarVolt,
		MinEnableSpeed: minEnable,
		MinSteerSpeed:  minSteer,
	}
}

func eventNamesOf(events []Event) []EventName {
	out := make([]EventName, 0, len(events))
	for _, e := range events {
		out = append(out, e.Name)
	}
	return out
}

func TestEvaluateThresholds_Order(t *testing.T) {
	cp := testParams(8.0, 3.0)

	events := EvaluateThresholds(RawSample{VEgo: 1.0, CruiseStandstill: true}, cp)
	assert.Equal(t, []EventName{EventBelowEngageSpeed, EventResumeRequired, EventBelowSteerSpeed}, eventNamesOf(events))

	assert.Empty(t, EvaluateThresholds(RawSample{VEgo: 30}, cp))
	assert.Equal(t, []EventName{EventBelowEngageSpeed}, eventNamesOf(EvaluateThresholds(RawSample{VEgo: 5}, cp)))
}

func TestEvaluateThresholds_EngageBoundary(t *testing.T) {
	cp := testParams(5.0, -1)

	assert.False(t, HasEvent(EvaluateThresholds(RawSample{VEgo: 5.1}, cp), EventBelowEngageSpeed))
	assert.False(t, HasEvent(EvaluateThresholds(RawSample{VEgo: 5.0}, cp), EventBelowEngageSpeed))
	assert.True(t, HasEvent(EvaluateThresholds(RawSample{VEgo: 4.9}, cp), EventBelowEngageSpeed))

	// a decreasing ramp flips exactly once
	flips := 0
	prev := false
	for v := 6.0; v >= 4.0; v -= 0.05 {
		below := HasEvent(EvaluateThresholds(RawSample{VEgo: v}, cp), EventBelowEngageSpeed)
		if below != prev {
			flips++
		}
		prev = below
	}
	assert.Equal(t, 1, flips)
}

func TestEvaluateThresholds_NaNSpeed(t *testing.T) {
	cp := testParams(8.0, 3.0)
	events := EvaluateThresholds(RawSample{VEgo: math.NaN()}, cp)
	assert.Empty(t, events)
}

func TestEvaluateThresholds_NegativeThresholdsNeverFire(t *testing.T) {
	cp, err := carparams.Get(carparams.CarSuburban, nil)
	require.NoError(t, err)
	assert.Empty(t, EvaluateThresholds(RawSample{VEgo: 0}, cp))
}

// Scenario C: engage threshold at 8 m/s.
func TestEvaluateThresholds_ScenarioC(t *testing.T) {
	cp := testParams(8.0, -1)

	assert.Equal(t, []EventName{EventBelowEngageSpeed},
		eventNamesOf(EvaluateThresholds(RawSample{VEgo: 7.9}, cp)))
	assert.Equal(t, []EventName{EventResumeRequired},
		eventNamesOf(EvaluateThresholds(RawSample{VEgo: 8.1, CruiseStandstill: true}, cp)))
}

func TestButtonEnableEvents(t *testing.T) {
	buttons := []ButtonEvent{
		{ButtonTypeAccelCruise, true},
		{ButtonTypeAccelCruise, false},
		{ButtonTypeDecelCruise, false},
		{ButtonTypeCancel, true},
		{ButtonTypeCancel, false},
		{ButtonTypeAltButton3, false},
	}

	assert.Equal(t, []EventName{EventButtonEnable, EventButtonEnable, EventButtonCancel},
		eventNamesOf(ButtonEnableEvents(buttons, false)))
	assert.Equal(t, []EventName{EventButtonCancel},
		eventNamesOf(ButtonEnableEvents(buttons, true)))
	assert.Empty(t, ButtonEnableEvents(nil, false))
}

func TestInterface_ParamsFixedForSession(t *testing.T) {
	cp := testParams(8.0, 3.0)
	ci := NewInterface(cp)

	cp.MinEnableSpeed = -1
	got := ci.Params()
	got.MinSteerSpeed = -1

	assert.Equal(t, 8.0, ci.Params().MinEnableSpeed)
	assert.Equal(t, 3.0, ci.Params().MinSteerSpeed)
	out := ci.Update(RawSample{CruiseButtons: ButtonUnpress, VEgo: 1})
	assert.Contains(t, eventNamesOf(out.Events), EventBelowEngageSpeed)
}

// Scenario B: first-cycle guard, debounce, then a cancel press.
func TestInterface_ScenarioB(t *testing.T) {
	ci := NewInterface(testParams(-1, -1))
	require.False(t, ci.Running())

	out := ci.Update(RawSample{CruiseButtons: ButtonResAccel, VEgo: 20})
	assert.Empty(t, out.ButtonEvents)
	assert.Empty(t, out.Events)
	assert.True(t, ci.Running())

	out = ci.Update(RawSample{CruiseButtons: ButtonResAccel, VEgo: 20})
	assert.Empty(t, out.ButtonEvents)
	assert.Empty(t, out.Events)

	out = ci.Update(RawSample{CruiseButtons: ButtonCancel, VEgo: 20})
	require.Len(t, out.ButtonEvents, 1)
	assert.Equal(t, ButtonEvent{ButtonTypeCancel, true}, out.ButtonEvents[0])
	require.Len(t, out.Events, 1)
	assert.Equal(t, EventButton, out.Events[0].Name)
	assert.Equal(t, ButtonTypeCancel, out.Events[0].Button.Type)
	assert.Equal(t, []EventName{EventButtonCancel}, eventNamesOf(out.EnableEvents))
}

func TestInterface_InitCodeKeepsGuard(t *testing.T) {
	ci := NewInterface(testParams(-1, -1))

	ci.Update(RawSample{CruiseButtons: ButtonInit})
	out := ci.Update(RawSample{CruiseButtons: ButtonCancel})
	assert.Empty(t, out.ButtonEvents, "previous code INIT is not a real sample")

	out = ci.Update(RawSample{CruiseButtons: ButtonUnpress})
	assert.Equal(t, []ButtonEvent{{ButtonTypeCancel, false}}, out.ButtonEvents)
}

func TestInterface_ButtonEventsPrecedeThresholds(t *testing.T) {
	ci := NewInterface(testParams(8.0, 3.0))

	ci.Update(RawSample{CruiseButtons: ButtonUnpress, VEgo: 2})
	out := ci.Update(RawSample{CruiseButtons: ButtonDecelSet, VEgo: 2, CruiseStandstill: true})

	assert.Equal(t,
		[]EventName{EventButton, EventBelowEngageSpeed, EventResumeRequired, EventBelowSteerSpeed},
		eventNamesOf(out.Events))
	assert.Equal(t, ButtonTypeDecelCruise, out.Events[0].Button.Type)
}

func TestInterface_ResumeSuppressedAtStandstill(t *testing.T) {
	ci := NewInterface(testParams(-1, -1))

	ci.Update(RawSample{CruiseButtons: ButtonUnpress, CruiseEnabled: true, Standstill: true})
	out := ci.Update(RawSample{CruiseButtons: ButtonResAccel, CruiseEnabled: true, Standstill: true})
	require.Len(t, out.ButtonEvents, 1)
	assert.Equal(t, ButtonTypeUnknown, out.ButtonEvents[0].Type)

	// once moving, the release classifies normally
	out = ci.Update(RawSample{CruiseButtons: ButtonUnpress, CruiseEnabled: true, Standstill: false})
	require.Len(t, out.ButtonEvents, 1)
	assert.Equal(t, ButtonEvent{ButtonTypeAccelCruise, false}, out.ButtonEvents[0])
	assert.Equal(t, []EventName{EventButtonEnable}, eventNamesOf(out.EnableEvents))
}

func TestInterface_StateAdvancesAfterCycle(t *testing.T) {
	ci := NewInterface(testParams(-1, -1))

	ci.Update(RawSample{CruiseButtons: ButtonMain, Gear: GearDrive, CruiseEnabled: true, Standstill: true})
	assert.Equal(t, CycleState{
		Initialized:       true,
		PrevButtons:       ButtonMain,
		PrevGear:          GearDrive,
		PrevCruiseEnabled: true,
		PrevStandstill:    true,
	}, ci.State())

	ci.Reset()
	assert.False(t, ci.Running())
	assert.True(t, ci.State().PrevWasInit())
}

func TestInterface_Transitions(t *testing.T) {
	ci := NewInterface(testParams(-1, -1))

	out := ci.Update(RawSample{Gear: GearPark, Standstill: true})
	assert.Equal(t, Transitions{}, out.Transitions, "first cycle has no edges")

	out = ci.Update(RawSample{Gear: GearDrive, Standstill: true})
	assert.Equal(t, Transitions{GearChanged: true}, out.Transitions)

	out = ci.Update(RawSample{Gear: GearDrive, CruiseEnabled: true})
	assert.Equal(t, Transitions{CruiseEngaged: true, LeftStandstill: true}, out.Transitions)

	out = ci.Update(RawSample{Gear: GearDrive})
	assert.Equal(t, Transitions{CruiseDisengaged: true}, out.Transitions)
}

func TestStep_IsPure(t *testing.T) {
	cp := testParams(8.0, 3.0)
	st := CycleState{Initialized: true, PrevButtons: ButtonUnpress}
	s := RawSample{CruiseButtons: ButtonCancel, VEgo: 4}

	a, nextA := Step(st, s, cp)
	b, nextB := Step(st, s, cp)
	assert.Equal(t, a, b)
	assert.Equal(t, nextA, nextB)
	assert.Equal(t, ButtonUnpress, st.PrevButtons)
	assert.Equal(t, ButtonCancel, nextA.PrevButtons)
}

func TestStep_CopiesSampleValues(t *testing.T) {
	s := RawSample{VEgo: 12.5, Gear: GearSport, CruiseEnabled: true, SteeringAngleDeg: -3.5}
	out, _ := Step(CycleState{}, s, testParams(-1, -1))

	assert.Equal(t, 12.5, out.VEgo)
	assert.Equal(t, GearSport, out.Gear)
	assert.True(t, out.CruiseEnabled)
	assert.Equal(t, -3.5, out.SteeringAngleDeg)
}

func TestInterface_SteerFeedforwardSelection(t *testing.T) {
	volt := NewInterface(testParams(-1, -1))
	assert.Equal(t, control.Feedforward(10, 20, control.FamilyVolt), volt.SteerFeedforward()(10, 20))

	cp, err := carparams.Get(carparams.CarMalibu, nil)
	require.NoError(t, err)
	malibu := NewInterface(cp)
	assert.Equal(t, control.DefaultFeedforward(10, 20), malibu.SteerFeedforward()(10, 20))
}

func TestEvent_String(t *testing.T) {
	assert.Equal(t, "belowSteerSpeed", Event{Name: EventBelowSteerSpeed}.String())
	assert.Equal(t, "buttonEvent(cancel pressed)", NewButtonEvent(ButtonEvent{ButtonTypeCancel, true}).String())
	assert.Equal(t, "unknown", EventName(99).String())
}
