package carstate

import (
	"gm-carstate/carparams"
)

// EventName tags an Event.
type EventName int

const (
	EventUnknown EventName = iota
	EventButton
	EventBelowEngageSpeed
	EventBelowSteerSpeed
	EventResumeRequired
	EventButtonEnable
	EventButtonCancel
)

var eventNames = map[EventName]string{
	EventUnknown:          "unknown",
	EventButton:           "buttonEvent",
	EventBelowEngageSpeed: "belowEngageSpeed",
	EventBelowSteerSpeed:  "belowSteerSpeed",
	EventResumeRequired:   "resumeRequired",
	EventButtonEnable:     "buttonEnable",
	EventButtonCancel:     "buttonCancel",
}

func (n EventName) String() string {
	if s, ok := eventNames[n]; ok {
		return s
	}
	return "unknown"
}

// Event is one item of a cycle's output. Button is only set for EventButton.
type Event struct {
	Name   EventName
	Button ButtonEvent
}

func (e Event) String() string {
	if e.Name == EventButton {
		return e.Name.String() + "(" + e.Button.String() + ")"
	}
	return e.Name.String()
}

// NewButtonEvent wraps a button press or release as an Event.
func NewButtonEvent(be ButtonEvent) Event {
	return Event{Name: EventButton, Button: be}
}

// EvaluateThresholds checks the current sample against the car's static speed
// thresholds. Rules are independent and always evaluated in the same order:
// below engage speed, resume required, below steer speed. A NaN speed fails
// both speed comparisons and yields no below-events.
func EvaluateThresholds(s RawSample, cp *carparams.VehicleParameters) []Event {
	var events []Event
	if s.VEgo < cp.MinEnableSpeed {
		events = append(events, Event{Name: EventBelowEngageSpeed})
	}
	if s.CruiseStandstill {
		events = append(events, Event{Name: EventResumeRequired})
	}
	if s.VEgo < cp.MinSteerSpeed {
		events = append(events, Event{Name: EventBelowSteerSpeed})
	}
	return events
}

// ButtonEnableEvents derives engage/disengage requests from button events.
// Without PCM cruise, releasing accel or decel requests engagement; pressing
// cancel always requests disengagement.
func ButtonEnableEvents(buttons []ButtonEvent, pcmCruise bool) []Event {
	var events []Event
	for _, b := range buttons {
		if !pcmCruise && !b.Pressed &&
			(b.Type == ButtonTypeAccelCruise || b.Type == ButtonTypeDecelCruise) {
			events = append(events, Event{Name: EventButtonEnable})
		}
		if b.Type == ButtonTypeCancel && b.Pressed {
			events = append(events, Event{Name: EventButtonCancel})
		}
	}
	return events
}

// HasEvent reports whether events contains one named n.
func HasEvent(events []Event, n EventName) bool {
	for _, e := range events {
		if e.Name == n {
			return true
		}
	}
	return false
}
