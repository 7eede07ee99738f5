package carstate

import "fmt"

// ButtonCode is the raw cruise-button value reported on the bus.
type ButtonCode int

// GM cruise button codes.
const (
	ButtonInit     ButtonCode = 0 // no real sample yet
	ButtonUnpress  ButtonCode = 1
	ButtonResAccel ButtonCode = 2
	ButtonDecelSet ButtonCode = 3
	ButtonMain     ButtonCode = 5
	ButtonCancel   ButtonCode = 6
)

func (b ButtonCode) String() string {
	switch b {
	case ButtonInit:
		return "INIT"
	case ButtonUnpress:
		return "UNPRESS"
	case ButtonResAccel:
		return "RES_ACCEL"
	case ButtonDecelSet:
		return "DECEL_SET"
	case ButtonMain:
		return "MAIN"
	case ButtonCancel:
		return "CANCEL"
	default:
		return fmt.Sprintf("BUTTON_%d", int(b))
	}
}

// ButtonType is the semantic meaning of a button event.
type ButtonType int

const (
	ButtonTypeUnknown ButtonType = iota
	ButtonTypeAccelCruise
	ButtonTypeDecelCruise
	ButtonTypeCancel
	ButtonTypeAltButton3
)

var buttonTypeNames = map[ButtonType]string{
	ButtonTypeUnknown:     "unknown",
	ButtonTypeAccelCruise: "accelCruise",
	ButtonTypeDecelCruise: "decelCruise",
	ButtonTypeCancel:      "cancel",
	ButtonTypeAltButton3:  "altButton3",
}

func (t ButtonType) String() string {
	if s, ok := buttonTypeNames[t]; ok {
		return s
	}
	return "unknown"
}

// buttonTypes maps GM button codes to their meaning. Codes missing here
// classify as ButtonTypeUnknown.
var buttonTypes = map[ButtonCode]ButtonType{
	ButtonResAccel: ButtonTypeAccelCruise,
	ButtonDecelSet: ButtonTypeDecelCruise,
	ButtonMain:     ButtonTypeAltButton3,
	ButtonCancel:   ButtonTypeCancel,
}

// ButtonEvent is one press or release.
type ButtonEvent struct {
	Type    ButtonType
	Pressed bool
}

func (e ButtonEvent) String() string {
	if e.Pressed {
		return e.Type.String() + " pressed"
	}
	return e.Type.String() + " released"
}

// ClassifyButton turns a change of the raw button code into at most one event.
// Nothing is emitted when the code is unchanged or when prevWasInit is set.
// A change to UNPRESS releases the previous button; any other code is a
// press of the new one.
func ClassifyButton(prev, curr ButtonCode, prevWasInit bool) (ButtonEvent, bool) {
	if prev == curr || prevWasInit {
		return ButtonEvent{}, false
	}

	be := ButtonEvent{Pressed: true}
	code := curr
	if curr == ButtonUnpress {
		be.Pressed = false
		code = prev
	}
	be.Type = buttonTypes[code]
	return be, true
}

// SuppressResumeAtStandstill turns accelCruise into unknown when cruise is
// already enabled and the car is stopped, so resuming from a stop does not
// also bump the set speed.
func SuppressResumeAtStandstill(be ButtonEvent, cruiseEnabled, standstill bool) ButtonEvent {
	if be.Type == ButtonTypeAccelCruise && cruiseEnabled && standstill {
		be.Type = ButtonTypeUnknown
	}
	return be
}
