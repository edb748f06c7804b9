package loader

import "fmt"

// State tracks progression of a load through the pipeline. A load advances
// strictly forward; any failure halts it and the error carries the last
// state that completed successfully.
type State int

const (
	StateUnparsed State = iota
	StateParsed
	StateReferencesResolved
	StateTemplatesRegistered
	StateDefaultsResolved
	StateInstancesBound
	StateReady
)

// String returns the state's diagnostic name.
func (s State) String() string {
	switch s {
	case StateUnparsed:
		return "Unparsed"
	case StateParsed:
		return "Parsed"
	case StateReferencesResolved:
		return "ReferencesResolved"
	case StateTemplatesRegistered:
		return "TemplatesRegistered"
	case StateDefaultsResolved:
		return "DefaultsResolved"
	case StateInstancesBound:
		return "InstancesBound"
	case StateReady:
		return "Ready"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Error wraps a load failure with the last successfully completed state.
type Error struct {
	State State
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("load failed after state %s: %v", e.State, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }
