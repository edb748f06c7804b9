package config

import "fmt"

// ReadyState is the declared lifecycle status of a pre-existing instance.
// An instance declared with ReadyOK skips normal creation.
type ReadyState string

const (
	ReadyUnspecified ReadyState = ""
	ReadyOK          ReadyState = "ok"
	ReadyDegraded    ReadyState = "degraded"
	ReadyError       ReadyState = "error"
	ReadyPending     ReadyState = "pending"
	ReadyAbsent      ReadyState = "absent"
	ReadyUnknown     ReadyState = "unknown"
)

// InvalidReadyStateError reports a readyState value outside the recognized
// enum, naming the offending instance.
type InvalidReadyStateError struct {
	Instance string
	Value    string
}

func (e *InvalidReadyStateError) Error() string {
	return fmt.Sprintf("instance '%s' declares invalid readyState '%s'", e.Instance, e.Value)
}

// ParseReadyState validates a declared readyState for the named instance.
// The empty string is valid and means the instance has no pre-existing
// status.
func ParseReadyState(instance, value string) (ReadyState, error) {
	switch ReadyState(value) {
	case ReadyUnspecified, ReadyOK, ReadyDegraded, ReadyError, ReadyPending, ReadyAbsent, ReadyUnknown:
		return ReadyState(value), nil
	default:
		return ReadyUnspecified, &InvalidReadyStateError{Instance: instance, Value: value}
	}
}
