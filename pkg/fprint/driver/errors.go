package driver

import "fmt"

// Status is the closed set of failure conditions a backend can report.
// The native backend maps libfprint's error domain onto it; the public
// layer maps it onto the exported error kinds.
type Status int

const (
	StatusGeneral Status = iota
	StatusNotSupported
	StatusNotOpen
	StatusAlreadyOpen
	StatusBusy
	StatusProto
	StatusDataInvalid
	StatusDataNotFound
	StatusDataFull
	StatusRemoved
	StatusDenied
	StatusCancelled
)

func (s Status) String() string {
	switch s {
	case StatusGeneral:
		return "general failure"
	case StatusNotSupported:
		return "operation not supported"
	case StatusNotOpen:
		return "device not open"
	case StatusAlreadyOpen:
		return "device already open"
	case StatusBusy:
		return "device busy"
	case StatusProto:
		return "protocol error"
	case StatusDataInvalid:
		return "invalid data"
	case StatusDataNotFound:
		return "data not found"
	case StatusDataFull:
		return "storage full"
	case StatusRemoved:
		return "device removed"
	case StatusDenied:
		return "permission denied"
	case StatusCancelled:
		return "operation cancelled"
	default:
		return "unknown status"
	}
}

// Error is a failure reported by a backend. Message carries the
// native library's human-readable text, copied out of the native error
// structure before it is freed.
type Error struct {
	Status  Status
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Status.String()
	}
	return fmt.Sprintf("%s: %s", e.Status, e.Message)
}

// Errorf builds an *Error with a formatted message.
func Errorf(status Status, format string, args ...any) *Error {
	return &Error{Status: status, Message: fmt.Sprintf(format, args...)}
}

// RetryReason classifies why an enrollment or match stage must be
// repeated.
type RetryReason int

const (
	RetryGeneral RetryReason = iota
	RetryTooShort
	RetryRemoveFinger
	RetryCenterFinger
)

func (r RetryReason) String() string {
	switch r {
	case RetryGeneral:
		return "scan did not succeed"
	case RetryTooShort:
		return "swipe was too short"
	case RetryRemoveFinger:
		return "finger was not lifted between attempts"
	case RetryCenterFinger:
		return "finger was not centered on the sensor"
	default:
		return "scan must be retried"
	}
}

// RetryError reports a transient per-stage scan condition. It reaches
// progress callbacks as information; a stage-level retry never decides
// the terminal outcome of the operation by itself.
type RetryError struct {
	Reason  RetryReason
	Message string
}

func (e *RetryError) Error() string {
	if e.Message == "" {
		return e.Reason.String()
	}
	return fmt.Sprintf("%s: %s", e.Reason, e.Message)
}
