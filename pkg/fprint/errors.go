package fprint

import (
	"context"
	"errors"
	"fmt"

	"github.com/openbiometrics/libfprint-go/pkg/fprint/driver"
	"github.com/openbiometrics/libfprint-go/pkg/fprint/internal/backend"
)

// Kind classifies a failure into the closed set the API guarantees.
type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindInvalidArgument
	KindBusy
	KindPermissionDenied
	KindCancelled
	KindProtocol
	KindNotSupported
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not found"
	case KindInvalidArgument:
		return "invalid argument"
	case KindBusy:
		return "busy"
	case KindPermissionDenied:
		return "permission denied"
	case KindCancelled:
		return "cancelled"
	case KindProtocol:
		return "protocol error"
	case KindNotSupported:
		return "not supported"
	case KindInternal:
		return "internal error"
	default:
		return "unknown"
	}
}

// Error is the owned result type every native failure is converted
// into before it crosses the API boundary.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Message != "" && e.Err != nil:
		return fmt.Sprintf("fprint: %s: %s: %v", e.Kind, e.Message, e.Err)
	case e.Message != "":
		return fmt.Sprintf("fprint: %s: %s", e.Kind, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("fprint: %s: %v", e.Kind, e.Err)
	default:
		return fmt.Sprintf("fprint: %s", e.Kind)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf extracts the Kind from an error returned by this package.
// Errors of the wrapper-local class (ErrDeviceNotOpen, ErrContextClosed)
// and foreign errors report KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Wrapper-local errors, raised without invoking native code.
var (
	// ErrDeviceNotOpen reports an operation attempted on a closed device.
	ErrDeviceNotOpen = errors.New("fprint: device is not open")
	// ErrDeviceAlreadyOpen reports a second Open on an open device.
	ErrDeviceAlreadyOpen = errors.New("fprint: device is already open")
	// ErrContextClosed reports use of a handle after its Context closed.
	ErrContextClosed = errors.New("fprint: context has been closed")
	// ErrOperationInFlight reports a second operation started on a
	// device while one is still running.
	ErrOperationInFlight = errors.New("fprint: another operation is in flight on this device")
)

// ErrNotBuilt reports that the native bindings are not part of this
// binary. See the package documentation for the fprintcgo build tag.
var ErrNotBuilt = backend.ErrNotBuilt

// remapError converts driver-layer errors to the public error model.
// Native error content has already been copied into Go values by the
// backend, so the result owns everything it references.
func remapError(err error) error {
	if err == nil {
		return nil
	}
	var pub *Error
	if errors.As(err, &pub) {
		return err
	}
	var derr *driver.Error
	if errors.As(err, &derr) {
		return &Error{Kind: statusKind(derr.Status), Message: derr.Message, Err: derr}
	}
	var rerr *driver.RetryError
	if errors.As(err, &rerr) {
		return &Error{Kind: KindInternal, Message: "scan did not complete", Err: rerr}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: KindCancelled, Err: err}
	}
	if errors.Is(err, backend.ErrNotBuilt) {
		return &Error{Kind: KindNotSupported, Err: err}
	}
	return &Error{Kind: KindInternal, Err: err}
}

func statusKind(s driver.Status) Kind {
	switch s {
	case driver.StatusDataNotFound, driver.StatusRemoved:
		return KindNotFound
	case driver.StatusDataInvalid, driver.StatusDataFull:
		return KindInvalidArgument
	case driver.StatusBusy, driver.StatusAlreadyOpen:
		return KindBusy
	case driver.StatusDenied:
		return KindPermissionDenied
	case driver.StatusCancelled:
		return KindCancelled
	case driver.StatusProto:
		return KindProtocol
	case driver.StatusNotSupported:
		return KindNotSupported
	default:
		return KindInternal
	}
}

// stageError prepares a per-stage callback error. Retry conditions pass
// through untranslated so callbacks can inspect the reason; anything
// else gets the usual boundary translation.
func stageError(err error) error {
	if err == nil {
		return nil
	}
	var rerr *driver.RetryError
	if errors.As(err, &rerr) {
		return rerr
	}
	return remapError(err)
}
