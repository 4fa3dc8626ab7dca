//go:build fprintcgo && cgo && !windows

package backend

/*
#include <glib.h>
#include <gio/gio.h>
#include <fprint.h>
*/
import "C"

import "github.com/openbiometrics/libfprint-go/pkg/fprint/driver"

// copyGError translates a borrowed GError into an owned Go error. The
// message is copied; the GError itself stays with its native owner.
func copyGError(gerr *C.GError) error {
	if gerr == nil {
		return nil
	}
	msg := C.GoString(gerr.message)

	switch gerr.domain {
	case C.fp_device_retry_quark():
		return &driver.RetryError{Reason: retryReason(gerr.code), Message: msg}
	case C.fp_device_error_quark():
		return &driver.Error{Status: deviceStatus(gerr.code), Message: msg}
	}
	if C.g_error_matches(gerr, C.g_io_error_quark(), C.G_IO_ERROR_CANCELLED) == C.TRUE {
		return &driver.Error{Status: driver.StatusCancelled, Message: msg}
	}
	if C.g_error_matches(gerr, C.g_io_error_quark(), C.G_IO_ERROR_PERMISSION_DENIED) == C.TRUE {
		return &driver.Error{Status: driver.StatusDenied, Message: msg}
	}
	return &driver.Error{Status: driver.StatusGeneral, Message: msg}
}

// takeGError translates an owned GError and frees it.
func takeGError(gerr *C.GError) error {
	if gerr == nil {
		return &driver.Error{Status: driver.StatusGeneral, Message: "native call failed without error detail"}
	}
	err := copyGError(gerr)
	C.g_error_free(gerr)
	return err
}

func deviceStatus(code C.gint) driver.Status {
	switch C.FpDeviceError(code) {
	case C.FP_DEVICE_ERROR_NOT_SUPPORTED:
		return driver.StatusNotSupported
	case C.FP_DEVICE_ERROR_NOT_OPEN:
		return driver.StatusNotOpen
	case C.FP_DEVICE_ERROR_ALREADY_OPEN:
		return driver.StatusAlreadyOpen
	case C.FP_DEVICE_ERROR_BUSY:
		return driver.StatusBusy
	case C.FP_DEVICE_ERROR_PROTO:
		return driver.StatusProto
	case C.FP_DEVICE_ERROR_DATA_INVALID:
		return driver.StatusDataInvalid
	case C.FP_DEVICE_ERROR_REMOVED:
		return driver.StatusRemoved
	case C.FP_DEVICE_ERROR_DATA_NOT_FOUND:
		return driver.StatusDataNotFound
	case C.FP_DEVICE_ERROR_DATA_FULL:
		return driver.StatusDataFull
	default:
		return driver.StatusGeneral
	}
}

func retryReason(code C.gint) driver.RetryReason {
	switch C.FpDeviceRetry(code) {
	case C.FP_DEVICE_RETRY_TOO_SHORT:
		return driver.RetryTooShort
	case C.FP_DEVICE_RETRY_REMOVE_FINGER:
		return driver.RetryRemoveFinger
	case C.FP_DEVICE_RETRY_CENTER_FINGER:
		return driver.RetryCenterFinger
	default:
		return driver.RetryGeneral
	}
}
