//go:build !fprintcgo || !cgo || windows

package backend

import "github.com/openbiometrics/libfprint-go/pkg/fprint/driver"

// New reports that the native bindings are unavailable in this build.
func New() (driver.Driver, error) {
	return nil, ErrNotBuilt
}

// Built reports whether the native bindings were compiled in.
func Built() bool { return false }
