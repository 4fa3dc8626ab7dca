package backend

import "errors"

// ErrNotBuilt reports that the native libfprint bindings were not
// linked into the current binary. Callers can use this to fall back to
// virtual devices.
var ErrNotBuilt = errors.New("fprint: native libfprint bindings not built")
