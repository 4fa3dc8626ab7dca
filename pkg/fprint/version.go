package fprint

import "github.com/openbiometrics/libfprint-go/pkg/fprint/internal/backend"

// Version is the wrapper's semantic version, populated at build time
// via ldflags. In development it defaults to v0.0.0-in-progress.
var Version = "v0.0.0-in-progress"

// WrapperVersion returns the wrapper's version string.
func WrapperVersion() string { return Version }

// NativeBindingsBuilt reports whether the native libfprint bindings
// were compiled into this binary.
func NativeBindingsBuilt() bool { return backend.Built() }
