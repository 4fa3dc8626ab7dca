// Package backend binds the native libfprint library to the driver
// contract. The cgo implementation is opt-in via the fprintcgo build
// tag because it needs the libfprint-2 development headers; without the
// tag New reports ErrNotBuilt and callers fall back to virtual devices.
package backend
