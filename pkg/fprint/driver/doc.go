// Package driver defines the boundary between the public fprint API and
// the backends that provide fingerprint scanners. The native libfprint
// backend and the pure-Go virtual backend both implement these
// interfaces; the public package never touches a native handle directly.
//
// Values crossing this boundary are owned by the caller: backends copy
// any native memory (error messages, image data, serialized prints) into
// Go values before returning.
package driver
