package driver

import (
	"context"
	"time"
)

// DeviceInfo describes a scanner as reported by its backend.
type DeviceInfo struct {
	// Name is the human-readable product name.
	Name string
	// Driver is the name of the backend driver handling the device.
	Driver string
	// ID uniquely identifies the device within its backend.
	ID string
}

// ScanType reports how a scanner expects the finger to be presented.
type ScanType int

const (
	ScanTypeSwipe ScanType = iota
	ScanTypePress
)

func (s ScanType) String() string {
	switch s {
	case ScanTypeSwipe:
		return "swipe"
	case ScanTypePress:
		return "press"
	default:
		return "unknown"
	}
}

// Feature is a bitset of optional device capabilities.
type Feature uint32

const (
	FeatureCapture Feature = 1 << iota
	FeatureIdentify
	FeatureVerify
	FeatureStorage
	FeatureStorageList
	FeatureStorageDelete
	FeatureStorageClear
	FeatureDuplicatesCheck
	FeatureAlwaysOn
	FeatureUpdatePrint
)

// Has reports whether all bits of feat are set.
func (f Feature) Has(feat Feature) bool { return f&feat == feat }

// Finger identifies which physical finger a print belongs to.
type Finger int

const (
	FingerUnknown Finger = iota
	FingerLeftThumb
	FingerLeftIndex
	FingerLeftMiddle
	FingerLeftRing
	FingerLeftLittle
	FingerRightThumb
	FingerRightIndex
	FingerRightMiddle
	FingerRightRing
	FingerRightLittle
)

var fingerNames = map[Finger]string{
	FingerUnknown:     "unknown",
	FingerLeftThumb:   "left-thumb",
	FingerLeftIndex:   "left-index",
	FingerLeftMiddle:  "left-middle",
	FingerLeftRing:    "left-ring",
	FingerLeftLittle:  "left-little",
	FingerRightThumb:  "right-thumb",
	FingerRightIndex:  "right-index",
	FingerRightMiddle: "right-middle",
	FingerRightRing:   "right-ring",
	FingerRightLittle: "right-little",
}

func (f Finger) String() string {
	if name, ok := fingerNames[f]; ok {
		return name
	}
	return "unknown"
}

// ParseFinger maps a name produced by Finger.String back to its value.
// Unrecognized names map to FingerUnknown.
func ParseFinger(name string) Finger {
	for f, n := range fingerNames {
		if n == name {
			return f
		}
	}
	return FingerUnknown
}

// FingerStatus is a bitset describing the finger presence state the
// device currently reports.
type FingerStatus uint32

const (
	FingerStatusNeeded FingerStatus = 1 << iota
	FingerStatusPresent
)

// Image is a raw captured fingerprint frame, 8-bit grayscale, row-major.
type Image struct {
	Width  int
	Height int
	Data   []byte
}

// EnrollStage is delivered to the enroll progress callback once per
// native callback invocation. Err, when set, is usually a *RetryError
// describing why the stage must be repeated; it is informational and
// does not decide the outcome of the enrollment.
type EnrollStage struct {
	Completed int
	Print     Print
	Err       error
}

// MatchEvent is delivered to verify/identify callbacks. Match is the
// candidate the scan matched, or nil. Scan is the freshly captured
// print, when the backend exposes one at callback time.
type MatchEvent struct {
	Match Print
	Scan  Print
	Err   error
}

// Driver is the per-context entry point of a backend.
type Driver interface {
	// Name identifies the backend ("libfprint", "virtual", ...).
	Name() string

	// Devices enumerates the scanners currently available. The returned
	// devices stay valid until Close.
	Devices() ([]Device, error)

	// DeserializePrint reconstructs a print from the backend's stable
	// binary representation.
	DeserializePrint(data []byte) (Print, error)

	// Close releases all backend resources. Devices and prints obtained
	// from this driver must not be used afterwards.
	Close() error
}

// Device is one scanner. Implementations are not required to be safe
// for concurrent use; the public layer serializes operations.
type Device interface {
	Info() DeviceInfo
	Open(ctx context.Context) error
	Close(ctx context.Context) error

	EnrollStages() int
	ScanType() ScanType
	Features() Feature
	FingerStatus() FingerStatus

	// NewPrint constructs an empty template scoped to this device's
	// capabilities.
	NewPrint() (Print, error)

	// Enroll drives the multi-stage enrollment routine. progress may be
	// nil. It blocks until a terminal outcome and returns the completed
	// print on success.
	Enroll(ctx context.Context, template Print, progress func(EnrollStage)) (Print, error)

	// Verify captures a scan and compares it against enrolled. It
	// returns whether they matched together with the fresh scan.
	Verify(ctx context.Context, enrolled Print, progress func(MatchEvent)) (bool, Print, error)

	// Identify captures a scan and compares it against candidates. It
	// returns the index of the matching candidate, or -1, together with
	// the fresh scan. Comparison order is backend-defined.
	Identify(ctx context.Context, candidates []Print, progress func(MatchEvent)) (int, Print, error)

	// Capture acquires a raw image from the scanner.
	Capture(ctx context.Context, waitForFinger bool) (*Image, error)
}

// Print is a fingerprint template held by a backend. The matching
// payload is opaque to everything above the backend.
type Print interface {
	Username() string
	SetUsername(username string) error
	Finger() Finger
	SetFinger(finger Finger) error

	DeviceID() string
	DriverName() string
	EnrollDate() time.Time

	// Serialize produces the backend's stable binary representation.
	Serialize() ([]byte, error)

	// Close releases the backend resources behind the print. Pure-Go
	// backends may treat it as a no-op.
	Close() error
}
