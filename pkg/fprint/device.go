package fprint

import (
	"context"
	"sync"

	"github.com/openbiometrics/libfprint-go/pkg/fprint/driver"
)

// EnrollProgress is invoked once per enrollment stage. print carries
// the in-progress template when the scanner exposes one, and err the
// per-stage condition (usually a *RetryError). Stage errors are
// informational; only the Enroll return value decides the outcome.
// Callbacks run synchronously on whatever thread the native library
// invokes them from. State the caller wants to carry across
// invocations is captured by the closure.
type EnrollProgress func(dev *Device, completedStages int, print *Print, err error)

// MatchProgress is invoked during Verify and Identify with the matched
// candidate (nil if the scan matched nothing) and the fresh scan.
type MatchProgress func(dev *Device, matched, scan *Print, err error)

// Device is one fingerprint scanner, borrowed from a Context. It must
// be opened before enroll, verify, identify or capture; those block
// the calling goroutine until a terminal outcome. A Device does not
// support concurrent operations.
type Device struct {
	ctx *Context
	dev driver.Device

	mu   sync.Mutex
	open bool

	opMu sync.Mutex
}

// Name returns the human-readable product name.
func (d *Device) Name() string { return d.dev.Info().Name }

// DriverName returns the native driver handling the device.
func (d *Device) DriverName() string { return d.dev.Info().Driver }

// ID returns the backend's identifier for the device.
func (d *Device) ID() string { return d.dev.Info().ID }

// ScanType reports how the finger is presented to the sensor.
func (d *Device) ScanType() ScanType { return d.dev.ScanType() }

// Features reports the device's capability bitset.
func (d *Device) Features() Feature { return d.dev.Features() }

// HasFeature reports whether the device supports feat.
func (d *Device) HasFeature(feat Feature) bool { return d.dev.Features().Has(feat) }

// NrEnrollStages reports how many stages a complete enrollment takes.
func (d *Device) NrEnrollStages() int { return d.dev.EnrollStages() }

// FingerStatus reports the current finger presence state.
func (d *Device) FingerStatus() FingerStatus { return d.dev.FingerStatus() }

// IsOpen reports whether the device is currently open.
func (d *Device) IsOpen() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.open
}

// Open claims the device. Opening an already-open device fails with a
// Busy error wrapping ErrDeviceAlreadyOpen.
func (d *Device) Open(ctx context.Context) error {
	if !d.ctx.alive() {
		return ErrContextClosed
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.open {
		return &Error{Kind: KindBusy, Message: "open " + d.ID(), Err: ErrDeviceAlreadyOpen}
	}
	d.ctx.log.Debug(ctx, "opening device", "device", d.ID())
	if err := d.dev.Open(ctx); err != nil {
		return remapError(err)
	}
	d.open = true
	return nil
}

// Close releases the device's native resources. The wrapper handle
// stays around; further operations fail with ErrDeviceNotOpen instead
// of reaching native code. Closing an already-closed device fails the
// same way.
func (d *Device) Close(ctx context.Context) error {
	if !d.ctx.alive() {
		return ErrContextClosed
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.open {
		return ErrDeviceNotOpen
	}
	d.ctx.log.Debug(ctx, "closing device", "device", d.ID())
	if err := d.dev.Close(ctx); err != nil {
		return remapError(err)
	}
	d.open = false
	return nil
}

// NewPrint constructs an empty template scoped to this device's
// capabilities, for use with Enroll.
func (d *Device) NewPrint() (*Print, error) {
	if !d.ctx.alive() {
		return nil, ErrContextClosed
	}
	p, err := d.dev.NewPrint()
	if err != nil {
		return nil, remapError(err)
	}
	return d.ctx.wrapPrint(p), nil
}

// beginOp gates every device operation: the owning context must be
// alive, the device open, and no other operation in flight.
func (d *Device) beginOp() (func(), error) {
	if !d.ctx.alive() {
		return nil, ErrContextClosed
	}
	d.mu.Lock()
	open := d.open
	d.mu.Unlock()
	if !open {
		return nil, ErrDeviceNotOpen
	}
	if !d.opMu.TryLock() {
		return nil, &Error{Kind: KindBusy, Message: "device " + d.ID(), Err: ErrOperationInFlight}
	}
	return d.opMu.Unlock, nil
}

// Enroll drives the native enrollment routine to a terminal outcome
// and returns the completed print. template supplies the username and
// finger metadata and remains owned by the caller. Cancelling ctx
// yields a Cancelled error and leaves the device open and reusable.
func (d *Device) Enroll(ctx context.Context, template *Print, progress EnrollProgress) (*Print, error) {
	end, err := d.beginOp()
	if err != nil {
		return nil, err
	}
	defer end()
	if template == nil {
		return nil, &Error{Kind: KindInvalidArgument, Message: "nil template print"}
	}
	tp, err := template.driverPrint()
	if err != nil {
		return nil, err
	}

	var cb func(driver.EnrollStage)
	if progress != nil {
		cb = func(stage driver.EnrollStage) {
			progress(d, stage.Completed, d.ctx.wrapPrint(stage.Print), stageError(stage.Err))
		}
	}
	d.ctx.log.Debug(ctx, "enroll started", "device", d.ID(), "stages", d.NrEnrollStages())
	out, err := d.dev.Enroll(ctx, tp, cb)
	if err != nil {
		return nil, remapError(err)
	}
	return d.ctx.wrapPrint(out), nil
}

// Verify captures a scan and compares it against enrolled. It returns
// whether they matched together with the freshly captured print, which
// the caller may keep to update its stored template.
func (d *Device) Verify(ctx context.Context, enrolled *Print, progress MatchProgress) (bool, *Print, error) {
	end, err := d.beginOp()
	if err != nil {
		return false, nil, err
	}
	defer end()
	if enrolled == nil {
		return false, nil, &Error{Kind: KindInvalidArgument, Message: "nil enrolled print"}
	}
	ep, err := enrolled.driverPrint()
	if err != nil {
		return false, nil, err
	}

	var cb func(driver.MatchEvent)
	if progress != nil {
		cb = func(ev driver.MatchEvent) {
			progress(d, d.ctx.wrapPrint(ev.Match), d.ctx.wrapPrint(ev.Scan), stageError(ev.Err))
		}
	}
	match, scan, err := d.dev.Verify(ctx, ep, cb)
	if err != nil {
		return false, nil, remapError(err)
	}
	return match, d.ctx.wrapPrint(scan), nil
}

// Identify captures a scan and compares it against candidates,
// returning the matching candidate (nil if none) and the fresh scan.
// Comparison order is delegated to the native library. An empty
// candidate list is a no-match, not an error.
func (d *Device) Identify(ctx context.Context, candidates []*Print, progress MatchProgress) (matched, scan *Print, err error) {
	end, err := d.beginOp()
	if err != nil {
		return nil, nil, err
	}
	defer end()
	if len(candidates) == 0 {
		return nil, nil, nil
	}
	gallery := make([]driver.Print, len(candidates))
	for i, cand := range candidates {
		if cand == nil {
			return nil, nil, &Error{Kind: KindInvalidArgument, Message: "nil candidate print"}
		}
		cp, err := cand.driverPrint()
		if err != nil {
			return nil, nil, err
		}
		gallery[i] = cp
	}

	var cb func(driver.MatchEvent)
	if progress != nil {
		cb = func(ev driver.MatchEvent) {
			progress(d, d.ctx.wrapPrint(ev.Match), d.ctx.wrapPrint(ev.Scan), stageError(ev.Err))
		}
	}
	idx, scanPrint, err := d.dev.Identify(ctx, gallery, cb)
	if err != nil {
		return nil, nil, remapError(err)
	}
	if idx >= 0 && idx < len(candidates) {
		matched = candidates[idx]
	}
	return matched, d.ctx.wrapPrint(scanPrint), nil
}

// CaptureImage acquires a raw image from the scanner. With
// waitForFinger the device waits for a finger before capturing.
func (d *Device) CaptureImage(ctx context.Context, waitForFinger bool) (*Image, error) {
	end, err := d.beginOp()
	if err != nil {
		return nil, err
	}
	defer end()
	img, err := d.dev.Capture(ctx, waitForFinger)
	if err != nil {
		return nil, remapError(err)
	}
	return newImage(img), nil
}
