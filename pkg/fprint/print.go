package fprint

import (
	"time"

	"github.com/openbiometrics/libfprint-go/pkg/fprint/driver"
)

// Print is a fingerprint template: either a freshly constructed empty
// template (Device.NewPrint) or the result of a completed enrollment
// or deserialization. The matching payload inside it is opaque; the
// wrapper never interprets or modifies it.
type Print struct {
	ctx *Context
	p   driver.Print
}

// Username returns the user metadata attached to the print.
func (p *Print) Username() string { return p.p.Username() }

// SetUsername attaches user metadata to the print.
func (p *Print) SetUsername(username string) error {
	if !p.ctx.alive() {
		return ErrContextClosed
	}
	return remapError(p.p.SetUsername(username))
}

// Finger returns which physical finger the print belongs to.
func (p *Print) Finger() Finger { return p.p.Finger() }

// SetFinger records which physical finger the print belongs to.
func (p *Print) SetFinger(finger Finger) error {
	if !p.ctx.alive() {
		return ErrContextClosed
	}
	return remapError(p.p.SetFinger(finger))
}

// DeviceID reports which device produced the print.
func (p *Print) DeviceID() string { return p.p.DeviceID() }

// DriverName reports which native driver produced the print.
func (p *Print) DriverName() string { return p.p.DriverName() }

// EnrollDate reports when the print was enrolled, or the zero time if
// the backend does not record it.
func (p *Print) EnrollDate() time.Time { return p.p.EnrollDate() }

// Serialize converts the print to the backend's stable binary
// representation. Username, finger and the opaque matching payload
// round-trip through Context.DeserializePrint bit-for-bit.
func (p *Print) Serialize() ([]byte, error) {
	if !p.ctx.alive() {
		return nil, ErrContextClosed
	}
	data, err := p.p.Serialize()
	if err != nil {
		return nil, remapError(err)
	}
	return data, nil
}

func (p *Print) driverPrint() (driver.Print, error) {
	if !p.ctx.alive() {
		return nil, ErrContextClosed
	}
	return p.p, nil
}
