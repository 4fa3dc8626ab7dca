package fprint

import (
	"sync"

	"github.com/openbiometrics/libfprint-go/pkg/fprint/driver"
	"github.com/openbiometrics/libfprint-go/pkg/fprint/internal/backend"
	"github.com/openbiometrics/libfprint-go/pkg/fprint/logging"
)

// Context owns the top-level native library handle and is the root of
// device discovery. It lives for the application's fingerprint
// subsystem lifetime; Devices and Prints obtained from it must not be
// used after it is closed.
type Context struct {
	drv driver.Driver
	log logging.Logger

	mu     sync.Mutex
	closed bool
}

// New initializes the fingerprint subsystem. Without WithDriver it
// binds the native libfprint library and fails with ErrNotBuilt when
// the bindings are not compiled in.
func New(opts ...Option) (*Context, error) {
	o := options{logger: logging.New(nil)}
	for _, opt := range opts {
		opt(&o)
	}
	drv := o.driver
	if drv == nil {
		d, err := backend.New()
		if err != nil {
			return nil, remapError(err)
		}
		drv = d
	}
	return &Context{drv: drv, log: o.logger.With("driver", drv.Name())}, nil
}

// DriverName reports which backend the context is bound to.
func (c *Context) DriverName() string { return c.drv.Name() }

// Devices enumerates the scanners currently attached. The returned
// handles are borrowed from the context and share its lifetime.
func (c *Context) Devices() ([]*Device, error) {
	if !c.alive() {
		return nil, ErrContextClosed
	}
	devs, err := c.drv.Devices()
	if err != nil {
		return nil, remapError(err)
	}
	out := make([]*Device, len(devs))
	for i, d := range devs {
		out[i] = &Device{ctx: c, dev: d}
	}
	return out, nil
}

// DeserializePrint reconstructs a Print from the stable binary
// representation produced by Print.Serialize. The payload is passed to
// the backend untouched.
func (c *Context) DeserializePrint(data []byte) (*Print, error) {
	if !c.alive() {
		return nil, ErrContextClosed
	}
	p, err := c.drv.DeserializePrint(data)
	if err != nil {
		return nil, remapError(err)
	}
	return c.wrapPrint(p), nil
}

// Close releases the native context and everything borrowed from it.
// A second Close fails with ErrContextClosed.
func (c *Context) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrContextClosed
	}
	c.closed = true
	c.mu.Unlock()
	return remapError(c.drv.Close())
}

func (c *Context) alive() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.closed
}

func (c *Context) wrapPrint(p driver.Print) *Print {
	if p == nil {
		return nil
	}
	return &Print{ctx: c, p: p}
}
