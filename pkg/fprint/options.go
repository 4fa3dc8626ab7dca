package fprint

import (
	"log/slog"

	"github.com/openbiometrics/libfprint-go/pkg/fprint/driver"
	"github.com/openbiometrics/libfprint-go/pkg/fprint/logging"
)

// Option configures a Context at construction time.
type Option func(*options)

type options struct {
	driver driver.Driver
	logger logging.Logger
}

// WithDriver backs the Context with the given driver instead of the
// native libfprint bindings. Virtual drivers from the virtualdev
// package plug in here.
func WithDriver(d driver.Driver) Option {
	return func(o *options) { o.driver = d }
}

// WithLogger routes the wrapper's diagnostics to the given slog logger.
// Passing nil binds to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = logging.New(l) }
}
