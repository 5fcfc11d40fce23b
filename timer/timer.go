// Package timer provides the fixed rate tick that paces the sound driver.
//
// A Source is installed at a target rate. Every tick sets a single pending
// flag which is read and cleared with Fired(). Ticks that arrive while the
// flag is already set are coalesced. Wait() blocks until the next interrupt
// of any kind, after which the caller checks the flag.
package timer

import (
	"context"
	"errors"
)

// Rate is the tick rate expected by SCI0 sound drivers.
const Rate = 60

// Source is a periodic tick.
type Source interface {
	// Install starts ticks at the requested rate. It is an error to install
	// a source that is already installed.
	Install(hz int) error

	// Uninstall stops ticks and restores whatever the source replaced.
	Uninstall() error

	// Wait blocks until an interrupt occurs or the context is done.
	Wait(ctx context.Context) error

	// Fired returns true if a tick has occurred since the previous call.
	Fired() bool
}

var (
	// AlreadyInstalled is returned by Install() if the source is installed.
	AlreadyInstalled = errors.New("timer already installed")

	// NotInstalled is returned by Uninstall() if the source is not installed.
	NotInstalled = errors.New("timer not installed")

	// InvalidRate is returned by Install() for a rate that cannot be used.
	InvalidRate = errors.New("invalid timer rate")
)
