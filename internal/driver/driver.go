// Package driver defines the lifecycle contract every beep backend
// implements and the registry the composition root selects them from.
//
// The contract has exactly one fallible operation: Detect. Everything
// after a successful Detect operates on hardware that was already
// validated, so failures there have no safe recovery (a half-delivered
// start event can leave the speaker sounding with no way to silence it)
// and go through the Fatal hook instead of an error return.
package driver

import (
	"os"

	"github.com/winny-/beep/internal/logging"
)

// Driver is one beep backend. A driver is single-owner, single-thread:
// no method may be called concurrently with another on the same value.
//
// Lifecycle order: Detect (repeatable until it succeeds) → Init →
// any number of BeginTone/EndTone pairs → Fini. After Fini the driver
// may be detected again.
type Driver interface {
	// Name identifies the backend in logs and driver selection.
	Name() string

	// Detect probes for usable hardware, opening device when non-empty
	// or the backend's well-known default otherwise. A false return
	// means "try the next backend"; the driver holds no resources
	// afterwards.
	Detect(device string) bool

	// Init is called once after a successful Detect, before the first
	// tone. It never fails.
	Init()

	// Fini releases whatever Detect acquired. Safe to call when nothing
	// is held.
	Fini()

	// BeginTone starts sounding freq Hz. Backends without frequency
	// control ignore freq and sound their fixed pitch. Calling
	// BeginTone while a tone is active replaces the current tone.
	BeginTone(freq uint16)

	// EndTone silences the device.
	EndTone()
}

// FatalFunc reports an unrecoverable device failure. op names the
// failing operation.
type FatalFunc func(op string, err error)

// ExitFatal is the production FatalFunc: log and terminate. Backends
// take a FatalFunc at construction so tests can substitute a recorder.
func ExitFatal(op string, err error) {
	logging.GetLogger("driver").Error("unrecoverable device failure", "op", op, "error", err)
	os.Exit(1)
}
