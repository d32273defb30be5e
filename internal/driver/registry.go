package driver

import (
	"github.com/winny-/beep/internal/logging"
)

// Registry collects candidate backends and picks the first one whose
// detection succeeds. Backends are tried in registration order, so the
// composition root registers the preferred backend first.
type Registry struct {
	logger  logging.Logger
	drivers []Driver
}

// NewRegistry creates an empty registry.
func NewRegistry(logger logging.Logger) *Registry {
	return &Registry{logger: logger}
}

// Register appends a backend. Call before Detect; registration order is
// selection priority.
func (r *Registry) Register(d Driver) {
	r.drivers = append(r.drivers, d)
}

// Drivers returns the registered backends in registration order.
func (r *Registry) Drivers() []Driver {
	return r.drivers
}

// Detect probes each backend in order and returns the first that
// reports a usable device. The returned driver has passed Detect and is
// ready for Init. ok is false when no backend detects anything.
func (r *Registry) Detect(device string) (Driver, bool) {
	for _, d := range r.drivers {
		if d.Detect(device) {
			r.logger.Debug("driver detected", "driver", d.Name(), "device", device)
			return d, true
		}
		r.logger.Debug("driver not available", "driver", d.Name(), "device", device)
	}
	return nil, false
}
