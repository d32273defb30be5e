//go:build linux

// Package evdev sounds tones through a kernel input-event device, the
// modern interface to the PC speaker (platform-pcspkr). Detection
// negotiates a sound sub-API from the device's EV_SND capability bits:
// SND_TONE when the hardware can pitch (preferred), SND_BELL as an
// on/off fallback.
package evdev

import (
	"fmt"
	"io"
	"os"

	"github.com/winny-/beep/internal/device"
	"github.com/winny-/beep/internal/driver"
	"github.com/winny-/beep/internal/input"
	"github.com/winny-/beep/internal/logging"
)

// DefaultDevice is the well-known pcspkr event node. Make this a list
// if more well-known names turn up.
const DefaultDevice = "/dev/input/by-path/platform-pcspkr-event-spkr"

type sndAPI int

const (
	sndAPITone sndAPI = iota // SND_TONE: arbitrary frequency
	sndAPIBell               // SND_BELL: binary on/off
)

// Driver implements driver.Driver over an evdev node. The zero value is
// not usable; construct with New.
type Driver struct {
	logger logging.Logger
	fatal  driver.FatalFunc

	// capability queries, swappable for simulated devices in tests
	hasSnd  func(fd uintptr) bool
	sndCaps func(fd uintptr) (uint64, error)

	f      *os.File
	out    io.Writer
	dev    string
	api    sndAPI
	active bool
}

// New creates an undetected evdev driver.
func New() *Driver {
	return &Driver{
		logger:  logging.GetLogger("evdev"),
		fatal:   driver.ExitFatal,
		hasSnd:  input.HasSndFacility,
		sndCaps: input.SndCapabilities,
	}
}

// Name implements driver.Driver.
func (d *Driver) Name() string { return "evdev" }

// openChecked opens name and verifies the node implements the EV_SND
// API at all. Devices failing either check are closed and skipped.
func (d *Driver) openChecked(name string) (*os.File, bool) {
	f, err := device.Open(name)
	if err != nil {
		if device.IsFatal(err) {
			d.fatal("open "+name, err)
			return nil, false
		}
		d.logger.Debug("cannot open device", "device", name, "error", err)
		return nil, false
	}

	if !d.hasSnd(f.Fd()) {
		d.logger.Debug("device does not implement EV_SND API", "device", name)
		f.Close()
		return nil, false
	}

	return f, true
}

// Detect implements driver.Driver. With an empty device it tries the
// well-known pcspkr node. On any failure the handle is closed before
// returning, so repeated detection cannot leak descriptors.
func (d *Driver) Detect(dev string) bool {
	if dev == "" {
		dev = DefaultDevice
	}
	d.logger.Debug("detecting", "device", dev)

	f, ok := d.openChecked(dev)
	if !ok {
		return false
	}

	bits, err := d.sndCaps(f.Fd())
	if err != nil {
		d.logger.Debug("capability query failed", "device", dev, "error", err)
		f.Close()
		return false
	}

	switch {
	case bits&(1<<input.SndTone) != 0:
		d.api = sndAPITone
		d.logger.Debug("found SND_TONE support", "device", dev)
	case bits&(1<<input.SndBell) != 0:
		d.api = sndAPIBell
		d.logger.Debug("falling back to SND_BELL support", "device", dev)
	default:
		d.logger.Debug("device supports neither SND_TONE nor SND_BELL", "device", dev)
		f.Close()
		return false
	}

	d.f = f
	d.out = f
	d.dev = dev
	return true
}

// Init implements driver.Driver.
func (d *Driver) Init() {
	d.logger.Debug("init", "device", d.dev)
}

// Fini implements driver.Driver.
func (d *Driver) Fini() {
	d.logger.Debug("fini", "device", d.dev)
	if d.f != nil {
		d.f.Close()
		d.f = nil
		d.out = nil
	}
	d.active = false
}

// writeEvent delivers one EV_SND record in a single write. A short or
// failed write means we may no longer be able to silence the device, so
// there is no error return, only the fatal hook.
func (d *Driver) writeEvent(code uint16, value int32) {
	e := input.Event{Type: input.EvSnd, Code: code, Value: value}
	b, err := e.MarshalBinary()
	if err != nil {
		d.fatal("write EV_SND", err)
		return
	}
	n, err := d.out.Write(b)
	if err != nil {
		d.fatal("write EV_SND", err)
		return
	}
	if n != len(b) {
		d.fatal("write EV_SND", fmt.Errorf("short write: %d of %d bytes", n, len(b)))
	}
}

// BeginTone implements driver.Driver. In bell mode freq is ignored; the
// hardware only knows on and off.
func (d *Driver) BeginTone(freq uint16) {
	d.logger.Debug("begin tone", "freq", freq)
	if d.active {
		d.logger.Warn("begin tone while a tone is active", "freq", freq)
	}

	switch d.api {
	case sndAPITone:
		d.writeEvent(input.SndTone, int32(freq))
	case sndAPIBell:
		d.writeEvent(input.SndBell, 1)
	}
	d.active = true
}

// EndTone implements driver.Driver.
func (d *Driver) EndTone() {
	d.logger.Debug("end tone")

	switch d.api {
	case sndAPITone:
		d.writeEvent(input.SndTone, 0)
	case sndAPIBell:
		d.writeEvent(input.SndBell, 0)
	}
	d.active = false
}
