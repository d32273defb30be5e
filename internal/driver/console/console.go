//go:build linux

// Package console sounds tones through the legacy virtual-console
// KIOCSOUND ioctl. It is the fallback for kernels or setups where the
// pcspkr input device is absent but /dev/tty0 still reaches the speaker.
package console

import (
	"os"

	"github.com/winny-/beep/internal/device"
	"github.com/winny-/beep/internal/driver"
	"github.com/winny-/beep/internal/input"
	"github.com/winny-/beep/internal/logging"
)

// DefaultDevice is the current virtual console.
const DefaultDevice = "/dev/tty0"

// KIOCSOUND starts or stops tone generation; the argument is the tone
// period in PIT clock ticks, 0 for silence (console_ioctl(4)).
const kiocsound = 0x4B2F

// clockTickRate is the PIT oscillator frequency in Hz.
const clockTickRate = 1193180

// Driver implements driver.Driver over a console device.
type Driver struct {
	logger logging.Logger
	fatal  driver.FatalFunc
	ioctl  func(fd uintptr, req uint, arg int) error

	f   *os.File
	dev string
}

// New creates an undetected console driver.
func New() *Driver {
	return &Driver{
		logger: logging.GetLogger("console"),
		fatal:  driver.ExitFatal,
		ioctl:  input.IoctlInt,
	}
}

// Name implements driver.Driver.
func (d *Driver) Name() string { return "console" }

// Detect implements driver.Driver. The console has no capability
// negotiation; any console character device that opens is usable.
func (d *Driver) Detect(dev string) bool {
	if dev == "" {
		dev = DefaultDevice
	}
	d.logger.Debug("detecting", "device", dev)

	f, err := device.Open(dev)
	if err != nil {
		if device.IsFatal(err) {
			d.fatal("open "+dev, err)
			return false
		}
		d.logger.Debug("cannot open device", "device", dev, "error", err)
		return false
	}

	d.f = f
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
	}
}

func (d *Driver) sound(period int) {
	var fd uintptr
	if d.f != nil {
		fd = d.f.Fd()
	}
	if err := d.ioctl(fd, kiocsound, period); err != nil {
		d.fatal("ioctl KIOCSOUND", err)
	}
}

// BeginTone implements driver.Driver. Frequency 0 maps to silence; the
// PIT cannot represent it and the period division would trap.
func (d *Driver) BeginTone(freq uint16) {
	d.logger.Debug("begin tone", "freq", freq)
	period := 0
	if freq > 0 {
		period = clockTickRate / int(freq)
	}
	d.sound(period)
}

// EndTone implements driver.Driver.
func (d *Driver) EndTone() {
	d.logger.Debug("end tone")
	d.sound(0)
}
