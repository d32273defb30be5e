// Package pulseaudio synthesizes beep tones through a PulseAudio
// playback stream. It is the last-resort backend for machines with no
// speaker hardware at all: laptops and VMs where neither the pcspkr
// event device nor the console ioctl reaches anything audible.
package pulseaudio

import (
	"math"

	"github.com/jfreymuth/pulse"

	"github.com/winny-/beep/internal/driver"
	"github.com/winny-/beep/internal/logging"
)

const (
	sampleRate = 44100
	amplitude  = 0.3
)

// Driver implements driver.Driver over a PulseAudio connection.
type Driver struct {
	logger logging.Logger
	fatal  driver.FatalFunc

	client *pulse.Client
	sink   *pulse.Sink
	stream *pulse.PlaybackStream
	stop   chan struct{}
}

// New creates an undetected PulseAudio driver.
func New() *Driver {
	return &Driver{
		logger: logging.GetLogger("pulseaudio"),
		fatal:  driver.ExitFatal,
	}
}

// Name implements driver.Driver.
func (d *Driver) Name() string { return "pulseaudio" }

// Detect implements driver.Driver. device, when non-empty, names the
// sink to play on instead of the server default.
func (d *Driver) Detect(device string) bool {
	d.logger.Debug("detecting", "sink", device)

	c, err := pulse.NewClient(pulse.ClientApplicationName("beep"))
	if err != nil {
		d.logger.Debug("cannot connect to PulseAudio", "error", err)
		return false
	}

	var sink *pulse.Sink
	if device != "" {
		sink, err = c.SinkByID(device)
		if err != nil {
			d.logger.Debug("sink not found", "sink", device, "error", err)
			c.Close()
			return false
		}
	}

	d.client = c
	d.sink = sink
	return true
}

// Init implements driver.Driver.
func (d *Driver) Init() {
	d.logger.Debug("init")
}

// Fini implements driver.Driver.
func (d *Driver) Fini() {
	d.logger.Debug("fini")
	d.closeStream()
	if d.client != nil {
		d.client.Close()
		d.client = nil
		d.sink = nil
	}
}

// sineReader produces a continuous sine wave at freq Hz until stop is
// closed, then reports end of data so the stream drains cleanly.
func sineReader(freq uint16, stop <-chan struct{}) pulse.Int16Reader {
	step := 2 * math.Pi * float64(freq) / sampleRate
	var phase float64
	return func(buf []int16) (int, error) {
		select {
		case <-stop:
			return 0, pulse.EndOfData
		default:
		}
		for i := range buf {
			buf[i] = int16(math.Sin(phase) * amplitude * math.MaxInt16)
			phase += step
		}
		return len(buf), nil
	}
}

func (d *Driver) closeStream() {
	if d.stream == nil {
		return
	}
	close(d.stop)
	d.stream.Stop()
	d.stream.Close()
	d.stream = nil
}

// BeginTone implements driver.Driver. A second BeginTone replaces the
// current tone. Failing to open a playback stream after a successful
// Detect has no recovery path, matching the hardware backends.
func (d *Driver) BeginTone(freq uint16) {
	d.logger.Debug("begin tone", "freq", freq)
	d.closeStream()

	opts := []pulse.PlaybackOption{
		pulse.PlaybackMono,
		pulse.PlaybackSampleRate(sampleRate),
		pulse.PlaybackLatency(0.05),
	}
	if d.sink != nil {
		opts = append(opts, pulse.PlaybackSink(d.sink))
	}

	stop := make(chan struct{})
	stream, err := d.client.NewPlayback(sineReader(freq, stop), opts...)
	if err != nil {
		d.fatal("pulseaudio playback", err)
		return
	}
	d.stream = stream
	d.stop = stop
	stream.Start()
}

// EndTone implements driver.Driver.
func (d *Driver) EndTone() {
	d.logger.Debug("end tone")
	d.closeStream()
}
