//go:build linux

package evdev

import (
	"bytes"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/winny-/beep/internal/input"
)

// fatalRecorder captures fatal-hook invocations instead of exiting.
type fatalRecorder struct {
	op  string
	err error
	n   int
}

func (r *fatalRecorder) fatal(op string, err error) {
	r.op = op
	r.err = err
	r.n++
}

func newTestDriver(api sndAPI, out *bytes.Buffer) (*Driver, *fatalRecorder) {
	rec := &fatalRecorder{}
	d := New()
	d.fatal = rec.fatal
	d.api = api
	d.out = out
	return d, rec
}

func decodeEvents(t *testing.T, b []byte) []input.Event {
	t.Helper()
	if len(b)%input.EventSize != 0 {
		t.Fatalf("output length %d is not a multiple of record size %d", len(b), input.EventSize)
	}
	events := make([]input.Event, len(b)/input.EventSize)
	if err := binary.Read(bytes.NewReader(b), binary.NativeEndian, events); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	return events
}

func TestDetectMissingDevice(t *testing.T) {
	d := New()
	if d.Detect(filepath.Join(t.TempDir(), "no-such-device")) {
		t.Fatal("Detect succeeded on a missing device")
	}
	if d.f != nil {
		t.Error("handle populated after failed detection")
	}
}

func TestDetectNonCharDevice(t *testing.T) {
	path := filepath.Join(t.TempDir(), "regular")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	d := New()
	if d.Detect(path) {
		t.Fatal("Detect succeeded on a regular file")
	}
	if d.f != nil {
		t.Error("handle populated after failed detection")
	}
}

func TestDetectNonSoundCharDevice(t *testing.T) {
	// /dev/null is a character device but has no EV_SND facility,
	// exercising the post-open capability check.
	d := New()
	if d.Detect(os.DevNull) {
		t.Fatal("Detect succeeded on /dev/null")
	}
	if d.f != nil {
		t.Error("handle populated after failed detection")
	}
}

func TestDetectClassification(t *testing.T) {
	// Simulated devices backed by /dev/null, with the capability
	// queries answering for hardware we do not have in CI.
	tests := []struct {
		name    string
		bits    uint64
		wantOK  bool
		wantAPI sndAPI
	}{
		{"tone only", 1 << input.SndTone, true, sndAPITone},
		{"bell only", 1 << input.SndBell, true, sndAPIBell},
		{"both prefers tone", 1<<input.SndTone | 1<<input.SndBell, true, sndAPITone},
		{"neither", 0, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := New()
			d.hasSnd = func(_ uintptr) bool { return true }
			d.sndCaps = func(_ uintptr) (uint64, error) { return tt.bits, nil }

			ok := d.Detect(os.DevNull)
			if ok != tt.wantOK {
				t.Fatalf("Detect = %v, want %v", ok, tt.wantOK)
			}
			if ok && d.api != tt.wantAPI {
				t.Errorf("api = %v, want %v", d.api, tt.wantAPI)
			}
			if !ok && d.f != nil {
				t.Error("handle populated after failed detection")
			}
			d.Fini()
		})
	}
}

func TestDetectCapabilityQueryFails(t *testing.T) {
	d := New()
	d.hasSnd = func(_ uintptr) bool { return true }
	d.sndCaps = func(_ uintptr) (uint64, error) { return 0, errors.New("EVIOCGBIT: inappropriate ioctl") }

	if d.Detect(os.DevNull) {
		t.Fatal("Detect succeeded despite failing capability query")
	}
	if d.f != nil {
		t.Error("handle populated after failed detection")
	}
}

func TestDetectAfterFiniSucceedsAgain(t *testing.T) {
	d := New()
	d.hasSnd = func(_ uintptr) bool { return true }
	d.sndCaps = func(_ uintptr) (uint64, error) { return 1 << input.SndTone, nil }

	for i := 0; i < 3; i++ {
		if !d.Detect(os.DevNull) {
			t.Fatalf("cycle %d: Detect failed", i)
		}
		d.Fini()
		if d.f != nil {
			t.Fatalf("cycle %d: handle survived Fini", i)
		}
	}
}

func TestToneModeRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	d, rec := newTestDriver(sndAPITone, &buf)

	d.BeginTone(440)
	d.EndTone()

	if rec.n != 0 {
		t.Fatalf("fatal hook called: %s: %v", rec.op, rec.err)
	}

	events := decodeEvents(t, buf.Bytes())
	want := []input.Event{
		{Type: input.EvSnd, Code: input.SndTone, Value: 440},
		{Type: input.EvSnd, Code: input.SndTone, Value: 0},
	}
	if len(events) != len(want) {
		t.Fatalf("emitted %d events, want %d", len(events), len(want))
	}
	for i := range want {
		if events[i] != want[i] {
			t.Errorf("event %d = %+v, want %+v", i, events[i], want[i])
		}
	}
}

func TestToneModeZeroFrequency(t *testing.T) {
	// 0 Hz is musically meaningless but valid on the wire
	var buf bytes.Buffer
	d, _ := newTestDriver(sndAPITone, &buf)

	d.BeginTone(0)

	events := decodeEvents(t, buf.Bytes())
	if events[0].Value != 0 {
		t.Errorf("value = %d, want 0", events[0].Value)
	}
}

func TestBellModeIgnoresFrequency(t *testing.T) {
	var first []byte
	for i, freq := range []uint16{440, 4000} {
		var buf bytes.Buffer
		d, _ := newTestDriver(sndAPIBell, &buf)

		d.BeginTone(freq)
		d.EndTone()

		events := decodeEvents(t, buf.Bytes())
		if events[0].Code != input.SndBell || events[0].Value != 1 {
			t.Errorf("freq %d: begin event = %+v, want SND_BELL/1", freq, events[0])
		}
		if events[1].Code != input.SndBell || events[1].Value != 0 {
			t.Errorf("freq %d: end event = %+v, want SND_BELL/0", freq, events[1])
		}

		if i == 0 {
			first = buf.Bytes()
		} else if !bytes.Equal(first, buf.Bytes()) {
			t.Error("bell output differs between frequencies")
		}
	}
}

// shortWriter accepts fewer bytes than offered, without erroring.
type shortWriter struct{}

func (shortWriter) Write(p []byte) (int, error) { return len(p) - 1, nil }

// failWriter rejects everything.
type failWriter struct{}

func (failWriter) Write(p []byte) (int, error) { return 0, errors.New("device gone") }

func TestShortWriteIsFatal(t *testing.T) {
	tests := []struct {
		name string
		run  func(*Driver)
	}{
		{"begin tone", func(d *Driver) { d.BeginTone(440) }},
		{"end tone", func(d *Driver) { d.EndTone() }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &fatalRecorder{}
			d := New()
			d.fatal = rec.fatal
			d.api = sndAPITone
			d.out = shortWriter{}

			tt.run(d)

			if rec.n == 0 {
				t.Fatal("short write did not reach the fatal hook")
			}
			if rec.op != "write EV_SND" {
				t.Errorf("fatal op = %q, want write EV_SND", rec.op)
			}
		})
	}
}

func TestFailedWriteIsFatal(t *testing.T) {
	rec := &fatalRecorder{}
	d := New()
	d.fatal = rec.fatal
	d.api = sndAPIBell
	d.out = failWriter{}

	d.BeginTone(440)

	if rec.n == 0 {
		t.Fatal("failed write did not reach the fatal hook")
	}
}

func TestFiniClearsHandle(t *testing.T) {
	f, err := os.OpenFile(os.DevNull, os.O_WRONLY, 0)
	if err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	d := New()
	d.f = f
	d.out = f
	d.active = true

	d.Fini()
	if d.f != nil {
		t.Error("handle not cleared by Fini")
	}
	if d.active {
		t.Error("active flag survived Fini")
	}

	// Fini when nothing is held must be a no-op
	d.Fini()
}
