//go:build linux

// Package input speaks the kernel input-event (evdev) wire protocol for
// sound events: the event record layout, the EV_SND constants, and the
// ioctl requests used to discover what a device can play.
package input

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Event type and sound codes from <linux/input-event-codes.h>.
const (
	EvSnd uint16 = 0x12 // EV_SND: sound output events

	SndBell uint16 = 0x01 // SND_BELL: fixed-pitch on/off beep
	SndTone uint16 = 0x02 // SND_TONE: tone with caller-chosen frequency
	SndMax  uint16 = 0x07
)

// ioctl request encoding from <asm-generic/ioctl.h>.
const (
	iocRead  = 2
	iocInput = 'E'

	iocNrShift   = 0
	iocTypeShift = 8
	iocSizeShift = 16
	iocDirShift  = 30
)

func ioc(dir, typ, nr, size uint) uint {
	return dir<<iocDirShift | size<<iocSizeShift | typ<<iocTypeShift | nr<<iocNrShift
}

// EVIOCGSND returns the request for reading the global sound state bitmap.
// With size 0 it serves as a cheap "does this device do EV_SND at all"
// probe: devices without the facility fail the ioctl outright.
func EVIOCGSND(size int) uint {
	return ioc(iocRead, iocInput, 0x1a, uint(size))
}

// EVIOCGBIT returns the request for reading the capability bitmap of one
// event type (ev == 0 means the bitmap of supported event types).
func EVIOCGBIT(ev uint16, size int) uint {
	return ioc(iocRead, iocInput, 0x20+uint(ev), uint(size))
}

// Ioctl issues a raw ioctl against fd. arg may be 0 for requests that
// carry no payload.
func Ioctl(fd uintptr, req uint, arg unsafe.Pointer) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, fd, uintptr(req), uintptr(arg))
	if errno != 0 {
		return errno
	}
	return nil
}

// IoctlInt issues an ioctl whose argument is a plain value rather than
// a pointer (e.g. KIOCSOUND).
func IoctlInt(fd uintptr, req uint, arg int) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, fd, uintptr(req), uintptr(arg))
	if errno != 0 {
		return errno
	}
	return nil
}

// SndCapabilities reads the EV_SND capability bitmap of an open device.
// The error distinguishes "device does not implement the query" from a
// usable (possibly empty) bitmap.
func SndCapabilities(fd uintptr) (uint64, error) {
	var bits uint64
	req := EVIOCGBIT(EvSnd, int(unsafe.Sizeof(bits)))
	if err := Ioctl(fd, req, unsafe.Pointer(&bits)); err != nil {
		return 0, fmt.Errorf("EVIOCGBIT(EV_SND): %w", err)
	}
	return bits, nil
}

// HasSndFacility reports whether the device implements the EV_SND API.
func HasSndFacility(fd uintptr) bool {
	return Ioctl(fd, EVIOCGSND(0), nil) == nil
}

// Event mirrors struct input_event. Embedding unix.Timeval keeps the
// timestamp fields the same width the running kernel expects.
type Event struct {
	Time  unix.Timeval
	Type  uint16
	Code  uint16
	Value int32
}

// EventSize is the wire size of one Event record.
var EventSize = binary.Size(Event{})

// MarshalBinary encodes the event as one packed native-endian record,
// exactly as write(2) on an evdev node expects it.
func (e *Event) MarshalBinary() ([]byte, error) {
	buf := bytes.NewBuffer(make([]byte, 0, EventSize))
	if err := binary.Write(buf, binary.NativeEndian, e); err != nil {
		return nil, fmt.Errorf("encode input event: %w", err)
	}
	return buf.Bytes(), nil
}
