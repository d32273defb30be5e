//go:build linux

// Package device opens candidate beep devices with the validation every
// backend needs before trusting a path: the file must exist, must be a
// character device, and must not land on one of the standard streams.
package device

import (
	"errors"
	"fmt"
	"os"
)

// ErrNotCharDevice marks a path that exists but is not a character
// special file. Ordinary unavailability, to be handled by backend
// fallback like a missing path.
var ErrNotCharDevice = errors.New("not a character device")

// ErrUnsafeDescriptor marks an open that returned one of the standard
// descriptors (0, 1, 2). That only happens when the process was started
// with its standard streams closed, and writing tone events through what
// other code believes is stdout is dangerous enough that callers treat
// this as a fatal misconfiguration rather than a detection failure.
var ErrUnsafeDescriptor = errors.New("device opened on a standard file descriptor")

// IsFatal reports whether err from Open indicates a misconfiguration
// severe enough to abort the process rather than fall back to another
// backend.
func IsFatal(err error) bool {
	return errors.Is(err, ErrUnsafeDescriptor)
}

// Open opens path for writing and verifies it is a safe character
// device. On any error the file is not left open.
func Open(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return nil, err
	}

	if f.Fd() <= 2 {
		f.Close()
		return nil, fmt.Errorf("open %s: %w", path, ErrUnsafeDescriptor)
	}

	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if fi.Mode()&os.ModeCharDevice == 0 {
		f.Close()
		return nil, fmt.Errorf("%s: %w", path, ErrNotCharDevice)
	}

	return f, nil
}
