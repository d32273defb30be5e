// Package beep turns note requests into driver lifecycle calls: one
// begin/end pair per repeat, spaced by the configured delays.
package beep

import (
	"time"

	"github.com/winny-/beep/internal/driver"
	"github.com/winny-/beep/internal/logging"
)

// Defaults matching the classic beep(1) behavior.
const (
	DefaultFreq    = 440
	DefaultLength  = 200 * time.Millisecond
	DefaultRepeats = 1
	DefaultDelay   = 100 * time.Millisecond
)

// Note is one tone request.
type Note struct {
	Freq    uint16
	Length  time.Duration
	Repeats int
	Delay   time.Duration

	// DelayAfterLast also waits Delay after the final repeat, for
	// spacing against whatever the caller does next.
	DelayAfterLast bool
}

// DefaultNote returns a Note with beep(1) defaults.
func DefaultNote() Note {
	return Note{
		Freq:    DefaultFreq,
		Length:  DefaultLength,
		Repeats: DefaultRepeats,
		Delay:   DefaultDelay,
	}
}

// Player plays notes on a detected, initialized driver. Playback is
// synchronous on the calling goroutine; tones reach the device in call
// order.
type Player struct {
	drv    driver.Driver
	logger logging.Logger
	sleep  func(time.Duration)
}

// NewPlayer creates a player for drv.
func NewPlayer(drv driver.Driver) *Player {
	return &Player{
		drv:    drv,
		logger: logging.GetLogger("player"),
		sleep:  time.Sleep,
	}
}

// Play sounds each note in order.
func (p *Player) Play(notes ...Note) {
	for _, n := range notes {
		p.playNote(n)
	}
}

func (p *Player) playNote(n Note) {
	p.logger.Debug("playing note",
		"freq", n.Freq,
		"length", n.Length,
		"repeats", n.Repeats,
		"delay", n.Delay)

	for i := 0; i < n.Repeats; i++ {
		p.drv.BeginTone(n.Freq)
		p.sleep(n.Length)
		p.drv.EndTone()

		if n.Delay > 0 && (i < n.Repeats-1 || n.DelayAfterLast) {
			p.sleep(n.Delay)
		}
	}
}
