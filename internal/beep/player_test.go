package beep

import (
	"testing"
	"time"
)

// scriptDriver records the lifecycle calls it receives.
type scriptDriver struct {
	calls []string
	freqs []uint16
}

func (s *scriptDriver) Name() string { return "script" }
func (s *scriptDriver) Detect(_ string) bool {
	s.calls = append(s.calls, "detect")
	return true
}
func (s *scriptDriver) Init() { s.calls = append(s.calls, "init") }
func (s *scriptDriver) Fini() { s.calls = append(s.calls, "fini") }
func (s *scriptDriver) BeginTone(freq uint16) {
	s.calls = append(s.calls, "begin")
	s.freqs = append(s.freqs, freq)
}
func (s *scriptDriver) EndTone() { s.calls = append(s.calls, "end") }

func newTestPlayer(drv *scriptDriver) (*Player, *[]time.Duration) {
	sleeps := &[]time.Duration{}
	p := NewPlayer(drv)
	p.sleep = func(d time.Duration) { *sleeps = append(*sleeps, d) }
	return p, sleeps
}

func TestPlaySingleNote(t *testing.T) {
	drv := &scriptDriver{}
	p, sleeps := newTestPlayer(drv)

	p.Play(Note{Freq: 440, Length: 200 * time.Millisecond, Repeats: 1, Delay: 100 * time.Millisecond})

	wantCalls := []string{"begin", "end"}
	if len(drv.calls) != len(wantCalls) {
		t.Fatalf("calls = %v, want %v", drv.calls, wantCalls)
	}
	for i, c := range wantCalls {
		if drv.calls[i] != c {
			t.Errorf("call %d = %q, want %q", i, drv.calls[i], c)
		}
	}
	if drv.freqs[0] != 440 {
		t.Errorf("freq = %d, want 440", drv.freqs[0])
	}

	// No trailing delay without DelayAfterLast
	want := []time.Duration{200 * time.Millisecond}
	if len(*sleeps) != len(want) || (*sleeps)[0] != want[0] {
		t.Errorf("sleeps = %v, want %v", *sleeps, want)
	}
}

func TestPlayRepeats(t *testing.T) {
	tests := []struct {
		name       string
		note       Note
		wantBegins int
		wantSleeps []time.Duration
	}{
		{
			name:       "three repeats with delay between",
			note:       Note{Freq: 880, Length: 50 * time.Millisecond, Repeats: 3, Delay: 20 * time.Millisecond},
			wantBegins: 3,
			wantSleeps: []time.Duration{
				50 * time.Millisecond, 20 * time.Millisecond,
				50 * time.Millisecond, 20 * time.Millisecond,
				50 * time.Millisecond,
			},
		},
		{
			name: "delay after last",
			note: Note{Freq: 880, Length: 50 * time.Millisecond, Repeats: 2,
				Delay: 20 * time.Millisecond, DelayAfterLast: true},
			wantBegins: 2,
			wantSleeps: []time.Duration{
				50 * time.Millisecond, 20 * time.Millisecond,
				50 * time.Millisecond, 20 * time.Millisecond,
			},
		},
		{
			name:       "zero delay",
			note:       Note{Freq: 880, Length: 50 * time.Millisecond, Repeats: 2},
			wantBegins: 2,
			wantSleeps: []time.Duration{50 * time.Millisecond, 50 * time.Millisecond},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			drv := &scriptDriver{}
			p, sleeps := newTestPlayer(drv)

			p.Play(tt.note)

			begins := 0
			for i, c := range drv.calls {
				if c == "begin" {
					begins++
					if i+1 >= len(drv.calls) || drv.calls[i+1] != "end" {
						t.Errorf("begin at %d not followed by end", i)
					}
				}
			}
			if begins != tt.wantBegins {
				t.Errorf("begins = %d, want %d", begins, tt.wantBegins)
			}

			if len(*sleeps) != len(tt.wantSleeps) {
				t.Fatalf("sleeps = %v, want %v", *sleeps, tt.wantSleeps)
			}
			for i, d := range tt.wantSleeps {
				if (*sleeps)[i] != d {
					t.Errorf("sleep %d = %v, want %v", i, (*sleeps)[i], d)
				}
			}
		})
	}
}

func TestPlayMultipleNotes(t *testing.T) {
	drv := &scriptDriver{}
	p, _ := newTestPlayer(drv)

	p.Play(
		Note{Freq: 440, Length: 10 * time.Millisecond, Repeats: 1},
		Note{Freq: 880, Length: 10 * time.Millisecond, Repeats: 1},
	)

	if len(drv.freqs) != 2 || drv.freqs[0] != 440 || drv.freqs[1] != 880 {
		t.Errorf("freqs = %v, want [440 880]", drv.freqs)
	}
}

func TestDefaultNote(t *testing.T) {
	n := DefaultNote()
	if n.Freq != 440 || n.Length != 200*time.Millisecond || n.Repeats != 1 || n.Delay != 100*time.Millisecond {
		t.Errorf("unexpected defaults: %+v", n)
	}
	if n.DelayAfterLast {
		t.Error("DelayAfterLast defaults on")
	}
}
