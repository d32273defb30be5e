// Package cmd wires the CLI: flag parsing, configuration, logging, and
// the driver registry the tones are played through.
package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/winny-/beep/internal/beep"
	"github.com/winny-/beep/internal/config"
	"github.com/winny-/beep/internal/driver"
	"github.com/winny-/beep/internal/driver/console"
	"github.com/winny-/beep/internal/driver/evdev"
	"github.com/winny-/beep/internal/driver/pulseaudio"
	"github.com/winny-/beep/internal/logging"
	"github.com/winny-/beep/internal/version"
)

// maxFreq bounds the requested frequency to what speaker hardware can
// plausibly render, same limit as beep(1).
const maxFreq = 20000

// Options holds all CLI settings, loadable from flags, BEEP_* env vars,
// and the TOML config file.
type Options struct {
	Config string `help:"Path to configuration file"`

	Device string `toml:"beep.device" env:"DEVICE"`
	Driver string `toml:"beep.driver" env:"DRIVER"`

	Freq           int  `toml:"beep.freq" env:"FREQ"`
	Length         int  `toml:"beep.length_ms" env:"LENGTH_MS"`
	Repeats        int  `toml:"beep.repeats" env:"REPEATS"`
	Delay          int  `toml:"beep.delay_ms" env:"DELAY_MS"`
	DelayAfterLast bool `toml:"beep.delay_after_last" env:"DELAY_AFTER_LAST"`

	LoggingLevel  string `toml:"logging.level" env:"LOGGING_LEVEL"`
	LoggingFormat string `toml:"logging.format" env:"LOGGING_FORMAT"`
}

var opts Options

var rootCmd = &cobra.Command{
	Use:   "beep",
	Short: "Sound the PC speaker",
	Long: `Sound the PC speaker (or the nearest audible substitute) at a chosen
frequency and duration. Backends are probed in order: the pcspkr
input-event device, the console KIOCSOUND ioctl, then a PulseAudio
sine tone.`,
	Version:      version.String(),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		setup(cmd)
		logger := logging.GetLogger("main")

		if opts.Freq <= 0 || opts.Freq >= maxFreq {
			return fmt.Errorf("frequency must be between 1 and %d Hz", maxFreq-1)
		}
		if opts.Repeats < 1 {
			return fmt.Errorf("repeats must be at least 1")
		}

		drv, ok := newRegistry(logger).Detect(opts.Device)
		if !ok {
			return fmt.Errorf("could not open any beep device")
		}
		drv.Init()
		defer drv.Fini()

		logger.Debug("playing", "driver", drv.Name())
		beep.NewPlayer(drv).Play(beep.Note{
			Freq:           uint16(opts.Freq),
			Length:         time.Duration(opts.Length) * time.Millisecond,
			Repeats:        opts.Repeats,
			Delay:          time.Duration(opts.Delay) * time.Millisecond,
			DelayAfterLast: opts.DelayAfterLast,
		})
		return nil
	},
}

// setup loads config and brings up logging. Flag errors were already
// handled by cobra by the time RunE runs.
func setup(cmd *cobra.Command) {
	if err := config.LoadConfig(&opts, cmd); err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
	}

	loggingConfig := config.LoadLoggingConfig(opts.Config)
	if opts.LoggingLevel != "" {
		loggingConfig.Level = opts.LoggingLevel
	}
	if opts.LoggingFormat != "" {
		loggingConfig.Format = opts.LoggingFormat
	}
	logging.Initialize(loggingConfig)
}

// newRegistry assembles the backend registry in preference order. With
// --driver set, only the named backend is registered.
func newRegistry(logger logging.Logger) *driver.Registry {
	reg := driver.NewRegistry(logger)
	for _, d := range []driver.Driver{evdev.New(), console.New(), pulseaudio.New()} {
		if opts.Driver == "" || opts.Driver == d.Name() {
			reg.Register(d)
		}
	}
	return reg
}

func init() {
	f := rootCmd.PersistentFlags()
	f.StringVarP(&opts.Config, "config", "c", "", "Path to configuration file")
	f.StringVarP(&opts.Device, "device", "e", "", "Device to open instead of the driver default")
	f.StringVar(&opts.Driver, "driver", "", "Restrict detection to one driver (evdev, console, pulseaudio)")
	f.StringVar(&opts.LoggingLevel, "logging-level", "", "Global logging level (debug, info, warn, error)")
	f.StringVar(&opts.LoggingFormat, "logging-format", "", "Logging format (text, json)")

	pf := rootCmd.Flags()
	pf.IntVarP(&opts.Freq, "freq", "f", beep.DefaultFreq, "Tone frequency in Hz")
	pf.IntVarP(&opts.Length, "length", "l", int(beep.DefaultLength/time.Millisecond), "Tone length in milliseconds")
	pf.IntVarP(&opts.Repeats, "repeats", "r", beep.DefaultRepeats, "Number of repetitions")
	pf.IntVarP(&opts.Delay, "delay", "d", int(beep.DefaultDelay/time.Millisecond), "Delay between repetitions in milliseconds")
	pf.BoolVarP(&opts.DelayAfterLast, "delay-after-last", "D", false, "Also delay after the last repetition")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
