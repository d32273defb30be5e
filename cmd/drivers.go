package cmd

import (
	"github.com/spf13/cobra"

	"github.com/winny-/beep/internal/logging"
)

// driversCmd probes every backend and reports which ones find a usable
// device, without sounding anything.
var driversCmd = &cobra.Command{
	Use:   "drivers",
	Short: "List beep drivers and their detection status",
	Run: func(cmd *cobra.Command, args []string) {
		setup(cmd)
		logger := logging.GetLogger("main")

		for _, d := range newRegistry(logger).Drivers() {
			status := "not available"
			if d.Detect(opts.Device) {
				status = "detected"
				d.Fini()
			}
			cmd.Printf("%-12s %s\n", d.Name(), status)
		}
	},
}

func init() {
	rootCmd.AddCommand(driversCmd)
}
