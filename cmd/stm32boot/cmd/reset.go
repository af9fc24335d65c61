package cmd

import (
	"github.com/allbin/stm32boot"
	"github.com/spf13/cobra"
)

// resetCmd represents the reset command
var resetCmd = &cobra.Command{
	Use:   "reset <port>",
	Short: "Pulse the RESET line",
	Long: `Assert RESET for --hold, release it and wait --settle. BOOT0 is not
touched, so the target restarts into whatever BOOT0 currently selects.

Examples:
  stm32boot reset /dev/ttyAMA0
  stm32boot reset /dev/ttyAMA0 --hold 10ms --settle 0`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSequence(cmd, args[0], "Pulsing reset", stm32boot.PulseReset)
	},
}

func init() {
	rootCmd.AddCommand(resetCmd)
	addTimingFlags(resetCmd)
}
