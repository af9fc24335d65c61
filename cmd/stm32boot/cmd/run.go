package cmd

import (
	"github.com/allbin/stm32boot"
	"github.com/spf13/cobra"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run <port>",
	Short: "Reset the target into the application in flash",
	Long: `Deselect the system bootloader with BOOT0 and pulse RESET, so the target
starts the firmware in main flash.

Examples:
  stm32boot run /dev/ttyAMA0
  stm32boot run /dev/ttyAMA0 --settle 0`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSequence(cmd, args[0], "Starting firmware", stm32boot.ResetIntoFirmware)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	addTimingFlags(runCmd)
}
