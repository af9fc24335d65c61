package cmd

import (
	"fmt"
	"strings"

	"github.com/allbin/stm32boot"
	"github.com/spf13/cobra"
)

// lineCmd represents the line command
var lineCmd = &cobra.Command{
	Use:   "line <reset|boot0> <state>",
	Short: "Assert or release the RESET or BOOT0 line",
	Long: `Drive one control line and leave it there after exit. The state is
logical: "on" asserts the line and the configured polarity decides the level.

Examples:
  stm32boot line reset on       # hold the target in reset
  stm32boot line reset off
  stm32boot line boot0 on       # select the bootloader for the next reset
  stm32boot line boot0 off --boot0-active-low

Valid states: on, off, high, low, true, false, 1, 0`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		state, err := parseSignalState(args[1])
		if err != nil {
			return err
		}

		ctrl, err := newController("", stm32boot.WithKeepLines(true))
		if err != nil {
			return err
		}
		defer ctrl.Close()

		var lineState stm32boot.LineState
		switch strings.ToLower(args[0]) {
		case "reset", "nrst":
			if err := ctrl.EnableReset(state); err != nil {
				return err
			}
			lineState, _ = ctrl.LineStates()
		case "boot0", "boot":
			if err := ctrl.EnableBoot0(state); err != nil {
				return err
			}
			_, lineState = ctrl.LineStates()
		default:
			return fmt.Errorf("unknown line %q (valid: reset, boot0)", args[0])
		}

		fmt.Println(formatLineState(lineState))
		return nil
	},
}

func parseSignalState(state string) (bool, error) {
	switch strings.ToLower(state) {
	case "high", "on", "true", "1":
		return true, nil
	case "low", "off", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid state: %s (valid: high, low, on, off, true, false, 1, 0)", state)
	}
}

func init() {
	rootCmd.AddCommand(lineCmd)
}
