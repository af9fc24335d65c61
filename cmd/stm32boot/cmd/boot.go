package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/allbin/stm32boot"
	"github.com/allbin/stm32boot/internal/tui/colors"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var (
	infoStyle    = lipgloss.NewStyle().Foreground(colors.Mauve).Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(colors.Green).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(colors.Red).Bold(true)
)

type sequence func(ctx context.Context, l stm32boot.Lines, t stm32boot.Timing) error

// bootCmd represents the boot command
var bootCmd = &cobra.Command{
	Use:   "boot <port>",
	Short: "Reset the target into the system bootloader",
	Long: `Select the system bootloader with BOOT0 and pulse RESET while the serial
port is held open. The target is left waiting for the bootloader autobaud
byte (0x7F) on the serial port.

Examples:
  stm32boot boot /dev/ttyAMA0
  stm32boot boot /dev/ttyUSB0 --reset-active-high --hold 200ms`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSequence(cmd, args[0], "Entering bootloader", stm32boot.EnterBootloader)
	},
}

func init() {
	rootCmd.AddCommand(bootCmd)
	addTimingFlags(bootCmd)
}

// runSequence opens portPath, runs seq on the controller lines and reports
// the resulting line levels
func runSequence(cmd *cobra.Command, portPath, action string, seq sequence) error {
	timing, err := timingFromFlags(cmd)
	if err != nil {
		return err
	}

	ctrl, err := connect(portPath)
	if err != nil {
		fmt.Printf("%s %v\n", errorStyle.Render("✗"), err)
		return err
	}
	defer ctrl.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	fmt.Printf("%s %s on %s...\n", infoStyle.Render("⚡"), action, portPath)
	if err := seq(ctx, ctrl, timing); err != nil {
		fmt.Printf("%s %v\n", errorStyle.Render("✗"), err)
		return err
	}

	reset, boot0 := ctrl.LineStates()
	fmt.Printf("%s Done: %s\n", successStyle.Render("✓"), formatLines(reset, boot0))
	return nil
}

func formatLines(states ...stm32boot.LineState) string {
	parts := make([]string, len(states))
	for i, s := range states {
		parts[i] = formatLineState(s)
	}
	return strings.Join(parts, ", ")
}

func formatLineState(s stm32boot.LineState) string {
	if !s.Driven {
		return fmt.Sprintf("%s (pin %d) untouched", s.Name, s.Pin)
	}
	state := "released"
	if s.Asserted {
		state = "asserted"
	}
	return fmt.Sprintf("%s (pin %d) %s %s", s.Name, s.Pin, state, s.Level)
}
