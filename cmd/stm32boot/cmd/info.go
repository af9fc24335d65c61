package cmd

import (
	"fmt"

	"github.com/allbin/stm32boot"
	"github.com/spf13/cobra"
)

// infoCmd represents the info command
var infoCmd = &cobra.Command{
	Use:   "info [port]",
	Short: "Display port details and the effective line configuration",
	Long: `Display information about a serial port, including USB metadata when the
port is a USB adapter, followed by the RESET/BOOT0 wiring that the other
commands would use.

Examples:
  stm32boot info /dev/ttyACM0
  stm32boot info --numbering bcm --reset-pin 18 --boot0-pin 17`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 1 {
			info, err := stm32boot.GetPortInfo(args[0])
			if err != nil {
				return fmt.Errorf("getting port info: %w", err)
			}
			printPortInfo(info)
			fmt.Println()
		}

		opts, err := controllerOptions()
		if err != nil {
			return err
		}
		cfg := stm32boot.DefaultConfig()
		for _, opt := range opts {
			if err := opt(&cfg); err != nil {
				return err
			}
		}
		printLineConfig(cfg)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func printPortInfo(info *stm32boot.PortInfo) {
	fmt.Printf("Port Information: %s\n\n", info.Path)
	fmt.Printf("  Name:        %s\n", info.Name)
	fmt.Printf("  Description: %s\n", info.Description)

	if !info.IsUSB {
		return
	}
	fmt.Println("\nUSB Device Information:")
	if info.VendorID != "" {
		fmt.Printf("  Vendor ID:    %s\n", info.VendorID)
	}
	if info.ProductID != "" {
		fmt.Printf("  Product ID:   %s\n", info.ProductID)
	}
	if info.SerialNumber != "" {
		fmt.Printf("  Serial:       %s\n", info.SerialNumber)
	}
	if info.Product != "" {
		fmt.Printf("  Product:      %s\n", info.Product)
	}
}

func printLineConfig(cfg stm32boot.Config) {
	resetActive, boot0Active := stm32boot.Low, stm32boot.High
	if cfg.ResetActiveHigh {
		resetActive = stm32boot.High
	}
	if cfg.Boot0ActiveLow {
		boot0Active = stm32boot.Low
	}

	fmt.Println("Line Configuration:")
	fmt.Printf("  Numbering:   %s\n", cfg.Numbering)
	fmt.Printf("  RESET:       pin %d, active %s\n", cfg.ResetPin, resetActive)
	fmt.Printf("  BOOT0:       pin %d, active %s\n", cfg.Boot0Pin, boot0Active)
	fmt.Printf("  Serial:      %d baud 8%s1, timeout %s\n", cfg.BaudRate, cfg.Parity, formatTimeout(cfg.Timeout))
}
