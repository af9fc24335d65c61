package cmd

import (
	"encoding/hex"
	"fmt"
	"time"

	"github.com/allbin/stm32boot"
	"github.com/spf13/cobra"
)

// readCmd represents the read command
var readCmd = &cobra.Command{
	Use:   "read <port>",
	Short: "Read bytes from the target serial port",
	Long: `Read up to --count bytes, waiting at most --timeout. A short read on
timeout is reported but is not an error.

Examples:
  stm32boot read /dev/ttyAMA0 --count 16
  stm32boot read /dev/ttyAMA0 -c 1 --timeout 200ms`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		count, _ := cmd.Flags().GetInt("count")
		if count < 1 {
			return fmt.Errorf("%w: --count must be positive", stm32boot.ErrInvalidConfig)
		}

		ctrl, err := connect(args[0])
		if err != nil {
			return err
		}
		defer ctrl.Close()

		start := time.Now()
		data, err := ctrl.Read(count)
		printDump(data)
		if err != nil {
			return err
		}

		log.WithField("elapsed", time.Since(start).Round(time.Millisecond)).Debug("read finished")
		if len(data) < count {
			fmt.Printf("%s %d of %d bytes before timeout (%s)\n",
				errorStyle.Render("✗"), len(data), count, formatTimeout(ctrl.Timeout()))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(readCmd)

	readCmd.Flags().IntP("count", "c", 1, "Number of bytes to read")
}

func printDump(data []byte) {
	if len(data) == 0 {
		return
	}
	fmt.Print(hex.Dump(data))
}
