package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

// sendCmd represents the send command
var sendCmd = &cobra.Command{
	Use:   "send [data] <port>",
	Short: "Send data to the target serial port",
	Long: `Send data to the target over the serial port using the configured framing
(8E1 by default, as the STM32 bootloader expects).

Data can be provided as:
- Command line argument: send "hello" /dev/ttyAMA0
- From stdin (pipe): echo "hello" | stm32boot send /dev/ttyAMA0
- Interactive mode: stm32boot send /dev/ttyAMA0 (prompts for input)

With --response the command waits up to --timeout for that many reply
bytes and prints them as a hex dump.

Example usage:
  stm32boot send --hex 7F /dev/ttyAMA0 --response 1     # autobaud, expect 0x79
  stm32boot send --hex "00 FF" /dev/ttyAMA0 -r 15       # GET command
  stm32boot send "AT" /dev/ttyUSB0 --newline`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var data string
		var portPath string

		// Parse arguments: either "send data port" or "send port"
		if len(args) == 1 {
			portPath = args[0]
			stat, err := os.Stdin.Stat()
			if err != nil || (stat.Mode()&os.ModeCharDevice) != 0 {
				data = promptForData()
			} else {
				stdinData, err := io.ReadAll(os.Stdin)
				if err != nil {
					return fmt.Errorf("reading stdin: %w", err)
				}
				data = strings.TrimRight(string(stdinData), "\r\n")
			}
		} else {
			data = args[0]
			portPath = args[1]
		}

		addNewline, _ := cmd.Flags().GetBool("newline")
		hexMode, _ := cmd.Flags().GetBool("hex")
		response, _ := cmd.Flags().GetInt("response")

		payload := []byte(data)
		if hexMode {
			var err error
			if payload, err = parseHexInput(data); err != nil {
				return fmt.Errorf("invalid hex data: %w", err)
			}
		} else if addNewline {
			payload = append(payload, '\n')
		}

		return sendData(portPath, payload, response)
	},
}

func init() {
	rootCmd.AddCommand(sendCmd)

	sendCmd.Flags().BoolP("newline", "n", false, "Add newline character to the end of data")
	sendCmd.Flags().BoolP("hex", "x", false, "Interpret data as hexadecimal (e.g. '7F' or '00 FF')")
	sendCmd.Flags().IntP("response", "r", 0, "Number of reply bytes to wait for")
}

func promptForData() string {
	fmt.Print(infoStyle.Render("Enter data to send: "))

	scanner := bufio.NewScanner(os.Stdin)
	if scanner.Scan() {
		return scanner.Text()
	}
	return ""
}

// parseHexInput converts hex strings to bytes. Supports both:
// - Space-separated: "48 65 6C 6C 6F"
// - Continuous: "48656C6C6F", optionally with 0x prefixes
func parseHexInput(hexStr string) ([]byte, error) {
	clean := strings.NewReplacer(" ", "", "0x", "", "0X", "", ",", "").Replace(strings.TrimSpace(hexStr))
	if len(clean) == 0 {
		return nil, fmt.Errorf("empty input")
	}
	if len(clean)%2 != 0 {
		return nil, fmt.Errorf("hex string must have even number of digits (got %d)", len(clean))
	}

	out := make([]byte, 0, len(clean)/2)
	for i := 0; i < len(clean); i += 2 {
		b, err := strconv.ParseUint(clean[i:i+2], 16, 8)
		if err != nil {
			return nil, fmt.Errorf("invalid hex byte '%s'", clean[i:i+2])
		}
		out = append(out, byte(b))
	}
	return out, nil
}

func sendData(portPath string, data []byte, response int) error {
	fmt.Printf("%s Opening %s...\n", infoStyle.Render("⚡"), portPath)

	ctrl, err := connect(portPath)
	if err != nil {
		fmt.Printf("%s %v\n", errorStyle.Render("✗"), err)
		return err
	}
	defer ctrl.Close()

	cfg := ctrl.Config()
	fmt.Printf("%s Connected at %d baud 8%s1\n", successStyle.Render("✓"), cfg.BaudRate, cfg.Parity)

	n, err := ctrl.Write(data)
	if err != nil {
		fmt.Printf("%s %v\n", errorStyle.Render("✗"), err)
		return err
	}
	fmt.Printf("%s Sent %d bytes: % X\n", successStyle.Render("✓"), n, preview(data))

	if response <= 0 {
		return nil
	}

	fmt.Printf("%s Waiting up to %s for %d bytes...\n", infoStyle.Render("⏳"), formatTimeout(ctrl.Timeout()), response)
	reply, err := ctrl.Read(response)
	printDump(reply)
	if err != nil {
		return err
	}
	if len(reply) < response {
		fmt.Printf("%s Timed out after %d of %d bytes\n", errorStyle.Render("✗"), len(reply), response)
	}
	return nil
}

func preview(data []byte) []byte {
	if len(data) > 32 {
		return data[:32]
	}
	return data
}
