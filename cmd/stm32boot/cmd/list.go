package cmd

import (
	"fmt"
	"strings"

	"github.com/allbin/stm32boot"
	"github.com/allbin/stm32boot/internal/tui/colors"
	"github.com/charmbracelet/lipgloss"
	"github.com/evertras/bubble-table/table"
	"github.com/spf13/cobra"
)

const (
	columnKeyPort    = "port"
	columnKeyType    = "type"
	columnKeyUSB     = "usb"
	columnKeySerial  = "serial"
	columnKeyProduct = "product"
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List serial ports a target may be attached to",
	Long: `List the serial ports present on the system.

Typical STM32 hookups show up as:
- Raspberry Pi header UART (ttyAMA*, ttyS*)
- USB serial adapters (ttyUSB*)
- ST-LINK virtual COM ports and USB CDC devices (ttyACM*)

Use --table for USB vendor/product ids and serial numbers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ports, err := stm32boot.ListPorts()
		if err != nil {
			return err
		}

		filterType, _ := cmd.Flags().GetString("filter")
		tableFormat, _ := cmd.Flags().GetBool("table")

		filtered := filterPorts(ports, filterType)
		if len(filtered) == 0 {
			if filterType != "" {
				fmt.Printf("No serial ports found matching filter: %s\n", filterType)
			} else {
				fmt.Println("No serial ports found")
			}
			return nil
		}

		if tableFormat {
			fmt.Printf("Found %d serial port(s):\n\n", len(filtered))
			fmt.Println(renderTable(portInfos(filtered)))
		} else {
			for _, port := range filtered {
				fmt.Println(port)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().StringP("filter", "f", "", "Filter by port type: usb, standard, arm, all")
	listCmd.Flags().BoolP("table", "t", false, "Display output in a styled table format")
}

// filterPorts filters the port list based on the device name prefix
func filterPorts(ports []string, filterType string) []string {
	if filterType == "" || filterType == "all" {
		return ports
	}

	var filtered []string
	for _, port := range ports {
		name := strings.ToLower(port[strings.LastIndex(port, "/")+1:])
		switch strings.ToLower(filterType) {
		case "usb":
			if strings.HasPrefix(name, "ttyusb") || strings.HasPrefix(name, "ttyacm") {
				filtered = append(filtered, port)
			}
		case "standard":
			if strings.HasPrefix(name, "ttys") {
				filtered = append(filtered, port)
			}
		case "arm":
			if strings.HasPrefix(name, "ttyama") {
				filtered = append(filtered, port)
			}
		}
	}
	return filtered
}

// portInfos looks up details for each port, keeping a bare entry when the
// lookup fails
func portInfos(ports []string) []stm32boot.PortInfo {
	infos := make([]stm32boot.PortInfo, 0, len(ports))
	for _, port := range ports {
		info, err := stm32boot.GetPortInfo(port)
		if err != nil {
			log.WithError(err).WithField("port", port).Debug("port info unavailable")
			infos = append(infos, stm32boot.PortInfo{Path: port, Description: "Unknown"})
			continue
		}
		infos = append(infos, *info)
	}
	return infos
}

// renderTable renders the port list as a static bubble-table
func renderTable(infos []stm32boot.PortInfo) string {
	columns := []table.Column{
		table.NewColumn(columnKeyPort, "Port", 16),
		table.NewColumn(columnKeyType, "Type", 20),
		table.NewColumn(columnKeyUSB, "VID:PID", 11),
		table.NewColumn(columnKeySerial, "Serial", 18),
		table.NewColumn(columnKeyProduct, "Product", 28),
	}

	rows := make([]table.Row, 0, len(infos))
	for _, info := range infos {
		usb := ""
		if info.IsUSB {
			usb = fmt.Sprintf("%s:%s", info.VendorID, info.ProductID)
		}
		rows = append(rows, table.NewRow(table.RowData{
			columnKeyPort:    info.Path,
			columnKeyType:    info.Description,
			columnKeyUSB:     usb,
			columnKeySerial:  info.SerialNumber,
			columnKeyProduct: info.Product,
		}))
	}

	return table.New(columns).
		WithRows(rows).
		BorderRounded().
		HeaderStyle(lipgloss.NewStyle().Bold(true).Foreground(colors.Mauve)).
		WithBaseStyle(lipgloss.NewStyle().Foreground(colors.Text).BorderForeground(colors.Surface2).Align(lipgloss.Left)).
		View()
}
