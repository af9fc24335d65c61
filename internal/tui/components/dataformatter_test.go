package components

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestDirection(t *testing.T) {
	tests := []struct {
		name  string
		msg   DataReceivedMsg
		arrow string
		label string
	}{
		{"rx", DataReceivedMsg{Data: []byte{0x79}}, "↙", "RX"},
		{"tx", DataReceivedMsg{Data: []byte{0x7F}, IsTX: true}, "↗", "TX"},
		{"line", DataReceivedMsg{Event: "reset pulse"}, "⚡", "LINE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			arrow, label := Direction(tt.msg)
			if arrow != tt.arrow || label != tt.label {
				t.Errorf("Expected %s %s, got %s %s", tt.arrow, tt.label, arrow, label)
			}
		})
	}
}

func TestPayload(t *testing.T) {
	msg := DataReceivedMsg{Data: []byte{0x7F, 'o', 'k', 0x1F}}

	tests := []struct {
		hex, ascii bool
		expected   string
	}{
		{true, true, "HEX: 7F 6F 6B 1F  ASCII: .ok."},
		{true, false, "HEX: 7F 6F 6B 1F"},
		{false, true, "ASCII: .ok."},
		{false, false, "BYTES: 4"},
	}

	for _, tt := range tests {
		df := NewDataFormatter(tt.hex, tt.ascii)
		if got := df.Payload(msg); got != tt.expected {
			t.Errorf("hex=%v ascii=%v: expected %q, got %q", tt.hex, tt.ascii, tt.expected, got)
		}
	}
}

func TestPayloadEvent(t *testing.T) {
	df := NewDataFormatter(true, true)

	if got := df.Payload(DataReceivedMsg{Event: "enter bootloader", Data: []byte{1}}); got != "enter bootloader" {
		t.Errorf("Expected event text only, got %q", got)
	}

	got := df.Payload(DataReceivedMsg{Event: "reset pulse", Err: errors.New("busy")})
	if got != "reset pulse: busy" {
		t.Errorf("Expected event with error, got %q", got)
	}
}

func TestToggleDisplayMode(t *testing.T) {
	df := NewDataFormatter(true, true)
	df.ToggleHex()
	df.ToggleASCII()

	mode := df.GetDisplayMode()
	if mode.ShowHex || mode.ShowASCII {
		t.Errorf("Expected both displays off, got %+v", mode)
	}
}

func TestFormatMessages(t *testing.T) {
	df := NewDataFormatter(true, false)
	ts := time.Date(2024, 1, 2, 3, 4, 5, 6_000_000, time.UTC)

	lines := df.FormatMessages([]DataReceivedMsg{
		{Timestamp: ts, Data: []byte{0x1F}},
		{Timestamp: ts, Data: []byte{0x7F}, IsTX: true, Status: StatusWritten},
	})

	if len(lines) != 2 {
		t.Fatalf("Expected 2 lines, got %d", len(lines))
	}
	if !strings.Contains(lines[0], "[03:04:05.006]") || !strings.Contains(lines[0], "HEX: 1F") {
		t.Errorf("Unexpected RX line %q", lines[0])
	}
	if !strings.Contains(lines[1], "TX ✓") || !strings.Contains(lines[1], "HEX: 7F") {
		t.Errorf("Unexpected TX line %q", lines[1])
	}
}
