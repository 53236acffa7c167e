package fine

import (
	"bytes"
	"testing"
)

func TestChecksum(t *testing.T) {
	tests := []struct {
		name     string
		length   uint16
		cmd      Command
		payload  []byte
		expected byte
	}{
		{
			name:     "get device type",
			length:   1,
			cmd:      CmdGetDeviceType,
			expected: 0xC7, // 2's complement of 0x39
		},
		{
			name:     "sync",
			length:   1,
			cmd:      CmdSync,
			expected: 0xFF,
		},
		{
			name:     "set endianness little",
			length:   2,
			cmd:      CmdSetEndianness,
			payload:  []byte{0x01},
			expected: 0xC7, // 2's complement of 0x39
		},
		{
			name:     "length high byte counts",
			length:   0x0100,
			cmd:      CmdSync,
			expected: 0xFF,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Checksum(tt.length, tt.cmd, tt.payload)
			if result != tt.expected {
				t.Errorf("Checksum() = 0x%02X, want 0x%02X", result, tt.expected)
			}
		})
	}
}

func TestChecksumSelfConsistent(t *testing.T) {
	for n := 0; n <= 64; n++ {
		payload := make([]byte, n)
		for i := range payload {
			payload[i] = byte(i*37 + n)
		}
		length := uint16(n + 1)
		sum := Checksum(length, CmdCheckIDCode, payload)

		total := byte(length>>8) + byte(length) + byte(CmdCheckIDCode) + sum
		for _, b := range payload {
			total += b
		}
		if total != 0 {
			t.Errorf("payload len %d: frame sum = 0x%02X, want 0", n, total)
		}
	}
}

func TestEncodeFrameWindowCount(t *testing.T) {
	for n := 0; n <= 40; n++ {
		extra := 1
		if n%4 == 3 {
			extra = 2
		}
		want := 1 + n/4 + extra

		windows := EncodeFrame(ModeCommand, CmdCheckIDCode, make([]byte, n))
		if len(windows) != want {
			t.Errorf("payload len %d: %d windows, want %d", n, len(windows), want)
		}
		if WindowCount(n) != want {
			t.Errorf("WindowCount(%d) = %d, want %d", n, WindowCount(n), want)
		}
	}
}

func TestEncodeFrameLayout(t *testing.T) {
	cmd := Command(0x10)
	tests := []struct {
		name    string
		payload []byte
		want    [][]byte
	}{
		{
			name:    "no payload",
			payload: nil,
			want: [][]byte{
				{SOH, 0x00, 0x01, 0x10},
				{Checksum(1, cmd, nil), ETX, 0x00, 0x00},
			},
		},
		{
			name:    "one byte",
			payload: []byte{0xA1},
			want: [][]byte{
				{SOH, 0x00, 0x02, 0x10},
				{0xA1, Checksum(2, cmd, []byte{0xA1}), ETX, 0x00},
			},
		},
		{
			name:    "two bytes",
			payload: []byte{0xA1, 0xA2},
			want: [][]byte{
				{SOH, 0x00, 0x03, 0x10},
				{0xA1, 0xA2, Checksum(3, cmd, []byte{0xA1, 0xA2}), ETX},
			},
		},
		{
			name:    "three bytes puts ETX in its own window",
			payload: []byte{0xA1, 0xA2, 0xA3},
			want: [][]byte{
				{SOH, 0x00, 0x04, 0x10},
				{0xA1, 0xA2, 0xA3, Checksum(4, cmd, []byte{0xA1, 0xA2, 0xA3})},
				{ETX, 0x00, 0x00, 0x00},
			},
		},
		{
			name:    "four bytes",
			payload: []byte{0xA1, 0xA2, 0xA3, 0xA4},
			want: [][]byte{
				{SOH, 0x00, 0x05, 0x10},
				{0xA1, 0xA2, 0xA3, 0xA4},
				{Checksum(5, cmd, []byte{0xA1, 0xA2, 0xA3, 0xA4}), ETX, 0x00, 0x00},
			},
		},
		{
			name:    "seven bytes",
			payload: []byte{1, 2, 3, 4, 5, 6, 7},
			want: [][]byte{
				{SOH, 0x00, 0x08, 0x10},
				{1, 2, 3, 4},
				{5, 6, 7, Checksum(8, cmd, []byte{1, 2, 3, 4, 5, 6, 7})},
				{ETX, 0x00, 0x00, 0x00},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			windows := EncodeFrame(ModeCommand, cmd, tt.payload)
			if len(windows) != len(tt.want) {
				t.Fatalf("got %d windows, want %d", len(windows), len(tt.want))
			}
			for i, w := range windows {
				if w[0] != MarkerSend {
					t.Errorf("window %d marker = 0x%02X, want 0x%02X", i, w[0], MarkerSend)
				}
				if !bytes.Equal(w.Body(), tt.want[i]) {
					t.Errorf("window %d = % X, want % X", i, w.Body(), tt.want[i])
				}
			}
		})
	}
}

func TestEncodeFrameStatusMode(t *testing.T) {
	windows := EncodeFrame(ModeStatus, CmdGetDeviceType, nil)
	if windows[0][1] != SOH|StatusBit {
		t.Errorf("header mode byte = 0x%02X, want 0x%02X", windows[0][1], SOH|StatusBit)
	}
}

func TestEncodeFrameLongLength(t *testing.T) {
	payload := make([]byte, 300)
	windows := EncodeFrame(ModeCommand, CmdCheckIDCode, payload)
	header := windows[0].Body()
	if header[1] != 0x01 || header[2] != 0x2D {
		t.Errorf("length bytes = %02X %02X, want 01 2D", header[1], header[2])
	}
}
