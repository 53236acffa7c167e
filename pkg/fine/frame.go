package fine

import "fmt"

// Mode selects whether a frame issues an operation or asks for its queued result.
type Mode uint8

const (
	ModeCommand Mode = 0
	ModeStatus  Mode = StatusBit
)

func (m Mode) String() string {
	if m == ModeStatus {
		return "status"
	}
	return "command"
}

// Command is a FINE command code.
type Command uint8

// String returns the command name used in logs and errors
func (c Command) String() string {
	switch c {
	case CmdSync:
		return "sync"
	case CmdGetAuthMode:
		return "get auth mode"
	case CmdCheckIDCode:
		return "check ID code"
	case CmdSetFrequency:
		return "set frequency"
	case CmdSetBitrate:
		return "set bitrate"
	case CmdSetEndianness:
		return "set endianness"
	case CmdGetDeviceType:
		return "get device type"
	case CmdGetAreaCount:
		return "get area count"
	case CmdGetAreaInfo:
		return "get area info"
	default:
		return fmt.Sprintf("command 0x%02X", uint8(c))
	}
}

// Window is one transmission unit of a command frame:
// MarkerSend followed by four frame bytes.
type Window [WindowSize]byte

// Body returns the four frame bytes carried by the window.
func (w Window) Body() []byte {
	return w[1:]
}

func newWindow(body ...byte) Window {
	var w Window
	w[0] = MarkerSend
	copy(w[1:], body)
	return w
}

// Checksum computes the two's complement of the sum of the length bytes,
// the command code and the payload.
func Checksum(length uint16, cmd Command, payload []byte) byte {
	sum := byte(length>>8) + byte(length) + byte(cmd)
	for _, b := range payload {
		sum += b
	}
	return ^sum + 1
}

// EncodeFrame splits a command frame into its transmission windows.
//
// Frame layout:
//
//	[SOH|mode][LEN_H][LEN_L][CMD] [DATA...][SUM][ETX]
//
// LEN counts the command byte plus the payload. The header is always its own
// window, payload follows four bytes per window, and the checksum and ETX take
// the first free slots after the last payload byte. With three payload bytes
// in the final window only the checksum fits, so ETX goes out in a window of
// its own.
func EncodeFrame(mode Mode, cmd Command, payload []byte) []Window {
	if len(payload) >= MaxDataSize {
		panic(fmt.Sprintf("fine: payload of %d bytes does not fit a frame", len(payload)))
	}

	length := uint16(len(payload) + 1)
	sum := Checksum(length, cmd, payload)

	windows := make([]Window, 0, WindowCount(len(payload)))
	windows = append(windows, newWindow(SOH|byte(mode), byte(length>>8), byte(length), byte(cmd)))

	rest := payload
	for len(rest) >= ChunkSize {
		windows = append(windows, newWindow(rest[:ChunkSize]...))
		rest = rest[ChunkSize:]
	}

	if len(rest) == ChunkSize-1 {
		windows = append(windows, newWindow(append(append([]byte{}, rest...), sum)...))
		return append(windows, newWindow(ETX))
	}

	tail := make([]byte, 0, ChunkSize)
	tail = append(tail, rest...)
	tail = append(tail, sum, ETX)
	return append(windows, newWindow(tail...))
}

// WindowCount returns how many windows EncodeFrame emits for a payload length.
func WindowCount(payloadLen int) int {
	n := 1 + payloadLen/ChunkSize + 1
	if payloadLen%ChunkSize == ChunkSize-1 {
		n++
	}
	return n
}
