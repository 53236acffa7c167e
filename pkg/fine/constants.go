package fine

import "time"

// Link-level markers. Every transaction starts with one of these bytes.
const (
	MarkerSend     = 0x84 // Carries one window of a command frame
	MarkerModeSet  = 0x88 // Prefix of the 3-byte mode setup sub-commands
	MarkerChipID   = 0xC2 // Request the 16-bit chip identity
	MarkerAskData  = 0xC4 // Poll one status/data chunk
	MarkerAskAck   = 0xC6 // Ask the target whether it accepted the last window
	StartSequence  = 0x9D4375C0
	DetectResponse = 0x0223 // Answer to StartSequence, little-endian on the wire
	NotReady       = 0x0E   // First byte of a readiness poll while the target is busy
)

// Frame bytes
const (
	SOH       = 0x01 // Start of header
	ETX       = 0x03 // End of frame
	StatusBit = 0x80 // Set in the header for STATUS-mode frames

	WindowSize  = 5 // Marker + 4 frame bytes
	ChunkSize   = 4 // Frame bytes carried by one window or returned by one poll
	PollSize    = 5 // Bytes returned by a MarkerAskData poll
	StatusSize  = 8 // Two polls worth of status bytes
	MaxDataSize = 0xFFFF
)

// Commands
const (
	CmdSync          Command = 0x00
	CmdGetAuthMode   Command = 0x2C
	CmdCheckIDCode   Command = 0x30
	CmdSetFrequency  Command = 0x32
	CmdSetBitrate    Command = 0x34
	CmdSetEndianness Command = 0x36
	CmdGetDeviceType Command = 0x38
	CmdGetAreaCount  Command = 0x53
	CmdGetAreaInfo   Command = 0x54
)

// Status packet error codes
const (
	ErrCodeNotSupported ErrorCode = 0xC0
	ErrCodePacket       ErrorCode = 0xC1
	ErrCodeChecksum     ErrorCode = 0xC2
	ErrCodeFlow         ErrorCode = 0xC3
	ErrCodeAddress      ErrorCode = 0xD0
	ErrCodeInputFreq    ErrorCode = 0xD1
	ErrCodeSysClock     ErrorCode = 0xD2
	ErrCodeBitRate      ErrorCode = 0xD4
	ErrCodeArea         ErrorCode = 0xD5
	ErrCodeEndian       ErrorCode = 0xD7
	ErrCodeProtection   ErrorCode = 0xDA
	ErrCodeWrongID      ErrorCode = 0xDB
	ErrCodeSerialCnx    ErrorCode = 0xDC
	ErrCodeNonBlank     ErrorCode = 0xE0
	ErrCodeErase        ErrorCode = 0xE1
	ErrCodeProgram      ErrorCode = 0xE2
	ErrCodeFlashSeq     ErrorCode = 0xE7
)

// Retry and timeout constants. These match what the target firmware expects
// and are not tunable.
const (
	Timeout          = 0x64 // Probe-side timeout for every FINE I/O call
	DetectRetries    = 10
	ReadyPolls       = 100
	ReadyPollDelay   = 10 * time.Millisecond
	IDCodeSize       = 16
	DeviceTypeSize   = 8
	ErrorFlag        = 0x80 // Bit in status byte 3 signalling an error code in byte 4
	statusFlagIndex  = 3
	statusCodeIndex  = 4
	dataPayloadIndex = 4
)

// modeSetup is sent once after detection: three preset sub-commands then an ack request.
var modeSetup = []byte{
	MarkerModeSet, 0x01, 0x00,
	MarkerModeSet, 0x03, 0x00,
	MarkerModeSet, 0x02, 0x00,
	MarkerAskAck,
}

// frequencyPrime establishes the initial clock configuration.
var frequencyPrime = []byte{MarkerSend, 0x55, 0x00, 0x00, 0x00}
