package fine

import (
	"errors"
	"fmt"
)

// Bring-up and handshake errors
var (
	// ErrDetectTimeout indicates the target never answered the start sequence
	ErrDetectTimeout = errors.New("FINE target not detected")

	// ErrDeviceTimeout indicates the target stayed busy for every readiness poll
	ErrDeviceTimeout = errors.New("FINE device timeout")

	// ErrInitRejected indicates the target refused a bring-up frame
	ErrInitRejected = errors.New("FINE initialization rejected")

	// ErrAckRejected indicates a nonzero acknowledgment after a sent window
	ErrAckRejected = errors.New("FINE acknowledgment rejected")

	// ErrShortData indicates a data packet too short for the fields it should carry
	ErrShortData = errors.New("FINE data packet too short")

	// ErrNotReady indicates a catalog command issued before bring-up completed
	ErrNotReady = errors.New("FINE session not initialized")
)

// ErrorCode is the error byte carried by a status packet.
type ErrorCode uint8

// String returns the human-readable description of the code.
func (c ErrorCode) String() string {
	switch c {
	case ErrCodeNotSupported:
		return "command not supported"
	case ErrCodePacket:
		return "packet error"
	case ErrCodeChecksum:
		return "checksum error"
	case ErrCodeFlow:
		return "flow error"
	case ErrCodeAddress:
		return "bad address"
	case ErrCodeInputFreq:
		return "bad input frequency"
	case ErrCodeSysClock:
		return "bad system clock frequency"
	case ErrCodeArea:
		return "area error"
	case ErrCodeBitRate:
		return "bit rate error"
	case ErrCodeEndian:
		return "endian error"
	case ErrCodeProtection:
		return "protection error"
	case ErrCodeWrongID:
		return "ID code mismatch error"
	case ErrCodeSerialCnx:
		return "serial programmer connection prohibition error"
	case ErrCodeNonBlank:
		return "non-blank error"
	case ErrCodeErase:
		return "error of erasure"
	case ErrCodeProgram:
		return "program error"
	case ErrCodeFlashSeq:
		return "flash sequencer error"
	default:
		return "unknown error"
	}
}

// ProtocolError is a command rejected by the target through its status packet.
type ProtocolError struct {
	Command Command
	Code    ErrorCode
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("FINE %s failed: %s (0x%02X)", e.Command, e.Code, uint8(e.Code))
}

// TransportError wraps a failure of the probe's transaction primitive.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("FINE xfer failed during %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
