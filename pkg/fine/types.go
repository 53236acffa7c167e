package fine

import (
	"encoding/hex"
	"fmt"
)

// Endianness is the byte order the target runs in.
type Endianness uint8

const (
	BigEndian    Endianness = 0
	LittleEndian Endianness = 1
)

func (e Endianness) String() string {
	if e == LittleEndian {
		return "little"
	}
	return "big"
}

// ParseEndianness parses "little" or "big".
func ParseEndianness(s string) (Endianness, error) {
	switch s {
	case "little", "le":
		return LittleEndian, nil
	case "big", "be":
		return BigEndian, nil
	default:
		return 0, fmt.Errorf("unknown endianness %q", s)
	}
}

// TypeCode is the 8-byte device type code.
type TypeCode [DeviceTypeSize]byte

func (c TypeCode) String() string {
	return hex.EncodeToString(c[:])
}

// MarshalText encodes the code as hex.
func (c TypeCode) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText decodes a hex type code.
func (c *TypeCode) UnmarshalText(text []byte) error {
	b, err := hex.DecodeString(string(text))
	if err != nil {
		return fmt.Errorf("invalid type code: %w", err)
	}
	if len(b) != DeviceTypeSize {
		return fmt.Errorf("type code must be %d bytes, got %d", DeviceTypeSize, len(b))
	}
	copy(c[:], b)
	return nil
}

// DeviceType is the answer to CmdGetDeviceType. Clock bounds are in Hz.
type DeviceType struct {
	Code           TypeCode `json:"code"`
	MaxInputClock  uint32   `json:"max_input_clock"`
	MinInputClock  uint32   `json:"min_input_clock"`
	MaxSystemClock uint32   `json:"max_system_clock"`
	MinSystemClock uint32   `json:"min_system_clock"`
}

// Clocks is the read-back of CmdSetFrequency, in Hz.
type Clocks struct {
	System     uint32 `json:"system"`
	Peripheral uint32 `json:"peripheral"`
}

// Area describes one programmable memory area.
type Area struct {
	Index     int    `json:"index"`
	Kind      uint8  `json:"kind"`
	Start     uint32 `json:"start"`
	End       uint32 `json:"end"`
	EraseUnit uint32 `json:"erase_unit"`
	WriteUnit uint32 `json:"write_unit"`
}

func (a Area) String() string {
	return fmt.Sprintf("area[%d] koa=%x sad=%08x ead=%08x eau=%x wau=%x",
		a.Index, a.Kind, a.Start, a.End, a.EraseUnit, a.WriteUnit)
}

// IDCode is the 16-byte ID code checked by CmdCheckIDCode.
type IDCode [IDCodeSize]byte

// ParseIDCode parses 32 hex digits. Spaces are ignored.
func ParseIDCode(s string) (IDCode, error) {
	var id IDCode
	clean := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != ' ' && s[i] != '\t' {
			clean = append(clean, s[i])
		}
	}
	b, err := hex.DecodeString(string(clean))
	if err != nil {
		return id, fmt.Errorf("invalid ID code: %w", err)
	}
	if len(b) != IDCodeSize {
		return id, fmt.Errorf("ID code must be %d bytes, got %d", IDCodeSize, len(b))
	}
	copy(id[:], b)
	return id, nil
}

func (id IDCode) String() string {
	return hex.EncodeToString(id[:])
}
