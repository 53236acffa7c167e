package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/herlein/gofine/pkg/fine"
	"github.com/herlein/gofine/pkg/jlink"
)

// Config errors
var (
	// ErrInvalidClock indicates a zero input or system clock
	ErrInvalidClock = errors.New("clock frequencies must be nonzero")

	// ErrInvalidBitrate indicates a zero bit rate
	ErrInvalidBitrate = errors.New("bitrate must be nonzero")
)

// SessionConfig holds the inputs of a FINE session
type SessionConfig struct {
	Probe          string
	Interface      string
	Endianness     fine.Endianness
	InputClockMHz  uint32
	SystemClockMHz uint32
	Bitrate        uint32
	IDCode         fine.IDCode
	ReadChipID     bool
	Report         string
	FineIOCommand  uint8
}

// fileConfig is the TOML layout of a SessionConfig
type fileConfig struct {
	Probe          string `toml:"probe"`
	Interface      string `toml:"interface"`
	Endianness     string `toml:"endianness"`
	InputClockMHz  uint32 `toml:"input_clock_mhz"`
	SystemClockMHz uint32 `toml:"system_clock_mhz"`
	Bitrate        uint32 `toml:"bitrate"`
	IDCode         string `toml:"id_code"`
	ReadChipID     bool   `toml:"read_chip_id"`
	Report         string `toml:"report"`
	FineIOCommand  uint8  `toml:"fine_io_command"`
}

// DefaultIDCode is the ID code of a target with no ID protection configured
// beyond the factory control code.
var DefaultIDCode = fine.IDCode{
	0x33, 0x22, 0x11, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF,
	0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF,
}

// DefaultConfig returns the configuration of the reference RX65 run
func DefaultConfig() SessionConfig {
	return SessionConfig{
		Interface:      "fine",
		Endianness:     fine.LittleEndian,
		InputClockMHz:  16,
		SystemClockMHz: 120,
		Bitrate:        1000000,
		IDCode:         DefaultIDCode,
		FineIOCommand:  jlink.CmdFineIO,
	}
}

// LoadFromFile reads a TOML session configuration. Keys missing from the
// file keep their DefaultConfig values.
func LoadFromFile(path string) (SessionConfig, error) {
	cfg := DefaultConfig()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return SessionConfig{}, fmt.Errorf("load session config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return SessionConfig{}, fmt.Errorf("load session config: unknown key %q", undecoded[0].String())
	}

	if meta.IsDefined("probe") {
		cfg.Probe = strings.TrimSpace(raw.Probe)
	}

	if meta.IsDefined("interface") {
		cfg.Interface = strings.ToLower(strings.TrimSpace(raw.Interface))
	}

	if meta.IsDefined("endianness") {
		e, err := fine.ParseEndianness(strings.ToLower(strings.TrimSpace(raw.Endianness)))
		if err != nil {
			return SessionConfig{}, fmt.Errorf("parse endianness: %w", err)
		}
		cfg.Endianness = e
	}

	if meta.IsDefined("input_clock_mhz") {
		cfg.InputClockMHz = raw.InputClockMHz
	}

	if meta.IsDefined("system_clock_mhz") {
		cfg.SystemClockMHz = raw.SystemClockMHz
	}

	if meta.IsDefined("bitrate") {
		cfg.Bitrate = raw.Bitrate
	}

	if meta.IsDefined("id_code") {
		id, err := fine.ParseIDCode(raw.IDCode)
		if err != nil {
			return SessionConfig{}, fmt.Errorf("parse id_code: %w", err)
		}
		cfg.IDCode = id
	}

	if meta.IsDefined("read_chip_id") {
		cfg.ReadChipID = raw.ReadChipID
	}

	if meta.IsDefined("report") {
		cfg.Report = strings.TrimSpace(raw.Report)
	}

	if meta.IsDefined("fine_io_command") {
		cfg.FineIOCommand = raw.FineIOCommand
	}

	if err := cfg.Validate(); err != nil {
		return SessionConfig{}, err
	}
	return cfg, nil
}

// Validate checks the configuration for errors
func (c SessionConfig) Validate() error {
	if c.InputClockMHz == 0 || c.SystemClockMHz == 0 {
		return ErrInvalidClock
	}
	if c.Bitrate == 0 {
		return ErrInvalidBitrate
	}
	if _, err := jlink.ParseInterface(c.Interface); err != nil {
		return err
	}
	return nil
}

// Params returns the inputs of the reference sequence
func (c SessionConfig) Params() fine.Params {
	return fine.Params{
		Endianness:     c.Endianness,
		InputClockMHz:  c.InputClockMHz,
		SystemClockMHz: c.SystemClockMHz,
		Bitrate:        c.Bitrate,
		IDCode:         c.IDCode,
	}
}
