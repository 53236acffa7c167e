package fine

import (
	"fmt"
	"time"
)

// Step is one named operation of a Script.
type Step struct {
	Name string
	Run  func(s *Session) error
}

// Script is an ordered list of steps run against one session. Steps assume
// every earlier step succeeded, so a failure stops the run.
type Script struct {
	Steps []Step
}

// StepError reports which step of a script failed.
type StepError struct {
	Index int
	Name  string
	Err   error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (%s): %v", e.Index, e.Name, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// Run runs every step in order.
func (sc *Script) Run(s *Session) error {
	return sc.RunFrom(s, 0)
}

// RunFrom runs the steps starting at index start. After a *StepError, RunFrom
// with its Index retries the failed step and continues from there.
func (sc *Script) RunFrom(s *Session, start int) error {
	if start < 0 || start > len(sc.Steps) {
		return fmt.Errorf("step index %d out of range (%d steps)", start, len(sc.Steps))
	}
	for i := start; i < len(sc.Steps); i++ {
		step := sc.Steps[i]
		if err := step.Run(s); err != nil {
			return &StepError{Index: i, Name: step.Name, Err: err}
		}
	}
	return nil
}

// Params are the inputs of the reference sequence.
type Params struct {
	Endianness     Endianness
	InputClockMHz  uint32
	SystemClockMHz uint32
	Bitrate        uint32
	IDCode         IDCode
}

// Target collects what the reference sequence learns about the chip.
type Target struct {
	Probe      string      `json:"probe,omitempty"`
	ChipID     string      `json:"chip_id,omitempty"`
	DeviceType *DeviceType `json:"device_type,omitempty"`
	Endianness string      `json:"endianness,omitempty"`
	Clocks     *Clocks     `json:"clocks,omitempty"`
	Bitrate    uint32      `json:"bitrate,omitempty"`
	SerialBoot *bool       `json:"serial_boot_allowed,omitempty"`
	IDVerified bool        `json:"id_verified"`
	Areas      []Area      `json:"areas,omitempty"`
	Timestamp  time.Time   `json:"timestamp"`
}

// ReferenceScript is the full sequence for an RX target: bring-up, device
// type, endianness, clocks, bit rate, sync, auth mode, ID code and memory
// areas. Results are recorded into t as each step succeeds.
func ReferenceScript(p Params, t *Target) *Script {
	return &Script{Steps: []Step{
		{Name: "bring-up", Run: func(s *Session) error {
			if err := s.BringUp(); err != nil {
				return err
			}
			if id, ok := s.ChipID(); ok {
				t.ChipID = id.String()
			}
			return nil
		}},
		{Name: "get device type", Run: func(s *Session) error {
			dt, err := s.GetDeviceType()
			if err != nil {
				return err
			}
			t.DeviceType = &dt
			return nil
		}},
		{Name: "set endianness", Run: func(s *Session) error {
			if err := s.SetEndianness(p.Endianness); err != nil {
				return err
			}
			t.Endianness = p.Endianness.String()
			return nil
		}},
		{Name: "set frequency", Run: func(s *Session) error {
			clk, err := s.SetFrequency(p.InputClockMHz, p.SystemClockMHz)
			if err != nil {
				return err
			}
			t.Clocks = &clk
			return nil
		}},
		{Name: "set bitrate", Run: func(s *Session) error {
			if err := s.SetBitrate(p.Bitrate); err != nil {
				return err
			}
			t.Bitrate = p.Bitrate
			return nil
		}},
		{Name: "sync", Run: func(s *Session) error {
			return s.Sync()
		}},
		{Name: "get auth mode", Run: func(s *Session) error {
			allowed, err := s.GetAuthMode()
			if err != nil {
				return err
			}
			t.SerialBoot = &allowed
			return nil
		}},
		{Name: "check ID code", Run: func(s *Session) error {
			if err := s.CheckIDCode(p.IDCode); err != nil {
				return err
			}
			t.IDVerified = true
			return nil
		}},
		{Name: "get areas", Run: func(s *Session) error {
			areas, err := s.GetAreas()
			if err != nil {
				return err
			}
			t.Areas = areas
			return nil
		}},
	}}
}
