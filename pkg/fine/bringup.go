package fine

import (
	"encoding/binary"
	"fmt"
)

// State is a bring-up stage. Each stage names the last exchange that succeeded.
type State int

const (
	StateDetecting State = iota
	StateDetected
	StateRequestingMode
	StateFrequencyPrime
	StatePollingReady
	StateReady
)

func (st State) String() string {
	switch st {
	case StateDetecting:
		return "DETECTING"
	case StateDetected:
		return "DETECTED"
	case StateRequestingMode:
		return "REQUESTING_MODE"
	case StateFrequencyPrime:
		return "FREQUENCY_PRIME"
	case StatePollingReady:
		return "POLLING_READY"
	case StateReady:
		return "READY"
	default:
		return fmt.Sprintf("State(%d)", int(st))
	}
}

// ChipID is the 16-bit chip identity in host byte order.
type ChipID uint16

func (id ChipID) String() string {
	return fmt.Sprintf("%04x", uint16(id))
}

// BringUp runs the bring-up sequence from the current state until READY.
// A failed step leaves the state unchanged, so calling BringUp again retries
// that step without replaying the ones before it.
func (s *Session) BringUp() error {
	for s.state != StateReady {
		if err := s.Step(); err != nil {
			return err
		}
	}
	return nil
}

// Step performs the exchange that leaves the current bring-up state.
func (s *Session) Step() error {
	from := s.state

	var err error
	switch s.state {
	case StateDetecting:
		err = s.detect()
	case StateDetected:
		err = s.requestMode()
	case StateRequestingMode:
		err = s.primeFrequency()
	case StateFrequencyPrime:
		err = s.pollReady()
	case StatePollingReady:
		err = s.finishInit()
	case StateReady:
		return nil
	}
	if err != nil {
		s.log.Error().Str("state", from.String()).Err(err).Msg("bring-up failed")
		return err
	}

	s.state++
	s.log.Debug().Str("from", from.String()).Str("to", s.state.String()).Msg("bring-up")
	return nil
}

// ChipID returns the chip identity read during bring-up, if it was queried.
func (s *Session) ChipID() (ChipID, bool) {
	return s.chipID, s.haveChipID
}

// detect sends the start sequence until the target answers with DetectResponse.
func (s *Session) detect() error {
	out := make([]byte, 4)
	binary.BigEndian.PutUint32(out, StartSequence)

	for attempt := 1; attempt <= DetectRetries; attempt++ {
		in, err := s.transact("detect", out, 2)
		if err != nil {
			return err
		}
		if binary.LittleEndian.Uint16(in) == DetectResponse {
			s.log.Debug().Int("attempt", attempt).Msg("FINE target detected")
			return nil
		}
		s.log.Debug().Int("attempt", attempt).Str("response", fmt.Sprintf("% x", in)).Msg("start sequence not answered")
	}
	return fmt.Errorf("%w after %d attempts", ErrDetectTimeout, DetectRetries)
}

// requestMode sends the mode setup frame. The target answers 0x2000 after
// power-up and 0x0000 afterwards; both are accepted and neither is checked.
func (s *Session) requestMode() error {
	if s.config.ReadChipID {
		if err := s.readChipID(); err != nil {
			return err
		}
	}

	in, err := s.transact("mode setup", modeSetup, 2)
	if err != nil {
		return err
	}
	s.log.Debug().Uint16("response", binary.BigEndian.Uint16(in)).Msg("mode setup")
	return nil
}

func (s *Session) readChipID() error {
	in, err := s.transact("chip id", []byte{MarkerChipID}, 2)
	if err != nil {
		return err
	}
	s.chipID = ChipID(binary.LittleEndian.Uint16(in))
	s.haveChipID = true
	s.log.Info().Str("chip_id", s.chipID.String()).Msg("found chip")
	return nil
}

func (s *Session) primeFrequency() error {
	in, err := s.transact("frequency prime", frequencyPrime, 1)
	if err != nil {
		return err
	}
	if in[0] != 0 {
		return fmt.Errorf("%w: frequency prime answered 0x%02X", ErrInitRejected, in[0])
	}
	return nil
}

// pollReady polls until the target stops answering NotReady.
func (s *Session) pollReady() error {
	for attempt := 1; attempt <= ReadyPolls; attempt++ {
		in, err := s.transact("ready poll", []byte{MarkerAskData}, 1)
		if err != nil {
			return err
		}
		if in[0] != NotReady {
			s.log.Debug().Int("attempt", attempt).Msg("target ready")
			return nil
		}
		if attempt < ReadyPolls {
			s.sleep(ReadyPollDelay)
		}
	}
	return fmt.Errorf("%w after %d polls", ErrDeviceTimeout, ReadyPolls)
}

func (s *Session) finishInit() error {
	if err := s.awaitAck(); err != nil {
		return fmt.Errorf("%w: %w", ErrInitRejected, err)
	}
	return nil
}
