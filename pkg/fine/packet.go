package fine

import (
	"encoding/binary"
	"fmt"
)

// awaitAck asks the target whether it accepted the preceding window.
// Two zero bytes mean ready.
func (s *Session) awaitAck() error {
	in, err := s.transact("ack", []byte{MarkerAskAck}, 2)
	if err != nil {
		return err
	}
	if in[0] != 0 || in[1] != 0 {
		return fmt.Errorf("%w: 0x%02X 0x%02X", ErrAckRejected, in[0], in[1])
	}
	return nil
}

// sendFrame transmits a command frame window by window, acknowledging each one.
func (s *Session) sendFrame(mode Mode, cmd Command, payload []byte) error {
	for i, w := range EncodeFrame(mode, cmd, payload) {
		// The per-window response byte carries nothing; the ack decides.
		if _, err := s.transact("send", w[:], 1); err != nil {
			return err
		}
		if err := s.awaitAck(); err != nil {
			return fmt.Errorf("%s window %d: %w", cmd, i, err)
		}
	}
	return nil
}

// poll reads one 4-byte chunk of a status or data packet.
func (s *Session) poll() ([ChunkSize]byte, []byte, error) {
	var chunk [ChunkSize]byte
	in, err := s.transact("poll", []byte{MarkerAskData}, PollSize)
	if err != nil {
		return chunk, nil, err
	}
	copy(chunk[:], in[1:PollSize])
	return chunk, in, nil
}

// Status is an 8-byte status packet.
type Status [StatusSize]byte

// Failed reports whether the status packet carries an error code.
func (st Status) Failed() bool {
	return st[statusFlagIndex]&ErrorFlag != 0
}

// Code returns the error code carried by a failed status packet.
func (st Status) Code() ErrorCode {
	return ErrorCode(st[statusCodeIndex])
}

// ReadStatus reads the status packet queued for the last command frame.
// The packet is acknowledged whether or not it carries an error; a carried
// error is returned as a *ProtocolError.
func (s *Session) ReadStatus(cmd Command) (Status, error) {
	var st Status

	first, _, err := s.poll()
	if err != nil {
		return st, err
	}
	second, _, err := s.poll()
	if err != nil {
		return st, err
	}
	copy(st[:ChunkSize], first[:])
	copy(st[ChunkSize:], second[:])

	if err := s.awaitAck(); err != nil {
		return st, fmt.Errorf("%s status: %w", cmd, err)
	}

	if st.Failed() {
		s.log.Error().Str("cmd", cmd.String()).Str("error", st.Code().String()).Msg("FINE command error")
		return st, &ProtocolError{Command: cmd, Code: st.Code()}
	}
	return st, nil
}

// DataPolls returns how many polls follow the first one for a declared length.
func DataPolls(declared uint16) int {
	return (int(declared) + 1 + ChunkSize - 1) / ChunkSize
}

// ReadData reads a data packet. The first poll carries the declared length in
// its response bytes 2-3; the remaining chunks are polled and concatenated.
// The result length is always a multiple of four; bytes past the declared
// length are whatever the target sent.
func (s *Session) ReadData() ([]byte, error) {
	first, in, err := s.poll()
	if err != nil {
		return nil, err
	}

	declared := binary.BigEndian.Uint16(in[2:4])
	polls := DataPolls(declared)

	data := make([]byte, 0, ChunkSize*(polls+1))
	data = append(data, first[:]...)
	for i := 0; i < polls; i++ {
		chunk, _, err := s.poll()
		if err != nil {
			return nil, err
		}
		data = append(data, chunk[:]...)
	}

	if err := s.awaitAck(); err != nil {
		return nil, fmt.Errorf("data: %w", err)
	}

	s.log.Debug().Int("declared", int(declared)).Int("len", len(data)).Msg("data packet")
	return data, nil
}
