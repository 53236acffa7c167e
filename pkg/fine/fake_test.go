package fine

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"
	"time"
)

// xfer is one recorded transaction.
type xfer struct {
	out   []byte
	inLen int
}

// fakeProbe answers FINE transactions by their leading marker. Queued
// responses are consumed in order; empty queues fall back to the answer a
// healthy target gives.
type fakeProbe struct {
	xfers []xfer

	detect    [][]byte
	ready     [][]byte
	polls     [][]byte
	acks      [][]byte
	prime     []byte
	modeSetup []byte
	chipID    []byte

	// failAt makes the transaction with this index (0-based) fail
	failAt  int
	failErr error
}

func newFakeProbe() *fakeProbe {
	return &fakeProbe{failAt: -1}
}

func (f *fakeProbe) Transact(out []byte, inLen int, timeout uint32) ([]byte, error) {
	idx := len(f.xfers)
	f.xfers = append(f.xfers, xfer{out: append([]byte(nil), out...), inLen: inLen})

	if idx == f.failAt {
		if f.failErr != nil {
			return nil, f.failErr
		}
		return nil, errors.New("usb: pipe error")
	}
	if timeout != Timeout {
		return nil, errors.New("unexpected timeout value")
	}

	switch {
	case len(out) == 4 && binary.BigEndian.Uint32(out) == StartSequence:
		return pop(&f.detect, []byte{0x23, 0x02}), nil
	case bytes.Equal(out, modeSetup):
		return orDefault(f.modeSetup, []byte{0x00, 0x00}), nil
	case bytes.Equal(out, frequencyPrime):
		return orDefault(f.prime, []byte{0x00}), nil
	case out[0] == MarkerChipID:
		return orDefault(f.chipID, []byte{0x00, 0x00}), nil
	case out[0] == MarkerAskAck:
		return pop(&f.acks, []byte{0x00, 0x00}), nil
	case out[0] == MarkerAskData && inLen == 1:
		return pop(&f.ready, []byte{0x00}), nil
	case out[0] == MarkerAskData && inLen == PollSize:
		if len(f.polls) == 0 {
			return nil, errors.New("no poll response queued")
		}
		return pop(&f.polls, nil), nil
	case out[0] == MarkerSend:
		return []byte{0x00}, nil
	}
	return nil, errors.New("unexpected transaction")
}

func pop(q *[][]byte, def []byte) []byte {
	if len(*q) == 0 {
		return def
	}
	r := (*q)[0]
	*q = (*q)[1:]
	return r
}

func orDefault(b, def []byte) []byte {
	if b == nil {
		return def
	}
	return b
}

// count returns how many recorded transactions start with marker.
func (f *fakeProbe) count(marker byte) int {
	n := 0
	for _, x := range f.xfers {
		if len(x.out) > 0 && x.out[0] == marker {
			n++
		}
	}
	return n
}

// windows returns the bodies of every MarkerSend window except the frequency prime.
func (f *fakeProbe) windows() [][]byte {
	var out [][]byte
	for _, x := range f.xfers {
		if len(x.out) == WindowSize && x.out[0] == MarkerSend && !bytes.Equal(x.out, frequencyPrime) {
			out = append(out, x.out[1:])
		}
	}
	return out
}

// queueStatus queues the two polls of a successful status packet.
func (f *fakeProbe) queueStatus(cmd Command) {
	f.polls = append(f.polls,
		[]byte{0x00, 0x81, 0x00, 0x01, byte(cmd)},
		[]byte{0x00, Checksum(1, cmd, nil), ETX, 0x00, 0x00},
	)
}

// queueStatusError queues a status packet carrying code.
func (f *fakeProbe) queueStatusError(cmd Command, code ErrorCode) {
	f.polls = append(f.polls,
		[]byte{0x00, 0x81, 0x00, 0x02, byte(cmd) | ErrorFlag},
		[]byte{0x00, byte(code), 0x00, ETX, 0x00},
	)
}

// queueData queues a data packet [SOD][LEN_H][LEN_L][CMD][payload...][SUM][ETX]
// split into polls.
func (f *fakeProbe) queueData(cmd Command, payload []byte) {
	length := uint16(len(payload) + 1)
	packet := []byte{0x81, byte(length >> 8), byte(length), byte(cmd)}
	packet = append(packet, payload...)
	packet = append(packet, Checksum(length, cmd, payload), ETX)

	total := ChunkSize * (1 + DataPolls(length))
	for len(packet) < total {
		packet = append(packet, 0x00)
	}
	for i := 0; i < total; i += ChunkSize {
		f.polls = append(f.polls, append([]byte{0x00}, packet[i:i+ChunkSize]...))
	}
}

// queueQuery queues the status and data packets of a get-style command.
func (f *fakeProbe) queueQuery(cmd Command, payload []byte) {
	f.queueStatus(cmd)
	f.queueData(cmd, payload)
}

// newReadySession returns a session already past bring-up.
func newReadySession(t *testing.T, probe *fakeProbe, opts ...Option) *Session {
	t.Helper()
	opts = append([]Option{WithSleep(func(time.Duration) {})}, opts...)
	s := NewSession(probe, opts...)
	s.state = StateReady
	return s
}
