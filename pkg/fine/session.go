package fine

import (
	"encoding/hex"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Transactor is the probe's synchronous FINE I/O primitive: write out, then read
// exactly inLen bytes, with a probe-side timeout.
type Transactor interface {
	Transact(out []byte, inLen int, timeout uint32) ([]byte, error)
}

// Session runs FINE operations over an already opened probe.
//
// A Session is not safe for concurrent use. FINE is half-duplex and the
// session never overlaps transactions.
type Session struct {
	probe  Transactor
	config Config
	log    zerolog.Logger
	state  State

	chipID     ChipID
	haveChipID bool
}

// NewSession creates a Session over an open probe handle. The caller keeps
// ownership of the probe and closes it after the last operation.
func NewSession(probe Transactor, opts ...Option) *Session {
	if probe == nil {
		panic("probe cannot be nil")
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Session{
		probe:  probe,
		config: cfg,
		log:    cfg.Logger,
		state:  StateDetecting,
	}
}

// State returns the bring-up state reached so far.
func (s *Session) State() State {
	return s.state
}

// transact performs one FINE I/O call and wraps transport failures.
func (s *Session) transact(op string, out []byte, inLen int) ([]byte, error) {
	in, err := s.probe.Transact(out, inLen, Timeout)
	if err != nil {
		s.log.Debug().Str("op", op).Err(err).Msg("FINE xfer failed")
		return nil, &TransportError{Op: op, Err: err}
	}
	if len(in) < inLen {
		s.log.Debug().Str("op", op).Int("want", inLen).Int("got", len(in)).Msg("FINE short read")
		return nil, &TransportError{Op: op, Err: errShortRead{want: inLen, got: len(in)}}
	}

	s.log.Trace().
		Str("op", op).
		Str("out", hex.EncodeToString(out)).
		Str("in", hex.EncodeToString(in)).
		Msg("xfer")

	return in[:inLen], nil
}

func (s *Session) sleep(d time.Duration) {
	s.config.Sleep(d)
}

type errShortRead struct {
	want, got int
}

func (e errShortRead) Error() string {
	return fmt.Sprintf("short read: wanted %d bytes, got %d", e.want, e.got)
}
