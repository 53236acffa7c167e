// Package fine implements the FINE debug protocol used to bring up and
// interrogate Renesas RX microcontrollers through a debug probe.
//
// The package is transport-agnostic: a Session runs over any Transactor,
// the probe's synchronous "write N bytes, read M bytes" primitive.
//
// A session first runs the bring-up sequence (detection, mode setup,
// frequency priming, readiness polling, final acknowledgment), after which
// the command catalog can be used:
//
//	s := fine.NewSession(probe, fine.WithLogger(logger))
//	if err := s.BringUp(); err != nil {
//	    return err
//	}
//	dt, err := s.GetDeviceType()
//
// Commands are sent as frames split into 5-byte windows, each followed by an
// acknowledgment exchange. Results come back as 8-byte status packets and
// 4-byte-chunked data packets retrieved by polling.
package fine
