package jlink

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrFineIOStatus indicates the probe reported a failed FINE transaction
var ErrFineIOStatus = errors.New("probe reported FINE I/O failure")

// encodeFineIO builds the request for one FINE transaction:
// [cmd][outLen u32][inLen u32][timeout u32][out...], all little endian.
func encodeFineIO(cmd uint8, out []byte, inLen int, timeout uint32) []byte {
	buf := make([]byte, fineIOHeaderSize+len(out))
	buf[0] = cmd
	binary.LittleEndian.PutUint32(buf[1:5], uint32(len(out)))
	binary.LittleEndian.PutUint32(buf[5:9], uint32(inLen))
	binary.LittleEndian.PutUint32(buf[9:13], timeout)
	copy(buf[fineIOHeaderSize:], out)
	return buf
}

// decodeFineIO splits a response into the target bytes and checks the
// trailing status word.
func decodeFineIO(resp []byte, inLen int) ([]byte, error) {
	if len(resp) < inLen+fineIOStatusSize {
		return nil, fmt.Errorf("short FINE I/O response: have %d, need %d", len(resp), inLen+fineIOStatusSize)
	}
	status := binary.LittleEndian.Uint32(resp[inLen : inLen+fineIOStatusSize])
	if status != 0 {
		return nil, fmt.Errorf("%w: status 0x%08X", ErrFineIOStatus, status)
	}
	in := make([]byte, inLen)
	copy(in, resp[:inLen])
	return in, nil
}

// Transact runs one FINE transaction: out is shifted to the target and
// inLen bytes are read back. timeout is passed to the probe as is.
func (d *Device) Transact(out []byte, inLen int, timeout uint32) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.write(encodeFineIO(d.fineIOCmd, out, inLen, timeout)); err != nil {
		return nil, fmt.Errorf("FINE I/O write: %w", err)
	}

	resp, err := d.read(inLen + fineIOStatusSize)
	if err != nil {
		return nil, fmt.Errorf("FINE I/O read: %w", err)
	}
	return decodeFineIO(resp, inLen)
}
