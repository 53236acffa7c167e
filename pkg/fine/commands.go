package fine

import (
	"encoding/binary"
	"fmt"
)

// command sends a COMMAND-mode frame and checks the status packet it queues.
func (s *Session) command(cmd Command, payload []byte) error {
	if s.state != StateReady {
		return fmt.Errorf("%s: %w (state %s)", cmd, ErrNotReady, s.state)
	}
	if err := s.sendFrame(ModeCommand, cmd, payload); err != nil {
		return fmt.Errorf("send %s: %w", cmd, err)
	}
	if _, err := s.ReadStatus(cmd); err != nil {
		return err
	}
	return nil
}

// query issues cmd, then retrieves its result with a STATUS-mode frame.
// need is the minimum data packet length the caller decodes.
func (s *Session) query(cmd Command, payload []byte, need int) ([]byte, error) {
	if err := s.command(cmd, payload); err != nil {
		return nil, err
	}
	if err := s.sendFrame(ModeStatus, cmd, nil); err != nil {
		return nil, fmt.Errorf("send %s status: %w", cmd, err)
	}
	data, err := s.ReadData()
	if err != nil {
		return nil, fmt.Errorf("read %s data: %w", cmd, err)
	}
	if len(data) < need {
		return nil, fmt.Errorf("%s: %w: got %d bytes, need %d", cmd, ErrShortData, len(data), need)
	}
	return data, nil
}

// GetDeviceType reads the device type code and its clock bounds.
func (s *Session) GetDeviceType() (DeviceType, error) {
	var dt DeviceType
	s.log.Info().Msg("FINE: get device type")

	data, err := s.query(CmdGetDeviceType, nil, 28)
	if err != nil {
		return dt, err
	}

	copy(dt.Code[:], data[4:12])
	dt.MaxInputClock = binary.BigEndian.Uint32(data[12:])
	dt.MinInputClock = binary.BigEndian.Uint32(data[16:])
	dt.MaxSystemClock = binary.BigEndian.Uint32(data[20:])
	dt.MinSystemClock = binary.BigEndian.Uint32(data[24:])

	s.log.Info().
		Str("type", dt.Code.String()).
		Uint32("max_input_clk_freq", dt.MaxInputClock).
		Uint32("min_input_clk_freq", dt.MinInputClock).
		Uint32("max_sys_clk_freq", dt.MaxSystemClock).
		Uint32("min_sys_clk_freq", dt.MinSystemClock).
		Msg("device type")
	return dt, nil
}

// SetEndianness tells the target which byte order to run in.
func (s *Session) SetEndianness(e Endianness) error {
	s.log.Info().Str("endianness", e.String()).Msg("FINE: set endianness")
	return s.command(CmdSetEndianness, []byte{byte(e)})
}

// SetFrequency sets the input and system clocks, given in MHz, and returns
// the system and peripheral clocks the target applied.
func (s *Session) SetFrequency(inputMHz, systemMHz uint32) (Clocks, error) {
	var clk Clocks
	s.log.Info().Uint32("input_mhz", inputMHz).Uint32("system_mhz", systemMHz).Msg("FINE: set frequency")

	payload := make([]byte, 8)
	binary.BigEndian.PutUint32(payload[0:], inputMHz*1000000)
	binary.BigEndian.PutUint32(payload[4:], systemMHz*1000000)

	data, err := s.query(CmdSetFrequency, payload, 12)
	if err != nil {
		return clk, err
	}

	clk.System = binary.BigEndian.Uint32(data[4:])
	clk.Peripheral = binary.BigEndian.Uint32(data[8:])
	s.log.Info().Uint32("system", clk.System).Uint32("peripheral", clk.Peripheral).Msg("frequency set")
	return clk, nil
}

// SetBitrate sets the communication bit rate in bits per second.
func (s *Session) SetBitrate(bps uint32) error {
	s.log.Info().Uint32("bitrate", bps).Msg("FINE: set bitrate")
	payload := make([]byte, 4)
	binary.BigEndian.PutUint32(payload, bps)
	return s.command(CmdSetBitrate, payload)
}

// Sync synchronizes the target after a bit rate change.
func (s *Session) Sync() error {
	s.log.Info().Msg("FINE: send sync")
	return s.command(CmdSync, nil)
}

// GetAuthMode reports whether the target allows serial programming.
func (s *Session) GetAuthMode() (bool, error) {
	s.log.Info().Msg("FINE: get authentication mode")

	data, err := s.query(CmdGetAuthMode, nil, dataPayloadIndex+1)
	if err != nil {
		return false, err
	}

	allowed := data[dataPayloadIndex] == 0
	s.log.Info().Bool("serial_boot_allowed", allowed).Msg("authentication mode")
	return allowed, nil
}

// CheckIDCode unlocks the target with its ID code.
func (s *Session) CheckIDCode(id IDCode) error {
	s.log.Info().Msg("FINE: check ID code")
	return s.command(CmdCheckIDCode, id[:])
}

// GetAreaCount returns how many memory areas the target reports.
func (s *Session) GetAreaCount() (int, error) {
	data, err := s.query(CmdGetAreaCount, nil, dataPayloadIndex+1)
	if err != nil {
		return 0, err
	}
	return int(data[dataPayloadIndex]), nil
}

// GetAreaInfo reads the description of one memory area.
func (s *Session) GetAreaInfo(index uint8) (Area, error) {
	s.log.Info().Uint8("area", index).Msg("FINE: area information acquisition")

	data, err := s.query(CmdGetAreaInfo, []byte{index}, 21)
	if err != nil {
		return Area{}, err
	}

	area := Area{
		Index:     int(index),
		Kind:      data[4],
		Start:     binary.BigEndian.Uint32(data[5:]),
		End:       binary.BigEndian.Uint32(data[9:]),
		EraseUnit: binary.BigEndian.Uint32(data[13:]),
		WriteUnit: binary.BigEndian.Uint32(data[17:]),
	}
	s.log.Info().Msg(area.String())
	return area, nil
}

// GetAreas enumerates every memory area in index order. The first failing
// area aborts the enumeration.
func (s *Session) GetAreas() ([]Area, error) {
	s.log.Info().Msg("FINE: get area informations")

	count, err := s.GetAreaCount()
	if err != nil {
		return nil, err
	}

	areas := make([]Area, 0, count)
	for i := 0; i < count; i++ {
		area, err := s.GetAreaInfo(uint8(i))
		if err != nil {
			return nil, fmt.Errorf("area %d: %w", i, err)
		}
		areas = append(areas, area)
	}
	return areas, nil
}
