package fine

import (
	"encoding/binary"
	"errors"
	"testing"
	"time"
)

func referenceParams(t *testing.T) Params {
	t.Helper()
	id, err := ParseIDCode("332211FFFFFFFFFFFFFFFFFFFFFFFFFF")
	if err != nil {
		t.Fatal(err)
	}
	return Params{
		Endianness:     LittleEndian,
		InputClockMHz:  16,
		SystemClockMHz: 120,
		Bitrate:        1000000,
		IDCode:         id,
	}
}

func queueReferenceRun(probe *fakeProbe) {
	probe.queueQuery(CmdGetDeviceType, deviceTypePayload())
	probe.queueStatus(CmdSetEndianness)
	clocks := make([]byte, 8)
	binary.BigEndian.PutUint32(clocks[0:], 120000000)
	binary.BigEndian.PutUint32(clocks[4:], 60000000)
	probe.queueQuery(CmdSetFrequency, clocks)
	probe.queueStatus(CmdSetBitrate)
	probe.queueStatus(CmdSync)
	probe.queueQuery(CmdGetAuthMode, []byte{0x00})
	probe.queueStatus(CmdCheckIDCode)
	probe.queueQuery(CmdGetAreaCount, []byte{1})
	probe.queueQuery(CmdGetAreaInfo, areaPayload(0x00, 0xFFE00000, 0xFFFFFFFF, 0x8000, 0x80))
}

func TestReferenceScript(t *testing.T) {
	probe := newFakeProbe()
	probe.chipID = []byte{0x02, 0x65}
	queueReferenceRun(probe)
	s := NewSession(probe, WithSleep(func(time.Duration) {}), WithChipID(true))

	var target Target
	if err := ReferenceScript(referenceParams(t), &target).Run(s); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if target.ChipID != "6502" {
		t.Errorf("chip ID = %q", target.ChipID)
	}
	if target.DeviceType == nil || target.DeviceType.MaxSystemClock != 200000000 {
		t.Errorf("device type = %+v", target.DeviceType)
	}
	if target.Endianness != "little" || target.Bitrate != 1000000 {
		t.Errorf("endianness/bitrate = %s/%d", target.Endianness, target.Bitrate)
	}
	if target.Clocks == nil || target.Clocks.System != 120000000 {
		t.Errorf("clocks = %+v", target.Clocks)
	}
	if target.SerialBoot == nil || !*target.SerialBoot {
		t.Errorf("serial boot = %v", target.SerialBoot)
	}
	if !target.IDVerified {
		t.Error("ID code not recorded as verified")
	}
	if len(target.Areas) != 1 {
		t.Errorf("areas = %+v", target.Areas)
	}
	if len(probe.polls) != 0 {
		t.Errorf("%d queued polls left", len(probe.polls))
	}
}

func TestScriptStopsAndResumes(t *testing.T) {
	probe := newFakeProbe()
	probe.queueQuery(CmdGetDeviceType, deviceTypePayload())
	probe.queueStatusError(CmdSetEndianness, ErrCodeEndian)
	s := NewSession(probe, WithSleep(func(time.Duration) {}))

	var target Target
	script := ReferenceScript(referenceParams(t), &target)
	err := script.Run(s)

	var serr *StepError
	if !errors.As(err, &serr) {
		t.Fatalf("Run() error = %v, want *StepError", err)
	}
	if serr.Index != 2 || serr.Name != "set endianness" {
		t.Errorf("failed step = %d %q", serr.Index, serr.Name)
	}
	var perr *ProtocolError
	if !errors.As(err, &perr) || perr.Code != ErrCodeEndian {
		t.Errorf("cause = %v, want endian error", err)
	}
	if target.Endianness != "" {
		t.Error("failed step recorded a result")
	}

	// retry from the failed step only
	probe.polls = nil
	probe.queueStatus(CmdSetEndianness)
	clocks := make([]byte, 8)
	probe.queueQuery(CmdSetFrequency, clocks)
	probe.queueStatus(CmdSetBitrate)
	probe.queueStatus(CmdSync)
	probe.queueQuery(CmdGetAuthMode, []byte{0x01})
	probe.queueStatus(CmdCheckIDCode)
	probe.queueQuery(CmdGetAreaCount, []byte{0})

	if err := script.RunFrom(s, serr.Index); err != nil {
		t.Fatalf("RunFrom() error = %v", err)
	}
	if got := probe.count(0x9D); got != 1 {
		t.Errorf("start sequences = %d, want 1", got)
	}
	if target.SerialBoot == nil || *target.SerialBoot {
		t.Errorf("serial boot = %v, want prohibited", target.SerialBoot)
	}
}

func TestScriptRunFromRange(t *testing.T) {
	script := &Script{}
	if err := script.RunFrom(NewSession(newFakeProbe()), 1); err == nil {
		t.Error("RunFrom past the end succeeded")
	}
}
