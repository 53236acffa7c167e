package jlink

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/gousb"
)

// DeviceSelector specifies how to identify a J-Link probe
// Supported formats:
//   - ""           : Use first available probe
//   - "serial"     : Match by serial number (e.g., "000801234567")
//   - "bus:addr"   : Match by USB bus and address (e.g., "1:10")
//   - "#N"         : Use Nth probe, 0-indexed (e.g., "#0", "#1")
type DeviceSelector string

type selectorKind int

const (
	selectFirst selectorKind = iota
	selectIndex
	selectBusAddr
	selectSerial
)

type parsedSelector struct {
	kind   selectorKind
	index  int
	bus    int
	addr   int
	serial string
}

func (s DeviceSelector) parse() (parsedSelector, error) {
	sel := strings.TrimSpace(string(s))

	if sel == "" {
		return parsedSelector{kind: selectFirst}, nil
	}

	if strings.HasPrefix(sel, "#") {
		index, err := strconv.Atoi(sel[1:])
		if err != nil || index < 0 {
			return parsedSelector{}, fmt.Errorf("invalid device index: %s", sel)
		}
		return parsedSelector{kind: selectIndex, index: index}, nil
	}

	if strings.Contains(sel, ":") {
		parts := strings.SplitN(sel, ":", 2)
		bus, err := strconv.Atoi(parts[0])
		if err != nil {
			return parsedSelector{}, fmt.Errorf("invalid bus number: %s", parts[0])
		}
		addr, err := strconv.Atoi(parts[1])
		if err != nil {
			return parsedSelector{}, fmt.Errorf("invalid address number: %s", parts[1])
		}
		return parsedSelector{kind: selectBusAddr, bus: bus, addr: addr}, nil
	}

	return parsedSelector{kind: selectSerial, serial: sel}, nil
}

// pick returns the index into devices chosen by the selector
func (p parsedSelector) pick(devices []*Device) (int, error) {
	if len(devices) == 0 {
		return -1, fmt.Errorf("no J-Link probes found")
	}

	switch p.kind {
	case selectIndex:
		if p.index >= len(devices) {
			return -1, fmt.Errorf("device index %d out of range (found %d devices)", p.index, len(devices))
		}
		return p.index, nil

	case selectBusAddr:
		for i, d := range devices {
			if d.Bus == p.bus && d.Address == p.addr {
				return i, nil
			}
		}
		return -1, fmt.Errorf("no J-Link found at bus %d address %d", p.bus, p.addr)

	case selectSerial:
		match := -1
		for i, d := range devices {
			// J-Link serials are often reported with leading zeros
			if d.Serial == p.serial || strings.TrimLeft(d.Serial, "0") == strings.TrimLeft(p.serial, "0") {
				if match >= 0 {
					return -1, fmt.Errorf("multiple devices found with serial %s; use bus:addr format (e.g., 1:10) or index format (e.g., #0)", p.serial)
				}
				match = i
			}
		}
		if match < 0 {
			return -1, fmt.Errorf("no J-Link found with serial %s", p.serial)
		}
		return match, nil
	}

	return 0, nil
}

// SelectDevice opens a J-Link probe matching the selector
func SelectDevice(usbCtx *gousb.Context, selector DeviceSelector, opts ...Option) (*Device, error) {
	p, err := selector.parse()
	if err != nil {
		return nil, err
	}

	devices, err := FindAllDevices(usbCtx, opts...)
	if err != nil {
		return nil, err
	}

	idx, err := p.pick(devices)
	for i, d := range devices {
		if i != idx {
			d.Close()
		}
	}
	if err != nil {
		return nil, err
	}

	return devices[idx], nil
}

// DeviceFlagUsage returns usage string for the -d flag
func DeviceFlagUsage() string {
	return `Probe selector. Formats:
    ""        - Use first available probe
    "serial"  - Match by serial number (e.g., "000801234567")
    "bus:addr"- Match by USB location (e.g., "1:10")
    "#N"      - Use Nth probe, 0-indexed (e.g., "#0", "#1")`
}
