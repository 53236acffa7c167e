package jlink

import "time"

// USB Device Identifiers
const (
	VendorID = 0x1366 // SEGGER

	// J-Link base product IDs
	ProductIDJLink      = 0x0101
	ProductIDJLinkAlt1  = 0x0102
	ProductIDJLinkAlt2  = 0x0103
	ProductIDJLinkAlt3  = 0x0104
	ProductIDJLinkAlt4  = 0x0105
	ProductIDJLinkAlt5  = 0x0107
	ProductIDJLinkAlt6  = 0x0108
	ProductIDJLinkCDC   = 0x1015
	ProductIDJLinkCDC2  = 0x1020
	ProductIDJLinkOBCDC = 0x1051
)

var productIDs = []uint16{
	ProductIDJLink,
	ProductIDJLinkAlt1,
	ProductIDJLinkAlt2,
	ProductIDJLinkAlt3,
	ProductIDJLinkAlt4,
	ProductIDJLinkAlt5,
	ProductIDJLinkAlt6,
	ProductIDJLinkCDC,
	ProductIDJLinkCDC2,
	ProductIDJLinkOBCDC,
}

// IsProbe reports whether vid:pid belongs to a J-Link probe
func IsProbe(vid, pid uint16) bool {
	if vid != VendorID {
		return false
	}
	for _, p := range productIDs {
		if p == pid {
			return true
		}
	}
	return false
}

// Probe commands
const (
	CmdVersion     = 0x01
	CmdClearReset  = 0xDC
	CmdSetReset    = 0xDD
	CmdClearTRST   = 0xDE
	CmdSetTRST     = 0xDF
	CmdSelectTIF   = 0xC7
	CmdGetSelected = 0xFE // argument to CmdSelectTIF
	CmdGetAvail    = 0xFF // argument to CmdSelectTIF

	// CmdFineIO carries one FINE transaction. The value is not published by
	// SEGGER; override it with the fine_io_command config key if a probe
	// firmware rejects it.
	CmdFineIO = 0xD6
)

// Target interfaces
type Interface uint8

const (
	InterfaceJTAG Interface = 0
	InterfaceSWD  Interface = 1
	InterfaceBDM3 Interface = 2
	InterfaceFINE Interface = 3
	InterfaceSPI  Interface = 5
	InterfaceC2   Interface = 6
)

// USB transfer limits
const (
	USBDefaultTimeout = 1000 * time.Millisecond
	MaxPacketSize     = 0x4000
	fineIOHeaderSize  = 13
	fineIOStatusSize  = 4
	versionHeaderSize = 2
	interfaceMaskSize = 4
)
