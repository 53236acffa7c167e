package jlink

import (
	"fmt"
	"strings"
)

var interfaceNames = map[Interface]string{
	InterfaceJTAG: "jtag",
	InterfaceSWD:  "swd",
	InterfaceBDM3: "bdm3",
	InterfaceFINE: "fine",
	InterfaceSPI:  "spi",
	InterfaceC2:   "c2",
}

func (i Interface) String() string {
	if name, ok := interfaceNames[i]; ok {
		return name
	}
	return fmt.Sprintf("tif%d", uint8(i))
}

// ParseInterface maps a name such as "fine" or "swd" to its Interface
func ParseInterface(name string) (Interface, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for tif, n := range interfaceNames {
		if n == name {
			return tif, nil
		}
	}
	return 0, fmt.Errorf("unknown target interface %q", name)
}

// Interfaces is the bitmask returned by AvailableInterfaces
type Interfaces uint32

// Has reports whether tif is present in the mask
func (m Interfaces) Has(tif Interface) bool {
	return m&(1<<tif) != 0
}

func (m Interfaces) String() string {
	var names []string
	for i := Interface(0); i < 32; i++ {
		if m.Has(i) {
			names = append(names, i.String())
		}
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, ",")
}
