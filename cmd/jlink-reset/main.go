// jlink-reset resets J-Link probes to recover from USB errors
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/google/gousb"
	"github.com/herlein/gofine/pkg/jlink"
)

func main() {
	ctx := gousb.NewContext()
	defer ctx.Close()

	for attempt := 0; attempt < 3; attempt++ {
		devs, err := ctx.OpenDevices(func(desc *gousb.DeviceDesc) bool {
			return jlink.IsProbe(uint16(desc.Vendor), uint16(desc.Product))
		})

		if err != nil && len(devs) == 0 {
			fmt.Printf("Attempt %d: Error finding probes: %v\n", attempt+1, err)
			time.Sleep(time.Second)
			continue
		}

		if len(devs) == 0 {
			fmt.Printf("Attempt %d: No probes found\n", attempt+1)
			time.Sleep(time.Second)
			continue
		}

		fmt.Printf("Found %d probe(s)\n", len(devs))
		for i, dev := range devs {
			serial, _ := dev.SerialNumber()
			fmt.Printf("  Probe %d: %s\n", i, serial)

			if err := dev.Reset(); err != nil {
				fmt.Printf("    Reset failed: %v\n", err)
			} else {
				fmt.Printf("    Reset OK\n")
			}
			dev.Close()
		}
		os.Exit(0)
	}

	fmt.Println("Failed to find/reset probes after 3 attempts")
	os.Exit(1)
}
