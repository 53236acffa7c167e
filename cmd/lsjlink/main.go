// lsjlink: List all connected J-Link probes
//
// This tool enumerates all J-Link probes connected to the system and
// displays their serial numbers and basic information.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/google/gousb"
	"github.com/herlein/gofine/pkg/jlink"
)

func main() {
	verbose := flag.Bool("v", false, "Verbose output (show firmware and target interfaces)")
	flag.Parse()

	context := gousb.NewContext()
	defer context.Close()

	devices, err := jlink.FindAllDevices(context)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to enumerate devices: %v\n", err)
		os.Exit(1)
	}

	if len(devices) == 0 {
		fmt.Println("No J-Link probes found")
		os.Exit(0)
	}

	fmt.Printf("Found %d J-Link probe(s):\n", len(devices))
	fmt.Println()

	for i, device := range devices {
		defer device.Close()

		if *verbose {
			fmt.Printf("Probe #%d:\n", i)
			fmt.Printf("  Serial:       %s\n", device.Serial)
			fmt.Printf("  Bus:Address:  %d:%d\n", device.Bus, device.Address)
			fmt.Printf("  Manufacturer: %s\n", device.Manufacturer)
			fmt.Printf("  Product:      %s\n", device.Product)

			version, err := device.Version()
			if err == nil {
				fmt.Printf("  Firmware:     %s\n", version)
			} else {
				fmt.Printf("  Firmware:     (error: %v)\n", err)
			}

			avail, err := device.AvailableInterfaces()
			if err == nil {
				fine := "no"
				if avail.Has(jlink.InterfaceFINE) {
					fine = "yes"
				}
				fmt.Printf("  Interfaces:   %s (FINE: %s)\n", avail, fine)
			} else {
				fmt.Printf("  Interfaces:   (error: %v)\n", err)
			}
			fmt.Println()
		} else {
			fmt.Printf("  #%d  %s  %d:%d\n", i, device.Serial, device.Bus, device.Address)
		}
	}

	if !*verbose {
		fmt.Println()
		fmt.Println("Use -d flag with other tools to select a probe:")
		fmt.Println("  -d \"#0\"            Select by index")
		fmt.Println("  -d \"1:10\"          Select by bus:address")
		fmt.Println("  -d \"000801234567\"  Select by serial (if unique)")
	}
}
