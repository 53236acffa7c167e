// fine-rx: Bring up a Renesas RX target over FINE and report what it says
//
// This tool opens a J-Link probe, selects the FINE interface, runs the
// reference command sequence (device type, endianness, clocks, bit rate,
// sync, auth mode, ID code, memory areas) and saves the result as JSON.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/gousb"
	"github.com/herlein/gofine/pkg/config"
	"github.com/herlein/gofine/pkg/fine"
	"github.com/herlein/gofine/pkg/jlink"
	"github.com/herlein/gofine/pkg/logging"
	"github.com/rs/zerolog"
)

func main() {
	configPath := flag.String("c", "", "Session config file (TOML)")
	probe := flag.String("d", "", jlink.DeviceFlagUsage())
	output := flag.String("o", "", "Report file (default etc/targets/<serial>.json)")
	verbose := flag.Bool("v", false, "Verbose output (log every FINE transaction)")
	flag.Parse()

	log := logging.New("fine-rx", logging.ProfileRuntime)
	if *verbose {
		log = log.Level(zerolog.TraceLevel)
	}

	cfg := config.DefaultConfig()
	if *configPath != "" {
		loaded, err := config.LoadFromFile(*configPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", *configPath).Msg("failed to load config")
		}
		cfg = loaded
	}
	if *probe != "" {
		cfg.Probe = *probe
	}
	if *output != "" {
		cfg.Report = *output
	}

	tif, err := jlink.ParseInterface(cfg.Interface)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid interface")
	}

	usbCtx := gousb.NewContext()
	defer usbCtx.Close()

	device, err := jlink.SelectDevice(usbCtx, jlink.DeviceSelector(cfg.Probe),
		jlink.WithFineIOCommand(cfg.FineIOCommand),
		jlink.WithLogger(log),
	)
	if err != nil {
		log.Error().Err(err).Msg("failed to open probe")
		os.Exit(1)
	}
	defer device.Close()

	if err := device.Prepare(tif); err != nil {
		log.Error().Err(err).Msg("failed to prepare probe")
		device.Close()
		os.Exit(1)
	}

	session := fine.NewSession(device,
		fine.WithLogger(log),
		fine.WithChipID(cfg.ReadChipID),
	)

	target := &fine.Target{Probe: device.Serial}
	runErr := fine.ReferenceScript(cfg.Params(), target).Run(session)
	target.Timestamp = time.Now()

	reportPath := cfg.Report
	if reportPath == "" {
		reportPath = config.GetReportPath(device.Serial)
	}
	if err := config.SaveReport(target, reportPath); err != nil {
		log.Error().Err(err).Msg("failed to save report")
	} else {
		log.Info().Str("path", reportPath).Msg("report saved")
	}

	if runErr != nil {
		var stepErr *fine.StepError
		if errors.As(runErr, &stepErr) {
			log.Error().Err(stepErr.Err).Int("step", stepErr.Index).Str("name", stepErr.Name).
				Str("state", session.State().String()).Msg("FINE sequence failed")
		} else {
			log.Error().Err(runErr).Msg("FINE sequence failed")
		}
		device.Close()
		os.Exit(1)
	}

	printTarget(target)
}

func printTarget(t *fine.Target) {
	fmt.Printf("Probe:        %s\n", t.Probe)
	if t.ChipID != "" {
		fmt.Printf("Chip ID:      %s\n", t.ChipID)
	}
	if t.DeviceType != nil {
		dt := t.DeviceType
		fmt.Printf("Device type:  %s\n", dt.Code)
		fmt.Printf("Input clock:  %d - %d Hz\n", dt.MinInputClock, dt.MaxInputClock)
		fmt.Printf("System clock: %d - %d Hz\n", dt.MinSystemClock, dt.MaxSystemClock)
	}
	fmt.Printf("Endianness:   %s\n", t.Endianness)
	if t.Clocks != nil {
		fmt.Printf("Clocks:       system %d Hz, peripheral %d Hz\n", t.Clocks.System, t.Clocks.Peripheral)
	}
	fmt.Printf("Bit rate:     %d\n", t.Bitrate)
	if t.SerialBoot != nil {
		fmt.Printf("Serial boot:  %v\n", *t.SerialBoot)
	}
	fmt.Printf("ID verified:  %v\n", t.IDVerified)
	fmt.Printf("Areas:        %d\n", len(t.Areas))
	for _, a := range t.Areas {
		fmt.Printf("  %s\n", a)
	}
}
