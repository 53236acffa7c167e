package jlink

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/gousb"
	"github.com/rs/zerolog"
)

// ErrInterfaceUnsupported indicates the probe cannot drive the requested target interface
var ErrInterfaceUnsupported = errors.New("target interface not supported by probe")

// Device represents a J-Link probe
type Device struct {
	usbDevice    *gousb.Device
	usbConfig    *gousb.Config
	usbInterface *gousb.Interface
	epIn         *gousb.InEndpoint
	epOut        *gousb.OutEndpoint
	Serial       string
	Manufacturer string
	Product      string
	Bus          int
	Address      int
	fineIOCmd    uint8
	log          zerolog.Logger
	recvBuf      []byte
	mu           sync.Mutex
}

// Option configures a Device
type Option func(*Device)

// WithFineIOCommand overrides the probe command byte used for FINE transactions
func WithFineIOCommand(cmd uint8) Option {
	return func(d *Device) {
		d.fineIOCmd = cmd
	}
}

// WithLogger sets the logger used for probe setup messages
func WithLogger(log zerolog.Logger) Option {
	return func(d *Device) {
		d.log = log
	}
}

// FindAllDevices finds all connected J-Link probes
func FindAllDevices(usbCtx *gousb.Context, opts ...Option) ([]*Device, error) {
	devices := []*Device{}

	usbDevices, err := usbCtx.OpenDevices(func(descriptor *gousb.DeviceDesc) bool {
		return IsProbe(uint16(descriptor.Vendor), uint16(descriptor.Product))
	})
	if err != nil && len(usbDevices) == 0 {
		return nil, fmt.Errorf("failed to enumerate devices: %w", err)
	}

	for _, usbDev := range usbDevices {
		device, err := wrapDevice(usbDev, opts...)
		if err != nil {
			usbDev.Close()
			continue
		}
		devices = append(devices, device)
	}

	return devices, nil
}

func wrapDevice(usbDev *gousb.Device, opts ...Option) (*Device, error) {
	manufacturer, _ := usbDev.Manufacturer()
	product, _ := usbDev.Product()
	serial, _ := usbDev.SerialNumber()

	usbDev.SetAutoDetach(true)

	cfgNum, err := usbDev.ActiveConfigNum()
	if err != nil {
		return nil, fmt.Errorf("failed to get active configuration: %w", err)
	}

	config, err := usbDev.Config(cfgNum)
	if err != nil {
		return nil, fmt.Errorf("failed to get configuration: %w", err)
	}

	ifNum, alt, inNum, outNum, err := findBulkEndpoints(config.Desc)
	if err != nil {
		config.Close()
		return nil, err
	}

	iface, err := config.Interface(ifNum, alt)
	if err != nil {
		config.Close()
		return nil, fmt.Errorf("failed to claim interface: %w", err)
	}

	epIn, err := iface.InEndpoint(inNum)
	if err != nil {
		iface.Close()
		config.Close()
		return nil, fmt.Errorf("failed to get IN endpoint: %w", err)
	}

	epOut, err := iface.OutEndpoint(outNum)
	if err != nil {
		iface.Close()
		config.Close()
		return nil, fmt.Errorf("failed to get OUT endpoint: %w", err)
	}

	desc := usbDev.Desc
	device := &Device{
		usbDevice:    usbDev,
		usbConfig:    config,
		usbInterface: iface,
		epIn:         epIn,
		epOut:        epOut,
		Serial:       serial,
		Manufacturer: manufacturer,
		Product:      product,
		Bus:          desc.Bus,
		Address:      desc.Address,
		fineIOCmd:    CmdFineIO,
		log:          zerolog.Nop(),
		recvBuf:      make([]byte, 0, MaxPacketSize),
	}
	for _, opt := range opts {
		opt(device)
	}

	device.drainReceiveBuffer()

	return device, nil
}

// findBulkEndpoints locates the vendor specific interface carrying the
// probe's bulk command pipe.
func findBulkEndpoints(desc gousb.ConfigDesc) (ifNum, alt, inNum, outNum int, err error) {
	for _, intf := range desc.Interfaces {
		for _, setting := range intf.AltSettings {
			if setting.Class != gousb.ClassVendorSpec {
				continue
			}
			in, out := -1, -1
			for _, ep := range setting.Endpoints {
				if ep.TransferType != gousb.TransferTypeBulk {
					continue
				}
				if ep.Direction == gousb.EndpointDirectionIn {
					in = ep.Number
				} else {
					out = ep.Number
				}
			}
			if in >= 0 && out >= 0 {
				return setting.Number, setting.Alternate, in, out, nil
			}
		}
	}
	return 0, 0, 0, 0, errors.New("no vendor bulk interface found")
}

// Close closes the device and releases all resources
func (d *Device) Close() error {
	if d.usbInterface != nil {
		d.usbInterface.Close()
	}
	if d.usbConfig != nil {
		d.usbConfig.Close()
	}
	if d.usbDevice != nil {
		return d.usbDevice.Close()
	}
	return nil
}

// drainReceiveBuffer reads and discards any stale data from the receive endpoint
func (d *Device) drainReceiveBuffer() {
	buf := make([]byte, 512)
	for i := 0; i < 5; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		n, err := d.epIn.ReadContext(ctx, buf)
		cancel()
		if err != nil || n == 0 {
			break
		}
	}
	d.recvBuf = d.recvBuf[:0]
}

// String returns a human-readable description of the device
func (d *Device) String() string {
	return fmt.Sprintf("%s %s (Serial: %s)", d.Manufacturer, d.Product, d.Serial)
}

func (d *Device) write(packet []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), USBDefaultTimeout)
	defer cancel()

	n, err := d.epOut.WriteContext(ctx, packet)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("write timeout: %w", err)
		}
		return fmt.Errorf("failed to write command: %w", err)
	}
	if n != len(packet) {
		return fmt.Errorf("short write: wrote %d of %d bytes", n, len(packet))
	}
	return nil
}

// read returns exactly n bytes, buffering any surplus for the next call
func (d *Device) read(n int) ([]byte, error) {
	deadline := time.Now().Add(USBDefaultTimeout)
	buf := make([]byte, MaxPacketSize)

	for len(d.recvBuf) < n {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, fmt.Errorf("timeout waiting for %d bytes (have %d)", n, len(d.recvBuf))
		}

		ctx, cancel := context.WithTimeout(context.Background(), remaining)
		got, err := d.epIn.ReadContext(ctx, buf)
		cancel()
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("timeout waiting for %d bytes (have %d)", n, len(d.recvBuf))
			}
			return nil, fmt.Errorf("failed to read response: %w", err)
		}
		d.recvBuf = append(d.recvBuf, buf[:got]...)
	}

	out := make([]byte, n)
	copy(out, d.recvBuf[:n])
	d.recvBuf = append(d.recvBuf[:0], d.recvBuf[n:]...)
	return out, nil
}

// Version returns the probe firmware version string
func (d *Device) Version() (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.write([]byte{CmdVersion}); err != nil {
		return "", fmt.Errorf("failed to get firmware version: %w", err)
	}
	hdr, err := d.read(versionHeaderSize)
	if err != nil {
		return "", fmt.Errorf("failed to get firmware version: %w", err)
	}
	length := int(binary.LittleEndian.Uint16(hdr))
	if length == 0 {
		return "", nil
	}
	raw, err := d.read(length)
	if err != nil {
		return "", fmt.Errorf("failed to get firmware version: %w", err)
	}
	return trimNull(raw), nil
}

func trimNull(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}

// AvailableInterfaces returns the target interfaces the probe supports
func (d *Device) AvailableInterfaces() (Interfaces, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.write([]byte{CmdSelectTIF, CmdGetAvail}); err != nil {
		return 0, fmt.Errorf("failed to get interfaces: %w", err)
	}
	resp, err := d.read(interfaceMaskSize)
	if err != nil {
		return 0, fmt.Errorf("failed to get interfaces: %w", err)
	}
	return Interfaces(binary.LittleEndian.Uint32(resp)), nil
}

// SelectInterface switches the probe to tif and returns the previously
// selected interface.
func (d *Device) SelectInterface(tif Interface) (Interface, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.write([]byte{CmdSelectTIF, byte(tif)}); err != nil {
		return 0, fmt.Errorf("failed to select %s: %w", tif, err)
	}
	resp, err := d.read(interfaceMaskSize)
	if err != nil {
		return 0, fmt.Errorf("failed to select %s: %w", tif, err)
	}
	return Interface(binary.LittleEndian.Uint32(resp)), nil
}

func (d *Device) simple(cmd uint8, what string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.write([]byte{cmd}); err != nil {
		return fmt.Errorf("failed to %s: %w", what, err)
	}
	return nil
}

// SetReset releases the target reset line
func (d *Device) SetReset() error { return d.simple(CmdSetReset, "set reset") }

// ClearReset asserts the target reset line
func (d *Device) ClearReset() error { return d.simple(CmdClearReset, "clear reset") }

// SetTRST releases the TRST line
func (d *Device) SetTRST() error { return d.simple(CmdSetTRST, "set TRST") }

// ClearTRST asserts the TRST line
func (d *Device) ClearTRST() error { return d.simple(CmdClearTRST, "clear TRST") }

// Prepare puts the probe in front of a target on tif: reports the firmware,
// checks the interface is available, pulses reset and selects it.
func (d *Device) Prepare(tif Interface) error {
	version, err := d.Version()
	if err != nil {
		return err
	}
	d.log.Info().Str("serial", d.Serial).Str("firmware", version).Msg("J-Link opened")

	avail, err := d.AvailableInterfaces()
	if err != nil {
		return err
	}
	d.log.Debug().Stringer("interfaces", avail).Msg("probe interfaces")
	if !avail.Has(tif) {
		return fmt.Errorf("%w: %s (available: %s)", ErrInterfaceUnsupported, tif, avail)
	}

	if err := d.ClearReset(); err != nil {
		return err
	}
	if err := d.SetReset(); err != nil {
		return err
	}
	if _, err := d.SelectInterface(tif); err != nil {
		return err
	}
	if err := d.SetReset(); err != nil {
		return err
	}
	return d.SetTRST()
}
