package jlink

import (
	"bytes"
	"errors"
	"testing"
)

func TestEncodeFineIO(t *testing.T) {
	out := []byte{0x84, 0x55, 0x00, 0x00, 0x00}
	got := encodeFineIO(CmdFineIO, out, 1, 0x64)

	want := []byte{
		CmdFineIO,
		0x05, 0x00, 0x00, 0x00,
		0x01, 0x00, 0x00, 0x00,
		0x64, 0x00, 0x00, 0x00,
		0x84, 0x55, 0x00, 0x00, 0x00,
	}
	if !bytes.Equal(got, want) {
		t.Errorf("encodeFineIO() = % X, want % X", got, want)
	}
}

func TestDecodeFineIO(t *testing.T) {
	tests := []struct {
		name    string
		resp    []byte
		inLen   int
		want    []byte
		wantErr error
	}{
		{
			name:  "ok",
			resp:  []byte{0x23, 0x02, 0x00, 0x00, 0x00, 0x00},
			inLen: 2,
			want:  []byte{0x23, 0x02},
		},
		{
			name:    "status set",
			resp:    []byte{0x00, 0x01, 0x00, 0x00, 0x00},
			inLen:   1,
			wantErr: ErrFineIOStatus,
		},
		{
			name:  "short",
			resp:  []byte{0x00, 0x00},
			inLen: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeFineIO(tt.resp, tt.inLen)
			if tt.want == nil {
				if err == nil {
					t.Fatal("expected error")
				}
				if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
					t.Errorf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("decodeFineIO() error = %v", err)
			}
			if !bytes.Equal(got, tt.want) {
				t.Errorf("decodeFineIO() = % X, want % X", got, tt.want)
			}
		})
	}
}

func TestIsProbe(t *testing.T) {
	if !IsProbe(0x1366, 0x0101) {
		t.Error("J-Link base PID not recognised")
	}
	if !IsProbe(0x1366, 0x1015) {
		t.Error("J-Link CDC PID not recognised")
	}
	if IsProbe(0x1D50, 0x0101) {
		t.Error("foreign vendor accepted")
	}
	if IsProbe(0x1366, 0xBEEF) {
		t.Error("unknown product accepted")
	}
}

func TestInterfaces(t *testing.T) {
	m := Interfaces(1<<InterfaceJTAG | 1<<InterfaceFINE)
	if !m.Has(InterfaceFINE) || m.Has(InterfaceSWD) {
		t.Errorf("mask 0x%X membership wrong", uint32(m))
	}
	if m.String() != "jtag,fine" {
		t.Errorf("String() = %q", m.String())
	}
	if Interfaces(0).String() != "none" {
		t.Errorf("empty mask = %q", Interfaces(0).String())
	}

	tif, err := ParseInterface(" FINE ")
	if err != nil || tif != InterfaceFINE {
		t.Errorf("ParseInterface() = %v, %v", tif, err)
	}
	if _, err := ParseInterface("uart"); err == nil {
		t.Error("ParseInterface(uart) accepted")
	}
}

func TestSelectorParse(t *testing.T) {
	tests := []struct {
		sel     DeviceSelector
		want    parsedSelector
		wantErr bool
	}{
		{sel: "", want: parsedSelector{kind: selectFirst}},
		{sel: "#2", want: parsedSelector{kind: selectIndex, index: 2}},
		{sel: "1:10", want: parsedSelector{kind: selectBusAddr, bus: 1, addr: 10}},
		{sel: "000801234567", want: parsedSelector{kind: selectSerial, serial: "000801234567"}},
		{sel: "#x", wantErr: true},
		{sel: "#-1", wantErr: true},
		{sel: "a:10", wantErr: true},
		{sel: "1:b", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(string(tt.sel), func(t *testing.T) {
			got, err := tt.sel.parse()
			if tt.wantErr {
				if err == nil {
					t.Errorf("parse(%q) accepted", tt.sel)
				}
				return
			}
			if err != nil {
				t.Fatalf("parse(%q) error = %v", tt.sel, err)
			}
			if got != tt.want {
				t.Errorf("parse(%q) = %+v, want %+v", tt.sel, got, tt.want)
			}
		})
	}
}

func TestSelectorPick(t *testing.T) {
	devices := []*Device{
		{Serial: "000801234567", Bus: 1, Address: 4},
		{Serial: "000801234568", Bus: 1, Address: 9},
		{Serial: "000801234568", Bus: 2, Address: 3},
	}

	tests := []struct {
		sel     DeviceSelector
		want    int
		wantErr bool
	}{
		{sel: "", want: 0},
		{sel: "#1", want: 1},
		{sel: "#3", wantErr: true},
		{sel: "2:3", want: 2},
		{sel: "3:3", wantErr: true},
		{sel: "801234567", want: 0},
		{sel: "000801234568", wantErr: true},
		{sel: "999", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(string(tt.sel), func(t *testing.T) {
			p, err := tt.sel.parse()
			if err != nil {
				t.Fatal(err)
			}
			got, err := p.pick(devices)
			if tt.wantErr {
				if err == nil {
					t.Errorf("pick(%q) = %d, want error", tt.sel, got)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("pick(%q) = %d, %v, want %d", tt.sel, got, err, tt.want)
			}
		})
	}

	if _, err := (parsedSelector{kind: selectFirst}).pick(nil); err == nil {
		t.Error("pick on empty list accepted")
	}
}
