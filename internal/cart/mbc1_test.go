package cart

import (
	"errors"
	"testing"
)

func mustRead(t *testing.T, c Cartridge, addr uint16) byte {
	t.Helper()
	v, ok := c.TryRead(addr)
	if !ok {
		t.Fatalf("TryRead(%#04x) claimed unmapped", addr)
	}
	return v
}

func TestMBC1ROMBanking(t *testing.T) {
	rom := make([]byte, 128*1024)
	for bank := 0; bank < 8; bank++ {
		rom[bank*0x4000] = byte(bank)
	}
	m := NewMBC1(rom, 0)

	if got := mustRead(t, m, 0x0000); got != 0x00 {
		t.Fatalf("bank0 read got %#02x want 0x00", got)
	}
	if got := mustRead(t, m, 0x4000); got != 0x01 {
		t.Fatalf("default switchable bank got %#02x want 0x01", got)
	}

	m.TryWrite(0x2000, 0x03)
	if got := mustRead(t, m, 0x4000); got != 0x03 {
		t.Fatalf("bank3 read got %#02x want 0x03", got)
	}

	m.TryWrite(0x2000, 0x00)
	if got := mustRead(t, m, 0x4000); got != 0x01 {
		t.Fatalf("bank0->1 remap failed: got %#02x", got)
	}
}

func TestMBC1RAMBankingMode1(t *testing.T) {
	rom := make([]byte, 128*1024)
	m := NewMBC1(rom, 32*1024)

	m.TryWrite(0x0000, 0x0A) // enable RAM
	m.TryWrite(0x6000, 0x01) // mode 1: RAM banking
	m.TryWrite(0x4000, 0x02) // RAM bank 2

	m.TryWrite(0xA000, 0x77)
	if got := mustRead(t, m, 0xA000); got != 0x77 {
		t.Fatalf("RAM bank2 round trip failed: got %#02x", got)
	}
}

func TestMBC1RAMDisabledReadsFF(t *testing.T) {
	rom := make([]byte, 32*1024)
	m := NewMBC1(rom, 8*1024)
	if got := mustRead(t, m, 0xA000); got != 0xFF {
		t.Fatalf("disabled RAM should read 0xFF, got %#02x", got)
	}
}

func TestMBC1OutOfRangeClaimsUnmapped(t *testing.T) {
	rom := make([]byte, 32*1024)
	m := NewMBC1(rom, 0)
	if _, ok := m.TryRead(0xFF00); ok {
		t.Fatalf("MBC1 must not claim I/O addresses")
	}
}

func TestROMOnlyRequires32KiB(t *testing.T) {
	rom := buildROM("TEST", 0x00, 0x00, 0x00, 32*1024)
	if _, err := New(rom); err != nil {
		t.Fatalf("32 KiB ROM-only should construct cleanly: %v", err)
	}
	short := buildROM("TEST", 0x00, 0x00, 0x00, 16*1024)
	if _, err := New(short); err == nil {
		t.Fatalf("expected error for non-32-KiB ROM-only cartridge")
	}
}

func TestUnsupportedCartridgeType(t *testing.T) {
	rom := buildROM("TEST", 0x1B, 0x01, 0x00, 64*1024) // MBC5+RAM+Battery
	_, err := New(rom)
	if err == nil {
		t.Fatalf("expected UnsupportedCartridgeError for MBC5")
	}
	var unsupported *UnsupportedCartridgeError
	if !errors.As(err, &unsupported) {
		t.Fatalf("expected *UnsupportedCartridgeError, got %T: %v", err, err)
	}
	if unsupported.Type != 0x1B {
		t.Fatalf("error carries type %#02x, want 0x1B", unsupported.Type)
	}
}
