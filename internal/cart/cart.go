package cart

import "fmt"

// Cartridge is the minimal interface the bus needs for ROM/RAM banking.
// Both methods follow the bus's Option-style contract: the bool reports
// whether this cartridge claims the address at all.
type Cartridge interface {
	TryRead(addr uint16) (byte, bool)
	TryWrite(addr uint16, value byte) bool
}

// UnsupportedCartridgeError is returned at construction time for any
// cartridge_type byte this core doesn't implement a mapper for.
type UnsupportedCartridgeError struct {
	Type byte
}

func (e *UnsupportedCartridgeError) Error() string {
	return fmt.Sprintf("unsupported cartridge type %#02x", e.Type)
}

const kib = 1024

// New picks a mapper implementation from the ROM header. Only ROM-only
// (0x00) and MBC1 (0x01-0x03) are supported; anything else fails with
// UnsupportedCartridgeError.
func New(rom []byte) (Cartridge, error) {
	h, err := ParseHeader(rom)
	if err != nil {
		return nil, err
	}
	switch h.CartType {
	case 0x00:
		if len(rom) != 32*kib {
			return nil, fmt.Errorf("rom-only cartridge must be exactly 32 KiB, got %d bytes", len(rom))
		}
		return NewROMOnly(rom), nil
	case 0x01, 0x02, 0x03:
		if len(rom) == 0 || len(rom)%(16*kib) != 0 {
			return nil, fmt.Errorf("MBC1 ROM size must be a non-zero multiple of 16 KiB, got %d bytes", len(rom))
		}
		return NewMBC1(rom, h.RAMSizeBytes), nil
	default:
		return nil, &UnsupportedCartridgeError{Type: h.CartType}
	}
}
