package cart

// MBC1 implements the minimal MBC1 ROM/RAM banking described in the
// bank-switching rules: writes to 0x2000-0x3FFF set the low 5 bits of the
// current ROM bank (masked to the number of available banks), writes to
// 0x4000-0x5FFF set two upper bits, and reads at 0x4000-0x7FFF return the
// selected bank. Writes to 0x6000-0x7FFF select the banking mode: in mode
// 0, reads at 0x0000-0x3FFF return bank 0 and external RAM uses bank 0;
// in mode 1, 0x0000-0x3FFF shows bank (upper bits << 5) and external RAM
// uses the bank named by the upper bits.
type MBC1 struct {
	rom []byte
	ram []byte

	romBankLow5       byte
	ramBankOrRomHigh2 byte
	ramEnabled        bool
	modeSelect        byte

	numBanks byte
}

func NewMBC1(rom []byte, ramSize int) *MBC1 {
	m := &MBC1{rom: rom, romBankLow5: 1}
	m.numBanks = byte(len(rom) / (16 * kib))
	if ramSize > 0 {
		m.ram = make([]byte, ramSize)
	}
	return m
}

func (m *MBC1) TryRead(addr uint16) (byte, bool) {
	switch {
	case addr < 0x4000:
		if m.modeSelect == 0 {
			if int(addr) < len(m.rom) {
				return m.rom[addr], true
			}
			return 0xFF, true
		}
		bank := (m.ramBankOrRomHigh2 & 0x03) << 5
		off := int(bank)*0x4000 + int(addr)
		if off < len(m.rom) {
			return m.rom[off], true
		}
		return 0xFF, true
	case addr < 0x8000:
		bank := m.effectiveROMBank()
		off := int(bank)*0x4000 + int(addr-0x4000)
		if off < len(m.rom) {
			return m.rom[off], true
		}
		return 0xFF, true
	case addr >= 0xA000 && addr <= 0xBFFF:
		if !m.ramEnabled || len(m.ram) == 0 {
			return 0xFF, true
		}
		off := m.ramOffset(addr)
		if off >= 0 && off < len(m.ram) {
			return m.ram[off], true
		}
		return 0xFF, true
	default:
		return 0, false
	}
}

func (m *MBC1) TryWrite(addr uint16, value byte) bool {
	switch {
	case addr < 0x2000:
		m.ramEnabled = value&0x0F == 0x0A
		return true
	case addr < 0x4000:
		bank := value & 0x1F
		if bank == 0 {
			bank = 1
		}
		m.romBankLow5 = bank
		return true
	case addr < 0x6000:
		m.ramBankOrRomHigh2 = value & 0x03
		return true
	case addr < 0x8000:
		m.modeSelect = value & 0x01
		return true
	case addr >= 0xA000 && addr <= 0xBFFF:
		if !m.ramEnabled || len(m.ram) == 0 {
			return true
		}
		off := m.ramOffset(addr)
		if off >= 0 && off < len(m.ram) {
			m.ram[off] = value
		}
		return true
	default:
		return false
	}
}

func (m *MBC1) ramOffset(addr uint16) int {
	ramBank := 0
	if m.modeSelect == 1 {
		ramBank = int(m.ramBankOrRomHigh2 & 0x03)
	}
	return ramBank*0x2000 + int(addr-0xA000)
}

func (m *MBC1) effectiveROMBank() byte {
	high := m.ramBankOrRomHigh2 & 0x03
	bank := m.romBankLow5 | (high << 5)
	if m.numBanks > 0 {
		bank &= m.numBanks - 1
		if bank == 0 {
			bank = 1
		}
	}
	return bank
}
