// Package video is a stand-in for the DMG's PPU: it owns VRAM, OAM, and
// the LCD register block, and runs the real mode timing (OAM search,
// pixel transfer, h-blank, v-blank) closely enough to raise VBlank/STAT
// at the right dot counts and to emit one FrameReady event per frame.
// It does not implement the pixel FIFO or produce a tile-accurate
// picture; FrameReady is a payload-free marker, and Framebuffer holds a
// flat per-scanline shade derived from BGP instead of real pixels.
package video

import (
	"github.com/FabianRolfMatthiasNoll/dmgcore/internal/event"
	"github.com/FabianRolfMatthiasNoll/dmgcore/internal/interrupt"
)

const (
	modeHBlank   = 0
	modeVBlank   = 1
	modeOAM      = 2
	modeTransfer = 3
)

type Video struct {
	vram [0x2000]byte
	oam  [0xA0]byte

	lcdc, stat       byte
	scy, scx         byte
	ly, lyc          byte
	bgp, obp0, obp1  byte
	wy, wx           byte

	dot int

	// Framebuffer holds one flat shade per scanline (BGP-derived), filled
	// in as FrameReady fires; not a tile-accurate picture.
	Framebuffer [144]byte
}

// New returns a Video in the state the real boot ROM hands off at
// 0x0100: display on, BG/window enabled, and the default monochrome
// palettes.
func New() *Video {
	return &Video{lcdc: 0x91, bgp: 0xFC, obp0: 0xFF, obp1: 0xFF}
}

func (v *Video) mode() byte { return v.stat & 0x03 }

func (v *Video) TryRead(addr uint16) (byte, bool) {
	switch {
	case addr >= 0x8000 && addr <= 0x9FFF:
		if v.mode() == modeTransfer {
			return 0xFF, true
		}
		return v.vram[addr-0x8000], true
	case addr >= 0xFE00 && addr <= 0xFE9F:
		m := v.mode()
		if m == modeOAM || m == modeTransfer {
			return 0xFF, true
		}
		return v.oam[addr-0xFE00], true
	case addr == 0xFF40:
		return v.lcdc, true
	case addr == 0xFF41:
		return 0x80 | (v.stat & 0x7F), true
	case addr == 0xFF42:
		return v.scy, true
	case addr == 0xFF43:
		return v.scx, true
	case addr == 0xFF44:
		return v.ly, true
	case addr == 0xFF45:
		return v.lyc, true
	case addr == 0xFF47:
		return v.bgp, true
	case addr == 0xFF48:
		return v.obp0, true
	case addr == 0xFF49:
		return v.obp1, true
	case addr == 0xFF4A:
		return v.wy, true
	case addr == 0xFF4B:
		return v.wx, true
	default:
		return 0, false
	}
}

func (v *Video) TryWrite(addr uint16, value byte) bool {
	switch {
	case addr >= 0x8000 && addr <= 0x9FFF:
		if v.mode() != modeTransfer {
			v.vram[addr-0x8000] = value
		}
		return true
	case addr >= 0xFE00 && addr <= 0xFE9F:
		m := v.mode()
		if m != modeOAM && m != modeTransfer {
			v.oam[addr-0xFE00] = value
		}
		return true
	case addr == 0xFF40:
		prev := v.lcdc
		v.lcdc = value
		if value&0x80 == 0 && prev&0x80 != 0 {
			v.ly, v.dot = 0, 0
			v.setMode(modeHBlank, nil, nil)
		} else if value&0x80 != 0 && prev&0x80 == 0 {
			v.ly, v.dot = 0, 0
			v.setMode(modeOAM, nil, nil)
		}
		return true
	case addr == 0xFF41:
		v.stat = (v.stat & 0x07) | (value & 0x78)
		return true
	case addr == 0xFF42:
		v.scy = value
		return true
	case addr == 0xFF43:
		v.scx = value
		return true
	case addr == 0xFF44:
		v.ly, v.dot = 0, 0
		return true
	case addr == 0xFF45:
		v.lyc = value
		return true
	case addr == 0xFF47:
		v.bgp = value
		return true
	case addr == 0xFF48:
		v.obp0 = value
		return true
	case addr == 0xFF49:
		v.obp1 = value
		return true
	case addr == 0xFF4A:
		v.wy = value
		return true
	case addr == 0xFF4B:
		v.wx = value
		return true
	default:
		return false
	}
}

// Tick advances video state by one m-cycle (4 dots) and raises interrupts
// through ic, appending any resulting events (FrameReady).
func (v *Video) Tick(ic *interrupt.Controller, events *[]event.Event) {
	if v.lcdc&0x80 == 0 {
		return
	}
	for i := 0; i < 4; i++ {
		v.dot++
		var mode byte
		if v.ly >= 144 {
			mode = modeVBlank
		} else {
			switch {
			case v.dot < 80:
				mode = modeOAM
			case v.dot < 80+172:
				mode = modeTransfer
			default:
				mode = modeHBlank
			}
		}
		v.setMode(mode, ic, events)

		if v.dot >= 456 {
			v.dot = 0
			v.fillScanline(v.ly)
			v.ly++
			if v.ly == 144 {
				ic.Raise(interrupt.VBlank)
				*events = append(*events, event.InterruptRaised{Which: interrupt.VBlank})
				if v.stat&(1<<4) != 0 {
					ic.Raise(interrupt.LCDStat)
					*events = append(*events, event.InterruptRaised{Which: interrupt.LCDStat})
				}
				*events = append(*events, event.FrameReady{})
			} else if v.ly > 153 {
				v.ly = 0
			}
			v.updateLYC(ic, events)
			if v.ly >= 144 {
				v.setMode(modeVBlank, ic, events)
			} else {
				v.setMode(modeOAM, ic, events)
			}
		}
	}
}

func (v *Video) fillScanline(line byte) {
	if line < 144 {
		v.Framebuffer[line] = v.bgp
	}
}

func (v *Video) setMode(mode byte, ic *interrupt.Controller, events *[]event.Event) {
	prev := v.mode()
	if prev == mode {
		return
	}
	v.stat = (v.stat &^ 0x03) | (mode & 0x03)
	if ic == nil {
		return
	}
	switch mode {
	case modeHBlank:
		if v.stat&(1<<3) != 0 {
			ic.Raise(interrupt.LCDStat)
			*events = append(*events, event.InterruptRaised{Which: interrupt.LCDStat})
		}
	case modeOAM:
		if v.stat&(1<<5) != 0 {
			ic.Raise(interrupt.LCDStat)
			*events = append(*events, event.InterruptRaised{Which: interrupt.LCDStat})
		}
	}
}

func (v *Video) updateLYC(ic *interrupt.Controller, events *[]event.Event) {
	if v.ly == v.lyc {
		v.stat |= 1 << 2
		if v.stat&(1<<6) != 0 {
			ic.Raise(interrupt.LCDStat)
			*events = append(*events, event.InterruptRaised{Which: interrupt.LCDStat})
		}
	} else {
		v.stat &^= 1 << 2
	}
}
