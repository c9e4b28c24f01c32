package main

import (
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/FabianRolfMatthiasNoll/dmgcore/internal/event"
	"github.com/FabianRolfMatthiasNoll/dmgcore/internal/gameboy"
	"github.com/FabianRolfMatthiasNoll/dmgcore/internal/joypad"
)

const (
	screenWidth  = 160
	screenHeight = 144
	displayScale = 3
)

// game adapts a *gameboy.GameBoy to the ebiten.Game interface: it steps
// the core until a frame completes (or a generous per-Update step cap is
// hit, guarding against a ROM that never reaches VBlank) and blits the
// stand-in PPU's per-scanline framebuffer.
type game struct {
	gb  *gameboy.GameBoy
	tex *ebiten.Image
}

func runDisplay(gb *gameboy.GameBoy) error {
	ebiten.SetWindowSize(screenWidth*displayScale, screenHeight*displayScale)
	ebiten.SetWindowTitle("gbrun")
	return ebiten.RunGame(&game{gb: gb})
}

func (g *game) Update() error {
	g.pollButtons()
	for i := 0; i < 500_000; i++ {
		evs, err := g.gb.Step()
		if err != nil {
			return err
		}
		for _, e := range evs {
			if _, ok := e.(event.FrameReady); ok {
				return nil
			}
		}
	}
	return nil
}

func (g *game) pollButtons() {
	press := func(b joypad.Button, held bool) { g.gb.Bus.SetButton(b, held) }
	press(joypad.Right, ebiten.IsKeyPressed(ebiten.KeyArrowRight))
	press(joypad.Left, ebiten.IsKeyPressed(ebiten.KeyArrowLeft))
	press(joypad.Up, ebiten.IsKeyPressed(ebiten.KeyArrowUp))
	press(joypad.Down, ebiten.IsKeyPressed(ebiten.KeyArrowDown))
	press(joypad.A, ebiten.IsKeyPressed(ebiten.KeyZ))
	press(joypad.B, ebiten.IsKeyPressed(ebiten.KeyX))
	press(joypad.Start, ebiten.IsKeyPressed(ebiten.KeyEnter))
	press(joypad.Select, ebiten.IsKeyPressed(ebiten.KeyShiftRight))
}

// Draw blits one flat shade per scanline; the stand-in PPU (internal/video)
// doesn't implement the pixel FIFO, so this is a banded approximation of
// the real picture, not a tile-accurate one.
func (g *game) Draw(screen *ebiten.Image) {
	if g.tex == nil {
		g.tex = ebiten.NewImage(screenWidth, screenHeight)
	}
	fb := g.gb.Bus.Video().Framebuffer
	pixels := make([]byte, screenWidth*screenHeight*4)
	for y := 0; y < screenHeight; y++ {
		shade := fb[y]
		row := y * screenWidth * 4
		for x := 0; x < screenWidth; x++ {
			off := row + x*4
			pixels[off] = shade
			pixels[off+1] = shade
			pixels[off+2] = shade
			pixels[off+3] = 0xFF
		}
	}
	g.tex.WritePixels(pixels)
	screen.DrawImage(g.tex, nil)
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return screenWidth, screenHeight
}
