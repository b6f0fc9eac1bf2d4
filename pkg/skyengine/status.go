package skyengine

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

var (
	colorPanel  = color.RGBA{0, 0, 0, 100}
	colorBorder = color.RGBA{36, 42, 53, 255}
	colorAccent = color.RGBA{161, 210, 255, 255}
)

// statusLines is the text of the stats panel, top to bottom.
func (e *Engine) statusLines(fps, tps float64) []string {
	v := e.scene.Viewport()
	bw, bh := v.BackingSize()
	lines := []string{
		fmt.Sprintf("FPS %5.1f  TPS %5.1f", fps, tps),
		fmt.Sprintf("FRAMES %d drawn / %d skipped", e.driver.Accepted, e.driver.Skipped),
		fmt.Sprintf("STARS %d  SHOOTING %d", len(e.scene.Stars), len(e.scene.Shooting)),
		fmt.Sprintf("VIEW %.0fx%.0f @%.2fx (%dx%d)", v.Width, v.Height, v.Scale(), bw, bh),
	}
	if song, artist := e.nowPlaying(); song != "" {
		if artist != "" {
			song = song + " - " + artist
		}
		lines = append(lines, "NOW PLAYING "+song)
	}
	return lines
}

func (e *Engine) drawStats(screen *ebiten.Image) {
	if e.monoSource == nil || e.fontSource == nil {
		return
	}
	scale := e.scene.Viewport().Scale()
	margin, fontSize := 20.0*scale, 14.0*scale
	lines := e.statusLines(ebiten.ActualFPS(), ebiten.ActualTPS())

	face := &text.GoTextFace{Source: e.monoSource, Size: fontSize}
	titleFace := &text.GoTextFace{Source: e.fontSource, Size: fontSize * 0.8}

	boxW := 0.0
	for _, l := range lines {
		if w, _ := text.Measure(l, face, 0); w > boxW {
			boxW = w
		}
	}
	boxW += 30 * scale
	lineH := fontSize * 1.4
	boxH := lineH*float64(len(lines)) + fontSize + 25*scale

	x, y := float32(margin), float32(margin)
	vector.DrawFilledRect(screen, x, y, float32(boxW), float32(boxH), colorPanel, false)
	vector.StrokeRect(screen, x, y, float32(boxW), float32(boxH), 1, colorBorder, false)
	vector.DrawFilledRect(screen, x, y, float32(4*scale), float32(fontSize+10*scale), colorAccent, false)

	titleOp := &text.DrawOptions{}
	titleOp.GeoM.Translate(margin+15*scale, margin+5*scale)
	titleOp.ColorScale.Scale(1, 1, 1, 0.5)
	text.Draw(screen, "STARFIELD", titleFace, titleOp)

	for i, l := range lines {
		op := &text.DrawOptions{}
		op.GeoM.Translate(margin+15*scale, margin+fontSize+15*scale+float64(i)*lineH)
		op.ColorScale.Scale(1, 1, 1, 0.8)
		text.Draw(screen, l, face, op)
	}
}
