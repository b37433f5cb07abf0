package sim

import (
	"fmt"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/basicfont"
)

var (
	floorColor  = color.RGBA{R: 26, G: 28, B: 32, A: 255}
	wallColor   = color.RGBA{R: 90, G: 92, B: 100, A: 255}
	crateColor  = color.RGBA{R: 140, G: 104, B: 58, A: 255}
	playerColor = color.RGBA{R: 80, G: 220, B: 120, A: 255}
	hudColor    = color.RGBA{R: 220, G: 220, B: 220, A: 255}

	tierColors = [tierCount]color.RGBA{
		TierGrunt:   {R: 200, G: 90, B: 60, A: 255},
		TierSoldier: {R: 220, G: 60, B: 60, A: 255},
		TierCaptain: {R: 250, G: 40, B: 110, A: 255},
	}
)

// Draw implements ebiten.Game.
func (g *Game) Draw(screen *ebiten.Image) {
	w := g.world
	screen.Fill(floorColor)

	for _, wl := range w.Walls {
		vector.DrawFilledRect(screen, float32(wl.X), float32(wl.Y),
			float32(wl.W), float32(wl.H), wallColor, false)
	}
	for _, d := range w.Destructibles {
		vector.DrawFilledRect(screen, float32(d.X-8), float32(d.Y-8), 16, 16, crateColor, false)
	}
	for _, a := range w.Agents {
		drawAgent(screen, a)
	}
	drawTracers(screen, w.shots)
	drawPlayer(screen, w)
	g.drawHUD(screen)
}

func drawAgent(screen *ebiten.Image, a *Agent) {
	c := tierColors[a.tier]
	if a.HitFlash() {
		c = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	}
	vector.DrawFilledCircle(screen, float32(a.x), float32(a.y), 7, c, true)

	// Health bar above the head.
	frac := clamp01(a.health / a.spec.maxHealth)
	vector.DrawFilledRect(screen, float32(a.x-9), float32(a.y-14), 18, 3,
		color.RGBA{R: 40, G: 40, B: 40, A: 200}, false)
	vector.DrawFilledRect(screen, float32(a.x-9), float32(a.y-14), float32(18*frac), 3,
		color.RGBA{R: 120, G: 220, B: 80, A: 220}, false)

	// State ring: chase is amber, attack is white.
	switch a.state {
	case StateChase:
		vector.StrokeCircle(screen, float32(a.x), float32(a.y), 9, 1,
			color.RGBA{R: 240, G: 180, B: 40, A: 180}, true)
	case StateAttack:
		vector.StrokeCircle(screen, float32(a.x), float32(a.y), 9, 1,
			color.RGBA{R: 255, G: 255, B: 255, A: 200}, true)
	}
}

func drawPlayer(screen *ebiten.Image, w *World) {
	p := w.Player
	if p == nil {
		return
	}
	c := playerColor
	if p.Dead() {
		c = color.RGBA{R: 100, G: 100, B: 100, A: 255}
	} else if p.Invincible(w.now) {
		c = color.RGBA{R: 180, G: 255, B: 200, A: 255}
	}
	vector.DrawFilledCircle(screen, float32(p.X), float32(p.Y), 7, c, true)
}

func drawTracers(screen *ebiten.Image, sr *ShotResolver) {
	for _, t := range sr.tracers {
		fade := 1.0 - t.Progress()
		a := uint8(200 * fade)
		c := color.RGBA{R: 255, G: 230, B: 140, A: a}
		if t.ByAgent {
			c = color.RGBA{R: 255, G: 120, B: 90, A: a}
		}
		hx, hy := t.Head()
		tx, ty := t.Tail()
		vector.StrokeLine(screen, float32(tx), float32(ty),
			float32(hx), float32(hy), 1, c, false)
	}
	for _, f := range sr.flashes {
		fade := 1.0 - clamp01(f.ageMs/flashLifetimeMs)
		r := float32(4 * fade)
		vector.DrawFilledCircle(screen, float32(f.x), float32(f.y), r,
			color.RGBA{R: 255, G: 240, B: 180, A: uint8(220 * fade)}, false)
		ex := f.x + math.Cos(f.angle)*8*fade
		ey := f.y + math.Sin(f.angle)*8*fade
		vector.StrokeLine(screen, float32(f.x), float32(f.y), float32(ex), float32(ey), 1,
			color.RGBA{R: 255, G: 240, B: 160, A: uint8(160 * fade)}, false)
	}
}

func (g *Game) drawHUD(screen *ebiten.Image) {
	p := g.world.Player
	if p == nil {
		return
	}
	wp := p.Weapon()
	status := fmt.Sprintf("HP %.0f/%.0f  ARM %.0f  |  %s %d/%d",
		p.Health, p.MaxHealth, p.Armor, wp.Name(), wp.Ammo(), wp.Reserve())
	if wp.Reloading() {
		status += "  [reloading]"
	}
	text.Draw(screen, status, basicfont.Face7x13, 24, screenH-20, hudColor)

	for i, line := range g.killFeed {
		text.Draw(screen, line, basicfont.Face7x13, screenW-180, 30+i*16, hudColor)
	}
}
