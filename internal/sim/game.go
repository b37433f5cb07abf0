package sim

import (
	"math"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

const (
	screenW = 960
	screenH = 640

	playerSpeed = 170.0 // units/sec
	frameDtMs   = 1000.0 / 60.0
)

// Game is the thin ebiten shell around World: it feeds input into the
// player, steps the simulation once per frame, and draws. It makes no
// combat decisions of its own.
type Game struct {
	world *World

	killFeed []string
	prevKeys map[ebiten.Key]bool
}

// New builds the playable demo level: a bordered arena split into two
// rooms with a gated doorway, one squad per room, and scattered scenery.
func New() *Game {
	w := NewWorld(time.Now().UnixNano())

	const wallT = 16.0
	// Arena border.
	w.AddWall(Rect{X: 0, Y: 0, W: screenW, H: wallT})
	w.AddWall(Rect{X: 0, Y: screenH - wallT, W: screenW, H: wallT})
	w.AddWall(Rect{X: 0, Y: 0, W: wallT, H: screenH})
	w.AddWall(Rect{X: screenW - wallT, Y: 0, W: wallT, H: screenH})
	// Divider with a doorway gap; the lower segment is the "gate" that
	// opens when the left room is cleared.
	w.AddWall(Rect{X: 470, Y: wallT, W: wallT, H: 220})
	gate := len(w.Walls)
	w.AddWall(Rect{X: 470, Y: 300, W: wallT, H: screenH - 300 - wallT})

	left := w.AddRoom(Rect{X: wallT, Y: wallT, W: 470 - wallT, H: screenH - 2*wallT})
	right := w.AddRoom(Rect{X: 470 + wallT, Y: wallT, W: screenW - 470 - 2*wallT, H: screenH - 2*wallT})

	w.SpawnAgent(TierGrunt, 200, 150, left, nil)
	w.SpawnAgent(TierGrunt, 320, 420, left, nil)
	w.SpawnAgent(TierSoldier, 620, 180, right, nil)
	w.SpawnAgent(TierSoldier, 760, 440, right, nil)
	w.SpawnAgent(TierCaptain, 820, 300, right, nil)

	w.AddDestructible(240, 300, 30)
	w.AddDestructible(600, 480, 30)
	w.AddDestructible(700, 120, 30)

	w.Player = NewPlayer(90, screenH/2)

	g := &Game{
		world:    w,
		prevKeys: map[ebiten.Key]bool{},
	}
	g.gateWatch(gate, left)
	return g
}

// gateWatch opens the doorway once every agent in the left room is dead,
// polling through the scheduler rather than checking every frame.
func (g *Game) gateWatch(gateWall, leftRoom int) {
	room := g.world.Room(leftRoom)
	var check func()
	check = func() {
		for _, a := range g.world.Agents {
			if !a.dead && room.Contains(a.x, a.y) {
				g.world.sched.Schedule(g.world.now, 500, check)
				return
			}
		}
		g.world.RemoveWall(gateWall)
	}
	g.world.sched.Schedule(g.world.now, 500, check)
}

func (g *Game) keyPressed(k ebiten.Key) bool {
	now := ebiten.IsKeyPressed(k)
	was := g.prevKeys[k]
	g.prevKeys[k] = now
	return now && !was
}

// Update implements ebiten.Game.
func (g *Game) Update() error {
	w := g.world
	p := w.Player

	if p != nil && !p.Dead() {
		var vx, vy float64
		if ebiten.IsKeyPressed(ebiten.KeyW) || ebiten.IsKeyPressed(ebiten.KeyArrowUp) {
			vy -= 1
		}
		if ebiten.IsKeyPressed(ebiten.KeyS) || ebiten.IsKeyPressed(ebiten.KeyArrowDown) {
			vy += 1
		}
		if ebiten.IsKeyPressed(ebiten.KeyA) || ebiten.IsKeyPressed(ebiten.KeyArrowLeft) {
			vx -= 1
		}
		if ebiten.IsKeyPressed(ebiten.KeyD) || ebiten.IsKeyPressed(ebiten.KeyArrowRight) {
			vx += 1
		}
		if vx != 0 || vy != 0 {
			n := math.Hypot(vx, vy)
			vx, vy = vx/n*playerSpeed, vy/n*playerSpeed
		}
		p.SetVelocity(vx, vy)
		nx := p.X + vx*frameDtMs/1000
		ny := p.Y + vy*frameDtMs/1000
		if !g.insideWall(nx, p.Y) {
			p.X = nx
		}
		if !g.insideWall(p.X, ny) {
			p.Y = ny
		}

		if g.keyPressed(ebiten.KeyR) {
			w.PlayerReload()
		}
		if g.keyPressed(ebiten.KeyTab) {
			p.CycleWeapon()
		}

		// Held fire is fine: weapon cadence gates the actual shots and an
		// empty magazine degrades into an idempotent reload attempt.
		if ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
			mx, my := ebiten.CursorPosition()
			w.PlayerFire(HeadingTo(p.X, p.Y, float64(mx), float64(my)))
		}
	}

	w.Update(frameDtMs)
	g.consumeEvents()
	return nil
}

// insideWall reports whether the point sits inside any wall, with the
// player's body radius as padding.
func (g *Game) insideWall(x, y float64) bool {
	const bodyR = 7.0
	for _, wl := range g.world.Walls {
		pad := Rect{X: wl.X - bodyR, Y: wl.Y - bodyR, W: wl.W + 2*bodyR, H: wl.H + 2*bodyR}
		if pad.Contains(x, y) {
			return true
		}
	}
	return false
}

// consumeEvents drains world notifications into the HUD kill feed.
func (g *Game) consumeEvents() {
	for _, ev := range g.world.DrainEvents() {
		switch e := ev.(type) {
		case AgentDiedEvent:
			line := e.Tier.String() + " down"
			if e.Loot != LootNone {
				line += " (+" + e.Loot.String() + ")"
			}
			g.killFeed = append(g.killFeed, line)
		case PlayerDiedEvent:
			g.killFeed = append(g.killFeed, "you died")
		}
	}
	if len(g.killFeed) > 6 {
		g.killFeed = g.killFeed[len(g.killFeed)-6:]
	}
}

// Layout implements ebiten.Game.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return screenW, screenH
}
