package sim

import "math/rand"

// maxTickDtMs caps the elapsed time fed into one tick so a single slow
// frame can neither teleport agents nor collapse several cooldown windows
// into one update.
const maxTickDtMs = 33.0

// TickContext carries the per-tick inputs every update reads: the tick
// index, the clamped elapsed time, the sim clock, and the player's
// authoritative position and velocity captured at the top of the tick.
// Nothing in the core reads ambient globals.
type TickContext struct {
	Tick int
	DtMs float64
	Now  float64

	PlayerX, PlayerY   float64
	PlayerVX, PlayerVY float64

	rng *rand.Rand
}

// Destructible is a shootable scenery object (crate, barrel). It absorbs
// pellets but never blocks them.
type Destructible struct {
	X, Y   float64
	health float64
	dead   bool
}

// NewDestructible places a scenery object with the given health pool.
func NewDestructible(x, y, health float64) *Destructible {
	return &Destructible{X: x, Y: y, health: health}
}

// Destroyed reports whether the object has been shot out.
func (d *Destructible) Destroyed() bool { return d.dead }

// World owns the simulation state: walls, rooms, agents, scenery, the
// player, the scheduler and the shot resolver. It runs single-threaded; all
// state transitions, raycasts and damage for a tick happen synchronously
// inside Update.
type World struct {
	Walls         []Rect
	Rooms         []Rect
	Agents        []*Agent
	Destructibles []*Destructible
	Player        *Player

	rng   *rand.Rand
	sched *Scheduler
	shots *ShotResolver

	tick   int
	now    float64 // sim clock, ms
	nextID int

	events []Event

	// Wall removals requested mid-tick (doorways opening) are applied
	// between ticks, never while a pass is iterating the wall list.
	pendingWallRemovals []int
}

// NewWorld creates an empty world with a seeded RNG.
func NewWorld(seed int64) *World {
	rng := rand.New(rand.NewSource(seed)) // #nosec G404 -- game only
	return &World{
		rng:   rng,
		sched: NewScheduler(),
		shots: newShotResolver(),
	}
}

// Tick returns the current tick index.
func (w *World) Tick() int { return w.tick }

// Now returns the sim clock in milliseconds.
func (w *World) Now() float64 { return w.now }

// Scheduler exposes the deferred-work queue to collaborators (level layer,
// tests).
func (w *World) Scheduler() *Scheduler { return w.sched }

// Tracers returns the live shot traces for rendering.
func (w *World) Tracers() []*Tracer { return w.shots.Tracers() }

// AddWall appends a wall rectangle. Walls are immutable once placed; only
// whole-wall removal (a doorway opening) is supported.
func (w *World) AddWall(r Rect) {
	w.Walls = append(w.Walls, r)
}

// RemoveWall queues wall index i for removal at the next tick boundary.
func (w *World) RemoveWall(i int) {
	if i >= 0 && i < len(w.Walls) {
		w.pendingWallRemovals = append(w.pendingWallRemovals, i)
	}
}

// AddRoom registers a room bounding box and returns its identifier.
func (w *World) AddRoom(r Rect) int {
	w.Rooms = append(w.Rooms, r)
	return len(w.Rooms) - 1
}

// Room returns the bounding box for a room identifier, or a zero Rect for
// unknown ids.
func (w *World) Room(id int) Rect {
	if id < 0 || id >= len(w.Rooms) {
		return Rect{}
	}
	return w.Rooms[id]
}

// SpawnAgent creates an agent of the given tier inside room roomID. A
// missing room degrades to the spawn-box fallback path.
func (w *World) SpawnAgent(tier Tier, x, y float64, roomID int, patrol []Point) *Agent {
	a := NewAgent(w.nextID, tier, x, y, w.Room(roomID), patrol)
	w.nextID++
	w.Agents = append(w.Agents, a)
	return a
}

// AddDestructible places shootable scenery.
func (w *World) AddDestructible(x, y, health float64) *Destructible {
	d := NewDestructible(x, y, health)
	w.Destructibles = append(w.Destructibles, d)
	return d
}

// AliveAgents counts agents that have not died.
func (w *World) AliveAgents() int {
	n := 0
	for _, a := range w.Agents {
		if !a.dead {
			n++
		}
	}
	return n
}

// emit queues an event for the presentation layer.
func (w *World) emit(e Event) {
	w.events = append(w.events, e)
}

// DrainEvents returns all queued events and clears the queue. Call once per
// tick.
func (w *World) DrainEvents() []Event {
	out := w.events
	w.events = nil
	return out
}

// Update advances the simulation by dtMs (clamped to maxTickDtMs) in the
// fixed order: deferred wall mutations, scheduler, player housekeeping,
// agent behaviour, visuals, then dead-entity removal. Agents are never
// removed while the behaviour pass is iterating them.
func (w *World) Update(dtMs float64) {
	if dtMs <= 0 {
		return
	}
	if dtMs > maxTickDtMs {
		dtMs = maxTickDtMs
	}
	w.tick++
	w.now += dtMs

	w.applyWallRemovals()
	w.sched.Advance(w.now)

	ctx := &TickContext{
		Tick: w.tick,
		DtMs: dtMs,
		Now:  w.now,
		rng:  w.rng,
	}
	if w.Player != nil {
		ctx.PlayerX, ctx.PlayerY = w.Player.X, w.Player.Y
		ctx.PlayerVX, ctx.PlayerVY = w.Player.VX, w.Player.VY
		w.Player.Weapon().DecayRecoil(dtMs)
	}

	playerAlive := w.Player != nil && !w.Player.Dead()
	for _, a := range w.Agents {
		if !playerAlive {
			// No target: agents fall back to patrol housekeeping only.
			if !a.dead {
				if a.hitFlashMs > 0 {
					a.hitFlashMs -= dtMs
				}
				a.state = StatePatrol
				a.tickPatrol(ctx)
				a.applyKnockback(ctx)
			}
			continue
		}
		a.update(w, ctx)
	}

	w.shots.updateVisuals(dtMs)
	w.removeDead()
}

// applyWallRemovals applies queued doorway openings. Indices are resolved
// against the wall list as it stood when queued, highest first, so earlier
// removals cannot shift later ones.
func (w *World) applyWallRemovals() {
	if len(w.pendingWallRemovals) == 0 {
		return
	}
	// De-duplicate and sort descending.
	seen := map[int]bool{}
	var idxs []int
	for _, i := range w.pendingWallRemovals {
		if !seen[i] && i < len(w.Walls) {
			seen[i] = true
			idxs = append(idxs, i)
		}
	}
	for a := 0; a < len(idxs); a++ {
		for b := a + 1; b < len(idxs); b++ {
			if idxs[b] > idxs[a] {
				idxs[a], idxs[b] = idxs[b], idxs[a]
			}
		}
	}
	for _, i := range idxs {
		w.Walls = append(w.Walls[:i], w.Walls[i+1:]...)
	}
	w.pendingWallRemovals = w.pendingWallRemovals[:0]
}

// removeDead compacts the agent and destructible lists after the behaviour
// pass. Collect-then-remove keeps iteration safe when deaths land mid-pass.
func (w *World) removeDead() {
	keptA := w.Agents[:0]
	for _, a := range w.Agents {
		if !a.dead {
			keptA = append(keptA, a)
		}
	}
	w.Agents = keptA

	keptD := w.Destructibles[:0]
	for _, d := range w.Destructibles {
		if !d.dead {
			keptD = append(keptD, d)
		}
	}
	w.Destructibles = keptD
}
