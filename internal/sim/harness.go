package sim

import "fmt"

// TestSim is a headless simulation harness used by tests and by
// cmd/headless-report. It mirrors the live game loop with no ebiten
// dependency, a fixed per-tick timestep, deterministic seeding and
// structured logging.
type TestSim struct {
	World  *World
	SimLog *SimLog

	dtMs float64
	seed int64

	prevStates map[int]AgentState
}

// simOptionKind controls the pass in which an option is applied.
type simOptionKind int

const (
	simOptInfra  simOptionKind = iota // seed, verbose, timestep; applied first
	simOptLayout                      // walls, rooms, scenery
	simOptEntity                      // player and agents; applied last
)

// SimOption is a builder function applied to a TestSim during construction.
type SimOption struct {
	kind simOptionKind
	fn   func(*TestSim)
}

// WithSeed sets the RNG seed for deterministic runs.
func WithSeed(seed int64) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		ts.seed = seed
	}}
}

// WithVerbose enables per-tick verbose logging.
func WithVerbose(v bool) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		ts.SimLog = NewSimLog(v)
	}}
}

// WithTickMs overrides the fixed per-tick timestep (default 16 ms).
func WithTickMs(dt float64) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		ts.dtMs = dt
	}}
}

// WithWall adds a wall rectangle.
func WithWall(x, y, w, h float64) SimOption {
	return SimOption{simOptLayout, func(ts *TestSim) {
		ts.World.AddWall(Rect{X: x, Y: y, W: w, H: h})
	}}
}

// WithRoom registers a room bounding box. Rooms are identified by the order
// they are added, starting at 0.
func WithRoom(x, y, w, h float64) SimOption {
	return SimOption{simOptLayout, func(ts *TestSim) {
		ts.World.AddRoom(Rect{X: x, Y: y, W: w, H: h})
	}}
}

// WithDestructible places shootable scenery.
func WithDestructible(x, y, health float64) SimOption {
	return SimOption{simOptLayout, func(ts *TestSim) {
		ts.World.AddDestructible(x, y, health)
	}}
}

// WithPlayer places the player.
func WithPlayer(x, y float64) SimOption {
	return SimOption{simOptEntity, func(ts *TestSim) {
		ts.World.Player = NewPlayer(x, y)
	}}
}

// WithAgent spawns an agent of the given tier in room roomID with a
// synthesized patrol path.
func WithAgent(tier Tier, x, y float64, roomID int) SimOption {
	return SimOption{simOptEntity, func(ts *TestSim) {
		ts.World.SpawnAgent(tier, x, y, roomID, nil)
	}}
}

// WithPatrollingAgent spawns an agent with an explicit patrol path.
func WithPatrollingAgent(tier Tier, x, y float64, roomID int, patrol ...Point) SimOption {
	return SimOption{simOptEntity, func(ts *TestSim) {
		ts.World.SpawnAgent(tier, x, y, roomID, patrol)
	}}
}

// NewTestSim constructs a TestSim from the given options in three ordered
// passes: infrastructure, then layout, then entities.
func NewTestSim(opts ...SimOption) *TestSim {
	ts := &TestSim{
		SimLog:     NewSimLog(false),
		dtMs:       16.0,
		seed:       1,
		prevStates: map[int]AgentState{},
	}
	for _, o := range opts {
		if o.kind == simOptInfra {
			o.fn(ts)
		}
	}
	ts.World = NewWorld(ts.seed)
	for _, o := range opts {
		if o.kind == simOptLayout {
			o.fn(ts)
		}
	}
	for _, o := range opts {
		if o.kind == simOptEntity {
			o.fn(ts)
		}
	}
	for _, a := range ts.World.Agents {
		ts.prevStates[a.id] = a.state
	}
	return ts
}

// CurrentTick returns the current simulation tick.
func (ts *TestSim) CurrentTick() int { return ts.World.Tick() }

// RunTicks advances the simulation n ticks, logging events to SimLog.
func (ts *TestSim) RunTicks(n int) {
	for i := 0; i < n; i++ {
		ts.runOneTick()
	}
}

// RunUntil advances the simulation up to maxTicks, stopping early if
// predicate returns true. Returns the tick at which the predicate was
// satisfied, or -1.
func (ts *TestSim) RunUntil(predicate func(*TestSim) bool, maxTicks int) int {
	for i := 0; i < maxTicks; i++ {
		ts.runOneTick()
		if predicate(ts) {
			return ts.World.Tick()
		}
	}
	return -1
}

// runOneTick mirrors the live loop for the headless harness and translates
// world events into SimLog entries.
func (ts *TestSim) runOneTick() {
	w := ts.World
	w.Update(ts.dtMs)
	tick := w.Tick()

	for _, ev := range w.DrainEvents() {
		switch e := ev.(type) {
		case ShotFiredEvent:
			ts.SimLog.Add(tick, e.Shooter, "combat", "shot",
				fmt.Sprintf("%s angle=%.2f wall=%v", e.Weapon, e.Angle, e.HitWall), 0)
		case WallImpactEvent:
			ts.SimLog.Add(tick, "--", "combat", "wall_impact",
				fmt.Sprintf("(%.0f,%.0f)", e.At.X, e.At.Y), 0)
		case AgentDamagedEvent:
			ts.SimLog.Add(tick, fmt.Sprintf("E%d", e.AgentID), "damage", "agent",
				fmt.Sprintf("%.0f dmg at (%.0f,%.0f)", e.Amount, e.At.X, e.At.Y), e.Amount)
		case AgentDiedEvent:
			ts.SimLog.Add(tick, fmt.Sprintf("E%d", e.AgentID), "death", "agent",
				fmt.Sprintf("%s died, loot=%s", e.Tier, e.Loot), 0)
		case PlayerDamagedEvent:
			ts.SimLog.Add(tick, "P", "damage", "player",
				fmt.Sprintf("%.1f dmg, armor=%.1f", e.Amount, e.RemainingArmor), e.Amount)
		case PlayerDiedEvent:
			ts.SimLog.Add(tick, "P", "death", "player", "run over", 0)
		case DestructibleDestroyedEvent:
			ts.SimLog.Add(tick, "--", "combat", "scenery_destroyed",
				fmt.Sprintf("(%.0f,%.0f)", e.At.X, e.At.Y), 0)
		}
	}

	for _, a := range w.Agents {
		prev, seen := ts.prevStates[a.id]
		if seen && a.state != prev {
			ts.SimLog.Add(tick, a.label, "state", "change",
				fmt.Sprintf("%s → %s", prev, a.state), 0)
		}
		ts.prevStates[a.id] = a.state

		ts.SimLog.AddVerbose(tick, a.label, "move", "position",
			fmt.Sprintf("(%.1f,%.1f)", a.x, a.y), 0)
		ts.SimLog.AddVerbose(tick, a.label, "weapon", "ammo",
			fmt.Sprintf("%d/%d", a.weapon.Ammo(), a.weapon.Reserve()), float64(a.weapon.Ammo()))
	}
}

// SimSnapshot captures a lightweight state summary.
type SimSnapshot struct {
	Tick   int
	Agents []AgentSnapshot
}

// AgentSnapshot is a lightweight copy of an agent's state at a tick.
type AgentSnapshot struct {
	ID     int
	Label  string
	Tier   Tier
	X, Y   float64
	Health float64
	State  AgentState
}

// Snapshot returns the current state of all live agents.
func (ts *TestSim) Snapshot() SimSnapshot {
	snap := SimSnapshot{Tick: ts.World.Tick()}
	for _, a := range ts.World.Agents {
		snap.Agents = append(snap.Agents, AgentSnapshot{
			ID:     a.id,
			Label:  a.label,
			Tier:   a.tier,
			X:      a.x,
			Y:      a.y,
			Health: a.health,
			State:  a.state,
		})
	}
	return snap
}
