package sim

import (
	"fmt"
	"math"
	"math/rand"
)

// --- Behaviour constants ---

const (
	memoryWindowMs   = 3000.0 // chase persists this long after last sighting
	patrolSpeedMul   = 0.55   // patrol moves at this fraction of base speed
	waypointRadius   = 6.0    // arrival threshold for patrol waypoints
	roomMargin       = 18.0   // interior safety margin agents never cross
	leadPredictionMs = 380.0  // soldier-tier aim-ahead window
	flankRadius      = 90.0   // captain-tier offset distance around the player
	flankRecalcMs    = 1200.0 // how often the flanking point is re-rolled
	spawnBoxHalf     = 48.0   // fallback patrol box half-size around spawn
)

// Tier is an agent's class. It determines detection range, attack range,
// speed, armament and fire cadence; the set is closed and parameterised by
// tierTable.
type Tier int

const (
	TierGrunt Tier = iota
	TierSoldier
	TierCaptain
	tierCount // sentinel
)

func (t Tier) String() string {
	switch t {
	case TierGrunt:
		return "grunt"
	case TierSoldier:
		return "soldier"
	case TierCaptain:
		return "captain"
	default:
		return "unknown"
	}
}

// tierSpec bundles a tier's perception, movement and combat parameters.
// attackRange < detectionRange for every tier; the memory radius used while
// hunting is detectionRange/2.
type tierSpec struct {
	maxHealth      float64
	detectionRange float64
	attackRange    float64
	speed          float64 // chase speed, units/sec
	cooldownMs     float64 // minimum ms between shots
	precision      float64 // overrides the armament's archetype precision
	weapon         WeaponKind
	lootChance     float64 // probability of dropping anything
}

// tierTable maps each tier to its parameters. Stronger tiers see further,
// fire faster and aim better.
var tierTable = [tierCount]tierSpec{
	TierGrunt:   {maxHealth: 40, detectionRange: 180, attackRange: 120, speed: 70, cooldownMs: 1400, precision: 0.55, weapon: WeaponPistol, lootChance: 0.35},
	TierSoldier: {maxHealth: 70, detectionRange: 220, attackRange: 180, speed: 90, cooldownMs: 900, precision: 0.72, weapon: WeaponRifle, lootChance: 0.55},
	TierCaptain: {maxHealth: 110, detectionRange: 280, attackRange: 210, speed: 110, cooldownMs: 550, precision: 0.86, weapon: WeaponSMG, lootChance: 0.85},
}

// AgentState is the behaviour state of a hostile agent. Death removes the
// agent rather than transitioning it.
type AgentState int

const (
	StatePatrol AgentState = iota
	StateChase
	StateAttack
)

func (s AgentState) String() string {
	switch s {
	case StatePatrol:
		return "patrol"
	case StateChase:
		return "chase"
	case StateAttack:
		return "attack"
	default:
		return "unknown"
	}
}

// Agent is a hostile AI-controlled entity. Its x,y fields are the
// authoritative position: every decision reads them directly, never a
// cached copy.
type Agent struct {
	id    int
	label string
	tier  Tier
	spec  tierSpec

	x, y   float64
	health float64
	state  AgentState
	dead   bool

	// bounds is the movement box: the home room's interior margin, or a
	// spawn box when the agent has no usable room. Never degenerate.
	bounds Rect
	weapon *Weapon

	patrol    []Point
	patrolIdx int

	lastSpottedAt float64 // sim ms the player was last seen
	lastAttackAt  float64

	// Captain flanking point, re-rolled every flankRecalcMs.
	flankX, flankY float64
	flankRolledAt  float64

	// Transient knockback impulse, units/sec, damped over knockbackDecayMs.
	kbVX, kbVY float64

	hitFlashMs float64 // presentation tint countdown
}

// NewAgent creates an agent of the given tier at (x,y) with home room room.
// A nil or empty patrol path is synthesized from the room bounds, or from a
// small box around the spawn point when the room is degenerate.
func NewAgent(id int, tier Tier, x, y float64, room Rect, patrol []Point) *Agent {
	spec := tierTable[tier]
	a := &Agent{
		id:            id,
		label:         fmt.Sprintf("E%d", id),
		tier:          tier,
		spec:          spec,
		x:             x,
		y:             y,
		health:        spec.maxHealth,
		state:         StatePatrol,
		weapon:        newTierWeapon(spec.weapon, spec.precision),
		lastSpottedAt: math.Inf(-1),
		lastAttackAt:  math.Inf(-1),
	}
	a.bounds = room.Inset(roomMargin)
	if a.bounds.W <= 0 || a.bounds.H <= 0 {
		a.bounds = Rect{X: x - spawnBoxHalf, Y: y - spawnBoxHalf, W: 2 * spawnBoxHalf, H: 2 * spawnBoxHalf}
	}
	a.patrol = clampPatrol(patrol, a.bounds)
	if len(a.patrol) == 0 {
		a.patrol = boundsPatrol(a.bounds)
	}
	return a
}

// ID returns the agent's identity.
func (a *Agent) ID() int { return a.id }

// Label returns the short display label ("E3").
func (a *Agent) Label() string { return a.label }

// Tier returns the agent's class.
func (a *Agent) Tier() Tier { return a.tier }

// Position returns the authoritative position.
func (a *Agent) Position() (float64, float64) { return a.x, a.y }

// Health returns current health.
func (a *Agent) Health() float64 { return a.health }

// MaxHealth returns the tier's health pool.
func (a *Agent) MaxHealth() float64 { return a.spec.maxHealth }

// State returns the current behaviour state.
func (a *Agent) State() AgentState { return a.state }

// Dead reports whether the death sequence has run.
func (a *Agent) Dead() bool { return a.dead }

// HitFlash reports whether the hit tint is active.
func (a *Agent) HitFlash() bool { return a.hitFlashMs > 0 }

// clampPatrol drops waypoints outside the movement box so a bad path can
// never walk an agent into a wall. Malformed paths degrade to nil, which
// triggers synthesis.
func clampPatrol(patrol []Point, bounds Rect) []Point {
	var out []Point
	for _, p := range patrol {
		if bounds.Contains(p.X, p.Y) {
			out = append(out, p)
		}
	}
	return out
}

// boundsPatrol builds a cyclic path from the movement box corners. For a
// roomed agent these are the room's interior corners; for a room-less agent,
// the spawn box corners.
func boundsPatrol(b Rect) []Point {
	return []Point{
		{X: b.X, Y: b.Y},
		{X: b.X + b.W, Y: b.Y},
		{X: b.X + b.W, Y: b.Y + b.H},
		{X: b.X, Y: b.Y + b.H},
	}
}

// canSeePlayer is the perception visibility input. Walls intentionally do
// not hide the player from agents; shot obstruction is handled separately by
// the resolver. See DESIGN.md before changing this.
func (a *Agent) canSeePlayer(ctx *TickContext) bool {
	return true
}

// updateState evaluates the perception inputs and applies the transition
// rules in priority order: attack beats chase beats patrol.
func (a *Agent) updateState(ctx *TickContext) {
	dist := math.Hypot(ctx.PlayerX-a.x, ctx.PlayerY-a.y)
	visible := a.canSeePlayer(ctx)

	switch {
	case visible && dist <= a.spec.attackRange:
		a.state = StateAttack
		a.lastSpottedAt = ctx.Now
	case visible && dist <= a.spec.detectionRange:
		a.state = StateChase
		a.lastSpottedAt = ctx.Now
	case !visible && dist <= a.spec.detectionRange/2 && ctx.Now-a.lastSpottedAt <= memoryWindowMs:
		// Still hunting the last known area.
		a.state = StateChase
	default:
		a.state = StatePatrol
	}
}

// update runs one behaviour tick: state evaluation, movement or firing, and
// transient timer decay.
func (a *Agent) update(w *World, ctx *TickContext) {
	if a.dead {
		return
	}

	if a.hitFlashMs > 0 {
		a.hitFlashMs -= ctx.DtMs
	}
	a.weapon.DecayRecoil(ctx.DtMs)

	a.updateState(ctx)

	switch a.state {
	case StatePatrol:
		a.tickPatrol(ctx)
	case StateChase:
		a.tickChase(ctx)
	case StateAttack:
		a.tickAttack(w, ctx)
	}

	a.applyKnockback(ctx)
}

// tickPatrol follows the cyclic waypoint list at reduced speed, advancing on
// arrival.
func (a *Agent) tickPatrol(ctx *TickContext) {
	if len(a.patrol) == 0 {
		return
	}
	wp := a.patrol[a.patrolIdx]
	dx := wp.X - a.x
	dy := wp.Y - a.y
	if math.Hypot(dx, dy) <= waypointRadius {
		a.patrolIdx = (a.patrolIdx + 1) % len(a.patrol)
		wp = a.patrol[a.patrolIdx]
		dx = wp.X - a.x
		dy = wp.Y - a.y
	}
	a.moveToward(wp.X, wp.Y, a.spec.speed*patrolSpeedMul, ctx)
}

// tickChase closes on a tier-specific pursuit point: grunts run straight at
// the player, soldiers lead the player's velocity, captains swing around a
// flanking offset. Reaching attack range stops movement and forces the
// attack state on the same tick, so an agent never slides past its firing
// distance.
func (a *Agent) tickChase(ctx *TickContext) {
	tx, ty := ctx.PlayerX, ctx.PlayerY
	switch a.tier {
	case TierSoldier:
		tx += ctx.PlayerVX * leadPredictionMs / 1000
		ty += ctx.PlayerVY * leadPredictionMs / 1000
	case TierCaptain:
		if ctx.Now-a.flankRolledAt >= flankRecalcMs {
			ang := ctx.rng.Float64() * 2 * math.Pi
			a.flankX = flankRadius * math.Cos(ang)
			a.flankY = flankRadius * math.Sin(ang)
			a.flankRolledAt = ctx.Now
		}
		tx += a.flankX
		ty += a.flankY
	}

	if math.Hypot(ctx.PlayerX-a.x, ctx.PlayerY-a.y) <= a.spec.attackRange {
		a.state = StateAttack
		return
	}
	a.moveToward(tx, ty, a.spec.speed, ctx)
}

// tickAttack halts and fires at the player on the tier's cadence. Losing
// sight of the player reverts to chase. An empty magazine short-circuits to
// a reload and never reaches the resolver.
func (a *Agent) tickAttack(w *World, ctx *TickContext) {
	if !a.canSeePlayer(ctx) {
		a.state = StateChase
		return
	}
	if ctx.Now-a.lastAttackAt < a.spec.cooldownMs {
		return
	}
	if a.weapon.Ammo() == 0 {
		a.weapon.StartReload(w.sched, ctx.Now)
		return
	}
	if !a.weapon.CanFire(ctx.Now) {
		return
	}
	aim := HeadingTo(a.x, a.y, ctx.PlayerX, ctx.PlayerY)
	final := aim + a.weapon.ShotAngleOffset(ctx.rng)
	a.weapon.Fire(ctx.Now)
	a.lastAttackAt = ctx.Now
	w.shots.resolveAgentShot(w, a, final)
}

// moveToward moves at speed (units/sec) toward (tx,ty), normalised so
// diagonals are no faster than axis travel, then containment-clamped.
func (a *Agent) moveToward(tx, ty, speed float64, ctx *TickContext) {
	dx := tx - a.x
	dy := ty - a.y
	d := math.Hypot(dx, dy)
	if d < 1e-9 {
		return
	}
	step := speed * ctx.DtMs / 1000
	if step > d {
		step = d
	}
	a.applyVelocity(dx/d*step, dy/d*step)
}

// applyKnockback integrates and damps the transient hit impulse.
func (a *Agent) applyKnockback(ctx *TickContext) {
	if a.kbVX == 0 && a.kbVY == 0 {
		return
	}
	a.applyVelocity(a.kbVX*ctx.DtMs/1000, a.kbVY*ctx.DtMs/1000)
	damp := 1 - ctx.DtMs/knockbackDecayMs
	if damp <= 0 {
		a.kbVX, a.kbVY = 0, 0
		return
	}
	a.kbVX *= damp
	a.kbVY *= damp
}

// applyVelocity applies a per-tick displacement with the containment rule:
// any component that would cross the movement box is zeroed outright for
// this tick. The resulting wall-hug stall is intentional.
func (a *Agent) applyVelocity(dx, dy float64) {
	nx := a.x + dx
	if nx < a.bounds.X || nx > a.bounds.X+a.bounds.W {
		dx = 0
	}
	ny := a.y + dy
	if ny < a.bounds.Y || ny > a.bounds.Y+a.bounds.H {
		dy = 0
	}
	a.x += dx
	a.y += dy
}

// rollLoot picks the agent's death drop. Stronger tiers drop better and
// more often.
func (a *Agent) rollLoot(rng *rand.Rand) LootKind {
	if rng.Float64() > a.spec.lootChance {
		return LootNone
	}
	roll := rng.Float64()
	switch a.tier {
	case TierCaptain:
		if roll < 0.4 {
			return LootMedkit
		}
		if roll < 0.75 {
			return LootArmorShard
		}
		return LootAmmo
	case TierSoldier:
		if roll < 0.25 {
			return LootArmorShard
		}
		return LootAmmo
	default:
		if roll < 0.1 {
			return LootArmorShard
		}
		return LootAmmo
	}
}
