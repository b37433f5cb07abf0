package sim

import "math"

const (
	tracerLifetimeMs = 160.0 // how long a shot trace persists on screen
	tracerStreakLen  = 34.0  // visible streak length behind the head, units
	flashLifetimeMs  = 70.0  // muzzle/impact flash persistence
)

// Tracer is a short-lived visual representing one pellet's flight path. The
// visible streak travels at the weapon's projectile speed; resolution itself
// is instantaneous.
type Tracer struct {
	FromX, FromY float64
	ToX, ToY     float64
	Hit          bool // terminated on a wall or a body
	ByAgent      bool
	speed        float64 // units/sec
	dist         float64
	ageMs        float64
}

// Done reports whether the tracer should be removed.
func (t *Tracer) Done() bool { return t.ageMs >= tracerLifetimeMs }

// Progress returns the tracer's age as a 0..1 fraction of its lifetime.
func (t *Tracer) Progress() float64 { return clamp01(t.ageMs / tracerLifetimeMs) }

// Head returns the streak's leading point, advancing along the trace at the
// projectile speed and clamping at the endpoint.
func (t *Tracer) Head() (float64, float64) {
	return t.at(math.Min(t.dist, t.speed*t.ageMs/1000))
}

// Tail returns the streak's trailing point, tracerStreakLen behind the head.
func (t *Tracer) Tail() (float64, float64) {
	return t.at(math.Max(0, math.Min(t.dist, t.speed*t.ageMs/1000)-tracerStreakLen))
}

func (t *Tracer) at(d float64) (float64, float64) {
	if t.dist < 1e-9 {
		return t.FromX, t.FromY
	}
	f := d / t.dist
	return t.FromX + (t.ToX-t.FromX)*f, t.FromY + (t.ToY-t.FromY)*f
}

// impactFlash is a short-lived burst at a muzzle or wall-impact point.
type impactFlash struct {
	x, y  float64
	angle float64
	ageMs float64
}

// ShotResolver turns trigger pulls into damage: it fans pellets, truncates
// them against walls, selects at most one victim per pellet, and owns the
// tracer/flash visuals. Aim perturbation happens at the call site, before
// the round is spent, so a shot flies on the recoil accumulated by the
// shots before it.
type ShotResolver struct {
	tracers []*Tracer
	flashes []*impactFlash
}

func newShotResolver() *ShotResolver {
	return &ShotResolver{}
}

// Tracers returns the live tracer slice for rendering.
func (sr *ShotResolver) Tracers() []*Tracer { return sr.tracers }

// pelletAngles fans the weapon's pellet count evenly across its spread,
// centered on finalAngle. Single-projectile weapons get exactly finalAngle.
func pelletAngles(finalAngle float64, wp *Weapon) []float64 {
	n := wp.spec.pellets
	if n <= 1 {
		return []float64{finalAngle}
	}
	spread := wp.spec.spreadDeg * math.Pi / 180
	angles := make([]float64, n)
	for i := 0; i < n; i++ {
		angles[i] = finalAngle - spread/2 + spread*float64(i)/float64(n-1)
	}
	return angles
}

// resolvePlayerShot resolves one player trigger pull. finalAngle is the aim
// angle already perturbed by precision and recoil; the weapon has already
// spent the round. Callers must short-circuit an empty magazine to a reload
// and never reach this point.
func (sr *ShotResolver) resolvePlayerShot(w *World, p *Player, finalAngle float64) {
	wp := p.Weapon()
	for _, ang := range pelletAngles(finalAngle, wp) {
		sr.resolvePellet(w, p.X, p.Y, ang, wp, false, "P")
	}
	sr.flashes = append(sr.flashes, &impactFlash{x: p.X, y: p.Y, angle: finalAngle})
}

// resolveAgentShot resolves one agent trigger pull against the player.
func (sr *ShotResolver) resolveAgentShot(w *World, a *Agent, finalAngle float64) {
	wp := a.weapon
	for _, ang := range pelletAngles(finalAngle, wp) {
		sr.resolvePellet(w, a.x, a.y, ang, wp, true, a.label)
	}
	sr.flashes = append(sr.flashes, &impactFlash{x: a.x, y: a.y, angle: finalAngle})
}

// resolvePellet traces a single pellet: wall truncation first, then victim
// selection within the effective travel distance and the weapon's angular
// tolerance. Each pellet damages at most one target; scenery is checked as
// an independent pass and never shields a body.
func (sr *ShotResolver) resolvePellet(w *World, ox, oy, angle float64, wp *Weapon, byAgent bool, shooter string) {
	nomX := ox + math.Cos(angle)*wp.spec.rangeUnits
	nomY := oy + math.Sin(angle)*wp.spec.rangeUnits

	endX, endY := nomX, nomY
	effDist := wp.spec.rangeUnits
	hitPt, wallHit := Raycast(ox, oy, nomX, nomY, w.Walls)
	if wallHit {
		endX, endY = hitPt.X, hitPt.Y
		effDist = math.Hypot(hitPt.X-ox, hitPt.Y-oy)
		w.emit(WallImpactEvent{At: hitPt, Angle: angle})
		sr.flashes = append(sr.flashes, &impactFlash{x: hitPt.X, y: hitPt.Y, angle: angle + math.Pi})
	}

	damaged := false
	if byAgent {
		damaged = sr.pelletHitsPlayer(w, ox, oy, angle, effDist, wp)
	} else {
		damaged = sr.pelletHitsAgent(w, ox, oy, angle, effDist, wp)
	}
	// Independent scenery pass on the same ray; crossfire from either side
	// chews through crates.
	sr.pelletHitsDestructible(w, ox, oy, angle, effDist, wp)

	w.emit(ShotFiredEvent{
		Origin:  Point{X: ox, Y: oy},
		Angle:   angle,
		End:     Point{X: endX, Y: endY},
		Weapon:  wp.kind,
		ByAgent: byAgent,
		Shooter: shooter,
		HitWall: wallHit,
	})
	sr.tracers = append(sr.tracers, &Tracer{
		FromX: ox, FromY: oy,
		ToX: endX, ToY: endY,
		Hit:     wallHit || damaged,
		ByAgent: byAgent,
		speed:   wp.spec.projectileSpeed,
		dist:    effDist,
	})
}

// inFiringWindow applies the shared candidate test: within the effective
// travel distance, within the weapon's angular tolerance of the pellet
// direction, and not standing behind a wall closer than itself.
func (sr *ShotResolver) inFiringWindow(w *World, ox, oy, angle, effDist, tx, ty float64, wp *Weapon) (float64, bool) {
	dist := math.Hypot(tx-ox, ty-oy)
	if dist < 1e-9 || dist > effDist {
		return 0, false
	}
	diff := normalizeAngle(HeadingTo(ox, oy, tx, ty) - angle)
	if math.Abs(diff) > wp.aimToleranceRad() {
		return 0, false
	}
	if WallBetween(ox, oy, tx, ty, w.Walls) {
		return 0, false
	}
	return dist, true
}

// pelletHitsAgent selects the single nearest qualifying agent and applies
// full weapon damage to it.
func (sr *ShotResolver) pelletHitsAgent(w *World, ox, oy, angle, effDist float64, wp *Weapon) bool {
	var victim *Agent
	best := math.MaxFloat64
	for _, a := range w.Agents {
		if a.dead {
			continue
		}
		dist, ok := sr.inFiringWindow(w, ox, oy, angle, effDist, a.x, a.y, wp)
		if !ok {
			continue
		}
		if dist < best {
			best = dist
			victim = a
		}
	}
	if victim == nil {
		return false
	}
	w.DamageAgent(victim, wp.spec.damage, ox, oy)
	return true
}

// pelletHitsPlayer applies the candidate test to the player.
func (sr *ShotResolver) pelletHitsPlayer(w *World, ox, oy, angle, effDist float64, wp *Weapon) bool {
	p := w.Player
	if p == nil || p.Dead() {
		return false
	}
	if _, ok := sr.inFiringWindow(w, ox, oy, angle, effDist, p.X, p.Y, wp); !ok {
		return false
	}
	w.DamagePlayer(wp.spec.damage)
	return true
}

// pelletHitsDestructible lets scenery absorb a hit via the same
// distance+angle test. It runs independently of agent resolution and can
// land on the same pellet.
func (sr *ShotResolver) pelletHitsDestructible(w *World, ox, oy, angle, effDist float64, wp *Weapon) {
	var victim *Destructible
	best := math.MaxFloat64
	for _, d := range w.Destructibles {
		if d.dead {
			continue
		}
		dist, ok := sr.inFiringWindow(w, ox, oy, angle, effDist, d.X, d.Y, wp)
		if !ok {
			continue
		}
		if dist < best {
			best = dist
			victim = d
		}
	}
	if victim == nil {
		return
	}
	victim.health -= wp.spec.damage
	if victim.health <= 0 && !victim.dead {
		victim.dead = true
		w.emit(DestructibleDestroyedEvent{At: Point{X: victim.X, Y: victim.Y}})
	}
}

// updateVisuals ages and prunes tracers and flashes.
func (sr *ShotResolver) updateVisuals(dtMs float64) {
	kept := sr.tracers[:0]
	for _, t := range sr.tracers {
		t.ageMs += dtMs
		if !t.Done() {
			kept = append(kept, t)
		}
	}
	sr.tracers = kept

	keptF := sr.flashes[:0]
	for _, f := range sr.flashes {
		f.ageMs += dtMs
		if f.ageMs < flashLifetimeMs {
			keptF = append(keptF, f)
		}
	}
	sr.flashes = keptF
}
