package sim

import "math"

// --- Damage constants ---

const (
	invincibilityMs = 1000.0 // post-hit damage immunity window for the player

	armorDecayDamageMul = 0.3 // armor lost per hit, as a fraction of raw damage...
	armorDecayCapMul    = 0.1 // ...capped at this fraction of current armor

	knockbackPerDamage = 16.0  // impulse units per point of damage
	knockbackMax       = 360.0 // impulse cap, units/sec
	knockbackDecayMs   = 180.0 // impulse fully damps out over this window

	hitFlashMs = 120.0 // presentation tint duration after a hit
)

// MitigatedDamage converts raw weapon damage into actual health loss for an
// armored defender. The curve has diminishing returns and never fully zeroes
// damage: armor 100 halves it.
func MitigatedDamage(raw, armor float64) float64 {
	return raw * (1 - armor/(armor+100))
}

// decayedArmor returns the armor value after absorbing a raw hit. Armor
// sheds the smaller of 30% of the raw damage and 10% of itself, floored at
// zero.
func decayedArmor(armor, raw float64) float64 {
	loss := math.Min(raw*armorDecayDamageMul, armor*armorDecayCapMul)
	armor -= loss
	if armor < 0 {
		armor = 0
	}
	return armor
}

// DamagePlayer applies a raw hit to the player: mitigation, armor decay, the
// invincibility window, and the death event. Calls landing inside an active
// invincibility window are no-ops.
func (w *World) DamagePlayer(raw float64) {
	p := w.Player
	if p == nil || p.Dead() {
		return
	}
	if w.now < p.invincibleUntil {
		return
	}
	actual := MitigatedDamage(raw, p.Armor)
	p.Armor = decayedArmor(p.Armor, raw)
	p.Health -= actual
	if p.Health < 0 {
		p.Health = 0
	}
	p.invincibleUntil = w.now + invincibilityMs
	w.emit(PlayerDamagedEvent{Amount: actual, RemainingArmor: p.Armor})
	if p.Health <= 0 {
		w.emit(PlayerDiedEvent{})
	}
}

// DamageAgent applies unmitigated damage to an agent plus a knockback
// impulse away from (srcX,srcY). Hits on an already-dead agent are no-ops;
// death side effects run exactly once regardless of how many lethal hits
// land on the same tick.
func (w *World) DamageAgent(a *Agent, amount, srcX, srcY float64) {
	if a == nil || a.dead {
		return
	}
	a.health -= amount
	a.hitFlashMs = hitFlashMs

	// Knockback: velocity impulse away from the damage source, scaled by
	// damage magnitude up to a cap.
	dx := a.x - srcX
	dy := a.y - srcY
	if d := math.Hypot(dx, dy); d > 1e-9 {
		mag := math.Min(amount*knockbackPerDamage, knockbackMax)
		a.kbVX = dx / d * mag
		a.kbVY = dy / d * mag
	}

	w.emit(AgentDamagedEvent{AgentID: a.id, Tier: a.tier, At: Point{X: a.x, Y: a.y}, Amount: amount})
	if a.health <= 0 {
		a.health = 0
		w.killAgent(a)
	}
}

// killAgent runs an agent's one-time death sequence: flag it dead, roll
// loot, emit the event, and queue it for removal after the current
// iteration pass.
func (w *World) killAgent(a *Agent) {
	if a.dead {
		return
	}
	a.dead = true
	loot := a.rollLoot(w.rng)
	w.emit(AgentDiedEvent{AgentID: a.id, Tier: a.tier, At: Point{X: a.x, Y: a.y}, Loot: loot})
}
