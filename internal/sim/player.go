package sim

// Player is the player-controlled actor. Position and velocity are fed by
// the input collaborator each frame; this core owns health, armor, the
// invincibility window and the weapon loadout.
type Player struct {
	X, Y   float64
	VX, VY float64

	Health    float64
	MaxHealth float64
	Armor     float64 // 0..100, degrades on hit

	invincibleUntil float64 // sim ms

	weapons  []*Weapon
	equipped int
}

// NewPlayer creates a player at (x,y) with the standard starting loadout.
func NewPlayer(x, y float64) *Player {
	return &Player{
		X:         x,
		Y:         y,
		Health:    100,
		MaxHealth: 100,
		Armor:     0,
		weapons: []*Weapon{
			NewWeapon(WeaponPistol),
			NewWeapon(WeaponRifle),
			NewWeapon(WeaponShotgun),
		},
	}
}

// Dead reports whether the run has ended.
func (p *Player) Dead() bool { return p.Health <= 0 }

// Invincible reports whether the post-hit immunity window is active at now.
func (p *Player) Invincible(now float64) bool { return now < p.invincibleUntil }

// Weapon returns the equipped weapon.
func (p *Player) Weapon() *Weapon {
	return p.weapons[p.equipped]
}

// EquippedIndex returns the equipped weapon slot.
func (p *Player) EquippedIndex() int { return p.equipped }

// Equip selects weapon slot i; out-of-range indices are ignored.
func (p *Player) Equip(i int) {
	if i >= 0 && i < len(p.weapons) {
		p.equipped = i
	}
}

// CycleWeapon advances to the next weapon slot, wrapping.
func (p *Player) CycleWeapon() {
	p.equipped = (p.equipped + 1) % len(p.weapons)
}

// SetPosition updates the authoritative position from the input layer.
func (p *Player) SetPosition(x, y float64) {
	p.X, p.Y = x, y
}

// SetVelocity updates the current velocity, used for tier lead-prediction.
func (p *Player) SetVelocity(vx, vy float64) {
	p.VX, p.VY = vx, vy
}

// PlayerFire attempts a trigger pull at aimAngle with the equipped weapon.
// An empty magazine short-circuits into a reload attempt; the shot resolver
// is never invoked without a round spent.
func (w *World) PlayerFire(aimAngle float64) bool {
	p := w.Player
	if p == nil || p.Dead() {
		return false
	}
	wp := p.Weapon()
	if wp.Ammo() == 0 {
		wp.StartReload(w.sched, w.now)
		return false
	}
	if !wp.CanFire(w.now) {
		return false
	}
	// Perturb before Fire: this shot flies on the recoil accumulated by
	// the shots before it.
	final := aimAngle + wp.ShotAngleOffset(w.rng)
	wp.Fire(w.now)
	w.shots.resolvePlayerShot(w, p, final)
	return true
}

// PlayerReload starts a reload on the equipped weapon. Safe to retrigger.
func (w *World) PlayerReload() {
	if w.Player == nil {
		return
	}
	w.Player.Weapon().StartReload(w.sched, w.now)
}
