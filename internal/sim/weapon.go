package sim

import (
	"math"
	"math/rand"
)

// --- Weapon constants ---

const (
	reloadDurationMs = 2500.0 // fixed reload time for every archetype

	// Aim error model. The precision term contributes up to
	// precisionErrorScale radians at precision 0; recoil accumulation adds
	// its own jitter on top and is capped at recoilCapMul times the
	// per-shot step.
	precisionErrorScale = 0.14
	recoilCapMul        = 3.0
	recoilDecayPerMs    = 0.00006 // radians of accumulation shed per ms
)

// WeaponKind identifies a weapon archetype. The set is closed; per-archetype
// numbers live in weaponTable.
type WeaponKind int

const (
	WeaponPistol WeaponKind = iota
	WeaponRifle
	WeaponSMG
	WeaponShotgun
	weaponKindCount // sentinel
)

func (k WeaponKind) String() string {
	switch k {
	case WeaponPistol:
		return "pistol"
	case WeaponRifle:
		return "rifle"
	case WeaponSMG:
		return "smg"
	case WeaponShotgun:
		return "shotgun"
	default:
		return "unknown"
	}
}

// weaponSpec bundles an archetype's ballistic and handling parameters.
type weaponSpec struct {
	name            string
	damage          float64 // per bullet / per pellet
	fireRateMs      float64 // minimum ms between trigger pulls
	rangeUnits      float64 // nominal travel distance
	projectileSpeed float64 // world units per second, presentation only
	capacity        int     // magazine size
	maxReserve      int     // reserve pool cap
	precision       float64 // 0..1, 1 = perfect
	recoilStep      float64 // radians of accumulation added per shot
	pellets         int     // 1 for single-projectile weapons
	spreadDeg       float64 // total fan width for pellet weapons
}

// weaponTable maps each archetype to its parameters.
var weaponTable = [weaponKindCount]weaponSpec{
	WeaponPistol:  {name: "pistol", damage: 14, fireRateMs: 320, rangeUnits: 420, projectileSpeed: 900, capacity: 12, maxReserve: 48, precision: 0.82, recoilStep: 0.015, pellets: 1},
	WeaponRifle:   {name: "rifle", damage: 22, fireRateMs: 180, rangeUnits: 640, projectileSpeed: 1200, capacity: 30, maxReserve: 90, precision: 0.88, recoilStep: 0.022, pellets: 1},
	WeaponSMG:     {name: "smg", damage: 11, fireRateMs: 90, rangeUnits: 380, projectileSpeed: 1000, capacity: 35, maxReserve: 105, precision: 0.68, recoilStep: 0.028, pellets: 1},
	WeaponShotgun: {name: "shotgun", damage: 9, fireRateMs: 750, rangeUnits: 260, projectileSpeed: 800, capacity: 7, maxReserve: 28, pellets: 7, spreadDeg: 15, precision: 0.75, recoilStep: 0.035},
}

// Weapon is a live weapon instance: archetype parameters plus mutable
// ammunition, cooldown and recoil state.
//
// Invariants: 0 <= ammo <= capacity, 0 <= reserve <= maxReserve, at most one
// reload in flight, recoil accumulation in [0, recoilCapMul*recoilStep].
type Weapon struct {
	spec weaponSpec
	kind WeaponKind

	ammo      int
	reserve   int
	reloading bool

	lastFiredAt float64 // sim ms of last successful shot
	recoilAccum float64 // radians
	hasFired    bool    // false until the first shot; gates the cadence check
}

// NewWeapon creates a weapon with a full magazine and full reserve.
func NewWeapon(kind WeaponKind) *Weapon {
	spec := weaponTable[kind]
	return &Weapon{
		spec:    spec,
		kind:    kind,
		ammo:    spec.capacity,
		reserve: spec.maxReserve,
	}
}

// newTierWeapon builds an agent's armament: the tier's archetype with the
// tier's own aim precision in place of the archetype default.
func newTierWeapon(kind WeaponKind, precision float64) *Weapon {
	w := NewWeapon(kind)
	w.spec.precision = precision
	return w
}

// Kind returns the weapon's archetype.
func (w *Weapon) Kind() WeaponKind { return w.kind }

// Name returns the archetype display name.
func (w *Weapon) Name() string { return w.spec.name }

// Ammo returns the current magazine count.
func (w *Weapon) Ammo() int { return w.ammo }

// Reserve returns the current reserve pool.
func (w *Weapon) Reserve() int { return w.reserve }

// Capacity returns the magazine size.
func (w *Weapon) Capacity() int { return w.spec.capacity }

// Reloading reports whether a reload is in flight.
func (w *Weapon) Reloading() bool { return w.reloading }

// Range returns the nominal travel distance of one shot.
func (w *Weapon) Range() float64 { return w.spec.rangeUnits }

// Damage returns the per-bullet (per-pellet) base damage.
func (w *Weapon) Damage() float64 { return w.spec.damage }

// Pellets returns the projectile count per trigger pull.
func (w *Weapon) Pellets() int { return w.spec.pellets }

// RecoilAccum returns the current recoil accumulation in radians.
func (w *Weapon) RecoilAccum() float64 { return w.recoilAccum }

// CanFire reports whether a trigger pull at sim time now would succeed:
// not reloading, cadence respected, rounds in the magazine.
func (w *Weapon) CanFire(now float64) bool {
	if w.reloading {
		return false
	}
	if w.hasFired && now-w.lastFiredAt < w.spec.fireRateMs {
		return false
	}
	return w.ammo > 0
}

// Fire spends one round at sim time now. On success it stamps the cadence
// clock and bumps recoil accumulation (capped); on failure nothing changes.
func (w *Weapon) Fire(now float64) bool {
	if !w.CanFire(now) {
		return false
	}
	w.ammo--
	w.lastFiredAt = now
	w.hasFired = true
	limit := w.spec.recoilStep * recoilCapMul
	w.recoilAccum = math.Min(limit, w.recoilAccum+w.spec.recoilStep)
	return true
}

// StartReload begins a reload completing after reloadDurationMs. Calling it
// on an already-reloading weapon, a full magazine, or an empty reserve is a
// no-op, so the UI may retrigger it freely. Once started a reload always
// completes; it survives even the owner's death.
func (w *Weapon) StartReload(sched *Scheduler, now float64) bool {
	if w.reloading || w.ammo >= w.spec.capacity || w.reserve <= 0 {
		return false
	}
	w.reloading = true
	sched.Schedule(now, reloadDurationMs, w.completeReload)
	return true
}

// completeReload moves rounds from reserve into the magazine, bounded by
// both the magazine deficit and the reserve pool.
func (w *Weapon) completeReload() {
	moved := w.spec.capacity - w.ammo
	if moved > w.reserve {
		moved = w.reserve
	}
	w.ammo += moved
	w.reserve -= moved
	w.reloading = false
}

// DecayRecoil sheds recoil accumulation linearly over elapsed time, never
// below zero.
func (w *Weapon) DecayRecoil(dtMs float64) {
	w.recoilAccum -= recoilDecayPerMs * dtMs
	if w.recoilAccum < 0 {
		w.recoilAccum = 0
	}
}

// ShotAngleOffset returns the random aim perturbation for one trigger pull:
// a precision error scaled by (1-precision) plus recoil jitter. This is the
// sole source of inaccuracy in the shot pipeline.
func (w *Weapon) ShotAngleOffset(rng *rand.Rand) float64 {
	precErr := (1 - w.spec.precision) * (rng.Float64()*2 - 1) * precisionErrorScale
	recoilErr := w.recoilAccum * (rng.Float64()*2 - 1)
	return precErr + recoilErr
}

// aimToleranceRad converts the weapon's precision into the angular window
// used for target selection, floored so low-precision weapons stay usable
// at range.
func (w *Weapon) aimToleranceRad() float64 {
	const (
		maxToleranceDeg = 10.0
		minToleranceDeg = 2.0
	)
	deg := (1 - w.spec.precision) * maxToleranceDeg
	if deg < minToleranceDeg {
		deg = minToleranceDeg
	}
	return deg * math.Pi / 180
}
