package sim

import (
	"math"
	"testing"
)

func countEvents(events []Event) (shots, wallHits, agentHits, agentDeaths, playerHits, destroyed int) {
	for _, e := range events {
		switch e.(type) {
		case ShotFiredEvent:
			shots++
		case WallImpactEvent:
			wallHits++
		case AgentDamagedEvent:
			agentHits++
		case AgentDiedEvent:
			agentDeaths++
		case PlayerDamagedEvent:
			playerHits++
		case DestructibleDestroyedEvent:
			destroyed++
		}
	}
	return
}

func TestShot_NearestVictimOnly(t *testing.T) {
	w := NewWorld(1)
	w.Player = NewPlayer(0, 100)
	near := w.SpawnAgent(TierGrunt, 200, 100, -1, nil)
	far := w.SpawnAgent(TierGrunt, 300, 100, -1, nil)

	if !w.PlayerFire(0) {
		t.Fatal("shot should fire")
	}
	shots, _, agentHits, _, _, _ := countEvents(w.DrainEvents())
	if shots != 1 {
		t.Errorf("ShotFiredEvent count = %d, want 1", shots)
	}
	if agentHits != 1 {
		t.Fatalf("AgentDamagedEvent count = %d, want 1", agentHits)
	}
	if near.Health() != near.MaxHealth()-14 {
		t.Errorf("near agent health = %.1f, the nearest candidate takes the hit", near.Health())
	}
	if far.Health() != far.MaxHealth() {
		t.Errorf("far agent health = %.1f, a pellet damages at most one target", far.Health())
	}
}

func TestShot_WallTruncatesPellet(t *testing.T) {
	w := NewWorld(1)
	w.Player = NewPlayer(0, 100)
	w.AddWall(Rect{X: 150, Y: 0, W: 20, H: 400})
	a := w.SpawnAgent(TierGrunt, 300, 100, -1, nil)

	w.PlayerFire(0)
	events := w.DrainEvents()
	_, wallHits, agentHits, _, _, _ := countEvents(events)
	if wallHits != 1 {
		t.Errorf("WallImpactEvent count = %d, want 1", wallHits)
	}
	if agentHits != 0 {
		t.Error("target behind the wall must not take damage")
	}
	if a.Health() != a.MaxHealth() {
		t.Errorf("agent health = %.1f, want untouched", a.Health())
	}
	for _, e := range events {
		if sf, ok := e.(ShotFiredEvent); ok {
			if !sf.HitWall {
				t.Error("ShotFiredEvent.HitWall should be set")
			}
			if sf.End.X > 150+raycastStep {
				t.Errorf("trace end %.1f lies past the wall's entry face", sf.End.X)
			}
		}
	}
}

func TestShot_ShotgunFanSingleOverlapTarget(t *testing.T) {
	w := NewWorld(1)
	w.Player = NewPlayer(100, 100)
	w.Player.Equip(2) // shotgun slot
	w.Player.Weapon().spec.precision = 1
	a := w.SpawnAgent(TierGrunt, 250, 100, -1, nil)

	w.PlayerFire(0)
	shots, _, agentHits, _, _, _ := countEvents(w.DrainEvents())
	if shots != 7 {
		t.Errorf("ShotFiredEvent count = %d, want one per pellet (7)", shots)
	}
	// The fan spaces pellets wider than the angular tolerance, so only the
	// central pellet qualifies against a single straight-ahead target.
	if agentHits != 1 {
		t.Errorf("AgentDamagedEvent count = %d, want exactly 1", agentHits)
	}
	if a.Health() != a.MaxHealth()-9 {
		t.Errorf("agent health = %.1f, want one pellet of damage", a.Health())
	}
}

func TestShot_OneRoundPerTriggerPull(t *testing.T) {
	w := NewWorld(1)
	w.Player = NewPlayer(100, 100)
	w.Player.Equip(2)

	w.PlayerFire(0)
	if got := w.Player.Weapon().Ammo(); got != 6 {
		t.Errorf("ammo = %d after one shotgun blast, want 6", got)
	}
}

func TestShot_DestructiblePassIsIndependent(t *testing.T) {
	w := NewWorld(1)
	w.Player = NewPlayer(0, 100)
	a := w.SpawnAgent(TierGrunt, 220, 100, -1, nil)
	d := w.AddDestructible(160, 100, 40) // nearer than the agent

	w.PlayerFire(0)
	_, _, agentHits, _, _, _ := countEvents(w.DrainEvents())
	if agentHits != 1 {
		t.Error("scenery must never shield a body from the same pellet")
	}
	if a.Health() != a.MaxHealth()-14 {
		t.Errorf("agent health = %.1f, want 26", a.Health())
	}
	if d.health != 26 {
		t.Errorf("destructible health = %.1f, want 26", d.health)
	}
}

func TestShot_DestructibleDestroyed(t *testing.T) {
	w := NewWorld(1)
	w.Player = NewPlayer(0, 100)
	d := w.AddDestructible(180, 100, 10)

	w.PlayerFire(0)
	_, _, _, _, _, destroyed := countEvents(w.DrainEvents())
	if destroyed != 1 {
		t.Errorf("DestructibleDestroyedEvent count = %d, want 1", destroyed)
	}
	if !d.Destroyed() {
		t.Error("destructible should be destroyed")
	}

	// Dead scenery is skipped and never re-emits.
	w.PlayerFire(0)
	_, _, _, _, _, destroyed = countEvents(w.DrainEvents())
	if destroyed != 0 {
		t.Error("a destroyed object must not be destroyed twice")
	}
}

func TestShot_EmptyMagazineStartsReload(t *testing.T) {
	w := NewWorld(1)
	w.Player = NewPlayer(0, 100)
	w.SpawnAgent(TierGrunt, 200, 100, -1, nil)
	w.Player.Weapon().ammo = 0

	if w.PlayerFire(0) {
		t.Fatal("empty magazine must not resolve a shot")
	}
	if !w.Player.Weapon().Reloading() {
		t.Error("empty trigger pull should start the reload")
	}
	if shots, _, _, _, _, _ := countEvents(w.DrainEvents()); shots != 0 {
		t.Error("no pellets may fly on an empty magazine")
	}
}

func TestShot_AgentFireDamagesScenery(t *testing.T) {
	w := NewWorld(1)
	w.Player = NewPlayer(300, 100)
	a := w.SpawnAgent(TierCaptain, 0, 100, -1, nil)
	d := w.AddDestructible(150, 100, 40) // on the firing line

	w.shots.resolveAgentShot(w, a, 0)
	if d.health != 40-11 {
		t.Errorf("crate health = %.1f, agent crossfire should chew it (want 29)", d.health)
	}
	// The crate soaks the pellet without shielding the player.
	_, _, _, _, playerHits, _ := countEvents(w.DrainEvents())
	if playerHits != 1 {
		t.Errorf("PlayerDamagedEvent count = %d, scenery must not shield", playerHits)
	}
}

func TestShot_EventCarriesShooter(t *testing.T) {
	w := NewWorld(1)
	w.Player = NewPlayer(0, 100)
	a := w.SpawnAgent(TierGrunt, 200, 100, -1, nil)

	w.PlayerFire(0)
	w.shots.resolveAgentShot(w, a, 0)
	var labels []string
	for _, e := range w.DrainEvents() {
		if sf, ok := e.(ShotFiredEvent); ok {
			labels = append(labels, sf.Shooter)
		}
	}
	if len(labels) != 2 || labels[0] != "P" || labels[1] != a.Label() {
		t.Errorf("shooter labels = %v, want [P %s]", labels, a.Label())
	}
}

func TestShot_TracerStreakTravels(t *testing.T) {
	tr := &Tracer{FromX: 0, FromY: 0, ToX: 100, ToY: 0, speed: 1000, dist: 100}

	hx, hy := tr.Head()
	if hx != 0 || hy != 0 {
		t.Errorf("head at (%.1f,%.1f) before any time passes, want the origin", hx, hy)
	}

	tr.ageMs = 50 // 1000 units/sec for 50 ms
	hx, _ = tr.Head()
	if math.Abs(hx-50) > 1e-9 {
		t.Errorf("head x = %.2f at 50 ms, want 50", hx)
	}
	tx, _ := tr.Tail()
	if math.Abs(tx-(50-tracerStreakLen)) > 1e-9 {
		t.Errorf("tail x = %.2f, want %.2f", tx, 50-tracerStreakLen)
	}

	tr.ageMs = 500 // long past the flight time
	hx, _ = tr.Head()
	if hx != 100 {
		t.Errorf("head x = %.2f, must clamp at the trace end", hx)
	}
}

func TestShot_AgentHitsPlayer(t *testing.T) {
	w := NewWorld(1)
	w.Player = NewPlayer(150, 100)
	a := w.SpawnAgent(TierCaptain, 0, 100, -1, nil)

	w.shots.resolveAgentShot(w, a, 0)
	_, _, _, _, playerHits, _ := countEvents(w.DrainEvents())
	if playerHits != 1 {
		t.Fatalf("PlayerDamagedEvent count = %d, want 1", playerHits)
	}
	if w.Player.Health != 89 {
		t.Errorf("player health = %.1f, want 89 (SMG round, no armor)", w.Player.Health)
	}
}

func TestShot_AgentShotNeverHitsAgents(t *testing.T) {
	w := NewWorld(1)
	w.Player = NewPlayer(400, 100)
	shooter := w.SpawnAgent(TierCaptain, 0, 100, -1, nil)
	bystander := w.SpawnAgent(TierGrunt, 150, 100, -1, nil)

	w.shots.resolveAgentShot(w, shooter, 0)
	if bystander.Health() != bystander.MaxHealth() {
		t.Error("agent fire must never damage other agents")
	}
}

func TestShot_OutOfRangeTargetUntouched(t *testing.T) {
	w := NewWorld(1)
	w.Player = NewPlayer(0, 100)
	a := w.SpawnAgent(TierGrunt, 500, 100, -1, nil) // past pistol range 420

	w.PlayerFire(0)
	if a.Health() != a.MaxHealth() {
		t.Errorf("agent at %.0f units is past pistol range, health = %.1f", 500.0, a.Health())
	}
}

func TestShot_TracersAgeOut(t *testing.T) {
	w := NewWorld(1)
	w.Player = NewPlayer(0, 100)
	w.PlayerFire(0)
	if len(w.Tracers()) != 1 {
		t.Fatalf("tracer count = %d, want 1", len(w.Tracers()))
	}
	for i := 0; i < 10; i++ { // 10 * 33ms clamped ticks > tracer lifetime
		w.Update(33)
	}
	if len(w.Tracers()) != 0 {
		t.Errorf("tracer count = %d after aging, want 0", len(w.Tracers()))
	}
}

func TestShot_PelletAnglesFanEvenly(t *testing.T) {
	wp := NewWeapon(WeaponShotgun)
	angles := pelletAngles(0, wp)
	if len(angles) != 7 {
		t.Fatalf("pellet count = %d, want 7", len(angles))
	}
	half := wp.spec.spreadDeg / 2 * math.Pi / 180
	if math.Abs(angles[0]+half) > 1e-9 || math.Abs(angles[6]-half) > 1e-9 {
		t.Errorf("fan edges %.4f..%.4f, want ±%.4f", angles[0], angles[6], half)
	}
	if math.Abs(angles[3]) > 1e-9 {
		t.Errorf("central pellet angle %.4f, want 0", angles[3])
	}
	step := angles[1] - angles[0]
	for i := 2; i < 7; i++ {
		if math.Abs((angles[i]-angles[i-1])-step) > 1e-9 {
			t.Fatal("pellet spacing must be uniform")
		}
	}

	single := NewWeapon(WeaponRifle)
	if got := pelletAngles(1.25, single); len(got) != 1 || got[0] != 1.25 {
		t.Errorf("single-projectile weapons fire exactly their final angle, got %v", got)
	}
}
