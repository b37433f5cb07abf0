package sim

import (
	"math"
	"testing"
)

func TestAgent_StateBands(t *testing.T) {
	// Soldier: detection 220, attack 180.
	cases := []struct {
		dist float64
		want AgentState
	}{
		{300, StatePatrol},
		{221, StatePatrol},
		{200, StateChase},
		{180, StateAttack},
		{150, StateAttack},
	}
	for _, c := range cases {
		a := NewAgent(0, TierSoldier, 0, 0, Rect{}, nil)
		ctx := &TickContext{Now: 0, PlayerX: c.dist, PlayerY: 0}
		a.updateState(ctx)
		if a.state != c.want {
			t.Errorf("dist %.0f: state = %v, want %v", c.dist, a.state, c.want)
		}
	}
}

func TestAgent_TierRangesOrdered(t *testing.T) {
	for tier := TierGrunt; tier < tierCount; tier++ {
		spec := tierTable[tier]
		if spec.attackRange >= spec.detectionRange {
			t.Errorf("%v: attack range %.0f must sit inside detection range %.0f",
				tier, spec.attackRange, spec.detectionRange)
		}
	}
}

func TestAgent_PatrolSynthesis(t *testing.T) {
	room := Rect{X: 0, Y: 0, W: 200, H: 100}
	a := NewAgent(0, TierGrunt, 50, 50, room, nil)
	if len(a.patrol) != 4 {
		t.Fatalf("patrol waypoints = %d, want 4 interior corners", len(a.patrol))
	}
	inner := room.Inset(roomMargin)
	for _, p := range a.patrol {
		if !inner.Contains(p.X, p.Y) {
			t.Errorf("waypoint (%.0f,%.0f) outside the interior margin", p.X, p.Y)
		}
	}

	// Degenerate room: fall back to a box around the spawn point.
	b := NewAgent(1, TierGrunt, 500, 500, Rect{}, nil)
	if len(b.patrol) != 4 {
		t.Fatalf("fallback patrol waypoints = %d, want 4", len(b.patrol))
	}
	for _, p := range b.patrol {
		if math.Abs(p.X-500) != spawnBoxHalf || math.Abs(p.Y-500) != spawnBoxHalf {
			t.Errorf("fallback waypoint (%.0f,%.0f) not on the spawn box", p.X, p.Y)
		}
	}
}

func TestAgent_PatrolClampDropsBadWaypoints(t *testing.T) {
	room := Rect{X: 0, Y: 0, W: 200, H: 200}
	patrol := []Point{{X: 50, Y: 50}, {X: 500, Y: 500}, {X: 120, Y: 120}}
	a := NewAgent(0, TierGrunt, 60, 60, room, patrol)
	if len(a.patrol) != 2 {
		t.Fatalf("clamped patrol = %d waypoints, want 2", len(a.patrol))
	}
	// A path that is entirely out of bounds degrades to synthesis.
	b := NewAgent(1, TierGrunt, 60, 60, room, []Point{{X: 900, Y: 900}})
	if len(b.patrol) != 4 {
		t.Errorf("all-invalid path should synthesize 4 corners, got %d", len(b.patrol))
	}
}

func TestAgent_PatrolMovesWithoutPlayer(t *testing.T) {
	ts := NewTestSim(
		WithRoom(0, 0, 300, 300),
		WithAgent(TierGrunt, 150, 150, 0),
	)
	a := ts.World.Agents[0]
	x0, y0 := a.Position()
	ts.RunTicks(60)
	x1, y1 := a.Position()
	if x0 == x1 && y0 == y1 {
		t.Error("patrolling agent should walk its waypoint loop")
	}
	if a.State() != StatePatrol {
		t.Errorf("state = %v with no player, want patrol", a.State())
	}
}

func TestScenario_ChaseBeforeAttack(t *testing.T) {
	ts := NewTestSim(
		WithRoom(0, 0, 700, 400),
		WithPlayer(300, 100),
		WithAgent(TierSoldier, 100, 100, 0),
	)
	reached := ts.RunUntil(func(ts *TestSim) bool {
		return ts.World.Agents[0].State() == StateAttack
	}, 600)
	if reached < 0 {
		t.Fatalf("agent never reached attack range\n%s", ts.SimLog.Format())
	}

	chase, ok := ts.SimLog.FirstOf("state", "change")
	if !ok || chase.Value != "patrol → chase" {
		t.Fatalf("first transition = %+v, want patrol → chase", chase)
	}
	if !ts.SimLog.HasEntry("state", "change", "chase → attack") {
		t.Errorf("missing chase → attack transition\n%s", ts.SimLog.Format())
	}
}

func TestScenario_AttackCadence(t *testing.T) {
	// Grunt cooldown 1400 ms: over 3 s it gets the opening shot plus two.
	ts := NewTestSim(
		WithRoom(0, 0, 600, 400),
		WithPlayer(200, 200),
		WithAgent(TierGrunt, 260, 200, 0),
	)
	ts.RunTicks(188) // just over 3000 ms at 16 ms per tick
	if got := ts.SimLog.CountCategory("combat", "shot"); got != 3 {
		t.Errorf("shots = %d over 3 s, want 3\n%s", got, ts.SimLog.Format())
	}
}

func TestInvariant_RoomContainment(t *testing.T) {
	room := Rect{X: 0, Y: 0, W: 300, H: 300}
	ts := NewTestSim(
		WithRoom(room.X, room.Y, room.W, room.H),
		WithPlayer(400, 150), // outside the room, inside captain detection
		WithAgent(TierCaptain, 150, 150, 0),
	)
	inner := room.Inset(roomMargin)
	escaped := ts.RunUntil(func(ts *TestSim) bool {
		x, y := ts.World.Agents[0].Position()
		return !inner.Contains(x, y)
	}, 1000)
	if escaped >= 0 {
		x, y := ts.World.Agents[0].Position()
		t.Errorf("agent escaped its room at tick %d: (%.1f,%.1f)", escaped, x, y)
	}
	if ts.World.Agents[0].State() == StatePatrol {
		t.Error("agent should be hunting the player, not patrolling")
	}
}

func TestAgent_ContainmentZeroesCrossingComponent(t *testing.T) {
	room := Rect{X: 0, Y: 0, W: 300, H: 300}
	a := NewAgent(0, TierGrunt, 280, 150, room, nil)
	a.applyVelocity(10, 5) // x would cross the interior margin at 282
	if a.x != 280 {
		t.Errorf("x = %.1f, crossing component must be zeroed", a.x)
	}
	if a.y != 155 {
		t.Errorf("y = %.1f, the other component still applies", a.y)
	}
}

func TestAgent_KnockbackMovesAgent(t *testing.T) {
	ts := NewTestSim(
		WithRoom(0, 0, 400, 400),
	)
	// Pin the agent with a single-waypoint path so only knockback moves it.
	a := ts.World.SpawnAgent(TierGrunt, 200, 200, 0, []Point{{X: 200, Y: 200}})

	ts.World.DamageAgent(a, 10, 100, 200) // hit from the west
	ts.RunTicks(5)
	x, y := a.Position()
	if x <= 200 {
		t.Errorf("x = %.1f, knockback should push the agent east", x)
	}
	if math.Abs(y-200) > 1e-6 {
		t.Errorf("y = %.1f, impulse was purely horizontal", y)
	}

	// The impulse damps out; position settles.
	ts.RunTicks(120)
	x1, _ := a.Position()
	ts.RunTicks(60)
	x2, _ := a.Position()
	if math.Abs(x2-x1) > 0.01 {
		t.Errorf("agent still sliding after the impulse window: %.3f vs %.3f", x1, x2)
	}
}

func TestAgent_SpawnBoxPatrolWalks(t *testing.T) {
	// No usable room: patrol falls back to the spawn box and the agent
	// still walks it.
	ts := NewTestSim(
		WithAgent(TierGrunt, 500, 500, -1),
	)
	a := ts.World.Agents[0]
	box := Rect{X: 500 - spawnBoxHalf, Y: 500 - spawnBoxHalf, W: 2 * spawnBoxHalf, H: 2 * spawnBoxHalf}

	stuck := ts.RunUntil(func(ts *TestSim) bool {
		x, y := a.Position()
		return x != 500 || y != 500
	}, 300)
	if stuck < 0 {
		t.Fatal("room-less agent never left its spawn point")
	}
	ts.RunTicks(300)
	x, y := a.Position()
	if !box.Contains(x, y) {
		t.Errorf("agent at (%.1f,%.1f) outside spawn box %+v", x, y, box)
	}
}

func TestAgent_SpawnBoxKnockback(t *testing.T) {
	w := NewWorld(1)
	// Pin with a single-waypoint path inside the spawn box.
	a := w.SpawnAgent(TierGrunt, 500, 500, -1, []Point{{X: 500, Y: 500}})

	w.DamageAgent(a, 10, 400, 500) // hit from the west
	for i := 0; i < 5; i++ {
		w.Update(16)
	}
	x, y := a.Position()
	if x <= 500 {
		t.Errorf("x = %.1f, knockback should push the room-less agent east", x)
	}
	if math.Abs(y-500) > 1e-6 {
		t.Errorf("y = %.1f, impulse was purely horizontal", y)
	}
	if x > 500+spawnBoxHalf {
		t.Errorf("x = %.1f, knockback must still respect the spawn box", x)
	}
}

func TestAgent_DeadPlayerRevertsToPatrol(t *testing.T) {
	ts := NewTestSim(
		WithRoom(0, 0, 600, 400),
		WithPlayer(200, 200),
		WithAgent(TierSoldier, 260, 200, 0),
	)
	ts.RunTicks(1)
	if ts.World.Agents[0].State() != StateAttack {
		t.Fatalf("state = %v, want attack", ts.World.Agents[0].State())
	}

	ts.World.Player.Health = 0
	ts.RunTicks(1)
	if ts.World.Agents[0].State() != StatePatrol {
		t.Errorf("state = %v after the player dies, want patrol", ts.World.Agents[0].State())
	}
}

func TestAgent_EmptyMagazineReloadsInsteadOfFiring(t *testing.T) {
	ts := NewTestSim(
		WithRoom(0, 0, 600, 400),
		WithPlayer(200, 200),
		WithAgent(TierGrunt, 260, 200, 0),
	)
	a := ts.World.Agents[0]
	a.weapon.ammo = 0

	ts.RunTicks(1)
	if !a.weapon.Reloading() {
		t.Fatal("dry attack tick should start a reload")
	}
	if got := ts.SimLog.CountCategory("combat", "shot"); got != 0 {
		t.Errorf("shots = %d on an empty magazine, want 0", got)
	}

	// Reload lands via the scheduler and firing resumes.
	reloaded := ts.RunUntil(func(ts *TestSim) bool {
		return ts.SimLog.CountCategory("combat", "shot") > 0
	}, 400)
	if reloaded < 0 {
		t.Errorf("agent never resumed firing after the reload\n%s", ts.SimLog.Format())
	}
}
