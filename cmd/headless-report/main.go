package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/marchfell/undercroft/internal/sim"
)

type runStats struct {
	runIndex int
	seed     int64

	firstChaseTick   int
	firstAttackTick  int
	firstPlayerHit   int
	playerDeathTick  int
	agentDeaths      int
	shotsFired       int
	playerShots      int
	wallImpacts      int
	playerDamage     float64
	survivors        int
	playerSurvived   bool
	finalPlayerHP    float64
	finalPlayerArmor float64
}

func main() {
	var runs int
	var ticks int
	var seedBase int64
	var seedStep int64
	var scenario string
	var copyOut bool

	flag.IntVar(&runs, "runs", 5, "number of headless simulation runs")
	flag.IntVar(&ticks, "ticks", 3600, "ticks per run")
	flag.Int64Var(&seedBase, "seed-base", 42, "base RNG seed for run 1")
	flag.Int64Var(&seedStep, "seed-step", 1, "seed increment between runs")
	flag.StringVar(&scenario, "scenario", "holdout", "scenario name")
	flag.BoolVar(&copyOut, "copy", false, "copy the report to the system clipboard")
	flag.Parse()

	if runs <= 0 || ticks <= 0 {
		fmt.Println("error: -runs and -ticks must be > 0")
		os.Exit(1)
	}
	if scenario != "holdout" && scenario != "passive" {
		fmt.Printf("error: unsupported scenario %q (supported: holdout, passive)\n", scenario)
		os.Exit(1)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "=== Headless Combat Report ===\n")
	fmt.Fprintf(&sb, "scenario=%s runs=%d ticks=%d seed_base=%d seed_step=%d\n\n",
		scenario, runs, ticks, seedBase, seedStep)

	all := make([]runStats, 0, runs)
	for i := 0; i < runs; i++ {
		seed := seedBase + int64(i)*seedStep
		stats := runScenario(scenario, i+1, seed, ticks)
		all = append(all, stats)
		printRun(&sb, stats)
	}
	printAggregate(&sb, all)

	fmt.Print(sb.String())
	if copyOut {
		if err := clipboard.WriteAll(sb.String()); err != nil {
			fmt.Printf("clipboard copy failed: %v\n", err)
		} else {
			fmt.Println("(report copied to clipboard)")
		}
	}
}

// runScenario runs one seeded simulation. "holdout" scripts the player to
// return fire at the nearest live agent each tick; "passive" leaves the
// player standing still so agent behaviour can be measured in isolation.
func runScenario(name string, runIndex int, seed int64, ticks int) runStats {
	ts := sim.NewTestSim(
		sim.WithSeed(seed),
		sim.WithRoom(16, 16, 440, 608), // left room
		sim.WithRoom(480, 16, 464, 608),
		sim.WithWall(0, 0, 960, 16),
		sim.WithWall(0, 624, 960, 16),
		sim.WithWall(0, 0, 16, 640),
		sim.WithWall(944, 0, 16, 640),
		sim.WithWall(464, 16, 16, 220),
		sim.WithPlayer(120, 320),
		sim.WithAgent(sim.TierGrunt, 240, 140, 0),
		sim.WithAgent(sim.TierGrunt, 300, 480, 0),
		sim.WithAgent(sim.TierSoldier, 380, 320, 0),
		sim.WithAgent(sim.TierCaptain, 700, 320, 1),
	)

	for i := 0; i < ticks; i++ {
		ts.RunTicks(1)
		if name == "holdout" {
			returnFire(ts)
		}
		if ts.World.Player.Dead() {
			break
		}
	}
	return collectStats(runIndex, seed, ts)
}

// returnFire aims the scripted player at the nearest live agent and pulls
// the trigger; weapon cadence and reload short-circuits are handled by the
// core.
func returnFire(ts *sim.TestSim) {
	w := ts.World
	p := w.Player
	if p == nil || p.Dead() {
		return
	}
	best := math.MaxFloat64
	var tx, ty float64
	found := false
	for _, snap := range ts.Snapshot().Agents {
		d := math.Hypot(snap.X-p.X, snap.Y-p.Y)
		if d < best {
			best = d
			tx, ty = snap.X, snap.Y
			found = true
		}
	}
	if !found || best > p.Weapon().Range() {
		return
	}
	w.PlayerFire(sim.HeadingTo(p.X, p.Y, tx, ty))
}

func collectStats(runIndex int, seed int64, ts *sim.TestSim) runStats {
	st := runStats{runIndex: runIndex, seed: seed,
		firstChaseTick: -1, firstAttackTick: -1, firstPlayerHit: -1, playerDeathTick: -1}

	log := ts.SimLog
	if e, ok := log.FirstOf("state", "change"); ok {
		st.firstChaseTick = e.Tick
	}
	for _, e := range log.Filter("state", "change") {
		if strings.HasSuffix(e.Value, "→ attack") {
			st.firstAttackTick = e.Tick
			break
		}
	}
	if e, ok := log.FirstOf("damage", "player"); ok {
		st.firstPlayerHit = e.Tick
	}
	if e, ok := log.FirstOf("death", "player"); ok {
		st.playerDeathTick = e.Tick
	}
	for _, e := range log.Filter("damage", "player") {
		st.playerDamage += e.NumVal
	}
	st.agentDeaths = log.CountCategory("death", "agent")
	st.shotsFired = log.CountCategory("combat", "shot")
	for _, e := range log.Filter("combat", "shot") {
		if e.Agent == "P" {
			st.playerShots++
		}
	}
	st.wallImpacts = log.CountCategory("combat", "wall_impact")
	st.survivors = ts.World.AliveAgents()
	st.playerSurvived = !ts.World.Player.Dead()
	st.finalPlayerHP = ts.World.Player.Health
	st.finalPlayerArmor = ts.World.Player.Armor
	return st
}

func printRun(sb *strings.Builder, st runStats) {
	fmt.Fprintf(sb, "--- run %d (seed %d) ---\n", st.runIndex, st.seed)
	fmt.Fprintf(sb, "first chase T=%d  first attack T=%d  first player hit T=%d\n",
		st.firstChaseTick, st.firstAttackTick, st.firstPlayerHit)
	fmt.Fprintf(sb, "shots=%d (player %d, agents %d) wall_impacts=%d agent_deaths=%d survivors=%d\n",
		st.shotsFired, st.playerShots, st.shotsFired-st.playerShots, st.wallImpacts, st.agentDeaths, st.survivors)
	if st.playerSurvived {
		fmt.Fprintf(sb, "player survived: hp=%.0f armor=%.0f (took %.1f dmg)\n\n",
			st.finalPlayerHP, st.finalPlayerArmor, st.playerDamage)
	} else {
		fmt.Fprintf(sb, "player died at T=%d (took %.1f dmg)\n\n", st.playerDeathTick, st.playerDamage)
	}
}

func printAggregate(sb *strings.Builder, all []runStats) {
	if len(all) == 0 {
		return
	}
	var shots, deaths, survived int
	var dmg float64
	for _, st := range all {
		shots += st.shotsFired
		deaths += st.agentDeaths
		dmg += st.playerDamage
		if st.playerSurvived {
			survived++
		}
	}
	n := float64(len(all))
	fmt.Fprintf(sb, "=== aggregate over %d runs ===\n", len(all))
	fmt.Fprintf(sb, "avg shots/run=%.1f  avg agent deaths/run=%.1f  avg player dmg/run=%.1f\n",
		float64(shots)/n, float64(deaths)/n, dmg/n)
	fmt.Fprintf(sb, "player survival rate: %d/%d\n", survived, len(all))
}
