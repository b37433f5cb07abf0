package sim

// Events are the one-way notifications this core exposes to the presentation
// layer: it appends them during a tick, the consumer drains them afterwards.
// The core never depends on how (or whether) they are rendered.

// Event is implemented by every notification type.
type Event interface {
	event()
}

// ShotFiredEvent records one resolved pellet trace.
type ShotFiredEvent struct {
	Origin  Point
	Angle   float64
	End     Point // wall hit point or nominal range endpoint
	Weapon  WeaponKind
	ByAgent bool   // false = player shot
	Shooter string // "P" or the agent label
	HitWall bool
}

// WallImpactEvent marks a shot terminating against a wall.
type WallImpactEvent struct {
	At    Point
	Angle float64
}

// AgentDamagedEvent records health loss on an agent.
type AgentDamagedEvent struct {
	AgentID int
	Tier    Tier
	At      Point
	Amount  float64
}

// AgentDiedEvent fires exactly once per agent, on the tick its health
// reaches zero.
type AgentDiedEvent struct {
	AgentID int
	Tier    Tier
	At      Point
	Loot    LootKind
}

// PlayerDamagedEvent records mitigated damage applied to the player.
type PlayerDamagedEvent struct {
	Amount         float64 // post-mitigation health loss
	RemainingArmor float64
}

// PlayerDiedEvent ends the run.
type PlayerDiedEvent struct{}

// DestructibleDestroyedEvent marks a scenery object absorbing a fatal hit.
type DestructibleDestroyedEvent struct {
	At Point
}

func (ShotFiredEvent) event()             {}
func (WallImpactEvent) event()            {}
func (AgentDamagedEvent) event()          {}
func (AgentDiedEvent) event()             {}
func (PlayerDamagedEvent) event()         {}
func (PlayerDiedEvent) event()            {}
func (DestructibleDestroyedEvent) event() {}

// LootKind identifies what an agent drops on death.
type LootKind int

const (
	LootNone LootKind = iota
	LootAmmo
	LootArmorShard
	LootMedkit
)

func (l LootKind) String() string {
	switch l {
	case LootNone:
		return "none"
	case LootAmmo:
		return "ammo"
	case LootArmorShard:
		return "armor"
	case LootMedkit:
		return "medkit"
	default:
		return "unknown"
	}
}
