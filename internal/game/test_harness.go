package game

import (
	"github.com/go-gl/mathgl/mgl64"
)

// defaultTestDT is the harness tick length (60 TPS).
const defaultTestDT = 1.0 / 60.0

// TestSim is a headless harness around World used by tests and the headless
// report. It builds a world from staged options and records every bus event.
type TestSim struct {
	World    *World
	SimLog   *SimLog
	Reporter *Reporter
	DT       float64
	Events   []Event

	seed    int64
	verbose bool

	players   map[string]*Actor
	creatures map[string]*Agent
	turrets   map[string]*Turret
	hazards   map[string]*Hazard
}

// simOptionKind controls the pass in which an option is applied.
type simOptionKind int

const (
	simOptInfra  simOptionKind = iota // seed, verbose, dt; applied before the world exists
	simOptActor                       // templates, players, obstacles
	simOptAgent                       // creatures, turrets, hazards; applied after actors
)

// SimOption is a builder function applied to a TestSim during construction.
type SimOption struct {
	kind simOptionKind
	fn   func(*TestSim)
}

// WithSeed sets the RNG seed for deterministic runs.
func WithSeed(seed int64) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) { ts.seed = seed }}
}

// WithVerbose enables per-tick verbose logging.
func WithVerbose(v bool) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) { ts.verbose = v }}
}

// WithDT sets the tick length in seconds.
func WithDT(dt float64) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) { ts.DT = dt }}
}

// WithReporter samples a snapshot every tick into a sliding-window reporter.
func WithReporter(windowTicks int) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) { ts.Reporter = NewReporter(windowTicks) }}
}

// WithTemplate registers a missile template.
func WithTemplate(name string, cfg MissileConfig) SimOption {
	return SimOption{simOptActor, func(ts *TestSim) { ts.World.RegisterTemplate(name, cfg) }}
}

// WithPlayer adds a damageable player. A nil health gets the defaults.
func WithPlayer(label string, pos mgl64.Vec3, hs *HealthState) SimOption {
	return SimOption{simOptActor, func(ts *TestSim) {
		if hs == nil {
			hs = NewHealth(defaultMaxHealth, defaultRespawnDelay)
		}
		ts.players[label] = ts.World.AddPlayer(label, pos, hs)
	}}
}

// WithBoundedPlayer adds a player with a bounding sphere.
func WithBoundedPlayer(label string, pos mgl64.Vec3, hs *HealthState, b Bounds) SimOption {
	return SimOption{simOptActor, func(ts *TestSim) {
		if hs == nil {
			hs = NewHealth(defaultMaxHealth, defaultRespawnDelay)
		}
		a := &Actor{Label: label, Category: CategoryPlayer, Pose: Pose{Position: pos}, Bounds: &b, Health: hs}
		ts.World.AddActor(a)
		ts.players[label] = a
	}}
}

// WithObstacle adds an inert block.
func WithObstacle(label string, pos mgl64.Vec3, radius float64) SimOption {
	return SimOption{simOptActor, func(ts *TestSim) {
		ts.World.AddObstacle(label, pos, radius)
	}}
}

// WithCreature adds an enemy creature driven by an agent.
func WithCreature(label string, pos mgl64.Vec3, cfg AgentConfig) SimOption {
	return SimOption{simOptAgent, func(ts *TestSim) {
		a := &Actor{
			Label:    label,
			Category: CategoryEnemy,
			Pose:     Pose{Position: pos},
			Bounds:   &Bounds{Radius: 0.5},
			Health:   NewHealth(defaultMaxHealth, defaultRespawnDelay),
		}
		ts.creatures[label] = ts.World.AddAgent(a, cfg)
	}}
}

// WithTurret adds a fire-control unit.
func WithTurret(label string, pos mgl64.Vec3, cfg TurretConfig) SimOption {
	return SimOption{simOptAgent, func(ts *TestSim) {
		ts.turrets[label] = ts.World.AddTurret(label, pos, cfg)
	}}
}

// WithHazard adds a saw blade.
func WithHazard(label string, pos mgl64.Vec3, cfg HazardConfig) SimOption {
	return SimOption{simOptAgent, func(ts *TestSim) {
		ts.hazards[label] = ts.World.AddHazard(label, pos, cfg)
	}}
}

// NewTestSim constructs a TestSim from the given options in three ordered passes:
//  1. Infrastructure (seed, verbose, dt)
//  2. Build World, then actors and templates
//  3. Creatures, turrets, hazards
func NewTestSim(opts ...SimOption) *TestSim {
	ts := &TestSim{
		DT:        defaultTestDT,
		seed:      1,
		players:   make(map[string]*Actor),
		creatures: make(map[string]*Agent),
		turrets:   make(map[string]*Turret),
		hazards:   make(map[string]*Hazard),
	}
	for _, o := range opts {
		if o.kind == simOptInfra {
			o.fn(ts)
		}
	}
	ts.SimLog = NewSimLog(ts.verbose)
	ts.World = NewWorld(ts.seed, ts.SimLog)
	ts.World.Bus().SubscribeAll(ListenerFunc(func(e Event) {
		ts.Events = append(ts.Events, e)
	}))
	for _, kind := range []simOptionKind{simOptActor, simOptAgent} {
		for _, o := range opts {
			if o.kind == kind {
				o.fn(ts)
			}
		}
	}
	return ts
}

// Player returns a player by label.
func (ts *TestSim) Player(label string) *Actor { return ts.players[label] }

// Creature returns a creature's agent by label.
func (ts *TestSim) Creature(label string) *Agent { return ts.creatures[label] }

// Turret returns a turret by label.
func (ts *TestSim) Turret(label string) *Turret { return ts.turrets[label] }

// Hazard returns a hazard by label.
func (ts *TestSim) Hazard(label string) *Hazard { return ts.hazards[label] }

// RunTicks advances the simulation n ticks.
func (ts *TestSim) RunTicks(n int) {
	for i := 0; i < n; i++ {
		ts.step()
	}
}

// RunUntil advances the simulation up to maxTicks, stopping early if predicate
// returns true. Returns the tick at which the predicate was satisfied, or -1.
func (ts *TestSim) RunUntil(predicate func(*TestSim) bool, maxTicks int) int {
	for i := 0; i < maxTicks; i++ {
		ts.step()
		if predicate(ts) {
			return ts.World.Tick()
		}
	}
	return -1
}

func (ts *TestSim) step() {
	ts.World.Step(ts.DT)
	if ts.Reporter != nil {
		ts.Reporter.Collect(ts.World)
	}
}

// CurrentTick returns the current simulation tick.
func (ts *TestSim) CurrentTick() int { return ts.World.Tick() }

// Snapshot returns the current world state.
func (ts *TestSim) Snapshot() Snapshot { return ts.World.Snapshot() }

// EventsOf returns the recorded events of one kind.
func (ts *TestSim) EventsOf(kind EventKind) []Event {
	var out []Event
	for _, e := range ts.Events {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

// Report builds the encounter report for the run so far.
func (ts *TestSim) Report() EncounterReport {
	return BuildReport(ts.SimLog, ts.World.Tick())
}
