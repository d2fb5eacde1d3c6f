package game

import (
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

// dumpLog prints the full SimLog to t.Log so it appears in `go test -v` output.
func dumpLog(t *testing.T, ts *TestSim) {
	t.Helper()
	entries := ts.SimLog.Entries()
	if len(entries) == 0 {
		t.Log("(no log entries)")
		return
	}
	for _, e := range entries {
		t.Log(e.String())
	}
}

// dumpSummary prints the scenario summary block.
func dumpSummary(t *testing.T, ts *TestSim) {
	t.Helper()
	t.Log(ts.SimLog.Summary(ts.World))
	t.Log(ts.Report().Format())
	if ts.Reporter != nil {
		if wr := ts.Reporter.WindowSummary(); wr != nil {
			t.Log(wr.Format())
		}
	}
}

func arenaSim(seed int64) *TestSim {
	turret := DefaultTurretConfig()
	turret.FireRange = 40
	turret.FireRate = 1.5
	creature := DefaultAgentConfig()
	creature.DetectionRadius = 15
	return NewTestSim(
		WithSeed(seed),
		WithReporter(300),
		WithBoundedPlayer("P0", mgl64.Vec3{0, 0, 20},
			NewHealth(100, 2).WithRespawnPoint(mgl64.Vec3{0, 0, 30}), Bounds{Offset: mgl64.Vec3{0, 0.5, 0}, Radius: 0.5}),
		WithObstacle("O0", mgl64.Vec3{6, 0, 10}, 1.5),
		WithCreature("C0", mgl64.Vec3{8, 0, 20}, creature),
		WithCreature("C1", mgl64.Vec3{-8, 0, 24}, creature),
		WithTurret("T0", mgl64.Vec3{}, turret),
		WithHazard("H0", mgl64.Vec3{-2, 0, 20}, DefaultHazardConfig()),
	)
}

func TestScenario_ArenaInvariants(t *testing.T) {
	ts := arenaSim(42)
	coasted := map[string]bool{}
	shots := 0

	for i := 0; i < 1800; i++ {
		ts.RunTicks(1)

		for _, a := range ts.World.Directory().All() {
			if hs := a.Health; hs != nil && (hs.Current < 0 || hs.Current > hs.Max) {
				t.Fatalf("tick %d: %s health %.2f outside [0, %.0f]", ts.CurrentTick(), a.Label, hs.Current, hs.Max)
			}
			if hs := a.Health; hs != nil && hs.RespawnPending() && hs.Status != StatusDead {
				t.Fatalf("tick %d: %s has a respawn timer while %s", ts.CurrentTick(), a.Label, hs.Status)
			}
		}
		for _, m := range ts.World.Missiles() {
			if coasted[m.Label()] && m.Phase() != PhaseCoasting {
				t.Fatalf("tick %d: %s went back to tracking", ts.CurrentTick(), m.Label())
			}
			if m.Phase() == PhaseCoasting {
				coasted[m.Label()] = true
			}
		}
		tur := ts.Turret("T0")
		if tur.Shots() > shots {
			if tur.TargetDistance() > tur.Config().FireRange {
				t.Fatalf("tick %d: fired at %.2f beyond range", ts.CurrentTick(), tur.TargetDistance())
			}
			shots = tur.Shots()
		}
	}

	r := ts.Report()
	if r.Shots == 0 {
		dumpLog(t, ts)
		t.Fatal("turret never fired")
	}
	if r.Shots != r.Spawns {
		t.Fatalf("shots=%d spawns=%d", r.Shots, r.Spawns)
	}
	if r.Deaths < r.Respawns || r.Deaths-r.Respawns > 3 {
		t.Fatalf("deaths=%d respawns=%d", r.Deaths, r.Respawns)
	}
	dumpSummary(t, ts)
}

func TestScenario_Deterministic(t *testing.T) {
	a, b := arenaSim(9), arenaSim(9)
	a.RunTicks(900)
	b.RunTicks(900)
	if a.SimLog.Format() != b.SimLog.Format() {
		t.Fatal("same seed produced different logs")
	}
	if len(a.Events) != len(b.Events) {
		t.Fatalf("events %d vs %d", len(a.Events), len(b.Events))
	}
	for i := range a.Events {
		if a.Events[i].ID != b.Events[i].ID {
			t.Fatalf("event %d ids differ", i)
		}
	}
}

func TestWorld_SpawnedMissilesStartNextTick(t *testing.T) {
	ts := NewTestSim(
		WithDT(0.5),
		WithPlayer("P0", mgl64.Vec3{0, 0, 30}, nil),
		WithTurret("T0", mgl64.Vec3{}, DefaultTurretConfig()),
	)
	ts.RunTicks(1)
	ms := ts.World.Missiles()
	if len(ms) != 1 {
		t.Fatalf("missiles=%d want 1", len(ms))
	}
	if ms[0].Age() != 0 {
		t.Fatal("a missile spawned this tick must not have moved yet")
	}
	ts.RunTicks(1)
	if ms[0].Age() != 0.5 {
		t.Fatalf("age=%.2f want 0.5", ms[0].Age())
	}
}

func TestWorld_CustomContactSource(t *testing.T) {
	ts := NewTestSim(WithBoundedPlayer("P0", mgl64.Vec3{}, nil, Bounds{Radius: 1}))
	src := &recordingContacts{inner: NewSphereContacts()}
	ts.World.SetContactSource(src)
	ts.World.AddHazard("H0", mgl64.Vec3{0.5, 0, 0}, DefaultHazardConfig())
	ts.RunTicks(3)
	if src.calls != 3 {
		t.Fatalf("contact source called %d times, want 3", src.calls)
	}
	if src.began != 1 || src.total < 3 {
		t.Fatalf("began=%d total=%d, want a single entry then stays", src.began, src.total)
	}
}

type recordingContacts struct {
	inner               ContactSource
	calls, began, total int
}

func (r *recordingContacts) Contacts(bodies []Body) []Contact {
	r.calls++
	out := r.inner.Contacts(bodies)
	for _, c := range out {
		r.total++
		if c.Began {
			r.began++
		}
	}
	return out
}

func TestSimLog_SummaryAndFilters(t *testing.T) {
	ts := arenaSim(3)
	ts.RunTicks(600)
	sum := ts.SimLog.Summary(ts.World)
	for _, want := range []string{"Summary at T=600", "player:", "Agents: 2", "Missiles in flight"} {
		if !strings.Contains(sum, want) {
			t.Fatalf("summary missing %q:\n%s", want, sum)
		}
	}
	for _, e := range ts.SimLog.FilterActor("T0") {
		if e.Actor != "T0" {
			t.Fatalf("FilterActor leaked %s", e.String())
		}
	}
	for _, e := range ts.SimLog.FilterTickRange(100, 200) {
		if e.Tick < 100 || e.Tick > 200 {
			t.Fatalf("FilterTickRange leaked %s", e.String())
		}
	}
	if ts.SimLog.CountCategory("directory", "add") != 6 {
		t.Fatalf("directory adds=%d want 6", ts.SimLog.CountCategory("directory", "add"))
	}
}

func TestSimLog_VerboseGate(t *testing.T) {
	quiet := NewSimLog(false)
	quiet.AddVerbose(1, "P0", "player", "ai", "distance", "1.0", 1)
	if quiet.Len() != 0 {
		t.Fatal("verbose entry recorded on a quiet log")
	}
	loud := NewSimLog(true)
	loud.AddVerbose(1, "P0", "player", "ai", "distance", "1.0", 1)
	if loud.Len() != 1 {
		t.Fatal("verbose entry dropped on a verbose log")
	}
}

func TestReport_CountsFromLog(t *testing.T) {
	log := NewSimLog(false)
	log.Add(1, "T0", "turret", "turret", "fire", "M0 → P0", 10)
	log.Add(1, "M0", "missile", "missile", "spawn", "", 0)
	log.Add(3, "M0", "missile", "missile", "coast", "", 2)
	log.Add(4, "M0", "missile", "missile", "hit", "", 25)
	log.Add(4, "P0", "player", "health", "damage", "-25.0 → 75.0/100", 75)
	log.Add(6, "P0", "player", "health", "damage", "-80.0 → 0.0/100", 0)
	log.Add(6, "P0", "player", "health", "died", "", 0)
	log.Add(9, "P0", "player", "health", "respawned", "", 100)
	log.Add(9, "T0", "turret", "diag", "no_template", "x", 0)

	r := BuildReport(log, 8)
	if r.Shots != 1 || r.Coasted != 1 || r.MissileHits != 1 || r.Deaths != 1 || r.Respawns != 0 {
		t.Fatalf("report %+v", r)
	}
	if r.DamageTaken["P0"] != 105 {
		t.Fatalf("damage taken %.1f want 105", r.DamageTaken["P0"])
	}
	if r.FirstDeathTick != 6 || r.FirstShotTick != 1 {
		t.Fatalf("first ticks shot=%d death=%d", r.FirstShotTick, r.FirstDeathTick)
	}
	full := BuildReport(log, 100)
	if full.Respawns != 1 || full.Diagnostics != 1 {
		t.Fatalf("full report %+v", full)
	}
	if !strings.Contains(full.Format(), "hit_rate=100%") {
		t.Fatalf("format:\n%s", full.Format())
	}
}
