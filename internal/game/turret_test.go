package game

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func cannon(rate float64) TurretConfig {
	cfg := DefaultTurretConfig()
	cfg.FireRate = rate
	cfg.FireRange = 50
	return cfg
}

func TestTurret_FireRateGatesSecondShot(t *testing.T) {
	ts := NewTestSim(
		WithDT(0.5),
		WithPlayer("P0", mgl64.Vec3{0, 0, 20}, nil),
		WithTurret("T0", mgl64.Vec3{}, cannon(1)),
	)
	tur := ts.Turret("T0")

	ts.RunTicks(2) // attempts 0.5s apart
	if tur.Shots() != 1 {
		t.Fatalf("attempts under fireRate apart: shots=%d want 1", tur.Shots())
	}
	ts.RunTicks(1) // 1.0s after the first shot
	if tur.Shots() != 2 {
		t.Fatalf("attempts fireRate apart: shots=%d want 2", tur.Shots())
	}
	if n := len(ts.EventsOf(EventSpawnRequested)); n != 2 {
		t.Fatalf("spawn requests=%d want 2", n)
	}
}

func TestTurret_FireRateWithInexactTicks(t *testing.T) {
	ts := NewTestSim(
		WithDT(0.1),
		WithPlayer("P0", mgl64.Vec3{0, 0, 20}, nil),
		WithTurret("T0", mgl64.Vec3{}, cannon(1)),
	)
	tur := ts.Turret("T0")
	ts.RunTicks(10)
	if tur.Shots() != 1 {
		t.Fatalf("after 1.0s: shots=%d want 1", tur.Shots())
	}
	ts.RunTicks(1)
	if tur.Shots() != 2 {
		t.Fatalf("after 1.1s: shots=%d want 2 (cooldown elapsed)", tur.Shots())
	}
}

func TestTurret_OutOfRangeNeverFires(t *testing.T) {
	ts := NewTestSim(
		WithPlayer("P0", mgl64.Vec3{0, 0, 80}, nil),
		WithTurret("T0", mgl64.Vec3{}, cannon(0.5)),
	)
	ts.RunTicks(120)
	tur := ts.Turret("T0")
	if tur.Shots() != 0 {
		t.Fatalf("shots=%d at range 80 > 50", tur.Shots())
	}
	if !tur.Target().Points(ts.Player("P0").Handle()) {
		t.Fatal("turret should still track an out-of-range target")
	}
}

func TestTurret_TieGoesToFirstDiscovered(t *testing.T) {
	ts := NewTestSim(
		WithPlayer("P0", mgl64.Vec3{10, 0, 0}, nil),
		WithPlayer("P1", mgl64.Vec3{-10, 0, 0}, nil),
		WithTurret("T0", mgl64.Vec3{}, cannon(1)),
	)
	ts.RunTicks(1)
	if !ts.Turret("T0").Target().Points(ts.Player("P0").Handle()) {
		t.Fatal("equidistant targets: expected the first discovered")
	}
}

func TestTurret_SelectsNearest(t *testing.T) {
	ts := NewTestSim(
		WithPlayer("P0", mgl64.Vec3{0, 0, 30}, nil),
		WithPlayer("P1", mgl64.Vec3{0, 0, 12}, nil),
		WithTurret("T0", mgl64.Vec3{}, cannon(1)),
	)
	ts.RunTicks(1)
	tur := ts.Turret("T0")
	if !tur.Target().Points(ts.Player("P1").Handle()) {
		t.Fatal("expected the nearest player")
	}
	if !approx(tur.TargetDistance(), 12, 1e-9) {
		t.Fatalf("target distance %.2f want 12", tur.TargetDistance())
	}
}

func TestTurret_MissingTemplateIsNoOp(t *testing.T) {
	ts := NewTestSim(
		WithPlayer("P0", mgl64.Vec3{0, 0, 10}, nil),
		WithTurret("T0", mgl64.Vec3{}, cannon(1)),
	)
	ts.World.RemoveTemplate(DefaultMissileTemplate)
	ts.RunTicks(30)

	tur := ts.Turret("T0")
	if tur.Shots() != 0 || len(ts.World.Missiles()) != 0 {
		t.Fatalf("shots=%d missiles=%d, want none", tur.Shots(), len(ts.World.Missiles()))
	}
	if tur.Cooldown() != 0 {
		t.Fatalf("cooldown %.2f should not reset without a spawn", tur.Cooldown())
	}
	if n := ts.SimLog.CountCategory("diag", "no_template"); n != 1 {
		t.Fatalf("template diagnostics=%d want 1", n)
	}
}

func TestTurret_EmptyTemplateOnlyTracks(t *testing.T) {
	for _, staged := range []bool{false, true} {
		cfg := cannon(1)
		cfg.Template = ""
		cfg.Staged = staged
		ts := NewTestSim(
			WithPlayer("P0", mgl64.Vec3{10, 0, 0}, nil),
			WithTurret("T0", mgl64.Vec3{}, cfg),
		)
		tur := ts.Turret("T0")
		ts.RunTicks(180)

		if tur.Shots() != 0 || len(ts.World.Missiles()) != 0 || tur.Stage() != StageIdle {
			t.Fatalf("staged=%v: shots=%d missiles=%d stage=%s, want a silent tracker",
				staged, tur.Shots(), len(ts.World.Missiles()), tur.Stage())
		}
		if n := ts.SimLog.CountCategory("diag", ""); n != 0 {
			t.Fatalf("staged=%v: diagnostics=%d want none\n%s", staged, n, ts.SimLog.Format())
		}
		if off := AngleBetween(tur.Pivot(), LookRotation(mgl64.Vec3{10, 0, 0})); off > 0.01 {
			t.Fatalf("staged=%v: pivot still %.3f rad off target", staged, off)
		}
	}
}

func TestTurret_MissingPivotStillFires(t *testing.T) {
	cfg := cannon(1)
	cfg.HasPivot = false
	ts := NewTestSim(
		WithPlayer("P0", mgl64.Vec3{10, 0, 0}, nil),
		WithTurret("T0", mgl64.Vec3{}, cfg),
	)
	ts.RunTicks(10)
	tur := ts.Turret("T0")
	if tur.Pivot() != mgl64.QuatIdent() {
		t.Fatal("pivot should not move without a pivot configured")
	}
	if tur.Shots() != 1 {
		t.Fatalf("shots=%d want 1", tur.Shots())
	}
	if n := ts.SimLog.CountCategory("diag", "no_pivot"); n != 1 {
		t.Fatalf("pivot diagnostics=%d want 1", n)
	}
}

func TestTurret_SteersTowardTarget(t *testing.T) {
	ts := NewTestSim(
		WithPlayer("P0", mgl64.Vec3{10, 0, 0}, nil),
		WithTurret("T0", mgl64.Vec3{}, cannon(100)),
	)
	tur := ts.Turret("T0")
	want := LookRotation(mgl64.Vec3{10, 0, 0})
	start := AngleBetween(tur.Pivot(), want)

	ts.RunTicks(1)
	mid := AngleBetween(tur.Pivot(), want)
	if mid >= start || mid <= 0 {
		t.Fatalf("one tick should turn partway: start=%.3f mid=%.3f", start, mid)
	}
	ts.RunTicks(120)
	if end := AngleBetween(tur.Pivot(), want); end > 0.01 {
		t.Fatalf("pivot still %.3f rad off target", end)
	}
}

func TestTurret_StagedCycle(t *testing.T) {
	cfg := cannon(1)
	cfg.Staged = true
	cfg.WindUpTime = 0.5
	cfg.RecoverTime = 0.25
	ts := NewTestSim(
		WithDT(0.25),
		WithPlayer("P0", mgl64.Vec3{0, 0, 20}, nil),
		WithTurret("T0", mgl64.Vec3{}, cfg),
	)
	tur := ts.Turret("T0")

	want := []struct {
		stage FireStage
		shots int
	}{
		{StageWindUp, 0},  // t=0.25 wind-up begins, cooldown reset
		{StageWindUp, 0},  // 0.50
		{StageRecover, 1}, // 0.75 launch
		{StageIdle, 1},    // 1.00 recovered, cooldown still running
		{StageWindUp, 1},  // 1.25 cooldown elapsed, next stage
		{StageWindUp, 1},  // 1.50
		{StageRecover, 2}, // 1.75
	}
	for i, w := range want {
		ts.RunTicks(1)
		if tur.Stage() != w.stage || tur.Shots() != w.shots {
			t.Fatalf("tick %d: stage=%s shots=%d, want %s/%d\n%s",
				i+1, tur.Stage(), tur.Shots(), w.stage, w.shots, ts.SimLog.Format())
		}
	}

	windups := 0
	for _, e := range ts.EventsOf(EventAnimationIntent) {
		if e.Source == "T0" && e.Intent == "windup" {
			windups++
		}
	}
	if windups != 2 {
		t.Fatalf("windup intents=%d want 2", windups)
	}
}

func TestTurret_RetargetsAfterRespawn(t *testing.T) {
	hs := NewHealth(10, 0.5).WithRespawnPoint(mgl64.Vec3{0, 0, 15})
	ts := NewTestSim(
		WithDT(0.25),
		WithPlayer("P0", mgl64.Vec3{0, 0, 10}, hs),
		WithTurret("T0", mgl64.Vec3{}, cannon(10)),
	)
	p := ts.Player("P0")
	tur := ts.Turret("T0")
	ts.RunTicks(1)

	_, _ = ts.World.Health().ApplyDamage(p.Handle(), 10)
	ts.RunTicks(1) // deactivated at the end of this tick
	if p.Active() {
		t.Fatal("player should be inactive")
	}
	ts.RunTicks(1) // respawn timer elapses, reactivated at the end of this tick
	if !p.Active() {
		t.Fatal("player should be back")
	}
	if !ts.SimLog.HasEntry("turret", "target_lost", "") {
		t.Fatalf("expected the turret to lose its target while the player was down\n%s", ts.SimLog.Format())
	}
	if !ts.SimLog.HasEntry("turret", "rebind", "P0") {
		t.Fatal("expected the respawn broadcast to rebind the turret")
	}
	if !tur.Target().Points(p.Handle()) {
		t.Fatal("turret should point at the respawned player")
	}
	ts.RunTicks(1)
	if !approx(tur.TargetDistance(), 15, 1e-9) {
		t.Fatalf("target distance %.2f want 15", tur.TargetDistance())
	}
}
