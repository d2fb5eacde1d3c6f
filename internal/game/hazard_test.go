package game

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestHazard_OscillatesAndReverses(t *testing.T) {
	cfg := DefaultHazardConfig()
	cfg.Speed = 2
	cfg.Travel = 2.5
	ts := NewTestSim(WithDT(0.25), WithHazard("H0", mgl64.Vec3{1, 0, 1}, cfg))
	hz := ts.Hazard("H0")

	ts.RunTicks(4)
	if hz.Reversing() || !approx(hz.Offset(), 2, 1e-9) {
		t.Fatalf("tick 4: offset=%.2f reversing=%v", hz.Offset(), hz.Reversing())
	}
	ts.RunTicks(1)
	if !hz.Reversing() || !approx(hz.Offset(), 2.5, 1e-9) {
		t.Fatalf("tick 5: offset=%.2f reversing=%v, want 2.5 and reversing", hz.Offset(), hz.Reversing())
	}
	ts.RunTicks(5)
	if hz.Reversing() || !approx(hz.Offset(), 0, 1e-9) {
		t.Fatalf("tick 10: offset=%.2f reversing=%v, want home and outbound", hz.Offset(), hz.Reversing())
	}
	if hz.Pose().Position.Z() != 1 {
		t.Fatal("blade left its axis")
	}
}

func TestHazard_NegativeTravelRunsBackwards(t *testing.T) {
	cfg := DefaultHazardConfig()
	cfg.Speed = 2
	cfg.Travel = -1
	ts := NewTestSim(WithDT(0.25), WithHazard("H0", mgl64.Vec3{}, cfg))
	ts.RunTicks(2)
	if hz := ts.Hazard("H0"); !hz.Reversing() || !approx(hz.Pose().Position.X(), -1, 1e-9) {
		t.Fatalf("x=%.2f reversing=%v", hz.Pose().Position.X(), hz.Reversing())
	}
}

func TestHazard_DamagesOnContactEntryOnly(t *testing.T) {
	cfg := DefaultHazardConfig()
	cfg.Speed = 0
	ts := NewTestSim(
		WithBoundedPlayer("P0", mgl64.Vec3{0.2, 0, 0}, nil, Bounds{Radius: 0.5}),
		WithHazard("H0", mgl64.Vec3{}, cfg),
	)
	ts.RunTicks(30)
	p := ts.Player("P0")
	if p.Health.Current != 100-cfg.Damage {
		t.Fatalf("health=%.1f want one hit", p.Health.Current)
	}

	// Leave and come back: a fresh contact hits again.
	p.Pose.Position = mgl64.Vec3{10, 0, 0}
	ts.RunTicks(1)
	p.Pose.Position = mgl64.Vec3{0.2, 0, 0}
	ts.RunTicks(1)
	if ts.Hazard("H0").Hits() != 2 {
		t.Fatalf("hits=%d want 2", ts.Hazard("H0").Hits())
	}
}

func TestHazard_ObstacleDestroysBlade(t *testing.T) {
	cfg := DefaultHazardConfig()
	ts := NewTestSim(
		WithDT(0.25),
		WithObstacle("O0", mgl64.Vec3{2, 0, 0}, 0.5),
		WithHazard("H0", mgl64.Vec3{}, cfg),
	)
	ts.RunTicks(3)
	if len(ts.World.Hazards()) != 0 {
		t.Fatalf("blade should be gone\n%s", ts.SimLog.Format())
	}
	if !ts.Hazard("H0").Destroyed() {
		t.Fatal("expected destroyed flag")
	}
}

func TestHazard_Spins(t *testing.T) {
	ts := NewTestSim(WithDT(0.125), WithHazard("H0", mgl64.Vec3{}, DefaultHazardConfig()))
	ts.RunTicks(2)
	hz := ts.Hazard("H0")
	// Spinning about the forward axis leaves forward fixed and rolls up.
	if !vecApprox(hz.Pose().Forward(), forwardAxis, 1e-9) {
		t.Fatalf("forward moved: %v", hz.Pose().Forward())
	}
	up := hz.Pose().Orientation.Rotate(upAxis)
	if !vecApprox(up, mgl64.Vec3{-1, 0, 0}, 1e-9) {
		t.Fatalf("after a quarter second up=%v, want a quarter turn", up)
	}
}
