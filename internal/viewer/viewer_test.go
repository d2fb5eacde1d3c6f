package viewer

import (
	"fmt"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/Garsondee/Skirmish-Sense/internal/game"
)

func TestCamera_RoundTrip(t *testing.T) {
	cam := Camera{X: 10, Z: -5, Zoom: 8, W: 800, H: 600}
	sx, sy := cam.ToScreen(10, -5)
	if sx != 400 || sy != 300 {
		t.Fatalf("centre maps to %.0f,%.0f", sx, sy)
	}
	sx, sy = cam.ToScreen(12, -4)
	if sx != 416 || sy != 292 {
		t.Fatalf("+x right, +z up: got %.0f,%.0f", sx, sy)
	}
	x, z := cam.ToWorld(416, 292)
	if math.Abs(x-12) > 1e-9 || math.Abs(z+4) > 1e-9 {
		t.Fatalf("inverse %.2f,%.2f", x, z)
	}
	cam.ZoomBy(100)
	if cam.Zoom != zoomMax {
		t.Fatalf("zoom=%.1f want clamp %.1f", cam.Zoom, zoomMax)
	}
	cam.Pan(zoomMax, 0)
	if cam.X != 11 {
		t.Fatalf("pan moved centre to %.2f", cam.X)
	}
}

func TestFeed_RingKeepsNewest(t *testing.T) {
	f := NewFeed()
	for i := 0; i < feedMaxEntries+7; i++ {
		f.Add(FeedEntry{Tick: i, Label: fmt.Sprint(i)})
	}
	got := f.Recent()
	if len(got) != feedMaxEntries {
		t.Fatalf("len=%d want %d", len(got), feedMaxEntries)
	}
	if got[0].Tick != 7 || got[len(got)-1].Tick != feedMaxEntries+6 {
		t.Fatalf("oldest=%d newest=%d", got[0].Tick, got[len(got)-1].Tick)
	}
}

func newArena() *game.World {
	w := game.NewWorld(5, nil)
	w.AddActor(&game.Actor{
		Label:    "P0",
		Category: game.CategoryPlayer,
		Pose:     game.Pose{Position: mgl64.Vec3{0, 0, 8}},
		Bounds:   &game.Bounds{Offset: mgl64.Vec3{0, 0.5, 0}, Radius: 0.5},
		Health:   game.NewHealth(100, 1),
	})
	w.AddTurret("T0", mgl64.Vec3{}, game.DefaultTurretConfig())
	return w
}

func TestGame_AdvanceFeedsEvents(t *testing.T) {
	w := newArena()
	g := New(w, 0.25)
	if n := g.Advance(); n != 1 {
		t.Fatalf("1x frame ran %d ticks", n)
	}
	entries := g.Feed().Recent()
	if len(entries) == 0 {
		t.Fatal("feed is empty after the turret fired")
	}
	if e := entries[0]; e.Kind != game.EventSpawnRequested || e.Label != "T0" {
		t.Fatalf("first entry %+v", e)
	}
	for _, e := range entries {
		if e.Kind == game.EventAudioIntent {
			t.Fatal("audio intents belong to the sound manager, not the feed")
		}
	}

	g.Clock().TogglePause()
	before := w.Tick()
	g.Advance()
	if w.Tick() != before {
		t.Fatal("paused game advanced the world")
	}
}

func TestInspector_PickAndDescribe(t *testing.T) {
	w := newArena()
	w.Step(0.25)

	var in Inspector
	if !in.Pick(w, 0.2, 7.9, 1) || in.Selected() != "P0" {
		t.Fatalf("pick near P0 selected %q", in.Selected())
	}
	lines := in.Lines(w)
	if len(lines) < 3 || lines[0] != "[ player P0 ]" {
		t.Fatalf("lines %q", lines)
	}

	if !in.Pick(w, 0, 0, 0.5) || in.Selected() != "T0" {
		t.Fatalf("pick on turret selected %q", in.Selected())
	}
	in.rawView = true
	raw := in.Lines(w)
	if raw[len(raw)-1] != "template missile pivot true" {
		t.Fatalf("raw turret lines %q", raw)
	}

	if in.Pick(w, 50, 50, 1) || in.Lines(w) != nil {
		t.Fatal("empty click should clear the selection")
	}
}
