package main

import (
	"strings"
	"testing"

	"github.com/Garsondee/Skirmish-Sense/internal/game"
	"github.com/Garsondee/Skirmish-Sense/internal/scenario"
)

func TestDetectStalemate_TrueWhenShotsNeverKill(t *testing.T) {
	rs := runStats{report: game.EncounterReport{Shots: 20, Spawns: 20, MissileHits: 2, Coasted: 15}}

	isStalemate, reason := detectStalemate(rs)
	if !isStalemate {
		t.Fatalf("expected stalemate=true, got false (reason=%s)", reason)
	}
	if !strings.Contains(reason, "no_deaths_low_hit_rate") {
		t.Fatalf("expected reason to mention no_deaths_low_hit_rate, got: %s", reason)
	}
}

func TestDetectStalemate_FalseWhenSomeoneDies(t *testing.T) {
	rs := runStats{report: game.EncounterReport{Shots: 20, MissileHits: 1, Deaths: 1}}
	if isStalemate, reason := detectStalemate(rs); isStalemate {
		t.Fatalf("expected stalemate=false after a death (reason=%s)", reason)
	}
}

func TestDetectStalemate_FalseWhenHitsLand(t *testing.T) {
	rs := runStats{report: game.EncounterReport{Shots: 10, MissileHits: 3}}
	if isStalemate, reason := detectStalemate(rs); isStalemate {
		t.Fatalf("expected stalemate=false with hits landing (reason=%s)", reason)
	}
}

func TestDetectStalemate_FalseWithTooFewShots(t *testing.T) {
	rs := runStats{report: game.EncounterReport{Shots: 2}}
	isStalemate, reason := detectStalemate(rs)
	if isStalemate || !strings.Contains(reason, "too_few_shots") {
		t.Fatalf("stalemate=%v reason=%s", isStalemate, reason)
	}
}

func TestCoastingShare(t *testing.T) {
	if got := coastingShare(game.EncounterReport{}); got != 0 {
		t.Fatalf("empty report share=%.2f", got)
	}
	if got := coastingShare(game.EncounterReport{Spawns: 4, Coasted: 3}); got != 0.75 {
		t.Fatalf("share=%.2f want 0.75", got)
	}
}

func TestRunScenario_ArenaProducesActivity(t *testing.T) {
	rs, err := runScenario(scenario.Default(), 1, 42, 1200)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if rs.report.Shots == 0 {
		t.Fatal("turrets never fired in the arena")
	}
	if rs.report.Shots != rs.report.Spawns {
		t.Fatalf("shots=%d spawns=%d", rs.report.Shots, rs.report.Spawns)
	}
	if rs.playersTotal != 1 || rs.windowSummary == nil {
		t.Fatalf("players=%d window=%v", rs.playersTotal, rs.windowSummary)
	}

	var sb strings.Builder
	printRun(&sb, rs)
	printAggregate(&sb, []runStats{rs})
	for _, want := range []string{"Run 1 (seed=42)", "Encounter Report", "=== Aggregate ===", "stalemate="} {
		if !strings.Contains(sb.String(), want) {
			t.Fatalf("output missing %q:\n%s", want, sb.String())
		}
	}
}
