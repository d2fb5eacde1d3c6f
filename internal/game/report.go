package game

import (
	"fmt"
	"sort"
	"strings"
)

// reportWindowTicks is the default sliding window for recent-activity reports (~10s at 60TPS).
const reportWindowTicks = 600

// EncounterReport tallies what happened during a run, read back from the
// SimLog.
type EncounterReport struct {
	Tick int

	Shots          int
	Spawns         int
	Coasted        int
	MissileHits    int
	ObstacleHits   int
	Expired        int
	MeleeHits      int
	HazardHits     int
	Deaths         int
	Respawns       int
	StateChanges   int
	Diagnostics    int
	FirstShotTick  int // -1 when none
	FirstDeathTick int // -1 when none

	DamageTaken map[string]float64 // actor label → total damage received
	DeathsBy    map[string]int     // actor label → deaths
}

// BuildReport scans log up to and including tick.
func BuildReport(log *SimLog, tick int) EncounterReport {
	r := EncounterReport{
		Tick:           tick,
		FirstShotTick:  -1,
		FirstDeathTick: -1,
		DamageTaken:    make(map[string]float64),
		DeathsBy:       make(map[string]int),
	}
	for _, e := range log.Entries() {
		if e.Tick > tick {
			break
		}
		switch e.Category + "/" + e.Key {
		case "turret/fire":
			r.Shots++
			if r.FirstShotTick < 0 {
				r.FirstShotTick = e.Tick
			}
		case "missile/spawn":
			r.Spawns++
		case "missile/coast":
			r.Coasted++
		case "missile/hit":
			r.MissileHits++
		case "missile/obstacle":
			r.ObstacleHits++
		case "missile/expired":
			r.Expired++
		case "ai/melee_hit":
			r.MeleeHits++
		case "ai/state_change":
			r.StateChanges++
		case "hazard/hit":
			r.HazardHits++
		case "health/damage":
			var amount float64
			if _, err := fmt.Sscanf(e.Value, "-%g", &amount); err == nil {
				r.DamageTaken[e.Actor] += amount
			}
		case "health/died":
			r.Deaths++
			r.DeathsBy[e.Actor]++
			if r.FirstDeathTick < 0 {
				r.FirstDeathTick = e.Tick
			}
		case "health/respawned":
			r.Respawns++
		}
		if e.Category == "diag" {
			r.Diagnostics++
		}
	}
	return r
}

// HitRate returns missile hits per shot, 0 with no shots.
func (r EncounterReport) HitRate() float64 {
	if r.Shots == 0 {
		return 0
	}
	return float64(r.MissileHits) / float64(r.Shots)
}

// Format renders the report as a multi-line block.
func (r EncounterReport) Format() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "=== Encounter Report T=%d ===\n", r.Tick)
	fmt.Fprintf(&sb, "Turrets:  shots=%d spawned=%d first_shot=%s\n", r.Shots, r.Spawns, tickOrDash(r.FirstShotTick))
	fmt.Fprintf(&sb, "Missiles: hits=%d coasted=%d obstacle=%d expired=%d hit_rate=%.0f%%\n",
		r.MissileHits, r.Coasted, r.ObstacleHits, r.Expired, r.HitRate()*100)
	fmt.Fprintf(&sb, "Melee:    hits=%d state_changes=%d\n", r.MeleeHits, r.StateChanges)
	fmt.Fprintf(&sb, "Hazards:  hits=%d\n", r.HazardHits)
	fmt.Fprintf(&sb, "Health:   deaths=%d respawns=%d first_death=%s\n", r.Deaths, r.Respawns, tickOrDash(r.FirstDeathTick))
	if r.Diagnostics > 0 {
		fmt.Fprintf(&sb, "Diagnostics: %d\n", r.Diagnostics)
	}

	labels := make([]string, 0, len(r.DamageTaken))
	for l := range r.DamageTaken {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	for _, l := range labels {
		fmt.Fprintf(&sb, "  %-4s damage=%6.1f deaths=%d\n", l, r.DamageTaken[l], r.DeathsBy[l])
	}
	return sb.String()
}

func tickOrDash(t int) string {
	if t < 0 {
		return "-"
	}
	return fmt.Sprintf("T=%d", t)
}

// --- Reporter ---

// WindowReport summarises the recent sliding window of snapshots.
type WindowReport struct {
	FromTick, ToTick  int
	AvgAttacking      float64 // mean agents in Attack
	AvgMissiles       float64 // mean missiles in flight
	CoastingFraction  float64 // coasting share of missile samples
	MinPlayersActive  int
	PlayerDownSamples int // samples with at least one player inactive
}

// Reporter samples snapshots periodically and summarises a sliding window.
type Reporter struct {
	history     []Snapshot
	windowTicks int
}

// NewReporter creates a reporter with the given window size.
func NewReporter(windowTicks int) *Reporter {
	if windowTicks <= 0 {
		windowTicks = reportWindowTicks
	}
	return &Reporter{windowTicks: windowTicks}
}

// Collect records a snapshot of w.
func (r *Reporter) Collect(w *World) {
	r.history = append(r.history, w.Snapshot())
	// Drop samples that can no longer fall inside the window.
	cutoff := w.Tick() - r.windowTicks
	i := 0
	for i < len(r.history) && r.history[i].Tick < cutoff {
		i++
	}
	if i > 0 {
		r.history = append(r.history[:0], r.history[i:]...)
	}
}

// Latest returns the most recent snapshot, or nil.
func (r *Reporter) Latest() *Snapshot {
	if len(r.history) == 0 {
		return nil
	}
	return &r.history[len(r.history)-1]
}

// WindowSummary aggregates the retained snapshots, nil with no samples.
func (r *Reporter) WindowSummary() *WindowReport {
	if len(r.history) == 0 {
		return nil
	}
	wr := &WindowReport{
		FromTick:         r.history[0].Tick,
		ToTick:           r.history[len(r.history)-1].Tick,
		MinPlayersActive: -1,
	}
	var attacking, missiles, coasting int
	for _, s := range r.history {
		for _, a := range s.Actors {
			if a.State == AgentAttack.String() {
				attacking++
			}
		}
		missiles += len(s.Missiles)
		for _, m := range s.Missiles {
			if m.Phase == PhaseCoasting.String() {
				coasting++
			}
		}
		active, total := 0, 0
		for _, a := range s.Actors {
			if a.Category == CategoryPlayer.String() {
				total++
				if a.Active {
					active++
				}
			}
		}
		if wr.MinPlayersActive < 0 || active < wr.MinPlayersActive {
			wr.MinPlayersActive = active
		}
		if active < total {
			wr.PlayerDownSamples++
		}
	}
	n := float64(len(r.history))
	wr.AvgAttacking = float64(attacking) / n
	wr.AvgMissiles = float64(missiles) / n
	if missiles > 0 {
		wr.CoastingFraction = float64(coasting) / float64(missiles)
	}
	return wr
}

// Format renders the window summary.
func (wr *WindowReport) Format() string {
	return fmt.Sprintf("Window T=%d..%d: attacking=%.2f missiles=%.2f coasting=%.0f%% min_players=%d down_samples=%d\n",
		wr.FromTick, wr.ToTick, wr.AvgAttacking, wr.AvgMissiles, wr.CoastingFraction*100,
		wr.MinPlayersActive, wr.PlayerDownSamples)
}
