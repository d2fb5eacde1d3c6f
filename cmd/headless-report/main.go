package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"strings"

	"github.com/atotto/clipboard"

	"github.com/Garsondee/Skirmish-Sense/internal/game"
	"github.com/Garsondee/Skirmish-Sense/internal/scenario"
)

const (
	collectEvery      = 60  // ticks between reporter samples
	stalemateMinShots = 5   // fewer shots than this is too little to judge
	stalemateHitRate  = 0.2 // below this, with no deaths, the turrets are not converting
)

type runStats struct {
	runIndex int
	seed     int64

	report        game.EncounterReport
	windowSummary *game.WindowReport
	playersUp     int
	playersTotal  int
}

func main() {
	var runs int
	var ticks int
	var seedBase int64
	var seedStep int64
	var scenarioPath string
	var copyOut bool

	flag.IntVar(&runs, "runs", 5, "number of headless simulation runs")
	flag.IntVar(&ticks, "ticks", 3600, "ticks per run")
	flag.Int64Var(&seedBase, "seed-base", 42, "base RNG seed for run 1")
	flag.Int64Var(&seedStep, "seed-step", 1, "seed increment between runs")
	flag.StringVar(&scenarioPath, "scenario", "", "scenario YAML file (default: built-in arena)")
	flag.BoolVar(&copyOut, "copy", false, "copy the report to the clipboard")
	flag.Parse()

	if runs <= 0 {
		fmt.Println("error: -runs must be > 0")
		return
	}
	if ticks <= 0 {
		fmt.Println("error: -ticks must be > 0")
		return
	}

	sc := scenario.Default()
	if scenarioPath != "" {
		var err error
		if sc, err = scenario.Load(scenarioPath); err != nil {
			fmt.Printf("error: %v\n", err)
			return
		}
	}

	var buf strings.Builder
	out := io.MultiWriter(os.Stdout, &buf)

	fmt.Fprintf(out, "=== Headless Encounter Report ===\n")
	fmt.Fprintf(out, "scenario=%s runs=%d ticks=%d seed_base=%d seed_step=%d\n\n", sc.Name, runs, ticks, seedBase, seedStep)

	all := make([]runStats, 0, runs)
	for i := 0; i < runs; i++ {
		seed := seedBase + int64(i)*seedStep
		stats, err := runScenario(sc, i+1, seed, ticks)
		if err != nil {
			fmt.Printf("error: run %d: %v\n", i+1, err)
			return
		}
		all = append(all, stats)
		printRun(out, stats)
	}
	printAggregate(out, all)

	if copyOut {
		if err := clipboard.WriteAll(buf.String()); err != nil {
			log.Printf("copy to clipboard: %v", err)
		} else {
			fmt.Println("(report copied to clipboard)")
		}
	}
}

func runScenario(sc *scenario.Scenario, runIndex int, seed int64, ticks int) (runStats, error) {
	run := *sc
	run.Seed = seed
	simLog := game.NewSimLog(false)
	w, err := run.Build(simLog)
	if err != nil {
		return runStats{}, err
	}
	reporter := game.NewReporter(0)
	dt := run.DT()
	for i := 0; i < ticks; i++ {
		w.Step(dt)
		if w.Tick()%collectEvery == 0 {
			reporter.Collect(w)
		}
	}

	snap := w.Snapshot()
	total := 0
	for _, a := range snap.Actors {
		if a.Category == game.CategoryPlayer.String() {
			total++
		}
	}
	return runStats{
		runIndex:      runIndex,
		seed:          seed,
		report:        game.BuildReport(simLog, w.Tick()),
		windowSummary: reporter.WindowSummary(),
		playersUp:     snap.Count(game.CategoryPlayer.String()),
		playersTotal:  total,
	}, nil
}

// detectStalemate reports whether turrets kept shooting without ever
// converting shots into kills.
func detectStalemate(rs runStats) (bool, string) {
	r := rs.report
	if r.Deaths > 0 {
		return false, fmt.Sprintf("decisive: deaths=%d", r.Deaths)
	}
	if r.Shots < stalemateMinShots {
		return false, fmt.Sprintf("too_few_shots=%d", r.Shots)
	}
	if r.HitRate() >= stalemateHitRate {
		return false, fmt.Sprintf("hits_landing: hit_rate=%.2f", r.HitRate())
	}
	return true, fmt.Sprintf("no_deaths_low_hit_rate: shots=%d hit_rate=%.2f coasted=%d", r.Shots, r.HitRate(), r.Coasted)
}

// coastingShare is the fraction of spawned missiles that gave up tracking.
func coastingShare(r game.EncounterReport) float64 {
	if r.Spawns == 0 {
		return 0
	}
	return float64(r.Coasted) / float64(r.Spawns)
}

func printRun(out io.Writer, rs runStats) {
	fmt.Fprintf(out, "--- Run %d (seed=%d) ---\n", rs.runIndex, rs.seed)
	fmt.Fprint(out, rs.report.Format())
	fmt.Fprintf(out, "players_up=%d/%d coasting_share=%.2f\n", rs.playersUp, rs.playersTotal, coastingShare(rs.report))
	if rs.windowSummary != nil {
		fmt.Fprint(out, rs.windowSummary.Format())
	}
	stale, reason := detectStalemate(rs)
	fmt.Fprintf(out, "stalemate=%v (%s)\n\n", stale, reason)
}

func printAggregate(out io.Writer, all []runStats) {
	totalShots := 0
	totalHits := 0
	totalCoasted := 0
	totalMelee := 0
	totalHazard := 0
	totalDeaths := 0
	totalRespawns := 0
	stalemates := 0
	shotTicks := make([]int, 0, len(all))
	deathTicks := make([]int, 0, len(all))
	damage := map[string]float64{}
	deaths := map[string]int{}

	for _, rs := range all {
		r := rs.report
		totalShots += r.Shots
		totalHits += r.MissileHits
		totalCoasted += r.Coasted
		totalMelee += r.MeleeHits
		totalHazard += r.HazardHits
		totalDeaths += r.Deaths
		totalRespawns += r.Respawns
		if r.FirstShotTick >= 0 {
			shotTicks = append(shotTicks, r.FirstShotTick)
		}
		if r.FirstDeathTick >= 0 {
			deathTicks = append(deathTicks, r.FirstDeathTick)
		}
		for l, d := range r.DamageTaken {
			damage[l] += d
		}
		for l, n := range r.DeathsBy {
			deaths[l] += n
		}
		if s, _ := detectStalemate(rs); s {
			stalemates++
		}
	}

	n := len(all)
	fmt.Fprintln(out, "=== Aggregate ===")
	fmt.Fprintf(out, "runs=%d stalemates=%d\n", n, stalemates)
	fmt.Fprintf(out, "avg_per_run: shots=%.1f missile_hits=%.1f coasted=%.1f melee_hits=%.1f hazard_hits=%.1f deaths=%.1f respawns=%.1f\n",
		avg(totalShots, n), avg(totalHits, n), avg(totalCoasted, n), avg(totalMelee, n), avg(totalHazard, n), avg(totalDeaths, n), avg(totalRespawns, n))
	fmt.Fprintf(out, "phase_marker_avg_ticks: first_shot=%s first_death=%s\n", avgTickString(shotTicks), avgTickString(deathTicks))

	fmt.Fprintln(out, "\n=== Damage Taken (all runs) ===")
	labels := make([]string, 0, len(damage))
	for l := range damage {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	for _, l := range labels {
		fmt.Fprintf(out, "  %-4s avg_damage=%.1f avg_deaths=%.2f\n", l, damage[l]/float64(n), avg(deaths[l], n))
	}
}

func avg(sum int, n int) float64 {
	if n <= 0 {
		return 0
	}
	return float64(sum) / float64(n)
}

func avgTickString(vals []int) string {
	if len(vals) == 0 {
		return "n/a"
	}
	sum := 0
	for _, v := range vals {
		sum += v
	}
	return fmt.Sprintf("%.1f", float64(sum)/float64(len(vals)))
}
