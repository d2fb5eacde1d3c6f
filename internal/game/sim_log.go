package game

import (
	"fmt"
	"strings"
)

// SimLogEntry is one recorded event during a simulation run.
type SimLogEntry struct {
	Tick     int
	Actor    string  // label e.g. "P0", "C3", "T1", "M12", or "--" for global events
	Faction  string  // category of the actor, or "--"
	Category string  // health, ai, turret, missile, hazard, directory, diag
	Key      string  // specific event name within the category
	Value    string  // human-readable detail
	NumVal   float64 // optional numeric value for threshold checks
}

// String formats the entry as a fixed-width log line.
//
//	[T=042] C0   ai        state_change     wander → attack
func (e SimLogEntry) String() string {
	return fmt.Sprintf("[T=%03d] %-4s %-9s %-16s %s",
		e.Tick, e.Actor, e.Category, e.Key, e.Value)
}

// SimLog collects structured events during a run. It is unbounded and
// machine-readable; tests and the headless report read it back.
type SimLog struct {
	entries []SimLogEntry
	verbose bool
}

// NewSimLog creates a SimLog. If verbose is true, per-tick pose and timer
// entries are also recorded.
func NewSimLog(verbose bool) *SimLog {
	return &SimLog{verbose: verbose}
}

// Verbose reports whether per-tick entries are recorded.
func (sl *SimLog) Verbose() bool { return sl.verbose }

// Add records a new entry.
func (sl *SimLog) Add(tick int, actor, faction, category, key, value string, numVal float64) {
	sl.entries = append(sl.entries, SimLogEntry{
		Tick:     tick,
		Actor:    actor,
		Faction:  faction,
		Category: category,
		Key:      key,
		Value:    value,
		NumVal:   numVal,
	})
}

// AddVerbose records an entry only when verbose mode is on.
func (sl *SimLog) AddVerbose(tick int, actor, faction, category, key, value string, numVal float64) {
	if !sl.verbose {
		return
	}
	sl.Add(tick, actor, faction, category, key, value, numVal)
}

// Entries returns all recorded entries.
func (sl *SimLog) Entries() []SimLogEntry {
	return sl.entries
}

// Len returns the number of recorded entries.
func (sl *SimLog) Len() int { return len(sl.entries) }

// matches reports whether e has the category and key; empty matches any.
func (e SimLogEntry) matches(category, key string) bool {
	return (category == "" || e.Category == category) && (key == "" || e.Key == key)
}

func (sl *SimLog) where(keep func(SimLogEntry) bool) []SimLogEntry {
	var out []SimLogEntry
	for _, e := range sl.entries {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out
}

// Filter returns entries matching the given category and/or key.
// Pass empty string to match any value for that field.
func (sl *SimLog) Filter(category, key string) []SimLogEntry {
	return sl.where(func(e SimLogEntry) bool { return e.matches(category, key) })
}

// FilterActor returns the entries of one actor label.
func (sl *SimLog) FilterActor(label string) []SimLogEntry {
	return sl.where(func(e SimLogEntry) bool { return e.Actor == label })
}

// FilterTickRange returns entries within [fromTick, toTick] inclusive.
func (sl *SimLog) FilterTickRange(fromTick, toTick int) []SimLogEntry {
	return sl.where(func(e SimLogEntry) bool { return e.Tick >= fromTick && e.Tick <= toTick })
}

// CountCategory returns how many entries match the given category and key.
func (sl *SimLog) CountCategory(category, key string) int {
	return len(sl.Filter(category, key))
}

// LastOf returns the newest entry matching category and key.
func (sl *SimLog) LastOf(category, key string) (SimLogEntry, bool) {
	for i := len(sl.entries) - 1; i >= 0; i-- {
		if sl.entries[i].matches(category, key) {
			return sl.entries[i], true
		}
	}
	return SimLogEntry{}, false
}

// HasEntry reports whether any entry matches category, key and a value substring.
func (sl *SimLog) HasEntry(category, key, valueSubstr string) bool {
	for _, e := range sl.entries {
		if e.matches(category, key) && strings.Contains(e.Value, valueSubstr) {
			return true
		}
	}
	return false
}

func formatEntries(entries []SimLogEntry) string {
	var sb strings.Builder
	for _, e := range entries {
		sb.WriteString(e.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Format renders the whole log, one line per entry.
func (sl *SimLog) Format() string { return formatEntries(sl.entries) }

// FormatRange renders the entries of a tick range.
func (sl *SimLog) FormatRange(fromTick, toTick int) string {
	return formatEntries(sl.FilterTickRange(fromTick, toTick))
}

// Summary returns a short human-readable summary of the world state.
func (sl *SimLog) Summary(w *World) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "--- Summary at T=%03d (%.2fs) ---\n", w.Tick(), w.Time())

	alive := map[Category]int{}
	down := map[Category]int{}
	for _, a := range w.Directory().All() {
		if a.Health == nil {
			continue
		}
		if a.Health.Status == StatusAlive {
			alive[a.Category]++
		} else {
			down[a.Category]++
		}
	}
	for _, c := range []Category{CategoryPlayer, CategoryEnemy, CategoryNeutral} {
		if alive[c]+down[c] == 0 {
			continue
		}
		fmt.Fprintf(&sb, "%s: alive=%d down=%d\n", c, alive[c], down[c])
	}

	attacking := 0
	for _, ag := range w.Agents() {
		if ag.State() == AgentAttack {
			attacking++
		}
	}
	fmt.Fprintf(&sb, "Agents: %d (attacking=%d)\n", len(w.Agents()), attacking)

	tracking, coasting := 0, 0
	for _, m := range w.Missiles() {
		if m.Phase() == PhaseTracking {
			tracking++
		} else {
			coasting++
		}
	}
	fmt.Fprintf(&sb, "Missiles in flight: tracking=%d coasting=%d\n", tracking, coasting)
	fmt.Fprintf(&sb, "Shots=%d hits=%d deaths=%d respawns=%d\n",
		sl.CountCategory("turret", "fire"),
		sl.CountCategory("missile", "hit"),
		sl.CountCategory("health", "died"),
		sl.CountCategory("health", "respawned"))
	return sb.String()
}
