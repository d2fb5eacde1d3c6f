package game

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// --- Health constants ---

const (
	defaultMaxHealth    = 100.0 // starting health
	defaultRespawnDelay = 3.0   // seconds between death and respawn
	timerEpsilon        = 1e-9  // timers at or below this count as elapsed
)

// LifeStatus is the damage state of an actor.
type LifeStatus int

const (
	StatusAlive      LifeStatus = iota
	StatusDead                  // deactivated, respawn timer running
	StatusRespawning            // health restored, reactivation pending at the tick boundary
)

func (s LifeStatus) String() string {
	switch s {
	case StatusAlive:
		return "alive"
	case StatusDead:
		return "dead"
	case StatusRespawning:
		return "respawning"
	default:
		return "unknown"
	}
}

// HealthState is owned by exactly one actor.
type HealthState struct {
	Current      float64
	Max          float64
	Status       LifeStatus
	RespawnPoint *mgl64.Vec3 // nil: respawn in place
	RespawnDelay float64     // seconds

	respawnTimer float64
	timerArmed   bool
}

// NewHealth returns a full-health state.
func NewHealth(max, respawnDelay float64) *HealthState {
	if max < 0 {
		max = 0
	}
	return &HealthState{
		Current:      max,
		Max:          max,
		Status:       StatusAlive,
		RespawnDelay: respawnDelay,
	}
}

// WithRespawnPoint sets the respawn point and returns hs.
func (hs *HealthState) WithRespawnPoint(p mgl64.Vec3) *HealthState {
	hs.RespawnPoint = &p
	return hs
}

// RespawnPending reports whether a respawn timer is outstanding.
func (hs *HealthState) RespawnPending() bool { return hs.timerArmed }

// RespawnIn returns the seconds left on the respawn timer, 0 when none.
func (hs *HealthState) RespawnIn() float64 {
	if !hs.timerArmed {
		return 0
	}
	return math.Max(0, hs.respawnTimer)
}

// Fraction returns current/max in [0, 1].
func (hs *HealthState) Fraction() float64 {
	if hs.Max <= 0 {
		return 0
	}
	return clamp01(hs.Current / hs.Max)
}

// DamageResult describes the outcome of one ApplyDamage call.
type DamageResult struct {
	Health float64 // resulting health
	Killed bool    // this call moved the actor from Alive to Dead
	Gated  bool    // actor was not alive; nothing changed
}

// HealthController applies damage, schedules respawns and broadcasts the
// respawn rebind.
type HealthController struct {
	w *World
}

// ApplyDamage subtracts amount from the actor's health, clamped to [0, max].
// Reaching 0 kills the actor: it is deactivated at the next tick boundary
// and a single respawn timer is armed. Damage while not alive is gated.
func (hc *HealthController) ApplyDamage(h Handle, amount float64) (DamageResult, error) {
	if amount < 0 || math.IsNaN(amount) {
		return DamageResult{}, fmt.Errorf("apply %v: %w", amount, ErrInvalidDamage)
	}
	a, ok := hc.w.dir.Lookup(h)
	if !ok {
		return DamageResult{}, fmt.Errorf("apply damage to %s: %w", h, ErrInvalidTarget)
	}
	hs := a.Health
	if hs == nil {
		return DamageResult{}, fmt.Errorf("apply damage to %s: not damageable: %w", a.Label, ErrInvalidTarget)
	}
	if hs.Status != StatusAlive {
		return DamageResult{Health: hs.Current, Gated: true}, nil
	}

	hs.Current = clamp(hs.Current-amount, 0, hs.Max)
	hc.w.logActor(a, "health", "damage", fmt.Sprintf("-%.1f → %.1f/%.0f", amount, hs.Current, hs.Max), hs.Current)
	ev := Event{Kind: EventDamageApplied, Actor: a.Label, Amount: amount, Health: hs.Current, handle: h}
	ev.setPose(a.Pose)
	hc.w.publish(ev)

	if hs.Current > 0 {
		return DamageResult{Health: hs.Current}, nil
	}

	hs.Status = StatusDead
	hs.respawnTimer = hs.RespawnDelay
	hs.timerArmed = true
	hc.w.dir.Deactivate(h)
	hc.w.logActor(a, "health", "died", fmt.Sprintf("respawn in %.2fs", hs.RespawnDelay), hs.RespawnDelay)
	died := Event{Kind: EventActorDied, Actor: a.Label, handle: h}
	died.setPose(a.Pose)
	hc.w.publish(died)
	return DamageResult{Health: 0, Killed: true}, nil
}

// Update advances every armed respawn timer by dt and respawns the actors
// whose timers elapse.
func (hc *HealthController) Update(dt float64) {
	for _, a := range hc.w.dir.All() {
		hs := a.Health
		if hs == nil || !hs.timerArmed {
			continue
		}
		hs.respawnTimer -= dt
		hc.w.logVerbose(a, "health", "respawn_timer", fmt.Sprintf("%.3f", hs.respawnTimer), hs.respawnTimer)
		if hs.respawnTimer <= timerEpsilon {
			_ = hc.Respawn(a.Handle())
		}
	}
}

// Respawn restores a dead actor: full health, moved to its respawn point
// (or left in place when none is configured), and queued for reactivation.
// The rebind broadcast goes out once the actor is live again.
func (hc *HealthController) Respawn(h Handle) error {
	a, ok := hc.w.dir.Lookup(h)
	if !ok {
		return fmt.Errorf("respawn %s: %w", h, ErrInvalidTarget)
	}
	hs := a.Health
	if hs == nil {
		return fmt.Errorf("respawn %s: not damageable: %w", a.Label, ErrInvalidTarget)
	}
	if hs.Status != StatusDead {
		return nil
	}

	hs.timerArmed = false
	hs.respawnTimer = 0
	hs.Current = hs.Max
	hs.Status = StatusRespawning
	if hs.RespawnPoint != nil {
		a.Pose.Position = *hs.RespawnPoint
	} else {
		hc.w.diag(a.Label, a.Category.String(), "no_respawn_point",
			fmt.Errorf("respawn %s in place: %w", a.Label, ErrConfigurationMissing))
	}
	hc.w.dir.Activate(h)
	hc.w.logActor(a, "health", "respawning", fmt.Sprintf("at (%.1f,%.1f,%.1f)",
		a.Pose.Position.X(), a.Pose.Position.Y(), a.Pose.Position.Z()), hs.Current)
	return nil
}

// completeRespawns runs after the directory commit. Every actor that came back
// this tick becomes Alive and the rebind broadcast is issued for it.
func (hc *HealthController) completeRespawns(activated []Handle) {
	for _, h := range activated {
		a, ok := hc.w.dir.Lookup(h)
		if !ok || a.Health == nil || a.Health.Status != StatusRespawning {
			continue
		}
		a.Health.Status = StatusAlive
		hc.w.logActor(a, "health", "respawned", fmt.Sprintf("%.0f/%.0f", a.Health.Current, a.Health.Max), a.Health.Current)
		ev := Event{Kind: EventActorRespawned, Actor: a.Label, Health: a.Health.Current, handle: h}
		ev.setPose(a.Pose)
		hc.w.publish(ev)
		hc.w.rebind(a)
	}
}
