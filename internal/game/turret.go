package game

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// --- Fire-control defaults ---

const (
	defaultFireRange       = 100.0 // units
	defaultFireRate        = 1.0   // seconds between shots
	defaultRotationRate    = 5.0   // slerp factor per second
	defaultWindUpTime      = 0.4   // seconds between wind-up start and launch
	defaultRecoverTime     = 0.3   // seconds after launch before the next stage may start
	defaultWindUpTurnScale = 0.25  // rotation rate multiplier while winding up
)

// FireStage is the staged fire sub-state of a turret.
type FireStage int

const (
	StageIdle    FireStage = iota // ready to start a new stage once the cooldown elapses
	StageWindUp                   // slowed rotation, animation intent emitted
	StageRecover                  // projectile launched, brief cool-down
)

func (s FireStage) String() string {
	switch s {
	case StageIdle:
		return "idle"
	case StageWindUp:
		return "windup"
	case StageRecover:
		return "recover"
	default:
		return "unknown"
	}
}

// TurretConfig tunes one fire-control unit.
type TurretConfig struct {
	FireRange      float64
	FireRate       float64 // seconds between shots
	RotationRate   float64 // slerp factor per second
	TargetCategory Category
	Template       string // missile template spawned on fire; empty: rotate-only tracker that never fires

	// Pivot is the rotating head. FirePoint is the muzzle offset in the
	// pivot's local frame.
	HasPivot  bool
	FirePoint mgl64.Vec3

	Staged          bool
	WindUpTime      float64
	RecoverTime     float64
	WindUpTurnScale float64
}

// DefaultTurretConfig returns the baseline cannon.
func DefaultTurretConfig() TurretConfig {
	return TurretConfig{
		FireRange:       defaultFireRange,
		FireRate:        defaultFireRate,
		RotationRate:    defaultRotationRate,
		TargetCategory:  CategoryPlayer,
		Template:        DefaultMissileTemplate,
		HasPivot:        true,
		FirePoint:       mgl64.Vec3{0, 0, 1},
		WindUpTime:      defaultWindUpTime,
		RecoverTime:     defaultRecoverTime,
		WindUpTurnScale: defaultWindUpTurnScale,
	}
}

// Turret is a stationary fire-control unit.
type Turret struct {
	cfg   TurretConfig
	label string
	base  mgl64.Vec3
	pivot mgl64.Quat

	cooldown   float64
	target     TargetRef
	targetDist float64
	stage      FireStage
	stageTimer float64
	shots      int

	warnedPivot    bool
	warnedTemplate bool
}

// Label returns the turret's label.
func (t *Turret) Label() string { return t.label }

// Config returns the turret's tuning.
func (t *Turret) Config() TurretConfig { return t.cfg }

// Position returns the pivot's world position.
func (t *Turret) Position() mgl64.Vec3 { return t.base }

// Pivot returns the current pivot orientation.
func (t *Turret) Pivot() mgl64.Quat { return t.pivot }

// Cooldown returns seconds until the fire gate reopens.
func (t *Turret) Cooldown() float64 { return math.Max(0, t.cooldown) }

// Target returns the current target reference.
func (t *Turret) Target() TargetRef { return t.target }

// TargetDistance returns the distance to the target selected this tick, +Inf
// when none.
func (t *Turret) TargetDistance() float64 { return t.targetDist }

// Stage returns the staged fire sub-state.
func (t *Turret) Stage() FireStage { return t.stage }

// Shots returns the number of projectiles spawned.
func (t *Turret) Shots() int { return t.shots }

// FirePose returns the muzzle's current world pose.
func (t *Turret) FirePose() Pose {
	return Pose{
		Position:    t.base.Add(t.pivot.Rotate(t.cfg.FirePoint)),
		Orientation: t.pivot,
	}
}

func (t *Turret) update(w *World, dt float64) {
	if t.cooldown > 0 {
		t.cooldown -= dt
	}

	target := t.acquire(w)

	rate := t.cfg.RotationRate
	if t.stage == StageWindUp {
		rate *= t.cfg.WindUpTurnScale
	}
	if target != nil {
		t.steer(w, target, rate, dt)
	}

	if t.cfg.Staged {
		t.advanceStage(w, target, dt)
		return
	}
	if t.gateOpen(target) {
		t.fire(w, target)
	}
}

// acquire scans the directory for the nearest damageable actor of the target
// category. Ties keep the first discovered.
func (t *Turret) acquire(w *World) *Actor {
	a, dist, ok := w.dir.Nearest(t.base, t.cfg.TargetCategory)
	if !ok {
		if t.target.Bound() {
			w.logf(t.label, "turret", "turret", "target_lost", t.target.Handle().String(), 0)
		}
		t.target = TargetRef{}
		t.targetDist = math.Inf(1)
		return nil
	}
	if !t.target.Points(a.Handle()) {
		w.logf(t.label, "turret", "turret", "acquire", fmt.Sprintf("%s d=%.2f", a.Label, dist), dist)
	}
	t.target = RefTo(a.Handle())
	t.targetDist = dist
	return a
}

// steer turns the pivot toward the target by bounded interpolation.
func (t *Turret) steer(w *World, target *Actor, rate, dt float64) {
	if !t.cfg.HasPivot {
		if !t.warnedPivot {
			t.warnedPivot = true
			w.diag(t.label, "turret", "no_pivot", fmt.Errorf("steer %s: %w", t.label, ErrConfigurationMissing))
		}
		return
	}
	aim := target.Pose.Position
	if c, ok := target.Center(); ok {
		aim = c
	}
	dir := aim.Sub(t.base)
	if dir.Len() < steerEpsilon {
		return
	}
	t.pivot = SlerpTowards(t.pivot, LookRotation(dir), rate*dt)
}

// gateOpen reports whether a shot may be taken this tick. A turret without a
// template only tracks.
func (t *Turret) gateOpen(target *Actor) bool {
	return t.cfg.Template != "" && target != nil &&
		t.targetDist <= t.cfg.FireRange && t.cooldown <= timerEpsilon
}

func (t *Turret) advanceStage(w *World, target *Actor, dt float64) {
	switch t.stage {
	case StageIdle:
		if !t.gateOpen(target) {
			return
		}
		t.stage = StageWindUp
		t.stageTimer = t.cfg.WindUpTime
		t.cooldown = t.cfg.FireRate
		w.logf(t.label, "turret", "turret", "stage", "idle → windup", t.stageTimer)
		w.intentAt(EventAnimationIntent, t.label, t.FirePose(), "windup")
	case StageWindUp:
		t.stageTimer -= dt
		if t.stageTimer > timerEpsilon {
			return
		}
		if target != nil {
			t.launch(w, target)
		} else {
			w.logf(t.label, "turret", "turret", "launch_aborted", "target lost during windup", 0)
		}
		t.stage = StageRecover
		t.stageTimer = t.cfg.RecoverTime
		w.logf(t.label, "turret", "turret", "stage", "windup → recover", t.stageTimer)
	case StageRecover:
		t.stageTimer -= dt
		if t.stageTimer > timerEpsilon {
			return
		}
		t.stage = StageIdle
		t.stageTimer = 0
		w.logf(t.label, "turret", "turret", "stage", "recover → idle", 0)
	}
}

// fire launches one projectile and resets the cooldown. A missing template
// degrades to a no-op and leaves the cooldown untouched.
func (t *Turret) fire(w *World, target *Actor) {
	if t.launch(w, target) {
		t.cooldown = t.cfg.FireRate
	}
}

func (t *Turret) launch(w *World, target *Actor) bool {
	tmpl, ok := w.templates[t.cfg.Template]
	if !ok {
		if !t.warnedTemplate {
			t.warnedTemplate = true
			w.diag(t.label, "turret", "no_template",
				fmt.Errorf("fire %s template %q: %w", t.label, t.cfg.Template, ErrConfigurationMissing))
		}
		return false
	}
	pose := t.FirePose()
	m := w.spawnMissile(t.label, t.cfg.Template, tmpl, pose)
	if err := m.BindTarget(w, target.Handle()); err != nil {
		w.diag(t.label, "turret", "bind", err)
	}
	t.shots++
	w.logf(t.label, "turret", "turret", "fire", fmt.Sprintf("%s → %s d=%.2f", m.Label(), target.Label, t.targetDist), t.targetDist)
	w.intentAt(EventAudioIntent, t.label, pose, "turret_fire")
	return true
}

// rebind re-points the turret at a respawned actor it was tracking.
func (t *Turret) rebind(w *World, a *Actor) {
	if t.target.Points(a.Handle()) || (!t.target.Bound() && a.Category == t.cfg.TargetCategory) {
		t.target = RefTo(a.Handle())
		w.logf(t.label, "turret", "turret", "rebind", a.Label, 0)
	}
}
