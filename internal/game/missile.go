package game

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// DefaultMissileTemplate is the template name turrets fire unless configured
// otherwise.
const DefaultMissileTemplate = "missile"

// --- Missile defaults ---

const (
	defaultMissileSpeed    = 10.0 // units per second
	defaultMissileTurnRate = 2.0  // radians per second
	defaultStopTracking    = 3.0  // units; closer than this the missile coasts
	defaultMissileDamage   = 25.0
	defaultMissileRadius   = 0.25
	defaultAimOffsetY      = 0.5 // aim above the target position when it has no bounds
)

// GuidancePhase is the flight phase of a missile.
type GuidancePhase int

const (
	PhaseTracking GuidancePhase = iota // homing on the bound target
	PhaseCoasting                      // frozen heading; terminal
)

func (p GuidancePhase) String() string {
	switch p {
	case PhaseTracking:
		return "tracking"
	case PhaseCoasting:
		return "coasting"
	default:
		return "unknown"
	}
}

// MissileConfig is a spawn template for guided projectiles.
type MissileConfig struct {
	Speed    float64
	TurnRate float64 // radians per second
	// StopTrackingDistance at or below which tracking is abandoned. Values
	// <= 0 are kept as-is: such a missile tracks for its whole lifetime.
	StopTrackingDistance float64
	Damage               float64
	Radius               float64
	AimOffsetY           float64
	DefaultCategory      Category // auto-acquire and damage category
	MaxLifetime          float64  // seconds; 0 = unlimited
}

// DefaultMissileConfig returns the baseline homing missile.
func DefaultMissileConfig() MissileConfig {
	return MissileConfig{
		Speed:                defaultMissileSpeed,
		TurnRate:             defaultMissileTurnRate,
		StopTrackingDistance: defaultStopTracking,
		Damage:               defaultMissileDamage,
		Radius:               defaultMissileRadius,
		AimOffsetY:           defaultAimOffsetY,
		DefaultCategory:      CategoryPlayer,
	}
}

// Missile is a guided projectile.
type Missile struct {
	id       uint64
	label    string
	source   string
	template string
	cfg      MissileConfig
	pose     Pose
	heading  mgl64.Vec3 // unit forward

	target TargetRef
	phase  GuidancePhase

	// Snapshot taken once, when tracking is abandoned.
	frozenHeading     mgl64.Vec3
	frozenOrientation mgl64.Quat

	age       float64
	destroyed bool
	hit       bool
}

// Label returns the missile's label.
func (m *Missile) Label() string { return m.label }

// Source returns the label of the launcher.
func (m *Missile) Source() string { return m.source }

// Template returns the template the missile was spawned from.
func (m *Missile) Template() string { return m.template }

// Config returns the missile's tuning.
func (m *Missile) Config() MissileConfig { return m.cfg }

// Pose returns the missile's current pose.
func (m *Missile) Pose() Pose { return m.pose }

// Heading returns the unit direction of travel.
func (m *Missile) Heading() mgl64.Vec3 { return m.heading }

// Target returns the bound target reference.
func (m *Missile) Target() TargetRef { return m.target }

// Phase returns the guidance phase.
func (m *Missile) Phase() GuidancePhase { return m.phase }

// Age returns seconds since launch.
func (m *Missile) Age() float64 { return m.age }

// Destroyed reports whether the missile has been removed from flight.
func (m *Missile) Destroyed() bool { return m.destroyed }

// BindTarget points the missile at h. A zero or destroyed handle is rejected
// and the current binding is kept. Binding does not restart tracking once the
// missile is coasting.
func (m *Missile) BindTarget(w *World, h Handle) error {
	a, ok := w.dir.Lookup(h)
	if !ok {
		err := fmt.Errorf("bind %s to %s: %w", m.label, h, ErrInvalidTarget)
		w.diag(m.label, "missile", "invalid_target", err)
		return err
	}
	m.target = RefTo(h)
	w.logf(m.label, "missile", "missile", "bind", a.Label, 0)
	return nil
}

func (m *Missile) update(w *World, dt float64) {
	if m.destroyed {
		return
	}
	m.age += dt
	if m.cfg.MaxLifetime > 0 && m.age >= m.cfg.MaxLifetime {
		w.logf(m.label, "missile", "missile", "expired", fmt.Sprintf("%.2fs", m.age), m.age)
		m.destroy(w, "expired")
		return
	}

	if m.phase == PhaseCoasting {
		m.pose.Position = m.pose.Position.Add(m.frozenHeading.Mul(m.cfg.Speed * dt))
		return
	}

	target := m.resolveTarget(w)
	if target == nil {
		// Nothing to home on: hold heading.
		m.pose.Position = m.pose.Position.Add(m.heading.Mul(m.cfg.Speed * dt))
		return
	}

	// A stop distance <= 0 never disengages, even when sitting on the target.
	dist := target.Pose.Position.Sub(m.pose.Position).Len()
	if m.cfg.StopTrackingDistance > 0 && dist <= m.cfg.StopTrackingDistance {
		m.disengage(w, dist)
		m.pose.Position = m.pose.Position.Add(m.frozenHeading.Mul(m.cfg.Speed * dt))
		return
	}

	aim := m.aimPoint(target)
	m.heading = RotateTowards(m.heading, aim.Sub(m.pose.Position), m.cfg.TurnRate*dt)
	m.pose.Orientation = LookRotation(m.heading)
	m.pose.Position = MoveTowards(m.pose.Position, aim, m.cfg.Speed*dt)
	w.logVerboseLabel(m.label, "missile", "missile", "track", fmt.Sprintf("d=%.2f", dist), dist)
}

// resolveTarget returns the live target for this tick. A destroyed target
// clears the binding; an unbound missile auto-acquires the first actor of its
// default category.
func (m *Missile) resolveTarget(w *World) *Actor {
	a, ok, gone := m.target.Resolve(w.dir)
	if ok {
		return a
	}
	if gone {
		w.logf(m.label, "missile", "missile", "target_gone", m.target.Handle().String(), 0)
		m.target = TargetRef{}
	}
	if m.target.Bound() {
		// Deactivated: wait for the respawn broadcast.
		return nil
	}
	first, found := w.dir.First(m.cfg.DefaultCategory)
	if !found {
		return nil
	}
	m.target = RefTo(first.Handle())
	w.logf(m.label, "missile", "missile", "acquire", first.Label, 0)
	return first
}

func (m *Missile) aimPoint(target *Actor) mgl64.Vec3 {
	if c, ok := target.Center(); ok {
		return c
	}
	return target.Pose.Position.Add(mgl64.Vec3{0, m.cfg.AimOffsetY, 0})
}

// disengage switches to coasting. It runs at most once per missile.
func (m *Missile) disengage(w *World, dist float64) {
	if m.phase == PhaseCoasting {
		return
	}
	m.phase = PhaseCoasting
	m.frozenHeading = m.heading
	m.frozenOrientation = m.pose.Orientation
	w.logf(m.label, "missile", "missile", "coast", fmt.Sprintf("d=%.2f", dist), dist)
}

// onContact handles an overlap with an actor. Returns true when the missile
// was consumed.
func (m *Missile) onContact(w *World, other *Actor) bool {
	if m.destroyed {
		return false
	}
	switch {
	case other.Category == CategoryObstacle:
		w.logf(m.label, "missile", "missile", "obstacle", other.Label, 0)
		m.destroy(w, "obstacle")
		return true
	case other.Category == m.cfg.DefaultCategory && other.Damageable():
		res, err := w.health.ApplyDamage(other.Handle(), m.cfg.Damage)
		if err != nil {
			w.diag(m.label, "missile", "damage", err)
		} else if !res.Gated {
			m.hit = true
			w.logf(m.label, "missile", "missile", "hit",
				fmt.Sprintf("%s -%.1f → %.1f", other.Label, m.cfg.Damage, res.Health), m.cfg.Damage)
		}
		w.intentAt(EventAudioIntent, m.label, m.pose, "missile_impact")
		m.destroy(w, "impact")
		return true
	}
	return false
}

func (m *Missile) destroy(w *World, reason string) {
	if m.destroyed {
		return
	}
	m.destroyed = true
	ev := Event{Kind: EventProjectileDestroyed, Source: m.label, Template: m.template, Intent: reason}
	ev.setPose(m.pose)
	w.publish(ev)
}

// rebind re-points a missile whose target just respawned. The guidance phase
// is left alone.
func (m *Missile) rebind(w *World, a *Actor) {
	if m.destroyed || !m.target.Points(a.Handle()) {
		return
	}
	w.logf(m.label, "missile", "missile", "rebind", a.Label, 0)
}

func newMissile(id uint64, label, source, template string, cfg MissileConfig, pose Pose) *Missile {
	q := pose.Orientation
	if q.Len() < steerEpsilon {
		q = mgl64.QuatIdent()
	}
	q = q.Normalize()
	return &Missile{
		id:       id,
		label:    label,
		source:   source,
		template: template,
		cfg:      cfg,
		pose:     Pose{Position: pose.Position, Orientation: q},
		heading:  q.Rotate(forwardAxis).Normalize(),
		phase:    PhaseTracking,
	}
}

// Frozen returns the coasting snapshot; ok is false while tracking.
func (m *Missile) Frozen() (heading mgl64.Vec3, orientation mgl64.Quat, ok bool) {
	if m.phase != PhaseCoasting {
		return mgl64.Vec3{}, mgl64.Quat{}, false
	}
	return m.frozenHeading, m.frozenOrientation, true
}

// Hit reports whether the missile landed its payload.
func (m *Missile) Hit() bool { return m.hit }
