package game

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// --- Saw blade defaults ---

const (
	defaultHazardDamage = 25.0
	defaultHazardSpeed  = 2.0         // units per second
	defaultHazardTravel = 2.5         // units from start before reversing
	defaultHazardRadius = 0.5         // contact radius
	hazardSpinRate      = 2 * math.Pi // radians per second about the forward axis
	hazardHomeTolerance = 0.05        // within this of start counts as home
)

// HazardConfig tunes an oscillating saw blade.
type HazardConfig struct {
	Damage float64
	Speed  float64
	// Travel is the signed distance along Axis before reversing.
	Travel         float64
	Axis           mgl64.Vec3
	Radius         float64
	TargetCategory Category
}

// DefaultHazardConfig returns the baseline saw blade sliding along +X.
func DefaultHazardConfig() HazardConfig {
	return HazardConfig{
		Damage:         defaultHazardDamage,
		Speed:          defaultHazardSpeed,
		Travel:         defaultHazardTravel,
		Axis:           mgl64.Vec3{1, 0, 0},
		Radius:         defaultHazardRadius,
		TargetCategory: CategoryPlayer,
	}
}

// Hazard is a moving blade that damages on contact entry.
type Hazard struct {
	id        uint64
	label     string
	cfg       HazardConfig
	start     mgl64.Vec3
	pose      Pose
	spin      float64
	reversing bool
	destroyed bool
	hits      int
}

// Label returns the hazard's label.
func (hz *Hazard) Label() string { return hz.label }

// Config returns the hazard's tuning.
func (hz *Hazard) Config() HazardConfig { return hz.cfg }

// Pose returns the hazard's current pose.
func (hz *Hazard) Pose() Pose { return hz.pose }

// Reversing reports whether the blade is heading back toward its start.
func (hz *Hazard) Reversing() bool { return hz.reversing }

// Destroyed reports whether the hazard was removed.
func (hz *Hazard) Destroyed() bool { return hz.destroyed }

// Hits returns the number of damaging contacts.
func (hz *Hazard) Hits() int { return hz.hits }

// Offset returns the signed displacement from the start along the axis.
func (hz *Hazard) Offset() float64 {
	return hz.pose.Position.Sub(hz.start).Dot(hz.axis())
}

func (hz *Hazard) axis() mgl64.Vec3 {
	if hz.cfg.Axis.Len() < steerEpsilon {
		return mgl64.Vec3{1, 0, 0}
	}
	return hz.cfg.Axis.Normalize()
}

func (hz *Hazard) update(w *World, dt float64) {
	if hz.destroyed {
		return
	}
	sign := 1.0
	if hz.cfg.Travel < 0 {
		sign = -1
	}
	step := hz.axis().Mul(hz.cfg.Speed * dt * sign)

	if !hz.reversing {
		hz.pose.Position = hz.pose.Position.Add(step)
		if math.Abs(hz.Offset()) >= math.Abs(hz.cfg.Travel) {
			hz.reversing = true
			w.logVerboseLabel(hz.label, "hazard", "hazard", "reverse", fmt.Sprintf("%.2f", hz.Offset()), hz.Offset())
		}
	} else {
		hz.pose.Position = hz.pose.Position.Sub(step)
		if math.Abs(hz.Offset()) <= hazardHomeTolerance {
			hz.reversing = false
			w.logVerboseLabel(hz.label, "hazard", "hazard", "outbound", fmt.Sprintf("%.2f", hz.Offset()), hz.Offset())
		}
	}

	hz.spin = normalizeAngle(hz.spin + hazardSpinRate*dt)
	hz.pose.Orientation = mgl64.QuatRotate(hz.spin, forwardAxis)
}

// onContact reacts to an overlap. Damage lands only on the first tick of the
// overlap; obstacles destroy the blade.
func (hz *Hazard) onContact(w *World, other *Actor, began bool) {
	if hz.destroyed || !began {
		return
	}
	switch {
	case other.Category == CategoryObstacle:
		w.logf(hz.label, "hazard", "hazard", "obstacle", other.Label, 0)
		hz.destroyed = true
		ev := Event{Kind: EventProjectileDestroyed, Source: hz.label, Intent: "obstacle"}
		ev.setPose(hz.pose)
		w.publish(ev)
	case other.Category == hz.cfg.TargetCategory && other.Damageable():
		res, err := w.health.ApplyDamage(other.Handle(), hz.cfg.Damage)
		if err != nil {
			w.diag(hz.label, "hazard", "damage", err)
			return
		}
		if res.Gated {
			return
		}
		hz.hits++
		w.logf(hz.label, "hazard", "hazard", "hit",
			fmt.Sprintf("%s -%.1f → %.1f", other.Label, hz.cfg.Damage, res.Health), hz.cfg.Damage)
	}
}
