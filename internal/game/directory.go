package game

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Category is the capability tag an actor is registered under.
type Category int

const (
	CategoryPlayer   Category = iota // hunted by creatures, turrets and missiles
	CategoryEnemy                    // creatures
	CategoryNeutral                  // bystanders; never targeted by default
	CategoryObstacle                 // inert blocks; destroy projectiles on contact
)

func (c Category) String() string {
	switch c {
	case CategoryPlayer:
		return "player"
	case CategoryEnemy:
		return "enemy"
	case CategoryNeutral:
		return "neutral"
	case CategoryObstacle:
		return "obstacle"
	default:
		return "unknown"
	}
}

// ParseCategory maps a scenario/category name back to its Category.
func ParseCategory(s string) (Category, bool) {
	switch s {
	case "player":
		return CategoryPlayer, true
	case "enemy":
		return CategoryEnemy, true
	case "neutral":
		return CategoryNeutral, true
	case "obstacle":
		return CategoryObstacle, true
	}
	return 0, false
}

// Handle is a generational index into the Directory. The zero Handle never
// resolves.
type Handle struct {
	index uint32
	gen   uint32
}

// IsZero reports whether h was never assigned.
func (h Handle) IsZero() bool { return h.gen == 0 }

func (h Handle) String() string {
	if h.IsZero() {
		return "#-"
	}
	return fmt.Sprintf("#%d.%d", h.index, h.gen)
}

// Pose is a world-space position plus orientation. Y is up; forward is +Z.
type Pose struct {
	Position    mgl64.Vec3
	Orientation mgl64.Quat
}

// Forward returns the unit forward vector of the pose.
func (p Pose) Forward() mgl64.Vec3 {
	return p.Orientation.Rotate(forwardAxis)
}

// Bounds is an actor's bounding sphere, offset from its position.
type Bounds struct {
	Offset mgl64.Vec3
	Radius float64
}

// Actor is a positioned, taggable, optionally damageable entity.
type Actor struct {
	Label    string
	Category Category
	Pose     Pose
	Bounds   *Bounds      // nil: no bounding volume known
	Health   *HealthState // nil: not damageable

	handle Handle
	active bool
}

// Handle returns the directory handle of the actor.
func (a *Actor) Handle() Handle { return a.handle }

// Active reports whether the actor is currently in the live set.
func (a *Actor) Active() bool { return a.active }

// Damageable reports whether the actor carries health.
func (a *Actor) Damageable() bool { return a.Health != nil }

// Center returns the bounding-volume center, or false when none is configured.
func (a *Actor) Center() (mgl64.Vec3, bool) {
	if a.Bounds == nil {
		return a.Pose.Position, false
	}
	return a.Pose.Position.Add(a.Bounds.Offset), true
}

// ContactSphere returns the sphere used for overlap tests. A damageable actor
// without bounds gets a sphere of radius implicitBodyRadius resting on its
// position, which holds the default missile aim point.
func (a *Actor) ContactSphere() (mgl64.Vec3, float64) {
	switch {
	case a.Bounds != nil:
		return a.Pose.Position.Add(a.Bounds.Offset), a.Bounds.Radius
	case a.Damageable():
		return a.Pose.Position.Add(mgl64.Vec3{0, implicitBodyRadius, 0}), implicitBodyRadius
	default:
		return a.Pose.Position, 0
	}
}

// Radius returns the bounding radius, 0 without bounds.
func (a *Actor) Radius() float64 {
	if a.Bounds == nil {
		return 0
	}
	return a.Bounds.Radius
}

type mutationKind int

const (
	mutActivate mutationKind = iota
	mutDeactivate
	mutDestroy
)

type mutation struct {
	kind   mutationKind
	handle Handle
}

type slot struct {
	actor *Actor
	gen   uint32
}

// Directory tracks every registered actor and answers category queries over
// the active ones. Scan order is slot order, which is discovery order.
// Activation changes are queued and applied by Commit between ticks so all
// readers in a tick see the same live set.
type Directory struct {
	slots   []slot
	free    []uint32
	pending []mutation
	live    int
}

// NewDirectory creates an empty directory.
func NewDirectory() *Directory {
	return &Directory{}
}

// Add registers an actor and makes it active immediately. Used while building
// a world, before the first tick.
func (d *Directory) Add(a *Actor) Handle {
	var idx uint32
	if n := len(d.free); n > 0 {
		idx = d.free[n-1]
		d.free = d.free[:n-1]
	} else {
		idx = uint32(len(d.slots))
		d.slots = append(d.slots, slot{})
	}
	s := &d.slots[idx]
	s.gen++
	if s.gen == 0 {
		s.gen = 1
	}
	s.actor = a
	a.handle = Handle{index: idx, gen: s.gen}
	a.active = true
	d.live++
	return a.handle
}

// Lookup dereferences h. It fails for the zero handle and for handles whose
// actor was destroyed; inactive actors still resolve.
func (d *Directory) Lookup(h Handle) (*Actor, bool) {
	if h.IsZero() || int(h.index) >= len(d.slots) {
		return nil, false
	}
	s := d.slots[h.index]
	if s.gen != h.gen || s.actor == nil {
		return nil, false
	}
	return s.actor, true
}

// Live dereferences h and additionally requires the actor to be active.
func (d *Directory) Live(h Handle) (*Actor, bool) {
	a, ok := d.Lookup(h)
	if !ok || !a.active {
		return nil, false
	}
	return a, true
}

// Deactivate queues h for removal from the live set at the next Commit.
func (d *Directory) Deactivate(h Handle) {
	d.pending = append(d.pending, mutation{mutDeactivate, h})
}

// Activate queues h for return to the live set at the next Commit.
func (d *Directory) Activate(h Handle) {
	d.pending = append(d.pending, mutation{mutActivate, h})
}

// Destroy queues h for permanent removal. Outstanding handles stop resolving
// after the next Commit.
func (d *Directory) Destroy(h Handle) {
	d.pending = append(d.pending, mutation{mutDestroy, h})
}

// Pending returns the number of queued mutations.
func (d *Directory) Pending() int { return len(d.pending) }

// Commit applies queued mutations in order and returns the handles that were
// activated, in the order they were queued.
func (d *Directory) Commit() []Handle {
	if len(d.pending) == 0 {
		return nil
	}
	var activated []Handle
	for _, m := range d.pending {
		a, ok := d.Lookup(m.handle)
		if !ok {
			continue
		}
		switch m.kind {
		case mutActivate:
			if !a.active {
				a.active = true
				d.live++
				activated = append(activated, m.handle)
			}
		case mutDeactivate:
			if a.active {
				a.active = false
				d.live--
			}
		case mutDestroy:
			if a.active {
				d.live--
			}
			a.active = false
			d.slots[m.handle.index].actor = nil
			d.free = append(d.free, m.handle.index)
		}
	}
	d.pending = d.pending[:0]
	return activated
}

// Len returns the number of active actors.
func (d *Directory) Len() int { return d.live }

// Each calls fn for every active actor in discovery order until fn returns false.
func (d *Directory) Each(fn func(*Actor) bool) {
	for i := range d.slots {
		a := d.slots[i].actor
		if a == nil || !a.active {
			continue
		}
		if !fn(a) {
			return
		}
	}
}

// All returns every registered actor, active or not, in discovery order.
func (d *Directory) All() []*Actor {
	out := make([]*Actor, 0, len(d.slots))
	for i := range d.slots {
		if a := d.slots[i].actor; a != nil {
			out = append(out, a)
		}
	}
	return out
}

// First returns the first discovered active actor of the category.
func (d *Directory) First(c Category) (*Actor, bool) {
	var found *Actor
	d.Each(func(a *Actor) bool {
		if a.Category == c {
			found = a
			return false
		}
		return true
	})
	return found, found != nil
}

// Nearest returns the active damageable actor of category c closest to from.
// Ties keep the first one discovered.
func (d *Directory) Nearest(from mgl64.Vec3, c Category) (*Actor, float64, bool) {
	var best *Actor
	bestDist := math.Inf(1)
	d.Each(func(a *Actor) bool {
		if a.Category != c || !a.Damageable() {
			return true
		}
		dist := a.Pose.Position.Sub(from).Len()
		if dist < bestDist {
			bestDist = dist
			best = a
		}
		return true
	})
	return best, bestDist, best != nil
}

// TargetRef is a weak reference from a consumer to an actor. It never owns the
// actor and must be resolved before each use.
type TargetRef struct {
	handle Handle
}

// RefTo returns a reference bound to h.
func RefTo(h Handle) TargetRef { return TargetRef{handle: h} }

// Bound reports whether the reference has ever been bound.
func (r TargetRef) Bound() bool { return !r.handle.IsZero() }

// Handle returns the referenced handle.
func (r TargetRef) Handle() Handle { return r.handle }

// Points reports whether the reference is bound to h.
func (r TargetRef) Points(h Handle) bool { return r.Bound() && r.handle == h }

// Resolve returns the referenced actor when it is still registered and active.
// gone is true when the actor was destroyed outright, meaning the reference
// can never resolve again.
func (r TargetRef) Resolve(d *Directory) (a *Actor, ok bool, gone bool) {
	if !r.Bound() {
		return nil, false, false
	}
	a, exists := d.Lookup(r.handle)
	if !exists {
		return nil, false, true
	}
	return a, a.active, false
}
