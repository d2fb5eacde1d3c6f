package game

import (
	"github.com/go-gl/mathgl/mgl64"
)

const (
	contactEpsilon     = 1e-9
	implicitBodyRadius = defaultAimOffsetY // contact radius of a damageable actor without bounds
)

// BodyKind says which simulation object a Body stands for.
type BodyKind int

const (
	BodyActor BodyKind = iota
	BodyMissile
	BodyHazard
)

// Body is one overlap participant for a tick.
type Body struct {
	Kind    BodyKind
	Key     uint64 // stable identity across ticks
	Center  mgl64.Vec3
	Radius  float64
	Actor   *Actor
	Missile *Missile
	Hazard  *Hazard
}

// Contact is one intersecting pair. Began is set on the first tick the pair
// overlaps.
type Contact struct {
	A, B  Body
	Began bool
}

// ContactSource turns the bodies of a tick into contact events, one per
// intersecting pair.
type ContactSource interface {
	Contacts(bodies []Body) []Contact
}

type pairKey struct{ a, b uint64 }

func makePair(a, b uint64) pairKey {
	if a > b {
		a, b = b, a
	}
	return pairKey{a, b}
}

// SphereContacts is the default ContactSource: bounding-sphere overlap,
// O(n²) per tick. It remembers last tick's pairs to flag entries.
type SphereContacts struct {
	prev map[pairKey]struct{}
	cur  map[pairKey]struct{}
}

// NewSphereContacts creates an empty sphere-overlap source.
func NewSphereContacts() *SphereContacts {
	return &SphereContacts{
		prev: make(map[pairKey]struct{}),
		cur:  make(map[pairKey]struct{}),
	}
}

// Contacts returns every overlapping pair, in body order.
func (sc *SphereContacts) Contacts(bodies []Body) []Contact {
	clear(sc.cur)
	var out []Contact
	for i := 0; i < len(bodies); i++ {
		for j := i + 1; j < len(bodies); j++ {
			a, b := bodies[i], bodies[j]
			if a.Kind != BodyActor && b.Kind != BodyActor {
				continue
			}
			if a.Center.Sub(b.Center).Len() > a.Radius+b.Radius+contactEpsilon {
				continue
			}
			k := makePair(a.Key, b.Key)
			_, seen := sc.prev[k]
			sc.cur[k] = struct{}{}
			out = append(out, Contact{A: a, B: b, Began: !seen})
		}
	}
	sc.prev, sc.cur = sc.cur, sc.prev
	return out
}

func actorBody(a *Actor) Body {
	c, r := a.ContactSphere()
	return Body{
		Kind:   BodyActor,
		Key:    uint64(BodyActor)<<62 | uint64(a.handle.index)<<32 | uint64(a.handle.gen),
		Center: c,
		Radius: r,
		Actor:  a,
	}
}

func missileBody(m *Missile) Body {
	return Body{
		Kind:    BodyMissile,
		Key:     uint64(BodyMissile)<<62 | m.id,
		Center:  m.pose.Position,
		Radius:  m.cfg.Radius,
		Missile: m,
	}
}

func hazardBody(hz *Hazard) Body {
	return Body{
		Kind:   BodyHazard,
		Key:    uint64(BodyHazard)<<62 | hz.id,
		Center: hz.pose.Position,
		Radius: hz.cfg.Radius,
		Hazard: hz,
	}
}
