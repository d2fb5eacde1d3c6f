package game

import (
	"io"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/oklog/ulid/v2"
)

// EventKind names a notification produced for collaborators.
type EventKind string

const (
	EventDamageApplied       EventKind = "damage_applied"
	EventActorDied           EventKind = "actor_died"
	EventActorRespawned      EventKind = "actor_respawned"
	EventSpawnRequested      EventKind = "spawn_requested"
	EventProjectileDestroyed EventKind = "projectile_destroyed"
	EventAnimationIntent     EventKind = "animation_intent"
	EventAudioIntent         EventKind = "audio_intent"
)

// Event is one notification. Fields that do not apply to a kind are left zero.
type Event struct {
	ID       ulid.ULID  `json:"id" msgpack:"id"`
	Kind     EventKind  `json:"kind" msgpack:"kind"`
	Tick     int        `json:"tick" msgpack:"tick"`
	Source   string     `json:"source,omitempty" msgpack:"source,omitempty"` // label of the emitting entity
	Actor    string     `json:"actor,omitempty" msgpack:"actor,omitempty"`   // label of the affected actor
	Amount   float64    `json:"amount,omitempty" msgpack:"amount,omitempty"`
	Health   float64    `json:"health,omitempty" msgpack:"health,omitempty"`
	Position [3]float64 `json:"position" msgpack:"position"`
	Rotation [4]float64 `json:"rotation" msgpack:"rotation"` // w, x, y, z
	Template string     `json:"template,omitempty" msgpack:"template,omitempty"`
	Intent   string     `json:"intent,omitempty" msgpack:"intent,omitempty"`

	handle Handle
}

// Handle returns the directory handle of the affected actor, if any.
func (e Event) Handle() Handle { return e.handle }

func (e *Event) setPose(p Pose) {
	e.Position = [3]float64(p.Position)
	e.Rotation = [4]float64{p.Orientation.W, p.Orientation.V[0], p.Orientation.V[1], p.Orientation.V[2]}
}

// Pose rebuilds the pose carried by the event.
func (e Event) Pose() Pose {
	return Pose{
		Position:    mgl64.Vec3(e.Position),
		Orientation: mgl64.Quat{W: e.Rotation[0], V: mgl64.Vec3{e.Rotation[1], e.Rotation[2], e.Rotation[3]}},
	}
}

// Listener receives events from a Bus. OnEvent runs on the simulation
// goroutine and must not block.
type Listener interface {
	OnEvent(Event)
}

// ListenerFunc adapts a function to Listener.
type ListenerFunc func(Event)

// OnEvent calls f(e).
func (f ListenerFunc) OnEvent(e Event) { f(e) }

// Bus fans events out to subscribers in subscription order.
type Bus struct {
	listeners map[EventKind][]Listener
	all       []Listener
	entropy   io.Reader
	clock     func() uint64
}

// NewBus creates a bus. entropy seeds event IDs; clock returns the
// millisecond timestamp stamped into them.
func NewBus(entropy io.Reader, clock func() uint64) *Bus {
	return &Bus{
		listeners: make(map[EventKind][]Listener),
		entropy:   ulid.Monotonic(entropy, 0),
		clock:     clock,
	}
}

// Subscribe registers l for one event kind.
func (b *Bus) Subscribe(kind EventKind, l Listener) {
	b.listeners[kind] = append(b.listeners[kind], l)
}

// SubscribeAll registers l for every kind.
func (b *Bus) SubscribeAll(l Listener) {
	b.all = append(b.all, l)
}

// Unsubscribe removes l from kind. l must be comparable (a pointer listener,
// not a ListenerFunc).
func (b *Bus) Unsubscribe(kind EventKind, l Listener) {
	ls := b.listeners[kind]
	for i, x := range ls {
		if x == l {
			b.listeners[kind] = append(ls[:i], ls[i+1:]...)
			return
		}
	}
}

// Publish stamps e with an ID and delivers it.
func (b *Bus) Publish(e Event) Event {
	if id, err := ulid.New(b.clock(), b.entropy); err == nil {
		e.ID = id
	}
	for _, l := range b.listeners[e.Kind] {
		l.OnEvent(e)
	}
	for _, l := range b.all {
		l.OnEvent(e)
	}
	return e
}
