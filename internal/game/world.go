package game

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"
)

// World owns every simulated entity and advances them once per tick on the
// caller's goroutine. It is not safe for concurrent use.
type World struct {
	dir       *Directory
	health    *HealthController
	bus       *Bus
	log       *SimLog
	rng       *rand.Rand
	contacts  ContactSource
	templates map[string]MissileConfig

	agents       []*Agent
	agentByActor map[Handle]*Agent
	turrets      []*Turret
	missiles     []*Missile
	pending      []*Missile
	hazards      []*Hazard

	tick   int
	time   float64
	inStep bool
	nextID uint64
	labels map[string]int
}

// NewWorld creates an empty world. seed drives wander picks and event IDs; a
// nil log gets a quiet SimLog.
func NewWorld(seed int64, log *SimLog) *World {
	if log == nil {
		log = NewSimLog(false)
	}
	w := &World{
		dir:          NewDirectory(),
		log:          log,
		rng:          rand.New(rand.NewSource(seed)), // #nosec G404 -- simulation RNG, not security
		contacts:     NewSphereContacts(),
		templates:    map[string]MissileConfig{DefaultMissileTemplate: DefaultMissileConfig()},
		agentByActor: make(map[Handle]*Agent),
		labels:       make(map[string]int),
	}
	w.health = &HealthController{w: w}
	entropy := rand.New(rand.NewSource(seed ^ 0x5eed)) // #nosec G404 -- event ID entropy
	w.bus = NewBus(entropy, func() uint64 { return uint64(math.Round(w.time * 1000)) })
	return w
}

// --- accessors ---

// Tick returns the number of completed ticks.
func (w *World) Tick() int { return w.tick }

// Time returns simulated seconds elapsed.
func (w *World) Time() float64 { return w.time }

// Directory returns the actor directory.
func (w *World) Directory() *Directory { return w.dir }

// Health returns the health and respawn controller.
func (w *World) Health() *HealthController { return w.health }

// Bus returns the event bus collaborators subscribe to.
func (w *World) Bus() *Bus { return w.bus }

// Log returns the structured simulation log.
func (w *World) Log() *SimLog { return w.log }

// Agents returns every creature agent.
func (w *World) Agents() []*Agent { return w.agents }

// AgentFor returns the agent driving the actor h.
func (w *World) AgentFor(h Handle) (*Agent, bool) {
	ag, ok := w.agentByActor[h]
	return ag, ok
}

// Turrets returns every turret.
func (w *World) Turrets() []*Turret { return w.turrets }

// Missiles returns the missiles in flight.
func (w *World) Missiles() []*Missile { return w.missiles }

// Hazards returns the hazards still in play.
func (w *World) Hazards() []*Hazard { return w.hazards }

// SetContactSource replaces the overlap detector.
func (w *World) SetContactSource(src ContactSource) {
	if src != nil {
		w.contacts = src
	}
}

// RegisterTemplate adds or replaces a missile spawn template.
func (w *World) RegisterTemplate(name string, cfg MissileConfig) {
	w.templates[name] = cfg
}

// RemoveTemplate unregisters a missile spawn template.
func (w *World) RemoveTemplate(name string) {
	delete(w.templates, name)
}

// Template looks up a missile spawn template.
func (w *World) Template(name string) (MissileConfig, bool) {
	cfg, ok := w.templates[name]
	return cfg, ok
}

// --- building ---

func (w *World) autoLabel(prefix string) string {
	n := w.labels[prefix]
	w.labels[prefix] = n + 1
	return fmt.Sprintf("%s%d", prefix, n)
}

func categoryPrefix(c Category) string {
	switch c {
	case CategoryPlayer:
		return "P"
	case CategoryEnemy:
		return "C"
	case CategoryObstacle:
		return "O"
	default:
		return "N"
	}
}

// AddActor registers a into the directory. An empty label is generated from
// the category. A zero orientation becomes the identity.
func (w *World) AddActor(a *Actor) Handle {
	if a.Label == "" {
		a.Label = w.autoLabel(categoryPrefix(a.Category))
	}
	if a.Pose.Orientation.Len() < steerEpsilon {
		a.Pose.Orientation = mgl64.QuatIdent()
	}
	h := w.dir.Add(a)
	w.logActor(a, "directory", "add", h.String(), 0)
	return h
}

// AddPlayer is shorthand for a damageable Player actor at pos.
func (w *World) AddPlayer(label string, pos mgl64.Vec3, hs *HealthState) *Actor {
	a := &Actor{Label: label, Category: CategoryPlayer, Pose: Pose{Position: pos}, Health: hs}
	w.AddActor(a)
	return a
}

// AddObstacle registers an inert block.
func (w *World) AddObstacle(label string, pos mgl64.Vec3, radius float64) *Actor {
	a := &Actor{Label: label, Category: CategoryObstacle, Pose: Pose{Position: pos}, Bounds: &Bounds{Radius: radius}}
	w.AddActor(a)
	return a
}

// AddAgent registers a creature actor (if not already registered) and
// attaches a Wander/Attack agent to it.
func (w *World) AddAgent(a *Actor, cfg AgentConfig) *Agent {
	if a.handle.IsZero() {
		w.AddActor(a)
	}
	ag := &Agent{cfg: cfg, self: a.handle, label: a.Label, state: AgentWander, lastDist: math.Inf(1)}
	ag.chooseWanderTarget(w, a)
	w.agents = append(w.agents, ag)
	w.agentByActor[a.handle] = ag
	return ag
}

// AddTurret places a fire-control unit at pos.
func (w *World) AddTurret(label string, pos mgl64.Vec3, cfg TurretConfig) *Turret {
	if label == "" {
		label = w.autoLabel("T")
	}
	t := &Turret{cfg: cfg, label: label, base: pos, pivot: mgl64.QuatIdent(), targetDist: math.Inf(1)}
	w.turrets = append(w.turrets, t)
	w.logf(label, "turret", "directory", "add", fmt.Sprintf("range=%.1f rate=%.2fs", cfg.FireRange, cfg.FireRate), cfg.FireRange)
	return t
}

// AddHazard places an oscillating saw blade at pos.
func (w *World) AddHazard(label string, pos mgl64.Vec3, cfg HazardConfig) *Hazard {
	if label == "" {
		label = w.autoLabel("H")
	}
	w.nextID++
	hz := &Hazard{
		id:    w.nextID,
		label: label,
		cfg:   cfg,
		start: pos,
		pose:  Pose{Position: pos, Orientation: mgl64.QuatIdent()},
	}
	w.hazards = append(w.hazards, hz)
	w.logf(label, "hazard", "directory", "add", fmt.Sprintf("travel=%.1f", cfg.Travel), cfg.Travel)
	return hz
}

// LaunchMissile spawns a missile from a registered template. A non-zero
// target is bound immediately; binding errors are returned alongside the
// launched missile.
func (w *World) LaunchMissile(source, template string, pose Pose, target Handle) (*Missile, error) {
	cfg, ok := w.templates[template]
	if !ok {
		return nil, fmt.Errorf("launch %q: %w", template, ErrUnknownTemplate)
	}
	m := w.spawnMissile(source, template, cfg, pose)
	if target.IsZero() {
		return m, nil
	}
	return m, m.BindTarget(w, target)
}

// spawnMissile creates a missile and emits the spawn request. Missiles spawned
// during a tick join the flight list once the tick ends.
func (w *World) spawnMissile(source, template string, cfg MissileConfig, pose Pose) *Missile {
	w.nextID++
	m := newMissile(w.nextID, w.autoLabel("M"), source, template, cfg, pose)
	if w.inStep {
		w.pending = append(w.pending, m)
	} else {
		w.missiles = append(w.missiles, m)
	}
	ev := Event{Kind: EventSpawnRequested, Source: source, Actor: m.label, Template: template}
	ev.setPose(m.pose)
	w.publish(ev)
	w.logf(m.label, "missile", "missile", "spawn", fmt.Sprintf("from %s (%s)", source, template), 0)
	return m
}

// --- tick ---

// Step advances the world by dt seconds. Every entity updates exactly once;
// directory changes made during the tick are committed at the end.
func (w *World) Step(dt float64) {
	if dt < 0 || math.IsNaN(dt) {
		dt = 0
	}
	w.tick++
	w.time += dt
	w.inStep = true

	w.health.Update(dt)
	for _, ag := range w.agents {
		ag.update(w, dt)
	}
	for _, t := range w.turrets {
		t.update(w, dt)
	}
	for _, m := range w.missiles {
		m.update(w, dt)
	}
	for _, hz := range w.hazards {
		hz.update(w, dt)
	}
	w.resolveContacts()
	w.sweep()

	activated := w.dir.Commit()
	w.health.completeRespawns(activated)
	if len(w.pending) > 0 {
		w.missiles = append(w.missiles, w.pending...)
		w.pending = w.pending[:0]
	}
	w.inStep = false
}

// RunFor steps n ticks of dt each.
func (w *World) RunFor(n int, dt float64) {
	for i := 0; i < n; i++ {
		w.Step(dt)
	}
}

func (w *World) bodies() []Body {
	out := make([]Body, 0, w.dir.Len()+len(w.missiles)+len(w.hazards))
	w.dir.Each(func(a *Actor) bool {
		out = append(out, actorBody(a))
		return true
	})
	for _, m := range w.missiles {
		if !m.destroyed {
			out = append(out, missileBody(m))
		}
	}
	for _, hz := range w.hazards {
		if !hz.destroyed {
			out = append(out, hazardBody(hz))
		}
	}
	return out
}

// resolveContacts dispatches one event per intersecting pair.
func (w *World) resolveContacts() {
	for _, c := range w.contacts.Contacts(w.bodies()) {
		a, b := c.A, c.B
		if a.Kind == BodyActor && b.Kind != BodyActor {
			a, b = b, a
		}
		switch a.Kind {
		case BodyMissile:
			a.Missile.onContact(w, b.Actor)
		case BodyHazard:
			hz := a.Hazard
			hz.onContact(w, b.Actor, c.Began)
		case BodyActor:
			if ag, ok := w.agentByActor[a.Actor.handle]; ok {
				ag.onContact(w, b.Actor)
			}
			if ag, ok := w.agentByActor[b.Actor.handle]; ok {
				ag.onContact(w, a.Actor)
			}
		}
	}
}

// sweep drops destroyed missiles and hazards from the flight lists.
func (w *World) sweep() {
	live := w.missiles[:0]
	for _, m := range w.missiles {
		if !m.destroyed {
			live = append(live, m)
		}
	}
	clear(w.missiles[len(live):])
	w.missiles = live

	hz := w.hazards[:0]
	for _, h := range w.hazards {
		if !h.destroyed {
			hz = append(hz, h)
		}
	}
	clear(w.hazards[len(hz):])
	w.hazards = hz
}

// rebind is the respawn broadcast: every consumer still referencing a gets a
// chance to refresh.
func (w *World) rebind(a *Actor) {
	for _, t := range w.turrets {
		t.rebind(w, a)
	}
	for _, m := range w.missiles {
		m.rebind(w, a)
	}
	for _, m := range w.pending {
		m.rebind(w, a)
	}
	for _, ag := range w.agents {
		ag.rebind(w, a)
	}
}

// --- logging and events ---

func (w *World) logActor(a *Actor, category, key, value string, num float64) {
	w.log.Add(w.tick, a.Label, a.Category.String(), category, key, value, num)
}

func (w *World) logVerbose(a *Actor, category, key, value string, num float64) {
	w.log.AddVerbose(w.tick, a.Label, a.Category.String(), category, key, value, num)
}

func (w *World) logf(label, faction, category, key, value string, num float64) {
	w.log.Add(w.tick, label, faction, category, key, value, num)
}

func (w *World) logVerboseLabel(label, faction, category, key, value string, num float64) {
	w.log.AddVerbose(w.tick, label, faction, category, key, value, num)
}

// diag records a non-fatal error. The caller carries on.
func (w *World) diag(label, faction, key string, err error) {
	w.log.Add(w.tick, label, faction, "diag", key, err.Error(), 0)
}

func (w *World) publish(e Event) Event {
	e.Tick = w.tick
	return w.bus.Publish(e)
}

func (w *World) intent(kind EventKind, a *Actor, name string) {
	ev := Event{Kind: kind, Source: a.Label, Actor: a.Label, Intent: name, handle: a.handle}
	ev.setPose(a.Pose)
	w.publish(ev)
}

func (w *World) intentAt(kind EventKind, label string, p Pose, name string) {
	ev := Event{Kind: kind, Source: label, Intent: name}
	ev.setPose(p)
	w.publish(ev)
}
