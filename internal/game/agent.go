package game

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// --- Creature defaults ---

const (
	defaultDetectionRadius = 100.0 // units
	defaultWanderRadius    = 20.0  // units around the current position
	defaultWanderInterval  = 5.0   // seconds between wander picks
	defaultWalkSpeed       = 3.0   // units per second
	defaultChaseSpeed      = 5.0   // units per second
	defaultAttackDamage    = 10.0
	defaultAttackCooldown  = 1.0 // seconds between melee hits
	defaultFacingRate      = 5.0 // slerp factor per second
	wanderArrivalDist      = 1.0 // closer than this counts as arrived
	moveDeadZone           = 0.1 // no movement or turning below this distance
)

// AgentState is the behaviour state of a creature.
type AgentState int

const (
	AgentWander AgentState = iota // roaming between random points
	AgentAttack                   // chasing the target
)

func (s AgentState) String() string {
	switch s {
	case AgentWander:
		return "wander"
	case AgentAttack:
		return "attack"
	default:
		return "unknown"
	}
}

// AgentConfig tunes one creature.
type AgentConfig struct {
	DetectionRadius float64
	// HysteresisGap widens the exit threshold to DetectionRadius+HysteresisGap.
	// Zero keeps entry and exit on the same radius.
	HysteresisGap  float64
	WanderRadius   float64
	WanderInterval float64
	WalkSpeed      float64
	ChaseSpeed     float64
	AttackDamage   float64
	AttackCooldown float64
	FacingRate     float64
	TargetCategory Category
}

// DefaultAgentConfig returns the baseline creature.
func DefaultAgentConfig() AgentConfig {
	return AgentConfig{
		DetectionRadius: defaultDetectionRadius,
		WanderRadius:    defaultWanderRadius,
		WanderInterval:  defaultWanderInterval,
		WalkSpeed:       defaultWalkSpeed,
		ChaseSpeed:      defaultChaseSpeed,
		AttackDamage:    defaultAttackDamage,
		AttackCooldown:  defaultAttackCooldown,
		FacingRate:      defaultFacingRate,
		TargetCategory:  CategoryPlayer,
	}
}

// Agent drives one creature actor through the Wander/Attack cycle.
type Agent struct {
	cfg   AgentConfig
	self  Handle
	label string

	state          AgentState
	wanderTarget   mgl64.Vec3
	wanderTimer    float64
	attackCooldown float64
	target         TargetRef
	lastDist       float64
	hits           int
}

// State returns the current behaviour state.
func (ag *Agent) State() AgentState { return ag.state }

// Label returns the creature actor's label.
func (ag *Agent) Label() string { return ag.label }

// Actor returns the handle of the creature actor.
func (ag *Agent) Actor() Handle { return ag.self }

// Config returns the agent's tuning.
func (ag *Agent) Config() AgentConfig { return ag.cfg }

// WanderTarget returns the current wander destination.
func (ag *Agent) WanderTarget() mgl64.Vec3 { return ag.wanderTarget }

// WanderTimer returns seconds since the last wander pick.
func (ag *Agent) WanderTimer() float64 { return ag.wanderTimer }

// AttackCooldown returns seconds until the next melee hit is allowed.
func (ag *Agent) AttackCooldown() float64 { return math.Max(0, ag.attackCooldown) }

// Target returns the agent's current target reference.
func (ag *Agent) Target() TargetRef { return ag.target }

// TargetDistance returns the distance measured at the start of the last update,
// +Inf when there was no live target.
func (ag *Agent) TargetDistance() float64 { return ag.lastDist }

// Hits returns the number of melee hits landed.
func (ag *Agent) Hits() int { return ag.hits }

// update runs one tick of the state machine.
func (ag *Agent) update(w *World, dt float64) {
	self, ok := w.dir.Live(ag.self)
	if !ok || (self.Health != nil && self.Health.Status != StatusAlive) {
		return
	}

	if ag.attackCooldown > 0 {
		ag.attackCooldown -= dt
	}

	target, live := ag.resolveTarget(w, self)
	dist := math.Inf(1)
	if live {
		dist = target.Pose.Position.Sub(self.Pose.Position).Len()
	}
	ag.lastDist = dist

	switch ag.state {
	case AgentWander:
		ag.handleWander(w, self, dist, dt)
	case AgentAttack:
		ag.handleChase(w, self, target, dist, dt)
	}
	w.logVerbose(self, "ai", "distance", fmt.Sprintf("%.2f", dist), dist)
}

// resolveTarget revalidates the current target and falls back to the nearest
// live candidate when it is gone or inactive.
func (ag *Agent) resolveTarget(w *World, self *Actor) (*Actor, bool) {
	if a, ok, _ := ag.target.Resolve(w.dir); ok {
		return a, true
	}
	a, _, ok := w.dir.Nearest(self.Pose.Position, ag.cfg.TargetCategory)
	if !ok {
		ag.target = TargetRef{}
		return nil, false
	}
	ag.target = RefTo(a.Handle())
	return a, true
}

func (ag *Agent) handleWander(w *World, self *Actor, dist, dt float64) {
	if ag.wanderTimer >= ag.cfg.WanderInterval ||
		Flatten(self.Pose.Position.Sub(ag.wanderTarget)).Len() < wanderArrivalDist {
		ag.chooseWanderTarget(w, self)
	}
	ag.wanderTimer += dt

	ag.moveToward(self, ag.wanderTarget, ag.cfg.WalkSpeed, dt)

	if dist <= ag.cfg.DetectionRadius {
		ag.enterAttack(w, self, dist)
	}
}

func (ag *Agent) handleChase(w *World, self *Actor, target *Actor, dist, dt float64) {
	if target == nil || dist > ag.cfg.DetectionRadius+ag.cfg.HysteresisGap {
		ag.exitAttack(w, self, dist)
		return
	}
	ag.moveToward(self, target.Pose.Position, ag.cfg.ChaseSpeed, dt)
}

func (ag *Agent) enterAttack(w *World, self *Actor, dist float64) {
	ag.state = AgentAttack
	ag.wanderTimer = 0
	w.logActor(self, "ai", "state_change", fmt.Sprintf("wander → attack (d=%.2f)", dist), dist)
	w.intent(EventAnimationIntent, self, "attack")
}

func (ag *Agent) exitAttack(w *World, self *Actor, dist float64) {
	ag.state = AgentWander
	ag.chooseWanderTarget(w, self)
	w.logActor(self, "ai", "state_change", fmt.Sprintf("attack → wander (d=%.2f)", dist), dist)
	w.intent(EventAnimationIntent, self, "walk")
}

// chooseWanderTarget picks a uniform random point on the ground disc of
// WanderRadius around the creature.
func (ag *Agent) chooseWanderTarget(w *World, self *Actor) {
	r := ag.cfg.WanderRadius * math.Sqrt(w.rng.Float64())
	theta := 2 * math.Pi * w.rng.Float64()
	p := self.Pose.Position
	ag.wanderTarget = mgl64.Vec3{p.X() + r*math.Cos(theta), p.Y(), p.Z() + r*math.Sin(theta)}
	ag.wanderTimer = 0
	w.logVerbose(self, "ai", "wander_target",
		fmt.Sprintf("(%.1f,%.1f)", ag.wanderTarget.X(), ag.wanderTarget.Z()), r)
}

// moveToward walks along the ground plane and turns to face the walk direction.
func (ag *Agent) moveToward(self *Actor, dest mgl64.Vec3, speed, dt float64) {
	dir := Flatten(dest.Sub(self.Pose.Position))
	d := dir.Len()
	if d <= moveDeadZone {
		return
	}
	step := math.Min(speed*dt, d)
	self.Pose.Position = self.Pose.Position.Add(dir.Mul(step / d))
	self.Pose.Orientation = SlerpTowards(self.Pose.Orientation, LookRotation(dir), dt*ag.cfg.FacingRate)
}

// onContact handles one overlap with another actor this tick. Melee damage
// lands at most once per AttackCooldown while attacking.
func (ag *Agent) onContact(w *World, other *Actor) {
	if ag.state != AgentAttack || other.Category != ag.cfg.TargetCategory || !other.Damageable() {
		return
	}
	if ag.attackCooldown > timerEpsilon {
		return
	}
	self, ok := w.dir.Live(ag.self)
	if !ok {
		return
	}
	res, err := w.health.ApplyDamage(other.Handle(), ag.cfg.AttackDamage)
	if err != nil {
		w.diag(self.Label, self.Category.String(), "melee", err)
		return
	}
	if res.Gated {
		return
	}
	ag.attackCooldown = ag.cfg.AttackCooldown
	ag.hits++
	w.logActor(self, "ai", "melee_hit", fmt.Sprintf("%s -%.1f → %.1f", other.Label, ag.cfg.AttackDamage, res.Health), ag.cfg.AttackDamage)
	w.intent(EventAudioIntent, self, "creature_hit")
}

// rebind points the agent at a respawned actor it was already referencing.
func (ag *Agent) rebind(w *World, a *Actor) {
	if ag.target.Points(a.Handle()) {
		w.logVerbose(a, "ai", "rebind", ag.label, 0)
	}
}
