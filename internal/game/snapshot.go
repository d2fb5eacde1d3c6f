package game

// ActorView is a read-only copy of one actor.
type ActorView struct {
	Label     string     `json:"label" msgpack:"label"`
	Category  string     `json:"category" msgpack:"category"`
	Position  [3]float64 `json:"position" msgpack:"position"`
	Yaw       float64    `json:"yaw" msgpack:"yaw"`
	Radius    float64    `json:"radius,omitempty" msgpack:"radius,omitempty"`
	Active    bool       `json:"active" msgpack:"active"`
	Health    float64    `json:"health,omitempty" msgpack:"health,omitempty"`
	MaxHealth float64    `json:"max_health,omitempty" msgpack:"max_health,omitempty"`
	Status    string     `json:"status,omitempty" msgpack:"status,omitempty"`
	State     string     `json:"state,omitempty" msgpack:"state,omitempty"` // agent state, creatures only
	Detection float64    `json:"detection,omitempty" msgpack:"detection,omitempty"`
}

// TurretView is a read-only copy of one turret.
type TurretView struct {
	Label    string     `json:"label" msgpack:"label"`
	Position [3]float64 `json:"position" msgpack:"position"`
	Yaw      float64    `json:"yaw" msgpack:"yaw"`
	Range    float64    `json:"range" msgpack:"range"`
	Cooldown float64    `json:"cooldown" msgpack:"cooldown"`
	Stage    string     `json:"stage" msgpack:"stage"`
	Target   string     `json:"target,omitempty" msgpack:"target,omitempty"`
	Shots    int        `json:"shots" msgpack:"shots"`
}

// MissileView is a read-only copy of one missile in flight.
type MissileView struct {
	Label    string     `json:"label" msgpack:"label"`
	Position [3]float64 `json:"position" msgpack:"position"`
	Yaw      float64    `json:"yaw" msgpack:"yaw"`
	Phase    string     `json:"phase" msgpack:"phase"`
	Target   string     `json:"target,omitempty" msgpack:"target,omitempty"`
}

// HazardView is a read-only copy of one hazard.
type HazardView struct {
	Label    string     `json:"label" msgpack:"label"`
	Position [3]float64 `json:"position" msgpack:"position"`
	Radius   float64    `json:"radius" msgpack:"radius"`
}

// Snapshot is the whole world at one tick, safe to hand to another goroutine.
type Snapshot struct {
	Tick     int           `json:"tick" msgpack:"tick"`
	Time     float64       `json:"time" msgpack:"time"`
	Actors   []ActorView   `json:"actors" msgpack:"actors"`
	Turrets  []TurretView  `json:"turrets" msgpack:"turrets"`
	Missiles []MissileView `json:"missiles" msgpack:"missiles"`
	Hazards  []HazardView  `json:"hazards" msgpack:"hazards"`
}

// Snapshot copies the current state of every entity.
func (w *World) Snapshot() Snapshot {
	s := Snapshot{Tick: w.tick, Time: w.time}
	for _, a := range w.dir.All() {
		v := ActorView{
			Label:    a.Label,
			Category: a.Category.String(),
			Position: [3]float64(a.Pose.Position),
			Yaw:      Yaw(a.Pose.Orientation),
			Radius:   a.Radius(),
			Active:   a.active,
		}
		if hs := a.Health; hs != nil {
			v.Health = hs.Current
			v.MaxHealth = hs.Max
			v.Status = hs.Status.String()
		}
		if ag, ok := w.agentByActor[a.handle]; ok {
			v.State = ag.state.String()
			v.Detection = ag.cfg.DetectionRadius
		}
		s.Actors = append(s.Actors, v)
	}
	for _, t := range w.turrets {
		s.Turrets = append(s.Turrets, TurretView{
			Label:    t.label,
			Position: [3]float64(t.base),
			Yaw:      Yaw(t.pivot),
			Range:    t.cfg.FireRange,
			Cooldown: t.Cooldown(),
			Stage:    t.stage.String(),
			Target:   w.labelOf(t.target),
			Shots:    t.shots,
		})
	}
	for _, m := range w.missiles {
		s.Missiles = append(s.Missiles, MissileView{
			Label:    m.label,
			Position: [3]float64(m.pose.Position),
			Yaw:      Yaw(m.pose.Orientation),
			Phase:    m.phase.String(),
			Target:   w.labelOf(m.target),
		})
	}
	for _, hz := range w.hazards {
		s.Hazards = append(s.Hazards, HazardView{
			Label:    hz.label,
			Position: [3]float64(hz.pose.Position),
			Radius:   hz.cfg.Radius,
		})
	}
	return s
}

func (w *World) labelOf(r TargetRef) string {
	if a, ok := w.dir.Lookup(r.Handle()); ok {
		return a.Label
	}
	return ""
}

// Count returns how many actors of the category are active.
func (s Snapshot) Count(category string) int {
	n := 0
	for _, a := range s.Actors {
		if a.Category == category && a.Active {
			n++
		}
	}
	return n
}
