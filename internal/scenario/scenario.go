// Package scenario loads encounter layouts from YAML and builds worlds from them.
package scenario

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"

	"github.com/Garsondee/Skirmish-Sense/internal/game"
)

//go:embed arena.yaml
var arenaYAML []byte

const defaultTickRate = 60

// ErrInvalidScenario wraps every validation failure.
var ErrInvalidScenario = errors.New("invalid scenario")

// Vec is a YAML [x, y, z] triple.
type Vec [3]float64

func (v Vec) vec3() mgl64.Vec3 { return mgl64.Vec3{v[0], v[1], v[2]} }

// Template is a missile spawn template. Nil fields take the engine defaults.
type Template struct {
	Speed        *float64 `yaml:"speed"`
	TurnRate     *float64 `yaml:"turn_rate"`
	StopTracking *float64 `yaml:"stop_tracking"`
	Damage       *float64 `yaml:"damage"`
	Radius       *float64 `yaml:"radius"`
	AimOffsetY   *float64 `yaml:"aim_offset_y"`
	Category     string   `yaml:"category"`
	MaxLifetime  float64  `yaml:"max_lifetime"`
}

// Player is a damageable actor of the Player category.
type Player struct {
	Label        string  `yaml:"label"`
	Position     Vec     `yaml:"position"`
	Health       float64 `yaml:"health"`
	RespawnDelay float64 `yaml:"respawn_delay"`
	RespawnPoint *Vec    `yaml:"respawn_point"`
	Radius       float64 `yaml:"radius"`
	CenterOffset Vec     `yaml:"center_offset"`
}

// Obstacle is an inert block.
type Obstacle struct {
	Label    string  `yaml:"label"`
	Position Vec     `yaml:"position"`
	Radius   float64 `yaml:"radius"`
}

// Creature is an Enemy actor driven by a Wander/Attack agent.
type Creature struct {
	Label          string   `yaml:"label"`
	Position       Vec      `yaml:"position"`
	Health         float64  `yaml:"health"`
	RespawnDelay   float64  `yaml:"respawn_delay"`
	Radius         float64  `yaml:"radius"`
	Detection      *float64 `yaml:"detection"`
	Hysteresis     float64  `yaml:"hysteresis"`
	WanderRadius   *float64 `yaml:"wander_radius"`
	WanderInterval *float64 `yaml:"wander_interval"`
	WalkSpeed      *float64 `yaml:"walk_speed"`
	ChaseSpeed     *float64 `yaml:"chase_speed"`
	Damage         *float64 `yaml:"damage"`
	Cooldown       *float64 `yaml:"cooldown"`
	Target         string   `yaml:"target"`
}

// Turret is a stationary fire-control unit.
type Turret struct {
	Label    string   `yaml:"label"`
	Position Vec      `yaml:"position"`
	Range    *float64 `yaml:"range"`
	Rate     *float64 `yaml:"rate"`
	Rotation *float64 `yaml:"rotation"`
	Template string   `yaml:"template"`
	Target   string   `yaml:"target"`
	NoPivot  bool     `yaml:"no_pivot"`
	Staged   bool     `yaml:"staged"`
}

// Hazard is an oscillating saw blade.
type Hazard struct {
	Label    string   `yaml:"label"`
	Position Vec      `yaml:"position"`
	Damage   *float64 `yaml:"damage"`
	Speed    *float64 `yaml:"speed"`
	Travel   *float64 `yaml:"travel"`
	Axis     *Vec     `yaml:"axis"`
	Radius   *float64 `yaml:"radius"`
}

// Scenario is one encounter layout.
type Scenario struct {
	Name      string              `yaml:"name"`
	Seed      int64               `yaml:"seed"`
	TickRate  float64             `yaml:"tick_rate"`
	Templates map[string]Template `yaml:"templates"`
	Players   []Player            `yaml:"players"`
	Obstacles []Obstacle          `yaml:"obstacles"`
	Creatures []Creature          `yaml:"creatures"`
	Turrets   []Turret            `yaml:"turrets"`
	Hazards   []Hazard            `yaml:"hazards"`
}

// Load reads and validates a scenario file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Parse decodes and validates a scenario document.
func Parse(data []byte) (*Scenario, error) {
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode scenario: %w", err)
	}
	if s.TickRate == 0 {
		s.TickRate = defaultTickRate
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Default returns the built-in arena.
func Default() *Scenario {
	s, err := Parse(arenaYAML)
	if err != nil {
		panic(fmt.Sprintf("built-in arena: %v", err))
	}
	return s
}

// DT is the fixed step implied by the tick rate.
func (s *Scenario) DT() float64 {
	if s.TickRate <= 0 {
		return 1.0 / defaultTickRate
	}
	return 1 / s.TickRate
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidScenario, fmt.Sprintf(format, args...))
}

// Validate checks labels, template references and categories.
func (s *Scenario) Validate() error {
	if s.TickRate < 0 {
		return invalid("tick_rate %.2f is negative", s.TickRate)
	}
	seen := map[string]string{}
	claim := func(kind, label string) error {
		if label == "" {
			return nil
		}
		if prev, ok := seen[label]; ok {
			return invalid("%s %q reuses the label of a %s", kind, label, prev)
		}
		seen[label] = kind
		return nil
	}
	for name, t := range s.Templates {
		if t.Category != "" {
			if _, ok := game.ParseCategory(t.Category); !ok {
				return invalid("template %q: unknown category %q", name, t.Category)
			}
		}
		if t.Speed != nil && *t.Speed < 0 {
			return invalid("template %q: negative speed", name)
		}
	}
	for i, p := range s.Players {
		if err := claim("player", p.Label); err != nil {
			return err
		}
		if p.Health < 0 {
			return invalid("player %d (%s): negative health", i, p.Label)
		}
	}
	for _, o := range s.Obstacles {
		if err := claim("obstacle", o.Label); err != nil {
			return err
		}
	}
	for i, c := range s.Creatures {
		if err := claim("creature", c.Label); err != nil {
			return err
		}
		if c.Target != "" {
			if _, ok := game.ParseCategory(c.Target); !ok {
				return invalid("creature %d (%s): unknown target category %q", i, c.Label, c.Target)
			}
		}
	}
	for i, t := range s.Turrets {
		if err := claim("turret", t.Label); err != nil {
			return err
		}
		if t.Template != "" && t.Template != game.DefaultMissileTemplate {
			if _, ok := s.Templates[t.Template]; !ok {
				return invalid("turret %d (%s): unknown template %q", i, t.Label, t.Template)
			}
		}
		if t.Target != "" {
			if _, ok := game.ParseCategory(t.Target); !ok {
				return invalid("turret %d (%s): unknown target category %q", i, t.Label, t.Target)
			}
		}
	}
	for i, h := range s.Hazards {
		if err := claim("hazard", h.Label); err != nil {
			return err
		}
		if h.Axis != nil && h.Axis.vec3().Len() == 0 {
			return invalid("hazard %d (%s): zero axis", i, h.Label)
		}
	}
	return nil
}

func set(dst *float64, src *float64) {
	if src != nil {
		*dst = *src
	}
}

func (t Template) config() game.MissileConfig {
	cfg := game.DefaultMissileConfig()
	set(&cfg.Speed, t.Speed)
	set(&cfg.TurnRate, t.TurnRate)
	set(&cfg.StopTrackingDistance, t.StopTracking)
	set(&cfg.Damage, t.Damage)
	set(&cfg.Radius, t.Radius)
	set(&cfg.AimOffsetY, t.AimOffsetY)
	if c, ok := game.ParseCategory(t.Category); ok {
		cfg.DefaultCategory = c
	}
	cfg.MaxLifetime = t.MaxLifetime
	return cfg
}

func orDefault(v, def float64) float64 {
	if v == 0 {
		return def
	}
	return v
}

// Build creates a world populated with the scenario's entities.
func (s *Scenario) Build(log *game.SimLog) (*game.World, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	w := game.NewWorld(s.Seed, log)
	for name, t := range s.Templates {
		w.RegisterTemplate(name, t.config())
	}

	for _, p := range s.Players {
		hs := game.NewHealth(orDefault(p.Health, 100), orDefault(p.RespawnDelay, 3))
		if p.RespawnPoint != nil {
			hs.WithRespawnPoint(p.RespawnPoint.vec3())
		}
		a := &game.Actor{
			Label:    p.Label,
			Category: game.CategoryPlayer,
			Pose:     game.Pose{Position: p.Position.vec3()},
			Health:   hs,
		}
		if p.Radius > 0 {
			a.Bounds = &game.Bounds{Offset: p.CenterOffset.vec3(), Radius: p.Radius}
		}
		w.AddActor(a)
	}
	for _, o := range s.Obstacles {
		w.AddObstacle(o.Label, o.Position.vec3(), orDefault(o.Radius, 1))
	}
	for _, c := range s.Creatures {
		cfg := game.DefaultAgentConfig()
		set(&cfg.DetectionRadius, c.Detection)
		cfg.HysteresisGap = c.Hysteresis
		set(&cfg.WanderRadius, c.WanderRadius)
		set(&cfg.WanderInterval, c.WanderInterval)
		set(&cfg.WalkSpeed, c.WalkSpeed)
		set(&cfg.ChaseSpeed, c.ChaseSpeed)
		set(&cfg.AttackDamage, c.Damage)
		set(&cfg.AttackCooldown, c.Cooldown)
		if cat, ok := game.ParseCategory(c.Target); ok {
			cfg.TargetCategory = cat
		}
		a := &game.Actor{
			Label:    c.Label,
			Category: game.CategoryEnemy,
			Pose:     game.Pose{Position: c.Position.vec3()},
			Bounds:   &game.Bounds{Radius: orDefault(c.Radius, 0.5)},
			Health:   game.NewHealth(orDefault(c.Health, 100), orDefault(c.RespawnDelay, 3)),
		}
		w.AddAgent(a, cfg)
	}
	for _, t := range s.Turrets {
		cfg := game.DefaultTurretConfig()
		set(&cfg.FireRange, t.Range)
		set(&cfg.FireRate, t.Rate)
		set(&cfg.RotationRate, t.Rotation)
		if t.Template != "" {
			cfg.Template = t.Template
		}
		if cat, ok := game.ParseCategory(t.Target); ok {
			cfg.TargetCategory = cat
		}
		cfg.HasPivot = !t.NoPivot
		cfg.Staged = t.Staged
		w.AddTurret(t.Label, t.Position.vec3(), cfg)
	}
	for _, h := range s.Hazards {
		cfg := game.DefaultHazardConfig()
		set(&cfg.Damage, h.Damage)
		set(&cfg.Speed, h.Speed)
		set(&cfg.Travel, h.Travel)
		set(&cfg.Radius, h.Radius)
		if h.Axis != nil {
			cfg.Axis = h.Axis.vec3().Normalize()
		}
		w.AddHazard(h.Label, h.Position.vec3(), cfg)
	}
	return w, nil
}

// Counts reports how many entities of each kind the scenario declares.
func (s *Scenario) Counts() (players, creatures, turrets, hazards int) {
	return len(s.Players), len(s.Creatures), len(s.Turrets), len(s.Hazards)
}
