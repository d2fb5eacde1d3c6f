// Package viewer is the ebiten front end: a top-down view of a running world
// with speed control, click-to-inspect and an event feed.
package viewer

import (
	"fmt"
	"image/color"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/colornames"

	"github.com/Garsondee/Skirmish-Sense/internal/clock"
	"github.com/Garsondee/Skirmish-Sense/internal/game"
)

const (
	viewW        = 1280
	viewH        = 900
	defaultZoom  = 12.0 // pixels per world unit
	gridSpacing  = 5.0  // world units between grid lines
	panSpeed     = 8.0  // screen pixels per frame
	collectEvery = 60   // ticks between reporter samples
)

var (
	colBackground = color.RGBA{R: 12, G: 14, B: 18, A: 255}
	colGrid       = color.RGBA{R: 28, G: 34, B: 40, A: 255}
	colPlayer     = colornames.Limegreen
	colCreature   = colornames.Gold
	colAttack     = colornames.Crimson
	colObstacle   = colornames.Slategray
	colNeutral    = colornames.Lightsteelblue
	colTurret     = colornames.Deepskyblue
	colTracking   = colornames.Orange
	colCoasting   = colornames.Mediumpurple
	colHazard     = colornames.Orchid
	colSelected   = colornames.White
	colRing       = color.RGBA{R: 200, G: 180, B: 60, A: 70}
)

// Game drives a world at a fixed step and draws it.
type Game struct {
	world    *game.World
	dt       float64
	clock    *clock.Clock
	cam      Camera
	feed     *Feed
	insp     Inspector
	reporter *game.Reporter

	showHUD   bool
	showRings bool
	prevKeys  map[ebiten.Key]bool
	prevMouse bool

	inspBuf *ebiten.Image
}

// New wraps w. dt is the simulated seconds per tick.
func New(w *game.World, dt float64) *Game {
	g := &Game{
		world:     w,
		dt:        dt,
		clock:     clock.New(),
		cam:       Camera{Zoom: defaultZoom, W: viewW, H: viewH},
		feed:      NewFeed(),
		reporter:  game.NewReporter(0),
		showHUD:   true,
		showRings: true,
		prevKeys:  make(map[ebiten.Key]bool),
	}
	w.Bus().SubscribeAll(g.feed)
	g.centre()
	return g
}

// centre points the camera at the middle of everything placed so far.
func (g *Game) centre() {
	snap := g.world.Snapshot()
	n := 0.0
	var sum mgl64.Vec3
	for _, a := range snap.Actors {
		sum = sum.Add(mgl64.Vec3(a.Position))
		n++
	}
	for _, t := range snap.Turrets {
		sum = sum.Add(mgl64.Vec3(t.Position))
		n++
	}
	if n > 0 {
		g.cam.X, g.cam.Z = sum.X()/n, sum.Z()/n
	}
}

// Feed exposes the event feed.
func (g *Game) Feed() *Feed { return g.feed }

// Clock exposes the speed control.
func (g *Game) Clock() *clock.Clock { return g.clock }

// Advance runs the ticks owed for one frame.
func (g *Game) Advance() int {
	n := g.clock.Frame()
	for i := 0; i < n; i++ {
		g.world.Step(g.dt)
		if g.world.Tick()%collectEvery == 0 {
			g.reporter.Collect(g.world)
		}
	}
	return n
}

// Update implements ebiten.Game.
func (g *Game) Update() error {
	g.handleInput()
	g.Advance()
	return nil
}

func (g *Game) pressed(cur map[ebiten.Key]bool, k ebiten.Key) bool {
	cur[k] = ebiten.IsKeyPressed(k)
	return cur[k] && !g.prevKeys[k]
}

// handleInput processes keys (edge-triggered) and camera movement.
func (g *Game) handleInput() {
	cur := map[ebiten.Key]bool{}

	pause := g.pressed(cur, ebiten.KeyP)
	if g.pressed(cur, ebiten.KeySpace) || pause {
		g.clock.TogglePause()
	}
	if g.pressed(cur, ebiten.KeyComma) {
		g.clock.Slower()
	}
	if g.pressed(cur, ebiten.KeyPeriod) {
		g.clock.Faster()
	}
	if g.pressed(cur, ebiten.KeyH) {
		g.showHUD = !g.showHUD
	}
	if g.pressed(cur, ebiten.KeyR) {
		g.showRings = !g.showRings
	}
	if g.pressed(cur, ebiten.KeyI) {
		g.insp.rawView = !g.insp.rawView
	}
	if g.pressed(cur, ebiten.KeyEqual) {
		g.cam.ZoomBy(1.25)
	}
	if g.pressed(cur, ebiten.KeyMinus) {
		g.cam.ZoomBy(1 / 1.25)
	}
	if g.pressed(cur, ebiten.KeyN) && g.clock.Paused() {
		g.world.Step(g.dt)
	}

	if ebiten.IsKeyPressed(ebiten.KeyW) || ebiten.IsKeyPressed(ebiten.KeyArrowUp) {
		g.cam.Pan(0, -panSpeed)
	}
	if ebiten.IsKeyPressed(ebiten.KeyS) || ebiten.IsKeyPressed(ebiten.KeyArrowDown) {
		g.cam.Pan(0, panSpeed)
	}
	if ebiten.IsKeyPressed(ebiten.KeyA) || ebiten.IsKeyPressed(ebiten.KeyArrowLeft) {
		g.cam.Pan(-panSpeed, 0)
	}
	if ebiten.IsKeyPressed(ebiten.KeyD) || ebiten.IsKeyPressed(ebiten.KeyArrowRight) {
		g.cam.Pan(panSpeed, 0)
	}
	if _, wy := ebiten.Wheel(); wy != 0 {
		g.cam.ZoomBy(math.Pow(1.12, wy))
	}

	mouse := ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)
	if mouse && !g.prevMouse {
		mx, my := ebiten.CursorPosition()
		x, z := g.cam.ToWorld(mx, my)
		g.insp.Pick(g.world, x, z, pickPx/g.cam.Zoom)
	}
	g.prevMouse = mouse
	g.prevKeys = cur
}

// Draw implements ebiten.Game.
func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(colBackground)
	g.drawGrid(screen)
	g.drawHazards(screen)
	g.drawActors(screen)
	g.drawTurrets(screen)
	g.drawMissiles(screen)

	g.feed.Draw(screen, viewW, viewH)
	if g.showHUD {
		g.drawHUD(screen)
	}
	if g.inspBuf == nil {
		g.inspBuf = ebiten.NewImage(inspBufW, inspBufH)
	}
	g.insp.Draw(screen, g.inspBuf, g.world)
}

func (g *Game) drawGrid(screen *ebiten.Image) {
	x0, z1 := g.cam.ToWorld(0, 0)
	x1, z0 := g.cam.ToWorld(viewW, viewH)
	for x := math.Floor(x0/gridSpacing) * gridSpacing; x <= x1; x += gridSpacing {
		sx, _ := g.cam.ToScreen(x, 0)
		vector.StrokeLine(screen, sx, 0, sx, viewH, 1, colGrid, false)
	}
	for z := math.Floor(z0/gridSpacing) * gridSpacing; z <= z1; z += gridSpacing {
		_, sy := g.cam.ToScreen(0, z)
		vector.StrokeLine(screen, 0, sy, viewW, sy, 1, colGrid, false)
	}
}

func (g *Game) radius(r float64) float32 {
	return float32(math.Max(2, r*g.cam.Zoom))
}

// heading draws a line of the given length from p along dir.
func (g *Game) heading(screen *ebiten.Image, p mgl64.Vec3, dir mgl64.Vec3, length float64, c color.Color) {
	sx, sy := g.cam.ToScreen(p.X(), p.Z())
	end := p.Add(dir.Mul(length))
	ex, ey := g.cam.ToScreen(end.X(), end.Z())
	vector.StrokeLine(screen, sx, sy, ex, ey, 1.5, c, false)
}

func (g *Game) outline(screen *ebiten.Image, label string, sx, sy, r float32) {
	if label == g.insp.Selected() {
		vector.StrokeCircle(screen, sx, sy, r+3, 1.5, colSelected, false)
	}
}

func (g *Game) drawActors(screen *ebiten.Image) {
	for _, a := range g.world.Directory().All() {
		p := a.Pose.Position
		sx, sy := g.cam.ToScreen(p.X(), p.Z())
		r := g.radius(math.Max(a.Radius(), 0.5))
		if !a.Active() {
			vector.StrokeCircle(screen, sx, sy, r, 1, colObstacle, false)
			continue
		}
		var c color.Color
		switch a.Category {
		case game.CategoryPlayer:
			c = colPlayer
		case game.CategoryEnemy:
			c = colCreature
			if ag, ok := g.world.AgentFor(a.Handle()); ok {
				if ag.State() == game.AgentAttack {
					c = colAttack
				}
				if g.showRings {
					vector.StrokeCircle(screen, sx, sy, g.radius(ag.Config().DetectionRadius), 1, colRing, false)
				}
			}
		case game.CategoryObstacle:
			vector.FillRect(screen, sx-r, sy-r, 2*r, 2*r, colObstacle, false)
			g.outline(screen, a.Label, sx, sy, r)
			continue
		default:
			c = colNeutral
		}
		vector.FillCircle(screen, sx, sy, r, c, false)
		g.heading(screen, p, a.Pose.Forward(), 1.2, c)
		if hs := a.Health; hs != nil {
			w := 2 * r
			vector.FillRect(screen, sx-r, sy-r-5, w, 3, colGrid, false)
			vector.FillRect(screen, sx-r, sy-r-5, w*float32(hs.Fraction()), 3, c, false)
		}
		g.outline(screen, a.Label, sx, sy, r)
		ebitenutil.DebugPrintAt(screen, a.Label, int(sx+r+2), int(sy-8))
	}
}

func (g *Game) drawTurrets(screen *ebiten.Image) {
	for _, t := range g.world.Turrets() {
		p := t.Position()
		sx, sy := g.cam.ToScreen(p.X(), p.Z())
		r := g.radius(0.6)
		vector.StrokeRect(screen, sx-r, sy-r, 2*r, 2*r, 1.5, colTurret, false)
		if t.Config().HasPivot {
			g.heading(screen, p, game.Pose{Orientation: t.Pivot()}.Forward(), 1.5, colTurret)
		}
		if g.showRings && t.Label() == g.insp.Selected() {
			vector.StrokeCircle(screen, sx, sy, g.radius(t.Config().FireRange), 1, colTurret, false)
		}
		g.outline(screen, t.Label(), sx, sy, r)
		ebitenutil.DebugPrintAt(screen, t.Label(), int(sx+r+2), int(sy-8))
	}
}

func (g *Game) drawMissiles(screen *ebiten.Image) {
	for _, m := range g.world.Missiles() {
		p := m.Pose().Position
		sx, sy := g.cam.ToScreen(p.X(), p.Z())
		c := colTracking
		if m.Phase() == game.PhaseCoasting {
			c = colCoasting
		}
		vector.FillCircle(screen, sx, sy, g.radius(m.Config().Radius), c, false)
		g.heading(screen, p, m.Heading(), -0.8, c)
		g.outline(screen, m.Label(), sx, sy, g.radius(m.Config().Radius))
	}
}

func (g *Game) drawHazards(screen *ebiten.Image) {
	for _, hz := range g.world.Hazards() {
		p := hz.Pose().Position
		sx, sy := g.cam.ToScreen(p.X(), p.Z())
		r := g.radius(hz.Config().Radius)
		vector.StrokeCircle(screen, sx, sy, r, 2, colHazard, false)
		spoke := hz.Pose().Orientation.Rotate(mgl64.Vec3{0, 1, 0})
		g.heading(screen, p, mgl64.Vec3{spoke.X(), 0, spoke.Y()}, hz.Config().Radius, colHazard)
		g.outline(screen, hz.Label(), sx, sy, r)
	}
}

func (g *Game) drawHUD(screen *ebiten.Image) {
	snap := g.world.Snapshot()
	lines := []string{
		fmt.Sprintf("SIM: %s  tick %d  t=%.1fs", g.clock.Label(), snap.Tick, snap.Time),
		fmt.Sprintf("players %d  creatures %d  missiles %d", snap.Count("player"), snap.Count("enemy"), len(snap.Missiles)),
		"P/space=pause  ,/.=speed  N=step",
		"WASD=pan  scroll,=/-=zoom  R=rings  H=HUD",
		"click=inspect  I=raw view",
	}
	if wr := g.reporter.WindowSummary(); wr != nil {
		lines = append(lines, fmt.Sprintf("window: attacking %.1f  coasting %.0f%%", wr.AvgAttacking, wr.CoastingFraction*100))
	}
	y := viewH - len(lines)*14 - 8
	vector.FillRect(screen, 4, float32(y-4), 300, float32(len(lines)*14+8), color.RGBA{R: 6, G: 8, B: 10, A: 210}, false)
	for i, l := range lines {
		ebitenutil.DebugPrintAt(screen, l, 10, y+i*14)
	}
}

// Layout implements ebiten.Game.
func (g *Game) Layout(_, _ int) (int, int) {
	return viewW + feedPanelWidth, viewH
}
