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

	"github.com/Garsondee/Skirmish-Sense/internal/game"
)

// Inspector panel, rendered into an offscreen buffer at 1x then blitted at inspScale.
const (
	inspScale = 2
	inspBufW  = 240
	inspBufH  = 200
	inspPad   = 4
	inspLineH = 13
	pickPx    = 16.0 // click radius in screen pixels
)

// Inspector holds the selected entity and view toggle state.
type Inspector struct {
	selected string // label; empty when nothing is selected
	rawView  bool
}

// Selected returns the label of the inspected entity.
func (in *Inspector) Selected() string { return in.selected }

// Pick selects the entity nearest to world point (x, z) within radius.
// Missing everything clears the selection.
func (in *Inspector) Pick(w *game.World, x, z, radius float64) bool {
	best := radius
	hit := ""
	consider := func(label string, p mgl64.Vec3) {
		if d := math.Hypot(p.X()-x, p.Z()-z); d <= best {
			best = d
			hit = label
		}
	}
	for _, a := range w.Directory().All() {
		if a.Active() {
			consider(a.Label, a.Pose.Position)
		}
	}
	for _, t := range w.Turrets() {
		consider(t.Label(), t.Position())
	}
	for _, m := range w.Missiles() {
		consider(m.Label(), m.Pose().Position)
	}
	for _, hz := range w.Hazards() {
		consider(hz.Label(), hz.Pose().Position)
	}
	in.selected = hit
	return hit != ""
}

// Lines describes the selection. An entity that has left the world yields nil.
func (in *Inspector) Lines(w *game.World) []string {
	if in.selected == "" {
		return nil
	}
	for _, a := range w.Directory().All() {
		if a.Label == in.selected {
			return in.actorLines(w, a)
		}
	}
	for _, t := range w.Turrets() {
		if t.Label() == in.selected {
			return in.turretLines(t)
		}
	}
	for _, m := range w.Missiles() {
		if m.Label() == in.selected {
			return in.missileLines(m)
		}
	}
	for _, hz := range w.Hazards() {
		if hz.Label() == in.selected {
			p := hz.Pose().Position
			return []string{
				fmt.Sprintf("[ HAZARD %s ]", hz.Label()),
				fmt.Sprintf("pos   %.1f, %.1f", p.X(), p.Z()),
				fmt.Sprintf("hits  %d", hz.Hits()),
			}
		}
	}
	return nil
}

func (in *Inspector) actorLines(w *game.World, a *game.Actor) []string {
	p := a.Pose.Position
	lines := []string{
		fmt.Sprintf("[ %s %s ]", a.Category, a.Label),
		fmt.Sprintf("pos   %.1f, %.1f", p.X(), p.Z()),
	}
	if hs := a.Health; hs != nil {
		lines = append(lines, fmt.Sprintf("hp    %.0f/%.0f %s", hs.Current, hs.Max, hs.Status))
		if hs.RespawnPending() {
			lines = append(lines, fmt.Sprintf("back in %.1fs", hs.RespawnIn()))
		}
	}
	if ag, ok := w.AgentFor(a.Handle()); ok {
		dist := "-"
		if !math.IsInf(ag.TargetDistance(), 1) {
			dist = fmt.Sprintf("%.1f", ag.TargetDistance())
		}
		lines = append(lines,
			fmt.Sprintf("state %s", ag.State()),
			fmt.Sprintf("dist  %s / %.0f", dist, ag.Config().DetectionRadius),
		)
		if in.rawView {
			wt := ag.WanderTarget()
			lines = append(lines,
				fmt.Sprintf("wander %.1f, %.1f in %.1fs", wt.X(), wt.Z(), ag.WanderTimer()),
				fmt.Sprintf("melee cd %.2f hits %d", ag.AttackCooldown(), ag.Hits()),
			)
		}
	}
	if in.rawView {
		lines = append(lines, fmt.Sprintf("handle %s yaw %.0f", a.Handle(), game.Yaw(a.Pose.Orientation)*180/math.Pi))
	}
	return lines
}

func (in *Inspector) turretLines(t *game.Turret) []string {
	lines := []string{
		fmt.Sprintf("[ TURRET %s ]", t.Label()),
		fmt.Sprintf("stage %s  shots %d", t.Stage(), t.Shots()),
		fmt.Sprintf("cd    %.2f / %.2f", t.Cooldown(), t.Config().FireRate),
	}
	if !math.IsInf(t.TargetDistance(), 1) {
		lines = append(lines, fmt.Sprintf("dist  %.1f / %.0f", t.TargetDistance(), t.Config().FireRange))
	}
	if in.rawView {
		lines = append(lines, fmt.Sprintf("template %s pivot %v", t.Config().Template, t.Config().HasPivot))
	}
	return lines
}

func (in *Inspector) missileLines(m *game.Missile) []string {
	p := m.Pose().Position
	lines := []string{
		fmt.Sprintf("[ MISSILE %s ]", m.Label()),
		fmt.Sprintf("phase %s  age %.1fs", m.Phase(), m.Age()),
		fmt.Sprintf("pos   %.1f, %.1f, %.1f", p.X(), p.Y(), p.Z()),
		fmt.Sprintf("from  %s (%s)", m.Source(), m.Template()),
	}
	if in.rawView {
		h := m.Heading()
		lines = append(lines, fmt.Sprintf("head  %.2f, %.2f, %.2f", h.X(), h.Y(), h.Z()))
	}
	return lines
}

// Draw renders the panel in the top-left corner of screen.
func (in *Inspector) Draw(screen, buf *ebiten.Image, w *game.World) {
	lines := in.Lines(w)
	if lines == nil {
		return
	}
	buf.Clear()
	bw, bh := float32(inspBufW), float32(inspBufH)
	vector.FillRect(buf, 0, 0, bw, bh, color.RGBA{R: 14, G: 16, B: 20, A: 230}, false)
	vector.StrokeRect(buf, 0, 0, bw, bh, 1, colornames.Darkslategray, false)

	view := "CURATED"
	if in.rawView {
		view = "RAW"
	}
	y := inspPad
	ebitenutil.DebugPrintAt(buf, lines[0], inspPad, y)
	y += inspLineH
	ebitenutil.DebugPrintAt(buf, "view: "+view+"  [I] toggle", inspPad, y)
	y += inspLineH + 4
	for _, l := range lines[1:] {
		ebitenutil.DebugPrintAt(buf, l, inspPad, y)
		y += inspLineH
	}

	opts := &ebiten.DrawImageOptions{}
	opts.GeoM.Scale(inspScale, inspScale)
	opts.GeoM.Translate(8, 8)
	screen.DrawImage(buf, opts)
}
