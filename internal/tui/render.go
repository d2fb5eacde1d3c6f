// Package tui draws world snapshots onto a terminal grid.
package tui

import (
	"fmt"
	"math"

	"github.com/gdamore/tcell/v2"

	"github.com/Garsondee/Skirmish-Sense/internal/game"
)

const (
	defaultScale = 1.0 // world units per row
	fitMargin    = 2.0 // world units kept around the fitted extent
)

// Glyphs.
const (
	glyphPlayer   = '@'
	glyphDown     = 'x'
	glyphWander   = 'c'
	glyphAttack   = 'C'
	glyphObstacle = '#'
	glyphNeutral  = 'n'
	glyphTurret   = 'T'
	glyphTracking = '^'
	glyphCoasting = '.'
	glyphHazard   = '*'
)

var (
	stylePlayer   = tcell.StyleDefault.Foreground(tcell.ColorGreen).Bold(true)
	styleDown     = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleCreature = tcell.StyleDefault.Foreground(tcell.ColorYellow)
	styleAttack   = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
	styleObstacle = tcell.StyleDefault.Foreground(tcell.ColorSilver)
	styleTurret   = tcell.StyleDefault.Foreground(tcell.ColorAqua)
	styleTracking = tcell.StyleDefault.Foreground(tcell.ColorOrange)
	styleCoasting = tcell.StyleDefault.Foreground(tcell.ColorPurple)
	styleHazard   = tcell.StyleDefault.Foreground(tcell.ColorFuchsia)
	styleStatus   = tcell.StyleDefault.Reverse(true)
)

// Renderer projects the x/z plane onto the screen, +z up. One row spans
// Scale world units; columns are half as wide.
type Renderer struct {
	screen  tcell.Screen
	Scale   float64
	CenterX float64
	CenterZ float64
	Paused  bool
	Speed   float64
}

// NewRenderer draws onto s.
func NewRenderer(s tcell.Screen) *Renderer {
	return &Renderer{screen: s, Scale: defaultScale, Speed: 1}
}

// Cell maps a world position to a screen cell. ok is false off-screen or
// on the status row.
func (r *Renderer) Cell(pos [3]float64) (col, row int, ok bool) {
	w, h := r.screen.Size()
	rows := h - 1
	col = w/2 + int(math.Round((pos[0]-r.CenterX)/r.Scale*2))
	row = rows/2 - int(math.Round((pos[2]-r.CenterZ)/r.Scale))
	ok = col >= 0 && col < w && row >= 0 && row < rows
	return col, row, ok
}

// Fit centers the view on everything in s and picks a scale that shows it all.
func (r *Renderer) Fit(s game.Snapshot) {
	minX, maxX := math.Inf(1), math.Inf(-1)
	minZ, maxZ := math.Inf(1), math.Inf(-1)
	grow := func(p [3]float64) {
		minX, maxX = math.Min(minX, p[0]), math.Max(maxX, p[0])
		minZ, maxZ = math.Min(minZ, p[2]), math.Max(maxZ, p[2])
	}
	for _, a := range s.Actors {
		grow(a.Position)
	}
	for _, t := range s.Turrets {
		grow(t.Position)
	}
	for _, hz := range s.Hazards {
		grow(hz.Position)
	}
	if math.IsInf(minX, 1) {
		return
	}
	r.CenterX = (minX + maxX) / 2
	r.CenterZ = (minZ + maxZ) / 2

	w, h := r.screen.Size()
	rows := math.Max(1, float64(h-2))
	cols := math.Max(1, float64(w-2))
	spanX := maxX - minX + 2*fitMargin
	spanZ := maxZ - minZ + 2*fitMargin
	r.Scale = math.Max(spanZ/rows, 2*spanX/cols)
	if r.Scale <= 0 {
		r.Scale = defaultScale
	}
}

func (r *Renderer) put(pos [3]float64, ch rune, st tcell.Style) {
	if col, row, ok := r.Cell(pos); ok {
		r.screen.SetContent(col, row, ch, nil, st)
	}
}

// Draw renders s. Missiles are drawn last so they stay visible over actors.
func (r *Renderer) Draw(s game.Snapshot) {
	r.screen.Clear()
	for _, hz := range s.Hazards {
		r.put(hz.Position, glyphHazard, styleHazard)
	}
	for _, a := range s.Actors {
		ch, st := actorGlyph(a)
		r.put(a.Position, ch, st)
	}
	for _, t := range s.Turrets {
		r.put(t.Position, glyphTurret, styleTurret)
	}
	for _, m := range s.Missiles {
		if m.Phase == game.PhaseCoasting.String() {
			r.put(m.Position, glyphCoasting, styleCoasting)
		} else {
			r.put(m.Position, glyphTracking, styleTracking)
		}
	}
	r.drawStatus(s)
}

func actorGlyph(a game.ActorView) (rune, tcell.Style) {
	switch a.Category {
	case game.CategoryPlayer.String():
		if !a.Active {
			return glyphDown, styleDown
		}
		return glyphPlayer, stylePlayer
	case game.CategoryEnemy.String():
		if !a.Active {
			return glyphDown, styleDown
		}
		if a.State == game.AgentAttack.String() {
			return glyphAttack, styleAttack
		}
		return glyphWander, styleCreature
	case game.CategoryObstacle.String():
		return glyphObstacle, styleObstacle
	default:
		return glyphNeutral, tcell.StyleDefault
	}
}

// StatusLine summarises s in one line.
func (r *Renderer) StatusLine(s game.Snapshot) string {
	players := 0
	up := 0
	hp := ""
	for _, a := range s.Actors {
		if a.Category != game.CategoryPlayer.String() {
			continue
		}
		players++
		if a.Active {
			up++
		}
		hp += fmt.Sprintf(" %s:%.0f", a.Label, a.Health)
	}
	state := fmt.Sprintf("x%.1f", r.Speed)
	if r.Paused {
		state = "paused"
	}
	return fmt.Sprintf("tick %d t=%.1fs %s | players %d/%d%s | missiles %d",
		s.Tick, s.Time, state, up, players, hp, len(s.Missiles))
}

func (r *Renderer) drawStatus(s game.Snapshot) {
	w, h := r.screen.Size()
	line := []rune(r.StatusLine(s))
	for x := 0; x < w; x++ {
		ch := ' '
		if x < len(line) {
			ch = line[x]
		}
		r.screen.SetContent(x, h-1, ch, nil, styleStatus)
	}
}

// Show flushes the frame to the terminal.
func (r *Renderer) Show() { r.screen.Show() }
