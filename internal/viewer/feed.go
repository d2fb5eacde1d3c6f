package viewer

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/colornames"

	"github.com/Garsondee/Skirmish-Sense/internal/game"
)

const (
	feedPanelWidth = 320
	feedMaxEntries = 60
	feedLineHeight = 11
)

// FeedEntry is a single line in the event feed.
type FeedEntry struct {
	Tick    int
	Label   string
	Kind    game.EventKind
	Message string
}

// Feed is a ring buffer of recent simulation events rendered on-screen.
type Feed struct {
	entries []FeedEntry
	head    int
	count   int
}

// NewFeed creates a feed with a fixed capacity.
func NewFeed() *Feed {
	return &Feed{entries: make([]FeedEntry, feedMaxEntries)}
}

// Add appends an entry, overwriting the oldest when full.
func (f *Feed) Add(e FeedEntry) {
	f.entries[f.head] = e
	f.head = (f.head + 1) % feedMaxEntries
	if f.count < feedMaxEntries {
		f.count++
	}
}

// Recent returns entries oldest first.
func (f *Feed) Recent() []FeedEntry {
	out := make([]FeedEntry, f.count)
	for i := 0; i < f.count; i++ {
		out[i] = f.entries[(f.head-f.count+i+feedMaxEntries)%feedMaxEntries]
	}
	return out
}

// OnEvent records the events worth reading. Audio intents are left to the
// sound manager.
func (f *Feed) OnEvent(e game.Event) {
	label := e.Actor
	if label == "" {
		label = e.Source
	}
	var msg string
	switch e.Kind {
	case game.EventDamageApplied:
		msg = fmt.Sprintf("hit -%.0f -> %.0f", e.Amount, e.Health)
	case game.EventActorDied:
		msg = "down"
	case game.EventActorRespawned:
		msg = "respawned"
	case game.EventSpawnRequested:
		label = e.Source
		msg = fmt.Sprintf("fired %s (%s)", e.Actor, e.Template)
	case game.EventProjectileDestroyed:
		msg = "gone: " + e.Intent
	case game.EventAnimationIntent:
		msg = "anim " + e.Intent
	default:
		return
	}
	f.Add(FeedEntry{Tick: e.Tick, Label: label, Kind: e.Kind, Message: msg})
}

func kindColor(k game.EventKind) color.RGBA {
	switch k {
	case game.EventDamageApplied:
		return colornames.Orange
	case game.EventActorDied:
		return colornames.Crimson
	case game.EventActorRespawned:
		return colornames.Limegreen
	case game.EventSpawnRequested:
		return colornames.Deepskyblue
	default:
		return colornames.Slategray
	}
}

// Draw renders the feed panel at panelX.
func (f *Feed) Draw(screen *ebiten.Image, panelX, panelH int) {
	px := float32(panelX)
	vector.FillRect(screen, px, 0, feedPanelWidth, float32(panelH), color.RGBA{R: 10, G: 12, B: 14, A: 248}, false)
	vector.StrokeLine(screen, px, 0, px, float32(panelH), 1, colornames.Darkslategray, false)
	vector.FillRect(screen, px, 0, feedPanelWidth, 16, color.RGBA{R: 20, G: 26, B: 32, A: 255}, false)
	ebitenutil.DebugPrintAt(screen, "EVENTS", panelX+8, 2)

	entries := f.Recent()
	maxVisible := (panelH - 24) / feedLineHeight
	if len(entries) > maxVisible {
		entries = entries[len(entries)-maxVisible:]
	}
	const recent = 3
	y := 20
	for i, e := range entries {
		if i >= len(entries)-recent {
			vector.FillRect(screen, px+2, float32(y), feedPanelWidth-4, feedLineHeight, color.RGBA{R: 30, G: 36, B: 44, A: 160}, false)
		}
		vector.FillRect(screen, px+5, float32(y+3), 3, 5, kindColor(e.Kind), false)
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("%5d [%s] %s", e.Tick, e.Label, e.Message), panelX+12, y)
		y += feedLineHeight
	}
}
