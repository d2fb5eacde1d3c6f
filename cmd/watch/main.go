// Command watch runs a scenario in the terminal.
package main

import (
	"flag"
	"log"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/Garsondee/Skirmish-Sense/internal/clock"
	"github.com/Garsondee/Skirmish-Sense/internal/game"
	"github.com/Garsondee/Skirmish-Sense/internal/scenario"
	"github.com/Garsondee/Skirmish-Sense/internal/tui"
)

func main() {
	var scenarioPath string
	flag.StringVar(&scenarioPath, "scenario", "", "scenario YAML file (default: built-in arena)")
	flag.Parse()

	sc := scenario.Default()
	if scenarioPath != "" {
		var err error
		if sc, err = scenario.Load(scenarioPath); err != nil {
			log.Fatal(err)
		}
	}
	w, err := sc.Build(game.NewSimLog(false))
	if err != nil {
		log.Fatal(err)
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		log.Fatal(err)
	}
	if err := screen.Init(); err != nil {
		log.Fatal(err)
	}
	defer screen.Fini()

	events := make(chan tcell.Event, 16)
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			events <- ev
		}
	}()

	r := tui.NewRenderer(screen)
	pace := clock.New()
	dt := sc.DT()
	r.Fit(w.Snapshot())

	ticker := time.NewTicker(time.Duration(dt * float64(time.Second)))
	defer ticker.Stop()
	for {
		select {
		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventResize:
				screen.Sync()
				r.Fit(w.Snapshot())
			case *tcell.EventKey:
				if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC || ev.Rune() == 'q' {
					return
				}
				switch ev.Rune() {
				case ' ':
					pace.TogglePause()
				case '+', '=':
					pace.Faster()
				case '-':
					pace.Slower()
				case 'f':
					r.Fit(w.Snapshot())
				}
			}
		case <-ticker.C:
			for n := pace.Frame(); n > 0; n-- {
				w.Step(dt)
			}
			r.Paused = pace.Paused()
			r.Speed = pace.Speed()
			r.Draw(w.Snapshot())
			r.Show()
		}
	}
}
