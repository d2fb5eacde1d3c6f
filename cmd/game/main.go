package main

import (
	"flag"
	"log"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/Garsondee/Skirmish-Sense/internal/audio"
	"github.com/Garsondee/Skirmish-Sense/internal/game"
	"github.com/Garsondee/Skirmish-Sense/internal/scenario"
	"github.com/Garsondee/Skirmish-Sense/internal/viewer"
)

func main() {
	var scenarioPath string
	var mute bool
	var verbose bool
	flag.StringVar(&scenarioPath, "scenario", "", "scenario YAML file (default: built-in arena)")
	flag.BoolVar(&mute, "mute", false, "disable sound")
	flag.BoolVar(&verbose, "verbose", false, "keep per-tick diagnostics in the sim log")
	flag.Parse()

	sc := scenario.Default()
	if scenarioPath != "" {
		var err error
		if sc, err = scenario.Load(scenarioPath); err != nil {
			log.Fatal(err)
		}
	}
	w, err := sc.Build(game.NewSimLog(verbose))
	if err != nil {
		log.Fatal(err)
	}

	if !mute {
		sm, err := audio.Init(audio.Speaker())
		if err != nil {
			log.Printf("audio disabled: %v", err)
		} else {
			sm.Attach(w.Bus())
			sm.StartMusic()
			defer audio.Shutdown()
		}
	}

	ebiten.SetWindowTitle("Skirmish Sense: " + sc.Name)
	ebiten.SetWindowSize(1600, 900)
	if err := ebiten.RunGame(viewer.New(w, sc.DT())); err != nil {
		log.Fatal(err)
	}
}
