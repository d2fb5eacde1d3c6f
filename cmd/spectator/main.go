// Command spectator runs a scenario in real time and streams it to
// websocket clients on /ws. Clients pick the wire format with ?codec=json
// or ?codec=msgpack.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/Garsondee/Skirmish-Sense/internal/game"
	"github.com/Garsondee/Skirmish-Sense/internal/scenario"
	"github.com/Garsondee/Skirmish-Sense/internal/stream"
)

func main() {
	var addr string
	var scenarioPath string
	var snapshotEvery int
	var buffer int
	flag.StringVar(&addr, "addr", "localhost:8090", "listen address")
	flag.StringVar(&scenarioPath, "scenario", "", "scenario YAML file (default: built-in arena)")
	flag.IntVar(&snapshotEvery, "snapshot-every", 6, "ticks between snapshot frames")
	flag.IntVar(&buffer, "buffer", 256, "per-client frame queue")
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
	if snapshotEvery <= 0 {
		snapshotEvery = 1
	}

	hub := stream.NewHub(buffer)
	hub.Attach(w.Bus())

	var mu sync.Mutex
	latest := w.Snapshot()

	mux := http.NewServeMux()
	mux.Handle("/ws", hub)
	mux.HandleFunc("/snapshot", func(rw http.ResponseWriter, _ *http.Request) {
		mu.Lock()
		s := latest
		mu.Unlock()
		rw.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(rw).Encode(s); err != nil {
			log.Printf("snapshot: %v", err)
		}
	})
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("spectator: %s on http://%s/ws", sc.Name, addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("listen: %v", err)
			stop()
		}
	}()

	dt := sc.DT()
	ticker := time.NewTicker(time.Duration(dt * float64(time.Second)))
	defer ticker.Stop()
loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case <-ticker.C:
			w.Step(dt)
			if w.Tick()%snapshotEvery == 0 {
				s := w.Snapshot()
				mu.Lock()
				latest = s
				mu.Unlock()
				hub.PublishSnapshot(s)
			}
		}
	}

	log.Printf("spectator: shutting down at tick %d (sent=%d dropped=%d)", w.Tick(), hub.Sent(), hub.Dropped())
	hub.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
