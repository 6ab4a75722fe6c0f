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

	"github.com/tchesnutt/halite3/internal/sim/arena"
	"github.com/tchesnutt/halite3/internal/sim/tuning"
	"github.com/tchesnutt/halite3/internal/transport/ws"
)

// serverState backs /admin/v1/state.
type serverState struct {
	mu       sync.Mutex
	Started  time.Time     `json:"started"`
	Finished int           `json:"finished"`
	Aborted  int           `json:"aborted"`
	Last     *matchOutcome `json:"last,omitempty"`
}

type matchOutcome struct {
	ID    string      `json:"id"`
	Turns int         `json:"turns"`
	Banks []int       `json:"banks"`
	Stats arena.Stats `json:"stats"`
	Error string      `json:"error,omitempty"`
}

func main() {
	var (
		addr       = flag.String("addr", ":8080", "http listen address")
		width      = flag.Int("width", 32, "map width (height matches)")
		players    = flag.Int("players", 2, "players per match (2 or 4)")
		turns      = flag.Int("turns", 0, "max turns (default from map size)")
		seed       = flag.Int64("seed", 1337, "seed of the first match; later matches count up")
		tuningPath = flag.String("tuning", "./configs/tuning.yaml", "tuning for the built-in opponents")
		timeout    = flag.Duration("turn_timeout", 10*time.Second, "wait for each COMMANDS reply")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lmicroseconds)

	tune, err := tuning.Load(*tuningPath)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Fatalf("load tuning: %v", err)
		}
		logger.Printf("tuning not found (%s); using defaults", *tuningPath)
		tune = tuning.Defaults()
	}
	maxTurns := *turns
	if maxTurns <= 0 {
		maxTurns = 400 + 25*(*width-32)/8
	}

	srv := ws.NewServer(arena.Config{
		Width:    *width,
		Players:  *players,
		MaxTurns: maxTurns,
		Seed:     *seed,
		Tuning:   tune,
	}, logger)
	srv.TurnTimeout = *timeout

	st := &serverState{Started: time.Now().UTC()}
	srv.OnFinish = func(id string, res arena.Result, err error) {
		st.mu.Lock()
		defer st.mu.Unlock()
		out := &matchOutcome{ID: id, Turns: res.Turns, Banks: res.Banks, Stats: res.Stats}
		if err != nil {
			st.Aborted++
			out.Error = err.Error()
		} else {
			st.Finished++
		}
		st.Last = out
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/ws", srv.Handler())
	mux.HandleFunc("/admin/v1/state", func(rw http.ResponseWriter, r *http.Request) {
		st.mu.Lock()
		defer st.mu.Unlock()
		rw.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(rw).Encode(st)
	})
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		_, _ = rw.Write([]byte("ok"))
	})

	httpSrv := &http.Server{
		Addr:              *addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpSrv.Shutdown(shutdownCtx)
	}()

	logger.Printf("listening on %s (%dx%d, %d players, %d turns)", *addr, *width, *width, *players, maxTurns)
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatalf("listen: %v", err)
	}
}
