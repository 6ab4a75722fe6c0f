package main

import (
	"context"
	"flag"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/tchesnutt/halite3/internal/runner"
	"github.com/tchesnutt/halite3/internal/sim/tuning"
	"github.com/tchesnutt/halite3/internal/transport/stdio"
	"github.com/tchesnutt/halite3/internal/transport/ws"
)

func main() {
	var (
		url        = flag.String("url", "ws://localhost:8080/v1/ws", "game server ws url")
		useStdio   = flag.Bool("stdio", false, "speak the protocol over stdin/stdout instead of a websocket")
		name       = flag.String("name", "halite3", "bot name sent in HELLO")
		tuningPath = flag.String("tuning", "./configs/tuning.yaml", "path to tuning.yaml (missing file means defaults)")
		dataDir    = flag.String("data", "./data", "runtime data directory (empty disables recording)")
		disableDB  = flag.Bool("disable_db", false, "disable the sqlite match index")
		snapEvery  = flag.Int("snapshot_every", 50, "write a turn snapshot every N turns (0 disables)")
		strict     = flag.Bool("strict", false, "validate every frame against the protocol schema")
		logPath    = flag.String("log", "", "log file (default stderr)")
	)
	flag.Parse()

	// Stdout carries the protocol in stdio mode.
	var logOut io.Writer = os.Stderr
	if p := strings.TrimSpace(*logPath); p != "" {
		_ = os.MkdirAll(filepath.Dir(p), 0o755)
		f, err := os.OpenFile(p, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			log.Fatalf("open log: %v", err)
		}
		defer f.Close()
		logOut = f
	}
	logger := log.New(logOut, "[bot] ", log.LstdFlags|log.Lmicroseconds)

	tune, err := tuning.Load(*tuningPath)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Fatalf("load tuning: %v", err)
		}
		logger.Printf("tuning not found (%s); using defaults", *tuningPath)
		tune = tuning.Defaults()
	}

	r, err := runner.New(runner.Options{
		DataDir:       strings.TrimSpace(*dataDir),
		DisableDB:     *disableDB,
		SnapshotEvery: *snapEvery,
		Tuning:        tune,
		Logger:        logger,
	})
	if err != nil {
		logger.Fatalf("init: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var runErr error
	if *useStdio {
		sess, err := stdio.Open(os.Stdin, os.Stdout, *name, logger)
		if err != nil {
			_ = r.Close()
			logger.Fatalf("stdio: %v", err)
		}
		sess.Strict = *strict
		r.Welcome(sess.Welcome)
		runErr = sess.Run(ctx, r.Handle)
	} else {
		sess, err := ws.Dial(ctx, *url, *name, logger)
		if err != nil {
			_ = r.Close()
			logger.Fatalf("connect: %v", err)
		}
		sess.Strict = *strict
		r.Welcome(sess.Welcome)
		runErr = sess.Run(ctx, r.Handle)
		_ = sess.Close()
	}

	if err := r.Close(); err != nil {
		logger.Printf("close: %v", err)
	}
	if runErr != nil {
		logger.Fatalf("match %s: %v", r.MatchID(), runErr)
	}
}
