package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/tchesnutt/halite3/internal/persistence/indexdb"
)

func main() {
	if len(os.Args) >= 2 {
		switch os.Args[1] {
		case "turns":
			turnsCmd(os.Args[2:])
			return
		case "path":
			pathCmd(os.Args[2:])
			return
		case "depots":
			depotsCmd(os.Args[2:])
			return
		case "state":
			stateCmd(os.Args[2:])
			return
		}
	}
	listCmd(os.Args[1:])
}

func openIndex(dataDir string) *indexdb.Reader {
	path := filepath.Join(dataDir, "index.db")
	if _, err := os.Stat(path); err != nil {
		fmt.Fprintln(os.Stderr, "index:", err)
		os.Exit(1)
	}
	r, err := indexdb.OpenReader(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "index:", err)
		os.Exit(1)
	}
	return r
}

func listCmd(args []string) {
	fs := flag.NewFlagSet("admin", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	limit := fs.Int("limit", 20, "matches to show")
	asJSON := fs.Bool("json", false, "print JSON")
	_ = fs.Parse(args)

	r := openIndex(*dataDir)
	defer r.Close()
	sums, err := r.MatchSummaries(context.Background(), *limit)
	if err != nil {
		fmt.Fprintln(os.Stderr, "query:", err)
		os.Exit(1)
	}
	if *asJSON {
		_ = json.NewEncoder(os.Stdout).Encode(sums)
		return
	}
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "MATCH\tSTARTED\tMAP\tPLAYERS\tTURNS\tBANK\tSPAWNS\tCONVERTS\tMAX SHIPS\tAVG TURN")
	for _, s := range sums {
		bank := "-"
		if s.FinalBank.Valid {
			bank = fmt.Sprint(s.FinalBank.Int64)
		}
		fmt.Fprintf(tw, "%s\t%s\t%dx%d\t%d\t%d\t%s\t%d\t%d\t%d\t%s\n",
			s.ID, s.StartedAt, s.Width, s.Height, s.Players, s.Turns, bank,
			s.Spawns, s.Converts, s.MaxShips, (time.Duration(s.AvgUS) * time.Microsecond).Round(time.Microsecond))
	}
	_ = tw.Flush()
}

func turnsCmd(args []string) {
	fs := flag.NewFlagSet("turns", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	match := fs.String("match", "", "match id")
	_ = fs.Parse(args)
	if strings.TrimSpace(*match) == "" {
		fmt.Fprintln(os.Stderr, "missing -match")
		os.Exit(2)
	}

	r := openIndex(*dataDir)
	defer r.Close()
	stats, err := r.TurnStats(context.Background(), *match)
	if err != nil {
		fmt.Fprintln(os.Stderr, "query:", err)
		os.Exit(1)
	}
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TURN\tBANK\tSHIPS\tMOVES\tSTILLS\tRETURNING\tENDGAME\tSPAWN\tCONVERT\tMAXIMA\tUS")
	for _, s := range stats {
		fmt.Fprintf(tw, "%d\t%d\t%d\t%d\t%d\t%d\t%d\t%v\t%v\t%d\t%d\n",
			s.Turn, s.Bank, s.Ships, s.Moves, s.Stills, s.Returning, s.EndGame, s.Spawn, s.Converted, s.Maxima, s.ElapsedUS)
	}
	_ = tw.Flush()
}

func pathCmd(args []string) {
	fs := flag.NewFlagSet("path", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	match := fs.String("match", "", "match id")
	ship := fs.Int("ship", -1, "ship id")
	_ = fs.Parse(args)
	if strings.TrimSpace(*match) == "" || *ship < 0 {
		fmt.Fprintln(os.Stderr, "missing -match or -ship")
		os.Exit(2)
	}

	r := openIndex(*dataDir)
	defer r.Close()
	cells, err := r.ShipPath(context.Background(), *match, *ship)
	if err != nil {
		fmt.Fprintln(os.Stderr, "query:", err)
		os.Exit(1)
	}
	parts := make([]string, 0, len(cells))
	for _, c := range cells {
		parts = append(parts, fmt.Sprintf("(%d,%d)", c[0], c[1]))
	}
	fmt.Println(strings.Join(parts, " "))
}

func depotsCmd(args []string) {
	fs := flag.NewFlagSet("depots", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	match := fs.String("match", "", "match id")
	_ = fs.Parse(args)
	if strings.TrimSpace(*match) == "" {
		fmt.Fprintln(os.Stderr, "missing -match")
		os.Exit(2)
	}

	r := openIndex(*dataDir)
	defer r.Close()
	depots, err := r.Depots(context.Background(), *match)
	if err != nil {
		fmt.Fprintln(os.Stderr, "query:", err)
		os.Exit(1)
	}
	for _, d := range depots {
		fmt.Printf("turn %d: (%d,%d)\n", d[2], d[0], d[1])
	}
}

func stateCmd(args []string) {
	fs := flag.NewFlagSet("state", flag.ExitOnError)
	baseURL := fs.String("url", "http://127.0.0.1:8080", "server base url")
	_ = fs.Parse(args)

	u := strings.TrimRight(strings.TrimSpace(*baseURL), "/") + "/admin/v1/state"
	cl := &http.Client{Timeout: 5 * time.Second}
	resp, err := cl.Get(u)
	if err != nil {
		fmt.Fprintln(os.Stderr, "request:", err)
		os.Exit(1)
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	fmt.Println(string(b))
	if resp.StatusCode/100 != 2 {
		os.Exit(1)
	}
}
