package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/scutrobotlab/SimulatorX-sub000/internal/domain"
	"github.com/scutrobotlab/SimulatorX-sub000/internal/infrastructure/storage"
)

func main() {
	if len(os.Args) < 3 {
		printHelp()
		return
	}

	session, err := (&storage.ReplayService{}).Load(os.Args[2])
	if err != nil {
		fmt.Printf("Invalid journal: %v\n", err)
		os.Exit(1)
	}

	switch os.Args[1] {
	case "info":
		printInfo(session)
	case "dump":
		limit := len(session.Entries)
		if len(os.Args) > 3 {
			n, err := strconv.Atoi(os.Args[3])
			if err != nil || n < 0 {
				fmt.Printf("Invalid limit: %q\n", os.Args[3])
				return
			}
			limit = min(n, limit)
		}
		dump(session, limit)
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(decoded(session)); err != nil {
			fmt.Printf("Encode failed: %v\n", err)
		}
	default:
		printHelp()
	}
}

func printInfo(s *domain.ReplaySession) {
	fmt.Printf("match:   %s\n", s.MatchID)
	fmt.Printf("layout:  %s\n", s.Layout)
	fmt.Printf("seed:    %d\n", s.Seed)
	fmt.Printf("started: %s\n", time.Unix(s.Timestamp, 0).UTC().Format(time.RFC3339))
	fmt.Printf("entries: %d\n", len(s.Entries))
	if n := len(s.Entries); n > 0 {
		fmt.Printf("ticks:   %d..%d\n", s.Entries[0].Tick, s.Entries[n-1].Tick)
	}

	counts := make(map[domain.ActionName]int)
	for _, e := range s.Entries {
		counts[e.Name]++
	}
	for name, n := range counts {
		fmt.Printf("  %-20s %d\n", name, n)
	}
}

func dump(s *domain.ReplaySession, limit int) {
	for _, e := range s.Entries[:limit] {
		a, err := e.Decode()
		if err != nil {
			fmt.Printf("%8d  %-20s <%v>\n", e.Tick, e.Name, err)
			continue
		}
		fmt.Printf("%8d  %-20s %+v\n", e.Tick, e.Name, a)
	}
}

type decodedEntry struct {
	Tick   uint32            `json:"tick"`
	Name   domain.ActionName `json:"name"`
	Action domain.Action     `json:"action,omitempty"`
	Error  string            `json:"error,omitempty"`
}

func decoded(s *domain.ReplaySession) []decodedEntry {
	result := make([]decodedEntry, 0, len(s.Entries))
	for _, e := range s.Entries {
		d := decodedEntry{Tick: e.Tick, Name: e.Name}
		if a, err := e.Decode(); err != nil {
			d.Error = err.Error()
		} else {
			d.Action = a
		}
		result = append(result, d)
	}
	return result
}

func printHelp() {
	fmt.Println(`Replay Dump - просмотр журналов матчей (.sxrp)
Commands:
  info <file>            - заголовок журнала и число записей по видам действий
  dump <file> [limit]    - записи журнала по тикам (декодированные действия)
  json <file>            - весь журнал в JSON`)
}
