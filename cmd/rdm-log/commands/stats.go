package commands

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/rdm-protocol/rdm-go/pkg/host"
	"github.com/rdm-protocol/rdm-go/pkg/log"
	"github.com/rdm-protocol/rdm-go/pkg/rdm"
)

// Stats holds aggregate statistics about a capture.
type Stats struct {
	TotalEvents       int
	EventsByLayer     map[log.Layer]int
	EventsByCategory  map[log.Category]int
	EventsByDirection map[log.Direction]int
	Sessions          map[string]int
	RequestsByPID     map[rdm.PID]int
	Nacks             map[rdm.NackReason]int
	HostCommands      map[host.Command]int
	Errors            int
	TimeRange         struct {
		Start time.Time
		End   time.Time
	}
}

// Collect reads every event of path into Stats.
func Collect(path string) (*Stats, error) {
	reader, err := log.NewReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	stats := &Stats{
		EventsByLayer:     make(map[log.Layer]int),
		EventsByCategory:  make(map[log.Category]int),
		EventsByDirection: make(map[log.Direction]int),
		Sessions:          make(map[string]int),
		RequestsByPID:     make(map[rdm.PID]int),
		Nacks:             make(map[rdm.NackReason]int),
		HostCommands:      make(map[host.Command]int),
	}
	err = forEach(reader, func(event log.Event) error {
		stats.add(event)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stats, nil
}

func (s *Stats) add(event log.Event) {
	s.TotalEvents++
	s.EventsByLayer[event.Layer]++
	s.EventsByCategory[event.Category]++
	s.EventsByDirection[event.Direction]++
	s.Sessions[event.SessionID]++

	if s.TimeRange.Start.IsZero() || event.Timestamp.Before(s.TimeRange.Start) {
		s.TimeRange.Start = event.Timestamp
	}
	if event.Timestamp.After(s.TimeRange.End) {
		s.TimeRange.End = event.Timestamp
	}

	switch {
	case event.RDM != nil && event.Direction == log.DirectionIn:
		s.RequestsByPID[event.RDM.PID]++
	case event.RDM != nil && event.RDM.NackReason != nil:
		s.Nacks[*event.RDM.NackReason]++
	case event.Host != nil && event.Direction == log.DirectionIn:
		s.HostCommands[host.Command(event.Host.Command)]++
	}
	if event.Error != nil {
		s.Errors++
	}
}

// RunStats prints statistics for path.
func RunStats(path string, w io.Writer) error {
	stats, err := Collect(path)
	if err != nil {
		return err
	}
	printStats(w, stats)
	return nil
}

func printStats(w io.Writer, stats *Stats) {
	fmt.Fprintln(w, "=== RDM Protocol Capture Statistics ===")
	fmt.Fprintln(w)

	if stats.TotalEvents > 0 {
		fmt.Fprintf(w, "Time Range: %s to %s\n",
			stats.TimeRange.Start.Format(time.RFC3339),
			stats.TimeRange.End.Format(time.RFC3339))
		fmt.Fprintf(w, "Duration:   %s\n", stats.TimeRange.End.Sub(stats.TimeRange.Start).Round(time.Millisecond))
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Total Events: %d\n", stats.TotalEvents)
	fmt.Fprintf(w, "Sessions:     %d\n", len(stats.Sessions))
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Layer:")
	for _, layer := range []log.Layer{log.LayerBus, log.LayerHost, log.LayerResponder} {
		if count := stats.EventsByLayer[layer]; count > 0 {
			fmt.Fprintf(w, "  %-12s %d\n", layer.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Category:")
	for _, cat := range []log.Category{log.CategoryMessage, log.CategoryState, log.CategoryError} {
		if count := stats.EventsByCategory[cat]; count > 0 {
			fmt.Fprintf(w, "  %-12s %d\n", cat.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	if len(stats.HostCommands) > 0 {
		fmt.Fprintln(w, "Host Commands:")
		for _, e := range sortedCounts(stats.HostCommands) {
			fmt.Fprintf(w, "  %-28s %d\n", e.key.String()+":", e.n)
		}
		fmt.Fprintln(w)
	}

	if len(stats.RequestsByPID) > 0 {
		fmt.Fprintln(w, "RDM Requests by PID:")
		for _, e := range sortedCounts(stats.RequestsByPID) {
			fmt.Fprintf(w, "  %-28s %d\n", e.key.String()+":", e.n)
		}
		fmt.Fprintln(w)
	}

	if len(stats.Nacks) > 0 {
		fmt.Fprintln(w, "NACKs:")
		for _, e := range sortedCounts(stats.Nacks) {
			fmt.Fprintf(w, "  %-28s %d\n", e.key.String()+":", e.n)
		}
		fmt.Fprintln(w)
	}

	if stats.Errors > 0 {
		fmt.Fprintf(w, "Errors: %d\n", stats.Errors)
	}
}

type count[K fmt.Stringer] struct {
	key K
	n   int
}

// sortedCounts orders by descending count, then name.
func sortedCounts[K interface {
	comparable
	fmt.Stringer
}](m map[K]int) []count[K] {
	out := make([]count[K], 0, len(m))
	for k, n := range m {
		out = append(out, count[K]{k, n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].n != out[j].n {
			return out[i].n > out[j].n
		}
		return out[i].key.String() < out[j].key.String()
	})
	return out
}
