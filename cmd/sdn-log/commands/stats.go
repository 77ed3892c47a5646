package commands

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/sdn-protocol/dataplane-go/pkg/log"
)

// Stats holds aggregate statistics about a log file.
type Stats struct {
	TotalEvents       int
	EventsByCategory  map[log.Category]int
	EventsByDirection map[log.Direction]int
	Sessions          map[string]*SessionStats
	Errors            int
	PushFailures      int
	TimeRange         struct {
		Start time.Time
		End   time.Time
	}
}

// SessionStats holds statistics for a single boot session.
type SessionStats struct {
	FirstSeen   time.Time
	LastSeen    time.Time
	Events      int
	DeviceID    string
	Transitions int
}

// RunStats analyzes the log file and prints statistics.
func RunStats(path string, w io.Writer) error {
	reader, err := log.NewReader(path)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	stats := &Stats{
		EventsByCategory:  make(map[log.Category]int),
		EventsByDirection: make(map[log.Direction]int),
		Sessions:          make(map[string]*SessionStats),
	}

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}

		stats.TotalEvents++
		stats.EventsByCategory[event.Category]++
		stats.EventsByDirection[event.Direction]++

		if event.Category == log.CategoryError {
			stats.Errors++
		}
		if event.Push != nil && event.Push.Failed {
			stats.PushFailures++
		}

		// Track time range
		if stats.TimeRange.Start.IsZero() || event.Timestamp.Before(stats.TimeRange.Start) {
			stats.TimeRange.Start = event.Timestamp
		}
		if event.Timestamp.After(stats.TimeRange.End) {
			stats.TimeRange.End = event.Timestamp
		}

		// Track per-session stats
		session, ok := stats.Sessions[event.SessionID]
		if !ok {
			session = &SessionStats{
				FirstSeen: event.Timestamp,
				LastSeen:  event.Timestamp,
			}
			stats.Sessions[event.SessionID] = session
		}
		session.Events++
		if event.Timestamp.Before(session.FirstSeen) {
			session.FirstSeen = event.Timestamp
		}
		if event.Timestamp.After(session.LastSeen) {
			session.LastSeen = event.Timestamp
		}
		if event.DeviceID != "" {
			session.DeviceID = event.DeviceID
		}
		if event.StateChange != nil {
			session.Transitions++
		}
	}

	printStats(w, stats)
	return nil
}

func printStats(w io.Writer, stats *Stats) {
	fmt.Fprintf(w, "Total events: %d\n", stats.TotalEvents)
	if stats.TotalEvents == 0 {
		return
	}

	fmt.Fprintf(w, "Time range:   %s - %s (%s)\n",
		stats.TimeRange.Start.UTC().Format(time.RFC3339),
		stats.TimeRange.End.UTC().Format(time.RFC3339),
		stats.TimeRange.End.Sub(stats.TimeRange.Start).Round(time.Millisecond))

	fmt.Fprintln(w, "\nBy category:")
	for _, c := range []log.Category{log.CategoryRequest, log.CategoryPush, log.CategoryState, log.CategoryError} {
		if n := stats.EventsByCategory[c]; n > 0 {
			fmt.Fprintf(w, "  %-8s %d\n", c.String(), n)
		}
	}

	fmt.Fprintln(w, "\nBy direction:")
	for _, d := range []log.Direction{log.DirectionIn, log.DirectionOut} {
		if n := stats.EventsByDirection[d]; n > 0 {
			fmt.Fprintf(w, "  %-8s %d\n", d.String(), n)
		}
	}

	if stats.Errors > 0 {
		fmt.Fprintf(w, "\nErrors:        %d\n", stats.Errors)
	}
	if stats.PushFailures > 0 {
		fmt.Fprintf(w, "Push failures: %d\n", stats.PushFailures)
	}

	// Sessions, oldest first
	ids := make([]string, 0, len(stats.Sessions))
	for id := range stats.Sessions {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return stats.Sessions[ids[i]].FirstSeen.Before(stats.Sessions[ids[j]].FirstSeen)
	})

	fmt.Fprintf(w, "\nSessions (%d):\n", len(ids))
	for _, id := range ids {
		s := stats.Sessions[id]
		fmt.Fprintf(w, "  %s  device=%s  events=%d  transitions=%d  duration=%s\n",
			shortenSessionID(id), s.DeviceID, s.Events, s.Transitions,
			s.LastSeen.Sub(s.FirstSeen).Round(time.Millisecond))
	}
}
