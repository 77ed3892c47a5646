// Package commands implements the sdn-log CLI commands.
package commands

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sdn-protocol/dataplane-go/pkg/log"
)

// ViewFilter specifies criteria for filtering events in the view command.
type ViewFilter struct {
	SessionID string
	DeviceID  string
	Direction *log.Direction
	Category  *log.Category
}

// RunView reads the log file and prints matching events in a human-readable
// format.
func RunView(path string, filter ViewFilter, w io.Writer) error {
	reader, err := log.NewFilteredReader(path, log.Filter{
		SessionID: filter.SessionID,
		DeviceID:  filter.DeviceID,
		Direction: filter.Direction,
		Category:  filter.Category,
	})
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		formatEvent(w, event)
	}
	return nil
}

// formatEvent writes a human-readable representation of the event to w.
func formatEvent(w io.Writer, event log.Event) {
	// Header line: timestamp [session:id] DIRECTION CATEGORY
	ts := event.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z")
	session := shortenSessionID(event.SessionID)

	fmt.Fprintf(w, "%s [session:%s] %-3s %s\n",
		ts, session, event.Direction.String(), event.Category.String())

	switch {
	case event.Request != nil:
		formatRequestDetails(w, event)
	case event.Push != nil:
		formatPushDetails(w, event.Push)
	case event.StateChange != nil:
		formatStateChangeDetails(w, event.StateChange)
	case event.Error != nil:
		formatErrorDetails(w, event.Error)
	}

	fmt.Fprintln(w) // Blank line between events
}

// shortenSessionID returns the first 8 characters of the session ID.
func shortenSessionID(id string) string {
	if len(id) >= 8 {
		return id[:8]
	}
	return id
}

func formatRequestDetails(w io.Writer, event log.Event) {
	req := event.Request
	fmt.Fprintf(w, "  %s %s -> %d\n", req.Method, req.Path, req.Status)
	if event.RemoteAddr != "" {
		fmt.Fprintf(w, "  From: %s\n", event.RemoteAddr)
	}
	if req.Duration > 0 {
		fmt.Fprintf(w, "  Duration: %s\n", formatDuration(req.Duration))
	}
}

func formatPushDetails(w io.Writer, push *log.PushEvent) {
	if push.Failed {
		fmt.Fprintf(w, "  %s -> transport failure\n", push.Path)
		return
	}
	fmt.Fprintf(w, "  %s -> %d\n", push.Path, push.Status)
}

func formatStateChangeDetails(w io.Writer, sc *log.StateChangeEvent) {
	fmt.Fprintf(w, "  %s -> %s\n", sc.OldState, sc.NewState)
	if sc.Reason != "" {
		fmt.Fprintf(w, "  Reason: %s\n", sc.Reason)
	}
}

func formatErrorDetails(w io.Writer, e *log.ErrorEventData) {
	fmt.Fprintf(w, "  Context: %s\n", e.Context)
	fmt.Fprintf(w, "  Error: %s\n", e.Message)
}

// formatDuration renders a duration with millisecond precision.
func formatDuration(d time.Duration) string {
	return d.Round(time.Microsecond).String()
}

// ParseDirectionFlag parses a direction flag value.
func ParseDirectionFlag(s string) (log.Direction, error) {
	switch strings.ToLower(s) {
	case "in":
		return log.DirectionIn, nil
	case "out":
		return log.DirectionOut, nil
	default:
		return 0, fmt.Errorf("invalid direction %q (valid: in, out)", s)
	}
}

// ParseCategoryFlag parses a category flag value.
func ParseCategoryFlag(s string) (log.Category, error) {
	switch strings.ToLower(s) {
	case "request":
		return log.CategoryRequest, nil
	case "push":
		return log.CategoryPush, nil
	case "state":
		return log.CategoryState, nil
	case "error":
		return log.CategoryError, nil
	default:
		return 0, fmt.Errorf("invalid category %q (valid: request, push, state, error)", s)
	}
}
