package commands

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/sdn-protocol/dataplane-go/pkg/log"
)

// RunExport exports the log file to the specified format.
func RunExport(path, format, output string) error {
	reader, err := log.NewReader(path)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	// Determine output writer
	var w io.Writer = os.Stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	switch format {
	case "jsonl":
		return exportJSONL(reader, w)
	case "csv":
		return exportCSV(reader, w)
	default:
		return fmt.Errorf("unknown format: %s (supported: jsonl, csv)", format)
	}
}

func exportJSONL(reader *log.Reader, w io.Writer) error {
	encoder := json.NewEncoder(w)
	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		if err := encoder.Encode(event); err != nil {
			return fmt.Errorf("failed to encode event: %w", err)
		}
	}
	return nil
}

func exportCSV(reader *log.Reader, w io.Writer) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := []string{"timestamp", "session", "device", "direction", "category", "detail", "status"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		if err := cw.Write(csvRow(event)); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	return cw.Error()
}

func csvRow(event log.Event) []string {
	var detail, status string
	switch {
	case event.Request != nil:
		detail = event.Request.Method + " " + event.Request.Path
		status = strconv.Itoa(event.Request.Status)
	case event.Push != nil:
		detail = event.Push.Path
		if event.Push.Failed {
			status = "failed"
		} else {
			status = strconv.Itoa(event.Push.Status)
		}
	case event.StateChange != nil:
		detail = event.StateChange.OldState + " -> " + event.StateChange.NewState
		status = event.StateChange.Reason
	case event.Error != nil:
		detail = event.Error.Context
		status = event.Error.Message
	}

	return []string{
		event.Timestamp.UTC().Format(time.RFC3339Nano),
		event.SessionID,
		event.DeviceID,
		event.Direction.String(),
		event.Category.String(),
		detail,
		status,
	}
}
