package commands

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/rdm-protocol/rdm-go/pkg/host"
	"github.com/rdm-protocol/rdm-go/pkg/log"
)

// RunExport writes the matching events of path as JSON lines or CSV to
// output, or to w when output is empty.
func RunExport(path, format, output string, opts FilterOptions, w io.Writer) error {
	filter, err := opts.Build()
	if err != nil {
		return err
	}
	reader, err := log.NewFilteredReader(path, filter)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

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
		encoder := json.NewEncoder(w)
		return forEach(reader, func(event log.Event) error {
			if err := encoder.Encode(event); err != nil {
				return fmt.Errorf("failed to encode event: %w", err)
			}
			return nil
		})
	case "csv":
		return exportCSV(reader, w)
	default:
		return fmt.Errorf("unknown format: %s (supported: jsonl, csv)", format)
	}
}

var csvHeader = []string{"timestamp", "session_id", "direction", "layer", "category", "source", "type", "detail", "result"}

func exportCSV(reader *log.Reader, w io.Writer) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	return forEach(reader, func(event log.Event) error {
		detail, result := csvDetail(event)
		row := []string{
			event.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z"),
			event.SessionID,
			event.Direction.String(),
			event.Layer.String(),
			event.Category.String(),
			event.Source,
			eventType(event),
			detail,
			result,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
		return nil
	})
}

func csvDetail(event log.Event) (detail, result string) {
	switch {
	case event.RDM != nil:
		detail = event.RDM.CommandClass.String() + " " + event.RDM.PID.String()
		if event.RDM.Result != nil {
			result = event.RDM.Result.String()
			if event.RDM.NackReason != nil {
				result += " " + event.RDM.NackReason.String()
			}
		}
	case event.Host != nil:
		detail = host.Command(event.Host.Command).String()
		if event.Host.Result != nil {
			result = host.ResultCode(*event.Host.Result).String()
		}
	case event.Frame != nil:
		detail = strconv.Itoa(event.Frame.Size)
	case event.StateChange != nil:
		detail = event.StateChange.Entity.String()
		result = event.StateChange.NewState
	case event.Error != nil:
		detail = event.Error.Context
		result = event.Error.Message
	}
	return detail, result
}
