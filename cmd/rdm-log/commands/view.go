package commands

import (
	"encoding/hex"
	"fmt"
	"io"

	"github.com/rdm-protocol/rdm-go/pkg/host"
	"github.com/rdm-protocol/rdm-go/pkg/log"
)

// RunView prints the matching events of path in human-readable form.
func RunView(path string, opts FilterOptions, w io.Writer) error {
	filter, err := opts.Build()
	if err != nil {
		return err
	}
	reader, err := log.NewFilteredReader(path, filter)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	return forEach(reader, func(event log.Event) error {
		formatEvent(w, event)
		return nil
	})
}

// eventType returns a short label for the populated payload.
func eventType(event log.Event) string {
	switch {
	case event.RDM != nil:
		return "RDM"
	case event.Host != nil:
		return "Host"
	case event.Frame != nil:
		return "Frame"
	case event.StateChange != nil:
		return "State"
	case event.Error != nil:
		return "Error"
	default:
		return "Unknown"
	}
}

// formatEvent writes one event followed by a blank line.
func formatEvent(w io.Writer, event log.Event) {
	ts := event.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z")
	fmt.Fprintf(w, "%s [%s] %-3s %s %s", ts, shortenID(event.SessionID), event.Direction, event.Layer, eventType(event))
	if event.Source != "" {
		fmt.Fprintf(w, " (%s)", event.Source)
	}
	fmt.Fprintln(w)

	switch {
	case event.RDM != nil:
		formatRDMDetails(w, event.RDM)
	case event.Host != nil:
		formatHostDetails(w, event.Host)
	case event.Frame != nil:
		formatFrameDetails(w, event.Frame)
	case event.StateChange != nil:
		sc := event.StateChange
		fmt.Fprintf(w, "  %s: %q -> %q", sc.Entity, sc.OldState, sc.NewState)
		if sc.Reason != "" {
			fmt.Fprintf(w, " (%s)", sc.Reason)
		}
		fmt.Fprintln(w)
	case event.Error != nil:
		fmt.Fprintf(w, "  %s error: %s\n", event.Error.Layer, event.Error.Message)
		if event.Error.Context != "" {
			fmt.Fprintf(w, "  Context: %s\n", event.Error.Context)
		}
	}
	fmt.Fprintln(w)
}

// shortenID returns the first 8 characters of a session ID.
func shortenID(id string) string {
	if len(id) >= 8 {
		return id[:8]
	}
	return id
}

func formatRDMDetails(w io.Writer, ev *log.RDMEvent) {
	fmt.Fprintf(w, "  %s %s  %s -> %s  tn=%d", ev.CommandClass, ev.PID, ev.Src, ev.Dest, ev.TransactionNumber)
	if ev.SubDevice != 0 {
		fmt.Fprintf(w, " sub=%d", ev.SubDevice)
	}
	fmt.Fprintf(w, " pdl=%d\n", ev.ParamDataLength)
	if ev.Result != nil {
		fmt.Fprintf(w, "  Result: %s", *ev.Result)
		if ev.NackReason != nil {
			fmt.Fprintf(w, " %s", *ev.NackReason)
		}
		fmt.Fprintln(w)
	}
}

func formatHostDetails(w io.Writer, ev *log.HostEvent) {
	fmt.Fprintf(w, "  %s  %d bytes", host.Command(ev.Command), ev.PayloadSize)
	if ev.Result != nil {
		fmt.Fprintf(w, "  %s", host.ResultCode(*ev.Result))
	}
	if ev.Token != nil {
		fmt.Fprintf(w, "  token=%d", *ev.Token)
	}
	fmt.Fprintln(w)
}

func formatFrameDetails(w io.Writer, frame *log.FrameEvent) {
	fmt.Fprintf(w, "  Size: %d bytes\n", frame.Size)
	if len(frame.Data) > 0 {
		fmt.Fprintf(w, "  Data: %s", hex.EncodeToString(frame.Data))
		if frame.Truncated {
			fmt.Fprint(w, " (truncated)")
		}
		fmt.Fprintln(w)
	}
}
