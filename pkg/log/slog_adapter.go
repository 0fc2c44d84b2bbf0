package log

import (
	"context"
	"log/slog"
)

// SlogAdapter writes capture events to an slog.Logger at debug level.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a SlogAdapter. A nil logger uses slog.Default.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogAdapter{logger: logger}
}

// Log writes the event.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("session", event.SessionID),
		slog.String("direction", event.Direction.String()),
		slog.String("layer", event.Layer.String()),
		slog.String("category", event.Category.String()),
	}
	if event.Source != "" {
		attrs = append(attrs, slog.String("source", event.Source))
	}

	switch {
	case event.Frame != nil:
		attrs = append(attrs,
			slog.Int("frame_size", event.Frame.Size),
			slog.Bool("truncated", event.Frame.Truncated),
		)
	case event.RDM != nil:
		attrs = append(attrs,
			slog.String("cc", event.RDM.CommandClass.String()),
			slog.String("pid", event.RDM.PID.String()),
			slog.String("dest", event.RDM.Dest),
			slog.String("src", event.RDM.Src),
			slog.Int("tn", int(event.RDM.TransactionNumber)),
		)
		if event.RDM.Result != nil {
			attrs = append(attrs, slog.String("result", event.RDM.Result.String()))
		}
		if event.RDM.NackReason != nil {
			attrs = append(attrs, slog.String("nack", event.RDM.NackReason.String()))
		}
	case event.Host != nil:
		attrs = append(attrs,
			slog.Int("command", int(event.Host.Command)),
			slog.Int("payload", event.Host.PayloadSize),
		)
		if event.Host.Result != nil {
			attrs = append(attrs, slog.Int("rc", int(*event.Host.Result)))
		}
		if event.Host.Token != nil {
			attrs = append(attrs, slog.Uint64("token", uint64(*event.Host.Token)))
		}
	case event.StateChange != nil:
		attrs = append(attrs,
			slog.String("entity", event.StateChange.Entity.String()),
			slog.String("old_state", event.StateChange.OldState),
			slog.String("new_state", event.StateChange.NewState),
		)
		if event.StateChange.Reason != "" {
			attrs = append(attrs, slog.String("reason", event.StateChange.Reason))
		}
	case event.Error != nil:
		attrs = append(attrs,
			slog.String("error", event.Error.Message),
			slog.String("error_context", event.Error.Context),
		)
	}

	a.logger.LogAttrs(context.Background(), slog.LevelDebug, "capture", attrs...)
}

var _ Logger = (*SlogAdapter)(nil)
