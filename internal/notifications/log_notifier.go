package notifications

import (
	"context"
	"log/slog"
)

// LogNotifier writes notices to a structured logger. Used where there is no UI
// to show them.
type LogNotifier struct {
	log *slog.Logger
}

func NewLogNotifier(log *slog.Logger) *LogNotifier {
	if log == nil {
		log = slog.Default()
	}
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Notify(ctx context.Context, in Notice) error {
	level := slog.LevelInfo
	if in.Kind == KindError {
		level = slog.LevelError
	} else if in.Kind == KindWarning {
		level = slog.LevelWarn
	}

	n.log.Log(ctx, level, "notice", "message", in.Message, "type", string(in.Kind))
	return nil
}
