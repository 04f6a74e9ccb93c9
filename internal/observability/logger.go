package observability

import (
	"io"
	"log/slog"
	"os"
)

// NewLogger returns the service's JSON logger on stdout. Records logged with a
// context carry trace ids and anything the extra AttrsFuncs add. Debug level
// is only enabled in dev.
func NewLogger(env string, extra ...AttrsFunc) *slog.Logger {
	return newLogger(os.Stdout, env, extra...)
}

func newLogger(w io.Writer, env string, extra ...AttrsFunc) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if env == "dev" {
		opts.Level = slog.LevelDebug
		opts.AddSource = true
	}

	h := NewContextHandler(slog.NewJSONHandler(w, opts), extra...)
	return slog.New(h).With("service", ServiceName, "env", env)
}
