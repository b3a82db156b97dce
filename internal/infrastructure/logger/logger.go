package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

func New(app, env string) *slog.Logger {
	return NewWithWriter(os.Stdout, app, env)
}

// NewWithWriter - то же, что New, но с заданным выводом. В dev пишем debug.
func NewWithWriter(w io.Writer, app, env string) *slog.Logger {
	level := slog.LevelInfo
	if strings.EqualFold(env, "dev") {
		level = slog.LevelDebug
	}

	h := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	})

	return slog.New(h).With(
		slog.String("app", app),
		slog.String("env", env),
	)
}
