package help

import (
	"log/slog"
	"os"
)

func Logger() *slog.Logger {
	// Level can come from config/env; Info is a good production default.
	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}

	h := slog.NewJSONHandler(os.Stdout, opts)

	log := slog.New(h).With(
		slog.String("service", "emberCache"),
		slog.String("env", "test"),
	)

	slog.SetDefault(log)

	return log
}
