package observability

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

type LogConfig struct {
	Env     string
	Level   string // debug, info, warn or error; empty picks one from Env
	Service string
	Version string
	Out     io.Writer
}

// NewLogger builds the process logger. Every record is JSON, tagged with the service
// identity, and joined to the request id and active span through TraceHandler.
func NewLogger(cfg LogConfig) (*slog.Logger, error) {
	level, err := logLevel(cfg.Env, cfg.Level)
	if err != nil {
		return nil, err
	}

	out := cfg.Out
	if out == nil {
		out = os.Stdout
	}

	base := slog.NewJSONHandler(out, &slog.HandlerOptions{Level: level})

	log := slog.New(NewTraceHandler(base))
	if cfg.Service != "" {
		log = log.With("service", cfg.Service)
	}
	if cfg.Version != "" {
		log = log.With("version", cfg.Version)
	}

	return log.With("env", cfg.Env), nil
}

func logLevel(env, raw string) (slog.Level, error) {
	if raw == "" {
		if env == "dev" {
			return slog.LevelDebug, nil
		}
		return slog.LevelInfo, nil
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(raw)); err != nil {
		return 0, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	return level, nil
}
