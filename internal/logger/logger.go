package logger

import (
	"io"
	"os"

	"github.com/Domenick1991/flightbooking/config"
	"github.com/hashicorp/go-hclog"
)

// New builds the root logger for a binary. Components derive named children from it.
func New(name string, cfg config.LogConfig) hclog.Logger {
	return newWithOutput(name, cfg, os.Stderr)
}

func newWithOutput(name string, cfg config.LogConfig, out io.Writer) hclog.Logger {
	level := hclog.LevelFromString(cfg.Level)
	if level == hclog.NoLevel {
		level = hclog.Info
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:            name,
		Level:           level,
		Output:          out,
		JSONFormat:      cfg.JSON,
		IncludeLocation: level <= hclog.Debug,
	})
}
