package main

import (
	"io"
	"log/slog"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/udisondev/dolgo/internal/config"
)

// newLogHandler returns a text handler writing to stdout and, when
// cfg.File is set, to a size-rotated log file.
func newLogHandler(cfg config.LogConfig, level slog.Level) (slog.Handler, func()) {
	var (
		w       io.Writer = os.Stdout
		closeFn           = func() {}
	)
	if cfg.File != "" {
		rotator := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   cfg.Compress,
		}
		w = io.MultiWriter(os.Stdout, rotator)
		closeFn = func() { _ = rotator.Close() }
	}
	return slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}), closeFn
}
