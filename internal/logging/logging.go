// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package logging builds the process logger.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// ParseLevel maps debug, info, warn or error (any case) to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("parsing log level %q: %w", s, err)
	}
	return level, nil
}

// New returns a text logger writing to w at the given level. An
// unrecognised level falls back to info.
func New(level string, w io.Writer) *slog.Logger {
	lvl, err := ParseLevel(level)
	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
	if err != nil {
		logger.Warn("unknown log level, using info", "level", level)
	}
	return logger
}
