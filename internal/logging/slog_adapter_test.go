// Lectern - Congregation Meeting Scheduling and Administration
// Copyright 2026 Lectern Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lectern-app/lectern

package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func newBufferedSlogLogger(buf *bytes.Buffer) *slog.Logger {
	handler := &SlogHandler{logger: zerolog.New(buf)}
	return slog.New(handler)
}

func TestSlogHandler_Levels(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferedSlogLogger(&buf)

	logger.Debug("debug msg")
	logger.Info("info msg")
	logger.Warn("warn msg")
	logger.Error("error msg")

	out := buf.String()
	for _, want := range []string{`"level":"debug"`, `"level":"info"`, `"level":"warn"`, `"level":"error"`} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %s: %s", want, out)
		}
	}
}

func TestSlogHandler_Attrs(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferedSlogLogger(&buf)

	logger.Info("with attrs", slog.String("service", "authz"), slog.Int("count", 3))

	out := buf.String()
	if !strings.Contains(out, `"service":"authz"`) {
		t.Errorf("output missing string attr: %s", out)
	}
	if !strings.Contains(out, `"count":3`) {
		t.Errorf("output missing int attr: %s", out)
	}
}

func TestSlogHandler_WithGroup(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferedSlogLogger(&buf).WithGroup("guard")

	logger.Info("grouped", slog.String("outcome", "denied"))

	if !strings.Contains(buf.String(), `"guard.outcome":"denied"`) {
		t.Errorf("output missing group-prefixed attr: %s", buf.String())
	}
}

func TestSlogHandler_Enabled(t *testing.T) {
	handler := &SlogHandler{logger: zerolog.New(nil).Level(zerolog.WarnLevel)}

	if handler.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("debug should be disabled at warn level")
	}
	if !handler.Enabled(context.Background(), slog.LevelError) {
		t.Error("error should be enabled at warn level")
	}
}
