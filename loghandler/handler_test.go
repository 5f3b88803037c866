package loghandler

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestHandleRendersTagAsPrefix(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewCompactHandler(&buf, slog.LevelInfo))

	logger.Info("room created", "tag", "room", "code", "ABC123")

	line := buf.String()
	if !strings.Contains(line, "[room] room created") {
		t.Errorf("line = %q, want [room] prefix before message", line)
	}
	if !strings.Contains(line, "code=ABC123") {
		t.Errorf("line = %q, want code attr", line)
	}
	if strings.Contains(line, "tag=") {
		t.Errorf("line = %q, tag must not appear as an attr", line)
	}
	if strings.Contains(line, "INFO") {
		t.Errorf("line = %q, level only rendered for warnings", line)
	}
}

func TestHandleShowsLevelForWarnings(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewCompactHandler(&buf, slog.LevelInfo))

	logger.Warn("upgrade error")
	if !strings.Contains(buf.String(), "WARN") {
		t.Errorf("line = %q, want WARN level", buf.String())
	}
}

func TestEnabledFiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewCompactHandler(&buf, slog.LevelInfo))

	logger.Debug("noise")
	if buf.Len() != 0 {
		t.Errorf("debug record written: %q", buf.String())
	}
}

func TestWithAttrsCarriesBaseAttrs(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(NewCompactHandler(&buf, slog.LevelInfo))
	logger := base.With("tag", "hub", "total", 3)

	logger.Info("client connected")

	line := buf.String()
	if !strings.Contains(line, "[hub] client connected") {
		t.Errorf("line = %q, want base tag rendered as prefix", line)
	}
	if !strings.Contains(line, "total=3") {
		t.Errorf("line = %q, want base attr rendered", line)
	}
}
