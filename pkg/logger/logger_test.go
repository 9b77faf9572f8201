package logger

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestHandlerFormat(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewHandler(&buf, LevelInfo))
	log.Info("image loaded", "strategy", "direct", "bytes", 512)

	line := strings.TrimRight(buf.String(), "\n")
	if !strings.Contains(line, " [INFO] image loaded | strategy=direct, bytes=512") {
		t.Errorf("line = %q", line)
	}
	if ts := strings.Split(line, " [")[0]; !strings.HasSuffix(ts, "Z") || len(ts) != len("2006-01-02T15:04:05.000Z") {
		t.Errorf("timestamp = %q", ts)
	}
}

func TestHandlerNoAttrs(t *testing.T) {
	var buf bytes.Buffer
	slog.New(NewHandler(&buf, LevelInfo)).Info("ready")
	if strings.Contains(buf.String(), "|") {
		t.Errorf("unexpected separator in %q", buf.String())
	}
}

func TestHandlerLevels(t *testing.T) {
	tests := []struct {
		min     slog.Level
		log     slog.Level
		want    string
		written bool
	}{
		{LevelTrace, LevelTrace, "[TRACE]", true},
		{LevelInfo, LevelTrace, "", false},
		{LevelInfo, LevelDebug, "", false},
		{LevelInfo, LevelWarn, "[WARN]", true},
		{LevelError, LevelFail, "[FAIL]", true},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		l := slog.New(NewHandler(&buf, tt.min))
		l.Log(t.Context(), tt.log, "msg")
		if got := buf.Len() > 0; got != tt.written {
			t.Errorf("min %v log %v: written = %v", tt.min, tt.log, got)
		}
		if tt.written && !strings.Contains(buf.String(), tt.want) {
			t.Errorf("min %v log %v: %q lacks %s", tt.min, tt.log, buf.String(), tt.want)
		}
	}
}

func TestHandlerGroupsAndAttrs(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewHandler(&buf, LevelInfo)).With("component", "export").WithGroup("req")
	log.Info("done", "mode", "post", slog.Group("size", "w", 1080, "h", 1350))

	want := "| component=export, req.mode=post, req.size.w=1080, req.size.h=1350"
	if !strings.Contains(buf.String(), want) {
		t.Errorf("%q lacks %q", buf.String(), want)
	}
}

func TestHandlerQuotesAmbiguousStrings(t *testing.T) {
	var buf bytes.Buffer
	slog.New(NewHandler(&buf, LevelInfo)).Info("x", "error", "status 502, retrying", "empty", "")
	if !strings.Contains(buf.String(), `error="status 502, retrying", empty=""`) {
		t.Errorf("line = %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]slog.Level{
		"trace": LevelTrace, "DEBUG": LevelDebug, "info": LevelInfo,
		"Warn": LevelWarn, "error": LevelError, "fail": LevelFail, "bogus": LevelInfo,
	} {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNewFileLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "poststencil.log")
	log, closer := New(Options{Level: "trace", File: path, MaxSizeMB: 1})
	Trace(log, "fetch", "url", "https://example.test/a.jpg")
	Fail(log, "fatal")
	if err := closer.Close(); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 || !strings.Contains(lines[0], "[TRACE] fetch") || !strings.Contains(lines[1], "[FAIL] fatal") {
		t.Errorf("log file:\n%s", data)
	}
}
