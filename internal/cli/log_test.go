package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/octavate/labelgraph/pkg/labelgraph"
	"github.com/octavate/labelgraph/pkg/observability"
)

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, log.InfoLevel)

	if logger == nil {
		t.Fatal("newLogger() returned nil")
	}

	// Test that it can log
	logger.Info("test message")

	if buf.Len() == 0 {
		t.Error("logger should have written output")
	}
}

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		name    string
		level   log.Level
		logFunc func(*log.Logger)
		wantLog bool
	}{
		{
			name:    "info at info level",
			level:   log.InfoLevel,
			logFunc: func(l *log.Logger) { l.Info("test") },
			wantLog: true,
		},
		{
			name:    "debug at info level",
			level:   log.InfoLevel,
			logFunc: func(l *log.Logger) { l.Debug("test") },
			wantLog: false,
		},
		{
			name:    "debug at debug level",
			level:   log.DebugLevel,
			logFunc: func(l *log.Logger) { l.Debug("test") },
			wantLog: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := newLogger(&buf, tt.level)
			tt.logFunc(logger)

			gotLog := buf.Len() > 0
			if gotLog != tt.wantLog {
				t.Errorf("got log output = %v, want %v", gotLog, tt.wantLog)
			}
		})
	}
}

func TestProgress(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, log.InfoLevel)

	prog := newProgress(logger)
	if prog == nil {
		t.Fatal("newProgress() returned nil")
	}

	// Small delay to ensure measurable duration
	time.Sleep(10 * time.Millisecond)

	prog.done("test completed")

	output := buf.String()
	if output == "" {
		t.Error("progress.done() should produce output")
	}

	// Should contain the message
	if !bytes.Contains(buf.Bytes(), []byte("test completed")) {
		t.Error("progress.done() output should contain message")
	}
}

func TestLogMalformed(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, log.DebugLevel)

	logMalformed(logger, []labelgraph.MalformedEntry{
		{Reason: labelgraph.ReasonMissingName, Entry: json.RawMessage(`{}`)},
		{Reason: labelgraph.ReasonMissingSongName, Artist: "Ana", Entry: json.RawMessage(`{}`)},
	})

	out := buf.String()
	if !strings.Contains(out, "skipped malformed entries") || !strings.Contains(out, "count=2") {
		t.Errorf("missing summary line:\n%s", out)
	}
	if strings.Count(out, "malformed n=") != 2 {
		t.Errorf("want one debug line per entry:\n%s", out)
	}
	if !strings.Contains(out, "artist=Ana") {
		t.Errorf("artist missing from entry line:\n%s", out)
	}

	buf.Reset()
	logMalformed(logger, nil)
	if buf.Len() != 0 {
		t.Errorf("no entries should log nothing, got %q", buf.String())
	}
}

func TestLogHooks(t *testing.T) {
	var buf bytes.Buffer
	c := New(&buf, log.InfoLevel)
	c.SetLogLevel(log.DebugLevel)
	defer observability.Reset()

	ctx := context.Background()
	observability.Pipeline().OnConvertComplete(ctx, observability.ConvertStats{Nodes: 3, Links: 2}, time.Millisecond, nil)
	observability.Cache().OnCacheHit(ctx, "conversion")
	observability.Publish().OnPublishStart(ctx, "neo4j")

	out := buf.String()
	for _, want := range []string{"convert done", "nodes=3", "cache hit", "kind=conversion", "publish start", "sink=neo4j"} {
		if !strings.Contains(out, want) {
			t.Errorf("hook output missing %q:\n%s", want, out)
		}
	}
}
