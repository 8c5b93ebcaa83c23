package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		name  string
		level log.Level
		emit  func(*log.Logger)
		want  bool
	}{
		{"info at info", log.InfoLevel, func(l *log.Logger) { l.Info("x") }, true},
		{"debug at info", log.InfoLevel, func(l *log.Logger) { l.Debug("x") }, false},
		{"debug at debug", log.DebugLevel, func(l *log.Logger) { l.Debug("x") }, true},
		{"warn at error", log.ErrorLevel, func(l *log.Logger) { l.Warn("x") }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.emit(newLogger(&buf, tt.level))
			if got := buf.Len() > 0; got != tt.want {
				t.Errorf("logged = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStopwatch(t *testing.T) {
	var buf bytes.Buffer
	sw := startStopwatch(newLogger(&buf, log.InfoLevel))
	sw.done("materialized", "answers", 2)

	out := buf.String()
	for _, want := range []string{"materialized", "answers=2", "took="} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %q", out, want)
		}
	}
}

func TestLoggerFromContext(t *testing.T) {
	if loggerFromContext(context.Background()) != log.Default() {
		t.Error("loggerFromContext() without a logger should return log.Default()")
	}

	var buf bytes.Buffer
	l := newLogger(&buf, log.InfoLevel)
	ctx := withLogger(context.Background(), l)
	if got := loggerFromContext(ctx); got != l {
		t.Errorf("loggerFromContext() = %p, want %p", got, l)
	}
}
