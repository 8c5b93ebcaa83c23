package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger returns the CLI logger: timestamps with centiseconds, messages
// below level dropped.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// stopwatch logs one info line when a step finishes, with the time it took.
type stopwatch struct {
	logger *log.Logger
	start  time.Time
}

func startStopwatch(l *log.Logger) stopwatch {
	return stopwatch{logger: l, start: time.Now()}
}

// done logs msg with keyvals and a "took" field rounded to milliseconds.
func (s stopwatch) done(msg string, keyvals ...any) {
	keyvals = append(keyvals, "took", time.Since(s.start).Round(time.Millisecond))
	s.logger.Info(msg, keyvals...)
}

type loggerKey struct{}

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// loggerFromContext returns the logger set by the root command, or the
// charm default logger outside a command.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
