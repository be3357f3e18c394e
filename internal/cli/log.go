package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger returns a charm logger writing to w at level, with
// centisecond timestamps.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress times one command phase.
type progress struct {
	logger *log.Logger
	op     string
	start  time.Time
}

func newProgress(l *log.Logger, op string) *progress {
	return &progress{logger: l, op: op, start: time.Now()}
}

// done logs msg at info level with the phase name and the elapsed time
// rounded to the millisecond, e.g.
//
//	14:32:01.45 INFO Laid out rows op=layout rows=1000 elapsed=12ms
func (p *progress) done(msg string, keyvals ...any) {
	keyvals = append(keyvals, "op", p.op, "elapsed", time.Since(p.start).Round(time.Millisecond))
	p.logger.Info(msg, keyvals...)
}

type loggerKey struct{}

// withLogger attaches l to ctx for commands and HTTP handlers.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, loggerKey{}, l)
}

// loggerFromContext returns the logger attached by withLogger, falling
// back to log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(loggerKey{}).(*log.Logger); ok && l != nil {
			return l
		}
	}
	return log.Default()
}
