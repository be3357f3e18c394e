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
		{"info at info", log.InfoLevel, func(l *log.Logger) { l.Info("fill") }, true},
		{"debug at info", log.InfoLevel, func(l *log.Logger) { l.Debug("fill") }, false},
		{"debug at debug", log.DebugLevel, func(l *log.Logger) { l.Debug("fill") }, true},
		{"warn at error", log.ErrorLevel, func(l *log.Logger) { l.Warn("fill") }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.emit(newLogger(&buf, tt.level))
			if got := buf.Len() > 0; got != tt.want {
				t.Errorf("wrote output = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestProgressDone(t *testing.T) {
	tests := []struct {
		name    string
		op      string
		msg     string
		keyvals []any
		want    []string
	}{
		{
			name:    "layout",
			op:      "layout",
			msg:     "Laid out rows",
			keyvals: []any{"rows", 1000},
			want:    []string{"Laid out rows", "op=layout", "rows=1000", "elapsed="},
		},
		{
			name: "no fields",
			op:   "tree",
			msg:  "Exported rows",
			want: []string{"Exported rows", "op=tree", "elapsed="},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			newProgress(newLogger(&buf, log.InfoLevel), tt.op).done(tt.msg, tt.keyvals...)
			out := buf.String()
			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("output %q missing %q", out, w)
				}
			}
		})
	}
}

func TestLoggerFromContext(t *testing.T) {
	var buf bytes.Buffer
	custom := newLogger(&buf, log.InfoLevel)

	tests := []struct {
		name string
		ctx  context.Context
		want *log.Logger
	}{
		{"attached", withLogger(context.Background(), custom), custom},
		{"missing", context.Background(), log.Default()},
		{"nil logger", withLogger(context.Background(), nil), log.Default()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := loggerFromContext(tt.ctx); got != tt.want {
				t.Errorf("loggerFromContext() = %p, want %p", got, tt.want)
			}
		})
	}
}

func TestWithLoggerNilContext(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger(&buf, log.InfoLevel)
	//nolint:staticcheck
	ctx := withLogger(nil, l)
	loggerFromContext(ctx).Info("attached")
	if !strings.Contains(buf.String(), "attached") {
		t.Errorf("logger from nil-context attach did not write, got %q", buf.String())
	}
}
