package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"
)

func TestSpinnerBasic(t *testing.T) {
	var buf bytes.Buffer
	s := newSpinnerWithContext(context.Background(), &buf, "Testing...")
	s.Start()
	time.Sleep(100 * time.Millisecond)
	s.Stop()

	// Not a terminal: no frames are drawn.
	if buf.Len() != 0 {
		t.Errorf("spinner wrote %q to a non-terminal writer", buf.String())
	}
}

func TestSpinnerWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	s := newSpinnerWithContext(ctx, &bytes.Buffer{}, "Testing with context...")
	s.Start()
	cancel()
	time.Sleep(50 * time.Millisecond)

	if !s.Cancelled() {
		t.Error("Spinner should be cancelled after context cancellation")
	}
	s.Stop()
}

func TestSpinnerWithTimeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	s := newSpinnerWithContext(ctx, &bytes.Buffer{}, "Testing with timeout...")
	s.Start()
	time.Sleep(60 * time.Millisecond)

	if !s.Cancelled() {
		t.Error("Spinner should be cancelled after context timeout")
	}
}

func TestSpinnerStopIsIdempotent(t *testing.T) {
	s := newSpinnerWithContext(context.Background(), &bytes.Buffer{}, "Testing idempotent stop...")
	s.Start()
	s.Stop()
	s.Stop()
	s.Stop()
}

func TestSpinnerStopWithoutStart(t *testing.T) {
	s := newSpinnerWithContext(context.Background(), &bytes.Buffer{}, "never started")
	s.Stop()
}

func TestSpinnerStopMessages(t *testing.T) {
	tests := []struct {
		name string
		stop func(*Spinner)
		want string
	}{
		{"success", func(s *Spinner) { s.StopWithSuccess("Done!") }, "Done!"},
		{"error", func(s *Spinner) { s.StopWithError("Failed!") }, "Failed!"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			s := newSpinnerWithContext(context.Background(), &buf, "working")
			s.Start()
			tt.stop(s)
			if !strings.Contains(buf.String(), tt.want) {
				t.Errorf("output %q does not contain %q", buf.String(), tt.want)
			}
		})
	}
}
