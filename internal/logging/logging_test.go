package logging

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
)

func TestContextRoundTrip(t *testing.T) {
	t.Parallel()

	logger := slog.New(slog.DiscardHandler)
	ctx := ContextWithLogger(context.Background(), logger)
	if got := FromContext(ctx); got != logger {
		t.Fatal("logger not carried through the context")
	}
	if got := FromContext(context.Background()); got != nil {
		t.Fatalf("expected nil for an unadorned context, got %v", got)
	}
	if got := FromContext(nil); got != nil {
		t.Fatalf("expected nil for a nil context, got %v", got)
	}
}

func TestNewLoggerRespectsLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewLogger(&buf, slog.LevelWarn)
	logger.Info("suppressed")
	if buf.Len() != 0 {
		t.Fatalf("info record leaked below the warn level: %q", buf.String())
	}
	logger.Warn("emitted")
	if buf.Len() == 0 {
		t.Fatal("warn record not written")
	}
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		value   string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"info", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
		{" WARN ", slog.LevelWarn, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"loud", 0, true},
	} {
		tc := tc
		t.Run(tc.value, func(t *testing.T) {
			t.Parallel()
			got, err := ParseLevel(tc.value)
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected an error")
				}
				return
			}
			if err != nil || got != tc.want {
				t.Fatalf("ParseLevel = %v, %v, want %v", got, err, tc.want)
			}
		})
	}
}
