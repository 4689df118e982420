package observability

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLevelFor(t *testing.T) {
	tests := []struct {
		env, level string
		want       zapcore.Level
	}{
		{"dev", "", zap.DebugLevel},
		{"development", "", zap.DebugLevel},
		{"production", "", zap.InfoLevel},
		{"", "warn", zap.WarnLevel},
		{"dev", "ERROR", zap.ErrorLevel},
		{"production", " debug ", zap.DebugLevel},
		{"", "bogus", zap.InfoLevel},
	}
	for _, tt := range tests {
		if got := LevelFor(tt.env, tt.level); got != tt.want {
			t.Errorf("LevelFor(%q, %q) = %v, want %v", tt.env, tt.level, got, tt.want)
		}
	}
}

func TestNewLoggerUsesOptions(t *testing.T) {
	logger, err := NewLogger(LogOptions{Service: "adslots-test", Environment: "production", Level: "WARN", OutputPaths: []string{"stderr"}})
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	if !logger.Core().Enabled(zap.WarnLevel) || logger.Core().Enabled(zap.InfoLevel) {
		t.Fatal("expected warn level")
	}
	if zap.L() != logger {
		t.Fatal("logger should be installed globally")
	}
}

func TestLogSamplerBounds(t *testing.T) {
	always := NewLogSampler(1)
	never := NewLogSampler(0)
	for i := 0; i < 20; i++ {
		if !always.Sample() {
			t.Fatal("rate 1 must always sample")
		}
		if never.Sample() {
			t.Fatal("rate 0 must never sample")
		}
	}
	if NewLogSampler(7).Rate() != 1 || NewLogSampler(-1).Rate() != 0 {
		t.Fatal("rates should be clamped to [0, 1]")
	}

	var nilSampler *LogSampler
	if !nilSampler.Sample() {
		t.Fatal("nil sampler logs everything")
	}
}

func TestLogSamplerFlushReportsWindow(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger := zap.New(core)

	s := NewLogSampler(1)
	s.Flush(logger)
	if logs.Len() != 0 {
		t.Fatal("idle window should not log")
	}

	for i := 0; i < 4; i++ {
		s.Sample()
	}
	s.Flush(logger)
	entries := logs.TakeAll()
	if len(entries) != 1 {
		t.Fatalf("expected one stats entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["total_logs"] != int64(4) || fields["sampled_logs"] != int64(4) {
		t.Fatalf("unexpected stats %v", fields)
	}

	s.Flush(logger)
	if logs.Len() != 0 {
		t.Fatal("counters should reset after a flush")
	}
}
