package logging

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func TestSlogLevelGating(t *testing.T) {
	tests := []struct {
		level   string
		debugOn bool
		infoOn  bool
	}{
		{"DEBUG", true, true},
		{"INFO", false, true},
		{"ERROR", false, false},
		{"bogus", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			logger, err := New(Config{Level: tt.level})
			if err != nil {
				t.Fatalf("failed to create logger: %v", err)
			}
			defer logger.Close()

			s := logger.Slog()
			if s == nil {
				t.Fatal("expected a structured logger")
			}
			ctx := context.Background()
			if got := s.Enabled(ctx, slog.LevelDebug); got != tt.debugOn {
				t.Errorf("debug enabled = %v, want %v", got, tt.debugOn)
			}
			if got := s.Enabled(ctx, slog.LevelInfo); got != tt.infoOn {
				t.Errorf("info enabled = %v, want %v", got, tt.infoOn)
			}
		})
	}
}

func TestFileOutput(t *testing.T) {
	dir := t.TempDir()
	logger, err := New(Config{Level: "INFO", Dir: dir, Filename: "client.log"})
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}

	logger.Info("[session] 日志落盘检查")
	if err := logger.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "client.log"))
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("expected log file output")
	}
}

func TestCloseWithoutFile(t *testing.T) {
	logger, err := New(Config{Level: "INFO"})
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
}
