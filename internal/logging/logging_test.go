package logging

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNewLogger_FileAndStdout(t *testing.T) {
	var stdout bytes.Buffer
	path := filepath.Join(t.TempDir(), "relay.log")

	logger, closer := newLogger(&stdout, path, "info")
	logger.Debug("hidden")
	logger.Info("relayed", "model", "m")
	if err := closer.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	for name, out := range map[string]string{"stdout": stdout.String(), "file": string(data)} {
		if !strings.Contains(out, `"msg":"relayed"`) {
			t.Errorf("%s missing info line: %s", name, out)
		}
		if strings.Contains(out, "hidden") {
			t.Errorf("%s contains debug line below level: %s", name, out)
		}
	}
}
