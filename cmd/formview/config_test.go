package main

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{"ADDR", "TEMPLATES", "CACHE", "LOG_LEVEL", "LOG_FILE", "WATCH"} {
		t.Setenv(envPrefix+name, "")
		os.Unsetenv(envPrefix + name)
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := loadConfig(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff(defaultConfig(), cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadConfig_EnvFileAndProcessEnv(t *testing.T) {
	clearEnv(t)
	envFile := filepath.Join(t.TempDir(), ".env")
	content := "FORMVIEW_ADDR=:9000\nFORMVIEW_WATCH=true\nFORMVIEW_CACHE=/tmp/from-file\n"
	if err := os.WriteFile(envFile, []byte(content), 0o644); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv("FORMVIEW_CACHE", "/tmp/from-process")

	cfg, err := loadConfig(envFile)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := defaultConfig()
	want.Addr = ":9000"
	want.Watch = true
	want.Cache = "/tmp/from-process"
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadConfig_RejectsBadWatch(t *testing.T) {
	clearEnv(t)
	t.Setenv("FORMVIEW_WATCH", "sometimes")

	if _, err := loadConfig(""); err == nil {
		t.Fatalf("expected an error for an invalid watch flag")
	}
}

func TestNewLogger_FansOutToFile(t *testing.T) {
	var stderr bytes.Buffer
	file := filepath.Join(t.TempDir(), "formview.log")

	logger, closeFn, err := newLogger(&stderr, "debug", file)
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	logger.Debug("template render failed", slog.String("template", "contact"))
	if err := closeFn(); err != nil {
		t.Fatalf("close: %v", err)
	}

	if !strings.Contains(stderr.String(), "template=contact") {
		t.Fatalf("expected text record on stderr, got %q", stderr.String())
	}
	data, err := os.ReadFile(file)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), `"template":"contact"`) {
		t.Fatalf("expected JSON record in file, got %q", data)
	}
}

func TestNewLogger_RejectsUnknownLevel(t *testing.T) {
	if _, _, err := newLogger(&bytes.Buffer{}, "loud", ""); err == nil {
		t.Fatalf("expected an error for an unknown level")
	}
}
