package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const envPrefix = "FORMVIEW_"

type config struct {
	Addr      string
	Templates string
	Cache     string
	LogLevel  string
	LogFile   string
	Watch     bool
}

func defaultConfig() config {
	return config{
		Addr:      ":8080",
		Templates: "templates",
		Cache:     "templates_c",
		LogLevel:  "info",
	}
}

// loadConfig reads envFile (a missing file is fine) and then FORMVIEW_*
// variables over the defaults. Variables already set in the process win over
// the file.
func loadConfig(envFile string) (config, error) {
	cfg := defaultConfig()
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return cfg, fmt.Errorf("config: load %s: %w", envFile, err)
		}
	}

	if v, ok := lookup("ADDR"); ok {
		cfg.Addr = v
	}
	if v, ok := lookup("TEMPLATES"); ok {
		cfg.Templates = v
	}
	if v, ok := lookup("CACHE"); ok {
		cfg.Cache = v
	}
	if v, ok := lookup("LOG_LEVEL"); ok {
		cfg.LogLevel = v
	}
	if v, ok := lookup("LOG_FILE"); ok {
		cfg.LogFile = v
	}
	if v, ok := lookup("WATCH"); ok {
		watch, err := strconv.ParseBool(v)
		if err != nil {
			return cfg, fmt.Errorf("config: %sWATCH: %w", envPrefix, err)
		}
		cfg.Watch = watch
	}
	return cfg, nil
}

func lookup(name string) (string, bool) {
	v, ok := os.LookupEnv(envPrefix + name)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}
