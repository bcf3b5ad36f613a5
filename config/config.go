// Copyright (c) 2024 The BitFS developers
// Use of this source code is governed by the Open BSV License v5
// that can be found in the LICENSE file.

// Package config loads and saves the loanshare configuration.
//
// The configuration file is a flat list of "key = value" lines. Blank lines
// and lines starting with '#' are ignored, unknown keys are skipped, and
// unset keys keep their defaults. LoadFromEnv overlays LOANSHARE_*
// environment variables on top.
package config

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix is the prefix of environment variables read by LoadFromEnv.
const EnvPrefix = "LOANSHARE"

// Config holds the loanshare settings.
type Config struct {
	DataDir           string `envconfig:"DATA_DIR"`
	Network           string `envconfig:"NETWORK"`
	LogLevel          string `envconfig:"LOG_LEVEL"`
	LogFile           string `envconfig:"LOG_FILE"`
	SalesOpenOnCreate bool   `envconfig:"SALES_OPEN_ON_CREATE"`
}

// Secrets holds settings read only from the environment. They are never
// written to the configuration file.
type Secrets struct {
	Password string `envconfig:"PASSWORD"`
}

// DefaultDataDir returns ~/.loanshare, or .loanshare in the working
// directory when the home directory is unknown.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".loanshare"
	}
	return filepath.Join(home, ".loanshare")
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		DataDir:           DefaultDataDir(),
		Network:           "mainnet",
		LogLevel:          "info",
		SalesOpenOnCreate: true,
	}
}

// ConfigPath returns the configuration file path inside dataDir.
func ConfigPath(dataDir string) string {
	return filepath.Join(filepath.Clean(dataDir), "config")
}

// DBPath returns the ledger database path inside the data directory.
func (c Config) DBPath() string {
	return filepath.Join(c.DataDir, "ledger.db")
}

// LoadConfig reads the configuration file at path over DefaultConfig.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return cfg, fmt.Errorf("config: open %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, err := parseKeyValue(line)
		if err != nil {
			return cfg, fmt.Errorf("%w: line %d: %q", ErrInvalidConfigLine, lineNo, line)
		}
		if err := cfg.set(key, value); err != nil {
			return cfg, fmt.Errorf("%w: line %d: %w", ErrInvalidConfigLine, lineNo, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	return cfg, nil
}

// parseKeyValue splits a line on its first '='.
func parseKeyValue(line string) (string, string, error) {
	key, value, ok := strings.Cut(line, "=")
	if !ok {
		return "", "", ErrInvalidConfigLine
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return "", "", ErrInvalidConfigLine
	}
	return strings.ToLower(key), strings.TrimSpace(value), nil
}

func (c *Config) set(key, value string) error {
	switch key {
	case "datadir":
		c.DataDir = value
	case "network":
		c.Network = value
	case "loglevel":
		c.LogLevel = value
	case "logfile":
		c.LogFile = value
	case "salesopen":
		open, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("salesopen: %w", err)
		}
		c.SalesOpenOnCreate = open
	}
	return nil
}

// SaveConfig writes cfg to path, creating the parent directory.
func SaveConfig(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("config: create directory: %w", err)
	}

	var b strings.Builder
	b.WriteString("# Loanshare Configuration\n")
	fmt.Fprintf(&b, "datadir = %s\n", cfg.DataDir)
	fmt.Fprintf(&b, "network = %s\n", cfg.Network)
	fmt.Fprintf(&b, "loglevel = %s\n", cfg.LogLevel)
	fmt.Fprintf(&b, "logfile = %s\n", cfg.LogFile)
	fmt.Fprintf(&b, "salesopen = %t\n", cfg.SalesOpenOnCreate)

	if err := os.WriteFile(path, []byte(b.String()), 0600); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}

// LoadFromEnv overlays LOANSHARE_* environment variables on cfg.
func LoadFromEnv(cfg Config) (Config, error) {
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return cfg, fmt.Errorf("config: process environment: %w", err)
	}
	return cfg, nil
}

// LoadSecrets reads the Secrets fields from LOANSHARE_* variables.
func LoadSecrets() (Secrets, error) {
	var s Secrets
	if err := envconfig.Process(EnvPrefix, &s); err != nil {
		return s, fmt.Errorf("config: process environment: %w", err)
	}
	return s, nil
}

// Load reads the configuration file in dataDir if present, applies the
// environment and validates the result. dataDir is where the file was
// found, so it wins over any datadir the file or environment names.
func Load(dataDir string) (Config, error) {
	cfg, err := LoadConfig(ConfigPath(dataDir))
	if err != nil && !errors.Is(err, ErrConfigNotFound) {
		return cfg, err
	}
	if cfg, err = LoadFromEnv(cfg); err != nil {
		return cfg, err
	}
	cfg.DataDir = dataDir
	return cfg, ValidateConfig(cfg)
}

// Mainnet reports whether addresses should be encoded for mainnet.
func (c Config) Mainnet() bool {
	return c.Network == "mainnet"
}

// NewLogger builds a text logger at cfg.LogLevel, writing to cfg.LogFile
// when set and to stderr otherwise. The returned closer releases the file.
func NewLogger(cfg Config) (*slog.Logger, io.Closer, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		return nil, nil, fmt.Errorf("%w: %q", ErrInvalidLogLevel, cfg.LogLevel)
	}

	var (
		w      io.Writer = os.Stderr
		closer io.Closer = nopCloser{}
	)
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return nil, nil, fmt.Errorf("config: open log file: %w", err)
		}
		w, closer = f, f
	}
	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	return logger, closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
