// Copyright (c) 2024 The BitFS developers
// Use of this source code is governed by the Open BSV License v5
// that can be found in the LICENSE file.

package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := ConfigPath(dir)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if !cfg.SalesOpenOnCreate {
		t.Error("packages should open for sale on creation by default")
	}
	if !cfg.Mainnet() || cfg.LogLevel != "info" || cfg.LogFile != "" {
		t.Errorf("DefaultConfig = %+v", cfg)
	}
	if !strings.HasSuffix(cfg.DataDir, ".loanshare") {
		t.Errorf("DataDir = %q, want a .loanshare directory", cfg.DataDir)
	}
	if err := ValidateConfig(cfg); err != nil {
		t.Errorf("ValidateConfig(DefaultConfig()) = %v", err)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config")
	want := Config{
		DataDir:           "/srv/loanshare",
		Network:           "testnet",
		LogLevel:          "debug",
		LogFile:           "/var/log/loanshare.log",
		SalesOpenOnCreate: false,
	}
	if err := SaveConfig(path, want); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}
	got, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if got != want {
		t.Errorf("LoadConfig = %+v, want %+v", got, want)
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "config")); !errors.Is(err, ErrConfigNotFound) {
		t.Errorf("missing file: got %v, want ErrConfigNotFound", err)
	}
	for _, content := range []string{"no separator\n", "salesopen = maybe\n", " = testnet\n"} {
		path := writeConfig(t, t.TempDir(), content)
		if _, err := LoadConfig(path); !errors.Is(err, ErrInvalidConfigLine) {
			t.Errorf("LoadConfig(%q): got %v, want ErrInvalidConfigLine", content, err)
		}
	}
}

func TestLoadConfig_SalesOpen(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "# operator override\nsalesopen = false\nfuturekey = 1\n")
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.SalesOpenOnCreate {
		t.Error("SalesOpenOnCreate = true, want false")
	}
	if cfg.Network != "mainnet" {
		t.Errorf("Network = %q, unset keys should keep defaults", cfg.Network)
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr error
	}{
		{"empty_datadir", func(c *Config) { c.DataDir = "" }, ErrEmptyDataDir},
		{"bad_network", func(c *Config) { c.Network = "devnet" }, ErrInvalidNetwork},
		{"bad_loglevel", func(c *Config) { c.LogLevel = "verbose" }, ErrInvalidLogLevel},
		{"regtest", func(c *Config) { c.Network = "regtest" }, nil},
		{"upper_loglevel", func(c *Config) { c.LogLevel = "WARN" }, nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.modify(&cfg)
			if err := ValidateConfig(cfg); !errors.Is(err, tc.wantErr) {
				t.Errorf("ValidateConfig: got %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("LOANSHARE_NETWORK", "regtest")
	t.Setenv("LOANSHARE_LOG_LEVEL", "debug")
	t.Setenv("LOANSHARE_SALES_OPEN_ON_CREATE", "false")

	cfg, err := LoadFromEnv(DefaultConfig())
	if err != nil {
		t.Fatalf("LoadFromEnv: %v", err)
	}
	if cfg.Network != "regtest" || cfg.LogLevel != "debug" || cfg.SalesOpenOnCreate {
		t.Errorf("LoadFromEnv = %+v", cfg)
	}

	t.Setenv("LOANSHARE_SALES_OPEN_ON_CREATE", "sometimes")
	if _, err := LoadFromEnv(DefaultConfig()); err == nil {
		t.Error("LoadFromEnv with bad bool: expected error")
	}
}

func TestLoadSecrets(t *testing.T) {
	t.Setenv("LOANSHARE_PASSWORD", "from-env")
	s, err := LoadSecrets()
	if err != nil {
		t.Fatalf("LoadSecrets: %v", err)
	}
	if s.Password != "from-env" {
		t.Errorf("Password = %q, want %q", s.Password, "from-env")
	}
}

func TestLoad_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "network = testnet\nloglevel = error\n")
	t.Setenv("LOANSHARE_LOG_LEVEL", "warn")

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Network != "testnet" || cfg.LogLevel != "warn" {
		t.Errorf("Load = %+v", cfg)
	}
	if cfg.Mainnet() {
		t.Error("Mainnet() = true for testnet")
	}
}

func TestLoad_DataDirArgumentWins(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "datadir = "+filepath.Join(dir, "elsewhere")+"\n")
	t.Setenv("LOANSHARE_DATA_DIR", "/tmp/also-elsewhere")

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DataDir != dir {
		t.Errorf("DataDir = %q, want %q", cfg.DataDir, dir)
	}
	if cfg.DBPath() != filepath.Join(dir, "ledger.db") {
		t.Errorf("DBPath = %q", cfg.DBPath())
	}
}

func TestLoad_MissingFileUsesDataDir(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DataDir != dir {
		t.Errorf("DataDir = %q, want %q", cfg.DataDir, dir)
	}
}

func TestNewLogger_File(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LogLevel = "warn"
	cfg.LogFile = filepath.Join(t.TempDir(), "loanshare.log")

	logger, closer, err := NewLogger(cfg)
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	logger.Info("dropped")
	logger.Warn("kept", "pkg", "pkg_x")
	if err := closer.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(cfg.LogFile)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "dropped") {
		t.Error("info record written at warn level")
	}
	if !strings.Contains(string(data), "msg=kept") {
		t.Errorf("log file missing warn record: %q", data)
	}
}

func TestNewLogger_BadLevel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LogLevel = "verbose"
	if _, _, err := NewLogger(cfg); !errors.Is(err, ErrInvalidLogLevel) {
		t.Errorf("NewLogger: got %v, want ErrInvalidLogLevel", err)
	}
}
