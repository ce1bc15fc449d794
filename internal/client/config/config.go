package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dmitrijs2005/skykeeper/internal/common"
)

const (
	BackendFile   = "file"
	BackendMemory = "memory"

	// PassphraseEnv names the environment variable consulted for the store
	// passphrase before falling back to an interactive prompt.
	PassphraseEnv = "SKYKEEPER_PASSPHRASE"
)

// Config holds runtime settings for the skykeeper CLI.
//
// Fields:
//   - DataDir: directory holding salt.bin and storage.enc.
//   - ServerURL: PDS used when login is given no server.
//   - RequestTimeout: per-attempt HTTP timeout of the session client.
//   - Backend: "file" (encrypted on disk) or "memory" (session only).
//   - LogLevel: debug, info, warn or error.
type Config struct {
	DataDir        string
	ServerURL      string
	RequestTimeout time.Duration
	Backend        string
	LogLevel       string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.DataDir = defaultDataDir()
	c.ServerURL = common.DefaultServerURL
	c.RequestTimeout = 30 * time.Second
	c.Backend = BackendFile
	c.LogLevel = "info"
}

func defaultDataDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "skykeeper")
	}
	return ".skykeeper"
}

// Validate reports settings the rest of the program cannot work with.
func (c *Config) Validate() error {
	if c.Backend != BackendFile && c.Backend != BackendMemory {
		return fmt.Errorf("unknown backend %q (want %q or %q)", c.Backend, BackendFile, BackendMemory)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive, got %s", c.RequestTimeout)
	}
	if c.Backend == BackendFile && c.DataDir == "" {
		return fmt.Errorf("data directory is required for the %q backend", BackendFile)
	}
	return nil
}

// LoadConfig constructs a Config from args (usually os.Args[1:]): defaults
// first, then the JSON file named by -c/-config, then flags. Later sources
// take precedence over earlier ones.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
