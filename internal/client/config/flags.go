package config

import (
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/dmitrijs2005/skykeeper/internal/flagx"
)

// parseFlags populates Config fields from command-line flags.
//
//	-d string   data directory
//	-s string   default PDS server URL
//	-t int      request timeout (seconds)
//	-b string   storage backend: file or memory
//	-l string   log level
//
// args are filtered through flagx.FilterArgs first, so flags owned by other
// components do not cause errors here.
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-d", "-s", "-t", "-b", "-l"})

	fs := flag.NewFlagSet("skykeeper", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.DataDir, "d", cfg.DataDir, "data directory")
	fs.StringVar(&cfg.ServerURL, "s", cfg.ServerURL, "default PDS server URL")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")
	fs.StringVar(&cfg.Backend, "b", cfg.Backend, "storage backend (file|memory)")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level (debug|info|warn|error)")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}

	cfg.RequestTimeout = time.Duration(*timeout) * time.Second
	return nil
}
