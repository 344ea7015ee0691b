// Package config assembles the server settings from an optional .env file,
// the environment and command line flags, in increasing order of precedence.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr          string
	LogFile       string
	LogLevel      string
	LogStdout     bool
	LayoutFile    string // empty selects the built-in layout
	ValidateMoves bool
	StaticDir     string
}

func Default() Config {
	return Config{
		Addr:      ":8080",
		LogFile:   "app.log",
		LogLevel:  "info",
		StaticDir: "web",
	}
}

// Load reads envFile (ignored when missing), then the environment, then args.
func Load(envFile string, args []string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	cfg := Default()
	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}

	fset := flag.NewFlagSet("gatherspace", flag.ContinueOnError)
	fset.StringVar(&cfg.Addr, "addr", cfg.Addr, "server listen address, e.g. :8080")
	fset.StringVar(&cfg.LogFile, "log-file", cfg.LogFile, "rotated log file path")
	fset.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error")
	fset.BoolVar(&cfg.LogStdout, "log-stdout", cfg.LogStdout, "also log to stderr")
	fset.StringVar(&cfg.LayoutFile, "layout", cfg.LayoutFile, "layout JSON file (built-in office when empty)")
	fset.BoolVar(&cfg.ValidateMoves, "validate-moves", cfg.ValidateMoves, "re-resolve reported positions on the server")
	fset.StringVar(&cfg.StaticDir, "static", cfg.StaticDir, "directory with the web client")
	if err := fset.Parse(args); err != nil {
		return Config{}, err
	}

	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return Config{}, fmt.Errorf("unknown log level %q", cfg.LogLevel)
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	str := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}
	boolean := func(key string, dst *bool) error {
		v, ok := os.LookupEnv(key)
		if !ok || v == "" {
			return nil
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = b
		return nil
	}

	str("ADDR", &c.Addr)
	str("LOG_FILE", &c.LogFile)
	str("LOG_LEVEL", &c.LogLevel)
	str("LAYOUT_FILE", &c.LayoutFile)
	str("STATIC_DIR", &c.StaticDir)
	if err := boolean("LOG_STDOUT", &c.LogStdout); err != nil {
		return err
	}
	return boolean("VALIDATE_MOVES", &c.ValidateMoves)
}
