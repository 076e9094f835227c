// Package config collects the settings of a memplace run from defaults, .env
// files and the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/sarchlab/memplace/placement"
)

// Environment variables read by Load.
const (
	EnvSize       = "MEMPLACE_SIZE"
	EnvPolicy     = "MEMPLACE_POLICY"
	EnvPort       = "MEMPLACE_PORT"
	EnvRecord     = "MEMPLACE_RECORD"
	EnvRecordPath = "MEMPLACE_RECORD_PATH"
	EnvColor      = "MEMPLACE_COLOR"
)

// Config holds the settings of a run.
type Config struct {
	// TotalSize is the capacity of the simulated address space.
	TotalSize int

	// Policy is the placement policy selected at start.
	Policy placement.Policy

	// MonitorPort is the port of the monitoring server. 0 picks a random
	// port.
	MonitorPort int

	// Record enables the SQLite trace of every operation.
	Record bool

	// RecordPath is the database name without the ".sqlite3" suffix. A
	// unique name is generated if it is empty.
	RecordPath string

	// Color enables coloured snapshots on terminals.
	Color bool

	// OpenBrowser opens the monitor page once the server listens.
	OpenBrowser bool
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		TotalSize: 32,
		Policy:    placement.FirstFit,
		Color:     true,
	}
}

// DefaultEnvFile is the .env file Load tries when no file is named.
const DefaultEnvFile = ".env"

// Load returns the default settings overridden by the environment. The
// given .env files are loaded first; they never override variables that are
// already set. A named file must exist. Without arguments, DefaultEnvFile is
// tried and skipped if it is missing.
//
// Only malformed values are reported. The result is not validated, so that
// callers can apply their own overrides before calling Validate.
func Load(envFiles ...string) (Config, error) {
	err := loadEnvFiles(envFiles)
	if err != nil {
		return Config{}, err
	}

	c := Default()

	err = c.applyEnv()
	if err != nil {
		return Config{}, err
	}

	return c, nil
}

func loadEnvFiles(envFiles []string) error {
	if len(envFiles) == 0 {
		err := godotenv.Load(DefaultEnvFile)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading %s: %w", DefaultEnvFile, err)
		}

		return nil
	}

	for _, f := range envFiles {
		err := godotenv.Load(f)
		if err != nil {
			return fmt.Errorf("loading %s: %w", f, err)
		}
	}

	return nil
}

func (c *Config) applyEnv() error {
	if v, ok := lookup(EnvSize); ok {
		size, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvSize, err)
		}

		c.TotalSize = size
	}

	if v, ok := lookup(EnvPolicy); ok {
		p, err := placement.ParsePolicy(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvPolicy, err)
		}

		c.Policy = p
	}

	if v, ok := lookup(EnvPort); ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvPort, err)
		}

		c.MonitorPort = port
	}

	if v, ok := lookup(EnvRecord); ok {
		c.Record = isTrue(v)
	}

	if v, ok := lookup(EnvRecordPath); ok {
		c.RecordPath = v
		c.Record = true
	}

	if v, ok := lookup(EnvColor); ok {
		c.Color = isTrue(v)
	}

	return nil
}

// Validate reports settings that cannot start a run.
func (c Config) Validate() error {
	if c.TotalSize <= 0 {
		return fmt.Errorf("memory size must be positive, got %d", c.TotalSize)
	}

	if !c.Policy.Valid() {
		return fmt.Errorf("unknown policy %d", int(c.Policy))
	}

	if c.MonitorPort < 0 || c.MonitorPort > 65535 {
		return fmt.Errorf("port %d is out of range", c.MonitorPort)
	}

	return nil
}

func lookup(name string) (string, bool) {
	v, ok := os.LookupEnv(name)
	if !ok {
		return "", false
	}

	v = strings.TrimSpace(v)

	return v, v != ""
}

func isTrue(v string) bool {
	switch strings.ToLower(v) {
	case "1", "true", "yes", "on":
		return true
	}

	return false
}
