package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"
)

// ErrInvalidConfig is returned by Config.Validate.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds the runtime settings.
type Config struct {
	Qubits    int    `toml:"qubits"`
	Seed      uint64 `toml:"seed"`
	UndoDepth int    `toml:"undo_depth"`
	LogLevel  string `toml:"log_level"`
	LogFile   string `toml:"log_file"`
	SessionDB string `toml:"session_db"`
}

// stateDir is where the log file and session database live by default.
func stateDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".qubitviz"
	}
	return filepath.Join(dir, "qubitviz")
}

// DefaultConfigPath is the config file read when --config is not given.
func DefaultConfigPath() string {
	return filepath.Join(stateDir(), "config.toml")
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() *Config {
	dir := stateDir()
	return &Config{
		Qubits:    1,
		Seed:      0,
		UndoDepth: defaultUndoDepth,
		LogLevel:  "info",
		LogFile:   filepath.Join(dir, "qubitviz.log"),
		SessionDB: filepath.Join(dir, "sessions.db"),
	}
}

// LoadConfigFile overlays a TOML file onto the defaults. A missing file is not
// an error when optional is set.
func LoadConfigFile(path string, optional bool) (*Config, error) {
	cfg := DefaultConfig()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		if optional && errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("decode config %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnvOverrides reads QUBITVIZ_* variables. Unparseable numbers are reported.
func (c *Config) ApplyEnvOverrides() error {
	if v := os.Getenv("QUBITVIZ_QUBITS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: QUBITVIZ_QUBITS=%q", ErrInvalidConfig, v)
		}
		c.Qubits = n
	}
	if v := os.Getenv("QUBITVIZ_SEED"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: QUBITVIZ_SEED=%q", ErrInvalidConfig, v)
		}
		c.Seed = n
	}
	if v := os.Getenv("QUBITVIZ_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("QUBITVIZ_LOG_FILE"); v != "" {
		c.LogFile = v
	}
	if v := os.Getenv("QUBITVIZ_SESSION_DB"); v != "" {
		c.SessionDB = v
	}
	return nil
}

// flagValues collects the command-line overrides before they are merged.
type flagValues struct {
	configPath string
	qubits     int
	seed       uint64
	logLevel   string
	logFile    string
	sessionDB  string
}

// bindFlags registers the global flags on fs.
func bindFlags(fs *pflag.FlagSet) *flagValues {
	def := DefaultConfig()
	fv := &flagValues{}
	fs.StringVarP(&fv.configPath, "config", "c", "", "config file (default "+DefaultConfigPath()+")")
	fs.IntVarP(&fv.qubits, "qubits", "n", def.Qubits, "initial number of qubits")
	fs.Uint64Var(&fv.seed, "seed", def.Seed, "measurement seed (0 seeds from the clock)")
	fs.StringVar(&fv.logLevel, "log-level", def.LogLevel, "debug, info, warn or error")
	fs.StringVar(&fv.logFile, "log-file", def.LogFile, "log file used while the TUI runs")
	fs.StringVar(&fv.sessionDB, "db", def.SessionDB, "session database path")
	return fv
}

// applyFlags copies only the flags the user actually set.
func (c *Config) applyFlags(fs *pflag.FlagSet, fv *flagValues) {
	if fs.Changed("qubits") {
		c.Qubits = fv.qubits
	}
	if fs.Changed("seed") {
		c.Seed = fv.seed
	}
	if fs.Changed("log-level") {
		c.LogLevel = fv.logLevel
	}
	if fs.Changed("log-file") {
		c.LogFile = fv.logFile
	}
	if fs.Changed("db") {
		c.SessionDB = fv.sessionDB
	}
}

// ResolveConfig merges defaults, the config file, the environment and parsed flags.
func ResolveConfig(fs *pflag.FlagSet, fv *flagValues) (*Config, error) {
	path, optional := fv.configPath, false
	if path == "" {
		path, optional = DefaultConfigPath(), true
	}
	cfg, err := LoadConfigFile(path, optional)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnvOverrides(); err != nil {
		return nil, err
	}
	cfg.applyFlags(fs, fv)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the engine or store cannot use.
func (c *Config) Validate() error {
	if c.Qubits < 1 {
		return fmt.Errorf("%w: qubits must be at least 1, got %d", ErrInvalidConfig, c.Qubits)
	}
	if c.Qubits > MaxQubits {
		return fmt.Errorf("%w: qubits must be at most %d, got %d", ErrInvalidConfig, MaxQubits, c.Qubits)
	}
	if c.UndoDepth < 0 {
		return fmt.Errorf("%w: undo_depth must not be negative", ErrInvalidConfig)
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: log level %q", ErrInvalidConfig, c.LogLevel)
	}
	if c.SessionDB == "" {
		return fmt.Errorf("%w: session_db must be set", ErrInvalidConfig)
	}
	return nil
}
