package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/a3tai/mcp-idp-review/internal/history"
)

const (
	// Mode constants
	ModeStdio  = "stdio"
	ModeServer = "server"

	// Default values
	DefaultPort           = 8080
	DefaultHost           = "127.0.0.1"
	DefaultLogLevel       = "info"
	DefaultMaxFileSize    = 100 * 1024 * 1024 // 100MB
	DefaultHistoryMode    = "linear"
	DefaultHistoryLimit   = 200
	DefaultTypeaheadLimit = 10

	// Directory permissions
	DefaultDirPerm = 0o750
)

// ErrVersionRequested is returned by LoadFromFlags when --version was given
var ErrVersionRequested = errors.New("version requested")

// Config holds all configuration for the IDP review server
type Config struct {
	// Server configuration
	Mode string // "server" or "stdio"
	Host string
	Port int

	// Batch configuration
	Directory   string
	MaxFileSize int64 // Maximum PDF file size in bytes

	// Review configuration
	HistoryMode    string // "linear" or "branching"
	HistoryLimit   int    // Undo steps kept per session, 0 keeps all
	TypeaheadLimit int

	// Application configuration
	Version    string
	ServerName string
	LogLevel   string
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	currentDir, err := os.Getwd()
	if err != nil {
		currentDir = "."
	}

	return &Config{
		Mode:           ModeStdio,
		Host:           DefaultHost,
		Port:           DefaultPort,
		Directory:      currentDir,
		MaxFileSize:    DefaultMaxFileSize,
		HistoryMode:    DefaultHistoryMode,
		HistoryLimit:   DefaultHistoryLimit,
		TypeaheadLimit: DefaultTypeaheadLimit,
		Version:        "1.0.0",
		ServerName:     "mcp-idp-review",
		LogLevel:       DefaultLogLevel,
	}
}

// LoadFromFlags parses command line flags and returns a configuration
func LoadFromFlags() (*Config, error) {
	cfg := DefaultConfig()

	setupViperEnvironment(cfg)
	defineCommandLineFlags(cfg)
	bindFlagsToViper()
	setupUsageMessage()

	// Check for version flag before parsing
	if err := checkVersionFlag(os.Args[1:]); err != nil {
		return nil, err
	}

	pflag.Parse()

	populateConfigFromViper(cfg)

	if cfg.Directory != "" {
		if expandedPath, err := filepath.Abs(cfg.Directory); err == nil {
			cfg.Directory = expandedPath
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setupViperEnvironment configures viper with environment variables and defaults
func setupViperEnvironment(cfg *Config) {
	viper.SetEnvPrefix("MCP_IDP")
	viper.AutomaticEnv()

	viper.SetDefault("mode", cfg.Mode)
	viper.SetDefault("host", cfg.Host)
	viper.SetDefault("port", cfg.Port)
	viper.SetDefault("dir", cfg.Directory)
	viper.SetDefault("loglevel", cfg.LogLevel)
	viper.SetDefault("maxfilesize", cfg.MaxFileSize)
	viper.SetDefault("history", cfg.HistoryMode)
	viper.SetDefault("historylimit", cfg.HistoryLimit)
	viper.SetDefault("typeaheadlimit", cfg.TypeaheadLimit)
}

// defineCommandLineFlags sets up all command line flags
func defineCommandLineFlags(cfg *Config) {
	pflag.String("mode", cfg.Mode, "Server mode: 'stdio' for MCP standard I/O, 'server' for HTTP server")
	pflag.String("host", cfg.Host, "Server host address (server mode only)")
	pflag.Int("port", cfg.Port, "Server port (server mode only)")
	pflag.String("dir", cfg.Directory, "Directory containing batches; paths outside it are refused")
	pflag.String("loglevel", cfg.LogLevel, "Log level (debug, info, warn, error)")
	pflag.Int64("maxfilesize", cfg.MaxFileSize, "Maximum PDF file size in bytes")
	pflag.String("history", cfg.HistoryMode, "Undo history mode: 'linear' or 'branching'")
	pflag.Int("historylimit", cfg.HistoryLimit, "Undo steps kept per session (0 keeps all)")
	pflag.Int("typeaheadlimit", cfg.TypeaheadLimit, "Default number of typeahead matches")
}

// bindFlagsToViper binds command line flags to viper configuration
func bindFlagsToViper() {
	for _, name := range []string{
		"mode", "host", "port", "dir", "loglevel", "maxfilesize", "history", "historylimit", "typeaheadlimit",
	} {
		_ = viper.BindPFlag(name, pflag.Lookup(name))
	}
}

// setupUsageMessage configures the custom usage message
func setupUsageMessage() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage of %s:\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nMCP IDP Review - A Model Context Protocol server for reviewing scanned document batches\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		pflag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s                                   # stdio mode, current directory (default)\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --dir=/srv/batches                # stdio mode with custom directory\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --history=branching --historylimit=0 # keep every undo branch\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  MCP_IDP_MODE            Server mode\n")
		fmt.Fprintf(os.Stderr, "  MCP_IDP_HOST            Server host\n")
		fmt.Fprintf(os.Stderr, "  MCP_IDP_PORT            Server port\n")
		fmt.Fprintf(os.Stderr, "  MCP_IDP_DIR             Batch directory\n")
		fmt.Fprintf(os.Stderr, "  MCP_IDP_LOGLEVEL        Log level\n")
		fmt.Fprintf(os.Stderr, "  MCP_IDP_MAXFILESIZE     Maximum file size\n")
		fmt.Fprintf(os.Stderr, "  MCP_IDP_HISTORY         Undo history mode\n")
		fmt.Fprintf(os.Stderr, "  MCP_IDP_HISTORYLIMIT    Undo steps kept per session\n")
		fmt.Fprintf(os.Stderr, "  MCP_IDP_TYPEAHEADLIMIT  Default number of typeahead matches\n")
	}
}

// checkVersionFlag checks if version flag was requested
func checkVersionFlag(args []string) error {
	for _, arg := range args {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			return ErrVersionRequested
		}
	}
	return nil
}

// populateConfigFromViper fills the config struct with values from viper
func populateConfigFromViper(cfg *Config) {
	cfg.Mode = viper.GetString("mode")
	cfg.Host = viper.GetString("host")
	cfg.Port = viper.GetInt("port")
	cfg.Directory = viper.GetString("dir")
	cfg.LogLevel = viper.GetString("loglevel")
	cfg.MaxFileSize = viper.GetInt64("maxfilesize")
	cfg.HistoryMode = viper.GetString("history")
	cfg.HistoryLimit = viper.GetInt("historylimit")
	cfg.TypeaheadLimit = viper.GetInt("typeaheadlimit")
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Mode != ModeStdio && c.Mode != ModeServer {
		return errors.New("mode must be either 'stdio' or 'server'")
	}

	// Port only matters in server mode
	if c.Mode == ModeServer && (c.Port < 1 || c.Port > 65535) {
		return errors.New("port must be between 1 and 65535")
	}

	if c.Directory == "" {
		return errors.New("batch directory cannot be empty")
	}

	// Check if the directory exists, create if it doesn't
	if _, err := os.Stat(c.Directory); os.IsNotExist(err) {
		if err := os.MkdirAll(c.Directory, DefaultDirPerm); err != nil {
			return fmt.Errorf("cannot create batch directory %s: %w", c.Directory, err)
		}
	} else if err != nil {
		return fmt.Errorf("cannot access batch directory %s: %w", c.Directory, err)
	}

	if c.MaxFileSize <= 0 {
		return errors.New("maximum file size must be positive")
	}

	if _, err := history.ParseMode(c.HistoryMode); err != nil {
		return err
	}
	if c.HistoryLimit < 0 {
		return errors.New("history limit cannot be negative")
	}
	if c.TypeaheadLimit < 1 {
		return errors.New("typeahead limit must be at least 1")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}

	return nil
}

// History returns the parsed history mode. Validate guarantees that it parses.
func (c *Config) History() history.Mode {
	mode, _ := history.ParseMode(c.HistoryMode)
	return mode
}

// Address returns the server address as host:port
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// IsDebug returns true if debug logging is enabled
func (c *Config) IsDebug() bool {
	return c.LogLevel == "debug"
}

// String returns a string representation of the configuration
func (c *Config) String() string {
	return fmt.Sprintf("Config{Mode: %s, Host: %s, Port: %d, Directory: %s, LogLevel: %s, MaxFileSize: %d, "+
		"History: %s, HistoryLimit: %d, TypeaheadLimit: %d}",
		c.Mode, c.Host, c.Port, c.Directory, c.LogLevel, c.MaxFileSize,
		c.HistoryMode, c.HistoryLimit, c.TypeaheadLimit)
}

// IsServerMode returns true if the server is running in HTTP server mode
func (c *Config) IsServerMode() bool {
	return c.Mode == ModeServer
}

// IsStdioMode returns true if the server is running in stdio mode
func (c *Config) IsStdioMode() bool {
	return c.Mode == ModeStdio
}
