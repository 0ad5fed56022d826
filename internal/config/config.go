package config

import (
	"os"
	"path/filepath"
)

// Config holds all configuration for the harness
type Config struct {
	// Project settings
	ProjectPath string
	ConfigFile  string
	SQLTestPath string

	// Output settings
	LogFile    string
	ResultFile string
	StorageDir string

	// Application settings
	SQLitePath  string
	CoverageDir string

	// Skip list for modules the PEM subsystem does not support
	SkippedModules []string

	// Paths to ignore when scanning
	PathsToIgnore []string

	// Command flags
	Args Arguments
}

// New creates a new Config with defaults
func New() *Config {
	cfg := &Config{
		ProjectPath: DefaultProjectPath,
		ConfigFile:  DefaultConfigFile,
		SQLTestPath: DefaultSQLTestPath,
		LogFile:     DefaultLogFile,
		ResultFile:  DefaultResultFile,
		StorageDir:  DefaultStorageDir,
		SQLitePath:  DefaultSQLitePath,
		CoverageDir: DefaultCoverageDir,
	}
	cfg.SkippedModules = make([]string, len(DefaultSkippedModules))
	copy(cfg.SkippedModules, DefaultSkippedModules)
	cfg.PathsToIgnore = make([]string, len(DefaultPathsToIgnore))
	copy(cfg.PathsToIgnore, DefaultPathsToIgnore)
	return cfg
}

// Load creates a config and applies parsed arguments
func Load(args Arguments) *Config {
	cfg := New()
	cfg.Apply(args)
	return cfg
}

// Apply stores parsed arguments and the environment overrides
func (c *Config) Apply(args Arguments) {
	c.Args = args
	if args.ConfigFile != "" {
		c.ConfigFile = args.ConfigFile
	}
	if v := os.Getenv("REGRESS_PROJECT_PATH"); v != "" {
		c.ProjectPath = v
	}
}

// ApplyTestConfig takes the paths the test configuration overrides
func (c *Config) ApplyTestConfig(tc *TestConfig) {
	if tc == nil {
		return
	}
	if tc.SQLTestPath != "" {
		c.SQLTestPath = tc.SQLTestPath
	}
}

func (c *Config) resolve(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.ProjectPath, p)
}

// GetConfigPath returns the path of the test configuration file
func (c *Config) GetConfigPath() string {
	return c.resolve(c.ConfigFile)
}

// GetSQLTestPath returns the directory scanned for SQL test files
func (c *Config) GetSQLTestPath() string {
	return c.resolve(c.SQLTestPath)
}

// GetStoragePath returns the storage directory used by the application during the run
func (c *Config) GetStoragePath() string {
	return c.resolve(c.StorageDir)
}

// GetSQLitePath returns the embedded configuration database path
func (c *Config) GetSQLitePath() string {
	return c.resolve(c.SQLitePath)
}

// GetCoveragePath returns the directory the application writes coverage counters to
func (c *Config) GetCoveragePath() string {
	return c.resolve(c.CoverageDir)
}

// GetResultPath returns the fixed report path in the temp directory.
// REGRESS_RESULT_FILE overrides it.
func (c *Config) GetResultPath() string {
	if v := os.Getenv("REGRESS_RESULT_FILE"); v != "" {
		return v
	}
	if filepath.IsAbs(c.ResultFile) {
		return c.ResultFile
	}
	return filepath.Join(os.TempDir(), c.ResultFile)
}

// GetLogPath returns the log file path, relative to the executable's own location
func (c *Config) GetLogPath() string {
	if filepath.IsAbs(c.LogFile) {
		return c.LogFile
	}
	exe, err := os.Executable()
	if err != nil {
		return c.resolve(c.LogFile)
	}
	if real, err := filepath.EvalSymlinks(exe); err == nil {
		exe = real
	}
	return filepath.Join(filepath.Dir(exe), c.LogFile)
}
