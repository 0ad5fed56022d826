package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ServerCredential describes one backend server from test_config.json
type ServerCredential struct {
	Name               string            `yaml:"name"`
	Comment            string            `yaml:"comment"`
	Driver             string            `yaml:"driver"`
	Host               string            `yaml:"host"`
	Port               int               `yaml:"db_port"`
	DBUsername         string            `yaml:"db_username"`
	DBPassword         string            `yaml:"db_password"`
	Username           string            `yaml:"username"`
	MaintenanceDB      string            `yaml:"maintenance_db"`
	PEMDatabase        string            `yaml:"pem_database"`
	SSLMode            string            `yaml:"sslmode"`
	Enabled            bool              `yaml:"enabled"`
	DefaultBinaryPaths map[string]string `yaml:"default_binary_paths"`
}

// LoginCredentials are the initial application login
type LoginCredentials struct {
	Username    string `yaml:"login_username"`
	Password    string `yaml:"login_password"`
	NewPassword string `yaml:"new_password"`
}

// Complete reports whether both username and password are present
func (l *LoginCredentials) Complete() bool {
	return l != nil && l.Username != "" && l.Password != ""
}

// TestConfig is the content of test_config.json
type TestConfig struct {
	Servers          []ServerCredential `yaml:"server_credentials"`
	LoginCredentials *LoginCredentials  `yaml:"pgAdmin4_login_credentials"`
	DefaultBrowser   string             `yaml:"default_browser"`
	ServerMode       bool               `yaml:"server_mode"`
	ServerGroup      int                `yaml:"server_group"`
	SkippedModules   []string           `yaml:"skipped_modules"`
	AppURL           string             `yaml:"app_url"`
	AppCommand       []string           `yaml:"app_command"`
	SQLTestPath      string             `yaml:"sql_test_path"`
}

// LoadTestConfig reads the test configuration. JSON is accepted as a YAML subset.
// A .env file next to the configuration is loaded first; a missing .env is fine.
func LoadTestConfig(path string) (*TestConfig, error) {
	envPath := filepath.Join(filepath.Dir(path), ".env")
	if err := godotenv.Load(envPath); err != nil {
		// .env is optional, fall back to the process environment
		_ = err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read test config %s: %w", path, err)
	}

	var tc TestConfig
	if err := yaml.Unmarshal(data, &tc); err != nil {
		return nil, fmt.Errorf("parse test config %s: %w", path, err)
	}
	if tc.ServerGroup == 0 {
		tc.ServerGroup = 1
	}
	if tc.AppURL == "" {
		tc.AppURL = DefaultAppURL
	}
	for i := range tc.Servers {
		s := &tc.Servers[i]
		if s.MaintenanceDB == "" {
			s.MaintenanceDB = "postgres"
		}
		if s.PEMDatabase == "" {
			s.PEMDatabase = DefaultPEMDatabase
		}
		if s.Username == "" {
			s.Username = s.DBUsername
		}
	}
	return &tc, nil
}

// Server returns the credentials for a 1-based server index
func (tc *TestConfig) Server(index int) (ServerCredential, error) {
	if index <= 0 || index > len(tc.Servers) {
		return ServerCredential{}, fmt.Errorf("%w: %d", ErrInvalidServerIndex, index)
	}
	return tc.Servers[index-1], nil
}

// Browser resolves the browser: flag first, then config file, then the default
func (tc *TestConfig) Browser(args Arguments) string {
	if args.DefaultBrowser != "" {
		return strings.ToLower(args.DefaultBrowser)
	}
	if tc != nil && tc.DefaultBrowser != "" {
		return strings.ToLower(tc.DefaultBrowser)
	}
	return DefaultBrowser
}

// SetupEnv exports the testing-mode marker and the setup credentials.
// The credentials are empty strings unless both parts are configured.
func (tc *TestConfig) SetupEnv() error {
	email, password := "", ""
	if tc != nil && tc.LoginCredentials.Complete() {
		email, password = tc.LoginCredentials.Username, tc.LoginCredentials.Password
	}
	for k, v := range map[string]string{
		TestingModeEnv:   "1",
		SetupEmailEnv:    email,
		SetupPasswordEnv: password,
	} {
		if err := os.Setenv(k, v); err != nil {
			return fmt.Errorf("set %s: %w", k, err)
		}
	}
	return nil
}

// UnsetTestingMode removes the testing-mode marker at teardown
func UnsetTestingMode() error {
	return os.Unsetenv(TestingModeEnv)
}
