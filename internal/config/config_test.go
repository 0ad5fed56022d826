package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestConfig_Paths(t *testing.T) {
	tests := []struct {
		name     string
		config   *Config
		get      func(*Config) string
		expected string
	}{
		{
			name:     "default config path",
			config:   &Config{ProjectPath: ".", ConfigFile: DefaultConfigFile},
			get:      (*Config).GetConfigPath,
			expected: "test_config.json",
		},
		{
			name:     "relative sql path",
			config:   &Config{ProjectPath: "/project", SQLTestPath: "sql"},
			get:      (*Config).GetSQLTestPath,
			expected: "/project/sql",
		},
		{
			name:     "absolute sqlite path",
			config:   &Config{ProjectPath: "/project", SQLitePath: "/var/lib/test.db"},
			get:      (*Config).GetSQLitePath,
			expected: "/var/lib/test.db",
		},
		{
			name:     "absolute log path",
			config:   &Config{LogFile: "/var/log/regression.log"},
			get:      (*Config).GetLogPath,
			expected: "/var/log/regression.log",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.get(tt.config)
			if result != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, result)
			}
		})
	}
}

func TestConfig_GetResultPath(t *testing.T) {
	t.Setenv("REGRESS_RESULT_FILE", "")
	cfg := New()
	expected := filepath.Join(os.TempDir(), DefaultResultFile)
	if got := cfg.GetResultPath(); got != expected {
		t.Errorf("expected %s, got %s", expected, got)
	}

	t.Setenv("REGRESS_RESULT_FILE", "/tmp/custom.json")
	if got := cfg.GetResultPath(); got != "/tmp/custom.json" {
		t.Errorf("expected env override, got %s", got)
	}
}

func TestNew(t *testing.T) {
	cfg := New()

	if cfg.ProjectPath != DefaultProjectPath {
		t.Errorf("expected ProjectPath %s, got %s", DefaultProjectPath, cfg.ProjectPath)
	}

	if len(cfg.SkippedModules) != len(DefaultSkippedModules) {
		t.Errorf("expected %d skipped modules, got %d", len(DefaultSkippedModules), len(cfg.SkippedModules))
	}

	cfg.SkippedModules[0] = "changed"
	if DefaultSkippedModules[0] == "changed" {
		t.Error("New must copy the default skip list")
	}
}

func TestArguments_Validate(t *testing.T) {
	tests := []struct {
		name    string
		args    Arguments
		servers int
		wantErr bool
	}{
		{name: "first server", args: Arguments{Server: 1}, servers: 2},
		{name: "last server", args: Arguments{Server: 2}, servers: 2},
		{name: "zero index", args: Arguments{Server: 0}, servers: 2, wantErr: true},
		{name: "negative index", args: Arguments{Server: -1}, servers: 2, wantErr: true},
		{name: "out of range", args: Arguments{Server: 3}, servers: 2, wantErr: true},
		{name: "no servers", args: Arguments{Server: 1}, servers: 0, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.args.Validate(tt.servers)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidServerIndex) {
					t.Errorf("expected ErrInvalidServerIndex, got %v", err)
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}

	t.Run("sqlonly with nosql", func(t *testing.T) {
		if err := (Arguments{Server: 1, SQLOnly: true, NoSQL: true}).Validate(1); err == nil {
			t.Error("expected error for conflicting flags")
		}
	})
}

func TestArguments_ExcludeList(t *testing.T) {
	args := Arguments{Exclude: "feature_tests, browser.server_groups,,"}
	got := args.ExcludeList()
	if len(got) != 2 || got[0] != "feature_tests" || got[1] != "browser.server_groups" {
		t.Errorf("unexpected exclude list: %v", got)
	}
	if (Arguments{}).ExcludeList() != nil {
		t.Error("expected nil exclude list for empty flag")
	}
}

func TestLoadTestConfig(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "test_config.json")
	content := `{
  "pgAdmin4_login_credentials": {
    "login_username": "tester@example.com",
    "login_password": "secret"
  },
  "default_browser": "Chrome",
  "server_credentials": [
    {
      "name": "PostgreSQL 16",
      "host": "localhost",
      "db_port": 5432,
      "db_username": "postgres",
      "db_password": "postgres",
      "enabled": true,
      "default_binary_paths": {"pg": "/usr/lib/postgresql/16/bin"}
    }
  ]
}`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	tc, err := LoadTestConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(tc.Servers) != 1 {
		t.Fatalf("expected 1 server, got %d", len(tc.Servers))
	}
	s, err := tc.Server(1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Port != 5432 || s.MaintenanceDB != "postgres" || s.PEMDatabase != DefaultPEMDatabase {
		t.Errorf("unexpected server defaults: %+v", s)
	}
	if s.Username != "postgres" {
		t.Errorf("expected username to default to db_username, got %q", s.Username)
	}
	if tc.Browser(Arguments{}) != "chrome" {
		t.Errorf("expected lower-cased config browser, got %s", tc.Browser(Arguments{}))
	}
	if tc.Browser(Arguments{DefaultBrowser: "Firefox"}) != "firefox" {
		t.Error("flag must take precedence over the config file")
	}
	if _, err := tc.Server(2); !errors.Is(err, ErrInvalidServerIndex) {
		t.Errorf("expected ErrInvalidServerIndex, got %v", err)
	}

	t.Run("setup env", func(t *testing.T) {
		t.Setenv(TestingModeEnv, "")
		if err := tc.SetupEnv(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if os.Getenv(SetupEmailEnv) != "tester@example.com" || os.Getenv(TestingModeEnv) != "1" {
			t.Error("expected setup credentials and testing mode in the environment")
		}
		if err := UnsetTestingMode(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, ok := os.LookupEnv(TestingModeEnv); ok {
			t.Error("expected testing mode to be unset")
		}
	})

	t.Run("incomplete credentials export empty strings", func(t *testing.T) {
		t.Setenv(SetupEmailEnv, "x")
		partial := &TestConfig{LoginCredentials: &LoginCredentials{Username: "only"}}
		if err := partial.SetupEnv(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if os.Getenv(SetupEmailEnv) != "" {
			t.Error("expected empty setup email")
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := LoadTestConfig(filepath.Join(tmpDir, "missing.json")); err == nil {
			t.Error("expected error for missing file")
		}
	})
}
