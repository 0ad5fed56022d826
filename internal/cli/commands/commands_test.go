package commands

import (
	"os"
	"path/filepath"
	"testing"

	"regress/internal/cli"
	"regress/internal/config"
)

func TestLoadTestConfig_Optional(t *testing.T) {
	cfg := config.New()
	cfg.ProjectPath = t.TempDir()

	tc, err := loadTestConfig(cfg, true)
	if err != nil {
		t.Fatalf("optional missing config: %v", err)
	}
	if len(tc.Servers) != 0 {
		t.Errorf("expected empty config, got %d servers", len(tc.Servers))
	}

	if _, err := loadTestConfig(cfg, false); err == nil {
		t.Error("required missing config must fail")
	}
}

func TestLoadTestConfig_AppliesSQLPath(t *testing.T) {
	cfg := config.New()
	cfg.ProjectPath = t.TempDir()
	body := `{"server_credentials": [{"name": "PG", "host": "localhost", "db_port": 5432}], "sql_test_path": "regression/sql"}`
	if err := os.WriteFile(filepath.Join(cfg.ProjectPath, config.DefaultConfigFile), []byte(body), 0644); err != nil {
		t.Fatal(err)
	}

	tc, err := loadTestConfig(cfg, false)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(tc.Servers) != 1 || tc.Servers[0].Name != "PG" {
		t.Errorf("unexpected servers: %+v", tc.Servers)
	}
	if want := filepath.Join(cfg.ProjectPath, "regression/sql"); cfg.GetSQLTestPath() != want {
		t.Errorf("GetSQLTestPath() = %q, want %q", cfg.GetSQLTestPath(), want)
	}
}

func TestFlags_ToArguments(t *testing.T) {
	flags := cli.Flags{Server: 2, Pkg: "browser", SQLOnly: true, ConfigFile: "cfg.json", TestCases: true}
	args := flags.ToArguments()
	if args.Server != 2 || args.Pkg != "browser" || !args.SQLOnly || args.ConfigFile != "cfg.json" || !args.TestCases {
		t.Errorf("unexpected arguments: %+v", args)
	}

	cfg := config.New()
	cfg.Apply(args)
	if cfg.ConfigFile != "cfg.json" {
		t.Errorf("ConfigFile = %q", cfg.ConfigFile)
	}
}
