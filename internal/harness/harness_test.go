package harness

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"regress/internal/app"
	"regress/internal/cleanup"
	"regress/internal/config"
	"regress/internal/database"
	"regress/internal/pem"
	"regress/internal/registry"
)

func newTestHarness(t *testing.T, args config.Arguments) (h *Harness, stdout, stderr *bytes.Buffer) {
	t.Helper()
	// SetupEnv exports these; t.Setenv restores them afterwards
	for _, k := range []string{config.TestingModeEnv, config.SetupEmailEnv, config.SetupPasswordEnv} {
		t.Setenv(k, "")
	}

	cfg := config.New()
	cfg.ProjectPath = t.TempDir()
	cfg.ResultFile = filepath.Join(cfg.ProjectPath, "test_result.json")
	cfg.Args = args

	tc := &config.TestConfig{
		Servers: []config.ServerCredential{{
			Name:       "PostgreSQL 16",
			Host:       "127.0.0.1",
			Port:       1,
			DBUsername: "postgres",
			Username:   "postgres",
		}},
		ServerGroup: 1,
	}

	stdout, stderr = &bytes.Buffer{}, &bytes.Buffer{}
	h = New(Options{
		Config:      cfg,
		TestConfig:  tc,
		Registry:    registry.New(),
		Coordinator: cleanup.New(nil),
		Stdout:      stdout,
		Stderr:      stderr,
		NoTee:       true,
	})
	return h, stdout, stderr
}

func TestRun_InvalidServerIndex(t *testing.T) {
	for _, index := range []int{0, 2, -1} {
		h, out, _ := newTestHarness(t, config.Arguments{Server: index})
		h.openPrimary = func(context.Context, config.ServerCredential) (*pem.Conn, error) {
			t.Fatal("no connection may be attempted for an invalid index")
			return nil, nil
		}

		code, err := h.Run(context.Background())
		assert.Equal(t, 1, code)
		assert.ErrorIs(t, err, config.ErrInvalidServerIndex)
		assert.Empty(t, out.String(), "nothing runs before validation")
	}
}

func TestRun_ConnectionFailure(t *testing.T) {
	h, out, errOut := newTestHarness(t, config.Arguments{Server: 1})
	h.openPrimary = func(context.Context, config.ServerCredential) (*pem.Conn, error) {
		return nil, errors.New("connection refused")
	}

	code, err := h.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, code)
	assert.Contains(t, out.String(), "=============Running the test cases for 'PostgreSQL 16'=============")
	assert.Contains(t, errOut.String(), "Error creating the pem database connection with error:\nconnection refused")
	assert.NotContains(t, out.String(), "Error creating the pem database connection")
	assert.DirExists(t, h.cfg.GetStoragePath())
}

func TestRun_PrintsFullBackendVersion(t *testing.T) {
	banner := "PostgreSQL 16.2 on x86_64-pc-linux-gnu, compiled by gcc 12.2.0, 64-bit"
	rec := &recorder{version: banner}
	h, out, _ := newTestHarness(t, config.Arguments{Server: 1, SQLOnly: true})
	h.openPrimary = func(context.Context, config.ServerCredential) (*pem.Conn, error) {
		return &pem.Conn{Conn: &database.Conn{DB: rec.open(), Driver: database.DriverPostgres, Name: "pem"}}, nil
	}

	// The second PEM connection goes to the unreachable configured server
	code, err := h.Run(context.Background())
	assert.Error(t, err)
	assert.Equal(t, 1, code)
	assert.Contains(t, out.String(), "(Backend Database Version : "+banner+")")
}

func TestRunContext_CleanupDropsObjectsBeforeClosing(t *testing.T) {
	ctx := context.Background()
	rec := &recorder{}
	conn := &pem.Conn{Conn: &database.Conn{DB: rec.open(), Driver: database.DriverPostgres, Name: "pem"}}

	rc := NewRunContext(nil)
	rc.FixturePEM = conn
	rc.Objects = pem.NewObjects(conn, nil)
	created, err := rc.Objects.CreateTestUsers(ctx, "secret", TestUserCount)
	require.NoError(t, err)
	require.Len(t, created, TestUserCount)

	coord := cleanup.New(nil)
	coord.AtExit(rc.DropObjects)
	coord.Arm(rc.Cleanup)

	// Same order as the deferred calls of a finished run
	rc.Cleanup()
	coord.Fire()

	assert.Len(t, rec.statements("DROP ROLE"), TestUserCount)
	assert.Empty(t, rc.Objects.Roles())
}

func TestRunContext_CleanupTwice(t *testing.T) {
	ctx := context.Background()
	inst, err := app.New(app.Options{SQLitePath: filepath.Join(t.TempDir(), "pgadmin4.db")})
	require.NoError(t, err)
	require.NoError(t, inst.Upgrade(ctx))

	rc := NewRunContext(nil)
	rc.App = inst
	rc.ServerInfo, err = inst.Store().CreateServer(ctx, config.ServerCredential{Name: "srv", Host: "localhost", Port: 5432}, 1)
	require.NoError(t, err)

	rc.DeleteTestServer(ctx)
	n, err := inst.Store().ServerCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	assert.NotPanics(t, func() {
		rc.Cleanup()
		rc.Cleanup()
	})
}

func TestRunContext_CleanupEmpty(t *testing.T) {
	rc := NewRunContext(nil)
	assert.NotPanics(t, func() {
		rc.DropObjects()
		rc.Cleanup()
		rc.Cleanup()
	})
}

func TestRunContext_Fixtures(t *testing.T) {
	rc := NewRunContext(nil)
	rc.DatabaseName = "acceptance_test_db12345"
	rc.ServerVersion = "16.2"
	rc.GUIServerURL = "http://127.0.0.1:5050"

	f := rc.Fixtures()
	assert.Equal(t, "acceptance_test_db12345", f.DatabaseName)
	assert.Equal(t, "16.2", f.ServerVersion)
	assert.Equal(t, "http://127.0.0.1:5050", f.GUIServerURL)
	assert.Nil(t, f.Driver)
}

func TestShortVersion(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"PostgreSQL 16.2 on x86_64-pc-linux-gnu, compiled by gcc", "16.2"},
		{"8.0.36-0ubuntu0.22.04.1", "8.0.36"},
		{"unknown", "unknown"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, shortVersion(tt.raw), tt.raw)
	}
}

func TestSkipList_MergesTestConfig(t *testing.T) {
	h, _, _ := newTestHarness(t, config.Arguments{Server: 1})
	h.tc.SkippedModules = []string{"pgadmin.tools.backup"}

	list := h.skipList()
	assert.Contains(t, list, "pgadmin.tools.backup")
	assert.Contains(t, list, "pgadmin.tools.import_export")
}

func TestExitError(t *testing.T) {
	inner := errors.New("boom")
	err := &ExitError{Code: 1, Err: inner}
	assert.ErrorIs(t, err, inner)
	assert.Equal(t, "boom", err.Error())
	assert.Equal(t, "exit status 3", (&ExitError{Code: 3}).Error())
}
