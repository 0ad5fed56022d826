package generators

import (
	"context"
	"fmt"

	"regress/internal/suite"
)

func init() {
	register("pgadmin.browser.server_groups.servers.tests", "ServerNodeTestCase", func(name string) suite.Generator {
		return &ServerNodeTestCase{name: name}
	})
	register("pgadmin.browser.server_groups.servers.databases.tests", "DatabaseTestCase", func(name string) suite.Generator {
		return &DatabaseTestCase{name: name}
	})
}

// ServerNodeTestCase verifies the parent server node created for the run
type ServerNodeTestCase struct {
	suite.Base
	name string
}

func (t *ServerNodeTestCase) Name() string { return t.name }

func (t *ServerNodeTestCase) Scenarios() []suite.Scenario {
	return []suite.Scenario{
		{Name: "Check the server node"},
		{Name: "Check the server group", Params: map[string]any{"group": true}},
	}
}

func (t *ServerNodeTestCase) Run(ctx context.Context, sc suite.Scenario) error {
	info := t.F.ServerInfo
	if info.ServerID == 0 {
		return fmt.Errorf("server node %q was not created", t.F.Server.Name)
	}
	if group, _ := sc.Param("group", false).(bool); group && info.ServerGroupID <= 0 {
		return fmt.Errorf("server node %d has no group", info.ServerID)
	}
	if info.Host != t.F.Server.Host || info.Port != t.F.Server.Port {
		return fmt.Errorf("server node points at %s:%d, want %s:%d", info.Host, info.Port, t.F.Server.Host, t.F.Server.Port)
	}
	return nil
}

// DatabaseTestCase checks the scratch database from the backend side
type DatabaseTestCase struct {
	suite.Base
	name string
}

func (t *DatabaseTestCase) Name() string { return t.name }

// Scenarios names the scratch database, so it depends on injected fixtures
func (t *DatabaseTestCase) Scenarios() []suite.Scenario {
	check := "Check the scratch database exists"
	if t.F.DatabaseName != "" {
		check = fmt.Sprintf("Check database %s exists", t.F.DatabaseName)
	}
	return []suite.Scenario{
		{Name: check, Params: map[string]any{"db": t.F.DatabaseName}},
		{Name: "Check identity columns", MinServerVersion: "10", Params: map[string]any{"identity": true}},
	}
}

func (t *DatabaseTestCase) Run(ctx context.Context, sc suite.Scenario) error {
	if t.F.PEM == nil {
		return errNoPEM
	}
	if identity, _ := sc.Param("identity", false).(bool); identity {
		var n int
		return t.F.PEM.DB.QueryRowContext(ctx,
			"SELECT count(*) FROM information_schema.columns WHERE is_identity = 'YES'").Scan(&n)
	}

	db, _ := sc.Param("db", "").(string)
	if db == "" {
		return suite.Skip("no scratch database in SQL-only runs")
	}
	exists, err := t.F.PEM.DatabaseExists(ctx, db)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("database %s does not exist", db)
	}
	return nil
}
