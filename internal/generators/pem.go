package generators

import (
	"context"
	"fmt"

	"regress/internal/pem"
	"regress/internal/suite"
)

func init() {
	register("pgadmin.pem.users.tests", "TestUsersTestCase", func(name string) suite.Generator {
		return &TestUsersTestCase{name: name}
	})
	register("pgadmin.pem.schema.tests", "SchemaTestCase", func(name string) suite.Generator {
		return &SchemaTestCase{name: name}
	})
}

// TestUsersTestCase checks that the auxiliary accounts exist
type TestUsersTestCase struct {
	suite.Base
	name string
}

func (t *TestUsersTestCase) Name() string { return t.name }

func (t *TestUsersTestCase) Scenarios() []suite.Scenario { return nil }

func (t *TestUsersTestCase) Run(ctx context.Context, _ suite.Scenario) error {
	if t.F.PEM == nil {
		return errNoPEM
	}
	var n int
	err := t.F.PEM.DB.QueryRowContext(ctx,
		"SELECT count(*) FROM pg_roles WHERE rolname LIKE $1", pem.TestUserPrefix+"%").Scan(&n)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("no %s* roles found", pem.TestUserPrefix)
	}
	return nil
}

// SchemaTestCase checks the PEM schemas of the PEM database
type SchemaTestCase struct {
	suite.Base
	name string
}

func (t *SchemaTestCase) Name() string { return t.name }

func (t *SchemaTestCase) Scenarios() []suite.Scenario {
	return []suite.Scenario{
		{Name: "Check pem schema", Params: map[string]any{"schema": "pem"}},
		{Name: "Check pemdata schema", Params: map[string]any{"schema": "pemdata"}},
	}
}

func (t *SchemaTestCase) Run(ctx context.Context, sc suite.Scenario) error {
	if t.F.PEM == nil {
		return errNoPEM
	}
	schema, _ := sc.Param("schema", "pem").(string)
	var exists bool
	err := t.F.PEM.DB.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM pg_namespace WHERE nspname = $1)", schema).Scan(&exists)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("schema %s is missing", schema)
	}
	return nil
}
