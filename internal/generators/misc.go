package generators

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"regress/internal/app"
	"regress/internal/suite"
)

func init() {
	register("pgadmin.misc.tests", "PingTestCase", func(name string) suite.Generator {
		return &PingTestCase{name: name}
	})
}

// PingTestCase checks that the application answers its ping endpoint
type PingTestCase struct {
	suite.Base
	name string
}

func (t *PingTestCase) Name() string { return t.name }

func (t *PingTestCase) Scenarios() []suite.Scenario {
	return []suite.Scenario{
		{Name: "Ping the application", Params: map[string]any{"repeat": 1}},
		{Name: "Ping the application twice", Params: map[string]any{"repeat": 2}},
	}
}

func (t *PingTestCase) Run(ctx context.Context, sc suite.Scenario) error {
	if t.F.Client == nil {
		return errNoClient
	}
	repeat, _ := sc.Param("repeat", 1).(int)
	for i := 0; i < repeat; i++ {
		resp, err := t.F.Client.Get(ctx, app.PingPath)
		if err != nil {
			return err
		}
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("ping returned %s", resp.Status)
		}
		if !strings.Contains(strings.ToUpper(string(body)), "PING") {
			return fmt.Errorf("unexpected ping body %q", body)
		}
	}
	return nil
}
