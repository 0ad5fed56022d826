package generators

import (
	"context"
	"errors"
	"fmt"

	"regress/internal/app"
	"regress/internal/config"
	"regress/internal/suite"
)

func init() {
	register("pgadmin.browser.tests", "LoginTestCase", func(name string) suite.Generator {
		return &LoginTestCase{name: name}
	})
}

// LoginTestCase logs fresh clients in with valid and invalid credentials
type LoginTestCase struct {
	suite.Base
	name string
}

func (t *LoginTestCase) Name() string { return t.name }

func (t *LoginTestCase) Scenarios() []suite.Scenario {
	return []suite.Scenario{
		{Name: "Login with valid credentials", Params: map[string]any{"valid": true}},
		{Name: "Login with an invalid password", Params: map[string]any{"valid": false}},
	}
}

func (t *LoginTestCase) Run(ctx context.Context, sc suite.Scenario) error {
	if t.F.Client == nil || t.F.Client.Credentials == nil {
		return errNoClient
	}
	creds := *t.F.Client.Credentials
	valid, _ := sc.Param("valid", true).(bool)
	if !valid {
		creds.Password += "_wrong"
	}

	client, err := app.NewTestClient(t.F.Client.BaseURL(), &config.LoginCredentials{
		Username: creds.Username,
		Password: creds.Password,
	})
	if err != nil {
		return err
	}
	err = client.Login(ctx)
	switch {
	case valid && err != nil:
		return err
	case !valid && err == nil:
		return fmt.Errorf("login with an invalid password succeeded for %s", creds.Username)
	case !valid && !errors.Is(err, app.ErrLoginFailed):
		return err
	}
	if valid {
		return client.Logout(ctx)
	}
	return nil
}
