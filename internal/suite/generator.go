package suite

import (
	"context"
	"errors"

	"regress/internal/app"
	"regress/internal/browser"
	"regress/internal/config"
	"regress/internal/domain"
	"regress/internal/pem"
)

// Fixtures are the shared objects injected into every generator before expansion
type Fixtures struct {
	App           *app.Instance
	Driver        *browser.Driver
	Client        *app.TestClient
	Server        config.ServerCredential
	ServerInfo    domain.ServerInfo
	DatabaseName  string
	PEM           *pem.Conn
	GUIServerURL  string
	ServerVersion string
}

// Generator is one runnable test that expands into scenario cases
type Generator interface {
	// Name is the fully-qualified name used for skip-list matching
	Name() string
	SetFixtures(f *Fixtures) error
	Scenarios() []Scenario
	Run(ctx context.Context, sc Scenario) error
}

// Factory creates a fresh generator per suite build
type Factory struct {
	Name string
	New  func() Generator
}

// Module is a test module entry: a registry key and its generator factories
type Module struct {
	Key       string
	Factories []Factory
}

// Base implements fixture injection for generators that embed it
type Base struct {
	F *Fixtures
}

// SetFixtures stores the shared fixtures
func (b *Base) SetFixtures(f *Fixtures) error {
	if f == nil {
		return errors.New("nil fixtures")
	}
	b.F = f
	return nil
}
