// Package app controls the application under test: its embedded
// configuration store, its process and the HTTP test client.
package app

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"regress/internal/config"
	"regress/internal/logging"
)

// Options configure an application instance
type Options struct {
	SQLitePath string
	ServerMode bool
	// Command starts the application; empty means it is already running at URL
	Command  []string
	URL      string
	Coverage *Coverage
	Log      *logging.Logger
}

// Instance is the application under test
type Instance struct {
	opts     Options
	store    *Store
	settings map[string]string
	log      *logging.Logger
}

// New opens the configuration store of the application
func New(opts Options) (*Instance, error) {
	if opts.SQLitePath == "" {
		return nil, fmt.Errorf("application config path is required")
	}
	if opts.URL == "" {
		opts.URL = config.DefaultAppURL
	}
	log := opts.Log
	if log == nil {
		log = logging.Discard()
	}
	store, err := OpenStore(opts.SQLitePath)
	if err != nil {
		return nil, err
	}
	return &Instance{
		opts:  opts,
		store: store,
		settings: map[string]string{
			"SERVER_MODE":  pyBool(opts.ServerMode),
			"SQLITE_PATH":  strconv.Quote(opts.SQLitePath),
			"TESTING_MODE": "True",
		},
		log: log.Named("app"),
	}, nil
}

// Upgrade runs the configuration schema upgrade
func (i *Instance) Upgrade(ctx context.Context) error {
	if err := i.store.Upgrade(ctx); err != nil {
		return fmt.Errorf("upgrade application schema: %w", err)
	}
	i.log.Debug("Configuration schema upgraded", "version", SchemaVersion)
	return nil
}

// DisableCSRF turns off CSRF protection so the test client can post forms
func (i *Instance) DisableCSRF() {
	i.settings["WTF_CSRF_ENABLED"] = "False"
}

// SetCookieDomain fixes the session cookie domain; empty means host-only cookies
func (i *Instance) SetCookieDomain(domain string) {
	if domain == "" {
		i.settings["SESSION_COOKIE_DOMAIN"] = "None"
		return
	}
	i.settings["SESSION_COOKIE_DOMAIN"] = strconv.Quote(domain)
}

// ServerMode reports whether the application runs multi-user
func (i *Instance) ServerMode() bool {
	return i.opts.ServerMode
}

// Store returns the configuration store
func (i *Instance) Store() *Store {
	return i.store
}

// URL returns the address the application listens on
func (i *Instance) URL() string {
	return i.opts.URL
}

// Env returns the configuration overrides for the application process
func (i *Instance) Env() []string {
	keys := make([]string, 0, len(i.settings))
	for k := range i.settings {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	env := make([]string, 0, len(keys)+1)
	for _, k := range keys {
		env = append(env, "PGADMIN_CONFIG_"+k+"="+i.settings[k])
	}
	return append(env, i.opts.Coverage.Env()...)
}

// TestClient creates an HTTP client for the running application
func (i *Instance) TestClient(creds *config.LoginCredentials) (*TestClient, error) {
	return NewTestClient(i.opts.URL, creds)
}

// Close closes the configuration store
func (i *Instance) Close() error {
	return i.store.Close()
}

func pyBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}
