package harness

import (
	"context"
	"sync"
	"time"

	"regress/internal/app"
	"regress/internal/browser"
	"regress/internal/config"
	"regress/internal/database"
	"regress/internal/domain"
	"regress/internal/logging"
	"regress/internal/pem"
	"regress/internal/suite"
)

// cleanupTimeout bounds each backend call made while tearing down
const cleanupTimeout = 30 * time.Second

// RunContext holds every resource acquired during one run.
// Fields are filled in step order and may be nil when a step was not reached.
type RunContext struct {
	Server        config.ServerCredential
	DB            *pem.Conn
	Maintenance   *database.Conn
	PEM           *pem.Conn
	FixturePEM    *pem.Conn
	Objects       *pem.Objects
	Coverage      *app.Coverage
	App           *app.Instance
	Starter       *app.Starter
	Client        *app.TestClient
	Driver        *browser.Driver
	GUIServerURL  string
	ServerInfo    domain.ServerInfo
	DatabaseName  string
	ServerVersion string

	log *logging.Logger

	mu             sync.Mutex
	scratchDropped bool
	serverDeleted  bool
	cleaned        bool
}

// NewRunContext creates an empty context for one run
func NewRunContext(log *logging.Logger) *RunContext {
	if log == nil {
		log = logging.Discard()
	}
	return &RunContext{log: log}
}

// Fixtures builds the shared objects injected into generators
func (rc *RunContext) Fixtures() *suite.Fixtures {
	return &suite.Fixtures{
		App:           rc.App,
		Driver:        rc.Driver,
		Client:        rc.Client,
		Server:        rc.Server,
		ServerInfo:    rc.ServerInfo,
		DatabaseName:  rc.DatabaseName,
		PEM:           rc.FixturePEM,
		GUIServerURL:  rc.GUIServerURL,
		ServerVersion: rc.ServerVersion,
	}
}

// DropObjects drops the auxiliary accounts. Cleanup calls it before closing
// the connections; as exit hook it only drops what is left.
func (rc *RunContext) DropObjects() {
	ctx, cancel := context.WithTimeout(context.Background(), cleanupTimeout)
	defer cancel()
	if err := rc.Objects.DropObjects(ctx); err != nil {
		rc.log.CleanupFailed("drop test objects", err)
	}
}

// DropScratchDatabase removes the scratch database once
func (rc *RunContext) DropScratchDatabase(ctx context.Context) {
	rc.mu.Lock()
	if rc.scratchDropped || rc.DatabaseName == "" || rc.Maintenance == nil {
		rc.mu.Unlock()
		return
	}
	rc.scratchDropped = true
	rc.mu.Unlock()

	if err := rc.Maintenance.DropDatabase(ctx, rc.DatabaseName); err != nil {
		rc.log.CleanupFailed("drop database "+rc.DatabaseName, err)
		return
	}
	rc.log.Debug("Dropped scratch database", "database", rc.DatabaseName)
}

// DeleteTestServer removes the parent server node once
func (rc *RunContext) DeleteTestServer(ctx context.Context) {
	rc.mu.Lock()
	if rc.serverDeleted || rc.ServerInfo.ServerID == 0 || rc.App == nil {
		rc.mu.Unlock()
		return
	}
	rc.serverDeleted = true
	rc.mu.Unlock()

	if err := rc.App.Store().DeleteServer(ctx, rc.ServerInfo.ServerID); err != nil {
		rc.log.CleanupFailed("delete test server", err)
		return
	}
	rc.log.Debug("Deleted test server", "id", rc.ServerInfo.ServerID)
}

// Cleanup releases everything the run acquired. The first call does the work;
// later calls return immediately. Failures are logged, never returned.
func (rc *RunContext) Cleanup() {
	rc.mu.Lock()
	if rc.cleaned {
		rc.mu.Unlock()
		return
	}
	rc.cleaned = true
	rc.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), cleanupTimeout)
	defer cancel()

	rc.Driver.Close()
	if rc.Client != nil {
		if err := rc.Client.Logout(ctx); err != nil {
			rc.log.Debug("Test client logout failed", "error", err)
		}
	}
	rc.DeleteTestServer(ctx)
	rc.DropScratchDatabase(ctx)
	// Objects run on FixturePEM, which is closed below
	rc.DropObjects()
	if rc.Starter != nil {
		if err := rc.Starter.Stop(ctx); err != nil {
			rc.log.CleanupFailed("stop application", err)
		}
	}
	if rc.App != nil {
		if err := rc.App.Close(); err != nil {
			rc.log.CleanupFailed("close application store", err)
		}
	}

	for _, c := range []*pem.Conn{rc.FixturePEM, rc.PEM, rc.DB} {
		if c == nil {
			continue
		}
		if err := c.Close(); err != nil {
			rc.log.CleanupFailed("close connection "+c.Name, err)
		}
	}
	if err := rc.Maintenance.Close(); err != nil {
		rc.log.CleanupFailed("close maintenance connection", err)
	}
	rc.log.Debug("Run resources released")
}
