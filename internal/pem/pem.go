// Package pem connects to the enterprise-management subsystem and manages
// the objects the harness creates in it.
package pem

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"regress/internal/app"
	"regress/internal/config"
	"regress/internal/database"
	"regress/internal/logging"
)

// TestUserPrefix prefixes the auxiliary accounts created for multi-user tests
const TestUserPrefix = "pem_test_user_"

// Conn is a connection to the PEM database
type Conn struct {
	*database.Conn
}

// Open connects to the PEM database of cred
func Open(ctx context.Context, cred config.ServerCredential) (*Conn, error) {
	name := cred.PEMDatabase
	if name == "" {
		name = config.DefaultPEMDatabase
	}
	c, err := database.Open(ctx, cred, name)
	if err != nil {
		return nil, err
	}
	return &Conn{Conn: c}, nil
}

// LoginTester logs the test client into the web console
func LoginTester(ctx context.Context, client *app.TestClient) error {
	if err := client.Login(ctx); err != nil {
		return fmt.Errorf("log in test client: %w", err)
	}
	return nil
}

// RoleOID resolves the object id of a backend role
func (c *Conn) RoleOID(ctx context.Context, role string) (int64, error) {
	var oid int64
	err := c.DB.QueryRowContext(ctx, "SELECT oid FROM pg_roles WHERE rolname = $1", role).Scan(&oid)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("role %q does not exist", role)
	}
	if err != nil {
		return 0, fmt.Errorf("resolve role %q: %w", role, err)
	}
	return oid, nil
}

// BinaryPathKey is the preference id of a default binary path
func BinaryPathKey(kind string) string {
	return fmt.Sprintf("paths:binary_paths:%s_bin_dir", kind)
}

// ConfigurePreferences stores the default binary paths for the role uid.
// Keys are applied in sorted order; an empty map is a no-op.
func ConfigurePreferences(ctx context.Context, store *app.Store, paths map[string]string, uid int64) error {
	kinds := make([]string, 0, len(paths))
	for kind := range paths {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)

	for _, kind := range kinds {
		if paths[kind] == "" {
			continue
		}
		if err := store.SetPreference(ctx, uid, BinaryPathKey(kind), paths[kind]); err != nil {
			return err
		}
	}
	return nil
}

// Objects tracks the backend objects created for a run so they can be dropped
type Objects struct {
	conn *Conn
	log  *logging.Logger

	mu    sync.Mutex
	roles []string
}

// NewObjects creates a tracker over conn
func NewObjects(conn *Conn, log *logging.Logger) *Objects {
	if log == nil {
		log = logging.Discard()
	}
	return &Objects{conn: conn, log: log.Named("pem")}
}

// CreateTestUsers creates the auxiliary login roles used by multi-user tests
func (o *Objects) CreateTestUsers(ctx context.Context, password string, count int) ([]string, error) {
	var created []string
	for i := 0; i < count; i++ {
		name := TestUserPrefix + strings.ReplaceAll(uuid.NewString()[:8], "-", "")
		stmt := fmt.Sprintf("CREATE ROLE %s LOGIN PASSWORD %s", quoteIdent(name), quoteLiteral(password))
		if _, err := o.conn.DB.ExecContext(ctx, stmt); err != nil {
			return created, fmt.Errorf("create test user: %w", err)
		}
		o.mu.Lock()
		o.roles = append(o.roles, name)
		o.mu.Unlock()
		created = append(created, name)
	}
	return created, nil
}

// Roles returns the roles created so far
func (o *Objects) Roles() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.roles...)
}

// DropObjects drops every tracked role. Repeated calls only drop what is left.
func (o *Objects) DropObjects(ctx context.Context) error {
	if o == nil || o.conn == nil {
		return nil
	}
	o.mu.Lock()
	roles := o.roles
	o.roles = nil
	o.mu.Unlock()

	var errs []error
	for _, role := range roles {
		if _, err := o.conn.DB.ExecContext(ctx, "DROP ROLE IF EXISTS "+quoteIdent(role)); err != nil {
			o.log.CleanupFailed("drop role "+role, err)
			errs = append(errs, err)
			continue
		}
		o.log.Debug("Dropped test role", "role", role)
	}
	return errors.Join(errs...)
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
