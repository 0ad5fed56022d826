package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"

	_ "modernc.org/sqlite"

	"regress/internal/config"
	"regress/internal/domain"
)

// SchemaVersion is the configuration schema the store upgrades to
const SchemaVersion = 3

const schema = `
CREATE TABLE IF NOT EXISTS version (
    name  TEXT PRIMARY KEY,
    value INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS servergroup (
    id      INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id INTEGER NOT NULL DEFAULT 1,
    name    TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS server (
    id             INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id        INTEGER NOT NULL DEFAULT 1,
    servergroup_id INTEGER NOT NULL REFERENCES servergroup(id),
    name           TEXT NOT NULL,
    host           TEXT NOT NULL,
    port           INTEGER NOT NULL,
    maintenance_db TEXT NOT NULL,
    username       TEXT NOT NULL,
    comment        TEXT NOT NULL DEFAULT '',
    sslmode        TEXT NOT NULL DEFAULT 'prefer'
);
CREATE TABLE IF NOT EXISTS user_preferences (
    pid   TEXT NOT NULL,
    uid   INTEGER NOT NULL,
    value TEXT NOT NULL,
    PRIMARY KEY (pid, uid)
);
`

// ErrServerGroupNotFound is returned when a server is added to a missing group
var ErrServerGroupNotFound = errors.New("server group not found")

// Store is the application's embedded configuration database
type Store struct {
	db *sql.DB

	closeOnce sync.Once
}

// OpenStore opens (or creates) the configuration database at path
func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open config db: %w", err)
	}
	// a single writer keeps sqlite from reporting SQLITE_BUSY between fixtures
	db.SetMaxOpenConns(1)
	return &Store{db: db}, nil
}

// Upgrade brings the schema to SchemaVersion and seeds the default server group
func (s *Store) Upgrade(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upgrade: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO servergroup (id, name) SELECT 1, 'Servers' WHERE NOT EXISTS (SELECT 1 FROM servergroup)`); err != nil {
		return fmt.Errorf("seed server group: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO version (name, value) VALUES ('ConfigDB', ?)
		 ON CONFLICT(name) DO UPDATE SET value = excluded.value`, SchemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	return tx.Commit()
}

// Version returns the recorded schema version, 0 before the first upgrade
func (s *Store) Version(ctx context.Context) (int, error) {
	var v int
	err := s.db.QueryRowContext(ctx, `SELECT value FROM version WHERE name = 'ConfigDB'`).Scan(&v)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || isNoSuchTable(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("query schema version: %w", err)
	}
	return v, nil
}

// CreateServer registers the backend server as a node under groupID
func (s *Store) CreateServer(ctx context.Context, cred config.ServerCredential, groupID int) (domain.ServerInfo, error) {
	var exists bool
	if err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM servergroup WHERE id = ?)`, groupID).Scan(&exists); err != nil {
		return domain.ServerInfo{}, fmt.Errorf("check server group: %w", err)
	}
	if !exists {
		return domain.ServerInfo{}, fmt.Errorf("%w: %d", ErrServerGroupNotFound, groupID)
	}

	sslmode := cred.SSLMode
	if sslmode == "" {
		sslmode = "prefer"
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO server (servergroup_id, name, host, port, maintenance_db, username, comment, sslmode)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		groupID, cred.Name, cred.Host, cred.Port, cred.MaintenanceDB, cred.DBUsername, cred.Comment, sslmode,
	)
	if err != nil {
		return domain.ServerInfo{}, fmt.Errorf("insert server: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.ServerInfo{}, fmt.Errorf("read server id: %w", err)
	}

	return domain.ServerInfo{
		ServerID:      id,
		ServerGroupID: groupID,
		Name:          cred.Name,
		Host:          cred.Host,
		Port:          cred.Port,
		Username:      cred.DBUsername,
		MaintenanceDB: cred.MaintenanceDB,
	}, nil
}

// DeleteServer removes a server node. Deleting a missing server is not an error.
func (s *Store) DeleteServer(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM server WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete server %d: %w", id, err)
	}
	return nil
}

// ServerCount returns the number of registered servers
func (s *Store) ServerCount(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM server`).Scan(&n)
	return n, err
}

// SetPreference stores a user preference, replacing an earlier value
func (s *Store) SetPreference(ctx context.Context, uid int64, pid, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_preferences (pid, uid, value) VALUES (?, ?, ?)
		ON CONFLICT(pid, uid) DO UPDATE SET value = excluded.value`, pid, uid, value)
	if err != nil {
		return fmt.Errorf("set preference %s: %w", pid, err)
	}
	return nil
}

// Preference returns a stored preference and whether it exists
func (s *Store) Preference(ctx context.Context, uid int64, pid string) (string, bool, error) {
	var v string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM user_preferences WHERE pid = ? AND uid = ?`, pid, uid).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("query preference %s: %w", pid, err)
	}
	return v, true, nil
}

// Close closes the database. Safe to call more than once.
func (s *Store) Close() error {
	var err error
	s.closeOnce.Do(func() {
		err = s.db.Close()
	})
	return err
}

func isNoSuchTable(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "no such table")
}
