// Package database manages connections to the backend servers under test
// and the scratch database created for a run.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand"
	"net"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"

	"regress/internal/config"
)

const (
	DriverPostgres = "pgx"
	DriverMySQL    = "mysql"
)

// Conn is an open backend connection. Close may be called more than once.
type Conn struct {
	DB     *sql.DB
	Driver string
	Name   string

	closeOnce sync.Once
	closeErr  error
}

// DriverFor maps the configured driver name to a database/sql driver
func DriverFor(cred config.ServerCredential) string {
	switch strings.ToLower(cred.Driver) {
	case "mysql", "mariadb":
		return DriverMySQL
	default:
		return DriverPostgres
	}
}

// DSN builds the connection string for dbName on the credential's server
func DSN(cred config.ServerCredential, dbName string) string {
	port := cred.Port
	if DriverFor(cred) == DriverMySQL {
		if port == 0 {
			port = 3306
		}
		cfg := mysql.NewConfig()
		cfg.User = cred.DBUsername
		cfg.Passwd = cred.DBPassword
		cfg.Net = "tcp"
		cfg.Addr = net.JoinHostPort(cred.Host, strconv.Itoa(port))
		cfg.DBName = dbName
		return cfg.FormatDSN()
	}

	if port == 0 {
		port = 5432
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(cred.DBUsername, cred.DBPassword),
		Host:   net.JoinHostPort(cred.Host, strconv.Itoa(port)),
		Path:   "/" + dbName,
	}
	if cred.SSLMode != "" {
		u.RawQuery = url.Values{"sslmode": {cred.SSLMode}}.Encode()
	}
	return u.String()
}

// Open connects to dbName and verifies the connection
func Open(ctx context.Context, cred config.ServerCredential, dbName string) (*Conn, error) {
	driver := DriverFor(cred)
	db, err := sql.Open(driver, DSN(cred, dbName))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database server: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database server: %w", err)
	}
	return &Conn{DB: db, Driver: driver, Name: dbName}, nil
}

// Close closes the connection pool
func (c *Conn) Close() error {
	if c == nil || c.DB == nil {
		return nil
	}
	c.closeOnce.Do(func() {
		c.closeErr = c.DB.Close()
	})
	return c.closeErr
}

// Version returns the backend's version string
func (c *Conn) Version(ctx context.Context) (string, error) {
	var v string
	if err := c.DB.QueryRowContext(ctx, "SELECT VERSION()").Scan(&v); err != nil {
		return "", fmt.Errorf("query server version: %w", err)
	}
	return v, nil
}

// DatabaseExists checks if a database exists
func (c *Conn) DatabaseExists(ctx context.Context, name string) (bool, error) {
	query := "SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = $1)"
	if c.Driver == DriverMySQL {
		query = "SELECT EXISTS(SELECT SCHEMA_NAME FROM INFORMATION_SCHEMA.SCHEMATA WHERE SCHEMA_NAME = ?)"
	}
	var exists bool
	err := c.DB.QueryRowContext(ctx, query, name).Scan(&exists)
	return exists, err
}

// CreateDatabase creates a new database
func (c *Conn) CreateDatabase(ctx context.Context, name string) error {
	if !IsValidName(name) {
		return fmt.Errorf("invalid database name: %s", name)
	}
	query := fmt.Sprintf("CREATE DATABASE %s", c.quote(name))
	if c.Driver == DriverMySQL {
		query = fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", c.quote(name))
	}
	if _, err := c.DB.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create database %s: %w", name, err)
	}
	return nil
}

// DropDatabase drops a database, disconnecting its sessions first on PostgreSQL
func (c *Conn) DropDatabase(ctx context.Context, name string) error {
	if !IsValidName(name) {
		return fmt.Errorf("invalid database name: %s", name)
	}
	if c.Driver == DriverPostgres {
		_, err := c.DB.ExecContext(ctx,
			"SELECT pg_terminate_backend(pid) FROM pg_stat_activity WHERE datname = $1 AND pid <> pg_backend_pid()", name)
		if err != nil {
			return fmt.Errorf("disconnect sessions of %s: %w", name, err)
		}
	}
	if _, err := c.DB.ExecContext(ctx, fmt.Sprintf("DROP DATABASE IF EXISTS %s", c.quote(name))); err != nil {
		return fmt.Errorf("failed to drop database %s: %w", name, err)
	}
	return nil
}

func (c *Conn) quote(ident string) string {
	if c.Driver == DriverMySQL {
		return "`" + ident + "`"
	}
	return `"` + ident + `"`
}

// IsValidName validates database name (basic check)
func IsValidName(name string) bool {
	if len(name) == 0 || len(name) > 63 {
		return false
	}
	invalid := []string{"'", "\"", "`", ";", "--", "/*", "*/", " ", "DROP", "DELETE", "TRUNCATE"}
	upper := strings.ToUpper(name)
	for _, s := range invalid {
		if strings.Contains(upper, s) {
			return false
		}
	}
	return true
}

// ScratchName returns a unique-enough scratch database name for one run
func ScratchName(rng *rand.Rand) string {
	n := config.ScratchDBMin + rng.Intn(config.ScratchDBMax-config.ScratchDBMin+1)
	return fmt.Sprintf("%s%d", config.ScratchDBPrefix, n)
}
