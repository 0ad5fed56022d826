package harness

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"
	"strings"
	"sync"
)

// recorder is a database/sql driver that records statements and answers
// SELECT VERSION() with a fixed banner
type recorder struct {
	version string

	mu    sync.Mutex
	stmts []string
}

func (r *recorder) open() *sql.DB {
	return sql.OpenDB(r)
}

func (r *recorder) statements(prefix string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, s := range r.stmts {
		if strings.HasPrefix(s, prefix) {
			out = append(out, s)
		}
	}
	return out
}

func (r *recorder) Connect(context.Context) (driver.Conn, error) { return &recorderConn{r: r}, nil }

func (r *recorder) Driver() driver.Driver { return recorderDriver{r} }

type recorderDriver struct{ r *recorder }

func (d recorderDriver) Open(string) (driver.Conn, error) { return &recorderConn{r: d.r}, nil }

type recorderConn struct{ r *recorder }

func (c *recorderConn) Prepare(string) (driver.Stmt, error) {
	return nil, errors.New("prepared statements are not supported")
}

func (c *recorderConn) Close() error { return nil }

func (c *recorderConn) Begin() (driver.Tx, error) { return nil, errors.New("transactions are not supported") }

func (c *recorderConn) ExecContext(_ context.Context, query string, _ []driver.NamedValue) (driver.Result, error) {
	c.r.mu.Lock()
	c.r.stmts = append(c.r.stmts, query)
	c.r.mu.Unlock()
	return driver.RowsAffected(0), nil
}

func (c *recorderConn) QueryContext(_ context.Context, query string, _ []driver.NamedValue) (driver.Rows, error) {
	if !strings.HasPrefix(query, "SELECT VERSION()") {
		return nil, errors.New("unexpected query: " + query)
	}
	return &versionRows{value: c.r.version}, nil
}

type versionRows struct {
	value string
	done  bool
}

func (r *versionRows) Columns() []string { return []string{"version"} }

func (r *versionRows) Close() error { return nil }

func (r *versionRows) Next(dest []driver.Value) error {
	if r.done {
		return io.EOF
	}
	r.done = true
	dest[0] = r.value
	return nil
}
