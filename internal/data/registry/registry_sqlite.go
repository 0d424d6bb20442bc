package registry

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"crawshaw.io/sqlite"
	"crawshaw.io/sqlite/sqlitex"
)

// SQLite stores node assignments in SQLite.
type SQLite struct{ db *sqlitex.Pool }

// NewSQLite creates a SQLite client.
func NewSQLite(db *sqlitex.Pool) *SQLite {
	return &SQLite{db: db}
}

// Assign returns the node of host, allocating the next free one on first use.
func (d *SQLite) Assign(ctx context.Context, host string) (*Assignment, error) {
	a, err := create(host)
	if err != nil {
		return nil, err
	}

	conn := d.db.Get(ctx)
	if conn == nil {
		return nil, context.Canceled
	}
	defer d.db.Put(conn)

	stmt := conn.Prep(
		`INSERT INTO nodes ( id, host ) VALUES ( $id, $host )
		 ON CONFLICT ( host ) DO NOTHING;`)
	stmt.SetText("$id", a.ID)
	stmt.SetText("$host", a.Host)
	if _, err := stmt.Step(); err != nil {
		return nil, fmt.Errorf("store node assignment in sqlite: %w", checkSqlite(err))
	}

	return findSqlite(conn, host)
}

// Find returns the node assignment of host.
func (d *SQLite) Find(ctx context.Context, host string) (*Assignment, error) {
	conn := d.db.Get(ctx)
	if conn == nil {
		return nil, context.Canceled
	}
	defer d.db.Put(conn)

	return findSqlite(conn, host)
}

func findSqlite(conn *sqlite.Conn, host string) (*Assignment, error) {
	stmt := conn.Prep(fmt.Sprintf(
		`SELECT %s FROM nodes WHERE host = $host;`, strings.Join(columns(), `, `)))
	stmt.SetText("$host", host)
	if found, err := stmt.Step(); err != nil {
		return nil, err
	} else if !found {
		return nil, Error{missingHost: host}
	}

	a := &Assignment{
		ID:   stmt.GetText("id"),
		Host: stmt.GetText("host"),
		Node: uint64(stmt.GetInt64("node")),
	}

	var err error
	a.CreatedAt, err = time.Parse("2006-01-02 15:04:05", stmt.GetText("created_at"))
	if err != nil {
		return nil, err
	}

	if err := stmt.Reset(); err != nil {
		return nil, err
	}
	return checkNode(a)
}

func checkSqlite(err error) error {
	var sErr sqlite.Error
	if !errors.As(err, &sErr) {
		return err
	}

	switch sErr.Code {
	case sqlite.SQLITE_CONSTRAINT_CHECK:
		c := strings.Split(sErr.Msg, ": ")
		if kv, ok := constraints[c[len(c)-1]]; ok {
			return Error{invalid: kv}
		}
	}

	return fmt.Errorf("registry: %w", err)
}
