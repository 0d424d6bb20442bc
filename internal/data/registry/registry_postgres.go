package registry

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// Postgres stores node assignments in PostgreSQL.
type Postgres struct{ db *pgxpool.Pool }

// NewPostgres creates a Postgres client.
func NewPostgres(db *pgxpool.Pool) *Postgres {
	return &Postgres{db: db}
}

// Assign returns the node of host, allocating the next free one on first use.
func (d *Postgres) Assign(ctx context.Context, host string) (*Assignment, error) {
	a, err := create(host)
	if err != nil {
		return nil, err
	}

	q := `INSERT INTO nodes ( id, host ) VALUES ( $1, $2 ) ON CONFLICT ( host ) DO NOTHING;`
	if _, err := d.db.Exec(ctx, q, a.ID, a.Host); err != nil {
		return nil, fmt.Errorf("store node assignment in postgres: %w", checkPostgres(err))
	}

	return d.Find(ctx, host)
}

// Find returns the node assignment of host.
func (d *Postgres) Find(ctx context.Context, host string) (*Assignment, error) {
	var (
		a    = &Assignment{}
		node int64
	)

	q := fmt.Sprintf(`SELECT %s FROM nodes WHERE host = $1;`, strings.Join(columns(), `, `))
	if err := d.db.QueryRow(ctx, q, host).Scan(
		&node,
		&a.ID,
		&a.Host,
		&a.CreatedAt,
	); err == pgx.ErrNoRows {
		return nil, Error{missingHost: host}
	} else if err != nil {
		return nil, err
	}

	a.Node = uint64(node)
	a.CreatedAt = a.CreatedAt.UTC()
	return checkNode(a)
}

func checkPostgres(err error) error {
	var dbErr *pgconn.PgError
	if !errors.As(err, &dbErr) {
		return err
	}

	switch dbErr.Code {
	case "23514":
		if kv, ok := constraints[dbErr.ConstraintName]; ok {
			return Error{invalid: kv}
		}
	}

	return err
}
