package main

import (
	"context"
	"fmt"
	"os"

	"crawshaw.io/sqlite"
	"crawshaw.io/sqlite/sqlitex"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/mantono/flakeid/internal/data/migrations"
	"github.com/mantono/flakeid/internal/data/registry"
	"github.com/mantono/flakeid/pkg/log"
)

// database holds the connection of whichever registry backend is configured.
// At most one field is set.
type database struct {
	sq  *sqlitex.Pool
	pg  *pgxpool.Pool
	rdb *redis.Client
	key string
}

func (db *database) open(ctx context.Context, f *cliFlags, logger log.Logger) error {
	var err error
	if f.redisAddr != "" {
		db.rdb, err = setupRedis(ctx, f, logger)
		db.key = f.redisPrefix
		return err
	}

	switch dbDriver(f.databaseURL) {
	case "postgres":
		db.pg, err = setupPostgres(ctx, f, logger)
	case "sqlite":
		db.sq, err = setupSQLite(ctx, f, logger)
	default:
		err = fmt.Errorf("unsupported database_url value or restricted path %q", f.databaseURL)
	}
	return err
}

func (db *database) registry() registry.Store {
	switch {
	case db.rdb != nil:
		return registry.NewRedis(db.rdb, db.key)
	case db.pg != nil:
		return registry.NewPostgres(db.pg)
	default:
		return registry.NewSQLite(db.sq)
	}
}

func (db *database) close() {
	if db.sq != nil {
		db.sq.Close()
	}
	if db.pg != nil {
		db.pg.Close()
	}
	if db.rdb != nil {
		db.rdb.Close()
	}
}

func dbDriver(dbURL string) string {
	if dbURL == "" {
		return ""
	}

	if _, err := pgx.ParseConfig(dbURL); err == nil {
		return "postgres"
	}

	if _, err := os.Stat(dbURL); err == nil {
		return "sqlite"
	}

	if err := os.WriteFile(dbURL, []byte(""), 0644); err == nil {
		os.Remove(dbURL)
		return "sqlite"
	}

	return ""
}

func setupSQLite(ctx context.Context, f *cliFlags, logger log.Logger) (*sqlitex.Pool, error) {
	conn, err := sqlite.OpenConn(f.databaseURL, 0)
	if err != nil {
		return nil, fmt.Errorf("open sqlite dbfile: %w", err)
	}

	if err := sqliteInit(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("init sqlite: %w", err)
	}

	if err := conn.Close(); err != nil {
		return nil, fmt.Errorf("sqlite init close: %w", err)
	}

	pool, err := sqlitex.Open(f.databaseURL, 0, 4)
	if err != nil {
		return nil, fmt.Errorf("create sqlite pool: %w", err)
	}

	log.Debug(logger).Log("msg", "connected to db", "backend", "sqlite")
	return pool, nil
}

func sqliteInit(conn *sqlite.Conn) error {
	if err := sqlitex.ExecTransient(conn, "PRAGMA journal_mode=WAL;", nil); err != nil {
		return err
	}
	return sqlitex.ExecScript(conn, migrations.SQLite)
}

func setupPostgres(ctx context.Context, f *cliFlags, logger log.Logger) (*pgxpool.Pool, error) {
	dbpool, err := pgxpool.Connect(ctx, f.databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	if _, err := dbpool.Exec(ctx, migrations.Postgres); err != nil {
		dbpool.Close()
		return nil, fmt.Errorf("migrate postgres: %w", err)
	}

	log.Debug(logger).Log("msg", "connected to db", "backend", "postgres")
	return dbpool, nil
}

func setupRedis(ctx context.Context, f *cliFlags, logger log.Logger) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: f.redisAddr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", f.redisAddr, err)
	}

	log.Debug(logger).Log("msg", "connected to db", "backend", "redis")
	return client, nil
}
