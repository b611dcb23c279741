package database

import (
	"context"
	"embed"
	"net/url"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Open opens a Postgres connection pool and verifies it with a few pings;
// a freshly started database container may need a moment to accept writes.
func Open(conf core.DatabaseConfig) (*sqlx.DB, error) {
	db, err := sqlx.Open(conf.Engine, DSN(conf))
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}

	var pingErr error
	for attempt := 1; attempt <= 5; attempt++ {
		if pingErr = db.Ping(); pingErr == nil {
			break
		}
		time.Sleep(time.Duration(attempt) * 100 * time.Millisecond)
	}
	if pingErr != nil {
		_ = db.Close()
		return nil, errors.Wrap(pingErr, "pinging database")
	}
	return db, nil
}

// DSN builds the Postgres connection string from config.
func DSN(conf core.DatabaseConfig) string {
	sslMode := "require"
	if conf.DisableTLS {
		sslMode = "disable"
	}
	q := make(url.Values)
	q.Set("sslmode", sslMode)
	q.Set("timezone", "utc")

	u := url.URL{
		Scheme:   conf.Engine,
		User:     url.UserPassword(conf.User, conf.Password),
		Host:     conf.Address(),
		Path:     conf.Name,
		RawQuery: q.Encode(),
	}
	return u.String()
}

// NewMigrator returns a migrator backed by the embedded migration files.
func NewMigrator(db *sqlx.DB) (*migrate.Migrate, error) {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, errors.Wrap(err, "loading migrations")
	}
	driver, err := postgres.WithInstance(db.DB, &postgres.Config{})
	if err != nil {
		return nil, errors.Wrap(err, "preparing migration driver")
	}
	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return nil, errors.Wrap(err, "preparing migrations")
	}
	return m, nil
}

// Migrate applies all pending schema migrations.
func Migrate(db *sqlx.DB) error {
	m, err := NewMigrator(db)
	if err != nil {
		return err
	}
	if err = m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return errors.Wrap(err, "applying migrations")
	}
	return nil
}

// StatusCheck returns nil only if the database can serve a trivial query.
func StatusCheck(ctx context.Context, db *sqlx.DB) error {
	var tmp bool
	return db.QueryRowContext(ctx, "SELECT true").Scan(&tmp)
}
