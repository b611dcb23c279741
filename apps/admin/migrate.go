package main

import (
	"fmt"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/storage/database"
)

func (cli *commandLine) migrate(args []string) error {
	return migrateRunFunc(cli.db, args[0], args[1:]...)
}

func runMigration(db *sqlx.DB, command string, args ...string) error {
	m, err := database.NewMigrator(db)
	if err != nil {
		return err
	}

	switch command {
	case "up":
		err = m.Up()
	case "down":
		err = m.Steps(-1)
	case "drop":
		err = m.Drop()
	case "version":
		v, dirty, vErr := m.Version()
		if vErr != nil {
			return vErr
		}
		fmt.Printf("version: %d (dirty: %t)\n", v, dirty)
		return nil
	case "force":
		if len(args) == 0 {
			return errors.New("force must be of form: admin migrate force VERSION")
		}
		v, pErr := strconv.Atoi(args[0])
		if pErr != nil {
			return errors.Errorf("version must be a number (got '%s')", args[0])
		}
		err = m.Force(v)
	default:
		return errors.Errorf("%q: no such command", command)
	}

	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}
