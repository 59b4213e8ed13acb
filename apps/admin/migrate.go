package main

import (
	"github.com/jmoiron/sqlx"

	"github.com/shulesys/shule/storage/database"
)

var migrateFunc = func(db *sqlx.DB) error { return database.Migrate(db.DB) } // mockable

func (cli *commandLine) migrate() error {
	return migrateFunc(cli.db)
}
