package main

import (
	"context"

	"github.com/trezcool/academia/apps"
	"github.com/trezcool/academia/storage/database"
)

var migrateFunc = database.RunMigrations // mockable

func (cli *commandLine) migrate(args []string) error {
	if cli.db == nil {
		return apps.NewArgumentError("migrate needs the postgres database engine")
	}
	return migrateFunc(context.Background(), cli.db, args[0], args[1:]...)
}
