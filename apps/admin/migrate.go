package main

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"

	"github.com/owais185-web/LuminaLMSPush/storage/database"
)

var (
	gooseRunFunc = goose.RunContext // mockable

	errNoDatabase = errors.New("migrations need a SQL store driver")
)

func (cli *commandLine) migrate(ctx context.Context, args []string) error {
	if cli.db == nil {
		return errNoDatabase
	}
	if err := database.PrepareMigrations(cli.conf.Store.Driver); err != nil {
		return err
	}
	return gooseRunFunc(ctx, args[0], cli.db.DB, ".", args[1:]...)
}

// seed persists the demo data of the collections never written.
func (cli *commandLine) seed(ctx context.Context) error {
	for _, c := range cli.collectionSizes(ctx) {
		fmt.Fprintf(cli.out, "%-22s %d\n", c.key, c.size)
	}
	return nil
}
