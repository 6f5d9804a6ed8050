package main

import (
	"context"
	"fmt"
	"time"

	"github.com/skillflow360/skillflow/storage/database"
)

var migrateFunc = database.Migrate // mockable

func (cli *commandLine) migrate(args []string) error {
	db, err := cli.database()
	if err != nil {
		return err
	}
	return migrateFunc(args[0], db.DB, args[1:]...)
}

func (cli *commandLine) purgeSessions(ctx context.Context, olderThan time.Duration) error {
	store, err := cli.sessionStore()
	if err != nil {
		return err
	}
	n, err := store.PurgeExpired(ctx, cli.now().UTC().Add(-olderThan))
	if err != nil {
		return err
	}
	cli.logger.Info(fmt.Sprintf("purged %d expired session(s)", n))
	fmt.Fprintf(cli.out, "%d session(s) deleted.\n", n)
	return nil
}
