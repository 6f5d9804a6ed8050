package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/skillflow360/skillflow/core"
	"github.com/skillflow360/skillflow/storage/database"
	sqlxstore "github.com/skillflow360/skillflow/storage/database/sqlx"
)

var (
	createDBFunc = database.CreateIfNotExist // mockable
	openDBFunc   = openDB                    // mockable

	errHelp = errors.New("help provided")
)

type sessionPurger interface {
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}

type commandLine struct {
	conf     *core.Config
	logger   core.Logger
	out      io.Writer
	now      func() time.Time
	db       *sqlx.DB // opened on first use
	sessions sessionPurger
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  createdb - create the database user and the session database if missing")
	fmt.Fprintln(cli.out, "  migrate COMMAND [ARGS] - run a goose command (up, down, status, ...) against the session database")
	fmt.Fprintln(cli.out, "  purgesessions [-olderthan DURATION] - delete the sessions expired for at least DURATION")
}

func (cli *commandLine) run(ctx context.Context, args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	purgeCmd := flag.NewFlagSet("purgesessions", flag.ContinueOnError)
	purgeCmd.SetOutput(cli.out)
	purgeOlderThan := purgeCmd.Duration("olderthan", 0, "only purge the sessions expired for at least this long (e.g. 24h)")

	switch args[1] {
	case "createdb":
		if err := createDBFunc(ctx, cli.conf); err != nil {
			return err
		}
		fmt.Fprintf(cli.out, "Database %q is ready.\n", cli.conf.Database.Name)
		return nil
	case "migrate":
		if len(args) < 3 {
			fmt.Fprintln(cli.out, "Usage: migrate COMMAND [ARGS]")
			return errHelp
		}
		return cli.migrate(args[2:])
	case "purgesessions":
		if err := purgeCmd.Parse(args[2:]); err != nil {
			if err == flag.ErrHelp {
				return errHelp
			}
			return err
		}
		if *purgeOlderThan < 0 {
			purgeCmd.Usage()
			return errHelp
		}
		return cli.purgeSessions(ctx, *purgeOlderThan)
	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) database() (*sqlx.DB, error) {
	if cli.db == nil {
		db, err := openDBFunc(cli.conf)
		if err != nil {
			return nil, err
		}
		cli.db = db
	}
	return cli.db, nil
}

func (cli *commandLine) sessionStore() (sessionPurger, error) {
	if cli.sessions == nil {
		db, err := cli.database()
		if err != nil {
			return nil, err
		}
		cli.sessions = sqlxstore.NewSessionStore(db, cli.conf.SecretKey)
	}
	return cli.sessions, nil
}

func openDB(conf *core.Config) (*sqlx.DB, error) {
	db, err := database.Open(conf)
	if err != nil {
		return nil, err
	}
	if err = database.Ping(context.Background(), db, 3); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
