package main

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillflow360/skillflow/core"
	"github.com/skillflow360/skillflow/core/session"
	logsvc "github.com/skillflow360/skillflow/services/logger"
	inmemstore "github.com/skillflow360/skillflow/storage/database/inmem"
	testutil "github.com/skillflow360/skillflow/tests"
)

var now = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

type purgerStore interface {
	session.Store
	sessionPurger
	Len() int
}

func setup(t *testing.T) (*commandLine, *bytes.Buffer) {
	out := new(bytes.Buffer)
	cli := &commandLine{
		conf:   testutil.Config(),
		logger: logsvc.NewNopLogger(),
		out:    out,
		now:    func() time.Time { return now },
		db:     new(sqlx.DB),
	}
	return cli, out
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
}

func (tt cliTest) check(t *testing.T, err error) {
	t.Helper()
	switch {
	case tt.wantErr != nil:
		assert.Equal(t, tt.wantErr, err)
	case tt.wantErrStr != "":
		if assert.Error(t, err) {
			assert.Equal(t, tt.wantErrStr, err.Error())
		}
	default:
		assert.NoError(t, err)
	}
}

func Test_commandLine_usage(t *testing.T) {
	cli, out := setup(t)

	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "migrate without command", args: []string{"migrate"}, wantErr: errHelp},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			out.Reset()
			tt.check(t, cli.run(context.Background(), args))
			assert.Contains(t, out.String(), "Usage")
		})
	}
}

func Test_commandLine_migrate(t *testing.T) {
	cli, _ := setup(t)

	orig := migrateFunc
	t.Cleanup(func() { migrateFunc = orig })
	migrateFunc = func(command string, db *sql.DB, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to":
			if len(args) == 0 {
				return fmt.Errorf("up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION")
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		case "create":
			if len(args) == 0 {
				return fmt.Errorf("create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]")
			}
		case "down-to":
			if len(args) == 0 {
				return fmt.Errorf("down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION")
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	tests := []cliTest{
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "create: no args", args: []string{"migrate", "create"}, wantErrStr: "create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]"},
		{name: "down-to: no args", args: []string{"migrate", "down-to"}, wantErrStr: "down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION"},
		{name: "down-to: non-int arg", args: []string{"migrate", "down-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-by-one", args: []string{"migrate", "up-by-one"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "down-to", args: []string{"migrate", "down-to", "1"}},
		{name: "redo", args: []string{"migrate", "redo"}},
		{name: "reset", args: []string{"migrate", "reset"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "version", args: []string{"migrate", "version"}},
		{name: "create", args: []string{"migrate", "create", "sessions_index", "sql"}},
		{name: "fix", args: []string{"migrate", "fix"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, cli.run(context.Background(), args))
		})
	}
}

func Test_commandLine_migrate_openFails(t *testing.T) {
	cli, _ := setup(t)
	cli.db = nil

	origOpen, origMigrate := openDBFunc, migrateFunc
	t.Cleanup(func() { openDBFunc, migrateFunc = origOpen, origMigrate })
	openDBFunc = func(*core.Config) (*sqlx.DB, error) { return nil, fmt.Errorf("DB ping timeout") }
	migrateFunc = func(string, *sql.DB, ...string) error {
		t.Error("migrate called without a database")
		return nil
	}

	err := cli.run(context.Background(), []string{"admin", "migrate", "up"})
	if assert.Error(t, err) {
		assert.Equal(t, "DB ping timeout", err.Error())
	}
}

func Test_commandLine_createdb(t *testing.T) {
	cli, out := setup(t)

	orig := createDBFunc
	t.Cleanup(func() { createDBFunc = orig })

	var called int
	createDBFunc = func(ctx context.Context, conf *core.Config) error {
		called++
		assert.Equal(t, cli.conf, conf)
		return nil
	}
	require.NoError(t, cli.run(context.Background(), []string{"admin", "createdb"}))
	assert.Equal(t, 1, called)
	assert.Contains(t, out.String(), "is ready")

	createDBFunc = func(context.Context, *core.Config) error { return fmt.Errorf("creating database: denied") }
	err := cli.run(context.Background(), []string{"admin", "createdb"})
	if assert.Error(t, err) {
		assert.Equal(t, "creating database: denied", err.Error())
	}
}

func Test_commandLine_purgeSessions(t *testing.T) {
	ctx := context.Background()

	newStore := func(t *testing.T) purgerStore {
		store := inmemstore.NewSessionStore()
		for _, exp := range []time.Time{
			now.Add(-48 * time.Hour),
			now.Add(-time.Hour),
			now.Add(time.Hour),
		} {
			ident := testutil.Identity(session.RoleStudent, 3)
			ident.ExpiresAt = exp
			_, err := store.Save(ctx, ident)
			require.NoError(t, err)
		}
		return store
	}

	tests := []struct {
		cliTest
		wantDeleted int
	}{
		{cliTest: cliTest{name: "expired", args: []string{"purgesessions"}}, wantDeleted: 2},
		{cliTest: cliTest{name: "expired for a day", args: []string{"purgesessions", "-olderthan", "24h"}}, wantDeleted: 1},
		{cliTest: cliTest{name: "negative duration", args: []string{"purgesessions", "-olderthan", "-1h"}, wantErr: errHelp}},
		{cliTest: cliTest{name: "help", args: []string{"purgesessions", "-h"}, wantErr: errHelp}},
		{cliTest: cliTest{name: "invalid duration", args: []string{"purgesessions", "-olderthan", "lol"}, wantErrStr: `invalid value "lol" for flag -olderthan: parse error`}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			cli, out := setup(t)
			store := newStore(t)
			cli.sessions = store

			tt.check(t, cli.run(ctx, args))
			assert.Equal(t, 3-tt.wantDeleted, store.Len())
			if tt.wantErr == nil && tt.wantErrStr == "" {
				assert.Contains(t, out.String(), fmt.Sprintf("%d session(s) deleted.", tt.wantDeleted))
			}
		})
	}
}
