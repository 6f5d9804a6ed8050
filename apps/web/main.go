package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"
	"time"

	"github.com/jmoiron/sqlx"

	echoweb "github.com/skillflow360/skillflow/apps/web/echo"
	"github.com/skillflow360/skillflow/core"
	"github.com/skillflow360/skillflow/core/catalog"
	"github.com/skillflow360/skillflow/core/evaluation"
	"github.com/skillflow360/skillflow/core/session"
	"github.com/skillflow360/skillflow/core/user"
	appfs "github.com/skillflow360/skillflow/fs"
	emailsvc "github.com/skillflow360/skillflow/services/email"
	logsvc "github.com/skillflow360/skillflow/services/logger"
	"github.com/skillflow360/skillflow/services/restapi"
	"github.com/skillflow360/skillflow/storage/database"
	inmemstore "github.com/skillflow360/skillflow/storage/database/inmem"
	sqlxstore "github.com/skillflow360/skillflow/storage/database/sqlx"
)

const attemptSweepInterval = time.Minute

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	// set up loggers
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "WEB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	dbLogger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	dbLogger.Enable(!conf.Debug)

	// set up session store
	var sessions session.Store
	if conf.Server.SessionStore == "memory" {
		sessions = inmemstore.NewSessionStore()
	} else {
		db, err := setUpDB(conf)
		if err != nil {
			logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
		}
		defer func() {
			if err = db.Close(); err != nil {
				dbLogger.Error("Failed to close", err)
			}
		}()
		sessions = sqlxstore.NewSessionStore(db, conf.SecretKey)
	}

	// set up services
	mailSvc := emailsvc.NewService(conf, logger)
	apiClient := restapi.New(conf, logger)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	validate, translator := core.NewValidator()
	evaluation.InitValidators(validate, translator)
	catalog.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	core.ParseEmailTemplates(appfs.FS, conf.Debug, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	attempts := evaluation.NewRegistry(conf.Attempts.TTL)
	go attempts.Run(ctx, attemptSweepInterval)

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	// Expose important info under /debug/vars.
	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)
	expvar.Publish("attempts", expvar.Func(func() interface{} { return attempts.Len() }))

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start Web Service

	server := echoweb.NewServer(
		echoweb.ServerDeps{
			Conf:       conf,
			Logger:     logger,
			API:        apiClient,
			Sessions:   sessions,
			Attempts:   attempts,
			Mailer:     mailSvc,
			Validate:   validate,
			Translator: translator,
		},
	)

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err := <-server.Errors():
		logger.Error(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		sctx, scancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer scancel()

		// asking listener to shutdown and shed load
		if err := server.Shutdown(sctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Error(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

func setUpDB(conf *core.Config) (*sqlx.DB, error) {
	ctx := context.Background()
	if err := database.CreateIfNotExist(ctx, conf); err != nil {
		return nil, err
	}

	db, err := database.Open(conf)
	if err != nil {
		return nil, err
	}
	if err = database.Ping(ctx, db, 30); err != nil {
		return nil, err
	}
	if err = database.Migrate("up", db.DB); err != nil {
		return nil, err
	}
	return db, nil
}
