// Command admin maintains the session database of the SkillFlow web front-end.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/skillflow360/skillflow/core"
	logsvc "github.com/skillflow360/skillflow/services/logger"
)

func main() {
	conf := core.NewConfig()

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stderr, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cli := commandLine{
		conf:   conf,
		logger: logger,
		out:    os.Stdout,
		now:    time.Now,
	}
	err := cli.run(ctx, os.Args)
	if cli.db != nil {
		if cerr := cli.db.Close(); cerr != nil {
			logger.Error("closing database", cerr)
		}
	}
	if err != nil {
		if err != errHelp {
			logger.Error("admin command failed", err)
		}
		stop()
		os.Exit(1)
	}
}
