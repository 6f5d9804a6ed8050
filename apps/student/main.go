// Command skillflow is the terminal front-end of SkillFlow for students.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"

	"github.com/skillflow360/skillflow/core"
	"github.com/skillflow360/skillflow/core/user"
	logsvc "github.com/skillflow360/skillflow/services/logger"
	"github.com/skillflow360/skillflow/services/restapi"
	filestore "github.com/skillflow360/skillflow/storage/file"
)

// cli holds the dependencies of the commands; they are set up before any command runs.
type cli struct {
	verbose bool

	conf       *core.Config
	logger     *logsvc.ZapLogger
	api        *restapi.Client
	sessions   *filestore.SessionFile
	validate   *validator.Validate
	translator ut.Translator
	now        func() time.Time
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(new(cli)).ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:   "skillflow",
		Short: "SkillFlow for students, in the terminal",
		Long: `Take the published evaluations of SkillFlow from the terminal.

Sign in first with 'skillflow login'; the session is kept in the file set by
student.sessionFile until it expires or 'skillflow logout' is run.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setUp()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if c.logger != nil {
				_ = c.logger.Sync()
			}
		},
	}
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "log the API calls")

	root.AddCommand(
		c.loginCmd(),
		c.logoutCmd(),
		c.whoamiCmd(),
		c.evaluationsCmd(),
		c.takeCmd(),
		c.resultCmd(),
		c.historyCmd(),
		c.recommendationsCmd(),
	)
	return root
}

// setUp builds the missing dependencies from the configuration.
func (c *cli) setUp() error {
	if c.conf == nil {
		c.conf = core.NewConfig()
	}
	if c.logger == nil {
		logger, err := logsvc.NewZapLogger(c.verbose)
		if err != nil {
			return err
		}
		c.logger = logger
	}
	if c.api == nil {
		c.api = restapi.New(c.conf, c.logger)
	}
	if c.sessions == nil {
		c.sessions = filestore.NewSessionFile(c.conf.Student.SessionFile)
	}
	if c.validate == nil {
		c.validate, c.translator = core.NewValidator()
		user.InitValidators(c.validate, c.translator)
	}
	if c.now == nil {
		c.now = time.Now
	}
	return nil
}
