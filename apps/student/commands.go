package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/skillflow360/skillflow/core"
	"github.com/skillflow360/skillflow/core/evaluation"
	"github.com/skillflow360/skillflow/core/recommendation"
	"github.com/skillflow360/skillflow/core/session"
	"github.com/skillflow360/skillflow/core/user"
	"github.com/skillflow360/skillflow/services/restapi"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errNotSignedIn  = errors.New("not signed in, run 'skillflow login' first")
	errStudentsOnly = errors.New("the terminal client is for students, administrators use the web front-end")
)

// student returns the saved session, which must be a student's.
func (c *cli) student() (session.Identity, error) {
	ident, err := c.sessions.Load()
	if err != nil {
		if errors.Cause(err) == session.ErrNotFound {
			return session.Identity{}, errNotSignedIn
		}
		return session.Identity{}, err
	}
	if !ident.IsStudent() {
		return session.Identity{}, errStudentsOnly
	}
	return ident, nil
}

// explain turns err into the message shown to the student.
// A token rejected by the API ends the saved session.
func (c *cli) explain(err error) error {
	if err == nil {
		return nil
	}
	var apiErr *restapi.Error
	if errors.As(err, &apiErr) {
		c.logger.Debug("API call failed", err)
		if apiErr.Kind == restapi.KindUnauthorized {
			if derr := c.sessions.Delete(); derr != nil {
				c.logger.Warn("deleting session file", derr)
			}
		}
		return errors.New(apiErr.UserMessage())
	}
	if vErr, ok := errors.Cause(err).(*core.ValidationError); ok {
		if len(vErr.Fields) == 0 {
			return vErr
		}
		msgs := make([]string, 0, len(vErr.Fields))
		for _, f := range vErr.Fields {
			msgs = append(msgs, f.Field+": "+f.Error)
		}
		return errors.New(strings.Join(msgs, "; "))
	}
	return err
}

func (c *cli) loginCmd() *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with your SkillFlow account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if email == "" {
				fmt.Fprint(out, "Email: ")
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return errors.Wrap(err, "reading email")
				}
				email = strings.TrimSpace(line)
			}
			fmt.Fprint(out, "Password: ")
			pwd, err := readPasswordFunc(int(syscall.Stdin))
			fmt.Fprintln(out)
			if err != nil {
				return errors.Wrap(err, "reading password")
			}

			svc := user.NewService(c.api, c.validate, c.translator)
			ident, err := svc.Login(cmd.Context(), user.Credentials{Email: email, Password: string(pwd)})
			if err != nil {
				return c.explain(err)
			}
			if !ident.IsStudent() {
				return errStudentsOnly
			}

			now := c.now().UTC()
			ident.CreatedAt = now
			ident.ExpiresAt = now.Add(c.conf.Server.SessionTTL)
			if err = c.sessions.Save(ident); err != nil {
				return err
			}
			c.logger.Debug("session saved", map[string]interface{}{"path": c.sessions.Path()}, ident)
			fmt.Fprintf(out, "Signed in as %s (level %s).\n", ident.DisplayName(), ident.Level())
			return nil
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "account email, prompted when empty")
	return cmd
}

func (c *cli) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.sessions.Delete(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
			return nil
		},
	}
}

func (c *cli) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in student",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ident, err := c.student()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s <%s>\n", ident.DisplayName(), ident.Email)
			fmt.Fprintf(out, "level:   %s\n", ident.Level())
			fmt.Fprintf(out, "expires: %s\n", ident.ExpiresAt.Local().Format("2006-01-02 15:04"))
			return nil
		},
	}
}

func (c *cli) evaluationsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "evaluations",
		Short: "List the evaluations open to students",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ident, err := c.student()
			if err != nil {
				return err
			}
			evals, err := c.api.As(ident).ListPublishedEvaluations(cmd.Context())
			if err != nil {
				return c.explain(err)
			}
			out := cmd.OutOrStdout()
			if len(evals) == 0 {
				fmt.Fprintln(out, "No evaluation is open for now.")
				return nil
			}
			rows := make([][]string, 0, len(evals))
			for _, e := range evals {
				questions := "-"
				if e.QuestionsCount.Valid {
					questions = strconv.Itoa(e.QuestionsCount.Int)
				}
				rows = append(rows, []string{strconv.FormatInt(e.ID, 10), e.Title, string(e.PrerequisiteLevel), questions})
			}
			printTable(out, []string{"ID", "TITLE", "LEVEL", "QUESTIONS"}, rows)
			fmt.Fprintln(out, mutedStyle.Render("Start one with 'skillflow take <ID>'."))
			return nil
		},
	}
}

func (c *cli) resultCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "result <submissionID>",
		Short: "Review a submitted evaluation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ident, err := c.student()
			if err != nil {
				return err
			}
			res, err := evaluation.Review(cmd.Context(), c.api.As(ident), core.ParseID(args[0]))
			if err != nil {
				return c.explain(err)
			}
			printResult(cmd.OutOrStdout(), res)
			return nil
		},
	}
}

func (c *cli) historyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "List your submissions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ident, err := c.student()
			if err != nil {
				return err
			}
			subs, err := c.api.As(ident).ListStudentSubmissions(cmd.Context(), ident.UserID)
			if err != nil {
				return c.explain(err)
			}
			out := cmd.OutOrStdout()
			if len(subs) == 0 {
				fmt.Fprintln(out, "No submission yet.")
				return nil
			}
			rows := make([][]string, 0, len(subs))
			for _, s := range subs {
				score := "-"
				if s.Score.Valid {
					score = fmt.Sprintf("%d/%d", s.Score.Int, evaluation.MaxScore)
				}
				rows = append(rows, []string{
					strconv.FormatInt(s.SubmissionID, 10),
					s.EvaluationTitle,
					string(s.Status),
					score,
					s.StartedAt.Local().Format("2006-01-02 15:04"),
				})
			}
			printTable(out, []string{"ID", "EVALUATION", "STATUS", "SCORE", "STARTED"}, rows)
			return nil
		},
	}
}

func (c *cli) recommendationsCmd() *cobra.Command {
	var (
		filter recommendation.Filter
		limit  int
	)
	cmd := &cobra.Command{
		Use:   "recommendations",
		Short: "Show the activities recommended to you",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ident, err := c.student()
			if err != nil {
				return err
			}
			view, err := recommendation.NewService(c.api.As(ident)).ForStudent(cmd.Context(), ident, limit, filter)
			if err != nil {
				return c.explain(err)
			}
			printRecommendations(cmd.OutOrStdout(), view)
			return nil
		},
	}
	cmd.Flags().StringVar(&filter.Search, "search", "", "keep the activities whose title or reason contains this text")
	cmd.Flags().StringVar(&filter.Level, "level", "", "ALL, BEGINNER, INTERMEDIATE or ADVANCED")
	cmd.Flags().IntVar(&limit, "limit", recommendation.DefaultLimit, "number of recommendations asked to the server")
	return cmd
}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

func printTable(w io.Writer, headers []string, rows [][]string) {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...)
	fmt.Fprintln(w, t.String())
}

func gradeStyle(g evaluation.Grade) lipgloss.Style {
	switch g {
	case evaluation.GradePassed:
		return successStyle
	case evaluation.GradeNeedsImprovement:
		return warningStyle
	default:
		return errorStyle
	}
}

func printResult(w io.Writer, res evaluation.Result) {
	d := res.Detail
	fmt.Fprintln(w, titleStyle.Render(d.EvaluationTitle))
	fmt.Fprintf(w, "Score: %s  %s\n",
		gradeStyle(res.Grade).Render(fmt.Sprintf("%d / %d", res.Score, res.MaxScore)),
		gradeStyle(res.Grade).Render(string(res.Grade)),
	)
	fmt.Fprintf(w, "%d of %d correct, %d points each\n\n", res.CorrectCount, res.Total, res.PointsPerQuestion)

	for i, a := range d.Answers {
		mark := errorStyle.Render("✗")
		if a.Correct {
			mark = successStyle.Render("✓")
		}
		chosen := a.ChosenAnswer
		if a.Unanswered() {
			chosen = mutedStyle.Render("(no answer)")
		}
		fmt.Fprintf(w, "%s %d. %s\n   your answer: %s\n", mark, i+1, a.QuestionLabel, chosen)
		if !a.Correct && a.CorrectAnswer.Valid {
			fmt.Fprintf(w, "   correct answer: %s\n", a.CorrectAnswer.String)
		}
	}
}

func printRecommendations(w io.Writer, view recommendation.View) {
	if view.Next == nil {
		fmt.Fprintln(w, "No recommendation matches.")
		return
	}
	fmt.Fprintf(w, "Target level: %s, average score: %.0f\n\n", view.TargetLevel, view.StudentAvgScore)
	fmt.Fprintln(w, titleStyle.Render("Next: "+view.Next.Title))
	fmt.Fprintf(w, "  %s, %d%% %s\n  %s\n", view.Next.Level, view.Next.Confidence, view.Next.Label, view.Next.Reason)
	if len(view.Others) == 0 {
		return
	}
	rows := make([][]string, 0, len(view.Others))
	for _, it := range view.Others {
		rows = append(rows, []string{it.Title, it.Level, fmt.Sprintf("%d%%", it.Confidence), it.Reason})
	}
	fmt.Fprintln(w)
	printTable(w, []string{"ACTIVITY", "LEVEL", "CONFIDENCE", "WHY"}, rows)
}
