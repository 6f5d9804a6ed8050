package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/skillflow360/skillflow/core"
	"github.com/skillflow360/skillflow/core/evaluation"
	"github.com/skillflow360/skillflow/services/restapi"
)

const maxBarWidth = 60

var runProgramFunc = runProgram // mockable

func runProgram(m tea.Model, in io.Reader, out io.Writer) (tea.Model, error) {
	opts := []tea.ProgramOption{tea.WithOutput(out)}
	if in != os.Stdin {
		opts = append(opts, tea.WithInput(in))
	}
	return tea.NewProgram(m, opts...).Run()
}

func (c *cli) takeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "take <evaluationID>",
		Short: "Take an evaluation",
		Long: `Starts (or resumes) the evaluation and opens it in the terminal.

Answers are kept locally until you submit with 's'. Leaving with 'q' submits nothing.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ident, err := c.student()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			a := evaluation.NewAttempt(c.api.As(ident), ident)
			defer a.Close()
			if err = a.Start(ctx, core.ParseID(args[0])); err != nil {
				return c.explain(err)
			}
			c.logger.Debug("attempt started", map[string]interface{}{"submissionId": a.View().SubmissionID}, ident)

			final, err := runProgramFunc(newTakeModel(ctx, a), cmd.InOrStdin(), cmd.OutOrStdout())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			m, _ := final.(takeModel)
			if m.result == nil {
				fmt.Fprintln(out, "Evaluation left, nothing was submitted.")
				return nil
			}
			grade := evaluation.GradeOf(m.result.Score)
			fmt.Fprintf(out, "Submitted! Score: %s\n",
				gradeStyle(grade).Render(fmt.Sprintf("%d / %d", m.result.Score, evaluation.MaxScore)))
			fmt.Fprintf(out, "Review it with 'skillflow result %d'.\n", m.result.SubmissionID)
			return nil
		},
	}
}

type submittedMsg struct {
	res evaluation.SubmitResponse
	err error
}

// takeModel is the evaluation screen: one question at a time, a progress bar of the answered ones.
type takeModel struct {
	ctx      context.Context
	attempt  *evaluation.Attempt
	view     evaluation.View
	progress progress.Model

	current    int // question shown
	cursor     int // option under the cursor
	submitting bool
	errMsg     string
	result     *evaluation.SubmitResponse
}

func newTakeModel(ctx context.Context, a *evaluation.Attempt) takeModel {
	p := progress.New(progress.WithDefaultGradient())
	p.Width = maxBarWidth
	m := takeModel{
		ctx:      ctx,
		attempt:  a,
		view:     a.View(),
		progress: p,
	}
	m.cursor = m.chosenIndex()
	return m
}

func (m takeModel) Init() tea.Cmd {
	return nil
}

func (m takeModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.progress.Width = min(msg.Width-4, maxBarWidth)
		return m, nil

	case submittedMsg:
		m.submitting = false
		m.view = m.attempt.View()
		if msg.err != nil {
			m.errMsg = userMessage(msg.err)
			return m, nil
		}
		m.result = &msg.res
		return m, tea.Quit

	case tea.KeyMsg:
		if m.submitting {
			if msg.String() == "ctrl+c" {
				return m, tea.Quit
			}
			return m, nil
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m takeModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q", "esc":
		return m, tea.Quit
	case "s":
		m.submitting = true
		m.errMsg = ""
		return m, m.submit()
	}
	q, ok := m.question()
	if !ok {
		return m, nil
	}

	switch key := msg.String(); key {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(q.Options)-1 {
			m.cursor++
		}
	case "right", "l", "tab":
		m.move(1)
	case "left", "h", "shift+tab":
		m.move(-1)
	case "enter", " ":
		m.choose(q, m.cursor)
	case "r":
		m.errMsg = ""
		if err := m.attempt.Reset(); err != nil {
			m.errMsg = userMessage(err)
		}
		m.view = m.attempt.View()
	default:
		// digits pick an option directly
		if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
			if i := int(key[0] - '1'); i < len(q.Options) {
				m.cursor = i
				m.choose(q, i)
			}
		}
	}
	return m, nil
}

func (m *takeModel) choose(q evaluation.QuestionView, option int) {
	if option < 0 || option >= len(q.Options) {
		return
	}
	m.errMsg = ""
	if err := m.attempt.Choose(q.ID, q.Options[option]); err != nil {
		m.errMsg = userMessage(err)
	}
	m.view = m.attempt.View()
}

func (m *takeModel) move(delta int) {
	next := m.current + delta
	if next < 0 || next >= len(m.view.Questions) {
		return
	}
	m.current = next
	m.cursor = m.chosenIndex()
}

func (m takeModel) submit() tea.Cmd {
	ctx, a := m.ctx, m.attempt
	return func() tea.Msg {
		res, err := a.Submit(ctx)
		return submittedMsg{res: res, err: err}
	}
}

func (m takeModel) question() (evaluation.QuestionView, bool) {
	if m.current < 0 || m.current >= len(m.view.Questions) {
		return evaluation.QuestionView{}, false
	}
	return m.view.Questions[m.current], true
}

// chosenIndex is the index of the chosen option of the current question, 0 when none.
func (m takeModel) chosenIndex() int {
	q, ok := m.question()
	if !ok {
		return 0
	}
	for i, o := range q.Options {
		if o == q.Chosen {
			return i
		}
	}
	return 0
}

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	selectedStyle = lipgloss.NewStyle().Bold(true)
	panelStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

func (m takeModel) View() string {
	v := m.view
	var sb strings.Builder

	sb.WriteString(headerStyle.Render(v.Title) + "\n")
	if v.Introduction.Valid && v.Introduction.String != "" {
		sb.WriteString(mutedStyle.Render(v.Introduction.String) + "\n")
	}
	sb.WriteString("\n" + m.progress.ViewAs(float64(v.Completion)/100))
	sb.WriteString(fmt.Sprintf("  %d/%d answered\n\n", v.Answered, v.Total))

	q, ok := m.question()
	if !ok {
		sb.WriteString("This evaluation has no question.\n\n")
		switch {
		case m.submitting:
			sb.WriteString(warningStyle.Render("Submitting...") + "\n")
		case m.errMsg != "":
			sb.WriteString(errorStyle.Render(m.errMsg) + "\n")
		}
		sb.WriteString(mutedStyle.Render("s submit  q quit") + "\n")
		return sb.String()
	}

	var body strings.Builder
	body.WriteString(titleStyle.Render(fmt.Sprintf("Question %d of %d", q.Number, v.Total)) + "\n")
	body.WriteString(q.Label + "\n\n")
	for i, o := range q.Options {
		cursor := "  "
		if i == m.cursor {
			cursor = "> "
		}
		mark := "( )"
		if q.Chosen == o {
			mark = "(•)"
		}
		line := fmt.Sprintf("%s%s %d. %s", cursor, mark, i+1, o)
		if i == m.cursor {
			line = selectedStyle.Render(line)
		}
		body.WriteString(line + "\n")
	}
	sb.WriteString(panelStyle.Render(strings.TrimRight(body.String(), "\n")) + "\n\n")

	switch {
	case m.submitting:
		sb.WriteString(warningStyle.Render("Submitting...") + "\n")
	case m.errMsg != "":
		sb.WriteString(errorStyle.Render(m.errMsg) + "\n")
	case v.Answered < v.Total:
		sb.WriteString(mutedStyle.Render(fmt.Sprintf("%d question(s) left unanswered will be submitted empty.", v.Total-v.Answered)) + "\n")
	}
	sb.WriteString(mutedStyle.Render("↑/↓ option  ←/→ question  enter choose  r reset  s submit  q quit") + "\n")
	return sb.String()
}

// userMessage is the text shown for a failure inside the evaluation screen.
func userMessage(err error) string {
	var apiErr *restapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.UserMessage()
	}
	return errors.Cause(err).Error()
}
