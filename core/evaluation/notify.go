package evaluation

import (
	"net/mail"

	"github.com/skillflow360/skillflow/core"
	"github.com/skillflow360/skillflow/core/session"
)

const resultEmailTemplate = "evaluation_result"

// ResultEmailData feeds the evaluation_result email templates.
type ResultEmailData struct {
	StudentName string
	Title       string
	Score       int
	ResultPath  string
}

// NewResultEmail summarizes an accepted submission for the student.
// It returns nil when the student has no email address.
func NewResultEmail(conf *core.Config, student session.Identity, title string, res SubmitResponse) *core.EmailMessage {
	if student.Email == "" {
		return nil
	}
	to := mail.Address{Name: student.FullName, Address: student.Email}
	data := ResultEmailData{
		StudentName: student.DisplayName(),
		Title:       title,
		Score:       res.Score,
		ResultPath:  ResultPath(res.SubmissionID),
	}
	return core.NewTemplatedEmail(conf, to, "Your result for "+title, resultEmailTemplate, data)
}
