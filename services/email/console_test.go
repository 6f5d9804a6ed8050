package emailsvc

import (
	"net/mail"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillflow360/skillflow/core"
	"github.com/skillflow360/skillflow/core/evaluation"
	"github.com/skillflow360/skillflow/core/session"
	appfs "github.com/skillflow360/skillflow/fs"
	logsvc "github.com/skillflow360/skillflow/services/logger"
)

func TestConsoleService_ResultEmail(t *testing.T) {
	conf := &core.Config{
		AppName:          "SkillFlow",
		FrontendBaseURL:  "https://skillflow.test",
		DefaultFromEmail: mail.Address{Name: "SkillFlow", Address: "noreply@skillflow.test"},
	}
	logger := logsvc.NewNopLogger()
	core.ParseEmailTemplates(appfs.FS, true, logger)
	svc := NewConsoleServiceMock(conf, logger)

	student := session.Identity{Token: "t", Role: session.RoleStudent, UserID: 3, FullName: "Ada", Email: "ada@skillflow.test"}
	msg := evaluation.NewResultEmail(conf, student, "Go basics", evaluation.SubmitResponse{SubmissionID: 12, Score: 75})
	require.NotNil(t, msg)
	svc.SendMessages(msg)

	sent := svc.SentMessages()
	require.Len(t, sent, 1)
	assert.Equal(t, "Your result for Go basics", sent[0].Subject)
	assert.Contains(t, sent[0].TextContent, "Hello Ada,")
	assert.Contains(t, sent[0].TextContent, "Score: 75 / 100")
	assert.Contains(t, sent[0].TextContent, "https://skillflow.test/student/submissions/12/result")
	assert.Contains(t, sent[0].HTMLContent, "<strong>Go basics</strong>")

	assert.Nil(t, evaluation.NewResultEmail(conf, session.Identity{Token: "t"}, "Go basics", evaluation.SubmitResponse{}))
}

func TestConsoleService_SkipsEmpty(t *testing.T) {
	svc := NewConsoleServiceMock(&core.Config{}, logsvc.NewNopLogger())
	svc.SendMessages(&core.EmailMessage{To: []mail.Address{{Address: "a@b.c"}}})
	assert.Empty(t, svc.SentMessages())
}
