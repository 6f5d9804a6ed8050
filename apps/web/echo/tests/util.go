package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

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
	inmemstore "github.com/skillflow360/skillflow/storage/database/inmem"
	"github.com/skillflow360/skillflow/tests"
)

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	cookie   *http.Cookie
	wantCode int
	wantData []byte
}

// upstreamCall is a request received by the fake SkillFlow API.
type upstreamCall struct {
	Method string
	Path   string
	Query  string
	Auth   string
	Body   []byte
}

type upstreamRoute struct {
	code int
	body string
}

// upstream fakes the SkillFlow REST services. Unknown routes answer 404.
type upstream struct {
	*httptest.Server

	mu     sync.Mutex
	routes map[string]upstreamRoute
	calls  []upstreamCall
}

func newUpstream(t *testing.T) *upstream {
	u := &upstream{routes: make(map[string]upstreamRoute)}
	u.Server = httptest.NewServer(http.HandlerFunc(u.serve))
	t.Cleanup(u.Close)
	return u
}

// handle registers the answer to method and path, path being relative to /api/v1.
func (u *upstream) handle(method, path string, code int, body string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.routes[method+" /api/v1"+path] = upstreamRoute{code: code, body: body}
}

func (u *upstream) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	u.mu.Lock()
	u.calls = append(u.calls, upstreamCall{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.RawQuery,
		Auth:   r.Header.Get("Authorization"),
		Body:   body,
	})
	route, ok := u.routes[r.Method+" "+r.URL.Path]
	u.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"no such route"}`))
		return
	}
	w.WriteHeader(route.code)
	_, _ = w.Write([]byte(route.body))
}

func (u *upstream) Calls() []upstreamCall {
	u.mu.Lock()
	defer u.mu.Unlock()
	return append([]upstreamCall(nil), u.calls...)
}

// lastCall returns the last request received on path, failing the test if there is none.
func (u *upstream) lastCall(t *testing.T, method, path string) upstreamCall {
	t.Helper()
	calls := u.Calls()
	for i := len(calls) - 1; i >= 0; i-- {
		if calls[i].Method == method && calls[i].Path == "/api/v1"+path {
			return calls[i]
		}
	}
	t.Fatalf("no %s %s received by the API", method, path)
	return upstreamCall{}
}

type sessionStore interface {
	session.Store
	Len() int
}

type mailer interface {
	core.EmailService
	SentMessages() []core.EmailMessage
}

type testEnv struct {
	app      echoweb.Server
	conf     *core.Config
	api      *upstream
	sessions sessionStore
	attempts *evaluation.Registry
	mailer   mailer
}

func setup(t *testing.T) *testEnv {
	conf := testutil.Config()
	conf.Notifications.ResultEmail = true
	logger := logsvc.NewNopLogger()

	// set up the fake API & stores
	api := newUpstream(t)
	sessions := inmemstore.NewSessionStore()
	attempts := evaluation.NewRegistry(time.Hour)

	// set up services
	mailSvc := emailsvc.NewConsoleServiceMock(conf, logger)
	client := restapi.NewWithHTTPClient(api.URL, &http.Client{Timeout: 5 * time.Second}, logger)

	validate, translator := core.NewValidator()
	evaluation.InitValidators(validate, translator)
	catalog.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	core.ParseEmailTemplates(appfs.FS, true, logger)

	// set up server
	app := echoweb.NewServer(
		echoweb.ServerDeps{
			Conf:       conf,
			Logger:     logger,
			API:        client,
			Sessions:   sessions,
			Attempts:   attempts,
			Mailer:     mailSvc,
			Validate:   validate,
			Translator: translator,
		},
	)

	return &testEnv{
		app:      app,
		conf:     conf,
		api:      api,
		sessions: sessions,
		attempts: attempts,
		mailer:   mailSvc,
	}
}

// signIn stores a session for a user of the role and returns its cookie.
func (env *testEnv) signIn(t *testing.T, role session.Role, userID int64) (*http.Cookie, session.Identity) {
	t.Helper()
	ident, err := env.sessions.Save(context.Background(), testutil.Identity(role, userID))
	if err != nil {
		t.Fatalf("sessions.Save() failed: %v", err)
	}
	token, err := echoweb.GenerateToken(env.conf, ident)
	if err != nil {
		t.Fatalf("GenerateToken() failed: %v", err)
	}
	return &http.Cookie{Name: echoweb.SessionCookie, Value: token}, ident
}

func (env *testEnv) do(method, path string, cookie *http.Cookie, data ...[]byte) *httptest.ResponseRecorder {
	req, rec := newCookieRequest(method, path, cookie, data...)
	env.app.ServeHTTP(rec, req)
	return rec
}

func (env *testEnv) run(t *testing.T, tests []httpTest) {
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			method := tt.method
			if method == "" {
				method = http.MethodGet
			}
			rec := env.do(method, tt.path, tt.cookie, tt.body)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func newCookieRequest(method, path string, cookie *http.Cookie, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newCookieRequest(method, path, nil, data...)
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func unmarshallBody(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("json.Unmarshal(%s) failed: %v", rec.Body.String(), err)
	}
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	if j1 == nil || j2 == nil {
		return false, nil
	}
	return assert.ElementsMatch(t, j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func sessionCookieOf(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == echoweb.SessionCookie {
			return c
		}
	}
	return nil
}
