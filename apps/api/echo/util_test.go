package echoapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/schoolmate/backend/core"
	"github.com/schoolmate/backend/core/student"
	"github.com/schoolmate/backend/core/subject"
	"github.com/schoolmate/backend/core/user"
	emailsvc "github.com/schoolmate/backend/services/email"
	logsvc "github.com/schoolmate/backend/services/logger"
	dummydb "github.com/schoolmate/backend/storage/database/dummy"
	testutil "github.com/schoolmate/backend/tests"
)

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

type testEnv struct {
	app        *Server
	usrRepo    user.Repository
	stdRepo    student.Repository
	usrSvc     *user.Service
	studentSvc *student.Service
	subjectSvc *subject.Service
	mailSvc    *emailsvc.ConsoleServiceMock
}

func setup(t *testing.T) *testEnv {
	return setupWithAccounts(t, nil)
}

// setupWithAccounts lets wrap replace the account store of the student service.
func setupWithAccounts(t *testing.T, wrap func(*user.Service) student.AccountStore) *testEnv {
	t.Helper()

	db := dummydb.Open()
	conf := core.NewTestConfig()
	logger := logsvc.NewDiscardLogger()
	validate, translator := testutil.NewValidator()

	env := &testEnv{
		usrRepo: dummydb.NewUserRepository(db),
		stdRepo: dummydb.NewStudentRepository(db),
		mailSvc: emailsvc.NewConsoleServiceMock(conf, logger),
	}
	env.usrSvc = user.NewService(env.usrRepo, validate)

	var accounts student.AccountStore = env.usrSvc
	if wrap != nil {
		accounts = wrap(env.usrSvc)
	}
	env.studentSvc = student.NewService(env.stdRepo, accounts, env.mailSvc, validate, logger, conf)
	env.subjectSvc = subject.NewService(dummydb.NewSubjectRepository(db), validate)

	env.app = NewServer("", nil, &Deps{
		Conf:       conf,
		Logger:     logger,
		UserSvc:    env.usrSvc,
		StudentSvc: env.studentSvc,
		SubjectSvc: env.subjectSvc,
		Validate:   validate,
		Translator: translator,
	})
	return env
}

// staffToken creates an active teacher and returns a token for them.
func (env *testEnv) staffToken(t *testing.T) string {
	usr := testutil.CreateUser(t, env.usrRepo, "Teacher", "teacher@schoolmate.edu", "", user.TeacherRoles, true)
	return getToken(t, env.app, usr)
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
	extra    interface{}
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func getToken(t *testing.T, app *Server, usr user.User) string {
	token, err := app.auth.GenerateToken(app.auth.UserClaims(usr))
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func marchallList(t *testing.T, objs ...interface{}) []byte {
	if objs == nil {
		objs = []interface{}{}
	}
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList() failed: %v", err)
	}
	return data
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
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func runHTTPTests(t *testing.T, app *Server, tests []httpTest) {
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			method := tt.method
			if method == "" {
				method = http.MethodGet
			}
			req, rec := newAuthRequest(method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}
