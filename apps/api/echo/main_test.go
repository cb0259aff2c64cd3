package echoapi_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"

	echoapi "github.com/trezcool/taqyeem/apps/api/echo"
	"github.com/trezcool/taqyeem/core"
	"github.com/trezcool/taqyeem/core/evaluation"
	"github.com/trezcool/taqyeem/core/person"
	"github.com/trezcool/taqyeem/core/report"
	"github.com/trezcool/taqyeem/core/visit"
	emailsvc "github.com/trezcool/taqyeem/services/email"
	inmemdb "github.com/trezcool/taqyeem/storage/database/inmem"
	"github.com/trezcool/taqyeem/tests"
)

const (
	accountID = "acc-1"
	userEmail = "supervisor@school.ae"
)

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

type testApp struct {
	server  *echoapi.Server
	conf    *core.Config
	persons person.Repository
	evals   evaluation.Repository
	storage *testutil.Storage
	mailSvc *emailsvc.ConsoleService
	token   string
}

func setup(t *testing.T) *testApp {
	conf := testutil.Config()
	logger := testutil.Logger()
	validate, translator := testutil.Validator()

	// set up DB & repos
	db := inmemdb.Open()
	personRepo := inmemdb.NewPersonRepository(db)
	evalRepo := inmemdb.NewEvaluationRepository(db)
	visitRepo := inmemdb.NewVisitRepository(db)

	// set up services
	storage := testutil.NewStorage()
	mailSvc := emailsvc.NewConsoleServiceMock(conf, logger)
	personSvc := person.NewService(personRepo, validate, logger)
	assembler, err := report.NewAssembler(core.ReportConfig{}, conf.Location, logger)
	if err != nil {
		t.Fatalf("NewAssembler() failed: %v", err)
	}
	evalSvc := evaluation.NewService(evaluation.Deps{
		Repo:      evalRepo,
		Persons:   personRepo,
		Assembler: assembler,
		Publisher: report.NewPublisher(storage),
		MailSvc:   mailSvc,
		Validate:  validate,
		Logger:    logger,
		Location:  conf.Location,
	})
	visitSvc := visit.NewService(visitRepo, validate, logger, conf.Location)

	// set up server
	server := echoapi.NewServer(echoapi.ServerDeps{
		Conf:          conf,
		Logger:        logger,
		PersonSvc:     personSvc,
		EvaluationSvc: evalSvc,
		VisitSvc:      visitSvc,
		Validate:      validate,
		Translator:    translator,
	})

	return &testApp{
		server:  server,
		conf:    conf,
		persons: personRepo,
		evals:   evalRepo,
		storage: storage,
		mailSvc: mailSvc,
		token:   getToken(t, conf, core.NewSession(accountID, userEmail)),
	}
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

func getToken(t *testing.T, conf *core.Config, sess core.Session) string {
	token, err := echoapi.GenerateToken(conf, echoapi.NewClaims(conf, sess))
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

func unmarshal(t *testing.T, rec *httptest.ResponseRecorder, dest interface{}) {
	if err := json.Unmarshal(rec.Body.Bytes(), dest); err != nil {
		t.Fatalf("unmarshal() failed: %v; body %s", err, rec.Body.String())
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

func runHTTPTests(t *testing.T, app *testApp, tests []httpTest) {
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			method := tt.method
			if method == "" {
				method = http.MethodGet
			}
			req, rec := newAuthRequest(method, tt.path, tt.token, tt.body)
			app.server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func TestServer_home(t *testing.T) {
	app := setup(t)
	req, rec := newRequest(http.MethodGet, "/")
	app.server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Welcome to Taqyeem API!", rec.Body.String())
}

func TestServer_auth(t *testing.T) {
	app := setup(t)
	conf := app.conf
	otherConf := *conf
	otherConf.SecretKey = "not-the-secret"

	runHTTPTests(t, app, []httpTest{
		{name: "Missing token", path: "/v1/persons", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "Bad signature", path: "/v1/persons", token: getToken(t, &otherConf, core.NewSession(accountID, userEmail)), wantCode: http.StatusUnauthorized},
		{name: "No account", path: "/v1/persons", token: getToken(t, conf, core.Session{}), wantCode: http.StatusUnauthorized},
		{name: "Signed in", path: "/v1/persons", token: app.token, wantCode: http.StatusOK, wantData: []byte("[]")},
	})
}
