package echoapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fastbreakhq/fastbreak/core"
	"github.com/fastbreakhq/fastbreak/core/emailtmpl"
	"github.com/fastbreakhq/fastbreak/core/guardian"
	"github.com/fastbreakhq/fastbreak/core/payment"
	"github.com/fastbreakhq/fastbreak/core/player"
	emailsvc "github.com/fastbreakhq/fastbreak/services/email"
	paymentsvc "github.com/fastbreakhq/fastbreak/services/payment"
	inmemdb "github.com/fastbreakhq/fastbreak/storage/database/inmem"
)

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

type testEnv struct {
	server Server
	conf   *core.Config

	gdnRepo guardian.Repository
	gdnSvc  guardian.Service
	plySvc  player.Service
	paySvc  payment.Service
	tmplSvc emailtmpl.Service

	processor *paymentsvc.DummyProcessor
}

func setup(t *testing.T) *testEnv {
	t.Helper()
	emailsvc.ClearSentMessages()

	conf := &core.Config{
		Env:             "TEST",
		TestMode:        true,
		AppName:         "Fastbreak",
		SecretKey:       []byte("test-secret"),
		FrontendBaseURL: "http://localhost:3000",
		DefaultFromName: "Fastbreak Camps",
		DefaultFromAddr: "noreply@localhost",
		Server: core.ServerConfig{
			JWTExpirationDelta:        time.Hour,
			JWTRefreshExpirationDelta: 4 * time.Hour,
		},
	}

	db, err := inmemdb.Open()
	require.NoError(t, err)

	env := &testEnv{conf: conf, processor: paymentsvc.NewDummyProcessor()}
	env.gdnRepo = inmemdb.NewGuardianRepository(db)

	logger := nopLogger{}
	mailSvc := emailsvc.NewConsoleServiceMock(conf)
	env.gdnSvc = guardian.NewService(env.gdnRepo, mailSvc, conf, logger)
	env.plySvc = player.NewService(inmemdb.NewPlayerRepository(db), logger)
	env.paySvc = payment.NewService(inmemdb.NewPaymentRepository(db), env.processor, env.plySvc, env.gdnSvc, logger)
	env.tmplSvc = emailtmpl.NewService(inmemdb.NewEmailTemplateRepository(db), env.gdnSvc, env.plySvc, mailSvc)

	env.server = NewServer(&Options{
		Conf:           conf,
		Logger:         logger,
		DisableReqLogs: true,
		GuardianSvc:    env.gdnSvc,
		PlayerSvc:      env.plySvc,
		PaymentSvc:     env.paySvc,
		EmailSvc:       env.tmplSvc,
	})
	return env
}

func (env *testEnv) createGuardian(t *testing.T, fullName, email, password string, isAdmin bool) guardian.Guardian {
	t.Helper()
	ng := guardian.NewGuardian{
		FullName:        fullName,
		Email:           email,
		Password:        password,
		PasswordConfirm: password,
		Phone:           "4255550100",
		Address:         "123 1st St, Bothell, WA 98021",
		Relationship:    "Parent",
		AgreeToTerms:    true,
	}
	require.Empty(t, ng.FieldErrors())

	g, err := env.gdnSvc.Create(context.Background(), ng)
	require.NoError(t, err)
	if isAdmin {
		g.IsAdmin = true
		g, err = env.gdnRepo.UpdateGuardian(context.Background(), g)
		require.NoError(t, err)
	}
	return g
}

func (env *testEnv) getToken(t *testing.T, g guardian.Guardian) string {
	t.Helper()
	token, err := GenerateToken(env.conf, GetGuardianClaims(env.conf, g))
	require.NoError(t, err)
	return token
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

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj(): %v", err)
	}
	return data
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return jsonEqual(j1, j2), nil
}

func jsonEqual(j1, j2 interface{}) bool {
	b1, err1 := json.Marshal(j1)
	b2, err2 := json.Marshal(j2)
	return err1 == nil && err2 == nil && bytes.Equal(b1, b2)
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
