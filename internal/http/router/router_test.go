package router_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	alexactrl "github.com/dropDatabas3/tomora/internal/http/controllers/alexa"
	healthctrl "github.com/dropDatabas3/tomora/internal/http/controllers/health"
	oauthctrl "github.com/dropDatabas3/tomora/internal/http/controllers/oauth"
	"github.com/dropDatabas3/tomora/internal/http/router"
	alexasvc "github.com/dropDatabas3/tomora/internal/http/services/alexa"
	oauthsvc "github.com/dropDatabas3/tomora/internal/http/services/oauth"
	jwtx "github.com/dropDatabas3/tomora/internal/jwt"
	"github.com/dropDatabas3/tomora/internal/oauth/clients"
	"github.com/dropDatabas3/tomora/internal/oauth/grants"
	"github.com/dropDatabas3/tomora/internal/rate"
	"github.com/dropDatabas3/tomora/internal/security/password"
	"github.com/dropDatabas3/tomora/internal/store/core"
	"github.com/dropDatabas3/tomora/internal/store/memory"
)

const (
	testClientID     = "tomora-skill-client-2024"
	testClientSecret = "secreto-del-cliente"
	testSigningKey   = "0123456789abcdef0123456789abcdef"
	testBaseURL      = "http://localhost:8080"
	testRedirectURI  = "https://layla.amazon.com/api/skill/link/ABC123"
	testState        = "xyz-state"

	testEmail    = "ana@example.com"
	testPassword = "secreta123"
)

type env struct {
	srv    *httptest.Server
	store  *memory.Store
	issuer *jwtx.Issuer
	user   *core.User
}

func newEnv(t *testing.T, opts ...func(*router.Deps)) *env {
	t.Helper()

	store := memory.New()
	hash, err := password.Hash(password.Params{Memory: 8 * 1024, Time: 1, Parallelism: 1, KeyLen: 32}, testPassword)
	require.NoError(t, err)
	user := &core.User{Email: testEmail, Name: "Ana", PasswordHash: hash, IsMedicated: true}
	require.NoError(t, store.CreateUser(context.Background(), user))

	codes := grants.NewMemory()
	refresh := grants.NewMemory()
	issuer := jwtx.NewIssuer(testBaseURL, testSigningKey, time.Hour)
	registry := clients.NewStatic(testClientID, testClientSecret)

	deps := router.Deps{
		Authorize: oauthctrl.NewAuthorizeController(oauthsvc.NewAuthorizeService(registry)),
		Login: oauthctrl.NewLoginController(oauthsvc.NewLoginService(oauthsvc.LoginDeps{
			Repo:    store,
			Clients: registry,
			Codes:   codes,
			CodeTTL: 5 * time.Minute,
		})),
		Token: oauthctrl.NewTokenController(oauthsvc.NewTokenService(oauthsvc.TokenDeps{
			Clients:    registry,
			Issuer:     issuer,
			Codes:      codes,
			Refresh:    refresh,
			RefreshTTL: 24 * time.Hour,
		})),
		Info:      oauthctrl.NewInfoController(testBaseURL, testClientID),
		Reminders: alexactrl.NewRemindersController(alexasvc.NewRemindersService(store)),
		Health:    healthctrl.NewController(store),
		Issuer:    issuer,
		Repo:      store,
	}
	for _, opt := range opts {
		opt(&deps)
	}

	srv := httptest.NewServer(router.New(deps))
	t.Cleanup(srv.Close)
	return &env{srv: srv, store: store, issuer: issuer, user: user}
}

// login hace POST /auth/login y devuelve el code extraído del redirectUrl.
func (e *env) login(t *testing.T) string {
	t.Helper()
	body, _ := json.Marshal(map[string]string{
		"email":        testEmail,
		"password":     testPassword,
		"state":        testState,
		"redirect_uri": testRedirectURI,
		"client_id":    testClientID,
	})
	resp, err := http.Post(e.srv.URL+"/auth/login", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		Success     bool   `json:"success"`
		RedirectURL string `json:"redirectUrl"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.True(t, out.Success)

	u, err := url.Parse(out.RedirectURL)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(out.RedirectURL, testRedirectURI))
	require.Equal(t, testState, u.Query().Get("state"))

	code := u.Query().Get("code")
	require.NotEmpty(t, code)
	return code
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

// exchange hace POST /token como form y devuelve status + body decodificado.
func (e *env) exchange(t *testing.T, form url.Values) (int, tokenResponse, map[string]any) {
	t.Helper()
	resp, err := http.PostForm(e.srv.URL+"/token", form)
	require.NoError(t, err)
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		var tr tokenResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&tr))
		return resp.StatusCode, tr, nil
	}
	var oe map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&oe))
	return resp.StatusCode, tokenResponse{}, oe
}

func (e *env) exchangeCode(t *testing.T, code string) (int, tokenResponse, map[string]any) {
	return e.exchange(t, url.Values{
		"grant_type":    {"authorization_code"},
		"code":          {code},
		"client_id":     {testClientID},
		"client_secret": {testClientSecret},
	})
}

func (e *env) get(t *testing.T, path, bearer string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, e.srv.URL+path, nil)
	require.NoError(t, err)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	var buf bytes.Buffer
	_, _ = buf.ReadFrom(resp.Body)
	return resp, buf.Bytes()
}

func errorCode(t *testing.T, body []byte) string {
	t.Helper()
	var e struct {
		Code string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(body, &e))
	return e.Code
}

func TestAccountLinkingFlow(t *testing.T) {
	e := newEnv(t)

	// 1. Authorization endpoint sirve la página de login
	resp, body := e.get(t, "/auth?"+url.Values{
		"response_type": {"code"},
		"client_id":     {testClientID},
		"state":         {testState},
		"redirect_uri":  {testRedirectURI},
	}.Encode(), "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	require.Contains(t, string(body), "loginForm")

	// 2. Login emite el code
	code := e.login(t)

	// 3. Token exchange
	status, tr, _ := e.exchangeCode(t, code)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "Bearer", tr.TokenType)
	require.Equal(t, int64(3600), tr.ExpiresIn)
	require.NotEmpty(t, tr.AccessToken)
	require.NotEmpty(t, tr.RefreshToken)

	claims, err := e.issuer.VerifyAccess(tr.AccessToken)
	require.NoError(t, err)
	require.Equal(t, e.user.ID, claims.UserID)

	// 4. Bearer contra /alexa/reminders
	resp, body = e.get(t, "/alexa/reminders", tr.AccessToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var list struct {
		UserID    string           `json:"userId"`
		UserName  string           `json:"userName"`
		Reminders []map[string]any `json:"reminders"`
	}
	require.NoError(t, json.Unmarshal(body, &list))
	require.Equal(t, e.user.ID, list.UserID)
	require.Equal(t, "Ana", list.UserName)
	require.NotNil(t, list.Reminders)
	require.Empty(t, list.Reminders)
}

func TestAuthorize_Validation(t *testing.T) {
	e := newEnv(t)

	cases := []url.Values{
		{"response_type": {"token"}, "client_id": {testClientID}, "state": {testState}, "redirect_uri": {testRedirectURI}},
		{"response_type": {"code"}, "client_id": {"otro"}, "state": {testState}, "redirect_uri": {testRedirectURI}},
		{"response_type": {"code"}, "client_id": {testClientID}, "redirect_uri": {testRedirectURI}},
		{"response_type": {"code"}, "client_id": {testClientID}, "state": {testState}},
	}
	for i, q := range cases {
		resp, body := e.get(t, "/auth?"+q.Encode(), "")
		require.Equal(t, http.StatusBadRequest, resp.StatusCode, "caso %d", i)
		require.Equal(t, "invalid_request", errorCode(t, body), "caso %d", i)
	}
}

func TestLogin_Failures(t *testing.T) {
	e := newEnv(t)

	post := func(payload map[string]string) (int, []byte) {
		body, _ := json.Marshal(payload)
		resp, err := http.Post(e.srv.URL+"/auth/login", "application/json", bytes.NewReader(body))
		require.NoError(t, err)
		defer resp.Body.Close()
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(resp.Body)
		return resp.StatusCode, buf.Bytes()
	}

	base := map[string]string{
		"email":        testEmail,
		"password":     testPassword,
		"state":        testState,
		"redirect_uri": testRedirectURI,
		"client_id":    testClientID,
	}
	with := func(k, v string) map[string]string {
		m := make(map[string]string, len(base))
		for key, val := range base {
			m[key] = val
		}
		m[k] = v
		return m
	}

	code, body := post(with("client_id", "otro"))
	require.Equal(t, http.StatusUnauthorized, code)
	require.Equal(t, "unauthorized_client", errorCode(t, body))

	code, body = post(with("password", "incorrecta"))
	require.Equal(t, http.StatusUnauthorized, code)
	require.Equal(t, "invalid_credentials", errorCode(t, body))

	code, body = post(with("email", "nadie@example.com"))
	require.Equal(t, http.StatusUnauthorized, code)
	require.Equal(t, "invalid_credentials", errorCode(t, body))

	code, body = post(with("state", ""))
	require.Equal(t, http.StatusBadRequest, code)
	require.Equal(t, "invalid_request", errorCode(t, body))
}

func TestToken_CodeIsSingleUse(t *testing.T) {
	e := newEnv(t)
	code := e.login(t)

	status, _, _ := e.exchangeCode(t, code)
	require.Equal(t, http.StatusOK, status)

	// Reuso: el mismo code ya fue consumido
	status, _, oe := e.exchangeCode(t, code)
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, "invalid_grant", oe["error"])
}

func TestToken_RefreshRotation(t *testing.T) {
	e := newEnv(t)
	code := e.login(t)

	_, first, _ := e.exchangeCode(t, code)

	refreshForm := func(rt string) url.Values {
		return url.Values{
			"grant_type":    {"refresh_token"},
			"refresh_token": {rt},
			"client_id":     {testClientID},
			"client_secret": {testClientSecret},
		}
	}

	// R1 -> R2
	status, second, _ := e.exchange(t, refreshForm(first.RefreshToken))
	require.Equal(t, http.StatusOK, status)
	require.NotEmpty(t, second.RefreshToken)
	require.NotEqual(t, first.RefreshToken, second.RefreshToken)

	// R1 quedó revocado por la rotación
	status, _, oe := e.exchange(t, refreshForm(first.RefreshToken))
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, "invalid_grant", oe["error"])

	// R2 sigue vivo
	status, third, _ := e.exchange(t, refreshForm(second.RefreshToken))
	require.Equal(t, http.StatusOK, status)
	require.NotEmpty(t, third.AccessToken)
}

func TestToken_ClientAuth(t *testing.T) {
	e := newEnv(t)
	code := e.login(t)

	// Secret incorrecto
	status, _, oe := e.exchange(t, url.Values{
		"grant_type":    {"authorization_code"},
		"code":          {code},
		"client_id":     {testClientID},
		"client_secret": {"incorrecto"},
	})
	require.Equal(t, http.StatusUnauthorized, status)
	require.Equal(t, "invalid_client", oe["error"])

	// client_id desconocido
	status, _, oe = e.exchange(t, url.Values{
		"grant_type":    {"authorization_code"},
		"code":          {code},
		"client_id":     {"otro"},
		"client_secret": {testClientSecret},
	})
	require.Equal(t, http.StatusUnauthorized, status)
	require.Equal(t, "invalid_client", oe["error"])

	// La autenticación fallida NO consumió el code
	status, _, _ = e.exchangeCode(t, code)
	require.Equal(t, http.StatusOK, status)
}

func TestToken_UnsupportedGrantType(t *testing.T) {
	e := newEnv(t)

	status, _, oe := e.exchange(t, url.Values{
		"grant_type":    {"password"},
		"client_id":     {testClientID},
		"client_secret": {testClientSecret},
	})
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, "unsupported_grant_type", oe["error"])
}

func TestToken_AcceptsJSONBody(t *testing.T) {
	e := newEnv(t)
	code := e.login(t)

	body, _ := json.Marshal(map[string]string{
		"grant_type":    "authorization_code",
		"code":          code,
		"client_id":     testClientID,
		"client_secret": testClientSecret,
	})
	resp, err := http.Post(e.srv.URL+"/token", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "no-store", resp.Header.Get("Cache-Control"))
}

func TestBearer_Failures(t *testing.T) {
	e := newEnv(t)

	// Sin token
	resp, body := e.get(t, "/alexa/reminders", "")
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Equal(t, "missing_token", errorCode(t, body))

	// Token basura
	resp, body = e.get(t, "/alexa/reminders", "garbage")
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Equal(t, "invalid_token", errorCode(t, body))

	// Token vencido (mismo secret e issuer, TTL negativo)
	expired := jwtx.NewIssuer(testBaseURL, testSigningKey, -time.Minute)
	tok, _, err := expired.IssueAccess(e.user.ID, e.user.Email)
	require.NoError(t, err)
	resp, body = e.get(t, "/alexa/reminders", tok)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Equal(t, "token_expired", errorCode(t, body))

	// Token válido de un usuario que ya no existe
	tok, _, err = e.issuer.IssueAccess("usuario-borrado", "nadie@example.com")
	require.NoError(t, err)
	resp, body = e.get(t, "/alexa/reminders", tok)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Equal(t, "user_not_found", errorCode(t, body))
}

func TestCreateReminderViaAPI(t *testing.T) {
	e := newEnv(t)
	code := e.login(t)
	_, tr, _ := e.exchangeCode(t, code)

	payload, _ := json.Marshal(map[string]string{
		"title":     "Tomar losartana",
		"time":      "2026-09-02T08:00:00Z",
		"recurring": "daily",
	})
	req, err := http.NewRequest(http.MethodPost, e.srv.URL+"/alexa/reminders", bytes.NewReader(payload))
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+tr.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		Success  bool `json:"success"`
		Reminder struct {
			ID    string `json:"id"`
			Title string `json:"title"`
		} `json:"reminder"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.True(t, out.Success)
	require.NotEmpty(t, out.Reminder.ID)
	require.Equal(t, "Tomar losartana", out.Reminder.Title)

	// Aparece en el listado
	respList, body := e.get(t, "/alexa/reminders", tr.AccessToken)
	require.Equal(t, http.StatusOK, respList.StatusCode)
	require.Contains(t, string(body), "Tomar losartana")
}

func TestOperationalEndpoints(t *testing.T) {
	e := newEnv(t)

	resp, body := e.get(t, "/healthz", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, string(body), `"status":"ok"`)

	resp, body = e.get(t, "/oauth/info", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var info struct {
		ClientID  string            `json:"client_id"`
		Endpoints map[string]string `json:"endpoints"`
	}
	require.NoError(t, json.Unmarshal(body, &info))
	require.Equal(t, testClientID, info.ClientID)
	require.Equal(t, testBaseURL+"/auth", info.Endpoints["authorization"])
	require.Equal(t, testBaseURL+"/token", info.Endpoints["token"])

	resp, body = e.get(t, "/no-existe", "")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.Equal(t, "not_found", errorCode(t, body))
}

func TestMethodNotAllowed(t *testing.T) {
	e := newEnv(t)

	for _, path := range []string{"/token", "/auth/login"} {
		resp, body := e.get(t, path, "")
		require.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode, path)
		require.Equal(t, "method_not_allowed", errorCode(t, body), path)
	}
}

func TestCORS(t *testing.T) {
	e := newEnv(t, func(d *router.Deps) {
		d.CORSAllowedOrigins = []string{"https://app.tomora.example"}
	})

	do := func(method, origin string) *http.Response {
		req, err := http.NewRequest(method, e.srv.URL+"/oauth/info", nil)
		require.NoError(t, err)
		if origin != "" {
			req.Header.Set("Origin", origin)
		}
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		return resp
	}

	// Origen permitido
	resp := do(http.MethodGet, "https://app.tomora.example")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "https://app.tomora.example", resp.Header.Get("Access-Control-Allow-Origin"))
	require.Contains(t, resp.Header.Values("Vary"), "Origin")

	// Origen no listado: sin headers CORS
	resp = do(http.MethodGet, "https://evil.example")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Empty(t, resp.Header.Get("Access-Control-Allow-Origin"))

	// Preflight
	resp = do(http.MethodOptions, "https://app.tomora.example")
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	require.Contains(t, resp.Header.Get("Access-Control-Allow-Methods"), "POST")
}

func TestCORS_DisabledByDefault(t *testing.T) {
	e := newEnv(t)

	req, err := http.NewRequest(http.MethodGet, e.srv.URL+"/oauth/info", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://app.tomora.example")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Empty(t, resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestLoginRateLimit(t *testing.T) {
	e := newEnv(t, func(d *router.Deps) {
		d.LoginLimiter = rate.NewMemoryLimiter(1, time.Hour)
	})

	post := func() (int, []byte, http.Header) {
		body, _ := json.Marshal(map[string]string{
			"email":        testEmail,
			"password":     "incorrecta",
			"state":        testState,
			"redirect_uri": testRedirectURI,
			"client_id":    testClientID,
		})
		resp, err := http.Post(e.srv.URL+"/auth/login", "application/json", bytes.NewReader(body))
		require.NoError(t, err)
		defer resp.Body.Close()
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(resp.Body)
		return resp.StatusCode, buf.Bytes(), resp.Header
	}

	status, _, _ := post()
	require.Equal(t, http.StatusUnauthorized, status)

	status, body, header := post()
	require.Equal(t, http.StatusTooManyRequests, status)
	require.Equal(t, "too_many_requests", errorCode(t, body))
	require.NotEmpty(t, header.Get("Retry-After"))
}
