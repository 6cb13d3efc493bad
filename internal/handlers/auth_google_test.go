package handlers

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/Windi-Fikriyansyah/gigflow_be/internal/db/dbtest"
	"github.com/Windi-Fikriyansyah/gigflow_be/internal/models"
	"github.com/Windi-Fikriyansyah/gigflow_be/internal/services/auth"
	"github.com/Windi-Fikriyansyah/gigflow_be/internal/utils"
)

func fakeGoogle(t *testing.T, userinfo string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"access_token":"tok","token_type":"Bearer","expires_in":3600}`)
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, userinfo)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func googleApp(t *testing.T, srv *httptest.Server) (*fiber.App, *auth.AuthService) {
	t.Helper()
	svc := auth.NewAuthService(dbtest.Open(t), "test-secret", 60)
	h := &GoogleOAuthHandler{
		Auth:            svc,
		Session:         NewAuthHandler(svc, false),
		GoogleClientID:  "client",
		GoogleSecret:    "secret",
		GoogleRedirect:  "http://localhost:8080/api/auth/google/callback",
		FrontendBaseURL: "http://localhost:5173",
		Endpoint:        oauth2.Endpoint{AuthURL: srv.URL + "/auth", TokenURL: srv.URL + "/token"},
		UserInfoURL:     srv.URL + "/userinfo",
	}
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	h.Routes(app.Group("/api"))
	return app, svc
}

func cookieNamed(resp *http.Response, name string) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestGoogleSignIn(t *testing.T) {
	srv := fakeGoogle(t, `{"email":"Dina@Example.com","verified_email":true,"name":"Dina"}`)
	app, svc := googleApp(t, srv)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/auth/google/start?next=/dashboard", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusTemporaryRedirect, resp.StatusCode)

	loc, err := url.Parse(resp.Header.Get("Location"))
	require.NoError(t, err)
	state := loc.Query().Get("state")
	require.NotEmpty(t, state)
	assert.Equal(t, "client", loc.Query().Get("client_id"))

	stateCookie := cookieNamed(resp, oauthStateCookie)
	nextCookie := cookieNamed(resp, oauthNextCookie)
	require.NotNil(t, stateCookie)
	require.NotNil(t, nextCookie)
	assert.Equal(t, state, stateCookie.Value)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/google/callback?code=abc&state="+url.QueryEscape(state), nil)
	req.AddCookie(&http.Cookie{Name: oauthStateCookie, Value: stateCookie.Value})
	req.AddCookie(&http.Cookie{Name: oauthNextCookie, Value: nextCookie.Value})
	resp, err = app.Test(req, -1)
	require.NoError(t, err)

	assert.Equal(t, http.StatusTemporaryRedirect, resp.StatusCode)
	assert.Equal(t, "http://localhost:5173/dashboard", resp.Header.Get("Location"))

	session := cookieNamed(resp, utils.SessionCookie)
	require.NotNil(t, session)
	uid, err := svc.CurrentUser(session.Value)
	require.NoError(t, err)

	var u models.User
	require.NoError(t, svc.DB.First(&u, "id = ?", uid).Error)
	assert.Equal(t, "dina@example.com", u.Email)
	assert.Equal(t, "Dina", u.Name)
}

func TestGoogleCallbackRejectsBadState(t *testing.T) {
	srv := fakeGoogle(t, `{}`)
	app, _ := googleApp(t, srv)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/google/callback?code=abc&state=forged", nil)
	req.AddCookie(&http.Cookie{Name: oauthStateCookie, Value: "real"})
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/auth/google/callback", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGoogleCallbackUnverifiedEmail(t *testing.T) {
	srv := fakeGoogle(t, `{"email":"eve@example.com","verified_email":false,"name":"Eve"}`)
	app, svc := googleApp(t, srv)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/google/callback?code=abc&state=s1", nil)
	req.AddCookie(&http.Cookie{Name: oauthStateCookie, Value: "s1"})
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	assert.Equal(t, http.StatusTemporaryRedirect, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Location"), "/login?err=")
	assert.Nil(t, cookieNamed(resp, utils.SessionCookie))

	var count int64
	require.NoError(t, svc.DB.Model(&models.User{}).Count(&count).Error)
	assert.Zero(t, count)
}
