package handlers

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/Windi-Fikriyansyah/gigflow_be/internal/services/auth"
)

const (
	oauthStateCookie = "oauth_state"
	oauthNextCookie  = "oauth_next"
	userInfoURL      = "https://www.googleapis.com/oauth2/v2/userinfo"
)

type GoogleOAuthHandler struct {
	Auth            *auth.AuthService
	Session         *AuthHandler
	GoogleClientID  string
	GoogleSecret    string
	GoogleRedirect  string
	FrontendBaseURL string

	// diisi di test; default google.Endpoint dan userInfoURL
	Endpoint    oauth2.Endpoint
	UserInfoURL string
}

func (h *GoogleOAuthHandler) Routes(r fiber.Router) {
	r.Get("/auth/google/start", h.GoogleStart)
	r.Get("/auth/google/callback", h.GoogleCallback)
}

func (h *GoogleOAuthHandler) oauthCfg() *oauth2.Config {
	ep := h.Endpoint
	if ep.AuthURL == "" {
		ep = google.Endpoint
	}
	return &oauth2.Config{
		ClientID:     h.GoogleClientID,
		ClientSecret: h.GoogleSecret,
		RedirectURL:  h.GoogleRedirect,
		Endpoint:     ep,
		Scopes:       []string{"openid", "email", "profile"},
	}
}

func randomState(n int) string {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}

func (h *GoogleOAuthHandler) tempCookie(c *fiber.Ctx, name, value string, maxAge int) {
	ck := &fiber.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HTTPOnly: true,
		Secure:   h.Session.CookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
		MaxAge:   maxAge,
	}
	if maxAge < 0 {
		ck.Expires = cookieExpired
	}
	c.Cookie(ck)
}

// safeNext only allows same-site relative paths.
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") {
		return "/"
	}
	return next
}

func (h *GoogleOAuthHandler) GoogleStart(c *fiber.Ctx) error {
	st := randomState(32)

	// simpan state + next di cookie sementara
	h.tempCookie(c, oauthStateCookie, st, 10*60)
	h.tempCookie(c, oauthNextCookie, safeNext(c.Query("next", "/")), 10*60)

	return c.Redirect(h.oauthCfg().AuthCodeURL(st), http.StatusTemporaryRedirect)
}

type googleUserInfo struct {
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
}

func (h *GoogleOAuthHandler) fetchUser(c *fiber.Ctx, code string) (*googleUserInfo, error) {
	cfg := h.oauthCfg()
	tok, err := cfg.Exchange(c.UserContext(), code)
	if err != nil {
		return nil, err
	}

	endpoint := h.UserInfoURL
	if endpoint == "" {
		endpoint = userInfoURL
	}
	resp, err := cfg.Client(c.UserContext(), tok).Get(endpoint)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fiber.NewError(fiber.StatusBadGateway, "userinfo status "+resp.Status)
	}

	var gu googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&gu); err != nil {
		return nil, err
	}
	return &gu, nil
}

func (h *GoogleOAuthHandler) fail(c *fiber.Ctx, msg string) error {
	return c.Redirect(h.FrontendBaseURL+"/login?err="+url.QueryEscape(msg), http.StatusTemporaryRedirect)
}

func (h *GoogleOAuthHandler) GoogleCallback(c *fiber.Ctx) error {
	code := c.Query("code")
	state := c.Query("state")
	if code == "" || state == "" {
		return fiber.NewError(fiber.StatusBadRequest, "Missing code/state")
	}

	stCookie := c.Cookies(oauthStateCookie)
	if stCookie == "" || stCookie != state {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid state")
	}
	next := safeNext(c.Cookies(oauthNextCookie, "/"))

	// state sekali pakai
	h.tempCookie(c, oauthStateCookie, "", -1)
	h.tempCookie(c, oauthNextCookie, "", -1)

	gu, err := h.fetchUser(c, code)
	if err != nil {
		log.Println("[GoogleOAuth] exchange/userinfo:", err)
		return h.fail(c, "Google sign-in failed")
	}
	if strings.TrimSpace(gu.Email) == "" || !gu.VerifiedEmail {
		return h.fail(c, "Google account has no verified email")
	}

	u, err := h.Auth.FindOrCreateExternal(c.UserContext(), gu.Email, gu.Name)
	if err != nil {
		log.Println("[GoogleOAuth] find or create user:", err)
		return h.fail(c, "Google sign-in failed")
	}

	token, err := h.Auth.IssueToken(u)
	if err != nil {
		return err
	}
	h.Session.setSession(c, token)

	return c.Redirect(h.FrontendBaseURL+next, http.StatusTemporaryRedirect)
}
