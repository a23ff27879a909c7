package handler

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/zippyboards/backend/internal/model"
	"github.com/zippyboards/backend/internal/service"
	"github.com/zippyboards/backend/pkg/auth"
)

const (
	oauthStateCookieName = "oauth_state"
	oauthNextCookieName  = "oauth_next"
	defaultNextPath      = "/dashboard"
)

// generateOAuthState returns a random CSRF state string.
func generateOAuthState() string {
	b := make([]byte, 32)
	_, _ = rand.Read(b)
	return base64.URLEncoding.EncodeToString(b)
}

func setShortCookie(w http.ResponseWriter, name, value string, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   600,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   secure,
	})
}

func clearShortCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Expires:  time.Unix(0, 0),
	})
}

// verifyOAuthState compares the state cookie with the query parameter.
func verifyOAuthState(r *http.Request) bool {
	cookie, err := r.Cookie(oauthStateCookieName)
	if err != nil || cookie.Value == "" {
		return false
	}
	return cookie.Value == r.URL.Query().Get("state")
}

// safeNext keeps redirects on this site: only absolute paths, never "//host".
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return defaultNextPath
	}
	return next
}

var githubEndpoint = oauth2.Endpoint{
	AuthURL:  "https://github.com/login/oauth/authorize",
	TokenURL: "https://github.com/login/oauth/access_token",
}

// SessionManager creates and deletes login sessions.
type SessionManager interface {
	CreateSession(ctx context.Context, userID string) (*model.Session, error)
	DeleteSession(ctx context.Context, token string) error
}

// AuthHandler serves password and GitHub login.
type AuthHandler struct {
	authService   service.AuthService
	sessions      SessionManager
	githubConfig  *oauth2.Config
	githubAPIBase string
	appURL        string
	secure        bool
	sessionTTL    time.Duration
}

// AuthConfig configures AuthHandler.
type AuthConfig struct {
	GitHubClientID     string
	GitHubClientSecret string
	// BackendURL is this API's public base; the OAuth callback is BackendURL + "/auth/callback".
	BackendURL string
	// AppURL is where browsers are sent after the callback.
	AppURL     string
	Secure     bool
	SessionTTL time.Duration
}

// NewAuthHandler wires the handler.
func NewAuthHandler(authService service.AuthService, sessions SessionManager, cfg AuthConfig) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		sessions:    sessions,
		githubConfig: &oauth2.Config{
			ClientID:     cfg.GitHubClientID,
			ClientSecret: cfg.GitHubClientSecret,
			RedirectURL:  cfg.BackendURL + "/auth/callback",
			Scopes:       []string{"read:user", "user:email"},
			Endpoint:     githubEndpoint,
		},
		githubAPIBase: "https://api.github.com",
		appURL:        cfg.AppURL,
		secure:        cfg.Secure,
		sessionTTL:    cfg.SessionTTL,
	}
}

type credentialsRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	RedirectTo string `json:"redirect_to"`
}

type sessionUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type loginResponse struct {
	Success    bool        `json:"success"`
	User       sessionUser `json:"user"`
	RedirectTo string      `json:"redirect_to,omitempty"`
}

type sessionResponse struct {
	Authenticated bool         `json:"authenticated"`
	User          *sessionUser `json:"user"`
}

func toSessionUser(u *model.User) sessionUser {
	return sessionUser{ID: u.ID, Email: u.Email, Name: u.Name}
}

// SignUp handles POST /api/auth/signup.
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Email and password are required", service.CodeValidationFailure)
		return
	}
	u, err := h.authService.SignUp(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if !h.startSession(w, r, u.ID) {
		return
	}
	writeJSON(w, http.StatusCreated, loginResponse{Success: true, User: toSessionUser(u)})
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Email and password are required", service.CodeValidationFailure)
		return
	}
	u, err := h.authService.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if !h.startSession(w, r, u.ID) {
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{
		Success:    true,
		User:       toSessionUser(u),
		RedirectTo: safeNext(req.RedirectTo),
	})
}

func (h *AuthHandler) startSession(w http.ResponseWriter, r *http.Request, userID string) bool {
	sess, err := h.sessions.CreateSession(r.Context(), userID)
	if err != nil {
		slog.Error("create session failed", "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "session_error", service.CodeUnexpectedError)
		return false
	}
	auth.SetSessionCookie(w, sess.Token, auth.CookieOptions{Secure: h.secure, MaxAge: h.sessionTTL})
	return true
}

// Logout handles POST /api/auth/logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if token, ok := auth.TokenFromRequest(r); ok {
		if err := h.sessions.DeleteSession(r.Context(), token); err != nil {
			slog.Warn("delete session failed", "error", err)
		}
	}
	auth.ClearSessionCookie(w, h.secure)
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Session handles GET /api/auth/session. It never fails for anonymous callers.
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	u, err := h.authService.CurrentUser(r.Context())
	if errors.Is(err, service.ErrUnauthenticated) {
		writeJSON(w, http.StatusOK, sessionResponse{})
		return
	}
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	su := toSessionUser(u)
	writeJSON(w, http.StatusOK, sessionResponse{Authenticated: true, User: &su})
}

// GitHubLoginURL handles GET /api/auth/github/login.
func (h *AuthHandler) GitHubLoginURL(w http.ResponseWriter, r *http.Request) {
	if h.githubConfig.ClientID == "" {
		writeError(w, http.StatusNotFound, "github_login_disabled", service.CodeNotFound)
		return
	}
	state := generateOAuthState()
	setShortCookie(w, oauthStateCookieName, state, h.secure)
	setShortCookie(w, oauthNextCookieName, url.QueryEscape(safeNext(r.URL.Query().Get("next"))), h.secure)
	writeJSON(w, http.StatusOK, map[string]string{"url": h.githubConfig.AuthCodeURL(state)})
}

// githubUserInfo is the GitHub /user response. Verified is filled from
// /user/emails.
type githubUserInfo struct {
	ID       int64  `json:"id"`
	Login    string `json:"login"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Verified bool   `json:"-"`
}

// githubEmail is one entry of the GitHub /user/emails response.
type githubEmail struct {
	Email    string `json:"email"`
	Primary  bool   `json:"primary"`
	Verified bool   `json:"verified"`
}

// Callback handles GET /auth/callback: it exchanges the authorization code
// for a session and redirects to next (default /dashboard).
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	next := defaultNextPath
	if c, err := r.Cookie(oauthNextCookieName); err == nil {
		if v, err := url.QueryUnescape(c.Value); err == nil {
			next = safeNext(v)
		}
	}
	if q := r.URL.Query().Get("next"); q != "" {
		next = safeNext(q)
	}
	clearShortCookie(w, oauthNextCookieName)

	if !verifyOAuthState(r) {
		clearShortCookie(w, oauthStateCookieName)
		h.redirectLoginError(w, r, "invalid_state")
		return
	}
	clearShortCookie(w, oauthStateCookieName)

	code := r.URL.Query().Get("code")
	if code == "" {
		h.redirectLoginError(w, r, "no_code")
		return
	}

	token, err := h.githubConfig.Exchange(r.Context(), code)
	if err != nil {
		slog.Warn("oauth exchange failed", "error", err)
		h.redirectLoginError(w, r, "exchange_failed")
		return
	}

	info, err := h.fetchGitHubUser(r.Context(), token)
	if err != nil {
		slog.Warn("github user fetch failed", "error", err)
		h.redirectLoginError(w, r, "userinfo_failed")
		return
	}

	user, err := h.authService.GetOrCreateUserFromGitHub(r.Context(), &service.GitHubUserInfo{
		ID:            info.ID,
		Login:         info.Login,
		Email:         info.Email,
		EmailVerified: info.Verified,
		Name:          info.Name,
	})
	// the only validation failure here is an unverified email collision
	if service.CodeOf(err) == service.CodeValidationFailure {
		h.redirectLoginError(w, r, "email_unverified")
		return
	}
	if err != nil {
		slog.Error("github user resolve failed", "error", err)
		h.redirectLoginError(w, r, "create_user_failed")
		return
	}

	sess, err := h.sessions.CreateSession(r.Context(), user.ID)
	if err != nil {
		slog.Error("create session failed", "user_id", user.ID, "error", err)
		h.redirectLoginError(w, r, "session_failed")
		return
	}
	auth.SetSessionCookie(w, sess.Token, auth.CookieOptions{Secure: h.secure, MaxAge: h.sessionTTL})
	http.Redirect(w, r, h.appURL+next, http.StatusFound)
}

func (h *AuthHandler) fetchGitHubUser(ctx context.Context, token *oauth2.Token) (*githubUserInfo, error) {
	client := h.githubConfig.Client(ctx, token)
	resp, err := client.Get(h.githubAPIBase + "/user")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, errors.New("github /user: " + resp.Status)
	}

	var info githubUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, err
	}

	// /user shows only the public email and says nothing about verification.
	// Without a readable /user/emails the email stays unverified.
	emails, err := h.fetchGitHubEmails(ctx, client)
	if err != nil {
		slog.Warn("github emails fetch failed", "error", err)
		return &info, nil
	}
	for _, e := range emails {
		if info.Email == "" && e.Primary && e.Verified {
			info.Email = e.Email
		}
		if e.Verified && strings.EqualFold(e.Email, info.Email) {
			info.Verified = true
			break
		}
	}
	return &info, nil
}

func (h *AuthHandler) fetchGitHubEmails(ctx context.Context, client *http.Client) ([]githubEmail, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.githubAPIBase+"/user/emails", nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, errors.New("github /user/emails: " + resp.Status)
	}
	var emails []githubEmail
	if err := json.NewDecoder(resp.Body).Decode(&emails); err != nil {
		return nil, err
	}
	return emails, nil
}

func (h *AuthHandler) redirectLoginError(w http.ResponseWriter, r *http.Request, code string) {
	http.Redirect(w, r, h.appURL+"/login?error="+url.QueryEscape(code), http.StatusFound)
}
