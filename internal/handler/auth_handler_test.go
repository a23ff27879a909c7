package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"golang.org/x/oauth2"

	"github.com/zippyboards/backend/internal/model"
	"github.com/zippyboards/backend/internal/service"
)

// --- helpers ---

func newTestAuthHandler(as service.AuthService, sm SessionManager) *AuthHandler {
	return NewAuthHandler(as, sm, AuthConfig{
		GitHubClientID:     "github-client-id",
		GitHubClientSecret: "github-secret",
		BackendURL:         "http://localhost:8080",
		AppURL:             "http://localhost:3000",
	})
}

func findCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// fakeGitHub serves the token endpoint and the two user endpoints.
func fakeGitHub(t *testing.T, user string, emails string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /login/oauth/access_token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"gh-token","token_type":"bearer"}`))
	})
	mux.HandleFunc("GET /user", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer gh-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(user))
	})
	mux.HandleFunc("GET /user/emails", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(emails))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func pointAtFake(h *AuthHandler, srv *httptest.Server) {
	h.githubConfig.Endpoint = oauth2.Endpoint{
		AuthURL:  srv.URL + "/login/oauth/authorize",
		TokenURL: srv.URL + "/login/oauth/access_token",
	}
	h.githubAPIBase = srv.URL
}

func callbackRequest(state, code string) *http.Request {
	q := url.Values{}
	q.Set("state", state)
	if code != "" {
		q.Set("code", code)
	}
	req := httptest.NewRequest("GET", "/auth/callback?"+q.Encode(), nil)
	req.AddCookie(&http.Cookie{Name: oauthStateCookieName, Value: state})
	return req
}

// --- Tests ---

func TestAuthHandler_GitHubLoginURL_SetsStateCookie(t *testing.T) {
	h := newTestAuthHandler(&mockAuthService{}, &mockSessionManager{})
	req := httptest.NewRequest("GET", "/api/auth/github/login?next=/projects/p1", nil)
	rec := httptest.NewRecorder()

	h.GitHubLoginURL(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	state := findCookie(rec, oauthStateCookieName)
	if state == nil || state.Value == "" {
		t.Fatal("expected oauth_state cookie to be set")
	}
	if !state.HttpOnly {
		t.Error("oauth_state cookie should be HttpOnly")
	}
	next := findCookie(rec, oauthNextCookieName)
	if next == nil {
		t.Fatal("expected oauth_next cookie")
	}
	if v, _ := url.QueryUnescape(next.Value); v != "/projects/p1" {
		t.Errorf("expected next /projects/p1, got %q", v)
	}

	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	u, err := url.Parse(body["url"])
	if err != nil {
		t.Fatalf("bad url: %v", err)
	}
	if u.Query().Get("state") != state.Value {
		t.Errorf("state in url %q does not match cookie %q", u.Query().Get("state"), state.Value)
	}
	if got := u.Query().Get("redirect_uri"); got != "http://localhost:8080/auth/callback" {
		t.Errorf("unexpected redirect_uri %q", got)
	}
}

func TestAuthHandler_GitHubLoginURL_StateIsRandom(t *testing.T) {
	h := newTestAuthHandler(&mockAuthService{}, &mockSessionManager{})
	var states []string
	for range 2 {
		rec := httptest.NewRecorder()
		h.GitHubLoginURL(rec, httptest.NewRequest("GET", "/api/auth/github/login", nil))
		states = append(states, findCookie(rec, oauthStateCookieName).Value)
	}
	if states[0] == states[1] {
		t.Error("state should differ between requests")
	}
}

func TestAuthHandler_GitHubLoginURL_Disabled(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, &mockSessionManager{}, AuthConfig{AppURL: "http://localhost:3000"})
	rec := httptest.NewRecorder()

	h.GitHubLoginURL(rec, httptest.NewRequest("GET", "/api/auth/github/login", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestAuthHandler_Callback_InvalidState(t *testing.T) {
	h := newTestAuthHandler(&mockAuthService{}, &mockSessionManager{})
	req := httptest.NewRequest("GET", "/auth/callback?state=bad&code=c", nil)
	req.AddCookie(&http.Cookie{Name: oauthStateCookieName, Value: "good"})
	rec := httptest.NewRecorder()

	h.Callback(rec, req)

	if rec.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "http://localhost:3000/login?error=invalid_state" {
		t.Errorf("unexpected Location %q", loc)
	}
}

func TestAuthHandler_Callback_MissingCode(t *testing.T) {
	h := newTestAuthHandler(&mockAuthService{}, &mockSessionManager{})
	rec := httptest.NewRecorder()

	h.Callback(rec, callbackRequest("s1", ""))

	if loc := rec.Header().Get("Location"); loc != "http://localhost:3000/login?error=no_code" {
		t.Errorf("unexpected Location %q", loc)
	}
}

func TestAuthHandler_Callback_CreatesSessionAndRedirects(t *testing.T) {
	srv := fakeGitHub(t,
		`{"id":42,"login":"octo","email":null,"name":"Octo Cat"}`,
		`[{"email":"other@example.com","primary":false,"verified":true},{"email":"Octo@Example.com","primary":true,"verified":true}]`)

	var got *service.GitHubUserInfo
	as := &mockAuthService{githubFunc: func(_ context.Context, info *service.GitHubUserInfo) (*model.User, error) {
		got = info
		return &model.User{ID: "u-gh", Email: info.Email}, nil
	}}
	sm := &mockSessionManager{}
	h := newTestAuthHandler(as, sm)
	pointAtFake(h, srv)

	req := callbackRequest("s1", "code-1")
	req.AddCookie(&http.Cookie{Name: oauthNextCookieName, Value: url.QueryEscape("/projects/p1")})
	rec := httptest.NewRecorder()

	h.Callback(rec, req)

	if rec.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "http://localhost:3000/projects/p1" {
		t.Errorf("unexpected Location %q", loc)
	}
	if got == nil || got.ID != 42 || got.Login != "octo" || got.Email != "Octo@Example.com" || !got.EmailVerified {
		t.Errorf("unexpected github info %+v", got)
	}
	if len(sm.created) != 1 || sm.created[0] != "u-gh" {
		t.Errorf("expected session for u-gh, got %v", sm.created)
	}
	sess := findCookie(rec, "zippy_session")
	if sess == nil || sess.Value != "token-u-gh" {
		t.Fatalf("expected session cookie, got %+v", sess)
	}
}

func TestAuthHandler_Callback_QueryNextWins(t *testing.T) {
	srv := fakeGitHub(t, `{"id":1,"login":"a","email":"a@example.com"}`, `[]`)
	h := newTestAuthHandler(&mockAuthService{}, &mockSessionManager{})
	pointAtFake(h, srv)

	req := callbackRequest("s1", "code-1")
	req.URL.RawQuery += "&next=" + url.QueryEscape("//evil.example.com")
	rec := httptest.NewRecorder()

	h.Callback(rec, req)

	if loc := rec.Header().Get("Location"); loc != "http://localhost:3000/dashboard" {
		t.Errorf("expected fallback to /dashboard, got %q", loc)
	}
}

func TestAuthHandler_Callback_ResolveFailure(t *testing.T) {
	srv := fakeGitHub(t, `{"id":1,"login":"a","email":"a@example.com"}`, `[]`)
	as := &mockAuthService{githubFunc: func(context.Context, *service.GitHubUserInfo) (*model.User, error) {
		return nil, errors.New("db down")
	}}
	sm := &mockSessionManager{}
	h := newTestAuthHandler(as, sm)
	pointAtFake(h, srv)
	rec := httptest.NewRecorder()

	h.Callback(rec, callbackRequest("s1", "code-1"))

	if loc := rec.Header().Get("Location"); loc != "http://localhost:3000/login?error=create_user_failed" {
		t.Errorf("unexpected Location %q", loc)
	}
	if len(sm.created) != 0 {
		t.Error("no session should be created")
	}
}

func TestAuthHandler_Callback_EmailVerification(t *testing.T) {
	tests := []struct {
		name         string
		user         string
		emails       string
		wantEmail    string
		wantVerified bool
	}{
		{"public email verified", `{"id":1,"login":"a","email":"A@example.com"}`, `[{"email":"a@example.com","primary":true,"verified":true}]`, "A@example.com", true},
		{"public email unverified", `{"id":1,"login":"a","email":"a@example.com"}`, `[{"email":"a@example.com","primary":true,"verified":false}]`, "a@example.com", false},
		{"public email not listed", `{"id":1,"login":"a","email":"a@example.com"}`, `[]`, "a@example.com", false},
		{"private primary unverified", `{"id":1,"login":"a","email":null}`, `[{"email":"a@example.com","primary":true,"verified":false}]`, "", false},
		{"emails endpoint broken", `{"id":1,"login":"a","email":"a@example.com"}`, `not json`, "a@example.com", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := fakeGitHub(t, tt.user, tt.emails)
			var got *service.GitHubUserInfo
			as := &mockAuthService{githubFunc: func(_ context.Context, info *service.GitHubUserInfo) (*model.User, error) {
				got = info
				return &model.User{ID: "u1"}, nil
			}}
			h := newTestAuthHandler(as, &mockSessionManager{})
			pointAtFake(h, srv)

			h.Callback(httptest.NewRecorder(), callbackRequest("s1", "code-1"))

			if got == nil {
				t.Fatal("auth service was not called")
			}
			if got.Email != tt.wantEmail || got.EmailVerified != tt.wantVerified {
				t.Errorf("expected email=%q verified=%v, got email=%q verified=%v", tt.wantEmail, tt.wantVerified, got.Email, got.EmailVerified)
			}
		})
	}
}

func TestAuthHandler_Callback_UnverifiedCollision(t *testing.T) {
	srv := fakeGitHub(t, `{"id":1,"login":"a","email":"a@example.com"}`, `[]`)
	as := &mockAuthService{githubFunc: func(context.Context, *service.GitHubUserInfo) (*model.User, error) {
		return nil, service.ErrGitHubEmailUnverified
	}}
	sm := &mockSessionManager{}
	h := newTestAuthHandler(as, sm)
	pointAtFake(h, srv)
	rec := httptest.NewRecorder()

	h.Callback(rec, callbackRequest("s1", "code-1"))

	if loc := rec.Header().Get("Location"); loc != "http://localhost:3000/login?error=email_unverified" {
		t.Errorf("unexpected Location %q", loc)
	}
	if len(sm.created) != 0 {
		t.Error("no session should be created")
	}
}

func TestSafeNext(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", "/dashboard"},
		{"/projects/1", "/projects/1"},
		{"https://evil.example.com", "/dashboard"},
		{"//evil.example.com", "/dashboard"},
		{"/\\evil.example.com", "/dashboard"},
	}
	for _, tt := range tests {
		if got := safeNext(tt.in); got != tt.want {
			t.Errorf("safeNext(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestAuthHandler_Login(t *testing.T) {
	sm := &mockSessionManager{}
	h := newTestAuthHandler(&mockAuthService{}, sm)
	body := `{"email":"a@example.com","password":"secret1","redirect_to":"/projects/p1"}`
	req := httptest.NewRequest("POST", "/api/auth/login", strings.NewReader(body))
	rec := httptest.NewRecorder()

	h.Login(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp loginResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if !resp.Success || resp.User.ID != "u1" || resp.RedirectTo != "/projects/p1" {
		t.Errorf("unexpected response %+v", resp)
	}
	if findCookie(rec, "zippy_session") == nil {
		t.Error("expected session cookie")
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	as := &mockAuthService{signInFunc: func(context.Context, string, string) (*model.User, error) {
		return nil, &service.Error{Code: service.CodeUnauthenticated, Message: "Invalid login credentials."}
	}}
	sm := &mockSessionManager{}
	h := newTestAuthHandler(as, sm)
	req := httptest.NewRequest("POST", "/api/auth/login", strings.NewReader(`{"email":"a@example.com","password":"nope"}`))
	rec := httptest.NewRecorder()

	h.Login(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	var resp errorResponse
	_ = json.NewDecoder(rec.Body).Decode(&resp)
	if resp.Error != "Invalid login credentials." {
		t.Errorf("unexpected error %q", resp.Error)
	}
	if len(sm.created) != 0 {
		t.Error("no session should be created")
	}
}

func TestAuthHandler_Login_MissingFields(t *testing.T) {
	h := newTestAuthHandler(&mockAuthService{}, &mockSessionManager{})
	req := httptest.NewRequest("POST", "/api/auth/login", strings.NewReader(`{"email":"a@example.com"}`))
	rec := httptest.NewRecorder()

	h.Login(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestAuthHandler_SignUp(t *testing.T) {
	h := newTestAuthHandler(&mockAuthService{}, &mockSessionManager{})
	req := httptest.NewRequest("POST", "/api/auth/signup", strings.NewReader(`{"email":"new@example.com","password":"secret1"}`))
	rec := httptest.NewRecorder()

	h.SignUp(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
}

func TestAuthHandler_SignUp_SessionFailure(t *testing.T) {
	h := newTestAuthHandler(&mockAuthService{}, &mockSessionManager{err: errors.New("db down")})
	req := httptest.NewRequest("POST", "/api/auth/signup", strings.NewReader(`{"email":"new@example.com","password":"secret1"}`))
	rec := httptest.NewRecorder()

	h.SignUp(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestAuthHandler_Logout(t *testing.T) {
	sm := &mockSessionManager{}
	h := newTestAuthHandler(&mockAuthService{}, sm)
	req := httptest.NewRequest("POST", "/api/auth/logout", nil)
	req.AddCookie(&http.Cookie{Name: "zippy_session", Value: "tok"})
	rec := httptest.NewRecorder()

	h.Logout(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if len(sm.deleted) != 1 || sm.deleted[0] != "tok" {
		t.Errorf("expected tok deleted, got %v", sm.deleted)
	}
	if c := findCookie(rec, "zippy_session"); c == nil || c.MaxAge >= 0 {
		t.Error("expected session cookie to be cleared")
	}
}

func TestAuthHandler_Session(t *testing.T) {
	h := newTestAuthHandler(&mockAuthService{}, &mockSessionManager{})

	t.Run("anonymous", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.Session(rec, httptest.NewRequest("GET", "/api/auth/session", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		var resp sessionResponse
		_ = json.NewDecoder(rec.Body).Decode(&resp)
		if resp.Authenticated || resp.User != nil {
			t.Errorf("expected anonymous session, got %+v", resp)
		}
	})

	t.Run("signed in", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/auth/session", nil)
		req = req.WithContext(withUser(req.Context(), "u7"))
		rec := httptest.NewRecorder()
		h.Session(rec, req)
		var resp sessionResponse
		_ = json.NewDecoder(rec.Body).Decode(&resp)
		if !resp.Authenticated || resp.User == nil || resp.User.ID != "u7" {
			t.Errorf("unexpected session %+v", resp)
		}
	})
}
