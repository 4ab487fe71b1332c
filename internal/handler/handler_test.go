package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/oauth2"

	"github.com/mizuki/heatboard/internal/domain"
	"github.com/mizuki/heatboard/internal/service"
)

// Shared test harness: an echo app wired exactly like cmd/server, backed by
// in-memory stores and an httptest stand-in for GitHub.

type memUserStore struct {
	byID       map[string]*domain.User
	byGitHubID map[int64]*domain.User
}

func newMemUserStore() *memUserStore {
	return &memUserStore{
		byID:       make(map[string]*domain.User),
		byGitHubID: make(map[int64]*domain.User),
	}
}

func (s *memUserStore) FindByID(_ context.Context, id string) (*domain.User, error) {
	u, ok := s.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return u, nil
}

func (s *memUserStore) FindByGitHubID(_ context.Context, githubID int64) (*domain.User, error) {
	u, ok := s.byGitHubID[githubID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return u, nil
}

func (s *memUserStore) Create(_ context.Context, user domain.User) (*domain.User, error) {
	if existing, ok := s.byGitHubID[user.GitHubID]; ok {
		return existing, nil
	}
	user.CreatedAt = time.Now()
	stored := user
	s.byID[stored.ID] = &stored
	s.byGitHubID[stored.GitHubID] = &stored
	return &stored, nil
}

type memMessageStore struct {
	users    *memUserStore
	messages []domain.Message
}

func (s *memMessageStore) Create(_ context.Context, msg domain.Message) (*domain.Message, error) {
	msg.CreatedAt = time.Now()
	s.messages = append(s.messages, msg)
	return &msg, nil
}

func (s *memMessageStore) FindLast3(context.Context) ([]domain.MessageWithAuthor, error) {
	out := []domain.MessageWithAuthor{}
	for i := len(s.messages) - 1; i >= 0 && len(out) < 3; i-- {
		m := s.messages[i]
		author := domain.User{ID: m.UserID}
		if u, ok := s.users.byID[m.UserID]; ok {
			author = *u
		}
		out = append(out, domain.MessageWithAuthor{Message: m, Author: author})
	}
	return out, nil
}

func stubGitHub(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/login/oauth/access_token", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if r.FormValue("code") != "abc123" {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{"error": "bad_verification_code"})
			return
		}
		json.NewEncoder(w).Encode(map[string]string{
			"access_token": "ghu_xyz",
			"token_type":   "bearer",
		})
	})
	mux.HandleFunc("/user", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer ghu_xyz" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":         42,
			"login":      "octocat",
			"avatar_url": "https://avatars.githubusercontent.com/u/42",
			"name":       "The Octocat",
		})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

type testApp struct {
	echo  *echo.Echo
	auth  *service.AuthService
	users *memUserStore
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	gh := stubGitHub(t)
	users := newMemUserStore()
	messages := &memMessageStore{users: users}

	authSvc := service.NewAuthService(users, service.AuthConfig{
		GitHubClientID:     "test-client-id",
		GitHubClientSecret: "test-client-secret",
		JWTSecret:          "test-secret-at-least-16-chars!!",
		FrontendURL:        "http://localhost:5173",
		Endpoint: oauth2.Endpoint{
			AuthURL:  gh.URL + "/login/oauth/authorize",
			TokenURL: gh.URL + "/login/oauth/access_token",
		},
		ProfileURL: gh.URL + "/user",
	})
	messageSvc := service.NewMessageService(messages)

	authHandler := NewAuthHandler(authSvc)
	messageHandler := NewMessageHandler(messageSvc)

	e := echo.New()
	e.Validator = NewAppValidator()
	e.HTTPErrorHandler = HTTPErrorHandler

	e.GET("/auth/github", authHandler.GitHubRedirect)
	e.POST("/authenticate", authHandler.Authenticate)
	e.GET("/messages/last3", messageHandler.Last3)

	protected := e.Group("", BearerAuth(authSvc))
	protected.POST("/messages", messageHandler.Post)
	protected.GET("/profile", authHandler.Profile)

	return &testApp{echo: e, auth: authSvc, users: users}
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (a *testApp) do(t *testing.T, req *http.Request) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	rec := httptest.NewRecorder()
	a.echo.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("decode response %q: %v", rec.Body.String(), err)
		}
	}
	return rec, env
}

// login runs the full authenticate flow and returns the session token.
func (a *testApp) login(t *testing.T) (token string, user domain.User) {
	t.Helper()

	result, err := a.auth.Authenticate(context.Background(), "abc123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	return result.Token, *result.User
}
