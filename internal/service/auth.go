package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"

	"github.com/mizuki/heatboard/internal/domain"
)

const (
	defaultProfileURL = "https://api.github.com/user"
	sessionTokenTTL   = 24 * time.Hour
)

// UserStore defines the user data access interface consumed by AuthService.
type UserStore interface {
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByGitHubID(ctx context.Context, githubID int64) (*domain.User, error)
	Create(ctx context.Context, user domain.User) (*domain.User, error)
}

// AuthConfig holds OAuth and token-signing configuration.
type AuthConfig struct {
	GitHubClientID     string
	GitHubClientSecret string
	JWTSecret          string
	FrontendURL        string

	// Endpoint and ProfileURL override GitHub's endpoints when non-zero.
	Endpoint   oauth2.Endpoint
	ProfileURL string
}

// AuthService runs the GitHub login flow: exchange the authorization code,
// fetch the profile, resolve the local user and mint a session token.
type AuthService struct {
	users      UserStore
	jwtSecret  []byte
	oauth      *oauth2.Config
	profileURL string
	httpClient *http.Client
}

// NewAuthService creates a new AuthService.
func NewAuthService(users UserStore, cfg AuthConfig) *AuthService {
	endpoint := cfg.Endpoint
	if endpoint.TokenURL == "" {
		endpoint = github.Endpoint
	}
	profileURL := cfg.ProfileURL
	if profileURL == "" {
		profileURL = defaultProfileURL
	}
	return &AuthService{
		users:     users,
		jwtSecret: []byte(cfg.JWTSecret),
		oauth: &oauth2.Config{
			ClientID:     cfg.GitHubClientID,
			ClientSecret: cfg.GitHubClientSecret,
			Endpoint:     endpoint,
			RedirectURL:  cfg.FrontendURL + "/auth/github/callback",
		},
		profileURL: profileURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// AuthCodeURL returns the GitHub OAuth authorization URL.
func (s *AuthService) AuthCodeURL(state string) string {
	return s.oauth.AuthCodeURL(state)
}

// AuthResult is the outcome of a successful login.
type AuthResult struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

// Authenticate exchanges a one-time authorization code for a session token.
// The flow is strictly sequential with no retries: code exchange, profile
// fetch, user lookup (create on first login), token issue. A repeat login
// returns the stored user untouched even if the GitHub profile has since
// changed.
func (s *AuthService) Authenticate(ctx context.Context, code string) (*AuthResult, error) {
	token, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			return nil, fmt.Errorf("%w: authorization code rejected", domain.ErrExternalAuth)
		}
		return nil, fmt.Errorf("%w: token exchange: %v", domain.ErrProviderUnavailable, err)
	}

	profile, err := s.fetchProfile(ctx, token.AccessToken)
	if err != nil {
		return nil, err
	}

	user, err := s.resolveUser(ctx, profile)
	if err != nil {
		return nil, err
	}

	signed, err := s.issueToken(user)
	if err != nil {
		return nil, err
	}

	return &AuthResult{Token: signed, User: user}, nil
}

// ValidateToken validates a session token and returns the user ID it was
// issued for.
func (s *AuthService) ValidateToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return "", fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", domain.ErrUnauthorized
	}

	userID, ok := claims["sub"].(string)
	if !ok || userID == "" {
		return "", domain.ErrUnauthorized
	}

	return userID, nil
}

// GetUser retrieves a user by ID.
func (s *AuthService) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	return s.users.FindByID(ctx, userID)
}

func (s *AuthService) resolveUser(ctx context.Context, profile *githubProfile) (*domain.User, error) {
	user, err := s.users.FindByGitHubID(ctx, profile.ID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	created, err := s.users.Create(ctx, domain.User{
		ID:        uuid.NewString(),
		GitHubID:  profile.ID,
		Login:     profile.Login,
		AvatarURL: profile.AvatarURL,
		Name:      profile.Name,
	})
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return created, nil
}

func (s *AuthService) issueToken(user *domain.User) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user": map[string]any{
			"id":         user.ID,
			"name":       user.Name,
			"avatar_url": user.AvatarURL,
		},
		"sub": user.ID,
		"iat": now.Unix(),
		"exp": now.Add(sessionTokenTTL).Unix(),
	})
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

type githubProfile struct {
	ID        int64   `json:"id"`
	Login     string  `json:"login"`
	AvatarURL string  `json:"avatar_url"`
	Name      *string `json:"name"`
}

func (s *AuthService) fetchProfile(ctx context.Context, accessToken string) (*githubProfile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.profileURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/vnd.github.v3+json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch profile: %v", domain.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%w: access token rejected", domain.ErrExternalAuth)
	default:
		return nil, fmt.Errorf("%w: profile endpoint returned status %d", domain.ErrProviderUnavailable, resp.StatusCode)
	}

	var profile githubProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	return &profile, nil
}
