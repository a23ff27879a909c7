package service

import (
	"context"

	"github.com/zippyboards/backend/internal/model"
)

// GitHubUserInfo is the profile returned by the GitHub user API.
// EmailVerified is true only when GitHub lists Email as verified.
type GitHubUserInfo struct {
	ID            int64
	Login         string
	Email         string
	EmailVerified bool
	Name          string
}

// AuthService resolves users from credentials.
type AuthService interface {
	SignUp(ctx context.Context, email, password string) (*model.User, error)
	SignIn(ctx context.Context, email, password string) (*model.User, error)
	GetOrCreateUserFromGitHub(ctx context.Context, info *GitHubUserInfo) (*model.User, error)
	// CurrentUser returns the user of the session in ctx.
	CurrentUser(ctx context.Context) (*model.User, error)
}
