package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/zippyboards/backend/internal/model"
	"github.com/zippyboards/backend/internal/repository"
	"github.com/zippyboards/backend/pkg/auth"
)

const (
	passwordMinLen = 6
	// bcrypt ignores input past 72 bytes
	passwordMaxLen = 72
)

// AuthServiceImpl implements AuthService.
type AuthServiceImpl struct {
	userRepo repository.UserRepository
	cost     int
}

// NewAuthService wires the service with bcrypt.DefaultCost.
func NewAuthService(userRepo repository.UserRepository) AuthService {
	return &AuthServiceImpl{userRepo: userRepo, cost: bcrypt.DefaultCost}
}

// SignUp registers an email/password account.
func (s *AuthServiceImpl) SignUp(ctx context.Context, email, password string) (*model.User, error) {
	addr, err := parseEmail(email)
	if err != nil {
		return nil, err
	}
	if len(password) < passwordMinLen || len(password) > passwordMaxLen {
		return nil, newError(CodeValidationFailure, "Password should be between 6 and 72 characters.")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &model.User{Email: addr, PasswordHash: string(hash)}
	err = s.userRepo.Create(ctx, u)
	if errors.Is(err, repository.ErrAlreadyExists) {
		return nil, newError(CodeValidationFailure, "User already registered.")
	}
	if err != nil {
		return nil, remoteError("Failed to sign up", err)
	}
	slog.Info("new user created", "user_id", u.ID, "provider", "email")
	return u, nil
}

// SignIn checks an email/password pair.
func (s *AuthServiceImpl) SignIn(ctx context.Context, email, password string) (*model.User, error) {
	invalid := newError(CodeUnauthenticated, "Invalid login credentials.")
	if email == "" || password == "" {
		return nil, newError(CodeValidationFailure, "Email and password are required.")
	}

	u, err := s.userRepo.FindByEmail(ctx, model.NormalizeEmail(email))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, invalid
	}
	if err != nil {
		return nil, remoteError("Failed to sign in", err)
	}
	if u.PasswordHash == "" {
		return nil, invalid
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, invalid
	}
	return u, nil
}

// GetOrCreateUserFromGitHub finds the user linked to the GitHub account,
// links an existing account with the same verified email, or creates a new
// one. An unverified email is never stored or linked; the account falls back
// to the login's noreply address.
func (s *AuthServiceImpl) GetOrCreateUserFromGitHub(ctx context.Context, info *GitHubUserInfo) (*model.User, error) {
	githubID := fmt.Sprintf("%d", info.ID)
	u, err := s.userRepo.FindByGitHubID(ctx, githubID)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, remoteError("Failed to look up GitHub user", err)
	}

	email := model.NormalizeEmail(info.Email)
	verified := info.EmailVerified && email != ""
	if !verified {
		email = model.NormalizeEmail(info.Login + "@users.noreply.github.com")
	}

	existing, err := s.userRepo.FindByEmail(ctx, email)
	switch {
	case err == nil:
		if !verified {
			slog.Warn("github link refused for unverified email", "user_id", existing.ID, "github_id", githubID)
			return nil, ErrGitHubEmailUnverified
		}
		if err := s.userRepo.SetGitHubID(ctx, existing.ID, githubID); err != nil {
			return nil, remoteError("Failed to link GitHub account", err)
		}
		existing.GitHubID = githubID
		slog.Info("github account linked", "user_id", existing.ID)
		return existing, nil
	case !errors.Is(err, repository.ErrNotFound):
		return nil, remoteError("Failed to look up user", err)
	}

	name := info.Name
	if name == "" {
		name = info.Login
	}
	newUser := &model.User{Email: email, GitHubID: githubID, Name: name}
	if err := s.userRepo.Create(ctx, newUser); err != nil {
		slog.Error("create github user failed", "error", err)
		return nil, remoteError("Failed to create user", err)
	}
	slog.Info("new user created", "user_id", newUser.ID, "provider", "github")
	return newUser, nil
}

// CurrentUser returns the user of the session in ctx.
func (s *AuthServiceImpl) CurrentUser(ctx context.Context) (*model.User, error) {
	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		return nil, ErrUnauthenticated
	}
	u, err := s.userRepo.FindByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUnauthenticated
	}
	if err != nil {
		return nil, remoteError("Failed to load user", err)
	}
	return u, nil
}
