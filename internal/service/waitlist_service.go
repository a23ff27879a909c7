package service

import (
	"context"
	"errors"

	"github.com/zippyboards/backend/internal/model"
	"github.com/zippyboards/backend/internal/repository"
)

// WaitlistService records launch waitlist signups.
type WaitlistService interface {
	Join(ctx context.Context, email string) (*model.WaitlistEntry, error)
}

// WaitlistServiceImpl implements WaitlistService.
type WaitlistServiceImpl struct {
	repo repository.WaitlistRepository
}

func NewWaitlistService(repo repository.WaitlistRepository) WaitlistService {
	return &WaitlistServiceImpl{repo: repo}
}

// Join adds email to the waitlist. Malformed and duplicate emails are validation failures.
func (s *WaitlistServiceImpl) Join(ctx context.Context, email string) (*model.WaitlistEntry, error) {
	addr, err := parseEmail(email)
	if err != nil {
		return nil, err
	}
	entry := &model.WaitlistEntry{Email: addr}
	err = s.repo.Add(ctx, entry)
	if errors.Is(err, repository.ErrAlreadyExists) {
		return nil, newError(CodeValidationFailure, "This email is already on our waitlist!")
	}
	if err != nil {
		return nil, remoteError("Failed to join the waitlist", err)
	}
	return entry, nil
}
