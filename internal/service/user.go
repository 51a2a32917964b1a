package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/vibe-gaming/notes/internal/domain"
	"github.com/vibe-gaming/notes/internal/repository"

	"github.com/google/uuid"
)

type userService struct {
	userRepository repository.Users
}

func newUserService(userRepository repository.Users) *userService {
	return &userService{
		userRepository: userRepository,
	}
}

// GetProfile treats a session for a missing user as unauthorized.
func (s *userService) GetProfile(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := s.userRepository.GetOneByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("get user by id failed: %w", err)
	}

	return user, nil
}
