package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/goonthug/sport-kursach/internal/domain"
	"github.com/goonthug/sport-kursach/internal/repository"
)

type identityService struct {
	userRepo repository.UserRepository
}

func NewIdentityService(userRepo repository.UserRepository) IdentityService {
	return &identityService{userRepo: userRepo}
}

// Resolve loads the user and the role profile matching their role.
// Inactive users resolve to an access denial so stale tokens stop
// working immediately.
func (s *identityService) Resolve(ctx context.Context, userID uuid.UUID) (*domain.Identity, error) {
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, fmt.Errorf("account is deactivated: %w", domain.ErrAccessDenied)
	}

	identity := &domain.Identity{User: *user}
	switch user.Role {
	case domain.RoleClient:
		identity.Client, err = s.userRepo.GetClientByUserID(ctx, user.ID)
	case domain.RoleOwner:
		identity.Owner, err = s.userRepo.GetOwnerByUserID(ctx, user.ID)
	case domain.RoleManager:
		identity.Manager, err = s.userRepo.GetManagerByUserID(ctx, user.ID)
	case domain.RoleAdministrator:
		// Administrators have no profile row.
	default:
		return nil, fmt.Errorf("unknown role %q: %w", user.Role, domain.ErrAccessDenied)
	}
	if err != nil {
		return nil, fmt.Errorf("load %s profile: %w", user.Role, err)
	}
	return identity, nil
}
