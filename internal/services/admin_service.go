package services

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"onboarding-service/internal/models"
	"onboarding-service/internal/repository"
)

// AdminService covers the back-office operations: password login,
// deactivation (soft delete), and monthly target assignment.
type AdminService struct {
	adminRepo    repository.IAdminRepository
	accountRepos map[models.AccountType]repository.IAccountRepository
	tokenService *TokenService
}

func NewAdminService(adminRepo repository.IAdminRepository, accountRepos map[models.AccountType]repository.IAccountRepository, tokenService *TokenService) *AdminService {
	return &AdminService{
		adminRepo:    adminRepo,
		accountRepos: accountRepos,
		tokenService: tokenService,
	}
}

func (s *AdminService) Login(email, password string) (string, error) {
	admin, err := s.adminRepo.GetAdminByEmail(email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("error looking up admin: %w", err)
	}

	if !s.adminRepo.CheckPasswordHash(password, admin.PasswordHash) {
		return "", ErrInvalidCredentials
	}

	token, err := s.tokenService.GenerateSessionToken(admin.Email, models.AccountTypeAdmin)
	if err != nil {
		return "", fmt.Errorf("error generating session token: %w", err)
	}

	return token, nil
}

// Deactivate soft-deletes an account: is_active drops to false, the row and
// its email stay. This is a distinct transition from the original pending
// state, not a rollback to NONE.
func (s *AdminService) Deactivate(email string, accountType models.AccountType) error {
	repo, ok := s.accountRepos[accountType]
	if !ok {
		return fmt.Errorf("%w: unknown account type %q", ErrValidation, accountType)
	}

	if err := repo.Deactivate(email); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrAccountNotFound
		}
		return fmt.Errorf("error deactivating account: %w", err)
	}

	slog.Info("account deactivated", "email", email, "account_type", accountType)
	return nil
}

func (s *AdminService) AssignTarget(email string, target int, targetDate time.Time) error {
	repo := s.accountRepos[models.AccountTypeFieldExecutive]

	if target < 0 {
		return fmt.Errorf("%w: assigned target cannot be negative", ErrValidation)
	}

	if err := repo.AssignTarget(email, target, targetDate); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrAccountNotFound
		}
		return fmt.Errorf("error assigning target: %w", err)
	}

	return nil
}
