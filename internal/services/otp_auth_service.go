package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"onboarding-service/internal/models"
	"onboarding-service/internal/repository"
)

// RateLimiter is an optional throttle on OTP issuance. The intended resend
// policy is an open product question, so nil (no throttling) is the default.
type RateLimiter interface {
	Allow(ctx context.Context, key string) bool
}

type IOtpAuthService interface {
	StartLogin(ctx context.Context, email string, accountType models.AccountType) error
	VerifyLogin(ctx context.Context, email string, accountType models.AccountType, otp string) (string, error)
}

// OtpAuthService handles passwordless login for field executives and
// employees. Issuance is gated on account activation; verification is
// one-shot and mints a 7-day session token.
type OtpAuthService struct {
	accountRepos map[models.AccountType]repository.IAccountRepository
	otpStore     repository.OtpStore
	tokenService *TokenService
	publisher    NotificationPublisher
	limiter      RateLimiter
}

func NewOtpAuthService(accountRepos map[models.AccountType]repository.IAccountRepository, otpStore repository.OtpStore, tokenService *TokenService, publisher NotificationPublisher, limiter RateLimiter) *OtpAuthService {
	return &OtpAuthService{
		accountRepos: accountRepos,
		otpStore:     otpStore,
		tokenService: tokenService,
		publisher:    publisher,
		limiter:      limiter,
	}
}

// StartLogin issues an OTP for an activated account. A pending (unpaid)
// account is rejected with ErrAccountNotActive, not a generic not-found, so
// the user is told to finish payment instead of re-registering. Resend is the
// same operation; a new code overwrites the live one.
func (s *OtpAuthService) StartLogin(ctx context.Context, email string, accountType models.AccountType) error {
	repo, ok := s.accountRepos[accountType]
	if !ok {
		return fmt.Errorf("%w: unknown account type %q", ErrValidation, accountType)
	}

	account, err := repo.GetAccountByEmail(email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrAccountNotFound
		}
		return fmt.Errorf("error looking up account: %w", err)
	}

	if !IsUsable(account) {
		return ErrAccountNotActive
	}

	if s.limiter != nil && !s.limiter.Allow(ctx, fmt.Sprintf("%s:%s", accountType, email)) {
		return ErrRateLimited
	}

	code, err := s.otpStore.Issue(ctx, string(accountType), email)
	if err != nil {
		return fmt.Errorf("error issuing otp: %w", err)
	}

	go func() {
		if err := s.publisher.PublishOTP(context.Background(), account.Email, code); err != nil {
			slog.Error("failed to publish otp notification", "email", account.Email, "error", err)
		}
	}()

	return nil
}

// VerifyLogin consumes the OTP and returns a signed session token. Wrong,
// expired, and never-issued codes all surface the same ErrInvalidOtp; account
// existence is not disclosed on this path.
func (s *OtpAuthService) VerifyLogin(ctx context.Context, email string, accountType models.AccountType, otp string) (string, error) {
	if _, ok := s.accountRepos[accountType]; !ok {
		return "", fmt.Errorf("%w: unknown account type %q", ErrValidation, accountType)
	}

	ok, err := s.otpStore.Verify(ctx, string(accountType), email, otp)
	if err != nil {
		return "", fmt.Errorf("error verifying otp: %w", err)
	}
	if !ok {
		return "", ErrInvalidOtp
	}

	token, err := s.tokenService.GenerateSessionToken(email, accountType)
	if err != nil {
		return "", fmt.Errorf("error generating session token: %w", err)
	}

	return token, nil
}
