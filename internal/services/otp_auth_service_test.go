package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"onboarding-service/internal/models"
	"onboarding-service/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type otpEntry struct {
	code      string
	expiresAt time.Time
}

// fakeOtpStore mirrors the redis store contract: 300s TTL, overwrite on
// reissue, atomic consume-on-attempt verification. The clock is injectable so
// expiry is testable without sleeping.
type fakeOtpStore struct {
	mu       sync.Mutex
	codes    map[string]otpEntry
	nextCode string
	now      func() time.Time
}

func newFakeOtpStore() *fakeOtpStore {
	return &fakeOtpStore{
		codes:    make(map[string]otpEntry),
		nextCode: "123456",
		now:      time.Now,
	}
}

func (s *fakeOtpStore) Issue(ctx context.Context, namespace, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	code := s.nextCode
	s.codes[namespace+":"+key] = otpEntry{
		code:      code,
		expiresAt: s.now().Add(300 * time.Second),
	}
	return code, nil
}

func (s *fakeOtpStore) Verify(ctx context.Context, namespace, key, candidate string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.codes[namespace+":"+key]
	if !ok {
		return false, nil
	}
	// Consumed on every attempt, matching the store's atomic get-and-delete.
	delete(s.codes, namespace+":"+key)
	if s.now().After(entry.expiresAt) {
		return false, nil
	}
	return entry.code == candidate, nil
}

type fakeLimiter struct {
	allow bool
}

func (l *fakeLimiter) Allow(ctx context.Context, key string) bool {
	return l.allow
}

func activeAccount(email string) *models.Account {
	return &models.Account{
		ID:       "FE-test",
		Name:     "Asha Verma",
		Email:    email,
		IsActive: true,
		IsPaid:   true,
	}
}

func newTestOtpAuthService(limiter RateLimiter) (*OtpAuthService, *fakeAccountRepo, *fakeOtpStore, *fakePublisher) {
	repo := newFakeAccountRepo()
	store := newFakeOtpStore()
	pub := newFakePublisher()
	tokens := NewTokenService("test-secret")
	repos := map[models.AccountType]repository.IAccountRepository{
		models.AccountTypeFieldExecutive: repo,
	}
	svc := NewOtpAuthService(repos, store, tokens, pub, limiter)
	return svc, repo, store, pub
}

func TestStartLogin_IssuesOTPForActiveAccount(t *testing.T) {
	svc, repo, store, pub := newTestOtpAuthService(nil)
	repo.accounts["asha@example.com"] = activeAccount("asha@example.com")

	err := svc.StartLogin(context.Background(), "asha@example.com", models.AccountTypeFieldExecutive)
	require.NoError(t, err)

	_, issued := store.codes["field_executive:asha@example.com"]
	assert.True(t, issued)

	e := pub.waitForEvent(t)
	assert.Equal(t, "otp", e.kind)
	assert.Equal(t, "asha@example.com", e.to)
	assert.Equal(t, "123456", e.code)
}

func TestStartLogin_InactiveAccountRejected(t *testing.T) {
	svc, repo, store, _ := newTestOtpAuthService(nil)

	// Pending registration: unpaid and inactive.
	pending := activeAccount("pending@example.com")
	pending.IsActive = false
	pending.IsPaid = false
	repo.accounts["pending@example.com"] = pending

	// Deactivated after payment: is_paid alone does not grant access.
	deactivated := activeAccount("off@example.com")
	deactivated.IsActive = false
	repo.accounts["off@example.com"] = deactivated

	err := svc.StartLogin(context.Background(), "pending@example.com", models.AccountTypeFieldExecutive)
	assert.ErrorIs(t, err, ErrAccountNotActive)

	err = svc.StartLogin(context.Background(), "off@example.com", models.AccountTypeFieldExecutive)
	assert.ErrorIs(t, err, ErrAccountNotActive)

	assert.Empty(t, store.codes, "no code may be issued for an inactive account")
}

func TestStartLogin_UnknownAccount(t *testing.T) {
	svc, _, _, _ := newTestOtpAuthService(nil)

	err := svc.StartLogin(context.Background(), "ghost@example.com", models.AccountTypeFieldExecutive)
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestStartLogin_UnknownAccountType(t *testing.T) {
	svc, _, _, _ := newTestOtpAuthService(nil)

	err := svc.StartLogin(context.Background(), "asha@example.com", models.AccountType("vendor"))
	assert.ErrorIs(t, err, ErrValidation)
}

func TestStartLogin_RateLimited(t *testing.T) {
	svc, repo, store, _ := newTestOtpAuthService(&fakeLimiter{allow: false})
	repo.accounts["asha@example.com"] = activeAccount("asha@example.com")

	err := svc.StartLogin(context.Background(), "asha@example.com", models.AccountTypeFieldExecutive)
	assert.ErrorIs(t, err, ErrRateLimited)
	assert.Empty(t, store.codes)
}

func TestVerifyLogin_OneTimeUse(t *testing.T) {
	svc, repo, _, pub := newTestOtpAuthService(nil)
	repo.accounts["asha@example.com"] = activeAccount("asha@example.com")

	require.NoError(t, svc.StartLogin(context.Background(), "asha@example.com", models.AccountTypeFieldExecutive))
	e := pub.waitForEvent(t)

	token, err := svc.VerifyLogin(context.Background(), "asha@example.com", models.AccountTypeFieldExecutive, e.code)
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	_, err = svc.VerifyLogin(context.Background(), "asha@example.com", models.AccountTypeFieldExecutive, e.code)
	assert.ErrorIs(t, err, ErrInvalidOtp, "a consumed code must not verify again")
}

func TestVerifyLogin_AttemptConsumesCode(t *testing.T) {
	svc, repo, store, pub := newTestOtpAuthService(nil)
	repo.accounts["asha@example.com"] = activeAccount("asha@example.com")

	require.NoError(t, svc.StartLogin(context.Background(), "asha@example.com", models.AccountTypeFieldExecutive))
	e := pub.waitForEvent(t)

	_, err := svc.VerifyLogin(context.Background(), "asha@example.com", models.AccountTypeFieldExecutive, "000000")
	assert.ErrorIs(t, err, ErrInvalidOtp)

	// The attempt consumed the code; the real one is no longer accepted.
	_, err = svc.VerifyLogin(context.Background(), "asha@example.com", models.AccountTypeFieldExecutive, e.code)
	assert.ErrorIs(t, err, ErrInvalidOtp)
	assert.Empty(t, store.codes)

	// A fresh code restores access.
	require.NoError(t, svc.StartLogin(context.Background(), "asha@example.com", models.AccountTypeFieldExecutive))
	e = pub.waitForEvent(t)
	token, err := svc.VerifyLogin(context.Background(), "asha@example.com", models.AccountTypeFieldExecutive, e.code)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
}

func TestVerifyLogin_ExpiredCode(t *testing.T) {
	svc, repo, store, pub := newTestOtpAuthService(nil)
	repo.accounts["asha@example.com"] = activeAccount("asha@example.com")

	issuedAt := time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return issuedAt }

	require.NoError(t, svc.StartLogin(context.Background(), "asha@example.com", models.AccountTypeFieldExecutive))
	e := pub.waitForEvent(t)

	store.now = func() time.Time { return issuedAt.Add(301 * time.Second) }
	_, err := svc.VerifyLogin(context.Background(), "asha@example.com", models.AccountTypeFieldExecutive, e.code)
	assert.ErrorIs(t, err, ErrInvalidOtp, "an expired code must be indistinguishable from a wrong one")

	// A code issued after the old one expired verifies inside its own window.
	require.NoError(t, svc.StartLogin(context.Background(), "asha@example.com", models.AccountTypeFieldExecutive))
	e = pub.waitForEvent(t)
	store.now = func() time.Time { return issuedAt.Add(601 * time.Second) }
	token, err := svc.VerifyLogin(context.Background(), "asha@example.com", models.AccountTypeFieldExecutive, e.code)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
}

func TestVerifyLogin_NeverIssued(t *testing.T) {
	svc, repo, _, _ := newTestOtpAuthService(nil)
	repo.accounts["asha@example.com"] = activeAccount("asha@example.com")

	_, err := svc.VerifyLogin(context.Background(), "asha@example.com", models.AccountTypeFieldExecutive, "123456")
	assert.ErrorIs(t, err, ErrInvalidOtp)
}

func TestVerifyLogin_ResendOverwrites(t *testing.T) {
	svc, repo, store, pub := newTestOtpAuthService(nil)
	repo.accounts["asha@example.com"] = activeAccount("asha@example.com")

	require.NoError(t, svc.StartLogin(context.Background(), "asha@example.com", models.AccountTypeFieldExecutive))
	first := pub.waitForEvent(t)

	store.nextCode = "654321"
	require.NoError(t, svc.StartLogin(context.Background(), "asha@example.com", models.AccountTypeFieldExecutive))
	second := pub.waitForEvent(t)

	_, err := svc.VerifyLogin(context.Background(), "asha@example.com", models.AccountTypeFieldExecutive, first.code)
	assert.ErrorIs(t, err, ErrInvalidOtp, "a resend invalidates the earlier code")

	// Only the latest code ever verifies.
	require.NoError(t, svc.StartLogin(context.Background(), "asha@example.com", models.AccountTypeFieldExecutive))
	second = pub.waitForEvent(t)
	token, err := svc.VerifyLogin(context.Background(), "asha@example.com", models.AccountTypeFieldExecutive, second.code)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
}

func TestVerifyLogin_TokenCarriesIdentity(t *testing.T) {
	svc, repo, _, pub := newTestOtpAuthService(nil)
	repo.accounts["asha@example.com"] = activeAccount("asha@example.com")

	require.NoError(t, svc.StartLogin(context.Background(), "asha@example.com", models.AccountTypeFieldExecutive))
	e := pub.waitForEvent(t)

	token, err := svc.VerifyLogin(context.Background(), "asha@example.com", models.AccountTypeFieldExecutive, e.code)
	require.NoError(t, err)

	claims, err := svc.tokenService.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, "asha@example.com", claims.Email)
	assert.Equal(t, models.AccountTypeFieldExecutive, claims.AccountType)
}
