package services

import (
	"errors"
	"fmt"
	"time"

	"onboarding-service/internal/models"
	"onboarding-service/internal/repository"
)

type ITargetAnalyticsService interface {
	ComputeMonthlyProgress(executiveEmail string) (*models.MonthlyProgress, error)
}

// TargetAnalyticsService computes assigned-vs-achieved onboarding progress
// per field executive. This is a pure read recomputed on every request; there
// is no materialized counter to keep in sync.
type TargetAnalyticsService struct {
	executiveRepo repository.IAccountRepository
	employeeRepo  repository.IAccountRepository

	now func() time.Time
}

func NewTargetAnalyticsService(executiveRepo, employeeRepo repository.IAccountRepository) *TargetAnalyticsService {
	return &TargetAnalyticsService{
		executiveRepo: executiveRepo,
		employeeRepo:  employeeRepo,
		now:           time.Now,
	}
}

// ComputeMonthlyProgress counts employees onboarded by the executive since
// the start of the current UTC calendar month. An executive with no target
// and no onboardings yet gets {0, 0}; empty is a valid state.
func (s *TargetAnalyticsService) ComputeMonthlyProgress(executiveEmail string) (*models.MonthlyProgress, error) {
	executive, err := s.executiveRepo.GetAccountByEmail(executiveEmail)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("error looking up executive: %w", err)
	}

	startOfMonth := startOfUTCMonth(s.now())

	achieved, err := s.employeeRepo.CountOnboardedSince(executiveEmail, startOfMonth)
	if err != nil {
		return nil, fmt.Errorf("error counting onboarded employees: %w", err)
	}

	return &models.MonthlyProgress{
		AssignedTarget:  executive.AssignedTarget,
		CurrentAchieved: achieved,
	}, nil
}

// startOfUTCMonth returns the first instant of t's calendar month in UTC.
// Window boundaries are UTC-aligned: a record created 23:59:59 on the last
// UTC day of a month belongs to that month, not the next.
func startOfUTCMonth(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
