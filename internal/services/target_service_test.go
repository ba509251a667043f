package services

import (
	"testing"
	"time"

	"onboarding-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedEmployee(repo *fakeAccountRepo, email, ownerEmail string, createdAt time.Time) {
	repo.accounts[email] = &models.Account{
		ID:         "EMP-" + email,
		Email:      email,
		OwnerEmail: ownerEmail,
		CreatedAt:  createdAt,
	}
}

func TestComputeMonthlyProgress_UTCMonthBoundary(t *testing.T) {
	execRepo := newFakeAccountRepo()
	employeeRepo := newFakeAccountRepo()

	exec := activeAccount("exec@example.com")
	exec.AssignedTarget = 5
	execRepo.accounts["exec@example.com"] = exec

	// One second before the month rolls over and the first instant after.
	seedEmployee(employeeRepo, "jan@example.com", "exec@example.com", time.Date(2024, 1, 31, 23, 59, 59, 0, time.UTC))
	seedEmployee(employeeRepo, "feb@example.com", "exec@example.com", time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))
	seedEmployee(employeeRepo, "other@example.com", "someone-else@example.com", time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC))

	svc := NewTargetAnalyticsService(execRepo, employeeRepo)
	svc.now = func() time.Time { return time.Date(2024, 2, 15, 12, 0, 0, 0, time.UTC) }

	progress, err := svc.ComputeMonthlyProgress("exec@example.com")
	require.NoError(t, err)

	assert.Equal(t, 5, progress.AssignedTarget)
	assert.Equal(t, 1, progress.CurrentAchieved, "only the February onboarding by this executive counts")
}

func TestComputeMonthlyProgress_EmptyState(t *testing.T) {
	execRepo := newFakeAccountRepo()
	employeeRepo := newFakeAccountRepo()
	execRepo.accounts["exec@example.com"] = activeAccount("exec@example.com")

	svc := NewTargetAnalyticsService(execRepo, employeeRepo)

	progress, err := svc.ComputeMonthlyProgress("exec@example.com")
	require.NoError(t, err)

	assert.Equal(t, 0, progress.AssignedTarget)
	assert.Equal(t, 0, progress.CurrentAchieved)
}

func TestComputeMonthlyProgress_UnknownExecutive(t *testing.T) {
	svc := NewTargetAnalyticsService(newFakeAccountRepo(), newFakeAccountRepo())

	_, err := svc.ComputeMonthlyProgress("ghost@example.com")
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestStartOfUTCMonth(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)

	cases := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{
			name: "mid month utc",
			in:   time.Date(2024, 2, 15, 12, 0, 0, 0, time.UTC),
			want: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "first instant of month",
			in:   time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
			want: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "local month ahead of utc month",
			// 01:00 IST on March 1st is still February 29th in UTC.
			in:   time.Date(2024, 3, 1, 1, 0, 0, 0, ist),
			want: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.True(t, startOfUTCMonth(tc.in).Equal(tc.want))
		})
	}
}
