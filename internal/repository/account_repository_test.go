package repository

import (
	"testing"
	"time"

	"onboarding-service/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockRepo(t *testing.T) (IAccountRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	return NewAccountRepository(sqlxDB, "field_executives", models.AccountTypeFieldExecutive), mock
}

func pendingAccount() *models.Account {
	return &models.Account{
		ID:             "FE-abc",
		Name:           "Asha Verma",
		Email:          "asha@example.com",
		Phone:          "9876543210",
		OrderID:        "qr_1",
		QRCodeImageURL: "https://rzp.test/qr_1.png",
		CustomerID:     "cust_1",
	}
}

func TestCreateAccount(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("INSERT INTO field_executives").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.CreateAccount(pendingAccount())
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateAccount_UniqueViolation(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("INSERT INTO field_executives").
		WillReturnError(&pq.Error{Code: "23505"})

	err := repo.CreateAccount(pendingAccount())
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestGetAccountByEmail_NotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`SELECT \* FROM field_executives WHERE email`).
		WithArgs("ghost@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email"}))

	_, err := repo.GetAccountByEmail("ghost@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetAccountByEmail_SetsAccountType(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`SELECT \* FROM field_executives WHERE email`).
		WithArgs("asha@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "is_active", "is_paid"}).
			AddRow("FE-abc", "asha@example.com", false, false))

	account, err := repo.GetAccountByEmail("asha@example.com")
	require.NoError(t, err)
	assert.Equal(t, models.AccountTypeFieldExecutive, account.AccountType)
	assert.False(t, account.IsActive)
}

func TestExistsByEmail(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("asha@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.ExistsByEmail("asha@example.com")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestMarkPaid_FlipsBothFlags(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("UPDATE field_executives").
		WithArgs("qr_1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT \* FROM field_executives WHERE order_id`).
		WithArgs("qr_1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "order_id", "is_active", "is_paid"}).
			AddRow("FE-abc", "qr_1", true, true))

	account, err := repo.MarkPaid("qr_1")
	require.NoError(t, err)
	assert.True(t, account.IsPaid)
	assert.True(t, account.IsActive)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkPaid_UnknownOrder(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("UPDATE field_executives").
		WithArgs("qr_missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := repo.MarkPaid("qr_missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeactivate_UnknownEmail(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("UPDATE field_executives").
		WithArgs("ghost@example.com").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Deactivate("ghost@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAssignTarget(t *testing.T) {
	repo, mock := newMockRepo(t)
	targetDate := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectExec("UPDATE field_executives").
		WithArgs(10, targetDate, "asha@example.com").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.AssignTarget("asha@example.com", 10, targetDate)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCountOnboardedSince_PassesWindowStart(t *testing.T) {
	repo, mock := newMockRepo(t)
	since := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT COUNT").
		WithArgs("exec@example.com", since).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	count, err := repo.CountOnboardedSince("exec@example.com", since)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}
