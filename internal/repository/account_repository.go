package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"onboarding-service/internal/models"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

var (
	ErrNotFound       = errors.New("record not found")
	ErrDuplicateEmail = errors.New("email already registered")
)

type IAccountRepository interface {
	CreateAccount(account *models.Account) error
	GetAccountByEmail(email string) (*models.Account, error)
	GetAccountByOrderID(orderID string) (*models.Account, error)
	ExistsByEmail(email string) (bool, error)
	// MarkPaid flips is_paid and is_active together in a single UPDATE; this
	// is the activation contract of the payment-confirmation path.
	MarkPaid(orderID string) (*models.Account, error)
	Deactivate(email string) error
	AssignTarget(email string, target int, targetDate time.Time) error
	CountOnboardedSince(ownerEmail string, since time.Time) (int, error)
}

// AccountRepository serves one account table. Field executives and employees
// share the same row shape, so the same repository is instantiated once per
// table.
type AccountRepository struct {
	db          *sqlx.DB
	table       string
	accountType models.AccountType
}

func NewAccountRepository(db *sqlx.DB, table string, accountType models.AccountType) IAccountRepository {
	return &AccountRepository{
		db:          db,
		table:       table,
		accountType: accountType,
	}
}

func (r *AccountRepository) CreateAccount(account *models.Account) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, name, email, phone, address, pincode, is_active, is_paid,
		                order_id, qr_code_image_url, customer_id, owner_email, created_at, updated_at)
		VALUES (:id, :name, :email, :phone, :address, :pincode, :is_active, :is_paid,
		        :order_id, :qr_code_image_url, :customer_id, :owner_email, :created_at, :updated_at)
	`, r.table)

	account.CreatedAt = time.Now()
	account.UpdatedAt = time.Now()

	_, err := r.db.NamedExec(query, account)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("failed to create account: %w", err)
	}

	return nil
}

func (r *AccountRepository) GetAccountByEmail(email string) (*models.Account, error) {
	var account models.Account
	query := fmt.Sprintf(`SELECT * FROM %s WHERE email = $1`, r.table)

	err := r.db.Get(&account, query, email)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get account by email: %w", err)
	}
	account.AccountType = r.accountType

	return &account, nil
}

func (r *AccountRepository) GetAccountByOrderID(orderID string) (*models.Account, error) {
	var account models.Account
	query := fmt.Sprintf(`SELECT * FROM %s WHERE order_id = $1`, r.table)

	err := r.db.Get(&account, query, orderID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get account by order id: %w", err)
	}
	account.AccountType = r.accountType

	return &account, nil
}

func (r *AccountRepository) ExistsByEmail(email string) (bool, error) {
	var exists bool
	query := fmt.Sprintf(`SELECT EXISTS(SELECT 1 FROM %s WHERE email = $1)`, r.table)

	err := r.db.Get(&exists, query, email)
	if err != nil {
		return false, fmt.Errorf("failed to check account existence: %w", err)
	}

	return exists, nil
}

func (r *AccountRepository) MarkPaid(orderID string) (*models.Account, error) {
	query := fmt.Sprintf(`
		UPDATE %s
		SET is_paid = TRUE,
		    is_active = TRUE,
		    updated_at = now()
		WHERE order_id = $1
	`, r.table)

	result, err := r.db.Exec(query, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to mark account paid: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, ErrNotFound
	}

	return r.GetAccountByOrderID(orderID)
}

func (r *AccountRepository) Deactivate(email string) error {
	query := fmt.Sprintf(`UPDATE %s SET is_active = FALSE, updated_at = now() WHERE email = $1`, r.table)

	result, err := r.db.Exec(query, email)
	if err != nil {
		return fmt.Errorf("failed to deactivate account: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *AccountRepository) AssignTarget(email string, target int, targetDate time.Time) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET assigned_target = $1,
		    target_date = $2,
		    updated_at = now()
		WHERE email = $3
	`, r.table)

	result, err := r.db.Exec(query, target, targetDate, email)
	if err != nil {
		return fmt.Errorf("failed to assign target: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// CountOnboardedSince counts rows owned by the given executive with
// created_at on or after the window start. No upper bound: future-dated rows
// should not occur and are not specially excluded.
func (r *AccountRepository) CountOnboardedSince(ownerEmail string, since time.Time) (int, error) {
	var count int
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE owner_email = $1 AND created_at >= $2`, r.table)

	err := r.db.Get(&count, query, ownerEmail, since)
	if err != nil {
		return 0, fmt.Errorf("failed to count onboarded accounts: %w", err)
	}

	return count, nil
}
