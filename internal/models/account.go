package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AccountType selects which onboarding policy and table an account belongs to.
type AccountType string

const (
	AccountTypeFieldExecutive AccountType = "field_executive"
	AccountTypeEmployee       AccountType = "employee"
	AccountTypeAdmin          AccountType = "admin"
)

// Account is a field-executive or employee record. An account is created in a
// pending state (is_active=false, is_paid=false) and becomes usable only after
// the payment-confirmation path flips both flags. Accounts are never hard
// deleted; admin deactivation sets is_active back to false.
type Account struct {
	ID             string      `json:"id" db:"id"`
	AccountType    AccountType `json:"account_type" db:"-"`
	Name           string      `json:"name" db:"name"`
	Email          string      `json:"email" db:"email"`
	Phone          string      `json:"phone" db:"phone"`
	Address        string      `json:"address" db:"address"`
	Pincode        string      `json:"pincode" db:"pincode"`
	Block          *string     `json:"block" db:"block"`
	IsActive       bool        `json:"is_active" db:"is_active"`
	IsPaid         bool        `json:"is_paid" db:"is_paid"`
	OrderID        string      `json:"order_id" db:"order_id"`
	QRCodeImageURL string      `json:"qr_code_image_url" db:"qr_code_image_url"`
	CustomerID     string      `json:"customer_id" db:"customer_id"`
	AssignedTarget int         `json:"assigned_target" db:"assigned_target"`
	TargetDate     *time.Time  `json:"target_date" db:"target_date"`
	// OwnerEmail is the onboarding field executive's email. Empty for
	// field-executive accounts themselves.
	OwnerEmail string    `json:"owner_email,omitempty" db:"owner_email"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

// Admin is a back-office account with password login.
type Admin struct {
	ID           string    `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// PendingOrder is the short-lived cached payment artifact returned as-is when
// the same email retries within the cache window, so a retry does not mint a
// second QR at the gateway.
type PendingOrder struct {
	ID         string `json:"id"`
	QRImageURL string `json:"qr_image_url"`
	Amount     int64  `json:"amount"`
	Currency   string `json:"currency"`
	CustomerID string `json:"customer_id"`
}

// MonthlyProgress is the per-executive assigned-vs-achieved window, computed
// at read time.
type MonthlyProgress struct {
	AssignedTarget  int `json:"assigned_target"`
	CurrentAchieved int `json:"current_achieved"`
}

type Claims struct {
	jwt.RegisteredClaims
	Email       string      `json:"email"`
	AccountType AccountType `json:"account_type"`
}
