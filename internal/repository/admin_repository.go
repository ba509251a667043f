package repository

import (
	"database/sql"
	"fmt"
	"time"

	"onboarding-service/internal/models"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
)

type IAdminRepository interface {
	CreateAdmin(admin *models.Admin) error
	GetAdminByEmail(email string) (*models.Admin, error)
	CheckPasswordHash(password, hash string) bool
}

type AdminRepository struct {
	db *sqlx.DB
}

func NewAdminRepository(db *sqlx.DB) IAdminRepository {
	return &AdminRepository{
		db: db,
	}
}

func (r *AdminRepository) CreateAdmin(admin *models.Admin) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(admin.PasswordHash), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	admin.PasswordHash = string(hashedPassword)
	admin.CreatedAt = time.Now()

	query := `
		INSERT INTO admins (id, email, password_hash, created_at)
		VALUES (:id, :email, :password_hash, :created_at)
		ON CONFLICT (email) DO NOTHING
	`
	_, err = r.db.NamedExec(query, admin)
	if err != nil {
		return fmt.Errorf("failed to create admin: %w", err)
	}

	return nil
}

func (r *AdminRepository) GetAdminByEmail(email string) (*models.Admin, error) {
	var admin models.Admin
	query := `SELECT * FROM admins WHERE email = $1`

	err := r.db.Get(&admin, query, email)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get admin by email: %w", err)
	}

	return &admin, nil
}

func (r *AdminRepository) CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
