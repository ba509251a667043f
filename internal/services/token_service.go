package services

import (
	"fmt"
	"time"

	"onboarding-service/internal/models"
	"onboarding-service/utils"

	"github.com/golang-jwt/jwt/v5"
)

const sessionTokenTTL = 7 * 24 * time.Hour

type TokenService struct {
	JWTSecret string
}

func NewTokenService(jwtSecret string) *TokenService {
	return &TokenService{
		JWTSecret: jwtSecret,
	}
}

func (t *TokenService) GenerateSessionToken(email string, accountType models.AccountType) (string, error) {
	claim := models.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        "C-" + utils.GenerateRandomStringWithLength(6),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(sessionTokenTTL)),
			Issuer:    "onboarding-service",
		},
		Email:       email,
		AccountType: accountType,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claim)
	tokenString, err := token.SignedString([]byte(t.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("error generate token string: %s", err)
	}
	return tokenString, nil
}

func (t *TokenService) VerifyToken(tokenString string) (*models.Claims, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&models.Claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(t.JWTSecret), nil
		},
	)
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(*models.Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}

	return claims, nil
}
