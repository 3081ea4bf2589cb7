package services

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
)

const adminTokenTTL = 12 * time.Hour

// AuthService выдаёт административный JWT в обмен на пароль.
// Единственный аккаунт задаётся bcrypt-хэшем в конфигурации.
type AuthService interface {
	Login(password string) (string, error)
}

type authService struct {
	adminPasswordHash []byte
	jwtSecret         []byte
}

func NewAuthService(adminPasswordHash, jwtSecret []byte) AuthService {
	return &authService{
		adminPasswordHash: adminPasswordHash,
		jwtSecret:         jwtSecret,
	}
}

func (s *authService) Login(password string) (string, error) {
	if err := bcrypt.CompareHashAndPassword(s.adminPasswordHash, []byte(password)); err != nil {
		return "", ErrAuthInvalidCredentials
	}

	claims := jwt.MapClaims{
		"role": "admin",
		"iat":  time.Now().Unix(),
		"exp":  time.Now().Add(adminTokenTTL).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign admin token: %w", err)
	}
	return token, nil
}
