package service

import (
	"crypto/subtle"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/lifelog/lifelog/internal/apperr"
)

// AuthService guards the single-admin API. Both the login password and API
// token checks are constant-time so credential comparison leaks no timing
// signal.
type AuthService struct {
	adminPassword string
	sessionSecret string
	sessionExpiry time.Duration
}

func NewAuthService(adminPassword, sessionSecret string, sessionExpiry time.Duration) *AuthService {
	return &AuthService{
		adminPassword: adminPassword,
		sessionSecret: sessionSecret,
		sessionExpiry: sessionExpiry,
	}
}

// Login verifies the admin password and issues a signed session token.
func (s *AuthService) Login(password string) (string, error) {
	if s.adminPassword == "" || !constantTimeEqual(password, s.adminPassword) {
		return "", apperr.New(apperr.CodeUnauthorized, "invalid password")
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "admin",
		"iat": now.Unix(),
		"exp": now.Add(s.sessionExpiry).Unix(),
	})

	signed, err := token.SignedString([]byte(s.sessionSecret))
	if err != nil {
		return "", apperr.Wrap(apperr.CodeUnauthorized, "failed to sign session token", err)
	}
	return signed, nil
}

// VerifySession validates a session token issued by Login.
func (s *AuthService) VerifySession(tokenString string) error {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(s.sessionSecret), nil
	})
	if err != nil || !token.Valid {
		return apperr.New(apperr.CodeUnauthorized, "invalid session")
	}
	return nil
}

func constantTimeEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
