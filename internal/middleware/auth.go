package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/lifelog/lifelog/internal/service"
)

// Auth guards API routes. A request passes with either the configured bearer
// token (compared constant-time) or a valid session cookie from web login.
// An empty configured token disables the check entirely (development).
type Auth struct {
	apiToken    string
	authService *service.AuthService
}

func NewAuth(apiToken string, authService *service.AuthService) *Auth {
	return &Auth{
		apiToken:    apiToken,
		authService: authService,
	}
}

// Require wraps a handler so it only runs for authenticated requests.
func (a *Auth) Require(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if a.apiToken == "" {
			next(w, r)
			return
		}

		if a.bearerOK(r) || a.sessionOK(r) {
			next(w, r)
			return
		}

		w.Header().Set("WWW-Authenticate", "Bearer")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"code":"unauthorized","message":"invalid authentication credentials"}`))
	}
}

func (a *Auth) bearerOK(r *http.Request) bool {
	header := r.Header.Get("Authorization")
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(a.apiToken)) == 1
}

func (a *Auth) sessionOK(r *http.Request) bool {
	cookie, err := r.Cookie("session")
	if err != nil {
		return false
	}
	return a.authService.VerifySession(cookie.Value) == nil
}
