package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/lifelog/lifelog/internal/apperr"
	"github.com/lifelog/lifelog/internal/service"
)

type AuthHandler struct {
	auth          *service.AuthService
	sessionExpiry time.Duration
	secureCookie  bool
}

func NewAuthHandler(auth *service.AuthService, sessionExpiry time.Duration, secureCookie bool) *AuthHandler {
	return &AuthHandler{
		auth:          auth,
		sessionExpiry: sessionExpiry,
		secureCookie:  secureCookie,
	}
}

type loginRequest struct {
	Password string `json:"password"`
}

// Login verifies the admin password and sets a session cookie for UI clients.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		writeError(w, apperr.New(apperr.CodeValidation, "invalid request body"))
		return
	}

	token, err := h.auth.Login(req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "session",
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.sessionExpiry.Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSON(w, http.StatusOK, map[string]string{"message": "logged in successfully"})
}
