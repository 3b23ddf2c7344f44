package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/store"
	"github.com/utafrali/storefront/pkg/httputil"
	"github.com/utafrali/storefront/pkg/validator"
)

// AuthHandler serves login, logout and the session view.
type AuthHandler struct {
	auth   *store.AuthStore
	logger *slog.Logger
}

// NewAuthHandler creates a new auth view handler.
func NewAuthHandler(auth *store.AuthStore, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, logger: logger}
}

// SessionView is the body of the auth endpoints. The token never leaves
// the client process.
type SessionView struct {
	Authenticated bool       `json:"authenticated"`
	Email         string     `json:"email,omitempty"`
	Role          string     `json:"role,omitempty"`
	IsAdmin       bool       `json:"is_admin"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
}

func renderSession(s domain.Session) SessionView {
	v := SessionView{
		Authenticated: s.Authenticated(),
		Email:         s.Email,
		Role:          s.Role,
		IsAdmin:       s.IsAdmin(),
	}
	if exp, ok := s.ExpiresAt(); ok {
		exp = exp.UTC()
		v.ExpiresAt = &exp
	}
	return v
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var creds domain.Credentials
	if err := validator.DecodeAndValidate(r, &creds); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	sess, err := h.auth.Login(r.Context(), creds)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeData(w, http.StatusOK, renderSession(sess))
}

// Logout handles POST /api/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.auth.Logout(r.Context())
	writeData(w, http.StatusOK, renderSession(h.auth.Session()))
}

// GetSession handles GET /api/auth/session
func (h *AuthHandler) GetSession(w http.ResponseWriter, _ *http.Request) {
	writeData(w, http.StatusOK, renderSession(h.auth.Session()))
}
