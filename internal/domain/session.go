package domain

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// RoleAdmin is the role that unlocks the admin views.
const RoleAdmin = "admin"

// Session is the authenticated identity held by the client. Token and Email
// are either both set or both empty.
type Session struct {
	Token string `json:"-"`
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
}

// Authenticated reports whether the session carries a token.
func (s Session) Authenticated() bool {
	return s.Token != ""
}

// IsAdmin reports whether the session role is admin, ignoring case.
func (s Session) IsAdmin() bool {
	return strings.EqualFold(s.Role, RoleAdmin)
}

// ExpiresAt reads the exp claim of a JWT token without verifying it.
// The signature belongs to the auth service; the client only reports expiry.
func (s Session) ExpiresAt() (time.Time, bool) {
	if s.Token == "" {
		return time.Time{}, false
	}
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(s.Token, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

// Credentials are submitted to the auth endpoint.
type Credentials struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginUser is the optional user echo in a login response.
type LoginUser struct {
	Email string  `json:"email"`
	Role  *string `json:"role"`
}

// LoginResponse is the auth endpoint reply. Either Token or AccessToken
// carries the session token.
type LoginResponse struct {
	Token       *string    `json:"token"`
	AccessToken *string    `json:"access_token"`
	User        *LoginUser `json:"user"`
}

// SessionToken returns the first non-empty token field, or "".
func (r LoginResponse) SessionToken() string {
	if r.Token != nil && *r.Token != "" {
		return *r.Token
	}
	if r.AccessToken != nil && *r.AccessToken != "" {
		return *r.AccessToken
	}
	return ""
}

// NewSession builds the session for a successful login. The email falls
// back to the submitted one when the server does not echo it.
func (r LoginResponse) NewSession(creds Credentials) Session {
	s := Session{Token: r.SessionToken(), Email: creds.Email}
	if r.User != nil {
		if r.User.Email != "" {
			s.Email = r.User.Email
		}
		if r.User.Role != nil {
			s.Role = *r.User.Role
		}
	}
	return s
}
