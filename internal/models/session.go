package models

import "strings"

// AuthUser is the identity half of a [Session].
type AuthUser struct {
	UID      string `json:"uid"`
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
	IsVIP    bool   `json:"-"`
}

// Session is the process-wide authentication record: who is logged in and the token issued at login.
type Session struct {
	User  AuthUser `json:"user"`
	Token string   `json:"token"`
}

// Valid reports whether the session carries both an identity and a token.
func (s *Session) Valid() bool {
	return s != nil && strings.TrimSpace(s.User.UID) != "" && strings.TrimSpace(s.Token) != ""
}

// DisplayName prefers the username and falls back to email, then uid.
func (u AuthUser) DisplayName() string {
	switch {
	case u.Username != "":
		return u.Username
	case u.Email != "":
		return u.Email
	default:
		return u.UID
	}
}

// WithVIP returns a copy of the session with the VIP flag set.
func (s Session) WithVIP() Session {
	s.User.IsVIP = true
	return s
}
