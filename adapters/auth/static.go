// Package auth provides transport-side authenticators that resolve
// bearer credentials into a caller identity.
package auth

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"github.com/artpar/rpcgate/app"
	"github.com/artpar/rpcgate/ports"
)

// ErrInvalidToken is returned when bearer credentials are presented but
// do not resolve to a known caller.
var ErrInvalidToken = errors.New("invalid bearer token")

// User is a statically configured caller.
type User struct {
	Name      string
	Token     string // plaintext token, or
	TokenHash []byte // bcrypt hash of the token
	Roles     []string
}

// Static authenticates bearer tokens against a fixed user list.
// Requests without credentials pass through as anonymous.
type Static struct {
	users  []User
	hasher ports.Hasher
}

// NewStatic creates a static authenticator. hasher is used for users
// configured with a token hash instead of a plaintext token.
func NewStatic(users []User, hasher ports.Hasher) *Static {
	return &Static{users: users, hasher: hasher}
}

// Authenticate resolves the request's Authorization header.
// A missing header yields a nil identity and no error.
func (s *Static) Authenticate(r *http.Request) (*app.Identity, error) {
	token, present, err := bearerToken(r)
	if err != nil {
		return nil, err
	}
	if !present {
		return nil, nil
	}

	for i := range s.users {
		u := &s.users[i]
		if u.Token != "" {
			if subtle.ConstantTimeCompare([]byte(u.Token), []byte(token)) == 1 {
				return identityFor(u), nil
			}
			continue
		}
		if len(u.TokenHash) > 0 && s.hasher != nil && s.hasher.Compare(u.TokenHash, token) {
			return identityFor(u), nil
		}
	}
	return nil, ErrInvalidToken
}

func identityFor(u *User) *app.Identity {
	roles := make(map[string]struct{}, len(u.Roles))
	for _, r := range u.Roles {
		roles[r] = struct{}{}
	}
	return &app.Identity{
		Username: u.Name,
		InRole: func(role string) bool {
			_, ok := roles[role]
			return ok
		},
	}
}

// bearerToken extracts the token from an Authorization: Bearer header.
// present is false when no Authorization header is set at all.
func bearerToken(r *http.Request) (token string, present bool, err error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false, nil
	}
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", true, ErrInvalidToken
	}
	return header[len(prefix):], true, nil
}
