// Package identity supplies the signed-in user for UI affordances.
package identity

import (
	"errors"
	"fmt"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
)

// ErrNoSubject is returned for a token without a user id
var ErrNoSubject = errors.New("token has no subject")

// User is the identity decoded from the API token. The token is not
// verified here; the server does that on every request.
type User struct {
	ID        string
	Name      string
	ExpiresAt time.Time
}

// CurrentUserID implements domain.Identity
func (u *User) CurrentUserID() string { return u.ID }

// Expired reports whether the token's exp claim has passed
func (u *User) Expired(now time.Time) bool {
	return !u.ExpiresAt.IsZero() && now.After(u.ExpiresAt)
}

// FromToken reads the user id from the token's sub claim
func FromToken(token string) (*User, error) {
	parser := gojwt.NewParser()
	parsed, _, err := parser.ParseUnverified(token, gojwt.MapClaims{})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims := parsed.Claims.(gojwt.MapClaims)

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return nil, ErrNoSubject
	}
	user := &User{ID: sub}

	if name, ok := claims["name"].(string); ok {
		user.Name = name
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		user.ExpiresAt = exp.Time
	}
	return user, nil
}

// Static is an identity with a fixed user id, used by the local backend
type Static string

func (s Static) CurrentUserID() string { return string(s) }
