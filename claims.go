package identity

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// IdentityClaims exposes the token payload without leaking the JWT library
// into callers.
type IdentityClaims interface {
	Subject() string
	UserID() string
	DisplayName() string
	ClaimSet() []string
	HasClaim(claim string) bool
	Expires() time.Time
	IssuedAt() time.Time
}

// TokenClaims is the concrete implementation of IdentityClaims
type TokenClaims struct {
	jwt.RegisteredClaims
	UID    string   `json:"uid,omitempty"`
	Name   string   `json:"name,omitempty"`
	Claims []string `json:"claims,omitempty"` // role names granted to the subject
}

// Verify interface compliance
var _ IdentityClaims = (*TokenClaims)(nil)

// Subject returns the subject claim
func (c *TokenClaims) Subject() string {
	return c.RegisteredClaims.Subject
}

// UserID returns the user ID
func (c *TokenClaims) UserID() string {
	if c.UID != "" {
		return c.UID
	}
	return c.Subject()
}

// DisplayName returns the human readable name minted into the token
func (c *TokenClaims) DisplayName() string {
	return c.Name
}

// ClaimSet returns the role names carried by the token
func (c *TokenClaims) ClaimSet() []string {
	return c.Claims
}

// HasClaim checks if the token carries a specific role name
func (c *TokenClaims) HasClaim(claim string) bool {
	for _, v := range c.Claims {
		if v == claim {
			return true
		}
	}
	return false
}

// Expires returns the expiration time
func (c *TokenClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// IssuedAt returns the issued at time
func (c *TokenClaims) IssuedAt() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}
