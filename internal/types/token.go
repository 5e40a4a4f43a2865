package types

import (
	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims are carried by service tokens issued to front-ends (the chat bot).
// Subject names the calling service.
type TokenClaims struct {
	jwt.RegisteredClaims
	Service string   `json:"service"`
	Scopes  []string `json:"scopes,omitempty"`
}

// HasScope reports whether the token grants scope; a token without scopes grants all
func (c *TokenClaims) HasScope(scope string) bool {
	if len(c.Scopes) == 0 {
		return true
	}
	for _, s := range c.Scopes {
		if s == scope {
			return true
		}
	}
	return false
}
