package middlewares

import (
	"strings"

	"github.com/Lauda128109319/food-alert/internal/auth"
	"github.com/gin-gonic/gin"
)

// Keep this small interface so tests can fake it easily.
type TokenVerifier interface {
	VerifySessionToken(token string) (*auth.Claims, error)
}

type AuthMiddleware struct {
	jwt TokenVerifier
}

func NewAuthMiddleware(jwt TokenVerifier) *AuthMiddleware {
	return &AuthMiddleware{jwt: jwt}
}

// SessionIdentity attaches the token's identity to the context when a valid
// bearer token is present. The food endpoints stay usable without a token
// (the original client identifies itself by username alone); handlers use
// the identity, when present, to reject a mismatched username.
func (m *AuthMiddleware) SessionIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")

		if !strings.HasPrefix(authHeader, "Bearer ") {
			c.Next()
			return
		}

		raw := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer"))

		if raw == "" {
			c.Next()
			return
		}

		claims, err := m.jwt.VerifySessionToken(raw)

		if err != nil {
			// a bad token is treated as no token; the endpoints never
			// depended on one
			c.Next()
			return
		}

		c.Set(string(CtxUsername), claims.Username)
		c.Set(string(CtxUserID), claims.Subject)

		c.Next()
	}
}

// Helpers so handlers don't need to know the magic keys.

func UsernameFromContext(c *gin.Context) (string, bool) {
	v, ok := c.Get(string(CtxUsername))
	if !ok {
		return "", false
	}
	name, ok := v.(string)
	return name, ok && name != ""
}
