package middleware

import (
	"errors"
	"net/http"
	"strings"

	"contact-intake-api/services"

	"github.com/gin-gonic/gin"
)

// ContextClaimsKey holds the verified *services.Claims.
const ContextClaimsKey = "claims"

// TokenVerifier is satisfied by services.AuthService.
type TokenVerifier interface {
	Verify(token string) (*services.Claims, error)
}

// AuthMiddleware validates the bearer token. A missing token is 401, a token
// that does not verify is 403.
func AuthMiddleware(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := verifier.Verify(bearerToken(c.GetHeader("Authorization")))
		if err != nil {
			if errors.Is(err, services.ErrUnauthenticated) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"success": false,
					"message": "Token de acceso requerido",
				})
				return
			}
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false,
				"message": "Token inválido o expirado",
			})
			return
		}

		// Set user info in context
		c.Set(ContextClaimsKey, claims)

		c.Next()
	}
}

// bearerToken returns the second space-separated part of the header, so
// both "Bearer <t>" and any "<scheme> <t>" are accepted.
func bearerToken(header string) string {
	parts := strings.Fields(header)
	if len(parts) < 2 {
		return ""
	}
	return parts[1]
}

// ClaimsFromContext returns the claims stored by AuthMiddleware.
func ClaimsFromContext(c *gin.Context) (*services.Claims, bool) {
	v, ok := c.Get(ContextClaimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*services.Claims)
	return claims, ok
}
