package middleware

import (
	"net/http"
	"strings"

	"vibelingo_backend/internal/service"

	"github.com/gin-gonic/gin"
)

// JWT validates the Authorization bearer token and stores account_id in
// the gin context. WebSocket clients may pass the token as ?token=
// since browsers cannot set headers on upgrade requests.
func JWT() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := ""

		if auth := c.GetHeader("Authorization"); strings.HasPrefix(auth, "Bearer ") {
			tokenString = strings.TrimPrefix(auth, "Bearer ")
		} else if q := c.Query("token"); q != "" {
			tokenString = q
		}

		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}

		accountID, err := service.ParseJWT(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set("account_id", accountID)
		c.Next()
	}
}

// OptionalJWT resolves account_id when a valid bearer token is present
// but lets anonymous requests through. Used on public endpoints that
// personalize the response for signed-in accounts.
func OptionalJWT() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := ""

		if auth := c.GetHeader("Authorization"); strings.HasPrefix(auth, "Bearer ") {
			tokenString = strings.TrimPrefix(auth, "Bearer ")
		} else if q := c.Query("token"); q != "" {
			tokenString = q
		}

		if tokenString != "" {
			if accountID, err := service.ParseJWT(tokenString); err == nil {
				c.Set("account_id", accountID)
			}
		}

		c.Next()
	}
}
