package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ContextUserID is the gin context key holding the authenticated user id.
const ContextUserID = "userID"

// TokenValidator resolves a bearer token to a user id.
type TokenValidator interface {
	ValidateToken(token string) (uint, error)
}

// JWTAuth rejects requests without a valid bearer token and stores the
// caller's id under ContextUserID.
func JWTAuth(auth TokenValidator) gin.HandlerFunc {
	if auth == nil {
		panic("token validator cannot be nil for JWTAuth middleware")
	}

	return func(c *gin.Context) {
		token, ok := extractToken(c.GetHeader("Authorization"))
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"msg": "No token, authorization denied"})
			return
		}

		userID, err := auth.ValidateToken(token)
		if err != nil {
			logrus.WithError(err).Debug("Auth middleware: invalid token")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"msg": "Token is not valid"})
			return
		}

		c.Set(ContextUserID, userID)
		c.Next()
	}
}

// UserID returns the id stored by JWTAuth.
func UserID(c *gin.Context) uint {
	return c.GetUint(ContextUserID)
}

// extractToken accepts "Bearer <token>" with any casing of the scheme.
func extractToken(header string) (string, bool) {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}
