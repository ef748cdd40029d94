package gateway

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/novaex/tradepipe/internal/pipeerr"
)

const contextUserIDKey = "user_id"

// JWTAuth validates a Bearer token signed with signingKey (HS256) and stores
// its "sub" claim as the request's authenticated user ID.
func JWTAuth(signingKey []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			abortUnauthorized(c, "missing bearer token")
			return
		}
		raw := strings.TrimPrefix(header, "Bearer ")

		token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
			return signingKey, nil
		}, jwt.WithValidMethods([]string{"HS256"}))
		if err != nil || !token.Valid {
			abortUnauthorized(c, "invalid token")
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			abortUnauthorized(c, "invalid claims")
			return
		}
		userID, _ := claims["sub"].(string)
		if userID == "" {
			abortUnauthorized(c, "token missing sub claim")
			return
		}

		c.Set(contextUserIDKey, userID)
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, reason string) {
	c.AbortWithStatusJSON(401, gin.H{
		"error":  string(pipeerr.ErrUnauthorized),
		"reason": reason,
	})
}
