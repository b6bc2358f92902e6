package httpapi

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"translatehub/auth"
)

const (
	ctxUserID = "user_id"
	ctxRole   = "role"
)

// requireAuth validates the bearer token and stores the actor identity on the
// request context.
func (s *Server) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		userID, role, err := s.auth.VerifyToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(ctxUserID, userID)
		c.Set(ctxRole, role)
		c.Next()
	}
}

func actorID(c *gin.Context) string {
	return c.GetString(ctxUserID)
}

func actorRole(c *gin.Context) auth.Role {
	v, _ := c.Get(ctxRole)
	role, _ := v.(auth.Role)
	return role
}
