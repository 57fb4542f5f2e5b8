package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/carshow/internal/common"
	"github.com/dmitrijs2005/carshow/internal/server/auth"
	"github.com/dmitrijs2005/carshow/internal/server/models"
)

const claimsKey = "claims"

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug(c.Request.Context(), "http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start).String())
	}
}

// requireAdmin accepts "Authorization: Bearer <token>" and stores the
// session claims on the context.
func (s *Server) requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}

		claims, err := s.admins.Authenticate(strings.TrimSpace(token))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}

		c.Set(claimsKey, claims)
		c.Next()
	}
}

func (s *Server) requireRole(role models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims := sessionClaims(c); claims == nil || claims.Role != role {
			s.writeError(c, common.ErrForbidden)
			return
		}
		c.Next()
	}
}

func sessionClaims(c *gin.Context) *auth.Claims {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*auth.Claims)
	return claims
}

// actorID is the id recorded in audit entries for the current admin.
func actorID(c *gin.Context) *string {
	claims := sessionClaims(c)
	if claims == nil {
		return nil
	}
	id := claims.AdminID
	return &id
}
