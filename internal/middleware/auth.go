package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/JesperSolutions/agritectum-platform-sub017/internal/authz"
	"github.com/JesperSolutions/agritectum-platform-sub017/internal/domain"
	"github.com/JesperSolutions/agritectum-platform-sub017/internal/service"
)

const (
	ContextKeyPrincipal = "principal"
	ContextKeyClaims    = "claims"
)

// AuthMiddleware returns Gin middleware that validates JWT tokens and injects
// the authenticated principal.
func AuthMiddleware(authService service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   gin.H{"code": "UNAUTHORIZED", "message": "missing or invalid authorization header"},
			})
			return
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		claims, err := authService.ValidateToken(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   gin.H{"code": "UNAUTHORIZED", "message": "invalid or expired token"},
			})
			return
		}

		// Superadmin tokens carry an empty branch claim; Parse failing over
		// to uuid.Nil is the intended mapping.
		branchID, _ := uuid.Parse(claims.BranchID)
		c.Set(ContextKeyPrincipal, authz.Principal{
			UserID:   claims.UserID,
			BranchID: branchID,
			Email:    claims.Email,
			Level:    claims.PermissionLevel,
		})
		c.Set(ContextKeyClaims, claims)
		c.Next()
	}
}

// RequireLevel returns middleware that rejects principals below the given
// permission level. Branch scoping is not checked here; services decide that
// per entity.
func RequireLevel(min domain.PermissionLevel) gin.HandlerFunc {
	return func(c *gin.Context) {
		val, exists := c.Get(ContextKeyPrincipal)
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   gin.H{"code": "UNAUTHORIZED", "message": "authentication required"},
			})
			return
		}
		if val.(authz.Principal).Level < min {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false,
				"error":   gin.H{"code": "FORBIDDEN", "message": "insufficient permission level"},
			})
			return
		}
		c.Next()
	}
}

// GetPrincipal extracts the authenticated principal from the Gin context.
func GetPrincipal(c *gin.Context) (authz.Principal, error) {
	val, exists := c.Get(ContextKeyPrincipal)
	if !exists {
		return authz.Principal{}, domain.ErrUnauthorized
	}
	return val.(authz.Principal), nil
}
