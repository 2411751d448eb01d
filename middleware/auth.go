package middleware

import (
	"fdv-chatbot-platform/utils"

	"github.com/gin-gonic/gin"
)

// RequireAdmin accepts a bearer token signed with jwtSecret carrying the
// admin role. An empty secret disables the protected routes entirely.
func RequireAdmin(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if jwtSecret == "" {
			utils.RespondWithServiceUnavailable(c, "Admin access is not configured")
			return
		}

		tokenString := utils.ExtractTokenFromHeader(c.GetHeader("Authorization"))
		if tokenString == "" {
			utils.RespondWithUnauthorized(c, "Authentication token is required")
			return
		}

		claims, err := utils.ValidateJWT(tokenString, jwtSecret)
		if err != nil {
			utils.RespondWithUnauthorized(c, "Invalid or expired token")
			return
		}
		if claims.Role != utils.RoleAdmin {
			utils.RespondWithForbidden(c, "Admin role required")
			return
		}

		c.Set("user_id", claims.Subject)
		c.Set("role", claims.Role)
		c.Set("claims", claims)
		c.Next()
	}
}

// GetUserID returns the authenticated subject, if any.
func GetUserID(c *gin.Context) string {
	if userID, exists := c.Get("user_id"); exists {
		if id, ok := userID.(string); ok {
			return id
		}
	}
	return ""
}
