package auth

import (
	"strings"

	"github.com/Hamim-Susmit/Fitness-Platform-sub002/internal/api"
	"github.com/Hamim-Susmit/Fitness-Platform-sub002/internal/apperr"
	"github.com/Hamim-Susmit/Fitness-Platform-sub002/internal/logger"

	"github.com/gin-gonic/gin"
)

// Actor is the authenticated caller resolved from the bearer credential.
type Actor struct {
	UserID int
	Role   string
}

func AuthMiddleware(accessTokenSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			api.Abort(c, apperr.ErrMissingAuthorization)
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.TrimSpace(parts[0]) != "Bearer" {
			api.Abort(c, apperr.ErrMissingAuthorization)
			return
		}

		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			api.Abort(c, apperr.ErrMissingAuthorization)
			return
		}

		claims, err := ValidateToken(tokenString, accessTokenSecret)
		if err != nil {
			logger.Debug("bearer token rejected", "error", err)
			api.Abort(c, apperr.ErrInvalidUser)
			return
		}

		if claims.TokenType != "access" || claims.UserID <= 0 {
			api.Abort(c, apperr.ErrInvalidUser)
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("user_role", claims.Role)

		c.Next()
	}
}

// RequireRole admits callers holding any of roles.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("user_role")
		if !exists {
			api.Abort(c, apperr.ErrInvalidUser)
			return
		}

		roleStr, ok := role.(string)
		if !ok {
			api.Abort(c, apperr.ErrInvalidUser)
			return
		}

		for _, r := range roles {
			if roleStr == r {
				c.Next()
				return
			}
		}

		api.Abort(c, apperr.New(apperr.Forbidden, "auth.RequireRole"))
	}
}

func getUserID(c *gin.Context) (int, bool) {
	userID, exists := c.Get("user_id")
	if !exists {
		return 0, false
	}

	id, ok := userID.(int)
	if !ok {
		return 0, false
	}

	return id, true
}

func GetActor(c *gin.Context) (Actor, bool) {
	id, ok := getUserID(c)
	if !ok {
		return Actor{}, false
	}
	role, _ := c.Get("user_role")
	roleStr, _ := role.(string)
	return Actor{UserID: id, Role: roleStr}, true
}
