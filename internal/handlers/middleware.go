package handlers

import (
	"net/http"
	"strings"

	"onboarding-service/internal/models"
	"onboarding-service/internal/services"
	"onboarding-service/utils"

	"github.com/gin-gonic/gin"
)

type Middleware struct {
	tokenService *services.TokenService
}

func NewMiddleware(tokenService *services.TokenService) *Middleware {
	return &Middleware{
		tokenService: tokenService,
	}
}

// RequireAuth validates the bearer token (or session cookie) and, when
// account types are given, restricts the route to those types.
func (m *Middleware) RequireAuth(accountTypes ...models.AccountType) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := ""

		authHeader := c.GetHeader("Authorization")
		if strings.HasPrefix(authHeader, "Bearer ") {
			tokenString = authHeader[7:]
		} else if authHeader != "" {
			tokenString = authHeader
		}
		if tokenString == "" {
			if cookie, err := c.Cookie(sessionCookieName); err == nil {
				tokenString = cookie
			}
		}

		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, utils.CreateErrorResponse("MISSING_TOKEN", "authorization required"))
			return
		}

		claims, err := m.tokenService.VerifyToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, utils.CreateErrorResponse("INVALID_TOKEN", "invalid or expired token"))
			return
		}

		if len(accountTypes) > 0 {
			allowed := false
			for _, t := range accountTypes {
				if claims.AccountType == t {
					allowed = true
					break
				}
			}
			if !allowed {
				c.AbortWithStatusJSON(http.StatusForbidden, utils.CreateErrorResponse("FORBIDDEN", "insufficient permissions"))
				return
			}
		}

		c.Set("claims", claims)
		c.Next()
	}
}
