package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/wilayah_api/internal/models"
	"github.com/GTDGit/wilayah_api/internal/utils"
)

const actorKey = "actor"

// JWTMiddleware authenticates admin requests by bearer token and puts the
// caller into the gin context as a models.Actor.
type JWTMiddleware struct {
	signer  *utils.JWTSigner
	limiter *InvalidAuthRateLimiter
}

// NewJWTMiddleware creates a JWTMiddleware. limiter may be nil to disable
// throttling of bad tokens.
func NewJWTMiddleware(signer *utils.JWTSigner, limiter *InvalidAuthRateLimiter) *JWTMiddleware {
	return &JWTMiddleware{signer: signer, limiter: limiter}
}

func (m *JWTMiddleware) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			m.reject(c, "UNAUTHORIZED", "Missing authorization header")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			m.reject(c, "UNAUTHORIZED", "Invalid authorization header")
			return
		}

		claims, err := m.signer.Validate(strings.TrimSpace(parts[1]))
		if err != nil {
			m.reject(c, "INVALID_TOKEN", "Invalid or expired token")
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set(actorKey, models.Actor{ID: claims.UserID, Email: claims.Email, Role: claims.Role})
		c.Next()
	}
}

func (m *JWTMiddleware) reject(c *gin.Context, code, message string) {
	if m.limiter != nil && !m.limiter.Allow(c.ClientIP()) {
		utils.Error(c, 429, "TOO_MANY_REQUESTS", "Too many invalid authentication attempts")
		c.Abort()
		return
	}
	utils.Error(c, 401, code, message)
	c.Abort()
}

// GetActor returns the authenticated actor. ok is false on routes not
// behind JWTMiddleware.
func GetActor(c *gin.Context) (actor models.Actor, ok bool) {
	v, exists := c.Get(actorKey)
	if !exists {
		return models.Actor{}, false
	}
	actor, ok = v.(models.Actor)
	return actor, ok
}
