package middleware

import (
	"Keystone/internal/pkg/consts"
	"Keystone/internal/pkg/redis"
	"Keystone/internal/pkg/response"
	"Keystone/internal/pkg/security"
	"context"
	log "log/slog"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	UserIDKey = "user_id"
	TokenKey  = "token"
)

// AuthMiddleware 负责验证 JWT 并将用户身份信息注入 Context
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c)
		if !ok {
			abortUnauthorized(c, "Token 缺失或格式错误")
			return
		}

		signature, err := security.ExtractSignature(tokenString)
		if err != nil {
			abortUnauthorized(c, "Token 缺失或格式错误")
			return
		}

		revoked, err := redis.Exists(c.Request.Context(), consts.TokenBlacklist+signature)
		if err != nil {
			log.ErrorContext(c.Request.Context(), "token blacklist lookup failed", "err", err)
			response.Fail(c, response.InternalServerError, "未知错误")
			c.Abort()
			return
		}
		if revoked {
			abortUnauthorized(c, "Token 无效或已过期")
			return
		}

		claims, err := security.ValidateToken(tokenString)
		if err != nil {
			abortUnauthorized(c, "Token 无效或已过期")
			return
		}

		setIdentity(c, claims.UserID)
		c.Set(TokenKey, tokenString)
		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", false
	}
	token := strings.TrimPrefix(authHeader, "Bearer ")
	return token, token != ""
}

func setIdentity(c *gin.Context, userID uint64) {
	c.Set(UserIDKey, userID)
	newCtx := context.WithValue(c.Request.Context(), UserIDKey, userID)
	c.Request = c.Request.WithContext(newCtx)
}

func abortUnauthorized(c *gin.Context, msg string) {
	response.Fail(c, response.Unauthorized, msg)
	c.Abort()
}
