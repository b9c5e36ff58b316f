// Package middleware 提供 HTTP 中间件
package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"dreamwriter-api/internal/interfaces/http/dto"
	apperrors "dreamwriter-api/pkg/errors"
)

const (
	// APIKeyContextKey 上游 API Key 在 Gin Context 中的键
	APIKeyContextKey = "api_key"

	bearerPrefix = "Bearer "
)

// BearerAuth 要求 Authorization: Bearer <key>
// key 不做校验，原样透传给上游模型服务
func BearerAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		key, ok := parseBearer(c.GetHeader("Authorization"))
		if !ok {
			abortUnauthorized(c)
			return
		}

		c.Set(APIKeyContextKey, key)
		c.Next()
	}
}

// APIKey 读取 BearerAuth 注入的 key
func APIKey(c *gin.Context) string {
	return c.GetString(APIKeyContextKey)
}

func parseBearer(header string) (string, bool) {
	if !strings.HasPrefix(header, bearerPrefix) {
		return "", false
	}
	key := strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))
	if key == "" {
		return "", false
	}
	return key, true
}

// abortUnauthorized 终止请求并返回 401
func abortUnauthorized(c *gin.Context) {
	dto.AppError(c, apperrors.ErrTokenMissing)
	c.Abort()
}
