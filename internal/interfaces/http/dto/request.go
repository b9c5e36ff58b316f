package dto

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// BindID 从 URI 绑定资源 ID
func BindID(c *gin.Context) string {
	return c.Param("id")
}

// idOrNew 客户端未提供 ID 时生成 UUID
func idOrNew(id string) string {
	if id = strings.TrimSpace(id); id != "" {
		return id
	}
	return uuid.New().String()
}
