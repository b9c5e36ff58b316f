package router

import (
	"github.com/gin-gonic/gin"

	"dreamwriter-api/internal/interfaces/http/middleware"
)

// RegisterAPIRoutes 注册 /api 路由
// 生成接口需要 Bearer key，并按客户端限流
func RegisterAPIRoutes(api *gin.RouterGroup, h *RouterHandlers, rateLimit gin.HandlerFunc) {
	// 小说
	novels := api.Group("/novels")
	{
		novels.GET("", h.Novel.ListNovels)
		novels.POST("", h.Novel.CreateNovel)
		novels.GET("/:id", h.Novel.GetNovel)
		novels.PUT("/:id", h.Novel.UpdateNovel)
		novels.DELETE("/:id", h.Novel.DeleteNovel)

		novels.GET("/:id/characters", h.Character.ListCharacters)
		novels.GET("/:id/chapters", h.Chapter.ListChapters)
	}

	// 人物卡
	characters := api.Group("/characters")
	{
		characters.POST("", h.Character.CreateCharacter)
		characters.GET("/:id", h.Character.GetCharacter)
		characters.PUT("/:id", h.Character.UpdateCharacter)
		characters.DELETE("/:id", h.Character.DeleteCharacter)
	}

	// 章节
	chapters := api.Group("/chapters")
	{
		chapters.POST("", h.Chapter.CreateChapter)
		chapters.GET("/:id", h.Chapter.GetChapter)
		chapters.PUT("/:id", h.Chapter.UpdateChapter)
		chapters.DELETE("/:id", h.Chapter.DeleteChapter)
	}

	// 流式生成 (SSE)
	generate := api.Group("/generate", middleware.BearerAuth(), rateLimit)
	{
		generate.POST("/chapter", h.Generation.GenerateChapter)
		generate.POST("/outline", h.Generation.GenerateOutline)
	}
}
