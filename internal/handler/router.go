package handler

import (
	"github.com/gin-gonic/gin"
)

type RouterDeps struct {
	Prompts  *PromptHandler
	Semantic *SemanticHandler
}

func RegisterRoutes(api *gin.RouterGroup, deps RouterDeps) {
	api.POST("/prompts", deps.Prompts.Create)
	api.GET("/prompts", deps.Prompts.List)
	api.GET("/prompts/:id", deps.Prompts.Get)
	api.PUT("/prompts/:id", deps.Prompts.Update)
	api.DELETE("/prompts/:id", deps.Prompts.Delete)
	api.GET("/search", deps.Prompts.Search)

	api.POST("/tags/suggest", deps.Semantic.SuggestTags)
	api.POST("/duplicate/check", deps.Semantic.CheckDuplicate)
	api.GET("/model/status", deps.Semantic.Status)
	api.POST("/model/reload", deps.Semantic.Reload)
	api.POST("/rehydrate", deps.Semantic.Rehydrate)

	api.GET("/settings", deps.Prompts.GetSettings)
	api.PUT("/settings", deps.Prompts.UpdateSettings)
}
