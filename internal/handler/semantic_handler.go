package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/xxxsen/promptdeck/internal/pkg/errcode"
	"github.com/xxxsen/promptdeck/internal/pkg/response"
	"github.com/xxxsen/promptdeck/internal/semantic"
	"github.com/xxxsen/promptdeck/internal/service"
)

type SemanticHandler struct {
	prompts *service.PromptService
	engine  *semantic.Engine
}

func NewSemanticHandler(prompts *service.PromptService, engine *semantic.Engine) *SemanticHandler {
	return &SemanticHandler{prompts: prompts, engine: engine}
}

type textRequest struct {
	Text string `json:"text"`
}

func (h *SemanticHandler) SuggestTags(c *gin.Context) {
	var req textRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	tags := h.prompts.SuggestTags(c.Request.Context(), req.Text)
	if tags == nil {
		tags = []string{}
	}
	response.Success(c, gin.H{"tags": tags})
}

func (h *SemanticHandler) CheckDuplicate(c *gin.Context) {
	var req textRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	match, dup, err := h.prompts.CheckDuplicate(c.Request.Context(), req.Text)
	if err != nil {
		handleError(c, err)
		return
	}
	body := gin.H{"duplicate": dup}
	if dup {
		body["match"] = match
	}
	response.Success(c, body)
}

func (h *SemanticHandler) Status(c *gin.Context) {
	response.Success(c, gin.H{
		"state":     h.engine.State(),
		"available": h.engine.IsAvailable(),
	})
}

// Reload drops the loaded runtime and attempts a fresh load. This is the only
// path that retries after a failed load.
func (h *SemanticHandler) Reload(c *gin.Context) {
	h.engine.Reset()
	ok := h.engine.EnsureReady(c.Request.Context())
	response.Success(c, gin.H{"available": ok})
}

func (h *SemanticHandler) Rehydrate(c *gin.Context) {
	changed := h.prompts.Rehydrate(c.Request.Context())
	response.Success(c, gin.H{"changed": changed})
}
